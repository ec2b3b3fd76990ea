// Package provider talks to the external time-tracking provider.
//
// Both calls return a result rather than an error: HTTP outcomes are classified into a
// stat status, definitive results are cached per key for a short TTL, and transport
// failures fall back to the last cached result when one exists.
package provider

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"codeleague/internal/datekey"
	"codeleague/internal/domain"
)

const (
	DefaultBaseURL  = "https://wakatime.com/api/v1"
	DefaultTimeout  = 10 * time.Second
	DefaultCacheTTL = 2 * time.Minute
	DefaultRangeKey = "last_7_days"

	dailyPath   = "/users/current/status_bar/today"
	weeklyPath  = "/users/current/stats/"
	maxBodySize = 1 << 20
)

// ErrNoCredential is reported when a fetch is attempted for a user without a credential.
var ErrNoCredential = errors.New("provider credential is empty")

// Outcome is the part of a result shared by the daily and weekly calls.
type Outcome struct {
	Status       domain.StatStatus `json:"status"`
	HTTPStatus   int               `json:"http_status,omitempty"`
	Error        string            `json:"error,omitempty"`
	NetworkError string            `json:"network_error,omitempty"`
	FromCache    bool              `json:"from_cache"`
	FetchedAt    time.Time         `json:"fetched_at"`
}

// OK reports whether the provider returned usable stats.
func (o Outcome) OK() bool {
	return o.Status == domain.StatusOK
}

// ErrorPtr returns the error message as a nullable column value.
func (o Outcome) ErrorPtr() *string {
	msg := o.Error
	if msg == "" {
		msg = o.NetworkError
	}
	if msg == "" {
		return nil
	}
	return &msg
}

type DailyResult struct {
	Outcome
	// DateKey is the day the result was requested for, in the caller's zone.
	DateKey string              `json:"date_key"`
	Summary domain.DailySummary `json:"summary"`
}

type WeeklyResult struct {
	Outcome
	RangeKey string               `json:"range_key"`
	Summary  domain.WeeklySummary `json:"summary"`
}

// FetchOptions tune a single call.
type FetchOptions struct {
	// Timezone resolves today's date key for the daily cache key. Empty means UTC.
	Timezone string
	// BypassCache forces a network call even when a fresh entry exists.
	BypassCache bool
}

type Options struct {
	BaseURL    string
	Timeout    time.Duration
	CacheTTL   time.Duration
	HTTPClient *http.Client
	Now        func() time.Time
}

// Client is safe for concurrent use by the batch runner.
type Client struct {
	baseURL    string
	httpClient *http.Client
	cacheTTL   time.Duration
	now        func() time.Time

	daily  *resultCache[DailyResult]
	weekly *resultCache[WeeklyResult]
}

// NewClient creates a new provider client
func NewClient(opts Options) *Client {
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	ttl := opts.CacheTTL
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}

	now := opts.Now
	if now == nil {
		now = time.Now
	}

	// Stale entries are kept for two days so an outage spanning midnight still has data.
	retention := 48 * time.Hour

	return &Client{
		baseURL:    baseURL,
		httpClient: httpClient,
		cacheTTL:   ttl,
		now:        now,
		daily:      newResultCache[DailyResult](retention),
		weekly:     newResultCache[WeeklyResult](retention),
	}
}

// GetDailyTotal fetches today's total for the credential.
func (c *Client) GetDailyTotal(ctx context.Context, credential string, opts FetchOptions) DailyResult {
	now := c.now()
	dateKey := datekey.InZone(now, opts.Timezone)
	key := credentialKey(credential) + ":" + dateKey

	if credential == "" {
		return DailyResult{Outcome: noCredential(now), DateKey: dateKey}
	}

	if !opts.BypassCache {
		if e, ok := c.daily.get(key); ok && now.Sub(e.storedAt) < c.cacheTTL {
			cacheHitsTotal.WithLabelValues(domain.ProviderEndpointDaily).Inc()
			res := e.value
			res.FromCache = true
			return res
		}
	}

	code, body, err := c.get(ctx, domain.ProviderEndpointDaily, c.baseURL+dailyPath, credential)
	if err != nil {
		if e, ok := c.daily.get(key); ok {
			staleFallbacksTotal.WithLabelValues(domain.ProviderEndpointDaily).Inc()
			res := e.value
			res.FromCache = true
			res.NetworkError = err.Error()
			return res
		}
		requestsTotal.WithLabelValues(domain.ProviderEndpointDaily, "network_error").Inc()
		return DailyResult{Outcome: networkFailure(now, err), DateKey: dateKey}
	}

	res := DailyResult{DateKey: dateKey}
	res.Outcome = Outcome{HTTPStatus: code, FetchedAt: now}
	res.Status, res.Error = classify(code, body)
	if res.Status == domain.StatusOK {
		summary, decodeErr := decodeDaily(body)
		if decodeErr != nil {
			res.Status = domain.StatusError
			res.Error = "malformed provider payload: " + decodeErr.Error()
		} else {
			res.Summary = summary
		}
	}
	requestsTotal.WithLabelValues(domain.ProviderEndpointDaily, string(res.Status)).Inc()

	c.daily.put(key, res, now)
	return res
}

// GetWeeklyStats fetches the aggregate for a rolling range such as "last_7_days".
func (c *Client) GetWeeklyStats(ctx context.Context, rangeKey, credential string, opts FetchOptions) WeeklyResult {
	now := c.now()
	if rangeKey == "" {
		rangeKey = DefaultRangeKey
	}
	key := rangeKey + ":" + credentialKey(credential)

	if credential == "" {
		return WeeklyResult{Outcome: noCredential(now), RangeKey: rangeKey}
	}

	if !opts.BypassCache {
		if e, ok := c.weekly.get(key); ok && now.Sub(e.storedAt) < c.cacheTTL {
			cacheHitsTotal.WithLabelValues(domain.ProviderEndpointWeekly).Inc()
			res := e.value
			res.FromCache = true
			return res
		}
	}

	endpoint := c.baseURL + weeklyPath + url.PathEscape(rangeKey)
	code, body, err := c.get(ctx, domain.ProviderEndpointWeekly, endpoint, credential)
	if err != nil {
		if e, ok := c.weekly.get(key); ok {
			staleFallbacksTotal.WithLabelValues(domain.ProviderEndpointWeekly).Inc()
			res := e.value
			res.FromCache = true
			res.NetworkError = err.Error()
			return res
		}
		requestsTotal.WithLabelValues(domain.ProviderEndpointWeekly, "network_error").Inc()
		return WeeklyResult{Outcome: networkFailure(now, err), RangeKey: rangeKey}
	}

	res := WeeklyResult{RangeKey: rangeKey}
	res.Outcome = Outcome{HTTPStatus: code, FetchedAt: now}
	res.Status, res.Error = classify(code, body)
	if res.Status == domain.StatusOK {
		summary, decodeErr := decodeWeekly(body)
		if decodeErr != nil {
			res.Status = domain.StatusError
			res.Error = "malformed provider payload: " + decodeErr.Error()
		} else {
			res.Summary = summary
		}
	}
	requestsTotal.WithLabelValues(domain.ProviderEndpointWeekly, string(res.Status)).Inc()

	c.weekly.put(key, res, now)
	return res
}

// get performs one authenticated call. A non-nil error means the transport failed;
// any HTTP response, including 5xx, is returned as code and body.
func (c *Client) get(ctx context.Context, endpoint, target, credential string) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Authorization", "Basic "+base64.StdEncoding.EncodeToString([]byte(credential)))
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	requestDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return 0, nil, fmt.Errorf("read provider response: %w", err)
	}
	return resp.StatusCode, body, nil
}

func networkFailure(now time.Time, err error) Outcome {
	return Outcome{
		Status:       domain.StatusError,
		Error:        err.Error(),
		NetworkError: err.Error(),
		FetchedAt:    now,
	}
}

func noCredential(now time.Time) Outcome {
	return Outcome{
		Status:    domain.StatusError,
		Error:     ErrNoCredential.Error(),
		FetchedAt: now,
	}
}

// credentialKey keeps raw credentials out of cache keys.
func credentialKey(credential string) string {
	sum := sha256.Sum256([]byte(credential))
	return hex.EncodeToString(sum[:12])
}
