// Package syncer pulls every user's stats from the provider on a schedule, persists
// them, evaluates achievements and then settles the previous day's rewards.
package syncer

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"codeleague/internal/achievement"
	"codeleague/internal/batch"
	"codeleague/internal/datekey"
	"codeleague/internal/domain"
	"codeleague/internal/logger"
	"codeleague/internal/provider"
	"codeleague/internal/reward"

	"github.com/google/uuid"
	"github.com/hako/durafmt"
)

const (
	DefaultInterval    = 2 * time.Minute
	DefaultBatchDelay  = time.Second
	DefaultWeeklyEvery = 5

	EventSyncCompleted = "sync_completed"
	EventUserSynced    = "user_synced"
)

// Stages reported to OnError.
const (
	StageList       = "list_users"
	StageSync       = "sync_user"
	StageSettlement = "settlement"
)

// Sweep outcomes, also used as the sync_sweeps_total result label.
const (
	SweepCompleted   = "completed"
	SweepInterrupted = "interrupted"
	SweepFailed      = "failed"
	SweepSkipped     = "skipped"
)

type StatsClient interface {
	GetDailyTotal(ctx context.Context, credential string, opts provider.FetchOptions) provider.DailyResult
	GetWeeklyStats(ctx context.Context, rangeKey, credential string, opts provider.FetchOptions) provider.WeeklyResult
}

type UserStore interface {
	ListWithCredential(ctx context.Context) ([]domain.User, error)
	// ListCompeting is read after the sync phase, so it carries timezones learned
	// during the sweep.
	ListCompeting(ctx context.Context) ([]domain.User, error)
	UpdateTimezone(ctx context.Context, userID int64, tz string) error
}

type StatStore interface {
	UpsertDaily(ctx context.Context, s *domain.DailyStat) error
	UpsertWeekly(ctx context.Context, s *domain.WeeklyStat) error
}

type Evaluator interface {
	EvaluateDaily(ctx context.Context, in achievement.DailyInput) ([]string, error)
	EvaluateWeekly(ctx context.Context, in achievement.WeeklyInput) ([]string, error)
}

type CallLogger interface {
	LogCall(ctx context.Context, entry *domain.ProviderCallLog) error
}

type Settler interface {
	SettleAll(ctx context.Context, users []domain.User, now time.Time) ([]reward.Result, error)
}

// Notifier receives sweep events; the websocket hub implements it.
type Notifier interface {
	Broadcast(event interface{})
}

// Deps are the collaborators of an Orchestrator. CallLog and Notifier may be nil.
type Deps struct {
	Client   StatsClient
	Users    UserStore
	Stats    StatStore
	Engine   Evaluator
	Settler  Settler
	CallLog  CallLogger
	Notifier Notifier
}

type Options struct {
	Interval   time.Duration
	BatchSize  int
	BatchDelay time.Duration
	// WeeklyEvery runs the weekly phase on every Nth sweep, starting with the first.
	WeeklyEvery int
	RangeKey    string
	OnError     func(stage string, userID int64, err error)
	Now         func() time.Time
}

// SyncRequest identifies one user to sync.
type SyncRequest struct {
	UserID      int64
	Credential  string
	Timezone    string
	BypassCache bool
}

// UserResult is what one user's pipeline produced.
type UserResult struct {
	UserID   int64                  `json:"user_id"`
	DateKey  string                 `json:"date_key"`
	Daily    provider.DailyResult   `json:"daily"`
	Weekly   *provider.WeeklyResult `json:"weekly,omitempty"`
	Granted  []string               `json:"granted,omitempty"`
	Timezone string                 `json:"timezone,omitempty"`
}

// SweepReport summarises one RunOnce.
type SweepReport struct {
	RunID       string        `json:"run_id"`
	Skipped     bool          `json:"skipped,omitempty"`
	Outcome     string        `json:"outcome"`
	Weekly      bool          `json:"weekly"`
	Users       int           `json:"users"`
	Failed      int           `json:"failed"`
	Settled     int           `json:"settled"`
	Duration    time.Duration `json:"duration"`
	FinishedAt  time.Time     `json:"finished_at"`
}

// Event is pushed to the Notifier.
type Event struct {
	Type    string    `json:"type"`
	RunID   string    `json:"run_id,omitempty"`
	UserID  int64     `json:"user_id,omitempty"`
	DateKey string    `json:"date_key"`
	Users   int       `json:"users,omitempty"`
	Failed  int       `json:"failed,omitempty"`
	Weekly  bool      `json:"weekly"`
	At      time.Time `json:"at"`
}

type Orchestrator struct {
	deps Deps

	interval    time.Duration
	batchSize   int
	batchDelay  time.Duration
	weeklyEvery int
	rangeKey    string
	onError     func(stage string, userID int64, err error)
	now         func() time.Time

	running atomic.Bool
	sweeps  atomic.Int64
	last    atomic.Pointer[SweepReport]

	mu       sync.Mutex
	cancel   context.CancelFunc
	inflight sync.WaitGroup
}

func New(deps Deps, opts Options) *Orchestrator {
	o := &Orchestrator{
		deps:        deps,
		interval:    opts.Interval,
		batchSize:   opts.BatchSize,
		batchDelay:  opts.BatchDelay,
		weeklyEvery: opts.WeeklyEvery,
		rangeKey:    opts.RangeKey,
		onError:     opts.OnError,
		now:         opts.Now,
	}
	if o.interval <= 0 {
		o.interval = DefaultInterval
	}
	if o.batchSize <= 0 {
		o.batchSize = batch.DefaultBatchSize
	}
	if o.batchDelay < 0 {
		o.batchDelay = 0
	}
	if o.weeklyEvery <= 0 {
		o.weeklyEvery = DefaultWeeklyEvery
	}
	if o.rangeKey == "" {
		o.rangeKey = provider.DefaultRangeKey
	}
	if o.now == nil {
		o.now = time.Now
	}
	if o.onError == nil {
		o.onError = func(stage string, userID int64, err error) {
			logger.Error("sync error", "stage", stage, "user_id", userID, "error", err)
		}
	}
	return o
}

// Start runs a sweep immediately and then every interval until Stop or ctx ends.
// Calling Start twice is a no-op.
func (o *Orchestrator) Start(ctx context.Context) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.cancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(ctx)
	o.cancel = cancel

	o.inflight.Add(1)
	go func() {
		defer o.inflight.Done()
		o.loop(ctx)
	}()
	logger.Info("sync orchestrator started", "interval", durafmt.Parse(o.interval).String())
}

func (o *Orchestrator) loop(ctx context.Context) {
	o.tick(ctx)

	ticker := time.NewTicker(o.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			o.tick(ctx)
		}
	}
}

// tick starts a sweep without blocking the ticker; a sweep still in flight makes the
// new one a no-op.
func (o *Orchestrator) tick(ctx context.Context) {
	o.inflight.Add(1)
	go func() {
		defer o.inflight.Done()
		o.RunOnce(ctx)
	}()
}

// Stop cancels the schedule and waits for an in-flight sweep to wind down.
func (o *Orchestrator) Stop() {
	o.mu.Lock()
	cancel := o.cancel
	o.cancel = nil
	o.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	o.inflight.Wait()
	logger.Info("sync orchestrator stopped")
}

// Running reports whether a sweep is in flight.
func (o *Orchestrator) Running() bool {
	return o.running.Load()
}

// LastSweep returns the report of the most recent sweep that was not skipped.
func (o *Orchestrator) LastSweep() (SweepReport, bool) {
	r := o.last.Load()
	if r == nil {
		return SweepReport{}, false
	}
	return *r, true
}

// RunOnce syncs every user with a credential, then settles yesterday's rewards for
// every competing user. It returns immediately with Skipped set when another sweep is
// in flight.
func (o *Orchestrator) RunOnce(ctx context.Context) SweepReport {
	if !o.running.CompareAndSwap(false, true) {
		sweepsTotal.WithLabelValues(SweepSkipped).Inc()
		return SweepReport{Skipped: true, Outcome: SweepSkipped}
	}
	defer o.running.Store(false)

	start := time.Now()
	report := SweepReport{RunID: uuid.NewString()}
	log := logger.With("run_id", report.RunID)
	ctx = logger.NewContext(ctx, log)

	n := o.sweeps.Add(1)
	report.Weekly = (n-1)%int64(o.weeklyEvery) == 0

	users, err := o.deps.Users.ListWithCredential(ctx)
	if err != nil {
		o.fail(StageList, 0, err)
		report.Outcome = SweepFailed
		sweepsTotal.WithLabelValues(report.Outcome).Inc()
		o.finish(&report, start)
		return report
	}
	report.Users = len(users)
	log.Info("sync sweep started", "users", len(users), "weekly", report.Weekly)

	batchReport, err := batch.Run(ctx, users, func(ctx context.Context, u domain.User) error {
		_, err := o.syncOne(ctx, requestFor(u), report.Weekly)
		return err
	}, batch.Options[domain.User]{
		BatchSize: o.batchSize,
		Delay:     o.batchDelay,
		OnError: func(u domain.User, err error) {
			o.fail(StageSync, u.ID, err)
		},
	})
	report.Failed = batchReport.Failed
	if err != nil {
		log.Warn("sync sweep interrupted", "error", err, "completed", batchReport.Succeeded+batchReport.Failed)
		report.Outcome = SweepInterrupted
		sweepsTotal.WithLabelValues(report.Outcome).Inc()
		o.finish(&report, start)
		return report
	}

	if o.deps.Settler != nil {
		report.Settled = o.settle(ctx)
	}

	report.Outcome = SweepCompleted
	o.finish(&report, start)
	sweepDuration.Observe(report.Duration.Seconds())
	sweepsTotal.WithLabelValues(report.Outcome).Inc()
	log.Info("sync sweep finished",
		"users", report.Users,
		"failed", report.Failed,
		"settled", report.Settled,
		"took", durafmt.Parse(report.Duration).LimitFirstN(2).String(),
	)

	o.notify(Event{
		Type:    EventSyncCompleted,
		RunID:   report.RunID,
		DateKey: datekey.UTC(o.now()),
		Users:   report.Users,
		Failed:  report.Failed,
		Weekly:  report.Weekly,
		At:      o.now(),
	})
	return report
}

// settle pays yesterday's rank reward to every competing user and returns how many
// settlements were applied.
func (o *Orchestrator) settle(ctx context.Context) int {
	competitors, err := o.deps.Users.ListCompeting(ctx)
	if err != nil {
		o.fail(StageSettlement, 0, fmt.Errorf("list competing users: %w", err))
		return 0
	}
	if len(competitors) == 0 {
		return 0
	}

	results, err := o.deps.Settler.SettleAll(ctx, competitors, o.now())
	if err != nil {
		o.fail(StageSettlement, 0, err)
	}
	applied := 0
	for _, r := range results {
		if r.Applied {
			applied++
		}
	}
	return applied
}

func (o *Orchestrator) finish(report *SweepReport, start time.Time) {
	report.Duration = time.Since(start)
	report.FinishedAt = o.now()
	r := *report
	o.last.Store(&r)
}

// SyncUser runs the single-user pipeline on demand, daily and weekly. It does not take
// part in the sweep guard.
func (o *Orchestrator) SyncUser(ctx context.Context, req SyncRequest) (UserResult, error) {
	res, err := o.syncOne(ctx, req, true)
	if err != nil {
		o.fail(StageSync, req.UserID, err)
	}
	o.notify(Event{
		Type:    EventUserSynced,
		UserID:  req.UserID,
		DateKey: res.DateKey,
		Weekly:  true,
		At:      o.now(),
	})
	return res, err
}

func (o *Orchestrator) syncOne(ctx context.Context, req SyncRequest, withWeekly bool) (UserResult, error) {
	out := UserResult{UserID: req.UserID, Timezone: req.Timezone}
	var errs []error

	daily := o.deps.Client.GetDailyTotal(ctx, req.Credential, provider.FetchOptions{
		Timezone:    req.Timezone,
		BypassCache: req.BypassCache,
	})
	out.Daily = daily
	out.DateKey = resolveDateKey(daily, req.Timezone, o.now)
	o.logCall(ctx, req.UserID, domain.ProviderEndpointDaily, daily.Outcome)

	if tz := daily.Summary.Timezone; tz != "" && tz != req.Timezone && datekey.ValidZone(tz) {
		if err := o.deps.Users.UpdateTimezone(ctx, req.UserID, tz); err != nil {
			errs = append(errs, fmt.Errorf("update timezone: %w", err))
		} else {
			out.Timezone = tz
		}
	}

	if !daily.FromCache {
		stat := &domain.DailyStat{
			UserID:       req.UserID,
			DateKey:      out.DateKey,
			TotalSeconds: seconds(daily.Summary.TotalSeconds),
			Status:       daily.Status,
			Error:        daily.ErrorPtr(),
			FetchedAt:    daily.FetchedAt,
		}
		if err := o.deps.Stats.UpsertDaily(ctx, stat); err != nil {
			errs = append(errs, fmt.Errorf("save daily stat: %w", err))
		} else {
			granted, err := o.deps.Engine.EvaluateDaily(ctx, achievement.DailyInput{
				UserID:  req.UserID,
				DateKey: out.DateKey,
				Status:  daily.Status,
				Summary: daily.Summary,
			})
			if err != nil {
				errs = append(errs, fmt.Errorf("daily achievements: %w", err))
			}
			out.Granted = append(out.Granted, granted...)
		}
	}

	if withWeekly {
		weekly := o.deps.Client.GetWeeklyStats(ctx, o.rangeKey, req.Credential, provider.FetchOptions{
			BypassCache: req.BypassCache,
		})
		out.Weekly = &weekly
		o.logCall(ctx, req.UserID, domain.ProviderEndpointWeekly, weekly.Outcome)

		if !weekly.FromCache {
			stat := &domain.WeeklyStat{
				UserID:              req.UserID,
				RangeKey:            weekly.RangeKey,
				TotalSeconds:        seconds(weekly.Summary.TotalSeconds),
				DailyAverageSeconds: seconds(weekly.Summary.DailyAverageSeconds),
				Status:              weekly.Status,
				Error:               weekly.ErrorPtr(),
				FetchedAt:           weekly.FetchedAt,
			}
			if err := o.deps.Stats.UpsertWeekly(ctx, stat); err != nil {
				errs = append(errs, fmt.Errorf("save weekly stat: %w", err))
			} else {
				granted, err := o.deps.Engine.EvaluateWeekly(ctx, achievement.WeeklyInput{
					UserID:    req.UserID,
					RangeKey:  weekly.RangeKey,
					Status:    weekly.Status,
					Summary:   weekly.Summary,
					FetchedAt: weekly.FetchedAt,
				})
				if err != nil {
					errs = append(errs, fmt.Errorf("weekly achievements: %w", err))
				}
				out.Granted = append(out.Granted, granted...)
			}
		}
	}

	return out, errors.Join(errs...)
}

// logCall records provider calls, skipping clean cache hits.
func (o *Orchestrator) logCall(ctx context.Context, userID int64, endpoint string, res provider.Outcome) {
	if res.FromCache && res.NetworkError == "" {
		return
	}

	log := logger.WithContext(ctx)
	if res.NetworkError != "" {
		log.Warn("provider call failed", "user_id", userID, "endpoint", endpoint,
			"from_cache", res.FromCache, "network_error", res.NetworkError)
	} else {
		log.Debug("provider call", "user_id", userID, "endpoint", endpoint,
			"status", res.Status, "http_status", res.HTTPStatus)
	}

	if o.deps.CallLog == nil {
		return
	}
	err := o.deps.CallLog.LogCall(ctx, &domain.ProviderCallLog{
		UserID:       userID,
		Endpoint:     endpoint,
		Status:       res.Status,
		HTTPStatus:   res.HTTPStatus,
		FromCache:    res.FromCache,
		Error:        res.Error,
		NetworkError: res.NetworkError,
	})
	if err != nil {
		log.Warn("failed to record provider call", "user_id", userID, "error", err)
	}
}

func (o *Orchestrator) fail(stage string, userID int64, err error) {
	userErrorsTotal.WithLabelValues(stage).Inc()
	o.onError(stage, userID, err)
}

func (o *Orchestrator) notify(ev Event) {
	if o.deps.Notifier != nil {
		o.deps.Notifier.Broadcast(ev)
	}
}

func requestFor(u domain.User) SyncRequest {
	return SyncRequest{
		UserID:     u.ID,
		Credential: u.ProviderCredential,
		Timezone:   u.TimezoneName(),
	}
}

// resolveDateKey prefers the provider's own date, then the provider's zone, then the
// user's stored zone, then UTC.
func resolveDateKey(res provider.DailyResult, userTZ string, now func() time.Time) string {
	if _, ok := datekey.Parse(res.Summary.Date); ok {
		return res.Summary.Date
	}
	at := res.FetchedAt
	if at.IsZero() {
		at = now()
	}
	if datekey.ValidZone(res.Summary.Timezone) {
		return datekey.InZone(at, res.Summary.Timezone)
	}
	return datekey.InZone(at, userTZ)
}

func seconds(v float64) int64 {
	if v <= 0 || math.IsNaN(v) {
		return 0
	}
	return int64(math.Round(v))
}
