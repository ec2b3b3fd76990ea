package provider

import (
	"strings"
	"unicode/utf8"

	"codeleague/internal/domain"

	"github.com/bytedance/sonic"
)

var fastJSON = sonic.ConfigDefault

type namedDuration struct {
	Name         string  `json:"name"`
	TotalSeconds float64 `json:"total_seconds"`
}

type dailyEnvelope struct {
	Data struct {
		GrandTotal struct {
			TotalSeconds float64 `json:"total_seconds"`
		} `json:"grand_total"`
		Range struct {
			Date     string `json:"date"`
			Start    string `json:"start"`
			End      string `json:"end"`
			Timezone string `json:"timezone"`
		} `json:"range"`
		Editors   []namedDuration `json:"editors"`
		Languages []namedDuration `json:"languages"`
		Projects  []namedDuration `json:"projects"`
	} `json:"data"`
}

type weeklyEnvelope struct {
	Data struct {
		TotalSeconds float64         `json:"total_seconds"`
		DailyAverage float64         `json:"daily_average"`
		Start        string          `json:"start"`
		End          string          `json:"end"`
		Timezone     string          `json:"timezone"`
		Editors      []namedDuration `json:"editors"`
		Languages    []namedDuration `json:"languages"`
		Projects     []namedDuration `json:"projects"`
		Days         []struct {
			Date         string  `json:"date"`
			TotalSeconds float64 `json:"total_seconds"`
		} `json:"days"`
	} `json:"data"`
}

// decodeDaily maps a "today" body into a summary. Missing fields stay zero.
func decodeDaily(body []byte) (domain.DailySummary, error) {
	var env dailyEnvelope
	if len(strings.TrimSpace(string(body))) == 0 {
		return domain.DailySummary{}, nil
	}
	if err := fastJSON.Unmarshal(body, &env); err != nil {
		return domain.DailySummary{}, err
	}

	d := env.Data
	return domain.DailySummary{
		TotalSeconds: nonNegative(d.GrandTotal.TotalSeconds),
		Date:         strings.TrimSpace(d.Range.Date),
		Timezone:     strings.TrimSpace(d.Range.Timezone),
		Editors:      toNamed(d.Editors),
		Languages:    toNamed(d.Languages),
		Projects:     toNamed(d.Projects),
	}, nil
}

func decodeWeekly(body []byte) (domain.WeeklySummary, error) {
	var env weeklyEnvelope
	if len(strings.TrimSpace(string(body))) == 0 {
		return domain.WeeklySummary{}, nil
	}
	if err := fastJSON.Unmarshal(body, &env); err != nil {
		return domain.WeeklySummary{}, err
	}

	d := env.Data
	days := make([]domain.DayBucket, 0, len(d.Days))
	for _, b := range d.Days {
		days = append(days, domain.DayBucket{Date: b.Date, TotalSeconds: nonNegative(b.TotalSeconds)})
	}

	return domain.WeeklySummary{
		TotalSeconds:        nonNegative(d.TotalSeconds),
		DailyAverageSeconds: nonNegative(d.DailyAverage),
		RangeStart:          d.Start,
		RangeEnd:            d.End,
		Timezone:            strings.TrimSpace(d.Timezone),
		Editors:             toNamed(d.Editors),
		Languages:           toNamed(d.Languages),
		Projects:            toNamed(d.Projects),
		Days:                days,
	}, nil
}

// errorMessage pulls a human message out of an error body: JSON error, message or
// errors fields first, raw text otherwise.
func errorMessage(body []byte) string {
	var parsed map[string]interface{}
	if err := fastJSON.Unmarshal(body, &parsed); err == nil {
		for _, field := range []string{"error", "message", "errors"} {
			if msg := stringify(parsed[field]); msg != "" {
				return msg
			}
		}
	}
	return truncate(strings.ToValidUTF8(strings.TrimSpace(string(body)), "\uFFFD"), 500)
}

func stringify(v interface{}) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case []interface{}:
		parts := make([]string, 0, len(t))
		for _, item := range t {
			if s := stringify(item); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, "; ")
	case map[string]interface{}:
		if s := stringify(t["message"]); s != "" {
			return s
		}
		return stringify(t["error"])
	}
	return ""
}

func toNamed(in []namedDuration) []domain.NamedDuration {
	if len(in) == 0 {
		return nil
	}
	out := make([]domain.NamedDuration, 0, len(in))
	for _, n := range in {
		out = append(out, domain.NamedDuration{Name: n.Name, TotalSeconds: n.TotalSeconds})
	}
	return out
}

func nonNegative(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}

// truncate cuts s to at most n bytes without splitting a UTF-8 sequence.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
