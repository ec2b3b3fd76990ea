package achievement

import (
	"strings"
	"time"

	"codeleague/internal/datekey"
	"codeleague/internal/domain"
)

// dailyFacts is what daily matchers look at.
type dailyFacts struct {
	totalSeconds float64
	weekend      bool
	editors      int
	languages    int
	projects     int
}

// weeklyFacts is what weekly matchers look at.
type weeklyFacts struct {
	totalSeconds      float64
	averageSeconds    float64
	topProjectSeconds float64
	days              []domain.DayBucket
}

func newDailyFacts(dateKey string, s domain.DailySummary, weekendDays map[time.Weekday]bool) dailyFacts {
	f := dailyFacts{
		totalSeconds: s.TotalSeconds,
		editors:      len(positiveTotals(s.Editors)),
		languages:    len(positiveTotals(s.Languages)),
		projects:     len(positiveTotals(s.Projects)),
	}
	if wd, ok := datekey.Weekday(dateKey); ok {
		f.weekend = weekendDays[wd]
	}
	return f
}

func newWeeklyFacts(s domain.WeeklySummary) weeklyFacts {
	f := weeklyFacts{
		totalSeconds:   s.TotalSeconds,
		averageSeconds: s.DailyAverageSeconds,
		days:           s.Days,
	}
	for _, secs := range positiveTotals(s.Projects) {
		if secs > f.topProjectSeconds {
			f.topProjectSeconds = secs
		}
	}
	return f
}

// positiveTotals sums seconds per distinct name (payloads may repeat a name) and
// keeps only names with a positive total.
func positiveTotals(items []domain.NamedDuration) map[string]float64 {
	totals := make(map[string]float64, len(items))
	for _, it := range items {
		name := strings.TrimSpace(it.Name)
		if name == "" {
			continue
		}
		totals[name] += it.TotalSeconds
	}
	for name, secs := range totals {
		if secs <= 0 {
			delete(totals, name)
		}
	}
	return totals
}

func (d Definition) matchDaily(f dailyFacts) bool {
	switch d.Rule {
	case RuleDailyTotal:
		return f.totalSeconds >= float64(d.ThresholdSeconds)
	case RuleWeekendTotal:
		return f.weekend && f.totalSeconds >= float64(d.ThresholdSeconds)
	case RuleSingleEditor:
		return f.editors == 1
	case RuleSingleLanguage:
		return f.languages == 1
	case RuleSingleProject:
		return f.projects == 1
	}
	return false
}

func (d Definition) matchWeekly(f weeklyFacts) bool {
	switch d.Rule {
	case RuleWeeklyTotal:
		return f.totalSeconds >= float64(d.ThresholdSeconds)
	case RuleWeeklyAverage:
		return f.averageSeconds >= float64(d.ThresholdSeconds)
	case RuleDominantProject:
		return f.totalSeconds > 0 && f.topProjectSeconds >= d.Ratio*f.totalSeconds
	case RuleSevenDays:
		if len(f.days) < 7 {
			return false
		}
		for _, b := range f.days[len(f.days)-7:] {
			if b.TotalSeconds <= 0 {
				return false
			}
		}
		return true
	}
	return false
}
