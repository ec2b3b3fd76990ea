package achievement

import (
	"fmt"

	"codeleague/internal/domain"
)

// Rule names the matcher a definition is evaluated with.
type Rule string

const (
	RuleDailyTotal      Rule = "daily_total"
	RuleWeekendTotal    Rule = "weekend_total"
	RuleSingleEditor    Rule = "single_editor"
	RuleSingleLanguage  Rule = "single_language"
	RuleSingleProject   Rule = "single_project"
	RuleWeeklyTotal     Rule = "weekly_total"
	RuleWeeklyAverage   Rule = "weekly_average"
	RuleDominantProject Rule = "dominant_project"
	RuleSevenDays       Rule = "seven_days"
)

// Definition is one catalog entry. Thresholds are inclusive.
type Definition struct {
	ID               string             `json:"id"`
	Title            string             `json:"title"`
	Description      string             `json:"description"`
	Category         string             `json:"category"`
	Context          domain.ContextKind `json:"context"`
	Rule             Rule               `json:"rule"`
	ThresholdSeconds int64              `json:"threshold_seconds,omitempty"`
	Ratio            float64            `json:"ratio,omitempty"`
}

const hour = int64(3600)

var catalog = buildCatalog()

func buildCatalog() []Definition {
	var defs []Definition

	for _, h := range []int64{4, 6, 8, 10, 12, 14, 16, 20} {
		defs = append(defs, Definition{
			ID:               fmt.Sprintf("daily-%dh", h),
			Title:            fmt.Sprintf("%d Hour Day", h),
			Description:      fmt.Sprintf("Code for at least %d hours in a single day.", h),
			Category:         "daily_time",
			Context:          domain.ContextDaily,
			Rule:             RuleDailyTotal,
			ThresholdSeconds: h * hour,
		})
	}

	for _, h := range []int64{4, 8} {
		defs = append(defs, Definition{
			ID:               fmt.Sprintf("weekend-warrior-%dh", h),
			Title:            fmt.Sprintf("Weekend Warrior %dh", h),
			Description:      fmt.Sprintf("Code for at least %d hours on a weekend day.", h),
			Category:         "weekend",
			Context:          domain.ContextDaily,
			Rule:             RuleWeekendTotal,
			ThresholdSeconds: h * hour,
		})
	}

	defs = append(defs,
		Definition{
			ID:          "solo-editor",
			Title:       "Solo",
			Description: "Spend the whole day in exactly one editor.",
			Category:    "diversity",
			Context:     domain.ContextDaily,
			Rule:        RuleSingleEditor,
		},
		Definition{
			ID:          "mono-language",
			Title:       "Monoglot",
			Description: "Write exactly one language all day.",
			Category:    "diversity",
			Context:     domain.ContextDaily,
			Rule:        RuleSingleLanguage,
		},
		Definition{
			ID:          "deep-focus",
			Title:       "Deep Focus",
			Description: "Work on exactly one project all day.",
			Category:    "diversity",
			Context:     domain.ContextDaily,
			Rule:        RuleSingleProject,
		},
	)

	for _, h := range []int64{40, 60, 80, 100, 120} {
		defs = append(defs, Definition{
			ID:               fmt.Sprintf("weekly-%dh", h),
			Title:            fmt.Sprintf("%d Hour Week", h),
			Description:      fmt.Sprintf("Code for at least %d hours across the week.", h),
			Category:         "weekly_time",
			Context:          domain.ContextWeekly,
			Rule:             RuleWeeklyTotal,
			ThresholdSeconds: h * hour,
		})
	}

	for _, h := range []int64{6, 8} {
		defs = append(defs, Definition{
			ID:               fmt.Sprintf("weekly-average-%dh", h),
			Title:            fmt.Sprintf("Steady %dh", h),
			Description:      fmt.Sprintf("Average at least %d hours a day over the week.", h),
			Category:         "weekly_average",
			Context:          domain.ContextWeekly,
			Rule:             RuleWeeklyAverage,
			ThresholdSeconds: h * hour,
		})
	}

	defs = append(defs,
		Definition{
			ID:          "dominant-project",
			Title:       "One Project To Rule Them All",
			Description: "Spend at least 75% of the week's time on a single project.",
			Category:    "focus",
			Context:     domain.ContextWeekly,
			Rule:        RuleDominantProject,
			Ratio:       0.75,
		},
		Definition{
			ID:          "seven-day",
			Title:       "Seven Day Streak",
			Description: "Code on every day of the week.",
			Category:    "consistency",
			Context:     domain.ContextWeekly,
			Rule:        RuleSevenDays,
		},
	)

	return defs
}

// Catalog returns a copy of every achievement definition in display order.
func Catalog() []Definition {
	out := make([]Definition, len(catalog))
	copy(out, catalog)
	return out
}

// Lookup finds a definition by id.
func Lookup(id string) (Definition, bool) {
	for _, d := range catalog {
		if d.ID == id {
			return d, true
		}
	}
	return Definition{}, false
}
