package pricing

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"roomrate/internal/domain"
)

// RuleContext is what the evaluator matches conditions against.
type RuleContext struct {
	RoomType      domain.RoomType
	CheckIn       time.Time
	Now           time.Time
	OccupancyRate float64
	Season        domain.Season
}

// RuleOutcome is the combined adjustment of the applied rules.
type RuleOutcome struct {
	Factor      float64
	Applied     []string
	Description string
}

// EvaluateRules selects applicable rules, orders them by priority
// descending (ties by id, so ordering is deterministic), and applies their
// actions sequentially. At most cfg.MaxRulesApplied rules take effect;
// excess lower-priority rules are ignored. No rule applies twice.
func (c Config) EvaluateRules(rules []domain.PricingRule, rc RuleContext) RuleOutcome {
	matched := make([]domain.PricingRule, 0, len(rules))
	seen := make(map[string]bool, len(rules))
	for _, r := range rules {
		if seen[r.ID] {
			continue
		}
		if !ruleApplies(r, rc) {
			continue
		}
		seen[r.ID] = true
		matched = append(matched, r)
	}

	sort.SliceStable(matched, func(i, j int) bool {
		if matched[i].Priority != matched[j].Priority {
			return matched[i].Priority > matched[j].Priority
		}
		return matched[i].ID < matched[j].ID
	})
	if len(matched) > c.MaxRulesApplied {
		matched = matched[:c.MaxRulesApplied]
	}

	out := RuleOutcome{Factor: 1.0}
	var notes []string
	for _, r := range matched {
		for _, a := range r.Actions {
			switch a.Type {
			case domain.ActionMultiply:
				out.Factor *= a.Value
			case domain.ActionIncrease:
				out.Factor *= 1 + a.Value/100
			case domain.ActionDecrease:
				out.Factor *= 1 - a.Value/100
			}
		}
		out.Applied = append(out.Applied, r.ID)
		notes = append(notes, fmt.Sprintf("%s(p%d)", r.RuleType, r.Priority))
	}
	if out.Factor <= 0 {
		// a pathological rule chain can't zero a price; the whole chain is
		// discarded, so none of its rules count as applied
		out.Factor = 1.0
		out.Applied = nil
		out.Description = "rule chain produced non-positive factor, ignored"
		return out
	}
	out.Description = strings.Join(notes, ", ")
	return out
}

func ruleApplies(r domain.PricingRule, rc RuleContext) bool {
	if !r.IsActive {
		return false
	}
	if !r.InWindow(rc.CheckIn) {
		return false
	}
	if r.RoomType != nil && *r.RoomType != rc.RoomType {
		return false
	}
	cond := r.Conditions
	if cond.MinOccupancy != nil && rc.OccupancyRate < *cond.MinOccupancy {
		return false
	}
	if cond.MaxOccupancy != nil && rc.OccupancyRate > *cond.MaxOccupancy {
		return false
	}
	if len(cond.DaysOfWeek) > 0 && !containsWeekday(cond.DaysOfWeek, rc.CheckIn.Weekday()) {
		return false
	}
	if cond.MinAdvanceDays != nil || cond.MaxAdvanceDays != nil {
		advance := int(rc.CheckIn.Sub(rc.Now).Hours() / 24)
		if advance < 0 {
			advance = 0
		}
		if cond.MinAdvanceDays != nil && advance < *cond.MinAdvanceDays {
			return false
		}
		if cond.MaxAdvanceDays != nil && advance > *cond.MaxAdvanceDays {
			return false
		}
	}
	if len(cond.Seasons) > 0 && !containsSeason(cond.Seasons, rc.Season) {
		return false
	}
	return true
}

func containsWeekday(days []time.Weekday, d time.Weekday) bool {
	for _, x := range days {
		if x == d {
			return true
		}
	}
	return false
}

func containsSeason(seasons []domain.Season, s domain.Season) bool {
	for _, x := range seasons {
		if x == s {
			return true
		}
	}
	return false
}
