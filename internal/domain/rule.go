package domain

import "time"

type RuleActionType string

const (
	ActionMultiply RuleActionType = "multiply"
	ActionIncrease RuleActionType = "increase" // percent
	ActionDecrease RuleActionType = "decrease" // percent
)

type RuleAction struct {
	Type  RuleActionType `json:"type"`
	Value float64        `json:"value"`
}

// RuleConditions are all optional; nil/empty means "don't care".
type RuleConditions struct {
	MinOccupancy   *float64       `json:"minOccupancy,omitempty"` // percent 0..100
	MaxOccupancy   *float64       `json:"maxOccupancy,omitempty"`
	DaysOfWeek     []time.Weekday `json:"daysOfWeek,omitempty"` // check-in weekday
	MinAdvanceDays *int           `json:"minAdvanceDays,omitempty"`
	MaxAdvanceDays *int           `json:"maxAdvanceDays,omitempty"`
	Seasons        []Season       `json:"seasons,omitempty"`
}

// PricingRule is a persisted conditional overlay on top of the computed
// factors. RoomType nil matches every room type.
type PricingRule struct {
	ID         string         `json:"id"`
	HotelID    int64          `json:"hotelId"`
	RoomType   *RoomType      `json:"roomType,omitempty"`
	RuleType   string         `json:"ruleType"`
	Priority   int            `json:"priority"`
	Conditions RuleConditions `json:"conditions"`
	Actions    []RuleAction   `json:"actions"`
	ValidFrom  *time.Time     `json:"validFrom,omitempty"`
	ValidTo    *time.Time     `json:"validTo,omitempty"`
	IsActive   bool           `json:"isActive"`
}

// InWindow reports whether the rule's validity window covers t.
func (r PricingRule) InWindow(t time.Time) bool {
	if r.ValidFrom != nil && t.Before(*r.ValidFrom) {
		return false
	}
	if r.ValidTo != nil && t.After(*r.ValidTo) {
		return false
	}
	return true
}
