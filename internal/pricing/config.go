// Package pricing computes a room's sale price at request time by combining
// occupancy, season, lead time, day-of-week, demand, competitive position,
// length-of-stay and strategy into one adjusted price, overlaid with
// persisted pricing rules and clamped to hard business limits.
package pricing

import (
	"fmt"
	"math"
	"time"

	"roomrate/internal/domain"
)

// OccupancyBand maps an occupancy percentage interval to a multiplier.
// Bands are ordered ascending; UpTo is the exclusive upper bound of the
// band, the last band catches everything.
type OccupancyBand struct {
	Name   string
	UpTo   float64
	Factor float64
}

// LeadTimeBucket maps "days until check-in" to a multiplier. Buckets are
// ordered ascending by MaxDays; the last bucket catches everything.
type LeadTimeBucket struct {
	MaxDays int
	Factor  float64
}

// HolidayWindow is a recurring calendar window (may span year-end, e.g.
// Dec 20 – Jan 6) that forces PEAK season regardless of the month table.
type HolidayWindow struct {
	Name      string
	FromMonth time.Month
	FromDay   int
	ToMonth   time.Month
	ToDay     int
}

func (w HolidayWindow) Contains(t time.Time) bool {
	md := int(t.Month())*100 + t.Day()
	from := int(w.FromMonth)*100 + w.FromDay
	to := int(w.ToMonth)*100 + w.ToDay
	if from <= to {
		return md >= from && md <= to
	}
	// wraps year-end
	return md >= from || md <= to
}

// StayDiscount is one step of the length-of-stay ladder, ordered by
// descending MinNights.
type StayDiscount struct {
	MinNights int
	Factor    float64
}

// DemandThreshold maps a historical booking count to a demand level,
// ordered by descending MinCount.
type DemandThreshold struct {
	MinCount int
	Level    domain.DemandLevel
}

// Config holds every tunable of the numeric model. Operators retune bands,
// tables and weights without touching the calculators.
type Config struct {
	OccupancyBands []OccupancyBand

	SeasonByMonth     map[time.Month]domain.Season
	SeasonMultipliers map[domain.Season]float64
	HolidayWindows    []HolidayWindow

	LeadTimeBuckets []LeadTimeBucket

	DayOfWeek map[time.Weekday]float64

	DemandMultipliers map[domain.DemandLevel]float64
	DemandThresholds  []DemandThreshold

	CompetitionByStars map[domain.StarCategory]float64
	CompetitionNoise   float64 // max absolute noise, e.g. 0.05
	CompetitionMin     float64
	CompetitionMax     float64

	StayDiscounts []StayDiscount

	StrategyMultipliers map[domain.Strategy]float64
	Weights             map[domain.Strategy]map[string]float64

	RoomMultipliers map[domain.RoomType]float64
	StarBase        map[domain.StarCategory]float64

	MaxIncreasePercent float64
	MaxDecreasePercent float64
	MaxRulesApplied    int
}

func DefaultConfig() Config {
	return Config{
		OccupancyBands: []OccupancyBand{
			{Name: "VERY_LOW", UpTo: 25, Factor: 0.70},
			{Name: "LOW", UpTo: 45, Factor: 0.85},
			{Name: "MEDIUM", UpTo: 65, Factor: 1.00},
			{Name: "HIGH", UpTo: 80, Factor: 1.15},
			{Name: "VERY_HIGH", UpTo: 95, Factor: 1.30},
			{Name: "CRITICAL", UpTo: math.Inf(1), Factor: 1.50},
		},

		SeasonByMonth: map[time.Month]domain.Season{
			time.January: domain.SeasonLow, time.February: domain.SeasonLow, time.November: domain.SeasonLow,
			time.March: domain.SeasonMedium, time.April: domain.SeasonMedium, time.May: domain.SeasonMedium, time.October: domain.SeasonMedium,
			time.June: domain.SeasonHigh, time.September: domain.SeasonHigh,
			time.July: domain.SeasonPeak, time.August: domain.SeasonPeak, time.December: domain.SeasonPeak,
		},
		SeasonMultipliers: map[domain.Season]float64{
			domain.SeasonLow:    0.80,
			domain.SeasonMedium: 1.00,
			domain.SeasonHigh:   1.20,
			domain.SeasonPeak:   1.40,
		},
		HolidayWindows: []HolidayWindow{
			{Name: "year-end holidays", FromMonth: time.December, FromDay: 20, ToMonth: time.January, ToDay: 6},
			{Name: "easter window", FromMonth: time.March, FromDay: 28, ToMonth: time.April, ToDay: 12},
		},

		LeadTimeBuckets: []LeadTimeBucket{
			{MaxDays: 0, Factor: 1.20}, // same-day premium
			{MaxDays: 6, Factor: 1.10},
			{MaxDays: 29, Factor: 1.05},
			{MaxDays: 89, Factor: 1.00},
			{MaxDays: 179, Factor: 0.90},
			{MaxDays: math.MaxInt32, Factor: 0.80},
		},

		DayOfWeek: map[time.Weekday]float64{
			time.Monday:    0.95,
			time.Tuesday:   0.95,
			time.Wednesday: 0.95,
			time.Thursday:  0.95,
			time.Friday:    1.15,
			time.Saturday:  1.15,
			time.Sunday:    0.90,
		},

		DemandMultipliers: map[domain.DemandLevel]float64{
			domain.DemandVeryLow:  0.85,
			domain.DemandLow:      0.95,
			domain.DemandModerate: 1.00,
			domain.DemandHigh:     1.10,
			domain.DemandSurge:    1.25,
		},
		DemandThresholds: []DemandThreshold{
			{MinCount: 20, Level: domain.DemandSurge},
			{MinCount: 10, Level: domain.DemandHigh},
			{MinCount: 5, Level: domain.DemandModerate},
			{MinCount: 2, Level: domain.DemandLow},
			{MinCount: 0, Level: domain.DemandVeryLow},
		},

		CompetitionByStars: map[domain.StarCategory]float64{
			domain.OneStar:   0.95,
			domain.TwoStar:   0.95,
			domain.ThreeStar: 1.00,
			domain.FourStar:  1.05,
			domain.FiveStar:  1.10,
		},
		CompetitionNoise: 0.05,
		CompetitionMin:   0.80,
		CompetitionMax:   1.20,

		StayDiscounts: []StayDiscount{
			{MinNights: 30, Factor: 0.80},
			{MinNights: 14, Factor: 0.85},
			{MinNights: 7, Factor: 0.90},
		},

		StrategyMultipliers: map[domain.Strategy]float64{
			domain.StrategyConservative: 0.80,
			domain.StrategyModerate:     1.00,
			domain.StrategyAggressive:   1.20,
		},
		Weights: map[domain.Strategy]map[string]float64{
			domain.StrategyModerate: {
				domain.FactorOccupancy: 0.30, domain.FactorSeasonal: 0.20,
				domain.FactorLeadTime: 0.15, domain.FactorDayOfWeek: 0.10,
				domain.FactorDemand: 0.10, domain.FactorCompetition: 0.05,
				domain.FactorStrategy: 0.05, domain.FactorLengthOfStay: 0.05,
			},
			domain.StrategyConservative: {
				domain.FactorOccupancy: 0.40, domain.FactorSeasonal: 0.15,
				domain.FactorLeadTime: 0.10, domain.FactorDayOfWeek: 0.10,
				domain.FactorDemand: 0.05, domain.FactorCompetition: 0.10,
				domain.FactorStrategy: 0.05, domain.FactorLengthOfStay: 0.05,
			},
			domain.StrategyAggressive: {
				domain.FactorOccupancy: 0.20, domain.FactorSeasonal: 0.30,
				domain.FactorLeadTime: 0.20, domain.FactorDayOfWeek: 0.05,
				domain.FactorDemand: 0.10, domain.FactorCompetition: 0.05,
				domain.FactorStrategy: 0.05, domain.FactorLengthOfStay: 0.05,
			},
		},

		RoomMultipliers: map[domain.RoomType]float64{
			domain.RoomSimple:        1.00,
			domain.RoomDouble:        1.40,
			domain.RoomDoubleComfort: 1.70,
			domain.RoomSuite:         2.20,
		},
		StarBase: map[domain.StarCategory]float64{
			domain.OneStar:   0.70,
			domain.TwoStar:   0.85,
			domain.ThreeStar: 1.00,
			domain.FourStar:  1.20,
			domain.FiveStar:  1.50,
		},

		MaxIncreasePercent: 50,
		MaxDecreasePercent: 30,
		MaxRulesApplied:    5,
	}
}

// Validate rejects configurations that would break the model's invariants.
func (c Config) Validate() error {
	for strat, w := range c.Weights {
		sum := 0.0
		for _, v := range w {
			if v < 0 {
				return fmt.Errorf("pricing config: negative weight in %s profile", strat)
			}
			sum += v
		}
		if math.Abs(sum-1.0) > 1e-9 {
			return fmt.Errorf("pricing config: %s weights sum to %.4f, want 1.0", strat, sum)
		}
	}
	order := []domain.Season{domain.SeasonLow, domain.SeasonMedium, domain.SeasonHigh, domain.SeasonPeak}
	for i := 1; i < len(order); i++ {
		if c.SeasonMultipliers[order[i]] <= c.SeasonMultipliers[order[i-1]] {
			return fmt.Errorf("pricing config: season multipliers must strictly increase, %s <= %s", order[i], order[i-1])
		}
	}
	for i := 1; i < len(c.OccupancyBands); i++ {
		if c.OccupancyBands[i].UpTo <= c.OccupancyBands[i-1].UpTo {
			return fmt.Errorf("pricing config: occupancy bands out of order at %q", c.OccupancyBands[i].Name)
		}
	}
	if c.MaxDecreasePercent < 0 || c.MaxDecreasePercent >= 100 || c.MaxIncreasePercent < 0 {
		return fmt.Errorf("pricing config: bounds out of range")
	}
	if c.MaxRulesApplied <= 0 {
		return fmt.Errorf("pricing config: max rules applied must be positive")
	}
	return nil
}

// SeasonOf classifies a date: hotel event windows first, then global
// holiday windows (both force PEAK), then the month table.
func (c Config) SeasonOf(t time.Time, hotel domain.Hotel) domain.Season {
	for _, w := range hotel.EventWindows {
		if w.Contains(t) {
			return domain.SeasonPeak
		}
	}
	for _, w := range c.HolidayWindows {
		if w.Contains(t) {
			return domain.SeasonPeak
		}
	}
	if s, ok := c.SeasonByMonth[t.Month()]; ok {
		return s
	}
	return domain.SeasonMedium
}

func (c Config) occupancyBand(rate float64) OccupancyBand {
	for _, b := range c.OccupancyBands {
		if rate < b.UpTo {
			return b
		}
	}
	return c.OccupancyBands[len(c.OccupancyBands)-1]
}

func (c Config) leadTimeFactor(days int) float64 {
	for _, b := range c.LeadTimeBuckets {
		if days <= b.MaxDays {
			return b.Factor
		}
	}
	return c.LeadTimeBuckets[len(c.LeadTimeBuckets)-1].Factor
}

func (c Config) demandLevelFor(count int) domain.DemandLevel {
	for _, t := range c.DemandThresholds {
		if count >= t.MinCount {
			return t.Level
		}
	}
	return domain.DemandVeryLow
}
