package domain

import (
	"fmt"
	"time"
)

type Strategy string

const (
	StrategyConservative Strategy = "CONSERVATIVE"
	StrategyModerate     Strategy = "MODERATE"
	StrategyAggressive   Strategy = "AGGRESSIVE"
)

func (s Strategy) Valid() bool {
	switch s {
	case StrategyConservative, StrategyModerate, StrategyAggressive:
		return true
	}
	return false
}

type RoomType string

const (
	RoomSimple        RoomType = "SIMPLE"
	RoomDouble        RoomType = "DOUBLE"
	RoomDoubleComfort RoomType = "DOUBLE_COMFORT"
	RoomSuite         RoomType = "SUITE"
)

func (r RoomType) Valid() bool {
	switch r {
	case RoomSimple, RoomDouble, RoomDoubleComfort, RoomSuite:
		return true
	}
	return false
}

type Season string

const (
	SeasonLow    Season = "LOW"
	SeasonMedium Season = "MEDIUM"
	SeasonHigh   Season = "HIGH"
	SeasonPeak   Season = "PEAK"
)

type DemandLevel string

const (
	DemandVeryLow  DemandLevel = "VERY_LOW"
	DemandLow      DemandLevel = "LOW"
	DemandModerate DemandLevel = "MODERATE"
	DemandHigh     DemandLevel = "HIGH"
	DemandSurge    DemandLevel = "SURGE"
)

type StarCategory string

const (
	OneStar   StarCategory = "ONE_STAR"
	TwoStar   StarCategory = "TWO_STAR"
	ThreeStar StarCategory = "THREE_STAR"
	FourStar  StarCategory = "FOUR_STAR"
	FiveStar  StarCategory = "FIVE_STAR"
)

// Factor names used for weighting; every calculator publishes exactly one.
const (
	FactorOccupancy    = "occupancy"
	FactorSeasonal     = "seasonal"
	FactorLeadTime     = "leadTime"
	FactorDayOfWeek    = "dayOfWeek"
	FactorDemand       = "demand"
	FactorCompetition  = "competition"
	FactorStrategy     = "strategy"
	FactorLengthOfStay = "lengthOfStay"
)

// PricingRequest is the immutable input to a price computation.
// The engine always computes in the base currency (EUR); Currency only
// affects the returned copy.
type PricingRequest struct {
	HotelID  int64     `json:"hotelId"`
	RoomType RoomType  `json:"roomType"`
	CheckIn  time.Time `json:"checkIn"`
	CheckOut time.Time `json:"checkOut"`
	Guests   int       `json:"guests"`
	Strategy Strategy  `json:"strategy"`
	Currency string    `json:"currency,omitempty"`
}

func (r PricingRequest) Nights() int {
	return int(r.CheckOut.Sub(r.CheckIn).Hours() / 24)
}

func (r *PricingRequest) Normalize() {
	if r.Strategy == "" {
		r.Strategy = StrategyModerate
	}
	if r.Guests <= 0 {
		r.Guests = 1
	}
}

func (r PricingRequest) Validate() error {
	if r.HotelID <= 0 {
		return fmt.Errorf("%w: hotel id must be positive", ErrInvalidRequest)
	}
	if !r.RoomType.Valid() {
		return fmt.Errorf("%w: unknown room type %q", ErrInvalidRequest, r.RoomType)
	}
	if !r.CheckIn.Before(r.CheckOut) {
		return fmt.Errorf("%w: check-in must be before check-out", ErrInvalidRequest)
	}
	if r.Nights() < 1 {
		return fmt.Errorf("%w: stay must cover at least one night", ErrInvalidRequest)
	}
	if !r.Strategy.Valid() {
		return fmt.Errorf("%w: unknown strategy %q", ErrInvalidRequest, r.Strategy)
	}
	return nil
}

// PricingFactor is one calculator's contribution. Factor is always a finite
// positive number; on missing upstream data the calculator substitutes 1.0,
// sets Missing, and explains itself in Note.
type PricingFactor struct {
	Name    string  `json:"name"`
	Factor  float64 `json:"factor"`
	Note    string  `json:"note,omitempty"`
	Missing bool    `json:"missing,omitempty"`
}

// PricingResult is created once by the engine, cached at most once, and
// consumed read-only. It is superseded, never mutated.
type PricingResult struct {
	HotelID        int64           `json:"hotelId"`
	RoomType       RoomType        `json:"roomType"`
	CheckIn        time.Time       `json:"checkIn"`
	CheckOut       time.Time       `json:"checkOut"`
	Strategy       Strategy        `json:"strategy"`
	Currency       string          `json:"currency"`
	BasePrice      float64         `json:"basePrice"`
	DynamicPrice   float64         `json:"dynamicPrice"`
	TotalPrice     float64         `json:"totalPrice"`
	Nights         int             `json:"nights"`
	DailyPrices    []float64       `json:"dailyPrices"`
	SeasonsSummary map[Season]int  `json:"seasonsSummary"`
	Factors        []PricingFactor `json:"factors"`
	RulesApplied   []string        `json:"rulesApplied"`
	Confidence     int             `json:"confidence"`
	CalculatedAt   time.Time       `json:"calculatedAt"`
	CacheSource    string          `json:"cacheSource"`
}

// OccupancySnapshot is the cached sub-result consumed by the occupancy
// calculator. CalculatedFor is the check-in date (2006-01-02) the snapshot
// was computed for; a mismatch invalidates the cached payload.
type OccupancySnapshot struct {
	Rate          float64   `json:"rate"`
	Factor        float64   `json:"factor"`
	Band          string    `json:"band"`
	CalculatedFor string    `json:"calculatedFor"`
	CalculatedAt  time.Time `json:"calculatedAt"`
}

// DemandSnapshot is the cached sub-result of the demand calculator.
type DemandSnapshot struct {
	Level        DemandLevel `json:"level"`
	Factor       float64     `json:"factor"`
	Source       string      `json:"source"` // analyzer|historical
	CalculatedAt time.Time   `json:"calculatedAt"`
}
