package domain

import (
	"context"
	"time"
)

// BookingStore reads persisted bookings. ActiveBookings returns bookings
// that overlap [from, to) and still occupy rooms (pending/confirmed/checked
// in). CountBookings counts bookings created for stays inside the window
// regardless of status, for the historical demand fallback.
type BookingStore interface {
	ActiveBookings(ctx context.Context, hotelID int64, from, to time.Time) ([]Booking, error)
	CountBookings(ctx context.Context, hotelID int64, from, to time.Time) (int, error)
}

// HotelStore reads hotel metadata.
type HotelStore interface {
	GetHotel(ctx context.Context, id int64) (Hotel, error)
	ListYieldManaged(ctx context.Context) ([]Hotel, error)
}

// RuleStore reads active pricing rules; hotelID 0 returns global rules.
type RuleStore interface {
	ActiveRules(ctx context.Context, hotelID int64) ([]PricingRule, error)
}

// DemandAnalyzer is the optional richer demand predictor. The engine must
// function with the historical fallback when it is absent or failing.
type DemandAnalyzer interface {
	PredictDemand(ctx context.Context, hotelID int64, from, to time.Time) (DemandLevel, error)
}

// CurrencyConverter converts a base-currency (EUR) amount to a display
// currency as a post-processing step.
type CurrencyConverter interface {
	Convert(ctx context.Context, amount float64, from, to string) (float64, error)
}

// CacheTier is one storage tier of the hybrid cache. Implementations must
// never panic on malformed payloads; a decode failure is a miss.
type CacheTier interface {
	Name() string
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	// DelPrefix evicts every key with the given prefix and returns how many
	// entries were removed.
	DelPrefix(ctx context.Context, prefix string) (int, error)
}

// EventBus is the injected pub/sub seam between the engine, the cache
// invalidator, and the rest of the system. Subscribe returns a receive
// channel and an unsubscribe function; Publish must never block the caller
// indefinitely.
type EventBus interface {
	Publish(ctx context.Context, e Event)
	Subscribe(topics ...string) (<-chan Event, func())
}
