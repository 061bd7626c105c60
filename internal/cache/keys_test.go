package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"roomrate/internal/domain"
)

func TestKeyBuilders(t *testing.T) {
	checkIn := time.Date(2026, time.May, 19, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, "pricing_42_DOUBLE_2026-05-19_MODERATE",
		PricingKey(42, domain.RoomDouble, checkIn, domain.StrategyModerate))
	assert.Equal(t, "occupancy_42_DOUBLE_2026-05-19",
		OccupancyKey(42, domain.RoomDouble, checkIn))
	assert.Equal(t, "demand_42_2026-05-19", DemandKey(42, checkIn))
	assert.Equal(t, "hotel_metrics_42", HotelMetricsKey(42))
	assert.Equal(t, "rules_42", RulesKey(42))
	assert.Equal(t, "rules_global", RulesKey(0))
}

func TestPrefixesCoverTheirKeys(t *testing.T) {
	checkIn := time.Date(2026, time.May, 19, 0, 0, 0, 0, time.UTC)
	key := PricingKey(42, domain.RoomDouble, checkIn, domain.StrategyModerate)

	assert.True(t, len(HotelPrefix(DataPricing, 42)) < len(key))
	assert.Contains(t, key, HotelPrefix(DataPricing, 42))
	assert.Contains(t, key, HotelRoomPrefix(DataPricing, 42, domain.RoomDouble))

	// hotel 421 must not be swept up by hotel 42's prefix
	other := PricingKey(421, domain.RoomDouble, checkIn, domain.StrategyModerate)
	assert.NotContains(t, other, HotelPrefix(DataPricing, 42))
}

func TestTTLPolicyFor(t *testing.T) {
	p := DefaultTTLPolicy()
	assert.Equal(t, 30*time.Minute, p.For(DataPricing))
	assert.Equal(t, 10*time.Minute, p.For(DataOccupancy))
	assert.Equal(t, 15*time.Minute, p.For(DataDemand))
	assert.Equal(t, time.Hour, p.For(DataHotelMetrics))
	assert.Equal(t, 6*time.Hour, p.For(DataRules))

	// unknown or unset types get a safe default rather than zero
	assert.Equal(t, 30*time.Minute, p.For(DataType("unknown")))
	assert.Equal(t, 30*time.Minute, TTLPolicy(nil).For(DataPricing))
}
