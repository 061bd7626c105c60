// Package cache implements the two-tier (Redis + in-process) hybrid cache
// the pricing engine reads through, plus the event-driven invalidator and
// the warm-up routine.
package cache

import (
	"fmt"
	"time"

	"roomrate/internal/domain"
)

// DataType partitions the cache: every type has its own key shape, TTL and
// payload validation.
type DataType string

const (
	DataPricing      DataType = "pricing"
	DataOccupancy    DataType = "occupancy"
	DataDemand       DataType = "demand"
	DataHotelMetrics DataType = "hotel_metrics"
	DataRules        DataType = "rules"
)

const dateLayout = "2006-01-02"

// TTLPolicy maps a data type to how long its entries stay trustworthy.
// The numbers are policy, not invariants; deployments override them.
type TTLPolicy map[DataType]time.Duration

func DefaultTTLPolicy() TTLPolicy {
	return TTLPolicy{
		DataPricing:      30 * time.Minute,
		DataOccupancy:    10 * time.Minute,
		DataDemand:       15 * time.Minute,
		DataHotelMetrics: 60 * time.Minute,
		DataRules:        6 * time.Hour,
	}
}

func (p TTLPolicy) For(t DataType) time.Duration {
	if d, ok := p[t]; ok && d > 0 {
		return d
	}
	return 30 * time.Minute
}

// Typed key builders. Keys are the only coupling between writers and
// invalidators, so they are built here and nowhere else.

func PricingKey(hotelID int64, rt domain.RoomType, checkIn time.Time, s domain.Strategy) string {
	return fmt.Sprintf("%s_%d_%s_%s_%s", DataPricing, hotelID, rt, checkIn.Format(dateLayout), s)
}

func OccupancyKey(hotelID int64, rt domain.RoomType, checkIn time.Time) string {
	return fmt.Sprintf("%s_%d_%s_%s", DataOccupancy, hotelID, rt, checkIn.Format(dateLayout))
}

func DemandKey(hotelID int64, checkIn time.Time) string {
	return fmt.Sprintf("%s_%d_%s", DataDemand, hotelID, checkIn.Format(dateLayout))
}

func HotelMetricsKey(hotelID int64) string {
	return fmt.Sprintf("%s_%d", DataHotelMetrics, hotelID)
}

// RulesKey with hotelID 0 addresses the global rule set.
func RulesKey(hotelID int64) string {
	if hotelID == 0 {
		return string(DataRules) + "_global"
	}
	return fmt.Sprintf("%s_%d", DataRules, hotelID)
}

// HotelPrefix covers every key of one data type for one hotel.
func HotelPrefix(t DataType, hotelID int64) string {
	return fmt.Sprintf("%s_%d_", t, hotelID)
}

// HotelRoomPrefix narrows HotelPrefix to one room type.
func HotelRoomPrefix(t DataType, hotelID int64, rt domain.RoomType) string {
	return fmt.Sprintf("%s_%d_%s_", t, hotelID, rt)
}
