package domain

import "time"

type BookingStatus string

const (
	BookingPending   BookingStatus = "PENDING"
	BookingConfirmed BookingStatus = "CONFIRMED"
	BookingCancelled BookingStatus = "CANCELLED"
	BookingCheckedIn BookingStatus = "CHECKED_IN"
)

// Booking is the read model consumed by the occupancy and demand-fallback
// calculators. Rooms is the number of rooms the booking occupies per night.
type Booking struct {
	ID       int64         `json:"id"`
	HotelID  int64         `json:"hotelId"`
	RoomType RoomType      `json:"roomType"`
	CheckIn  time.Time     `json:"checkIn"`
	CheckOut time.Time     `json:"checkOut"`
	Rooms    int           `json:"rooms"`
	Status   BookingStatus `json:"status"`
}

// DateRange is a hotel-specific event window (fair, congress, local holiday)
// that forces PEAK pricing. From/To are inclusive calendar dates.
type DateRange struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

func (d DateRange) Contains(t time.Time) bool {
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return !day.Before(d.From) && !day.After(d.To)
}

// Hotel is the metadata read model. BaseRate is the nightly EUR rate for a
// SIMPLE room before any multiplier.
type Hotel struct {
	ID           int64        `json:"id"`
	Name         string       `json:"name"`
	Stars        StarCategory `json:"stars"`
	TotalRooms   int          `json:"totalRooms"`
	BaseRate     float64      `json:"baseRate"`
	YieldEnabled bool         `json:"yieldEnabled"`
	RoomTypes    []RoomType   `json:"roomTypes"`
	EventWindows []DateRange  `json:"eventWindows,omitempty"`
}
