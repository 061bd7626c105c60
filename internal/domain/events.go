package domain

import "time"

// Event topics the pricing engine publishes and subscribes to.
const (
	TopicBookingCreated   = "booking:created"
	TopicBookingConfirmed = "booking:confirmed"
	TopicBookingCancelled = "booking:cancelled"
	TopicRulesUpdated     = "pricing:rules_updated"
	TopicRoomPriceUpdated = "room:price_updated"

	TopicPriceCalculated  = "price:calculated"
	TopicPriceCalcFailed  = "price:calculation_failed"
	TopicCacheInvalidated = "cache:invalidated"
)

// Event is the message exchanged on the bus. RoomType is empty when the
// event is not room-specific; HotelID is zero for global events (e.g. a
// global rules reload).
type Event struct {
	ID       string         `json:"id"`
	Topic    string         `json:"topic"`
	HotelID  int64          `json:"hotelId,omitempty"`
	RoomType RoomType       `json:"roomType,omitempty"`
	At       time.Time      `json:"at"`
	Payload  map[string]any `json:"payload,omitempty"`
}
