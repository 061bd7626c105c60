package cache

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"roomrate/internal/domain"
)

// Invalidator subscribes to domain events and proactively evicts affected
// keys across both tiers. It runs independently of the request-serving path
// and communicates with it only through the shared cache store.
type Invalidator struct {
	cache *Hybrid
	bus   domain.EventBus
	rules domain.RuleStore
}

func NewInvalidator(c *Hybrid, bus domain.EventBus, rules domain.RuleStore) *Invalidator {
	return &Invalidator{cache: c, bus: bus, rules: rules}
}

// Run blocks until ctx is done. Call it in its own goroutine.
func (i *Invalidator) Run(ctx context.Context) {
	events, unsubscribe := i.bus.Subscribe(
		domain.TopicBookingCreated,
		domain.TopicBookingConfirmed,
		domain.TopicBookingCancelled,
		domain.TopicRulesUpdated,
		domain.TopicRoomPriceUpdated,
	)
	defer unsubscribe()

	for {
		select {
		case <-ctx.Done():
			return
		case e, ok := <-events:
			if !ok {
				return
			}
			i.handle(ctx, e)
		}
	}
}

func (i *Invalidator) handle(ctx context.Context, e domain.Event) {
	var evicted int
	switch e.Topic {
	case domain.TopicBookingCreated, domain.TopicBookingConfirmed, domain.TopicBookingCancelled:
		// a booking changes occupancy and demand; narrow to the room type
		// when the event carries one
		if e.RoomType != "" {
			evicted = i.cache.InvalidateHotelRoom(ctx, e.HotelID, e.RoomType)
		} else {
			evicted = i.cache.InvalidateHotel(ctx, e.HotelID)
		}
	case domain.TopicRulesUpdated:
		evicted = i.cache.InvalidateRules(ctx, e.HotelID)
		i.reloadRules(ctx, e.HotelID)
	case domain.TopicRoomPriceUpdated:
		if e.RoomType != "" {
			evicted = i.cache.InvalidatePricingRoom(ctx, e.HotelID, e.RoomType)
		} else {
			evicted = i.cache.evict(ctx, HotelPrefix(DataPricing, e.HotelID))
		}
	default:
		return
	}

	log.Info().
		Str("topic", e.Topic).
		Int64("hotel_id", e.HotelID).
		Str("room_type", string(e.RoomType)).
		Int("evicted", evicted).
		Msg("cache invalidated")

	i.bus.Publish(ctx, domain.Event{
		ID:       uuid.NewString(),
		Topic:    domain.TopicCacheInvalidated,
		HotelID:  e.HotelID,
		RoomType: e.RoomType,
		At:       time.Now(),
		Payload:  map[string]any{"evicted": evicted, "cause": e.Topic},
	})
}

// reloadRules repopulates the rule cache right away so the next pricing
// request doesn't pay the store round-trip. A global update (hotelID 0)
// touches every hotel's merged rule set, so those repopulate lazily on the
// next request for each hotel instead.
func (i *Invalidator) reloadRules(ctx context.Context, hotelID int64) {
	if i.rules == nil || hotelID == 0 {
		return
	}
	rules, err := i.rules.ActiveRules(ctx, hotelID)
	if err != nil {
		log.Warn().Err(err).Int64("hotel_id", hotelID).Msg("rule reload failed, next request loads from store")
		return
	}
	i.cache.SetRules(ctx, hotelID, rules)
}
