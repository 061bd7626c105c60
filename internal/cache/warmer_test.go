package cache

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"roomrate/internal/domain"
)

type warmHotels struct {
	hotels []domain.Hotel
	err    error
}

func (f *warmHotels) GetHotel(context.Context, int64) (domain.Hotel, error) {
	return domain.Hotel{}, errors.New("not used")
}
func (f *warmHotels) ListYieldManaged(context.Context) ([]domain.Hotel, error) {
	return f.hotels, f.err
}

type countingCalculator struct {
	mu       sync.Mutex
	requests []domain.PricingRequest
	failFor  int64 // hotel id whose requests all fail
}

func (c *countingCalculator) CalculatePrice(_ context.Context, req domain.PricingRequest) (domain.PricingResult, error) {
	c.mu.Lock()
	c.requests = append(c.requests, req)
	c.mu.Unlock()
	if req.HotelID == c.failFor {
		return domain.PricingResult{}, errors.New("boom")
	}
	return domain.PricingResult{HotelID: req.HotelID}, nil
}

func TestWarmOnceCoversHotelsRoomsAndDays(t *testing.T) {
	hotels := &warmHotels{hotels: []domain.Hotel{
		{ID: 1, YieldEnabled: true, RoomTypes: []domain.RoomType{domain.RoomSimple, domain.RoomDouble}},
		{ID: 2, YieldEnabled: true, RoomTypes: []domain.RoomType{domain.RoomSuite}},
		{ID: 3, YieldEnabled: false, RoomTypes: []domain.RoomType{domain.RoomSimple}},
	}}
	calc := &countingCalculator{}
	w := NewWarmer(hotels, calc, 3, 4, 1000)

	stats, err := w.WarmOnce(context.Background())
	require.NoError(t, err)

	// hotel 1: 2 room types x 3 days, hotel 2: 1 x 3; hotel 3 is skipped
	assert.Equal(t, 2, stats.Hotels)
	assert.Equal(t, 9, stats.Requests)
	assert.Equal(t, 0, stats.Failures)
	assert.Len(t, calc.requests, 9)

	for _, req := range calc.requests {
		assert.Equal(t, domain.StrategyModerate, req.Strategy)
		assert.Equal(t, 1, req.Nights())
		assert.True(t, req.CheckIn.After(time.Now()), "warm requests target future dates")
	}
}

func TestWarmOnceIsolatesFailingHotels(t *testing.T) {
	hotels := &warmHotels{hotels: []domain.Hotel{
		{ID: 1, YieldEnabled: true, RoomTypes: []domain.RoomType{domain.RoomSimple}},
		{ID: 2, YieldEnabled: true, RoomTypes: []domain.RoomType{domain.RoomSimple}},
	}}
	calc := &countingCalculator{failFor: 1}
	w := NewWarmer(hotels, calc, 2, 2, 1000)

	stats, err := w.WarmOnce(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 4, stats.Requests)
	assert.Equal(t, 2, stats.Failures)
	assert.Equal(t, 1, stats.HotelErrors)

	// hotel 2 still had all its dates computed
	good := 0
	for _, req := range calc.requests {
		if req.HotelID == 2 {
			good++
		}
	}
	assert.Equal(t, 2, good)
}

func TestWarmOnceDefaultsRoomTypes(t *testing.T) {
	hotels := &warmHotels{hotels: []domain.Hotel{{ID: 1, YieldEnabled: true}}}
	calc := &countingCalculator{}
	w := NewWarmer(hotels, calc, 1, 1, 1000)

	stats, err := w.WarmOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Requests) // SIMPLE and DOUBLE fallbacks
}

func TestWarmOncePropagatesStoreError(t *testing.T) {
	hotels := &warmHotels{err: errors.New("db down")}
	w := NewWarmer(hotels, &countingCalculator{}, 1, 1, 1000)

	_, err := w.WarmOnce(context.Background())
	assert.Error(t, err)
}

func TestWarmerStartRejectsBadSchedule(t *testing.T) {
	w := NewWarmer(&warmHotels{}, &countingCalculator{}, 1, 1, 1000)

	_, err := w.Start(context.Background(), "not a cron expr")
	assert.Error(t, err)

	stop, err := w.Start(context.Background(), "")
	require.NoError(t, err)
	stop()
}
