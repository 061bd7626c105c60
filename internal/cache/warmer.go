package cache

import (
	"context"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"

	"roomrate/internal/adapters/observability"
	"roomrate/internal/domain"
)

// PriceCalculator is the slice of the pricing engine the warmer needs;
// computing a price primes both cache tiers as a side effect.
type PriceCalculator interface {
	CalculatePrice(ctx context.Context, req domain.PricingRequest) (domain.PricingResult, error)
}

type WarmStats struct {
	Hotels      int
	Requests    int
	Failures    int
	HotelErrors int
	Elapsed     time.Duration
}

// Warmer pre-computes pricing for yield-managed hotels over a near-term
// date window. One hotel failing never aborts the others.
type Warmer struct {
	hotels  domain.HotelStore
	engine  PriceCalculator
	days    int
	workers int64
	limiter *rate.Limiter
	now     func() time.Time
}

func NewWarmer(hotels domain.HotelStore, engine PriceCalculator, days, workers, ratePerSec int) *Warmer {
	if days <= 0 {
		days = 7
	}
	if workers <= 0 {
		workers = 8
	}
	if ratePerSec <= 0 {
		ratePerSec = 50
	}
	return &Warmer{
		hotels:  hotels,
		engine:  engine,
		days:    days,
		workers: int64(workers),
		limiter: rate.NewLimiter(rate.Limit(ratePerSec), ratePerSec),
		now:     time.Now,
	}
}

// WarmOnce walks active hotels × room types × (tomorrow .. +days) and
// computes each price with the MODERATE strategy, bounded by the semaphore
// and the rate limiter so warming never starves the request path.
func (w *Warmer) WarmOnce(ctx context.Context) (WarmStats, error) {
	start := w.now()
	hotels, err := w.hotels.ListYieldManaged(ctx)
	if err != nil {
		return WarmStats{}, err
	}

	var (
		stats        WarmStats
		mu           sync.Mutex
		failedHotels = map[int64]bool{}
		wg           sync.WaitGroup
	)
	sem := semaphore.NewWeighted(w.workers)
	launched := 0

	tomorrow := start.AddDate(0, 0, 1)
	tomorrow = time.Date(tomorrow.Year(), tomorrow.Month(), tomorrow.Day(), 0, 0, 0, 0, time.UTC)

	for _, h := range hotels {
		if !h.YieldEnabled {
			continue
		}
		stats.Hotels++
		roomTypes := h.RoomTypes
		if len(roomTypes) == 0 {
			roomTypes = []domain.RoomType{domain.RoomSimple, domain.RoomDouble}
		}
		for _, rt := range roomTypes {
			for d := 0; d < w.days; d++ {
				checkIn := tomorrow.AddDate(0, 0, d)
				req := domain.PricingRequest{
					HotelID:  h.ID,
					RoomType: rt,
					CheckIn:  checkIn,
					CheckOut: checkIn.AddDate(0, 0, 1),
					Guests:   1,
					Strategy: domain.StrategyModerate,
				}

				if err := w.limiter.Wait(ctx); err != nil {
					wg.Wait()
					return stats, err
				}
				if err := sem.Acquire(ctx, 1); err != nil {
					wg.Wait()
					return stats, err
				}
				launched++
				wg.Add(1)
				go func(req domain.PricingRequest) {
					defer wg.Done()
					defer sem.Release(1)
					if _, err := w.engine.CalculatePrice(ctx, req); err != nil {
						mu.Lock()
						stats.Failures++
						failedHotels[req.HotelID] = true
						mu.Unlock()
						log.Warn().Err(err).Int64("hotel_id", req.HotelID).Msg("warm computation failed")
					}
				}(req)
			}
		}
	}

	wg.Wait()
	stats.Requests = launched
	stats.HotelErrors = len(failedHotels)
	stats.Elapsed = w.now().Sub(start)

	observability.ObserveWarmRun(stats.Requests, stats.Failures, stats.Elapsed)
	log.Info().
		Int("hotels", stats.Hotels).
		Int("requests", stats.Requests).
		Int("failures", stats.Failures).
		Dur("elapsed", stats.Elapsed).
		Msg("cache warm-up complete")
	return stats, nil
}

// Start runs WarmOnce on the given cron schedule until ctx is done.
// An empty schedule disables the timer.
func (w *Warmer) Start(ctx context.Context, schedule string) (func(), error) {
	if schedule == "" {
		return func() {}, nil
	}
	c := cron.New()
	_, err := c.AddFunc(schedule, func() {
		if _, err := w.WarmOnce(ctx); err != nil {
			log.Error().Err(err).Msg("scheduled warm-up failed")
		}
	})
	if err != nil {
		return nil, err
	}
	c.Start()
	go func() {
		<-ctx.Done()
		c.Stop()
	}()
	return func() { c.Stop() }, nil
}
