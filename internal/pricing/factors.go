package pricing

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog/log"

	"roomrate/internal/cache"
	"roomrate/internal/domain"
)

// Calculators hosts the eight factor calculators. Each is a pure function
// of the request plus externally-sourced signals; none may fail a price
// computation — on upstream trouble it degrades to a neutral 1.0 factor
// with a note.
type Calculators struct {
	cfg      Config
	bookings domain.BookingStore
	demand   domain.DemandAnalyzer // optional
	cache    *cache.Hybrid         // optional
	noise    func() float64        // uniform in [-1, 1]
	now      func() time.Time
}

func NewCalculators(cfg Config, bookings domain.BookingStore, demand domain.DemandAnalyzer, c *cache.Hybrid, noise func() float64, now func() time.Time) *Calculators {
	if now == nil {
		now = time.Now
	}
	return &Calculators{cfg: cfg, bookings: bookings, demand: demand, cache: c, noise: noise, now: now}
}

// Signals are side products of factor computation the rule evaluator and
// synthesizer need.
type Signals struct {
	OccupancyRate float64
	CheckInSeason domain.Season
}

// All runs the eight calculators in their canonical order.
func (c *Calculators) All(ctx context.Context, hotel domain.Hotel, req domain.PricingRequest) ([]domain.PricingFactor, Signals) {
	occ, rate := c.Occupancy(ctx, hotel, req)
	seasonal, season := c.Seasonal(hotel, req)
	factors := []domain.PricingFactor{
		occ,
		seasonal,
		c.LeadTime(req),
		c.DayOfWeek(req),
		c.Demand(ctx, hotel, req),
		c.Competition(hotel),
		c.Strategy(req),
		c.LengthOfStay(req),
	}
	return factors, Signals{OccupancyRate: rate, CheckInSeason: season}
}

func neutral(name, note string) domain.PricingFactor {
	return domain.PricingFactor{Name: name, Factor: 1.0, Note: note, Missing: true}
}

// Occupancy averages daily occupancy across the stay and maps it through
// the configured bands. The snapshot is cached per hotel/room/check-in.
func (c *Calculators) Occupancy(ctx context.Context, hotel domain.Hotel, req domain.PricingRequest) (domain.PricingFactor, float64) {
	if c.cache != nil {
		if snap, ok := c.cache.GetOccupancy(ctx, hotel.ID, req.RoomType, req.CheckIn); ok {
			return domain.PricingFactor{
				Name:   domain.FactorOccupancy,
				Factor: snap.Factor,
				Note:   fmt.Sprintf("%s band at %.1f%% (cached)", snap.Band, snap.Rate),
			}, snap.Rate
		}
	}

	if hotel.TotalRooms <= 0 {
		return neutral(domain.FactorOccupancy, "room inventory unknown"), 0
	}
	if c.bookings == nil {
		return neutral(domain.FactorOccupancy, "booking store unavailable"), 0
	}
	active, err := c.bookings.ActiveBookings(ctx, hotel.ID, req.CheckIn, req.CheckOut)
	if err != nil {
		log.Warn().Err(err).Int64("hotel_id", hotel.ID).Msg("occupancy lookup failed, using neutral factor")
		return neutral(domain.FactorOccupancy, "booking store unavailable"), 0
	}

	nights := req.Nights()
	var sum float64
	for n := 0; n < nights; n++ {
		night := req.CheckIn.AddDate(0, 0, n)
		occupied := 0
		for _, b := range active {
			if !night.Before(b.CheckIn) && night.Before(b.CheckOut) {
				rooms := b.Rooms
				if rooms <= 0 {
					rooms = 1
				}
				occupied += rooms
			}
		}
		pct := float64(occupied) / float64(hotel.TotalRooms) * 100
		if pct > 100 {
			pct = 100
		}
		sum += pct
	}
	rate := sum / float64(nights)
	band := c.cfg.occupancyBand(rate)

	if c.cache != nil {
		c.cache.SetOccupancy(ctx, hotel.ID, req.RoomType, req.CheckIn, domain.OccupancySnapshot{
			Rate:          rate,
			Factor:        band.Factor,
			Band:          band.Name,
			CalculatedFor: req.CheckIn.Format("2006-01-02"),
			CalculatedAt:  c.now(),
		})
	}
	return domain.PricingFactor{
		Name:   domain.FactorOccupancy,
		Factor: band.Factor,
		Note:   fmt.Sprintf("%s band at %.1f%%", band.Name, rate),
	}, rate
}

// Seasonal averages the per-night season multipliers over the stay.
// Event and holiday windows win over the month table.
func (c *Calculators) Seasonal(hotel domain.Hotel, req domain.PricingRequest) (domain.PricingFactor, domain.Season) {
	nights := req.Nights()
	var sum float64
	for n := 0; n < nights; n++ {
		s := c.cfg.SeasonOf(req.CheckIn.AddDate(0, 0, n), hotel)
		sum += c.cfg.SeasonMultipliers[s]
	}
	checkInSeason := c.cfg.SeasonOf(req.CheckIn, hotel)
	return domain.PricingFactor{
		Name:   domain.FactorSeasonal,
		Factor: sum / float64(nights),
		Note:   fmt.Sprintf("check-in in %s season", checkInSeason),
	}, checkInSeason
}

func (c *Calculators) LeadTime(req domain.PricingRequest) domain.PricingFactor {
	days := int(req.CheckIn.Sub(c.now()).Hours() / 24)
	if days < 0 {
		days = 0
	}
	return domain.PricingFactor{
		Name:   domain.FactorLeadTime,
		Factor: c.cfg.leadTimeFactor(days),
		Note:   fmt.Sprintf("%d days ahead", days),
	}
}

func (c *Calculators) DayOfWeek(req domain.PricingRequest) domain.PricingFactor {
	nights := req.Nights()
	var sum float64
	for n := 0; n < nights; n++ {
		wd := req.CheckIn.AddDate(0, 0, n).Weekday()
		m, ok := c.cfg.DayOfWeek[wd]
		if !ok {
			m = 1.0
		}
		sum += m
	}
	return domain.PricingFactor{
		Name:   domain.FactorDayOfWeek,
		Factor: sum / float64(nights),
		Note:   fmt.Sprintf("averaged over %d nights", nights),
	}
}

// Demand asks the analyzer first and falls back to a historical booking
// count over the same calendar window in the prior two years. If both are
// unavailable the factor is neutral and the result's confidence drops.
func (c *Calculators) Demand(ctx context.Context, hotel domain.Hotel, req domain.PricingRequest) domain.PricingFactor {
	if c.cache != nil {
		if snap, ok := c.cache.GetDemand(ctx, hotel.ID, req.CheckIn); ok {
			return domain.PricingFactor{
				Name:   domain.FactorDemand,
				Factor: snap.Factor,
				Note:   fmt.Sprintf("%s demand via %s (cached)", snap.Level, snap.Source),
			}
		}
	}

	level, source, ok := c.demandLevel(ctx, hotel, req)
	if !ok {
		return neutral(domain.FactorDemand, "demand signal unavailable")
	}
	factor := c.cfg.DemandMultipliers[level]
	if factor <= 0 {
		factor = 1.0
	}
	if c.cache != nil {
		c.cache.SetDemand(ctx, hotel.ID, req.CheckIn, domain.DemandSnapshot{
			Level:        level,
			Factor:       factor,
			Source:       source,
			CalculatedAt: c.now(),
		})
	}
	return domain.PricingFactor{
		Name:   domain.FactorDemand,
		Factor: factor,
		Note:   fmt.Sprintf("%s demand via %s", level, source),
	}
}

func (c *Calculators) demandLevel(ctx context.Context, hotel domain.Hotel, req domain.PricingRequest) (domain.DemandLevel, string, bool) {
	if c.demand != nil {
		level, err := c.demand.PredictDemand(ctx, hotel.ID, req.CheckIn, req.CheckOut)
		if err == nil && level != "" {
			return level, "analyzer", true
		}
		if err != nil {
			log.Warn().Err(err).Int64("hotel_id", hotel.ID).Msg("demand analyzer failed, trying historical fallback")
		}
	}
	if c.bookings == nil {
		return "", "", false
	}
	total, years := 0, 0
	for back := 1; back <= 2; back++ {
		n, err := c.bookings.CountBookings(ctx,
			hotel.ID,
			req.CheckIn.AddDate(-back, 0, 0),
			req.CheckOut.AddDate(-back, 0, 0),
		)
		if err != nil {
			continue
		}
		total += n
		years++
	}
	if years == 0 {
		return "", "", false
	}
	return c.cfg.demandLevelFor(total / years), "historical", true
}

// Competition is a placeholder for a real competitor-price feed: a bounded
// stochastic multiplier derived from the star rating plus market noise,
// clamped to the configured interval.
func (c *Calculators) Competition(hotel domain.Hotel) domain.PricingFactor {
	base, ok := c.cfg.CompetitionByStars[hotel.Stars]
	if !ok {
		return neutral(domain.FactorCompetition, "star rating unknown")
	}
	f := base
	if c.noise != nil {
		f += c.noise() * c.cfg.CompetitionNoise
	}
	f = math.Max(c.cfg.CompetitionMin, math.Min(c.cfg.CompetitionMax, f))
	return domain.PricingFactor{
		Name:   domain.FactorCompetition,
		Factor: f,
		Note:   fmt.Sprintf("star heuristic for %s", hotel.Stars),
	}
}

func (c *Calculators) LengthOfStay(req domain.PricingRequest) domain.PricingFactor {
	nights := req.Nights()
	for _, d := range c.cfg.StayDiscounts {
		if nights >= d.MinNights {
			return domain.PricingFactor{
				Name:   domain.FactorLengthOfStay,
				Factor: d.Factor,
				Note:   fmt.Sprintf("%d-night stay discount", nights),
			}
		}
	}
	return domain.PricingFactor{Name: domain.FactorLengthOfStay, Factor: 1.0}
}

func (c *Calculators) Strategy(req domain.PricingRequest) domain.PricingFactor {
	m, ok := c.cfg.StrategyMultipliers[req.Strategy]
	if !ok {
		return neutral(domain.FactorStrategy, "unknown strategy")
	}
	return domain.PricingFactor{
		Name:   domain.FactorStrategy,
		Factor: m,
		Note:   string(req.Strategy),
	}
}
