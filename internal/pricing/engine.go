package pricing

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"roomrate/internal/adapters/observability"
	"roomrate/internal/cache"
	"roomrate/internal/domain"
)

const baseCurrency = "EUR"

const sourceCalculated = "calculated"

// Engine is the single pricing entry point other subsystems call. It is
// safe for concurrent use; duplicate concurrent computations for the same
// key are tolerated (last writer wins on the cache write) rather than
// serialized behind a lock.
type Engine struct {
	cfg    Config
	hotels domain.HotelStore
	rules  domain.RuleStore
	calc   *Calculators
	cache  *cache.Hybrid
	bus    domain.EventBus          // optional
	fx     domain.CurrencyConverter // optional
	now    func() time.Time
}

// Deps carries the engine's collaborators; Hotels is the only mandatory
// one, everything else degrades gracefully when absent.
type Deps struct {
	Hotels   domain.HotelStore
	Bookings domain.BookingStore
	Rules    domain.RuleStore
	Demand   domain.DemandAnalyzer
	Cache    *cache.Hybrid
	Bus      domain.EventBus
	FX       domain.CurrencyConverter
	Noise    func() float64 // uniform in [-1,1]; nil gets a seeded default
	Now      func() time.Time
}

func NewEngine(cfg Config, d Deps) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if d.Hotels == nil {
		return nil, fmt.Errorf("pricing: hotel store is required")
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.Noise == nil {
		rng := rand.New(rand.NewSource(d.Now().UnixNano()))
		d.Noise = func() float64 { return rng.Float64()*2 - 1 }
	}
	return &Engine{
		cfg:    cfg,
		hotels: d.Hotels,
		rules:  d.Rules,
		calc:   NewCalculators(cfg, d.Bookings, d.Demand, d.Cache, d.Noise, d.Now),
		cache:  d.Cache,
		bus:    d.Bus,
		fx:     d.FX,
		now:    d.Now,
	}, nil
}

// CalculatePrice computes (or serves from cache) the adjusted price for a
// stay. Invalid input fails fast; dependency trouble degrades to neutral
// factors; only a missing base price is fatal.
func (e *Engine) CalculatePrice(ctx context.Context, req domain.PricingRequest) (domain.PricingResult, error) {
	start := e.now()
	req.Normalize()
	if err := req.Validate(); err != nil {
		e.publishFailure(ctx, req, err)
		observability.ObservePricing(string(req.Strategy), "error", e.now().Sub(start))
		return domain.PricingResult{}, err
	}

	if e.cache != nil {
		if res, src, ok := e.cache.GetPricing(ctx, req.HotelID, req.RoomType, req.CheckIn, req.Strategy); ok {
			res.CacheSource = src
			observability.ObservePricing(string(req.Strategy), src, e.now().Sub(start))
			return e.converted(ctx, res, req.Currency), nil
		}
	}

	res, err := e.compute(ctx, req)
	if err != nil {
		e.publishFailure(ctx, req, err)
		observability.ObservePricing(string(req.Strategy), "error", e.now().Sub(start))
		return domain.PricingResult{}, err
	}

	if e.cache != nil {
		e.cache.SetPricing(ctx, res) // cached at most once per compute
	}
	e.publish(ctx, domain.Event{
		ID:       uuid.NewString(),
		Topic:    domain.TopicPriceCalculated,
		HotelID:  req.HotelID,
		RoomType: req.RoomType,
		At:       e.now(),
		Payload: map[string]any{
			"dynamicPrice": res.DynamicPrice,
			"totalPrice":   res.TotalPrice,
			"confidence":   res.Confidence,
			"strategy":     string(req.Strategy),
		},
	})
	observability.ObservePricing(string(req.Strategy), sourceCalculated, e.now().Sub(start))
	return e.converted(ctx, res, req.Currency), nil
}

func (e *Engine) compute(ctx context.Context, req domain.PricingRequest) (domain.PricingResult, error) {
	hotel, err := e.loadHotel(ctx, req.HotelID)
	if err != nil {
		return domain.PricingResult{}, err
	}

	basePrice := hotel.BaseRate * e.cfg.RoomMultipliers[req.RoomType] * e.starBase(hotel.Stars)
	if basePrice <= 0 || math.IsNaN(basePrice) || math.IsInf(basePrice, 0) {
		return domain.PricingResult{}, fmt.Errorf("%w: hotel %d has no usable base rate", domain.ErrBasePriceUnavailable, req.HotelID)
	}

	factors, sig := e.calc.All(ctx, hotel, req)
	totalFactor := e.cfg.aggregate(factors, req.Strategy)

	ruleOut := e.cfg.EvaluateRules(e.loadRules(ctx, req.HotelID), RuleContext{
		RoomType:      req.RoomType,
		CheckIn:       req.CheckIn,
		Now:           e.now(),
		OccupancyRate: sig.OccupancyRate,
		Season:        sig.CheckInSeason,
	})

	dynamic := round2(e.cfg.clampPrice(basePrice*totalFactor*ruleOut.Factor, basePrice))
	nights := req.Nights()
	daily := e.dailyPrices(dynamic, hotel, req)
	total := round2(sum(daily))

	res := domain.PricingResult{
		HotelID:        req.HotelID,
		RoomType:       req.RoomType,
		CheckIn:        req.CheckIn,
		CheckOut:       req.CheckOut,
		Strategy:       req.Strategy,
		Currency:       baseCurrency,
		BasePrice:      round2(basePrice),
		DynamicPrice:   dynamic,
		TotalPrice:     total,
		Nights:         nights,
		DailyPrices:    daily,
		SeasonsSummary: e.seasonsSummary(hotel, req),
		Factors:        factors,
		RulesApplied:   ruleOut.Applied,
		Confidence:     confidence(factors),
		CalculatedAt:   e.now(),
		CacheSource:    sourceCalculated,
	}
	return res, nil
}

// loadHotel reads hotel metrics through the cache (60 min TTL by default).
func (e *Engine) loadHotel(ctx context.Context, hotelID int64) (domain.Hotel, error) {
	if e.cache != nil {
		if hotel, ok := e.cache.GetHotel(ctx, hotelID); ok {
			return hotel, nil
		}
	}
	hotel, err := e.hotels.GetHotel(ctx, hotelID)
	if err != nil {
		return domain.Hotel{}, fmt.Errorf("%w: %v", domain.ErrHotelNotFound, err)
	}
	if e.cache != nil {
		e.cache.SetHotel(ctx, hotel)
	}
	return hotel, nil
}

// loadRules reads the rule set through the cache (6 h TTL by default).
// A failing rule store degrades to "no rules", never to a failed price.
func (e *Engine) loadRules(ctx context.Context, hotelID int64) []domain.PricingRule {
	if e.rules == nil {
		return nil
	}
	if e.cache != nil {
		if rules, ok := e.cache.GetRules(ctx, hotelID); ok {
			return rules
		}
	}
	rules, err := e.rules.ActiveRules(ctx, hotelID)
	if err != nil {
		log.Warn().Err(err).Int64("hotel_id", hotelID).Msg("rule load failed, pricing without rules")
		return nil
	}
	if e.cache != nil {
		e.cache.SetRules(ctx, hotelID, rules)
	}
	return rules
}

func (e *Engine) starBase(s domain.StarCategory) float64 {
	if m, ok := e.cfg.StarBase[s]; ok {
		return m
	}
	return 1.0
}

// dailyPrices spreads the stay total over the nights proportionally to each
// night's day-of-week and season weight, so a Saturday in August costs more
// than the Tuesday of the same stay. The sum equals dynamic × nights up to
// cent rounding, corrected on the last night.
func (e *Engine) dailyPrices(dynamic float64, hotel domain.Hotel, req domain.PricingRequest) []float64 {
	nights := req.Nights()
	weights := make([]float64, nights)
	var wsum float64
	for n := 0; n < nights; n++ {
		night := req.CheckIn.AddDate(0, 0, n)
		w := e.cfg.SeasonMultipliers[e.cfg.SeasonOf(night, hotel)]
		if m, ok := e.cfg.DayOfWeek[night.Weekday()]; ok {
			w *= m
		}
		weights[n] = w
		wsum += w
	}

	total := round2(dynamic * float64(nights))
	prices := make([]float64, nights)
	var allocated float64
	for n := 0; n < nights-1; n++ {
		p := round2(total * weights[n] / wsum)
		prices[n] = p
		allocated += p
	}
	prices[nights-1] = round2(total - allocated)
	return prices
}

// seasonsSummary reports the share of nights per season as integer
// percentages summing to exactly 100 (largest remainder rounding).
func (e *Engine) seasonsSummary(hotel domain.Hotel, req domain.PricingRequest) map[domain.Season]int {
	nights := req.Nights()
	counts := map[domain.Season]int{}
	for n := 0; n < nights; n++ {
		counts[e.cfg.SeasonOf(req.CheckIn.AddDate(0, 0, n), hotel)]++
	}

	type share struct {
		season    domain.Season
		floor     int
		remainder float64
	}
	shares := make([]share, 0, len(counts))
	floorSum := 0
	for s, c := range counts {
		exact := float64(c) * 100 / float64(nights)
		f := int(exact)
		shares = append(shares, share{season: s, floor: f, remainder: exact - float64(f)})
		floorSum += f
	}
	sort.Slice(shares, func(i, j int) bool {
		if shares[i].remainder != shares[j].remainder {
			return shares[i].remainder > shares[j].remainder
		}
		return shares[i].season < shares[j].season
	})
	out := make(map[domain.Season]int, len(shares))
	left := 100 - floorSum
	for i, sh := range shares {
		p := sh.floor
		if i < left {
			p++
		}
		out[sh.season] = p
	}
	return out
}

// confidence starts at 100 and is penalized for missing signals. It is
// diagnostic only and never gates whether a price is returned.
func confidence(factors []domain.PricingFactor) int {
	score := 100
	for _, f := range factors {
		if !f.Missing {
			continue
		}
		switch f.Name {
		case domain.FactorDemand:
			score -= 20
		case domain.FactorCompetition:
			score -= 15
		case domain.FactorOccupancy:
			score -= 25
		default:
			score -= 5
		}
	}
	if score < 0 {
		score = 0
	}
	return score
}

// converted applies the display currency to a copy of the result. Cached
// values always stay in the base currency; a converter failure degrades to
// returning the base-currency price.
func (e *Engine) converted(ctx context.Context, res domain.PricingResult, currency string) domain.PricingResult {
	if currency == "" || currency == baseCurrency || e.fx == nil {
		return res
	}
	conv := func(v float64) (float64, error) { return e.fx.Convert(ctx, v, baseCurrency, currency) }

	base, err := conv(res.BasePrice)
	if err != nil {
		log.Warn().Err(err).Str("currency", currency).Msg("currency conversion failed, returning base currency")
		return res
	}
	dynamic, _ := conv(res.DynamicPrice)
	total, _ := conv(res.TotalPrice)
	daily := make([]float64, len(res.DailyPrices))
	for i, p := range res.DailyPrices {
		daily[i], _ = conv(p)
	}

	res.Currency = currency
	res.BasePrice = round2(base)
	res.DynamicPrice = round2(dynamic)
	res.TotalPrice = round2(total)
	res.DailyPrices = daily
	return res
}

func (e *Engine) publish(ctx context.Context, evt domain.Event) {
	if e.bus != nil {
		e.bus.Publish(ctx, evt)
	}
}

func (e *Engine) publishFailure(ctx context.Context, req domain.PricingRequest, err error) {
	e.publish(ctx, domain.Event{
		ID:       uuid.NewString(),
		Topic:    domain.TopicPriceCalcFailed,
		HotelID:  req.HotelID,
		RoomType: req.RoomType,
		At:       e.now(),
		Payload:  map[string]any{"error": err.Error()},
	})
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }

func sum(vs []float64) float64 {
	var s float64
	for _, v := range vs {
		s += v
	}
	return s
}
