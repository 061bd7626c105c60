package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog/log"

	"roomrate/internal/adapters/observability"
	"roomrate/internal/domain"
)

// Envelope wraps every cached payload with enough metadata to validate it
// before trusting it: a payload older than its type's TTL, or typed for a
// different data type, is a miss, never an error.
type Envelope struct {
	DataType     DataType        `json:"dataType"`
	CalculatedAt time.Time       `json:"calculatedAt"`
	TTLSeconds   int             `json:"ttlSeconds"`
	Data         json.RawMessage `json:"data"`
}

// Hybrid composes the remote (Redis) and local (in-process) tiers.
// Reads try remote first and fall back to local; writes go to remote
// best-effort and to local always, so a remote outage degrades to
// local-only behavior without surfacing errors to callers.
type Hybrid struct {
	remote  domain.CacheTier // nil disables the remote tier
	local   domain.CacheTier
	ttl     TTLPolicy
	timeout time.Duration
	now     func() time.Time
}

func NewHybrid(remote, local domain.CacheTier, ttl TTLPolicy, remoteTimeout time.Duration) *Hybrid {
	if ttl == nil {
		ttl = DefaultTTLPolicy()
	}
	if remoteTimeout <= 0 {
		remoteTimeout = 250 * time.Millisecond
	}
	return &Hybrid{remote: remote, local: local, ttl: ttl, timeout: remoteTimeout, now: time.Now}
}

func (h *Hybrid) read(ctx context.Context, key string, dt DataType, dst any, valid func() bool) (string, bool) {
	if h.remote != nil {
		rctx, cancel := context.WithTimeout(ctx, h.timeout)
		ok, err := h.tierRead(rctx, h.remote, key, dt, dst, valid)
		cancel()
		if err != nil {
			log.Warn().Err(err).Str("key", key).Str("tier", h.remote.Name()).Msg("remote cache read failed, trying local")
		} else if ok {
			return h.remote.Name(), true
		}
	}
	if ok, err := h.tierRead(ctx, h.local, key, dt, dst, valid); err == nil && ok {
		return h.local.Name(), true
	}
	return "", false
}

func (h *Hybrid) tierRead(ctx context.Context, tier domain.CacheTier, key string, dt DataType, dst any, valid func() bool) (bool, error) {
	var env Envelope
	ok, err := tier.Get(ctx, key, &env)
	if err != nil || !ok {
		return false, err
	}
	if env.DataType != dt {
		return false, nil
	}
	maxAge := h.ttl.For(dt)
	if env.TTLSeconds > 0 {
		if d := time.Duration(env.TTLSeconds) * time.Second; d < maxAge {
			maxAge = d
		}
	}
	if h.now().Sub(env.CalculatedAt) > maxAge {
		observability.ObserveCache(tier.Name(), "stale")
		return false, nil
	}
	if err := json.Unmarshal(env.Data, dst); err != nil {
		return false, nil
	}
	if valid != nil && !valid() {
		observability.ObserveCache(tier.Name(), "invalid")
		return false, nil
	}
	return true, nil
}

func (h *Hybrid) write(ctx context.Context, key string, dt DataType, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("key", key).Msg("cache payload marshal failed")
		return
	}
	ttl := h.ttl.For(dt)
	env := Envelope{DataType: dt, CalculatedAt: h.now(), TTLSeconds: int(ttl.Seconds()), Data: b}

	if h.remote != nil {
		rctx, cancel := context.WithTimeout(ctx, h.timeout)
		if err := h.remote.Set(rctx, key, env, ttl); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("remote cache write failed, local tier still holds the entry")
		}
		cancel()
	}
	if err := h.local.Set(ctx, key, env, ttl); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("local cache write failed")
	}
}

// ---- typed read/write, one pair per data type ----

func (h *Hybrid) GetPricing(ctx context.Context, hotelID int64, rt domain.RoomType, checkIn time.Time, s domain.Strategy) (domain.PricingResult, string, bool) {
	var res domain.PricingResult
	src, ok := h.read(ctx, PricingKey(hotelID, rt, checkIn, s), DataPricing, &res, func() bool {
		return res.BasePrice > 0 && res.DynamicPrice > 0 && len(res.Factors) > 0
	})
	return res, src, ok
}

func (h *Hybrid) SetPricing(ctx context.Context, res domain.PricingResult) {
	h.write(ctx, PricingKey(res.HotelID, res.RoomType, res.CheckIn, res.Strategy), DataPricing, res)
}

func (h *Hybrid) GetOccupancy(ctx context.Context, hotelID int64, rt domain.RoomType, checkIn time.Time) (domain.OccupancySnapshot, bool) {
	var snap domain.OccupancySnapshot
	date := checkIn.Format(dateLayout)
	_, ok := h.read(ctx, OccupancyKey(hotelID, rt, checkIn), DataOccupancy, &snap, func() bool {
		return snap.Factor > 0 && snap.CalculatedFor == date
	})
	return snap, ok
}

func (h *Hybrid) SetOccupancy(ctx context.Context, hotelID int64, rt domain.RoomType, checkIn time.Time, snap domain.OccupancySnapshot) {
	h.write(ctx, OccupancyKey(hotelID, rt, checkIn), DataOccupancy, snap)
}

func (h *Hybrid) GetDemand(ctx context.Context, hotelID int64, checkIn time.Time) (domain.DemandSnapshot, bool) {
	var snap domain.DemandSnapshot
	_, ok := h.read(ctx, DemandKey(hotelID, checkIn), DataDemand, &snap, func() bool {
		return snap.Factor > 0 && snap.Level != ""
	})
	return snap, ok
}

func (h *Hybrid) SetDemand(ctx context.Context, hotelID int64, checkIn time.Time, snap domain.DemandSnapshot) {
	h.write(ctx, DemandKey(hotelID, checkIn), DataDemand, snap)
}

func (h *Hybrid) GetHotel(ctx context.Context, hotelID int64) (domain.Hotel, bool) {
	var hot domain.Hotel
	_, ok := h.read(ctx, HotelMetricsKey(hotelID), DataHotelMetrics, &hot, func() bool {
		return hot.ID == hotelID
	})
	return hot, ok
}

func (h *Hybrid) SetHotel(ctx context.Context, hot domain.Hotel) {
	h.write(ctx, HotelMetricsKey(hot.ID), DataHotelMetrics, hot)
}

func (h *Hybrid) GetRules(ctx context.Context, hotelID int64) ([]domain.PricingRule, bool) {
	var rules []domain.PricingRule
	_, ok := h.read(ctx, RulesKey(hotelID), DataRules, &rules, nil)
	return rules, ok
}

func (h *Hybrid) SetRules(ctx context.Context, hotelID int64, rules []domain.PricingRule) {
	if rules == nil {
		rules = []domain.PricingRule{} // "no rules" is a cacheable answer
	}
	h.write(ctx, RulesKey(hotelID), DataRules, rules)
}

// ---- invalidation ----

// evict applies best-effort prefix eviction across both tiers: a failing
// tier never blocks the other, partial eviction is logged and tolerated.
func (h *Hybrid) evict(ctx context.Context, prefixes ...string) int {
	total := 0
	for _, p := range prefixes {
		if h.remote != nil {
			rctx, cancel := context.WithTimeout(ctx, h.timeout)
			n, err := h.remote.DelPrefix(rctx, p)
			cancel()
			if err != nil {
				log.Warn().Err(err).Str("prefix", p).Msg("remote eviction incomplete")
			}
			total += n
		}
		n, err := h.local.DelPrefix(ctx, p)
		if err != nil {
			log.Warn().Err(err).Str("prefix", p).Msg("local eviction incomplete")
		}
		total += n
	}
	return total
}

func (h *Hybrid) delKeys(ctx context.Context, keys ...string) {
	if h.remote != nil {
		rctx, cancel := context.WithTimeout(ctx, h.timeout)
		if err := h.remote.Del(rctx, keys...); err != nil {
			log.Warn().Err(err).Strs("keys", keys).Msg("remote eviction incomplete")
		}
		cancel()
	}
	if err := h.local.Del(ctx, keys...); err != nil {
		log.Warn().Err(err).Strs("keys", keys).Msg("local eviction incomplete")
	}
}

// InvalidateHotel evicts all pricing, occupancy and demand entries for one
// hotel across both tiers.
func (h *Hybrid) InvalidateHotel(ctx context.Context, hotelID int64) int {
	n := h.evict(ctx,
		HotelPrefix(DataPricing, hotelID),
		HotelPrefix(DataOccupancy, hotelID),
		HotelPrefix(DataDemand, hotelID),
	)
	h.delKeys(ctx, HotelMetricsKey(hotelID))
	return n
}

// InvalidateHotelRoom narrows eviction to one room type; demand entries are
// hotel-wide so they are evicted regardless.
func (h *Hybrid) InvalidateHotelRoom(ctx context.Context, hotelID int64, rt domain.RoomType) int {
	return h.evict(ctx,
		HotelRoomPrefix(DataPricing, hotelID, rt),
		HotelRoomPrefix(DataOccupancy, hotelID, rt),
		HotelPrefix(DataDemand, hotelID),
	)
}

// InvalidatePricingRoom evicts only pricing entries for one hotel+room type
// (room price updated: occupancy and demand stay valid).
func (h *Hybrid) InvalidatePricingRoom(ctx context.Context, hotelID int64, rt domain.RoomType) int {
	n := h.evict(ctx, HotelRoomPrefix(DataPricing, hotelID, rt))
	h.delKeys(ctx, HotelMetricsKey(hotelID)) // base rate lives in hotel metrics
	return n
}

// InvalidateRules drops the cached rule set (hotel-wide, or global with
// hotelID 0) plus every pricing entry that may have embedded the old rules.
// Per-hotel rule sets are stored merged with the global rules, so a global
// change sweeps every rules_* key, not just rules_global.
func (h *Hybrid) InvalidateRules(ctx context.Context, hotelID int64) int {
	if hotelID == 0 {
		return h.evict(ctx,
			string(DataRules)+"_",
			string(DataPricing)+"_",
		)
	}
	h.delKeys(ctx, RulesKey(hotelID))
	return h.evict(ctx, HotelPrefix(DataPricing, hotelID))
}
