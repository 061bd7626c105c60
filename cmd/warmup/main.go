package main

import (
	"context"
	"database/sql"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"

	"roomrate/internal/adapters/eventbus"
	"roomrate/internal/adapters/observability"
	redisad "roomrate/internal/adapters/redis"
	"roomrate/internal/cache"
	"roomrate/internal/pricing"
	"roomrate/internal/shared"
	mysqlrepo "roomrate/internal/storage/mysql"
)

// warmup primes both cache tiers for every yield-managed hotel and exits.
// Run it after deploys or rule imports so the first requests don't pay the
// cold-compute cost.
func main() {
	ctx := context.Background()
	cfg := shared.Load()

	log.Logger = observability.NewLogger(cfg.AppEnv)

	log.Info().
		Int("days", cfg.WarmDays).
		Int("workers", cfg.WarmWorkers).
		Msg("warmup starting")

	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	if err := db.Ping(); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}
	log.Info().Msg("db ping ok")

	repo := mysqlrepo.New(db)

	remote := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	if err := remote.Ping(ctx); err != nil {
		log.Fatal().Err(err).Str("addr", cfg.RedisAddr).Msg("redis unreachable; a warm run without the remote tier is pointless")
	}
	hybrid := cache.NewHybrid(remote, cache.NewLocal(), cache.TTLPolicy{
		cache.DataPricing:      cfg.PricingTTL,
		cache.DataOccupancy:    cfg.OccupancyTTL,
		cache.DataDemand:       cfg.DemandTTL,
		cache.DataHotelMetrics: cfg.HotelMetricsTTL,
		cache.DataRules:        cfg.RulesTTL,
	}, cfg.RemoteCacheTimeout)

	pcfg := pricing.DefaultConfig()
	pcfg.MaxIncreasePercent = cfg.MaxIncreasePercent
	pcfg.MaxDecreasePercent = cfg.MaxDecreasePercent
	engine, err := pricing.NewEngine(pcfg, pricing.Deps{
		Hotels:   repo,
		Bookings: repo,
		Rules:    repo,
		Cache:    hybrid,
		Bus:      eventbus.New(),
	})
	if err != nil {
		log.Fatal().Err(err).Msg("engine construction failed")
	}

	warmer := cache.NewWarmer(repo, engine, cfg.WarmDays, cfg.WarmWorkers, cfg.WarmRatePerSec)
	stats, err := warmer.WarmOnce(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("warmup failed")
	}
	log.Info().
		Int("hotels", stats.Hotels).
		Int("requests", stats.Requests).
		Int("failures", stats.Failures).
		Msg("warmup completed")
}
