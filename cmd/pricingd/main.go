package main

import (
	"context"
	"database/sql"
	"net/http"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"

	"roomrate/internal/adapters/eventbus"
	"roomrate/internal/adapters/fx"
	server "roomrate/internal/adapters/http_server"
	"roomrate/internal/adapters/observability"
	redisad "roomrate/internal/adapters/redis"
	"roomrate/internal/cache"
	"roomrate/internal/pricing"
	"roomrate/internal/shared"
	mysqlrepo "roomrate/internal/storage/mysql"
)

func main() {
	ctx := context.Background()
	cfg := shared.Load()

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv)

	observability.Serve()

	// db
	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	if err := db.Ping(); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}
	log.Info().Msg("database connection ok")

	repo := mysqlrepo.New(db)

	// cache tiers: Redis is optional at runtime, local always serves
	remote := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	if err := remote.Ping(ctx); err != nil {
		log.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("redis unreachable, running on local tier until it recovers")
	}
	local := cache.NewLocal()
	local.StartJanitor(ctx, cfg.OccupancyTTL)
	hybrid := cache.NewHybrid(remote, local, cache.TTLPolicy{
		cache.DataPricing:      cfg.PricingTTL,
		cache.DataOccupancy:    cfg.OccupancyTTL,
		cache.DataDemand:       cfg.DemandTTL,
		cache.DataHotelMetrics: cfg.HotelMetricsTTL,
		cache.DataRules:        cfg.RulesTTL,
	}, cfg.RemoteCacheTimeout)

	bus := eventbus.New()

	pcfg := pricing.DefaultConfig()
	pcfg.MaxIncreasePercent = cfg.MaxIncreasePercent
	pcfg.MaxDecreasePercent = cfg.MaxDecreasePercent
	engine, err := pricing.NewEngine(pcfg, pricing.Deps{
		Hotels:   repo,
		Bookings: repo,
		Rules:    repo,
		Cache:    hybrid,
		Bus:      bus,
		FX:       fx.New(),
	})
	if err != nil {
		log.Fatal().Err(err).Msg("engine construction failed")
	}

	// background workers: invalidation and warming never block requests
	go cache.NewInvalidator(hybrid, bus, repo).Run(ctx)

	warmer := cache.NewWarmer(repo, engine, cfg.WarmDays, cfg.WarmWorkers, cfg.WarmRatePerSec)
	if cfg.WarmOnStart {
		go func() {
			if _, err := warmer.WarmOnce(ctx); err != nil {
				log.Error().Err(err).Msg("startup warm-up failed")
			}
		}()
	}
	if _, err := warmer.Start(ctx, cfg.WarmSchedule); err != nil {
		log.Fatal().Err(err).Str("schedule", cfg.WarmSchedule).Msg("bad warm schedule")
	}

	// http
	srv := server.New(cfg.HTTPRequestTimeout)
	reg := observability.InitRegistry()
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(&server.Handlers{Pricing: engine})

	log.Info().Str("addr", cfg.HTTPAddr).Msg("pricing API listening")
	httpSrv := &http.Server{Addr: cfg.HTTPAddr, Handler: srv.Mux()}

	if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("http server failed")
	}
}
