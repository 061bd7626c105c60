package shared

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Config struct {
	AppEnv      string
	HTTPAddr    string
	MetricsAddr string

	// End-to-end bound on one HTTP request, cache misses included.
	HTTPRequestTimeout time.Duration
	MySQLDSN           string
	RedisAddr          string
	RedisDB            int
	RedisPass          string

	// Remote-tier calls never wait longer than this before falling back to
	// the local tier.
	RemoteCacheTimeout time.Duration

	// Per data-type TTLs (policy, overridable per deployment).
	PricingTTL      time.Duration
	OccupancyTTL    time.Duration
	DemandTTL       time.Duration
	HotelMetricsTTL time.Duration
	RulesTTL        time.Duration

	// Hard business limits on the adjusted price relative to base price.
	MaxIncreasePercent float64
	MaxDecreasePercent float64

	// Warmer.
	WarmOnStart    bool
	WarmSchedule   string // cron expression, empty disables the timer
	WarmDays       int    // tomorrow .. tomorrow+WarmDays-1
	WarmWorkers    int
	WarmRatePerSec int
}

func Load() Config {
	// best-effort: local dev keeps knobs in .env, prod relies on real env
	_ = godotenv.Load()

	atoi := func(k string, def int) int {
		if v := os.Getenv(k); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				return n
			}
		}
		return def
	}
	atof := func(k string, def float64) float64 {
		if v := os.Getenv(k); v != "" {
			if f, err := strconv.ParseFloat(v, 64); err == nil {
				return f
			}
		}
		return def
	}
	secs := func(k string, def int) time.Duration {
		return time.Duration(atoi(k, def)) * time.Second
	}

	c := Config{
		AppEnv:      env("APP_ENV", "prod"),
		HTTPAddr:    env("HTTP_ADDR", ":8080"),
		MetricsAddr: env("METRICS_ADDR", ":9100"),
		MySQLDSN:    env("MYSQL_DSN", "root:root@tcp(localhost:3306)/roomrate?parseTime=true&charset=utf8mb4,utf8&loc=UTC"),
		RedisAddr:   env("REDIS_ADDR", "localhost:6379"),
		RedisPass:   env("REDIS_PASSWORD", ""),
		RedisDB:     atoi("REDIS_DB", 0),

		HTTPRequestTimeout: secs("HTTP_REQUEST_TIMEOUT_SECONDS", 15),

		RemoteCacheTimeout: time.Duration(atoi("REMOTE_CACHE_TIMEOUT_MS", 250)) * time.Millisecond,

		PricingTTL:      secs("PRICING_TTL_SECONDS", 1800),
		OccupancyTTL:    secs("OCCUPANCY_TTL_SECONDS", 600),
		DemandTTL:       secs("DEMAND_TTL_SECONDS", 900),
		HotelMetricsTTL: secs("HOTEL_METRICS_TTL_SECONDS", 3600),
		RulesTTL:        secs("RULES_TTL_SECONDS", 21600),

		MaxIncreasePercent: atof("MAX_INCREASE_PERCENT", 50),
		MaxDecreasePercent: atof("MAX_DECREASE_PERCENT", 30),

		WarmOnStart:    env("WARM_ON_START", "true") == "true",
		WarmSchedule:   env("WARM_SCHEDULE", ""),
		WarmDays:       atoi("WARM_DAYS", 7),
		WarmWorkers:    atoi("WARM_WORKERS", 8),
		WarmRatePerSec: atoi("WARM_RATE_PER_SEC", 50),
	}
	if c.MaxIncreasePercent < 0 || c.MaxDecreasePercent < 0 || c.MaxDecreasePercent >= 100 {
		log.Warn().
			Float64("max_increase", c.MaxIncreasePercent).
			Float64("max_decrease", c.MaxDecreasePercent).
			Msg("unusable price bounds, falling back to defaults")
		c.MaxIncreasePercent, c.MaxDecreasePercent = 50, 30
	}
	return c
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
