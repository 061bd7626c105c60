package shared

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	c := Load()

	if c.HTTPAddr == "" || c.MySQLDSN == "" || c.RedisAddr == "" {
		t.Fatalf("missing connection defaults: %+v", c)
	}
	if c.PricingTTL != 30*time.Minute || c.RulesTTL != 6*time.Hour {
		t.Fatalf("unexpected TTL defaults: pricing=%v rules=%v", c.PricingTTL, c.RulesTTL)
	}
	if c.RemoteCacheTimeout != 250*time.Millisecond {
		t.Fatalf("unexpected remote timeout: %v", c.RemoteCacheTimeout)
	}
	if c.MaxIncreasePercent != 50 || c.MaxDecreasePercent != 30 {
		t.Fatalf("unexpected price bounds: +%v/-%v", c.MaxIncreasePercent, c.MaxDecreasePercent)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("PRICING_TTL_SECONDS", "60")
	t.Setenv("MAX_INCREASE_PERCENT", "25")
	t.Setenv("WARM_DAYS", "14")

	c := Load()
	if c.PricingTTL != time.Minute {
		t.Fatalf("PRICING_TTL_SECONDS ignored: %v", c.PricingTTL)
	}
	if c.MaxIncreasePercent != 25 {
		t.Fatalf("MAX_INCREASE_PERCENT ignored: %v", c.MaxIncreasePercent)
	}
	if c.WarmDays != 14 {
		t.Fatalf("WARM_DAYS ignored: %v", c.WarmDays)
	}
}

func TestLoadRejectsUnusablePriceBounds(t *testing.T) {
	t.Setenv("MAX_DECREASE_PERCENT", "150")

	c := Load()
	if c.MaxIncreasePercent != 50 || c.MaxDecreasePercent != 30 {
		t.Fatalf("bad bounds not reset: +%v/-%v", c.MaxIncreasePercent, c.MaxDecreasePercent)
	}
}
