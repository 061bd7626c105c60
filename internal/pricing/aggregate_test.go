package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"roomrate/internal/domain"
)

func uniformFactors(v float64) []domain.PricingFactor {
	names := []string{
		domain.FactorOccupancy, domain.FactorSeasonal, domain.FactorLeadTime,
		domain.FactorDayOfWeek, domain.FactorDemand, domain.FactorCompetition,
		domain.FactorStrategy, domain.FactorLengthOfStay,
	}
	out := make([]domain.PricingFactor, len(names))
	for i, n := range names {
		out[i] = domain.PricingFactor{Name: n, Factor: v}
	}
	return out
}

func TestAggregateNeutralFactorsYieldOne(t *testing.T) {
	cfg := DefaultConfig()
	for _, s := range []domain.Strategy{domain.StrategyConservative, domain.StrategyModerate, domain.StrategyAggressive} {
		assert.InDeltaf(t, 1.0, cfg.aggregate(uniformFactors(1.0), s), 1e-9, "strategy %s", s)
	}
}

func TestAggregateWeightsShiftTheResult(t *testing.T) {
	cfg := DefaultConfig()

	// an occupancy spike moves CONSERVATIVE (weight .40) more than
	// AGGRESSIVE (weight .20)
	factors := uniformFactors(1.0)
	factors[0].Factor = 1.5

	cons := cfg.aggregate(factors, domain.StrategyConservative)
	aggr := cfg.aggregate(factors, domain.StrategyAggressive)
	assert.Greater(t, cons, aggr)
	assert.InDelta(t, 1.0+0.40*0.5, cons, 1e-9)
	assert.InDelta(t, 1.0+0.20*0.5, aggr, 1e-9)
}

func TestAggregateClampsToBusinessLimits(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 1.5, cfg.aggregate(uniformFactors(10), domain.StrategyModerate))
	assert.Equal(t, 0.7, cfg.aggregate(uniformFactors(0.01), domain.StrategyModerate))
}

func TestAggregateRenormalizesOverAbsentFactors(t *testing.T) {
	cfg := DefaultConfig()

	// only two factors present; weights renormalize so a uniform 1.2
	// still aggregates to exactly 1.2
	factors := []domain.PricingFactor{
		{Name: domain.FactorOccupancy, Factor: 1.2},
		{Name: domain.FactorSeasonal, Factor: 1.2},
	}
	assert.InDelta(t, 1.2, cfg.aggregate(factors, domain.StrategyModerate), 1e-9)
}

func TestAggregateNoFactorsIsNeutral(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, 1.0, cfg.aggregate(nil, domain.StrategyModerate))
}

func TestClampPrice(t *testing.T) {
	cfg := DefaultConfig() // +50% / -30%
	assert.Equal(t, 150.0, cfg.clampPrice(400, 100))
	assert.Equal(t, 70.0, cfg.clampPrice(10, 100))
	assert.Equal(t, 120.0, cfg.clampPrice(120, 100))
}

func TestDefaultConfigIsValid(t *testing.T) {
	require.NoError(t, DefaultConfig().Validate())
}

func TestConfigValidateRejectsBadWeights(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Weights[domain.StrategyModerate][domain.FactorOccupancy] = 0.95
	assert.Error(t, cfg.Validate())
}

func TestConfigValidateRejectsNonIncreasingSeasons(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SeasonMultipliers[domain.SeasonPeak] = cfg.SeasonMultipliers[domain.SeasonHigh]
	assert.Error(t, cfg.Validate())
}

func TestRoomAndStarMultipliersAreMonotonic(t *testing.T) {
	cfg := DefaultConfig()

	rooms := []domain.RoomType{domain.RoomSimple, domain.RoomDouble, domain.RoomDoubleComfort, domain.RoomSuite}
	for i := 1; i < len(rooms); i++ {
		assert.Less(t, cfg.RoomMultipliers[rooms[i-1]], cfg.RoomMultipliers[rooms[i]])
	}

	stars := []domain.StarCategory{domain.OneStar, domain.TwoStar, domain.ThreeStar, domain.FourStar, domain.FiveStar}
	for i := 1; i < len(stars); i++ {
		assert.LessOrEqual(t, cfg.StarBase[stars[i-1]], cfg.StarBase[stars[i]])
	}
	assert.Less(t, cfg.StarBase[domain.OneStar], cfg.StarBase[domain.FiveStar])
}
