package pricing

import "roomrate/internal/domain"

// aggregate combines the named factors into one total factor using the
// strategy's weight table, renormalizing over the factors that are actually
// present, then clamps the result to the hard business limits
// [1 - maxDecrease%, 1 + maxIncrease%]. The clamp is never bypassed.
func (c Config) aggregate(factors []domain.PricingFactor, strategy domain.Strategy) float64 {
	weights, ok := c.Weights[strategy]
	if !ok {
		weights = c.Weights[domain.StrategyModerate]
	}

	var weighted, present float64
	for _, f := range factors {
		w, ok := weights[f.Name]
		if !ok || f.Factor <= 0 {
			continue
		}
		weighted += w * f.Factor
		present += w
	}
	total := 1.0
	if present > 0 {
		total = weighted / present
	}
	return c.clampFactor(total)
}

func (c Config) clampFactor(total float64) float64 {
	lo := 1 - c.MaxDecreasePercent/100
	hi := 1 + c.MaxIncreasePercent/100
	if total < lo {
		return lo
	}
	if total > hi {
		return hi
	}
	return total
}

// clampPrice re-clamps the synthesized price against the base-price bounds;
// a bounds violation is silently corrected, never reported as an error.
func (c Config) clampPrice(price, base float64) float64 {
	lo := base * (1 - c.MaxDecreasePercent/100)
	hi := base * (1 + c.MaxIncreasePercent/100)
	if price < lo {
		return lo
	}
	if price > hi {
		return hi
	}
	return price
}
