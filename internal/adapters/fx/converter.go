// Package fx is a static-table currency converter. The engine always prices
// in EUR; conversion is a display-time post-processing step, so a fixed
// table is good enough until a real rate feed is wired in.
package fx

import (
	"context"
	"fmt"
	"strings"
)

type Converter struct {
	// EUR per one unit of currency.
	rates map[string]float64
}

func New() *Converter {
	return &Converter{rates: map[string]float64{
		"EUR": 1.0,
		"USD": 0.92,
		"GBP": 1.17,
		"CHF": 1.06,
		"SEK": 0.088,
	}}
}

func (c *Converter) Convert(_ context.Context, amount float64, from, to string) (float64, error) {
	from, to = strings.ToUpper(from), strings.ToUpper(to)
	if from == to {
		return amount, nil
	}
	rf, ok := c.rates[from]
	if !ok {
		return 0, fmt.Errorf("fx: unknown currency %q", from)
	}
	rt, ok := c.rates[to]
	if !ok {
		return 0, fmt.Errorf("fx: unknown currency %q", to)
	}
	return amount * rf / rt, nil
}
