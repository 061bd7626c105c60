package domain

import "errors"

// Input errors surface to the caller immediately and are never cached.
// Dependency failures degrade to neutral factors inside the calculators;
// only a missing base price is fatal to a computation.
var (
	ErrInvalidRequest       = errors.New("pricing: invalid request")
	ErrHotelNotFound        = errors.New("pricing: hotel not found")
	ErrBasePriceUnavailable = errors.New("pricing: base price unavailable")
)
