package fx

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvert(t *testing.T) {
	c := New()
	ctx := context.Background()

	got, err := c.Convert(ctx, 100, "EUR", "USD")
	require.NoError(t, err)
	assert.InDelta(t, 100/0.92, got, 0.0001)

	// same currency is a no-op, case-insensitively
	got, err = c.Convert(ctx, 42.5, "usd", "USD")
	require.NoError(t, err)
	assert.Equal(t, 42.5, got)

	// round-trip comes back within float tolerance
	usd, err := c.Convert(ctx, 280, "EUR", "USD")
	require.NoError(t, err)
	eur, err := c.Convert(ctx, usd, "USD", "EUR")
	require.NoError(t, err)
	assert.InDelta(t, 280, eur, 0.0001)
}

func TestConvertUnknownCurrency(t *testing.T) {
	c := New()

	_, err := c.Convert(context.Background(), 10, "EUR", "XXX")
	assert.Error(t, err)
	_, err = c.Convert(context.Background(), 10, "XXX", "EUR")
	assert.Error(t, err)
}
