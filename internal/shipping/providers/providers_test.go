package providers_test

import (
	"context"
	"testing"

	"shop/internal/shipping"
	"shop/internal/shipping/providers"

	"github.com/stretchr/testify/assert"
)

func TestFlatRate_TwoQuotes(t *testing.T) {
	p := providers.NewFlatRate(500, 1200)

	quotes, err := p.GetQuotes(context.Background(), shipping.Context{})

	assert.NoError(t, err)
	assert.Len(t, quotes, 2)
	assert.Equal(t, "flat_rate.standard", quotes[0].Code)
	assert.Equal(t, int64(500), quotes[0].Price)
	assert.Equal(t, "flat_rate.express", quotes[1].Code)
	assert.Equal(t, int64(1200), quotes[1].Price)
}

func TestTieredRate_PicksMatchingTier(t *testing.T) {
	p := providers.NewTieredRate([]providers.Tier{
		{MaxItems: 3, Fee: 400},
		{MaxItems: 10, Fee: 700},
	})

	c := shipping.Context{Items: []shipping.ContextItem{{Quantity: 2}, {Quantity: 3}}}

	quotes, err := p.GetQuotes(context.Background(), c)

	assert.NoError(t, err)
	assert.Len(t, quotes, 1)
	assert.Equal(t, int64(700), quotes[0].Price)
}

func TestTieredRate_NoQuoteAboveLastTier(t *testing.T) {
	p := providers.NewTieredRate([]providers.Tier{{MaxItems: 3, Fee: 400}})

	c := shipping.Context{Items: []shipping.ContextItem{{Quantity: 4}}}

	quotes, err := p.GetQuotes(context.Background(), c)

	assert.NoError(t, err)
	assert.Empty(t, quotes)
}

func TestFreeShipping_BelowThreshold(t *testing.T) {
	p := providers.NewFreeShipping(5000)

	quotes, err := p.GetQuotes(context.Background(), shipping.Context{Subtotal: 4999})

	assert.NoError(t, err)
	assert.Empty(t, quotes)
}

func TestFreeShipping_AtThreshold(t *testing.T) {
	p := providers.NewFreeShipping(5000)

	quotes, err := p.GetQuotes(context.Background(), shipping.Context{Subtotal: 5000})

	assert.NoError(t, err)
	assert.Len(t, quotes, 1)
	assert.Equal(t, int64(0), quotes[0].Price)
}
