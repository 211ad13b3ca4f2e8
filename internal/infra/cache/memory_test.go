package cache_test

import (
	"context"
	"testing"
	"time"

	"shop/internal/infra/cache"
	"shop/internal/shipping"

	"github.com/stretchr/testify/assert"
)

var sampleMethods = []shipping.MethodResult{
	{
		ProviderCode: "flat_rate",
		ProviderName: "Flat Rate",
		Quotes: []shipping.Quote{
			{Code: "flat_rate.standard", Name: "Standard Shipping", Price: 500, EstimatedDays: 5},
		},
	},
}

func TestMemoryQuoteCache_SetGet(t *testing.T) {
	c := cache.NewMemoryQuoteCache(time.Minute)
	ctx := context.Background()

	assert.NoError(t, c.Set(ctx, 10, 5, sampleMethods))

	got, err := c.Get(ctx, 10, 5)
	assert.NoError(t, err)
	assert.Equal(t, sampleMethods, got)
}

func TestMemoryQuoteCache_Miss(t *testing.T) {
	c := cache.NewMemoryQuoteCache(time.Minute)

	_, err := c.Get(context.Background(), 10, 5)
	assert.ErrorIs(t, err, cache.ErrCacheMiss)
}

func TestMemoryQuoteCache_KeyedByAddress(t *testing.T) {
	c := cache.NewMemoryQuoteCache(time.Minute)
	ctx := context.Background()

	assert.NoError(t, c.Set(ctx, 10, 5, sampleMethods))

	_, err := c.Get(ctx, 10, 6)
	assert.ErrorIs(t, err, cache.ErrCacheMiss)
}

func TestMemoryQuoteCache_Expiry(t *testing.T) {
	c := cache.NewMemoryQuoteCache(10 * time.Millisecond)
	ctx := context.Background()

	assert.NoError(t, c.Set(ctx, 10, 5, sampleMethods))
	time.Sleep(20 * time.Millisecond)

	_, err := c.Get(ctx, 10, 5)
	assert.ErrorIs(t, err, cache.ErrCacheMiss)
}

func TestMemoryQuoteCache_DeleteCart(t *testing.T) {
	c := cache.NewMemoryQuoteCache(time.Minute)
	ctx := context.Background()

	assert.NoError(t, c.Set(ctx, 10, 5, sampleMethods))
	assert.NoError(t, c.Set(ctx, 10, 6, sampleMethods))
	assert.NoError(t, c.Set(ctx, 11, 5, sampleMethods))

	assert.NoError(t, c.DeleteCart(ctx, 10))

	_, err := c.Get(ctx, 10, 5)
	assert.ErrorIs(t, err, cache.ErrCacheMiss)
	_, err = c.Get(ctx, 10, 6)
	assert.ErrorIs(t, err, cache.ErrCacheMiss)

	// Other cart untouched.
	got, err := c.Get(ctx, 11, 5)
	assert.NoError(t, err)
	assert.Equal(t, sampleMethods, got)
}
