package shipping_test

import (
	"context"
	"errors"
	"testing"

	"shop/internal/shipping"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func newAggregator(t *testing.T, providers ...shipping.Provider) *shipping.Aggregator {
	t.Helper()

	r := shipping.NewRegistry()
	for _, p := range providers {
		if err := r.Register(p); err != nil {
			t.Fatalf("register: %v", err)
		}
	}
	return shipping.NewAggregator(r, zap.NewNop())
}

func TestAggregator_CollectsAllProviders(t *testing.T) {
	a := newAggregator(t,
		&stubProvider{code: "a", name: "A", quotes: []shipping.Quote{
			{Code: "a.std", Name: "A Standard", Price: 500},
			{Code: "a.exp", Name: "A Express", Price: 1200},
		}},
		&stubProvider{code: "b", name: "B", quotes: []shipping.Quote{
			{Code: "b.std", Name: "B Standard", Price: 300},
		}},
	)

	out := a.GetMethods(context.Background(), shipping.Context{})

	assert.Len(t, out, 2)
	assert.Equal(t, "a", out[0].ProviderCode)
	assert.Len(t, out[0].Quotes, 2)
	assert.Equal(t, "b", out[1].ProviderCode)
}

func TestAggregator_SkipsFailingProvider(t *testing.T) {
	a := newAggregator(t,
		&stubProvider{code: "a", name: "A", quotes: []shipping.Quote{
			{Code: "a.std", Name: "A Standard", Price: 500},
		}},
		&stubProvider{code: "b", name: "B", err: errors.New("carrier api down")},
		&stubProvider{code: "c", name: "C", quotes: []shipping.Quote{
			{Code: "c.std", Name: "C Standard", Price: 900},
		}},
	)

	out := a.GetMethods(context.Background(), shipping.Context{})

	assert.Len(t, out, 2)
	assert.Equal(t, "a", out[0].ProviderCode)
	assert.Equal(t, "c", out[1].ProviderCode)
}

func TestAggregator_OmitsEmptyProviders(t *testing.T) {
	a := newAggregator(t,
		&stubProvider{code: "a", name: "A"},
		&stubProvider{code: "b", name: "B", quotes: []shipping.Quote{
			{Code: "b.std", Name: "B Standard", Price: 300},
		}},
	)

	out := a.GetMethods(context.Background(), shipping.Context{})

	assert.Len(t, out, 1)
	assert.Equal(t, "b", out[0].ProviderCode)
}

func TestAggregator_EmptyRegistry(t *testing.T) {
	a := newAggregator(t)

	out := a.GetMethods(context.Background(), shipping.Context{})

	assert.NotNil(t, out)
	assert.Empty(t, out)
}

func TestAggregator_StableOrderAcrossRuns(t *testing.T) {
	// Goroutine scheduling must never reorder the result.
	a := newAggregator(t,
		&stubProvider{code: "z", name: "Z", quotes: []shipping.Quote{{Code: "z.q", Price: 1}}},
		&stubProvider{code: "m", name: "M", quotes: []shipping.Quote{{Code: "m.q", Price: 2}}},
		&stubProvider{code: "a", name: "A", quotes: []shipping.Quote{{Code: "a.q", Price: 3}}},
	)

	for i := 0; i < 20; i++ {
		out := a.GetMethods(context.Background(), shipping.Context{})
		assert.Equal(t, "z", out[0].ProviderCode)
		assert.Equal(t, "m", out[1].ProviderCode)
		assert.Equal(t, "a", out[2].ProviderCode)
	}
}
