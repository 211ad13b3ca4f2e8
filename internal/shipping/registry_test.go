package shipping_test

import (
	"context"
	"errors"
	"testing"

	"shop/internal/shipping"

	"github.com/stretchr/testify/assert"
)

type stubProvider struct {
	code   string
	name   string
	quotes []shipping.Quote
	err    error
}

func (p *stubProvider) Code() string { return p.code }
func (p *stubProvider) Name() string { return p.name }

func (p *stubProvider) GetQuotes(_ context.Context, _ shipping.Context) ([]shipping.Quote, error) {
	return p.quotes, p.err
}

func TestRegistry_Register_RejectsNil(t *testing.T) {
	r := shipping.NewRegistry()

	err := r.Register(nil)

	var ce *shipping.ConfigError
	assert.True(t, errors.As(err, &ce))
}

func TestRegistry_Register_RejectsEmptyCode(t *testing.T) {
	r := shipping.NewRegistry()

	err := r.Register(&stubProvider{code: "", name: "X"})

	var ce *shipping.ConfigError
	assert.True(t, errors.As(err, &ce))
}

func TestRegistry_Register_RejectsDuplicateCode(t *testing.T) {
	r := shipping.NewRegistry()

	assert.NoError(t, r.Register(&stubProvider{code: "a", name: "A"}))

	err := r.Register(&stubProvider{code: "a", name: "A again"})

	var ce *shipping.ConfigError
	assert.True(t, errors.As(err, &ce))
	assert.Len(t, r.List(), 1)
}

func TestRegistry_List_KeepsRegistrationOrder(t *testing.T) {
	r := shipping.NewRegistry()

	for _, code := range []string{"c", "a", "b"} {
		assert.NoError(t, r.Register(&stubProvider{code: code, name: code}))
	}

	list := r.List()
	assert.Len(t, list, 3)
	assert.Equal(t, "c", list[0].Code())
	assert.Equal(t, "a", list[1].Code())
	assert.Equal(t, "b", list[2].Code())
}

func TestRegistry_Lookup(t *testing.T) {
	r := shipping.NewRegistry()
	assert.NoError(t, r.Register(&stubProvider{code: "a", name: "A"}))

	p, ok := r.Lookup("a")
	assert.True(t, ok)
	assert.Equal(t, "A", p.Name())

	_, ok = r.Lookup("missing")
	assert.False(t, ok)
}
