package providers

import (
	"context"

	"shop/internal/shipping"
)

// FreeShipping quotes a zero fee once the cart subtotal reaches the
// threshold; below it the provider contributes nothing.
type FreeShipping struct {
	MinSubtotal int64
}

func NewFreeShipping(minSubtotal int64) *FreeShipping {
	return &FreeShipping{MinSubtotal: minSubtotal}
}

func (p *FreeShipping) Code() string { return "free_shipping" }
func (p *FreeShipping) Name() string { return "Free Shipping" }

func (p *FreeShipping) GetQuotes(_ context.Context, c shipping.Context) ([]shipping.Quote, error) {
	if c.Subtotal < p.MinSubtotal {
		return nil, nil
	}
	return []shipping.Quote{{
		Code:          "free_shipping.standard",
		Name:          "Free Shipping",
		Price:         0,
		EstimatedDays: 7,
	}}, nil
}
