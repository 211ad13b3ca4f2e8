package providers

import (
	"context"

	"shop/internal/shipping"
)

// Tier prices shipments up to and including MaxItems units.
type Tier struct {
	MaxItems int64
	Fee      int64
}

// TieredRate picks a fee from item-count tiers. Carts larger than the
// last tier are not quoted by this provider.
type TieredRate struct {
	Tiers []Tier
}

func NewTieredRate(tiers []Tier) *TieredRate {
	return &TieredRate{Tiers: tiers}
}

func (p *TieredRate) Code() string { return "tiered_rate" }
func (p *TieredRate) Name() string { return "Tiered Rate" }

func (p *TieredRate) GetQuotes(_ context.Context, c shipping.Context) ([]shipping.Quote, error) {
	qty := c.TotalQuantity()
	for _, t := range p.Tiers {
		if qty <= t.MaxItems {
			return []shipping.Quote{{
				Code:          "tiered_rate.standard",
				Name:          "Tiered Standard",
				Price:         t.Fee,
				EstimatedDays: 4,
			}}, nil
		}
	}
	return nil, nil
}
