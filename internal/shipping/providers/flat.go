// Package providers holds the built-in shipping providers. Each one is a
// local rating policy registered like any external carrier integration
// would be.
package providers

import (
	"context"

	"shop/internal/shipping"
)

// FlatRate quotes a fixed standard fee and an express fee for every
// shipment, regardless of destination or cart size.
type FlatRate struct {
	StandardFee int64
	ExpressFee  int64
}

func NewFlatRate(standardFee, expressFee int64) *FlatRate {
	return &FlatRate{StandardFee: standardFee, ExpressFee: expressFee}
}

func (p *FlatRate) Code() string { return "flat_rate" }
func (p *FlatRate) Name() string { return "Flat Rate" }

func (p *FlatRate) GetQuotes(_ context.Context, _ shipping.Context) ([]shipping.Quote, error) {
	return []shipping.Quote{
		{
			Code:          "flat_rate.standard",
			Name:          "Standard Shipping",
			Price:         p.StandardFee,
			EstimatedDays: 5,
		},
		{
			Code:          "flat_rate.express",
			Name:          "Express Shipping",
			Price:         p.ExpressFee,
			EstimatedDays: 2,
		},
	}, nil
}
