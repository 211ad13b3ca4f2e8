// Package shipping collects rate quotes from the installed shipping
// providers for a checkout context.
package shipping

import "context"

// ContextItem is one cart line as seen by providers.
type ContextItem struct {
	ProductID int64
	Quantity  int64
	UnitPrice int64
}

// Destination is the part of the shipping address providers rate against.
type Destination struct {
	PostalCode string
	State      string
	City       string
}

// Context is the checkout context a quote request is made for: the cart
// contents plus the selected destination.
type Context struct {
	UserID      int64
	CartID      int64
	Items       []ContextItem
	Subtotal    int64
	Destination Destination
}

func (c Context) TotalQuantity() int64 {
	var n int64
	for _, it := range c.Items {
		n += it.Quantity
	}
	return n
}

// Quote is one priced shipping offer from one provider.
type Quote struct {
	Code          string `json:"code"`
	Name          string `json:"name"`
	Price         int64  `json:"price"`
	EstimatedDays int    `json:"estimated_days"`
}

// MethodResult groups the quotes of a single provider.
type MethodResult struct {
	ProviderCode string  `json:"provider_code"`
	ProviderName string  `json:"provider_name"`
	Quotes       []Quote `json:"quotes"`
}

// Provider is the capability every shipping provider plugin exposes.
// Implementations must be safe for concurrent use: GetQuotes is a
// read-only query and may be called in parallel with other providers.
type Provider interface {
	Code() string
	Name() string
	GetQuotes(ctx context.Context, c Context) ([]Quote, error)
}
