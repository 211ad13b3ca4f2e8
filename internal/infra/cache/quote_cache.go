// Package cache caches shipping quote results between checkout views.
// Quotes only depend on the cart contents and the destination address,
// so the key carries both.
package cache

import (
	"context"
	"errors"
	"fmt"

	"shop/internal/shipping"
)

var ErrCacheMiss = errors.New("cache miss")

type QuoteCache interface {
	Get(ctx context.Context, cartID, addressID int64) ([]shipping.MethodResult, error)
	Set(ctx context.Context, cartID, addressID int64, methods []shipping.MethodResult) error
	// DeleteCart drops every cached quote for the cart, whatever the
	// address. Called when the cart contents or the address change.
	DeleteCart(ctx context.Context, cartID int64) error
}

func quoteKey(cartID, addressID int64) string {
	return fmt.Sprintf("checkout:quotes:%d:%d", cartID, addressID)
}
