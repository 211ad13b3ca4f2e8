package repository

import (
	"context"

	"shop/internal/domain/model"
)

type CheckoutStateRepository interface {
	FindByCartID(ctx context.Context, cartID int64) (model.CheckoutState, error)
	// Save creates the row on first write, updates it afterwards.
	Save(ctx context.Context, state model.CheckoutState) (model.CheckoutState, error)
	DeleteByCartID(ctx context.Context, cartID int64) error
}
