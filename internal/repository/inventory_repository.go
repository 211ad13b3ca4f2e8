package repository

import (
	"context"

	"shop/internal/domain/model"
)

type InventoryRepository interface {
	SetStock(ctx context.Context, productID int64, newStock int64) error

	// Decrements only when the remaining stock covers qty; reports whether
	// the decrement happened.
	DecreaseStockIfEnough(ctx context.Context, productID int64, qty int64) (bool, error)

	// Stock restore (order cancellation etc.).
	IncreaseStock(ctx context.Context, productID int64, qty int64) error

	CreateAdjustment(ctx context.Context, adjustment model.InventoryAdjustment) error
}
