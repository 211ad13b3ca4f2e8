package repository

import (
	"context"

	"shop/internal/domain/model"
)

type OrderStatusHistoryRepository interface {
	Create(ctx context.Context, h model.OrderStatusHistory) error
	// Oldest first, so replaying the list reconstructs the current status.
	ListByOrderID(ctx context.Context, orderID int64) ([]model.OrderStatusHistory, error)
}
