package orderstate

import (
	"context"
	"time"

	"shop/internal/domain/model"
	repo "shop/internal/repository"

	"go.uber.org/zap"
)

// EventPublisher pushes order events to the outside (kafka in
// production, a stub in tests).
type EventPublisher interface {
	Publish(ctx context.Context, key string, event any) error
}

// OrderEvent is the wire shape published on every transition.
type OrderEvent struct {
	OrderID     int64             `json:"order_id"`
	OrderNumber string            `json:"order_number"`
	UserID      int64             `json:"user_id"`
	FromStatus  model.OrderStatus `json:"from_status,omitempty"`
	ToStatus    model.OrderStatus `json:"to_status"`
	Actor       string            `json:"actor"`
	OccurredAt  time.Time         `json:"occurred_at"`
}

// PublishEvents emits an OrderEvent per transition, keyed by order
// number so one order's events stay in partition order.
func PublishEvents(pub EventPublisher, log *zap.Logger) Hook {
	return func(ctx context.Context, _ repo.TxRepos, t Transition) error {
		ev := OrderEvent{
			OrderID:     t.Order.ID,
			OrderNumber: t.Order.Number,
			UserID:      t.Order.UserID,
			FromStatus:  t.From,
			ToStatus:    t.To,
			Actor:       t.Actor,
			OccurredAt:  time.Now(),
		}
		if err := pub.Publish(ctx, t.Order.Number, ev); err != nil {
			// Notification loss must not roll back the order change.
			log.Warn("order event publish failed",
				zap.String("order_number", t.Order.Number),
				zap.Error(err),
			)
		}
		return nil
	}
}

// RestockOnCancel returns reserved stock to the catalog when an order is
// cancelled.
func RestockOnCancel() Hook {
	return func(ctx context.Context, r repo.TxRepos, t Transition) error {
		if t.To != model.OrderStatusCancelled {
			return nil
		}

		items, err := r.OrderItems().ListByOrderID(ctx, t.Order.ID)
		if err != nil {
			return err
		}
		for _, it := range items {
			if err := r.Inventory().IncreaseStock(ctx, it.ProductID, it.Quantity); err != nil {
				return err
			}
		}
		return nil
	}
}
