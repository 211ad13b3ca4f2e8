package usecase

import (
	"context"
	"errors"
	"net/http"
	"time"

	"shop/internal/domain/model"
	"shop/internal/orderstate"
	repo "shop/internal/repository"
)

type OrderUsecase struct {
	tx      repo.TransactionManager
	machine *orderstate.Machine
}

func NewOrderUsecase(tx repo.TransactionManager, machine *orderstate.Machine) *OrderUsecase {
	return &OrderUsecase{tx: tx, machine: machine}
}

type OrderItemOutput struct {
	ProductID int64  `json:"product_id"`
	Name      string `json:"name"`
	Price     int64  `json:"price"`
	Quantity  int64  `json:"quantity"`
}

type OrderHistoryOutput struct {
	From      string    `json:"from,omitempty"`
	To        string    `json:"to"`
	Actor     string    `json:"actor"`
	Comment   string    `json:"comment,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type OrderOutput struct {
	ID             int64                `json:"id"`
	Number         string               `json:"number"`
	UserID         int64                `json:"user_id"`
	Status         string               `json:"status"`
	ShippingMethod string               `json:"shipping_method"`
	PaymentMethod  string               `json:"payment_method"`
	Subtotal       int64                `json:"subtotal"`
	ShippingFee    int64                `json:"shipping_fee"`
	Tax            int64                `json:"tax"`
	TotalPrice     int64                `json:"total_price"`
	CreatedAt      time.Time            `json:"created_at"`
	Items          []OrderItemOutput    `json:"items"`
	History        []OrderHistoryOutput `json:"history,omitempty"`
}

func (u *OrderUsecase) ListMyOrders(ctx context.Context, userID int64) ([]OrderOutput, error) {
	if userID <= 0 {
		return []OrderOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	var outs []OrderOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		orders, _, err := r.Orders().ListByUserID(ctx, userID, 1, 50)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		outs = make([]OrderOutput, 0, len(orders))
		for _, o := range orders {
			items, err := r.OrderItems().ListByOrderID(ctx, o.ID)
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
			outs = append(outs, toOrderOutput(o, items))
		}
		return nil
	})

	if err != nil {
		return []OrderOutput{}, err
	}
	return outs, nil
}

func (u *OrderUsecase) GetMyOrderDetail(ctx context.Context, userID int64, orderID int64) (OrderOutput, error) {
	if userID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if orderID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var out OrderOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByID(ctx, orderID)
		if errors.Is(err, repo.ErrNotFound) {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if o.UserID != userID {
			// Someone else's order does not exist as far as you know.
			return NewHTTPError(http.StatusNotFound, "not found")
		}

		items, err := r.OrderItems().ListByOrderID(ctx, orderID)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		history, err := r.OrderHistories().ListByOrderID(ctx, orderID)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		out = toOrderOutput(o, items)
		out.History = toHistoryOutputs(history)
		return nil
	})

	if err != nil {
		return OrderOutput{}, err
	}
	return out, nil
}

// CancelMyOrder lets a customer cancel an order they have not paid yet.
func (u *OrderUsecase) CancelMyOrder(ctx context.Context, userID int64, orderID int64) (OrderOutput, error) {
	if userID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if orderID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var out OrderOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByID(ctx, orderID)
		if errors.Is(err, repo.ErrNotFound) {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if o.UserID != userID {
			return NewHTTPError(http.StatusNotFound, "not found")
		}

		// Customers only cancel before payment; later cancellation goes
		// through support.
		if o.Status != model.OrderStatusUnpaid {
			return NewHTTPError(http.StatusBadRequest, "cannot cancel")
		}

		if err := u.machine.ChangeStatus(ctx, r, o, model.OrderStatusCancelled, "customer", ""); err != nil {
			if errors.Is(err, orderstate.ErrInvalidTransition) {
				return NewHTTPError(http.StatusBadRequest, "cannot cancel")
			}
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		o.Status = model.OrderStatusCancelled
		items, err := r.OrderItems().ListByOrderID(ctx, orderID)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		out = toOrderOutput(o, items)
		return nil
	})

	if err != nil {
		return OrderOutput{}, err
	}
	return out, nil
}

func toOrderOutput(o model.Order, items []model.OrderItem) OrderOutput {
	outItems := make([]OrderItemOutput, 0, len(items))
	for _, it := range items {
		outItems = append(outItems, OrderItemOutput{
			ProductID: it.ProductID,
			Name:      it.ProductNameSnapshot,
			Price:     it.UnitPriceSnapshot,
			Quantity:  it.Quantity,
		})
	}

	return OrderOutput{
		ID:             o.ID,
		Number:         o.Number,
		UserID:         o.UserID,
		Status:         string(o.Status),
		ShippingMethod: o.ShippingMethod,
		PaymentMethod:  o.PaymentMethod,
		Subtotal:       o.Subtotal,
		ShippingFee:    o.ShippingFee,
		Tax:            o.Tax,
		TotalPrice:     o.TotalPrice,
		CreatedAt:      o.CreatedAt,
		Items:          outItems,
	}
}

func toHistoryOutputs(history []model.OrderStatusHistory) []OrderHistoryOutput {
	outs := make([]OrderHistoryOutput, 0, len(history))
	for _, h := range history {
		outs = append(outs, OrderHistoryOutput{
			From:      string(h.FromStatus),
			To:        string(h.ToStatus),
			Actor:     h.Actor,
			Comment:   h.Comment,
			CreatedAt: h.CreatedAt,
		})
	}
	return outs
}
