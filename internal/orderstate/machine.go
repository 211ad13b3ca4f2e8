// Package orderstate enforces the legal order-status transitions and
// runs the side effects registered for them.
package orderstate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"shop/internal/domain/model"
	repo "shop/internal/repository"

	"go.uber.org/zap"
)

var ErrInvalidTransition = errors.New("invalid status transition")

// Transition describes one applied status change, as seen by hooks.
type Transition struct {
	Order   model.Order
	From    model.OrderStatus
	To      model.OrderStatus
	Actor   string
	Comment string
}

// Hook runs inside the same transaction as the status change; returning
// an error rolls the transition back.
type Hook func(ctx context.Context, r repo.TxRepos, t Transition) error

// Table maps each status to the statuses reachable from it. A status
// with no entry (or an empty list) is terminal.
type Table map[model.OrderStatus][]model.OrderStatus

// DefaultTable is the stock policy: payment then fulfilment, with
// cancellation open from every non-terminal state. COMPLETED and
// CANCELLED are terminal.
func DefaultTable() Table {
	return Table{
		model.OrderStatusUnpaid:    {model.OrderStatusPaid, model.OrderStatusCancelled},
		model.OrderStatusPaid:      {model.OrderStatusUnshipped, model.OrderStatusCancelled},
		model.OrderStatusUnshipped: {model.OrderStatusShipped, model.OrderStatusCancelled},
		model.OrderStatusShipped:   {model.OrderStatusCompleted, model.OrderStatusCancelled},
	}
}

type Machine struct {
	table Table
	hooks []Hook
	log   *zap.Logger
}

func NewMachine(table Table, log *zap.Logger) *Machine {
	return &Machine{table: table, log: log}
}

// RegisterHook appends a side effect; hooks run in registration order.
// Call during wiring only, the machine is read-only once serving.
func (m *Machine) RegisterHook(h Hook) {
	m.hooks = append(m.hooks, h)
}

// Can reports whether the table allows from → to.
func (m *Machine) Can(from, to model.OrderStatus) bool {
	for _, s := range m.table[from] {
		if s == to {
			return true
		}
	}
	return false
}

// ChangeStatus applies one transition: validates it against the table,
// updates the order row, appends the history record and runs the hooks.
// Must be called inside a transaction (r is the tx-bound repo set).
func (m *Machine) ChangeStatus(ctx context.Context, r repo.TxRepos, order model.Order, to model.OrderStatus, actor, comment string) error {
	if order.Status == to {
		// Same-status request is a no-op, not a violation.
		return nil
	}
	if !m.Can(order.Status, to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, order.Status, to)
	}

	if err := r.Orders().UpdateStatus(ctx, order.ID, to); err != nil {
		return err
	}

	t := Transition{Order: order, From: order.Status, To: to, Actor: actor, Comment: comment}
	if err := m.appendHistory(ctx, r, t); err != nil {
		return err
	}

	m.log.Info("order status changed",
		zap.Int64("order_id", order.ID),
		zap.String("from", string(t.From)),
		zap.String("to", string(t.To)),
		zap.String("actor", actor),
	)

	return m.runHooks(ctx, r, t)
}

// Initial records the first status of a freshly created order (written
// with Status already set) and fires the hooks for it.
func (m *Machine) Initial(ctx context.Context, r repo.TxRepos, order model.Order, actor string) error {
	t := Transition{Order: order, From: "", To: order.Status, Actor: actor}
	if err := m.appendHistory(ctx, r, t); err != nil {
		return err
	}
	return m.runHooks(ctx, r, t)
}

func (m *Machine) appendHistory(ctx context.Context, r repo.TxRepos, t Transition) error {
	return r.OrderHistories().Create(ctx, model.OrderStatusHistory{
		OrderID:    t.Order.ID,
		FromStatus: t.From,
		ToStatus:   t.To,
		Actor:      t.Actor,
		Comment:    t.Comment,
		CreatedAt:  time.Now(),
	})
}

func (m *Machine) runHooks(ctx context.Context, r repo.TxRepos, t Transition) error {
	for _, h := range m.hooks {
		if err := h(ctx, r, t); err != nil {
			return err
		}
	}
	return nil
}

// Replay folds a status history back into the final status. Empty
// history yields the empty status.
func Replay(history []model.OrderStatusHistory) model.OrderStatus {
	var s model.OrderStatus
	for _, h := range history {
		s = h.ToStatus
	}
	return s
}
