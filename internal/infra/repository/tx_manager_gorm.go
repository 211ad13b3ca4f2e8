package repository

import (
	"context"

	repo "shop/internal/repository"

	"gorm.io/gorm"
)

type txReposGorm struct {
	orders         repo.OrderRepository
	orderItems     repo.OrderItemRepository
	orderHistories repo.OrderStatusHistoryRepository
	carts          repo.CartRepository
	cartItems      repo.CartItemRepository
	addresses      repo.AddressRepository
	checkoutStates repo.CheckoutStateRepository
	inventory      repo.InventoryRepository
	products       repo.ProductRepository
}

func (r *txReposGorm) Orders() repo.OrderRepository                      { return r.orders }
func (r *txReposGorm) OrderItems() repo.OrderItemRepository              { return r.orderItems }
func (r *txReposGorm) OrderHistories() repo.OrderStatusHistoryRepository { return r.orderHistories }
func (r *txReposGorm) Carts() repo.CartRepository                        { return r.carts }
func (r *txReposGorm) CartItems() repo.CartItemRepository                { return r.cartItems }
func (r *txReposGorm) Addresses() repo.AddressRepository                 { return r.addresses }
func (r *txReposGorm) CheckoutStates() repo.CheckoutStateRepository      { return r.checkoutStates }
func (r *txReposGorm) Inventory() repo.InventoryRepository               { return r.inventory }
func (r *txReposGorm) Products() repo.ProductRepository                  { return r.products }

type TxManagerGorm struct {
	db *gorm.DB
}

func NewTxManagerGorm(db *gorm.DB) *TxManagerGorm {
	return &TxManagerGorm{db: db}
}

func (tm *TxManagerGorm) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	return tm.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Repositories are rebuilt on the tx-bound handle.
		carts := NewCartGormRepository(tx)
		r := &txReposGorm{
			orders:         NewOrderGormRepository(tx),
			orderItems:     NewOrderItemGormRepository(tx),
			orderHistories: NewOrderStatusHistoryGormRepository(tx),
			carts:          carts,
			cartItems:      carts,
			addresses:      NewAddressGormRepository(tx),
			checkoutStates: NewCheckoutStateGormRepository(tx),
			inventory:      NewInventoryGormRepository(tx),
			products:       NewProductGormRepository(tx),
		}
		return fn(r)
	})
}
