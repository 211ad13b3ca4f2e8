package model

import "time"

type OrderStatus string

const (
	OrderStatusUnpaid    OrderStatus = "UNPAID"
	OrderStatusPaid      OrderStatus = "PAID"
	OrderStatusUnshipped OrderStatus = "UNSHIPPED"
	OrderStatusShipped   OrderStatus = "SHIPPED"
	OrderStatusCompleted OrderStatus = "COMPLETED"
	OrderStatusCancelled OrderStatus = "CANCELLED"
)

// Order is an immutable snapshot of a confirmed checkout. Only Status
// (via the state machine) moves after creation.
type Order struct {
	ID     int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	Number string `gorm:"type:varchar(64);not null;uniqueIndex" json:"number"`
	UserID int64  `gorm:"not null;index" json:"user_id"`

	ShippingAddressID int64  `gorm:"not null" json:"shipping_address_id"`
	BillingAddressID  int64  `gorm:"not null" json:"billing_address_id"`
	ShippingMethod    string `gorm:"type:varchar(64);not null" json:"shipping_method"`
	PaymentMethod     string `gorm:"type:varchar(64);not null" json:"payment_method"`

	Status OrderStatus `gorm:"type:varchar(20);not null;index" json:"status"`

	// Minor currency units.
	Subtotal    int64 `gorm:"not null" json:"subtotal"`
	ShippingFee int64 `gorm:"not null" json:"shipping_fee"`
	Tax         int64 `gorm:"not null" json:"tax"`
	TotalPrice  int64 `gorm:"not null" json:"total_price"`

	IdempotencyKey string    `gorm:"type:varchar(255);not null;uniqueIndex" json:"-"`
	CreatedAt      time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
