package model

import "time"

// CheckoutState accumulates the selections made during checkout for one
// cart. It is created on the first checkout view, updated field by field,
// and deleted once the order is confirmed.
type CheckoutState struct {
	ID     int64 `gorm:"primaryKey;autoIncrement" json:"id"`
	CartID int64 `gorm:"not null;uniqueIndex" json:"cart_id"`

	ShippingAddressID *int64 `gorm:"index" json:"shipping_address_id,omitempty"`
	BillingAddressID  *int64 `gorm:"index" json:"billing_address_id,omitempty"`
	ShippingMethod    string `gorm:"type:varchar(64)" json:"shipping_method,omitempty"`
	PaymentMethod     string `gorm:"type:varchar(64)" json:"payment_method,omitempty"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

// Complete reports whether every field required to place an order is set.
func (s CheckoutState) Complete() bool {
	return s.ShippingAddressID != nil &&
		s.BillingAddressID != nil &&
		s.ShippingMethod != "" &&
		s.PaymentMethod != ""
}
