package model

import "time"

// OrderStatusHistory is append-only: one row per status transition.
// FromStatus is empty for the row written when the order is created.
type OrderStatusHistory struct {
	ID         int64       `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID    int64       `gorm:"not null;index" json:"order_id"`
	FromStatus OrderStatus `gorm:"type:varchar(20)" json:"from_status"`
	ToStatus   OrderStatus `gorm:"type:varchar(20);not null" json:"to_status"`
	Actor      string      `gorm:"type:varchar(64);not null" json:"actor"`
	Comment    string      `gorm:"type:varchar(255)" json:"comment"`
	CreatedAt  time.Time   `gorm:"not null;autoCreateTime" json:"created_at"`
}
