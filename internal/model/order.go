package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderPending  OrderStatus = "PENDING"
	OrderPaid     OrderStatus = "PAID"
	OrderFailed   OrderStatus = "FAILED"
	OrderCanceled OrderStatus = "CANCELED"
)

// Terminal reports whether no further transition is accepted from s.
func (s OrderStatus) Terminal() bool {
	return s == OrderPaid || s == OrderFailed || s == OrderCanceled
}

// Order is the append-only purchase-intent ledger entry. Status moves
// forward only (PENDING -> PAID/FAILED/CANCELED) and all writers go through
// the repository's guarded transition methods.
type Order struct {
	OrderID   string    `gorm:"primaryKey;size:64;not null"`
	UserID    uint      `gorm:"index:idx_orders_user_item;not null"`
	ItemModel ItemModel `gorm:"size:32;index:idx_orders_user_item;not null"`
	ItemID    uint      `gorm:"index:idx_orders_user_item;not null"`

	// Amount is captured at order creation and never recomputed from the
	// item's current price.
	Amount   decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Currency string          `gorm:"size:8;not null"`

	Status     OrderStatus `gorm:"size:16;index;not null"`
	GatewayRef string      `gorm:"size:128"`
	FailReason string      `gorm:"size:255"`

	CreatedAt time.Time
	UpdatedAt time.Time
	// PaidAt is set exactly once, on the PENDING -> PAID transition.
	PaidAt *time.Time
}

// WebhookEvent records processed gateway notification ids so replayed
// webhooks can be acknowledged without re-walking transition logic.
type WebhookEvent struct {
	EventID     string `gorm:"primaryKey;size:128;not null"`
	EventType   string `gorm:"size:64;index"`
	ProcessedAt time.Time
	CreatedAt   time.Time
}
