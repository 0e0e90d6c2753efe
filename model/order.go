package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

type Order struct {
	ID             uint            `gorm:"primaryKey" json:"id"`
	UserID         *uint           `json:"user_id"` // nil for guest checkout
	AddressID      *uint           `json:"address_id"`
	Address        *Address        `gorm:"foreignKey:AddressID;constraint:OnDelete:SET NULL" json:"address,omitempty"`
	Items          []OrderItem     `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`
	TotalAmount    decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"total_amount"`
	ShippingFee    decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"shipping_fee"`
	Status         OrderStatus     `gorm:"size:32;not null;default:'pending'" json:"status"`
	TrackingNumber *string         `gorm:"size:64" json:"tracking_number"`
	CreatedAt      time.Time       `json:"created_at"`
}

// Subtotal is the sum of the snapshotted line prices. TotalAmount must
// equal Subtotal + ShippingFee at all times.
func (o *Order) Subtotal() decimal.Decimal {
	sub := decimal.Zero
	for _, it := range o.Items {
		sub = sub.Add(it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	return sub
}

type OrderItem struct {
	ID      uint `gorm:"primaryKey" json:"id"`
	OrderID uint `gorm:"index;not null" json:"order_id"`
	// Mongo product id, opaque to the relational side.
	ProductID string `gorm:"size:64;index;not null" json:"product_id"`
	Name      string `gorm:"size:255" json:"name"`
	Quantity  int    `gorm:"not null" json:"quantity"`
	// Price at purchase time, never recomputed from the live catalog.
	UnitPrice decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"unit_price"`
	CreatedAt time.Time       `json:"created_at"`
}

type Payment struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	OrderID   uint            `gorm:"uniqueIndex;not null" json:"order_id"`
	Amount    decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"amount"`
	Method    PaymentMethod   `gorm:"size:16;not null" json:"method"`
	Status    PaymentStatus   `gorm:"size:16;not null" json:"status"`
	CreatedAt time.Time       `json:"created_at"`
}

// WebhookEvent records gateway event ids that were already processed so
// replayed deliveries do not create a second order.
type WebhookEvent struct {
	EventID     string         `gorm:"primaryKey;size:128" json:"event_id"`
	EventType   string         `gorm:"size:64;index" json:"event_type"`
	Payload     datatypes.JSON `json:"payload"`
	ProcessedAt time.Time      `json:"processed_at"`
}
