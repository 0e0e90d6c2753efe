package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/syphaxalili/b2connect-store-sub001/model"
)

var (
	ErrNotFound = errors.New("order not found")
	// ErrInvalidState rejects status transitions outside the allowed
	// table and deletes of non-cancelled, non-archived orders.
	ErrInvalidState = errors.New("invalid order state")
	// ErrDuplicateEvent means the webhook event id was already recorded
	// and the order for it exists.
	ErrDuplicateEvent = errors.New("event already processed")
)

// Ledger owns the relational side: orders, line items, payments and the
// processed-webhook-event log, all written inside short-lived
// transactions.
type Ledger struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Ledger {
	return &Ledger{db: db}
}

// OrderDraft is everything CreateOrder persists in one transaction.
type OrderDraft struct {
	UserID      *uint
	Address     *model.Address
	Items       []model.OrderItem
	ShippingFee decimal.Decimal
	Total       decimal.Decimal

	// Set for webhook-driven orders; the event row is inserted in the
	// same transaction so a replayed delivery hits the primary key and
	// rolls back instead of creating a second order.
	EventID      string
	EventType    string
	EventPayload []byte
}

func (l *Ledger) CreateOrder(ctx context.Context, draft OrderDraft) (*model.Order, error) {
	order := &model.Order{
		UserID:      draft.UserID,
		TotalAmount: draft.Total,
		ShippingFee: draft.ShippingFee,
		Status:      model.OrderStatusPending,
		CreatedAt:   time.Now(),
	}

	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if draft.EventID != "" {
			event := model.WebhookEvent{
				EventID:     draft.EventID,
				EventType:   draft.EventType,
				Payload:     datatypes.JSON(draft.EventPayload),
				ProcessedAt: time.Now(),
			}
			if err := tx.Create(&event).Error; err != nil {
				if errors.Is(err, gorm.ErrDuplicatedKey) {
					return ErrDuplicateEvent
				}
				return err
			}
		}

		if draft.Address != nil {
			draft.Address.CreatedAt = time.Now()
			if err := tx.Create(draft.Address).Error; err != nil {
				return err
			}
			order.AddressID = &draft.Address.ID
		}

		if err := tx.Create(order).Error; err != nil {
			return err
		}

		for i := range draft.Items {
			draft.Items[i].OrderID = order.ID
			draft.Items[i].CreatedAt = time.Now()
		}
		if err := tx.Create(&draft.Items).Error; err != nil {
			return err
		}
		order.Items = draft.Items
		return nil
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// EventProcessed is the cheap pre-check used before reserving stock for
// a webhook replay. The unique insert inside CreateOrder stays the
// authoritative guard.
func (l *Ledger) EventProcessed(ctx context.Context, eventID string) (bool, error) {
	var n int64
	err := l.db.WithContext(ctx).Model(&model.WebhookEvent{}).
		Where("event_id = ?", eventID).Count(&n).Error
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (l *Ledger) GetOrder(ctx context.Context, id uint) (*model.Order, error) {
	var order model.Order
	err := l.db.WithContext(ctx).Preload("Items").Preload("Address").First(&order, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (l *Ledger) ListUserOrders(ctx context.Context, userID uint) ([]model.Order, error) {
	var orders []model.Order
	err := l.db.WithContext(ctx).Preload("Items").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&orders).Error
	return orders, err
}

func (l *Ledger) ListOrders(ctx context.Context) ([]model.Order, error) {
	var orders []model.Order
	err := l.db.WithContext(ctx).Preload("Items").
		Order("created_at DESC").
		Find(&orders).Error
	return orders, err
}

// UpdateStatus moves an order through the transition table. Illegal
// moves fail with ErrInvalidState and change nothing.
func (l *Ledger) UpdateStatus(ctx context.Context, id uint, next model.OrderStatus) (*model.Order, error) {
	if !next.Valid() {
		return nil, ErrInvalidState
	}

	var order model.Order
	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&order, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if !order.Status.CanTransition(next) {
			return ErrInvalidState
		}
		order.Status = next
		return tx.Model(&order).Update("status", next).Error
	})
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (l *Ledger) SetTracking(ctx context.Context, id uint, tracking string) error {
	res := l.db.WithContext(ctx).Model(&model.Order{}).
		Where("id = ?", id).
		Update("tracking_number", tracking)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Pay records a completed payment for a pending order and flips it to
// shipped in the same transaction. There is no gateway confirmation in
// this path; see the payment routes for the hosted-checkout flow.
func (l *Ledger) Pay(ctx context.Context, orderID, userID uint, method model.PaymentMethod) (*model.Payment, error) {
	if !method.Valid() {
		return nil, ErrInvalidState
	}

	var payment model.Payment
	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var order model.Order
		if err := tx.First(&order, orderID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if order.UserID == nil || *order.UserID != userID {
			return ErrNotFound
		}
		if !order.Status.CanTransition(model.OrderStatusShipped) {
			return ErrInvalidState
		}

		payment = model.Payment{
			OrderID:   order.ID,
			Amount:    order.TotalAmount,
			Method:    method,
			Status:    model.PaymentStatusCompleted,
			CreatedAt: time.Now(),
		}
		if err := tx.Create(&payment).Error; err != nil {
			return err
		}
		return tx.Model(&order).Update("status", model.OrderStatusShipped).Error
	})
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

// Delete removes an order and, via cascade, its line items. Only
// cancelled or archived orders may go.
func (l *Ledger) Delete(ctx context.Context, id uint) error {
	return l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var order model.Order
		if err := tx.First(&order, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if !order.Status.Deletable() {
			return ErrInvalidState
		}
		if err := tx.Where("order_id = ?", order.ID).Delete(&model.OrderItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(&order).Error
	})
}
