package checkout

import (
	"context"
	"errors"
	"log"

	"github.com/shopspring/decimal"

	"github.com/syphaxalili/b2connect-store-sub001/catalog"
	"github.com/syphaxalili/b2connect-store-sub001/ledger"
	"github.com/syphaxalili/b2connect-store-sub001/model"
)

// Catalog is the document-store side of a checkout: product lookups and
// atomic stock movements.
type Catalog interface {
	FindByIDs(ctx context.Context, ids []string) ([]model.Product, error)
	DecrementStock(ctx context.Context, id string, qty int) error
	IncrementStock(ctx context.Context, id string, qty int) error
}

// Orders is the relational side: transactional order creation and the
// processed-event log.
type Orders interface {
	CreateOrder(ctx context.Context, draft ledger.OrderDraft) (*model.Order, error)
	EventProcessed(ctx context.Context, eventID string) (bool, error)
}

// Notifier sends are best-effort; the orchestrator never waits on them
// and never fails a checkout over them.
type Notifier interface {
	OrderCreated(order *model.Order)
}

type Line struct {
	ProductID string
	Qty       int
}

type Summary struct {
	OrderID     uint            `json:"order_id"`
	Subtotal    decimal.Decimal `json:"subtotal"`
	ShippingFee decimal.Decimal `json:"shipping_fee"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}

// Intent is a deserialized order carried through gateway session
// metadata: who buys what, shipped where.
type Intent struct {
	UserID      *uint
	Lines       []Line
	ShippingFee decimal.Decimal
	Address     *model.Address
}

// Event identifies one gateway completion delivery.
type Event struct {
	ID      string
	Type    string
	Payload []byte
}

type Service struct {
	Catalog  Catalog
	Orders   Orders
	Notifier Notifier
}

func NewService(c Catalog, o Orders, n Notifier) *Service {
	return &Service{Catalog: c, Orders: o, Notifier: n}
}

// CreateOrder runs the direct checkout: price the lines, reserve stock
// with conditional decrements, then persist order + items in one ledger
// transaction. Stock is given back if the transaction fails, so neither
// store keeps partial state.
func (s *Service) CreateOrder(ctx context.Context, userID *uint, lines []Line, shippingFee decimal.Decimal, addr *model.Address) (*Summary, error) {
	return s.createOrder(ctx, Intent{
		UserID:      userID,
		Lines:       lines,
		ShippingFee: shippingFee,
		Address:     addr,
	}, Event{})
}

// CompleteSession replays the checkout for a confirmed gateway session.
// The event id is checked up front and inserted with the order in the
// same transaction, so a replayed delivery cannot create a second
// order.
func (s *Service) CompleteSession(ctx context.Context, event Event, intent Intent) (*Summary, error) {
	done, err := s.Orders.EventProcessed(ctx, event.ID)
	if err != nil {
		return nil, err
	}
	if done {
		return nil, ErrAlreadyProcessed
	}
	return s.createOrder(ctx, intent, event)
}

func (s *Service) createOrder(ctx context.Context, intent Intent, event Event) (*Summary, error) {
	if len(intent.Lines) == 0 {
		return nil, ErrEmptyOrder
	}
	ids := make([]string, 0, len(intent.Lines))
	for _, l := range intent.Lines {
		if l.Qty < 1 {
			return nil, ErrBadQuantity
		}
		ids = append(ids, l.ProductID)
	}
	if intent.ShippingFee.IsNegative() {
		return nil, ErrBadShippingFee
	}

	products, err := s.Catalog.FindByIDs(ctx, ids)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}

	subtotal := decimal.Zero
	items := make([]model.OrderItem, 0, len(intent.Lines))
	for i, l := range intent.Lines {
		price, err := products[i].PriceDecimal()
		if err != nil {
			return nil, err
		}
		subtotal = subtotal.Add(price.Mul(decimal.NewFromInt(int64(l.Qty))))
		items = append(items, model.OrderItem{
			ProductID: l.ProductID,
			Name:      products[i].Name,
			Quantity:  l.Qty,
			UnitPrice: price,
		})
	}
	total := subtotal.Add(intent.ShippingFee)

	// Reserve stock first. The conditional decrement is the stock
	// check; there is no separate read-then-write window to race on.
	if err := s.reserve(ctx, intent.Lines, products); err != nil {
		return nil, err
	}

	order, err := s.Orders.CreateOrder(ctx, ledger.OrderDraft{
		UserID:       intent.UserID,
		Address:      intent.Address,
		Items:        items,
		ShippingFee:  intent.ShippingFee,
		Total:        total,
		EventID:      event.ID,
		EventType:    event.Type,
		EventPayload: event.Payload,
	})
	if err != nil {
		s.release(ctx, intent.Lines)
		if errors.Is(err, ledger.ErrDuplicateEvent) {
			return nil, ErrAlreadyProcessed
		}
		return nil, err
	}

	if s.Notifier != nil {
		go s.Notifier.OrderCreated(order)
	}

	return &Summary{
		OrderID:     order.ID,
		Subtotal:    subtotal,
		ShippingFee: intent.ShippingFee,
		TotalAmount: total,
	}, nil
}

// reserve decrements every line, rolling back the lines already taken
// when one runs dry.
func (s *Service) reserve(ctx context.Context, lines []Line, products []model.Product) error {
	for i, l := range lines {
		err := s.Catalog.DecrementStock(ctx, l.ProductID, l.Qty)
		if err == nil {
			continue
		}
		s.release(ctx, lines[:i])
		if errors.Is(err, catalog.ErrOutOfStock) {
			return &InsufficientStockError{
				ProductID: l.ProductID,
				Requested: l.Qty,
				Available: s.availableStock(ctx, l.ProductID, products[i].Stock),
			}
		}
		if errors.Is(err, catalog.ErrNotFound) {
			return ErrProductNotFound
		}
		return err
	}
	return nil
}

func (s *Service) release(ctx context.Context, lines []Line) {
	for _, l := range lines {
		if err := s.Catalog.IncrementStock(ctx, l.ProductID, l.Qty); err != nil {
			log.Printf("failed to release %d units of product %s: %v", l.Qty, l.ProductID, err)
		}
	}
}

// availableStock re-reads the live stock for error reporting, falling
// back to the pricing snapshot if the read fails.
func (s *Service) availableStock(ctx context.Context, id string, fallback int) int {
	fresh, err := s.Catalog.FindByIDs(ctx, []string{id})
	if err != nil || len(fresh) == 0 {
		return fallback
	}
	return fresh[0].Stock
}
