package controller

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/syphaxalili/b2connect-store-sub001/cache"
	"github.com/syphaxalili/b2connect-store-sub001/checkout"
	"github.com/syphaxalili/b2connect-store-sub001/kafka"
	"github.com/syphaxalili/b2connect-store-sub001/ledger"
	"github.com/syphaxalili/b2connect-store-sub001/model"
)

type OrderController struct {
	Checkout *checkout.Service
	Ledger   *ledger.Ledger
	Notifier *kafka.OrderNotifier
	DB       *gorm.DB
}

type AddressInput struct {
	FullName string `json:"full_name"`
	Line1    string `json:"line1"`
	Line2    string `json:"line2"`
	City     string `json:"city"`
	Zip      string `json:"zip"`
	Country  string `json:"country"`
}

func (a *AddressInput) toModel(userID *uint) *model.Address {
	if a == nil {
		return nil
	}
	return &model.Address{
		UserID:   userID,
		FullName: a.FullName,
		Line1:    a.Line1,
		Line2:    a.Line2,
		City:     a.City,
		Zip:      a.Zip,
		Country:  a.Country,
	}
}

func (oc *OrderController) Create(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(uint)

	var body struct {
		ProductIDs      []string      `json:"product_ids"`
		Quantities      []int         `json:"quantities"`
		ShippingFee     string        `json:"shipping_fee"`
		ShippingAddress *AddressInput `json:"shipping_address"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid request body"})
	}
	if len(body.ProductIDs) == 0 || len(body.ProductIDs) != len(body.Quantities) {
		return c.Status(400).JSON(fiber.Map{"error": "product_ids and quantities must match"})
	}

	shippingFee := decimal.Zero
	if body.ShippingFee != "" {
		var err error
		shippingFee, err = decimal.NewFromString(body.ShippingFee)
		if err != nil || shippingFee.IsNegative() {
			return c.Status(400).JSON(fiber.Map{"error": "invalid shipping_fee"})
		}
	}

	lines := make([]checkout.Line, 0, len(body.ProductIDs))
	for i, id := range body.ProductIDs {
		lines = append(lines, checkout.Line{ProductID: id, Qty: body.Quantities[i]})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	summary, err := oc.Checkout.CreateOrder(ctx, &userID, lines, shippingFee, body.ShippingAddress.toModel(&userID))
	if err != nil {
		return orderError(c, err)
	}

	oc.clearCart(ctx, userID)
	cache.Redis.Del(ctx, fmt.Sprintf("orders:%d", userID))
	cache.Redis.Del(ctx, "orders:all")

	return c.Status(201).JSON(summary)
}

// clearCart empties the user's cart after a successful checkout.
// Best-effort; the order already exists.
func (oc *OrderController) clearCart(ctx context.Context, userID uint) {
	if err := oc.DB.WithContext(ctx).Where("owner_id = ?", userID).Delete(&model.Cart{}).Error; err != nil {
		log.Printf("failed to clear cart for user %d: %v", userID, err)
	}
}

func (oc *OrderController) ListUser(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(uint)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	cacheKey := fmt.Sprintf("orders:%d", userID)
	if cached, err := cache.Redis.Get(ctx, cacheKey).Result(); err == nil {
		var orders []model.Order
		if json.Unmarshal([]byte(cached), &orders) == nil {
			return c.JSON(orders)
		}
	}

	orders, err := oc.Ledger.ListUserOrders(ctx, userID)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to fetch orders"})
	}
	if orders == nil {
		orders = []model.Order{}
	}

	if js, err := json.Marshal(orders); err == nil {
		cache.Redis.Set(ctx, cacheKey, js, 5*time.Minute)
	}

	return c.JSON(orders)
}

func (oc *OrderController) ListAll(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	orders, err := oc.Ledger.ListOrders(ctx)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to fetch orders"})
	}
	if orders == nil {
		orders = []model.Order{}
	}
	return c.JSON(orders)
}

func (oc *OrderController) Get(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid id"})
	}
	userID := c.Locals("user_id").(uint)
	role, _ := c.Locals("user_role").(string)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	order, err := oc.Ledger.GetOrder(ctx, uint(id))
	if err != nil {
		return orderError(c, err)
	}
	if role != "admin" && (order.UserID == nil || *order.UserID != userID) {
		return c.Status(403).JSON(fiber.Map{"error": "not the owner"})
	}
	return c.JSON(order)
}

func (oc *OrderController) UpdateStatus(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid id"})
	}

	var body struct {
		Status         string  `json:"status"`
		TrackingNumber *string `json:"tracking_number"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid request body"})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	order, err := oc.Ledger.UpdateStatus(ctx, uint(id), model.OrderStatus(body.Status))
	if err != nil {
		return orderError(c, err)
	}
	if body.TrackingNumber != nil {
		if err := oc.Ledger.SetTracking(ctx, order.ID, *body.TrackingNumber); err != nil {
			return orderError(c, err)
		}
		order.TrackingNumber = body.TrackingNumber
	}

	oc.invalidate(ctx, order)
	go oc.Notifier.StatusChanged(order)

	return c.JSON(order)
}

func (oc *OrderController) Cancel(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid id"})
	}
	userID := c.Locals("user_id").(uint)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	order, err := oc.Ledger.GetOrder(ctx, uint(id))
	if err != nil {
		return orderError(c, err)
	}
	if order.UserID == nil || *order.UserID != userID {
		return c.Status(403).JSON(fiber.Map{"error": "you cannot cancel this order"})
	}

	order, err = oc.Ledger.UpdateStatus(ctx, uint(id), model.OrderStatusCancelled)
	if err != nil {
		return orderError(c, err)
	}

	oc.invalidate(ctx, order)
	go oc.Notifier.StatusChanged(order)

	return c.JSON(fiber.Map{"message": "order cancelled"})
}

func (oc *OrderController) Pay(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid id"})
	}
	userID := c.Locals("user_id").(uint)

	var body struct {
		Method string `json:"method"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid request body"})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	payment, err := oc.Ledger.Pay(ctx, uint(id), userID, model.PaymentMethod(body.Method))
	if err != nil {
		return orderError(c, err)
	}

	cache.Redis.Del(ctx, fmt.Sprintf("orders:%d", userID))
	cache.Redis.Del(ctx, "orders:all")

	if order, err := oc.Ledger.GetOrder(ctx, uint(id)); err == nil {
		go oc.Notifier.StatusChanged(order)
	}

	return c.JSON(payment)
}

func (oc *OrderController) Delete(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	order, err := oc.Ledger.GetOrder(ctx, uint(id))
	if err != nil {
		return orderError(c, err)
	}
	if err := oc.Ledger.Delete(ctx, uint(id)); err != nil {
		return orderError(c, err)
	}

	oc.invalidate(ctx, order)

	return c.SendStatus(204)
}

func (oc *OrderController) invalidate(ctx context.Context, order *model.Order) {
	if order.UserID != nil {
		cache.Redis.Del(ctx, fmt.Sprintf("orders:%d", *order.UserID))
	}
	cache.Redis.Del(ctx, "orders:all")
}

// orderError maps domain errors onto the HTTP taxonomy. Internal
// details never reach the client.
func orderError(c *fiber.Ctx, err error) error {
	var stockErr *checkout.InsufficientStockError
	switch {
	case errors.As(err, &stockErr):
		return c.Status(400).JSON(fiber.Map{
			"error":      stockErr.Error(),
			"product_id": stockErr.ProductID,
			"available":  stockErr.Available,
		})
	case errors.Is(err, checkout.ErrEmptyOrder), errors.Is(err, checkout.ErrBadQuantity),
		errors.Is(err, checkout.ErrBadShippingFee):
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, checkout.ErrProductNotFound):
		return c.Status(404).JSON(fiber.Map{"error": "product not found"})
	case errors.Is(err, ledger.ErrNotFound):
		return c.Status(404).JSON(fiber.Map{"error": "order not found"})
	case errors.Is(err, ledger.ErrInvalidState):
		return c.Status(400).JSON(fiber.Map{"error": "invalid order state"})
	default:
		return c.Status(500).JSON(fiber.Map{"error": "internal error"})
	}
}
