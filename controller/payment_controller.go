package controller

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/syphaxalili/b2connect-store-sub001/cache"
	"github.com/syphaxalili/b2connect-store-sub001/catalog"
	"github.com/syphaxalili/b2connect-store-sub001/checkout"
	"github.com/syphaxalili/b2connect-store-sub001/gateway"
	"github.com/syphaxalili/b2connect-store-sub001/model"
)

type PaymentController struct {
	Checkout *checkout.Service
	Catalog  *catalog.Store
	Gateway  *gateway.Client

	WebhookSecret string
	SuccessURL    string
	CancelURL     string
}

// CreateCheckoutSession validates the order intent and opens a hosted
// checkout session. Nothing is written to either store here; the intent
// travels in session metadata and is materialized by the webhook once
// payment is confirmed.
func (pc *PaymentController) CreateCheckoutSession(c *fiber.Ctx) error {
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
	for _, q := range body.Quantities {
		if q < 1 {
			return c.Status(400).JSON(fiber.Map{"error": "quantity must be at least 1"})
		}
	}

	shippingFee := decimal.Zero
	if body.ShippingFee != "" {
		var err error
		shippingFee, err = decimal.NewFromString(body.ShippingFee)
		if err != nil || shippingFee.IsNegative() {
			return c.Status(400).JSON(fiber.Map{"error": "invalid shipping_fee"})
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	products, err := pc.Catalog.FindByIDs(ctx, body.ProductIDs)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			return c.Status(404).JSON(fiber.Map{"error": "product not found"})
		}
		return c.Status(500).JSON(fiber.Map{"error": "internal error"})
	}

	items := make([]gateway.LineItem, 0, len(products))
	for i, p := range products {
		if p.Stock < body.Quantities[i] {
			return c.Status(400).JSON(fiber.Map{
				"error":      fmt.Sprintf("insufficient stock for product %s", p.ID.Hex()),
				"product_id": p.ID.Hex(),
				"available":  p.Stock,
			})
		}
		price, err := p.PriceDecimal()
		if err != nil {
			return c.Status(500).JSON(fiber.Map{"error": "internal error"})
		}
		items = append(items, gateway.LineItem{
			Name:       p.Name,
			UnitAmount: price.StringFixed(2),
			Quantity:   body.Quantities[i],
		})
	}

	meta := gateway.Metadata{
		UserID:      &userID,
		ProductIDs:  body.ProductIDs,
		Quantities:  body.Quantities,
		ShippingFee: shippingFee.StringFixed(2),
	}
	if body.ShippingAddress != nil {
		meta.ShippingAddress = &gateway.AddressInput{
			FullName: body.ShippingAddress.FullName,
			Line1:    body.ShippingAddress.Line1,
			Line2:    body.ShippingAddress.Line2,
			City:     body.ShippingAddress.City,
			Zip:      body.ShippingAddress.Zip,
			Country:  body.ShippingAddress.Country,
		}
	}

	session, err := pc.Gateway.CreateSession(ctx, items, meta, pc.SuccessURL, pc.CancelURL)
	if err != nil {
		log.Printf("checkout session creation failed: %v", err)
		return c.Status(502).JSON(fiber.Map{"error": "payment gateway unavailable"})
	}

	return c.JSON(fiber.Map{"sessionId": session.ID, "url": session.URL})
}

// Webhook receives completion events from the gateway. The raw body is
// signature-checked before anything is parsed, every valid delivery is
// acked, and replays of an already-processed session are acked without
// creating a second order.
func (pc *PaymentController) Webhook(c *fiber.Ctx) error {
	raw := c.Body()

	if pc.WebhookSecret == "" {
		log.Println("WARNING: webhook signature verification disabled (no secret configured)")
	}
	if err := gateway.VerifySignature(raw, c.Get(gateway.SignatureHeader), pc.WebhookSecret); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "signature verification failed"})
	}

	event, err := gateway.ParseEvent(raw)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "malformed event"})
	}

	if event.Type != gateway.EventCheckoutCompleted {
		return c.JSON(fiber.Map{"received": true})
	}

	intent, err := intentFromMetadata(event.Data.Metadata)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "malformed event metadata"})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	summary, err := pc.Checkout.CompleteSession(ctx, checkout.Event{
		ID:      event.ID,
		Type:    event.Type,
		Payload: raw,
	}, intent)
	if err != nil {
		if errors.Is(err, checkout.ErrAlreadyProcessed) {
			return c.JSON(fiber.Map{"received": true})
		}
		var stockErr *checkout.InsufficientStockError
		if errors.As(err, &stockErr) || errors.Is(err, checkout.ErrProductNotFound) ||
			errors.Is(err, checkout.ErrEmptyOrder) || errors.Is(err, checkout.ErrBadQuantity) {
			log.Printf("webhook %s rejected: %v", event.ID, err)
			return c.Status(400).JSON(fiber.Map{"error": "order could not be created"})
		}
		log.Printf("webhook %s failed: %v", event.ID, err)
		return c.Status(500).JSON(fiber.Map{"error": "internal error"})
	}

	if intent.UserID != nil {
		cache.Redis.Del(ctx, fmt.Sprintf("orders:%d", *intent.UserID))
	}
	cache.Redis.Del(ctx, "orders:all")

	log.Printf("webhook %s created order %d", event.ID, summary.OrderID)
	return c.JSON(fiber.Map{"received": true})
}

func intentFromMetadata(meta gateway.Metadata) (checkout.Intent, error) {
	if len(meta.ProductIDs) == 0 || len(meta.ProductIDs) != len(meta.Quantities) {
		return checkout.Intent{}, errors.New("mismatched metadata lines")
	}

	shippingFee := decimal.Zero
	if meta.ShippingFee != "" {
		var err error
		shippingFee, err = decimal.NewFromString(meta.ShippingFee)
		if err != nil {
			return checkout.Intent{}, err
		}
	}

	lines := make([]checkout.Line, 0, len(meta.ProductIDs))
	for i, id := range meta.ProductIDs {
		lines = append(lines, checkout.Line{ProductID: id, Qty: meta.Quantities[i]})
	}

	var addr *model.Address
	if meta.ShippingAddress != nil {
		addr = &model.Address{
			UserID:   meta.UserID,
			FullName: meta.ShippingAddress.FullName,
			Line1:    meta.ShippingAddress.Line1,
			Line2:    meta.ShippingAddress.Line2,
			City:     meta.ShippingAddress.City,
			Zip:      meta.ShippingAddress.Zip,
			Country:  meta.ShippingAddress.Country,
		}
	}

	return checkout.Intent{
		UserID:      meta.UserID,
		Lines:       lines,
		ShippingFee: shippingFee,
		Address:     addr,
	}, nil
}
