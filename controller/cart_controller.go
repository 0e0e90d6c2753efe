package controller

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/syphaxalili/b2connect-store-sub001/model"
)

type CartController struct {
	DB *gorm.DB
}

func (cc *CartController) Get(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(uint)

	var cart model.Cart
	err := cc.DB.Where("owner_id = ?", userID).First(&cart).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return c.JSON(fiber.Map{"owner_id": userID, "products": []model.CartProduct{}})
	}
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to fetch cart"})
	}
	return c.JSON(cart)
}

func (cc *CartController) AddItem(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(uint)

	var body model.CartProduct
	if err := c.BodyParser(&body); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid payload"})
	}
	if body.ProductID == "" || body.Qty < 1 {
		return c.Status(400).JSON(fiber.Map{"error": "product_id and a positive qty are required"})
	}

	var cart model.Cart
	err := cc.DB.Where("owner_id = ?", userID).First(&cart).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return c.Status(500).JSON(fiber.Map{"error": "failed to fetch cart"})
	}

	var products []model.CartProduct
	if len(cart.Products) > 0 {
		_ = json.Unmarshal(cart.Products, &products)
	}

	merged := false
	for i := range products {
		if products[i].ProductID == body.ProductID {
			products[i].Qty += body.Qty
			merged = true
			break
		}
	}
	if !merged {
		products = append(products, body)
	}

	mergedJSON, _ := json.Marshal(products)

	if errors.Is(err, gorm.ErrRecordNotFound) {
		cart = model.Cart{
			OwnerID:   userID,
			Products:  datatypes.JSON(mergedJSON),
			CreatedAt: time.Now(),
		}
		if err := cc.DB.Create(&cart).Error; err != nil {
			return c.Status(500).JSON(fiber.Map{"error": "failed to create cart"})
		}
		return c.JSON(cart)
	}

	cart.Products = datatypes.JSON(mergedJSON)
	if err := cc.DB.Save(&cart).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to update cart"})
	}
	return c.JSON(cart)
}

func (cc *CartController) RemoveItem(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(uint)
	productID := c.Params("product_id")

	var cart model.Cart
	if err := cc.DB.Where("owner_id = ?", userID).First(&cart).Error; err != nil {
		return c.Status(404).JSON(fiber.Map{"error": "cart not found"})
	}

	var products []model.CartProduct
	if len(cart.Products) > 0 {
		_ = json.Unmarshal(cart.Products, &products)
	}

	kept := make([]model.CartProduct, 0, len(products))
	for _, p := range products {
		if p.ProductID != productID {
			kept = append(kept, p)
		}
	}
	if len(kept) == len(products) {
		return c.Status(404).JSON(fiber.Map{"error": "product not in cart"})
	}

	updatedJSON, _ := json.Marshal(kept)
	cart.Products = datatypes.JSON(updatedJSON)
	if err := cc.DB.Save(&cart).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to update cart"})
	}
	return c.JSON(cart)
}
