package controller

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/syphaxalili/b2connect-store-sub001/catalog"
	"github.com/syphaxalili/b2connect-store-sub001/model"
)

type ProductController struct {
	Catalog *catalog.Store
}

type productInput struct {
	Name       string `json:"name"`
	Desc       string `json:"desc"`
	Price      string `json:"price"` // decimal string, e.g. "10.00"
	Stock      int    `json:"stock"`
	CategoryID string `json:"category_id"`
}

func (pc *ProductController) List(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	products, err := pc.Catalog.ListProducts(ctx, c.Query("category"))
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			return c.Status(404).JSON(fiber.Map{"error": "category not found"})
		}
		return c.Status(500).JSON(fiber.Map{"error": "failed to fetch products"})
	}
	if products == nil {
		products = []model.Product{}
	}
	return c.JSON(products)
}

func (pc *ProductController) Get(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	p, err := pc.Catalog.GetProduct(ctx, c.Params("id"))
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			return c.Status(404).JSON(fiber.Map{"error": "product not found"})
		}
		return c.Status(500).JSON(fiber.Map{"error": "internal error"})
	}
	return c.JSON(p)
}

func (pc *ProductController) Create(c *fiber.Ctx) error {
	var in productInput
	if err := c.BodyParser(&in); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid payload"})
	}
	if in.Name == "" || in.Price == "" {
		return c.Status(400).JSON(fiber.Map{"error": "name and price are required"})
	}
	if in.Stock < 0 {
		return c.Status(400).JSON(fiber.Map{"error": "stock cannot be negative"})
	}

	price, err := primitive.ParseDecimal128(in.Price)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid price"})
	}

	p := model.Product{
		Name:  in.Name,
		Desc:  in.Desc,
		Price: price,
		Stock: in.Stock,
	}
	if in.CategoryID != "" {
		oid, err := primitive.ObjectIDFromHex(in.CategoryID)
		if err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "invalid category_id"})
		}
		p.CategoryID = oid
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := pc.Catalog.CreateProduct(ctx, &p); err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "create failed"})
	}
	return c.Status(201).JSON(p)
}

func (pc *ProductController) Update(c *fiber.Ctx) error {
	var in productInput
	if err := c.BodyParser(&in); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid payload"})
	}

	update := bson.M{}
	if in.Name != "" {
		update["name"] = in.Name
	}
	if in.Desc != "" {
		update["desc"] = in.Desc
	}
	if in.Price != "" {
		price, err := primitive.ParseDecimal128(in.Price)
		if err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "invalid price"})
		}
		update["price"] = price
	}
	if in.Stock > 0 {
		update["stock"] = in.Stock
	}
	if len(update) == 0 {
		return c.Status(400).JSON(fiber.Map{"error": "nothing to update"})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := pc.Catalog.UpdateProduct(ctx, c.Params("id"), update); err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			return c.Status(404).JSON(fiber.Map{"error": "product not found"})
		}
		return c.Status(500).JSON(fiber.Map{"error": "update failed"})
	}

	p, err := pc.Catalog.GetProduct(ctx, c.Params("id"))
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "internal error"})
	}
	return c.JSON(p)
}

func (pc *ProductController) Delete(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := pc.Catalog.DeleteProduct(ctx, c.Params("id")); err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			return c.Status(404).JSON(fiber.Map{"error": "product not found"})
		}
		return c.Status(500).JSON(fiber.Map{"error": "delete failed"})
	}
	return c.SendStatus(204)
}
