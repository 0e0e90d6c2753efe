package controller

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/syphaxalili/b2connect-store-sub001/catalog"
	"github.com/syphaxalili/b2connect-store-sub001/model"
)

type CategoryController struct {
	Catalog *catalog.Store
}

func (cc *CategoryController) List(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	categories, err := cc.Catalog.ListCategories(ctx)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to fetch categories"})
	}
	if categories == nil {
		categories = []model.Category{}
	}
	return c.JSON(categories)
}

func (cc *CategoryController) Create(c *fiber.Ctx) error {
	var in model.Category
	if err := c.BodyParser(&in); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid payload"})
	}
	if in.Name == "" {
		return c.Status(400).JSON(fiber.Map{"error": "name is required"})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := cc.Catalog.CreateCategory(ctx, &in); err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "create failed"})
	}
	return c.Status(201).JSON(in)
}

func (cc *CategoryController) Delete(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := cc.Catalog.DeleteCategory(ctx, c.Params("id")); err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			return c.Status(404).JSON(fiber.Map{"error": "category not found"})
		}
		return c.Status(500).JSON(fiber.Map{"error": "delete failed"})
	}
	return c.SendStatus(204)
}
