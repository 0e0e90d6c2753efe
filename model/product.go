package model

import (
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Product lives in the Mongo catalog. Price is a Decimal128 so money
// never touches float64 on its way through the store.
type Product struct {
	ID         primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Name       string               `bson:"name" json:"name"`
	Desc       string               `bson:"desc,omitempty" json:"desc"`
	Price      primitive.Decimal128 `bson:"price" json:"price"`
	Stock      int                  `bson:"stock" json:"stock"`
	CategoryID primitive.ObjectID   `bson:"categoryId,omitempty" json:"category_id"`
	CreatedAt  time.Time            `bson:"createdAt" json:"created_at"`
}

// PriceDecimal converts the stored Decimal128 into a decimal.Decimal
// for arithmetic.
func (p *Product) PriceDecimal() (decimal.Decimal, error) {
	return decimal.NewFromString(p.Price.String())
}

type Category struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name      string             `bson:"name" json:"name"`
	CreatedAt time.Time          `bson:"createdAt" json:"created_at"`
}
