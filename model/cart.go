package model

import (
	"time"

	"gorm.io/datatypes"
)

type Cart struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	OwnerID   uint           `gorm:"uniqueIndex;not null" json:"owner_id"`
	Products  datatypes.JSON `json:"products"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

type CartProduct struct {
	ProductID string `json:"product_id"`
	Qty       int    `json:"qty"`
}
