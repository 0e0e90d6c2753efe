package model

import "time"

type Address struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    *uint     `json:"user_id"`
	FullName  string    `gorm:"size:255" json:"full_name"`
	Line1     string    `gorm:"size:255;not null" json:"line1"`
	Line2     string    `gorm:"size:255" json:"line2"`
	City      string    `gorm:"size:128;not null" json:"city"`
	Zip       string    `gorm:"size:32" json:"zip"`
	Country   string    `gorm:"size:64;not null" json:"country"`
	CreatedAt time.Time `json:"created_at"`
}
