package model

import "time"

// Product is a catalog entry
type Product struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Price         float64   `json:"price"`
	OriginalPrice float64   `json:"originalPrice"`
	Category      string    `json:"category"`
	Image         string    `json:"image,omitempty"`
	Description   string    `json:"description,omitempty"`
	Stock         int       `json:"stock"`
	Sales         int       `json:"sales"`
	IsHot         bool      `json:"isHot"`
	IsOnSale      bool      `json:"isOnSale"`
	Tags          []string  `json:"tags,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}
