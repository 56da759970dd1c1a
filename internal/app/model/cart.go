package model

import "time"

// CartItem is one line of a user's cart. Product fields are copied in
// at add time so the cart survives catalog edits.
type CartItem struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	ProductID string    `json:"productId"`
	Name      string    `json:"name"`
	Price     float64   `json:"price"`
	Image     string    `json:"image,omitempty"`
	Category  string    `json:"category,omitempty"`
	Quantity  int       `json:"quantity"`
	AddedAt   time.Time `json:"addedAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Subtotal is the line total
func (c *CartItem) Subtotal() float64 {
	return c.Price * float64(c.Quantity)
}
