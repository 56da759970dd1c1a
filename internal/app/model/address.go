package model

import "time"

// Address is a shipping destination
type Address struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Recipient string    `json:"recipient"`
	Phone     string    `json:"phone"`
	Province  string    `json:"province"`
	City      string    `json:"city"`
	District  string    `json:"district"`
	Detail    string    `json:"detail"`
	IsDefault bool      `json:"isDefault"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NewDefaultAddress is the placeholder address created for every fresh
// account, filled in by the user later.
func NewDefaultAddress(id, userID, recipient, phone string, now time.Time) Address {
	return Address{
		ID:        id,
		UserID:    userID,
		Recipient: recipient,
		Phone:     phone,
		Province:  "请选择",
		City:      "请选择",
		District:  "请选择",
		Detail:    "请填写详细地址",
		IsDefault: true,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
