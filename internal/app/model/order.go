package model

import "time"

// Order statuses, kept in the storefront's display language
const (
	OrderStatusPending   = "待付款"
	OrderStatusPaid      = "已支付"
	OrderStatusShipped   = "已发货"
	OrderStatusCompleted = "已完成"
	OrderStatusCancelled = "已取消"
)

// orderTransitions is the forward path of an order. Cancellation is
// handled separately since it is allowed from any non-terminal state.
var orderTransitions = map[string]string{
	OrderStatusPending: OrderStatusPaid,
	OrderStatusPaid:    OrderStatusShipped,
	OrderStatusShipped: OrderStatusCompleted,
}

// CanTransition reports whether an order may move from one status to
// another. Terminal statuses never move.
func CanTransition(from, to string) bool {
	if from == OrderStatusCompleted || from == OrderStatusCancelled {
		return false
	}
	if to == OrderStatusCancelled {
		return true
	}
	return orderTransitions[from] == to
}

// OrderItem is a purchased line, snapshotted from the cart at checkout
type OrderItem struct {
	ProductID string  `json:"productId"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Image     string  `json:"image,omitempty"`
	Quantity  int     `json:"quantity"`
}

// Order is a placed order
type Order struct {
	ID          string      `json:"id"`
	UserID      string      `json:"userId"`
	Items       []OrderItem `json:"items"`
	Total       float64     `json:"total"`
	Status      string      `json:"status"`
	AddressID   string      `json:"addressId,omitempty"`
	Remark      string      `json:"remark,omitempty"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
	ShippedAt   *time.Time  `json:"shippedAt,omitempty"`
	CompletedAt *time.Time  `json:"completedAt,omitempty"`
}
