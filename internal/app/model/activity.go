package model

import "time"

// Activity actions recorded by the account layer
const (
	ActivityRegister       = "register"
	ActivityLogin          = "login"
	ActivityLogout         = "logout"
	ActivityLock           = "lock"
	ActivityPasswordReset  = "password_reset"
	ActivityProfileUpdate  = "profile_update"
	ActivityOrderPlaced    = "order_placed"
	ActivityOrderCancelled = "order_cancelled"
)

// Activity is one audit log entry
type Activity struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Action    string    `json:"action"`
	Detail    string    `json:"detail,omitempty"`
	IP        string    `json:"ip,omitempty"`
	UserAgent string    `json:"userAgent,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}
