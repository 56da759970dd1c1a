package model

import "time"

// User roles
const (
	RoleCustomer = "customer"
	RoleSeller   = "seller"
	RoleAdmin    = "admin"
)

// Account status
const (
	StatusActive    = "active"
	StatusInactive  = "inactive"
	StatusSuspended = "suspended"
)

// Preferences holds per-user display settings
type Preferences struct {
	Theme         string `json:"theme"`
	Language      string `json:"language"`
	Notifications bool   `json:"notifications"`
}

// DefaultPreferences returns the settings a new account starts with
func DefaultPreferences() Preferences {
	return Preferences{
		Theme:         "light",
		Language:      "zh-CN",
		Notifications: true,
	}
}

// User is the account record. PasswordHash never leaves the server.
type User struct {
	ID           string      `json:"id"`
	Username     string      `json:"username"`
	Phone        string      `json:"phone"`
	Email        *string     `json:"email,omitempty"`
	PasswordHash string      `json:"passwordHash"`
	Status       string      `json:"status"`
	Role         string      `json:"role"`
	Points       int         `json:"points"`
	VIPLevel     int         `json:"vipLevel"`
	Avatar       string      `json:"avatar,omitempty"`
	Preferences  Preferences `json:"preferences"`
	CreatedAt    time.Time   `json:"createdAt"`
	UpdatedAt    time.Time   `json:"updatedAt"`
	LastLogin    *time.Time  `json:"lastLogin,omitempty"`
}

// PublicUser is the client-facing view of an account
type PublicUser struct {
	ID          string      `json:"id"`
	Username    string      `json:"username"`
	Phone       string      `json:"phone"`
	Email       *string     `json:"email,omitempty"`
	Status      string      `json:"status"`
	Role        string      `json:"role"`
	Points      int         `json:"points"`
	VIPLevel    int         `json:"vipLevel"`
	Avatar      string      `json:"avatar,omitempty"`
	Preferences Preferences `json:"preferences"`
	CreatedAt   time.Time   `json:"createdAt"`
	LastLogin   *time.Time  `json:"lastLogin,omitempty"`
}

// EffectiveRole returns the account role, defaulting to customer for
// records created before roles existed
func (u *PublicUser) EffectiveRole() string {
	if u.Role == "" {
		return RoleCustomer
	}
	return u.Role
}

// IsVIP reports whether the account reached VIP tier 2
func (u *PublicUser) IsVIP() bool {
	return u.VIPLevel >= 2
}

// Public strips credentials from the account record
func (u *User) Public() PublicUser {
	return PublicUser{
		ID:          u.ID,
		Username:    u.Username,
		Phone:       u.Phone,
		Email:       u.Email,
		Status:      u.Status,
		Role:        u.Role,
		Points:      u.Points,
		VIPLevel:    u.VIPLevel,
		Avatar:      u.Avatar,
		Preferences: u.Preferences,
		CreatedAt:   u.CreatedAt,
		LastLogin:   u.LastLogin,
	}
}
