package model

import (
	"time"

	"github.com/foodforall/marketplace/constant"
)

// AccountEntity represents the account table entity. Restaurant profile
// fields are empty for user accounts.
type AccountEntity struct {
	ID           uint64               `db:"id" json:"id"`
	Role         constant.AccountRole `db:"role" json:"role"`
	Name         string               `db:"name" json:"name"`
	Email        string               `db:"email" json:"email"`
	Phone        string               `db:"phone" json:"phone"`
	PasswordHash string               `db:"password_hash" json:"-"`
	Address      string               `db:"address" json:"address,omitempty"`
	District     string               `db:"district" json:"district,omitempty"`
	OpeningTime  string               `db:"opening_time" json:"opening_time,omitempty"`
	ClosingTime  string               `db:"closing_time" json:"closing_time,omitempty"`
	CreatedAt    time.Time            `db:"created_at" json:"created_at"`
	UpdatedAt    *time.Time           `db:"updated_at" json:"updated_at,omitempty"`
}

// AccountFilter for querying accounts
type AccountFilter struct {
	ID    uint64
	Email string
	Phone string
}

// RegisterUserRequest for user account registration
type RegisterUserRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Phone    string `json:"phone" validate:"required"`
	Password string `json:"password" validate:"required,min=6"`
}

// RegisterRestaurantRequest for restaurant account registration. Opening
// and closing times use 24h "HH:MM" and the range is validated before any
// store call.
type RegisterRestaurantRequest struct {
	Name        string `json:"name" validate:"required"`
	Email       string `json:"email" validate:"required,email"`
	Phone       string `json:"phone" validate:"required"`
	Password    string `json:"password" validate:"required,min=6"`
	Address     string `json:"address" validate:"required"`
	District    string `json:"district" validate:"required"`
	OpeningTime string `json:"opening_time" validate:"required"`
	ClosingTime string `json:"closing_time" validate:"required"`
}

// LoginRequest for login (accepts email or phone)
type LoginRequest struct {
	Identifier string `json:"identifier" validate:"required"` // email or phone
	Password   string `json:"password" validate:"required"`
}

type LoginResponse struct {
	Name  string               `json:"name"`
	Email string               `json:"email"`
	Role  constant.AccountRole `json:"role"`
	Token string               `json:"token"`
}

type RegisterResponse struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// TokenIdentity is the authenticated identity resolved from a bearer
// token, attached to the request context by the auth middleware.
type TokenIdentity struct {
	AccountID uint64
	Email     string
	Role      constant.AccountRole
}
