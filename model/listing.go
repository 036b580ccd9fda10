package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// ListingRecord is one row of the shared listing collection. The same
// collection holds two variants: an open listing (User empty, quantity
// tracks remaining stock) and an order (User set, quantity always 1).
type ListingRecord struct {
	ID                uint64          `db:"id" json:"id"`
	RestaurantName    string          `db:"restaurant_name" json:"restaurant_name"`
	FoodName          string          `db:"food_name" json:"food_name"`
	Description       string          `db:"description" json:"description"`
	Address           string          `db:"address" json:"address"`
	District          string          `db:"district" json:"district"`
	OriginalPrice     decimal.Decimal `db:"-" json:"original_price"`
	DiscountedPrice   decimal.Decimal `db:"-" json:"discounted_price"`
	QuantityAvailable int64           `db:"quantity_available" json:"quantity_available"`
	Reserved          []string        `db:"-" json:"reserved"`
	Creator           string          `db:"creator" json:"creator,omitempty"`
	User              string          `db:"user" json:"user,omitempty"`
	Version           uint64          `db:"version" json:"-"`
	ExpiresAt         *time.Time      `db:"expires_at" json:"expires_at,omitempty"`
	CreatedAt         time.Time       `db:"created_at" json:"created_at"`
}

// IsOrder reports whether the record is a materialized one-unit claim
// rather than an open listing.
func (l *ListingRecord) IsOrder() bool {
	return l.User != ""
}

// HasReserved reports whether the given user already claimed a unit from
// this listing row.
func (l *ListingRecord) HasReserved(email string) bool {
	for _, r := range l.Reserved {
		if r == email {
			return true
		}
	}
	return false
}

// ListingPatch carries a partial field update. Nil fields are left
// untouched by the store.
type ListingPatch struct {
	QuantityAvailable *int64
	Reserved          *[]string
}

// CreateListingRequest is the payload for creating an open listing.
type CreateListingRequest struct {
	RestaurantName  string `json:"restaurant_name" validate:"required"`
	FoodName        string `json:"food_name" validate:"required"`
	Description     string `json:"description" validate:"required"`
	Address         string `json:"address" validate:"required"`
	District        string `json:"district" validate:"required"`
	OriginalPrice   string `json:"original_price" validate:"required"`
	DiscountedPrice string `json:"discounted_price" validate:"required"`
	Quantity        int64  `json:"quantity" validate:"required,gt=0"`
}

type CreateListingResponse struct {
	ListingID uint64     `json:"listing_id"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// ListingItem is the catalog projection of an open listing. Prices are
// display-formatted to two decimals.
type ListingItem struct {
	ID                uint64 `json:"id"`
	RestaurantName    string `json:"restaurant_name"`
	FoodName          string `json:"food_name"`
	Description       string `json:"description"`
	Address           string `json:"address"`
	District          string `json:"district"`
	OriginalPrice     string `json:"original_price"`
	DiscountedPrice   string `json:"discounted_price"`
	QuantityAvailable int64  `json:"quantity_available"`
}

type ListingListResponse struct {
	Items []ListingItem `json:"items"`
}

// OrderItem is the projection of an order record in a user's order list.
type OrderItem struct {
	ID              uint64 `json:"id"`
	RestaurantName  string `json:"restaurant_name"`
	FoodName        string `json:"food_name"`
	Description     string `json:"description"`
	Address         string `json:"address"`
	District        string `json:"district"`
	OriginalPrice   string `json:"original_price"`
	DiscountedPrice string `json:"discounted_price"`
}

type OrderListResponse struct {
	Items []OrderItem `json:"items"`
}

type ReserveResponse struct {
	OrderID uint64 `json:"order_id"`
}
