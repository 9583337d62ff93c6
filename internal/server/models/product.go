package models

import "time"

// Product is a catalog listing owned by the seller identified by SellerID.
// Prices are euro cents.
type Product struct {
	ID          string    `json:"id"`
	SellerID    string    `json:"seller_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	PriceCents  int64     `json:"price_cents"`
	Currency    string    `json:"currency"`
	ImageKey    string    `json:"image_key,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ProductFilter narrows and pages a catalog listing. Zero values mean
// "no constraint"; Limit is capped by the repository.
type ProductFilter struct {
	Category      string
	Search        string
	MinPriceCents int64
	MaxPriceCents int64
	Limit         int
	Offset        int
}
