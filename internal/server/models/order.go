package models

import "time"

// Order statuses. An order starts as pending and can only be cancelled
// while it is still pending.
const (
	OrderStatusPending   = "pending"
	OrderStatusCancelled = "cancelled"
)

// Order is a purchase owned by the buyer identified by BuyerID.
// TotalCents is the sum over items of unit price times quantity;
// CommissionCents is the marketplace cut already included in the total.
// Pickup point fields carry Packeta-style delivery metadata.
type Order struct {
	ID              string      `json:"id"`
	BuyerID         string      `json:"buyer_id"`
	Status          string      `json:"status"`
	TotalCents      int64       `json:"total_cents"`
	CommissionCents int64       `json:"commission_cents"`
	PickupPointID   string      `json:"pickup_point_id,omitempty"`
	PickupPointName string      `json:"pickup_point_name,omitempty"`
	CreatedAt       time.Time   `json:"created_at"`
	Items           []OrderItem `json:"items,omitempty"`
}

// OrderItem snapshots a product at purchase time. Name and unit price are
// copied from the product row so later catalog edits do not rewrite history.
type OrderItem struct {
	ID             string `json:"id"`
	OrderID        string `json:"order_id"`
	ProductID      string `json:"product_id"`
	SellerID       string `json:"seller_id"`
	Name           string `json:"name"`
	UnitPriceCents int64  `json:"unit_price_cents"`
	Quantity       int    `json:"quantity"`
}
