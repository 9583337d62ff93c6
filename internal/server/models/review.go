package models

import "time"

// Review is a product rating owned by the reviewer identified by ReviewerID.
// The database enforces one review per (product, reviewer) pair.
type Review struct {
	ID         string    `json:"id"`
	ProductID  string    `json:"product_id"`
	ReviewerID string    `json:"reviewer_id"`
	Rating     int       `json:"rating"`
	Comment    string    `json:"comment"`
	CreatedAt  time.Time `json:"created_at"`
}
