package domain

import "time"

// ThriftItem is a second-hand item listed for sale by its owner.
type ThriftItem struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	IsSold      bool      `json:"is_sold"`
	IsAvailable bool      `json:"is_available"`
	CreatedAt   time.Time `json:"created_at"`
}
