package models

import "time"

// MaxCarImages is the upper bound on images attached to a single car.
const MaxCarImages = 10

// Car represents a car listing owned by a single user. The owner is set at
// creation and never changes.
type Car struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Images      []string  `json:"images"`
	Tags        []string  `json:"tags"`
	UserID      string    `json:"userId"`
	CreatedAt   time.Time `json:"createdAt"`
}
