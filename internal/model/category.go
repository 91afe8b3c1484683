// Package model defines the data structures shared across the application.
package model

import "time"

// Category groups products. Names are unique (case-sensitive, matching the
// UNIQUE constraint in the schema). Deleting a category removes every product
// under it, and transitively their images and comments.
type Category struct {
	ID        string    `json:"id"        db:"id"`
	Name      string    `json:"name"      db:"name"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}
