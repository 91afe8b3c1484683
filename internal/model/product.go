package model

import "time"

// Product is a catalog entry. Price and stock are validated at the service
// boundary (both must be non-negative) and backed by CHECK constraints in the
// schema.
//
// CategoryID is an empty string for uncategorised products; the column is
// nullable and we map NULL to "" on scan, the same convention the rest of the
// codebase uses for optional text.
type Product struct {
	ID          string    `json:"id"          db:"id"`
	Name        string    `json:"name"        db:"name"`
	Description string    `json:"description" db:"description"`
	Price       float64   `json:"price"       db:"price"`
	Stock       int       `json:"stock"       db:"stock"`
	CategoryID  string    `json:"categoryId"  db:"category_id"`
	CreatedAt   time.Time `json:"createdAt"   db:"created_at"`
	UpdatedAt   time.Time `json:"updatedAt"   db:"updated_at"`

	// Denormalised listing fields, populated only by list queries.
	CategoryName    string `json:"categoryName,omitempty"`
	PrimaryImageURL string `json:"primaryImageUrl,omitempty"`
}
