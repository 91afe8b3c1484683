package model

import "time"

// ProductImage is one entry in a product's gallery. ImageURL is a relative
// path ("uploads/<token>_<name>.<ext>") into the upload directory; the row and
// the file live and die together, with the file side handled by the image set
// manager.
//
// Invariant: a product has at most one image with IsPrimary set, and if it has
// any images at all, exactly one of them is primary.
type ProductImage struct {
	ID        string    `json:"id"        db:"id"`
	ProductID string    `json:"productId" db:"product_id"`
	ImageURL  string    `json:"imageUrl"  db:"image_url"`
	IsPrimary bool      `json:"isPrimary" db:"is_primary"`
	SortOrder int       `json:"sortOrder" db:"sort_order"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}
