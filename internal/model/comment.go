package model

import "time"

// Comment is a guest comment on a product. Username is a snapshot taken at
// posting time so the comment keeps displaying correctly even if the account
// is later renamed or removed. Comments cascade away with their product.
type Comment struct {
	ID        string    `json:"id"        db:"id"`
	ProductID string    `json:"productId" db:"product_id"`
	UserID    string    `json:"userId"    db:"user_id"`
	Username  string    `json:"username"  db:"username"`
	Body      string    `json:"body"      db:"body"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}
