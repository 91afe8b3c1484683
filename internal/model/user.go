package model

import "time"

// User roles. Admins manage the catalog; guests self-register and may post
// comments.
const (
	RoleAdmin = "admin"
	RoleGuest = "guest"
)

// User is an account row. Email may be empty (legacy rows never had one),
// but non-empty emails are unique. PasswordHash is a bcrypt hash and is never
// serialised to JSON.
type User struct {
	ID           string    `json:"id"        db:"id"`
	Username     string    `json:"username"  db:"username"`
	Email        string    `json:"email"     db:"email"`
	PasswordHash string    `json:"-"         db:"password_hash"`
	Role         string    `json:"role"      db:"role"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
