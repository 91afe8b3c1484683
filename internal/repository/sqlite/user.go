package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/xid"

	"github.com/HealthyWithVictor/storefront/internal/apperror"
	"github.com/HealthyWithVictor/storefront/internal/model"
	"github.com/HealthyWithVictor/storefront/internal/repository"
)

var _ repository.UserRepository = (*DB)(nil)

// CreateUser inserts a new account. Username uniqueness, and email uniqueness
// for non-empty emails, are checked in the same transaction as the insert and
// reported as Conflict.
func (db *DB) CreateUser(ctx context.Context, user *model.User) error {
	user.ID = xid.New().String()
	user.CreatedAt = time.Now()

	err := db.inTx(ctx, func(tx *sql.Tx) error {
		var existing string
		err := tx.QueryRowContext(ctx,
			`SELECT id FROM users WHERE username = ?`, user.Username,
		).Scan(&existing)
		if err == nil {
			return apperror.Conflict("username", user.Username)
		}
		if err != sql.ErrNoRows {
			return fmt.Errorf("checking username %q: %w", user.Username, err)
		}

		if user.Email != "" {
			err = tx.QueryRowContext(ctx,
				`SELECT id FROM users WHERE email = ?`, user.Email,
			).Scan(&existing)
			if err == nil {
				return apperror.Conflict("email", user.Email)
			}
			if err != sql.ErrNoRows {
				return fmt.Errorf("checking email %q: %w", user.Email, err)
			}
		}

		_, err = tx.ExecContext(ctx,
			`INSERT INTO users (id, username, email, password_hash, role, created_at)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			user.ID, user.Username, user.Email, user.PasswordHash, user.Role, user.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("inserting user: %w", err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("sqlite: creating user %q: %w", user.Username, err)
	}
	return nil
}

func (db *DB) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	return db.scanUser(ctx,
		`SELECT id, username, email, password_hash, role, created_at
		 FROM users WHERE id = ?`, id, id)
}

func (db *DB) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	return db.scanUser(ctx,
		`SELECT id, username, email, password_hash, role, created_at
		 FROM users WHERE username = ?`, username, username)
}

func (db *DB) scanUser(ctx context.Context, query string, arg any, label string) (*model.User, error) {
	var u model.User
	err := db.conn.QueryRowContext(ctx, query, arg).Scan(
		&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.Role, &u.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("user", label)
		}
		return nil, fmt.Errorf("sqlite: getting user %s: %w", label, err)
	}
	return &u, nil
}
