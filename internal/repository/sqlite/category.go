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

var _ repository.CategoryRepository = (*DB)(nil)

// CreateCategory inserts a new category. Name uniqueness is checked inside the same
// transaction as the insert (case-sensitive, matching the UNIQUE constraint),
// so two categories can never end up sharing a name.
func (db *DB) CreateCategory(ctx context.Context, category *model.Category) error {
	category.ID = xid.New().String()
	category.CreatedAt = time.Now()

	err := db.inTx(ctx, func(tx *sql.Tx) error {
		var existing string
		err := tx.QueryRowContext(ctx,
			`SELECT id FROM categories WHERE name = ?`, category.Name,
		).Scan(&existing)
		if err == nil {
			return apperror.Conflict("category", category.Name)
		}
		if err != sql.ErrNoRows {
			return fmt.Errorf("checking category name %q: %w", category.Name, err)
		}

		_, err = tx.ExecContext(ctx,
			`INSERT INTO categories (id, name, created_at) VALUES (?, ?, ?)`,
			category.ID, category.Name, category.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("inserting category: %w", err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("sqlite: creating category: %w", err)
	}
	return nil
}

func (db *DB) GetCategoryByID(ctx context.Context, id string) (*model.Category, error) {
	var c model.Category
	err := db.conn.QueryRowContext(ctx,
		`SELECT id, name, created_at FROM categories WHERE id = ?`, id,
	).Scan(&c.ID, &c.Name, &c.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("category", id)
		}
		return nil, fmt.Errorf("sqlite: getting category %s: %w", id, err)
	}
	return &c, nil
}

// ListCategories returns every category ordered by name, the order the storefront's
// category menu shows them in.
func (db *DB) ListCategories(ctx context.Context) ([]model.Category, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, name, created_at FROM categories ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing categories: %w", err)
	}
	defer rows.Close()

	var categories []model.Category
	for rows.Next() {
		var c model.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("sqlite: scanning category row: %w", err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating categories: %w", err)
	}
	return categories, nil
}

// RenameCategory changes a category's name. Conflict if another category already
// holds newName; NotFound if the id does not exist.
func (db *DB) RenameCategory(ctx context.Context, id, newName string) error {
	err := db.inTx(ctx, func(tx *sql.Tx) error {
		var existing string
		err := tx.QueryRowContext(ctx,
			`SELECT id FROM categories WHERE name = ? AND id != ?`, newName, id,
		).Scan(&existing)
		if err == nil {
			return apperror.Conflict("category", newName)
		}
		if err != sql.ErrNoRows {
			return fmt.Errorf("checking category name %q: %w", newName, err)
		}

		result, err := tx.ExecContext(ctx,
			`UPDATE categories SET name = ? WHERE id = ?`, newName, id)
		if err != nil {
			return fmt.Errorf("updating category: %w", err)
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("checking rows affected: %w", err)
		}
		if affected == 0 {
			return apperror.NotFound("category", id)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("sqlite: renaming category %s: %w", id, err)
	}
	return nil
}

// DeleteCategory removes the category row. The ON DELETE CASCADE chain takes the
// category's products with it, and theirs takes images and comments. One
// statement, so the whole subtree disappears atomically.
func (db *DB) DeleteCategory(ctx context.Context, id string) error {
	result, err := db.conn.ExecContext(ctx,
		`DELETE FROM categories WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting category %s: %w", id, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if affected == 0 {
		return apperror.NotFound("category", id)
	}
	return nil
}
