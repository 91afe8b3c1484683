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

var _ repository.ProductRepository = (*DB)(nil)

// CreateProduct inserts a new product row. The caller's struct gets the generated
// id and timestamps filled in.
func (db *DB) CreateProduct(ctx context.Context, product *model.Product) error {
	product.ID = xid.New().String()
	now := time.Now()
	product.CreatedAt = now
	product.UpdatedAt = now

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO products (id, name, description, price, stock, category_id, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		product.ID,
		product.Name,
		product.Description,
		product.Price,
		product.Stock,
		nullable(product.CategoryID),
		product.CreatedAt,
		product.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating product: %w", err)
	}
	return nil
}

func (db *DB) GetProductByID(ctx context.Context, id string) (*model.Product, error) {
	var p model.Product
	var categoryID, categoryName sql.NullString

	err := db.conn.QueryRowContext(ctx,
		`SELECT p.id, p.name, p.description, p.price, p.stock, p.category_id,
		        p.created_at, p.updated_at, c.name
		 FROM products p
		 LEFT JOIN categories c ON p.category_id = c.id
		 WHERE p.id = ?`,
		id,
	).Scan(
		&p.ID, &p.Name, &p.Description, &p.Price, &p.Stock, &categoryID,
		&p.CreatedAt, &p.UpdatedAt, &categoryName,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("product", id)
		}
		return nil, fmt.Errorf("sqlite: getting product %s: %w", id, err)
	}

	p.CategoryID = categoryID.String
	p.CategoryName = categoryName.String
	return &p, nil
}

// ListProducts runs the filtered, sorted, paginated listing. The WHERE fragment is
// built once and shared by the count query and the page query so the totals
// always agree with the rows.
//
// Each row carries the category name and the primary image URL the way the
// storefront grid renders them, in one query without per-product lookups.
func (db *DB) ListProducts(ctx context.Context, filter repository.ProductFilter) (*repository.ProductPage, error) {
	whereSQL, whereArgs := buildProductWhere(filter)
	orderSQL := buildProductOrderBy(filter)
	limit, offset, page := pageBounds(filter)

	var total int
	countSQL := fmt.Sprintf(`SELECT COUNT(p.id) FROM products p %s`, whereSQL)
	if err := db.conn.QueryRowContext(ctx, countSQL, whereArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("sqlite: counting products: %w", err)
	}

	pageSQL := fmt.Sprintf(`
		SELECT p.id, p.name, p.description, p.price, p.stock, p.category_id,
		       p.created_at, p.updated_at,
		       c.name,
		       (SELECT image_url FROM product_images
		        WHERE product_id = p.id AND is_primary = 1 LIMIT 1)
		FROM products p
		LEFT JOIN categories c ON p.category_id = c.id
		%s
		%s
		LIMIT ? OFFSET ?`, whereSQL, orderSQL)

	args := append(append([]any{}, whereArgs...), limit, offset)
	rows, err := db.conn.QueryContext(ctx, pageSQL, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing products: %w", err)
	}
	defer rows.Close()

	items := make([]model.Product, 0, limit)
	for rows.Next() {
		var p model.Product
		var categoryID, categoryName, primaryURL sql.NullString
		if err := rows.Scan(
			&p.ID, &p.Name, &p.Description, &p.Price, &p.Stock, &categoryID,
			&p.CreatedAt, &p.UpdatedAt, &categoryName, &primaryURL,
		); err != nil {
			return nil, fmt.Errorf("sqlite: scanning product row: %w", err)
		}
		p.CategoryID = categoryID.String
		p.CategoryName = categoryName.String
		p.PrimaryImageURL = primaryURL.String
		items = append(items, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating products: %w", err)
	}

	totalPages := (total + limit - 1) / limit

	return &repository.ProductPage{
		Items:      items,
		TotalCount: total,
		TotalPages: totalPages,
		Page:       page,
	}, nil
}

// UpdateProduct rewrites the scalar fields. Id and created_at never change;
// updated_at is always refreshed.
func (db *DB) UpdateProduct(ctx context.Context, product *model.Product) error {
	product.UpdatedAt = time.Now()

	result, err := db.conn.ExecContext(ctx,
		`UPDATE products
		 SET name = ?, description = ?, price = ?, stock = ?, category_id = ?, updated_at = ?
		 WHERE id = ?`,
		product.Name,
		product.Description,
		product.Price,
		product.Stock,
		nullable(product.CategoryID),
		product.UpdatedAt,
		product.ID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating product %s: %w", product.ID, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if affected == 0 {
		return apperror.NotFound("product", product.ID)
	}
	return nil
}

// DeleteProduct removes the product row; image and comment rows cascade away in the
// same statement.
func (db *DB) DeleteProduct(ctx context.Context, id string) error {
	result, err := db.conn.ExecContext(ctx,
		`DELETE FROM products WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting product %s: %w", id, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if affected == 0 {
		return apperror.NotFound("product", id)
	}
	return nil
}

// nullable maps "" to NULL for optional foreign keys.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
