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

var _ repository.ImageRepository = (*DB)(nil)

// Insert stores a gallery row. Whether the row becomes primary is decided
// inside the transaction: the first image a product gets is primary, every
// later one is not. Both the check and the insert commit together, so no
// interleaving can produce two primaries.
func (db *DB) Insert(ctx context.Context, img *model.ProductImage) error {
	img.ID = xid.New().String()
	img.CreatedAt = time.Now()

	err := db.inTx(ctx, func(tx *sql.Tx) error {
		var count int
		err := tx.QueryRowContext(ctx,
			`SELECT COUNT(id) FROM product_images WHERE product_id = ?`, img.ProductID,
		).Scan(&count)
		if err != nil {
			return fmt.Errorf("counting images for product %s: %w", img.ProductID, err)
		}
		img.IsPrimary = count == 0

		_, err = tx.ExecContext(ctx,
			`INSERT INTO product_images (id, product_id, image_url, is_primary, sort_order, created_at)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			img.ID, img.ProductID, img.ImageURL, img.IsPrimary, img.SortOrder, img.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("inserting image: %w", err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("sqlite: inserting image for product %s: %w", img.ProductID, err)
	}
	return nil
}

func (db *DB) GetImageByID(ctx context.Context, id string) (*model.ProductImage, error) {
	var img model.ProductImage
	err := db.conn.QueryRowContext(ctx,
		`SELECT id, product_id, image_url, is_primary, sort_order, created_at
		 FROM product_images WHERE id = ?`,
		id,
	).Scan(&img.ID, &img.ProductID, &img.ImageURL, &img.IsPrimary, &img.SortOrder, &img.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("image", id)
		}
		return nil, fmt.Errorf("sqlite: getting image %s: %w", id, err)
	}
	return &img, nil
}

// ListByProduct returns the gallery in display order: primary first, then by
// sort_order, then by id for a stable tiebreak.
func (db *DB) ListByProduct(ctx context.Context, productID string) ([]model.ProductImage, error) {
	return db.scanImages(ctx,
		`SELECT id, product_id, image_url, is_primary, sort_order, created_at
		 FROM product_images
		 WHERE product_id = ?
		 ORDER BY is_primary DESC, sort_order ASC, id ASC`,
		productID)
}

// ListByCategory returns every image row belonging to products in the given
// category. The admin delete path uses this to clean up files before the
// category row (and, by cascade, these rows) is removed.
func (db *DB) ListByCategory(ctx context.Context, categoryID string) ([]model.ProductImage, error) {
	return db.scanImages(ctx,
		`SELECT i.id, i.product_id, i.image_url, i.is_primary, i.sort_order, i.created_at
		 FROM product_images i
		 JOIN products p ON i.product_id = p.id
		 WHERE p.category_id = ?
		 ORDER BY i.id ASC`,
		categoryID)
}

func (db *DB) scanImages(ctx context.Context, query string, arg any) ([]model.ProductImage, error) {
	rows, err := db.conn.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing images: %w", err)
	}
	defer rows.Close()

	var images []model.ProductImage
	for rows.Next() {
		var img model.ProductImage
		if err := rows.Scan(
			&img.ID, &img.ProductID, &img.ImageURL, &img.IsPrimary, &img.SortOrder, &img.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("sqlite: scanning image row: %w", err)
		}
		images = append(images, img)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating images: %w", err)
	}
	return images, nil
}

// DeleteImage removes one row. If the removed row was the product's primary,
// the remaining image with the lowest id is promoted in the same transaction;
// with xid ids "lowest" means "added earliest". A product whose last image is
// deleted simply has none.
func (db *DB) DeleteImage(ctx context.Context, id string) error {
	err := db.inTx(ctx, func(tx *sql.Tx) error {
		var productID string
		var wasPrimary bool
		err := tx.QueryRowContext(ctx,
			`SELECT product_id, is_primary FROM product_images WHERE id = ?`, id,
		).Scan(&productID, &wasPrimary)
		if err != nil {
			if err == sql.ErrNoRows {
				return apperror.NotFound("image", id)
			}
			return fmt.Errorf("loading image %s: %w", id, err)
		}

		if _, err := tx.ExecContext(ctx,
			`DELETE FROM product_images WHERE id = ?`, id); err != nil {
			return fmt.Errorf("deleting image %s: %w", id, err)
		}

		if wasPrimary {
			_, err := tx.ExecContext(ctx,
				`UPDATE product_images SET is_primary = 1
				 WHERE id = (SELECT id FROM product_images
				             WHERE product_id = ? ORDER BY id ASC LIMIT 1)`,
				productID,
			)
			if err != nil {
				return fmt.Errorf("re-electing primary image for product %s: %w", productID, err)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("sqlite: deleting image %s: %w", id, err)
	}
	return nil
}

// DeleteByProduct removes every image row of a product. Deleting all rows at
// once never strands a non-primary set, so no re-election is needed.
func (db *DB) DeleteByProduct(ctx context.Context, productID string) error {
	_, err := db.conn.ExecContext(ctx,
		`DELETE FROM product_images WHERE product_id = ?`, productID)
	if err != nil {
		return fmt.Errorf("sqlite: deleting images for product %s: %w", productID, err)
	}
	return nil
}

// DeleteByCategory removes every image row under a category's products.
func (db *DB) DeleteByCategory(ctx context.Context, categoryID string) error {
	_, err := db.conn.ExecContext(ctx,
		`DELETE FROM product_images
		 WHERE product_id IN (SELECT id FROM products WHERE category_id = ?)`,
		categoryID)
	if err != nil {
		return fmt.Errorf("sqlite: deleting images for category %s: %w", categoryID, err)
	}
	return nil
}
