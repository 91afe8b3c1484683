package sqlite

import (
	"context"
	"testing"

	"github.com/HealthyWithVictor/storefront/internal/model"
)

// newTestDB opens a fresh in-memory database with the full schema applied.
// Each test gets its own database, destroyed when the connection closes.
func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func createCategory(t *testing.T, db *DB, name string) *model.Category {
	t.Helper()
	category := &model.Category{Name: name}
	if err := db.CreateCategory(context.Background(), category); err != nil {
		t.Fatalf("failed to create test category: %v", err)
	}
	return category
}

func createProduct(t *testing.T, db *DB, name string, price float64, categoryID string) *model.Product {
	t.Helper()
	product := &model.Product{
		Name:       name,
		Price:      price,
		CategoryID: categoryID,
	}
	if err := db.CreateProduct(context.Background(), product); err != nil {
		t.Fatalf("failed to create test product: %v", err)
	}
	return product
}

func insertImage(t *testing.T, db *DB, productID, url string) *model.ProductImage {
	t.Helper()
	img := &model.ProductImage{ProductID: productID, ImageURL: url}
	if err := db.Insert(context.Background(), img); err != nil {
		t.Fatalf("failed to insert test image: %v", err)
	}
	return img
}

func createUser(t *testing.T, db *DB, username, role string) *model.User {
	t.Helper()
	user := &model.User{
		Username:     username,
		PasswordHash: "$2a$04$fakehashfortests",
		Role:         role,
	}
	if err := db.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}
