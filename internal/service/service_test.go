package service

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/HealthyWithVictor/storefront/internal/model"
	"github.com/HealthyWithVictor/storefront/internal/repository/sqlite"
	"github.com/HealthyWithVictor/storefront/internal/upload"
)

// testEnv wires the services against a real in-memory database and a
// throwaway upload directory. The file/row interplay is the interesting part
// of this layer, so faking the repositories would test very little.
type testEnv struct {
	db       *sqlite.DB
	store    *upload.Store
	imageSet *ImageSetManager
	admin    *AdminService
	catalog  *CatalogService
	comments *CommentService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := sqlite.New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	store, err := upload.NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create upload store: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	imageSet := NewImageSetManager(db, store, logger)
	return &testEnv{
		db:       db,
		store:    store,
		imageSet: imageSet,
		admin:    NewAdminService(db, db, imageSet, logger),
		catalog:  NewCatalogService(db, db, db, db, logger),
		comments: NewCommentService(db, db, db, logger),
	}
}

func (e *testEnv) createCategory(t *testing.T, name string) *model.Category {
	t.Helper()
	category, err := e.admin.CreateCategory(context.Background(), name)
	if err != nil {
		t.Fatalf("CreateCategory(%q) error = %v", name, err)
	}
	return category
}

func (e *testEnv) createProduct(t *testing.T, in CreateProductInput) *model.Product {
	t.Helper()
	product, err := e.admin.CreateProduct(context.Background(), in)
	if err != nil {
		t.Fatalf("CreateProduct(%q) error = %v", in.Name, err)
	}
	return product
}

func (e *testEnv) createUser(t *testing.T, username, role string) *model.User {
	t.Helper()
	user := &model.User{Username: username, PasswordHash: "$2a$04$hash", Role: role}
	if err := e.db.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("CreateUser(%q) error = %v", username, err)
	}
	return user
}

// upload fixtures

func pngUpload(name string) ImageUpload {
	return ImageUpload{Filename: name, Data: []byte("fake-png-bytes")}
}
