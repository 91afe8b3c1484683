// Package repository declares the storage interfaces the service layer is
// written against. The sqlite subpackage is the only implementation; tests
// substitute in-memory fakes where useful.
package repository

import (
	"context"

	"github.com/HealthyWithVictor/storefront/internal/model"
)

// DefaultPageSize matches the storefront grid (12 products per page).
// The admin listing uses 10. MaxPageSize caps client-supplied page sizes so
// a single request cannot pull the whole table.
const (
	DefaultPageSize = 12
	MaxPageSize     = 100
)

// ProductFilter carries the loosely-typed listing parameters exactly as they
// arrive from the request. The query builder is responsible for making them
// safe: sort column and direction are checked against allow-lists, the search
// term is always a bound parameter, and out-of-range pages are clamped.
type ProductFilter struct {
	CategoryID string // empty = all categories
	Search     string // empty = no search; substring match on name/description
	SortColumn string // one of id|name|price|stock, anything else falls back
	SortDir    string // ASC or DESC (case-insensitive), fallback DESC
	Page       int    // 1-based; values < 1 are clamped to 1
	PageSize   int    // <= 0 means DefaultPageSize, > MaxPageSize is clamped
}

// ProductPage is one page of a filtered listing plus the totals the
// presentation layer needs to render pagination controls. TotalCount is
// computed with the same WHERE clause as the page itself.
type ProductPage struct {
	Items      []model.Product `json:"items"`
	TotalCount int             `json:"totalCount"`
	TotalPages int             `json:"totalPages"`
	Page       int             `json:"page"`
}

type CategoryRepository interface {
	CreateCategory(ctx context.Context, category *model.Category) error
	GetCategoryByID(ctx context.Context, id string) (*model.Category, error)
	ListCategories(ctx context.Context) ([]model.Category, error)
	RenameCategory(ctx context.Context, id, newName string) error
	// DeleteCategory removes the category row; product, image and comment rows
	// under it go with it through the schema's cascades, all in one statement.
	DeleteCategory(ctx context.Context, id string) error
}

type ProductRepository interface {
	CreateProduct(ctx context.Context, product *model.Product) error
	GetProductByID(ctx context.Context, id string) (*model.Product, error)
	ListProducts(ctx context.Context, filter ProductFilter) (*ProductPage, error)
	UpdateProduct(ctx context.Context, product *model.Product) error
	DeleteProduct(ctx context.Context, id string) error
}

type ImageRepository interface {
	// Insert stores a gallery row. The row becomes primary exactly when the
	// product has no images yet; the check and the insert run in one
	// transaction, and img.IsPrimary reflects the outcome on return.
	Insert(ctx context.Context, img *model.ProductImage) error
	GetImageByID(ctx context.Context, id string) (*model.ProductImage, error)
	// ListByProduct returns the gallery in display order:
	// is_primary DESC, sort_order ASC, id ASC.
	ListByProduct(ctx context.Context, productID string) ([]model.ProductImage, error)
	ListByCategory(ctx context.Context, categoryID string) ([]model.ProductImage, error)
	// DeleteImage removes a row and, when the removed row was primary,
	// promotes the remaining image with the lowest id in one transaction, so
	// the at-most-one-primary invariant holds at every commit point.
	DeleteImage(ctx context.Context, id string) error
	DeleteByProduct(ctx context.Context, productID string) error
	DeleteByCategory(ctx context.Context, categoryID string) error
}

type UserRepository interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)
}

type CommentRepository interface {
	CreateComment(ctx context.Context, comment *model.Comment) error
	GetCommentByID(ctx context.Context, id string) (*model.Comment, error)
	ListCommentsByProduct(ctx context.Context, productID string) ([]model.Comment, error)
	DeleteComment(ctx context.Context, id string) error
}
