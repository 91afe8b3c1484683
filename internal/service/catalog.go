package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/HealthyWithVictor/storefront/internal/apperror"
	"github.com/HealthyWithVictor/storefront/internal/model"
	"github.com/HealthyWithVictor/storefront/internal/repository"
)

// ProductDetail is everything the product page shows: the product, its
// gallery (primary first) and its comments (newest first).
type ProductDetail struct {
	Product  *model.Product       `json:"product"`
	Images   []model.ProductImage `json:"images"`
	Comments []model.Comment      `json:"comments"`
}

// CatalogService answers the read-side queries of both the storefront and
// the admin listing. It adds no rules of its own beyond input trimming; the
// safety of the listing parameters is the query builder's job.
type CatalogService struct {
	categories repository.CategoryRepository
	products   repository.ProductRepository
	images     repository.ImageRepository
	comments   repository.CommentRepository
	logger     *slog.Logger
}

func NewCatalogService(
	categories repository.CategoryRepository,
	products repository.ProductRepository,
	images repository.ImageRepository,
	comments repository.CommentRepository,
	logger *slog.Logger,
) *CatalogService {
	return &CatalogService{
		categories: categories,
		products:   products,
		images:     images,
		comments:   comments,
		logger:     logger,
	}
}

// ListProducts returns one page of the filtered catalog together with the
// totals for pagination controls. Hostile or nonsensical sort/page inputs
// degrade to defaults instead of erroring.
func (s *CatalogService) ListProducts(ctx context.Context, filter repository.ProductFilter) (*repository.ProductPage, error) {
	page, err := s.products.ListProducts(ctx, filter)
	if err != nil {
		s.logger.Error("failed to list products", slog.String("error", err.Error()))
		return nil, fmt.Errorf("listing products: %w", err)
	}
	return page, nil
}

// GetProductDetail loads a product with its images and comments, or NotFound.
func (s *CatalogService) GetProductDetail(ctx context.Context, productID string) (*ProductDetail, error) {
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return nil, apperror.ValidationFailed("id", "product ID is required")
	}

	product, err := s.products.GetProductByID(ctx, productID)
	if err != nil {
		return nil, err
	}

	images, err := s.images.ListByProduct(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("loading product detail %s: %w", productID, err)
	}

	comments, err := s.comments.ListCommentsByProduct(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("loading product detail %s: %w", productID, err)
	}

	return &ProductDetail{
		Product:  product,
		Images:   images,
		Comments: comments,
	}, nil
}

// ListCategories returns all categories ordered by name.
func (s *CatalogService) ListCategories(ctx context.Context) ([]model.Category, error) {
	categories, err := s.categories.ListCategories(ctx)
	if err != nil {
		s.logger.Error("failed to list categories", slog.String("error", err.Error()))
		return nil, fmt.Errorf("listing categories: %w", err)
	}
	return categories, nil
}
