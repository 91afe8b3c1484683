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

const MaxProductNameLength = 200

// CreateProductInput is the validated boundary struct for product creation.
// Images are handed over in submission order; the first one becomes the
// primary image.
type CreateProductInput struct {
	Name        string
	Description string
	Price       float64
	Stock       int
	CategoryID  string // empty = uncategorised
	Images      []ImageUpload
}

// UpdateProductInput carries the new scalar values plus any images to append.
// Existing images are never replaced; a newly uploaded image becomes primary
// only if the product had none.
type UpdateProductInput struct {
	Name        string
	Description string
	Price       float64
	Stock       int
	CategoryID  string
	NewImages   []ImageUpload
}

// AdminService implements the admin-only mutations: categories, products and
// their galleries. It owns the cascade ordering: files are cleaned up by the
// image set manager before the owning row is deleted, because the database
// cascade removes rows only.
type AdminService struct {
	categories repository.CategoryRepository
	products   repository.ProductRepository
	imageSet   *ImageSetManager
	logger     *slog.Logger
}

func NewAdminService(
	categories repository.CategoryRepository,
	products repository.ProductRepository,
	imageSet *ImageSetManager,
	logger *slog.Logger,
) *AdminService {
	return &AdminService{
		categories: categories,
		products:   products,
		imageSet:   imageSet,
		logger:     logger,
	}
}

// CreateCategory adds a category. Duplicate names (case-sensitive) are a
// Conflict.
func (s *AdminService) CreateCategory(ctx context.Context, name string) (*model.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperror.ValidationFailed("name", "category name is required")
	}

	category := &model.Category{Name: name}
	if err := s.categories.CreateCategory(ctx, category); err != nil {
		return nil, err
	}

	s.logger.Info("category created",
		slog.String("id", category.ID),
		slog.String("name", category.Name),
	)
	return category, nil
}

// RenameCategory changes a category's name; Conflict if another category
// already holds it.
func (s *AdminService) RenameCategory(ctx context.Context, id, newName string) error {
	newName = strings.TrimSpace(newName)
	if newName == "" {
		return apperror.ValidationFailed("name", "category name is required")
	}

	if err := s.categories.RenameCategory(ctx, id, newName); err != nil {
		return err
	}

	s.logger.Info("category renamed",
		slog.String("id", id),
		slog.String("name", newName),
	)
	return nil
}

// DeleteCategory removes a category and everything under it. Image files go
// first through the image set manager (their rows with them); then the
// category row, whose cascade takes the products and their comments. Files
// already removed are not restored if the row delete fails.
func (s *AdminService) DeleteCategory(ctx context.Context, id string) error {
	if _, err := s.categories.GetCategoryByID(ctx, id); err != nil {
		return err
	}

	if err := s.imageSet.DeleteAllForCategory(ctx, id); err != nil {
		return fmt.Errorf("deleting category %s: %w", id, err)
	}

	if err := s.categories.DeleteCategory(ctx, id); err != nil {
		return err
	}

	s.logger.Info("category deleted", slog.String("id", id))
	return nil
}

// CreateProduct validates everything up front, fields and every upload's
// extension, so nothing is written when the input is bad. The product row
// goes in first, then the images in submission order (the first becomes
// primary). If an upload fails partway, the rows and files created so far are
// unwound, leaving no product that references a missing image.
func (s *AdminService) CreateProduct(ctx context.Context, in CreateProductInput) (*model.Product, error) {
	if err := s.validateProductFields(in.Name, in.Price, in.Stock); err != nil {
		return nil, err
	}
	for _, up := range in.Images {
		if err := ValidateUpload(up.Filename); err != nil {
			return nil, err
		}
	}
	if in.CategoryID != "" {
		if _, err := s.categories.GetCategoryByID(ctx, in.CategoryID); err != nil {
			return nil, err
		}
	}

	product := &model.Product{
		Name:        strings.TrimSpace(in.Name),
		Description: strings.TrimSpace(in.Description),
		Price:       in.Price,
		Stock:       in.Stock,
		CategoryID:  in.CategoryID,
	}
	if err := s.products.CreateProduct(ctx, product); err != nil {
		return nil, err
	}

	for _, up := range in.Images {
		if _, err := s.imageSet.AddImage(ctx, product.ID, up); err != nil {
			s.unwindCreate(ctx, product.ID)
			return nil, fmt.Errorf("creating product %q: %w", product.Name, err)
		}
	}

	s.logger.Info("product created",
		slog.String("id", product.ID),
		slog.String("name", product.Name),
		slog.Int("images", len(in.Images)),
	)
	return product, nil
}

// unwindCreate removes a half-created product after an upload failure:
// gallery first (rows and files), then the product row.
func (s *AdminService) unwindCreate(ctx context.Context, productID string) {
	if err := s.imageSet.DeleteAllForProduct(ctx, productID); err != nil {
		s.logger.Error("failed to unwind images of half-created product",
			slog.String("productID", productID),
			slog.String("error", err.Error()),
		)
	}
	if err := s.products.DeleteProduct(ctx, productID); err != nil {
		s.logger.Error("failed to unwind half-created product",
			slog.String("productID", productID),
			slog.String("error", err.Error()),
		)
	}
}

// UpdateProduct rewrites the scalar fields and appends any new uploads.
// NotFound if the id does not exist. New images never displace an existing
// primary: the insert transaction marks one primary only when the gallery was
// empty. If an upload fails, the images added by this call are removed again
// and the scalar fields are left untouched.
func (s *AdminService) UpdateProduct(ctx context.Context, id string, in UpdateProductInput) (*model.Product, error) {
	if err := s.validateProductFields(in.Name, in.Price, in.Stock); err != nil {
		return nil, err
	}
	for _, up := range in.NewImages {
		if err := ValidateUpload(up.Filename); err != nil {
			return nil, err
		}
	}

	product, err := s.products.GetProductByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.CategoryID != "" && in.CategoryID != product.CategoryID {
		if _, err := s.categories.GetCategoryByID(ctx, in.CategoryID); err != nil {
			return nil, err
		}
	}

	var added []string
	for _, up := range in.NewImages {
		img, err := s.imageSet.AddImage(ctx, id, up)
		if err != nil {
			for _, imgID := range added {
				if delErr := s.imageSet.DeleteImage(ctx, imgID); delErr != nil {
					s.logger.Error("failed to unwind appended image",
						slog.String("imageID", imgID),
						slog.String("error", delErr.Error()),
					)
				}
			}
			return nil, fmt.Errorf("updating product %s: %w", id, err)
		}
		added = append(added, img.ID)
	}

	product.Name = strings.TrimSpace(in.Name)
	product.Description = strings.TrimSpace(in.Description)
	product.Price = in.Price
	product.Stock = in.Stock
	product.CategoryID = in.CategoryID

	if err := s.products.UpdateProduct(ctx, product); err != nil {
		return nil, err
	}

	s.logger.Info("product updated",
		slog.String("id", product.ID),
		slog.String("name", product.Name),
		slog.Int("newImages", len(in.NewImages)),
	)
	return product, nil
}

// DeleteProduct removes a product: gallery files and rows through the image
// set manager first, then the product row. The schema cascade is the backstop
// that clears any image or comment rows either way.
func (s *AdminService) DeleteProduct(ctx context.Context, id string) error {
	if _, err := s.products.GetProductByID(ctx, id); err != nil {
		return err
	}

	if err := s.imageSet.DeleteAllForProduct(ctx, id); err != nil {
		return fmt.Errorf("deleting product %s: %w", id, err)
	}

	if err := s.products.DeleteProduct(ctx, id); err != nil {
		return err
	}

	s.logger.Info("product deleted", slog.String("id", id))
	return nil
}

// DeleteImage removes a single gallery image, delegating the file/row
// ordering and primary re-election to the image set manager.
func (s *AdminService) DeleteImage(ctx context.Context, imageID string) error {
	return s.imageSet.DeleteImage(ctx, imageID)
}

func (s *AdminService) validateProductFields(name string, price float64, stock int) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return apperror.ValidationFailed("name", "product name is required")
	}
	if len(name) > MaxProductNameLength {
		return apperror.ValidationFailed("name",
			fmt.Sprintf("product name must be %d characters or less", MaxProductNameLength))
	}
	if price < 0 {
		return apperror.ValidationFailed("price", "price must not be negative")
	}
	if stock < 0 {
		return apperror.ValidationFailed("stock", "stock must not be negative")
	}
	return nil
}
