// Package service contains the business logic: listing and detail queries,
// admin mutations, the image set manager, comments and accounts. Handlers
// parse HTTP and call in here; repositories do the SQL. Services know about
// neither HTTP nor SQL.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/HealthyWithVictor/storefront/internal/apperror"
	"github.com/HealthyWithVictor/storefront/internal/model"
	"github.com/HealthyWithVictor/storefront/internal/repository"
	"github.com/HealthyWithVictor/storefront/internal/upload"
)

// allowedExtensions is the upload allow-list, checked case-insensitively
// against the original filename's extension.
var allowedExtensions = map[string]bool{
	"png":  true,
	"jpg":  true,
	"jpeg": true,
	"gif":  true,
}

// ImageUpload is one file as received at the boundary.
type ImageUpload struct {
	Filename string
	Data     []byte
}

// ImageSetManager keeps a product's gallery rows and their on-disk files in
// step, and owns the primary-image invariant: after any operation a product
// has at most one primary image, and exactly one whenever it has any.
//
// Rows and files fail differently. Database changes happen in transactions
// and roll back cleanly; file removals are best effort, so a failed or missing
// removal is logged and never blocks the deletion that triggered it, because
// an orphaned file is less harmful than a delete that cannot complete.
type ImageSetManager struct {
	images repository.ImageRepository
	store  *upload.Store
	logger *slog.Logger
}

func NewImageSetManager(images repository.ImageRepository, store *upload.Store, logger *slog.Logger) *ImageSetManager {
	return &ImageSetManager{
		images: images,
		store:  store,
		logger: logger,
	}
}

// ValidateUpload rejects files whose extension is outside the allow-list.
// Mutation paths call it for the whole batch before touching disk or
// database, so a bad file fails the operation before any side effect.
func ValidateUpload(filename string) error {
	ext := ""
	if i := strings.LastIndex(filename, "."); i >= 0 {
		ext = strings.ToLower(filename[i+1:])
	}
	if !allowedExtensions[ext] {
		return apperror.ValidationFailed("image",
			fmt.Sprintf("file %q has an unsupported extension (allowed: png, jpg, jpeg, gif)", filename))
	}
	return nil
}

// AddImage stores the file and inserts its row. The row is primary exactly
// when the product had no images before, decided inside the insert's
// transaction. If the insert fails the just-written file is removed again, so
// a failed add leaves neither a row nor a file.
func (m *ImageSetManager) AddImage(ctx context.Context, productID string, up ImageUpload) (*model.ProductImage, error) {
	if err := ValidateUpload(up.Filename); err != nil {
		return nil, err
	}

	url, err := m.store.Save(up.Data, up.Filename)
	if err != nil {
		m.logger.Error("failed to store uploaded image",
			slog.String("productID", productID),
			slog.String("filename", up.Filename),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("adding image: %w", err)
	}

	img := &model.ProductImage{
		ProductID: productID,
		ImageURL:  url,
	}
	if err := m.images.Insert(ctx, img); err != nil {
		m.removeFile(url)
		return nil, fmt.Errorf("adding image: %w", err)
	}

	m.logger.Info("image added",
		slog.String("productID", productID),
		slog.String("imageID", img.ID),
		slog.String("url", img.ImageURL),
		slog.Bool("primary", img.IsPrimary),
	)
	return img, nil
}

// DeleteImage removes one image: file first (missing file tolerated), then
// the row. If the deleted row was primary, the repository promotes the
// remaining image with the lowest id in the same transaction; deleting a
// product's last image just leaves it without images.
func (m *ImageSetManager) DeleteImage(ctx context.Context, imageID string) error {
	img, err := m.images.GetImageByID(ctx, imageID)
	if err != nil {
		return err
	}

	m.removeFile(img.ImageURL)

	if err := m.images.DeleteImage(ctx, imageID); err != nil {
		return fmt.Errorf("deleting image: %w", err)
	}

	m.logger.Info("image deleted",
		slog.String("imageID", imageID),
		slog.String("productID", img.ProductID),
		slog.Bool("wasPrimary", img.IsPrimary),
	)
	return nil
}

// DeleteAllForProduct clears a product's gallery: every file removed best
// effort, then all rows in one statement. Called before the product row is
// deleted, since the row cascade cannot touch files.
func (m *ImageSetManager) DeleteAllForProduct(ctx context.Context, productID string) error {
	images, err := m.images.ListByProduct(ctx, productID)
	if err != nil {
		return err
	}
	for _, img := range images {
		m.removeFile(img.ImageURL)
	}
	if err := m.images.DeleteByProduct(ctx, productID); err != nil {
		return fmt.Errorf("deleting product images: %w", err)
	}

	if len(images) > 0 {
		m.logger.Info("product gallery deleted",
			slog.String("productID", productID),
			slog.Int("images", len(images)),
		)
	}
	return nil
}

// DeleteAllForCategory does the same for every product under a category,
// ahead of the category delete whose cascade removes the rows' products.
func (m *ImageSetManager) DeleteAllForCategory(ctx context.Context, categoryID string) error {
	images, err := m.images.ListByCategory(ctx, categoryID)
	if err != nil {
		return err
	}
	for _, img := range images {
		m.removeFile(img.ImageURL)
	}
	if err := m.images.DeleteByCategory(ctx, categoryID); err != nil {
		return fmt.Errorf("deleting category images: %w", err)
	}

	if len(images) > 0 {
		m.logger.Info("category galleries deleted",
			slog.String("categoryID", categoryID),
			slog.Int("images", len(images)),
		)
	}
	return nil
}

// removeFile is the tolerated-failure file removal shared by every deletion
// path: failures are logged at Warn and swallowed.
func (m *ImageSetManager) removeFile(url string) {
	if err := m.store.Remove(url); err != nil {
		m.logger.Warn("failed to remove image file, leaving orphan",
			slog.String("url", url),
			slog.String("error", err.Error()),
		)
	}
}
