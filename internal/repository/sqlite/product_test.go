package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/HealthyWithVictor/storefront/internal/apperror"
	"github.com/HealthyWithVictor/storefront/internal/model"
	"github.com/HealthyWithVictor/storefront/internal/repository"
)

func TestCreateProduct(t *testing.T) {
	db := newTestDB(t)

	product := &model.Product{
		Name:        "Claw Hammer",
		Description: "16oz fiberglass handle",
		Price:       12.50,
		Stock:       30,
	}
	if err := db.CreateProduct(context.Background(), product); err != nil {
		t.Fatalf("CreateProduct() error = %v", err)
	}

	if product.ID == "" {
		t.Error("CreateProduct() did not set product.ID")
	}
	if product.CreatedAt.IsZero() || product.UpdatedAt.IsZero() {
		t.Error("CreateProduct() did not set timestamps")
	}
}

func TestGetProductByID_JoinsCategoryName(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	category := createCategory(t, db, "Tools")
	created := createProduct(t, db, "Hammer", 9.99, category.ID)

	found, err := db.GetProductByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetProductByID() error = %v", err)
	}
	if found.CategoryID != category.ID {
		t.Errorf("CategoryID = %q, want %q", found.CategoryID, category.ID)
	}
	if found.CategoryName != "Tools" {
		t.Errorf("CategoryName = %q, want %q", found.CategoryName, "Tools")
	}
}

func TestGetProductByID_Uncategorised(t *testing.T) {
	db := newTestDB(t)

	created := createProduct(t, db, "Loose Screw", 0.10, "")

	found, err := db.GetProductByID(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("GetProductByID() error = %v", err)
	}
	if found.CategoryID != "" || found.CategoryName != "" {
		t.Errorf("uncategorised product came back with category %q/%q",
			found.CategoryID, found.CategoryName)
	}
}

func TestGetProductByID_NotFound(t *testing.T) {
	db := newTestDB(t)

	_, err := db.GetProductByID(context.Background(), "nonexistent")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetProductByID() error = %v, want ErrNotFound", err)
	}
}

// =========================================================================
// LISTING
// =========================================================================

func TestListProducts_Empty(t *testing.T) {
	db := newTestDB(t)

	page, err := db.ListProducts(context.Background(), repository.ProductFilter{})
	if err != nil {
		t.Fatalf("ListProducts() error = %v", err)
	}
	if len(page.Items) != 0 || page.TotalCount != 0 || page.TotalPages != 0 {
		t.Errorf("empty catalog: items=%d total=%d pages=%d, want all zero",
			len(page.Items), page.TotalCount, page.TotalPages)
	}
}

func TestListProducts_FilterByCategory(t *testing.T) {
	db := newTestDB(t)
	tools := createCategory(t, db, "Tools")
	paint := createCategory(t, db, "Paint")

	createProduct(t, db, "Hammer", 9.99, tools.ID)
	createProduct(t, db, "Wrench", 14.99, tools.ID)
	createProduct(t, db, "Roller", 6.99, paint.ID)

	page, err := db.ListProducts(context.Background(), repository.ProductFilter{CategoryID: tools.ID})
	if err != nil {
		t.Fatalf("ListProducts() error = %v", err)
	}
	if page.TotalCount != 2 || len(page.Items) != 2 {
		t.Fatalf("got %d items / total %d, want 2 / 2", len(page.Items), page.TotalCount)
	}
	for _, p := range page.Items {
		if p.CategoryID != tools.ID {
			t.Errorf("product %q leaked from another category", p.Name)
		}
	}
}

func TestListProducts_SearchMatchesNameAndDescription(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	byName := createProduct(t, db, "Cordless Drill", 79.00, "")
	byDesc := &model.Product{Name: "Combi Kit", Description: "includes a drill and driver", Price: 120}
	if err := db.CreateProduct(ctx, byDesc); err != nil {
		t.Fatalf("CreateProduct() error = %v", err)
	}
	createProduct(t, db, "Paint Roller", 6.99, "")

	page, err := db.ListProducts(ctx, repository.ProductFilter{Search: "drill"})
	if err != nil {
		t.Fatalf("ListProducts() error = %v", err)
	}
	if page.TotalCount != 2 {
		t.Fatalf("total = %d, want 2", page.TotalCount)
	}
	ids := map[string]bool{}
	for _, p := range page.Items {
		ids[p.ID] = true
	}
	if !ids[byName.ID] || !ids[byDesc.ID] {
		t.Errorf("search missed a match: got %v", ids)
	}
}

func TestListProducts_SortByPriceAscending(t *testing.T) {
	db := newTestDB(t)

	createProduct(t, db, "Expensive", 99.99, "")
	createProduct(t, db, "Cheap", 1.99, "")
	createProduct(t, db, "Middling", 49.99, "")

	page, err := db.ListProducts(context.Background(), repository.ProductFilter{
		SortColumn: "price",
		SortDir:    "asc",
	})
	if err != nil {
		t.Fatalf("ListProducts() error = %v", err)
	}

	want := []string{"Cheap", "Middling", "Expensive"}
	for i, name := range want {
		if page.Items[i].Name != name {
			t.Errorf("items[%d].Name = %q, want %q", i, page.Items[i].Name, name)
		}
	}
}

// A hostile sort column degrades to the default ordering; the query still
// runs and returns every row.
func TestListProducts_HostileSortFallsBack(t *testing.T) {
	db := newTestDB(t)
	createProduct(t, db, "A", 1, "")
	createProduct(t, db, "B", 2, "")

	page, err := db.ListProducts(context.Background(), repository.ProductFilter{
		SortColumn: "price; DROP TABLE products; --",
		SortDir:    "sideways",
	})
	if err != nil {
		t.Fatalf("ListProducts() error = %v", err)
	}
	if page.TotalCount != 2 {
		t.Errorf("total = %d, want 2", page.TotalCount)
	}

	// The table is still there.
	if _, err := db.ListProducts(context.Background(), repository.ProductFilter{}); err != nil {
		t.Fatalf("catalog unusable after hostile sort: %v", err)
	}
}

// TotalCount and TotalPages are computed with the same filter as the page
// rows, so walking the pages visits every matching product exactly once.
func TestListProducts_PaginationConsistentWithTotals(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	tools := createCategory(t, db, "Tools")
	for i := 0; i < 7; i++ {
		createProduct(t, db, "Tool", float64(i), tools.ID)
	}
	createProduct(t, db, "Unrelated", 1, "")

	filter := repository.ProductFilter{CategoryID: tools.ID, PageSize: 3}

	seen := map[string]bool{}
	var total, pages int
	for pageNum := 1; ; pageNum++ {
		filter.Page = pageNum
		page, err := db.ListProducts(ctx, filter)
		if err != nil {
			t.Fatalf("ListProducts() page %d error = %v", pageNum, err)
		}
		total, pages = page.TotalCount, page.TotalPages
		if len(page.Items) == 0 {
			break
		}
		for _, p := range page.Items {
			if seen[p.ID] {
				t.Errorf("product %s appeared on more than one page", p.ID)
			}
			seen[p.ID] = true
		}
		if pageNum > pages {
			break
		}
	}

	if total != 7 {
		t.Errorf("TotalCount = %d, want 7", total)
	}
	if pages != 3 {
		t.Errorf("TotalPages = %d, want 3 (7 items / size 3)", pages)
	}
	if len(seen) != 7 {
		t.Errorf("walked pages saw %d distinct products, want 7", len(seen))
	}
}

func TestListProducts_PageBeyondEndIsEmpty(t *testing.T) {
	db := newTestDB(t)
	createProduct(t, db, "Only One", 1, "")

	page, err := db.ListProducts(context.Background(), repository.ProductFilter{Page: 99})
	if err != nil {
		t.Fatalf("ListProducts() error = %v", err)
	}
	if len(page.Items) != 0 {
		t.Errorf("page 99 returned %d items, want 0", len(page.Items))
	}
	if page.TotalCount != 1 {
		t.Errorf("TotalCount = %d, want 1", page.TotalCount)
	}
}

func TestListProducts_CarriesPrimaryImageURL(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	product := createProduct(t, db, "Hammer", 9.99, "")
	first := insertImage(t, db, product.ID, "uploads/front.jpg")
	insertImage(t, db, product.ID, "uploads/back.jpg")

	page, err := db.ListProducts(ctx, repository.ProductFilter{})
	if err != nil {
		t.Fatalf("ListProducts() error = %v", err)
	}
	if len(page.Items) != 1 {
		t.Fatalf("got %d items, want 1", len(page.Items))
	}
	if got := page.Items[0].PrimaryImageURL; got != first.ImageURL {
		t.Errorf("PrimaryImageURL = %q, want %q", got, first.ImageURL)
	}
}

// =========================================================================
// UPDATE / DELETE
// =========================================================================

func TestUpdateProduct(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	product := createProduct(t, db, "Hamer", 9.99, "")
	product.Name = "Hammer"
	product.Price = 10.99
	product.Stock = 5

	if err := db.UpdateProduct(ctx, product); err != nil {
		t.Fatalf("UpdateProduct() error = %v", err)
	}

	found, err := db.GetProductByID(ctx, product.ID)
	if err != nil {
		t.Fatalf("GetProductByID() error = %v", err)
	}
	if found.Name != "Hammer" || found.Price != 10.99 || found.Stock != 5 {
		t.Errorf("updated product = %q/%.2f/%d", found.Name, found.Price, found.Stock)
	}
}

func TestUpdateProduct_NotFound(t *testing.T) {
	db := newTestDB(t)

	err := db.UpdateProduct(context.Background(), &model.Product{ID: "nonexistent", Name: "x", Price: 1})
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("UpdateProduct() error = %v, want ErrNotFound", err)
	}
}

func TestDeleteProduct_CascadesImagesAndComments(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	product := createProduct(t, db, "Hammer", 9.99, "")
	img := insertImage(t, db, product.ID, "uploads/a.jpg")

	user := createUser(t, db, "reviewer", model.RoleGuest)
	comment := &model.Comment{ProductID: product.ID, UserID: user.ID, Username: user.Username, Body: "works"}
	if err := db.CreateComment(ctx, comment); err != nil {
		t.Fatalf("CreateComment() error = %v", err)
	}

	if err := db.DeleteProduct(ctx, product.ID); err != nil {
		t.Fatalf("DeleteProduct() error = %v", err)
	}

	if _, err := db.GetImageByID(ctx, img.ID); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("image row survived product delete: err = %v", err)
	}
	if _, err := db.GetCommentByID(ctx, comment.ID); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("comment row survived product delete: err = %v", err)
	}
}

func TestDeleteProduct_NotFound(t *testing.T) {
	db := newTestDB(t)

	err := db.DeleteProduct(context.Background(), "nonexistent")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("DeleteProduct() error = %v, want ErrNotFound", err)
	}
}
