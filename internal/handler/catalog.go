package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/HealthyWithVictor/storefront/internal/repository"
	"github.com/HealthyWithVictor/storefront/internal/service"
)

// CatalogHandler serves the public read side: listings, product detail,
// category menu.
type CatalogHandler struct {
	catalog *service.CatalogService
	logger  *slog.Logger
}

func NewCatalogHandler(catalog *service.CatalogService, logger *slog.Logger) *CatalogHandler {
	return &CatalogHandler{catalog: catalog, logger: logger}
}

// HandleListProducts is GET /api/products.
//
// Query parameters: category_id, q (search), sort (id|name|price|stock),
// dir (asc|desc), page, page_size. All optional and hostile-input-safe:
// the query builder falls back to defaults rather than erroring.
func (h *CatalogHandler) HandleListProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	// Atoi failures leave zero values, which the filter clamps/defaults.
	page, _ := strconv.Atoi(q.Get("page"))
	pageSize, _ := strconv.Atoi(q.Get("page_size"))

	filter := repository.ProductFilter{
		CategoryID: q.Get("category_id"),
		Search:     q.Get("q"),
		SortColumn: q.Get("sort"),
		SortDir:    q.Get("dir"),
		Page:       page,
		PageSize:   pageSize,
	}

	result, err := h.catalog.ListProducts(r.Context(), filter)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// HandleProductDetail is GET /api/products/{id}.
func (h *CatalogHandler) HandleProductDetail(w http.ResponseWriter, r *http.Request) {
	detail, err := h.catalog.GetProductDetail(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

// HandleListCategories is GET /api/categories.
func (h *CatalogHandler) HandleListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.catalog.ListCategories(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, categories)
}
