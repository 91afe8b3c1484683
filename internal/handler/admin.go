package handler

import (
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/HealthyWithVictor/storefront/internal/apperror"
	"github.com/HealthyWithVictor/storefront/internal/service"
)

// maxUploadBytes caps a whole multipart submission at 16 MB.
const maxUploadBytes = 16 << 20

// AdminHandler exposes the protected mutations. The router guards every
// route here with the admin-role middleware; the handler itself only parses
// and delegates.
type AdminHandler struct {
	admin  *service.AdminService
	logger *slog.Logger
}

func NewAdminHandler(admin *service.AdminService, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{admin: admin, logger: logger}
}

// --- categories ---

type categoryRequest struct {
	Name string `json:"name"`
}

// HandleCreateCategory is POST /api/admin/categories.
func (h *AdminHandler) HandleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperror.ValidationFailed("body", "invalid JSON body"))
		return
	}

	category, err := h.admin.CreateCategory(r.Context(), req.Name)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, category)
}

// HandleRenameCategory is PUT /api/admin/categories/{id}.
func (h *AdminHandler) HandleRenameCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperror.ValidationFailed("body", "invalid JSON body"))
		return
	}

	if err := h.admin.RenameCategory(r.Context(), r.PathValue("id"), req.Name); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleDeleteCategory is DELETE /api/admin/categories/{id}.
func (h *AdminHandler) HandleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	if err := h.admin.DeleteCategory(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- products ---

// HandleCreateProduct is POST /api/admin/products, multipart/form-data with
// fields name, description, price, stock, category_id and any number of
// "images" file parts (submission order decides the primary image).
func (h *AdminHandler) HandleCreateProduct(w http.ResponseWriter, r *http.Request) {
	in, err := h.parseProductForm(r)
	if err != nil {
		writeError(w, err)
		return
	}

	product, err := h.admin.CreateProduct(r.Context(), service.CreateProductInput{
		Name:        in.name,
		Description: in.description,
		Price:       in.price,
		Stock:       in.stock,
		CategoryID:  in.categoryID,
		Images:      in.images,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, product)
}

// HandleUpdateProduct is PUT /api/admin/products/{id}, same form shape as
// create; "images" parts are appended to the gallery.
func (h *AdminHandler) HandleUpdateProduct(w http.ResponseWriter, r *http.Request) {
	in, err := h.parseProductForm(r)
	if err != nil {
		writeError(w, err)
		return
	}

	product, err := h.admin.UpdateProduct(r.Context(), r.PathValue("id"), service.UpdateProductInput{
		Name:        in.name,
		Description: in.description,
		Price:       in.price,
		Stock:       in.stock,
		CategoryID:  in.categoryID,
		NewImages:   in.images,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, product)
}

// HandleDeleteProduct is DELETE /api/admin/products/{id}.
func (h *AdminHandler) HandleDeleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := h.admin.DeleteProduct(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleDeleteImage is DELETE /api/admin/images/{id}.
func (h *AdminHandler) HandleDeleteImage(w http.ResponseWriter, r *http.Request) {
	if err := h.admin.DeleteImage(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- form parsing ---

type productForm struct {
	name        string
	description string
	price       float64
	stock       int
	categoryID  string
	images      []service.ImageUpload
}

func (h *AdminHandler) parseProductForm(r *http.Request) (*productForm, error) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		return nil, apperror.ValidationFailed("body", "invalid multipart form")
	}

	price, err := strconv.ParseFloat(r.FormValue("price"), 64)
	if err != nil {
		return nil, apperror.ValidationFailed("price", "price must be a number")
	}
	stock, err := strconv.Atoi(r.FormValue("stock"))
	if err != nil {
		return nil, apperror.ValidationFailed("stock", "stock must be an integer")
	}

	form := &productForm{
		name:        r.FormValue("name"),
		description: r.FormValue("description"),
		price:       price,
		stock:       stock,
		categoryID:  r.FormValue("category_id"),
	}

	if r.MultipartForm != nil {
		for _, fh := range r.MultipartForm.File["images"] {
			up, err := readUpload(fh)
			if err != nil {
				return nil, err
			}
			form.images = append(form.images, up)
		}
	}
	return form, nil
}

func readUpload(fh *multipart.FileHeader) (service.ImageUpload, error) {
	f, err := fh.Open()
	if err != nil {
		return service.ImageUpload{}, apperror.ValidationFailed("images", "could not read uploaded file")
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return service.ImageUpload{}, apperror.ValidationFailed("images", "could not read uploaded file")
	}
	return service.ImageUpload{Filename: fh.Filename, Data: data}, nil
}
