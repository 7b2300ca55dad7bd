package products

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/openmart/mini-commerce/apperrors"
	"github.com/openmart/mini-commerce/models"
	"github.com/openmart/mini-commerce/services"
)

// ProductProvider is the slice of the product service the handler needs.
type ProductProvider interface {
	GetAll(ctx context.Context, page, size int) (models.PagedResult[services.ProductView], error)
	GetByID(ctx context.Context, id uint) (*services.ProductView, error)
	GetByCategory(ctx context.Context, categoryID uint, page, size int) (models.PagedResult[services.ProductView], error)
	Search(ctx context.Context, term string, page, size int) (models.PagedResult[services.ProductView], error)
	GetByPriceRange(ctx context.Context, minPrice, maxPrice decimal.Decimal, page, size int) (models.PagedResult[services.ProductView], error)
	Create(ctx context.Context, draft services.ProductDraft) (*services.ProductView, error)
	Update(ctx context.Context, id uint, patch services.ProductPatch) (*services.ProductView, error)
	Delete(ctx context.Context, id uint) error
}

type ProductsHandler struct {
	service ProductProvider
}

func NewProductsHandler(s ProductProvider) *ProductsHandler {
	return &ProductsHandler{service: s}
}

// HandleGetAll serves GET /api/products?page=1&size=10.
func (h *ProductsHandler) HandleGetAll(w http.ResponseWriter, r *http.Request) {
	page, size := pageParams(r)

	res, err := h.service.GetAll(r.Context(), page, size)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to retrieve products")
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// HandleGetByID serves GET /api/products/{id}.
func (h *ProductsHandler) HandleGetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := idFromPath(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid product id")
		return
	}

	view, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to retrieve product")
		return
	}
	if view == nil {
		writeError(w, http.StatusNotFound, "Product not found")
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// HandleGetByCategory serves GET /api/products/category/{categoryId}.
// An unknown category yields an empty page.
func (h *ProductsHandler) HandleGetByCategory(w http.ResponseWriter, r *http.Request) {
	categoryID, ok := idFromPath(r, "categoryId")
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid category id")
		return
	}
	page, size := pageParams(r)

	res, err := h.service.GetByCategory(r.Context(), categoryID, page, size)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to retrieve products")
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// HandleSearch serves GET /api/products/search?term=laptop.
// A blank term yields an empty page.
func (h *ProductsHandler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	page, size := pageParams(r)

	res, err := h.service.Search(r.Context(), r.URL.Query().Get("term"), page, size)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to search products")
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// HandlePriceRange serves GET /api/products/price-range?min=10&max=50.
// An invalid range yields an empty page; a non-numeric bound is a 400.
func (h *ProductsHandler) HandlePriceRange(w http.ResponseWriter, r *http.Request) {
	minPrice, err := decimal.NewFromString(r.URL.Query().Get("min"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid min price")
		return
	}
	maxPrice, err := decimal.NewFromString(r.URL.Query().Get("max"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid max price")
		return
	}
	page, size := pageParams(r)

	res, err := h.service.GetByPriceRange(r.Context(), minPrice, maxPrice, page, size)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to retrieve products")
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// HandleCreate serves POST /api/products.
func (h *ProductsHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var draft services.ProductDraft
	if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	view, err := h.service.Create(r.Context(), draft)
	if err != nil {
		if apperrors.IsValidation(err) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to create product")
		return
	}
	writeJSON(w, http.StatusCreated, view)
}

// HandleUpdate serves PUT /api/products/{id} with partial-update
// semantics: only fields present in the body change.
func (h *ProductsHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := idFromPath(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid product id")
		return
	}

	var patch services.ProductPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	view, err := h.service.Update(r.Context(), id, patch)
	if err != nil {
		switch {
		case apperrors.IsValidation(err):
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, apperrors.ErrNotFound):
			writeError(w, http.StatusNotFound, "Product not found")
		case errors.Is(err, apperrors.ErrConflict):
			writeError(w, http.StatusConflict, "Product was modified concurrently")
		default:
			writeError(w, http.StatusInternalServerError, "Failed to update product")
		}
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// HandleDelete serves DELETE /api/products/{id}.
func (h *ProductsHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := idFromPath(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid product id")
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Product not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to delete product")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// pageParams reads page/size query params, defaulting to page 1, size 10.
// Out-of-range values are clamped further down the stack.
func pageParams(r *http.Request) (page, size int) {
	page, size = 1, 10
	if pStr := r.URL.Query().Get("page"); pStr != "" {
		if p, err := strconv.Atoi(pStr); err == nil {
			page = p
		}
	}
	if sStr := r.URL.Query().Get("size"); sStr != "" {
		if s, err := strconv.Atoi(sStr); err == nil {
			size = s
		}
	}
	return page, size
}

func idFromPath(r *http.Request, name string) (uint, bool) {
	id, err := strconv.ParseUint(r.PathValue(name), 10, 32)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
