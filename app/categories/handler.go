package categories

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/openmart/mini-commerce/apperrors"
	"github.com/openmart/mini-commerce/models"
)

const (
	maxNameLen        = 100
	maxDescriptionLen = 500
)

// CategoryResponse is the category shape returned to clients.
type CategoryResponse struct {
	ID          uint             `json:"id"`
	Name        string           `json:"name"`
	Description string           `json:"description,omitempty"`
	CreatedAt   time.Time        `json:"createdAt"`
	UpdatedAt   *time.Time       `json:"updatedAt,omitempty"`
	Products    []ProductSummary `json:"products,omitempty"`
}

// ProductSummary is the trimmed product shape embedded in a category.
type ProductSummary struct {
	ID    uint    `json:"id"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

// CategoryProvider is the slice of the categories repository the handler
// needs.
type CategoryProvider interface {
	GetAll(ctx context.Context, page, size int) (models.PagedResult[models.Category], error)
	GetByID(ctx context.Context, id uint, preloads ...string) (*models.Category, error)
	GetWithProducts(ctx context.Context, id uint) (*models.Category, error)
	Create(ctx context.Context, c *models.Category) error
	Update(ctx context.Context, c *models.Category) error
	Delete(ctx context.Context, id uint) (bool, error)
}

type CategoryHandler struct {
	repo CategoryProvider
}

func NewCategoryHandler(r CategoryProvider) *CategoryHandler {
	return &CategoryHandler{repo: r}
}

// HandleGetAll serves GET /api/categories?page=1&size=10.
func (h *CategoryHandler) HandleGetAll(w http.ResponseWriter, r *http.Request) {
	page, size := pageParams(r)

	res, err := h.repo.GetAll(r.Context(), page, size)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to retrieve categories")
		return
	}
	writeJSON(w, http.StatusOK, models.MapPage(res, toResponse))
}

// HandleGet serves GET /api/categories/{id} with products attached.
func (h *CategoryHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := idFromPath(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid category id")
		return
	}

	category, err := h.repo.GetWithProducts(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to retrieve category")
		return
	}
	if category == nil {
		writeError(w, http.StatusNotFound, "Category not found")
		return
	}
	writeJSON(w, http.StatusOK, toResponse(*category))
}

// HandleCreate serves POST /api/categories.
func (h *CategoryHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		writeError(w, http.StatusBadRequest, "Missing category name")
		return
	}
	if len(name) > maxNameLen || len(input.Description) > maxDescriptionLen {
		writeError(w, http.StatusBadRequest, "Name or description too long")
		return
	}

	category := &models.Category{Name: name, Description: input.Description}
	if err := h.repo.Create(r.Context(), category); err != nil {
		if errors.Is(err, apperrors.ErrConflict) {
			writeError(w, http.StatusConflict, "Category name already exists")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to create category")
		return
	}
	writeJSON(w, http.StatusCreated, toResponse(*category))
}

// HandleUpdate serves PUT /api/categories/{id}; only fields present in
// the body change.
func (h *CategoryHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := idFromPath(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid category id")
		return
	}

	var input struct {
		Name        *string `json:"name"`
		Description *string `json:"description"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	category, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to retrieve category")
		return
	}
	if category == nil {
		writeError(w, http.StatusNotFound, "Category not found")
		return
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" || len(name) > maxNameLen {
			writeError(w, http.StatusBadRequest, "Invalid category name")
			return
		}
		category.Name = name
	}
	if input.Description != nil {
		if len(*input.Description) > maxDescriptionLen {
			writeError(w, http.StatusBadRequest, "Description too long")
			return
		}
		category.Description = *input.Description
	}
	now := time.Now().UTC()
	category.UpdatedAt = &now

	if err := h.repo.Update(r.Context(), category); err != nil {
		if errors.Is(err, apperrors.ErrConflict) {
			writeError(w, http.StatusConflict, "Category name already exists")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to update category")
		return
	}
	writeJSON(w, http.StatusOK, toResponse(*category))
}

// HandleDelete serves DELETE /api/categories/{id}. Products in the
// category are removed by the cascade constraint.
func (h *CategoryHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := idFromPath(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid category id")
		return
	}

	found, err := h.repo.Delete(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to delete category")
		return
	}
	if !found {
		writeError(w, http.StatusNotFound, "Category not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func toResponse(c models.Category) CategoryResponse {
	resp := CategoryResponse{
		ID:          c.ID,
		Name:        c.Name,
		Description: c.Description,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
	for _, p := range c.Products {
		resp.Products = append(resp.Products, ProductSummary{
			ID:    p.ID,
			Name:  p.Name,
			Price: p.Price.InexactFloat64(),
		})
	}
	return resp
}

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

func idFromPath(r *http.Request) (uint, bool) {
	id, err := strconv.ParseUint(r.PathValue("id"), 10, 32)
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
