package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/openmart/mini-commerce/apperrors"
	"github.com/openmart/mini-commerce/models"
)

const maxProductNameLen = 200

// ProductDraft is the shape accepted when creating a product.
type ProductDraft struct {
	Name       string          `json:"name"`
	Price      decimal.Decimal `json:"price"`
	CategoryID uint            `json:"categoryId"`
}

// ProductPatch carries a partial update; nil fields are left untouched,
// which is distinct from setting a field to its zero value.
type ProductPatch struct {
	Name       *string          `json:"name"`
	Price      *decimal.Decimal `json:"price"`
	CategoryID *uint            `json:"categoryId"`
}

// ProductView is the transfer shape exposed across the service boundary.
type ProductView struct {
	ID           uint            `json:"id"`
	Name         string          `json:"name"`
	Price        decimal.Decimal `json:"price"`
	CategoryID   uint            `json:"categoryId"`
	CategoryName string          `json:"categoryName,omitempty"`
	CreatedAt    time.Time       `json:"createdAt"`
	UpdatedAt    *time.Time      `json:"updatedAt,omitempty"`
}

// productStore is the slice of the products repository the service needs.
type productStore interface {
	GetAll(ctx context.Context, page, size int) (models.PagedResult[models.Product], error)
	GetByID(ctx context.Context, id uint, preloads ...string) (*models.Product, error)
	GetWithCategory(ctx context.Context, id uint) (*models.Product, error)
	GetByCategory(ctx context.Context, categoryID uint, page, size int) (models.PagedResult[models.Product], error)
	GetByPriceRange(ctx context.Context, minPrice, maxPrice decimal.Decimal, page, size int) (models.PagedResult[models.Product], error)
	SearchByName(ctx context.Context, term string, page, size int) (models.PagedResult[models.Product], error)
	Add(p *models.Product)
	UpdateChecked(p *models.Product)
	RemoveByID(id uint)
	Commit(ctx context.Context) error
}

// categoryStore is the single referential check the service performs.
type categoryStore interface {
	ExistsByID(ctx context.Context, id uint) (bool, error)
}

// ProductService owns the product business rules: referential checks,
// trimming and stamping, DTO mapping and outcome logging. Unexpected
// storage errors are logged and re-raised, never masked.
type ProductService struct {
	products   productStore
	categories categoryStore
	log        zerolog.Logger
}

func NewProductService(products productStore, categories categoryStore, log zerolog.Logger) *ProductService {
	return &ProductService{products: products, categories: categories, log: log}
}

// GetAll returns one page of products.
func (s *ProductService) GetAll(ctx context.Context, page, size int) (models.PagedResult[ProductView], error) {
	res, err := s.products.GetAll(ctx, page, size)
	if err != nil {
		s.log.Error().Err(err).Msg("fetching products failed")
		return models.PagedResult[ProductView]{}, err
	}
	s.log.Info().Int("page", res.CurrentPage).Int("size", res.PageSize).Int64("total", res.TotalCount).Msg("products fetched")
	return models.MapPage(res, s.toView), nil
}

// GetByID returns the product with its category name attached, or
// (nil, nil) when the id is absent; the caller decides the HTTP status.
func (s *ProductService) GetByID(ctx context.Context, id uint) (*ProductView, error) {
	p, err := s.products.GetWithCategory(ctx, id)
	if err != nil {
		s.log.Error().Err(err).Uint("id", id).Msg("fetching product failed")
		return nil, err
	}
	if p == nil {
		s.log.Warn().Uint("id", id).Msg("product not found")
		return nil, nil
	}
	v := s.toView(*p)
	return &v, nil
}

// GetByCategory returns one page of products in the category. An unknown
// category yields an empty page, not an error.
func (s *ProductService) GetByCategory(ctx context.Context, categoryID uint, page, size int) (models.PagedResult[ProductView], error) {
	ok, err := s.categories.ExistsByID(ctx, categoryID)
	if err != nil {
		s.log.Error().Err(err).Uint("categoryId", categoryID).Msg("category lookup failed")
		return models.PagedResult[ProductView]{}, err
	}
	if !ok {
		s.log.Warn().Uint("categoryId", categoryID).Msg("unknown category, returning empty page")
		return models.EmptyPage[ProductView](page, size), nil
	}

	res, err := s.products.GetByCategory(ctx, categoryID, page, size)
	if err != nil {
		s.log.Error().Err(err).Uint("categoryId", categoryID).Msg("fetching products by category failed")
		return models.PagedResult[ProductView]{}, err
	}
	s.log.Info().Uint("categoryId", categoryID).Int64("total", res.TotalCount).Msg("products fetched by category")
	return models.MapPage(res, s.toView), nil
}

// Search returns one page of products whose name contains the term,
// case-insensitively. A blank term yields an empty page, not an error.
func (s *ProductService) Search(ctx context.Context, term string, page, size int) (models.PagedResult[ProductView], error) {
	if strings.TrimSpace(term) == "" {
		s.log.Warn().Msg("blank search term, returning empty page")
		return models.EmptyPage[ProductView](page, size), nil
	}

	res, err := s.products.SearchByName(ctx, term, page, size)
	if err != nil {
		s.log.Error().Err(err).Str("term", term).Msg("product search failed")
		return models.PagedResult[ProductView]{}, err
	}
	s.log.Info().Str("term", term).Int64("total", res.TotalCount).Msg("products searched")
	return models.MapPage(res, s.toView), nil
}

// GetByPriceRange returns one page of products priced within
// [minPrice, maxPrice], cheapest first. A negative bound or an inverted
// range yields an empty page, not an error.
func (s *ProductService) GetByPriceRange(ctx context.Context, minPrice, maxPrice decimal.Decimal, page, size int) (models.PagedResult[ProductView], error) {
	if minPrice.IsNegative() || maxPrice.IsNegative() || minPrice.GreaterThan(maxPrice) {
		s.log.Warn().Str("min", minPrice.String()).Str("max", maxPrice.String()).Msg("invalid price range, returning empty page")
		return models.EmptyPage[ProductView](page, size), nil
	}

	res, err := s.products.GetByPriceRange(ctx, minPrice, maxPrice, page, size)
	if err != nil {
		s.log.Error().Err(err).Msg("fetching products by price range failed")
		return models.PagedResult[ProductView]{}, err
	}
	s.log.Info().Str("min", minPrice.String()).Str("max", maxPrice.String()).Int64("total", res.TotalCount).Msg("products fetched by price range")
	return models.MapPage(res, s.toView), nil
}

// Create validates the draft, persists the product and returns the view
// with its assigned id. A draft referencing a missing category fails with
// a ValidationError before anything is written.
func (s *ProductService) Create(ctx context.Context, draft ProductDraft) (*ProductView, error) {
	name := strings.TrimSpace(draft.Name)
	if name == "" {
		return nil, apperrors.Validation("name", "is required")
	}
	if len(name) > maxProductNameLen {
		return nil, apperrors.Validation("name", fmt.Sprintf("must be at most %d characters", maxProductNameLen))
	}
	if !draft.Price.IsPositive() {
		return nil, apperrors.Validation("price", "must be greater than zero")
	}

	ok, err := s.categories.ExistsByID(ctx, draft.CategoryID)
	if err != nil {
		s.log.Error().Err(err).Uint("categoryId", draft.CategoryID).Msg("category lookup failed")
		return nil, err
	}
	if !ok {
		s.log.Warn().Uint("categoryId", draft.CategoryID).Msg("create rejected: unknown category")
		return nil, apperrors.Validation("categoryId", fmt.Sprintf("category %d does not exist", draft.CategoryID))
	}

	p := &models.Product{
		Name:       name,
		Price:      draft.Price,
		CategoryID: draft.CategoryID,
		CreatedAt:  time.Now().UTC(),
		Version:    1,
	}
	s.products.Add(p)
	if err := s.products.Commit(ctx); err != nil {
		s.log.Error().Err(err).Msg("creating product failed")
		return nil, err
	}

	s.log.Info().Uint("id", p.ID).Str("name", p.Name).Msg("product created")
	v := s.toView(*p)
	return &v, nil
}

// Update applies only the fields present in the patch: the name when
// non-blank, the price when positive, the category when it exists (else a
// ValidationError). The update timestamp is always stamped. Fails with
// apperrors.ErrNotFound when the id is absent and apperrors.ErrConflict
// when the row changed concurrently.
func (s *ProductService) Update(ctx context.Context, id uint, patch ProductPatch) (*ProductView, error) {
	p, err := s.products.GetByID(ctx, id)
	if err != nil {
		s.log.Error().Err(err).Uint("id", id).Msg("fetching product failed")
		return nil, err
	}
	if p == nil {
		s.log.Warn().Uint("id", id).Msg("update rejected: product not found")
		return nil, apperrors.NotFoundf("product %d", id)
	}

	if patch.Name != nil {
		if name := strings.TrimSpace(*patch.Name); name != "" {
			if len(name) > maxProductNameLen {
				return nil, apperrors.Validation("name", fmt.Sprintf("must be at most %d characters", maxProductNameLen))
			}
			p.Name = name
		}
	}
	if patch.Price != nil && patch.Price.IsPositive() {
		p.Price = *patch.Price
	}
	if patch.CategoryID != nil && *patch.CategoryID > 0 {
		ok, err := s.categories.ExistsByID(ctx, *patch.CategoryID)
		if err != nil {
			s.log.Error().Err(err).Uint("categoryId", *patch.CategoryID).Msg("category lookup failed")
			return nil, err
		}
		if !ok {
			s.log.Warn().Uint("categoryId", *patch.CategoryID).Msg("update rejected: unknown category")
			return nil, apperrors.Validation("categoryId", fmt.Sprintf("category %d does not exist", *patch.CategoryID))
		}
		p.CategoryID = *patch.CategoryID
	}

	now := time.Now().UTC()
	p.UpdatedAt = &now

	s.products.UpdateChecked(p)
	if err := s.products.Commit(ctx); err != nil {
		if errors.Is(err, apperrors.ErrConflict) {
			s.log.Warn().Uint("id", id).Msg("update lost to a concurrent write")
		} else {
			s.log.Error().Err(err).Uint("id", id).Msg("updating product failed")
		}
		return nil, err
	}

	s.log.Info().Uint("id", id).Msg("product updated")
	v := s.toView(*p)
	return &v, nil
}

// Delete removes the product. Fails with apperrors.ErrNotFound when the
// id is absent.
func (s *ProductService) Delete(ctx context.Context, id uint) error {
	p, err := s.products.GetByID(ctx, id)
	if err != nil {
		s.log.Error().Err(err).Uint("id", id).Msg("fetching product failed")
		return err
	}
	if p == nil {
		s.log.Warn().Uint("id", id).Msg("delete rejected: product not found")
		return apperrors.NotFoundf("product %d", id)
	}

	s.products.RemoveByID(id)
	if err := s.products.Commit(ctx); err != nil {
		s.log.Error().Err(err).Uint("id", id).Msg("deleting product failed")
		return err
	}

	s.log.Info().Uint("id", id).Msg("product deleted")
	return nil
}

func (s *ProductService) toView(p models.Product) ProductView {
	v := ProductView{
		ID:         p.ID,
		Name:       p.Name,
		Price:      p.Price,
		CategoryID: p.CategoryID,
		CreatedAt:  p.CreatedAt,
		UpdatedAt:  p.UpdatedAt,
	}
	if p.Category != nil {
		v.CategoryName = p.Category.Name
	}
	return v
}
