package models

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/openmart/mini-commerce/apperrors"
)

// ProductsRepository adds product-specific queries on top of the generic
// repository. All paged variants reuse the generic clamp/count/slice logic
// and only contribute filter scopes.
type ProductsRepository struct {
	*Repository[Product]
}

func NewProductsRepository(db *gorm.DB) *ProductsRepository {
	return &ProductsRepository{Repository: NewRepository[Product](db)}
}

// GetWithCategory fetches one product with its category attached.
// Returns (nil, nil) when the id is absent.
func (r *ProductsRepository) GetWithCategory(ctx context.Context, id uint) (*Product, error) {
	return r.GetByID(ctx, id, "Category")
}

// GetByCategory returns one page of products in the given category.
func (r *ProductsRepository) GetByCategory(ctx context.Context, categoryID uint, page, size int) (PagedResult[Product], error) {
	filter := func(q *gorm.DB) *gorm.DB {
		return q.Where("category_id = ?", categoryID)
	}
	read := func(q *gorm.DB) *gorm.DB {
		return q.Preload("Category")
	}
	return r.findPage(ctx, filter, read, page, size)
}

// GetByPriceRange returns one page of products with price in
// [minPrice, maxPrice], cheapest first.
func (r *ProductsRepository) GetByPriceRange(ctx context.Context, minPrice, maxPrice decimal.Decimal, page, size int) (PagedResult[Product], error) {
	filter := func(q *gorm.DB) *gorm.DB {
		return q.Where("price >= ? AND price <= ?", minPrice, maxPrice)
	}
	read := func(q *gorm.DB) *gorm.DB {
		return q.Preload("Category").Order("price ASC")
	}
	return r.findPage(ctx, filter, read, page, size)
}

// SearchByName returns one page of products whose name contains the term,
// case-insensitively.
func (r *ProductsRepository) SearchByName(ctx context.Context, term string, page, size int) (PagedResult[Product], error) {
	pattern := "%" + strings.ToLower(term) + "%"
	filter := func(q *gorm.DB) *gorm.DB {
		return q.Where("LOWER(name) LIKE ?", pattern)
	}
	read := func(q *gorm.DB) *gorm.DB {
		return q.Preload("Category")
	}
	return r.findPage(ctx, filter, read, page, size)
}

// UpdateChecked stages a version-guarded update of the product's mutable
// columns. If the row changed since p was read, Commit fails with
// apperrors.ErrConflict and the whole transaction rolls back.
func (r *ProductsRepository) UpdateChecked(p *Product) {
	expected := p.Version
	r.Stage(func(tx *gorm.DB) error {
		res := tx.Model(&Product{}).
			Where("id = ? AND version = ?", p.ID, expected).
			Updates(map[string]any{
				"name":        p.Name,
				"price":       p.Price,
				"category_id": p.CategoryID,
				"updated_at":  p.UpdatedAt,
				"version":     expected + 1,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperrors.Conflictf("product %d was modified concurrently", p.ID)
		}
		p.Version = expected + 1
		return nil
	})
}
