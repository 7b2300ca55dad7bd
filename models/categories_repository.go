package models

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/openmart/mini-commerce/apperrors"
)

// CategoriesRepository adds category-specific queries plus small
// stage-and-commit conveniences used by the HTTP layer.
type CategoriesRepository struct {
	*Repository[Category]
}

func NewCategoriesRepository(db *gorm.DB) *CategoriesRepository {
	return &CategoriesRepository{Repository: NewRepository[Category](db)}
}

// GetByName fetches a category by case-insensitive exact name match.
// Returns (nil, nil) when no category has that name.
func (r *CategoriesRepository) GetByName(ctx context.Context, name string) (*Category, error) {
	return r.First(ctx, func(q *gorm.DB) *gorm.DB {
		return q.Where("LOWER(name) = LOWER(?)", name)
	})
}

// GetWithProducts fetches a category with its products attached.
func (r *CategoriesRepository) GetWithProducts(ctx context.Context, id uint) (*Category, error) {
	return r.GetByID(ctx, id, "Products")
}

// ExistsByID reports whether the category id references a stored category.
func (r *CategoriesRepository) ExistsByID(ctx context.Context, id uint) (bool, error) {
	return r.Exists(ctx, func(q *gorm.DB) *gorm.DB {
		return q.Where("id = ?", id)
	})
}

// Create inserts the category. A duplicate name maps to
// apperrors.ErrConflict.
func (r *CategoriesRepository) Create(ctx context.Context, c *Category) error {
	c.CreatedAt = time.Now().UTC()
	r.Add(c)
	if err := r.Commit(ctx); err != nil {
		if isUniqueViolation(err) {
			return apperrors.Conflictf("category name %q already exists", c.Name)
		}
		return err
	}
	return nil
}

// Update saves the category. A duplicate name maps to apperrors.ErrConflict.
func (r *CategoriesRepository) Update(ctx context.Context, c *Category) error {
	r.Repository.Update(c)
	if err := r.Commit(ctx); err != nil {
		if isUniqueViolation(err) {
			return apperrors.Conflictf("category name %q already exists", c.Name)
		}
		return err
	}
	return nil
}

// Delete removes the category by id; products in it go with it via the
// cascade constraint. Reports whether the id existed.
func (r *CategoriesRepository) Delete(ctx context.Context, id uint) (bool, error) {
	existing, err := r.GetByID(ctx, id)
	if err != nil {
		return false, err
	}
	if existing == nil {
		return false, nil
	}
	r.RemoveByID(id)
	return true, r.Commit(ctx)
}
