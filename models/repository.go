package models

import (
	"context"
	"errors"
	"sync"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

// Entity is anything with a numeric primary key.
type Entity interface {
	PrimaryKey() uint
}

// Scope narrows a query, e.g. by adding Where or Order clauses.
type Scope func(*gorm.DB) *gorm.DB

// Repository provides paged reads and transactional writes for one entity
// type. Write methods stage mutations; Commit flushes everything staged in
// a single transaction, so a failed commit leaves storage untouched.
type Repository[T Entity] struct {
	db      *gorm.DB
	mu      sync.Mutex
	pending []func(tx *gorm.DB) error
}

func NewRepository[T Entity](db *gorm.DB) *Repository[T] {
	return &Repository[T]{db: db}
}

// GetAll returns one page of entities in storage order. The page number is
// clamped to >=1 and the size to [MinPageSize, MaxPageSize].
func (r *Repository[T]) GetAll(ctx context.Context, page, size int) (PagedResult[T], error) {
	return r.findPage(ctx, nil, nil, page, size)
}

// Find returns one page of entities matching the filter scope, with the
// same clamping as GetAll.
func (r *Repository[T]) Find(ctx context.Context, filter Scope, page, size int) (PagedResult[T], error) {
	return r.findPage(ctx, filter, nil, page, size)
}

// findPage counts with only the filter scope applied, then fetches the
// page with the read scope (ordering, preloads) added on top. Keeping the
// two apart stops ORDER BY clauses from leaking into the count query.
func (r *Repository[T]) findPage(ctx context.Context, filter, read Scope, page, size int) (PagedResult[T], error) {
	page = ClampPage(page)
	size = ClampSize(size)

	var model T
	q := r.db.WithContext(ctx).Model(&model)
	if filter != nil {
		q = filter(q)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return PagedResult[T]{}, err
	}

	if read != nil {
		q = read(q)
	}
	data := make([]T, 0, size)
	if err := q.Offset((page - 1) * size).Limit(size).Find(&data).Error; err != nil {
		return PagedResult[T]{}, err
	}
	return NewPagedResult(data, total, page, size), nil
}

// GetByID fetches one entity by primary key, eager-loading the named
// associations. Returns (nil, nil) when the id is absent.
func (r *Repository[T]) GetByID(ctx context.Context, id uint, preloads ...string) (*T, error) {
	q := r.db.WithContext(ctx)
	for _, p := range preloads {
		q = q.Preload(p)
	}
	var e T
	if err := q.First(&e, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &e, nil
}

// First fetches the first entity matching the scope, eager-loading the
// named associations. Returns (nil, nil) when nothing matches.
func (r *Repository[T]) First(ctx context.Context, scope Scope, preloads ...string) (*T, error) {
	q := r.db.WithContext(ctx)
	if scope != nil {
		q = scope(q)
	}
	for _, p := range preloads {
		q = q.Preload(p)
	}
	var e T
	if err := q.First(&e).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &e, nil
}

// Count returns the total number of stored entities.
func (r *Repository[T]) Count(ctx context.Context) (int64, error) {
	var model T
	var total int64
	err := r.db.WithContext(ctx).Model(&model).Count(&total).Error
	return total, err
}

// Exists reports whether any entity matches the scope.
func (r *Repository[T]) Exists(ctx context.Context, scope Scope) (bool, error) {
	var model T
	q := r.db.WithContext(ctx).Model(&model)
	if scope != nil {
		q = scope(q)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return false, err
	}
	return total > 0, nil
}

// Add stages an insert. The entity's id is assigned during Commit.
func (r *Repository[T]) Add(e *T) {
	r.Stage(func(tx *gorm.DB) error {
		return tx.Create(e).Error
	})
}

// AddBatch stages inserts for all given entities.
func (r *Repository[T]) AddBatch(entities []*T) {
	r.Stage(func(tx *gorm.DB) error {
		for _, e := range entities {
			if err := tx.Create(e).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// Update stages a full-row save of the entity.
func (r *Repository[T]) Update(e *T) {
	r.Stage(func(tx *gorm.DB) error {
		return tx.Save(e).Error
	})
}

// RemoveByID stages a delete by primary key. A no-op when the id is absent.
func (r *Repository[T]) RemoveByID(id uint) {
	r.Stage(func(tx *gorm.DB) error {
		var e T
		return tx.Delete(&e, id).Error
	})
}

// Remove stages a delete of the given entity.
func (r *Repository[T]) Remove(e *T) {
	r.Stage(func(tx *gorm.DB) error {
		return tx.Delete(e).Error
	})
}

// RemoveBatch stages deletes for all given entities.
func (r *Repository[T]) RemoveBatch(entities []*T) {
	r.Stage(func(tx *gorm.DB) error {
		for _, e := range entities {
			if err := tx.Delete(e).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// Stage queues an arbitrary mutation to run inside the next Commit.
// Specialized repositories use it for guarded writes.
func (r *Repository[T]) Stage(op func(tx *gorm.DB) error) {
	r.mu.Lock()
	r.pending = append(r.pending, op)
	r.mu.Unlock()
}

// Commit flushes all staged mutations in one transaction. The stage is
// cleared up front so a failed commit does not replay on the next call;
// storage errors are returned to the caller, never swallowed.
func (r *Repository[T]) Commit(ctx context.Context) error {
	r.mu.Lock()
	ops := r.pending
	r.pending = nil
	r.mu.Unlock()

	if len(ops) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, op := range ops {
			if err := op(tx); err != nil {
				return err
			}
		}
		return nil
	})
}

// isUniqueViolation reports whether err is a Postgres unique-index
// violation (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
