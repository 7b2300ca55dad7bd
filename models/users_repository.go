package models

import (
	"context"

	"gorm.io/gorm"

	"github.com/openmart/mini-commerce/apperrors"
)

// UsersRepository is the identity store: lookup by username or email with
// roles attached, and account creation.
type UsersRepository struct {
	*Repository[User]
}

func NewUsersRepository(db *gorm.DB) *UsersRepository {
	return &UsersRepository{Repository: NewRepository[User](db)}
}

// GetByUsername fetches a user by case-insensitive username, roles
// preloaded. Returns (nil, nil) when absent.
func (r *UsersRepository) GetByUsername(ctx context.Context, username string) (*User, error) {
	return r.First(ctx, func(q *gorm.DB) *gorm.DB {
		return q.Where("LOWER(username) = LOWER(?)", username)
	}, "Roles")
}

// GetByEmail fetches a user by case-insensitive email, roles preloaded.
// Returns (nil, nil) when absent.
func (r *UsersRepository) GetByEmail(ctx context.Context, email string) (*User, error) {
	return r.First(ctx, func(q *gorm.DB) *gorm.DB {
		return q.Where("LOWER(email) = LOWER(?)", email)
	}, "Roles")
}

// Create inserts the user with the named roles attached. A duplicate
// username or email maps to apperrors.ErrConflict.
func (r *UsersRepository) Create(ctx context.Context, u *User, roleNames ...string) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(roleNames) > 0 {
			var roles []Role
			if err := tx.Where("name IN ?", roleNames).Find(&roles).Error; err != nil {
				return err
			}
			u.Roles = roles
		}
		return tx.Create(u).Error
	})
	if isUniqueViolation(err) {
		return apperrors.Conflictf("username or email already taken")
	}
	return err
}

// EnsureRoles creates any of the named roles that are missing.
// Called once at startup so role lookups during registration always resolve.
func (r *UsersRepository) EnsureRoles(ctx context.Context, names ...string) error {
	for _, name := range names {
		var role Role
		err := r.db.WithContext(ctx).
			Where(Role{Name: name}).
			FirstOrCreate(&role).Error
		if err != nil {
			return err
		}
	}
	return nil
}
