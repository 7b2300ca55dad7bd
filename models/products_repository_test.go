package models

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/openmart/mini-commerce/apperrors"
)

// newMockDB opens a gorm handle backed by sqlmock. Queries are matched by
// regular expression, so expectations only name the load-bearing SQL.
func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger:               logger.Default.LogMode(logger.Silent),
		DisableAutomaticPing: true,
	})
	require.NoError(t, err)
	return db, mock
}

func productRows(products ...Product) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{"id", "name", "price", "category_id", "created_at", "updated_at", "version"})
	for _, p := range products {
		rows.AddRow(p.ID, p.Name, p.Price.String(), p.CategoryID, p.CreatedAt, p.UpdatedAt, p.Version)
	}
	return rows
}

func TestProductsRepositoryGetAll(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewProductsRepository(db)

	mock.ExpectQuery(`SELECT count\(\*\) FROM "products"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(12))
	mock.ExpectQuery(`SELECT .+ FROM "products"`).
		WillReturnRows(productRows(
			Product{ID: 1, Name: "Laptop", Price: decimal.NewFromFloat(999.99), CategoryID: 1, Version: 1},
			Product{ID: 2, Name: "Mouse", Price: decimal.NewFromFloat(19.99), CategoryID: 1, Version: 1},
		))

	res, err := repo.GetAll(context.Background(), 1, 2)

	require.NoError(t, err)
	assert.Equal(t, int64(12), res.TotalCount)
	assert.Equal(t, 6, res.TotalPages)
	assert.True(t, res.HasNextPage)
	assert.False(t, res.HasPreviousPage)
	assert.Len(t, res.Data, 2)
	assert.Equal(t, "Laptop", res.Data[0].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductsRepositoryGetAllClampsPaging(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewProductsRepository(db)

	mock.ExpectQuery(`SELECT count\(\*\) FROM "products"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(`SELECT .+ FROM "products"`).
		WillReturnRows(productRows())

	res, err := repo.GetAll(context.Background(), -3, 500)

	require.NoError(t, err)
	assert.Equal(t, 1, res.CurrentPage, "Page is clamped to 1")
	assert.Equal(t, MaxPageSize, res.PageSize, "Size is clamped to the maximum")
	assert.NotNil(t, res.Data)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductsRepositorySearchByName(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewProductsRepository(db)

	mock.ExpectQuery(`SELECT count\(\*\) FROM "products" WHERE LOWER\(name\) LIKE`).
		WithArgs("%laptop%").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(`SELECT .+ FROM "products" WHERE LOWER\(name\) LIKE`).
		WillReturnRows(productRows(
			Product{ID: 1, Name: "laptop stand", Price: decimal.NewFromFloat(49.99), CategoryID: 1, Version: 1},
		))

	res, err := repo.SearchByName(context.Background(), "LAPTOP", 1, 10)

	require.NoError(t, err)
	assert.Equal(t, int64(1), res.TotalCount)
	assert.Equal(t, "laptop stand", res.Data[0].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductsRepositoryGetByPriceRangeOrdersAscending(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewProductsRepository(db)

	mock.ExpectQuery(`SELECT count\(\*\) FROM "products" WHERE price >= .+ AND price <=`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))
	mock.ExpectQuery(`SELECT .+ FROM "products" WHERE price >= .+ ORDER BY price ASC`).
		WillReturnRows(productRows(
			Product{ID: 2, Name: "Mouse", Price: decimal.NewFromFloat(19.99), CategoryID: 1, Version: 1},
			Product{ID: 3, Name: "Keyboard", Price: decimal.NewFromFloat(59.99), CategoryID: 1, Version: 1},
		))
	// Category preload on the fetched page
	mock.ExpectQuery(`SELECT .+ FROM "categories"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).AddRow(1, "Electronics"))

	res, err := repo.GetByPriceRange(context.Background(), decimal.NewFromInt(10), decimal.NewFromInt(100), 1, 10)

	require.NoError(t, err)
	assert.Equal(t, int64(2), res.TotalCount)
	assert.Equal(t, "Mouse", res.Data[0].Name, "Cheapest product first")
	require.NotNil(t, res.Data[0].Category)
	assert.Equal(t, "Electronics", res.Data[0].Category.Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductsRepositoryGetByIDAbsent(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewProductsRepository(db)

	mock.ExpectQuery(`SELECT .+ FROM "products" WHERE "products"."id" =`).
		WillReturnRows(productRows())

	p, err := repo.GetByID(context.Background(), 99)

	assert.NoError(t, err, "An absent id is not an error")
	assert.Nil(t, p)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductsRepositoryAddCommit(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewProductsRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "products"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))
	mock.ExpectCommit()

	p := &Product{
		Name:       "Laptop",
		Price:      decimal.NewFromFloat(999.99),
		CategoryID: 1,
		CreatedAt:  time.Now().UTC(),
		Version:    1,
	}
	repo.Add(p)
	err := repo.Commit(context.Background())

	require.NoError(t, err)
	assert.Equal(t, uint(7), p.ID, "Id is assigned during commit")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductsRepositoryCommitWithNothingStaged(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewProductsRepository(db)

	err := repo.Commit(context.Background())

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductsRepositoryUpdateChecked(t *testing.T) {
	now := time.Now().UTC()
	product := func() *Product {
		return &Product{
			ID:         1,
			Name:       "Laptop",
			Price:      decimal.NewFromFloat(999.99),
			CategoryID: 1,
			UpdatedAt:  &now,
			Version:    3,
		}
	}

	t.Run("Matching version bumps and commits", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewProductsRepository(db)

		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE "products" SET`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		p := product()
		repo.UpdateChecked(p)
		err := repo.Commit(context.Background())

		require.NoError(t, err)
		assert.Equal(t, int64(4), p.Version)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Stale version rolls back with a conflict", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewProductsRepository(db)

		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE "products" SET`).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		p := product()
		repo.UpdateChecked(p)
		err := repo.Commit(context.Background())

		assert.ErrorIs(t, err, apperrors.ErrConflict)
		assert.Equal(t, int64(3), p.Version, "Version is untouched on conflict")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestProductsRepositoryRemoveByID(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewProductsRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM "products" WHERE`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	repo.RemoveByID(1)
	err := repo.Commit(context.Background())

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
