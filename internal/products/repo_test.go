package products

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/atino-shop/atino-backend/pkg/db/models"
	"github.com/atino-shop/atino-backend/pkg/pagination"
)

func openRepoDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&models.Product{}))
	return conn
}

func seedProduct(t *testing.T, repo Repository, name, category string, price int64, isSale bool) *models.Product {
	t.Helper()
	product, err := repo.Create(context.Background(), &models.Product{
		Name:     name,
		Price:    price,
		Category: category,
		IsSale:   isSale,
		InStock:  true,
	})
	require.NoError(t, err)
	return product
}

func TestRepoListFiltersAndSorts(t *testing.T) {
	repo := NewRepository(openRepoDB(t))
	ctx := context.Background()

	seedProduct(t, repo, "Trail Runner", "shoes", 150000, false)
	seedProduct(t, repo, "City Sneaker", "shoes", 90000, true)
	seedProduct(t, repo, "Linen Shirt", "shirts", 120000, false)

	rows, total, err := repo.List(ctx, pagination.Params{Page: 1, Limit: 10}, ListFilters{Category: "shoes", Sort: "price_asc"})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	require.Len(t, rows, 2)
	assert.Equal(t, "City Sneaker", rows[0].Name)
	assert.Equal(t, "Trail Runner", rows[1].Name)

	sale := true
	rows, total, err = repo.List(ctx, pagination.Params{Page: 1, Limit: 10}, ListFilters{IsSale: &sale})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, rows, 1)
	assert.Equal(t, "City Sneaker", rows[0].Name)

	minPrice := int64(100000)
	rows, _, err = repo.List(ctx, pagination.Params{Page: 1, Limit: 10}, ListFilters{PriceMin: &minPrice, Sort: "name_asc"})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Linen Shirt", rows[0].Name)

	rows, _, err = repo.List(ctx, pagination.Params{Page: 1, Limit: 10}, ListFilters{Search: "RUNNER"})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Trail Runner", rows[0].Name)
}

func TestRepoListPaginates(t *testing.T) {
	repo := NewRepository(openRepoDB(t))
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		seedProduct(t, repo, fmt.Sprintf("Item %d", i), "misc", int64(10000*(i+1)), false)
	}

	rows, total, err := repo.List(ctx, pagination.Params{Page: 2, Limit: 2}, ListFilters{Sort: "price_asc"})
	require.NoError(t, err)
	assert.EqualValues(t, 5, total)
	require.Len(t, rows, 2)
	assert.EqualValues(t, 30000, rows[0].Price)
}

func TestRepoCategoriesDistinctSorted(t *testing.T) {
	repo := NewRepository(openRepoDB(t))
	ctx := context.Background()

	seedProduct(t, repo, "A", "shoes", 1000, false)
	seedProduct(t, repo, "B", "shoes", 2000, false)
	seedProduct(t, repo, "C", "accessories", 3000, false)

	categories, err := repo.ListCategories(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"accessories", "shoes"}, categories)
}

func TestRepoUpdateRating(t *testing.T) {
	conn := openRepoDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	product := seedProduct(t, repo, "Rated", "shoes", 1000, false)
	require.NoError(t, repo.UpdateRating(ctx, nil, product.ID, 4.5, 2))

	got, err := repo.FindByID(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, 4.5, got.Rating)
	assert.Equal(t, 2, got.NumReviews)
}

func TestRepoDeleteMissing(t *testing.T) {
	repo := NewRepository(openRepoDB(t))

	err := repo.Delete(context.Background(), uuid.New())
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
