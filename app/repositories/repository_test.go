package repositories

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/shashiranjanraj/kproduct/app/models"
	_ "github.com/shashiranjanraj/kproduct/database/migrations"
	"github.com/shashiranjanraj/kproduct/pkg/database"
	"github.com/shashiranjanraj/kproduct/pkg/migration"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.OpenMemory()
	require.NoError(t, err)
	require.NoError(t, migration.New(db, nil).Run())
	return db
}

func price(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func newProduct(name string) *models.Product {
	return &models.Product{Name: name, Price: price("19.99"), Size: models.SizeM}
}

func TestSaveAssignsIDAndFindByIDReturnsEqual(t *testing.T) {
	ctx := context.Background()
	repo := NewProductRepository(setupTestDB(t))

	p := newProduct("Tee")
	require.NoError(t, repo.Save(ctx, p))
	require.NotNil(t, p.ID)

	found, err := repo.FindByID(ctx, *p.ID)
	require.NoError(t, err)
	assert.True(t, found.Equal(p))
	assert.Equal(t, "Tee", found.Name)
	assert.Equal(t, "19.99", found.Price.StringFixed(2))
}

func TestSaveWithIDReplacesRow(t *testing.T) {
	ctx := context.Background()
	repo := NewProductRepository(setupTestDB(t))

	p := newProduct("Tee")
	require.NoError(t, repo.Save(ctx, p))

	update := newProduct("Tee")
	update.ID = p.ID
	update.Price = price("24.99")
	require.NoError(t, repo.Save(ctx, update))

	found, err := repo.FindByID(ctx, *p.ID)
	require.NoError(t, err)
	assert.Equal(t, "24.99", found.Price.StringFixed(2))

	n, err := repo.Count(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestSaveWithUnknownIDInserts(t *testing.T) {
	ctx := context.Background()
	repo := NewProductCategoryRepository(setupTestDB(t))

	id := int64(42)
	require.NoError(t, repo.Save(ctx, &models.ProductCategory{ID: &id, Name: "Hats"}))

	found, err := repo.FindByID(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, "Hats", found.Name)
}

func TestFindByIDMissing(t *testing.T) {
	repo := NewProductOrderRepository(setupTestDB(t))
	_, err := repo.FindByID(context.Background(), 999)
	assert.ErrorIs(t, err, ErrNotFound)

	ok, err := repo.ExistsByID(context.Background(), 999)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestProductReferencePreloaded(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	categories := NewProductCategoryRepository(db)
	products := NewProductRepository(db)

	c := &models.ProductCategory{Name: "Shirts"}
	require.NoError(t, categories.Save(ctx, c))

	p := newProduct("Tee")
	p.ProductCategory = &models.ProductCategory{ID: c.ID}
	require.NoError(t, products.Save(ctx, p))

	found, err := products.FindByID(ctx, *p.ID)
	require.NoError(t, err)
	require.NotNil(t, found.ProductCategory)
	assert.Equal(t, "Shirts", found.ProductCategory.Name)

	var stored models.ProductCategory
	require.NoError(t, db.First(&stored, *c.ID).Error)
	assert.Equal(t, "Shirts", stored.Name, "saving a product never writes the category row")
}

func TestFindAllPagesAndSorts(t *testing.T) {
	ctx := context.Background()
	repo := NewProductRepository(setupTestDB(t))
	for _, name := range []string{"b", "d", "a", "e", "c"} {
		require.NoError(t, repo.Save(ctx, newProduct(name)))
	}

	pg, err := NewPageable(1, 2, 2000, nil)
	require.NoError(t, err)
	page, err := repo.FindAll(ctx, pg)
	require.NoError(t, err)
	assert.Equal(t, int64(5), page.TotalElements)
	assert.Equal(t, 3, page.TotalPages())
	require.Len(t, page.Content, 2)
	assert.Equal(t, "a", page.Content[0].Name, "default order is insertion order")
	assert.Equal(t, "e", page.Content[1].Name)

	pg, err = NewPageable(0, 3, 2000, []string{"name,desc"})
	require.NoError(t, err)
	page, err = repo.FindAll(ctx, pg)
	require.NoError(t, err)
	names := []string{}
	for _, p := range page.Content {
		names = append(names, p.Name)
	}
	assert.Equal(t, []string{"e", "d", "c"}, names)

	pg, _ = NewPageable(10, 3, 2000, nil)
	page, err = repo.FindAll(ctx, pg)
	require.NoError(t, err)
	assert.Empty(t, page.Content)
	assert.Equal(t, int64(5), page.TotalElements)
}

func TestFindAllRejectsUnknownSort(t *testing.T) {
	repo := NewProductRepository(setupTestDB(t))
	pg, err := NewPageable(0, 20, 2000, []string{"colour,asc"})
	require.NoError(t, err)

	_, err = repo.FindAll(context.Background(), pg)
	var sortErr *SortError
	require.ErrorAs(t, err, &sortErr)
	assert.Equal(t, "colour", sortErr.Property)

	pg, _ = NewPageable(0, 20, 2000, []string{"productCategory"})
	_, err = repo.FindAll(context.Background(), pg)
	assert.ErrorAs(t, err, &sortErr, "relations are not sortable columns")
}

func TestFindAllSortsByCamelCaseProperty(t *testing.T) {
	ctx := context.Background()
	repo := NewProductRepository(setupTestDB(t))
	a := newProduct("a")
	a.ImageContentType = "image/png"
	b := newProduct("b")
	b.ImageContentType = "image/gif"
	require.NoError(t, repo.Save(ctx, a))
	require.NoError(t, repo.Save(ctx, b))

	pg, _ := NewPageable(0, 20, 2000, []string{"imageContentType"})
	page, err := repo.FindAll(ctx, pg)
	require.NoError(t, err)
	assert.Equal(t, "b", page.Content[0].Name)
}

func TestDeleteByIDIsIdempotent(t *testing.T) {
	ctx := context.Background()
	repo := NewProductRepository(setupTestDB(t))
	p := newProduct("Tee")
	require.NoError(t, repo.Save(ctx, p))

	n, err := repo.DeleteByID(ctx, *p.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = repo.DeleteByID(ctx, *p.ID)
	require.NoError(t, err)
	assert.Zero(t, n)

	_, err = repo.FindByID(ctx, *p.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDetachCategory(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	c := &models.ProductCategory{Name: "Shirts"}
	require.NoError(t, NewProductCategoryRepository(db).Save(ctx, c))

	products := NewProductRepository(db)
	p := newProduct("Tee")
	p.ProductCategory = c
	require.NoError(t, products.Save(ctx, p))

	n, err := DetachCategory(ctx, db, *c.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	found, err := products.FindByID(ctx, *p.ID)
	require.NoError(t, err)
	assert.Nil(t, found.ProductCategory)
}

func TestOrderItemPreloadsNestedReferences(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	c := &models.ProductCategory{Name: "Shirts"}
	require.NoError(t, NewProductCategoryRepository(db).Save(ctx, c))
	p := newProduct("Tee")
	p.ProductCategory = c
	require.NoError(t, NewProductRepository(db).Save(ctx, p))
	o := &models.ProductOrder{Status: models.OrderStatusPending, Code: "A1", Customer: "alice"}
	placed := time.Date(2020, 1, 1, 10, 0, 0, 0, time.UTC)
	o.PlacedDate = &placed
	require.NoError(t, NewProductOrderRepository(db).Save(ctx, o))

	qty := 2
	item := &models.OrderItem{Quantity: &qty, TotalPrice: price("39.98"), Status: models.OrderItemAvailable, Product: p, Order: o}
	items := NewOrderItemRepository(db)
	require.NoError(t, items.Save(ctx, item))

	found, err := items.FindByID(ctx, *item.ID)
	require.NoError(t, err)
	require.NotNil(t, found.Product)
	require.NotNil(t, found.Product.ProductCategory)
	assert.Equal(t, "Shirts", found.Product.ProductCategory.Name)
	require.NotNil(t, found.Order)
	assert.Equal(t, "A1", found.Order.Code)
}

func TestFindAllSortsDescendingRegardlessOfInsertOrder(t *testing.T) {
	ctx := context.Background()
	repo := NewProductRepository(setupTestDB(t))
	for _, name := range []string{"b", "c", "a"} {
		require.NoError(t, repo.Save(ctx, newProduct(name)))
	}

	pg, err := NewPageable(0, 20, 2000, []string{"name,desc"})
	require.NoError(t, err)
	page, err := repo.FindAll(ctx, pg)
	require.NoError(t, err)

	names := make([]string, 0, len(page.Content))
	for _, p := range page.Content {
		names = append(names, p.Name)
	}
	assert.Equal(t, []string{"c", "b", "a"}, names)
}

func TestFindAllTieBreaksOnID(t *testing.T) {
	ctx := context.Background()
	repo := NewProductRepository(setupTestDB(t))
	var ids []int64
	for i := 0; i < 3; i++ {
		p := newProduct("same")
		require.NoError(t, repo.Save(ctx, p))
		ids = append(ids, *p.ID)
	}

	pg, _ := NewPageable(0, 20, 2000, []string{"name"})
	page, err := repo.FindAll(ctx, pg)
	require.NoError(t, err)
	require.Len(t, page.Content, 3)
	for i, p := range page.Content {
		assert.Equal(t, ids[i], *p.ID)
	}
}

func TestOffsetOverflow(t *testing.T) {
	off, ok := Pageable{Page: 3, Size: 20}.Offset()
	assert.True(t, ok)
	assert.Equal(t, 60, off)

	_, ok = Pageable{Page: math.MaxInt, Size: 20}.Offset()
	assert.False(t, ok)
	_, ok = Pageable{Page: math.MaxInt/20 + 1, Size: 20}.Offset()
	assert.False(t, ok)
}

func TestFindAllPastEndWithHugePageIsEmpty(t *testing.T) {
	ctx := context.Background()
	repo := NewProductRepository(setupTestDB(t))
	require.NoError(t, repo.Save(ctx, newProduct("Tee")))

	for _, page := range []int{461168601842738791, math.MaxInt} {
		pg, err := NewPageable(page, 20, 2000, nil)
		require.NoError(t, err)
		result, err := repo.FindAll(ctx, pg)
		require.NoError(t, err)
		assert.Empty(t, result.Content, "page %d", page)
		assert.Equal(t, int64(1), result.TotalElements)
	}
}
