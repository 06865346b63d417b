package usecase

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/DRSN-tech/marketplace-backend/internal/domain"
	"github.com/DRSN-tech/marketplace-backend/pkg/e"
	"github.com/DRSN-tech/marketplace-backend/pkg/logger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type productFixture struct {
	uc           *ProductUC
	productRepo  *mockProductRepo
	storeRepo    *mockStoreRepo
	categoryRepo *mockCategoryRepo
	imageRepo    *mockImageRepo
	outboxRepo   *mockOutboxRepo
	cache        *fakePriceCache
	db           *fakeDB

	ownerID uuid.UUID
	storeID int64
}

func newProductFixture() *productFixture {
	productRepo := newMockProductRepo()
	storeRepo := newMockStoreRepo()
	categoryRepo := newMockCategoryRepo()
	imageRepo := newMockImageRepo()
	outboxRepo := newMockOutboxRepo()
	cache := newFakePriceCache()
	db := newFakeDB()

	ownerID := uuid.New()
	storeRepo.stores[1] = &domain.Store{ID: 1, Name: "main store", OwnerID: ownerID}
	categoryRepo.categories[1] = &domain.Category{ID: 1, Name: "electronics"}

	uc := NewProductUC(productRepo, storeRepo, categoryRepo, imageRepo, outboxRepo, db, cache, logger.Nop())

	return &productFixture{
		uc:           uc,
		productRepo:  productRepo,
		storeRepo:    storeRepo,
		categoryRepo: categoryRepo,
		imageRepo:    imageRepo,
		outboxRepo:   outboxRepo,
		cache:        cache,
		db:           db,
		ownerID:      ownerID,
		storeID:      1,
	}
}

func (f *productFixture) createReq() *CreateProductReq {
	return &CreateProductReq{
		Name:       "ssd 1tb",
		Price:      decimal.RequireFromString("99.99"),
		Quantity:   10,
		CategoryID: 1,
		StoreID:    f.storeID,
		ActorID:    f.ownerID,
		Image: &ProductImage{
			Data:     []byte{0xFF, 0xD8, 0xFF},
			MimeType: "image/jpeg",
			Size:     3,
			Name:     "ssd.jpg",
		},
	}
}

func TestCreateProduct(t *testing.T) {
	f := newProductFixture()

	created, err := f.uc.CreateProduct(context.Background(), f.createReq())
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, created.ID)
	assert.True(t, created.IsAvailable)
	assert.Equal(t, int32(0), created.Version)

	require.Len(t, f.imageRepo.uploaded, 1)
	assert.True(t, strings.HasSuffix(f.imageRepo.uploaded[0], ".jpg"))
	assert.Equal(t, f.imageRepo.uploaded[0], created.ImageURL)
}

func TestCreateProduct_NotOwner(t *testing.T) {
	f := newProductFixture()

	req := f.createReq()
	req.ActorID = uuid.New()

	_, err := f.uc.CreateProduct(context.Background(), req)

	assert.ErrorIs(t, err, e.ErrUnauthorized)
	assert.Empty(t, f.imageRepo.uploaded)
}

func TestCreateProduct_Validation(t *testing.T) {
	f := newProductFixture()

	req := f.createReq()
	req.Price = decimal.RequireFromString("10.999")
	_, err := f.uc.CreateProduct(context.Background(), req)
	assert.ErrorIs(t, err, e.ErrPricePrecision)

	req = f.createReq()
	req.Price = decimal.Zero
	_, err = f.uc.CreateProduct(context.Background(), req)
	assert.ErrorIs(t, err, e.ErrInvalidPrice)

	req = f.createReq()
	req.CategoryID = 42
	_, err = f.uc.CreateProduct(context.Background(), req)
	assert.ErrorIs(t, err, e.ErrCategoryNotFound)

	req = f.createReq()
	req.Image.MimeType = "application/pdf"
	_, err = f.uc.CreateProduct(context.Background(), req)
	assert.ErrorIs(t, err, e.ErrUnsupportedMediaType)
}

func TestListProducts_CursorWalk(t *testing.T) {
	f := newProductFixture()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 25; i++ {
		p := availableProduct("item", "10.00", 1)
		p.StoreID = f.storeID
		p.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		f.productRepo.add(p)
	}

	seen := make(map[uuid.UUID]bool)
	var cursor *ProductCursor
	pages := 0

	for {
		res, err := f.uc.ListProducts(context.Background(), &ListProductsQuery{Limit: 10, Cursor: cursor})
		require.NoError(t, err)
		pages++

		for _, view := range res.Products {
			assert.False(t, seen[view.Product.ID], "продукт не должен повторяться между страницами")
			seen[view.Product.ID] = true
		}

		if res.NextCursor == nil {
			assert.Len(t, res.Products, 5)
			break
		}
		assert.Len(t, res.Products, 10)
		cursor = res.NextCursor
	}

	assert.Equal(t, 3, pages)
	assert.Len(t, seen, 25)
}

func TestListProducts_StableUnderConcurrentInserts(t *testing.T) {
	f := newProductFixture()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	original := make(map[uuid.UUID]bool)
	for i := 0; i < 15; i++ {
		p := availableProduct("item", "10.00", 1)
		p.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		original[f.productRepo.add(p).ID] = true
	}

	first, err := f.uc.ListProducts(context.Background(), &ListProductsQuery{Limit: 10})
	require.NoError(t, err)
	require.NotNil(t, first.NextCursor)

	// Вставка между страницами: новая строка «выше» курсора и не должна
	// ни попасть на следующую страницу, ни сдвинуть оставшиеся.
	inserted := availableProduct("fresh", "10.00", 1)
	inserted.CreatedAt = base.Add(time.Hour)
	insertedID := f.productRepo.add(inserted).ID

	second, err := f.uc.ListProducts(context.Background(), &ListProductsQuery{Limit: 10, Cursor: first.NextCursor})
	require.NoError(t, err)
	assert.Len(t, second.Products, 5)
	assert.Nil(t, second.NextCursor)

	seen := make(map[uuid.UUID]bool)
	for _, view := range append(first.Products, second.Products...) {
		assert.False(t, seen[view.Product.ID])
		seen[view.Product.ID] = true
		assert.NotEqual(t, insertedID, view.Product.ID)
	}
	assert.Len(t, seen, len(original))
}

func TestListProducts_LimitClamped(t *testing.T) {
	f := newProductFixture()
	for i := 0; i < 30; i++ {
		f.productRepo.add(availableProduct("item", "10.00", 1))
	}

	res, err := f.uc.ListProducts(context.Background(), &ListProductsQuery{Limit: 0})
	require.NoError(t, err)
	assert.Len(t, res.Products, int(defaultPageSize))

	res, err = f.uc.ListProducts(context.Background(), &ListProductsQuery{Limit: 10_000})
	require.NoError(t, err)
	assert.Len(t, res.Products, int(defaultPageSize))
}

func TestUpdateQuantity(t *testing.T) {
	f := newProductFixture()

	product := availableProduct("ssd 1tb", "99.99", 10)
	product.StoreID = f.storeID
	product = f.productRepo.add(product)

	saved, err := f.uc.UpdateQuantity(context.Background(), &UpdateQuantityReq{
		ProductID: product.ID,
		Quantity:  0,
		ActorID:   f.ownerID,
	})
	require.NoError(t, err)

	assert.Equal(t, int32(0), saved.Quantity)
	assert.False(t, saved.IsAvailable)

	// Событие об изменении остатка записано в той же транзакции.
	require.Len(t, f.outboxRepo.events, 1)
	assert.Equal(t, StockChanged, f.outboxRepo.events[0].EventType)
	assert.Equal(t, product.ID, f.outboxRepo.events[0].ProductID)
	assert.Equal(t, 1, f.db.tx.commits)
}

func TestUpdateQuantity_Negative(t *testing.T) {
	f := newProductFixture()

	_, err := f.uc.UpdateQuantity(context.Background(), &UpdateQuantityReq{
		ProductID: uuid.New(),
		Quantity:  -1,
		ActorID:   f.ownerID,
	})

	assert.ErrorIs(t, err, e.ErrInvalidQuantity)
	assert.Empty(t, f.outboxRepo.events)
}

func TestUpdatePrice_RecomputesPercentageDiscount(t *testing.T) {
	f := newProductFixture()

	product := availableProduct("ssd 1tb", "100.00", 10)
	product.StoreID = f.storeID
	discountPrice := decimal.RequireFromString("80.00")
	product.Discount = &domain.Discount{
		Type:        domain.DiscountPercentage,
		Value:       decimal.NewFromInt(20),
		Price:       &discountPrice,
		MinQuantity: 1,
		Active:      true,
	}
	product = f.productRepo.add(product)
	f.cache.prices[product.ID] = discountPrice

	saved, err := f.uc.UpdatePrice(context.Background(), &UpdatePriceReq{
		ProductID: product.ID,
		Price:     decimal.RequireFromString("200.00"),
		ActorID:   f.ownerID,
	})
	require.NoError(t, err)

	assert.True(t, saved.Price.Equal(decimal.RequireFromString("200.00")))
	require.NotNil(t, saved.Discount.Price)
	assert.True(t, saved.Discount.Price.Equal(decimal.RequireFromString("160.00")))

	_, ok := f.cache.prices[product.ID]
	assert.False(t, ok)
}

func TestUpdatePrice_NotOwner(t *testing.T) {
	f := newProductFixture()

	product := availableProduct("ssd 1tb", "100.00", 10)
	product.StoreID = f.storeID
	product = f.productRepo.add(product)

	_, err := f.uc.UpdatePrice(context.Background(), &UpdatePriceReq{
		ProductID: product.ID,
		Price:     decimal.RequireFromString("120.00"),
		ActorID:   uuid.New(),
	})

	assert.ErrorIs(t, err, e.ErrUnauthorized)
}

func TestDeleteProduct(t *testing.T) {
	f := newProductFixture()

	product := availableProduct("ssd 1tb", "99.99", 10)
	product.StoreID = f.storeID
	product.ImageURL = "images/ssd.jpeg"
	product = f.productRepo.add(product)
	f.cache.prices[product.ID] = decimal.RequireFromString("99.99")

	err := f.uc.DeleteProduct(context.Background(), product.ID, f.ownerID)
	require.NoError(t, err)

	_, err = f.productRepo.GetByID(context.Background(), product.ID)
	assert.ErrorIs(t, err, e.ErrProductNotFound)
	assert.Equal(t, []string{"images/ssd.jpeg"}, f.imageRepo.deleted)

	_, ok := f.cache.prices[product.ID]
	assert.False(t, ok)
}

func TestGetProduct_UsesCache(t *testing.T) {
	f := newProductFixture()

	product := f.productRepo.add(availableProduct("ssd 1tb", "99.99", 10))
	cached := decimal.RequireFromString("50.00")
	f.cache.prices[product.ID] = cached

	view, err := f.uc.GetProduct(context.Background(), product.ID)
	require.NoError(t, err)

	// Попадание в кэш имеет приоритет над пересчётом.
	assert.True(t, view.EffectivePrice.Equal(cached))
	assert.Equal(t, 1, f.cache.hits)
}
