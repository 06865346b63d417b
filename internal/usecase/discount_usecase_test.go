package usecase

import (
	"context"
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

type discountFixture struct {
	uc          *DiscountUC
	productRepo *mockProductRepo
	cache       *fakePriceCache
}

func newDiscountFixture(now time.Time) *discountFixture {
	productRepo := newMockProductRepo()
	cache := newFakePriceCache()

	uc := NewDiscountUC(productRepo, cache, logger.Nop())
	uc.now = func() time.Time { return now }

	return &discountFixture{uc: uc, productRepo: productRepo, cache: cache}
}

func day(value string) time.Time {
	t, err := time.Parse(time.DateOnly, value)
	if err != nil {
		panic(err)
	}
	return t
}

func dayPtr(value string) *time.Time {
	t := day(value)
	return &t
}

func percentageReq(value int64) *DiscountReq {
	return &DiscountReq{
		Type:        domain.DiscountPercentage,
		Value:       decimal.NewFromInt(value),
		Name:        "seasonal",
		MinQuantity: 1,
	}
}

func TestApplyDiscount_Validation(t *testing.T) {
	tests := []struct {
		name string
		req  *DiscountReq
		want error
	}{
		{
			name: "percentage over 100",
			req:  percentageReq(120),
			want: e.ErrInvalidDiscountValue,
		},
		{
			name: "percentage zero",
			req:  percentageReq(0),
			want: e.ErrInvalidDiscountValue,
		},
		{
			name: "fixed amount negative",
			req: &DiscountReq{
				Type:        domain.DiscountFixedAmount,
				Value:       decimal.NewFromInt(-5),
				MinQuantity: 1,
			},
			want: e.ErrInvalidDiscountValue,
		},
		{
			name: "fixed amount swallows whole price",
			req: &DiscountReq{
				Type:        domain.DiscountFixedAmount,
				Value:       decimal.NewFromInt(100),
				MinQuantity: 1,
			},
			want: e.ErrDiscountExceedsPrice,
		},
		{
			name: "unknown type",
			req: &DiscountReq{
				Type:        "BOGO",
				Value:       decimal.NewFromInt(10),
				MinQuantity: 1,
			},
			want: e.ErrInvalidDiscountType,
		},
		{
			name: "window inverted",
			req: &DiscountReq{
				Type:        domain.DiscountPercentage,
				Value:       decimal.NewFromInt(10),
				StartDate:   dayPtr("2026-03-10"),
				EndDate:     dayPtr("2026-03-01"),
				MinQuantity: 1,
			},
			want: e.ErrInvalidDiscountWindow,
		},
		{
			name: "min quantity below one",
			req: &DiscountReq{
				Type:        domain.DiscountPercentage,
				Value:       decimal.NewFromInt(10),
				MinQuantity: 0,
			},
			want: e.ErrInvalidMinQuantity,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newDiscountFixture(day("2026-03-05"))
			product := f.productRepo.add(availableProduct("lamp", "100.00", 5))

			_, err := f.uc.ApplyDiscount(context.Background(), product.ID, tt.req)

			assert.ErrorIs(t, err, tt.want)

			stored, getErr := f.productRepo.GetByID(context.Background(), product.ID)
			require.NoError(t, getErr)
			assert.Nil(t, stored.Discount)
		})
	}
}

func TestApplyDiscount_ActiveInsideWindow(t *testing.T) {
	f := newDiscountFixture(day("2026-03-05"))
	product := f.productRepo.add(availableProduct("lamp", "100.00", 5))
	f.cache.prices[product.ID] = decimal.RequireFromString("100.00")

	req := percentageReq(20)
	req.StartDate = dayPtr("2026-03-01")
	req.EndDate = dayPtr("2026-03-31")

	saved, err := f.uc.ApplyDiscount(context.Background(), product.ID, req)
	require.NoError(t, err)

	require.NotNil(t, saved.Discount)
	assert.True(t, saved.Discount.Active)
	require.NotNil(t, saved.Discount.Price)
	assert.True(t, saved.Discount.Price.Equal(decimal.RequireFromString("80.00")))

	// Кэш цены сброшен мутацией.
	_, ok := f.cache.prices[product.ID]
	assert.False(t, ok)
}

func TestApplyDiscount_FutureWindowStaysInactive(t *testing.T) {
	f := newDiscountFixture(day("2026-03-05"))
	product := f.productRepo.add(availableProduct("lamp", "100.00", 5))

	req := percentageReq(20)
	req.StartDate = dayPtr("2026-04-01")

	saved, err := f.uc.ApplyDiscount(context.Background(), product.ID, req)
	require.NoError(t, err)

	require.NotNil(t, saved.Discount)
	assert.False(t, saved.Discount.Active)
}

func TestApplyDiscount_ExplicitPriceOverridesFormula(t *testing.T) {
	f := newDiscountFixture(day("2026-03-05"))
	product := f.productRepo.add(availableProduct("lamp", "100.00", 5))

	override := decimal.RequireFromString("75.50")
	req := percentageReq(20)
	req.DiscountedPrice = &override

	saved, err := f.uc.ApplyDiscount(context.Background(), product.ID, req)
	require.NoError(t, err)

	require.NotNil(t, saved.Discount)
	require.NotNil(t, saved.Discount.Price)
	assert.True(t, saved.Discount.Price.Equal(override))
}

func TestApplyDiscount_ProductMissing(t *testing.T) {
	f := newDiscountFixture(day("2026-03-05"))

	_, err := f.uc.ApplyDiscount(context.Background(), uuid.New(), percentageReq(20))

	assert.ErrorIs(t, err, e.ErrProductNotFound)
}

func TestRemoveDiscount(t *testing.T) {
	f := newDiscountFixture(day("2026-03-05"))
	product := availableProduct("lamp", "100.00", 5)
	product.Discount = &domain.Discount{
		Type:        domain.DiscountPercentage,
		Value:       decimal.NewFromInt(20),
		MinQuantity: 1,
		Active:      true,
	}
	product = f.productRepo.add(product)
	f.cache.prices[product.ID] = decimal.RequireFromString("80.00")

	saved, err := f.uc.RemoveDiscount(context.Background(), product.ID)
	require.NoError(t, err)

	assert.Nil(t, saved.Discount)
	_, ok := f.cache.prices[product.ID]
	assert.False(t, ok)
}

func TestBulkApplyDiscount_PartialFailure(t *testing.T) {
	f := newDiscountFixture(day("2026-03-05"))
	first := f.productRepo.add(availableProduct("lamp", "100.00", 5))
	missing := uuid.New()
	second := f.productRepo.add(availableProduct("chair", "40.00", 2))

	results := f.uc.BulkApplyDiscount(context.Background(), []uuid.UUID{first.ID, missing, second.ID}, percentageReq(10))

	require.Len(t, results, 3)
	assert.NoError(t, results[0].Err)
	assert.ErrorIs(t, results[1].Err, e.ErrProductNotFound)
	assert.NoError(t, results[2].Err)

	stored, err := f.productRepo.GetByID(context.Background(), second.ID)
	require.NoError(t, err)
	assert.NotNil(t, stored.Discount)
}

func TestSweepDiscountStatuses(t *testing.T) {
	f := newDiscountFixture(day("2026-03-05"))
	ctx := context.Background()

	pending := availableProduct("lamp", "100.00", 5)
	pending.Discount = &domain.Discount{
		Type:        domain.DiscountPercentage,
		Value:       decimal.NewFromInt(20),
		StartDate:   dayPtr("2026-03-01"),
		EndDate:     dayPtr("2026-03-31"),
		MinQuantity: 1,
	}
	pending = f.productRepo.add(pending)

	expired := availableProduct("chair", "40.00", 2)
	expired.Discount = &domain.Discount{
		Type:        domain.DiscountFixedAmount,
		Value:       decimal.NewFromInt(5),
		EndDate:     dayPtr("2026-03-01"),
		MinQuantity: 1,
		Active:      true,
	}
	expired = f.productRepo.add(expired)

	notYet := availableProduct("desk", "120.00", 1)
	notYet.Discount = &domain.Discount{
		Type:        domain.DiscountPercentage,
		Value:       decimal.NewFromInt(15),
		StartDate:   dayPtr("2026-04-01"),
		MinQuantity: 1,
	}
	notYet = f.productRepo.add(notYet)

	f.cache.prices[pending.ID] = decimal.RequireFromString("100.00")
	f.cache.prices[expired.ID] = decimal.RequireFromString("35.00")

	res, err := f.uc.SweepDiscountStatuses(ctx, day("2026-03-05"))
	require.NoError(t, err)

	assert.Equal(t, 1, res.Activated)
	assert.Equal(t, 1, res.Deactivated)

	activated, _ := f.productRepo.GetByID(ctx, pending.ID)
	assert.True(t, activated.Discount.Active)
	deactivated, _ := f.productRepo.GetByID(ctx, expired.ID)
	assert.False(t, deactivated.Discount.Active)
	untouched, _ := f.productRepo.GetByID(ctx, notYet.ID)
	assert.False(t, untouched.Discount.Active)

	// Кэш перевёрнутых товаров сброшен.
	_, ok := f.cache.prices[pending.ID]
	assert.False(t, ok)
	_, ok = f.cache.prices[expired.ID]
	assert.False(t, ok)

	// Повторный проход в тот же день ничего не переворачивает.
	again, err := f.uc.SweepDiscountStatuses(ctx, day("2026-03-05"))
	require.NoError(t, err)
	assert.Equal(t, 0, again.Activated)
	assert.Equal(t, 0, again.Deactivated)
}
