package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func datePtr(y int, m time.Month, d int) *time.Time {
	t := date(y, m, d)
	return &t
}

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestDiscountedPrice(t *testing.T) {
	tests := []struct {
		name  string
		price string
		kind  DiscountType
		value string
		want  string
	}{
		{"percentage", "100", DiscountPercentage, "20", "80"},
		{"percentage rounds to cents", "99.99", DiscountPercentage, "33", "66.99"},
		{"fixed amount", "100", DiscountFixedAmount, "15.50", "84.50"},
		{"fixed amount clamps at zero", "10", DiscountFixedAmount, "25", "0"},
		{"full percentage", "59.99", DiscountPercentage, "100", "0"},
		{"unknown type returns base", "42", DiscountType("MYSTERY"), "10", "42"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DiscountedPrice(dec(tt.price), tt.kind, dec(tt.value))
			assert.True(t, dec(tt.want).Equal(got), "want %s, got %s", tt.want, got)
		})
	}
}

func TestEffectivePrice(t *testing.T) {
	today := date(2025, time.June, 15)

	t.Run("no discount", func(t *testing.T) {
		p := &Product{Price: dec("100")}
		assert.True(t, dec("100").Equal(EffectivePrice(p, today)))
	})

	t.Run("inactive discount", func(t *testing.T) {
		p := &Product{
			Price:    dec("100"),
			Discount: &Discount{Type: DiscountPercentage, Value: dec("20"), Active: false},
		}
		assert.True(t, dec("100").Equal(EffectivePrice(p, today)))
	})

	t.Run("active discount inside window", func(t *testing.T) {
		p := &Product{
			Price: dec("100"),
			Discount: &Discount{
				Type:      DiscountPercentage,
				Value:     dec("20"),
				StartDate: datePtr(2025, time.June, 1),
				EndDate:   datePtr(2025, time.June, 30),
				Active:    true,
			},
		}
		assert.True(t, dec("80").Equal(EffectivePrice(p, today)))
	})

	t.Run("stored discount price wins over formula", func(t *testing.T) {
		stored := dec("75.55")
		p := &Product{
			Price:    dec("100"),
			Discount: &Discount{Type: DiscountPercentage, Value: dec("20"), Price: &stored, Active: true},
		}
		assert.True(t, stored.Equal(EffectivePrice(p, today)))
	})

	t.Run("stale active flag outside window falls back to base", func(t *testing.T) {
		p := &Product{
			Price: dec("100"),
			Discount: &Discount{
				Type:    DiscountFixedAmount,
				Value:   dec("30"),
				EndDate: datePtr(2025, time.June, 10),
				Active:  true,
			},
		}
		assert.True(t, dec("100").Equal(EffectivePrice(p, today)))
		// Флаг не трогаем: его перевернёт календарный проход.
		assert.True(t, p.Discount.Active)
	})

	t.Run("window bounds are inclusive", func(t *testing.T) {
		p := &Product{
			Price: dec("100"),
			Discount: &Discount{
				Type:      DiscountFixedAmount,
				Value:     dec("40"),
				StartDate: datePtr(2025, time.June, 15),
				EndDate:   datePtr(2025, time.June, 15),
				Active:    true,
			},
		}
		assert.True(t, dec("60").Equal(EffectivePrice(p, today)))
	})

	t.Run("open ended window", func(t *testing.T) {
		p := &Product{
			Price:    dec("100"),
			Discount: &Discount{Type: DiscountPercentage, Value: dec("10"), Active: true},
		}
		assert.True(t, dec("90").Equal(EffectivePrice(p, today)))
	})
}

func TestWindowContains_TimeOfDayIgnored(t *testing.T) {
	d := &Discount{
		StartDate: datePtr(2025, time.June, 15),
		EndDate:   datePtr(2025, time.June, 15),
	}

	lateEvening := time.Date(2025, time.June, 15, 23, 59, 59, 0, time.UTC)
	assert.True(t, d.WindowContains(lateEvening))

	dayBefore := time.Date(2025, time.June, 14, 23, 59, 59, 0, time.UTC)
	assert.False(t, d.WindowContains(dayBefore))
}
