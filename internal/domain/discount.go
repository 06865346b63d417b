package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// DiscountType определяет способ вычисления скидки.
type DiscountType string

const (
	DiscountPercentage  DiscountType = "PERCENTAGE"
	DiscountFixedAmount DiscountType = "FIXED_AMOUNT"
)

// Discount описывает скидочное состояние товара.
// Все поля опциональны как группа: у товара либо есть скидка целиком, либо нет.
type Discount struct {
	Type        DiscountType
	Value       decimal.Decimal
	Price       *decimal.Decimal // предвычисленная цена со скидкой, имеет приоритет над формулой
	StartDate   *time.Time
	EndDate     *time.Time
	Name        string
	MinQuantity int32
	Active      bool
}

// WindowContains сообщает, входит ли дата в окно действия скидки.
// Границы включительные, отсутствующая граница — открытый конец.
func (d *Discount) WindowContains(today time.Time) bool {
	today = DateOnly(today)
	if d.StartDate != nil && today.Before(DateOnly(*d.StartDate)) {
		return false
	}
	if d.EndDate != nil && today.After(DateOnly(*d.EndDate)) {
		return false
	}
	return true
}

// DateOnly отбрасывает время, оставляя дату в UTC.
// Окна скидок сравниваются по календарным датам, а не по моментам времени.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
