package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// EffectivePrice вычисляет действующую цену товара на указанную дату.
// Чистая функция: не обращается к хранилищу и не меняет состояние товара,
// в том числе флаг активности при невалидном окне.
func EffectivePrice(p *Product, today time.Time) decimal.Decimal {
	d := p.Discount
	if d == nil || !d.Active {
		return p.Price
	}

	if !d.WindowContains(today) {
		return p.Price
	}

	if d.Price != nil {
		return *d.Price
	}

	return DiscountedPrice(p.Price, d.Type, d.Value)
}

// DiscountedPrice применяет формулу скидки к базовой цене.
// PERCENTAGE: price − price × value/100; FIXED_AMOUNT: price − value.
// Результат не опускается ниже нуля и округляется до двух знаков.
func DiscountedPrice(price decimal.Decimal, kind DiscountType, value decimal.Decimal) decimal.Decimal {
	var result decimal.Decimal
	switch kind {
	case DiscountPercentage:
		result = price.Sub(price.Mul(value).Div(hundred))
	case DiscountFixedAmount:
		result = price.Sub(value)
	default:
		return price
	}

	if result.IsNegative() {
		return decimal.Zero
	}

	return result.Round(2)
}
