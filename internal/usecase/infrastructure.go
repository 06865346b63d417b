package usecase

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PriceCache — кэш эффективных цен по товару. Записи рекомендательные:
// их всегда безопасно сбросить и пересчитать.
type PriceCache interface {
	GetPrice(ctx context.Context, productID uuid.UUID) (decimal.Decimal, bool, error)
	SetPrice(ctx context.Context, productID uuid.UUID, price decimal.Decimal) error
	InvalidatePrices(ctx context.Context, productIDs []uuid.UUID) error
}

type MessageProducer interface {
	WriteRawMessage(ctx context.Context, req *WriteRawMessageReq) error
}
