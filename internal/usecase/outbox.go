package usecase

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type OutboxStatus string

const (
	Pending    OutboxStatus = "PENDING"
	Processing OutboxStatus = "PROCESSING"
	Processed  OutboxStatus = "PROCESSED"
)

type OutboxEventType string

const StockChanged OutboxEventType = "stock.changed"

// OutboxEvent — запись транзакционного outbox. Создаётся в одной транзакции
// с мутацией остатка; доставка в Kafka — at-least-once, отдельным воркером.
type OutboxEvent struct {
	ID          int64
	EventID     string
	EventType   OutboxEventType
	ProductID   uuid.UUID
	Payload     []byte
	Status      OutboxStatus
	CreatedAt   time.Time
	ProcessedAt *time.Time
}

// StockChangedPayload — контракт события изменения остатка для витринных клиентов.
type StockChangedPayload struct {
	EventID    string    `json:"event_id"`
	EventType  string    `json:"event_type"`
	ProductID  uuid.UUID `json:"product_id"`
	Quantity   int32     `json:"quantity"`
	OccurredAt time.Time `json:"occurred_at"`
}

type WriteRawMessageReq struct {
	ProductID uuid.UUID
	Payload   []byte
}

func NewWriteRawMessageReq(productID uuid.UUID, payload []byte) *WriteRawMessageReq {
	return &WriteRawMessageReq{
		ProductID: productID,
		Payload:   payload,
	}
}

// NewStockChangedEvent собирает outbox-событие об изменении остатка товара.
func NewStockChangedEvent(productID uuid.UUID, quantity int32, occurredAt time.Time) (*OutboxEvent, error) {
	eventID := uuid.NewString()

	payload, err := json.Marshal(StockChangedPayload{
		EventID:    eventID,
		EventType:  string(StockChanged),
		ProductID:  productID,
		Quantity:   quantity,
		OccurredAt: occurredAt.UTC(),
	})
	if err != nil {
		return nil, err
	}

	return &OutboxEvent{
		EventID:   eventID,
		EventType: StockChanged,
		ProductID: productID,
		Payload:   payload,
		Status:    Pending,
		CreatedAt: occurredAt.UTC(),
	}, nil
}
