package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderCreatedEvent - событие о новом заказе, уходит в Kafka через outbox.
type OrderCreatedEvent struct {
	Topic     string          `json:"-"`
	OrderID   uuid.UUID       `json:"order_id"`
	Number    string          `json:"number"`
	PackageID string          `json:"package_id"`
	Amount    decimal.Decimal `json:"amount"`
	CreatedAt time.Time       `json:"created_at"`
}

// OutboxRecord - неотправленная запись outbox.
type OutboxRecord struct {
	ID      int64
	EventID uuid.UUID
	Topic   string
	Key     string
	Payload []byte
}
