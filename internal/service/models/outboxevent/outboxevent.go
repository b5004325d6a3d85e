package outboxevent

import (
	"time"
)

// Event is a pending order-accepted notification waiting to be published
// to RabbitMQ. Rows are written in the same transaction as the order they
// describe and deleted after a successful publish.
type Event struct {
	ID           int64
	QueueName    string
	ExchangeName string
	RoutingKey   string
	Payload      []byte
	ContentType  string
	RetryCount   int
	MaxRetries   int
	LastError    string
	CreatedAt    time.Time
	UpdatedAt    time.Time
	NextRetryAt  time.Time
}
