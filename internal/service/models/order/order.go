package order

import (
	"github.com/kiosklabs/kiosk-sync/internal/service/models/orderitem"
)

// Order represents one completed kiosk sale transaction.
//
// OrderID is generated by the kiosk and is the dedup key: the store keeps
// at most one row per OrderID no matter how many times a batch is resent.
// CreatedAtUTC is the time of sale as reported by the kiosk; ReceivedAtUTC
// is assigned by the server at ingestion. Both are ISO-8601 UTC strings.
type Order struct {
	OrderID       string                `json:"order_id"`
	KioskID       string                `json:"kiosk_id"`
	CreatedAtUTC  string                `json:"created_at_utc"`
	Total         int64                 `json:"total"`
	PaymentMethod string                `json:"payment_method"`
	PaymentStatus string                `json:"payment_status"`
	ReceivedAtUTC string                `json:"received_at_utc"`
	Items         []orderitem.OrderItem `json:"items"`
}
