package outboxevent

// Routing for order-accepted events. The queue is declared by the worker on
// startup; downstream consumers bind to the same name.
const (
	OrderAcceptedQueue      = "kiosk.orders.accepted"
	OrderAcceptedRoutingKey = "kiosk.orders.accepted"
	ContentTypeJSON         = "application/json"
)
