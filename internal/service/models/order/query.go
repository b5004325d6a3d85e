package order

// QueryOrdersModel represents filter parameters for listing orders.
//
// DatePrefix matches orders whose created_at_utc starts with the given
// prefix, so "2024-05-01" selects a calendar day without full timestamp
// matching. KioskID is an exact match. Both are optional and combine with
// AND. Limit is a hard cap on returned rows.
type QueryOrdersModel struct {
	DatePrefix string `json:"date_prefix,omitempty"`
	KioskID    string `json:"kiosk_id,omitempty"`
	Limit      int    `json:"limit,omitempty"`
}
