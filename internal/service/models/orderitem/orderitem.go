package orderitem

// OrderItem is one line of a kiosk order, snapshotted at time of sale.
// Prices are integer minor currency units. LineTotal is taken from the
// kiosk as-is and is not recomputed from UnitPrice*Qty.
type OrderItem struct {
	ItemID    string `json:"item_id"`
	Name      string `json:"name"`
	UnitPrice int64  `json:"unit_price"`
	Qty       int64  `json:"qty"`
	LineTotal int64  `json:"line_total"`
}
