package salesreport

// DailySales is one aggregation bucket: all orders sharing the same UTC
// calendar date (the first 10 characters of created_at_utc).
type DailySales struct {
	Day        string `json:"day"`
	OrderCount int64  `json:"order_count"`
	Revenue    int64  `json:"revenue"`
}
