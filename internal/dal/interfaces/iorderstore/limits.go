package iorderstore

// Result-set caps shared by both backend implementations. Caller-supplied
// limits are the only bound on query size, so they are clamped rather than
// trusted.
const (
	DefaultListLimit = 500
	MaxListLimit     = 5000

	DefaultWindowDays = 14
	MaxWindowDays     = 365
)

// ClampLimit normalizes a ListOrders limit: defaults when unset, hard caps
// when oversized.
func ClampLimit(limit int) int {
	if limit <= 0 {
		return DefaultListLimit
	}
	if limit > MaxListLimit {
		return MaxListLimit
	}

	return limit
}

// ClampWindow normalizes a SalesByDay window. The requested window is the
// sole bound: there is deliberately no minimum beyond one day.
func ClampWindow(windowDays int) int {
	if windowDays <= 0 {
		return DefaultWindowDays
	}
	if windowDays > MaxWindowDays {
		return MaxWindowDays
	}

	return windowDays
}
