package validate

import (
	"fmt"
	"strings"

	"github.com/kiosklabs/kiosk-sync/internal/service/models/order"
)

type multiErr []error

func (m multiErr) Error() string {
	var b strings.Builder
	for i, e := range m {
		if i > 0 {
			b.WriteString("; ")
		}
		b.WriteString(e.Error())
	}

	return b.String()
}

func (m multiErr) OrNil() error {
	if len(m) == 0 {
		return nil
	}

	return m
}

// ValidateOrder checks one incoming order before it reaches the store.
// Totals are accepted at face value: line_total is not checked against
// unit_price*qty, only against being negative.
func ValidateOrder(o order.Order) error {
	var errs multiErr

	if strings.TrimSpace(o.OrderID) == "" {
		errs = append(errs, fmt.Errorf("order_id: required"))
	}
	if strings.TrimSpace(o.CreatedAtUTC) == "" {
		errs = append(errs, fmt.Errorf("created_at_utc: required"))
	}
	if o.Total < 0 {
		errs = append(errs, fmt.Errorf("total: must be >= 0"))
	}

	for i, item := range o.Items {
		if strings.TrimSpace(item.ItemID) == "" {
			errs = append(errs, fmt.Errorf("items[%d].item_id: required", i))
		}
		if item.UnitPrice < 0 || item.LineTotal < 0 {
			errs = append(errs, fmt.Errorf("items[%d].unit_price/line_total: must be >= 0", i))
		}
		if item.Qty <= 0 {
			errs = append(errs, fmt.Errorf("items[%d].qty: must be > 0", i))
		}
	}

	return errs.OrNil()
}
