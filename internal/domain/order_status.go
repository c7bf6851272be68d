package domain

import "strings"

// OrderStatus is the closed vocabulary of order lifecycle states the
// templater knows how to phrase. Unknown values fall through to
// StatusUnrecognized and are echoed verbatim in the message body.
type OrderStatus string

const (
	StatusPaid                 OrderStatus = "paid"
	StatusPendingPayment       OrderStatus = "pending_payment"
	StatusShipped              OrderStatus = "shipped"
	StatusForInstallation      OrderStatus = "for_installation"
	StatusAwaitingInstallation OrderStatus = "awaiting_installation"
	StatusAwaitingInstallSp    OrderStatus = "awaiting installation"
	StatusToReceive            OrderStatus = "to_receive"
	StatusProcessing           OrderStatus = "processing"
	StatusCompleted            OrderStatus = "completed"
	StatusDelivered            OrderStatus = "delivered"

	StatusUnrecognized OrderStatus = ""
)

var knownStatuses = map[OrderStatus]struct{}{
	StatusPaid:                 {},
	StatusPendingPayment:       {},
	StatusShipped:              {},
	StatusForInstallation:      {},
	StatusAwaitingInstallation: {},
	StatusAwaitingInstallSp:    {},
	StatusToReceive:            {},
	StatusProcessing:           {},
	StatusCompleted:            {},
	StatusDelivered:            {},
}

// ParseOrderStatus matches raw against the known vocabulary,
// case-insensitively. Unknown values return StatusUnrecognized; the
// caller keeps the raw string for verbatim echo.
func ParseOrderStatus(raw string) OrderStatus {
	s := OrderStatus(strings.ToLower(raw))
	if _, ok := knownStatuses[s]; ok {
		return s
	}
	return StatusUnrecognized
}
