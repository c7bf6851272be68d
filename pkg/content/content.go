// Package content renders notification titles, bodies and data
// payloads from an already-classified change event. Pure over resolved
// data: no I/O, malformed fields fall back to defaults instead of
// failing.
package content

import (
	"fmt"
	"strings"

	"notification-service/internal/domain"
)

// Content is what gets persisted per recipient and pushed once per
// event. Data rides along in the push payload for client-side routing.
type Content struct {
	Title string
	Body  string
	Data  map[string]string
}

// Render produces the notification content for one event. senderName is
// only consulted for chat events and must already be resolved by the
// caller (empty means "unknown sender").
func Render(kind domain.EventKind, ev domain.ChangeEvent, senderName string) Content {
	switch kind {
	case domain.KindNewQuotation:
		return renderNewQuotation(ev)
	case domain.KindNewOrder:
		return renderNewOrder(ev)
	case domain.KindChat:
		return renderChat(ev, senderName)
	case domain.KindOrderStatusUpdate:
		return renderOrderStatus(ev)
	case domain.KindQuotationUpdated:
		return renderQuotationUpdated(ev)
	}
	return Content{}
}

func renderNewQuotation(ev domain.ChangeEvent) Content {
	customerName := ev.After.Str("customerName")
	if customerName == "" {
		customerName = "Customer"
	}
	productName := ev.After.Str("productName")
	if productName == "" {
		productName = "product"
	}

	return Content{
		Title: "New Quotation Request",
		Body:  fmt.Sprintf("New quotation request from %s for %s", customerName, productName),
		Data: map[string]string{
			"type":        string(domain.KindNewQuotation),
			"quotationId": ev.EntityID,
		},
	}
}

func renderNewOrder(ev domain.ChangeEvent) Content {
	customerName := ev.After.Str("customerName")
	if customerName == "" {
		customerName = ev.After.Str("fullName")
	}
	if customerName == "" {
		customerName = "New order"
	}
	total, _ := ev.After.Num("totalPrice")

	return Content{
		Title: "New Order Placed",
		Body:  fmt.Sprintf("Order #%s from %s - %s", shortOrderID(ev.EntityID), customerName, peso(total)),
		Data: map[string]string{
			"type":    string(domain.KindNewOrder),
			"orderId": ev.EntityID,
		},
	}
}

func renderChat(ev domain.ChangeEvent, senderName string) Content {
	title := senderName
	if title == "" {
		title = "New message"
	}

	body := ev.After.Str("message")
	if body == "" {
		body = ev.After.Str("text")
	}
	if ev.After.Str("type") == "image" {
		body = "[Photo]"
	}
	if body == "" {
		body = "New message"
	}

	return Content{
		Title: title,
		Body:  body,
		Data: map[string]string{
			"type":       string(domain.KindChat),
			"chatRoomId": ev.After.Str("chatRoomId"),
			"messageId":  ev.EntityID,
		},
	}
}

func renderOrderStatus(ev domain.ChangeEvent) Content {
	rawStatus := ev.After.Str("status")
	product := orderProductName(ev.After)

	var title, body string
	switch domain.ParseOrderStatus(rawStatus) {
	case domain.StatusPaid, domain.StatusPendingPayment:
		title = "Payment Received"
		body = fmt.Sprintf("Your %s payment has been received. We are preparing your order.", product)
	case domain.StatusShipped, domain.StatusForInstallation:
		title = "Order Shipped"
		body = fmt.Sprintf("Your %s has been shipped. Track your delivery.", product)
	case domain.StatusAwaitingInstallation, domain.StatusAwaitingInstallSp, domain.StatusToReceive:
		title = "Order Received"
		body = fmt.Sprintf("Your %s has been received. Installation will be scheduled soon.", product)
	case domain.StatusProcessing:
		title = "Order Status Updated"
		body = fmt.Sprintf("Your %s is now processing.", product)
	case domain.StatusCompleted:
		title = "Order Completed"
		body = fmt.Sprintf("Your %s has been completed. Thank you for your purchase!", product)
	case domain.StatusDelivered:
		title = "Order Delivered"
		body = fmt.Sprintf("Your %s has been delivered.", product)
	default:
		// Unrecognized status: echo it verbatim, not lower-cased.
		title = "Order Status Updated"
		body = fmt.Sprintf("Your %s is now %s.", product, rawStatus)
	}

	return Content{
		Title: title,
		Body:  body,
		Data: map[string]string{
			"type":    string(domain.KindOrderStatusUpdate),
			"orderId": ev.EntityID,
			"status":  rawStatus,
		},
	}
}

func renderQuotationUpdated(ev domain.ChangeEvent) Content {
	product := ev.After.Str("productName")
	if product == "" {
		product = "product"
	}
	price, _ := ev.After.Num("adminTotalPrice")

	return Content{
		Title: "Quotation Ready",
		Body:  fmt.Sprintf("Your quotation for %s is %s", product, peso(price)),
		Data: map[string]string{
			"type":        string(domain.KindQuotationUpdated),
			"quotationId": ev.EntityID,
		},
	}
}

// orderProductName resolves the product named on the order, then the
// first line item, then the literal "order".
func orderProductName(after domain.Snapshot) string {
	if p := after.Str("productName"); p != "" {
		return p
	}
	if items := after.Items("items"); len(items) > 0 {
		if p := items[0].Str("productName"); p != "" {
			return p
		}
	}
	return "order"
}

func shortOrderID(id string) string {
	if len(id) > 8 {
		id = id[:8]
	}
	return strings.ToUpper(id)
}

func peso(amount float64) string {
	return fmt.Sprintf("₱%.2f", amount)
}
