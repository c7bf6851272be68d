package usecase

import (
	"notification-service/internal/domain"
)

// Classify decides whether a change event warrants a notification and,
// if so, which kind. Pure: absent fields mean "skip", never a fault.
func Classify(ev domain.ChangeEvent) (domain.EventKind, bool) {
	if ev.IsCreate() {
		switch ev.EntityType {
		case domain.EntityQuotation:
			return domain.KindNewQuotation, true
		case domain.EntityOrder:
			return domain.KindNewOrder, true
		case domain.EntityChatMessage:
			return domain.KindChat, true
		}
		return "", false
	}

	switch ev.EntityType {
	case domain.EntityOrder:
		// Raw comparison: the status vocabulary is already normalized
		// upstream, only the templater applies casing.
		if ev.Before.Str("status") != ev.After.Str("status") {
			return domain.KindOrderStatusUpdate, true
		}

	case domain.EntityQuotation:
		newPrice, ok := ev.After.Num("adminTotalPrice")
		if !ok || newPrice == 0 {
			// Price cleared or never set: nothing to announce.
			return "", false
		}
		if oldPrice, had := ev.Before.Num("adminTotalPrice"); had && oldPrice == newPrice {
			return "", false
		}
		return domain.KindQuotationUpdated, true
	}

	// Chat updates and unrelated field edits are invisible to this
	// pipeline.
	return "", false
}

// IsBroadcast reports whether kind goes to every admin and staff user
// rather than a single addressed recipient.
func IsBroadcast(kind domain.EventKind) bool {
	return kind == domain.KindNewQuotation || kind == domain.KindNewOrder
}
