package domain

// EntityType identifies which record collection a change came from.
type EntityType string

const (
	EntityQuotation   EntityType = "quotation"
	EntityChatMessage EntityType = "chat_message"
	EntityOrder       EntityType = "order"
)

// EventKind categorizes a notification-worthy change. It is also the
// value stored in Notification.Type.
type EventKind string

const (
	KindNewQuotation      EventKind = "new_quotation"
	KindNewOrder          EventKind = "new_order"
	KindOrderStatusUpdate EventKind = "order_status_update"
	KindQuotationUpdated  EventKind = "quotation_updated"
	KindChat              EventKind = "chat"
)

// Snapshot is a point-in-time view of a record's fields, as decoded
// from the change feed. Values carry JSON types (string, float64, bool,
// []any, map[string]any).
type Snapshot map[string]any

// Str returns the string value of a field, or "" if absent or not a string.
func (s Snapshot) Str(key string) string {
	v, _ := s[key].(string)
	return v
}

// Num returns the numeric value of a field. ok is false when the field
// is absent, null, or not a number.
func (s Snapshot) Num(key string) (float64, bool) {
	switch v := s[key].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	}
	return 0, false
}

// Items returns an array-of-objects field, e.g. order line items.
func (s Snapshot) Items(key string) []Snapshot {
	raw, _ := s[key].([]any)
	if len(raw) == 0 {
		return nil
	}
	out := make([]Snapshot, 0, len(raw))
	for _, it := range raw {
		if m, ok := it.(map[string]any); ok {
			out = append(out, Snapshot(m))
		}
	}
	return out
}

// ChangeEvent is one record change delivered by the change feed.
// Before is nil for creation events. Consumed once, never mutated.
type ChangeEvent struct {
	EntityType EntityType
	EntityID   string
	Before     Snapshot
	After      Snapshot
}

// IsCreate reports whether this event is a record creation.
func (e ChangeEvent) IsCreate() bool {
	return e.Before == nil
}
