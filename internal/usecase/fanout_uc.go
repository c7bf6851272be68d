package usecase

import (
	"context"
	"errors"
	"fmt"
	"log"

	"notification-service/internal/domain"
	"notification-service/internal/repository"
	"notification-service/pkg/content"
	"notification-service/pkg/notifier/ws"
	"notification-service/pkg/push"
	xerrors "notification-service/pkg/xerrors"
)

// FanoutUsecase turns one change event into per-recipient in-app
// records plus a single batched push. All collaborators are injected so
// tests swap in fakes.
type FanoutUsecase struct {
	users   repository.UserRepository
	records repository.NotificationRepository
	push    push.Sender
	ws      *ws.Manager // optional realtime in-app channel
}

func NewFanoutUsecase(
	users repository.UserRepository,
	records repository.NotificationRepository,
	sender push.Sender,
	wsManager *ws.Manager,
) *FanoutUsecase {
	return &FanoutUsecase{
		users:   users,
		records: records,
		push:    sender,
		ws:      wsManager,
	}
}

// DispatchResult summarizes one event's fan-out for logging and tests.
type DispatchResult struct {
	RecordsWritten int
	PushSent       int
	PushFailed     int
}

// Process runs the full pipeline for one event. The returned error is
// non-nil only when the event should be redelivered: a faulted
// quotation-creation flow. Every other flow swallows its faults so the
// trigger layer never retries them.
func (uc *FanoutUsecase) Process(ctx context.Context, ev domain.ChangeEvent) error {
	kind, ok := Classify(ev)
	if !ok {
		log.Printf("[fanout] skip %s %s: not notification-worthy", ev.EntityType, ev.EntityID)
		return nil
	}

	res, err := uc.run(ctx, ev, kind)
	if err != nil {
		log.Printf("⚠️ [fanout] %s for %s %s failed: %v", kind, ev.EntityType, ev.EntityID, err)
		if kind == domain.KindNewQuotation {
			return err
		}
		return nil
	}

	if res != nil {
		log.Printf("✅ [fanout] %s for %s: records=%d pushSent=%d pushFailed=%d",
			kind, ev.EntityID, res.RecordsWritten, res.PushSent, res.PushFailed)
	}
	return nil
}

func (uc *FanoutUsecase) run(ctx context.Context, ev domain.ChangeEvent, kind domain.EventKind) (*DispatchResult, error) {
	recipients, err := uc.resolveAudience(ctx, ev, kind)
	if err != nil {
		return nil, err
	}
	if len(recipients) == 0 {
		log.Printf("[fanout] skip %s %s: empty audience", kind, ev.EntityID)
		return nil, nil
	}

	senderName := ""
	if kind == domain.KindChat {
		senderName = uc.resolveSenderName(ctx, ev.After.Str("senderId"))
	}
	c := content.Render(kind, ev, senderName)

	return uc.dispatch(ctx, ev, kind, recipients, c)
}

// resolveAudience computes the recipient profiles for one event:
// every admin and staff user for broadcast kinds, otherwise the single
// user referenced by the changed record. A missing foreign key or a
// missing profile yields an empty audience, not a fault.
func (uc *FanoutUsecase) resolveAudience(ctx context.Context, ev domain.ChangeEvent, kind domain.EventKind) ([]*domain.UserProfile, error) {
	if IsBroadcast(kind) {
		return uc.broadcastAudience(ctx)
	}

	var recipientID string
	switch kind {
	case domain.KindChat:
		recipientID = ev.After.Str("receiverId")
	case domain.KindOrderStatusUpdate:
		recipientID = ev.After.Str("customerId")
	case domain.KindQuotationUpdated:
		recipientID = ev.After.Str("customerId")
		if recipientID == "" {
			recipientID = ev.After.Str("userId")
		}
	}
	if recipientID == "" {
		log.Printf("[fanout] no recipient id on %s %s", ev.EntityType, ev.EntityID)
		return nil, nil
	}

	u, err := uc.users.GetByID(ctx, recipientID)
	if err != nil {
		if errors.Is(err, xerrors.ErrNotFound) {
			log.Printf("[fanout] recipient %s not found", recipientID)
			return nil, nil
		}
		return nil, fmt.Errorf("lookup recipient %s: %w", recipientID, err)
	}
	return []*domain.UserProfile{u}, nil
}

// broadcastAudience unions the admin and staff profiles. The two
// queries are independent reads and run concurrently; duplicates cannot
// occur because role is single-valued.
func (uc *FanoutUsecase) broadcastAudience(ctx context.Context) ([]*domain.UserProfile, error) {
	type roleResult struct {
		users []*domain.UserProfile
		err   error
	}

	roles := []domain.Role{domain.RoleAdmin, domain.RoleStaff}
	ch := make(chan roleResult, len(roles))
	for _, r := range roles {
		go func(r domain.Role) {
			us, err := uc.users.ListByRole(ctx, r)
			ch <- roleResult{us, err}
		}(r)
	}

	var audience []*domain.UserProfile
	for range roles {
		res := <-ch
		if res.err != nil {
			return nil, fmt.Errorf("query broadcast audience: %w", res.err)
		}
		audience = append(audience, res.users...)
	}
	return audience, nil
}

// resolveSenderName looks up the chat sender's display name. Failure
// falls back to the title default; the chat still goes out.
func (uc *FanoutUsecase) resolveSenderName(ctx context.Context, senderID string) string {
	if senderID == "" {
		return ""
	}
	u, err := uc.users.GetByID(ctx, senderID)
	if err != nil {
		if !errors.Is(err, xerrors.ErrNotFound) {
			log.Printf("⚠️ [fanout] sender %s lookup failed: %v", senderID, err)
		}
		return ""
	}
	return u.DisplayName()
}

// dispatch is the two-phase delivery step: persist one record per
// recipient atomically, then issue a single batched push with whatever
// tokens the audience has. Push failure never unwinds the records.
func (uc *FanoutUsecase) dispatch(ctx context.Context, ev domain.ChangeEvent, kind domain.EventKind, recipients []*domain.UserProfile, c content.Content) (*DispatchResult, error) {
	records := make([]*domain.Notification, 0, len(recipients))
	for _, u := range recipients {
		records = append(records, &domain.Notification{
			ID:              domain.NotificationID(ev.EntityID, u.UserID, kind),
			UserID:          u.UserID,
			Type:            kind,
			Title:           c.Title,
			Message:         c.Body,
			RelatedEntityID: ev.EntityID,
		})
	}

	written, err := uc.records.BatchUpsert(ctx, records)
	if err != nil {
		return nil, fmt.Errorf("persist notifications: %w", err)
	}
	res := &DispatchResult{RecordsWritten: written}

	// Realtime in-app mirror for connected clients, best-effort.
	if uc.ws != nil {
		for _, u := range recipients {
			uc.ws.Send(u.UserID, domain.WSNotification{
				UserID: u.UserID,
				Type:   kind,
				Title:  c.Title,
				Body:   c.Body,
				Data:   c.Data,
			})
		}
	}

	tokens := collectTokens(recipients)
	if len(tokens) == 0 {
		log.Printf("[fanout] no push tokens for %s %s, records only", kind, ev.EntityID)
		return res, nil
	}

	br, err := uc.push.Send(ctx, tokens, push.Notification{Title: c.Title, Body: c.Body}, c.Data)
	if err != nil {
		log.Printf("⚠️ [fanout] push for %s %s failed entirely: %v", kind, ev.EntityID, err)
		res.PushFailed = len(tokens)
		return res, nil
	}

	res.PushSent = br.Success
	res.PushFailed = br.Failure
	if br.Failure > 0 {
		log.Printf("⚠️ [fanout] push for %s %s: %d of %d tokens failed", kind, ev.EntityID, br.Failure, len(tokens))
	}
	return res, nil
}

// collectTokens keeps the recipients that can actually be pushed to.
// A missing token is the expected common case, never an error.
func collectTokens(recipients []*domain.UserProfile) []string {
	var tokens []string
	for _, u := range recipients {
		if u.FCMToken != "" {
			tokens = append(tokens, u.FCMToken)
		}
	}
	return tokens
}
