package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"notification-service/internal/domain"
	"notification-service/pkg/push"
	xerrors "notification-service/pkg/xerrors"
)

// fakeUserRepo is an in-memory repository.UserRepository.
type fakeUserRepo struct {
	mu        sync.Mutex
	users     map[string]*domain.UserProfile
	roleWrite map[string]domain.Role
	failRole  error
	failList  error
}

func newFakeUserRepo(users ...*domain.UserProfile) *fakeUserRepo {
	f := &fakeUserRepo{
		users:     map[string]*domain.UserProfile{},
		roleWrite: map[string]domain.Role{},
	}
	for _, u := range users {
		f.users[u.UserID] = u
	}
	return f
}

func (f *fakeUserRepo) GetByID(_ context.Context, userID string) (*domain.UserProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[userID]
	if !ok {
		return nil, xerrors.ErrNotFound
	}
	return u, nil
}

func (f *fakeUserRepo) ListByRole(_ context.Context, role domain.Role) ([]*domain.UserProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failList != nil {
		return nil, f.failList
	}
	var out []*domain.UserProfile
	for _, u := range f.users {
		if u.Role == role {
			out = append(out, u)
		}
	}
	return out, nil
}

func (f *fakeUserRepo) UpdateRole(_ context.Context, userID string, role domain.Role) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failRole != nil {
		return f.failRole
	}
	f.roleWrite[userID] = role
	return nil
}

func (f *fakeUserRepo) UpdatePushToken(_ context.Context, userID, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[userID]
	if !ok {
		return xerrors.ErrUserNotFound
	}
	u.FCMToken = token
	return nil
}

// fakeNotificationRepo keeps records keyed by ID, so the deterministic
// ID upsert behaves like the real ON CONFLICT DO NOTHING.
type fakeNotificationRepo struct {
	mu      sync.Mutex
	records map[string]*domain.Notification
	fail    error
}

func newFakeNotificationRepo() *fakeNotificationRepo {
	return &fakeNotificationRepo{records: map[string]*domain.Notification{}}
}

func (f *fakeNotificationRepo) BatchUpsert(_ context.Context, records []*domain.Notification) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return 0, f.fail
	}
	written := 0
	for _, n := range records {
		if _, exists := f.records[n.ID]; exists {
			continue
		}
		f.records[n.ID] = n
		written++
	}
	return written, nil
}

func (f *fakeNotificationRepo) GetByID(_ context.Context, id string) (*domain.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n, ok := f.records[id]
	if !ok {
		return nil, xerrors.ErrNotFound
	}
	return n, nil
}

func (f *fakeNotificationRepo) ListByUser(_ context.Context, userID string, _, _ int) ([]*domain.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*domain.Notification
	for _, n := range f.records {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	return out, nil
}

func (f *fakeNotificationRepo) ListUnread(ctx context.Context, userID string, limit, offset int) ([]*domain.Notification, error) {
	all, err := f.ListByUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	var out []*domain.Notification
	for _, n := range all {
		if !n.Read {
			out = append(out, n)
		}
	}
	return out, nil
}

func (f *fakeNotificationRepo) CountUnread(ctx context.Context, userID string) (int, error) {
	unread, err := f.ListUnread(ctx, userID, 0, 0)
	if err != nil {
		return 0, err
	}
	return len(unread), nil
}

func (f *fakeNotificationRepo) MarkAsRead(_ context.Context, id, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	n, ok := f.records[id]
	if !ok || n.UserID != userID || n.Read {
		return xerrors.ErrNotFound
	}
	n.Read = true
	return nil
}

// fakePushSender records every batch it is asked to send.
type fakePushSender struct {
	mu      sync.Mutex
	calls   [][]string
	lastMsg push.Notification
	fail    error
	perTok  map[string]string // token -> error string, "" means delivered
}

func (f *fakePushSender) Send(_ context.Context, tokens []string, note push.Notification, _ map[string]string) (*push.BatchResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, tokens)
	f.lastMsg = note
	if f.fail != nil {
		return nil, f.fail
	}
	br := &push.BatchResult{}
	for _, tok := range tokens {
		if msg, bad := f.perTok[tok]; bad && msg != "" {
			br.Failure++
			br.Results = append(br.Results, push.TokenResult{Token: tok, Error: msg})
			continue
		}
		br.Success++
		br.Results = append(br.Results, push.TokenResult{Token: tok, MessageID: "m-" + tok})
	}
	return br, nil
}

func quotationCreated(id string) domain.ChangeEvent {
	return domain.ChangeEvent{
		EntityType: domain.EntityQuotation,
		EntityID:   id,
		After:      domain.Snapshot{"customerName": "Ana", "productName": "Cabinet"},
	}
}

func TestProcess_BroadcastFanout(t *testing.T) {
	users := newFakeUserRepo(
		&domain.UserProfile{UserID: "a1", Role: domain.RoleAdmin, FCMToken: "tok-a1"},
		&domain.UserProfile{UserID: "s1", Role: domain.RoleStaff, FCMToken: "tok-s1"},
		&domain.UserProfile{UserID: "s2", Role: domain.RoleStaff}, // no device
		&domain.UserProfile{UserID: "c1", Role: domain.RoleCustomer, FCMToken: "tok-c1"},
	)
	records := newFakeNotificationRepo()
	sender := &fakePushSender{}
	uc := NewFanoutUsecase(users, records, sender, nil)

	err := uc.Process(context.Background(), quotationCreated("q-1"))
	require.NoError(t, err)

	// One record per admin/staff recipient, customers excluded.
	assert.Len(t, records.records, 3)
	for _, uid := range []string{"a1", "s1", "s2"} {
		id := domain.NotificationID("q-1", uid, domain.KindNewQuotation)
		n, err := records.GetByID(context.Background(), id)
		require.NoError(t, err)
		assert.Equal(t, "New Quotation Request", n.Title)
		assert.Equal(t, "q-1", n.RelatedEntityID)
		assert.False(t, n.Read)
	}

	// Exactly one batched push carrying only the tokens that exist.
	require.Len(t, sender.calls, 1)
	assert.ElementsMatch(t, []string{"tok-a1", "tok-s1"}, sender.calls[0])
	assert.Equal(t, "New Quotation Request", sender.lastMsg.Title)
}

func TestProcess_RedeliveryIsIdempotent(t *testing.T) {
	users := newFakeUserRepo(
		&domain.UserProfile{UserID: "a1", Role: domain.RoleAdmin, FCMToken: "tok-a1"},
	)
	records := newFakeNotificationRepo()
	sender := &fakePushSender{}
	uc := NewFanoutUsecase(users, records, sender, nil)

	require.NoError(t, uc.Process(context.Background(), quotationCreated("q-1")))
	require.NoError(t, uc.Process(context.Background(), quotationCreated("q-1")))

	assert.Len(t, records.records, 1)
}

func TestProcess_RecordsWithoutTokens(t *testing.T) {
	users := newFakeUserRepo(
		&domain.UserProfile{UserID: "a1", Role: domain.RoleAdmin},
		&domain.UserProfile{UserID: "s1", Role: domain.RoleStaff},
	)
	records := newFakeNotificationRepo()
	sender := &fakePushSender{}
	uc := NewFanoutUsecase(users, records, sender, nil)

	err := uc.Process(context.Background(), quotationCreated("q-2"))
	require.NoError(t, err)

	assert.Len(t, records.records, 2)
	assert.Empty(t, sender.calls, "no tokens means no push attempt")
}

func TestProcess_PushFailureKeepsRecords(t *testing.T) {
	users := newFakeUserRepo(
		&domain.UserProfile{UserID: "a1", Role: domain.RoleAdmin, FCMToken: "tok-a1"},
	)
	records := newFakeNotificationRepo()
	sender := &fakePushSender{fail: errors.New("fcm unreachable")}
	uc := NewFanoutUsecase(users, records, sender, nil)

	ev := domain.ChangeEvent{
		EntityType: domain.EntityOrder,
		EntityID:   "o-1",
		After:      domain.Snapshot{"customerName": "Ben", "totalPrice": 300.0},
	}
	err := uc.Process(context.Background(), ev)

	// Orders never propagate faults; the records survive the push failure.
	require.NoError(t, err)
	assert.Len(t, records.records, 1)
}

func TestProcess_FaultedQuotationCreationPropagates(t *testing.T) {
	users := newFakeUserRepo(
		&domain.UserProfile{UserID: "a1", Role: domain.RoleAdmin},
	)
	records := newFakeNotificationRepo()
	records.fail = errors.New("db down")
	sender := &fakePushSender{}
	uc := NewFanoutUsecase(users, records, sender, nil)

	err := uc.Process(context.Background(), quotationCreated("q-3"))
	assert.Error(t, err)
}

func TestProcess_FaultedOrderCreationSwallowed(t *testing.T) {
	users := newFakeUserRepo(
		&domain.UserProfile{UserID: "a1", Role: domain.RoleAdmin},
	)
	records := newFakeNotificationRepo()
	records.fail = errors.New("db down")
	sender := &fakePushSender{}
	uc := NewFanoutUsecase(users, records, sender, nil)

	ev := domain.ChangeEvent{
		EntityType: domain.EntityOrder,
		EntityID:   "o-2",
		After:      domain.Snapshot{},
	}
	assert.NoError(t, uc.Process(context.Background(), ev))
}

func TestProcess_SingleRecipientChat(t *testing.T) {
	users := newFakeUserRepo(
		&domain.UserProfile{UserID: "u-recv", Role: domain.RoleCustomer, FCMToken: "tok-recv"},
		&domain.UserProfile{UserID: "u-send", Role: domain.RoleStaff, FullName: "Maria Santos"},
	)
	records := newFakeNotificationRepo()
	sender := &fakePushSender{}
	uc := NewFanoutUsecase(users, records, sender, nil)

	ev := domain.ChangeEvent{
		EntityType: domain.EntityChatMessage,
		EntityID:   "m-1",
		After: domain.Snapshot{
			"senderId":   "u-send",
			"receiverId": "u-recv",
			"message":    "hello",
			"chatRoomId": "room-1",
		},
	}
	require.NoError(t, uc.Process(context.Background(), ev))

	id := domain.NotificationID("m-1", "u-recv", domain.KindChat)
	n, err := records.GetByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "Maria Santos", n.Title)
	assert.Equal(t, "hello", n.Message)

	require.Len(t, sender.calls, 1)
	assert.Equal(t, []string{"tok-recv"}, sender.calls[0])
}

func TestProcess_UnknownSenderStillDelivers(t *testing.T) {
	users := newFakeUserRepo(
		&domain.UserProfile{UserID: "u-recv", Role: domain.RoleCustomer},
	)
	records := newFakeNotificationRepo()
	sender := &fakePushSender{}
	uc := NewFanoutUsecase(users, records, sender, nil)

	ev := domain.ChangeEvent{
		EntityType: domain.EntityChatMessage,
		EntityID:   "m-2",
		After: domain.Snapshot{
			"senderId":   "ghost",
			"receiverId": "u-recv",
			"message":    "hi",
		},
	}
	require.NoError(t, uc.Process(context.Background(), ev))

	id := domain.NotificationID("m-2", "u-recv", domain.KindChat)
	n, err := records.GetByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "New message", n.Title)
}

func TestProcess_MissingRecipientIsTerminal(t *testing.T) {
	users := newFakeUserRepo()
	records := newFakeNotificationRepo()
	sender := &fakePushSender{}
	uc := NewFanoutUsecase(users, records, sender, nil)

	t.Run("no receiver field", func(t *testing.T) {
		ev := domain.ChangeEvent{
			EntityType: domain.EntityChatMessage,
			EntityID:   "m-3",
			After:      domain.Snapshot{"senderId": "u-send", "message": "hi"},
		}
		require.NoError(t, uc.Process(context.Background(), ev))
		assert.Empty(t, records.records)
	})

	t.Run("receiver profile missing", func(t *testing.T) {
		ev := domain.ChangeEvent{
			EntityType: domain.EntityChatMessage,
			EntityID:   "m-4",
			After:      domain.Snapshot{"receiverId": "nobody", "message": "hi"},
		}
		require.NoError(t, uc.Process(context.Background(), ev))
		assert.Empty(t, records.records)
	})
	assert.Empty(t, sender.calls)
}

func TestProcess_QuotationPricedRoutesToCustomer(t *testing.T) {
	users := newFakeUserRepo(
		&domain.UserProfile{UserID: "cust-1", Role: domain.RoleCustomer, FCMToken: "tok-c"},
	)
	records := newFakeNotificationRepo()
	sender := &fakePushSender{}
	uc := NewFanoutUsecase(users, records, sender, nil)

	ev := domain.ChangeEvent{
		EntityType: domain.EntityQuotation,
		EntityID:   "q-9",
		Before:     domain.Snapshot{},
		After: domain.Snapshot{
			// Legacy records carry userId instead of customerId.
			"userId":          "cust-1",
			"productName":     "Bed Frame",
			"adminTotalPrice": 980.0,
		},
	}
	require.NoError(t, uc.Process(context.Background(), ev))

	id := domain.NotificationID("q-9", "cust-1", domain.KindQuotationUpdated)
	n, err := records.GetByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "Quotation Ready", n.Title)
	assert.Equal(t, "Your quotation for Bed Frame is ₱980.00", n.Message)
}

func TestProcess_SkippedEventTouchesNothing(t *testing.T) {
	users := newFakeUserRepo(
		&domain.UserProfile{UserID: "a1", Role: domain.RoleAdmin, FCMToken: "t"},
	)
	records := newFakeNotificationRepo()
	sender := &fakePushSender{}
	uc := NewFanoutUsecase(users, records, sender, nil)

	ev := domain.ChangeEvent{
		EntityType: domain.EntityOrder,
		EntityID:   "o-9",
		Before:     domain.Snapshot{"status": "shipped"},
		After:      domain.Snapshot{"status": "shipped"},
	}
	require.NoError(t, uc.Process(context.Background(), ev))
	assert.Empty(t, records.records)
	assert.Empty(t, sender.calls)
}

func TestProcess_PartialPushFailureTolerated(t *testing.T) {
	users := newFakeUserRepo(
		&domain.UserProfile{UserID: "a1", Role: domain.RoleAdmin, FCMToken: "tok-good"},
		&domain.UserProfile{UserID: "s1", Role: domain.RoleStaff, FCMToken: "tok-stale"},
	)
	records := newFakeNotificationRepo()
	sender := &fakePushSender{perTok: map[string]string{"tok-stale": "NotRegistered"}}
	uc := NewFanoutUsecase(users, records, sender, nil)

	require.NoError(t, uc.Process(context.Background(), quotationCreated("q-4")))
	assert.Len(t, records.records, 2)
}
