package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"notification-service/internal/domain"
	xerrors "notification-service/pkg/xerrors"
)

func seededQueryUsecase(t *testing.T) (*NotificationQueryUsecase, *fakeNotificationRepo, *fakeUserRepo) {
	t.Helper()
	records := newFakeNotificationRepo()
	users := newFakeUserRepo(
		&domain.UserProfile{UserID: "u-1", Role: domain.RoleCustomer},
	)
	_, err := records.BatchUpsert(context.Background(), []*domain.Notification{
		{ID: "n-1", UserID: "u-1", Type: domain.KindNewOrder, Title: "New Order Placed"},
		{ID: "n-2", UserID: "u-1", Type: domain.KindChat, Title: "Maria"},
		{ID: "n-3", UserID: "u-2", Type: domain.KindChat, Title: "Ben"},
	})
	require.NoError(t, err)
	return NewNotificationQueryUsecase(records, users), records, users
}

func TestQuery_MarkAsRead(t *testing.T) {
	uc, _, _ := seededQueryUsecase(t)
	ctx := context.Background()

	count, err := uc.CountUnread(ctx, "u-1")
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	require.NoError(t, uc.MarkAsRead(ctx, "n-1", "u-1"))

	count, err = uc.CountUnread(ctx, "u-1")
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	// Already read: the read=false guard reports not found.
	assert.ErrorIs(t, uc.MarkAsRead(ctx, "n-1", "u-1"), xerrors.ErrNotFound)
}

func TestQuery_MarkAsRead_Validation(t *testing.T) {
	uc, _, _ := seededQueryUsecase(t)
	ctx := context.Background()

	assert.ErrorIs(t, uc.MarkAsRead(ctx, "", "u-1"), xerrors.ErrInvalidInput)

	// Another user's record is invisible.
	assert.ErrorIs(t, uc.MarkAsRead(ctx, "n-3", "u-1"), xerrors.ErrNotFound)
}

func TestQuery_ListUnread(t *testing.T) {
	uc, _, _ := seededQueryUsecase(t)
	ctx := context.Background()

	require.NoError(t, uc.MarkAsRead(ctx, "n-2", "u-1"))

	unread, err := uc.ListUnread(ctx, "u-1", 0, 0)
	require.NoError(t, err)
	require.Len(t, unread, 1)
	assert.Equal(t, "n-1", unread[0].ID)

	all, err := uc.List(ctx, "u-1", 0, 0)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestQuery_UpdatePushToken(t *testing.T) {
	uc, _, users := seededQueryUsecase(t)
	ctx := context.Background()

	require.NoError(t, uc.UpdatePushToken(ctx, "u-1", "tok-new"))
	u, err := users.GetByID(ctx, "u-1")
	require.NoError(t, err)
	assert.Equal(t, "tok-new", u.FCMToken)

	assert.ErrorIs(t, uc.UpdatePushToken(ctx, "ghost", "tok"), xerrors.ErrUserNotFound)
}
