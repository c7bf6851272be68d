package usecase

import (
	"context"

	"notification-service/internal/domain"
	"notification-service/internal/repository"
	xerrors "notification-service/pkg/xerrors"
)

// NotificationQueryUsecase is the in-app read surface: listing,
// unread counts, and read toggling. It sits outside the fan-out core,
// which never mutates a record after writing it.
type NotificationQueryUsecase struct {
	records repository.NotificationRepository
	users   repository.UserRepository
}

func NewNotificationQueryUsecase(records repository.NotificationRepository, users repository.UserRepository) *NotificationQueryUsecase {
	return &NotificationQueryUsecase{records: records, users: users}
}

func (uc *NotificationQueryUsecase) List(ctx context.Context, userID string, limit, offset int) ([]*domain.Notification, error) {
	if limit <= 0 {
		limit = 20
	}
	return uc.records.ListByUser(ctx, userID, limit, offset)
}

func (uc *NotificationQueryUsecase) ListUnread(ctx context.Context, userID string, limit, offset int) ([]*domain.Notification, error) {
	if limit <= 0 {
		limit = 20
	}
	return uc.records.ListUnread(ctx, userID, limit, offset)
}

func (uc *NotificationQueryUsecase) CountUnread(ctx context.Context, userID string) (int, error) {
	return uc.records.CountUnread(ctx, userID)
}

func (uc *NotificationQueryUsecase) MarkAsRead(ctx context.Context, id, userID string) error {
	if id == "" {
		return xerrors.ErrInvalidInput
	}
	return uc.records.MarkAsRead(ctx, id, userID)
}

func (uc *NotificationQueryUsecase) UpdatePushToken(ctx context.Context, userID, token string) error {
	return uc.users.UpdatePushToken(ctx, userID, token)
}
