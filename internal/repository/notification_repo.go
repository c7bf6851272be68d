package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"notification-service/internal/domain"
	xerrors "notification-service/pkg/xerrors"
)

// NotificationRepository aggregates all notification DB operations.
type NotificationRepository interface {
	// BatchUpsert writes one record per recipient atomically. Records
	// carry deterministic IDs, so redelivered events insert nothing and
	// the returned count is the number of rows actually created.
	BatchUpsert(ctx context.Context, records []*domain.Notification) (int, error)

	GetByID(ctx context.Context, id string) (*domain.Notification, error)
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]*domain.Notification, error)
	ListUnread(ctx context.Context, userID string, limit, offset int) ([]*domain.Notification, error)
	CountUnread(ctx context.Context, userID string) (int, error)
	MarkAsRead(ctx context.Context, id, userID string) error
}

type pgNotificationRepo struct {
	db *pgxpool.Pool
}

func NewNotificationRepository(db *pgxpool.Pool) NotificationRepository {
	return &pgNotificationRepo{db: db}
}

const notificationColumns = `id, user_id, type, title, message, related_entity_id, read, created_at`

// BatchUpsert implements NotificationRepository.
func (p *pgNotificationRepo) BatchUpsert(ctx context.Context, records []*domain.Notification) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}

	tx, err := p.db.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO notifications (id, user_id, type, title, message, related_entity_id, read, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, false, NOW())
		ON CONFLICT (id) DO NOTHING
	`

	batch := &pgx.Batch{}
	for _, n := range records {
		batch.Queue(query, n.ID, n.UserID, n.Type, n.Title, n.Message, n.RelatedEntityID)
	}

	br := tx.SendBatch(ctx, batch)
	written := 0
	for range records {
		ct, err := br.Exec()
		if err != nil {
			_ = br.Close()
			return 0, err
		}
		written += int(ct.RowsAffected())
	}
	if err := br.Close(); err != nil {
		return 0, err
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	return written, nil
}

// GetByID implements NotificationRepository.
func (p *pgNotificationRepo) GetByID(ctx context.Context, id string) (*domain.Notification, error) {
	query := `
		SELECT ` + notificationColumns + `
		FROM notifications
		WHERE id = $1
	`

	n, err := scanNotification(p.db.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, xerrors.ErrNotFound
		}
		return nil, err
	}
	return n, nil
}

// ListByUser implements NotificationRepository.
func (p *pgNotificationRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]*domain.Notification, error) {
	query := `
		SELECT ` + notificationColumns + `
		FROM notifications
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	return p.list(ctx, query, userID, limit, offset)
}

// ListUnread implements NotificationRepository.
func (p *pgNotificationRepo) ListUnread(ctx context.Context, userID string, limit, offset int) ([]*domain.Notification, error) {
	query := `
		SELECT ` + notificationColumns + `
		FROM notifications
		WHERE user_id = $1
		  AND read = false
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	return p.list(ctx, query, userID, limit, offset)
}

// CountUnread implements NotificationRepository.
func (p *pgNotificationRepo) CountUnread(ctx context.Context, userID string) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM notifications
		WHERE user_id = $1
		  AND read = false
	`

	var count int
	if err := p.db.QueryRow(ctx, query, userID).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

// MarkAsRead implements NotificationRepository.
func (p *pgNotificationRepo) MarkAsRead(ctx context.Context, id, userID string) error {
	query := `
		UPDATE notifications
		SET read = true
		WHERE id = $1
		  AND user_id = $2
		  AND read = false
	`

	ct, err := p.db.Exec(ctx, query, id, userID)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}
	return nil
}

func (p *pgNotificationRepo) list(ctx context.Context, query, userID string, limit, offset int) ([]*domain.Notification, error) {
	rows, err := p.db.Query(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notifications []*domain.Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		notifications = append(notifications, n)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return notifications, nil
}

func scanNotification(row pgx.Row) (*domain.Notification, error) {
	var n domain.Notification
	err := row.Scan(
		&n.ID,
		&n.UserID,
		&n.Type,
		&n.Title,
		&n.Message,
		&n.RelatedEntityID,
		&n.Read,
		&n.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &n, nil
}
