package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"notification-service/internal/domain"
	xerrors "notification-service/pkg/xerrors"
)

// UserRepository is the read (and, for role assignment, merge-write)
// surface over the user-profile store.
type UserRepository interface {
	GetByID(ctx context.Context, userID string) (*domain.UserProfile, error)
	ListByRole(ctx context.Context, role domain.Role) ([]*domain.UserProfile, error)
	// UpdateRole merges role + updated_at into the profile, preserving
	// every other field.
	UpdateRole(ctx context.Context, userID string, role domain.Role) error
	UpdatePushToken(ctx context.Context, userID, token string) error
}

type pgUserRepo struct {
	db *pgxpool.Pool
}

func NewUserRepository(db *pgxpool.Pool) UserRepository {
	return &pgUserRepo{db: db}
}

const userColumns = `id, role, COALESCE(full_name, ''), COALESCE(name, ''), COALESCE(email, ''), COALESCE(fcm_token, ''), updated_at`

// GetByID implements UserRepository.
func (p *pgUserRepo) GetByID(ctx context.Context, userID string) (*domain.UserProfile, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users
		WHERE id = $1
	`

	u, err := scanUser(p.db.QueryRow(ctx, query, userID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, xerrors.ErrNotFound
		}
		return nil, err
	}
	return u, nil
}

// ListByRole implements UserRepository.
func (p *pgUserRepo) ListByRole(ctx context.Context, role domain.Role) ([]*domain.UserProfile, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users
		WHERE role = $1
	`

	rows, err := p.db.Query(ctx, query, role)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*domain.UserProfile
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return users, nil
}

// UpdateRole implements UserRepository. Merge-write: creates the
// profile row if absent, otherwise touches only role and updated_at.
func (p *pgUserRepo) UpdateRole(ctx context.Context, userID string, role domain.Role) error {
	query := `
		INSERT INTO users (id, role, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (id) DO UPDATE
		SET role = EXCLUDED.role,
		    updated_at = NOW()
	`

	_, err := p.db.Exec(ctx, query, userID, role)
	return err
}

// UpdatePushToken implements UserRepository.
func (p *pgUserRepo) UpdatePushToken(ctx context.Context, userID, token string) error {
	query := `
		UPDATE users
		SET fcm_token = $1,
		    updated_at = NOW()
		WHERE id = $2
	`

	ct, err := p.db.Exec(ctx, query, token, userID)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return xerrors.ErrUserNotFound
	}
	return nil
}

func scanUser(row pgx.Row) (*domain.UserProfile, error) {
	var u domain.UserProfile
	err := row.Scan(
		&u.UserID,
		&u.Role,
		&u.FullName,
		&u.Name,
		&u.Email,
		&u.FCMToken,
		&u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}
