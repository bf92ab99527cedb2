package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/Tech-Naruto/Chat-App-Backend/internal/core/domain"
)

type UserRepo struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepo {
	return &UserRepo{db: db}
}

func (r *UserRepo) GetUserByID(ctx context.Context, id string) (*domain.User, error) {
	if id == "" {
		return nil, domain.ErrInvalidUserID
	}
	user := &domain.User{ID: id}
	query := `SELECT username, email, is_online, last_seen, created_at FROM users WHERE id = $1`
	exec := GetExecutor(ctx, r.db)
	err := exec.QueryRowContext(ctx, query, id).Scan(
		&user.Username,
		&user.Email,
		&user.IsOnline,
		&user.LastSeen,
		&user.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// SetOnline mirrors a live connection into the durable record. last_seen is
// cleared: an online user has no meaningful "last seen".
func (r *UserRepo) SetOnline(ctx context.Context, id string) error {
	if id == "" {
		return domain.ErrInvalidUserID
	}
	query := `UPDATE users SET is_online = TRUE, last_seen = NULL WHERE id = $1`
	exec := GetExecutor(ctx, r.db)
	result, err := exec.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (r *UserRepo) SetOffline(ctx context.Context, id string, lastSeen time.Time) error {
	if id == "" {
		return domain.ErrInvalidUserID
	}
	query := `UPDATE users SET is_online = FALSE, last_seen = $2 WHERE id = $1`
	exec := GetExecutor(ctx, r.db)
	result, err := exec.ExecContext(ctx, query, id, lastSeen)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}
