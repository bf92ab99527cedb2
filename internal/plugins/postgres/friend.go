package postgres

import (
	"context"
	"database/sql"

	"github.com/Tech-Naruto/Chat-App-Backend/internal/core/domain"
)

type FriendRepo struct {
	db *sql.DB
}

func NewFriendRepository(db *sql.DB) *FriendRepo {
	return &FriendRepo{db: db}
}

// ActiveFriendIDs is the reverse lookup used by presence fan-out: every user
// that lists friendID in their active friend set.
func (r *FriendRepo) ActiveFriendIDs(ctx context.Context, friendID string) ([]string, error) {
	if friendID == "" {
		return nil, domain.ErrInvalidUserID
	}
	query := `SELECT user_id FROM active_friends WHERE friend_id = $1`
	exec := GetExecutor(ctx, r.db)
	rows, err := exec.QueryContext(ctx, query, friendID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
