package postgres

import (
	"context"
	"database/sql"

	"github.com/Tech-Naruto/Chat-App-Backend/internal/core/domain"
)

type RoomRepo struct {
	db *sql.DB
}

func NewRoomRepository(db *sql.DB) *RoomRepo {
	return &RoomRepo{db: db}
}

// SetPresence updates the viewer-owned row of the room record. The row is
// keyed (room_id, friend_id) with friend_id holding the viewer, matching how
// the room table is written by the room CRUD side. Zero rows affected is not
// an error: the room record may simply not exist yet.
func (r *RoomRepo) SetPresence(ctx context.Context, roomID, viewerID string, isPresent bool) error {
	if roomID == "" {
		return domain.ErrInvalidRoomID
	}
	if viewerID == "" {
		return domain.ErrInvalidUserID
	}
	query := `UPDATE rooms SET is_present = $3 WHERE room_id = $1 AND friend_id = $2`
	exec := GetExecutor(ctx, r.db)
	_, err := exec.ExecContext(ctx, query, roomID, viewerID, isPresent)
	return err
}
