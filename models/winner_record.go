package models

import (
	"time"
)

// WinnerRecord is the permanent history row written for each drawn winner.
// Rows are never mutated or deleted.
type WinnerRecord struct {
	ID             int64     `db:"id"`
	GroupID        int64     `db:"group_id"`
	ChannelID      int64     `db:"channel_id"`
	ChannelPostID  int64     `db:"channel_post_id"`
	WinnerUserID   int64     `db:"winner_user_id"`
	WinnerUsername string    `db:"winner_username"`
	WinnerName     string    `db:"winner_name"`
	WinnerComment  string    `db:"winner_comment"`
	PickedAt       time.Time `db:"picked_at"`
}
