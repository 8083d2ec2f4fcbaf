package models

import (
	"time"
)

// Entry represents one user's comment entry for one giveaway post.
// The triple (GroupID, ChannelPostID, UserID) is unique; the database
// constraint, not application code, enforces one entry per user per post.
type Entry struct {
	ID               int64     `db:"id"`
	GroupID          int64     `db:"group_id"`
	ChannelID        int64     `db:"channel_id"`
	ChannelPostID    int64     `db:"channel_post_id"`
	UserID           int64     `db:"user_id"`
	Username         string    `db:"username"`
	DisplayName      string    `db:"display_name"`
	Comment          string    `db:"comment"`
	CommentMessageID int64     `db:"comment_message_id"`
	CreatedAt        time.Time `db:"created_at"`
}

// Mention returns the preferred human-readable handle for the entrant
func (e *Entry) Mention() string {
	if e.Username != "" {
		return "@" + e.Username
	}
	if e.DisplayName != "" {
		return e.DisplayName
	}
	return "User"
}
