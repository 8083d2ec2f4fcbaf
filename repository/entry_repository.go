package repository

import (
	"context"
	"fmt"

	"github.com/OfficialBika/BikaCommentPicker/database"
	"github.com/OfficialBika/BikaCommentPicker/models"
	"github.com/jackc/pgx/v5"
)

// EntryRepository implements the EntryRepository interface
type EntryRepository struct {
	q queryable
}

// NewEntryRepository creates a new entry repository
func NewEntryRepository(db *database.DB) *EntryRepository {
	return &EntryRepository{q: db.Pool}
}

// newEntryRepositoryWithTx creates a new entry repository with a transaction
func newEntryRepositoryWithTx(tx queryable) *EntryRepository {
	return &EntryRepository{q: tx}
}

// Insert records an entry. Returns false when the user already entered this
// post in this group: the insert races straight into the unique constraint
// and a conflict is swallowed rather than pre-checked, so concurrent
// duplicate submissions resolve in the store.
func (r *EntryRepository) Insert(ctx context.Context, entry *models.Entry) (bool, error) {
	query := `
		INSERT INTO entries (group_id, channel_id, channel_post_id, user_id,
			username, display_name, comment, comment_message_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (group_id, channel_post_id, user_id) DO NOTHING
		RETURNING id, created_at
	`

	err := r.q.QueryRow(ctx, query,
		entry.GroupID,
		entry.ChannelID,
		entry.ChannelPostID,
		entry.UserID,
		entry.Username,
		entry.DisplayName,
		entry.Comment,
		entry.CommentMessageID,
	).Scan(&entry.ID, &entry.CreatedAt)

	if err == pgx.ErrNoRows {
		// conflict: duplicate entry, not an error
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to insert entry for user %d on post %d: %w", entry.UserID, entry.ChannelPostID, err)
	}

	return true, nil
}

// ListForPost returns all entries for a post. Order carries no meaning;
// consumers shuffle the full set before use.
func (r *EntryRepository) ListForPost(ctx context.Context, groupID, channelID, channelPostID int64) ([]*models.Entry, error) {
	query := `
		SELECT id, group_id, channel_id, channel_post_id, user_id,
			username, display_name, comment, comment_message_id, created_at
		FROM entries
		WHERE group_id = $1 AND channel_id = $2 AND channel_post_id = $3
	`

	rows, err := r.q.Query(ctx, query, groupID, channelID, channelPostID)
	if err != nil {
		return nil, fmt.Errorf("failed to list entries for post %d/%d: %w", channelID, channelPostID, err)
	}
	defer rows.Close()

	var entries []*models.Entry
	for rows.Next() {
		var entry models.Entry
		err := rows.Scan(
			&entry.ID,
			&entry.GroupID,
			&entry.ChannelID,
			&entry.ChannelPostID,
			&entry.UserID,
			&entry.Username,
			&entry.DisplayName,
			&entry.Comment,
			&entry.CommentMessageID,
			&entry.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan entry: %w", err)
		}
		entries = append(entries, &entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate entries: %w", err)
	}

	return entries, nil
}

// DeleteForPost removes every entry for a post, winners included, once a
// draw has committed
func (r *EntryRepository) DeleteForPost(ctx context.Context, groupID, channelID, channelPostID int64) (int64, error) {
	query := `
		DELETE FROM entries
		WHERE group_id = $1 AND channel_id = $2 AND channel_post_id = $3
	`

	tag, err := r.q.Exec(ctx, query, groupID, channelID, channelPostID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete entries for post %d/%d: %w", channelID, channelPostID, err)
	}

	return tag.RowsAffected(), nil
}
