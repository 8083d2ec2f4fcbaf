package repository

import (
	"context"
	"fmt"

	"github.com/OfficialBika/BikaCommentPicker/database"
	"github.com/OfficialBika/BikaCommentPicker/models"
	"github.com/jackc/pgx/v5"
)

// GiveawayPostRepository implements the GiveawayPostRepository interface
type GiveawayPostRepository struct {
	q queryable
}

// NewGiveawayPostRepository creates a new giveaway post repository
func NewGiveawayPostRepository(db *database.DB) *GiveawayPostRepository {
	return &GiveawayPostRepository{q: db.Pool}
}

// newGiveawayPostRepositoryWithTx creates a new giveaway post repository with a transaction
func newGiveawayPostRepositoryWithTx(tx queryable) *GiveawayPostRepository {
	return &GiveawayPostRepository{q: tx}
}

const giveawayPostColumns = `
	id, channel_id, channel_post_id, discussion_group_id,
	mention_tag, picked, drawing, picked_at, created_at
`

// Upsert records a detected giveaway post. The first detection creates the
// row; repeat detections only refresh the linked discussion group and never
// touch the picked state.
func (r *GiveawayPostRepository) Upsert(ctx context.Context, channelID, channelPostID int64, mentionTag string, discussionGroupID *int64) (*models.GiveawayPost, error) {
	query := `
		INSERT INTO giveaway_posts (channel_id, channel_post_id, mention_tag, discussion_group_id)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (channel_id, channel_post_id) DO UPDATE
		SET discussion_group_id = EXCLUDED.discussion_group_id
		RETURNING ` + giveawayPostColumns

	var post models.GiveawayPost
	err := r.q.QueryRow(ctx, query, channelID, channelPostID, mentionTag, discussionGroupID).Scan(
		&post.ID,
		&post.ChannelID,
		&post.ChannelPostID,
		&post.DiscussionGroupID,
		&post.MentionTag,
		&post.Picked,
		&post.Drawing,
		&post.PickedAt,
		&post.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert giveaway post %d/%d: %w", channelID, channelPostID, err)
	}

	return &post, nil
}

// GetPickable returns the post only if winners have not been drawn yet,
// nil when the post is unknown or already picked
func (r *GiveawayPostRepository) GetPickable(ctx context.Context, channelID, channelPostID int64) (*models.GiveawayPost, error) {
	query := `
		SELECT ` + giveawayPostColumns + `
		FROM giveaway_posts
		WHERE channel_id = $1 AND channel_post_id = $2 AND picked = FALSE
	`

	var post models.GiveawayPost
	err := r.q.QueryRow(ctx, query, channelID, channelPostID).Scan(
		&post.ID,
		&post.ChannelID,
		&post.ChannelPostID,
		&post.DiscussionGroupID,
		&post.MentionTag,
		&post.Picked,
		&post.Drawing,
		&post.PickedAt,
		&post.CreatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get pickable post %d/%d: %w", channelID, channelPostID, err)
	}

	return &post, nil
}

// ClaimForDraw atomically marks the post as having a draw in progress.
// Returns false when the post is unknown, already picked, or already
// claimed by a concurrent draw. This single conditional update is the
// mutual exclusion for the drawing state.
func (r *GiveawayPostRepository) ClaimForDraw(ctx context.Context, channelID, channelPostID int64) (bool, error) {
	query := `
		UPDATE giveaway_posts
		SET drawing = TRUE
		WHERE channel_id = $1 AND channel_post_id = $2
		  AND picked = FALSE AND drawing = FALSE
	`

	tag, err := r.q.Exec(ctx, query, channelID, channelPostID)
	if err != nil {
		return false, fmt.Errorf("failed to claim post %d/%d for draw: %w", channelID, channelPostID, err)
	}

	return tag.RowsAffected() == 1, nil
}

// ReleaseClaim clears the drawing flag after an aborted draw so the post
// can be drawn again later
func (r *GiveawayPostRepository) ReleaseClaim(ctx context.Context, channelID, channelPostID int64) error {
	query := `
		UPDATE giveaway_posts
		SET drawing = FALSE
		WHERE channel_id = $1 AND channel_post_id = $2 AND picked = FALSE
	`

	if _, err := r.q.Exec(ctx, query, channelID, channelPostID); err != nil {
		return fmt.Errorf("failed to release draw claim on post %d/%d: %w", channelID, channelPostID, err)
	}

	return nil
}

// MarkPicked flips the post to picked exactly once and clears the drawing claim
func (r *GiveawayPostRepository) MarkPicked(ctx context.Context, channelID, channelPostID int64) error {
	query := `
		UPDATE giveaway_posts
		SET picked = TRUE, picked_at = now(), drawing = FALSE
		WHERE channel_id = $1 AND channel_post_id = $2 AND picked = FALSE
	`

	tag, err := r.q.Exec(ctx, query, channelID, channelPostID)
	if err != nil {
		return fmt.Errorf("failed to mark post %d/%d picked: %w", channelID, channelPostID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("post %d/%d is already picked", channelID, channelPostID)
	}

	return nil
}

// ResetStaleClaims clears drawing flags left behind by an interrupted
// process. Countdowns do not survive a restart, so any claim present at
// startup is stale.
func (r *GiveawayPostRepository) ResetStaleClaims(ctx context.Context) (int64, error) {
	tag, err := r.q.Exec(ctx, `UPDATE giveaway_posts SET drawing = FALSE WHERE drawing = TRUE`)
	if err != nil {
		return 0, fmt.Errorf("failed to reset stale draw claims: %w", err)
	}

	return tag.RowsAffected(), nil
}
