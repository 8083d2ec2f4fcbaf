package repository

import (
	"context"
	"fmt"

	"github.com/OfficialBika/BikaCommentPicker/database"
	"github.com/OfficialBika/BikaCommentPicker/models"
	"github.com/jackc/pgx/v5"
)

// ApprovedGroupRepository implements the ApprovedGroupRepository interface
type ApprovedGroupRepository struct {
	q queryable
}

// NewApprovedGroupRepository creates a new approved group repository
func NewApprovedGroupRepository(db *database.DB) *ApprovedGroupRepository {
	return &ApprovedGroupRepository{q: db.Pool}
}

// newApprovedGroupRepositoryWithTx creates a new approved group repository with a transaction
func newApprovedGroupRepositoryWithTx(tx queryable) *ApprovedGroupRepository {
	return &ApprovedGroupRepository{q: tx}
}

// Get retrieves an approved group by its chat id, or nil if not approved
func (r *ApprovedGroupRepository) Get(ctx context.Context, groupID int64) (*models.ApprovedGroup, error) {
	query := `
		SELECT group_id, approved_by, approved_at
		FROM approved_groups
		WHERE group_id = $1
	`

	var group models.ApprovedGroup
	err := r.q.QueryRow(ctx, query, groupID).Scan(
		&group.GroupID,
		&group.ApprovedBy,
		&group.ApprovedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get approved group %d: %w", groupID, err)
	}

	return &group, nil
}

// Upsert approves a group, refreshing approver and timestamp on re-approval
func (r *ApprovedGroupRepository) Upsert(ctx context.Context, groupID, approvedBy int64) (*models.ApprovedGroup, error) {
	query := `
		INSERT INTO approved_groups (group_id, approved_by, approved_at)
		VALUES ($1, $2, now())
		ON CONFLICT (group_id) DO UPDATE
		SET approved_by = EXCLUDED.approved_by, approved_at = EXCLUDED.approved_at
		RETURNING group_id, approved_by, approved_at
	`

	var group models.ApprovedGroup
	err := r.q.QueryRow(ctx, query, groupID, approvedBy).Scan(
		&group.GroupID,
		&group.ApprovedBy,
		&group.ApprovedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to approve group %d: %w", groupID, err)
	}

	return &group, nil
}
