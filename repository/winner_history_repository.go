package repository

import (
	"context"
	"fmt"

	"github.com/OfficialBika/BikaCommentPicker/database"
	"github.com/OfficialBika/BikaCommentPicker/models"
)

// WinnerHistoryRepository implements the WinnerHistoryRepository interface
type WinnerHistoryRepository struct {
	q queryable
}

// NewWinnerHistoryRepository creates a new winner history repository
func NewWinnerHistoryRepository(db *database.DB) *WinnerHistoryRepository {
	return &WinnerHistoryRepository{q: db.Pool}
}

// newWinnerHistoryRepositoryWithTx creates a new winner history repository with a transaction
func newWinnerHistoryRepositoryWithTx(tx queryable) *WinnerHistoryRepository {
	return &WinnerHistoryRepository{q: tx}
}

// CreateBatch writes one history row per winner in a single batch insert
func (r *WinnerHistoryRepository) CreateBatch(ctx context.Context, records []*models.WinnerRecord) error {
	if len(records) == 0 {
		return nil
	}

	query := `
		INSERT INTO winner_history (group_id, channel_id, channel_post_id,
			winner_user_id, winner_username, winner_name, winner_comment)
		VALUES `

	values := make([]interface{}, 0, len(records)*7)
	for i, rec := range records {
		if i > 0 {
			query += ", "
		}
		paramOffset := i * 7
		query += fmt.Sprintf("($%d, $%d, $%d, $%d, $%d, $%d, $%d)",
			paramOffset+1, paramOffset+2, paramOffset+3, paramOffset+4,
			paramOffset+5, paramOffset+6, paramOffset+7)
		values = append(values, rec.GroupID, rec.ChannelID, rec.ChannelPostID,
			rec.WinnerUserID, rec.WinnerUsername, rec.WinnerName, rec.WinnerComment)
	}
	query += " RETURNING id, picked_at"

	rows, err := r.q.Query(ctx, query, values...)
	if err != nil {
		return fmt.Errorf("failed to batch create winner history: %w", err)
	}
	defer rows.Close()

	i := 0
	for rows.Next() {
		if err := rows.Scan(&records[i].ID, &records[i].PickedAt); err != nil {
			return fmt.Errorf("failed to scan winner history result: %w", err)
		}
		i++
	}

	return rows.Err()
}

// CountByGroup returns the total number of history rows for a group
func (r *WinnerHistoryRepository) CountByGroup(ctx context.Context, groupID int64) (int64, error) {
	query := `SELECT COUNT(*) FROM winner_history WHERE group_id = $1`

	var count int64
	err := r.q.QueryRow(ctx, query, groupID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count winner history for group %d: %w", groupID, err)
	}

	return count, nil
}

// ListPage returns one page of history rows for a group, most recent pick first
func (r *WinnerHistoryRepository) ListPage(ctx context.Context, groupID int64, offset, limit int) ([]*models.WinnerRecord, error) {
	query := `
		SELECT id, group_id, channel_id, channel_post_id,
			winner_user_id, winner_username, winner_name, winner_comment, picked_at
		FROM winner_history
		WHERE group_id = $1
		ORDER BY picked_at DESC, id DESC
		OFFSET $2 LIMIT $3
	`

	rows, err := r.q.Query(ctx, query, groupID, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list winner history for group %d: %w", groupID, err)
	}
	defer rows.Close()

	var records []*models.WinnerRecord
	for rows.Next() {
		var rec models.WinnerRecord
		err := rows.Scan(
			&rec.ID,
			&rec.GroupID,
			&rec.ChannelID,
			&rec.ChannelPostID,
			&rec.WinnerUserID,
			&rec.WinnerUsername,
			&rec.WinnerName,
			&rec.WinnerComment,
			&rec.PickedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan winner record: %w", err)
		}
		records = append(records, &rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate winner history: %w", err)
	}

	return records, nil
}
