package service

import (
	"context"
	"fmt"

	"github.com/OfficialBika/BikaCommentPicker/models"
)

// historyPageSize is the fixed number of rows per winner history page
const historyPageSize = 8

// historyService implements paginated reads over winner history
type historyService struct {
	uowFactory UnitOfWorkFactory
}

// NewHistoryService creates a new history service
func NewHistoryService(uowFactory UnitOfWorkFactory) HistoryService {
	return &historyService{uowFactory: uowFactory}
}

// Page returns one page of winner history, most recent pick first. The page
// number is clamped into [1, totalPages]; out-of-range requests never error.
// An empty history yields a single empty page.
func (s *historyService) Page(ctx context.Context, groupID int64, page int) (*HistoryPage, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	repo := uow.WinnerHistoryRepository()

	total, err := repo.CountByGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}

	if total == 0 {
		return &HistoryPage{
			Rows:        []*models.WinnerRecord{},
			CurrentPage: 1,
			TotalPages:  1,
			TotalCount:  0,
			PageSize:    historyPageSize,
		}, nil
	}

	totalPages := int((total + historyPageSize - 1) / historyPageSize)
	if page < 1 {
		page = 1
	}
	if page > totalPages {
		page = totalPages
	}

	offset := (page - 1) * historyPageSize
	rows, err := repo.ListPage(ctx, groupID, offset, historyPageSize)
	if err != nil {
		return nil, err
	}

	return &HistoryPage{
		Rows:        rows,
		CurrentPage: page,
		TotalPages:  totalPages,
		TotalCount:  total,
		PageSize:    historyPageSize,
	}, nil
}
