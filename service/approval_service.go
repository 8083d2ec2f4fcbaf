package service

import (
	"context"
	"fmt"

	"github.com/OfficialBika/BikaCommentPicker/events"
	"github.com/OfficialBika/BikaCommentPicker/models"
)

// approvalService implements the owner approval gate
type approvalService struct {
	uowFactory UnitOfWorkFactory
	ownerID    int64
}

// NewApprovalService creates a new approval service
func NewApprovalService(uowFactory UnitOfWorkFactory, ownerID int64) ApprovalService {
	return &approvalService{
		uowFactory: uowFactory,
		ownerID:    ownerID,
	}
}

// IsApproved reports whether the owner has approved the group
func (s *approvalService) IsApproved(ctx context.Context, groupID int64) (bool, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	group, err := uow.ApprovedGroupRepository().Get(ctx, groupID)
	if err != nil {
		return false, err
	}

	return group != nil, nil
}

// Approve approves a group. Re-approval is an idempotent upsert.
// Only the configured owner identity may approve.
func (s *approvalService) Approve(ctx context.Context, groupID, approverID int64) (*models.ApprovedGroup, error) {
	if approverID != s.ownerID {
		return nil, ErrNotOwner
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	group, err := uow.ApprovedGroupRepository().Upsert(ctx, groupID, approverID)
	if err != nil {
		return nil, err
	}

	uow.Publish(events.GroupApprovedEvent{
		GroupID:    groupID,
		ApprovedBy: approverID,
	})

	if err := uow.Commit(); err != nil {
		return nil, err
	}

	return group, nil
}
