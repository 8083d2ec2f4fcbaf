package service

import (
	"context"
	"fmt"

	"github.com/OfficialBika/BikaCommentPicker/events"
	"github.com/OfficialBika/BikaCommentPicker/models"

	log "github.com/sirupsen/logrus"
)

// entryService implements the comment entry ledger
type entryService struct {
	uowFactory UnitOfWorkFactory
}

// NewEntryService creates a new entry service
func NewEntryService(uowFactory UnitOfWorkFactory) EntryService {
	return &entryService{uowFactory: uowFactory}
}

// RecordEntry persists a qualifying comment entry. Ordinary chatter must not
// be answered, so every unmet precondition is a silent no-op: unapproved
// group, unknown or picked post, a post bound to a different group, and a
// duplicate from the same user. The duplicate case is settled by the store's
// unique constraint, not a pre-check, so racing submissions cannot slip a
// second entry through.
func (s *entryService) RecordEntry(ctx context.Context, sub EntrySubmission) (*models.Entry, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	approved, err := uow.ApprovedGroupRepository().Get(ctx, sub.GroupID)
	if err != nil {
		return nil, err
	}
	if approved == nil {
		return nil, nil
	}

	post, err := uow.GiveawayPostRepository().GetPickable(ctx, sub.ChannelID, sub.ChannelPostID)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, nil
	}
	if !post.BelongsToGroup(sub.GroupID) {
		return nil, nil
	}

	entry := &models.Entry{
		GroupID:          sub.GroupID,
		ChannelID:        sub.ChannelID,
		ChannelPostID:    sub.ChannelPostID,
		UserID:           sub.UserID,
		Username:         sub.Username,
		DisplayName:      sub.DisplayName,
		Comment:          sub.Comment,
		CommentMessageID: sub.CommentMessageID,
	}

	created, err := uow.EntryRepository().Insert(ctx, entry)
	if err != nil {
		return nil, err
	}
	if !created {
		// same user already entered this post
		return nil, nil
	}

	uow.Publish(events.EntryRecordedEvent{
		GroupID:       sub.GroupID,
		ChannelID:     sub.ChannelID,
		ChannelPostID: sub.ChannelPostID,
		UserID:        sub.UserID,
	})

	if err := uow.Commit(); err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"groupId":       sub.GroupID,
		"channelPostId": sub.ChannelPostID,
		"userId":        sub.UserID,
	}).Debug("Entry recorded")

	return entry, nil
}
