package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/OfficialBika/BikaCommentPicker/events"
	"github.com/OfficialBika/BikaCommentPicker/models"
)

// postService implements giveaway post detection and lookup
type postService struct {
	uowFactory   UnitOfWorkFactory
	linkResolver LinkedGroupResolver
	mentionTag   string
}

// NewPostService creates a new post service
func NewPostService(uowFactory UnitOfWorkFactory, linkResolver LinkedGroupResolver, mentionTag string) PostService {
	return &postService{
		uowFactory:   uowFactory,
		linkResolver: linkResolver,
		mentionTag:   mentionTag,
	}
}

// RecordDetection registers a channel post as a giveaway when its text
// carries the mention tag. Detection is idempotent on (channel, post):
// repeat broadcasts only refresh the linked discussion group.
func (s *postService) RecordDetection(ctx context.Context, channelID, channelPostID int64, text string) (*models.GiveawayPost, error) {
	if text == "" || !strings.Contains(text, s.mentionTag) {
		return nil, nil
	}

	// Best-effort: an unknown linked group is stored as NULL and the
	// binding check is skipped downstream.
	discussionGroupID := s.linkResolver.LinkedGroupID(ctx, channelID)

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	post, err := uow.GiveawayPostRepository().Upsert(ctx, channelID, channelPostID, s.mentionTag, discussionGroupID)
	if err != nil {
		return nil, err
	}

	uow.Publish(events.GiveawayDetectedEvent{
		ChannelID:         channelID,
		ChannelPostID:     channelPostID,
		DiscussionGroupID: discussionGroupID,
	})

	if err := uow.Commit(); err != nil {
		return nil, err
	}

	return post, nil
}

// FindPickable returns the unpicked post for the pair, nil when unknown or picked
func (s *postService) FindPickable(ctx context.Context, channelID, channelPostID int64) (*models.GiveawayPost, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	return uow.GiveawayPostRepository().GetPickable(ctx, channelID, channelPostID)
}
