package service

import (
	"context"
	"testing"

	"github.com/OfficialBika/BikaCommentPicker/events"
	"github.com/OfficialBika/BikaCommentPicker/models"

	"github.com/stretchr/testify/assert"
)

const (
	testMentionTag    = "@CommentsPickerBot"
	testChannelID     = int64(-1009876543210)
	testChannelPostID = int64(120)
)

func TestPostService_RecordDetection_WithTag(t *testing.T) {
	ctx := context.Background()

	// Setup mocks
	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockPostRepo := new(MockGiveawayPostRepository)
	mockResolver := new(MockLinkedGroupResolver)

	mockUoW.SetRepositories(nil, mockPostRepo, nil, nil)

	service := NewPostService(mockFactory, mockResolver, testMentionTag)

	linkedGroup := testGroupID
	post := &models.GiveawayPost{
		ChannelID:         testChannelID,
		ChannelPostID:     testChannelPostID,
		DiscussionGroupID: &linkedGroup,
		MentionTag:        testMentionTag,
	}

	// Mock expectations
	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)
	mockResolver.On("LinkedGroupID", ctx, testChannelID).Return(&linkedGroup)
	mockPostRepo.On("Upsert", ctx, testChannelID, testChannelPostID, testMentionTag, &linkedGroup).Return(post, nil)

	result, err := service.RecordDetection(ctx, testChannelID, testChannelPostID,
		"🎁 Big giveaway! Comment below "+testMentionTag+" to enter")

	assert.NoError(t, err)
	assert.NotNil(t, result)
	assert.Equal(t, testChannelPostID, result.ChannelPostID)

	assert.Len(t, mockUoW.Published, 1)
	event, ok := mockUoW.Published[0].(events.GiveawayDetectedEvent)
	assert.True(t, ok)
	assert.Equal(t, testChannelID, event.ChannelID)

	mockPostRepo.AssertExpectations(t)
	mockResolver.AssertExpectations(t)
}

func TestPostService_RecordDetection_WithoutTag(t *testing.T) {
	ctx := context.Background()

	mockFactory := new(MockUnitOfWorkFactory)
	mockResolver := new(MockLinkedGroupResolver)

	service := NewPostService(mockFactory, mockResolver, testMentionTag)

	// an ordinary post never touches the store
	result, err := service.RecordDetection(ctx, testChannelID, testChannelPostID, "Just a regular announcement")

	assert.NoError(t, err)
	assert.Nil(t, result)
	mockFactory.AssertNotCalled(t, "Create")
	mockResolver.AssertNotCalled(t, "LinkedGroupID")
}

func TestPostService_RecordDetection_EmptyText(t *testing.T) {
	ctx := context.Background()

	mockFactory := new(MockUnitOfWorkFactory)
	mockResolver := new(MockLinkedGroupResolver)

	service := NewPostService(mockFactory, mockResolver, testMentionTag)

	result, err := service.RecordDetection(ctx, testChannelID, testChannelPostID, "")

	assert.NoError(t, err)
	assert.Nil(t, result)
	mockFactory.AssertNotCalled(t, "Create")
}

func TestPostService_RecordDetection_ResolverFailure(t *testing.T) {
	ctx := context.Background()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockPostRepo := new(MockGiveawayPostRepository)
	mockResolver := new(MockLinkedGroupResolver)

	mockUoW.SetRepositories(nil, mockPostRepo, nil, nil)

	service := NewPostService(mockFactory, mockResolver, testMentionTag)

	post := &models.GiveawayPost{
		ChannelID:     testChannelID,
		ChannelPostID: testChannelPostID,
		MentionTag:    testMentionTag,
	}

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	// a failed linked-group lookup degrades to nil, detection still lands
	mockResolver.On("LinkedGroupID", ctx, testChannelID).Return(nil)
	mockPostRepo.On("Upsert", ctx, testChannelID, testChannelPostID, testMentionTag, (*int64)(nil)).Return(post, nil)

	result, err := service.RecordDetection(ctx, testChannelID, testChannelPostID, testMentionTag)

	assert.NoError(t, err)
	assert.NotNil(t, result)
	assert.Nil(t, result.DiscussionGroupID)

	mockPostRepo.AssertExpectations(t)
}

func TestPostService_FindPickable(t *testing.T) {
	ctx := context.Background()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockPostRepo := new(MockGiveawayPostRepository)

	mockUoW.SetRepositories(nil, mockPostRepo, nil, nil)

	service := NewPostService(mockFactory, new(MockLinkedGroupResolver), testMentionTag)

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Rollback").Return(nil)

	post := &models.GiveawayPost{ChannelID: testChannelID, ChannelPostID: testChannelPostID}
	mockPostRepo.On("GetPickable", ctx, testChannelID, testChannelPostID).Return(post, nil).Once()

	result, err := service.FindPickable(ctx, testChannelID, testChannelPostID)
	assert.NoError(t, err)
	assert.Equal(t, post, result)

	// picked or unknown posts come back nil without an error
	mockPostRepo.On("GetPickable", ctx, testChannelID, int64(999)).Return(nil, nil).Once()

	result, err = service.FindPickable(ctx, testChannelID, int64(999))
	assert.NoError(t, err)
	assert.Nil(t, result)
}
