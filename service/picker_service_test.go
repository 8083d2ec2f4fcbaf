package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/OfficialBika/BikaCommentPicker/events"
	"github.com/OfficialBika/BikaCommentPicker/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

const testAdminID = int64(424242)

// pickerFixture bundles the full mock graph a draw touches
type pickerFixture struct {
	factory   *MockUnitOfWorkFactory
	uow       *MockUnitOfWork
	groupRepo *MockApprovedGroupRepository
	postRepo  *MockGiveawayPostRepository
	entryRepo *MockEntryRepository
	histRepo  *MockWinnerHistoryRepository
	admin     *MockAdminChecker
	notifier  *MockCountdownNotifier
	service   *pickerService
}

// newPickerFixture builds a picker with the countdown shortened so tests
// finish in tens of milliseconds
func newPickerFixture(ctx context.Context) *pickerFixture {
	f := &pickerFixture{
		factory:   new(MockUnitOfWorkFactory),
		uow:       new(MockUnitOfWork),
		groupRepo: new(MockApprovedGroupRepository),
		postRepo:  new(MockGiveawayPostRepository),
		entryRepo: new(MockEntryRepository),
		histRepo:  new(MockWinnerHistoryRepository),
		admin:     new(MockAdminChecker),
		notifier:  new(MockCountdownNotifier),
	}
	f.uow.SetRepositories(f.groupRepo, f.postRepo, f.entryRepo, f.histRepo)

	f.factory.On("Create").Return(f.uow)
	f.uow.On("Begin", ctx).Return(nil)
	f.uow.On("Commit").Return(nil)
	f.uow.On("Rollback").Return(nil)

	f.service = NewPickerService(f.factory, f.admin, f.notifier).(*pickerService)
	f.service.drawDuration = 40 * time.Millisecond
	f.service.tickInterval = 10 * time.Millisecond
	return f
}

func testRequest(k int) DrawRequest {
	return DrawRequest{
		GroupID:          testGroupID,
		HasPostRef:       true,
		ChannelID:        testChannelID,
		ChannelPostID:    testChannelPostID,
		RequestedBy:      testAdminID,
		WinnersCount:     k,
		ReplyToMessageID: 300,
	}
}

func testEntries(n int) []*models.Entry {
	entries := make([]*models.Entry, n)
	for i := range entries {
		entries[i] = &models.Entry{
			ID:            int64(i + 1),
			GroupID:       testGroupID,
			ChannelID:     testChannelID,
			ChannelPostID: testChannelPostID,
			UserID:        int64(1000 + i),
			Username:      "user" + string(rune('a'+i)),
			DisplayName:   "User " + string(rune('A'+i)),
			Comment:       "pick me",
		}
	}
	return entries
}

// expectValidDraw wires the happy precondition chain through to the claim
func (f *pickerFixture) expectValidDraw(ctx context.Context, entries []*models.Entry) {
	linkedGroup := testGroupID
	f.groupRepo.On("Get", ctx, testGroupID).Return(&models.ApprovedGroup{GroupID: testGroupID}, nil)
	f.admin.On("IsGroupAdmin", ctx, testGroupID, testAdminID).Return(true)
	f.postRepo.On("GetPickable", ctx, testChannelID, testChannelPostID).Return(&models.GiveawayPost{
		ChannelID:         testChannelID,
		ChannelPostID:     testChannelPostID,
		DiscussionGroupID: &linkedGroup,
	}, nil)
	f.entryRepo.On("ListForPost", ctx, testGroupID, testChannelID, testChannelPostID).Return(entries, nil)
	f.postRepo.On("ClaimForDraw", ctx, testChannelID, testChannelPostID).Return(true, nil)
}

func TestPickerService_PickWinners_Success(t *testing.T) {
	ctx := context.Background()
	f := newPickerFixture(ctx)

	entries := testEntries(5)
	f.expectValidDraw(ctx, entries)

	f.notifier.On("SendCountdown", ctx, testGroupID, 300, mock.MatchedBy(func(v CountdownView) bool {
		return v.EntryCount == 5 && v.SecondsLeft == v.TotalSeconds
	})).Return(42, nil)
	f.notifier.On("EditCountdown", ctx, testGroupID, 42, mock.Anything).Return(nil)

	f.histRepo.On("CreateBatch", ctx, mock.MatchedBy(func(records []*models.WinnerRecord) bool {
		return len(records) == 2
	})).Return(nil)
	f.entryRepo.On("DeleteForPost", ctx, testGroupID, testChannelID, testChannelPostID).Return(int64(5), nil)
	f.postRepo.On("MarkPicked", ctx, testChannelID, testChannelPostID).Return(nil)
	f.notifier.On("EditResult", ctx, testGroupID, 42, mock.Anything).Return(nil)

	result, err := f.service.PickWinners(ctx, testRequest(2))

	assert.NoError(t, err)
	assert.NotNil(t, result)
	assert.NotEmpty(t, result.DrawID)
	assert.Equal(t, 5, result.EntryCount)
	assert.Len(t, result.Winners, 2)

	// winners are distinct entrants drawn from the pool
	seen := make(map[int64]bool)
	for _, w := range result.Winners {
		assert.False(t, seen[w.WinnerUserID])
		seen[w.WinnerUserID] = true
		assert.GreaterOrEqual(t, w.WinnerUserID, int64(1000))
		assert.Less(t, w.WinnerUserID, int64(1005))
	}

	// the committed draw publishes exactly one winners event
	var drawn []events.WinnersDrawnEvent
	for _, e := range f.uow.Published {
		if ev, ok := e.(events.WinnersDrawnEvent); ok {
			drawn = append(drawn, ev)
		}
	}
	assert.Len(t, drawn, 1)
	assert.Equal(t, result.DrawID, drawn[0].DrawID)
	assert.Len(t, drawn[0].WinnerUserIDs, 2)

	f.postRepo.AssertExpectations(t)
	f.histRepo.AssertExpectations(t)
	f.notifier.AssertExpectations(t)
}

func TestPickerService_PickWinners_ClampsToEntryCount(t *testing.T) {
	ctx := context.Background()
	f := newPickerFixture(ctx)

	entries := testEntries(3)
	f.expectValidDraw(ctx, entries)

	f.notifier.On("SendCountdown", ctx, testGroupID, 300, mock.Anything).Return(42, nil)
	f.notifier.On("EditCountdown", ctx, testGroupID, 42, mock.Anything).Return(nil).Maybe()
	f.histRepo.On("CreateBatch", ctx, mock.Anything).Return(nil)
	f.entryRepo.On("DeleteForPost", ctx, testGroupID, testChannelID, testChannelPostID).Return(int64(3), nil)
	f.postRepo.On("MarkPicked", ctx, testChannelID, testChannelPostID).Return(nil)
	f.notifier.On("EditResult", ctx, testGroupID, 42, mock.Anything).Return(nil)

	// asking for 99 winners with 3 entries draws all 3
	result, err := f.service.PickWinners(ctx, testRequest(99))

	assert.NoError(t, err)
	assert.Len(t, result.Winners, 3)
}

func TestPickerService_PickWinners_DefaultsToOneWinner(t *testing.T) {
	ctx := context.Background()
	f := newPickerFixture(ctx)

	entries := testEntries(4)
	f.expectValidDraw(ctx, entries)

	f.notifier.On("SendCountdown", ctx, testGroupID, 300, mock.Anything).Return(42, nil)
	f.notifier.On("EditCountdown", ctx, testGroupID, 42, mock.Anything).Return(nil).Maybe()
	f.histRepo.On("CreateBatch", ctx, mock.Anything).Return(nil)
	f.entryRepo.On("DeleteForPost", ctx, testGroupID, testChannelID, testChannelPostID).Return(int64(4), nil)
	f.postRepo.On("MarkPicked", ctx, testChannelID, testChannelPostID).Return(nil)
	f.notifier.On("EditResult", ctx, testGroupID, 42, mock.Anything).Return(nil)

	result, err := f.service.PickWinners(ctx, testRequest(0))

	assert.NoError(t, err)
	assert.Len(t, result.Winners, 1)
}

func TestPickerService_PickWinners_GroupNotApproved(t *testing.T) {
	ctx := context.Background()
	f := newPickerFixture(ctx)

	f.groupRepo.On("Get", ctx, testGroupID).Return(nil, nil)

	result, err := f.service.PickWinners(ctx, testRequest(1))

	assert.ErrorIs(t, err, ErrGroupNotApproved)
	assert.Nil(t, result)
	f.notifier.AssertNotCalled(t, "SendCountdown")
}

func TestPickerService_PickWinners_NotAdmin(t *testing.T) {
	ctx := context.Background()
	f := newPickerFixture(ctx)

	f.groupRepo.On("Get", ctx, testGroupID).Return(&models.ApprovedGroup{GroupID: testGroupID}, nil)
	f.admin.On("IsGroupAdmin", ctx, testGroupID, testAdminID).Return(false)

	result, err := f.service.PickWinners(ctx, testRequest(1))

	assert.ErrorIs(t, err, ErrNotGroupAdmin)
	assert.Nil(t, result)
	f.postRepo.AssertNotCalled(t, "GetPickable")
}

func TestPickerService_PickWinners_NotReplyToForward(t *testing.T) {
	ctx := context.Background()
	f := newPickerFixture(ctx)

	f.groupRepo.On("Get", ctx, testGroupID).Return(&models.ApprovedGroup{GroupID: testGroupID}, nil)
	f.admin.On("IsGroupAdmin", ctx, testGroupID, testAdminID).Return(true)

	req := testRequest(1)
	req.HasPostRef = false
	req.ChannelID = 0
	req.ChannelPostID = 0

	result, err := f.service.PickWinners(ctx, req)

	assert.ErrorIs(t, err, ErrNotReplyToForward)
	assert.Nil(t, result)
	f.postRepo.AssertNotCalled(t, "GetPickable")
}

func TestPickerService_PickWinners_RejectionOrder(t *testing.T) {
	ctx := context.Background()

	// approval is checked before the post reference
	t.Run("unapproved group wins over missing forward", func(t *testing.T) {
		f := newPickerFixture(ctx)
		f.groupRepo.On("Get", ctx, testGroupID).Return(nil, nil)

		req := testRequest(1)
		req.HasPostRef = false

		_, err := f.service.PickWinners(ctx, req)
		assert.ErrorIs(t, err, ErrGroupNotApproved)
	})

	// and so is the admin check
	t.Run("non-admin wins over missing forward", func(t *testing.T) {
		f := newPickerFixture(ctx)
		f.groupRepo.On("Get", ctx, testGroupID).Return(&models.ApprovedGroup{GroupID: testGroupID}, nil)
		f.admin.On("IsGroupAdmin", ctx, testGroupID, testAdminID).Return(false)

		req := testRequest(1)
		req.HasPostRef = false

		_, err := f.service.PickWinners(ctx, req)
		assert.ErrorIs(t, err, ErrNotGroupAdmin)
	})
}

func TestPickerService_PickWinners_NoGiveawayPost(t *testing.T) {
	ctx := context.Background()
	f := newPickerFixture(ctx)

	f.groupRepo.On("Get", ctx, testGroupID).Return(&models.ApprovedGroup{GroupID: testGroupID}, nil)
	f.admin.On("IsGroupAdmin", ctx, testGroupID, testAdminID).Return(true)
	f.postRepo.On("GetPickable", ctx, testChannelID, testChannelPostID).Return(nil, nil)

	result, err := f.service.PickWinners(ctx, testRequest(1))

	assert.ErrorIs(t, err, ErrNoGiveawayPost)
	assert.Nil(t, result)
}

func TestPickerService_PickWinners_WrongGroup(t *testing.T) {
	ctx := context.Background()
	f := newPickerFixture(ctx)

	otherGroup := int64(-100999)
	f.groupRepo.On("Get", ctx, testGroupID).Return(&models.ApprovedGroup{GroupID: testGroupID}, nil)
	f.admin.On("IsGroupAdmin", ctx, testGroupID, testAdminID).Return(true)
	f.postRepo.On("GetPickable", ctx, testChannelID, testChannelPostID).Return(&models.GiveawayPost{
		ChannelID:         testChannelID,
		ChannelPostID:     testChannelPostID,
		DiscussionGroupID: &otherGroup,
	}, nil)

	result, err := f.service.PickWinners(ctx, testRequest(1))

	assert.ErrorIs(t, err, ErrWrongGroup)
	assert.Nil(t, result)
}

func TestPickerService_PickWinners_NoEntries(t *testing.T) {
	ctx := context.Background()
	f := newPickerFixture(ctx)

	linkedGroup := testGroupID
	f.groupRepo.On("Get", ctx, testGroupID).Return(&models.ApprovedGroup{GroupID: testGroupID}, nil)
	f.admin.On("IsGroupAdmin", ctx, testGroupID, testAdminID).Return(true)
	f.postRepo.On("GetPickable", ctx, testChannelID, testChannelPostID).Return(&models.GiveawayPost{
		ChannelID:         testChannelID,
		ChannelPostID:     testChannelPostID,
		DiscussionGroupID: &linkedGroup,
	}, nil)
	f.entryRepo.On("ListForPost", ctx, testGroupID, testChannelID, testChannelPostID).Return([]*models.Entry{}, nil)

	result, err := f.service.PickWinners(ctx, testRequest(1))

	assert.ErrorIs(t, err, ErrNoEntries)
	assert.Nil(t, result)
	f.postRepo.AssertNotCalled(t, "ClaimForDraw")
}

func TestPickerService_PickWinners_DrawInProgress(t *testing.T) {
	ctx := context.Background()
	f := newPickerFixture(ctx)

	linkedGroup := testGroupID
	f.groupRepo.On("Get", ctx, testGroupID).Return(&models.ApprovedGroup{GroupID: testGroupID}, nil)
	f.admin.On("IsGroupAdmin", ctx, testGroupID, testAdminID).Return(true)
	f.postRepo.On("GetPickable", ctx, testChannelID, testChannelPostID).Return(&models.GiveawayPost{
		ChannelID:         testChannelID,
		ChannelPostID:     testChannelPostID,
		DiscussionGroupID: &linkedGroup,
	}, nil)
	f.entryRepo.On("ListForPost", ctx, testGroupID, testChannelID, testChannelPostID).Return(testEntries(2), nil)

	// another invocation already holds the claim
	f.postRepo.On("ClaimForDraw", ctx, testChannelID, testChannelPostID).Return(false, nil)

	result, err := f.service.PickWinners(ctx, testRequest(1))

	assert.ErrorIs(t, err, ErrDrawInProgress)
	assert.Nil(t, result)
	f.notifier.AssertNotCalled(t, "SendCountdown")
}

func TestPickerService_PickWinners_CountdownSendFailureReleasesClaim(t *testing.T) {
	ctx := context.Background()
	f := newPickerFixture(ctx)

	f.expectValidDraw(ctx, testEntries(3))

	sendErr := errors.New("chat not found")
	f.notifier.On("SendCountdown", ctx, testGroupID, 300, mock.Anything).Return(0, sendErr)
	f.postRepo.On("ReleaseClaim", ctx, testChannelID, testChannelPostID).Return(nil)

	result, err := f.service.PickWinners(ctx, testRequest(1))

	assert.ErrorIs(t, err, sendErr)
	assert.Nil(t, result)
	f.postRepo.AssertCalled(t, "ReleaseClaim", ctx, testChannelID, testChannelPostID)
	f.histRepo.AssertNotCalled(t, "CreateBatch")
}

func TestPickerService_PickWinners_CommitFailureReleasesClaim(t *testing.T) {
	ctx := context.Background()
	f := newPickerFixture(ctx)

	f.expectValidDraw(ctx, testEntries(3))

	f.notifier.On("SendCountdown", ctx, testGroupID, 300, mock.Anything).Return(42, nil)
	f.notifier.On("EditCountdown", ctx, testGroupID, 42, mock.Anything).Return(nil).Maybe()

	commitErr := errors.New("history insert failed")
	f.histRepo.On("CreateBatch", ctx, mock.Anything).Return(commitErr)
	f.postRepo.On("ReleaseClaim", ctx, testChannelID, testChannelPostID).Return(nil)

	result, err := f.service.PickWinners(ctx, testRequest(1))

	assert.ErrorIs(t, err, commitErr)
	assert.Nil(t, result)
	f.postRepo.AssertCalled(t, "ReleaseClaim", ctx, testChannelID, testChannelPostID)
	f.postRepo.AssertNotCalled(t, "MarkPicked")
}

func TestPickerService_PickWinners_EditFailuresDoNotAbort(t *testing.T) {
	ctx := context.Background()
	f := newPickerFixture(ctx)

	f.expectValidDraw(ctx, testEntries(2))

	f.notifier.On("SendCountdown", ctx, testGroupID, 300, mock.Anything).Return(42, nil)

	// every in-countdown edit fails and the final render fails too;
	// the draw still commits
	f.notifier.On("EditCountdown", ctx, testGroupID, 42, mock.Anything).Return(errors.New("message not modified"))
	f.histRepo.On("CreateBatch", ctx, mock.Anything).Return(nil)
	f.entryRepo.On("DeleteForPost", ctx, testGroupID, testChannelID, testChannelPostID).Return(int64(2), nil)
	f.postRepo.On("MarkPicked", ctx, testChannelID, testChannelPostID).Return(nil)
	f.notifier.On("EditResult", ctx, testGroupID, 42, mock.Anything).Return(errors.New("edit failed"))

	result, err := f.service.PickWinners(ctx, testRequest(1))

	assert.NoError(t, err)
	assert.NotNil(t, result)
	assert.Len(t, result.Winners, 1)
	f.postRepo.AssertNotCalled(t, "ReleaseClaim")
}
