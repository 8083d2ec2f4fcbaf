package service

import (
	"context"

	"github.com/OfficialBika/BikaCommentPicker/events"
	"github.com/OfficialBika/BikaCommentPicker/models"

	"github.com/stretchr/testify/mock"
)

// MockApprovedGroupRepository is a mock implementation of ApprovedGroupRepository
type MockApprovedGroupRepository struct {
	mock.Mock
}

func (m *MockApprovedGroupRepository) Get(ctx context.Context, groupID int64) (*models.ApprovedGroup, error) {
	args := m.Called(ctx, groupID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ApprovedGroup), args.Error(1)
}

func (m *MockApprovedGroupRepository) Upsert(ctx context.Context, groupID, approvedBy int64) (*models.ApprovedGroup, error) {
	args := m.Called(ctx, groupID, approvedBy)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ApprovedGroup), args.Error(1)
}

// MockGiveawayPostRepository is a mock implementation of GiveawayPostRepository
type MockGiveawayPostRepository struct {
	mock.Mock
}

func (m *MockGiveawayPostRepository) Upsert(ctx context.Context, channelID, channelPostID int64, mentionTag string, discussionGroupID *int64) (*models.GiveawayPost, error) {
	args := m.Called(ctx, channelID, channelPostID, mentionTag, discussionGroupID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.GiveawayPost), args.Error(1)
}

func (m *MockGiveawayPostRepository) GetPickable(ctx context.Context, channelID, channelPostID int64) (*models.GiveawayPost, error) {
	args := m.Called(ctx, channelID, channelPostID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.GiveawayPost), args.Error(1)
}

func (m *MockGiveawayPostRepository) ClaimForDraw(ctx context.Context, channelID, channelPostID int64) (bool, error) {
	args := m.Called(ctx, channelID, channelPostID)
	return args.Bool(0), args.Error(1)
}

func (m *MockGiveawayPostRepository) ReleaseClaim(ctx context.Context, channelID, channelPostID int64) error {
	args := m.Called(ctx, channelID, channelPostID)
	return args.Error(0)
}

func (m *MockGiveawayPostRepository) MarkPicked(ctx context.Context, channelID, channelPostID int64) error {
	args := m.Called(ctx, channelID, channelPostID)
	return args.Error(0)
}

func (m *MockGiveawayPostRepository) ResetStaleClaims(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// MockEntryRepository is a mock implementation of EntryRepository
type MockEntryRepository struct {
	mock.Mock
}

func (m *MockEntryRepository) Insert(ctx context.Context, entry *models.Entry) (bool, error) {
	args := m.Called(ctx, entry)
	return args.Bool(0), args.Error(1)
}

func (m *MockEntryRepository) ListForPost(ctx context.Context, groupID, channelID, channelPostID int64) ([]*models.Entry, error) {
	args := m.Called(ctx, groupID, channelID, channelPostID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Entry), args.Error(1)
}

func (m *MockEntryRepository) DeleteForPost(ctx context.Context, groupID, channelID, channelPostID int64) (int64, error) {
	args := m.Called(ctx, groupID, channelID, channelPostID)
	return args.Get(0).(int64), args.Error(1)
}

// MockWinnerHistoryRepository is a mock implementation of WinnerHistoryRepository
type MockWinnerHistoryRepository struct {
	mock.Mock
}

func (m *MockWinnerHistoryRepository) CreateBatch(ctx context.Context, records []*models.WinnerRecord) error {
	args := m.Called(ctx, records)
	return args.Error(0)
}

func (m *MockWinnerHistoryRepository) CountByGroup(ctx context.Context, groupID int64) (int64, error) {
	args := m.Called(ctx, groupID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockWinnerHistoryRepository) ListPage(ctx context.Context, groupID int64, offset, limit int) ([]*models.WinnerRecord, error) {
	args := m.Called(ctx, groupID, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.WinnerRecord), args.Error(1)
}

// MockUnitOfWork is a mock implementation of UnitOfWork
type MockUnitOfWork struct {
	mock.Mock

	approvedGroupRepo ApprovedGroupRepository
	giveawayPostRepo  GiveawayPostRepository
	entryRepo         EntryRepository
	winnerHistoryRepo WinnerHistoryRepository

	Published []events.Event
}

// SetRepositories wires the repository mocks this unit of work hands out
func (m *MockUnitOfWork) SetRepositories(
	approvedGroupRepo ApprovedGroupRepository,
	giveawayPostRepo GiveawayPostRepository,
	entryRepo EntryRepository,
	winnerHistoryRepo WinnerHistoryRepository,
) {
	m.approvedGroupRepo = approvedGroupRepo
	m.giveawayPostRepo = giveawayPostRepo
	m.entryRepo = entryRepo
	m.winnerHistoryRepo = winnerHistoryRepo
}

func (m *MockUnitOfWork) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUnitOfWork) Commit() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) Rollback() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) Publish(event events.Event) {
	m.Published = append(m.Published, event)
}

func (m *MockUnitOfWork) ApprovedGroupRepository() ApprovedGroupRepository {
	return m.approvedGroupRepo
}

func (m *MockUnitOfWork) GiveawayPostRepository() GiveawayPostRepository {
	return m.giveawayPostRepo
}

func (m *MockUnitOfWork) EntryRepository() EntryRepository {
	return m.entryRepo
}

func (m *MockUnitOfWork) WinnerHistoryRepository() WinnerHistoryRepository {
	return m.winnerHistoryRepo
}

// MockUnitOfWorkFactory is a mock implementation of UnitOfWorkFactory
type MockUnitOfWorkFactory struct {
	mock.Mock
}

func (m *MockUnitOfWorkFactory) Create() UnitOfWork {
	args := m.Called()
	return args.Get(0).(UnitOfWork)
}

// MockAdminChecker is a mock implementation of AdminChecker
type MockAdminChecker struct {
	mock.Mock
}

func (m *MockAdminChecker) IsGroupAdmin(ctx context.Context, groupID, userID int64) bool {
	args := m.Called(ctx, groupID, userID)
	return args.Bool(0)
}

// MockLinkedGroupResolver is a mock implementation of LinkedGroupResolver
type MockLinkedGroupResolver struct {
	mock.Mock
}

func (m *MockLinkedGroupResolver) LinkedGroupID(ctx context.Context, channelID int64) *int64 {
	args := m.Called(ctx, channelID)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(*int64)
}

// MockCountdownNotifier is a mock implementation of CountdownNotifier
type MockCountdownNotifier struct {
	mock.Mock
}

func (m *MockCountdownNotifier) SendCountdown(ctx context.Context, groupID int64, replyToMessageID int, view CountdownView) (int, error) {
	args := m.Called(ctx, groupID, replyToMessageID, view)
	return args.Int(0), args.Error(1)
}

func (m *MockCountdownNotifier) EditCountdown(ctx context.Context, groupID int64, messageID int, view CountdownView) error {
	args := m.Called(ctx, groupID, messageID, view)
	return args.Error(0)
}

func (m *MockCountdownNotifier) EditResult(ctx context.Context, groupID int64, messageID int, result *DrawResult) error {
	args := m.Called(ctx, groupID, messageID, result)
	return args.Error(0)
}
