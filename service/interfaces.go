package service

import (
	"context"

	"github.com/OfficialBika/BikaCommentPicker/events"
	"github.com/OfficialBika/BikaCommentPicker/models"
)

// ApprovedGroupRepository defines the interface for approved group data access
type ApprovedGroupRepository interface {
	// Get retrieves an approved group by chat id, nil if not approved
	Get(ctx context.Context, groupID int64) (*models.ApprovedGroup, error)

	// Upsert approves a group idempotently
	Upsert(ctx context.Context, groupID, approvedBy int64) (*models.ApprovedGroup, error)
}

// GiveawayPostRepository defines the interface for giveaway post data access
type GiveawayPostRepository interface {
	// Upsert records a detection; repeat detections only refresh the linked group
	Upsert(ctx context.Context, channelID, channelPostID int64, mentionTag string, discussionGroupID *int64) (*models.GiveawayPost, error)

	// GetPickable returns the post only while unpicked, nil otherwise
	GetPickable(ctx context.Context, channelID, channelPostID int64) (*models.GiveawayPost, error)

	// ClaimForDraw atomically takes the exclusive drawing claim on an unpicked post
	ClaimForDraw(ctx context.Context, channelID, channelPostID int64) (bool, error)

	// ReleaseClaim gives the claim back after an aborted draw
	ReleaseClaim(ctx context.Context, channelID, channelPostID int64) error

	// MarkPicked flips the post to picked exactly once
	MarkPicked(ctx context.Context, channelID, channelPostID int64) error

	// ResetStaleClaims clears claims orphaned by a previous process
	ResetStaleClaims(ctx context.Context) (int64, error)
}

// EntryRepository defines the interface for entry data access
type EntryRepository interface {
	// Insert records an entry; false means the unique constraint absorbed a duplicate
	Insert(ctx context.Context, entry *models.Entry) (bool, error)

	// ListForPost returns all entries for a post in no particular order
	ListForPost(ctx context.Context, groupID, channelID, channelPostID int64) ([]*models.Entry, error)

	// DeleteForPost purges every entry for a post
	DeleteForPost(ctx context.Context, groupID, channelID, channelPostID int64) (int64, error)
}

// WinnerHistoryRepository defines the interface for winner history data access
type WinnerHistoryRepository interface {
	// CreateBatch writes one permanent row per winner
	CreateBatch(ctx context.Context, records []*models.WinnerRecord) error

	// CountByGroup returns the total history rows for a group
	CountByGroup(ctx context.Context, groupID int64) (int64, error)

	// ListPage returns one page, most recent pick first
	ListPage(ctx context.Context, groupID int64, offset, limit int) ([]*models.WinnerRecord, error)
}

// UnitOfWork provides transactional access to all repositories. Events
// published through it are emitted only after a successful commit.
type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	Publish(event events.Event)

	ApprovedGroupRepository() ApprovedGroupRepository
	GiveawayPostRepository() GiveawayPostRepository
	EntryRepository() EntryRepository
	WinnerHistoryRepository() WinnerHistoryRepository
}

// UnitOfWorkFactory creates units of work
type UnitOfWorkFactory interface {
	Create() UnitOfWork
}

// AdminChecker reports whether a user administers a group.
// Lookup failures degrade to false, never to an error.
type AdminChecker interface {
	IsGroupAdmin(ctx context.Context, groupID, userID int64) bool
}

// LinkedGroupResolver resolves the discussion group linked to a channel.
// Failures and channels without a linked group both yield nil.
type LinkedGroupResolver interface {
	LinkedGroupID(ctx context.Context, channelID int64) *int64
}

// CountdownView is one rendering of the live draw status message
type CountdownView struct {
	EntryCount   int
	SecondsLeft  int
	TotalSeconds int
	// RollingName is a cosmetic uniformly sampled entrant handle,
	// re-sampled every tick
	RollingName string
}

// CountdownNotifier delivers the live status message and its in-place edits.
// Edit failures during the countdown are the notifier's to swallow.
type CountdownNotifier interface {
	SendCountdown(ctx context.Context, groupID int64, replyToMessageID int, view CountdownView) (messageID int, err error)
	EditCountdown(ctx context.Context, groupID int64, messageID int, view CountdownView) error
	EditResult(ctx context.Context, groupID int64, messageID int, result *DrawResult) error
}

// EntrySubmission carries a candidate comment entry from the bot layer
type EntrySubmission struct {
	GroupID          int64
	ChannelID        int64
	ChannelPostID    int64
	UserID           int64
	Username         string
	DisplayName      string
	Comment          string
	CommentMessageID int64
}

// DrawRequest carries a /pickwinner invocation. Preconditions are checked
// in a fixed order by the picker, so an unapproved group or non-admin
// invoker is rejected for that reason even when the post reference is
// missing too.
type DrawRequest struct {
	GroupID int64
	// HasPostRef is false when the command did not reply to a post
	// forwarded from a channel; ChannelID and ChannelPostID are then zero
	HasPostRef    bool
	ChannelID     int64
	ChannelPostID int64
	// RequestedBy must be a group administrator
	RequestedBy int64
	// WinnersCount is the raw requested k; the service clamps it
	WinnersCount int
	// ReplyToMessageID is the forwarded post's message id inside the group,
	// used to anchor the status message
	ReplyToMessageID int
}

// DrawResult is the outcome of a committed draw
type DrawResult struct {
	DrawID        string
	ChannelID     int64
	ChannelPostID int64
	EntryCount    int
	Winners       []*models.WinnerRecord
}

// HistoryPage is one page of winner history
type HistoryPage struct {
	Rows        []*models.WinnerRecord
	CurrentPage int
	TotalPages  int
	TotalCount  int64
	PageSize    int
}

// ApprovalService gates which groups may use the bot
type ApprovalService interface {
	// IsApproved reports whether a group has been approved by the owner
	IsApproved(ctx context.Context, groupID int64) (bool, error)

	// Approve idempotently approves a group; only the configured owner may call it
	Approve(ctx context.Context, groupID, approverID int64) (*models.ApprovedGroup, error)
}

// PostService tracks detected giveaway posts
type PostService interface {
	// RecordDetection registers a channel post when it carries the mention
	// tag; returns (nil, nil) when the tag is absent
	RecordDetection(ctx context.Context, channelID, channelPostID int64, text string) (*models.GiveawayPost, error)

	// FindPickable returns the unpicked post for the pair, nil otherwise
	FindPickable(ctx context.Context, channelID, channelPostID int64) (*models.GiveawayPost, error)
}

// EntryService records comment entries
type EntryService interface {
	// RecordEntry persists a qualifying entry. Every failed precondition and
	// every duplicate is a silent no-op returning (nil, nil); errors are
	// reserved for store faults.
	RecordEntry(ctx context.Context, sub EntrySubmission) (*models.Entry, error)
}

// PickerService runs the timed winner selection
type PickerService interface {
	// PickWinners validates the request, runs the live countdown, draws the
	// winners, and commits history + cleanup atomically. Rejections are
	// returned as the sentinel errors in errors.go.
	PickWinners(ctx context.Context, req DrawRequest) (*DrawResult, error)
}

// HistoryService reads winner history
type HistoryService interface {
	// Page returns the requested page with the page number clamped into range
	Page(ctx context.Context, groupID int64, page int) (*HistoryPage, error)
}
