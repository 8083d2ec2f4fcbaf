package service

import (
	"context"
	"fmt"
	"time"

	"github.com/OfficialBika/BikaCommentPicker/events"
	"github.com/OfficialBika/BikaCommentPicker/models"
	"github.com/OfficialBika/BikaCommentPicker/random"
	"github.com/google/uuid"

	log "github.com/sirupsen/logrus"
)

const (
	// drawDuration is the fixed suspense delay before winners are drawn
	drawDuration = 20 * time.Second

	// tickInterval is the cadence of in-place status message edits
	tickInterval = time.Second

	// maxWinners caps requested winners regardless of the argument
	maxWinners = 10
)

// pickerService implements the timed winner selection engine
type pickerService struct {
	uowFactory   UnitOfWorkFactory
	adminChecker AdminChecker
	notifier     CountdownNotifier

	// timing is taken from the package constants; tests shorten it
	drawDuration time.Duration
	tickInterval time.Duration
}

// NewPickerService creates a new picker service
func NewPickerService(uowFactory UnitOfWorkFactory, adminChecker AdminChecker, notifier CountdownNotifier) PickerService {
	return &pickerService{
		uowFactory:   uowFactory,
		adminChecker: adminChecker,
		notifier:     notifier,
		drawDuration: drawDuration,
		tickInterval: tickInterval,
	}
}

// PickWinners runs one complete draw: precondition chain, exclusive claim,
// live countdown, uniform draw, and a single transactional commit of
// history + entry purge + picked flag.
func (s *pickerService) PickWinners(ctx context.Context, req DrawRequest) (*DrawResult, error) {
	entries, k, err := s.validateAndClaim(ctx, req)
	if err != nil {
		return nil, err
	}

	drawID := uuid.NewString()
	logger := log.WithFields(log.Fields{
		"drawId":        drawID,
		"groupId":       req.GroupID,
		"channelPostId": req.ChannelPostID,
		"entries":       len(entries),
		"winners":       k,
	})
	logger.Info("Draw started")

	// one tick is one second of countdown at the production interval
	totalSeconds := int(s.drawDuration / s.tickInterval)
	messageID, err := s.notifier.SendCountdown(ctx, req.GroupID, req.ReplyToMessageID, CountdownView{
		EntryCount:   len(entries),
		SecondsLeft:  totalSeconds,
		TotalSeconds: totalSeconds,
		RollingName:  rollingName(entries),
	})
	if err != nil {
		s.releaseClaim(ctx, req)
		return nil, fmt.Errorf("failed to post countdown message: %w", err)
	}

	// The engine always waits out the full duration before drawing; there
	// is no cancellation path for a started countdown.
	s.runCountdown(ctx, req.GroupID, messageID, entries, totalSeconds)

	winners, err := drawWinners(entries, k, req)
	if err != nil {
		s.releaseClaim(ctx, req)
		return nil, err
	}

	result := &DrawResult{
		DrawID:        drawID,
		ChannelID:     req.ChannelID,
		ChannelPostID: req.ChannelPostID,
		EntryCount:    len(entries),
		Winners:       winners,
	}

	if err := s.commit(ctx, req, result); err != nil {
		s.releaseClaim(ctx, req)
		return nil, err
	}

	if err := s.notifier.EditResult(ctx, req.GroupID, messageID, result); err != nil {
		// the draw is committed; a failed final render is only logged
		logger.WithError(err).Warn("Failed to render draw result")
	}

	logger.Info("Draw committed")
	return result, nil
}

// validateAndClaim walks the precondition chain in order, each failure its
// own rejection, and takes the store-level drawing claim so concurrent
// /pickwinner invocations on the same post cannot both proceed.
func (s *pickerService) validateAndClaim(ctx context.Context, req DrawRequest) ([]*models.Entry, int, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	approved, err := uow.ApprovedGroupRepository().Get(ctx, req.GroupID)
	if err != nil {
		return nil, 0, err
	}
	if approved == nil {
		return nil, 0, ErrGroupNotApproved
	}

	// a failed lookup counts as "not admin"
	if !s.adminChecker.IsGroupAdmin(ctx, req.GroupID, req.RequestedBy) {
		return nil, 0, ErrNotGroupAdmin
	}

	k := req.WinnersCount
	if k < 1 {
		k = 1
	}
	if k > maxWinners {
		k = maxWinners
	}

	if !req.HasPostRef {
		return nil, 0, ErrNotReplyToForward
	}

	post, err := uow.GiveawayPostRepository().GetPickable(ctx, req.ChannelID, req.ChannelPostID)
	if err != nil {
		return nil, 0, err
	}
	if post == nil {
		return nil, 0, ErrNoGiveawayPost
	}
	if !post.BelongsToGroup(req.GroupID) {
		return nil, 0, ErrWrongGroup
	}

	entries, err := uow.EntryRepository().ListForPost(ctx, req.GroupID, req.ChannelID, req.ChannelPostID)
	if err != nil {
		return nil, 0, err
	}
	if len(entries) == 0 {
		return nil, 0, ErrNoEntries
	}
	if k > len(entries) {
		k = len(entries)
	}

	claimed, err := uow.GiveawayPostRepository().ClaimForDraw(ctx, req.ChannelID, req.ChannelPostID)
	if err != nil {
		return nil, 0, err
	}
	if !claimed {
		return nil, 0, ErrDrawInProgress
	}

	if err := uow.Commit(); err != nil {
		return nil, 0, err
	}

	return entries, k, nil
}

// runCountdown edits the status message once per tick until the full draw
// duration has elapsed. Edit failures never stop the countdown.
func (s *pickerService) runCountdown(ctx context.Context, groupID int64, messageID int, entries []*models.Entry, totalSeconds int) {
	ticker := time.NewTicker(s.tickInterval)
	defer ticker.Stop()
	done := time.After(s.drawDuration)

	left := totalSeconds
	for {
		select {
		case <-ticker.C:
			left--
			if left <= 0 {
				continue
			}
			view := CountdownView{
				EntryCount:   len(entries),
				SecondsLeft:  left,
				TotalSeconds: totalSeconds,
				RollingName:  rollingName(entries),
			}
			if err := s.notifier.EditCountdown(ctx, groupID, messageID, view); err != nil {
				log.WithError(err).Debug("Countdown edit failed, continuing")
			}
		case <-done:
			return
		}
	}
}

// drawWinners applies a uniform random permutation and takes the first k
// entries, so every entry has equal probability at every position.
func drawWinners(entries []*models.Entry, k int, req DrawRequest) ([]*models.WinnerRecord, error) {
	shuffled := make([]*models.Entry, len(entries))
	copy(shuffled, entries)
	if err := random.Shuffle(shuffled); err != nil {
		return nil, fmt.Errorf("failed to shuffle entries: %w", err)
	}

	winners := make([]*models.WinnerRecord, 0, k)
	for _, e := range shuffled[:k] {
		winners = append(winners, &models.WinnerRecord{
			GroupID:        req.GroupID,
			ChannelID:      req.ChannelID,
			ChannelPostID:  req.ChannelPostID,
			WinnerUserID:   e.UserID,
			WinnerUsername: e.Username,
			WinnerName:     e.DisplayName,
			WinnerComment:  e.Comment,
		})
	}

	return winners, nil
}

// commit finalizes a draw in a single transaction: history rows, entry
// purge, and the picked flag either all land or none do.
func (s *pickerService) commit(ctx context.Context, req DrawRequest, result *DrawResult) error {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	if err := uow.WinnerHistoryRepository().CreateBatch(ctx, result.Winners); err != nil {
		return err
	}

	if _, err := uow.EntryRepository().DeleteForPost(ctx, req.GroupID, req.ChannelID, req.ChannelPostID); err != nil {
		return err
	}

	if err := uow.GiveawayPostRepository().MarkPicked(ctx, req.ChannelID, req.ChannelPostID); err != nil {
		return err
	}

	winnerIDs := make([]int64, 0, len(result.Winners))
	for _, w := range result.Winners {
		winnerIDs = append(winnerIDs, w.WinnerUserID)
	}
	uow.Publish(events.WinnersDrawnEvent{
		DrawID:        result.DrawID,
		GroupID:       req.GroupID,
		ChannelID:     req.ChannelID,
		ChannelPostID: req.ChannelPostID,
		EntryCount:    result.EntryCount,
		WinnerUserIDs: winnerIDs,
	})

	return uow.Commit()
}

// releaseClaim hands the drawing claim back after an aborted draw so the
// post can be drawn again
func (s *pickerService) releaseClaim(ctx context.Context, req DrawRequest) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		log.WithError(err).Error("Failed to begin transaction for claim release")
		return
	}
	defer uow.Rollback()

	if err := uow.GiveawayPostRepository().ReleaseClaim(ctx, req.ChannelID, req.ChannelPostID); err != nil {
		log.WithError(err).WithFields(log.Fields{
			"channelId":     req.ChannelID,
			"channelPostId": req.ChannelPostID,
		}).Error("Failed to release draw claim")
		return
	}

	if err := uow.Commit(); err != nil {
		log.WithError(err).Error("Failed to commit claim release")
	}
}

// rollingName samples a cosmetic entrant handle for the countdown display
func rollingName(entries []*models.Entry) string {
	if len(entries) == 0 {
		return ""
	}
	i, err := random.Intn(len(entries))
	if err != nil {
		i = 0
	}
	return entries[i].Mention()
}
