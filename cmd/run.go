package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/OfficialBika/BikaCommentPicker/bot"
	"github.com/OfficialBika/BikaCommentPicker/config"
	"github.com/OfficialBika/BikaCommentPicker/database"
	"github.com/OfficialBika/BikaCommentPicker/events"
	"github.com/OfficialBika/BikaCommentPicker/repository"
	"github.com/OfficialBika/BikaCommentPicker/service"

	log "github.com/sirupsen/logrus"
)

// Run initializes and starts the application
func Run(ctx context.Context, cfg *config.Config) error {
	log.Info("Starting comment picker bot...")

	db, err := database.NewConnection(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()
	log.Info("Database connection established")

	eventBus := events.NewBus()
	registerEventLogging(eventBus)

	uowFactory := repository.NewUnitOfWorkFactory(db, eventBus)

	// Claims orphaned by a crash mid-countdown would block their posts forever
	if released, err := repository.NewGiveawayPostRepository(db).ResetStaleClaims(ctx); err != nil {
		return fmt.Errorf("failed to reset stale draw claims: %w", err)
	} else if released > 0 {
		log.WithField("count", released).Warn("Released stale draw claims from a previous run")
	}

	api, err := bot.NewSession(cfg)
	if err != nil {
		return fmt.Errorf("failed to create telegram session: %w", err)
	}

	formatter := bot.NewFormatter(cfg.MentionTag, cfg.DisplayTimezone)

	approvalService := service.NewApprovalService(uowFactory, cfg.OwnerID)
	postService := service.NewPostService(uowFactory, bot.NewLinkedGroupResolver(api), cfg.MentionTag)
	entryService := service.NewEntryService(uowFactory)
	pickerService := service.NewPickerService(uowFactory, bot.NewAdminChecker(api), bot.NewCountdownNotifier(api, formatter))
	historyService := service.NewHistoryService(uowFactory)

	tgBot, err := bot.New(cfg, api, formatter, approvalService, postService, entryService, pickerService, historyService)
	if err != nil {
		return fmt.Errorf("failed to initialize telegram bot: %w", err)
	}

	if err := tgBot.Run(ctx); err != nil {
		return fmt.Errorf("bot stopped: %w", err)
	}

	// Give in-flight countdowns and async event handlers a moment to finish
	log.Info("Shutting down bot...")
	time.Sleep(1 * time.Second)
	return nil
}

// registerEventLogging subscribes structured log entries to the domain
// events so a giveaway's lifecycle is traceable from the logs alone.
func registerEventLogging(bus *events.Bus) {
	bus.Subscribe(events.EventTypeGiveawayDetected, func(ctx context.Context, e events.Event) {
		if ev, ok := e.(events.GiveawayDetectedEvent); ok {
			log.WithFields(log.Fields{
				"channel_id": ev.ChannelID,
				"post_id":    ev.ChannelPostID,
			}).Info("Giveaway post detected")
		}
	})

	bus.Subscribe(events.EventTypeWinnersDrawn, func(ctx context.Context, e events.Event) {
		if ev, ok := e.(events.WinnersDrawnEvent); ok {
			log.WithFields(log.Fields{
				"draw_id":     ev.DrawID,
				"channel_id":  ev.ChannelID,
				"post_id":     ev.ChannelPostID,
				"entry_count": ev.EntryCount,
				"winners":     len(ev.WinnerUserIDs),
			}).Info("Winners drawn")
		}
	})

	bus.Subscribe(events.EventTypeGroupApproved, func(ctx context.Context, e events.Event) {
		if ev, ok := e.(events.GroupApprovedEvent); ok {
			log.WithFields(log.Fields{
				"group_id":    ev.GroupID,
				"approved_by": ev.ApprovedBy,
			}).Info("Group approved")
		}
	})
}
