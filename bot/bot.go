package bot

import (
	"context"
	"fmt"
	"time"

	"github.com/OfficialBika/BikaCommentPicker/config"
	"github.com/OfficialBika/BikaCommentPicker/service"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// webhookPath is the route updates arrive on when running in webhook mode
const webhookPath = "/telegram/comments_picker_webhook"

// Bot wires the Telegram session to the giveaway services
type Bot struct {
	api       *tgbotapi.BotAPI
	cfg       *config.Config
	formatter *Formatter

	approvalService service.ApprovalService
	postService     service.PostService
	entryService    service.EntryService
	pickerService   service.PickerService
	historyService  service.HistoryService
}

// NewSession authorizes the Telegram API session. The session is created
// separately from the bot so the picker's collaborator adapters can share it.
func NewSession(cfg *config.Config) (*tgbotapi.BotAPI, error) {
	api, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return nil, fmt.Errorf("error creating telegram session: %w", err)
	}
	api.Debug = cfg.Debug

	log.WithField("username", api.Self.UserName).Info("Telegram session authorized")
	return api, nil
}

// New wires an authorized session to the giveaway services and registers
// the command menu
func New(
	cfg *config.Config,
	api *tgbotapi.BotAPI,
	formatter *Formatter,
	approvalService service.ApprovalService,
	postService service.PostService,
	entryService service.EntryService,
	pickerService service.PickerService,
	historyService service.HistoryService,
) (*Bot, error) {
	bot := &Bot{
		api:             api,
		cfg:             cfg,
		formatter:       formatter,
		approvalService: approvalService,
		postService:     postService,
		entryService:    entryService,
		pickerService:   pickerService,
		historyService:  historyService,
	}

	if err := bot.registerCommands(); err != nil {
		return nil, fmt.Errorf("error registering command menu: %w", err)
	}
	return bot, nil
}

// Run receives updates until the context is cancelled. With a public URL
// configured it registers a webhook and serves it over HTTP together with
// a health check; otherwise it falls back to long polling.
func (b *Bot) Run(ctx context.Context) error {
	if b.cfg.PublicURL != "" {
		return b.runWebhook(ctx)
	}
	return b.runPolling(ctx)
}

func (b *Bot) runPolling(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30
	updates := b.api.GetUpdatesChan(u)

	log.Info("Bot running in long polling mode")
	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return nil
		case update := <-updates:
			b.dispatch(ctx, update)
		}
	}
}

func (b *Bot) runWebhook(ctx context.Context) error {
	wh, err := tgbotapi.NewWebhook(b.cfg.PublicURL + webhookPath)
	if err != nil {
		return fmt.Errorf("invalid webhook URL: %w", err)
	}
	if _, err := b.api.Request(wh); err != nil {
		return fmt.Errorf("failed to register webhook: %w", err)
	}
	log.WithField("url", b.cfg.PublicURL+webhookPath).Info("Webhook registered")

	if !b.cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())

	// health check for uptime monitors
	router.GET("/", func(c *gin.Context) {
		c.String(200, "OK")
	})

	router.POST(webhookPath, func(c *gin.Context) {
		update, err := b.api.HandleUpdate(c.Request)
		if err != nil {
			log.WithError(err).Error("Failed to parse webhook update")
			c.Status(400)
			return
		}
		b.dispatch(ctx, *update)
		c.Status(200)
	})

	srv := newServer(b.cfg.Port, router)
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.WithField("port", b.cfg.Port).Info("Bot running in webhook mode")
	if err := srv.ListenAndServe(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("webhook server failed: %w", err)
	}
	return nil
}

// dispatch hands each update to its handler on its own goroutine so a
// 20-second countdown never delays other groups' updates. A panic in one
// handler drops that update only.
func (b *Bot) dispatch(ctx context.Context, update tgbotapi.Update) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.WithField("panic", r).Error("Update handler panicked")
			}
		}()
		b.handleUpdate(ctx, update)
	}()
}
