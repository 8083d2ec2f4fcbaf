package bot

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/OfficialBika/BikaCommentPicker/service"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"
)

// handleUpdate routes a single update. It runs on its own goroutine.
func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	switch {
	case update.ChannelPost != nil:
		b.handleChannelPost(ctx, update.ChannelPost)
	case update.CallbackQuery != nil:
		b.handleCallback(ctx, update.CallbackQuery)
	case update.Message != nil:
		b.handleMessage(ctx, update.Message)
	}
}

// handleChannelPost feeds every channel post through detection; the
// service decides whether it carries the mention tag.
func (b *Bot) handleChannelPost(ctx context.Context, post *tgbotapi.Message) {
	text := post.Text
	if text == "" {
		text = post.Caption
	}

	_, err := b.postService.RecordDetection(ctx, post.Chat.ID, int64(post.MessageID), text)
	if err != nil {
		log.WithFields(log.Fields{
			"channel_id": post.Chat.ID,
			"post_id":    post.MessageID,
			"error":      err,
		}).Error("Failed to record giveaway detection")
	}
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	if msg.From == nil || msg.From.IsBot {
		return
	}

	if msg.IsCommand() {
		b.handleCommand(ctx, msg)
		return
	}

	if msg.Chat.IsSuperGroup() {
		b.handleGroupMessage(ctx, msg)
	}
}

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	switch msg.Command() {
	case "start":
		b.handleStart(msg)
	case "approve":
		b.handleApprove(ctx, msg)
	case "pickwinner":
		b.handlePickWinner(ctx, msg)
	case "winnerlist":
		b.handleWinnerList(ctx, msg)
	}
}

func (b *Bot) handleStart(msg *tgbotapi.Message) {
	text := b.formatter.Welcome(msg.From)

	if b.cfg.LogoURL != "" {
		photo := tgbotapi.NewPhoto(msg.Chat.ID, tgbotapi.FileURL(b.cfg.LogoURL))
		photo.Caption = text
		photo.ParseMode = tgbotapi.ModeHTML
		if _, err := b.api.Send(photo); err == nil {
			return
		}
		// fall through to plain text when the photo can't be delivered
	}
	b.reply(msg.Chat.ID, 0, text)
}

func (b *Bot) handleApprove(ctx context.Context, msg *tgbotapi.Message) {
	if !msg.Chat.IsSuperGroup() {
		b.reply(msg.Chat.ID, msg.MessageID, "⚠️ /approve only works inside a discussion group (supergroup).")
		return
	}

	_, err := b.approvalService.Approve(ctx, msg.Chat.ID, msg.From.ID)
	if errors.Is(err, service.ErrNotOwner) {
		b.reply(msg.Chat.ID, msg.MessageID, "⛔ Only the bot owner can approve groups.")
		return
	}
	if err != nil {
		log.WithFields(log.Fields{
			"group_id": msg.Chat.ID,
			"error":    err,
		}).Error("Failed to approve group")
		b.reply(msg.Chat.ID, msg.MessageID, "❌ Something went wrong, please try again.")
		return
	}

	b.reply(msg.Chat.ID, msg.MessageID, "✅ <b>This group is approved!</b>\nGiveaway entries are now being collected here.")
}

// handleGroupMessage records a comment entry when the message replies to a
// post auto-forwarded from a channel.
func (b *Bot) handleGroupMessage(ctx context.Context, msg *tgbotapi.Message) {
	channelID, channelPostID, ok := forwardedPostRef(msg.ReplyToMessage)
	if !ok {
		return
	}

	_, err := b.entryService.RecordEntry(ctx, service.EntrySubmission{
		GroupID:          msg.Chat.ID,
		ChannelID:        channelID,
		ChannelPostID:    channelPostID,
		UserID:           msg.From.ID,
		Username:         msg.From.UserName,
		DisplayName:      displayName(msg.From),
		Comment:          commentText(msg),
		CommentMessageID: int64(msg.MessageID),
	})
	if err != nil {
		log.WithFields(log.Fields{
			"group_id": msg.Chat.ID,
			"user_id":  msg.From.ID,
			"error":    err,
		}).Error("Failed to record entry")
	}
}

func (b *Bot) handlePickWinner(ctx context.Context, msg *tgbotapi.Message) {
	if !msg.Chat.IsSuperGroup() {
		b.reply(msg.Chat.ID, msg.MessageID, "⚠️ /pickwinner only works inside a discussion group (supergroup).")
		return
	}

	// a missing or unparseable argument means one winner
	winners := 1
	if args := strings.TrimSpace(msg.CommandArguments()); args != "" {
		if n, err := strconv.Atoi(args); err == nil {
			winners = n
		}
	}

	// the missing-forward precondition is the picker's to reject, after
	// the approval and admin checks
	channelID, channelPostID, hasPostRef := forwardedPostRef(msg.ReplyToMessage)
	replyTo := 0
	if msg.ReplyToMessage != nil {
		replyTo = msg.ReplyToMessage.MessageID
	}

	_, err := b.pickerService.PickWinners(ctx, service.DrawRequest{
		GroupID:          msg.Chat.ID,
		HasPostRef:       hasPostRef,
		ChannelID:        channelID,
		ChannelPostID:    channelPostID,
		RequestedBy:      msg.From.ID,
		WinnersCount:     winners,
		ReplyToMessageID: replyTo,
	})
	if err != nil {
		b.reply(msg.Chat.ID, msg.MessageID, pickErrorText(err))
	}
}

// pickErrorText maps a draw rejection to its user-facing explanation
func pickErrorText(err error) string {
	switch {
	case errors.Is(err, service.ErrGroupNotApproved):
		return "⛔ This group is not approved. The bot owner must send /approve here first."
	case errors.Is(err, service.ErrNotGroupAdmin):
		return "⛔ Only group administrators can pick winners."
	case errors.Is(err, service.ErrNotReplyToForward):
		return "⚠️ Reply to the giveaway post forwarded from your channel, then send /pickwinner."
	case errors.Is(err, service.ErrNoGiveawayPost):
		return "⚠️ That post is not a running giveaway. It may already be finished."
	case errors.Is(err, service.ErrWrongGroup):
		return "⚠️ That giveaway belongs to a different discussion group."
	case errors.Is(err, service.ErrNoEntries):
		return "📭 No entries yet! Nobody has commented on this giveaway post."
	case errors.Is(err, service.ErrDrawInProgress):
		return "🌀 A draw for this post is already running."
	default:
		return "❌ Something went wrong, please try again."
	}
}

func (b *Bot) handleWinnerList(ctx context.Context, msg *tgbotapi.Message) {
	if !msg.Chat.IsSuperGroup() {
		b.reply(msg.Chat.ID, msg.MessageID, "⚠️ /winnerlist only works inside a discussion group (supergroup).")
		return
	}

	approved, err := b.approvalService.IsApproved(ctx, msg.Chat.ID)
	if err != nil {
		log.WithError(err).Error("Failed to check group approval")
		return
	}
	if !approved {
		b.reply(msg.Chat.ID, msg.MessageID, "⛔ This group is not approved. The bot owner must send /approve here first.")
		return
	}

	page := 1
	if args := strings.TrimSpace(msg.CommandArguments()); args != "" {
		if n, err := strconv.Atoi(args); err == nil {
			page = n
		}
	}

	result, err := b.historyService.Page(ctx, msg.Chat.ID, page)
	if err != nil {
		log.WithFields(log.Fields{
			"group_id": msg.Chat.ID,
			"error":    err,
		}).Error("Failed to load winner history")
		b.reply(msg.Chat.ID, msg.MessageID, "❌ Something went wrong, please try again.")
		return
	}

	out := tgbotapi.NewMessage(msg.Chat.ID, b.formatter.History(result))
	out.ParseMode = tgbotapi.ModeHTML
	out.ReplyToMessageID = msg.MessageID
	if result.TotalPages > 1 {
		out.ReplyMarkup = b.formatter.HistoryKeyboard(result)
	}
	if _, err := b.api.Send(out); err != nil {
		log.WithError(err).Warn("Failed to send winner history")
	}
}

// handleCallback serves the winner history pagination buttons. The callback
// is always answered so the client stops its loading spinner.
func (b *Bot) handleCallback(ctx context.Context, q *tgbotapi.CallbackQuery) {
	defer func() {
		if _, err := b.api.Request(tgbotapi.NewCallback(q.ID, "")); err != nil {
			log.WithError(err).Debug("Failed to answer callback query")
		}
	}()

	if q.Message == nil || !strings.HasPrefix(q.Data, "WL_") {
		return
	}
	if q.Data == "WL_NOOP" {
		return
	}

	page, err := strconv.Atoi(strings.TrimPrefix(q.Data, "WL_"))
	if err != nil {
		return
	}

	// stale buttons can outlive an approval or be forwarded elsewhere
	if !q.Message.Chat.IsSuperGroup() {
		return
	}
	groupID := q.Message.Chat.ID
	approved, err := b.approvalService.IsApproved(ctx, groupID)
	if err != nil || !approved {
		return
	}
	result, err := b.historyService.Page(ctx, groupID, page)
	if err != nil {
		log.WithFields(log.Fields{
			"group_id": groupID,
			"error":    err,
		}).Error("Failed to load winner history page")
		return
	}

	edit := tgbotapi.NewEditMessageTextAndMarkup(
		groupID, q.Message.MessageID,
		b.formatter.History(result),
		b.formatter.HistoryKeyboard(result),
	)
	edit.ParseMode = tgbotapi.ModeHTML
	if _, err := b.api.Send(edit); err != nil {
		log.WithError(err).Debug("Failed to edit winner history page")
	}
}

// forwardedPostRef extracts the originating channel post from a message
// auto-forwarded into the discussion group
func forwardedPostRef(reply *tgbotapi.Message) (channelID, channelPostID int64, ok bool) {
	if reply == nil || reply.ForwardFromChat == nil || reply.ForwardFromMessageID == 0 {
		return 0, 0, false
	}
	if !reply.ForwardFromChat.IsChannel() {
		return 0, 0, false
	}
	return reply.ForwardFromChat.ID, int64(reply.ForwardFromMessageID), true
}

// reply sends an HTML message, optionally as a reply
func (b *Bot) reply(chatID int64, replyTo int, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	if replyTo != 0 {
		msg.ReplyToMessageID = replyTo
	}
	if _, err := b.api.Send(msg); err != nil {
		log.WithFields(log.Fields{
			"chat_id": chatID,
			"error":   err,
		}).Warn("Failed to send message")
	}
}
