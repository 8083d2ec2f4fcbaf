package bot

import (
	"context"

	"github.com/OfficialBika/BikaCommentPicker/service"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"
)

// adminChecker implements service.AdminChecker over the Telegram API
type adminChecker struct {
	api *tgbotapi.BotAPI
}

// NewAdminChecker creates an AdminChecker backed by getChatAdministrators
func NewAdminChecker(api *tgbotapi.BotAPI) service.AdminChecker {
	return &adminChecker{api: api}
}

func (c *adminChecker) IsGroupAdmin(ctx context.Context, groupID, userID int64) bool {
	admins, err := c.api.GetChatAdministrators(tgbotapi.ChatAdministratorsConfig{
		ChatConfig: tgbotapi.ChatConfig{ChatID: groupID},
	})
	if err != nil {
		log.WithFields(log.Fields{
			"group_id": groupID,
			"error":    err,
		}).Warn("Failed to fetch group administrators, denying")
		return false
	}

	for _, admin := range admins {
		if admin.User != nil && admin.User.ID == userID {
			return admin.Status == "creator" || admin.Status == "administrator"
		}
	}
	return false
}

// linkedGroupResolver implements service.LinkedGroupResolver via getChat
type linkedGroupResolver struct {
	api *tgbotapi.BotAPI
}

// NewLinkedGroupResolver creates a resolver for a channel's discussion group
func NewLinkedGroupResolver(api *tgbotapi.BotAPI) service.LinkedGroupResolver {
	return &linkedGroupResolver{api: api}
}

func (r *linkedGroupResolver) LinkedGroupID(ctx context.Context, channelID int64) *int64 {
	chat, err := r.api.GetChat(tgbotapi.ChatInfoConfig{
		ChatConfig: tgbotapi.ChatConfig{ChatID: channelID},
	})
	if err != nil {
		log.WithFields(log.Fields{
			"channel_id": channelID,
			"error":      err,
		}).Debug("Failed to resolve linked discussion group")
		return nil
	}
	if chat.LinkedChatID == 0 {
		return nil
	}
	linked := chat.LinkedChatID
	return &linked
}

// countdownNotifier implements service.CountdownNotifier, rendering the
// live status message through the shared formatter
type countdownNotifier struct {
	api       *tgbotapi.BotAPI
	formatter *Formatter
}

// NewCountdownNotifier creates a notifier delivering draw status messages
func NewCountdownNotifier(api *tgbotapi.BotAPI, formatter *Formatter) service.CountdownNotifier {
	return &countdownNotifier{api: api, formatter: formatter}
}

func (n *countdownNotifier) SendCountdown(ctx context.Context, groupID int64, replyToMessageID int, view service.CountdownView) (int, error) {
	msg := tgbotapi.NewMessage(groupID, n.formatter.Countdown(view))
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyToMessageID = replyToMessageID

	sent, err := n.api.Send(msg)
	if err != nil {
		return 0, err
	}
	return sent.MessageID, nil
}

func (n *countdownNotifier) EditCountdown(ctx context.Context, groupID int64, messageID int, view service.CountdownView) error {
	edit := tgbotapi.NewEditMessageText(groupID, messageID, n.formatter.Countdown(view))
	edit.ParseMode = tgbotapi.ModeHTML
	_, err := n.api.Send(edit)
	return err
}

func (n *countdownNotifier) EditResult(ctx context.Context, groupID int64, messageID int, result *service.DrawResult) error {
	edit := tgbotapi.NewEditMessageText(groupID, messageID, n.formatter.Result(result))
	edit.ParseMode = tgbotapi.ModeHTML
	_, err := n.api.Send(edit)
	return err
}
