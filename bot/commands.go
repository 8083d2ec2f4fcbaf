package bot

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// registerCommands publishes the bot command menu
func (b *Bot) registerCommands() error {
	commands := tgbotapi.NewSetMyCommands(
		tgbotapi.BotCommand{Command: "start", Description: "Welcome / Help"},
		tgbotapi.BotCommand{Command: "approve", Description: "Approve this group (owner only)"},
		tgbotapi.BotCommand{Command: "pickwinner", Description: "Pick winners (reply to giveaway post)"},
		tgbotapi.BotCommand{Command: "winnerlist", Description: "Winner history for this group"},
	)

	if _, err := b.api.Request(commands); err != nil {
		return fmt.Errorf("setMyCommands failed: %w", err)
	}

	return nil
}
