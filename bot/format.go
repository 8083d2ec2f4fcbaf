package bot

import (
	"fmt"
	"strings"
	"time"

	"github.com/OfficialBika/BikaCommentPicker/service"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const separator = "━━━━━━━━━━━━━━━━━━━━"

var htmlEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

// Formatter renders all user-facing HTML messages
type Formatter struct {
	mentionTag string
	loc        *time.Location
}

// NewFormatter creates a formatter rendering timestamps in the given timezone.
// An unknown timezone falls back to UTC.
func NewFormatter(mentionTag, timezone string) *Formatter {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		loc = time.UTC
	}
	return &Formatter{mentionTag: mentionTag, loc: loc}
}

func escapeHTML(s string) string {
	return htmlEscaper.Replace(s)
}

// mentionByID renders a tg://user deep link for users without a username
func mentionByID(userID int64, name string) string {
	if name == "" {
		name = "User"
	}
	return fmt.Sprintf(`<a href="tg://user?id=%d">%s</a>`, userID, escapeHTML(name))
}

// winnerMention prefers the public @username, falling back to a deep link
func winnerMention(userID int64, username, name string) string {
	if username != "" {
		return "@" + escapeHTML(username)
	}
	if name == "" {
		name = "Winner"
	}
	return mentionByID(userID, name)
}

// progressBar renders a 10-slot bar like "██████░░░░  12/20s"
func progressBar(secondsLeft, total int) string {
	const width = 10
	done := total - secondsLeft
	filled := (done * width) / total
	if filled < 0 {
		filled = 0
	}
	if filled > width {
		filled = width
	}
	return fmt.Sprintf("%s%s  %d/%ds",
		strings.Repeat("█", filled),
		strings.Repeat("░", width-filled),
		done, total)
}

// Countdown renders the live draw status message
func (f *Formatter) Countdown(view service.CountdownView) string {
	var sb strings.Builder
	sb.WriteString("<b>🌀 Picking a winner...</b>\n")
	sb.WriteString(separator + "\n")
	fmt.Fprintf(&sb, "<b>📥 Entries</b>: <b>%d</b>\n", view.EntryCount)
	fmt.Fprintf(&sb, "<b>⏳ Countdown</b>: <b>%ds</b>\n\n", view.SecondsLeft)
	sb.WriteString("<b>Progress</b>\n")
	fmt.Fprintf(&sb, "<code>%s</code>", progressBar(view.SecondsLeft, view.TotalSeconds))
	if view.RollingName != "" {
		fmt.Fprintf(&sb, "\n\n<b>🔄 Rolling</b>: <i>%s</i>", escapeHTML(view.RollingName))
	}
	sb.WriteString("\n\n<i>— 𝐂𝐌𝐓 𝐏𝐈𝐂𝐊𝐄𝐑 —</i>")
	return sb.String()
}

// medal returns the rank marker for a winner position (0-based)
func medal(i int) string {
	switch i {
	case 0:
		return "🥇"
	case 1:
		return "🥈"
	case 2:
		return "🥉"
	default:
		return "🏅"
	}
}

// Result renders the final ranked winner list, edited over the countdown
func (f *Formatter) Result(result *service.DrawResult) string {
	var sb strings.Builder
	sb.WriteString("🏆 <b>𝐂𝐌𝐓 𝐏𝐈𝐂𝐊𝐄𝐑 • RESULT</b>\n")
	sb.WriteString(separator + "\n")
	sb.WriteString("🎉 <b>The winners are in!</b>\n")
	fmt.Fprintf(&sb, "🧾 <b>Post</b>: <b>%d</b>\n", result.ChannelPostID)
	fmt.Fprintf(&sb, "👥 <b>Total Entries</b>: <b>%d</b>\n", result.EntryCount)
	fmt.Fprintf(&sb, "🏅 <b>Winners</b>: <b>%d</b>\n\n", len(result.Winners))

	for i, w := range result.Winners {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		fmt.Fprintf(&sb, "%s <b>#%d</b>  %s\n", medal(i), i+1,
			winnerMention(w.WinnerUserID, w.WinnerUsername, w.WinnerName))
		fmt.Fprintf(&sb, "💬 <i>%s</i>", escapeHTML(w.WinnerComment))
	}

	sb.WriteString("\n\n" + separator + "\n")
	fmt.Fprintf(&sb, "🪪 <b>POWERED BY</b> %s", escapeHTML(f.mentionTag))
	return sb.String()
}

// History renders one page of winner history
func (f *Formatter) History(page *service.HistoryPage) string {
	if page.TotalCount == 0 {
		return "📭 <b>WINNER HISTORY</b>\n" + separator + "\nNo winner history in this group yet."
	}

	var sb strings.Builder
	sb.WriteString("🏆 <b>𝐖𝐈𝐍𝐍𝐄𝐑 𝐇𝐈𝐒𝐓𝐎𝐑𝐘</b>\n")
	sb.WriteString(separator + "\n")
	fmt.Fprintf(&sb, "📦 <b>Total Winners</b>: <b>%d</b>\n", page.TotalCount)
	fmt.Fprintf(&sb, "📄 <b>Page</b>: <b>%d/%d</b>\n", page.CurrentPage, page.TotalPages)
	sb.WriteString(separator + "\n\n")

	offset := (page.CurrentPage - 1) * page.PageSize
	for i, w := range page.Rows {
		if i > 0 {
			sb.WriteString("\n\n" + separator + "\n\n")
		}
		fmt.Fprintf(&sb, "🥇 <b>#%d</b>\n", offset+i+1)
		fmt.Fprintf(&sb, "👤 %s\n", winnerMention(w.WinnerUserID, w.WinnerUsername, w.WinnerName))
		fmt.Fprintf(&sb, "🧾 <b>Post</b>: <b>%d</b>\n", w.ChannelPostID)
		fmt.Fprintf(&sb, "🕒 <b>%s</b>\n", escapeHTML(f.formatTime(w.PickedAt)))
		fmt.Fprintf(&sb, "💬 <i>%s</i>", escapeHTML(w.WinnerComment))
	}

	sb.WriteString("\n\n" + separator + "\n")
	fmt.Fprintf(&sb, "🪪 <b>POWERED BY</b> %s", escapeHTML(f.mentionTag))
	return sb.String()
}

// HistoryKeyboard builds the prev/next navigation row for a history page
func (f *Formatter) HistoryKeyboard(page *service.HistoryPage) tgbotapi.InlineKeyboardMarkup {
	var nav []tgbotapi.InlineKeyboardButton
	if page.CurrentPage > 1 {
		nav = append(nav, tgbotapi.NewInlineKeyboardButtonData("⬅️ Prev", fmt.Sprintf("WL_%d", page.CurrentPage-1)))
	}
	nav = append(nav, tgbotapi.NewInlineKeyboardButtonData(
		fmt.Sprintf("📄 %d/%d", page.CurrentPage, page.TotalPages), "WL_NOOP"))
	if page.CurrentPage < page.TotalPages {
		nav = append(nav, tgbotapi.NewInlineKeyboardButtonData("Next ➡️", fmt.Sprintf("WL_%d", page.CurrentPage+1)))
	}
	return tgbotapi.NewInlineKeyboardMarkup(nav)
}

// Welcome renders the /start message
func (f *Formatter) Welcome(from *tgbotapi.User) string {
	name := from.FirstName
	if name == "" {
		name = from.UserName
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "👋 Hello %s!\n\n", mentionByID(from.ID, name))
	sb.WriteString("━━━━━━━━━━━━━━━━\n💜 <b>Welcome To</b> 💜\n🎁 <b>Bika Comment Picker Bot</b>\n━━━━━━━━━━━━━━━━\n\n")
	sb.WriteString("This bot runs fair giveaways for Telegram channels and their discussion groups:\n")
	sb.WriteString("✔️ random winners drawn from post comments\n")
	sb.WriteString("✔️ live countdown with progress and rolling names\n")
	sb.WriteString("✔️ one entry per user per post\n\n")
	sb.WriteString("━━━━━━━━━━━━━━━━\n🚀 <b>Features</b>\n━━━━━━━━━━━━━━━━\n")
	sb.WriteString("• 🎯 Multiple giveaways in parallel\n")
	sb.WriteString("• 🧠 1 user = 1 entry (per post)\n")
	sb.WriteString("• 🌀 20s live draw\n")
	sb.WriteString("• 🏆 Winner history with pagination\n")
	sb.WriteString("• 🔐 Owner approval system\n\n")
	sb.WriteString("━━━━━━━━━━━━━━━━\n📌 <b>How to use</b>\n━━━━━━━━━━━━━━━━\n")
	sb.WriteString("1️⃣ Add the bot to your <b>discussion group (supergroup)</b>\n")
	sb.WriteString("2️⃣ Have the owner send <b>/approve</b> in that group\n")
	fmt.Fprintf(&sb, "3️⃣ Mention %s in your channel giveaway post\n", escapeHTML(f.mentionTag))
	sb.WriteString("4️⃣ Reply to the forwarded post in the group with <b>/pickwinner</b> (or <b>/pickwinner 3</b>)\n\n")
	sb.WriteString("━━━━━━━━━━━━━━━━\n🍀 <b>Good luck and happy giveaway!</b>")
	return sb.String()
}

// formatTime renders a pick timestamp in the display timezone
func (f *Formatter) formatTime(t time.Time) string {
	return t.In(f.loc).Format("02/01/2006 03:04 PM")
}

// displayName joins a user's first and last name, falling back to "User"
func displayName(u *tgbotapi.User) string {
	name := strings.TrimSpace(strings.Join([]string{u.FirstName, u.LastName}, " "))
	if name == "" {
		name = u.UserName
	}
	if name == "" {
		name = "User"
	}
	return name
}

// commentText extracts the entry comment, falling back for media-only messages
func commentText(msg *tgbotapi.Message) string {
	text := msg.Text
	if text == "" {
		text = msg.Caption
	}
	text = strings.TrimSpace(text)
	if text == "" {
		text = "[non-text]"
	}
	return text
}
