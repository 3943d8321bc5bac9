package telegram

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"weightbot/internal/app"
	"weightbot/internal/backup"
)

// Inline keyboard callback data.
const (
	cbStats     = "admin_stats"
	cbUsers     = "admin_users"
	cbUsersMore = "admin_users_more"
)

// Page sizes for the user list.
const (
	usersPage     = 10
	usersPageMore = 20
)

func statsKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("User list", cbUsers)),
	)
}

func usersKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Back to statistics", cbStats),
			tgbotapi.NewInlineKeyboardButtonData(fmt.Sprintf("Show %d", usersPageMore), cbUsersMore),
		),
	)
}

func usersMoreKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("Back to statistics", cbStats)),
	)
}

func (b *Bot) adminError(chatID int64, what string, err error) {
	b.log.Error(what+" failed", zap.Error(err))
	b.reply(chatID, "Error: "+err.Error())
}

func (b *Bot) handleStats(ctx context.Context, msg *tgbotapi.Message) {
	s, err := b.reports.GlobalSummary(ctx)
	if err != nil {
		b.adminError(msg.Chat.ID, "stats", err)
		return
	}
	out := tgbotapi.NewMessage(msg.Chat.ID, formatSummary(s))
	out.ReplyMarkup = statsKeyboard()
	b.send(out)
}

func (b *Bot) handleUsers(ctx context.Context, msg *tgbotapi.Message) {
	users, err := b.reports.UserList(ctx, usersPageMore)
	if err != nil {
		b.adminError(msg.Chat.ID, "users", err)
		return
	}
	for _, part := range splitMessage(formatUserList("Users", users), maxMessageLen) {
		b.reply(msg.Chat.ID, part)
	}
}

func (b *Bot) handleUser(ctx context.Context, msg *tgbotapi.Message) {
	arg := strings.TrimSpace(msg.CommandArguments())
	if arg == "" {
		b.reply(msg.Chat.ID, "Give a user ID: /user 123456789")
		return
	}
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		b.reply(msg.Chat.ID, "The user ID must be a number.")
		return
	}

	d, err := b.reports.UserDetail(ctx, id)
	if errors.Is(err, app.ErrUserNotFound) {
		b.reply(msg.Chat.ID, fmt.Sprintf("User %d not found.", id))
		return
	}
	if err != nil {
		b.adminError(msg.Chat.ID, "user detail", err)
		return
	}
	for _, part := range splitMessage(formatUserDetail(d), maxMessageLen) {
		b.reply(msg.Chat.ID, part)
	}
}

func (b *Bot) handleBackup(ctx context.Context, msg *tgbotapi.Message) {
	if b.backups == nil {
		b.reply(msg.Chat.ID, "Backups are not available for this store.")
		return
	}
	b.reply(msg.Chat.ID, "Creating a backup...")

	art, err := b.backups.RunOnce(ctx)
	switch {
	case errors.Is(err, backup.ErrDelivery):
		b.log.Warn("backup delivery failed", zap.Error(err))
		b.reply(msg.Chat.ID, fmt.Sprintf("Backup created: %s, but sending it failed: %v", art.Path, err))
	case err != nil:
		b.adminError(msg.Chat.ID, "backup", err)
	default:
		b.reply(msg.Chat.ID, "Backup created: "+art.Path)
	}
}

func (b *Bot) handleCallback(ctx context.Context, q *tgbotapi.CallbackQuery) {
	if _, err := b.api.Request(tgbotapi.NewCallback(q.ID, "")); err != nil {
		b.log.Warn("answer callback failed", zap.Error(err))
	}
	if q.Message == nil || q.Message.Chat == nil {
		return
	}
	chatID, msgID := q.Message.Chat.ID, q.Message.MessageID

	if !b.isAdmin(q.From) {
		b.send(tgbotapi.NewEditMessageText(chatID, msgID, "This action is for the administrator only."))
		return
	}

	var (
		text     string
		keyboard tgbotapi.InlineKeyboardMarkup
	)
	switch q.Data {
	case cbStats:
		s, err := b.reports.GlobalSummary(ctx)
		if err != nil {
			b.editError(chatID, msgID, err)
			return
		}
		text, keyboard = formatSummary(s), statsKeyboard()
	case cbUsers, cbUsersMore:
		limit, title, kb := usersPage, fmt.Sprintf("Last %d users", usersPage), usersKeyboard()
		if q.Data == cbUsersMore {
			limit, title, kb = usersPageMore, fmt.Sprintf("Last %d users", usersPageMore), usersMoreKeyboard()
		}
		users, err := b.reports.UserList(ctx, limit)
		if err != nil {
			b.editError(chatID, msgID, err)
			return
		}
		text, keyboard = formatUserList(title, users), kb
	default:
		b.log.Warn("unknown callback", zap.String("data", q.Data))
		return
	}

	parts := splitMessage(text, maxMessageLen)
	if len(parts) == 1 {
		b.send(tgbotapi.NewEditMessageTextAndMarkup(chatID, msgID, text, keyboard))
		return
	}
	header := strings.SplitN(text, "\n", 2)[0] + fmt.Sprintf(" (%d parts below)", len(parts))
	b.send(tgbotapi.NewEditMessageTextAndMarkup(chatID, msgID, header, keyboard))
	for _, part := range parts {
		b.reply(chatID, part)
	}
}

func (b *Bot) editError(chatID int64, msgID int, err error) {
	b.log.Error("admin callback failed", zap.Error(err))
	b.send(tgbotapi.NewEditMessageText(chatID, msgID, "Error: "+err.Error()))
}
