package telegram

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"weightbot/internal/app"
	"weightbot/internal/domain"
)

const (
	helpText = `How to use the bot:

Send your weight in kilograms, for example 75.5, 80 or 68,3.

Commands:
/start - start
/last - your last measurement
/history - your last 10 measurements
/delete - delete your last measurement
/clear - delete all your measurements
/help - this help

Tip: weigh yourself at the same time every day.`

	adminOnlyText   = "This command is for the administrator only."
	storeFailedText = "Something went wrong, please try again later."
	noRecordsText   = "You have no measurements yet. Send me your weight!"
)

func (b *Bot) handleStart(ctx context.Context, msg *tgbotapi.Message) {
	u := userFrom(msg.From)
	if err := b.measurements.Register(ctx, u); err != nil {
		b.log.Error("register failed", zap.Int64("user_id", u.ID), zap.Error(err))
		b.reply(msg.Chat.ID, storeFailedText)
		return
	}
	name := u.FirstName
	if name == "" {
		name = "there"
	}
	b.reply(msg.Chat.ID, fmt.Sprintf("Hi, %s!\n\nI track your weight. Just send it to me in kilograms and I will show how it changes.\n\n%s", name, helpText))
}

func (b *Bot) handleWeight(ctx context.Context, msg *tgbotapi.Message) {
	u := userFrom(msg.From)
	res, err := b.measurements.SubmitWeight(ctx, u, msg.Text)
	switch {
	case errors.Is(err, domain.ErrInvalidWeight):
		b.reply(msg.Chat.ID, "Please send your weight as a number, for example 75.5 or 80.")
		return
	case errors.Is(err, domain.ErrWeightOutOfRange):
		b.reply(msg.Chat.ID, fmt.Sprintf("Please enter a realistic weight (%s-%s kg).",
			domain.FormatWeight(domain.MinWeight), domain.FormatWeight(domain.MaxWeight)))
		return
	case err != nil:
		b.log.Error("submit weight failed", zap.Int64("user_id", u.ID), zap.Error(err))
		b.reply(msg.Chat.ID, storeFailedText)
		return
	}
	b.reply(msg.Chat.ID, formatSubmit(res))
}

func (b *Bot) handleLast(ctx context.Context, msg *tgbotapi.Message) {
	m, err := b.measurements.Last(ctx, msg.From.ID)
	if err != nil {
		b.log.Error("last failed", zap.Int64("user_id", msg.From.ID), zap.Error(err))
		b.reply(msg.Chat.ID, storeFailedText)
		return
	}
	if m == nil {
		b.reply(msg.Chat.ID, noRecordsText)
		return
	}
	b.reply(msg.Chat.ID, fmt.Sprintf("Last measurement: %s\nWeight: %s kg", formatDateTime(m.At), domain.FormatWeight(m.Weight)))
}

func (b *Bot) handleHistory(ctx context.Context, msg *tgbotapi.Message) {
	items, err := b.measurements.History(ctx, msg.From.ID, app.DefaultHistoryLimit)
	if err != nil {
		b.log.Error("history failed", zap.Int64("user_id", msg.From.ID), zap.Error(err))
		b.reply(msg.Chat.ID, storeFailedText)
		return
	}
	if len(items) == 0 {
		b.reply(msg.Chat.ID, "You have no measurements yet.")
		return
	}

	var sb strings.Builder
	sb.WriteString("Your measurements:\n\n")
	for i, m := range items {
		fmt.Fprintf(&sb, "%d. %s: %s kg\n", i+1, formatDate(m.At), domain.FormatWeight(m.Weight))
	}
	if change, trend, ok := app.HistoryChange(items); ok {
		sb.WriteString("\n")
		sb.WriteString(changeLine("Total change", change, trend))
	}
	b.reply(msg.Chat.ID, sb.String())
}

func (b *Bot) handleDelete(ctx context.Context, msg *tgbotapi.Message) {
	m, err := b.measurements.DeleteLast(ctx, msg.From.ID)
	if err != nil {
		b.log.Error("delete last failed", zap.Int64("user_id", msg.From.ID), zap.Error(err))
		b.reply(msg.Chat.ID, storeFailedText)
		return
	}
	if m == nil {
		b.reply(msg.Chat.ID, "Nothing to delete.")
		return
	}
	b.reply(msg.Chat.ID, fmt.Sprintf("Deleted %s kg from %s.", domain.FormatWeight(m.Weight), formatDateTime(m.At)))
}

func (b *Bot) handleClear(ctx context.Context, msg *tgbotapi.Message) {
	n, err := b.measurements.Clear(ctx, msg.From.ID)
	if err != nil {
		b.log.Error("clear failed", zap.Int64("user_id", msg.From.ID), zap.Error(err))
		b.reply(msg.Chat.ID, storeFailedText)
		return
	}
	b.reply(msg.Chat.ID, fmt.Sprintf("Your history has been cleared (%d removed).", n))
}
