// Package telegram is the chat transport: it polls Telegram for updates,
// dispatches commands and free-text weights to the application services, and
// delivers backup files to the administrator.
package telegram

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"weightbot/internal/app"
	"weightbot/internal/backup"
	"weightbot/internal/domain"
)

// API is the subset of *tgbotapi.BotAPI the bot uses.
type API interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// Measurements is the per-user service the bot calls.
type Measurements interface {
	Register(ctx context.Context, u domain.User) error
	SubmitWeight(ctx context.Context, u domain.User, raw string) (*app.SubmitResult, error)
	Last(ctx context.Context, userID int64) (*domain.Measurement, error)
	History(ctx context.Context, userID int64, limit int) ([]domain.Measurement, error)
	DeleteLast(ctx context.Context, userID int64) (*domain.Measurement, error)
	Clear(ctx context.Context, userID int64) (int64, error)
}

// Reports is the admin reporting service.
type Reports interface {
	GlobalSummary(ctx context.Context) (*app.Summary, error)
	UserList(ctx context.Context, limit int) ([]domain.UserSummary, error)
	UserDetail(ctx context.Context, userID int64) (*app.UserDetail, error)
}

// Backups runs an on-demand backup.
type Backups interface {
	RunOnce(ctx context.Context) (*backup.Artifact, error)
}

// Bot dispatches updates one at a time.
type Bot struct {
	api          API
	measurements Measurements
	reports      Reports
	backups      Backups
	adminID      int64
	log          *zap.Logger
}

// Connect authenticates against the Bot API with token.
func Connect(token string) (*tgbotapi.BotAPI, error) {
	return tgbotapi.NewBotAPI(token)
}

// New creates a Bot. backups may be nil when the store cannot be snapshotted.
func New(api API, ms Measurements, rs Reports, backups Backups, adminID int64, log *zap.Logger) *Bot {
	return &Bot{
		api:          api,
		measurements: ms,
		reports:      rs,
		backups:      backups,
		adminID:      adminID,
		log:          log.With(zap.String("component", "telegram")),
	}
}

// Run long-polls for updates and handles them sequentially until ctx is done.
func (b *Bot) Run(ctx context.Context) error {
	cfg := tgbotapi.NewUpdate(0)
	cfg.Timeout = 60
	updates := b.api.GetUpdatesChan(cfg)

	b.log.Info("polling for updates")
	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			b.log.Info("polling stopped")
			return nil
		case upd, ok := <-updates:
			if !ok {
				return nil
			}
			b.HandleUpdate(ctx, upd)
		}
	}
}

// HandleUpdate processes a single update.
func (b *Bot) HandleUpdate(ctx context.Context, upd tgbotapi.Update) {
	if q := upd.CallbackQuery; q != nil {
		b.handleCallback(ctx, q)
		return
	}
	msg := upd.Message
	if msg == nil || msg.From == nil || msg.Chat == nil {
		return
	}

	if !msg.IsCommand() {
		if msg.Text != "" {
			b.handleWeight(ctx, msg)
		}
		return
	}

	cmd := msg.Command()
	b.log.Debug("command", zap.String("command", cmd), zap.Int64("user_id", msg.From.ID))
	switch cmd {
	case "start":
		b.handleStart(ctx, msg)
	case "help":
		b.reply(msg.Chat.ID, helpText)
	case "last":
		b.handleLast(ctx, msg)
	case "history":
		b.handleHistory(ctx, msg)
	case "delete":
		b.handleDelete(ctx, msg)
	case "clear":
		b.handleClear(ctx, msg)
	case "stats":
		b.adminOnly(msg, func() { b.handleStats(ctx, msg) })
	case "users":
		b.adminOnly(msg, func() { b.handleUsers(ctx, msg) })
	case "user":
		b.adminOnly(msg, func() { b.handleUser(ctx, msg) })
	case "backup":
		b.adminOnly(msg, func() { b.handleBackup(ctx, msg) })
	default:
		b.reply(msg.Chat.ID, "Unknown command. Send /help for the list of commands.")
	}
}

func (b *Bot) isAdmin(u *tgbotapi.User) bool {
	return u != nil && b.adminID != 0 && u.ID == b.adminID
}

func (b *Bot) adminOnly(msg *tgbotapi.Message, fn func()) {
	if !b.isAdmin(msg.From) {
		b.reply(msg.Chat.ID, adminOnlyText)
		return
	}
	fn()
}

func (b *Bot) reply(chatID int64, text string) {
	b.send(tgbotapi.NewMessage(chatID, text))
}

func (b *Bot) send(c tgbotapi.Chattable) {
	if _, err := b.api.Send(c); err != nil {
		b.log.Warn("send failed", zap.Error(err))
	}
}

func userFrom(u *tgbotapi.User) domain.User {
	return domain.User{
		ID:        u.ID,
		Username:  u.UserName,
		FirstName: u.FirstName,
		LastName:  u.LastName,
	}
}
