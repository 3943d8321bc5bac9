package telegram

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"weightbot/internal/backup"
)

// DocumentSink delivers backup artifacts as documents to one chat.
type DocumentSink struct {
	api    API
	chatID int64
}

var _ backup.Sink = (*DocumentSink)(nil)

// NewDocumentSink returns a sink sending to chatID.
func NewDocumentSink(api API, chatID int64) *DocumentSink {
	return &DocumentSink{api: api, chatID: chatID}
}

// Deliver uploads the artifact file.
func (s *DocumentSink) Deliver(ctx context.Context, a backup.Artifact) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	doc := tgbotapi.NewDocument(s.chatID, tgbotapi.FilePath(a.Path))
	doc.Caption = fmt.Sprintf("Backup %s (%.1f KB)", a.Name(), float64(a.Size)/1024)
	if a.Caption != "" {
		doc.Caption += "\n" + a.Caption
	}
	if _, err := s.api.Send(doc); err != nil {
		return fmt.Errorf("send document: %w", err)
	}
	return nil
}

// BackupCaption returns a caption provider with the current store counts.
func BackupCaption(rs Reports) func(ctx context.Context) (string, error) {
	return func(ctx context.Context) (string, error) {
		s, err := rs.GlobalSummary(ctx)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("Users: %d, measurements: %d", s.TotalUsers, s.TotalMeasurements), nil
	}
}
