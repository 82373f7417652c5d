package noop

import (
	"context"
	"log"

	"feldbeleg/internal/port"
)

type noopSender struct{}

// NewNoopSender creates a no-op EmailSender that logs instead of sending.
func NewNoopSender() port.EmailSender {
	return &noopSender{}
}

func (s *noopSender) SendExportEmail(_ context.Context, toEmail, subject, _ string, attachments []port.Attachment) error {
	log.Printf("[NOOP EMAIL] Export email to %s: %q with %d attachment(s)", toEmail, subject, len(attachments))
	return nil
}
