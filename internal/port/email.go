package port

import "context"

// Attachment is a file attached to an outgoing email.
type Attachment struct {
	FileName    string
	ContentType string
	Data        []byte
}

// EmailSender defines the contract for sending emails.
type EmailSender interface {
	SendExportEmail(ctx context.Context, toEmail, subject, body string, attachments []Attachment) error
}
