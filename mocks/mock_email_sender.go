package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"feldbeleg/internal/port"
)

// MockEmailSender is a mock implementation of port.EmailSender.
type MockEmailSender struct {
	mock.Mock
}

func (m *MockEmailSender) SendExportEmail(ctx context.Context, toEmail, subject, body string, attachments []port.Attachment) error {
	args := m.Called(ctx, toEmail, subject, body, attachments)
	return args.Error(0)
}
