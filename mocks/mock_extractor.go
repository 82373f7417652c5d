package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"feldbeleg/internal/port"
)

// MockTextReader is a mock implementation of port.TextReader.
type MockTextReader struct {
	mock.Mock
}

func (m *MockTextReader) GetText(ctx context.Context, data []byte, contentType string) (*port.OCRResult, error) {
	args := m.Called(ctx, data, contentType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*port.OCRResult), args.Error(1)
}

func (m *MockTextReader) Engine() string {
	args := m.Called()
	return args.String(0)
}

// MockInvoiceExtractor is a mock implementation of port.InvoiceExtractor.
type MockInvoiceExtractor struct {
	mock.Mock
}

func (m *MockInvoiceExtractor) Extract(ctx context.Context, input port.ExtractInput) (*port.ExtractOutput, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*port.ExtractOutput), args.Error(1)
}
