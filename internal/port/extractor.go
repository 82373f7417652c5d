package port

import "context"

// OCRResult carries the text read from a scanned document and the language
// the reader detected.
type OCRResult struct {
	Text     string
	Language string
}

// TextReader abstracts OCR text extraction from a document image or PDF.
type TextReader interface {
	GetText(ctx context.Context, data []byte, contentType string) (*OCRResult, error)
	Engine() string
}

// ExtractInput carries everything a model needs for one extraction pass.
type ExtractInput struct {
	OCRText     string
	Image       []byte
	ContentType string
	Template    string
}

// ExtractOutput contains one structured extraction sample.
type ExtractOutput struct {
	Record map[string]any
	Model  string
}

// InvoiceExtractor abstracts LLM-based structured field extraction.
type InvoiceExtractor interface {
	Extract(ctx context.Context, input ExtractInput) (*ExtractOutput, error)
}

// Reconciler merges several extraction samples of the same document into a
// single record.
type Reconciler interface {
	Reconcile(ctx context.Context, input ExtractInput, samples []map[string]any) (*ExtractOutput, error)
}
