package extract

import (
	"context"
	"fmt"
	"log"
	"time"

	"feldbeleg/internal/port"
)

// RetryExtractor wraps an InvoiceExtractor with fixed-delay retries.
type RetryExtractor struct {
	inner      port.InvoiceExtractor
	maxRetries int
	delay      time.Duration
}

// NewRetryExtractor wraps inner. maxRetries is the total number of attempts,
// delay the fixed pause between them.
func NewRetryExtractor(inner port.InvoiceExtractor, maxRetries int, delay time.Duration) *RetryExtractor {
	if maxRetries < 1 {
		maxRetries = 1
	}
	return &RetryExtractor{inner: inner, maxRetries: maxRetries, delay: delay}
}

func (r *RetryExtractor) Extract(ctx context.Context, input port.ExtractInput) (*port.ExtractOutput, error) {
	var lastErr error
	for attempt := 1; attempt <= r.maxRetries; attempt++ {
		out, err := r.inner.Extract(ctx, input)
		if err == nil {
			return out, nil
		}
		lastErr = err
		if attempt < r.maxRetries {
			log.Printf("extract.RetryExtractor: attempt %d/%d failed: %v", attempt, r.maxRetries, err)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(r.delay):
			}
		}
	}
	return nil, fmt.Errorf("all %d extraction attempts failed: %w", r.maxRetries, lastErr)
}
