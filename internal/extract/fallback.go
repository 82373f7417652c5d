package extract

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"feldbeleg/internal/port"
)

// circuitState tracks rate-limit backoff for a single provider.
type circuitState struct {
	mu      sync.RWMutex
	resetAt time.Time // zero value = closed (healthy)
}

func (c *circuitState) isOpenWithReset(now time.Time) (time.Time, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.resetAt, !c.resetAt.IsZero() && now.Before(c.resetAt)
}

func (c *circuitState) open(resetAt time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resetAt = resetAt
}

// FallbackExtractor tries extractors in order, skipping those with open
// circuits. A provider that reports a rate limit has its circuit opened
// until the reported reset time. It implements port.InvoiceExtractor.
type FallbackExtractor struct {
	extractors []port.InvoiceExtractor
	circuits   []*circuitState
	names      []string
}

// NewFallbackExtractor creates a FallbackExtractor from an ordered list of
// extractors and their provider names.
func NewFallbackExtractor(extractors []port.InvoiceExtractor, names []string) *FallbackExtractor {
	circuits := make([]*circuitState, len(extractors))
	for i := range circuits {
		circuits[i] = &circuitState{}
	}
	return &FallbackExtractor{
		extractors: extractors,
		circuits:   circuits,
		names:      names,
	}
}

func (f *FallbackExtractor) Extract(ctx context.Context, input port.ExtractInput) (*port.ExtractOutput, error) {
	return f.run(ctx, func(e port.InvoiceExtractor) (*port.ExtractOutput, error) {
		return e.Extract(ctx, input)
	})
}

// Reconcile delegates to the first healthy provider that supports
// model-based reconciliation.
func (f *FallbackExtractor) Reconcile(ctx context.Context, input port.ExtractInput, samples []map[string]any) (*port.ExtractOutput, error) {
	return f.run(ctx, func(e port.InvoiceExtractor) (*port.ExtractOutput, error) {
		r, ok := e.(port.Reconciler)
		if !ok {
			return nil, fmt.Errorf("provider does not support model reconciliation")
		}
		return r.Reconcile(ctx, input, samples)
	})
}

func (f *FallbackExtractor) run(ctx context.Context, call func(port.InvoiceExtractor) (*port.ExtractOutput, error)) (*port.ExtractOutput, error) {
	now := time.Now()
	var lastErr error
	allRateLimited := true
	var earliestReset time.Time

	for i, e := range f.extractors {
		if resetAt, open := f.circuits[i].isOpenWithReset(now); open {
			log.Printf("extract.FallbackExtractor: skipping %s (circuit open until %s)", f.names[i], resetAt.Format(time.RFC3339))
			if earliestReset.IsZero() || resetAt.Before(earliestReset) {
				earliestReset = resetAt
			}
			continue
		}

		out, err := call(e)
		if err == nil {
			return out, nil
		}

		log.Printf("extract.FallbackExtractor: %s failed: %v", f.names[i], err)
		lastErr = err

		var rlErr *RateLimitError
		if errors.As(err, &rlErr) {
			resetAt := now.Add(rlErr.RetryAfter)
			f.circuits[i].open(resetAt)
			if earliestReset.IsZero() || resetAt.Before(earliestReset) {
				earliestReset = resetAt
			}
		} else {
			allRateLimited = false
		}
	}

	if lastErr == nil || allRateLimited {
		// Either every circuit was already open or every attempt hit a
		// rate limit on this pass.
		retryAfter := time.Until(earliestReset)
		if retryAfter < 0 {
			retryAfter = time.Second
		}
		return nil, NewRateLimitError("all", fmt.Errorf("all extractor providers rate limited"), int(retryAfter.Seconds()))
	}

	return nil, fmt.Errorf("all extractor providers failed: %w", lastErr)
}
