package extract

import (
	"context"
	"fmt"
	"log"
	"sync"

	"feldbeleg/internal/port"
)

// EnsembleExtractor runs several extraction passes in parallel and
// reconciles them into one record. Individual pass failures are tolerated as
// long as at least one pass succeeds.
type EnsembleExtractor struct {
	inner      port.InvoiceExtractor
	reconciler port.Reconciler
	samples    int
}

// NewEnsembleExtractor builds an ensemble over inner with the given number
// of passes per document.
func NewEnsembleExtractor(inner port.InvoiceExtractor, reconciler port.Reconciler, samples int) *EnsembleExtractor {
	if samples < 1 {
		samples = 1
	}
	return &EnsembleExtractor{inner: inner, reconciler: reconciler, samples: samples}
}

func (e *EnsembleExtractor) Extract(ctx context.Context, input port.ExtractInput) (*port.ExtractOutput, error) {
	type result struct {
		output *port.ExtractOutput
		err    error
	}

	var wg sync.WaitGroup
	results := make(chan result, e.samples)
	wg.Add(e.samples)
	for i := 0; i < e.samples; i++ {
		go func() {
			defer wg.Done()
			out, err := e.inner.Extract(ctx, input)
			results <- result{out, err}
		}()
	}
	wg.Wait()
	close(results)

	var outputs []*port.ExtractOutput
	var lastErr error
	for r := range results {
		if r.err != nil {
			lastErr = r.err
			continue
		}
		outputs = append(outputs, r.output)
	}

	if len(outputs) == 0 {
		return nil, fmt.Errorf("all %d extraction passes failed: %w", e.samples, lastErr)
	}
	if lastErr != nil {
		log.Printf("extract.EnsembleExtractor: %d/%d passes succeeded (last failure: %v)",
			len(outputs), e.samples, lastErr)
	}
	if len(outputs) == 1 {
		return outputs[0], nil
	}

	records := make([]map[string]any, len(outputs))
	for i, o := range outputs {
		records[i] = o.Record
	}
	merged, err := e.reconciler.Reconcile(ctx, input, records)
	if err != nil {
		return nil, fmt.Errorf("reconciling %d samples: %w", len(records), err)
	}
	if merged.Model == "" {
		merged.Model = outputs[0].Model
	}
	return merged, nil
}
