package extract

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"feldbeleg/internal/port"
)

func TestFallbackUsesSecondaryWhenPrimaryFails(t *testing.T) {
	primary := &scriptedExtractor{errs: []error{errors.New("boom")}}
	secondary := &scriptedExtractor{
		outputs: []*port.ExtractOutput{{Record: map[string]any{"name": "Schmidt"}, Model: "backup"}},
	}
	f := NewFallbackExtractor(
		[]port.InvoiceExtractor{primary, secondary},
		[]string{"primary", "secondary"})

	out, err := f.Extract(context.Background(), port.ExtractInput{})
	require.NoError(t, err)
	assert.Equal(t, "Schmidt", out.Record["name"])
	assert.Equal(t, "backup", out.Model)
}

func TestFallbackOpensCircuitAfterRateLimit(t *testing.T) {
	primary := &scriptedExtractor{
		errs: []error{NewRateLimitError("primary", errors.New("429"), 300)},
	}
	secondary := &scriptedExtractor{
		outputs: []*port.ExtractOutput{
			{Record: map[string]any{}, Model: "backup"},
			{Record: map[string]any{}, Model: "backup"},
		},
	}
	f := NewFallbackExtractor(
		[]port.InvoiceExtractor{primary, secondary},
		[]string{"primary", "secondary"})

	_, err := f.Extract(context.Background(), port.ExtractInput{})
	require.NoError(t, err)
	_, err = f.Extract(context.Background(), port.ExtractInput{})
	require.NoError(t, err)

	// The second call must not touch the rate-limited primary.
	assert.Equal(t, int64(1), primary.calls.Load())
	assert.Equal(t, int64(2), secondary.calls.Load())
}

func TestFallbackAllRateLimitedSurfacesRateLimit(t *testing.T) {
	primary := &scriptedExtractor{
		errs: []error{NewRateLimitError("primary", errors.New("429"), 60)},
	}
	secondary := &scriptedExtractor{
		errs: []error{NewRateLimitError("secondary", errors.New("429"), 120)},
	}
	f := NewFallbackExtractor(
		[]port.InvoiceExtractor{primary, secondary},
		[]string{"primary", "secondary"})

	_, err := f.Extract(context.Background(), port.ExtractInput{})
	require.Error(t, err)

	var rlErr *RateLimitError
	require.ErrorAs(t, err, &rlErr)
	assert.Equal(t, "all", rlErr.Provider)
}
