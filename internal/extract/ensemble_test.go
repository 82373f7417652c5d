package extract

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"feldbeleg/internal/port"
)

type scriptedExtractor struct {
	calls   atomic.Int64
	outputs []*port.ExtractOutput
	errs    []error
}

func (s *scriptedExtractor) Extract(_ context.Context, _ port.ExtractInput) (*port.ExtractOutput, error) {
	n := int(s.calls.Add(1)) - 1
	if n < len(s.errs) && s.errs[n] != nil {
		return nil, s.errs[n]
	}
	if n < len(s.outputs) {
		return s.outputs[n], nil
	}
	return &port.ExtractOutput{Record: map[string]any{}, Model: "test"}, nil
}

func TestEnsembleToleratesPartialFailure(t *testing.T) {
	inner := &scriptedExtractor{
		outputs: []*port.ExtractOutput{
			{Record: map[string]any{"name": "Schmidt"}, Model: "test"},
			nil,
			{Record: map[string]any{"name": "Schmidt"}, Model: "test"},
		},
		errs: []error{nil, errors.New("boom"), nil},
	}
	e := NewEnsembleExtractor(inner, StatisticalReconciler{}, 3)

	out, err := e.Extract(context.Background(), port.ExtractInput{})
	require.NoError(t, err)
	assert.Equal(t, "Schmidt", out.Record["name"])
	assert.Equal(t, "test", out.Model)
}

func TestEnsembleAllFailuresIsFatal(t *testing.T) {
	boom := errors.New("boom")
	inner := &scriptedExtractor{errs: []error{boom, boom, boom}}
	e := NewEnsembleExtractor(inner, StatisticalReconciler{}, 3)

	_, err := e.Extract(context.Background(), port.ExtractInput{})
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
}

func TestEnsembleSingleSuccessSkipsReconcile(t *testing.T) {
	inner := &scriptedExtractor{
		outputs: []*port.ExtractOutput{{Record: map[string]any{"a": 1.0}, Model: "test"}},
	}
	e := NewEnsembleExtractor(inner, failingReconciler{}, 1)

	out, err := e.Extract(context.Background(), port.ExtractInput{})
	require.NoError(t, err)
	assert.Equal(t, 1.0, out.Record["a"])
}

type failingReconciler struct{}

func (failingReconciler) Reconcile(context.Context, port.ExtractInput, []map[string]any) (*port.ExtractOutput, error) {
	return nil, errors.New("reconciler must not run")
}

func TestRetryExtractorEventuallySucceeds(t *testing.T) {
	inner := &scriptedExtractor{
		outputs: []*port.ExtractOutput{nil, nil, {Record: map[string]any{"ok": true}, Model: "test"}},
		errs:    []error{errors.New("one"), errors.New("two"), nil},
	}
	r := NewRetryExtractor(inner, 3, time.Millisecond)

	out, err := r.Extract(context.Background(), port.ExtractInput{})
	require.NoError(t, err)
	assert.Equal(t, true, out.Record["ok"])
	assert.Equal(t, int64(3), inner.calls.Load())
}

func TestRetryExtractorExhausts(t *testing.T) {
	boom := errors.New("boom")
	inner := &scriptedExtractor{errs: []error{boom, boom, boom}}
	r := NewRetryExtractor(inner, 3, time.Millisecond)

	_, err := r.Extract(context.Background(), port.ExtractInput{})
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, int64(3), inner.calls.Load())
}
