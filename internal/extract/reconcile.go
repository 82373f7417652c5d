package extract

import (
	"context"

	"feldbeleg/internal/port"
)

// StatisticalReconciler merges samples by majority vote without calling a
// model again.
type StatisticalReconciler struct{}

func (StatisticalReconciler) Reconcile(_ context.Context, _ port.ExtractInput, samples []map[string]any) (*port.ExtractOutput, error) {
	return &port.ExtractOutput{Record: MergeRecords(samples)}, nil
}
