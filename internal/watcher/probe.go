package watcher

import (
	"context"

	"git.home.luguber.info/inful/sheetwatch/internal/registry"
)

// CheckResult is the outcome of probing one target.
type CheckResult struct {
	Target registry.Target
	Value  string
	Err    error
}

// Check reads every target once, in order, without touching state or
// sending notifications.
func Check(ctx context.Context, targets []registry.Target, reader CellReader) []CheckResult {
	w := New(targets, reader, nil, nil)
	results := make([]CheckResult, 0, len(targets))
	for _, t := range targets {
		r, err := w.read(ctx, t)
		v, _ := r.Get()
		results = append(results, CheckResult{Target: t, Value: v, Err: err})
	}
	return results
}
