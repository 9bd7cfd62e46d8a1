// Package predictor implements the Predictor: it folds the
// Staleness Oracle over an ordered selection, propagating a "triggered"
// closure so that a step downstream of one we're about to (re)build is
// itself treated as stale without re-evaluating its timestamps.
package predictor

import (
	"context"

	"go.trai.ch/drake/internal/core/domain"
	"go.trai.ch/drake/internal/core/oracle"
)

// Predict folds the oracle over selections in order and returns the
// ordered list of selections the oracle decided to build, each annotated
// with its cause.
func Predict(ctx context.Context, tree *domain.ParseTree, o *oracle.Oracle, selections []domain.TargetSelection) ([]domain.TargetSelection, error) {
	triggeredDeps := make(map[int]bool)
	out := make([]domain.TargetSelection, 0, len(selections))

	for _, sel := range selections {
		step := tree.Steps[sel.Index]
		triggered := triggeredDeps[sel.Index]

		decision, err := o.ShouldBuild(ctx, step, sel.Build == domain.BuildForced, triggered, sel.MatchType, false)
		if err != nil {
			return nil, err
		}
		if !decision.Build {
			continue
		}

		sel.Cause = decision.Cause
		out = append(out, sel)

		for _, dep := range tree.AllDependencies(sel.Index) {
			triggeredDeps[dep] = true
		}
	}

	return out, nil
}
