// Package branch implements the Branch Adjuster: the
// policy that rewrites a step's inputs/outputs with a "#<branch>" suffix
// so that builds running under an active branch write into an isolated
// namespace while still reading already-produced branch artifacts ahead
// of base-namespace ones.
package branch

import (
	"context"

	"go.trai.ch/drake/internal/core/domain"
	"go.trai.ch/drake/internal/core/ports"
)

// Adjust rewrites step's inputs and outputs for the given branch.
//
// If branchName is empty, step is returned unchanged. Otherwise every
// output is unconditionally suffixed "#<branch>". Each input is suffixed
// only if addToAll is true, or if a branch-namespaced copy of that input
// already exists on disk; otherwise the input is left pointing at the base
// namespace.
//
// addToAll=true models "we predict this step's dependency will have just
// produced a branch-namespaced output" — used for forced/triggered steps
// whose upstream producer is assumed to run first, and for the
// step-string rendered for "projected timestamped"/"forced" causes.
func Adjust(ctx context.Context, fsys ports.Filesystem, step domain.Step, branchName string, addToAll bool) (domain.Step, error) {
	if branchName == "" {
		return step, nil
	}

	adjusted := step
	adjusted.Outputs = make([]string, len(step.Outputs))
	for i, o := range step.Outputs {
		adjusted.Outputs[i] = o + "#" + branchName
	}

	adjusted.Inputs = make([]string, len(step.Inputs))
	for i, in := range step.Inputs {
		branched := in + "#" + branchName
		if addToAll {
			adjusted.Inputs[i] = branched
			continue
		}
		exists, err := fsys.DataIn(ctx, branched)
		if err != nil {
			return domain.Step{}, err
		}
		if exists {
			adjusted.Inputs[i] = branched
		} else {
			adjusted.Inputs[i] = in
		}
	}

	return adjusted, nil
}
