// Package oracle implements the Staleness Oracle: the
// should-build? decision procedure that decides whether a step is
// out-of-date and why.
package oracle

import (
	"context"
	"fmt"

	"go.trai.ch/drake/internal/core/branch"
	"go.trai.ch/drake/internal/core/domain"
	"go.trai.ch/drake/internal/core/ports"
	"go.trai.ch/zerr"
)

// Oracle decides whether a step needs to be rebuilt.
type Oracle struct {
	fs         ports.Filesystem
	branchName string
}

// New builds an Oracle bound to a filesystem and the active branch name
// (empty for no branch).
func New(fsys ports.Filesystem, branchName string) *Oracle {
	return &Oracle{fs: fsys, branchName: branchName}
}

// Decision is the non-error outcome of ShouldBuild: either Build is true
// and Cause names the reason, or Build is false and the step is up to
// date / cannot be built.
type Decision struct {
	Build bool
	Cause string
}

// ShouldBuild runs the staleness decision procedure. forced/triggered/
// matchType describe the calling selection; failOnEmpty distinguishes the
// Predictor's speculative pass (false) from the Runner's authoritative
// re-check (true).
func (o *Oracle) ShouldBuild(
	ctx context.Context,
	step domain.Step,
	forced bool,
	triggered bool,
	matchType domain.MatchType,
	failOnEmpty bool,
) (Decision, error) {
	adjusted, err := branch.Adjust(ctx, o.fs, step, o.branchName, false)
	if err != nil {
		return Decision{}, err
	}

	emptyInputs, err := o.emptyInputs(ctx, adjusted.Inputs)
	if err != nil {
		return Decision{}, err
	}

	noOutputs := len(adjusted.Outputs) == 0

	// missing inputs are fatal unless we expect a scheduled
	// predecessor to produce them.
	if len(emptyInputs) > 0 && (failOnEmpty || !triggered) {
		return Decision{}, zerr.With(domain.ErrMissingInput, "paths", fmt.Sprint(emptyInputs))
	}

	// forced beats everything else.
	if forced {
		return Decision{Build: true, Cause: causeWithMatch("forced", matchType)}, nil
	}

	// a tag/method match builds unconditionally too.
	if matchType != domain.MatchOutput {
		return Decision{Build: true, Cause: "via " + string(matchType)}, nil
	}

	// nothing to build for a no-output step unless matched above.
	if noOutputs {
		return Decision{Build: false}, nil
	}

	// a non-triggered step with a missing output is always stale.
	if !triggered {
		missing, err := o.anyOutputMissing(ctx, adjusted.Outputs)
		if err != nil {
			return Decision{}, err
		}
		if missing {
			return Decision{Build: true, Cause: "missing output"}, nil
		}
	}

	// timecheck disabled means "assume fresh".
	if !step.Opts.Timecheck {
		return Decision{Build: false}, nil
	}

	// a triggered step's inputs will be rewritten by a predecessor
	// we haven't run yet, so we can't evaluate timestamps — assume stale.
	if triggered {
		return Decision{Build: true, Cause: "projected timestamped"}, nil
	}

	// a step with no inputs at all always runs (e.g. a fetch step).
	if len(adjusted.Inputs) == 0 {
		return Decision{Build: true, Cause: "no-input step"}, nil
	}

	// compare the newest input against the oldest output.
	return o.compareTimestamps(ctx, adjusted.Inputs, adjusted.Outputs)
}

func causeWithMatch(base string, matchType domain.MatchType) string {
	if matchType == domain.MatchOutput {
		return base
	}
	return base + " (via " + string(matchType) + ")"
}

func (o *Oracle) emptyInputs(ctx context.Context, inputs []string) ([]string, error) {
	var empty []string
	for _, in := range inputs {
		exists, err := o.fs.DataIn(ctx, in)
		if err != nil {
			return nil, err
		}
		if !exists {
			empty = append(empty, in)
		}
	}
	return empty, nil
}

func (o *Oracle) anyOutputMissing(ctx context.Context, outputs []string) (bool, error) {
	for _, out := range outputs {
		exists, err := o.fs.DataIn(ctx, out)
		if err != nil {
			return false, err
		}
		if !exists {
			return true, nil
		}
	}
	return false, nil
}

func (o *Oracle) compareTimestamps(ctx context.Context, inputs, outputs []string) (Decision, error) {
	var newestInput int64 = -1
	for _, in := range inputs {
		fi, err := o.fs.NewestIn(ctx, in)
		if err != nil {
			return Decision{}, err
		}
		if fi.ModTimeMs > newestInput {
			newestInput = fi.ModTimeMs
		}
	}

	oldestOutput := int64(-1)
	for _, out := range outputs {
		fi, err := o.fs.OldestIn(ctx, out)
		if err != nil {
			return Decision{}, err
		}
		if oldestOutput == -1 || fi.ModTimeMs < oldestOutput {
			oldestOutput = fi.ModTimeMs
		}
	}

	if newestInput > oldestOutput {
		return Decision{Build: true, Cause: "timestamped"}, nil
	}
	return Decision{Build: false}, nil
}
