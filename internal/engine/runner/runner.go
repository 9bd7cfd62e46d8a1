// Package runner implements the Runner: it drives a target
// list through the Target Selector and Predictor, then either prints the
// predicted plan, confirms with the user, or executes each predicted step
// in order, re-checking staleness authoritatively immediately before each
// run.
package runner

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.trai.ch/drake/internal/core/branch"
	"go.trai.ch/drake/internal/core/domain"
	"go.trai.ch/drake/internal/core/materializer"
	"go.trai.ch/drake/internal/core/oracle"
	"go.trai.ch/drake/internal/core/ports"
	"go.trai.ch/drake/internal/core/predictor"
	"go.trai.ch/drake/internal/core/selector"
	"go.trai.ch/zerr"
)

const defaultProtocol = "exec"

// Runner executes (or previews) the steps a target selection predicts.
type Runner struct {
	fs          ports.Filesystem
	tree        *domain.ParseTree
	protocols   ports.Registry
	logger      ports.Logger
	oracle      *oracle.Oracle
	branchName  string
	workflowDir string
	cliVars     map[string]string

	out io.Writer
	in  *bufio.Scanner
}

// New builds a Runner. workflowDir anchors persisted variable dumps.
// cliVars holds the --vars overrides, threaded into every materialized
// step's substitution scope.
func New(fsys ports.Filesystem, tree *domain.ParseTree, protocols ports.Registry, logger ports.Logger, branchName, workflowDir string, cliVars map[string]string, in io.Reader, out io.Writer) *Runner {
	return &Runner{
		fs:          fsys,
		tree:        tree,
		protocols:   protocols,
		logger:      logger,
		oracle:      oracle.New(fsys, branchName),
		branchName:  branchName,
		workflowDir: workflowDir,
		cliVars:     cliVars,
		out:         out,
		in:          bufio.NewScanner(in),
	}
}

// Run resolves targets, predicts which steps are stale, and either prints
// the plan, executes it after confirmation, or executes it unconditionally
// when opts.Auto is set.
func (r *Runner) Run(ctx context.Context, opts domain.Options, targets []string) error {
	selections, err := selector.Select(r.tree, targets)
	if err != nil {
		return err
	}

	predicted, err := predictor.Predict(ctx, r.tree, r.oracle, selections)
	if err != nil {
		return err
	}

	if len(predicted) == 0 {
		fmt.Fprintln(r.out, "Nothing to do.")
		return nil
	}

	if opts.Print {
		r.printPlan(predicted)
		return nil
	}

	if !opts.Auto {
		r.printPlan(predicted)
		ok, err := r.confirm()
		if err != nil {
			return err
		}
		if !ok {
			return domain.ErrAborted
		}
	}

	for _, sel := range predicted {
		if err := r.runStep(ctx, sel); err != nil {
			return err
		}
	}
	return nil
}

// printPlan renders the predicted steps in the print-mode format: one
// block per step, a header line followed by tab-separated input/output and
// tag lines.
func (r *Runner) printPlan(predicted []domain.TargetSelection) {
	for _, sel := range predicted {
		step := r.tree.Steps[sel.Index]
		fmt.Fprintf(r.out, "S\t%s\n", sel.Cause)
		for _, in := range step.Inputs {
			fmt.Fprintf(r.out, "I\t%s\n", in)
		}
		for _, t := range step.InputTags {
			fmt.Fprintf(r.out, "%%I\t%s\n", t)
		}
		for _, o := range step.Outputs {
			fmt.Fprintf(r.out, "O\t%s\n", o)
		}
		for _, t := range step.OutputTags {
			fmt.Fprintf(r.out, "%%O\t%s\n", t)
		}
	}
}

func (r *Runner) confirm() (bool, error) {
	fmt.Fprint(r.out, "Continue? [y/N] ")
	if !r.in.Scan() {
		return false, r.in.Err()
	}
	answer := strings.ToLower(strings.TrimSpace(r.in.Text()))
	return answer == "y" || answer == "yes", nil
}

// runStep re-checks staleness authoritatively (failOnEmpty=true,
// triggered=false, since by execution time every predecessor has already
// run) then materializes and executes the step.
func (r *Runner) runStep(ctx context.Context, sel domain.TargetSelection) error {
	step := r.tree.Steps[sel.Index]

	decision, err := r.oracle.ShouldBuild(ctx, step, sel.Build == domain.BuildForced, false, sel.MatchType, true)
	if err != nil {
		return err
	}
	if !decision.Build {
		r.logger.Info(fmt.Sprintf("%s: up to date, skipping", r.stepString(step, false)))
		return nil
	}

	protocolName := step.Opts.Protocol
	if protocolName == "" {
		protocolName = defaultProtocol
	}
	protocol, ok := r.protocols.Get(protocolName)
	if !ok {
		return zerr.With(domain.ErrUnknownProtocol, "protocol", protocolName)
	}

	addToAll := strings.HasPrefix(sel.Cause, "forced") || sel.Cause == "projected timestamped"
	r.logger.Info(fmt.Sprintf("%s: %s", r.stepString(step, addToAll), decision.Cause))

	materialized, err := materializer.Materialize(ctx, r.fs, r.tree, step, r.branchName, r.cliVars, protocol.CmdsRequired())
	if err != nil {
		return err
	}
	materialized.WorkingDir = r.workflowDir

	if err := r.persistVars(step, materialized.VarsEnv); err != nil {
		return err
	}

	start := time.Now()
	if err := protocol.Run(ctx, materialized); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrProtocolFailure, err)
	}
	r.logger.Info(fmt.Sprintf("%s: finished in %s", r.stepString(step, addToAll), time.Since(start)))

	return nil
}

// stepString renders a step's identity for logging: its branch-adjusted
// outputs, joined, or its output tags if it has no outputs.
func (r *Runner) stepString(step domain.Step, addToAll bool) string {
	adjusted, err := branch.Adjust(context.Background(), r.fs, step, r.branchName, addToAll)
	if err != nil {
		adjusted = step
	}
	if len(adjusted.Outputs) > 0 {
		return strings.Join(adjusted.Outputs, ", ")
	}
	if len(adjusted.OutputTags) > 0 {
		return strings.Join(adjusted.OutputTags, ", ")
	}
	return "<step>"
}

// persistVars writes the resolved variable environment to the state
// directory laid out by domain.VarsDumpPath.
func (r *Runner) persistVars(step domain.Step, env map[string]string) error {
	dirName := domain.StepDirName(step.Outputs, step.OutputTags)
	path := domain.VarsDumpPath(r.workflowDir, dirName, time.Now().UnixNano())

	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return err
	}

	keys := make([]string, 0, len(env))
	for k := range env {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(strconv.Quote(env[k]))
		b.WriteByte('\n')
	}

	return os.WriteFile(path, []byte(b.String()), 0o640)
}
