// Package app implements the application layer: the two use cases
// (Run, Merge) the CLI orchestrator drives, wiring the core engine
// components together behind a small boundary.
package app

import (
	"context"
	"io"

	"go.trai.ch/drake/internal/core/domain"
	"go.trai.ch/drake/internal/core/ports"
	"go.trai.ch/drake/internal/engine/merge"
	"go.trai.ch/drake/internal/engine/runner"
)

// App holds the parsed workflow and the adapters every use case needs.
type App struct {
	tree        *domain.ParseTree
	fs          ports.Filesystem
	protocols   ports.Registry
	logger      ports.Logger
	workflowDir string
}

// New builds an App. workflowDir is the directory containing the workflow
// file, which anchors relative paths and persisted state.
func New(tree *domain.ParseTree, fsys ports.Filesystem, protocols ports.Registry, logger ports.Logger, workflowDir string) *App {
	return &App{tree: tree, fs: fsys, protocols: protocols, logger: logger, workflowDir: workflowDir}
}

// Run selects, predicts and executes targets under opts.
func (a *App) Run(ctx context.Context, opts domain.Options, targets []string, in io.Reader, out io.Writer) error {
	r := runner.New(a.fs, a.tree, a.protocols, a.logger, opts.Branch, a.workflowDir, opts.Vars, in, out)
	return r.Run(ctx, opts, targets)
}

// Merge promotes a branch's outputs into the base namespace.
func (a *App) Merge(ctx context.Context, opts domain.Options, targets []string, in io.Reader, out io.Writer) error {
	c := merge.New(a.fs, a.tree, in, out)
	return c.Merge(ctx, opts.MergeBranch, opts.Auto, targets)
}
