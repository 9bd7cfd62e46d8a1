// Package wiring constructs the concrete adapters and the core engine
// components once per invocation, wiring them into an app.App. It uses
// explicit constructor calls rather than reflection-based registration
// (see DESIGN.md): the object graph here is small enough that generated
// DI buys nothing.
package wiring

import (
	"os"
	"path/filepath"

	"go.trai.ch/drake/internal/adapters/fs"
	"go.trai.ch/drake/internal/adapters/logger"
	"go.trai.ch/drake/internal/adapters/protocol"
	"go.trai.ch/drake/internal/adapters/workflow"
	"go.trai.ch/drake/internal/app"
	"go.trai.ch/drake/internal/core/domain"
	"go.trai.ch/drake/internal/core/ports"
	"go.trai.ch/zerr"
)

// Build resolves opts.Workflow, parses it, and assembles an app.App ready
// to run. It also returns the concrete logger and a cleanup func, which
// closes the --logfile handle when one was opened and which the caller
// must always invoke.
func Build(opts domain.Options) (*app.App, *logger.Logger, func(), error) {
	log := logger.New()
	log.SetQuiet(opts.Quiet)
	log.SetJSON(opts.Debug)

	cleanup := func() {}

	workflowPath := opts.Workflow
	if workflowPath == "" {
		workflowPath = domain.DefaultWorkflowName
	}
	if fi, err := os.Stat(workflowPath); err == nil && fi.IsDir() {
		workflowPath = filepath.Join(workflowPath, domain.DefaultWorkflowName)
	}
	workflowDir, err := filepath.Abs(filepath.Dir(workflowPath))
	if err != nil {
		return nil, log, cleanup, err
	}

	if opts.Logfile != "" {
		logfilePath := opts.Logfile
		if !filepath.IsAbs(logfilePath) {
			logfilePath = filepath.Join(workflowDir, logfilePath)
		}
		f, err := os.OpenFile(logfilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o640)
		if err != nil {
			return nil, log, cleanup, zerr.Wrap(err, "failed to open logfile")
		}
		log.SetOutput(f)
		cleanup = func() { _ = f.Close() }
	}

	registry := ports.NewRegistry(protocol.NewExec(log), protocol.NewNoop())

	tree, err := workflow.ParseFile(workflowPath, registry)
	if err != nil {
		return nil, log, cleanup, err
	}

	fsys := fs.NewFacade(workflowDir, nil)

	return app.New(tree, fsys, registry, log, workflowDir), log, cleanup, nil
}
