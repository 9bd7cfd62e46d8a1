// Package commands implements the drake CLI.
package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"go.trai.ch/drake/internal/build"
	"go.trai.ch/drake/internal/core/domain"
	"go.trai.ch/drake/internal/drake"
)

// Application is the use-case boundary the CLI drives (mirrors the
// teacher's Application interface between commands and app).
type Application interface {
	Run(ctx context.Context, opts domain.Options, targets []string, in io.Reader, out io.Writer) error
	Merge(ctx context.Context, opts domain.Options, targets []string, in io.Reader, out io.Writer) error
}

// Builder constructs an Application from resolved Options, deferred to
// invocation time so --workflow/--debug/--logfile are known first.
type Builder func(opts domain.Options) (Application, func(), error)

// CLI is the drake command line interface.
type CLI struct {
	build   Builder
	rootCmd *cobra.Command
	stdin   io.Reader
}

// New builds the CLI, deferring application construction to build.
func New(builder Builder) *CLI {
	c := &CLI{build: builder}

	var rawVars []string

	rootCmd := &cobra.Command{
		Use:           "drake [targets...]",
		Short:         "A dependency-and-execution engine for data workflows",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       build.Version,
		Args:          cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runOrMerge(cmd, args, rawVars)
		},
	}
	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"{{.Name}} version {{.Version}} (commit: %s, date: %s)\n", build.Commit, build.Date,
	))

	flags := rootCmd.Flags()
	flags.BoolP("debug", "d", false, "Enable debug logging")
	flags.StringP("workflow", "w", "", "Path to the workflow file (default: workflow.yml)")
	flags.StringP("branch", "b", "", "Run under an isolated branch namespace")
	flags.String("merge-branch", "", "Merge a branch's outputs into the base namespace")
	flags.BoolP("auto", "a", false, "Run without interactive confirmation")
	flags.BoolP("quiet", "q", false, "Suppress informational logging")
	flags.BoolP("print", "p", false, "Print the predicted plan without running it")
	flags.StringP("logfile", "l", "", "Redirect log output to a file")
	flags.StringArrayVarP(&rawVars, "vars", "v", nil, "Override a workflow variable (key=value, repeatable)")
	rootCmd.MarkFlagsMutuallyExclusive("branch", "merge-branch")

	rootCmd.AddCommand(c.newVersionCmd())

	c.rootCmd = rootCmd
	c.stdin = nil
	return c
}

// Execute runs the root command with the given context.
func (c *CLI) Execute(ctx context.Context) error {
	c.rootCmd.SetContext(ctx)
	return c.rootCmd.Execute()
}

// SetArgs sets the arguments for the root command. Used for testing.
func (c *CLI) SetArgs(args []string) { c.rootCmd.SetArgs(args) }

// SetIO sets the input/output/error streams. Used for testing.
func (c *CLI) SetIO(in io.Reader, out, errw io.Writer) {
	c.stdin = in
	c.rootCmd.SetIn(in)
	c.rootCmd.SetOut(out)
	c.rootCmd.SetErr(errw)
}

func (c *CLI) runOrMerge(cmd *cobra.Command, args []string, rawVars []string) error {
	opts, err := optionsFromFlags(cmd, rawVars)
	if err != nil {
		return drake.WithCode(drake.ExitUsage, err)
	}

	targets := args
	if len(targets) == 0 {
		targets = []string{"=..."}
	}

	appl, cleanup, err := c.build(opts)
	if cleanup != nil {
		defer cleanup()
	}
	if err != nil {
		return drake.WithCode(drake.ExitUsage, err)
	}

	in := c.stdin
	if in == nil {
		in = cmd.InOrStdin()
	}

	if opts.HasMergeBranch() {
		if err := appl.Merge(cmd.Context(), opts, targets, in, cmd.OutOrStdout()); err != nil {
			return translateExit(err)
		}
		return nil
	}

	if err := appl.Run(cmd.Context(), opts, targets, in, cmd.OutOrStdout()); err != nil {
		return translateExit(err)
	}
	return nil
}

func translateExit(err error) error {
	if errors.Is(err, domain.ErrAborted) {
		return drake.WithCode(drake.ExitAborted, err)
	}
	if errors.Is(err, domain.ErrInvalidTarget) || errors.Is(err, domain.ErrInvalidArgument) {
		return drake.WithCode(drake.ExitUsage, err)
	}
	return drake.WithCode(drake.ExitError, err)
}

func optionsFromFlags(cmd *cobra.Command, rawVars []string) (domain.Options, error) {
	flags := cmd.Flags()

	debug, _ := flags.GetBool("debug")
	workflow, _ := flags.GetString("workflow")
	branch, _ := flags.GetString("branch")
	mergeBranch, _ := flags.GetString("merge-branch")
	auto, _ := flags.GetBool("auto")
	quiet, _ := flags.GetBool("quiet")
	print, _ := flags.GetBool("print")
	logfile, _ := flags.GetString("logfile")

	vars, err := parseVars(rawVars)
	if err != nil {
		return domain.Options{}, err
	}

	return domain.Options{
		Workflow:    workflow,
		Branch:      branch,
		MergeBranch: mergeBranch,
		Auto:        auto,
		Quiet:       quiet,
		Print:       print,
		Logfile:     logfile,
		Vars:        vars,
		Debug:       debug,
	}, nil
}

// parseVars splits each "key=value" pair on the first "=" only, so a value
// may itself contain "=".
func parseVars(raw []string) (map[string]string, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	vars := make(map[string]string, len(raw))
	for _, kv := range raw {
		k, v, ok := strings.Cut(kv, "=")
		if !ok {
			return nil, domain.ErrInvalidArgument
		}
		vars[k] = v
	}
	return vars, nil
}
