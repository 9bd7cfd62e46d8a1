// Package main is the entry point for the drake command line tool.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"go.trai.ch/drake/cmd/drake/commands"
	"go.trai.ch/drake/internal/core/domain"
	"go.trai.ch/drake/internal/drake"
	"go.trai.ch/drake/internal/wiring"
)

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cli := commands.New(func(opts domain.Options) (commands.Application, func(), error) {
		appl, _, cleanup, err := wiring.Build(opts)
		if err != nil {
			return nil, cleanup, err
		}
		return appl, cleanup, nil
	})
	cli.SetArgs(args)
	cli.SetIO(stdin, stdout, stderr)

	if err := cli.Execute(ctx); err != nil {
		var exitErr *drake.ExitCodeError
		if errors.As(err, &exitErr) {
			if !errors.Is(exitErr.Err, domain.ErrAborted) {
				fmt.Fprintln(stderr, "Error: "+exitErr.Err.Error())
			}
			return exitErr.Code
		}
		// Only cobra's own flag and argument validation returns an error
		// without an exit code attached.
		fmt.Fprintln(stderr, "Error: "+err.Error())
		return drake.ExitUsage
	}
	return drake.ExitOK
}
