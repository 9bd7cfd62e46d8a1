// Package merge implements the Merge Coordinator: promoting
// a branch's outputs back into the base namespace by moving each
// branch-namespaced artifact onto its base path.
package merge

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"go.trai.ch/drake/internal/core/domain"
	"go.trai.ch/drake/internal/core/ports"
	"go.trai.ch/drake/internal/core/selector"
)

// move is one planned src -> dst promotion.
type move struct {
	src string
	dst string
}

// Coordinator merges a branch's outputs into the base namespace.
type Coordinator struct {
	fs   ports.Filesystem
	tree *domain.ParseTree
	out  io.Writer
	in   *bufio.Scanner
}

// New builds a Coordinator.
func New(fsys ports.Filesystem, tree *domain.ParseTree, in io.Reader, out io.Writer) *Coordinator {
	return &Coordinator{fs: fsys, tree: tree, out: out, in: bufio.NewScanner(in)}
}

// Merge resolves targets exactly as the Runner does, then for every
// selected step's outputs that have a branch-namespaced copy on disk, moves
// that copy onto the base path. Absence of the branch-namespaced copy is
// not an error — it simply means that output was never produced under the
// branch and there is nothing to promote.
func (c *Coordinator) Merge(ctx context.Context, branchName string, auto bool, targets []string) error {
	selections, err := selector.Select(c.tree, targets)
	if err != nil {
		return err
	}

	var moves []move
	for _, sel := range selections {
		step := c.tree.Steps[sel.Index]
		for _, out := range step.Outputs {
			branched := out + "#" + branchName
			exists, err := c.fs.DataIn(ctx, branched)
			if err != nil {
				return err
			}
			if exists {
				moves = append(moves, move{src: branched, dst: out})
			}
		}
	}

	if len(moves) == 0 {
		fmt.Fprintln(c.out, "Nothing to do.")
		return nil
	}

	for _, m := range moves {
		fmt.Fprintf(c.out, "%s -> %s\n", m.src, m.dst)
	}

	if !auto {
		ok, err := c.confirm()
		if err != nil {
			return err
		}
		if !ok {
			return domain.ErrAborted
		}
	}

	for _, m := range moves {
		if err := c.fs.Rm(ctx, m.dst); err != nil {
			return err
		}
		if err := c.fs.Mv(ctx, m.src, m.dst); err != nil {
			return err
		}
	}
	return nil
}

func (c *Coordinator) confirm() (bool, error) {
	fmt.Fprint(c.out, "Continue? [y/N] ")
	if !c.in.Scan() {
		return false, c.in.Err()
	}
	answer := strings.ToLower(strings.TrimSpace(c.in.Text()))
	return answer == "y" || answer == "yes", nil
}
