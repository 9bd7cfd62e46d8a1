// Package domain holds the passive data model shared by every engine
// component: steps, methods, the parse tree, target selections and the
// process-wide options record.
package domain

import "go.trai.ch/zerr"

// ParseTree is the semantic container the external parser produces and the
// engine consumes. It exclusively owns Steps and Methods; every other
// component references steps by index only.
type ParseTree struct {
	Steps   []Step
	Methods map[string]Method

	// deps[i] is the set of step indices that step i directly depends on
	// (its outputs/tags feed step i's inputs/tags). dependents[i] is the
	// reverse edge set. Both are built once in NewParseTree so downstream
	// components never re-scan the tree per call.
	deps       [][]int
	dependents [][]int
}

// NewParseTree builds a ParseTree from already-validated steps and methods,
// computing the dependency graph: step p depends on step q iff some input
// of p equals some output of q, or p's input tags resolve (via
// Step.InputTagIdx, set by the parser) to q.
//
// NewParseTree itself only wires the edges and checks acyclicity; it
// trusts tag resolution and method references to already hold, since the
// parser is responsible for both before handing a tree to the core.
func NewParseTree(steps []Step, methods map[string]Method) (*ParseTree, error) {
	pt := &ParseTree{
		Steps:   steps,
		Methods: methods,
	}
	pt.buildGraph()
	if err := pt.checkAcyclic(); err != nil {
		return nil, err
	}
	return pt, nil
}

func (pt *ParseTree) buildGraph() {
	n := len(pt.Steps)
	pt.deps = make([][]int, n)
	pt.dependents = make([][]int, n)

	// outputBy maps an output path to the index of the step producing it.
	// If several steps list the same output, the last one wins; neither the
	// parser nor this constructor rejects such duplicates.
	outputBy := make(map[string]int, n)
	for i, s := range pt.Steps {
		for _, o := range s.Outputs {
			outputBy[o] = i
		}
	}

	seen := make(map[int]bool)
	for i, s := range pt.Steps {
		for k := range seen {
			delete(seen, k)
		}
		for _, in := range s.Inputs {
			if q, ok := outputBy[in]; ok && !seen[q] {
				seen[q] = true
				pt.addEdge(i, q)
			}
		}
		for _, q := range s.InputTagIdx {
			if !seen[q] {
				seen[q] = true
				pt.addEdge(i, q)
			}
		}
	}
}

func (pt *ParseTree) addEdge(p, q int) {
	pt.deps[p] = append(pt.deps[p], q)
	pt.dependents[q] = append(pt.dependents[q], p)
}

func (pt *ParseTree) checkAcyclic() error {
	const (
		unvisited = 0
		visiting  = 1
		visited   = 2
	)
	state := make([]int, len(pt.Steps))

	var visit func(i int) error
	visit = func(i int) error {
		state[i] = visiting
		for _, q := range pt.deps[i] {
			switch state[q] {
			case visiting:
				return zerr.With(ErrCycleDetected, "step", q)
			case unvisited:
				if err := visit(q); err != nil {
					return err
				}
			}
		}
		state[i] = visited
		return nil
	}

	for i := range pt.Steps {
		if state[i] == unvisited {
			if err := visit(i); err != nil {
				return err
			}
		}
	}
	return nil
}

// Dependencies returns the indices of every step idx directly depends on.
func (pt *ParseTree) Dependencies(idx int) []int {
	return pt.deps[idx]
}

// Dependents returns the indices of every step that directly depends on idx.
func (pt *ParseTree) Dependents(idx int) []int {
	return pt.dependents[idx]
}

// AllDependencies returns every transitive ancestor of idx in the DAG
// (every step idx depends on, directly or indirectly). Used by the
// Predictor to grow the triggered-set.
func (pt *ParseTree) AllDependencies(idx int) []int {
	visited := make(map[int]bool)
	var stack []int
	stack = append(stack, pt.deps[idx]...)
	for len(stack) > 0 {
		q := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if visited[q] {
			continue
		}
		visited[q] = true
		stack = append(stack, pt.deps[q]...)
	}
	out := make([]int, 0, len(visited))
	for q := range visited {
		out = append(out, q)
	}
	return out
}

// Method looks up a method by name, resolving a step's opts.method
// reference.
func (pt *ParseTree) Method(name string) (Method, bool) {
	m, ok := pt.Methods[name]
	return m, ok
}
