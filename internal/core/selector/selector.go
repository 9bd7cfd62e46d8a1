// Package selector implements the Target Selector: it
// resolves user target expressions to an ordered, topologically sorted
// list of TargetSelection records.
package selector

import (
	"sort"
	"strings"

	"go.trai.ch/drake/internal/core/domain"
	"go.trai.ch/zerr"
)

// index is a lookup table built once per Select call so repeated target
// expressions don't re-scan the whole step list.
type index struct {
	byOutput map[string]int
	byTag    map[string][]int
	byMethod map[string][]int
}

func buildIndex(tree *domain.ParseTree) index {
	idx := index{
		byOutput: make(map[string]int),
		byTag:    make(map[string][]int),
		byMethod: make(map[string][]int),
	}
	for i, s := range tree.Steps {
		for _, o := range s.Outputs {
			idx.byOutput[o] = i
		}
		for _, t := range s.OutputTags {
			idx.byTag[t] = append(idx.byTag[t], i)
		}
		if s.HasMethod() {
			idx.byMethod[s.Opts.Method] = append(idx.byMethod[s.Opts.Method], i)
		}
	}
	return idx
}

// expr is one parsed target expression.
type expr struct {
	forced    bool
	plus      bool
	minus     bool
	selectAll bool
	name      string
}

func parse(raw string) expr {
	e := expr{name: raw}
loop:
	for {
		switch {
		case strings.HasPrefix(e.name, "!"):
			e.forced = true
			e.name = e.name[1:]
		case strings.HasPrefix(e.name, "+"):
			e.plus = true
			e.name = e.name[1:]
		case strings.HasPrefix(e.name, "^"):
			// "^" explicitly requests just the named step with no
			// dependency expansion. That is already the default for a
			// bare name, so the flag is consumed and otherwise a no-op.
			e.name = e.name[1:]
		case strings.HasPrefix(e.name, "-"):
			e.minus = true
			e.name = e.name[1:]
		default:
			break loop
		}
	}
	if e.name == "=..." {
		e.selectAll = true
		e.name = ""
	}
	return e
}

// entry tracks a selection's live annotation plus the order it was first
// inserted, for stable tie-breaking in the final topological sort.
type entry struct {
	sel   domain.TargetSelection
	order int
}

// Select resolves target expressions to an ordered, topologically sorted
// list of TargetSelection.
func Select(tree *domain.ParseTree, exprs []string) ([]domain.TargetSelection, error) {
	idx := buildIndex(tree)
	selected := make(map[int]*entry)
	order := 0

	upsert := func(i int, sel domain.TargetSelection) {
		if existing, ok := selected[i]; ok {
			if sel.Stronger(existing.sel) {
				existing.sel = sel
			}
			return
		}
		selected[i] = &entry{sel: sel, order: order}
		order++
	}

	for _, raw := range exprs {
		e := parse(raw)

		if e.selectAll {
			buildKind := domain.BuildNormal
			if e.forced {
				buildKind = domain.BuildForced
			}
			for i := range tree.Steps {
				upsert(i, domain.TargetSelection{Index: i, Build: buildKind, MatchType: domain.MatchOutput})
			}
			continue
		}

		matches, matchType, err := resolve(idx, e.name)
		if err != nil {
			return nil, err
		}

		if e.minus {
			for _, i := range matches {
				delete(selected, i)
			}
			continue
		}

		buildKind := domain.BuildNormal
		if e.forced {
			buildKind = domain.BuildForced
		}
		for _, i := range matches {
			upsert(i, domain.TargetSelection{Index: i, Build: buildKind, MatchType: matchType})
			if e.plus {
				for _, dep := range tree.AllDependencies(i) {
					upsert(dep, domain.TargetSelection{Index: dep, Build: domain.BuildNormal, MatchType: domain.MatchOutput})
				}
			}
		}
	}

	return topoSort(tree, selected), nil
}

func resolve(idx index, name string) ([]int, domain.MatchType, error) {
	if i, ok := idx.byOutput[name]; ok {
		return []int{i}, domain.MatchOutput, nil
	}
	if is, ok := idx.byTag[name]; ok {
		return is, domain.MatchTag, nil
	}
	if is, ok := idx.byMethod[name]; ok {
		return is, domain.MatchMethod, nil
	}
	return nil, "", zerr.With(domain.ErrInvalidTarget, "target", name)
}

// topoSort orders the selected indices so every dependency that is itself
// selected precedes its dependent, breaking ties by first-insertion order.
func topoSort(tree *domain.ParseTree, selected map[int]*entry) []domain.TargetSelection {
	inDegree := make(map[int]int, len(selected))
	for i := range selected {
		deg := 0
		for _, dep := range tree.Dependencies(i) {
			if _, ok := selected[dep]; ok {
				deg++
			}
		}
		inDegree[i] = deg
	}

	var ready []int
	for i, deg := range inDegree {
		if deg == 0 {
			ready = append(ready, i)
		}
	}

	out := make([]domain.TargetSelection, 0, len(selected))
	remaining := len(selected)
	for remaining > 0 {
		sort.Slice(ready, func(a, b int) bool { return selected[ready[a]].order < selected[ready[b]].order })
		next := ready[0]
		ready = ready[1:]
		remaining--

		out = append(out, selected[next].sel)
		for _, dep := range tree.Dependents(next) {
			if _, ok := selected[dep]; !ok {
				continue
			}
			inDegree[dep]--
			if inDegree[dep] == 0 {
				ready = append(ready, dep)
			}
		}
	}

	return out
}
