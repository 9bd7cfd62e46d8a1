// Package workflow implements the workflow-file parser, producing a
// domain.ParseTree from a YAML document.
package workflow

import (
	"fmt"
	"os"

	"go.trai.ch/drake/internal/core/domain"
	"go.trai.ch/drake/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

type rawStep struct {
	Inputs     []string          `yaml:"inputs"`
	Outputs    []string          `yaml:"outputs"`
	InputTags  []string          `yaml:"input_tags"`
	OutputTags []string          `yaml:"output_tags"`
	Vars       map[string]string `yaml:"vars"`
	Cmds       []string          `yaml:"cmds"`
	Method     string            `yaml:"method"`
	MethodMode string            `yaml:"method-mode"`
	Timecheck  *bool             `yaml:"timecheck"`
	Protocol   string            `yaml:"protocol"`
}

type rawMethod struct {
	Vars map[string]string `yaml:"vars"`
	Cmds []string          `yaml:"cmds"`
}

type rawDocument struct {
	Vars    map[string]string    `yaml:"vars"`
	Steps   []rawStep            `yaml:"steps"`
	Methods map[string]rawMethod `yaml:"methods"`
}

// ParseFile reads and parses the workflow file at path against protocols,
// which validates every step's opts.protocol at parse time.
func ParseFile(path string, protocols ports.Registry) (*domain.ParseTree, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, zerr.With(domain.ErrWorkflowNotFound, "path", path)
		}
		return nil, zerr.Wrap(err, domain.ErrWorkflowNotFound.Error())
	}
	return Parse(data, protocols)
}

// Parse decodes a YAML workflow document into a domain.ParseTree.
func Parse(data []byte, protocols ports.Registry) (*domain.ParseTree, error) {
	var doc rawDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrSyntax, err)
	}

	methods := make(map[string]domain.Method, len(doc.Methods))
	for name, m := range doc.Methods {
		methods[name] = domain.Method{
			Vars: m.Vars,
			Cmds: compileCmds(m.Cmds),
		}
	}

	steps := make([]domain.Step, len(doc.Steps))
	for i, rs := range doc.Steps {
		if rs.Method != "" {
			if _, ok := methods[rs.Method]; !ok {
				return nil, zerr.With(domain.ErrUnknownMethod, "method", rs.Method)
			}
		}
		if rs.Protocol != "" {
			if err := ports.EnsureKnownProtocol(protocols, rs.Protocol); err != nil {
				return nil, err
			}
		}

		timecheck := true
		if rs.Timecheck != nil {
			timecheck = *rs.Timecheck
		}

		vars := mergeVars(doc.Vars, rs.Vars)

		steps[i] = domain.Step{
			Inputs:     rs.Inputs,
			Outputs:    rs.Outputs,
			InputTags:  rs.InputTags,
			OutputTags: rs.OutputTags,
			Vars:       vars,
			Cmds:       compileCmds(rs.Cmds),
			Opts: domain.StepOpts{
				Method:     rs.Method,
				MethodMode: domain.MethodMode(rs.MethodMode),
				Timecheck:  timecheck,
				Protocol:   rs.Protocol,
			},
		}
	}

	resolveInputTagIdx(steps)

	return domain.NewParseTree(steps, methods)
}

// resolveInputTagIdx populates every step's InputTagIdx with the indices
// of every step that declares one of its input tags as an output tag, so
// the core never has to re-derive tag membership itself.
func resolveInputTagIdx(steps []domain.Step) {
	producers := make(map[string][]int)
	for i, s := range steps {
		for _, t := range s.OutputTags {
			producers[t] = append(producers[t], i)
		}
	}
	for i, s := range steps {
		var idx []int
		for _, t := range s.InputTags {
			idx = append(idx, producers[t]...)
		}
		steps[i].InputTagIdx = idx
	}
}

func compileCmds(lines []string) []domain.CmdLine {
	out := make([]domain.CmdLine, len(lines))
	for i, l := range lines {
		out[i] = splitFragments(l)
	}
	return out
}

func mergeVars(base, override map[string]string) map[string]string {
	if len(base) == 0 {
		return override
	}
	merged := make(map[string]string, len(base)+len(override))
	for k, v := range base {
		merged[k] = v
	}
	for k, v := range override {
		merged[k] = v
	}
	return merged
}
