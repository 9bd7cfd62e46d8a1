// Package materializer implements the Step Materializer: it
// turns a Step plus its inherited Method into a ports.MaterializedStep a
// Protocol can run — resolving method inheritance, building the variable
// scope, substituting fragments, and de-spacing command lines.
package materializer

import (
	"context"
	"os"
	"strconv"
	"strings"

	"go.trai.ch/drake/internal/core/branch"
	"go.trai.ch/drake/internal/core/domain"
	"go.trai.ch/drake/internal/core/ports"
	"go.trai.ch/zerr"
)

// Materialize builds the executable form of step. tree resolves the
// method named by step.Opts.Method, if any; fsys and branchName drive the
// same branch-adjustment the Oracle applies (addToAll=false): each input
// reads its branch-namespaced copy if one exists when the step is
// materialized, else the base path. cliVars holds the --vars
// overrides, which rank above the OS environment but below step/method
// vars in the substitution scope.
func Materialize(ctx context.Context, fsys ports.Filesystem, tree *domain.ParseTree, step domain.Step, branchName string, cliVars map[string]string, protocolRequiresCmds bool) (ports.MaterializedStep, error) {
	for _, in := range step.Inputs {
		if strings.HasPrefix(in, "?") {
			return ports.MaterializedStep{}, zerr.With(domain.ErrUnsupportedOptionalInput, "input", in)
		}
	}

	adjusted, err := branch.Adjust(ctx, fsys, step, branchName, false)
	if err != nil {
		return ports.MaterializedStep{}, err
	}

	normInputs := normalizeAll(fsys, adjusted.Inputs)
	normOutputs := normalizeAll(fsys, adjusted.Outputs)

	vars, cmdLines, err := resolveInheritance(tree, step)
	if err != nil {
		return ports.MaterializedStep{}, err
	}

	varsEnv := buildVarsEnv(cliVars, vars, normInputs, normOutputs)

	cmds, err := substitute(cmdLines, varsEnv)
	if err != nil {
		return ports.MaterializedStep{}, err
	}
	cmds = despace(cmds)

	if len(cmds) == 0 && protocolRequiresCmds {
		return ports.MaterializedStep{}, domain.ErrEmptyCommands
	}

	return ports.MaterializedStep{
		Inputs:  normInputs,
		Outputs: normOutputs,
		Cmds:    cmds,
		VarsEnv: varsEnv,
	}, nil
}

func normalizeAll(fsys ports.Filesystem, paths []string) []string {
	out := make([]string, len(paths))
	for i, p := range paths {
		out[i] = fsys.PathFilename(fsys.NormalizedPath(p))
	}
	return out
}

// resolveInheritance combines a step's own vars/cmds with its method's,
// per opts.method-mode: "use" (default) takes the method's commands
// wholesale, "append" runs the method's commands then the step's own, and
// "replace" keeps only the step's commands. Vars always merge, step vars
// winning ties, regardless of method-mode.
func resolveInheritance(tree *domain.ParseTree, step domain.Step) (map[string]string, []domain.CmdLine, error) {
	vars := make(map[string]string)
	var cmds []domain.CmdLine

	if step.HasMethod() {
		method, ok := tree.Method(step.Opts.Method)
		if !ok {
			return nil, nil, zerr.With(domain.ErrUnknownMethod, "method", step.Opts.Method)
		}
		for k, v := range method.Vars {
			vars[k] = v
		}
		switch step.EffectiveMethodMode() {
		case domain.MethodModeUse:
			cmds = append(cmds, method.Cmds...)
		case domain.MethodModeAppend:
			cmds = append(cmds, method.Cmds...)
			cmds = append(cmds, step.Cmds...)
		case domain.MethodModeReplace:
			cmds = append(cmds, step.Cmds...)
		}
	} else {
		cmds = append(cmds, step.Cmds...)
	}

	for k, v := range step.Vars {
		vars[k] = v
	}

	return vars, cmds, nil
}

// buildVarsEnv assembles the resolved variable scope a command line is
// substituted against, lowest precedence first: the OS environment, the
// --vars overrides, the step's own (method-merged) vars, then the
// positional INPUT/OUTPUT bindings every step gets for free.
func buildVarsEnv(cliVars, vars map[string]string, inputs, outputs []string) map[string]string {
	env := make(map[string]string, len(cliVars)+len(vars)+len(inputs)+len(outputs)+2)
	for _, kv := range os.Environ() {
		if k, v, ok := strings.Cut(kv, "="); ok {
			env[k] = v
		}
	}
	for k, v := range cliVars {
		env[k] = v
	}
	for k, v := range vars {
		env[k] = v
	}

	if len(inputs) > 0 {
		env["INPUT"] = inputs[0]
	}
	for i, in := range inputs {
		env["INPUT"+strconv.Itoa(i)] = in
	}
	env["INPUTS"] = strings.Join(inputs, " ")

	if len(outputs) > 0 {
		env["OUTPUT"] = outputs[0]
	}
	for i, out := range outputs {
		env["OUTPUT"+strconv.Itoa(i)] = out
	}
	env["OUTPUTS"] = strings.Join(outputs, " ")

	return env
}

// substitute resolves every fragment in every command line against env,
// concatenating fragments within a line.
func substitute(cmdLines []domain.CmdLine, env map[string]string) ([]string, error) {
	out := make([]string, len(cmdLines))
	for i, line := range cmdLines {
		var b strings.Builder
		for _, f := range line {
			if !f.IsVarRef() {
				b.WriteString(f.Literal)
				continue
			}
			v, ok := env[f.VarRef]
			if !ok {
				return nil, zerr.With(domain.ErrUndefinedVariable, "name", f.VarRef)
			}
			b.WriteString(v)
		}
		out[i] = b.String()
	}
	return out, nil
}

// despace strips a common leading-whitespace prefix shared by every line
// with the first, so a method's indented command block reads naturally
// when concatenated with a step's own commands.
func despace(cmds []string) []string {
	if len(cmds) == 0 {
		return cmds
	}
	prefix := leadingWhitespace(cmds[0])
	if prefix == "" {
		return cmds
	}
	out := make([]string, len(cmds))
	for i, c := range cmds {
		if strings.HasPrefix(c, prefix) {
			out[i] = c[len(prefix):]
		} else {
			out[i] = c
		}
	}
	return out
}

func leadingWhitespace(s string) string {
	i := 0
	for i < len(s) && (s[i] == ' ' || s[i] == '\t') {
		i++
	}
	return s[:i]
}
