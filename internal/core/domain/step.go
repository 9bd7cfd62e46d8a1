package domain

// MethodMode controls how a step's command body relates to the method it
// inherits from.
type MethodMode string

const (
	// MethodModeUse replaces the step's commands with the method's (default).
	MethodModeUse MethodMode = "use"
	// MethodModeAppend runs the method's commands followed by the step's own.
	MethodModeAppend MethodMode = "append"
	// MethodModeReplace keeps only the step's own commands, ignoring the
	// method's command body (its vars are still inherited). Under every
	// mode a method's Opts are not merged into the step.
	MethodModeReplace MethodMode = "replace"
)

// StepOpts holds the recognized per-step options.
type StepOpts struct {
	// Method is the name of a method this step inherits from, or "" if none.
	Method string
	// MethodMode controls how Method's commands combine with the step's own.
	// Defaults to MethodModeUse when unset.
	MethodMode MethodMode
	// Timecheck disables the timestamp comparison when false. Defaults to
	// true.
	Timecheck bool
	// Protocol names the execution protocol this step runs under.
	Protocol string
}

// Step is the atomic unit of work.
type Step struct {
	Inputs     []string
	Outputs    []string
	InputTags  []string
	OutputTags []string
	Vars       map[string]string
	Cmds       []CmdLine
	Opts       StepOpts
	// InputTagIdx holds, for each name in InputTags, the indices of every
	// step that declares it as an output tag. Resolved by the parser at
	// parse time; the core never re-derives it.
	InputTagIdx []int
}

// Method is a reusable command body referenced by steps via opts.method.
// Same shape as Step but without inputs/outputs/tags.
type Method struct {
	Vars map[string]string
	Cmds []CmdLine
	Opts StepOpts
}

// HasMethod reports whether the step inherits from a method.
func (s Step) HasMethod() bool {
	return s.Opts.Method != ""
}

// EffectiveMethodMode returns the step's method-mode, defaulting to "use".
func (s Step) EffectiveMethodMode() MethodMode {
	if s.Opts.MethodMode == "" {
		return MethodModeUse
	}
	return s.Opts.MethodMode
}
