package domain

// Fragment is one piece of a command line as produced by the workflow
// parser: either a literal string or a reference to a variable name that
// must be resolved during materialization.
type Fragment struct {
	Literal string
	VarRef  string
	isVar   bool
}

// NewLiteral builds a literal text fragment.
func NewLiteral(s string) Fragment {
	return Fragment{Literal: s}
}

// NewVarRef builds a fragment that refers to variable name.
func NewVarRef(name string) Fragment {
	return Fragment{VarRef: name, isVar: true}
}

// IsVarRef reports whether this fragment is a variable reference rather
// than a literal.
func (f Fragment) IsVarRef() bool {
	return f.isVar
}

// CmdLine is a single command line: an ordered sequence of fragments that
// is concatenated after variable substitution.
type CmdLine []Fragment
