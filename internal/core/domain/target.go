package domain

// BuildKind distinguishes a normal (timestamp-driven) selection from one
// the user marked forced with "!".
type BuildKind string

const (
	// BuildNormal is the default: the oracle decides whether to build.
	BuildNormal BuildKind = "normal"
	// BuildForced means the step runs unconditionally.
	BuildForced BuildKind = "forced"
)

// MatchType records how a target expression resolved to a step.
type MatchType string

const (
	// MatchOutput means the expression matched one of the step's outputs.
	MatchOutput MatchType = "output"
	// MatchTag means the expression matched one of the step's output tags.
	MatchTag MatchType = "tag"
	// MatchMethod means the expression matched via a method name.
	MatchMethod MatchType = "method"
)

// TargetSelection is the Target Selector's output record. Cause is
// populated later, by the Predictor querying the Staleness Oracle.
type TargetSelection struct {
	Index     int
	Build     BuildKind
	MatchType MatchType
	Cause     string
}

// Stronger reports whether the build/match annotation of s beats that of
// other when two selections collapse onto the same step index: forced
// beats normal, and among equal build kinds the most-specific match type
// wins.
func (s TargetSelection) Stronger(other TargetSelection) bool {
	if s.Build != other.Build {
		return s.Build == BuildForced
	}
	return matchSpecificity(s.MatchType) > matchSpecificity(other.MatchType)
}

// matchSpecificity ranks match types for the "most-specific wins" rule: an
// output name identifies exactly one step, a tag usually a handful, and a
// method potentially every step that inherits from it — so output > tag >
// method.
func matchSpecificity(m MatchType) int {
	switch m {
	case MatchOutput:
		return 3
	case MatchTag:
		return 2
	case MatchMethod:
		return 1
	default:
		return 0
	}
}
