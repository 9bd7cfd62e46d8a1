package workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.trai.ch/drake/internal/core/domain"
)

func TestSplitFragments_LiteralOnly(t *testing.T) {
	got := splitFragments("cp src dst")
	assert.Equal(t, domain.CmdLine{domain.NewLiteral("cp src dst")}, got)
}

func TestSplitFragments_SingleVarRef(t *testing.T) {
	got := splitFragments("$[INPUT]")
	assert.Equal(t, domain.CmdLine{domain.NewVarRef("INPUT")}, got)
}

func TestSplitFragments_MixedLiteralAndVarRefs(t *testing.T) {
	got := splitFragments("cp $[INPUT] $[OUTPUT]")
	assert.Equal(t, domain.CmdLine{
		domain.NewLiteral("cp "),
		domain.NewVarRef("INPUT"),
		domain.NewLiteral(" "),
		domain.NewVarRef("OUTPUT"),
	}, got)
}

func TestSplitFragments_UnterminatedRefIsLiteral(t *testing.T) {
	got := splitFragments("echo $[unterminated")
	assert.Equal(t, domain.CmdLine{domain.NewLiteral("echo $[unterminated")}, got)
}

func TestSplitFragments_DollarWithoutBracketIsLiteral(t *testing.T) {
	got := splitFragments("echo $HOME")
	assert.Equal(t, domain.CmdLine{domain.NewLiteral("echo $HOME")}, got)
}
