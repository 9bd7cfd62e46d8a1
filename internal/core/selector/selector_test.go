package selector_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/drake/internal/core/domain"
	"go.trai.ch/drake/internal/core/selector"
)

func step(inputs, outputs, outputTags []string) domain.Step {
	return domain.Step{Inputs: inputs, Outputs: outputs, OutputTags: outputTags, Opts: domain.StepOpts{Timecheck: true}}
}

func buildTree(t *testing.T, steps []domain.Step) *domain.ParseTree {
	tree, err := domain.NewParseTree(steps, nil)
	require.NoError(t, err)
	return tree
}

func TestSelect_ByOutputName(t *testing.T) {
	tree := buildTree(t, []domain.Step{
		step(nil, []string{"a.csv"}, nil),
		step([]string{"a.csv"}, []string{"b.csv"}, nil),
	})

	sels, err := selector.Select(tree, []string{"b.csv"})
	require.NoError(t, err)
	require.Len(t, sels, 1)
	assert.Equal(t, 1, sels[0].Index)
	assert.Equal(t, domain.MatchOutput, sels[0].MatchType)
	assert.Equal(t, domain.BuildNormal, sels[0].Build)
}

func TestSelect_UnknownTargetErrors(t *testing.T) {
	tree := buildTree(t, []domain.Step{step(nil, []string{"a.csv"}, nil)})

	_, err := selector.Select(tree, []string{"missing.csv"})
	require.ErrorIs(t, err, domain.ErrInvalidTarget)
}

func TestSelect_ForcedPrefix(t *testing.T) {
	tree := buildTree(t, []domain.Step{step(nil, []string{"a.csv"}, nil)})

	sels, err := selector.Select(tree, []string{"!a.csv"})
	require.NoError(t, err)
	require.Len(t, sels, 1)
	assert.Equal(t, domain.BuildForced, sels[0].Build)
}

func TestSelect_PlusPullsInDependencies(t *testing.T) {
	tree := buildTree(t, []domain.Step{
		step(nil, []string{"a.csv"}, nil),
		step([]string{"a.csv"}, []string{"b.csv"}, nil),
	})

	sels, err := selector.Select(tree, []string{"+b.csv"})
	require.NoError(t, err)
	require.Len(t, sels, 2)
	assert.Equal(t, 0, sels[0].Index)
	assert.Equal(t, 1, sels[1].Index)
}

func TestSelect_MinusRemovesEarlierSelection(t *testing.T) {
	tree := buildTree(t, []domain.Step{
		step(nil, []string{"a.csv"}, nil),
		step(nil, []string{"b.csv"}, nil),
	})

	sels, err := selector.Select(tree, []string{"=...", "-a.csv"})
	require.NoError(t, err)
	require.Len(t, sels, 1)
	assert.Equal(t, 1, sels[0].Index)
}

func TestSelect_SelectAll(t *testing.T) {
	tree := buildTree(t, []domain.Step{
		step(nil, []string{"a.csv"}, nil),
		step([]string{"a.csv"}, []string{"b.csv"}, nil),
	})

	sels, err := selector.Select(tree, []string{"=..."})
	require.NoError(t, err)
	require.Len(t, sels, 2)
	assert.Equal(t, 0, sels[0].Index)
	assert.Equal(t, 1, sels[1].Index)
}

func TestSelect_ByTag(t *testing.T) {
	tree := buildTree(t, []domain.Step{
		step(nil, []string{"a.csv"}, []string{"%clean"}),
		step(nil, []string{"b.csv"}, []string{"%clean"}),
	})

	sels, err := selector.Select(tree, []string{"%clean"})
	require.NoError(t, err)
	require.Len(t, sels, 2)
	for _, s := range sels {
		assert.Equal(t, domain.MatchTag, s.MatchType)
	}
}

func TestSelect_StrongerMatchWinsOnCollision(t *testing.T) {
	tree := buildTree(t, []domain.Step{step(nil, []string{"a.csv"}, []string{"%clean"})})

	sels, err := selector.Select(tree, []string{"%clean", "!a.csv"})
	require.NoError(t, err)
	require.Len(t, sels, 1)
	assert.Equal(t, domain.BuildForced, sels[0].Build)
	assert.Equal(t, domain.MatchOutput, sels[0].MatchType)
}
