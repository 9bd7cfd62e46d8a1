package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/drake/internal/core/domain"
)

func step(inputs, outputs []string) domain.Step {
	return domain.Step{Inputs: inputs, Outputs: outputs, Opts: domain.StepOpts{Timecheck: true}}
}

func TestNewParseTree_BuildsDependencyEdges(t *testing.T) {
	steps := []domain.Step{
		step(nil, []string{"a.csv"}),
		step([]string{"a.csv"}, []string{"b.csv"}),
		step([]string{"b.csv"}, []string{"c.csv"}),
	}

	tree, err := domain.NewParseTree(steps, nil)
	require.NoError(t, err)

	assert.Equal(t, []int{0}, tree.Dependencies(1))
	assert.Equal(t, []int{1}, tree.Dependencies(2))
	assert.Equal(t, []int{1}, tree.Dependents(0))
	assert.ElementsMatch(t, []int{0, 1}, tree.AllDependencies(2))
}

func TestNewParseTree_DetectsCycle(t *testing.T) {
	steps := []domain.Step{
		step([]string{"b.csv"}, []string{"a.csv"}),
		step([]string{"a.csv"}, []string{"b.csv"}),
	}

	_, err := domain.NewParseTree(steps, nil)
	require.ErrorIs(t, err, domain.ErrCycleDetected)
}

func TestNewParseTree_SelfLoopIsACycle(t *testing.T) {
	steps := []domain.Step{
		step([]string{"a.csv"}, []string{"a.csv"}),
	}

	_, err := domain.NewParseTree(steps, nil)
	require.ErrorIs(t, err, domain.ErrCycleDetected)
}

func TestNewParseTree_TagEdgesViaInputTagIdx(t *testing.T) {
	steps := []domain.Step{
		step(nil, []string{"a.csv"}),
		{Inputs: nil, Outputs: []string{"b.csv"}, InputTags: []string{"%raw"}, InputTagIdx: []int{0}},
	}

	tree, err := domain.NewParseTree(steps, nil)
	require.NoError(t, err)
	assert.Equal(t, []int{0}, tree.Dependencies(1))
}

func TestParseTree_Method(t *testing.T) {
	methods := map[string]domain.Method{"base": {Vars: map[string]string{"X": "1"}}}
	tree, err := domain.NewParseTree(nil, methods)
	require.NoError(t, err)

	m, ok := tree.Method("base")
	require.True(t, ok)
	assert.Equal(t, "1", m.Vars["X"])

	_, ok = tree.Method("missing")
	assert.False(t, ok)
}
