package branch_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/drake/internal/core/branch"
	"go.trai.ch/drake/internal/core/domain"
	"go.trai.ch/drake/internal/core/ports"
)

type fakeFS struct {
	exists map[string]bool
}

func (f *fakeFS) DataIn(_ context.Context, path string) (bool, error) { return f.exists[path], nil }
func (f *fakeFS) NewestIn(context.Context, string) (ports.FileInfo, error) {
	return ports.FileInfo{}, nil
}
func (f *fakeFS) OldestIn(context.Context, string) (ports.FileInfo, error) {
	return ports.FileInfo{}, nil
}
func (f *fakeFS) GetBackend(string) (ports.Backend, error) { return nil, nil }
func (f *fakeFS) PathScheme(string) string                 { return "file" }
func (f *fakeFS) PathFilename(path string) string          { return path }
func (f *fakeFS) NormalizedPath(path string) string        { return path }
func (f *fakeFS) Rm(context.Context, string) error         { return nil }
func (f *fakeFS) Mv(context.Context, string, string) error { return nil }

func TestAdjust_EmptyBranchIsNoop(t *testing.T) {
	fs := &fakeFS{exists: map[string]bool{}}
	step := domain.Step{Inputs: []string{"a.csv"}, Outputs: []string{"b.csv"}}

	out, err := branch.Adjust(context.Background(), fs, step, "", false)
	require.NoError(t, err)
	assert.Equal(t, step, out)
}

func TestAdjust_OutputsAlwaysSuffixed(t *testing.T) {
	fs := &fakeFS{exists: map[string]bool{}}
	step := domain.Step{Outputs: []string{"a.csv", "b.csv"}}

	out, err := branch.Adjust(context.Background(), fs, step, "dev", false)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.csv#dev", "b.csv#dev"}, out.Outputs)
}

func TestAdjust_InputsFollowBranchCopyWhenPresent(t *testing.T) {
	fs := &fakeFS{exists: map[string]bool{"a.csv#dev": true}}
	step := domain.Step{Inputs: []string{"a.csv", "b.csv"}}

	out, err := branch.Adjust(context.Background(), fs, step, "dev", false)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.csv#dev", "b.csv"}, out.Inputs)
}

func TestAdjust_AddToAllForcesEveryInputBranched(t *testing.T) {
	fs := &fakeFS{exists: map[string]bool{}}
	step := domain.Step{Inputs: []string{"a.csv", "b.csv"}}

	out, err := branch.Adjust(context.Background(), fs, step, "dev", true)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.csv#dev", "b.csv#dev"}, out.Inputs)
}
