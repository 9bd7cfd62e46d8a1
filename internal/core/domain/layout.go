package domain

import (
	"path/filepath"
	"sort"
	"strconv"

	"github.com/cespare/xxhash/v2"
)

const (
	// StateDirName is the name of the per-workflow state directory that
	// holds persisted variable dumps.
	StateDirName = ".drake"

	// DefaultWorkflowName is the file name resolved when Options.Workflow
	// is unset.
	DefaultWorkflowName = "workflow.yml"
)

// VarsDumpPath returns the path a Runner persists a step's resolved
// variable environment to before executing it:
// <workflow-dir>/.drake/<step-dirname>/vars-<start-time>.
func VarsDumpPath(workflowDir, stepDirName string, startUnixNano int64) string {
	return filepath.Join(
		workflowDir, StateDirName, stepDirName,
		"vars-"+strconv.FormatInt(startUnixNano, 10),
	)
}

// StepDirName derives the stable per-step identifier used to namespace
// persisted state. It is deterministic in the step's outputs and output
// tags: sort the identifying strings, join them, hash with xxhash for a
// short, filesystem-safe name.
func StepDirName(outputs, outputTags []string) string {
	names := make([]string, 0, len(outputs)+len(outputTags))
	names = append(names, outputs...)
	names = append(names, outputTags...)
	sort.Strings(names)

	h := xxhash.New()
	for _, n := range names {
		_, _ = h.WriteString(n)
		_, _ = h.WriteString("\x00")
	}
	return strconv.FormatUint(h.Sum64(), 16)
}
