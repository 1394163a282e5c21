package mcpserver

import (
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erraggy/resmerge/merger"
)

// clearRESMERGEEnv clears all RESMERGE_* env vars to isolate tests from the ambient environment.
func clearRESMERGEEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"RESMERGE_INCREMENTAL", "RESMERGE_CLEAN",
		"RESMERGE_PARALLEL_LOAD", "RESMERGE_MERGE_TIMEOUT",
		"RESMERGE_VALUES_FILE_NAME", "RESMERGE_SNAPSHOT_NAME",
		"RESMERGE_INSPECT_LIMIT", "RESMERGE_MAX_LIMIT",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	clearRESMERGEEnv(t)

	c := loadConfig()

	assert.True(t, c.Incremental)
	assert.True(t, c.Clean)
	assert.Equal(t, runtime.GOMAXPROCS(0), c.ParallelLoad)
	assert.Equal(t, 5*time.Minute, c.MergeTimeout)
	assert.Equal(t, merger.DefaultValuesFileName, c.ValuesFileName)
	assert.Equal(t, merger.DefaultSnapshotName, c.SnapshotName)
	assert.Equal(t, 100, c.InspectLimit)
	assert.Equal(t, 1000, c.MaxLimit)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	clearRESMERGEEnv(t)
	t.Setenv("RESMERGE_INCREMENTAL", "false")
	t.Setenv("RESMERGE_CLEAN", "0")
	t.Setenv("RESMERGE_PARALLEL_LOAD", "2")
	t.Setenv("RESMERGE_MERGE_TIMEOUT", "30s")
	t.Setenv("RESMERGE_VALUES_FILE_NAME", "merged.xml")
	t.Setenv("RESMERGE_SNAPSHOT_NAME", "state.yaml")
	t.Setenv("RESMERGE_INSPECT_LIMIT", "20")
	t.Setenv("RESMERGE_MAX_LIMIT", "500")

	c := loadConfig()

	assert.False(t, c.Incremental)
	assert.False(t, c.Clean)
	assert.Equal(t, 2, c.ParallelLoad)
	assert.Equal(t, 30*time.Second, c.MergeTimeout)
	assert.Equal(t, "merged.xml", c.ValuesFileName)
	assert.Equal(t, "state.yaml", c.SnapshotName)
	assert.Equal(t, 20, c.InspectLimit)
	assert.Equal(t, 500, c.MaxLimit)
}

func TestLoadConfig_InvalidValuesFallBack(t *testing.T) {
	clearRESMERGEEnv(t)
	t.Setenv("RESMERGE_INCREMENTAL", "maybe")
	t.Setenv("RESMERGE_PARALLEL_LOAD", "-3")
	t.Setenv("RESMERGE_MERGE_TIMEOUT", "soon")
	t.Setenv("RESMERGE_VALUES_FILE_NAME", "merged.json")
	t.Setenv("RESMERGE_SNAPSHOT_NAME", "../escape.yaml")
	t.Setenv("RESMERGE_INSPECT_LIMIT", "abc")

	c := loadConfig()

	assert.True(t, c.Incremental)
	assert.Equal(t, runtime.GOMAXPROCS(0), c.ParallelLoad)
	assert.Equal(t, 5*time.Minute, c.MergeTimeout)
	assert.Equal(t, merger.DefaultValuesFileName, c.ValuesFileName)
	assert.Equal(t, merger.DefaultSnapshotName, c.SnapshotName)
	assert.Equal(t, 100, c.InspectLimit)
}

func TestMergerOptionsAreValid(t *testing.T) {
	clearRESMERGEEnv(t)

	_, err := merger.New(loadConfig().mergerOptions()...)
	require.NoError(t, err)
}
