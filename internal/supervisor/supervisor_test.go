package supervisor

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHasFlag(t *testing.T) {
	flags := []string{"up", "broadcast", "multicast"}
	assert.True(t, hasFlag(flags, "up"))
	assert.True(t, hasFlag(flags, "UP"))
	assert.False(t, hasFlag(flags, "loopback"))
}

func TestCreateAndClearLogFile_TruncatesExisting(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "event_stdout.txt")
	require.NoError(t, os.WriteFile(path, []byte("stale content"), 0o644))

	f, err := createAndClearLogFile(path)
	require.NoError(t, err)
	defer f.Close()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Empty(t, data)
}

func TestCreateAndClearLogFile_CreatesMissing(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "task_stderr.txt")

	f, err := createAndClearLogFile(path)
	require.NoError(t, err)
	defer f.Close()

	_, err = os.Stat(path)
	assert.NoError(t, err)
}
