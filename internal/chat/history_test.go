package chat

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadMissingFile(t *testing.T) {
	h := NewHistory(filepath.Join(t.TempDir(), "database.json"))
	entries, err := h.Read(5)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestAppendAndReadLimit(t *testing.T) {
	h := NewHistory(filepath.Join(t.TempDir(), "database.json"))
	for i := 0; i < 10; i++ {
		require.NoError(t, h.Append(fmt.Sprintf("question %d", i), fmt.Sprintf("answer %d", i)))
	}

	entries, err := h.Read(5)
	require.NoError(t, err)
	require.Len(t, entries, 5)

	// The last five, in original order.
	for i, e := range entries {
		assert.Equal(t, fmt.Sprintf("question %d", i+5), e.User)
		assert.Equal(t, fmt.Sprintf("answer %d", i+5), e.Assistant)
	}
}

func TestReadNoLimitReturnsAll(t *testing.T) {
	h := NewHistory(filepath.Join(t.TempDir(), "database.json"))
	require.NoError(t, h.Append("q1", "a1"))
	require.NoError(t, h.Append("q2", "a2"))

	entries, err := h.Read(0)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestCorruptLogReadsAsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "database.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	h := NewHistory(path)
	entries, err := h.Read(5)
	require.NoError(t, err)
	assert.Empty(t, entries)

	// Appending to a corrupt log starts a fresh one.
	require.NoError(t, h.Append("q", "a"))
	entries, err = h.Read(0)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "q", entries[0].User)
}
