package ledger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docsmith-ai/docsmith/internal/core"
)

func TestLoadMissingFile(t *testing.T) {
	entries, err := Load(filepath.Join(t.TempDir(), "metadata.json"))
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "metadata.json")
	in := []Entry{
		{ID: "Notes.txt#chunk_0", Metadata: core.ChunkMetadata{Text: "hello world", FileName: "notes.txt", FileSize: 11, CreationDate: "2026-08-31", LastModifiedDate: "2026-08-31"}},
		{ID: "Notes.txt#chunk_1", Values: []float32{0.1, 0.2}, Metadata: core.ChunkMetadata{Text: "tail"}},
	}
	require.NoError(t, Save(path, in))

	out, err := Load(path)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "Notes.txt#chunk_0", out[0].ID)
	assert.Equal(t, []float32{0.1, 0.2}, out[1].Values)
	assert.Equal(t, int64(11), out[0].Metadata.FileSize)
}

func TestSaveWritesEmptyValuesAsArray(t *testing.T) {
	path := filepath.Join(t.TempDir(), "metadata.json")
	require.NoError(t, Save(path, []Entry{{ID: "A#chunk_0"}}))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"values": []`)
	assert.NotContains(t, string(raw), "null")
}

func TestSaveEmptyLedgerIsEmptyArray(t *testing.T) {
	path := filepath.Join(t.TempDir(), "metadata.json")
	require.NoError(t, Save(path, nil))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "[]", strings.TrimSpace(string(raw)))
}

func TestPrune(t *testing.T) {
	entries := []Entry{{ID: "a"}, {ID: "b"}, {ID: "c"}}

	kept := Prune(entries, []string{"a", "c"})
	require.Len(t, kept, 1)
	assert.Equal(t, "b", kept[0].ID)

	assert.Empty(t, Prune(entries, []string{"a", "b", "c"}))
	assert.Len(t, Prune(entries, nil), 3)
}
