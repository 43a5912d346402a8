// Package chunk splits extracted text artifacts into fixed-size word windows
// and writes them to the pending ledger.
package chunk

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/docsmith-ai/docsmith/internal/core"
	"github.com/docsmith-ai/docsmith/internal/filename"
	"github.com/docsmith-ai/docsmith/internal/ledger"
)

// DefaultChunkSize is the word-count window used when no size is configured.
const DefaultChunkSize = 512

const dateLayout = "2006-01-02"

// SourceFile is one extracted text artifact plus its filesystem attributes.
// Timestamps are truncated to day granularity.
type SourceFile struct {
	Content          string
	CreationDate     string
	LastModifiedDate string
	Path             string
	Size             int64
}

// Record is one chunk of a source file, identified by "<filename>#chunk_<index>".
// The chunk text lives in Metadata.Text.
type Record struct {
	ID       string
	Index    int
	Values   []float32
	Metadata core.ChunkMetadata
}

// ReadFiles scans dir non-recursively and returns the content and attributes
// of every .txt file, keyed by file name.
//
// Linux exposes no portable file birth time, so the creation date falls back
// to the modification time at the same granularity.
func ReadFiles(dir string) (map[string]SourceFile, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read directory %s: %w", dir, err)
	}

	files := make(map[string]SourceFile)
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".txt" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		info, err := entry.Info()
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", path, err)
		}
		content, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		day := info.ModTime().Format(dateLayout)
		files[entry.Name()] = SourceFile{
			Content:          string(content),
			CreationDate:     day,
			LastModifiedDate: day,
			Path:             path,
			Size:             info.Size(),
		}
	}
	return files, nil
}

// Split tokenizes each file's content on whitespace and groups the words into
// consecutive non-overlapping windows of chunkSize. The final window may be
// shorter; empty content yields zero chunks. Records are ordered by file name
// and chunk index, so the output is deterministic for identical input.
func Split(files map[string]SourceFile, chunkSize int) []Record {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}

	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)

	var records []Record
	for _, name := range names {
		src := files[name]
		words := strings.Fields(src.Content)
		for i := 0; i < len(words); i += chunkSize {
			end := min(i+chunkSize, len(words))
			idx := i / chunkSize
			records = append(records, Record{
				ID:    fmt.Sprintf("%s#chunk_%d", name, idx),
				Index: idx,
				Metadata: core.ChunkMetadata{
					Text:             strings.Join(words[i:end], " "),
					CreationDate:     src.CreationDate,
					FileName:         filepath.Base(src.Path),
					FilePath:         src.Path,
					FileSize:         src.Size,
					LastModifiedDate: src.LastModifiedDate,
				},
			})
		}
	}
	return records
}

// Write rebuilds the ledger at ledgerPath from records. The id of every entry
// is the normalized chunk id; vectors stay empty unless a record already
// carries one. This is a destructive rebuild, not a merge.
func Write(records []Record, ledgerPath string) error {
	entries := make([]ledger.Entry, 0, len(records))
	for _, rec := range records {
		entries = append(entries, ledger.Entry{
			ID:       filename.Normalize(rec.ID),
			Values:   rec.Values,
			Metadata: rec.Metadata,
		})
	}
	return ledger.Save(ledgerPath, entries)
}
