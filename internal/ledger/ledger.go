// Package ledger is the on-disk manifest of chunk records pending embedding or
// upsert. The file is the sole persisted record of not-yet-published work; once
// an id is confirmed upserted its entry must be pruned.
package ledger

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/docsmith-ai/docsmith/internal/core"
)

// Entry is one pending chunk record. Values stays empty until the embedder
// fills it.
type Entry struct {
	ID       string             `json:"id"`
	Values   []float32          `json:"values"`
	Metadata core.ChunkMetadata `json:"metadata"`
}

// Load reads the whole ledger. A missing file is not an error: it reads as an
// empty ledger.
func Load(path string) ([]Entry, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read ledger %s: %w", path, err)
	}
	var entries []Entry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("parse ledger %s: %w", path, err)
	}
	return entries, nil
}

// Save rewrites the ledger wholesale. Unfilled vectors are written as [] so the
// file shape stays stable for every reader.
func Save(path string, entries []Entry) error {
	if entries == nil {
		entries = []Entry{}
	}
	for i := range entries {
		if entries[i].Values == nil {
			entries[i].Values = []float32{}
		}
	}
	raw, err := json.MarshalIndent(entries, "", "    ")
	if err != nil {
		return fmt.Errorf("encode ledger: %w", err)
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return fmt.Errorf("write ledger %s: %w", path, err)
	}
	return nil
}

// Prune returns the entries whose id is not in upserted, preserving order.
func Prune(entries []Entry, upserted []string) []Entry {
	done := make(map[string]struct{}, len(upserted))
	for _, id := range upserted {
		done[id] = struct{}{}
	}
	kept := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if _, ok := done[e.ID]; !ok {
			kept = append(kept, e)
		}
	}
	return kept
}
