// Package chat persists the question/answer log as an append-only JSON array.
package chat

import (
	"encoding/json"
	"fmt"
	"os"
)

// Entry is one user/assistant exchange. Entries are appended, never mutated.
type Entry struct {
	User      string `json:"user"`
	Assistant string `json:"assistant"`
}

type History struct {
	path string
}

func NewHistory(path string) *History {
	return &History{path: path}
}

// Read returns the last limit entries in original order; limit <= 0 returns
// everything. A missing or unreadable log reads as empty rather than failing
// the caller.
func (h *History) Read(limit int) ([]Entry, error) {
	raw, err := os.ReadFile(h.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read chat history %s: %w", h.path, err)
	}
	var entries []Entry
	if err := json.Unmarshal(raw, &entries); err != nil {
		// A corrupt log starts over, matching an empty history.
		return nil, nil
	}
	if limit > 0 && len(entries) > limit {
		entries = entries[len(entries)-limit:]
	}
	return entries, nil
}

// Append adds one exchange to the end of the log, creating the file on demand.
func (h *History) Append(user, assistant string) error {
	entries, err := h.Read(0)
	if err != nil {
		return err
	}
	entries = append(entries, Entry{User: user, Assistant: assistant})

	raw, err := json.MarshalIndent(entries, "", "    ")
	if err != nil {
		return fmt.Errorf("encode chat history: %w", err)
	}
	if err := os.WriteFile(h.path, raw, 0o644); err != nil {
		return fmt.Errorf("write chat history %s: %w", h.path, err)
	}
	return nil
}
