// Package memory is a map-backed core.VectorStore used by tests and local runs.
package memory

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/docsmith-ai/docsmith/internal/core"
)

type Store struct {
	mu         sync.RWMutex
	dimension  int
	namespaces map[string]map[string]core.VectorRecord
}

func NewStore() *Store {
	return &Store{namespaces: make(map[string]map[string]core.VectorRecord)}
}

func (s *Store) EnsureIndex(_ context.Context, dimension int) error {
	if dimension <= 0 {
		return fmt.Errorf("invalid dimension %d", dimension)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dimension != 0 && s.dimension != dimension {
		return fmt.Errorf("index already exists with dimension %d", s.dimension)
	}
	s.dimension = dimension
	return nil
}

// Upsert overwrites by id; last write wins.
func (s *Store) Upsert(_ context.Context, namespace string, records []core.VectorRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ns, ok := s.namespaces[namespace]
	if !ok {
		ns = make(map[string]core.VectorRecord)
		s.namespaces[namespace] = ns
	}
	for _, rec := range records {
		if s.dimension != 0 && len(rec.Values) != s.dimension {
			return fmt.Errorf("record %s: vector length %d does not match index dimension %d", rec.ID, len(rec.Values), s.dimension)
		}
		ns[rec.ID] = rec
	}
	return nil
}

func (s *Store) ListIDs(_ context.Context, namespace string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.namespaces[namespace]))
	for id := range s.namespaces[namespace] {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func (s *Store) Delete(_ context.Context, namespace string, ids []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ns := s.namespaces[namespace]
	for _, id := range ids {
		delete(ns, id)
	}
	return nil
}

func (s *Store) DeleteAll(_ context.Context, namespace string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.namespaces, namespace)
	return nil
}

func (s *Store) Query(_ context.Context, namespace string, vector []float32, topK int) ([]core.VectorMatch, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	matches := make([]core.VectorMatch, 0, len(s.namespaces[namespace]))
	for _, rec := range s.namespaces[namespace] {
		matches = append(matches, core.VectorMatch{
			ID:       rec.ID,
			Score:    cosine(vector, rec.Values),
			Metadata: rec.Metadata,
		})
	}
	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		return matches[i].ID < matches[j].ID
	})
	if topK > 0 && len(matches) > topK {
		matches = matches[:topK]
	}
	return matches, nil
}

func cosine(a, b []float32) float32 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(na) * math.Sqrt(nb)))
}

var _ core.VectorStore = (*Store)(nil)
