package pinecone

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docsmith-ai/docsmith/internal/core"
)

// fakeIndex emulates enough of the control and data plane for the client.
type fakeIndex struct {
	mu      sync.Mutex
	created bool
	dim     int
	records map[string]map[string]core.VectorRecord // namespace -> id -> record

	server *httptest.Server
}

func newFakeIndex(t *testing.T, preexisting bool) *fakeIndex {
	t.Helper()
	f := &fakeIndex{created: preexisting, records: make(map[string]map[string]core.VectorRecord)}
	mux := http.NewServeMux()

	mux.HandleFunc("GET /indexes/{name}", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		if !f.created {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		json.NewEncoder(w).Encode(map[string]string{"name": r.PathValue("name"), "host": f.server.URL})
	})
	mux.HandleFunc("POST /indexes", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Name      string `json:"name"`
			Dimension int    `json:"dimension"`
			Metric    string `json:"metric"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "cosine", req.Metric)
		f.mu.Lock()
		f.created = true
		f.dim = req.Dimension
		f.mu.Unlock()
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]string{"name": req.Name, "host": f.server.URL})
	})
	mux.HandleFunc("POST /vectors/upsert", func(w http.ResponseWriter, r *http.Request) {
		var req upsertRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		f.mu.Lock()
		defer f.mu.Unlock()
		ns, ok := f.records[req.Namespace]
		if !ok {
			ns = make(map[string]core.VectorRecord)
			f.records[req.Namespace] = ns
		}
		for _, rec := range req.Vectors {
			ns[rec.ID] = rec
		}
		json.NewEncoder(w).Encode(map[string]int{"upsertedCount": len(req.Vectors)})
	})
	mux.HandleFunc("GET /vectors/list", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		var resp listResponse
		for id := range f.records[r.URL.Query().Get("namespace")] {
			resp.Vectors = append(resp.Vectors, struct {
				ID string `json:"id"`
			}{ID: id})
		}
		json.NewEncoder(w).Encode(resp)
	})
	mux.HandleFunc("POST /vectors/delete", func(w http.ResponseWriter, r *http.Request) {
		var req deleteRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		f.mu.Lock()
		defer f.mu.Unlock()
		if req.DeleteAll {
			delete(f.records, req.Namespace)
		} else {
			for _, id := range req.IDs {
				delete(f.records[req.Namespace], id)
			}
		}
		w.Write([]byte("{}"))
	})

	f.server = httptest.NewServer(mux)
	t.Cleanup(f.server.Close)
	return f
}

func (f *fakeIndex) client() *Client {
	return NewClient(Config{
		APIKey:     "test-key",
		IndexName:  "docsmith-test",
		Cloud:      "aws",
		Region:     "us-east-1",
		ControlURL: f.server.URL,
	})
}

func TestEnsureIndexCreatesWhenAbsent(t *testing.T) {
	f := newFakeIndex(t, false)
	c := f.client()

	require.NoError(t, c.EnsureIndex(context.Background(), 384))
	assert.True(t, f.created)
	assert.Equal(t, 384, f.dim)

	// Second call is idempotent: the index now exists, no recreate.
	require.NoError(t, c.EnsureIndex(context.Background(), 384))
}

func TestEnsureIndexExisting(t *testing.T) {
	f := newFakeIndex(t, true)
	c := f.client()
	require.NoError(t, c.EnsureIndex(context.Background(), 384))
	assert.Equal(t, 0, f.dim) // create path never ran
}

func TestDataPlaneRequiresEnsureIndex(t *testing.T) {
	f := newFakeIndex(t, true)
	c := f.client()
	err := c.Upsert(context.Background(), "ns", []core.VectorRecord{{ID: "a"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "EnsureIndex")
}

func TestUpsertListDelete(t *testing.T) {
	ctx := context.Background()
	f := newFakeIndex(t, true)
	c := f.client()
	require.NoError(t, c.EnsureIndex(ctx, 2))

	records := []core.VectorRecord{
		{ID: "Abc.txt#chunk_0", Values: []float32{1, 0}, Metadata: core.ChunkMetadata{Text: "first", FileName: "abc.txt"}},
		{ID: "Abc.txt#chunk_1", Values: []float32{0, 1}, Metadata: core.ChunkMetadata{Text: "second", FileName: "abc.txt"}},
	}
	require.NoError(t, c.Upsert(ctx, "ns", records))
	// Idempotent overwrite: one record per id.
	require.NoError(t, c.Upsert(ctx, "ns", records))

	ids, err := c.ListIDs(ctx, "ns")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"Abc.txt#chunk_0", "Abc.txt#chunk_1"}, ids)

	require.NoError(t, c.Delete(ctx, "ns", []string{"Abc.txt#chunk_0"}))
	ids, err = c.ListIDs(ctx, "ns")
	require.NoError(t, err)
	assert.Equal(t, []string{"Abc.txt#chunk_1"}, ids)

	require.NoError(t, c.DeleteAll(ctx, "ns"))
	ids, err = c.ListIDs(ctx, "ns")
	require.NoError(t, err)
	assert.Empty(t, ids)
}
