package core

import "context"

// ChunkMetadata is the metadata block stored alongside every vector, both in
// the local ledger and in the remote index.
type ChunkMetadata struct {
	Text             string `json:"text"`
	CreationDate     string `json:"creation_date"`
	FileName         string `json:"file_name"`
	FilePath         string `json:"file_path"`
	FileSize         int64  `json:"file_size"`
	LastModifiedDate string `json:"last_modified_date"`
}

// VectorRecord is one upsertable record of the remote index.
type VectorRecord struct {
	ID       string        `json:"id"`
	Values   []float32     `json:"values"`
	Metadata ChunkMetadata `json:"metadata"`
}

// VectorMatch is one similarity-query hit.
type VectorMatch struct {
	ID       string        `json:"id"`
	Score    float32       `json:"score"`
	Metadata ChunkMetadata `json:"metadata"`
}

// VectorStore wraps a namespaced remote vector index. Upsert is an idempotent
// overwrite by id; DeleteAll wipes a whole namespace.
type VectorStore interface {
	EnsureIndex(ctx context.Context, dimension int) error
	Upsert(ctx context.Context, namespace string, records []VectorRecord) error
	ListIDs(ctx context.Context, namespace string) ([]string, error)
	Delete(ctx context.Context, namespace string, ids []string) error
	DeleteAll(ctx context.Context, namespace string) error
	Query(ctx context.Context, namespace string, vector []float32, topK int) ([]VectorMatch, error)
}
