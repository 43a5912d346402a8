// Package pgvector implements the core.VectorStore contract on Postgres with
// the pgvector extension. One table holds every namespace, keyed (namespace, id).
package pgvector

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/pgvector/pgvector-go"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/docsmith-ai/docsmith/internal/core"
)

type Store struct {
	db *sql.DB
}

func NewStore(ctx context.Context, databaseURL string) (*Store, error) {
	if databaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is empty")
	}
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// EnsureIndex bootstraps the extension, table and indexes. Idempotent; the
// dimension is fixed at first creation.
func (s *Store) EnsureIndex(ctx context.Context, dimension int) error {
	if dimension <= 0 {
		return fmt.Errorf("invalid dimension %d", dimension)
	}
	stmts := []string{
		`CREATE EXTENSION IF NOT EXISTS vector`,
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS chunk_vectors (
				namespace  text NOT NULL,
				id         text NOT NULL,
				embedding  vector(%d) NOT NULL,
				metadata   jsonb NOT NULL,
				updated_at timestamptz NOT NULL DEFAULT now(),
				PRIMARY KEY (namespace, id)
			)`, dimension),
		`CREATE INDEX IF NOT EXISTS chunk_vectors_namespace_idx ON chunk_vectors (namespace)`,
	}
	for _, q := range stmts {
		if _, err := s.db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("bootstrap chunk_vectors: %w", err)
		}
	}
	return nil
}

// Upsert inserts every record in a single transaction, overwriting on
// (namespace, id) conflicts.
func (s *Store) Upsert(ctx context.Context, namespace string, records []core.VectorRecord) error {
	if len(records) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return err
	}

	const q = `
		INSERT INTO chunk_vectors (namespace, id, embedding, metadata, updated_at)
		VALUES ($1, $2, $3, $4, now())
		ON CONFLICT (namespace, id)
		DO UPDATE SET embedding = EXCLUDED.embedding, metadata = EXCLUDED.metadata, updated_at = now()
	`
	stmt, err := tx.PrepareContext(ctx, q)
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	defer stmt.Close()

	for i := range records {
		rec := &records[i]
		meta, err := json.Marshal(rec.Metadata)
		if err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("encode metadata for %s: %w", rec.ID, err)
		}
		if _, err := stmt.ExecContext(ctx, namespace, rec.ID, pgvector.NewVector(rec.Values), meta); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("upsert %s: %w", rec.ID, err)
		}
	}
	return tx.Commit()
}

func (s *Store) ListIDs(ctx context.Context, namespace string) ([]string, error) {
	const q = `SELECT id FROM chunk_vectors WHERE namespace = $1 ORDER BY id`
	rows, err := s.db.QueryContext(ctx, q, namespace)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (s *Store) Delete(ctx context.Context, namespace string, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return err
	}
	const q = `DELETE FROM chunk_vectors WHERE namespace = $1 AND id = $2`
	stmt, err := tx.PrepareContext(ctx, q)
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	defer stmt.Close()

	for _, id := range ids {
		if _, err := stmt.ExecContext(ctx, namespace, id); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("delete %s: %w", id, err)
		}
	}
	return tx.Commit()
}

func (s *Store) DeleteAll(ctx context.Context, namespace string) error {
	const q = `DELETE FROM chunk_vectors WHERE namespace = $1`
	_, err := s.db.ExecContext(ctx, q, namespace)
	return err
}

// Query returns the topK closest records by cosine distance.
func (s *Store) Query(ctx context.Context, namespace string, vector []float32, topK int) ([]core.VectorMatch, error) {
	const q = `
		SELECT id, metadata, 1 - (embedding <=> $2) AS score
		FROM chunk_vectors
		WHERE namespace = $1
		ORDER BY embedding <=> $2
		LIMIT $3
	`
	rows, err := s.db.QueryContext(ctx, q, namespace, pgvector.NewVector(vector), topK)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var matches []core.VectorMatch
	for rows.Next() {
		var (
			m    core.VectorMatch
			meta []byte
		)
		if err := rows.Scan(&m.ID, &meta, &m.Score); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(meta, &m.Metadata); err != nil {
			return nil, fmt.Errorf("decode metadata for %s: %w", m.ID, err)
		}
		matches = append(matches, m)
	}
	return matches, rows.Err()
}

var _ core.VectorStore = (*Store)(nil)
