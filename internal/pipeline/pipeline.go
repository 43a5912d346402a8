// Package pipeline sequences extraction, chunking, embedding and publication,
// and keeps the local ledger consistent with the remote namespace.
package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/docsmith-ai/docsmith/internal/chunk"
	"github.com/docsmith-ai/docsmith/internal/core"
	"github.com/docsmith-ai/docsmith/internal/embed"
	"github.com/docsmith-ai/docsmith/internal/extract"
	"github.com/docsmith-ai/docsmith/internal/filename"
	"github.com/docsmith-ai/docsmith/internal/ledger"
)

// Options are the runtime knobs the orchestrator needs beyond its
// collaborators.
type Options struct {
	LedgerPath string
	ChunkSize  int
	EmbedDim   int
}

type Pipeline struct {
	store      core.VectorStore
	embedder   core.EmbeddingProvider
	extractors []extract.Extractor
	opts       Options
	log        *zap.Logger
}

func New(store core.VectorStore, embedder core.EmbeddingProvider, extractors []extract.Extractor, opts Options, log *zap.Logger) *Pipeline {
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = chunk.DefaultChunkSize
	}
	return &Pipeline{
		store:      store,
		embedder:   embedder,
		extractors: extractors,
		opts:       opts,
		log:        log,
	}
}

// Ingest runs every applicable extractor concurrently, then chunks the
// artifacts and rebuilds the pending ledger.
func (p *Pipeline) Ingest(ctx context.Context, inputDir, outputDir string) error {
	log := p.log.With(zap.String("run_id", uuid.NewString()))

	if err := extract.RunAll(ctx, log, p.extractors, inputDir, outputDir); err != nil {
		return fmt.Errorf("extract %s: %w", inputDir, err)
	}

	files, err := chunk.ReadFiles(outputDir)
	if err != nil {
		return fmt.Errorf("read artifacts: %w", err)
	}
	records := chunk.Split(files, p.opts.ChunkSize)
	if err := chunk.Write(records, p.opts.LedgerPath); err != nil {
		return fmt.Errorf("write ledger: %w", err)
	}

	log.Info("ingest complete",
		zap.Int("files", len(files)),
		zap.Int("chunks", len(records)))
	return nil
}

// VectorizeAndPublish ensures the index exists, embeds the pending ledger,
// upserts every entry into the namespace and prunes exactly the upserted ids
// from the ledger. An upsert failure leaves the ledger untouched so the work
// stays pending.
func (p *Pipeline) VectorizeAndPublish(ctx context.Context, namespace string) error {
	if err := p.store.EnsureIndex(ctx, p.opts.EmbedDim); err != nil {
		return fmt.Errorf("ensure index: %w", err)
	}

	if err := embed.Embed(ctx, p.embedder, p.opts.LedgerPath); err != nil {
		return err
	}

	entries, err := ledger.Load(p.opts.LedgerPath)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		p.log.Info("no pending records to publish")
		return nil
	}

	records := make([]core.VectorRecord, len(entries))
	upserted := make([]string, len(entries))
	for i, e := range entries {
		records[i] = core.VectorRecord{ID: e.ID, Values: e.Values, Metadata: e.Metadata}
		upserted[i] = e.ID
	}

	if err := p.store.Upsert(ctx, namespace, records); err != nil {
		return fmt.Errorf("upsert %d records: %w", len(records), err)
	}

	if err := ledger.Save(p.opts.LedgerPath, ledger.Prune(entries, upserted)); err != nil {
		// The records landed remotely; a retried publish is an idempotent
		// overwrite, so surface the prune failure instead of masking it.
		return fmt.Errorf("prune ledger after upsert: %w", err)
	}

	p.log.Info("published",
		zap.Int("records", len(records)),
		zap.String("namespace", namespace))
	return nil
}

// DeleteByFilenames removes every remote record belonging to the named source
// files. Ids are matched on the normalized "<file>#chunk_" prefix, so a file
// whose normalized name merely extends another's is never caught. Zero matches
// is a "no records found" outcome, not an error.
func (p *Pipeline) DeleteByFilenames(ctx context.Context, namespace string, filenames []string) (int, error) {
	ids, err := p.store.ListIDs(ctx, namespace)
	if err != nil {
		return 0, fmt.Errorf("list ids in namespace %q: %w", namespace, err)
	}

	var matched []string
	for _, name := range filenames {
		prefix := filename.Normalize(name + "#chunk_")
		for _, id := range ids {
			if strings.HasPrefix(id, prefix) {
				matched = append(matched, id)
			}
		}
	}

	if len(matched) == 0 {
		p.log.Info("no records found for the specified files",
			zap.Strings("files", filenames))
		return 0, nil
	}

	if err := p.store.Delete(ctx, namespace, matched); err != nil {
		return 0, fmt.Errorf("delete %d records: %w", len(matched), err)
	}
	p.log.Info("records deleted",
		zap.Int("count", len(matched)),
		zap.String("namespace", namespace))
	return len(matched), nil
}

// DeleteAll wipes the whole namespace. Irreversible.
func (p *Pipeline) DeleteAll(ctx context.Context, namespace string) error {
	if err := p.store.DeleteAll(ctx, namespace); err != nil {
		return fmt.Errorf("delete all in namespace %q: %w", namespace, err)
	}
	p.log.Info("all records deleted", zap.String("namespace", namespace))
	return nil
}

// Update deletes the remote records of the named files and re-derives the
// whole source directory: a full re-ingest and publish rather than a targeted
// patch.
func (p *Pipeline) Update(ctx context.Context, namespace string, filenames []string, inputDir, outputDir string) error {
	if _, err := p.DeleteByFilenames(ctx, namespace, filenames); err != nil {
		return err
	}
	if err := p.Ingest(ctx, inputDir, outputDir); err != nil {
		return err
	}
	return p.VectorizeAndPublish(ctx, namespace)
}
