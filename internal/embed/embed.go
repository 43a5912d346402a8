// Package embed fills the pending ledger with embedding vectors.
package embed

import (
	"context"
	"fmt"

	"github.com/docsmith-ai/docsmith/internal/core"
	"github.com/docsmith-ai/docsmith/internal/ledger"
)

// Embed loads the ledger at ledgerPath, embeds every entry's text in one batch
// call and rewrites the ledger in place with the vectors filled.
//
// The whole operation fails without touching the file when the provider errors
// or returns a vector count that does not match the text count.
func Embed(ctx context.Context, provider core.EmbeddingProvider, ledgerPath string) error {
	entries, err := ledger.Load(ledgerPath)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		return nil
	}

	texts := make([]string, len(entries))
	for i := range entries {
		texts[i] = entries[i].Metadata.Text
	}

	vectors, err := provider.EmbedTexts(ctx, texts)
	if err != nil {
		return fmt.Errorf("embed %d texts: %w", len(texts), err)
	}
	if len(vectors) != len(texts) {
		return fmt.Errorf("embedding count mismatch: got %d vectors for %d texts", len(vectors), len(texts))
	}

	for i := range entries {
		entries[i].Values = vectors[i]
	}
	return ledger.Save(ledgerPath, entries)
}
