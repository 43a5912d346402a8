// Package extract converts source documents (PDF, images, text) into plain
// text artifacts, one <base>.txt per logical source document.
package extract

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Extractor is a format-specific converter. Extract processes every matching
// file in inputDir and writes one text artifact per source document into
// outputDir.
type Extractor interface {
	Kind() string
	Matches(name string) bool
	Extract(ctx context.Context, inputDir, outputDir string) error
}

// RunAll schedules every extractor that has at least one matching file in
// inputDir, concurrently, and joins them before returning. A failing extractor
// is logged and does not stop its siblings; only setup errors (unreadable
// input dir, uncreatable output dir) are returned.
func RunAll(ctx context.Context, log *zap.Logger, extractors []Extractor, inputDir, outputDir string) error {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("create output directory %s: %w", outputDir, err)
	}
	entries, err := os.ReadDir(inputDir)
	if err != nil {
		return fmt.Errorf("read input directory %s: %w", inputDir, err)
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, ex := range extractors {
		if !hasMatch(entries, ex) {
			continue
		}
		g.Go(func() error {
			log.Info("running extractor", zap.String("kind", ex.Kind()))
			if err := ex.Extract(gctx, inputDir, outputDir); err != nil {
				log.Warn("extractor failed",
					zap.String("kind", ex.Kind()),
					zap.Error(err))
			}
			return nil
		})
	}
	return g.Wait()
}

func hasMatch(entries []os.DirEntry, ex Extractor) bool {
	for _, e := range entries {
		if !e.IsDir() && ex.Matches(e.Name()) {
			return true
		}
	}
	return false
}

// artifactPath names the output text artifact after the source file's base name.
func artifactPath(outputDir, sourceName string) string {
	base := strings.TrimSuffix(sourceName, filepath.Ext(sourceName))
	return filepath.Join(outputDir, base+".txt")
}
