package extract

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// pageBatchSize bounds how many pages are decoded concurrently per file.
const pageBatchSize = 5

// PDFExtractor extracts the text of every page of a PDF, in page order, and
// concatenates it into one artifact per file.
type PDFExtractor struct {
	log *zap.Logger
}

func NewPDFExtractor(log *zap.Logger) *PDFExtractor {
	return &PDFExtractor{log: log}
}

func (e *PDFExtractor) Kind() string { return "pdf" }

func (e *PDFExtractor) Matches(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".pdf")
}

// Extract processes every PDF in inputDir. A corrupt file (or page) fails that
// file with an error naming the page and file; the remaining files still run,
// and the per-file errors are joined into the return value.
func (e *PDFExtractor) Extract(ctx context.Context, inputDir, outputDir string) error {
	entries, err := os.ReadDir(inputDir)
	if err != nil {
		return fmt.Errorf("read input directory %s: %w", inputDir, err)
	}

	var failures []error
	for _, entry := range entries {
		if entry.IsDir() || !e.Matches(entry.Name()) {
			continue
		}
		if err := e.extractFile(ctx, filepath.Join(inputDir, entry.Name()), outputDir); err != nil {
			e.log.Warn("pdf extraction failed",
				zap.String("file", entry.Name()),
				zap.Error(err))
			failures = append(failures, err)
			continue
		}
		e.log.Info("pdf extracted", zap.String("file", entry.Name()))
	}
	return errors.Join(failures...)
}

// extractFile loads every page, dispatching page decodes in bounded batches so
// only pageBatchSize pages are in flight at once, and joins the page texts with
// no separator.
func (e *PDFExtractor) extractFile(ctx context.Context, path, outputDir string) error {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return fmt.Errorf("open pdf %s: %w", path, err)
	}
	defer f.Close()

	name := filepath.Base(path)
	total := reader.NumPage()
	texts := make([]string, total)

	for start := 1; start <= total; start += pageBatchSize {
		end := min(start+pageBatchSize-1, total)
		g, gctx := errgroup.WithContext(ctx)
		for num := start; num <= end; num++ {
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				page := reader.Page(num)
				if page.V.IsNull() {
					return fmt.Errorf("page %d of %s: missing page object", num, name)
				}
				text, err := page.GetPlainText(nil)
				if err != nil {
					return fmt.Errorf("page %d of %s: %w", num, name, err)
				}
				texts[num-1] = text
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}
	}

	out := artifactPath(outputDir, name)
	if err := os.WriteFile(out, []byte(strings.Join(texts, "")), 0o644); err != nil {
		return fmt.Errorf("write artifact %s: %w", out, err)
	}
	return nil
}
