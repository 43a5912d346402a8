package extract

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"code.sajari.com/docconv"
	"go.uber.org/zap"
)

// TextExtractor re-parses .txt and .doc sources through docconv so their
// formatting is normalized like every other artifact, one output per input.
type TextExtractor struct {
	log *zap.Logger
}

func NewTextExtractor(log *zap.Logger) *TextExtractor {
	return &TextExtractor{log: log}
}

func (e *TextExtractor) Kind() string { return "text" }

func (e *TextExtractor) Matches(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".txt", ".doc":
		return true
	}
	return false
}

func (e *TextExtractor) Extract(ctx context.Context, inputDir, outputDir string) error {
	entries, err := os.ReadDir(inputDir)
	if err != nil {
		return fmt.Errorf("read input directory %s: %w", inputDir, err)
	}

	var failures []error
	for _, entry := range entries {
		if entry.IsDir() || !e.Matches(entry.Name()) {
			continue
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := e.extractFile(entry.Name(), inputDir, outputDir); err != nil {
			e.log.Warn("text extraction failed",
				zap.String("file", entry.Name()),
				zap.Error(err))
			failures = append(failures, err)
		}
	}
	return errors.Join(failures...)
}

func (e *TextExtractor) extractFile(name, inputDir, outputDir string) error {
	path := filepath.Join(inputDir, name)
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	res, err := docconv.Convert(f, mimeType(name), false)
	if err != nil {
		return fmt.Errorf("convert %s: %w", name, err)
	}

	out := artifactPath(outputDir, name)
	if err := os.WriteFile(out, []byte(res.Body), 0o644); err != nil {
		return fmt.Errorf("write artifact %s: %w", out, err)
	}
	return nil
}

func mimeType(name string) string {
	if strings.ToLower(filepath.Ext(name)) == ".doc" {
		return "application/msword"
	}
	return "text/plain"
}
