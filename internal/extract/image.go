package extract

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/docsmith-ai/docsmith/internal/core"
	"github.com/docsmith-ai/docsmith/internal/prompts"
)

// ImageExtractor batches every image in the input directory into a single
// vision-description request and writes one artifact per described image.
type ImageExtractor struct {
	vision core.VisionProvider
	log    *zap.Logger
}

func NewImageExtractor(vision core.VisionProvider, log *zap.Logger) *ImageExtractor {
	return &ImageExtractor{vision: vision, log: log}
}

func (e *ImageExtractor) Kind() string { return "image" }

func (e *ImageExtractor) Matches(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".jpg", ".jpeg", ".png":
		return true
	}
	return false
}

// Extract sends all images in one request demanding numbered descriptions in
// input order, then splits the response back onto the images by ordinal. A
// count mismatch is logged and the unmatched trailing images produce no
// artifact; the matched ones still do.
func (e *ImageExtractor) Extract(ctx context.Context, inputDir, outputDir string) error {
	entries, err := os.ReadDir(inputDir)
	if err != nil {
		return fmt.Errorf("read input directory %s: %w", inputDir, err)
	}

	var (
		images []core.Image
		names  []string
	)
	for _, entry := range entries {
		if entry.IsDir() || !e.Matches(entry.Name()) {
			continue
		}
		data, err := os.ReadFile(filepath.Join(inputDir, entry.Name()))
		if err != nil {
			return fmt.Errorf("read image %s: %w", entry.Name(), err)
		}
		images = append(images, core.Image{Format: imageFormat(entry.Name()), Data: data})
		names = append(names, entry.Name())
	}
	if len(images) == 0 {
		return nil
	}

	response, err := e.vision.Describe(ctx, prompts.ImageDescription, images)
	if err != nil {
		return fmt.Errorf("describe %d images: %w", len(images), err)
	}

	descriptions := splitNumberedDescriptions(response)
	if len(descriptions) != len(images) {
		e.log.Warn("description count mismatch",
			zap.Int("images", len(images)),
			zap.Int("descriptions", len(descriptions)))
	}

	for i, name := range names {
		if i >= len(descriptions) {
			e.log.Warn("no description for image", zap.String("file", name))
			continue
		}
		out := artifactPath(outputDir, name)
		if err := os.WriteFile(out, []byte(descriptions[i]), 0o644); err != nil {
			return fmt.Errorf("write artifact %s: %w", out, err)
		}
	}
	return nil
}

func imageFormat(name string) string {
	if strings.ToLower(filepath.Ext(name)) == ".png" {
		return "png"
	}
	return "jpeg"
}

// splitNumberedDescriptions splits a response into blocks, each starting at a
// line whose first token is an ordinal marker "1." through "9.".
func splitNumberedDescriptions(s string) []string {
	var (
		blocks  []string
		current []string
		inBlock bool
	)
	flush := func() {
		if inBlock {
			blocks = append(blocks, strings.TrimSpace(strings.Join(current, "\n")))
			current = current[:0]
		}
	}
	for _, line := range strings.Split(s, "\n") {
		if startsWithOrdinal(strings.TrimSpace(line)) {
			flush()
			inBlock = true
		}
		if inBlock {
			current = append(current, line)
		}
	}
	flush()
	return blocks
}

func startsWithOrdinal(s string) bool {
	for i := 1; i <= 9; i++ {
		if strings.HasPrefix(s, strconv.Itoa(i)+".") {
			return true
		}
	}
	return false
}
