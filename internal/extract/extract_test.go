package extract

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeExtractor struct {
	kind string
	ext  string
	err  error
	runs atomic.Int32
}

func (f *fakeExtractor) Kind() string            { return f.kind }
func (f *fakeExtractor) Matches(name string) bool { return filepath.Ext(name) == f.ext }

func (f *fakeExtractor) Extract(_ context.Context, inputDir, outputDir string) error {
	f.runs.Add(1)
	return f.err
}

func TestRunAllSchedulesOnlyMatchingKinds(t *testing.T) {
	inputDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(inputDir, "a.pdf"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(inputDir, "b.txt"), []byte("y"), 0o644))

	pdf := &fakeExtractor{kind: "pdf", ext: ".pdf"}
	img := &fakeExtractor{kind: "image", ext: ".png"}
	txt := &fakeExtractor{kind: "text", ext: ".txt"}

	err := RunAll(context.Background(), zap.NewNop(), []Extractor{pdf, img, txt}, inputDir, t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, int32(1), pdf.runs.Load())
	assert.Equal(t, int32(0), img.runs.Load())
	assert.Equal(t, int32(1), txt.runs.Load())
}

func TestRunAllIsolatesFailures(t *testing.T) {
	inputDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(inputDir, "a.pdf"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(inputDir, "b.txt"), []byte("y"), 0o644))

	broken := &fakeExtractor{kind: "pdf", ext: ".pdf", err: errors.New("corrupt")}
	healthy := &fakeExtractor{kind: "text", ext: ".txt"}

	err := RunAll(context.Background(), zap.NewNop(), []Extractor{broken, healthy}, inputDir, t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, int32(1), healthy.runs.Load())
}

func TestRunAllMissingInputDir(t *testing.T) {
	err := RunAll(context.Background(), zap.NewNop(), nil, filepath.Join(t.TempDir(), "absent"), t.TempDir())
	require.Error(t, err)
}

func TestArtifactPath(t *testing.T) {
	assert.Equal(t, filepath.Join("out", "report.txt"), artifactPath("out", "report.pdf"))
	assert.Equal(t, filepath.Join("out", "photo.txt"), artifactPath("out", "photo.jpeg"))
	assert.Equal(t, filepath.Join("out", "notes.txt"), artifactPath("out", "notes.txt"))
}
