package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/docsmith-ai/docsmith/internal/chat"
	"github.com/docsmith-ai/docsmith/internal/config"
	"github.com/docsmith-ai/docsmith/internal/core"
	"github.com/docsmith-ai/docsmith/internal/extract"
	"github.com/docsmith-ai/docsmith/internal/llm"
	"github.com/docsmith-ai/docsmith/internal/pipeline"
	"github.com/docsmith-ai/docsmith/internal/query"
	"github.com/docsmith-ai/docsmith/internal/vectorstore/pgvector"
	"github.com/docsmith-ai/docsmith/internal/vectorstore/pinecone"
)

func main() {
	cmd := &cli.Command{
		Name:  "docsmith",
		Usage: "Document ingestion and retrieval pipeline",
		Commands: []*cli.Command{
			{
				Name:  "ingest",
				Usage: "Extract, chunk and stage source documents",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "input",
						Usage:   "Directory of source documents",
						Sources: cli.EnvVars("FILES_INPUT_DIR"),
					},
					&cli.StringFlag{
						Name:    "output",
						Usage:   "Directory for extracted artifacts",
						Sources: cli.EnvVars("FILES_OUTPUT_DIR"),
					},
				},
				Action: runIngest,
			},
			{
				Name:   "publish",
				Usage:  "Embed staged chunks and upsert them to the vector index",
				Action: runPublish,
			},
			{
				Name:      "update",
				Usage:     "Replace the index records for the named files",
				ArgsUsage: "FILENAME...",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "input",
						Usage:   "Directory of source documents",
						Sources: cli.EnvVars("FILES_INPUT_DIR"),
					},
					&cli.StringFlag{
						Name:    "output",
						Usage:   "Directory for extracted artifacts",
						Sources: cli.EnvVars("FILES_OUTPUT_DIR"),
					},
				},
				Action: runUpdate,
			},
			{
				Name:      "delete",
				Usage:     "Delete the index records for the named files",
				ArgsUsage: "FILENAME...",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "all",
						Usage: "Delete every record in the namespace",
					},
				},
				Action: runDelete,
			},
			{
				Name:      "query",
				Usage:     "Answer a question from the indexed documents",
				ArgsUsage: "QUESTION",
				Action:    runQuery,
			},
			{
				Name:  "history",
				Usage: "Print past question/answer exchanges",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Only print the last N exchanges",
					},
				},
				Action: runHistory,
			},
		},
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := cmd.Run(ctx, os.Args); err != nil {
		log.Fatal(err.Error())
	}
}

// app bundles the shared wiring every subcommand needs: config, logger,
// vector store and embedder, plus the providers opened along the way.
type app struct {
	cfg      *config.Config
	log      *zap.Logger
	store    core.VectorStore
	embedder core.EmbeddingProvider

	closers []func() error
}

func newApp(ctx context.Context) (*app, error) {
	cfg := config.LoadConfig()

	logger, err := zap.NewDevelopment()
	if err != nil {
		return nil, err
	}
	zap.ReplaceGlobals(logger)

	a := &app{cfg: cfg, log: logger}

	if cfg.DatabaseURL != "" {
		store, err := pgvector.NewStore(ctx, cfg.DatabaseURL)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.closers = append(a.closers, store.Close)
		a.store = store
	} else {
		a.store = pinecone.NewClient(pinecone.Config{
			APIKey:    cfg.PineconeAPIKey,
			IndexName: cfg.IndexName,
			Cloud:     cfg.Cloud,
			Region:    cfg.Region,
		})
	}

	embedder, err := llm.NewGeminiEmbedder(ctx, cfg.AIAPIKey, cfg.EmbedModel)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.closers = append(a.closers, embedder.Close)
	a.embedder = embedder

	return a, nil
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.log.Warn("close", zap.Error(err))
		}
	}
	_ = a.log.Sync()
}

func (a *app) pipelineOptions() pipeline.Options {
	return pipeline.Options{
		LedgerPath: a.cfg.LedgerPath,
		ChunkSize:  a.cfg.ChunkSize,
		EmbedDim:   a.cfg.EmbedDim,
	}
}

// newIngestPipeline wires the full extractor set, including the vision
// provider the image extractor depends on.
func (a *app) newIngestPipeline(ctx context.Context) (*pipeline.Pipeline, error) {
	vision, err := llm.NewGeminiVision(ctx, a.cfg.AIAPIKey, a.cfg.VisionModel)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, vision.Close)

	extractors := []extract.Extractor{
		extract.NewTextExtractor(a.log),
		extract.NewPDFExtractor(a.log),
		extract.NewImageExtractor(vision, a.log),
	}
	return pipeline.New(a.store, a.embedder, extractors, a.pipelineOptions(), a.log), nil
}

func (a *app) dirs(cmd *cli.Command) (input, output string) {
	input = cmd.String("input")
	if input == "" {
		input = a.cfg.InputDir
	}
	output = cmd.String("output")
	if output == "" {
		output = a.cfg.OutputDir
	}
	return input, output
}

func runIngest(ctx context.Context, cmd *cli.Command) error {
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	p, err := a.newIngestPipeline(ctx)
	if err != nil {
		return err
	}
	input, output := a.dirs(cmd)
	return p.Ingest(ctx, input, output)
}

func runPublish(ctx context.Context, cmd *cli.Command) error {
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	p := pipeline.New(a.store, a.embedder, nil, a.pipelineOptions(), a.log)
	return p.VectorizeAndPublish(ctx, a.cfg.Namespace)
}

func runUpdate(ctx context.Context, cmd *cli.Command) error {
	filenames := cmd.Args().Slice()
	if len(filenames) == 0 {
		return errors.New("update: at least one filename is required")
	}

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	p, err := a.newIngestPipeline(ctx)
	if err != nil {
		return err
	}
	input, output := a.dirs(cmd)
	return p.Update(ctx, a.cfg.Namespace, filenames, input, output)
}

func runDelete(ctx context.Context, cmd *cli.Command) error {
	filenames := cmd.Args().Slice()
	deleteAll := cmd.Bool("all")
	if !deleteAll && len(filenames) == 0 {
		return errors.New("delete: pass filenames or --all")
	}

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	p := pipeline.New(a.store, a.embedder, nil, a.pipelineOptions(), a.log)
	if deleteAll {
		return p.DeleteAll(ctx, a.cfg.Namespace)
	}

	deleted, err := p.DeleteByFilenames(ctx, a.cfg.Namespace, filenames)
	if err != nil {
		return err
	}
	fmt.Printf("deleted %d records\n", deleted)
	return nil
}

func runQuery(ctx context.Context, cmd *cli.Command) error {
	question := cmd.Args().First()
	if question == "" {
		return errors.New("query: a question is required")
	}

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	gen, err := llm.NewGeminiLLM(ctx, a.cfg.AIAPIKey, a.cfg.GenModel)
	if err != nil {
		return err
	}
	a.closers = append(a.closers, gen.Close)

	history := chat.NewHistory(a.cfg.ChatHistoryPath)
	svc := query.NewService(a.store, a.embedder, gen, history, a.cfg.TopK, a.log)

	answer, err := svc.Answer(ctx, a.cfg.Namespace, question)
	if err != nil {
		return err
	}
	fmt.Println(answer)
	return nil
}

func runHistory(ctx context.Context, cmd *cli.Command) error {
	cfg := config.LoadConfig()

	history := chat.NewHistory(cfg.ChatHistoryPath)
	entries, err := history.Read(int(cmd.Int("limit")))
	if err != nil {
		return err
	}
	for _, e := range entries {
		fmt.Printf("Q: %s\nA: %s\n\n", e.User, e.Assistant)
	}
	return nil
}
