// Package query answers questions from the published document corpus:
// retrieved chunk context plus a hosted model, with the exchange persisted to
// the chat history.
package query

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/docsmith-ai/docsmith/internal/chat"
	"github.com/docsmith-ai/docsmith/internal/core"
	"github.com/docsmith-ai/docsmith/internal/prompts"
)

type Service struct {
	store    core.VectorStore
	embedder core.EmbeddingProvider
	llm      core.LLMProvider
	history  *chat.History
	topK     int
	log      *zap.Logger
}

func NewService(store core.VectorStore, embedder core.EmbeddingProvider, llm core.LLMProvider, history *chat.History, topK int, log *zap.Logger) *Service {
	if topK <= 0 {
		topK = 10
	}
	return &Service{
		store:    store,
		embedder: embedder,
		llm:      llm,
		history:  history,
		topK:     topK,
		log:      log,
	}
}

// Answer embeds the question, retrieves the top matching chunks from the
// namespace, asks the model to answer from that context only, and appends the
// exchange to the history.
func (s *Service) Answer(ctx context.Context, namespace, question string) (string, error) {
	vectors, err := s.embedder.EmbedTexts(ctx, []string{question})
	if err != nil {
		return "", fmt.Errorf("embed question: %w", err)
	}
	if len(vectors) != 1 {
		return "", fmt.Errorf("embed question: got %d vectors for 1 text", len(vectors))
	}

	matches, err := s.store.Query(ctx, namespace, vectors[0], s.topK)
	if err != nil {
		return "", fmt.Errorf("query namespace %q: %w", namespace, err)
	}
	s.log.Info("retrieved context",
		zap.Int("matches", len(matches)),
		zap.String("namespace", namespace))

	var sb strings.Builder
	for _, m := range matches {
		sb.WriteString(m.Metadata.Text)
		sb.WriteString("\n---\n")
	}
	userPrompt := fmt.Sprintf("Context:\n%s\nQuestion: %s", sb.String(), question)

	answer, err := s.llm.Generate(ctx, prompts.SystemPrompt, userPrompt)
	if err != nil {
		return "", fmt.Errorf("generate answer: %w", err)
	}

	if err := s.history.Append(question, answer); err != nil {
		return "", err
	}
	return answer, nil
}
