package gemini

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/spigell/resume-matcher/internal/logger"
	"github.com/spigell/resume-matcher/internal/similarity"
)

const (
	DefaultEmbeddingModel = "gemini-embedding-001"

	embedBatchSize = 100
	embedTaskType  = "SEMANTIC_SIMILARITY"
)

type embedModels interface {
	EmbedContent(ctx context.Context, model string, contents []*genai.Content, config *genai.EmbedContentConfig) (*genai.EmbedContentResponse, error)
}

// Embedder fetches skill vectors ahead of matching.
type Embedder struct {
	models embedModels
	model  string
	logger *zap.Logger
}

func NewEmbedder(client *genai.Client, model string, log *zap.Logger) *Embedder {
	if model = strings.TrimSpace(model); model == "" {
		model = DefaultEmbeddingModel
	}
	return &Embedder{
		models: client.Models,
		model:  model,
		logger: logger.WithAI(log, Provider, model),
	}
}

// Table embeds every distinct skill and returns a lookup table. Pairs the table has
// no vector for are scored with fallback.
func (e *Embedder) Table(ctx context.Context, skills []string, fallback similarity.Func) (*similarity.Table, error) {
	unique := make([]string, 0, len(skills))
	for _, s := range skills {
		if s = strings.TrimSpace(s); s != "" {
			unique = append(unique, s)
		}
	}
	slices.Sort(unique)
	unique = slices.Compact(unique)

	vectors := make(map[string][]float32, len(unique))
	for batch := range slices.Chunk(unique, embedBatchSize) {
		contents := make([]*genai.Content, 0, len(batch))
		for _, s := range batch {
			contents = append(contents, genai.NewContentFromText(s, genai.RoleUser))
		}

		resp, err := e.models.EmbedContent(ctx, e.model, contents, &genai.EmbedContentConfig{TaskType: embedTaskType})
		if err != nil {
			return nil, fmt.Errorf("embed skills: %w", err)
		}
		if resp == nil || len(resp.Embeddings) != len(batch) {
			got := 0
			if resp != nil {
				got = len(resp.Embeddings)
			}
			return nil, fmt.Errorf("embed skills: expected %d embeddings, got %d", len(batch), got)
		}

		for i, emb := range resp.Embeddings {
			if emb == nil {
				continue
			}
			vectors[batch[i]] = emb.Values
		}
	}

	table := similarity.NewTable(vectors, fallback)
	e.logger.Debug("skill embeddings fetched",
		zap.Int("skills", len(unique)),
		zap.Int("vectors", table.Len()),
	)
	return table, nil
}
