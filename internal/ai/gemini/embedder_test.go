package gemini

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/spigell/resume-matcher/internal/similarity"
)

type fakeEmbedModels struct {
	vectors map[string][]float32
	batches [][]string
	config  *genai.EmbedContentConfig
	drop    bool
	err     error
}

func (f *fakeEmbedModels) EmbedContent(_ context.Context, _ string, contents []*genai.Content, config *genai.EmbedContentConfig) (*genai.EmbedContentResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.config = config

	batch := make([]string, 0, len(contents))
	resp := &genai.EmbedContentResponse{}
	for _, c := range contents {
		text := c.Parts[0].Text
		batch = append(batch, text)
		resp.Embeddings = append(resp.Embeddings, &genai.ContentEmbedding{Values: f.vectors[text]})
	}
	f.batches = append(f.batches, batch)
	if f.drop {
		resp.Embeddings = resp.Embeddings[1:]
	}
	return resp, nil
}

func TestEmbedderTable(t *testing.T) {
	models := &fakeEmbedModels{vectors: map[string][]float32{
		"postgresql": {1, 0},
		"postgres":   {0.9, 0.1},
		"painting":   {0, 1},
	}}
	e := &Embedder{models: models, model: "embed", logger: zap.NewNop()}

	table, err := e.Table(context.Background(), []string{"postgres", "postgresql", " ", "postgres", "painting", "golang"}, similarity.Lexical)
	if err != nil {
		t.Fatalf("Table: %v", err)
	}

	if len(models.batches) != 1 || len(models.batches[0]) != 4 {
		t.Fatalf("expected one batch of distinct skills, got %v", models.batches)
	}
	if models.config == nil || models.config.TaskType != embedTaskType {
		t.Fatalf("expected task type %q", embedTaskType)
	}
	if table.Len() != 3 {
		t.Fatalf("expected 3 vectors, got %d", table.Len())
	}

	sim := table.Func()
	if got := sim("postgres", "postgresql"); got < 0.9 {
		t.Fatalf("expected close vectors to score high, got %v", got)
	}
	if got := sim("postgresql", "painting"); got != 0 {
		t.Fatalf("expected orthogonal vectors to score 0, got %v", got)
	}
	if got, want := sim("golang", "go"), similarity.Lexical("golang", "go"); math.Abs(got-want) > 1e-9 {
		t.Fatalf("expected lexical fallback %v, got %v", want, got)
	}
}

func TestEmbedderBatches(t *testing.T) {
	models := &fakeEmbedModels{vectors: map[string][]float32{}}
	e := &Embedder{models: models, model: "embed", logger: zap.NewNop()}

	skills := make([]string, 0, embedBatchSize+5)
	for i := range embedBatchSize + 5 {
		skills = append(skills, fmt.Sprintf("skill-%03d", i))
	}

	if _, err := e.Table(context.Background(), skills, nil); err != nil {
		t.Fatalf("Table: %v", err)
	}
	if len(models.batches) != 2 || len(models.batches[0]) != embedBatchSize || len(models.batches[1]) != 5 {
		t.Fatalf("unexpected batching: %d batches", len(models.batches))
	}
}

func TestEmbedderErrors(t *testing.T) {
	tests := []struct {
		name   string
		models *fakeEmbedModels
	}{
		{name: "api error", models: &fakeEmbedModels{err: errors.New("unavailable")}},
		{name: "short response", models: &fakeEmbedModels{drop: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := &Embedder{models: tt.models, model: "embed", logger: zap.NewNop()}
			if _, err := e.Table(context.Background(), []string{"go", "sql"}, nil); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}
