package cmd

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spigell/resume-matcher/internal/extract"
	"github.com/spigell/resume-matcher/internal/matching"
	"github.com/spigell/resume-matcher/internal/pipeline"
	"github.com/spigell/resume-matcher/internal/profile"
	"github.com/spigell/resume-matcher/internal/report"
)

func loadConfig(t *testing.T, yaml string) (*Config, error) {
	t.Helper()

	v := viper.New()
	setDefaults(v)
	v.SetConfigType("yaml")
	if err := v.ReadConfig(strings.NewReader(yaml)); err != nil {
		t.Fatalf("read config: %v", err)
	}
	return decodeConfig(v)
}

func TestDecodeConfigDefaults(t *testing.T) {
	config, err := loadConfig(t, "")
	if err != nil {
		t.Fatalf("decodeConfig: %v", err)
	}

	if diff := cmp.Diff(matching.DefaultConfig(), config.Matching.Config); diff != "" {
		t.Fatalf("unexpected matching defaults (-want +got):\n%s", diff)
	}
	if config.Matching.Similarity != "lexical" {
		t.Fatalf("expected lexical similarity, got %q", config.Matching.Similarity)
	}
	if config.Extract.Timeout != 2*time.Minute || config.Extract.MaxSizeBytes != 10<<20 {
		t.Fatalf("unexpected extract defaults: %+v", config.Extract)
	}
	if config.AI == nil || config.AI.Enabled || config.AI.Gemini == nil || config.AI.Gemini.MaxRetries != 3 {
		t.Fatalf("unexpected ai defaults: %+v", config.AI)
	}
	if config.Output.Path != "resume-matcher-report.json" {
		t.Fatalf("unexpected output path %q", config.Output.Path)
	}
}

func TestDecodeConfigOverrides(t *testing.T) {
	t.Setenv("RESUME_MATCHER_MATCHING_TOP_K", "2")

	config, err := loadConfig(t, `
matching:
  min-jobs: 3
  similarity: embedding
  synonyms:
    gql: graphql
  bands:
    - level: entry
      min: 0
      max: 3
    - level: senior
      min: 3
extract:
  timeout: 30s
  skip-unreadable-jobs: true
ai:
  enabled: true
  gemini:
    model: gemini-2.5-pro
`)
	if err != nil {
		t.Fatalf("decodeConfig: %v", err)
	}

	if config.Matching.MinJobs != 3 || config.Matching.MaxJobs != 10 || config.Matching.TopK != 2 {
		t.Fatalf("unexpected batch settings: %+v", config.Matching.Config)
	}
	want := []matching.Band{{Level: "entry", Min: 0, Max: 3}, {Level: "senior", Min: 3}}
	if diff := cmp.Diff(want, config.Matching.Bands); diff != "" {
		t.Fatalf("unexpected bands (-want +got):\n%s", diff)
	}
	if config.Matching.Synonyms["gql"] != "graphql" {
		t.Fatalf("expected synonyms to be decoded, got %v", config.Matching.Synonyms)
	}
	if config.Extract.Timeout != 30*time.Second || !config.Extract.SkipUnreadableJobs {
		t.Fatalf("unexpected extract config: %+v", config.Extract)
	}
	if config.AI.Gemini.Model != "gemini-2.5-pro" || config.AI.Gemini.MaxRetries != 3 {
		t.Fatalf("unexpected gemini config: %+v", config.AI.Gemini)
	}

	pcfg := pipelineConfig(config, "cv.pdf", []string{"a.txt"})
	if pcfg.Similarity != "embedding" || pcfg.Matching.MinJobs != 3 || !pcfg.SkipUnreadableJobs {
		t.Fatalf("unexpected pipeline config: %+v", pcfg)
	}
}

func TestDecodeConfigRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{name: "unknown similarity", yaml: "matching:\n  similarity: fuzzy\n"},
		{name: "max below min", yaml: "matching:\n  min-jobs: 6\n  max-jobs: 5\n"},
		{name: "good above excellent", yaml: "matching:\n  good-threshold: 0.9\n"},
		{name: "unknown band level", yaml: "matching:\n  bands:\n    - level: guru\n      min: 0\n"},
		{name: "empty band", yaml: "matching:\n  bands:\n    - level: mid\n      min: 5\n      max: 2\n"},
		{name: "unknown provider", yaml: "ai:\n  provider: openai\n"},
		{name: "negative parallelism", yaml: "extract:\n  job-parallelism: -1\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := loadConfig(t, tt.yaml); err == nil {
				t.Fatal("expected config error")
			}
		})
	}
}

func TestHandleAction(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	log := zap.New(core)
	rep := report.New("cv.pdf", nil, nil, matching.Summary{}, nil)
	state := &pipeline.State{}

	if err := handleAction(PromptExit, log, rep, state); !errors.Is(err, errExit) {
		t.Fatalf("expected exit, got %v", err)
	}
	if err := handleAction(PromptReportByCompany, log, rep, state); err != nil {
		t.Fatalf("report by company: %v", err)
	}
	if err := handleAction(PromptDumpToFile, log, rep, state); err != nil {
		t.Fatalf("dump: %v", err)
	}

	dumped := logs.FilterMessage("dumping report to file").All()
	if len(dumped) != 1 {
		t.Fatalf("expected dump log entry, got %v", logs.All())
	}
	filename := dumped[0].ContextMap()["filename"].(string)
	t.Cleanup(func() { os.Remove(filename) })

	if err := handleAction("bogus", log, rep, state); err == nil {
		t.Fatal("expected invalid action error")
	}
}

func TestDetailsFields(t *testing.T) {
	result := matching.Result{
		Job:          &profile.Job{ID: "go", Title: "Go Engineer", RequiredSkills: []string{"go", "sql"}},
		OverallScore: 0.876,
		Rank:         1,
		Skills:       matching.SkillMatch{MatchedRequired: []string{"go"}, MissingRequired: []string{"sql"}},
	}
	rep := report.New("cv.pdf", nil, []matching.Result{result}, matching.Summary{}, nil)

	core, logs := observer.New(zapcore.InfoLevel)
	zap.New(core).Info("details", detailsFields(rep, "go")...)
	got := logs.All()[0].ContextMap()

	want := map[string]any{"job_id": "go", "score": 0.88, "skills": "1/2", "missing": []any{"sql"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("unexpected fields (-want +got):\n%s", diff)
	}

	if fields := detailsFields(rep, "unknown"); len(fields) != 1 {
		t.Fatalf("expected only the job id for an unknown job, got %d fields", len(fields))
	}
}

func TestPrepareDeps(t *testing.T) {
	config, err := loadConfig(t, "matching:\n  similarity: embedding\n  synonyms:\n    gql: graphql\n")
	if err != nil {
		t.Fatalf("decodeConfig: %v", err)
	}
	documents := extract.New(config.Extract.Config)

	if _, err := prepareDeps(context.Background(), config, documents, zap.NewNop()); err == nil {
		t.Fatal("expected embedding similarity without ai to fail")
	}

	config.Matching.Similarity = "lexical"
	deps, err := prepareDeps(context.Background(), config, documents, zap.NewNop())
	if err != nil {
		t.Fatalf("prepareDeps: %v", err)
	}
	if deps.Embedder != nil || deps.Fields == nil {
		t.Fatalf("expected heuristic fields without embeddings, got %+v", deps)
	}
	if skill, _ := deps.Normalizer.Skill("GQL"); skill != "graphql" {
		t.Fatalf("expected configured synonyms in the normalizer, got %q", skill)
	}
}
