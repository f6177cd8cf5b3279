// Package pipeline runs the fixed sequence of stages that turns a resume file and a set
// of job description files into ranked match results.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spigell/resume-matcher/internal/ai"
	"github.com/spigell/resume-matcher/internal/extract"
	"github.com/spigell/resume-matcher/internal/logger"
	"github.com/spigell/resume-matcher/internal/matching"
	"github.com/spigell/resume-matcher/internal/normalize"
	"github.com/spigell/resume-matcher/internal/profile"
	"github.com/spigell/resume-matcher/internal/similarity"
)

// Stage is one step of the pipeline. Stages run in order over a shared State and
// each one writes only its own outputs.
type Stage interface {
	Name() string
	Disable(reason string)
	IsEnabled() bool

	Validate(cfg *Config) error
	Run(ctx context.Context, deps Deps, state *State) (Step, error)
}

// SkillEmbedder builds a similarity table for a set of skills before matching starts.
type SkillEmbedder interface {
	Table(ctx context.Context, skills []string, fallback similarity.Func) (*similarity.Table, error)
}

// Deps aggregates the collaborators shared by all stages.
type Deps struct {
	Documents  extract.DocumentExtractor
	Fields     ai.StructuredExtractor
	Normalizer *normalize.Normalizer
	Embedder   SkillEmbedder
	Logger     *zap.Logger
}

// Step describes the result of executing a stage in terms of items in and out.
type Step struct {
	Initial int
	Dropped int
	Left    int
}

type Config struct {
	ResumePath string
	JobPaths   []string

	Matching   matching.Config
	Similarity string

	// JobParallelism bounds concurrent job extraction. Zero means no limit.
	JobParallelism     int
	SkipUnreadableJobs bool
	// Timeout applies to each document separately, covering both text and field
	// extraction. Zero disables it.
	Timeout time.Duration
}

// State is what the stages produce, in stage order.
type State struct {
	ResumeDocument extract.Document
	Candidate      *profile.Candidate

	JobDocuments []extract.Document
	Skipped      []string
	Jobs         []*profile.Job

	Similarity similarity.Func
	Engine     *matching.Engine
	Results    []matching.Result
	Summary    matching.Summary
}

// Status represents runtime information about a stage.
type Status struct {
	Name    string
	Enabled bool
	Reason  string
	Details map[string]string
}

type statusProvider interface {
	Status() Status
}

// Default returns the stock stage list for cfg. The embedding stage is kept in the
// list but disabled unless the embedding similarity strategy is selected.
func Default(cfg *Config) []Stage {
	stages := []Stage{
		NewExtractResume(cfg),
		NewParseResume(cfg),
		NewExtractJobs(cfg),
		NewParseJobs(cfg),
		NewEmbedSkills(),
		NewMatch(cfg),
		NewSummarize(),
	}

	var strategy string
	if cfg != nil {
		strategy = cfg.Similarity
	}
	if _, err := similarity.ByName(strategy); !errors.Is(err, similarity.ErrNeedsTable) {
		DisableByName(stages, embedSkillsName, "similarity strategy is lexical")
	}
	return stages
}

// DisableByName marks a stage with the provided name as disabled while keeping it in the list.
func DisableByName(stages []Stage, name, reason string) {
	for _, stage := range stages {
		if stage.Name() == name {
			stage.Disable(reason)
		}
	}
}

// Run validates every enabled stage, then executes them sequentially.
func Run(ctx context.Context, cfg *Config, deps Deps, stages []Stage) (*State, error) {
	if cfg == nil {
		return nil, errors.New("pipeline config is required")
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Normalizer == nil {
		deps.Normalizer = normalize.New(nil)
	}

	for _, stage := range stages {
		if !stage.IsEnabled() {
			continue
		}
		if err := stage.Validate(cfg); err != nil {
			return nil, fmt.Errorf("%s: %w", stage.Name(), err)
		}
	}

	sim, err := similarity.ByName(cfg.Similarity)
	switch {
	case errors.Is(err, similarity.ErrNeedsTable):
		// embed_skills replaces it once the vectors are fetched.
		sim = similarity.Lexical
	case err != nil:
		return nil, err
	}

	state := &State{Similarity: sim}
	for _, stage := range stages {
		if !stage.IsEnabled() {
			deps.Logger.Info("stage disabled", zap.String("name", stage.Name()))
			continue
		}

		stageDeps := deps
		stageDeps.Logger = logger.ForStage(deps.Logger, stage.Name())

		info, err := stage.Run(ctx, stageDeps, state)
		if err != nil {
			return state, fmt.Errorf("%s: %w", stage.Name(), err)
		}

		deps.Logger.Info("pipeline step",
			zap.String("name", stage.Name()),
			zap.Int("initial", info.Initial),
			zap.Int("dropped", info.Dropped),
			zap.Int("left", info.Left),
		)
	}

	return state, nil
}

// Describe returns status entries for the provided stages.
func Describe(stages []Stage) []Status {
	statuses := make([]Status, 0, len(stages))
	for _, stage := range stages {
		if reporter, ok := stage.(statusProvider); ok {
			statuses = append(statuses, reporter.Status())
			continue
		}

		statuses = append(statuses, Status{
			Name:    stage.Name(),
			Enabled: stage.IsEnabled(),
		})
	}
	return statuses
}

// Flow renders the enabled stages as a single arrow separated line.
func Flow(stages []Stage) string {
	names := make([]string, 0, len(stages))
	for _, stage := range stages {
		if stage.IsEnabled() {
			names = append(names, stage.Name())
		}
	}
	return strings.Join(names, " -> ")
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
