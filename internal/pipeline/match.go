package pipeline

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/resume-matcher/internal/matching"
	"github.com/spigell/resume-matcher/internal/similarity"
)

const (
	embedSkillsName = "embed_skills"
	matchName       = "match"
	summarizeName   = "summarize"
)

type embedSkillsStage struct {
	disabled bool
	reason   string
}

// NewEmbedSkills creates the stage that fetches skill embeddings for the embedding
// similarity strategy.
func NewEmbedSkills() Stage {
	return &embedSkillsStage{}
}

func (s *embedSkillsStage) Name() string { return embedSkillsName }

func (s *embedSkillsStage) Disable(reason string) {
	s.disabled = true
	s.reason = reason
}

func (s *embedSkillsStage) IsEnabled() bool { return !s.disabled }

func (s *embedSkillsStage) Validate(*Config) error { return nil }

// Run leaves lexical similarity in place when the embeddings cannot be fetched.
func (s *embedSkillsStage) Run(ctx context.Context, deps Deps, state *State) (Step, error) {
	if deps.Embedder == nil {
		return Step{}, errors.New("embedding similarity requires an ai provider")
	}

	var skills []string
	if state.Candidate != nil {
		skills = append(skills, state.Candidate.Skills...)
	}
	for _, job := range state.Jobs {
		skills = append(skills, job.RequiredSkills...)
		skills = append(skills, job.PreferredSkills...)
	}

	table, err := deps.Embedder.Table(ctx, skills, similarity.Lexical)
	if err != nil {
		deps.Logger.Warn("skill embeddings unavailable, using lexical similarity", zap.Error(err))
		return Step{Initial: len(skills), Dropped: len(skills)}, nil
	}

	state.Similarity = table.Func()
	return Step{Initial: len(skills), Dropped: len(skills) - table.Len(), Left: table.Len()}, nil
}

func (s *embedSkillsStage) Status() Status {
	return Status{Name: s.Name(), Enabled: s.IsEnabled(), Reason: s.reason}
}

type matchStage struct {
	cfg matching.Config
}

// NewMatch creates the stage that scores and ranks every job.
func NewMatch(cfg *Config) Stage {
	s := &matchStage{cfg: matching.DefaultConfig()}
	if cfg != nil {
		s.cfg = cfg.Matching
	}
	return s
}

func (s *matchStage) Name() string { return matchName }

func (s *matchStage) Disable(string) {}

func (s *matchStage) IsEnabled() bool { return true }

func (s *matchStage) Validate(cfg *Config) error {
	s.cfg = cfg.Matching
	return s.cfg.Validate()
}

func (s *matchStage) Run(_ context.Context, deps Deps, state *State) (Step, error) {
	engine, err := matching.New(s.cfg, state.Similarity)
	if err != nil {
		return Step{}, err
	}

	results, err := engine.Match(state.Candidate, state.Jobs)
	if err != nil {
		return Step{}, err
	}

	for _, r := range results {
		deps.Logger.Debug("job scored",
			zap.String("id", r.Job.ID),
			zap.Int("rank", r.Rank),
			zap.Float64("overall_score", r.OverallScore),
			zap.Float64("similarity_score", r.Skills.SimilarityScore),
			zap.Bool("meets_minimum", r.Experience.MeetsMinimum),
			zap.String("recommendation", r.Recommendation),
		)
	}

	state.Engine = engine
	state.Results = results
	return Step{Initial: len(state.Jobs), Left: len(results)}, nil
}

func (s *matchStage) Status() Status {
	return Status{
		Name:    s.Name(),
		Enabled: true,
		Details: map[string]string{
			"min_jobs":             strconv.Itoa(s.cfg.MinJobs),
			"max_jobs":             strconv.Itoa(s.cfg.MaxJobs),
			"similarity_threshold": strconv.FormatFloat(s.cfg.SimilarityThreshold, 'f', 2, 64),
		},
	}
}

type summarizeStage struct{}

// NewSummarize creates the stage that builds the batch summary.
func NewSummarize() Stage {
	return &summarizeStage{}
}

func (s *summarizeStage) Name() string { return summarizeName }

func (s *summarizeStage) Disable(string) {}

func (s *summarizeStage) IsEnabled() bool { return true }

func (s *summarizeStage) Validate(*Config) error { return nil }

func (s *summarizeStage) Run(_ context.Context, deps Deps, state *State) (Step, error) {
	if state.Engine == nil {
		return Step{}, errors.New("no match results to summarize")
	}

	summary := state.Engine.Summarize(state.Results)
	for _, n := range summary.Warnings {
		deps.Logger.Warn("degenerate input",
			zap.String("warning", string(n.Warning)),
			zap.String("job_id", n.JobID),
		)
	}

	skills := make([]string, 0, len(summary.SkillsToDevelop))
	for _, d := range summary.SkillsToDevelop {
		skills = append(skills, d.Skill)
	}
	deps.Logger.Debug("summary built",
		zap.Int("top_jobs", len(summary.TopJobs)),
		zap.String("skills_to_develop", strings.Join(skills, ", ")),
	)

	state.Summary = summary
	return Step{Initial: len(state.Results), Dropped: len(state.Results) - len(summary.TopJobs), Left: len(summary.TopJobs)}, nil
}
