// Package matching scores one candidate against a batch of jobs and ranks the results.
// The engine is deterministic and performs no I/O.
package matching

import (
	"errors"
	"fmt"
	"math"

	"golang.org/x/sync/errgroup"

	"github.com/spigell/resume-matcher/internal/profile"
	"github.com/spigell/resume-matcher/internal/similarity"
)

// Result is the scored comparison of the candidate with one job.
type Result struct {
	Job            *profile.Job         `json:"job"`
	OverallScore   float64              `json:"overall_score"`
	Skills         SkillMatch           `json:"skills"`
	Experience     ExperienceAssessment `json:"experience"`
	Rank           int                  `json:"rank"`
	Recommendation string               `json:"recommendation"`
	Warnings       []Warning            `json:"warnings,omitempty"`

	index int
}

// Engine is safe for concurrent use; it holds no mutable state.
type Engine struct {
	cfg        Config
	similarity similarity.Func
	bands      []band
}

// New validates cfg and builds an engine. A nil sim selects similarity.Lexical.
func New(cfg Config, sim similarity.Func) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	bands, err := compileBands(cfg.Bands)
	if err != nil {
		return nil, fmt.Errorf("invalid matching config: %w", err)
	}
	if sim == nil {
		sim = similarity.Lexical
	}
	cfg.Bands = append([]Band(nil), cfg.Bands...)
	return &Engine{cfg: cfg, similarity: sim, bands: bands}, nil
}

// Match scores every job, then returns the results ranked best first. The batch size is
// checked before any work and violations are reported as *BatchSizeError.
func (e *Engine) Match(candidate *profile.Candidate, jobs []*profile.Job) ([]Result, error) {
	if err := e.cfg.CheckBatch(len(jobs)); err != nil {
		return nil, err
	}
	if candidate == nil {
		return nil, errors.New("candidate is required")
	}
	for i, job := range jobs {
		if job == nil {
			return nil, fmt.Errorf("job %d is nil", i)
		}
	}

	skills := profile.Set(candidate.Skills)
	results := make([]Result, len(jobs))

	var g errgroup.Group
	if e.cfg.Parallelism > 0 {
		g.SetLimit(e.cfg.Parallelism)
	}
	for i, job := range jobs {
		g.Go(func() error {
			results[i] = e.score(candidate, skills, job, i)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	e.rank(results)
	return results, nil
}

func (e *Engine) score(candidate *profile.Candidate, skills []string, job *profile.Job, index int) Result {
	canonical := *job
	canonical.RequiredSkills = profile.Set(job.RequiredSkills)
	canonical.PreferredSkills = profile.Set(job.PreferredSkills)

	sm := e.matchSkills(skills, &canonical)
	exp := e.assessExperience(candidate.TotalExperienceYears, job)
	minimum := math.Max(finite(job.MinExperienceYears), 0)

	overall := sm.SimilarityScore*e.cfg.SkillWeight + e.experienceComponent(exp, minimum)*e.cfg.ExperienceWeight

	var warnings []Warning
	if sm.Degenerate {
		warnings = append(warnings, WarningJobWithoutSkills)
	}
	if finite(candidate.TotalExperienceYears) <= 0 {
		warnings = append(warnings, WarningCandidateWithoutExperience)
	}

	return Result{
		Job:          job,
		OverallScore: similarity.Clamp(overall),
		Skills:       sm,
		Experience:   exp,
		Warnings:     warnings,
		index:        index,
	}
}
