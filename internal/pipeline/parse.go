package pipeline

import (
	"context"
	"errors"
	"fmt"
	"math"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/spigell/resume-matcher/internal/ai"
	"github.com/spigell/resume-matcher/internal/extract"
	"github.com/spigell/resume-matcher/internal/normalize"
	"github.com/spigell/resume-matcher/internal/profile"
)

const (
	parseResumeName = "parse_resume"
	parseJobsName   = "parse_jobs"
)

type parseResumeStage struct {
	timeout time.Duration
}

// NewParseResume creates the stage that turns resume text into a candidate profile.
func NewParseResume(cfg *Config) Stage {
	s := &parseResumeStage{}
	if cfg != nil {
		s.timeout = cfg.Timeout
	}
	return s
}

func (s *parseResumeStage) Name() string { return parseResumeName }

func (s *parseResumeStage) Disable(string) {}

func (s *parseResumeStage) IsEnabled() bool { return true }

func (s *parseResumeStage) Validate(cfg *Config) error {
	s.timeout = cfg.Timeout
	return nil
}

func (s *parseResumeStage) Run(ctx context.Context, deps Deps, state *State) (Step, error) {
	if deps.Fields == nil {
		return Step{}, errors.New("field extractor is required")
	}

	fctx, cancel := withTimeout(ctx, s.timeout)
	record := deps.Fields.Extract(fctx, state.ResumeDocument.Text, ai.ResumeSchema)
	cancel()

	var fields ai.ResumeFields
	if err := ai.Decode(record, &fields); err != nil {
		deps.Logger.Warn("some resume fields could not be decoded", zap.Error(err))
	}

	candidate := CandidateFromFields(fields, deps.Normalizer)
	if len(candidate.Skills) == 0 {
		deps.Logger.Warn("no skills found in resume", zap.String("path", state.ResumeDocument.Path))
	}

	deps.Logger.Debug("resume parsed",
		zap.Strings("skills", candidate.Skills),
		zap.Float64("total_experience_years", candidate.TotalExperienceYears),
		zap.Stringer("education", candidate.Education),
	)

	state.Candidate = candidate
	return Step{Initial: 1, Left: 1}, nil
}

type parseJobsStage struct {
	parallelism int
	timeout     time.Duration
}

// NewParseJobs creates the stage that turns job description texts into job profiles.
func NewParseJobs(cfg *Config) Stage {
	s := &parseJobsStage{}
	s.configure(cfg)
	return s
}

func (s *parseJobsStage) configure(cfg *Config) {
	if cfg == nil {
		return
	}
	s.parallelism = cfg.JobParallelism
	s.timeout = cfg.Timeout
}

func (s *parseJobsStage) Name() string { return parseJobsName }

func (s *parseJobsStage) Disable(string) {}

func (s *parseJobsStage) IsEnabled() bool { return true }

func (s *parseJobsStage) Validate(cfg *Config) error {
	s.configure(cfg)
	return nil
}

func (s *parseJobsStage) Run(ctx context.Context, deps Deps, state *State) (Step, error) {
	if deps.Fields == nil {
		return Step{}, errors.New("field extractor is required")
	}

	docs := state.JobDocuments
	ids := jobIDs(docs)
	jobs := make([]*profile.Job, len(docs))

	g, gctx := errgroup.WithContext(ctx)
	if s.parallelism > 0 {
		g.SetLimit(s.parallelism)
	}
	for i, doc := range docs {
		g.Go(func() error {
			fctx, cancel := withTimeout(gctx, s.timeout)
			defer cancel()

			record := deps.Fields.Extract(fctx, doc.Text, ai.JobSchema)

			var fields ai.JobFields
			if err := ai.Decode(record, &fields); err != nil {
				deps.Logger.Warn("some job fields could not be decoded",
					zap.String("path", doc.Path),
					zap.Error(err),
				)
			}
			if strings.TrimSpace(fields.Title) == "" {
				fields.Title = ids[i]
			}

			jobs[i] = JobFromFields(ids[i], fields, deps.Normalizer)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Step{}, err
	}

	for _, job := range jobs {
		deps.Logger.Debug("job parsed",
			zap.String("id", job.ID),
			zap.String("job", job.Label()),
			zap.Strings("required_skills", job.RequiredSkills),
			zap.Strings("preferred_skills", job.PreferredSkills),
			zap.Float64("min_experience_years", job.MinExperienceYears),
			zap.Stringer("seniority", job.Seniority),
		)
	}

	state.Jobs = jobs
	return Step{Initial: len(docs), Left: len(jobs)}, nil
}

func (s *parseJobsStage) Status() Status {
	return Status{
		Name:    s.Name(),
		Enabled: true,
		Details: map[string]string{"parallelism": strconv.Itoa(s.parallelism)},
	}
}

// CandidateFromFields builds a candidate from extracted resume fields. Total experience
// falls back to the sum of the work history when the resume states no total. A role
// without a usable duration is kept with zero years.
func CandidateFromFields(fields ai.ResumeFields, n *normalize.Normalizer) *profile.Candidate {
	if n == nil {
		n = normalize.New(nil)
	}

	roles := make(map[string]float64)
	var historyYears float64
	for _, role := range fields.WorkHistory {
		title := strings.ToLower(strings.Join(strings.Fields(role.Title), " "))
		if title == "" {
			continue
		}
		years := role.Years
		if math.IsNaN(years) || math.IsInf(years, 0) || years < 0 {
			years = 0
		}
		roles[title] += years
		historyYears += years
	}

	total := fields.TotalExperienceYears
	if total <= 0 {
		total = historyYears
	}

	return profile.NewCandidate(profile.Candidate{
		Skills:               n.Skills(fields.Skills),
		TotalExperienceYears: total,
		RoleExperience:       roles,
		Education:            normalize.Education(fields.Education),
		Certifications:       trimAll(fields.Certifications),
		Contact: profile.Contact{
			Name:  strings.TrimSpace(fields.Name),
			Email: strings.TrimSpace(fields.Email),
			Phone: strings.TrimSpace(fields.Phone),
		},
	})
}

// JobFromFields builds a job from extracted fields. When no level is stated the title
// is searched for one, and failing that the level follows from the minimum years.
func JobFromFields(id string, fields ai.JobFields, n *normalize.Normalizer) *profile.Job {
	if n == nil {
		n = normalize.New(nil)
	}

	level, ok := normalize.Seniority(fields.Seniority)
	if !ok {
		level, ok = normalize.Seniority(fields.Title)
	}
	if !ok {
		level = normalize.SeniorityFromYears(fields.MinExperienceYears)
	}

	return profile.NewJob(profile.Job{
		ID:                 id,
		Title:              fields.Title,
		Company:            fields.Company,
		RequiredSkills:     n.Skills(fields.RequiredSkills),
		PreferredSkills:    n.Skills(fields.PreferredSkills),
		MinExperienceYears: fields.MinExperienceYears,
		Seniority:          level,
		Responsibilities:   trimAll(fields.Responsibilities),
	})
}

// jobIDs derives a stable identifier from each file name. Repeated names get a
// numeric suffix.
func jobIDs(docs []extract.Document) []string {
	ids := make([]string, len(docs))
	seen := make(map[string]int, len(docs))
	for i, doc := range docs {
		base := filepath.Base(doc.Path)
		id := strings.TrimSuffix(base, filepath.Ext(base))
		if id == "" || id == "." {
			id = "job"
		}
		seen[id]++
		if n := seen[id]; n > 1 {
			id = fmt.Sprintf("%s-%d", id, n)
		}
		ids[i] = id
	}
	return ids
}

func trimAll(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
