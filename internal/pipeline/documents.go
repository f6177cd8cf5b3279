package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/spigell/resume-matcher/internal/extract"
	"github.com/spigell/resume-matcher/internal/matching"
)

const (
	extractResumeName = "extract_resume"
	extractJobsName   = "extract_jobs"
)

type extractResumeStage struct {
	path    string
	timeout time.Duration
}

// NewExtractResume creates the stage that reads the resume file.
func NewExtractResume(cfg *Config) Stage {
	s := &extractResumeStage{}
	s.configure(cfg)
	return s
}

func (s *extractResumeStage) configure(cfg *Config) {
	if cfg == nil {
		return
	}
	s.path = strings.TrimSpace(cfg.ResumePath)
	s.timeout = cfg.Timeout
}

func (s *extractResumeStage) Name() string { return extractResumeName }

func (s *extractResumeStage) Disable(string) {}

func (s *extractResumeStage) IsEnabled() bool { return true }

func (s *extractResumeStage) Validate(cfg *Config) error {
	s.configure(cfg)
	if s.path == "" {
		return errors.New("resume path is required")
	}
	return nil
}

func (s *extractResumeStage) Run(ctx context.Context, deps Deps, state *State) (Step, error) {
	if deps.Documents == nil {
		return Step{}, errors.New("document extractor is required")
	}

	doc, err := extractOne(ctx, deps.Documents, s.path, s.timeout)
	if err != nil {
		return Step{}, err
	}

	deps.Logger.Debug("resume extracted",
		zap.String("path", doc.Path),
		zap.String("method", doc.Method),
		zap.Int("pages", doc.Pages),
		zap.Int("chars", len(doc.Text)),
	)

	state.ResumeDocument = doc
	return Step{Initial: 1, Left: 1}, nil
}

func (s *extractResumeStage) Status() Status {
	return Status{Name: s.Name(), Enabled: true, Details: map[string]string{"path": s.path}}
}

type extractJobsStage struct {
	paths       []string
	parallelism int
	skip        bool
	timeout     time.Duration
	batch       matching.Config
}

// NewExtractJobs creates the stage that reads every job description file.
func NewExtractJobs(cfg *Config) Stage {
	s := &extractJobsStage{}
	s.configure(cfg)
	return s
}

func (s *extractJobsStage) configure(cfg *Config) {
	if cfg == nil {
		return
	}
	s.timeout = cfg.Timeout
	s.paths = append([]string(nil), cfg.JobPaths...)
	s.parallelism = cfg.JobParallelism
	s.skip = cfg.SkipUnreadableJobs
	s.batch = cfg.Matching
}

func (s *extractJobsStage) Name() string { return extractJobsName }

func (s *extractJobsStage) Disable(string) {}

func (s *extractJobsStage) IsEnabled() bool { return true }

// Validate checks the batch bounds up front unless skipping may still shrink the batch.
func (s *extractJobsStage) Validate(cfg *Config) error {
	s.configure(cfg)
	if len(s.paths) == 0 {
		return errors.New("at least one job description is required")
	}
	if s.parallelism < 0 {
		return fmt.Errorf("job parallelism must not be negative, got %d", s.parallelism)
	}
	if !s.skip {
		return s.batch.CheckBatch(len(s.paths))
	}
	return nil
}

// Run extracts the files concurrently and keeps them in input order. Unreadable files
// abort the run unless skipping is configured, in which case the batch bounds are
// checked again on what is left.
func (s *extractJobsStage) Run(ctx context.Context, deps Deps, state *State) (Step, error) {
	if deps.Documents == nil {
		return Step{}, errors.New("document extractor is required")
	}

	docs := make([]extract.Document, len(s.paths))
	failures := make([]error, len(s.paths))

	g, gctx := errgroup.WithContext(ctx)
	if s.parallelism > 0 {
		g.SetLimit(s.parallelism)
	}
	for i, path := range s.paths {
		g.Go(func() error {
			doc, err := extractOne(gctx, deps.Documents, path, s.timeout)
			if err == nil {
				docs[i] = doc
				return nil
			}

			var docErr *extract.Error
			if s.skip && errors.As(err, &docErr) {
				failures[i] = err
				return nil
			}
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return Step{}, err
	}

	kept := make([]extract.Document, 0, len(docs))
	var skipped []string
	for i, doc := range docs {
		if failures[i] != nil {
			deps.Logger.Warn("skipping unreadable job description",
				zap.String("path", s.paths[i]),
				zap.Error(failures[i]),
			)
			skipped = append(skipped, s.paths[i])
			continue
		}
		kept = append(kept, doc)
	}

	step := Step{Initial: len(s.paths), Dropped: len(skipped), Left: len(kept)}
	if err := s.batch.CheckBatch(len(kept)); err != nil {
		return step, err
	}

	state.JobDocuments = kept
	state.Skipped = skipped
	return step, nil
}

func (s *extractJobsStage) Status() Status {
	return Status{
		Name:    s.Name(),
		Enabled: true,
		Details: map[string]string{
			"jobs":                 strconv.Itoa(len(s.paths)),
			"parallelism":          strconv.Itoa(s.parallelism),
			"skip_unreadable_jobs": strconv.FormatBool(s.skip),
			"min_jobs":             strconv.Itoa(s.batch.MinJobs),
			"max_jobs":             strconv.Itoa(s.batch.MaxJobs),
		},
	}
}

func extractOne(ctx context.Context, docs extract.DocumentExtractor, path string, timeout time.Duration) (extract.Document, error) {
	ctx, cancel := withTimeout(ctx, timeout)
	defer cancel()
	return docs.Extract(ctx, path)
}
