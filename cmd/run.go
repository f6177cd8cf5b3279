package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/resume-matcher/internal/ai"
	"github.com/spigell/resume-matcher/internal/ai/gemini"
	"github.com/spigell/resume-matcher/internal/ai/heuristic"
	"github.com/spigell/resume-matcher/internal/extract"
	"github.com/spigell/resume-matcher/internal/logger"
	"github.com/spigell/resume-matcher/internal/matching"
	"github.com/spigell/resume-matcher/internal/normalize"
	"github.com/spigell/resume-matcher/internal/pipeline"
	"github.com/spigell/resume-matcher/internal/report"
	"github.com/spigell/resume-matcher/internal/secrets"
	"github.com/spigell/resume-matcher/internal/similarity"
)

const (
	PromptShowDetails     = "Show job details"
	PromptReportByCompany = "Report by company"
	PromptDumpToFile      = "Dump report to temp file"
	PromptExit            = "Exit"
	PromptBack            = "back"
)

var errExit = errors.New("exit requested")

var prompt = promptui.Select{
	Label: "What next?",
	Items: []string{PromptShowDetails, PromptReportByCompany, PromptDumpToFile, PromptExit},
}

var runCmd = &cobra.Command{
	Use:   "run [job files or directories...]",
	Short: "Match a resume against job descriptions and rank them",
	Run: func(cmd *cobra.Command, args []string) {
		run(cmd, args)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringP("resume", "r", "", "resume file (pdf, docx, txt or md)")
	runCmd.Flags().StringSlice("jobs", nil, "job description files or directories; positional arguments are added to these")
	runCmd.Flags().StringP("output", "o", "", "where to write the json report")
	runCmd.Flags().BoolP("auto-approve", "y", false, "do not show the interactive menu after ranking")
	runCmd.Flags().Bool("skip-unreadable-jobs", false, "drop job descriptions that cannot be read instead of failing")
	runCmd.Flags().String("similarity", "", "skill similarity strategy: lexical or embedding")

	viper.BindPFlag("output.path", runCmd.Flags().Lookup("output"))
	viper.BindPFlag("extract.skip-unreadable-jobs", runCmd.Flags().Lookup("skip-unreadable-jobs"))
	viper.BindPFlag("matching.similarity", runCmd.Flags().Lookup("similarity"))
}

// run is the main command for the cli.
func run(cmd *cobra.Command, args []string) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	logger.Info("starting the resume-matcher", zap.String("version", version))

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(config, "", "  ")
	logger.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	resume, _ := cmd.Flags().GetString("resume")
	if strings.TrimSpace(resume) == "" {
		logger.Fatal("resume file is required", zap.String("hint", "pass it with --resume"))
	}

	jobFlags, _ := cmd.Flags().GetStringSlice("jobs")
	documents := extract.New(config.Extract.Config)
	jobs, err := documents.Expand(append(jobFlags, args...))
	if err != nil {
		logger.Fatal("collecting job descriptions", zap.Error(err))
	}
	if len(jobs) == 0 {
		logger.Fatal("no job descriptions found", zap.String("hint", "pass files or directories with --jobs or as arguments"))
	}

	deps, err := prepareDeps(ctx, config, documents, logger)
	if err != nil {
		logger.Fatal("preparing ai provider", zap.Error(err))
	}

	pcfg := pipelineConfig(config, resume, jobs)
	stages := pipeline.Default(pcfg)
	logger.Info("running the pipeline", zap.String("flow", pipeline.Flow(stages)), zap.Int("jobs", len(jobs)))

	state, err := pipeline.Run(ctx, pcfg, deps, stages)
	if err != nil {
		var sizeErr *matching.BatchSizeError
		if errors.As(err, &sizeErr) {
			logger.Fatal("wrong number of job descriptions",
				zap.String("bound", sizeErr.Bound),
				zap.Int("limit", sizeErr.Limit),
				zap.Int("got", sizeErr.Got),
			)
		}
		logger.Fatal("pipeline failed", zap.Error(err))
	}

	rep := report.New(resume, state.Candidate, state.Results, state.Summary, state.Skipped)
	printResults(logger, rep)

	if path := strings.TrimSpace(config.Output.Path); path != "" {
		if err := rep.WriteFile(path); err != nil {
			logger.Fatal("writing the report", zap.Error(err))
		}
		logger.Info("report written", zap.String("filename", path), zap.String("run_id", rep.RunID))
	}

	if autoApprove, _ := cmd.Flags().GetBool("auto-approve"); autoApprove {
		return
	}

	for {
		_, action, err := prompt.Run()
		if err != nil {
			logger.Fatal("exiting", zap.Error(err))
		}

		if err := handleAction(action, logger, rep, state); err != nil {
			if errors.Is(err, errExit) {
				return
			}
			logger.Fatal("exiting", zap.Error(err))
		}
	}
}

func handleAction(action string, logger *zap.Logger, rep *report.Report, state *pipeline.State) error {
	switch action {
	case PromptExit:
		logger.Info("exiting", zap.String("reason", "got exit from prompt"))
		return errExit
	case PromptShowDetails:
		return showDetails(logger, rep, state.Results)
	case PromptReportByCompany:
		pretty, _ := json.MarshalIndent(rep.ReportByCompany(), "", "  ")
		logger.Info(string(pretty), zap.Int("jobs count", len(rep.Results)))
		return nil
	case PromptDumpToFile:
		filename, err := rep.DumpToTmpFile()
		if err != nil {
			return fmt.Errorf("dump report to file: %w", err)
		}
		logger.Info("dumping report to file", zap.String("filename", filename))
		return nil
	default:
		return fmt.Errorf("invalid action: %s", action)
	}
}

func showDetails(logger *zap.Logger, rep *report.Report, results []matching.Result) error {
	for {
		items := make([]string, 0, len(results)+1)
		for _, r := range results {
			items = append(items, fmt.Sprintf("%d. %s (%.2f)", r.Rank, r.Job.Label(), r.OverallScore))
		}

		jobPrompt := promptui.Select{
			Label: "Choose a job and press ENTER",
			Items: append(items, PromptBack),
			Size:  min(len(items)+1, 12),
		}

		idx, selected, err := jobPrompt.Run()
		if err != nil {
			return err
		}
		if selected == PromptBack {
			return nil
		}

		logger.Info(detailsText(results[idx]), detailsFields(rep, results[idx].Job.ID)...)
	}
}

func detailsText(r matching.Result) string {
	pretty, _ := json.MarshalIndent(r, "", "  ")
	return string(pretty)
}

// detailsFields adds the persisted view of the job, as written to the report.
func detailsFields(rep *report.Report, jobID string) []zap.Field {
	fields := []zap.Field{zap.String("job_id", jobID)}
	rec, ok := rep.Find(jobID)
	if !ok {
		return fields
	}
	return append(fields,
		zap.Float64("score", rec.OverallScore),
		zap.String("skills", fmt.Sprintf("%d/%d", rec.MatchedSkillsCount, rec.RequiredSkillsCount)),
		zap.Strings("missing", rec.MissingRequired),
	)
}

func printResults(logger *zap.Logger, rep *report.Report) {
	for _, rec := range rep.Results {
		logger.Info("ranked job",
			zap.Int("rank", rec.Rank),
			zap.String("title", rec.Title),
			zap.String("company", rec.Company),
			zap.Float64("score", rec.OverallScore),
			zap.String("skills", fmt.Sprintf("%d/%d", rec.MatchedSkillsCount, rec.RequiredSkillsCount)),
			zap.Bool("meets_experience", rec.MeetsExperience),
			zap.String("recommendation", rec.Recommendation),
		)
	}

	skills := make([]string, 0, len(rep.Summary.SkillsToDevelop))
	for _, d := range rep.Summary.SkillsToDevelop {
		skills = append(skills, fmt.Sprintf("%s (%d)", d.Skill, d.Count))
	}
	if len(skills) > 0 {
		logger.Info("skills to develop", zap.Strings("skills", skills))
	}
	if len(rep.Skipped) > 0 {
		logger.Warn("some job descriptions were skipped", zap.Strings("files", rep.Skipped))
	}
}

func pipelineConfig(config *Config, resume string, jobs []string) *pipeline.Config {
	return &pipeline.Config{
		ResumePath:         resume,
		JobPaths:           jobs,
		Matching:           config.Matching.Config,
		Similarity:         config.Matching.Similarity,
		JobParallelism:     config.Extract.JobParallelism,
		SkipUnreadableJobs: config.Extract.SkipUnreadableJobs,
		Timeout:            config.Extract.Timeout,
	}
}

// prepareDeps wires the extractors. Without an enabled ai section only the heuristic
// extractor is used and embeddings are unavailable.
func prepareDeps(ctx context.Context, config *Config, documents extract.DocumentExtractor, logger *zap.Logger) (pipeline.Deps, error) {
	normalizer := normalize.New(config.Matching.Synonyms)
	fallback := heuristic.New(normalizer, config.Matching.Vocabulary)
	deps := pipeline.Deps{
		Documents:  documents,
		Fields:     fallback,
		Normalizer: normalizer,
		Logger:     logger,
	}

	if config.AI == nil || !config.AI.Enabled {
		if _, err := similarity.ByName(config.Matching.Similarity); errors.Is(err, similarity.ErrNeedsTable) {
			return deps, errors.New("embedding similarity needs ai.enabled")
		}
		logger.Info("ai provider is disabled; using heuristic extraction")
		return deps, nil
	}

	fields, embedder, err := newGemini(ctx, config.AI, fallback, logger)
	if err != nil {
		return deps, err
	}
	deps.Fields = fields
	deps.Embedder = embedder
	return deps, nil
}

func newGemini(ctx context.Context, cfg *AIConfig, fallback ai.StructuredExtractor, log *zap.Logger) (ai.StructuredExtractor, pipeline.SkillEmbedder, error) {
	provider := strings.TrimSpace(strings.ToLower(cfg.Provider))
	if provider != "" && provider != gemini.Provider {
		return nil, nil, fmt.Errorf("unsupported ai provider: %s", cfg.Provider)
	}
	if cfg.Gemini == nil {
		cfg.Gemini = &GeminiConfig{}
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name: "gemini api key",
		File: cfg.Gemini.APIKeyFile,
		Env:  "GEMINI_API_KEY",
	})
	if err != nil {
		return nil, nil, fmt.Errorf("%w (set ai.gemini.api-key-file, GEMINI_API_KEY_FILE or GEMINI_API_KEY)", err)
	}

	client, err := gemini.NewClient(ctx, apiKey)
	if err != nil {
		return nil, nil, err
	}

	generator := gemini.NewGenerator(client, cfg.Gemini.Model, cfg.Gemini.MaxRetries, log)
	fields := gemini.NewExtractor(generator, fallback, logger.ForComponent(log, "extractor"), cfg.Gemini.MaxLogLength)
	embedder := gemini.NewEmbedder(client, cfg.Gemini.EmbeddingModel, logger.ForComponent(log, "embedder"))

	log.Info("ai provider is enabled",
		zap.String("provider", gemini.Provider),
		zap.String("model", generator.Model()),
		zap.Int("ai_retry_attempts", cfg.Gemini.MaxRetries),
	)
	return fields, embedder, nil
}
