package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/spigell/resume-matcher/internal/ai/gemini"
	"github.com/spigell/resume-matcher/internal/extract"
	"github.com/spigell/resume-matcher/internal/matching"
	"github.com/spigell/resume-matcher/internal/similarity"
)

const (
	app       = "resume-matcher"
	envPrefix = "RESUME_MATCHER"
)

type Config struct {
	Matching MatchingConfig `mapstructure:"matching"`
	Extract  ExtractConfig  `mapstructure:"extract"`
	AI       *AIConfig      `mapstructure:"ai"`
	Output   OutputConfig   `mapstructure:"output"`
}

type MatchingConfig struct {
	matching.Config `mapstructure:",squash"`

	Similarity string            `mapstructure:"similarity" validate:"oneof=lexical embedding"`
	Synonyms   map[string]string `mapstructure:"synonyms"`
	// Vocabulary adds skills the heuristic extractor should recognize.
	Vocabulary []string `mapstructure:"vocabulary"`
}

type ExtractConfig struct {
	extract.Config `mapstructure:",squash"`

	JobParallelism     int           `mapstructure:"job-parallelism" validate:"gte=0"`
	SkipUnreadableJobs bool          `mapstructure:"skip-unreadable-jobs"`
	Timeout            time.Duration `mapstructure:"timeout" validate:"gte=0"`
}

type AIConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Provider string        `mapstructure:"provider" validate:"omitempty,oneof=gemini"`
	Gemini   *GeminiConfig `mapstructure:"gemini"`
}

type GeminiConfig struct {
	APIKeyFile     string `mapstructure:"api-key-file"`
	Model          string `mapstructure:"model"`
	EmbeddingModel string `mapstructure:"embedding-model"`
	MaxRetries     int    `mapstructure:"max-retries" validate:"gte=0"`
	MaxLogLength   int    `mapstructure:"max-log-length" validate:"gte=0"`
}

type OutputConfig struct {
	Path string `mapstructure:"path"`
}

var (
	// Used for flags.
	cfgFile string

	validate = validator.New(validator.WithRequiredStructEnabled())

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "resume-matcher scores a resume against a batch of job descriptions and ranks them",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	if err := viper.BindEnv("ai.gemini.api-key-file", "GEMINI_API_KEY_FILE"); err != nil {
		log.Fatalf("binding GEMINI_API_KEY_FILE environment variable: %v", err)
	}

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is resume-matcher.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))

	setDefaults(viper.GetViper())
}

func setDefaults(v *viper.Viper) {
	m := matching.DefaultConfig()
	defaults := map[string]any{
		"matching.skill-weight":            m.SkillWeight,
		"matching.experience-weight":       m.ExperienceWeight,
		"matching.required-weight":         m.RequiredWeight,
		"matching.preferred-weight":        m.PreferredWeight,
		"matching.similarity-threshold":    m.SimilarityThreshold,
		"matching.over-qualified-credit":   m.OverQualifiedCredit,
		"matching.epsilon":                 m.Epsilon,
		"matching.min-jobs":                m.MinJobs,
		"matching.max-jobs":                m.MaxJobs,
		"matching.top-k":                   m.TopK,
		"matching.skills-to-develop-limit": m.SkillsToDevelopLimit,
		"matching.missing-skills-shown":    m.MissingSkillsShown,
		"matching.excellent-threshold":     m.ExcellentThreshold,
		"matching.good-threshold":          m.GoodThreshold,
		"matching.bands":                   m.Bands,
		"matching.parallelism":             m.Parallelism,
		"matching.similarity":              similarity.StrategyLexical,

		"extract.max-size-bytes":       10 << 20,
		"extract.min-text-chars":       20,
		"extract.job-parallelism":      4,
		"extract.skip-unreadable-jobs": false,
		"extract.timeout":              2 * time.Minute,

		"ai.enabled":                false,
		"ai.provider":               gemini.Provider,
		"ai.gemini.model":           gemini.DefaultModel,
		"ai.gemini.embedding-model": gemini.DefaultEmbeddingModel,
		"ai.gemini.max-retries":     gemini.DefaultMaxRetries,
		"ai.gemini.max-log-length":  200,

		"output.path": app + "-report.json",
	}
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
}

func initConfig() {
	// Only commands that run the pipeline need a config.
	if runCmd.CalledAs() == "" && pipelineCmd.CalledAs() == "" {
		return
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Fatalf("loading .env: %v", err)
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
		viper.SetConfigType("yaml")
	}

	// A missing default config is fine, every key has a default. A broken one is not.
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			log.Fatal(err)
		}
	}
}

func getConfig() (*Config, error) {
	return decodeConfig(viper.GetViper())
}

func decodeConfig(v *viper.Viper) (*Config, error) {
	var config *Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if config == nil {
		return nil, errors.New("config is empty")
	}
	if err := validate.Struct(config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if err := config.Matching.Config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}
