package matching

import (
	"fmt"
	"math"

	"github.com/go-playground/validator/v10"

	"github.com/spigell/resume-matcher/internal/profile"
)

// Config holds every tunable constant of the engine. It is passed explicitly to New,
// so several engines with different settings can run side by side.
type Config struct {
	SkillWeight      float64 `mapstructure:"skill-weight" validate:"gte=0,lte=1"`
	ExperienceWeight float64 `mapstructure:"experience-weight" validate:"gte=0,lte=1"`

	RequiredWeight      float64 `mapstructure:"required-weight" validate:"gt=0,lte=1"`
	PreferredWeight     float64 `mapstructure:"preferred-weight" validate:"gte=0,lte=1"`
	SimilarityThreshold float64 `mapstructure:"similarity-threshold" validate:"gte=0,lte=1"`
	OverQualifiedCredit float64 `mapstructure:"over-qualified-credit" validate:"gte=0,lte=1"`

	Epsilon float64 `mapstructure:"epsilon" validate:"gte=0"`
	MinJobs int     `mapstructure:"min-jobs" validate:"gte=1"`
	MaxJobs int     `mapstructure:"max-jobs" validate:"gtefield=MinJobs"`

	TopK                 int     `mapstructure:"top-k" validate:"gte=1"`
	SkillsToDevelopLimit int     `mapstructure:"skills-to-develop-limit" validate:"gte=0"`
	MissingSkillsShown   int     `mapstructure:"missing-skills-shown" validate:"gte=1"`
	ExcellentThreshold   float64 `mapstructure:"excellent-threshold" validate:"gte=0,lte=1"`
	GoodThreshold        float64 `mapstructure:"good-threshold" validate:"gte=0,ltefield=ExcellentThreshold"`

	Bands []Band `mapstructure:"bands" validate:"required,min=1,dive"`

	// Parallelism bounds the number of jobs scored at once. Zero means one goroutine per job.
	Parallelism int `mapstructure:"parallelism" validate:"gte=0"`
}

// Band maps a years-of-experience range [Min, Max) to a seniority level.
// Max of zero leaves the band open ended.
type Band struct {
	Level string  `mapstructure:"level" validate:"required,oneof=entry mid senior lead executive"`
	Min   float64 `mapstructure:"min" validate:"gte=0"`
	Max   float64 `mapstructure:"max" validate:"gte=0"`
}

// DefaultBands are the stock seniority ranges. Senior, Lead and Executive overlap.
func DefaultBands() []Band {
	return []Band{
		{Level: profile.Entry.String(), Min: 0, Max: 2},
		{Level: profile.Mid.String(), Min: 2, Max: 5},
		{Level: profile.Senior.String(), Min: 5, Max: 10},
		{Level: profile.Lead.String(), Min: 8, Max: 15},
		{Level: profile.Executive.String(), Min: 12},
	}
}

// DefaultConfig returns the stock engine configuration.
func DefaultConfig() Config {
	return Config{
		SkillWeight:          0.6,
		ExperienceWeight:     0.4,
		RequiredWeight:       0.7,
		PreferredWeight:      0.3,
		SimilarityThreshold:  0.6,
		OverQualifiedCredit:  0.7,
		Epsilon:              1e-6,
		MinJobs:              5,
		MaxJobs:              10,
		TopK:                 3,
		SkillsToDevelopLimit: 5,
		MissingSkillsShown:   3,
		ExcellentThreshold:   0.8,
		GoodThreshold:        0.6,
		Bands:                DefaultBands(),
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the struct tags and the band ranges.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid matching config: %w", err)
	}
	for _, b := range c.Bands {
		if b.Max != 0 && b.Max <= b.Min {
			return fmt.Errorf("invalid matching config: band %s has max %.2f not above min %.2f", b.Level, b.Max, b.Min)
		}
	}
	return nil
}

// CheckBatch reports a *BatchSizeError when n jobs fall outside [MinJobs, MaxJobs].
func (c Config) CheckBatch(n int) error {
	if n < c.MinJobs {
		return &BatchSizeError{Bound: BoundMinimum, Limit: c.MinJobs, Got: n}
	}
	if n > c.MaxJobs {
		return &BatchSizeError{Bound: BoundMaximum, Limit: c.MaxJobs, Got: n}
	}
	return nil
}

type band struct {
	level    profile.Seniority
	min, max float64
}

func (b band) contains(years float64) bool {
	return years >= b.min && years < b.max
}

func compileBands(in []Band) ([]band, error) {
	out := make([]band, 0, len(in))
	for _, b := range in {
		level, err := profile.ParseSeniority(b.Level)
		if err != nil {
			return nil, err
		}
		upper := b.Max
		if upper == 0 {
			upper = math.Inf(1)
		}
		out = append(out, band{level: level, min: b.Min, max: upper})
	}
	return out, nil
}
