package matching

import (
	"fmt"
	"math"

	"github.com/spigell/resume-matcher/internal/profile"
	"github.com/spigell/resume-matcher/internal/similarity"
)

// Alignment compares the candidate's implied seniority with the job's level.
type Alignment int

const (
	Under Alignment = iota
	Match
	Over
)

func (a Alignment) String() string {
	switch a {
	case Under:
		return "under"
	case Match:
		return "match"
	case Over:
		return "over"
	default:
		return fmt.Sprintf("alignment(%d)", int(a))
	}
}

func (a Alignment) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// ExperienceAssessment is the outcome of checking candidate experience against one job.
type ExperienceAssessment struct {
	MeetsMinimum     bool                `json:"meets_minimum"`
	YearsGap         float64             `json:"years_gap"`
	Alignment        Alignment           `json:"seniority_alignment"`
	ImpliedSeniority []profile.Seniority `json:"implied_seniority"`
}

func (e *Engine) assessExperience(years float64, job *profile.Job) ExperienceAssessment {
	years = finite(years)
	minimum := math.Max(finite(job.MinExperienceYears), 0)

	implied := e.impliedSeniority(years)
	return ExperienceAssessment{
		MeetsMinimum:     minimum == 0 || years >= minimum,
		YearsGap:         years - minimum,
		Alignment:        align(implied, job.Seniority),
		ImpliedSeniority: implied,
	}
}

// impliedSeniority returns every level whose band contains years. Negative years count
// as zero. Years outside all bands fall back to the band with the largest minimum not
// above them.
func (e *Engine) impliedSeniority(years float64) []profile.Seniority {
	years = math.Max(years, 0)

	var implied []profile.Seniority
	for _, b := range e.bands {
		if b.contains(years) {
			implied = append(implied, b.level)
		}
	}
	if len(implied) > 0 {
		return implied
	}

	fallback, found := profile.Entry, false
	floor := math.Inf(-1)
	for _, b := range e.bands {
		if b.min <= years && b.min > floor {
			fallback, floor, found = b.level, b.min, true
		}
	}
	if !found {
		return []profile.Seniority{profile.Entry}
	}
	return []profile.Seniority{fallback}
}

func align(implied []profile.Seniority, level profile.Seniority) Alignment {
	under, over := true, true
	for _, s := range implied {
		if s >= level {
			under = false
		}
		if s <= level {
			over = false
		}
	}
	switch {
	case under:
		return Under
	case over:
		return Over
	default:
		return Match
	}
}

func (e *Engine) experienceComponent(a ExperienceAssessment, minimum float64) float64 {
	if a.MeetsMinimum {
		if a.Alignment == Over {
			return e.cfg.OverQualifiedCredit
		}
		return 1
	}
	return similarity.Clamp(1 + a.YearsGap/minimum)
}

func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
