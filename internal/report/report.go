// Package report turns ranked match results into the persisted JSON report.
package report

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	_ "embed"

	"github.com/google/uuid"
	"github.com/xeipuuv/gojsonschema"

	"github.com/spigell/resume-matcher/internal/matching"
	"github.com/spigell/resume-matcher/internal/profile"
)

//go:embed schema.json
var schemaJSON string

var (
	newID = uuid.NewString
	now   = time.Now
)

// Record is the persisted view of one match result.
type Record struct {
	JobID               string   `json:"job_id"`
	Title               string   `json:"title"`
	Company             string   `json:"company"`
	OverallScore        float64  `json:"overall_score"`
	Rank                int      `json:"rank"`
	MatchedSkillsCount  int      `json:"matched_skills_count"`
	RequiredSkillsCount int      `json:"required_skills_count"`
	MeetsExperience     bool     `json:"meets_experience"`
	Recommendation      string   `json:"recommendation_text"`
	MissingRequired     []string `json:"missing_required_skills,omitempty"`
	Warnings            []string `json:"warnings,omitempty"`
}

type Candidate struct {
	Skills               []string `json:"skills"`
	TotalExperienceYears float64  `json:"total_experience_years"`
}

type Summary struct {
	TopJobs         []Record               `json:"top_jobs"`
	SkillsToDevelop []matching.SkillDemand `json:"skills_to_develop"`
	Warnings        []matching.Notice      `json:"warnings,omitempty"`
}

type Report struct {
	RunID       string     `json:"run_id"`
	GeneratedAt time.Time  `json:"generated_at"`
	Resume      string     `json:"resume"`
	Candidate   *Candidate `json:"candidate,omitempty"`
	Skipped     []string   `json:"skipped_jobs,omitempty"`
	Results     []Record   `json:"results"`
	Summary     Summary    `json:"summary"`
}

// New builds a report for one run. Results are expected in rank order.
func New(resume string, candidate *profile.Candidate, results []matching.Result, summary matching.Summary, skipped []string) *Report {
	r := &Report{
		RunID:       newID(),
		GeneratedAt: now().UTC().Truncate(time.Second),
		Resume:      resume,
		Skipped:     append([]string(nil), skipped...),
		Results:     records(results),
		Summary: Summary{
			TopJobs:         records(summary.TopJobs),
			SkillsToDevelop: append([]matching.SkillDemand{}, summary.SkillsToDevelop...),
			Warnings:        append([]matching.Notice(nil), summary.Warnings...),
		},
	}
	if candidate != nil {
		r.Candidate = &Candidate{
			Skills:               append([]string{}, candidate.Skills...),
			TotalExperienceYears: round2(candidate.TotalExperienceYears),
		}
	}
	return r
}

// FromResult converts one match result.
func FromResult(res matching.Result) Record {
	rec := Record{
		OverallScore:       round2(res.OverallScore),
		Rank:               res.Rank,
		MatchedSkillsCount: len(res.Skills.MatchedRequired),
		MeetsExperience:    res.Experience.MeetsMinimum,
		Recommendation:     res.Recommendation,
		MissingRequired:    append([]string(nil), res.Skills.MissingRequired...),
	}
	if res.Job != nil {
		rec.JobID = res.Job.ID
		rec.Title = res.Job.Title
		rec.Company = res.Job.Company
		rec.RequiredSkillsCount = len(res.Job.RequiredSkills)
	}
	for _, w := range res.Warnings {
		rec.Warnings = append(rec.Warnings, string(w))
	}
	return rec
}

func records(results []matching.Result) []Record {
	out := make([]Record, 0, len(results))
	for _, res := range results {
		out = append(out, FromResult(res))
	}
	return out
}

func round2(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return math.Round(v*100) / 100
}

// Validate checks the report against the embedded JSON schema.
func (r *Report) Validate() error {
	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	return validateJSON(data)
}

// ValidationError lists every schema violation found in a report.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "report does not match schema: " + strings.Join(e.Problems, "; ")
}

func validateJSON(data []byte) error {
	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(schemaJSON),
		gojsonschema.NewBytesLoader(data),
	)
	if err != nil {
		return fmt.Errorf("validate report: %w", err)
	}
	if result.Valid() {
		return nil
	}

	verr := &ValidationError{}
	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == "" {
			field = "(root)"
		}
		verr.Problems = append(verr.Problems, field+": "+desc.Description())
	}
	return verr
}

// WriteFile validates the report and writes it as indented JSON, creating parent
// directories as needed.
func (r *Report) WriteFile(path string) error {
	data, err := r.encode()
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create report directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

// DumpToTmpFile writes the report into a new temporary file and returns its name.
func (r *Report) DumpToTmpFile() (string, error) {
	data, err := r.encode()
	if err != nil {
		return "", err
	}

	file, err := os.CreateTemp("", "resume_matches_*.json")
	if err != nil {
		return "", err
	}
	defer file.Close()

	if _, err := file.Write(data); err != nil {
		return "", err
	}
	return file.Name(), nil
}

func (r *Report) encode() ([]byte, error) {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal report: %w", err)
	}
	if err := validateJSON(data); err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// ReportByCompany groups the results by hiring company, keeping rank order inside
// each group. Jobs without a company are grouped under "unknown".
func (r *Report) ReportByCompany() map[string][]map[string]string {
	report := make(map[string][]map[string]string)
	for _, rec := range r.Results {
		key := rec.Company
		if key == "" {
			key = "unknown"
		}
		report[key] = append(report[key], map[string]string{
			"job_id":         rec.JobID,
			"title":          rec.Title,
			"rank":           strconv.Itoa(rec.Rank),
			"score":          strconv.FormatFloat(rec.OverallScore, 'f', 2, 64),
			"skills":         fmt.Sprintf("%d/%d", rec.MatchedSkillsCount, rec.RequiredSkillsCount),
			"recommendation": rec.Recommendation,
		})
	}
	return report
}

// Find returns the record of the job with the given id.
func (r *Report) Find(jobID string) (Record, bool) {
	for _, rec := range r.Results {
		if rec.JobID == jobID {
			return rec, true
		}
	}
	return Record{}, false
}
