// Package profile holds the candidate and job records compared by the matching engine.
package profile

import (
	"maps"
	"slices"
	"strings"
)

// Contact is carried along for reporting only. Scoring never reads it.
type Contact struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}

// Candidate is the feature set extracted from one resume.
// Values are built once with NewCandidate and treated as read-only afterwards.
type Candidate struct {
	Skills               []string           `json:"skills"`
	TotalExperienceYears float64            `json:"total_experience_years"`
	RoleExperience       map[string]float64 `json:"role_experience,omitempty"`
	Education            EducationLevel     `json:"education"`
	Certifications       []string           `json:"certifications,omitempty"`
	Contact              Contact            `json:"contact"`
}

// Job is the feature set extracted from one job description.
// Values are built once with NewJob and treated as read-only afterwards.
type Job struct {
	ID                 string    `json:"id"`
	Title              string    `json:"title"`
	Company            string    `json:"company,omitempty"`
	RequiredSkills     []string  `json:"required_skills"`
	PreferredSkills    []string  `json:"preferred_skills"`
	MinExperienceYears float64   `json:"min_experience_years"`
	Seniority          Seniority `json:"seniority"`
	Responsibilities   []string  `json:"responsibilities,omitempty"`
}

// NewCandidate copies the provided candidate, turning every collection into a sorted,
// deduplicated set so that iteration order never depends on the caller.
func NewCandidate(c Candidate) *Candidate {
	out := &Candidate{
		Skills:               Set(c.Skills),
		TotalExperienceYears: c.TotalExperienceYears,
		Education:            c.Education,
		Certifications:       Set(c.Certifications),
		Contact:              c.Contact,
	}
	if len(c.RoleExperience) > 0 {
		out.RoleExperience = maps.Clone(c.RoleExperience)
	}
	return out
}

// NewJob copies the provided job the same way NewCandidate does.
// Responsibilities keep their order.
func NewJob(j Job) *Job {
	return &Job{
		ID:                 strings.TrimSpace(j.ID),
		Title:              strings.TrimSpace(j.Title),
		Company:            strings.TrimSpace(j.Company),
		RequiredSkills:     Set(j.RequiredSkills),
		PreferredSkills:    Set(j.PreferredSkills),
		MinExperienceYears: j.MinExperienceYears,
		Seniority:          j.Seniority,
		Responsibilities:   slices.Clone(j.Responsibilities),
	}
}

// HasSkills reports whether the job declares any required or preferred skill.
func (j *Job) HasSkills() bool {
	return len(j.RequiredSkills) > 0 || len(j.PreferredSkills) > 0
}

// Label is a short human readable reference to the job.
func (j *Job) Label() string {
	if j.Company == "" {
		return j.Title
	}
	return j.Title + " @ " + j.Company
}

// Set returns a sorted copy of items without empty strings and duplicates.
func Set(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if item == "" {
			continue
		}
		out = append(out, item)
	}
	slices.Sort(out)
	return slices.Compact(out)
}
