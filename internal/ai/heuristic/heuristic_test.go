package heuristic

import (
	"context"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/spigell/resume-matcher/internal/ai"
	"github.com/spigell/resume-matcher/internal/normalize"
)

const resumeText = `Jane Doe
jane.doe@example.com | +1 (555) 123-4567
Senior Software Engineer with 7 years of experience building backend systems.

Skills:
- Python, Django, PostgreSQL, Docker, K8s
- Go and REST APIs

Experience
Senior Engineer, Acme 2019 - present
Software Engineer, Globex 2016 - 2019

Education
M.Sc. in Computer Science, 2016

Certifications
- AWS Certified Solutions Architect
`

const jobText = `Senior Backend Engineer at Globex
Location: Remote

Responsibilities:
- Design and build APIs in Go
- Operate services on Kubernetes

Requirements:
- 5+ years of experience with Go or Python
- PostgreSQL and Docker
- Experience with Kafka is a plus

Nice to have:
- Terraform
- AWS
`

func newTestExtractor() *Extractor {
	e := New(nil, nil)
	e.now = func() time.Time { return time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC) }
	return e
}

func TestExtractResume(t *testing.T) {
	record := newTestExtractor().Extract(context.Background(), resumeText, ai.ResumeSchema)

	want := ai.Record{
		ai.FieldName:                 "Jane Doe",
		ai.FieldEmail:                "jane.doe@example.com",
		ai.FieldPhone:                "+1 (555) 123-4567",
		ai.FieldSkills:               []string{"aws", "django", "docker", "go", "k8s", "postgresql", "python", "rest apis"},
		ai.FieldTotalExperienceYears: 7.0,
		ai.FieldEducation:            "master",
		ai.FieldCertifications:       []string{"AWS Certified Solutions Architect"},
		ai.FieldWorkHistory: []map[string]any{
			{"title": "Senior Engineer, Acme", "years": 5.0},
			{"title": "Software Engineer, Globex", "years": 3.0},
		},
	}
	if diff := cmp.Diff(want, record); diff != "" {
		t.Fatalf("unexpected record (-want +got):\n%s", diff)
	}
}

func TestExtractJob(t *testing.T) {
	record := newTestExtractor().Extract(context.Background(), jobText, ai.JobSchema)

	want := ai.Record{
		ai.FieldTitle:              "Senior Backend Engineer",
		ai.FieldCompany:            "Globex",
		ai.FieldRequiredSkills:     []string{"docker", "go", "kubernetes", "postgresql", "python"},
		ai.FieldPreferredSkills:    []string{"aws", "kafka", "terraform"},
		ai.FieldMinExperienceYears: 5.0,
		ai.FieldSeniority:          "senior",
		ai.FieldResponsibilities:   []string{"Design and build APIs in Go", "Operate services on Kubernetes"},
	}
	if diff := cmp.Diff(want, record); diff != "" {
		t.Fatalf("unexpected record (-want +got):\n%s", diff)
	}
}

func TestTotalYearsFromDateRanges(t *testing.T) {
	text := "Engineer, Initech 2010 - 2014\nLead, Hooli 2013 - 2016\nConsultant 2018 - 2020"
	record := newTestExtractor().Extract(context.Background(), text, ai.Schema{
		Fields: []ai.Field{{Name: ai.FieldTotalExperienceYears}},
	})

	// 2010-2016 merged plus 2018-2020.
	if got := record[ai.FieldTotalExperienceYears]; got != 8.0 {
		t.Fatalf("expected 8 years, got %v", got)
	}
}

func TestExtractOnlyRequestedFields(t *testing.T) {
	record := newTestExtractor().Extract(context.Background(), resumeText, ai.Schema{
		Fields: []ai.Field{{Name: ai.FieldEmail}, {Name: "unknown"}},
	})
	if diff := cmp.Diff(ai.Record{ai.FieldEmail: "jane.doe@example.com"}, record); diff != "" {
		t.Fatalf("unexpected record (-want +got):\n%s", diff)
	}
}

func TestExtractEmptyText(t *testing.T) {
	e := newTestExtractor()
	for _, schema := range []ai.Schema{ai.ResumeSchema, ai.JobSchema} {
		if record := e.Extract(context.Background(), "   \n", schema); len(record) != 0 {
			t.Fatalf("expected empty record for %s, got %v", schema.Name, record)
		}
	}
}

func TestScanPrefersLongestPhrase(t *testing.T) {
	e := New(nil, []string{"Event Sourcing"})

	tests := []struct {
		line   string
		expect []string
	}{
		{line: "Built ML pipelines with Spring Boot and Node.js.", expect: []string{"ml", "spring boot", "node.js"}},
		{line: "We go to market fast", expect: nil},
		{line: "C++ / C# / R", expect: []string{"c++", "c#", "r"}},
		{line: "Event sourcing, CI/CD", expect: []string{"event sourcing", "ci cd"}},
	}

	for _, tt := range tests {
		if diff := cmp.Diff(tt.expect, e.scan(tt.line)); diff != "" {
			t.Fatalf("%q (-want +got):\n%s", tt.line, diff)
		}
	}
}

func TestConfiguredSynonymsAreRecognized(t *testing.T) {
	line := "Shipped GQL gateways"

	if got := New(nil, nil).scan(line); len(got) != 0 {
		t.Fatalf("expected unknown token to be ignored, got %v", got)
	}

	e := New(normalize.New(map[string]string{"gql": "graphql"}), nil)
	if diff := cmp.Diff([]string{"gql"}, e.scan(line)); diff != "" {
		t.Fatalf("unexpected skills (-want +got):\n%s", diff)
	}
}
