package gemini

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spigell/resume-matcher/internal/ai"
)

type stubGenerator struct {
	response    string
	err         error
	lastSystem  string
	lastMessage string
	calls       int
}

func (s *stubGenerator) GenerateContent(_ context.Context, system, message string) (string, error) {
	s.calls++
	s.lastSystem = system
	s.lastMessage = message
	if s.err != nil {
		return "", s.err
	}
	return s.response, nil
}

type stubExtractor struct {
	record ai.Record
}

func (s stubExtractor) Extract(context.Context, string, ai.Schema) ai.Record {
	return s.record
}

func TestExtractorMergesWithFallback(t *testing.T) {
	stub := &stubGenerator{response: "```json\n" + `{
		"title": "Backend Engineer",
		"required_skills": ["Go", "go", " Kafka ", 7],
		"min_experience_years": "4",
		"seniority": null,
		"salary": "ignored"
	}` + "\n```"}
	fallback := stubExtractor{record: ai.Record{
		ai.FieldTitle:     "Engineer",
		ai.FieldCompany:   "Globex",
		ai.FieldSeniority: "senior",
	}}

	e := NewExtractor(stub, fallback, zap.NewNop(), 0)
	got := e.Extract(context.Background(), "job posting text", ai.JobSchema)

	want := ai.Record{
		ai.FieldTitle:              "Backend Engineer",
		ai.FieldCompany:            "Globex",
		ai.FieldRequiredSkills:     []string{"Go", "Kafka", "7"},
		ai.FieldMinExperienceYears: 4.0,
		ai.FieldSeniority:          "senior",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("unexpected record (-want +got):\n%s", diff)
	}

	if stub.lastMessage != "job posting text" {
		t.Fatalf("expected document text as message, got %q", stub.lastMessage)
	}
	for _, name := range ai.JobSchema.Names() {
		if !strings.Contains(stub.lastSystem, `"`+name+`"`) {
			t.Fatalf("system instruction does not mention %q:\n%s", name, stub.lastSystem)
		}
	}
	if strings.Contains(stub.lastSystem, "{{") {
		t.Fatalf("system instruction has unrendered placeholders:\n%s", stub.lastSystem)
	}
}

func TestExtractorFallsBackOnFailure(t *testing.T) {
	fallback := stubExtractor{record: ai.Record{ai.FieldName: "Jane"}}

	tests := []struct {
		name    string
		stub    *stubGenerator
		message string
	}{
		{name: "generator error", stub: &stubGenerator{err: errors.New("quota")}, message: "gemini extraction failed, using heuristic fields"},
		{name: "not json", stub: &stubGenerator{response: "I cannot help with that"}, message: "gemini response is not usable, using heuristic fields"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			core, logs := observer.New(zapcore.WarnLevel)
			e := NewExtractor(tt.stub, fallback, zap.New(core), 0)

			got := e.Extract(context.Background(), "resume", ai.ResumeSchema)
			if diff := cmp.Diff(fallback.record, got); diff != "" {
				t.Fatalf("expected fallback record (-want +got):\n%s", diff)
			}
			if logs.FilterMessage(tt.message).Len() != 1 {
				t.Fatalf("expected warning %q, got %v", tt.message, logs.All())
			}
		})
	}
}

func TestExtractorSkipsBlankText(t *testing.T) {
	stub := &stubGenerator{response: `{"name": "x"}`}
	e := NewExtractor(stub, nil, nil, 0)

	if got := e.Extract(context.Background(), " \n ", ai.ResumeSchema); len(got) != 0 {
		t.Fatalf("expected empty record, got %v", got)
	}
	if stub.calls != 0 {
		t.Fatalf("expected no model call for blank text")
	}
}

func TestParseRecordCoercesKinds(t *testing.T) {
	raw := `Sure! Here it is: {"name": " Jane ", "total_experience_years": -2, "skills": "go, sql",
		"work_history": [{"title": "Lead", "years": "3.5"}, {"years": 2}, "junk", {"title": "Dev"}],
		"certifications": []}`

	got, err := parseRecord(raw, ai.ResumeSchema)
	if err != nil {
		t.Fatalf("parseRecord: %v", err)
	}

	want := ai.Record{
		ai.FieldName:   "Jane",
		ai.FieldSkills: []string{"go", "sql"},
		ai.FieldWorkHistory: []map[string]any{
			{"title": "Lead", "years": 3.5},
			{"title": "Dev"},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("unexpected record (-want +got):\n%s", diff)
	}
}

func TestExtractJSON(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		input  string
		expect string
	}{
		{name: "bare object", input: ` {"a":1} `, expect: `{"a":1}`},
		{name: "fenced", input: "```json\n{\"a\":1}\n```", expect: `{"a":1}`},
		{name: "surrounding prose", input: "Result:\n{\"a\":{\"b\":2}}\nDone.", expect: `{"a":{"b":2}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := extractJSON(tt.input); got != tt.expect {
				t.Fatalf("expected %q, got %q", tt.expect, got)
			}
		})
	}
}
