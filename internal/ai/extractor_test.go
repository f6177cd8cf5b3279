package ai

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestDecodeResumeLeniently(t *testing.T) {
	record := Record{
		FieldName:                 "Jane Doe",
		FieldSkills:               "Go, SQL",
		FieldTotalExperienceYears: "6+ years",
		FieldCertifications:       []any{"CKA"},
		FieldWorkHistory: []any{
			map[string]any{"title": "Engineer", "years": "18 months"},
			map[string]any{"title": "Lead", "years": 3},
		},
		"unexpected": true,
	}

	var got ResumeFields
	if err := Decode(record, &got); err != nil {
		t.Fatalf("Decode: %v", err)
	}

	want := ResumeFields{
		Name:                 "Jane Doe",
		Skills:               []string{"Go", " SQL"},
		TotalExperienceYears: 6,
		Certifications:       []string{"CKA"},
		WorkHistory:          []Role{{Title: "Engineer", Years: 1.5}, {Title: "Lead", Years: 3}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("unexpected fields (-want +got):\n%s", diff)
	}
}

func TestDecodeKeepsGoodFieldsOnError(t *testing.T) {
	record := Record{
		FieldTitle:              "Data Engineer",
		FieldMinExperienceYears: map[string]any{"value": 3},
	}

	var got JobFields
	if err := Decode(record, &got); err == nil {
		t.Fatalf("expected decode error for the malformed field")
	}
	if got.Title != "Data Engineer" {
		t.Fatalf("expected title to survive, got %q", got.Title)
	}
}

func TestRecordMerge(t *testing.T) {
	primary := Record{FieldTitle: "Engineer", FieldCompany: "  ", FieldRequiredSkills: []any{}}
	fallback := Record{FieldTitle: "ignored", FieldCompany: "Acme", FieldRequiredSkills: []string{"go"}, FieldSeniority: "mid"}

	got := primary.Merge(fallback)
	want := Record{FieldTitle: "Engineer", FieldCompany: "Acme", FieldRequiredSkills: []string{"go"}, FieldSeniority: "mid"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("unexpected merge (-want +got):\n%s", diff)
	}
	if primary[FieldCompany] != "  " {
		t.Fatalf("merge modified its receiver")
	}

	var empty Record
	if got := empty.Merge(fallback); len(got) != len(fallback) {
		t.Fatalf("expected nil record to take every fallback field, got %v", got)
	}
}

func TestSchemaNames(t *testing.T) {
	if diff := cmp.Diff([]string{"title", "company", "required_skills", "preferred_skills", "min_experience_years", "seniority", "responsibilities"}, JobSchema.Names()); diff != "" {
		t.Fatalf("unexpected names (-want +got):\n%s", diff)
	}
}
