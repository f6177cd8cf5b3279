package normalize

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/spigell/resume-matcher/internal/profile"
)

func TestSkills(t *testing.T) {
	t.Parallel()

	n := New(nil)

	tests := []struct {
		name   string
		input  []string
		expect []string
	}{
		{
			name:   "lowercases trims and collapses whitespace",
			input:  []string{"  Machine   Learning ", "SQL"},
			expect: []string{"machine learning", "sql"},
		},
		{
			name:   "maps synonyms and deduplicates",
			input:  []string{"JS", "javascript", "ReactJS", "react", "Golang"},
			expect: []string{"go", "javascript", "react"},
		},
		{
			name:   "drops empty and punctuation only tokens",
			input:  []string{"", "   ", "---", "•", "(python)", "node.js."},
			expect: []string{"node.js", "python"},
		},
		{
			name:   "keeps symbols that are part of a skill",
			input:  []string{"C++", "C#", ".NET"},
			expect: []string{".net", "c#", "c++"},
		},
		{
			name:   "empty input",
			input:  nil,
			expect: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if diff := cmp.Diff(tt.expect, n.Skills(tt.input)); diff != "" {
				t.Fatalf("unexpected skills (-want +got):\n%s", diff)
			}
		})
	}
}

func TestSkillsIsPure(t *testing.T) {
	n := New(nil)
	input := []string{"Python", "js", "SQL", "python"}

	first := n.Skills(input)
	second := n.Skills([]string{"python", "SQL", "js", "Python"})

	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("input order changed output (-first +second):\n%s", diff)
	}
}

func TestOverridesWinOverDefaults(t *testing.T) {
	n := New(map[string]string{" JS ": "ECMAScript 2020", "Pg": "PostgreSQL", "": "ignored"})

	if got, _ := n.Skill("js"); got != "ecmascript 2020" {
		t.Fatalf("expected override to win, got %q", got)
	}
	if got, _ := n.Skill("PG"); got != "postgresql" {
		t.Fatalf("expected new synonym, got %q", got)
	}
	if got, _ := n.Skill("golang"); got != "go" {
		t.Fatalf("expected default synonym to stay, got %q", got)
	}
	if _, ok := n.Synonyms()[""]; ok {
		t.Fatalf("empty override key must be ignored")
	}
}

func TestYears(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input  string
		expect float64
		ok     bool
	}{
		{input: "5 years", expect: 5, ok: true},
		{input: "5+ yrs of experience", expect: 5, ok: true},
		{input: "18 months", expect: 1.5, ok: true},
		{input: "3.5", expect: 3.5, ok: true},
		{input: "2,5 years", expect: 2.5, ok: true},
		{input: "-1", expect: -1, ok: true},
		{input: "several years", expect: 0, ok: false},
		{input: "", expect: 0, ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()
			got, ok := Years(tt.input)
			if ok != tt.ok {
				t.Fatalf("expected ok=%v, got %v", tt.ok, ok)
			}
			if math.Abs(got-tt.expect) > 1e-9 {
				t.Fatalf("expected %v, got %v", tt.expect, got)
			}
		})
	}
}

func TestSeniority(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input  string
		expect profile.Seniority
		ok     bool
	}{
		{input: "Sr. Backend Engineer", expect: profile.Senior, ok: true},
		{input: "Entry level position for recent graduates", expect: profile.Entry, ok: true},
		{input: "Senior Engineering Manager", expect: profile.Lead, ok: true},
		{input: "Head of Data", expect: profile.Executive, ok: true},
		{input: "Mid-level Python developer", expect: profile.Mid, ok: true},
		{input: "Python Developer", expect: profile.Entry, ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()
			got, ok := Seniority(tt.input)
			if got != tt.expect || ok != tt.ok {
				t.Fatalf("expected (%v, %v), got (%v, %v)", tt.expect, tt.ok, got, ok)
			}
		})
	}
}

func TestSeniorityFromYears(t *testing.T) {
	if got := SeniorityFromYears(1); got != profile.Entry {
		t.Fatalf("expected entry, got %v", got)
	}
	if got := SeniorityFromYears(8); got != profile.Lead {
		t.Fatalf("expected lead, got %v", got)
	}
	if got := SeniorityFromYears(20); got != profile.Executive {
		t.Fatalf("expected executive, got %v", got)
	}
}

func TestEducation(t *testing.T) {
	t.Parallel()

	tests := map[string]profile.EducationLevel{
		"B.Sc. in Computer Science, M.Sc. in Statistics": profile.Master,
		"PhD, University of Somewhere":                   profile.Doctorate,
		"Bachelor of Arts":                               profile.Bachelor,
		"Associate degree in IT":                         profile.Associate,
		"Self-taught, proficient in MS Office":           profile.NoEducation,
	}

	for input, expect := range tests {
		if got := Education(input); got != expect {
			t.Fatalf("%q: expected %v, got %v", input, expect, got)
		}
	}
}
