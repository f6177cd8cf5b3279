package profile

import (
	"fmt"
	"strings"
)

// Seniority is the level a job is advertised at.
type Seniority int

const (
	Entry Seniority = iota
	Mid
	Senior
	Lead
	Executive
)

var seniorityNames = []string{"entry", "mid", "senior", "lead", "executive"}

// Seniorities lists every level in ascending order.
func Seniorities() []Seniority {
	return []Seniority{Entry, Mid, Senior, Lead, Executive}
}

func (s Seniority) String() string {
	if s < Entry || s > Executive {
		return fmt.Sprintf("seniority(%d)", int(s))
	}
	return seniorityNames[s]
}

// ParseSeniority accepts the canonical level names only. Free text goes through
// the normalize package instead.
func ParseSeniority(name string) (Seniority, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, s := range Seniorities() {
		if s.String() == name {
			return s, nil
		}
	}
	return Entry, fmt.Errorf("unknown seniority %q", name)
}

func (s Seniority) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Seniority) UnmarshalText(text []byte) error {
	parsed, err := ParseSeniority(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// EducationLevel is the highest degree found on a resume.
type EducationLevel int

const (
	NoEducation EducationLevel = iota
	Associate
	Bachelor
	Master
	Doctorate
)

var educationNames = []string{"none", "associate", "bachelor", "master", "doctorate"}

func (e EducationLevel) String() string {
	if e < NoEducation || e > Doctorate {
		return fmt.Sprintf("education(%d)", int(e))
	}
	return educationNames[e]
}

func (e EducationLevel) MarshalText() ([]byte, error) {
	return []byte(e.String()), nil
}

func (e *EducationLevel) UnmarshalText(text []byte) error {
	name := strings.ToLower(strings.TrimSpace(string(text)))
	for i, n := range educationNames {
		if n == name {
			*e = EducationLevel(i)
			return nil
		}
	}
	return fmt.Errorf("unknown education level %q", name)
}
