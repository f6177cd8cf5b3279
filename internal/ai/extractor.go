// Package ai describes structured field extraction from free text. The concrete
// extractors live in the heuristic and gemini subpackages.
package ai

import (
	"context"
	"maps"
	"reflect"
	"strings"

	"github.com/mitchellh/mapstructure"

	"github.com/spigell/resume-matcher/internal/normalize"
)

// Kind is the value shape an extractor should produce for a field.
type Kind string

const (
	KindString     Kind = "string"
	KindNumber     Kind = "number"
	KindStringList Kind = "string_list"
	KindRoleList   Kind = "role_list"
)

type Field struct {
	Name        string
	Kind        Kind
	Description string
}

// Schema lists the fields wanted from one kind of document.
type Schema struct {
	Name   string
	Fields []Field
}

// Names returns the field names in schema order.
func (s Schema) Names() []string {
	out := make([]string, 0, len(s.Fields))
	for _, f := range s.Fields {
		out = append(out, f.Name)
	}
	return out
}

// Record holds whatever fields an extractor managed to fill. Missing keys are normal.
type Record map[string]any

// Merge returns a copy of r with the keys of fallback that r lacks or left empty.
func (r Record) Merge(fallback Record) Record {
	out := maps.Clone(r)
	if out == nil {
		out = Record{}
	}
	for k, v := range fallback {
		if isEmpty(out[k]) {
			out[k] = v
		}
	}
	return out
}

// StructuredExtractor fills a schema from text. It never fails: ambiguous or
// unreadable input yields a partial or empty record.
type StructuredExtractor interface {
	Extract(ctx context.Context, text string, schema Schema) Record
}

const (
	FieldName                 = "name"
	FieldEmail                = "email"
	FieldPhone                = "phone"
	FieldSkills               = "skills"
	FieldTotalExperienceYears = "total_experience_years"
	FieldEducation            = "education"
	FieldCertifications       = "certifications"
	FieldWorkHistory          = "work_history"

	FieldTitle              = "title"
	FieldCompany            = "company"
	FieldRequiredSkills     = "required_skills"
	FieldPreferredSkills    = "preferred_skills"
	FieldMinExperienceYears = "min_experience_years"
	FieldSeniority          = "seniority"
	FieldResponsibilities   = "responsibilities"
)

var ResumeSchema = Schema{
	Name: "resume",
	Fields: []Field{
		{Name: FieldName, Kind: KindString, Description: "full name of the candidate"},
		{Name: FieldEmail, Kind: KindString, Description: "contact email"},
		{Name: FieldPhone, Kind: KindString, Description: "contact phone number"},
		{Name: FieldSkills, Kind: KindStringList, Description: "technical skills, tools, languages and frameworks"},
		{Name: FieldTotalExperienceYears, Kind: KindNumber, Description: "total years of professional experience"},
		{Name: FieldEducation, Kind: KindString, Description: "highest degree: none, associate, bachelor, master or doctorate"},
		{Name: FieldCertifications, Kind: KindStringList, Description: "certifications and licenses"},
		{Name: FieldWorkHistory, Kind: KindRoleList, Description: "positions held, each with title and years"},
	},
}

var JobSchema = Schema{
	Name: "job",
	Fields: []Field{
		{Name: FieldTitle, Kind: KindString, Description: "job title"},
		{Name: FieldCompany, Kind: KindString, Description: "hiring company"},
		{Name: FieldRequiredSkills, Kind: KindStringList, Description: "skills the job requires"},
		{Name: FieldPreferredSkills, Kind: KindStringList, Description: "skills that are nice to have"},
		{Name: FieldMinExperienceYears, Kind: KindNumber, Description: "minimum years of experience"},
		{Name: FieldSeniority, Kind: KindString, Description: "level: entry, mid, senior, lead or executive"},
		{Name: FieldResponsibilities, Kind: KindStringList, Description: "main responsibilities"},
	},
}

// Role is one entry of a candidate's work history.
type Role struct {
	Title string  `mapstructure:"title"`
	Years float64 `mapstructure:"years"`
}

type ResumeFields struct {
	Name                 string   `mapstructure:"name"`
	Email                string   `mapstructure:"email"`
	Phone                string   `mapstructure:"phone"`
	Skills               []string `mapstructure:"skills"`
	TotalExperienceYears float64  `mapstructure:"total_experience_years"`
	Education            string   `mapstructure:"education"`
	Certifications       []string `mapstructure:"certifications"`
	WorkHistory          []Role   `mapstructure:"work_history"`
}

type JobFields struct {
	Title              string   `mapstructure:"title"`
	Company            string   `mapstructure:"company"`
	RequiredSkills     []string `mapstructure:"required_skills"`
	PreferredSkills    []string `mapstructure:"preferred_skills"`
	MinExperienceYears float64  `mapstructure:"min_experience_years"`
	Seniority          string   `mapstructure:"seniority"`
	Responsibilities   []string `mapstructure:"responsibilities"`
}

// Decode copies a record into out, a pointer to ResumeFields, JobFields or a similar
// struct. Values are converted leniently ("5 years" becomes 5, "go, sql" becomes a
// list). Fields that cannot be converted are left zero and reported in the returned
// error, while every other field is still filled.
func Decode(record Record, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			yearsHook,
			mapstructure.StringToSliceHookFunc(","),
		),
	})
	if err != nil {
		return err
	}
	return dec.Decode(map[string]any(record))
}

func yearsHook(from, to reflect.Type, data any) (any, error) {
	if from.Kind() != reflect.String || to.Kind() != reflect.Float64 {
		return data, nil
	}
	years, ok := normalize.Years(reflect.ValueOf(data).String())
	if !ok {
		return 0.0, nil
	}
	return years, nil
}

func isEmpty(v any) bool {
	switch val := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(val) == ""
	case []string:
		return len(val) == 0
	case []any:
		return len(val) == 0
	case []map[string]any:
		return len(val) == 0
	default:
		return false
	}
}
