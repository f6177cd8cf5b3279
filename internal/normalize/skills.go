// Package normalize canonicalizes the raw tokens produced by extraction so that
// resumes and job descriptions can be compared.
package normalize

import (
	"maps"
	"regexp"
	"strings"
	"unicode"

	"github.com/spigell/resume-matcher/internal/profile"
)

// DefaultSynonyms maps common variants to the canonical skill name.
// Keys and values are already in normalized form.
var DefaultSynonyms = map[string]string{
	"js":                    "javascript",
	"ecmascript":            "javascript",
	"ts":                    "typescript",
	"golang":                "go",
	"go lang":               "go",
	"k8s":                   "kubernetes",
	"react.js":              "react",
	"reactjs":               "react",
	"vue.js":                "vue",
	"vuejs":                 "vue",
	"node":                  "node.js",
	"nodejs":                "node.js",
	"postgres":              "postgresql",
	"psql":                  "postgresql",
	"mongo":                 "mongodb",
	"py":                    "python",
	"python3":               "python",
	"sklearn":               "scikit-learn",
	"ml":                    "machine learning",
	"c plus plus":           "c++",
	"cpp":                   "c++",
	"c sharp":               "c#",
	"csharp":                "c#",
	"amazon web services":   "aws",
	"google cloud":          "gcp",
	"google cloud platform": "gcp",
	"restful":               "rest",
	"rest api":              "rest",
	"rest apis":             "rest",
	"restful apis":          "rest",
	"cicd":                  "ci/cd",
	"ci cd":                 "ci/cd",
	"tf":                    "terraform",
}

var whitespace = regexp.MustCompile(`\s+`)

const edgeCutset = ",;:()[]{}\"'*`•|\\–—-"

// Normalizer turns raw skill tokens into canonical form. It is safe for concurrent use.
type Normalizer struct {
	synonyms map[string]string
}

// New returns a Normalizer using DefaultSynonyms extended by overrides.
// Override keys and values are normalized before use; an override wins over a default.
func New(overrides map[string]string) *Normalizer {
	synonyms := maps.Clone(DefaultSynonyms)
	for from, to := range overrides {
		from, to = clean(from), clean(to)
		if from == "" || to == "" {
			continue
		}
		synonyms[from] = to
	}
	return &Normalizer{synonyms: synonyms}
}

// Skill normalizes a single token. The boolean is false when nothing usable is left,
// e.g. for empty or punctuation-only input.
func (n *Normalizer) Skill(raw string) (string, bool) {
	token := clean(raw)
	if token == "" {
		return "", false
	}
	if canonical, ok := n.synonyms[token]; ok {
		return canonical, true
	}
	return token, true
}

// Skills normalizes every token and returns a sorted set. Unusable tokens are dropped.
func (n *Normalizer) Skills(raw []string) []string {
	out := make([]string, 0, len(raw))
	for _, token := range raw {
		if skill, ok := n.Skill(token); ok {
			out = append(out, skill)
		}
	}
	return profile.Set(out)
}

// Synonyms returns a copy of the table in use.
func (n *Normalizer) Synonyms() map[string]string {
	return maps.Clone(n.synonyms)
}

func clean(raw string) string {
	token := strings.ToLower(raw)
	token = whitespace.ReplaceAllString(strings.TrimSpace(token), " ")
	token = strings.Trim(token, edgeCutset+" ")
	token = strings.TrimRight(token, ". ")
	if !hasAlnum(token) {
		return ""
	}
	return token
}

func hasAlnum(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return true
		}
	}
	return false
}
