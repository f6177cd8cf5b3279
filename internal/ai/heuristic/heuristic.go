// Package heuristic fills extraction schemas with regular expressions and a skill
// vocabulary. It is the fallback whenever no language model is configured or a model
// call fails.
package heuristic

import (
	"context"
	"math"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/spigell/resume-matcher/internal/ai"
	"github.com/spigell/resume-matcher/internal/normalize"
	"github.com/spigell/resume-matcher/internal/profile"
)

// ambiguousSynonyms are synonym keys too short to spot reliably in prose.
var ambiguousSynonyms = []string{"ts", "py", "tf"}

type Extractor struct {
	vocab     map[string]struct{}
	sensitive map[string]struct{}
	maxWords  int
	now       func() time.Time
}

// New builds an extractor over DefaultVocabulary, the synonym keys of n and extra.
// A nil n uses the default synonym table.
func New(n *normalize.Normalizer, extra []string) *Extractor {
	if n == nil {
		n = normalize.New(nil)
	}
	e := &Extractor{
		vocab:     make(map[string]struct{}),
		sensitive: make(map[string]struct{}),
		now:       time.Now,
	}

	terms := slices.Concat(DefaultVocabulary, extra)
	for key := range n.Synonyms() {
		if !slices.Contains(ambiguousSynonyms, key) {
			terms = append(terms, key)
		}
	}
	for _, term := range terms {
		words := strings.Fields(strings.ToLower(term))
		if len(words) == 0 {
			continue
		}
		e.vocab[strings.Join(words, " ")] = struct{}{}
		e.maxWords = max(e.maxWords, len(words))
	}
	for _, term := range caseSensitive {
		e.sensitive[term] = struct{}{}
	}
	return e
}

// Extract implements ai.StructuredExtractor. Fields it cannot find are left out.
func (e *Extractor) Extract(_ context.Context, text string, schema ai.Schema) ai.Record {
	d := newDocument(text)
	record := ai.Record{}
	set := func(key string, value any, ok bool) {
		if ok {
			record[key] = value
		}
	}

	for _, field := range schema.Names() {
		switch field {
		case ai.FieldName:
			v, ok := d.name()
			set(field, v, ok)
		case ai.FieldEmail:
			v := emailRe.FindString(d.text)
			set(field, v, v != "")
		case ai.FieldPhone:
			v, ok := d.phone()
			set(field, v, ok)
		case ai.FieldSkills:
			required, preferred := e.skillsByMode(d)
			all := sortedSet(slices.Concat(required, preferred))
			set(field, all, len(all) > 0)
		case ai.FieldRequiredSkills:
			required, _ := e.skillsByMode(d)
			set(field, required, len(required) > 0)
		case ai.FieldPreferredSkills:
			_, preferred := e.skillsByMode(d)
			set(field, preferred, len(preferred) > 0)
		case ai.FieldTotalExperienceYears:
			v, ok := e.totalYears(d)
			set(field, v, ok)
		case ai.FieldWorkHistory:
			roles := e.roles(d)
			set(field, roles, len(roles) > 0)
		case ai.FieldEducation:
			level := normalize.Education(d.text)
			set(field, level.String(), level != profile.NoEducation)
		case ai.FieldCertifications:
			certs := d.certifications()
			set(field, certs, len(certs) > 0)
		case ai.FieldTitle:
			title, _ := d.titleAndCompany()
			set(field, title, title != "")
		case ai.FieldCompany:
			_, company := d.titleAndCompany()
			set(field, company, company != "")
		case ai.FieldMinExperienceYears:
			v, ok := d.minYears()
			set(field, v, ok)
		case ai.FieldSeniority:
			v, ok := d.seniority()
			set(field, v, ok)
		case ai.FieldResponsibilities:
			items := d.responsibilities()
			set(field, items, len(items) > 0)
		}
	}
	return record
}

var (
	emailRe         = regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`)
	phoneRe         = regexp.MustCompile(`\+?\d[\d\s().-]{7,}\d`)
	nameRe          = regexp.MustCompile(`^\p{Lu}[\p{L}'.-]*(?:\s+\p{Lu}[\p{L}'.-]*){1,3}$`)
	tokenRe         = regexp.MustCompile(`[\p{L}\p{N}+#.-]+`)
	bulletRe        = regexp.MustCompile(`^\s*(?:[-*•·▪]|\d+[.)])\s+`)
	experienceRe    = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*\+?\s*(?:years?|yrs?)\s+(?:of\s+)?(?:[\w-]+\s+){0,2}?experience`)
	yearsRe         = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*\+?\s*(?:years?|yrs?)\b`)
	dateRangeRe     = regexp.MustCompile(`(?i)\b((?:19|20)\d{2})\s*(?:-|–|—|to|until)\s*(?:[a-z]{3,9}\.?\s+)?((?:19|20)\d{2}|present|current|now|today)\b`)
	labelRe         = regexp.MustCompile(`(?i)^\s*(?:job\s+)?(title|position|role|company|employer|organi[sz]ation)\s*:\s*(.+)$`)
	preferredRe     = regexp.MustCompile(`(?i)\b(preferred|nice[\s-]to[\s-]have|bonus|desirable|a plus|optional|good to have)\b`)
	requiredRe      = regexp.MustCompile(`(?i)\b(required|requirements|must[\s-]have|qualifications|what you need|skills)\b`)
	responsibleRe   = regexp.MustCompile(`(?i)\b(responsibilities|what you.ll do|duties|your role|the role)\b`)
	certificationRe = regexp.MustCompile(`(?i)\b(certified|certification|certificate)\b`)
)

type document struct {
	text  string
	lines []string
}

func newDocument(text string) *document {
	d := &document{text: text}
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			d.lines = append(d.lines, line)
		}
	}
	return d
}

// isHeading spots section titles: markdown headings, lines ending with a colon and
// short unbulleted lines naming a known section.
func isHeading(line string) bool {
	if strings.HasPrefix(line, "#") || strings.HasSuffix(line, ":") {
		return true
	}
	if bulletRe.MatchString(line) || len(strings.Fields(line)) > 4 {
		return false
	}
	return preferredRe.MatchString(line) || requiredRe.MatchString(line) || responsibleRe.MatchString(line)
}

func stripBullet(line string) string {
	return strings.TrimSpace(bulletRe.ReplaceAllString(strings.TrimLeft(line, "# "), ""))
}

func (d *document) name() (string, bool) {
	if len(d.lines) == 0 {
		return "", false
	}
	first := strings.TrimSpace(d.lines[0])
	if !nameRe.MatchString(first) {
		return "", false
	}
	lower := strings.ToLower(first)
	if strings.Contains(lower, "resume") || strings.Contains(lower, "curriculum") {
		return "", false
	}
	return first, true
}

func (d *document) phone() (string, bool) {
	for _, m := range phoneRe.FindAllString(d.text, -1) {
		digits := 0
		for _, r := range m {
			if r >= '0' && r <= '9' {
				digits++
			}
		}
		if digits >= 9 && !dateRangeRe.MatchString(m) {
			return strings.TrimSpace(m), true
		}
	}
	return "", false
}

// skillsByMode scans line by line. Headings switch between required and preferred
// sections; a non-heading line mentioning "a plus" or similar is preferred on its own.
func (e *Extractor) skillsByMode(d *document) (required, preferred []string) {
	inPreferred := false
	for _, line := range d.lines {
		lineIsPreferred := inPreferred
		if isHeading(line) {
			switch {
			case preferredRe.MatchString(line):
				inPreferred = true
			case requiredRe.MatchString(line), responsibleRe.MatchString(line):
				inPreferred = false
			}
			lineIsPreferred = inPreferred
		} else if preferredRe.MatchString(line) {
			lineIsPreferred = true
		}

		found := e.scan(line)
		if lineIsPreferred {
			preferred = append(preferred, found...)
		} else {
			required = append(required, found...)
		}
	}
	return sortedSet(required), sortedSet(preferred)
}

// scan returns vocabulary skills in line, preferring the longest phrase at each position.
func (e *Extractor) scan(line string) []string {
	var tokens, lower []string
	for _, tok := range tokenRe.FindAllString(line, -1) {
		tok = strings.TrimRight(tok, ".-")
		tok = strings.TrimLeft(tok, "-")
		if tok == "" {
			continue
		}
		tokens = append(tokens, tok)
		lower = append(lower, strings.ToLower(tok))
	}

	var out []string
	for i := 0; i < len(tokens); {
		n := min(e.maxWords, len(tokens)-i)
		for ; n >= 1; n-- {
			if _, ok := e.vocab[strings.Join(lower[i:i+n], " ")]; ok {
				out = append(out, strings.Join(lower[i:i+n], " "))
				break
			}
			if n == 1 {
				if _, ok := e.sensitive[tokens[i]]; ok {
					out = append(out, lower[i])
					break
				}
			}
		}
		if n < 1 {
			n = 1
		}
		i += n
	}
	return out
}

type span struct {
	title      string
	start, end float64
}

func (e *Extractor) spans(d *document) []span {
	year := float64(e.now().Year())
	var out []span
	for i, line := range d.lines {
		for _, m := range dateRangeRe.FindAllStringSubmatchIndex(line, -1) {
			start, _ := strconv.ParseFloat(line[m[2]:m[3]], 64)
			end, err := strconv.ParseFloat(line[m[4]:m[5]], 64)
			if err != nil {
				end = year
			}
			if end < start {
				continue
			}

			title := strings.Trim(line[:m[0]], " \t-–—|,:()")
			title = stripBullet(title)
			if title == "" && i > 0 {
				title = stripBullet(d.lines[i-1])
			}
			out = append(out, span{title: title, start: start, end: end})
		}
	}
	return out
}

func (e *Extractor) roles(d *document) []map[string]any {
	var out []map[string]any
	for _, s := range e.spans(d) {
		if s.title == "" || dateRangeRe.MatchString(s.title) {
			continue
		}
		out = append(out, map[string]any{"title": s.title, "years": s.end - s.start})
	}
	return out
}

// totalYears prefers an explicit statement ("7 years of experience") and otherwise
// sums the union of the dated positions.
func (e *Extractor) totalYears(d *document) (float64, bool) {
	best, found := 0.0, false
	for _, m := range experienceRe.FindAllStringSubmatch(d.text, -1) {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil && v > best {
			best, found = v, true
		}
	}
	if found {
		return best, true
	}

	spans := e.spans(d)
	if len(spans) == 0 {
		return 0, false
	}
	slices.SortFunc(spans, func(a, b span) int {
		switch {
		case a.start < b.start:
			return -1
		case a.start > b.start:
			return 1
		default:
			return 0
		}
	})

	total, curStart, curEnd := 0.0, spans[0].start, spans[0].end
	for _, s := range spans[1:] {
		if s.start > curEnd {
			total += curEnd - curStart
			curStart, curEnd = s.start, s.end
			continue
		}
		curEnd = math.Max(curEnd, s.end)
	}
	total += curEnd - curStart
	return total, true
}

func (d *document) certifications() []string {
	var out []string
	for _, line := range d.lines {
		if !certificationRe.MatchString(line) || strings.HasSuffix(line, ":") || len(strings.Fields(stripBullet(line))) < 2 {
			continue
		}
		if item := stripBullet(line); len(item) >= 6 && len(item) <= 160 {
			out = append(out, item)
		}
		if len(out) == 10 {
			break
		}
	}
	return out
}

func (d *document) titleAndCompany() (title, company string) {
	for _, line := range d.lines {
		m := labelRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		switch strings.ToLower(m[1]) {
		case "title", "position", "role":
			if title == "" {
				title = strings.TrimSpace(m[2])
			}
		default:
			if company == "" {
				company = strings.TrimSpace(m[2])
			}
		}
	}

	if title == "" && len(d.lines) > 0 {
		first := stripBullet(d.lines[0])
		if labelRe.MatchString(first) {
			return title, company
		}
		title = first
		if head, tail, ok := strings.Cut(first, " at "); ok {
			title = strings.TrimSpace(head)
			if company == "" {
				company = strings.TrimSpace(tail)
			}
		}
	}
	return title, company
}

// minYears takes the first "N years" on a line that talks about experience, then
// the first anywhere.
func (d *document) minYears() (float64, bool) {
	var fallback []string
	for _, line := range d.lines {
		m := yearsRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		if strings.Contains(strings.ToLower(line), "experience") {
			v, err := strconv.ParseFloat(m[1], 64)
			return v, err == nil
		}
		if fallback == nil {
			fallback = m
		}
	}
	if fallback == nil {
		return 0, false
	}
	v, err := strconv.ParseFloat(fallback[1], 64)
	return v, err == nil
}

func (d *document) seniority() (string, bool) {
	title, _ := d.titleAndCompany()
	if level, ok := normalize.Seniority(title); ok {
		return level.String(), true
	}
	for _, line := range d.lines {
		lower := strings.ToLower(line)
		if !strings.Contains(lower, "level") && !strings.Contains(lower, "seniority") {
			continue
		}
		if level, ok := normalize.Seniority(line); ok {
			return level.String(), true
		}
	}
	if years, ok := d.minYears(); ok {
		return normalize.SeniorityFromYears(years).String(), true
	}
	return "", false
}

func (d *document) responsibilities() []string {
	var out []string
	inSection := false
	for _, line := range d.lines {
		if isHeading(line) {
			inSection = responsibleRe.MatchString(line)
			continue
		}
		if inSection {
			if item := stripBullet(line); item != "" {
				out = append(out, item)
			}
		}
	}
	return out
}

func sortedSet(items []string) []string {
	out := slices.Clone(items)
	slices.Sort(out)
	return slices.Compact(out)
}
