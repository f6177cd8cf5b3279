package normalize

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/spigell/resume-matcher/internal/profile"
)

var (
	durationRe = regexp.MustCompile(`(-?\d+(?:[.,]\d+)?)\s*\+?\s*(years?|yrs?|y|months?|mos?|mo)?\b`)
	nonWordRe  = regexp.MustCompile(`[^\p{L}\p{N}+#]+`)
)

// Years parses a duration such as "5 years", "5+ yrs", "18 months" or "3.5".
// Months are converted to fractional years. The boolean is false when no number is present.
func Years(raw string) (float64, bool) {
	m := durationRe.FindStringSubmatch(strings.ToLower(raw))
	if m == nil {
		return 0, false
	}

	value, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", "."), 64)
	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, false
	}

	if strings.HasPrefix(m[2], "mo") {
		value /= 12
	}
	return value, true
}

// seniorityKeywords is checked from the highest level down so that
// "Senior Engineering Manager" resolves to the more senior match.
var seniorityKeywords = []struct {
	level    profile.Seniority
	keywords []string
}{
	{profile.Executive, []string{"chief", "cto", "ceo", "cio", "vp", "vice president", "director", "executive", "head of"}},
	{profile.Lead, []string{"lead", "principal", "staff", "architect", "manager"}},
	{profile.Senior, []string{"senior", "sr", "snr", "expert"}},
	{profile.Mid, []string{"mid", "middle", "mid level", "intermediate", "regular"}},
	{profile.Entry, []string{"junior", "jr", "entry", "entry level", "intern", "internship", "graduate", "trainee", "apprentice"}},
}

// Seniority maps a free-text token or title ("Sr. Backend Engineer", "entry level")
// to a seniority level. The boolean is false when no keyword is recognized.
func Seniority(raw string) (profile.Seniority, bool) {
	text := " " + words(raw) + " "
	for _, group := range seniorityKeywords {
		for _, keyword := range group.keywords {
			if strings.Contains(text, " "+keyword+" ") {
				return group.level, true
			}
		}
	}
	return profile.Entry, false
}

// SeniorityFromYears derives a level from experience alone. It is the fallback used
// when a job description names no level.
func SeniorityFromYears(years float64) profile.Seniority {
	switch {
	case years < 2:
		return profile.Entry
	case years < 5:
		return profile.Mid
	case years < 8:
		return profile.Senior
	case years < 12:
		return profile.Lead
	default:
		return profile.Executive
	}
}

var educationKeywords = []struct {
	level    profile.EducationLevel
	keywords []string
}{
	{profile.Doctorate, []string{"phd", "ph d", "doctorate", "doctor of", "dphil", "edd"}},
	{profile.Master, []string{"master", "masters", "msc", "m sc", "m s", "mba", "meng", "m eng"}},
	{profile.Bachelor, []string{"bachelor", "bachelors", "bsc", "b sc", "bs", "b s", "b a", "beng", "b eng", "btech", "b tech"}},
	{profile.Associate, []string{"associate degree", "associate of", "aas", "a a s"}},
}

// Education returns the highest degree mentioned in raw.
func Education(raw string) profile.EducationLevel {
	text := " " + words(raw) + " "
	for _, group := range educationKeywords {
		for _, keyword := range group.keywords {
			if strings.Contains(text, " "+keyword+" ") {
				return group.level
			}
		}
	}
	return profile.NoEducation
}

func words(raw string) string {
	text := nonWordRe.ReplaceAllString(strings.ToLower(raw), " ")
	return strings.Join(strings.Fields(text), " ")
}
