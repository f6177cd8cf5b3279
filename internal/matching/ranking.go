package matching

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
)

// rank orders results best first and fills Rank and Recommendation.
//
// Results are sorted by exact score, then split into groups whose scores lie within
// Epsilon of the group's best score. Inside a group the tie-breaks decide. Anchoring
// each group on its best score keeps the order independent of input order.
func (e *Engine) rank(results []Result) {
	slices.SortStableFunc(results, func(a, b Result) int {
		if c := cmp.Compare(b.OverallScore, a.OverallScore); c != 0 {
			return c
		}
		return tieBreak(a, b)
	})

	for start := 0; start < len(results); {
		end := start + 1
		for end < len(results) && results[start].OverallScore-results[end].OverallScore <= e.cfg.Epsilon {
			end++
		}
		slices.SortStableFunc(results[start:end], tieBreak)
		start = end
	}

	for i := range results {
		results[i].Rank = i + 1
		results[i].Recommendation = e.Recommend(results[i])
	}
}

// tieBreak prefers more matched required skills, then title, company and input position.
func tieBreak(a, b Result) int {
	if c := cmp.Compare(len(b.Skills.MatchedRequired), len(a.Skills.MatchedRequired)); c != 0 {
		return c
	}
	if c := strings.Compare(a.Job.Title, b.Job.Title); c != 0 {
		return c
	}
	if c := strings.Compare(a.Job.Company, b.Job.Company); c != 0 {
		return c
	}
	return cmp.Compare(a.index, b.index)
}

// Recommend builds the rationale text for a result. It depends on nothing but r.
func (e *Engine) Recommend(r Result) string {
	switch {
	case e.reaches(r.OverallScore, e.cfg.ExcellentThreshold):
		return "Excellent match"
	case e.reaches(r.OverallScore, e.cfg.GoodThreshold):
		return "Good match"
	case len(r.Skills.MissingRequired) > 0:
		missing := slices.Sorted(slices.Values(r.Skills.MissingRequired))
		if len(missing) > e.cfg.MissingSkillsShown {
			missing = missing[:e.cfg.MissingSkillsShown]
		}
		return "Consider developing skills: " + strings.Join(missing, ", ")
	default:
		return limitedMatch(r.Experience)
	}
}

// reaches compares with the same tolerance the ranking uses, so 0.7999999999999999
// still counts as 0.8.
func (e *Engine) reaches(score, threshold float64) bool {
	return score >= threshold-e.cfg.Epsilon
}

func limitedMatch(a ExperienceAssessment) string {
	switch {
	case !a.MeetsMinimum:
		return fmt.Sprintf("Limited match: %.1f more years of experience needed", -a.YearsGap)
	case a.Alignment == Over:
		return "Limited match: experience is well above the role's seniority"
	case a.Alignment == Under:
		return "Limited match: experience is below the role's seniority"
	default:
		return "Limited match: skills only partially cover the role"
	}
}
