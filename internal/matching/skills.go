package matching

import (
	"github.com/spigell/resume-matcher/internal/profile"
	"github.com/spigell/resume-matcher/internal/similarity"
)

// SoftMatch records the candidate skill that satisfied a job skill by similarity.
type SoftMatch struct {
	CandidateSkill string  `json:"candidate_skill"`
	Similarity     float64 `json:"similarity"`
}

// SkillMatch is the outcome of comparing candidate skills with one job.
// Soft matched job skills are listed in the matched slices too.
type SkillMatch struct {
	MatchedRequired  []string             `json:"matched_required"`
	MatchedPreferred []string             `json:"matched_preferred"`
	MissingRequired  []string             `json:"missing_required"`
	SoftMatches      map[string]SoftMatch `json:"soft_matches,omitempty"`
	SimilarityScore  float64              `json:"similarity_score"`
	Degenerate       bool                 `json:"degenerate"`
}

type skillGroup struct {
	matched []string
	missing []string
	weight  float64
}

// matchSkills expects canonical sorted sets. A skill listed as both required and
// preferred counts as required only.
func (e *Engine) matchSkills(candidate []string, job *profile.Job) SkillMatch {
	if !job.HasSkills() {
		return SkillMatch{
			MatchedRequired:  []string{},
			MatchedPreferred: []string{},
			MissingRequired:  []string{},
			SimilarityScore:  1,
			Degenerate:       true,
		}
	}

	required := job.RequiredSkills
	preferred := subtract(job.PreferredSkills, required)

	have := make(map[string]struct{}, len(candidate))
	for _, s := range candidate {
		have[s] = struct{}{}
	}

	soft := make(map[string]SoftMatch)
	req := e.matchGroup(required, candidate, have, soft)
	pref := e.matchGroup(preferred, candidate, have, soft)

	num := req.weight*e.cfg.RequiredWeight + pref.weight*e.cfg.PreferredWeight
	den := float64(len(required))*e.cfg.RequiredWeight + float64(len(preferred))*e.cfg.PreferredWeight
	score := 1.0
	if den > 0 {
		score = similarity.Clamp(num / den)
	}

	out := SkillMatch{
		MatchedRequired:  req.matched,
		MatchedPreferred: pref.matched,
		MissingRequired:  req.missing,
		SimilarityScore:  score,
	}
	if len(soft) > 0 {
		out.SoftMatches = soft
	}
	return out
}

func (e *Engine) matchGroup(skills, candidate []string, have map[string]struct{}, soft map[string]SoftMatch) skillGroup {
	g := skillGroup{matched: []string{}, missing: []string{}}
	for _, skill := range skills {
		if _, ok := have[skill]; ok {
			g.matched = append(g.matched, skill)
			g.weight++
			continue
		}

		best, score := e.closest(skill, candidate)
		if best != "" && score > e.cfg.SimilarityThreshold {
			g.matched = append(g.matched, skill)
			g.weight += score
			soft[skill] = SoftMatch{CandidateSkill: best, Similarity: score}
			continue
		}
		g.missing = append(g.missing, skill)
	}
	return g
}

// closest walks the sorted candidate skills; a later skill must score strictly higher
// to replace the current best, so ties keep the lexicographically smaller one.
func (e *Engine) closest(skill string, candidate []string) (string, float64) {
	best, bestScore := "", -1.0
	for _, c := range candidate {
		score := similarity.Clamp(e.similarity(skill, c))
		if score > bestScore {
			best, bestScore = c, score
		}
	}
	return best, bestScore
}

func subtract(from, remove []string) []string {
	if len(remove) == 0 {
		return from
	}
	drop := make(map[string]struct{}, len(remove))
	for _, s := range remove {
		drop[s] = struct{}{}
	}
	out := make([]string, 0, len(from))
	for _, s := range from {
		if _, ok := drop[s]; !ok {
			out = append(out, s)
		}
	}
	return out
}
