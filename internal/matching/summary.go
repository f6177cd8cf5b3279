package matching

import (
	"cmp"
	"slices"

	"github.com/spigell/resume-matcher/internal/profile"
)

// SkillDemand counts how many below-excellent results miss a required skill.
type SkillDemand struct {
	Skill string `json:"skill"`
	Count int    `json:"count"`
}

// Summary condenses a ranked batch.
type Summary struct {
	TopJobs         []Result      `json:"top_jobs"`
	SkillsToDevelop []SkillDemand `json:"skills_to_develop"`
	Warnings        []Notice      `json:"warnings,omitempty"`
}

// Summarize expects the output of Match. The input slice is not modified.
func (e *Engine) Summarize(results []Result) Summary {
	ranked := slices.Clone(results)
	slices.SortStableFunc(ranked, func(a, b Result) int { return cmp.Compare(a.Rank, b.Rank) })

	top := ranked[:min(e.cfg.TopK, len(ranked))]

	return Summary{
		TopJobs:         slices.Clip(top),
		SkillsToDevelop: e.skillsToDevelop(ranked),
		Warnings:        notices(ranked),
	}
}

func (e *Engine) skillsToDevelop(results []Result) []SkillDemand {
	counts := make(map[string]int)
	for _, r := range results {
		if e.reaches(r.OverallScore, e.cfg.ExcellentThreshold) {
			continue
		}
		for _, skill := range profile.Set(r.Skills.MissingRequired) {
			counts[skill]++
		}
	}

	out := make([]SkillDemand, 0, len(counts))
	for skill, n := range counts {
		out = append(out, SkillDemand{Skill: skill, Count: n})
	}
	slices.SortFunc(out, func(a, b SkillDemand) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return cmp.Compare(a.Skill, b.Skill)
	})
	if len(out) > e.cfg.SkillsToDevelopLimit {
		out = out[:e.cfg.SkillsToDevelopLimit]
	}
	return out
}

func notices(results []Result) []Notice {
	var out []Notice
	seen := make(map[Notice]struct{})
	for _, r := range results {
		for _, w := range r.Warnings {
			n := Notice{Warning: w}
			if w == WarningJobWithoutSkills && r.Job != nil {
				n.JobID = r.Job.ID
				if n.JobID == "" {
					n.JobID = r.Job.Label()
				}
			}
			if _, ok := seen[n]; ok {
				continue
			}
			seen[n] = struct{}{}
			out = append(out, n)
		}
	}
	return out
}
