// Package scoring computes a deterministic, explainable fit score per
// canonical job against a candidate profile, with an optional bounded
// semantic adjustment. Every rule contributes a named, signed amount in
// exact centipoints; rounding is round-half-to-even throughout.
package scoring

import (
	"math"
	"strings"

	"github.com/jonathan/job-radar/internal/types"
)

// Weights holds the maximum contribution of each rule in points. A rule's
// contribution is its match ratio times its weight. ExcludedTermPenalty is
// negative: matching an excluded term subtracts points.
type Weights struct {
	SkillOverlap        float64 `json:"skill_overlap" validate:"gte=0"`
	RoleMatch           float64 `json:"role_match" validate:"gte=0"`
	LocationMatch       float64 `json:"location_match" validate:"gte=0"`
	KeywordOverlap      float64 `json:"keyword_overlap" validate:"gte=0"`
	ExcludedTermPenalty float64 `json:"excluded_term_penalty" validate:"lte=0"`
}

// DefaultWeights is the standard scoring policy: rule maxima sum to 100.
func DefaultWeights() Weights {
	return Weights{
		SkillOverlap:        40,
		RoleMatch:           25,
		LocationMatch:       20,
		KeywordOverlap:      15,
		ExcludedTermPenalty: -15,
	}
}

// rule is one scoring rule: a name and a match ratio in [0, 1]. Rules are
// evaluated in the fixed order of the rules slice so signal order never
// depends on anything but policy.
type rule struct {
	name   string
	weight func(w Weights) float64
	ratio  func(job *types.CanonicalJob, profile *types.CandidateProfile) float64
}

var rules = []rule{
	{"skill_overlap", func(w Weights) float64 { return w.SkillOverlap }, skillOverlapRatio},
	{"role_match", func(w Weights) float64 { return w.RoleMatch }, roleMatchRatio},
	{"location_match", func(w Weights) float64 { return w.LocationMatch }, locationMatchRatio},
	{"keyword_overlap", func(w Weights) float64 { return w.KeywordOverlap }, keywordOverlapRatio},
	{"excluded_terms", func(w Weights) float64 { return w.ExcludedTermPenalty }, excludedTermRatio},
}

// matchText returns the haystack used for skill and keyword matching.
func matchText(job *types.CanonicalJob) string {
	if job.NormalizedText == "" {
		return job.NormalizedTitle
	}
	return job.NormalizedTitle + " " + job.NormalizedText
}

// tokenize splits normalized text into a set of alphanumeric tokens.
func tokenize(s string) map[string]bool {
	set := make(map[string]bool)
	for _, tok := range strings.FieldsFunc(s, func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9')
	}) {
		set[tok] = true
	}
	return set
}

// termPresent reports whether a normalized term occurs in the text. Single
// tokens must match a whole token; multi-word terms match as substrings so
// "machine learning" is found inside a sentence.
func termPresent(term, text string, tokens map[string]bool) bool {
	if term == "" {
		return false
	}
	if strings.ContainsRune(term, ' ') {
		return strings.Contains(text, term)
	}
	return tokens[term]
}

// skillOverlapRatio is the matched fraction of profile skill weight found in
// the job text.
func skillOverlapRatio(job *types.CanonicalJob, profile *types.CandidateProfile) float64 {
	if len(profile.Skills) == 0 {
		return 0
	}
	text := matchText(job)
	tokens := tokenize(text)

	total := 0.0
	matched := 0.0
	for _, skill := range profile.Skills {
		total += skill.Weight
		if termPresent(normTerm(skill.Name), text, tokens) {
			matched += skill.Weight
		}
	}
	if total == 0 {
		return 0
	}
	return matched / total
}

// roleMatchRatio is the best match across target roles: full credit when the
// title contains the role, otherwise the fraction of role tokens present in
// the title.
func roleMatchRatio(job *types.CanonicalJob, profile *types.CandidateProfile) float64 {
	if len(profile.TargetRoles) == 0 {
		return 0
	}
	titleTokens := tokenize(job.NormalizedTitle)

	best := 0.0
	for _, role := range profile.TargetRoles {
		r := normTerm(role)
		if r == "" {
			continue
		}
		if strings.Contains(job.NormalizedTitle, r) {
			return 1
		}
		roleTokens := tokenize(r)
		if len(roleTokens) == 0 {
			continue
		}
		hits := 0
		for tok := range roleTokens {
			if titleTokens[tok] {
				hits++
			}
		}
		if ratio := float64(hits) / float64(len(roleTokens)); ratio > best {
			best = ratio
		}
	}
	return best
}

// locationMatchRatio is 1 when any preferred location matches the job
// location (substring either direction), 0 otherwise. A job without a
// location cannot match.
func locationMatchRatio(job *types.CanonicalJob, profile *types.CandidateProfile) float64 {
	if len(profile.Locations) == 0 || job.NormalizedLocation == "" {
		return 0
	}
	for _, loc := range profile.Locations {
		l := normTerm(loc)
		if l == "" {
			continue
		}
		if strings.Contains(job.NormalizedLocation, l) || strings.Contains(l, job.NormalizedLocation) {
			return 1
		}
	}
	return 0
}

// keywordOverlapRatio is the fraction of profile keywords present in the job
// text.
func keywordOverlapRatio(job *types.CanonicalJob, profile *types.CandidateProfile) float64 {
	if len(profile.Keywords) == 0 {
		return 0
	}
	text := matchText(job)
	tokens := tokenize(text)

	matches := 0
	for _, kw := range profile.Keywords {
		if termPresent(normTerm(kw), text, tokens) {
			matches++
		}
	}
	return float64(matches) / float64(len(profile.Keywords))
}

// excludedTermRatio is the fraction of excluded terms present; its weight is
// negative, so any hit subtracts points.
func excludedTermRatio(job *types.CanonicalJob, profile *types.CandidateProfile) float64 {
	if len(profile.ExcludedTerms) == 0 {
		return 0
	}
	text := matchText(job)
	tokens := tokenize(text)

	matches := 0
	for _, term := range profile.ExcludedTerms {
		if termPresent(normTerm(term), text, tokens) {
			matches++
		}
	}
	return float64(matches) / float64(len(profile.ExcludedTerms))
}

// normTerm lower-cases and collapses a profile-supplied term so it compares
// against normalized job fields.
func normTerm(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

// contributionCP converts a rule ratio and weight into exact centipoints.
func contributionCP(ratio, weight float64) int64 {
	return int64(math.RoundToEven(ratio * weight * 100))
}
