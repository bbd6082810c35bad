package types

// WeightedSkill is one candidate skill with a relative weight used by the
// skill-overlap scoring rule.
type WeightedSkill struct {
	Name   string  `json:"name" validate:"required"`
	Weight float64 `json:"weight" validate:"gt=0"`
}

// CandidateProfile describes what the candidate is looking for. It is loaded
// once per invocation, validated, and passed into the pipeline as an
// immutable value; engines never read profile data from anywhere else.
type CandidateProfile struct {
	Name          string          `json:"name,omitempty"`
	Skills        []WeightedSkill `json:"skills" validate:"required,min=1,dive"`
	TargetRoles   []string        `json:"target_roles" validate:"required,min=1"`
	Locations     []string        `json:"locations,omitempty"`
	Keywords      []string        `json:"keywords,omitempty"`
	ExcludedTerms []string        `json:"excluded_terms,omitempty"`
}
