package types

import "math"

// Score values are carried as float64 but always represent an exact number
// of centipoints (hundredths of a point). Centipoints converts back without
// drift; every hash and artifact serialization goes through it so float
// representation never leaks into bytes.

// Signal is one named rule contribution to a base score. Signals are emitted
// in fixed rule order and their contributions sum to the pre-clamp base score.
type Signal struct {
	Name         string  `json:"name"`
	Contribution float64 `json:"contribution"`
}

// ScoreResult is the scoring engine output for one canonical job.
//
// Invariants: FinalScore = clamp(BaseScore+SemanticDelta, 0, 100) and
// |SemanticDelta| never exceeds the configured policy bound.
type ScoreResult struct {
	IdentityKey   string   `json:"identity_key"`
	BaseScore     float64  `json:"base_score"`
	SemanticDelta float64  `json:"semantic_delta"`
	FinalScore    float64  `json:"final_score"`
	Band          string   `json:"band"`
	Signals       []Signal `json:"signals"`
}

// Centipoints converts a score value to exact hundredths of a point using
// round-half-to-even.
func Centipoints(score float64) int64 {
	return int64(math.RoundToEven(score * 100))
}

// FromCentipoints converts hundredths of a point back to a score value.
func FromCentipoints(cp int64) float64 {
	return float64(cp) / 100
}
