// Package diffing partitions the union of current and baseline identity
// keys into new, changed, removed and unchanged sets. Every emitted list is
// sorted ascending by identity key bytes, so diff artifacts are
// byte-identical for identical inputs regardless of map iteration order.
package diffing

import (
	"sort"

	"github.com/jonathan/job-radar/internal/types"
)

// Compute diffs the current {identity_key: fingerprint} map against the
// baseline map. A nil baseline is a valid first run: every current key is
// new. Resolving whether a baseline should exist is the caller's problem;
// this engine never guesses.
func Compute(current, baseline map[string]string) *types.DiffResult {
	result := &types.DiffResult{
		New:       []string{},
		Changed:   []string{},
		Removed:   []string{},
		Unchanged: []string{},
	}

	for key, fp := range current {
		baseFP, inBase := baseline[key]
		switch {
		case !inBase:
			result.New = append(result.New, key)
		case fp != baseFP:
			result.Changed = append(result.Changed, key)
		default:
			result.Unchanged = append(result.Unchanged, key)
		}
	}
	for key := range baseline {
		if _, inCurrent := current[key]; !inCurrent {
			result.Removed = append(result.Removed, key)
		}
	}

	sort.Strings(result.New)
	sort.Strings(result.Changed)
	sort.Strings(result.Removed)
	sort.Strings(result.Unchanged)
	return result
}

// FingerprintMap projects canonical jobs onto their {identity_key:
// fingerprint} map for diffing.
func FingerprintMap(jobs []types.CanonicalJob) map[string]string {
	m := make(map[string]string, len(jobs))
	for i := range jobs {
		m[jobs[i].IdentityKey] = jobs[i].Fingerprint
	}
	return m
}
