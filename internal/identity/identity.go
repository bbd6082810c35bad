// Package identity assigns each canonical job a persistent identity key and
// a change-detection fingerprint, and deduplicates jobs sharing an identity
// within a run. It is a pure function of its sorted input: no I/O, no
// run-to-run state.
//
// Providers without stable external ids fall back to a content-derived key
// over (provider, normalized title, normalized location). A substantive
// title or location edit therefore surfaces as a removal plus a new
// addition. That is a documented limitation, not a defect; no fuzzy matching
// is attempted.
package identity

import (
	"fmt"

	"github.com/jonathan/job-radar/internal/canonical"
	"github.com/jonathan/job-radar/internal/types"
)

// Key derives the identity key for a canonical job: hash(provider,
// external_id) when the provider supplies a stable id, otherwise
// hash(provider, normalized_title, normalized_location).
func Key(job *types.CanonicalJob) (string, error) {
	var payload canonical.Object
	if job.ExternalID != "" {
		payload = canonical.Object{
			"provider":    job.Provider,
			"external_id": job.ExternalID,
		}
	} else {
		payload = canonical.Object{
			"provider": job.Provider,
			"title":    job.NormalizedTitle,
			"location": job.NormalizedLocation,
		}
	}
	return canonical.Hash(canonical.DomainIdentity, payload)
}

// Fingerprint hashes all tracked fields in fixed order. Any observable
// change to a tracked field changes the fingerprint; display-only casing is
// already folded into the canonical fields it covers.
func Fingerprint(job *types.CanonicalJob) (string, error) {
	payload := canonical.Object{
		"provider":            job.Provider,
		"external_id":         job.ExternalID,
		"title":               job.Title,
		"location":            job.Location,
		"normalized_title":    job.NormalizedTitle,
		"normalized_location": job.NormalizedLocation,
		"normalized_text":     job.NormalizedText,
		"source_url":          job.SourceURL,
	}
	return canonical.Hash(canonical.DomainFingerprint, payload)
}

// Result is the identity engine output: deduplicated jobs in the input's
// stable order plus the audit trail of dropped duplicates.
type Result struct {
	Jobs       []types.CanonicalJob
	Duplicates []types.DuplicateDropped
}

// Assign computes identity keys and fingerprints for a sorted slice of
// canonical jobs and resolves same-run identity collisions.
//
// Dedup policy: for jobs sharing an identity key, keep the one with the
// lexicographically smallest source URL and record a duplicate_dropped
// signal. Two jobs with the same identity key, the same source URL and
// different fingerprints cannot be resolved deterministically; that state
// indicates a bug upstream and fails with IdentityCollisionUnresolved.
func Assign(jobs []types.CanonicalJob) (*Result, error) {
	result := &Result{}
	byKey := make(map[string]int) // identity key -> index into result.Jobs

	for i := range jobs {
		job := jobs[i]

		key, err := Key(&job)
		if err != nil {
			return nil, &types.StageFailure{Stage: "identity", Code: types.CodeIdentityCollisionUnresolved, Cause: err}
		}
		fp, err := Fingerprint(&job)
		if err != nil {
			return nil, &types.StageFailure{Stage: "identity", Code: types.CodeIdentityCollisionUnresolved, Cause: err}
		}
		job.IdentityKey = key
		job.Fingerprint = fp

		kept, seen := byKey[key]
		if !seen {
			byKey[key] = len(result.Jobs)
			result.Jobs = append(result.Jobs, job)
			continue
		}

		winner := &result.Jobs[kept]
		if job.SourceURL == winner.SourceURL && job.Fingerprint != winner.Fingerprint {
			return nil, &types.StageFailure{
				Stage: "identity",
				Code:  types.CodeIdentityCollisionUnresolved,
				Cause: fmt.Errorf("identity %s: same source_url %s with differing fingerprints", key, job.SourceURL),
			}
		}

		if job.SourceURL < winner.SourceURL {
			result.Duplicates = append(result.Duplicates, types.DuplicateDropped{
				IdentityKey:      key,
				KeptSourceURL:    job.SourceURL,
				DroppedSourceURL: winner.SourceURL,
			})
			result.Jobs[kept] = job
		} else {
			result.Duplicates = append(result.Duplicates, types.DuplicateDropped{
				IdentityKey:      key,
				KeptSourceURL:    winner.SourceURL,
				DroppedSourceURL: job.SourceURL,
			})
		}
	}

	return result, nil
}
