package types

// CanonicalJob is the normalized, field-order-stable representation of one
// job posting. Display fields (Title, Location) keep their original casing;
// the matching fields (NormalizedTitle, NormalizedLocation, NormalizedText)
// are lower-cased, whitespace-collapsed and NFC-normalized.
type CanonicalJob struct {
	IdentityKey        string `json:"identity_key"`
	Fingerprint        string `json:"fingerprint"`
	Provider           string `json:"provider"`
	ExternalID         string `json:"external_id,omitempty"`
	Title              string `json:"title"`
	Location           string `json:"location,omitempty"`
	NormalizedTitle    string `json:"normalized_title"`
	NormalizedLocation string `json:"normalized_location,omitempty"`
	NormalizedText     string `json:"normalized_text,omitempty"`
	SourceURL          string `json:"source_url"`
	FirstSeenRunID     string `json:"first_seen_run_id,omitempty"`
}

// SortKey returns the stable ordering key used before any hashing:
// provider, then external id (or normalized title for providers without
// one), then source URL. Ordering by this key makes every downstream hash
// independent of arrival order.
func (j *CanonicalJob) SortKey() [3]string {
	second := j.ExternalID
	if second == "" {
		second = j.NormalizedTitle
	}
	return [3]string{j.Provider, second, j.SourceURL}
}

// DuplicateDropped records one same-run dedup decision: two canonical jobs
// produced the same identity key and the one with the larger source URL was
// dropped. This is an audit signal, not an error.
type DuplicateDropped struct {
	IdentityKey      string `json:"identity_key"`
	KeptSourceURL    string `json:"kept_source_url"`
	DroppedSourceURL string `json:"dropped_source_url"`
}
