// Package types provides type definitions for structured data used throughout the job-radar system.
//
//nolint:revive // types is a standard Go package name pattern
package types

// RawRecord is a job posting exactly as a provider collaborator handed it
// over. It is owned transiently by the normalizer and discarded after
// canonicalization; nothing downstream of the normalizer sees one.
type RawRecord struct {
	Provider    string `json:"provider"`
	Title       string `json:"title"`
	Location    string `json:"location,omitempty"`
	Description string `json:"description,omitempty"`
	ExternalID  string `json:"external_id,omitempty"`
	SourceURL   string `json:"source_url"`
	FetchedAt   string `json:"fetched_at,omitempty"` // RFC 3339, provenance only
}

// HasExternalID reports whether the provider supplied a stable external id
// for this record. Providers vary in capability; identity derivation branches
// on this rather than sniffing fields downstream.
func (r *RawRecord) HasExternalID() bool {
	return r.ExternalID != ""
}

// RawBatch is the input contract from the ingestion collaborator: one
// provider/profile scope worth of records plus provenance metadata.
type RawBatch struct {
	Provider  string      `json:"provider"`
	FetchedAt string      `json:"fetched_at,omitempty"`
	Records   []RawRecord `json:"records"`
}
