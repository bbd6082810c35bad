package types

// HashChain is the ordered set of stage hashes needed for replay. Each hash
// covers the canonical serialized bytes of one stage's complete output.
type HashChain struct {
	Input      string `json:"input_hash"`
	Normalized string `json:"normalized_hash"`
	Scored     string `json:"scored_hash"`
	Diff       string `json:"diff_hash"`
}

// RunCounts aggregates per-stage record and error counts for one run.
type RunCounts struct {
	InputRecords      int `json:"input_records"`
	RejectedRecords   int `json:"rejected_records"`
	NormalizedJobs    int `json:"normalized_jobs"`
	DuplicatesDropped int `json:"duplicates_dropped"`
	ScoredJobs        int `json:"scored_jobs"`
	ScoringErrors     int `json:"scoring_errors"`
	SemanticMisses    int `json:"semantic_misses"`
}

// RunArtifact is the system of record for one completed pipeline execution.
// It is written exactly once, after every stage has succeeded, and is never
// mutated afterwards; replay only recomputes and compares against it.
//
// RunID and CreatedAt are run identity metadata and are excluded from all
// content hashes so that replaying a run compares payload bytes, not
// wall-clock identity.
type RunArtifact struct {
	RunID         string            `json:"run_id"`
	CreatedAt     string            `json:"created_at"` // RFC 3339 UTC
	BaselineRunID string            `json:"baseline_run_id,omitempty"`
	Counts        RunCounts         `json:"counts"`
	DiffCounts    DiffCounts        `json:"diff_counts"`
	Chain         HashChain         `json:"hash_chain"`
	OutputHashes  map[string]string `json:"output_hashes"` // artifact file name -> content hash
}

// RunHealth is written in place of a RunArtifact when a run fails: it names
// the failed stage and the ordered failure codes, and no ranked output
// artifact exists for the run.
type RunHealth struct {
	RunID        string   `json:"run_id"`
	CreatedAt    string   `json:"created_at"`
	FailedStage  string   `json:"failed_stage"`
	FailureCodes []string `json:"failure_codes"`
	Errors       []string `json:"errors,omitempty"` // bounded sample of per-record errors
}
