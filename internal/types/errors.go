package types

import "fmt"

// FailureCode identifies one class of pipeline failure. Codes are stable
// strings: they appear in run-health artifacts and must not change meaning
// between releases.
type FailureCode string

// Failure codes surfaced in run-health artifacts and CLI output.
const (
	CodeNormalizationError          FailureCode = "NormalizationError"
	CodeIdentityCollisionUnresolved FailureCode = "IdentityCollisionUnresolved"
	CodeScoringError                FailureCode = "ScoringError"
	CodeMissingBaseline             FailureCode = "MissingBaseline"
	CodeReplayMismatch              FailureCode = "ReplayMismatch"
	CodeSemanticUnavailable         FailureCode = "SemanticUnavailable"
)

// StageFailure is a fatal error attributed to one pipeline stage. Per-record
// errors accumulate inside stage reports; a StageFailure means the stage
// failed closed and the run must not emit ranked output.
type StageFailure struct {
	Stage string
	Code  FailureCode
	Cause error
}

func (e *StageFailure) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s failed: %s: %v", e.Stage, e.Code, e.Cause)
	}
	return fmt.Sprintf("%s failed: %s", e.Stage, e.Code)
}

func (e *StageFailure) Unwrap() error {
	return e.Cause
}

// RecordError is one non-fatal per-record failure, accumulated and reported
// rather than thrown. Ref identifies the offending record (source URL when
// present, otherwise a batch index).
type RecordError struct {
	Ref    string `json:"ref"`
	Reason string `json:"reason"`
}

func (e RecordError) String() string {
	return fmt.Sprintf("%s: %s", e.Ref, e.Reason)
}
