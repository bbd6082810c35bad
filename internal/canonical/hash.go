package canonical

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed hashing. The version suffix leaves
// room for algorithm migration without ambiguity between old and new hashes.
const (
	DomainIdentity    = "job-radar/identity/v1"
	DomainFingerprint = "job-radar/fingerprint/v1"
	DomainContent     = "job-radar/content/v1"
	DomainArtifact    = "job-radar/artifact/v1"
)

// hashWithDomain computes SHA-256 over domain + 0x00 + data. The null
// separator prevents boundary ambiguity between domain and payload.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// Hash canonically marshals v and returns its domain-separated SHA-256 hex.
func Hash(domain string, v any) (string, error) {
	data, err := Marshal(v)
	if err != nil {
		return "", fmt.Errorf("canonical hash: %w", err)
	}
	return hashWithDomain(domain, data), nil
}

// HashBytes hashes already-canonical bytes under a domain. Callers must only
// pass bytes produced by Marshal; anything else breaks replay comparability.
func HashBytes(domain string, data []byte) string {
	return hashWithDomain(domain, data)
}
