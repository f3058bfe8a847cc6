// Package artifact defines the persisted data model shared across the
// scout pipeline stages (Fingerprint, Component Target, Candidate, Clone
// Entry, Matched Target, Modernity Signal, Validation Result, Focus
// Bundle, Provenance, Compare Report) and the validation/IO helpers that
// every stage boundary uses to read and write them.
package artifact

import "errors"

// ErrArtifactInvalid is returned when a persisted artifact fails schema
// validation on read. Config files are the one exception (spec.md
// §4.17): a malformed config file falls back to defaults instead of
// surfacing this error.
var ErrArtifactInvalid = errors.New("artifact invalid")
