// Package internalerr defines the sentinel errors shared across the
// decoder packages.
package internalerr

import "errors"

// Sentinel errors for common decoder failure kinds (spec §7).
var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrInvariantViolation = errors.New("invariant violation")
	ErrNoLexicon          = errors.New("no lexicon")
	ErrPoolExhausted      = errors.New("token pool exhausted")
	ErrUnsupported        = errors.New("unsupported")
)
