// Package sessionid mints monotonic, sortable ids for a decode
// session's diagnostic handles: a per-call trace id for logging and
// a stable id for each returned DecoderResult batch. Grounded on
// pkg/korel/cards.Builder's ulid.Monotonic(rand.Reader, 0) use.
package sessionid

import (
	"crypto/rand"

	"github.com/oklog/ulid/v2"
)

// Source mints monotonically increasing ids, safe to reuse across an
// entire process lifetime (ulid.MonotonicEntropy is not safe for
// concurrent use, matching the teacher's single-goroutine Builder).
type Source struct {
	entropy *ulid.MonotonicEntropy
}

// New builds a Source.
func New() *Source {
	return &Source{entropy: ulid.Monotonic(rand.Reader, 0)}
}

// Next mints the next id in this source's sequence.
func (s *Source) Next() string {
	return ulid.MustNew(ulid.Now(), s.entropy).String()
}
