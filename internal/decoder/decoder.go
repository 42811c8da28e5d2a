// Package decoder implements the DecoderSession facade (spec §6.4):
// the single public entry point that wires the Touch Sequence,
// Codepoint Trie View, Interpolated Scorer, Search Space and Beam
// Expander, and Result Aggregator together into one Decode call.
// Grounded on the original decoder's GestureDecoder::DecodeTouch.
package decoder

import (
	"fmt"
	"io"
	"log"

	"github.com/cognicore/swipedecoder/internal/decoder/params"
	"github.com/cognicore/swipedecoder/internal/decoder/result"
	"github.com/cognicore/swipedecoder/internal/decoder/scorer"
	"github.com/cognicore/swipedecoder/internal/decoder/search"
	"github.com/cognicore/swipedecoder/internal/decoder/touch"
	"github.com/cognicore/swipedecoder/internal/decoder/trie"
	"github.com/cognicore/swipedecoder/internal/internalerr"
	"github.com/cognicore/swipedecoder/pkg/charops"
	"github.com/cognicore/swipedecoder/pkg/keyboard"
	"github.com/cognicore/swipedecoder/pkg/lexicon"
)

// Stroke is one raw touch sample fed into Decode: an (x, y) sample
// paired with its timestamp and whether it is the gesture's final
// ("finger up") point.
type Stroke struct {
	X, Y   float32
	TimeMs int32
	Up     bool
}

// Session is the DecoderSession facade. It owns the external
// collaborators (keyboard, lexicons, language models, char ops) and
// the tunable parameters; Decode is its sole entry point. Session
// holds no per-stroke state of its own: every Decode call builds a
// fresh search space, trie view and scorer, per spec §5 ("per-LM
// scorers are not thread-safe and must be reconstructed per Decode").
type Session struct {
	Keyboard *keyboard.Keyboard
	CharOps  charops.CharOps
	Lexicons []lexicon.Lexicon
	Models   []scorer.WeightedModel
	Params   params.Params

	// SampleDist is the resampling distance passed to touch.New (spec
	// §4.1). Zero disables resampling.
	SampleDist float32

	// Logger receives optional diagnostics: Decode logs a call with no
	// lexicons and a token pool too small to hold the root token.
	// Pruning and scorer construction failures are not logged. Never
	// written to by the hot search loop itself (spec §5); defaults to a
	// discard logger so Decode is silent unless the caller opts in.
	Logger *log.Logger

	// Histories interns preceding-term sequences to word-history ids
	// (spec §3's DecoderState, SPEC_FULL.md's supplemented feature 4).
	// The single-term core only ever reads NoHistory from it.
	Histories *WordHistory
}

// New builds a Session with sensible defaults: charops.Default for
// CharOps, a discard Logger, and a fresh WordHistory table.
func New(kb *keyboard.Keyboard, lexicons []lexicon.Lexicon, models []scorer.WeightedModel, p params.Params) *Session {
	return &Session{
		Keyboard:  kb,
		CharOps:   charops.Default,
		Lexicons:  lexicons,
		Models:    models,
		Params:    p,
		Logger:    log.New(io.Discard, "", 0),
		Histories: NewWordHistory(),
	}
}

func (s *Session) logger() *log.Logger {
	if s.Logger == nil {
		return log.New(io.Discard, "", 0)
	}
	return s.Logger
}

// Decode runs the full search over stroke: touch-sequence
// construction, token-passing beam search, and result aggregation
// (spec §4, §6.4). preceding and following seed the Interpolated
// Scorer's word-history context (spec §4.3); pass nil for an
// unconditioned decode.
//
// A nil, not an error, result means no lexicon was configured (spec
// §7: NoLexicon degrades gracefully rather than failing the call), the
// stroke carried no points, or the token pool could not hold even the
// root token (PoolExhausted is logged, never returned).
func (s *Session) Decode(stroke []Stroke, preceding, following []string) ([]result.Result, error) {
	if len(s.Lexicons) == 0 {
		s.logger().Printf("decode: %v", internalerr.ErrNoLexicon)
		return nil, nil
	}
	if s.Keyboard == nil {
		return nil, fmt.Errorf("decode: keyboard is nil: %w", internalerr.ErrInvalidInput)
	}

	ops := s.CharOps
	if ops == nil {
		ops = charops.Default
	}

	seq := touch.New(s.SampleDist)
	for _, p := range stroke {
		if err := seq.AddPoint(touch.RawPoint{X: p.X, Y: p.Y, TimeMs: p.TimeMs}, p.Up); err != nil {
			return nil, fmt.Errorf("decode: %w", err)
		}
	}
	if seq.Size() == 0 {
		return nil, nil
	}
	seq.UpdateProperties(s.Keyboard, s.Params)

	view := trie.New(s.Lexicons)
	sc := scorer.New(s.Models, preceding, following)

	space := search.NewSpace(s.Params)
	rootHandle, root := space.Acquire()
	if root == nil {
		s.logger().Printf("decode: %v", internalerr.ErrPoolExhausted)
		return nil, nil
	}
	rootNodes := view.RootNodes()
	root.InitializeAsRoot(rootNodes, s.Params)
	space.Insert(search.StateFor(rootNodes[0], NoHistory, keyboard.InvalidKeyId), rootHandle)

	expander := search.NewExpander(space, view, s.Keyboard, ops, s.Params)
	expander.Run(seq)

	agg := result.New(view, sc, s.Params)
	return agg.Aggregate(space, seq.Size()-1), nil
}
