// Package search implements the Search Space (C5) and Beam Expander
// (C6): the per-DecoderState token map, its pruning policy, and the
// per-touch-index token-passing step that advances the beam. Grounded
// on the original decoder's token.h, alignment.h and the non-multi-
// term portions of GestureDecoder.cpp (multi-term reentry is excluded
// per this core's single-term scope).
package search

import (
	"math"

	"github.com/cognicore/swipedecoder/internal/decoder/params"
	"github.com/cognicore/swipedecoder/internal/decoder/trie"
	"github.com/cognicore/swipedecoder/pkg/keyboard"
)

var negInf = float32(math.Inf(-1))

// NoWordHistory is the sentinel WordHistoryID value for a token that
// doesn't follow any preceding term (always true in this single-term
// core; the field is retained because it participates in DecoderState
// identity).
const NoWordHistory int32 = -1

// Alignment is a touch-index/score triple: the score the token would
// have if the point at Index is its final key alignment (AlignScore)
// versus still in transit toward it (TransitScore).
type Alignment struct {
	Index       int
	AlignScore  float32
	TransitScore float32
}

// Best returns max(AlignScore, TransitScore).
func (a Alignment) Best() float32 {
	if a.AlignScore > a.TransitScore {
		return a.AlignScore
	}
	return a.TransitScore
}

// Invalidate resets both scores to -Inf.
func (a *Alignment) Invalidate() {
	a.AlignScore = negInf
	a.TransitScore = negInf
}

// AddScore adds score to both component scores.
func (a *Alignment) AddScore(score float32) {
	a.AlignScore += score
	a.TransitScore += score
}

// Token is the unit managed by the search: an alignment between the
// touch sequence and a shared codepoint prefix across one or more
// lexicons.
type Token struct {
	Nodes []trie.Node

	AlignedKey     keyboard.KeyId
	PrevAlignedKey keyboard.KeyId
	OmittedKey     keyboard.KeyId

	PrefixLMScore float32
	// PrevLMScore is always 0 in this single-term core (spec §3: "0 for
	// single-term"); retained for structural fidelity with the token
	// key and TotalScore formula.
	PrevLMScore   float32
	WordHistoryID int32

	Cur  Alignment
	Next Alignment

	children map[rune][]trie.Node
}

// InitializeAsRoot sets up token as the root of the search: no key, no
// scores, empty alignments.
func (t *Token) InitializeAsRoot(nodes []trie.Node, p params.Params) {
	t.Nodes = nodes
	t.AlignedKey = keyboard.InvalidKeyId
	t.PrevAlignedKey = keyboard.InvalidKeyId
	t.OmittedKey = keyboard.InvalidKeyId
	t.PrefixLMScore = 0
	t.PrevLMScore = 0
	t.WordHistoryID = NoWordHistory
	t.Cur = Alignment{Index: -1}
	t.Next = Alignment{Index: -1}
	t.children = nil
	t.updatePrefixLMScore(p)
}

// InitializeAsChild sets up token as a lexical child of parent, copying
// parent's history fields, recording parent's aligned key as
// PrevAlignedKey, and invalidating scores so they're recomputed by the
// passing step.
func (t *Token) InitializeAsChild(nodes []trie.Node, parent *Token, alignedKey keyboard.KeyId, p params.Params) {
	t.Nodes = nodes
	t.AlignedKey = alignedKey
	t.PrevAlignedKey = parent.AlignedKey
	t.OmittedKey = parent.OmittedKey
	t.PrefixLMScore = parent.PrefixLMScore
	t.PrevLMScore = parent.PrevLMScore
	t.WordHistoryID = parent.WordHistoryID
	t.Cur = parent.Cur
	t.Next = parent.Next
	t.children = nil
	t.updatePrefixLMScore(p)
	t.InvalidateScores()
}

// InitializeAsRepeatedLetter copies parent's alignment for a child
// token that represents a repeated or keyboard-overlapping letter
// (e.g. "so" -> "soo"), under the assumption that it shares the
// parent's spatial alignment. Reports whether Cur was replaced by
// parent's (parent's Cur scored at least as well), meaning the caller
// should expand this token further.
func (t *Token) InitializeAsRepeatedLetter(parent *Token) bool {
	t.PrevAlignedKey = parent.PrevAlignedKey
	if t.Next.Best() < parent.Next.Best() {
		t.Next = parent.Next
	}
	if t.Cur.Best() <= parent.Cur.Best() {
		t.Cur = parent.Cur
		return true
	}
	return false
}

func (t *Token) updatePrefixLMScore(p params.Params) {
	best := negInf
	for _, n := range t.Nodes {
		if n.PrefixLogP > best {
			best = n.PrefixLogP
		}
	}
	t.PrefixLMScore = best * p.PrefixLMWeight
}

// Index returns the touch index of the token's current alignment.
func (t *Token) Index() int { return t.Cur.Index }

// NextIndex returns the touch index of the token's next alignment.
func (t *Token) NextIndex() int { return t.Next.Index }

// SpatialScore is cur_alignment.best.
func (t *Token) SpatialScore() float32 { return t.Cur.Best() }

// LMScore is prev_lm_score + prefix_lm_score.
func (t *Token) LMScore() float32 { return t.PrevLMScore + t.PrefixLMScore }

// TotalScore is spatial_score + lm_score, used to rank the beam.
func (t *Token) TotalScore() float32 { return t.SpatialScore() + t.LMScore() }

// NextTotalScore is next_alignment.best + lm_score, used to bound
// what the token could achieve at the next touch index.
func (t *Token) NextTotalScore() float32 { return t.Next.Best() + t.LMScore() }

// AddScore adds an arbitrary spatial adjustment to the current
// alignment (e.g. the omission penalty).
func (t *Token) AddScore(score float32) { t.Cur.AddScore(score) }

// AdvanceToNextAlignment replaces Cur with Next and invalidates Next.
func (t *Token) AdvanceToNextAlignment() {
	t.Cur = t.Next
	t.Next.Invalidate()
}

// InvalidateScores invalidates both Cur and Next.
func (t *Token) InvalidateScores() {
	t.Cur.Invalidate()
	t.Next.Invalidate()
}

// HasPrevTerms reports whether this token follows a preceding term.
func (t *Token) HasPrevTerms() bool { return t.WordHistoryID >= 0 }

// IsTerminal reports whether any of the token's nodes is the end of a
// complete term.
func (t *Token) IsTerminal(view *trie.View) bool {
	for _, n := range t.Nodes {
		if _, ok := view.TermLogP(n); ok {
			return true
		}
	}
	return false
}

// Children returns (and caches) this token's child nodes grouped by
// codepoint, merged across every lexicon node the token currently
// spans.
func (t *Token) Children(view *trie.View) map[rune][]trie.Node {
	if t.children != nil {
		return t.children
	}
	grouped := make(map[rune][]trie.Node)
	for _, n := range t.Nodes {
		for _, child := range view.Children(n) {
			grouped[child.Codepoint] = append(grouped[child.Codepoint], child)
		}
	}
	t.children = grouped
	return grouped
}
