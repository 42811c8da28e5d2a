package search

import (
	"math"

	"github.com/cognicore/swipedecoder/internal/decoder/params"
	"github.com/cognicore/swipedecoder/internal/decoder/pool"
	"github.com/cognicore/swipedecoder/internal/decoder/touch"
	"github.com/cognicore/swipedecoder/internal/decoder/trie"
	"github.com/cognicore/swipedecoder/pkg/charops"
	"github.com/cognicore/swipedecoder/pkg/keyboard"
)

// Expander is the Beam Expander (C6): it drives the per-touch-index
// token-passing loop over a Space, advancing the beam one touch sample
// at a time and expanding top tokens into their lexical children.
// Grounded on GestureDecoder::ProcessNextTouchPoint and
// ExpandTokenGesture (the single-term, non-reentrant subset).
type Expander struct {
	space    *Space
	view     *trie.View
	keyboard *keyboard.Keyboard
	charOps  charops.CharOps
	params   params.Params

	// codeToKeys memoizes Keyboard.KeysForCode for the lifetime of this
	// Expander, which Session.Decode builds fresh for every call.
	codeToKeys map[rune][]keyboard.KeyId
}

// NewExpander builds an Expander over space, reusing kb/ops/view across
// the whole Decode call.
func NewExpander(space *Space, view *trie.View, kb *keyboard.Keyboard, ops charops.CharOps, p params.Params) *Expander {
	return &Expander{
		space:      space,
		view:       view,
		keyboard:   kb,
		charOps:    ops,
		params:     p,
		codeToKeys: make(map[rune][]keyboard.KeyId),
	}
}

func (e *Expander) keysForCode(code rune) []keyboard.KeyId {
	if keys, ok := e.codeToKeys[code]; ok {
		return keys
	}
	keys := e.keyboard.KeysForCode(code)
	e.codeToKeys[code] = keys
	return keys
}

// Run executes Steps 1-5 of spec §4.6 for every touch index in seq,
// then performs the unconditional final alignment advance so the
// Result Aggregator can select tokens whose Index() == seq.Size()-1.
func (e *Expander) Run(seq *touch.Sequence) {
	n := seq.Size()
	for i := 0; i < n; i++ {
		e.space.SweepToIndex(i)
		top, best := e.space.SelectTopByScore(int(e.params.ActiveBeamWidth), e.params.ScoreToBeatAbsolute)
		activeBeamMinScore := e.passTopTokens(top, seq, i)

		for h := range top {
			e.space.PruneOutside(top)
			t := e.space.Token(h)
			e.expandToken(i, t, best, activeBeamMinScore, seq)
		}
	}
	e.space.AdvanceAll()
}

// passTopTokens implements spec §4.6 Step 3: for each top token with a
// valid key and in-transit score, pass it forward in place, then
// compute active_beam_min_score from the resulting NextTotalScore
// values.
func (e *Expander) passTopTokens(top map[pool.Handle]bool, seq *touch.Sequence, index int) float32 {
	for h := range top {
		t := e.space.Token(h)
		if t.AlignedKey >= 0 && t.Cur.TransitScore > negInf {
			e.passToken(t, t, seq, index)
		}
	}
	if len(top) < int(e.params.ActiveBeamWidth) {
		return negInf
	}
	min := float32(math.Inf(1))
	for h := range top {
		nt := e.space.Token(h).NextTotalScore()
		if nt < min {
			min = nt
		}
	}
	return min
}

// passToken implements the spec §4.6 Step 3 / §4.1 Alignment passing
// formula: it computes next's Next alignment using original's Cur
// alignment and next's (prev_aligned_key, aligned_key), committing only
// if the result strictly improves next.Next.Best(). original and next
// may be the same token (self-advance in transit) or original may be a
// parent passing to a freshly found-or-created child.
func (e *Expander) passToken(original, next *Token, seq *touch.Sequence, index int) bool {
	if index >= seq.Size() {
		return false
	}
	p := next.PrevAlignedKey
	k := next.AlignedKey

	var pointAlign float32 = negInf
	if k >= 0 {
		pointAlign = seq.AlignScore(index, k)
	}

	var nextAlign, nextTransit float32
	if p == keyboard.InvalidKeyId {
		if index == 0 {
			nextAlign = pointAlign * e.params.FirstPointWeight
		} else {
			nextAlign = negInf
		}
		nextTransit = negInf
	} else {
		pointTransit := seq.TransitScore(index, p, k)
		sameKey := p == k || e.keyboard.KeyToKeyDistance(p, k) == 0
		if sameKey {
			nextAlign = original.Cur.TransitScore + pointAlign
			nextTransit = original.Cur.TransitScore + pointTransit
		} else {
			nextAlign = original.Cur.AlignScore + pointAlign
			nextTransit = original.Cur.AlignScore + pointTransit
		}
	}

	if fmax(nextAlign, nextTransit) > next.Next.Best() {
		next.Next = Alignment{Index: index, AlignScore: nextAlign, TransitScore: nextTransit}
		return true
	}
	return false
}

// expandToken is the top-level Step-5 entry point: applies Guard 1
// (should_consider) before delegating to expandChildren.
func (e *Expander) expandToken(index int, t *Token, best, activeBeamMinScore float32, seq *touch.Sequence) {
	if t.TotalScore() < best+e.params.ScoreToBeatOffset {
		return
	}
	e.expandChildren(index, t, activeBeamMinScore, seq)
}

// expandChildren applies Guard 2 (should_expand_children) and then
// generates every child token reachable from t: digraph second-key
// continuation, per-codepoint key alignment (including repeated/
// overlapping keys), and skippable/non-letter omissions. Grounded on
// ExpandTokenGesture.
func (e *Expander) expandChildren(index int, t *Token, activeBeamMinScore float32, seq *touch.Sequence) {
	if !e.shouldExpandChildren(t, seq) || e.childScoreExceedsBound(t, activeBeamMinScore) {
		return
	}

	if len(t.Nodes) > 0 {
		lastCodepoint := t.Nodes[0].Codepoint
		if secondKey, ok := e.keyboard.SecondDigraphKey(lastCodepoint, t.AlignedKey); ok {
			if child, _, _ := e.findOrCreateChild(t.Nodes, t, secondKey); child != nil {
				e.passToken(t, child, seq, index)
			}
			if !e.keyboard.CodeAlignsToKey(lastCodepoint, t.AlignedKey) {
				return
			}
		}
	}

	for codepoint, nodes := range t.Children(e.view) {
		possibleKeys := e.keysForCode(codepoint)
		for _, nextKey := range possibleKeys {
			isRepeated := nextKey == t.AlignedKey ||
				(t.AlignedKey >= 0 && e.keyboard.KeyToKeyDistance(t.AlignedKey, nextKey) == 0)

			child, _, _ := e.findOrCreateChild(nodes, t, nextKey)
			if child == nil {
				continue
			}
			if isRepeated {
				if child.InitializeAsRepeatedLetter(t) {
					e.expandChildren(index, child, activeBeamMinScore, seq)
				}
			} else {
				e.passToken(t, child, seq, index)
			}
		}

		if len(nodes) == 0 {
			continue
		}
		skippable := e.charOps.IsSkippable(codepoint)
		if skippable || len(possibleKeys) == 0 {
			omission := &Token{}
			omission.InitializeAsChild(nodes, t, t.AlignedKey, e.params)
			if !skippable {
				omission.AddScore(e.params.OmissionScore)
			}
			e.passToken(t, omission, seq, index)
			e.expandChildren(index, omission, activeBeamMinScore, seq)
		}
	}
}

func (e *Expander) shouldExpandChildren(t *Token, seq *touch.Sequence) bool {
	if t.AlignedKey < 0 {
		return true
	}
	spaceKey := e.keyboard.KeyIndex(' ')
	if t.AlignedKey == spaceKey {
		return true
	}
	return seq.AlignScore(t.Index(), t.AlignedKey) >= e.params.MinAlignKeyScore
}

// childScoreExceedsBound is Guard 2's second clause: expanding to
// children commits to the align-score branch, so if that upper bound
// can't beat the active beam's floor there's no point generating them.
func (e *Expander) childScoreExceedsBound(t *Token, activeBeamMinScore float32) bool {
	if t.AlignedKey < 0 {
		return false
	}
	upperBound := t.Cur.AlignScore + t.LMScore()
	return upperBound < activeBeamMinScore
}

// findOrCreateChild implements spec §4.6's find-or-create child
// contract: on a hit, returns the resident token for the state; on a
// miss, acquires from the pool, initializes as a child, and inserts.
// Pool exhaustion is a benign skip (spec §7): callers receive a nil
// token and move on.
func (e *Expander) findOrCreateChild(nodes []trie.Node, parent *Token, key keyboard.KeyId) (*Token, pool.Handle, bool) {
	if len(nodes) == 0 {
		return nil, pool.InvalidHandle, false
	}
	state := StateFor(nodes[0], parent.WordHistoryID, key)
	if h, ok := e.space.Find(state); ok {
		return e.space.Token(h), h, false
	}
	h, tok := e.space.Acquire()
	if tok == nil {
		return nil, pool.InvalidHandle, false
	}
	tok.InitializeAsChild(nodes, parent, key, e.params)
	e.space.Insert(state, h)
	return tok, h, true
}

func fmax(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}
