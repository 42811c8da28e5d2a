package search

import (
	"testing"

	"github.com/cognicore/swipedecoder/internal/decoder/params"
	"github.com/cognicore/swipedecoder/internal/decoder/pool"
	"github.com/cognicore/swipedecoder/pkg/keyboard"
)

func stateFor(id int) State {
	return State{LexiconID: 0, NodeID: id, WordHistoryID: NoWordHistory, AlignedKey: keyboard.KeyId(id)}
}

func TestSweepToIndexDropsTokensNotAtPreviousIndex(t *testing.T) {
	s := NewSpace(params.Default())

	hStale, stale := s.Acquire()
	stale.Cur = Alignment{Index: 0}
	s.Insert(stateFor(1), hStale)

	hFresh, fresh := s.Acquire()
	fresh.Cur = Alignment{Index: 1}
	s.Insert(stateFor(2), hFresh)

	s.SweepToIndex(2)

	if s.Len() != 1 {
		t.Fatalf("Len() after sweep = %d, want 1", s.Len())
	}
	if _, ok := s.Find(stateFor(1)); ok {
		t.Error("stale token (Cur.Index=0) survived sweep to index 2")
	}
	if _, ok := s.Find(stateFor(2)); !ok {
		t.Error("fresh token (Cur.Index=1) was dropped by sweep to index 2")
	}
}

func TestSweepToIndexAdvancesPendingTokens(t *testing.T) {
	s := NewSpace(params.Default())
	h, tok := s.Acquire()
	tok.Cur = Alignment{Index: 0}
	tok.Next = Alignment{Index: 1, AlignScore: -1, TransitScore: negInf}
	s.Insert(stateFor(1), h)

	s.SweepToIndex(2)

	if tok.Index() != 1 {
		t.Errorf("Index() after sweep = %d, want 1 (advanced from Next)", tok.Index())
	}
}

func TestSelectTopByScoreReturnsBestAndFloor(t *testing.T) {
	s := NewSpace(params.Default())
	scores := []float32{-1, -5, -10, -20}
	for i, sc := range scores {
		h, tok := s.Acquire()
		tok.Cur = Alignment{Index: 0, AlignScore: sc, TransitScore: negInf}
		s.Insert(stateFor(i), h)
	}

	top, best := s.SelectTopByScore(2, negInf)
	if best != -1 {
		t.Errorf("best = %v, want -1", best)
	}
	if len(top) != 2 {
		t.Errorf("len(top) = %d, want 2", len(top))
	}
	for h := range top {
		if sc := s.Token(h).TotalScore(); sc < -5 {
			t.Errorf("top token score = %v, want >= -5 (the 2nd-best score)", sc)
		}
	}
}

func TestSelectTopByScoreEmptySpace(t *testing.T) {
	s := NewSpace(params.Default())
	top, best := s.SelectTopByScore(5, negInf)
	if len(top) != 0 {
		t.Errorf("len(top) = %d, want 0", len(top))
	}
	if best != negInf {
		t.Errorf("best = %v, want -Inf", best)
	}
}

func TestAdvanceAllReplacesCurWithNext(t *testing.T) {
	s := NewSpace(params.Default())
	h, tok := s.Acquire()
	tok.Cur = Alignment{Index: 0}
	tok.Next = Alignment{Index: 1, AlignScore: -2, TransitScore: negInf}
	s.Insert(stateFor(1), h)

	s.AdvanceAll()

	if tok.Index() != 1 {
		t.Errorf("Index() after AdvanceAll = %d, want 1", tok.Index())
	}
	if tok.Next.Best() != negInf {
		t.Errorf("Next alignment not invalidated after AdvanceAll: %+v", tok.Next)
	}
}

func TestPruneOutsidePreservesTopSet(t *testing.T) {
	p := params.Default()
	p.TokenPoolCapacity = 4
	p.PruneWhenFreeRatioBelow = 1.0 // always eligible to prune, for this test
	p.PruneRatio = 1.0
	s := NewSpace(p)

	top := map[pool.Handle]bool{}
	for i, sc := range []float32{-1, -2, -3, -4} {
		h, tok := s.Acquire()
		tok.Cur = Alignment{Index: 0, AlignScore: sc, TransitScore: negInf}
		tok.Next.Invalidate() // no pending Next, so pruning ranks by Cur
		s.Insert(stateFor(i), h)
		if i == 0 {
			top[h] = true
		}
	}

	s.PruneOutside(top)

	for h := range top {
		if !s.pool.IsLive(h) {
			t.Error("PruneOutside removed a token that was in the top set")
		}
	}
	if s.Len() >= 4 {
		t.Errorf("Len() after PruneOutside = %d, want fewer than 4 (non-top tokens dropped)", s.Len())
	}
}
