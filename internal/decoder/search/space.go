package search

import (
	"sort"

	"github.com/cognicore/swipedecoder/internal/decoder/params"
	"github.com/cognicore/swipedecoder/internal/decoder/pool"
)

// Space is the Search Space (C5): a map from DecoderState to the
// unique best Token for that state, backed by a fixed-capacity Token
// Pool, plus the pruning policy from spec §4.5. Grounded on the
// original decoder's search_space_ (an unordered_map<DecoderState,
// Token*>) and PruneSearchTokensOutsideTopTokensSet.
type Space struct {
	pool    *pool.Pool[Token]
	byState map[State]pool.Handle
	stateOf map[pool.Handle]State
	params  params.Params
}

// NewSpace builds an empty Space backed by a fresh token pool sized to
// p.TokenPoolCapacity.
func NewSpace(p params.Params) *Space {
	return &Space{
		pool:    pool.New[Token](int(p.TokenPoolCapacity)),
		byState: make(map[State]pool.Handle),
		stateOf: make(map[pool.Handle]State),
		params:  p,
	}
}

// Acquire reserves a pool slot, returning (InvalidHandle, nil) if the
// pool is exhausted (spec §7: PoolExhausted is recovered locally by
// the caller, never surfaced as an error).
func (s *Space) Acquire() (pool.Handle, *Token) {
	h := s.pool.Acquire()
	if h == pool.InvalidHandle {
		return h, nil
	}
	return h, s.pool.Get(h)
}

// Token dereferences a live handle.
func (s *Space) Token(h pool.Handle) *Token { return s.pool.Get(h) }

// Find returns the handle resident at state, if any.
func (s *Space) Find(state State) (pool.Handle, bool) {
	h, ok := s.byState[state]
	return h, ok
}

// Insert records that h is now the resident token for state. Callers
// are responsible for ensuring state was empty (the find-or-create
// contract in spec §4.6) or for having already removed the prior
// occupant.
func (s *Space) Insert(state State, h pool.Handle) {
	s.byState[state] = h
	s.stateOf[h] = state
}

// Len reports the number of tokens currently resident in the search
// space.
func (s *Space) Len() int { return len(s.stateOf) }

// Handles returns every handle currently resident, for callers (the
// result aggregator) that need to walk the full set.
func (s *Space) Handles() []pool.Handle {
	out := make([]pool.Handle, 0, len(s.stateOf))
	for h := range s.stateOf {
		out = append(out, h)
	}
	return out
}

func (s *Space) release(h pool.Handle) {
	if st, ok := s.stateOf[h]; ok {
		delete(s.byState, st)
		delete(s.stateOf, h)
	}
	s.pool.Release(h)
}

// SweepToIndex implements spec §4.5's sweep: any token whose next
// alignment matches index-1 but hasn't been advanced yet is advanced
// first; then every token whose current alignment isn't index-1 is
// dropped and released to the pool. Grounded on
// AdvanceToNextIndexAndReturnTopTokens's aging-out pass.
func (s *Space) SweepToIndex(index int) {
	for h := range s.stateOf {
		t := s.pool.Get(h)
		if t.Index() < index-1 && t.NextIndex() == index-1 {
			t.AdvanceToNextAlignment()
		}
	}
	for h := range s.stateOf {
		t := s.pool.Get(h)
		if t.Index() != index-1 {
			s.release(h)
		}
	}
}

// SelectTopByScore returns the subset of resident tokens whose total
// score meets the dynamic floor (spec §4.5): the greater of
// scoreFloorAbs and, when more than k tokens are resident, the k-th
// largest total score (index count-k of the ascending sort). Tokens
// tied with the floor are all kept. It also returns the best
// (maximum) total score among retained tokens, or -Inf if the space is
// empty.
func (s *Space) SelectTopByScore(k int, scoreFloorAbs float32) (top map[pool.Handle]bool, best float32) {
	best = negInf
	if len(s.stateOf) == 0 {
		return map[pool.Handle]bool{}, best
	}

	scores := make([]float32, 0, len(s.stateOf))
	for h := range s.stateOf {
		sc := s.pool.Get(h).TotalScore()
		scores = append(scores, sc)
		if sc > best {
			best = sc
		}
	}

	floor := scoreFloorAbs
	if len(scores) > k && k >= 0 {
		sort.Slice(scores, func(i, j int) bool { return scores[i] < scores[j] })
		nth := scores[len(scores)-k]
		if nth > floor {
			floor = nth
		}
	}

	top = make(map[pool.Handle]bool, len(s.stateOf))
	for h := range s.stateOf {
		if s.pool.Get(h).TotalScore() >= floor {
			top[h] = true
		}
	}
	return top, best
}

// PruneOutside drops the lowest-scoring half (kPruneRatio) of tokens
// NOT in top, but only when free capacity has fallen below
// kPruneWhenFreeRatioBelow; the top set is otherwise inviolable.
// Grounded on PruneSearchTokensOutsideTopTokensSet.
func (s *Space) PruneOutside(top map[pool.Handle]bool) {
	capacity := s.pool.Capacity()
	if capacity == 0 {
		return
	}
	if float32(s.pool.FreeCount()) >= float32(capacity)*s.params.PruneWhenFreeRatioBelow {
		return
	}

	scores := make([]float32, 0, len(s.stateOf))
	for h := range s.stateOf {
		if top[h] {
			continue
		}
		scores = append(scores, prunableScore(s.pool.Get(h)))
	}
	if len(scores) == 0 {
		return
	}

	pruneIndex := int(float32(len(scores)) * s.params.PruneRatio)
	if pruneIndex >= len(scores) {
		pruneIndex = len(scores) - 1
	}
	sort.Slice(scores, func(i, j int) bool { return scores[i] < scores[j] })
	pruneScore := scores[pruneIndex]

	for h := range s.stateOf {
		if top[h] {
			continue
		}
		if prunableScore(s.pool.Get(h)) < pruneScore {
			s.release(h)
		}
	}
}

func prunableScore(t *Token) float32 {
	if t.Next.Best() > negInf {
		return t.Next.Best()
	}
	return t.Cur.Best()
}

// AdvanceAll unconditionally replaces every resident token's current
// alignment with its next alignment, without dropping anything.
// Grounded on the unconditional "for every entry in search_space_:
// AdvanceToNextAlignment()" pass DecodeTouch runs once after the last
// touch index, which is what lets the Result Aggregator select exactly
// the tokens that were actually passed to index N-1.
func (s *Space) AdvanceAll() {
	for h := range s.stateOf {
		s.pool.Get(h).AdvanceToNextAlignment()
	}
}
