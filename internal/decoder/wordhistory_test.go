package decoder

import "testing"

func TestGetOrAddWordHistoryEmptyIsNoHistory(t *testing.T) {
	w := NewWordHistory()
	if id := w.GetOrAdd(nil); id != NoHistory {
		t.Errorf("GetOrAdd(nil) = %d, want %d", id, NoHistory)
	}
}

func TestGetOrAddWordHistoryDedupesIdenticalSequences(t *testing.T) {
	w := NewWordHistory()
	a := w.GetOrAdd([]string{"the", "cat"})
	b := w.GetOrAdd([]string{"the", "cat"})
	if a != b {
		t.Errorf("GetOrAdd() = %d then %d, want same id for identical sequences", a, b)
	}
}

func TestGetOrAddWordHistoryDistinguishesSequences(t *testing.T) {
	w := NewWordHistory()
	a := w.GetOrAdd([]string{"the", "cat"})
	b := w.GetOrAdd([]string{"the", "dog"})
	if a == b {
		t.Error("GetOrAdd() returned the same id for different sequences")
	}
}

func TestTermsRoundTrips(t *testing.T) {
	w := NewWordHistory()
	id := w.GetOrAdd([]string{"a", "b", "c"})
	got := w.Terms(id)
	if len(got) != 3 || got[0] != "a" || got[1] != "b" || got[2] != "c" {
		t.Errorf("Terms(%d) = %v, want [a b c]", id, got)
	}
}

func TestTermsOutOfRangeReturnsNil(t *testing.T) {
	w := NewWordHistory()
	if got := w.Terms(NoHistory); got != nil {
		t.Errorf("Terms(NoHistory) = %v, want nil", got)
	}
	if got := w.Terms(99); got != nil {
		t.Errorf("Terms(99) = %v, want nil", got)
	}
}
