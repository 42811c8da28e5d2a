package decoder

// WordHistory interns term sequences to stable ids via linear-scan
// equality, mirroring the original decoder's GetOrAddWordHistory. The
// single-term core (spec §1 scope) only ever looks up the sentinel "no
// history" id; this stays around as the correct behavior for that one
// case, and for the multi-term growth SPEC_FULL.md's supplemented
// feature 4 calls out.
type WordHistory struct {
	sequences [][]string
}

// NewWordHistory creates an empty WordHistory table.
func NewWordHistory() *WordHistory {
	return &WordHistory{}
}

// NoHistory is the sentinel id for "no preceding terms".
const NoHistory int32 = -1

// GetOrAdd returns the id for terms, creating one if this exact
// sequence hasn't been interned before.
func (w *WordHistory) GetOrAdd(terms []string) int32 {
	if len(terms) == 0 {
		return NoHistory
	}
	for i, existing := range w.sequences {
		if stringsEqual(existing, terms) {
			return int32(i)
		}
	}
	w.sequences = append(w.sequences, append([]string(nil), terms...))
	return int32(len(w.sequences) - 1)
}

// Terms returns the term sequence interned under id, or nil if id is
// NoHistory or out of range.
func (w *WordHistory) Terms(id int32) []string {
	if id < 0 || int(id) >= len(w.sequences) {
		return nil
	}
	return w.sequences[id]
}

func stringsEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
