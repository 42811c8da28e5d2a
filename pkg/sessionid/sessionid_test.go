package sessionid

import "testing"

func TestNextIsMonotonicallyIncreasing(t *testing.T) {
	s := New()
	a := s.Next()
	b := s.Next()
	if a >= b {
		t.Errorf("Next() = %q then %q, want strictly increasing ids", a, b)
	}
}

func TestNextIsNonEmpty(t *testing.T) {
	s := New()
	if id := s.Next(); id == "" {
		t.Error("Next() returned an empty id")
	}
}
