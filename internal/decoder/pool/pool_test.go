package pool

import "testing"

func TestAcquireExhaustsAtCapacity(t *testing.T) {
	p := New[int](2)
	h1 := p.Acquire()
	h2 := p.Acquire()
	if h1 == InvalidHandle || h2 == InvalidHandle {
		t.Fatalf("expected two valid handles, got %v %v", h1, h2)
	}
	if h3 := p.Acquire(); h3 != InvalidHandle {
		t.Errorf("Acquire() at capacity = %v, want InvalidHandle", h3)
	}
	if p.FreeCount() != 0 {
		t.Errorf("FreeCount() = %d, want 0", p.FreeCount())
	}
}

func TestReleaseReturnsSlotToFreeList(t *testing.T) {
	p := New[int](1)
	h := p.Acquire()
	*p.Get(h) = 42
	p.Release(h)
	if p.FreeCount() != 1 {
		t.Errorf("FreeCount() after release = %d, want 1", p.FreeCount())
	}
	h2 := p.Acquire()
	if h2 != h {
		t.Errorf("Acquire() after release = %v, want reused handle %v", h2, h)
	}
}

func TestGetOnReleasedHandlePanics(t *testing.T) {
	p := New[int](1)
	h := p.Acquire()
	p.Release(h)
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic dereferencing released handle")
		}
	}()
	p.Get(h)
}

func TestCapacityAndFreeCount(t *testing.T) {
	p := New[int](5)
	if p.Capacity() != 5 {
		t.Errorf("Capacity() = %d, want 5", p.Capacity())
	}
	p.Acquire()
	p.Acquire()
	if p.FreeCount() != 3 {
		t.Errorf("FreeCount() = %d, want 3", p.FreeCount())
	}
}
