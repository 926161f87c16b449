package pool

import "testing"

func TestGetReturnsConstructedValueWhenEmpty(t *testing.T) {
	p := New(func() []int { return make([]int, 0, 4) })
	got := p.Get()
	if cap(got) != 4 {
		t.Fatalf("cap = %d, want 4", cap(got))
	}
}

func TestPutThenGetReusesValue(t *testing.T) {
	p := New(func() []int { return make([]int, 0, 4) })
	v := p.Get()
	v = append(v, 1, 2, 3)
	p.Put(v[:0])

	got := p.Get()
	if cap(got) < 4 {
		t.Fatalf("expected reused backing array with capacity >= 4, got %d", cap(got))
	}
}

func TestDisabledPoolAlwaysConstructs(t *testing.T) {
	calls := 0
	p := New(func() []int { calls++; return make([]int, 0, 2) })
	p.SetEnabled(false)

	p.Put(p.Get())
	p.Put(p.Get())

	if calls != 2 {
		t.Fatalf("constructor called %d times, want 2 (pooling disabled)", calls)
	}
}
