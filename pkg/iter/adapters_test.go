package iter

import "testing"

func TestMap(t *testing.T) {
	it := Map(FromSlice([]int{1, 2, 3}), func(n int) int { return n * 2 })
	got := Collect(it)
	want := []int{2, 4, 6}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestFilter(t *testing.T) {
	it := Filter(FromSlice([]int{1, 2, 3, 4, 5}), func(n int) bool { return n%2 == 0 })
	got := Collect(it)
	if len(got) != 2 || got[0] != 2 || got[1] != 4 {
		t.Fatalf("got %v", got)
	}
}

func TestFlatMap(t *testing.T) {
	it := FlatMap(FromSlice([]int{1, 2, 3}), func(n int) Iterator[int] {
		return FromSlice([]int{n, n * 10})
	})
	got := Collect(it)
	want := []int{1, 10, 2, 20, 3, 30}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestFlatMapEmptySubsequences(t *testing.T) {
	it := FlatMap(FromSlice([]int{1, 2, 3}), func(n int) Iterator[int] {
		if n == 2 {
			return FromSlice[int](nil)
		}
		return FromSlice([]int{n})
	})
	got := Collect(it)
	if len(got) != 2 || got[0] != 1 || got[1] != 3 {
		t.Fatalf("got %v", got)
	}
}

func TestInspect(t *testing.T) {
	var seen []int
	it := Inspect(FromSlice([]int{1, 2, 3}), func(n int) { seen = append(seen, n) })
	got := Collect(it)
	if len(got) != 3 || len(seen) != 3 {
		t.Fatalf("got %v, seen %v", got, seen)
	}
	for i := range got {
		if got[i] != seen[i] {
			t.Fatalf("inspect mutated the stream: got %v, seen %v", got, seen)
		}
	}
}

func TestLimitedMapStopsWhenSupplierExhausts(t *testing.T) {
	side := []string{"a", "b"}
	i := 0
	it := LimitedMap(FromSlice([]int{1, 2, 3, 4}), func() (string, bool) {
		if i >= len(side) {
			return "", false
		}
		v := side[i]
		i++
		return v, true
	})
	got := Collect(it)
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Fatalf("got %v", got)
	}
}

func TestReplaceYieldsOnceThenStops(t *testing.T) {
	it := Replace[int, string](FromSlice([]int{1, 2, 3}), "x", true)
	got := Collect(it)
	if len(got) != 1 || got[0] != "x" {
		t.Fatalf("got %v, want [x]", got)
	}
}

func TestReplaceWithNoValueYieldsNothing(t *testing.T) {
	it := Replace[int, string](FromSlice([]int{1, 2, 3}), "x", false)
	got := Collect(it)
	if len(got) != 0 {
		t.Fatalf("got %v, want empty", got)
	}
}

func TestComposedPipeline(t *testing.T) {
	it := Map(
		Filter(FromSlice([]int{1, 2, 3, 4, 5, 6}), func(n int) bool { return n%2 == 0 }),
		func(n int) int { return n * n },
	)
	got := Collect(it)
	want := []int{4, 16, 36}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}
