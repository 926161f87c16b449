package iter

// mapIter applies op to every item of an underlying iterator.
type mapIter[T, U any] struct {
	src Iterator[T]
	op  func(T) U
}

// Map returns an iterator that applies op to every item of it.
func Map[T, U any](it Iterator[T], op func(T) U) Iterator[U] {
	return &mapIter[T, U]{src: it, op: op}
}

func (m *mapIter[T, U]) Next() (U, bool) {
	v, ok := m.src.Next()
	if !ok {
		var zero U
		return zero, false
	}
	return m.op(v), true
}

func (m *mapIter[T, U]) Count() (int, int) { return m.src.Count() }

// filterIter yields only items for which pred holds.
type filterIter[T any] struct {
	src  Iterator[T]
	pred func(T) bool
}

// Filter returns an iterator over the items of it for which pred
// returns true.
func Filter[T any](it Iterator[T], pred func(T) bool) Iterator[T] {
	return &filterIter[T]{src: it, pred: pred}
}

func (f *filterIter[T]) Next() (T, bool) {
	for {
		v, ok := f.src.Next()
		if !ok {
			var zero T
			return zero, false
		}
		if f.pred(v) {
			return v, true
		}
	}
}

func (f *filterIter[T]) Count() (int, int) {
	_, upper := f.src.Count()
	return 0, upper
}

// flatMapIter expands every item of src into a sub-iterator and
// concatenates them.
type flatMapIter[T, U any] struct {
	src     Iterator[T]
	op      func(T) Iterator[U]
	current Iterator[U]
}

// FlatMap returns an iterator that expands each item of it via op and
// concatenates the results, matching the original algebra's out()
// (vertex -> its edges, flattened across every vertex in the source).
func FlatMap[T, U any](it Iterator[T], op func(T) Iterator[U]) Iterator[U] {
	return &flatMapIter[T, U]{src: it, op: op}
}

func (f *flatMapIter[T, U]) Next() (U, bool) {
	for {
		if f.current != nil {
			if v, ok := f.current.Next(); ok {
				return v, true
			}
			f.current = nil
		}
		v, ok := f.src.Next()
		if !ok {
			var zero U
			return zero, false
		}
		f.current = f.op(v)
	}
}

func (f *flatMapIter[T, U]) Count() (int, int) { return 0, Unbounded }

// inspectIter calls a side-effecting function on every item before
// passing it through unchanged.
type inspectIter[T any] struct {
	src Iterator[T]
	fn  func(T)
}

// Inspect calls fn on every item of it as it is pulled, then yields
// the item unchanged. Useful for clone_to-style "remember the last
// value seen" traversal debugging.
func Inspect[T any](it Iterator[T], fn func(T)) Iterator[T] {
	return &inspectIter[T]{src: it, fn: fn}
}

func (i *inspectIter[T]) Next() (T, bool) {
	v, ok := i.src.Next()
	if ok {
		i.fn(v)
	}
	return v, ok
}

func (i *inspectIter[T]) Count() (int, int) { return i.src.Count() }

// limitedMapIter yields, for each source item, whatever the supplier
// currently returns instead of the source item itself, stopping as
// soon as either the source or the supplier is exhausted.
type limitedMapIter[T, R any] struct {
	src      Iterator[T]
	supplier func() (R, bool)
}

// LimitedMap pulls one item from it per call, but yields whatever
// supplier currently produces (or stops if supplier is exhausted) —
// the primitive the original algebra's replace() is built on: replace
// every passing item with an item taken from a side sequence, as long
// as that side sequence still has one.
func LimitedMap[T, R any](it Iterator[T], supplier func() (R, bool)) Iterator[R] {
	return &limitedMapIter[T, R]{src: it, supplier: supplier}
}

func (l *limitedMapIter[T, R]) Next() (R, bool) {
	if _, ok := l.src.Next(); !ok {
		var zero R
		return zero, false
	}
	return l.supplier()
}

func (l *limitedMapIter[T, R]) Count() (int, int) {
	_, upper := l.src.Count()
	return 0, upper
}

// Replace yields, for every item of it, the single value in
// replacement — once. Once replacement has been consumed, or it is
// exhausted, iteration stops.
func Replace[T, R any](it Iterator[T], replacement R, has bool) Iterator[R] {
	used := false
	return LimitedMap[T, R](it, func() (R, bool) {
		if used || !has {
			var zero R
			return zero, false
		}
		used = true
		return replacement, true
	})
}
