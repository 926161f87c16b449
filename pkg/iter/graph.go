package iter

// The adapters in this file are the graph-specialized surface the
// iterator algebra exposes to query evaluation. They are written
// against small structural interfaces rather than concrete accessor
// types so this package never has to import the graph package —
// graph.VertexAccessor and graph.EdgeAccessor satisfy these interfaces
// implicitly.

// Fillable is satisfied by any accessor whose Fill resolves (and
// caches) the currently-visible version, returning false if none
// exists.
type Fillable interface {
	Fill() bool
}

// Fill drops every accessor from it whose visible version does not
// exist.
func Fill[T Fillable](it Iterator[T]) Iterator[T] {
	return Filter(it, func(a T) bool { return a.Fill() })
}

// EdgeEndpoints is satisfied by an edge accessor that can resolve its
// endpoint vertex accessors.
type EdgeEndpoints[V any] interface {
	To() V
	From() V
}

// To maps an edge iterator to its "to" endpoint, dropping accessors
// that don't resolve.
func To[E EdgeEndpoints[V], V Fillable](it Iterator[E]) Iterator[V] {
	return Fill(Map(it, func(e E) V { return e.To() }))
}

// From maps an edge iterator to its "from" endpoint, dropping
// accessors that don't resolve.
func From[E EdgeEndpoints[V], V Fillable](it Iterator[E]) Iterator[V] {
	return Fill(Map(it, func(e E) V { return e.From() }))
}

// HasOut is satisfied by a vertex accessor that can enumerate its
// outgoing edges as an iterator.
type HasOut[E any] interface {
	Out() Iterator[E]
}

// Out flat-maps a vertex iterator into the concatenation of every
// vertex's outgoing, filled edge accessors.
func Out[V HasOut[E], E Fillable](it Iterator[V]) Iterator[E] {
	return FlatMap(it, func(v V) Iterator[E] { return Fill(v.Out()) })
}

// Labeled is satisfied by a vertex accessor that can test for label
// membership.
type Labeled[L any] interface {
	HasLabel(label L) bool
}

// Label filters a vertex iterator down to accessors carrying label.
func Label[V Labeled[L], L any](it Iterator[V], label L) Iterator[V] {
	return Filter(it, func(v V) bool { return v.HasLabel(label) })
}

// Typed is satisfied by an edge accessor exposing its relationship type.
type Typed[Ty comparable] interface {
	Type() Ty
}

// Type filters an edge iterator down to accessors of the given type.
func Type[E Typed[Ty], Ty comparable](it Iterator[E], t Ty) Iterator[E] {
	return Filter(it, func(e E) bool { return e.Type() == t })
}

// PropertyHolder is satisfied by any accessor exposing a property
// lookup by key.
type PropertyHolder[K any, P comparable] interface {
	Property(key K) (P, bool)
}

// HasProperty filters an iterator down to accessors whose property at
// key equals want.
func HasProperty[A PropertyHolder[K, P], K any, P comparable](it Iterator[A], key K, want P) Iterator[A] {
	return Filter(it, func(a A) bool {
		got, ok := a.Property(key)
		return ok && got == want
	})
}

// Isolatable is satisfied by a vertex accessor that knows whether it
// has zero incident edges.
type Isolatable interface {
	Isolated() bool
}

// Isolated filters a vertex iterator down to accessors with no
// incident edges.
func Isolated[V Isolatable](it Iterator[V]) Iterator[V] {
	return Filter(it, func(v V) bool { return v.Isolated() })
}

// FromLabel filters an edge iterator down to edges whose "from"
// endpoint carries label. Callers that also need missing endpoints
// dropped should run Fill over the edge source first.
func FromLabel[E EdgeEndpoints[V], V Labeled[L], L any](it Iterator[E], label L) Iterator[E] {
	return Filter(it, func(e E) bool { return e.From().HasLabel(label) })
}
