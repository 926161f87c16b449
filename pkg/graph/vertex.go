package graph

import (
	"github.com/memgraph-go/memgraph/pkg/iter"
	"github.com/memgraph-go/memgraph/pkg/txn"
)

// VertexAccessor is a lightweight, transaction-scoped handle onto a
// vertex's entity list: the address, the transaction under whose eyes
// it is being read or mutated, and whatever version Fill last
// resolved. It carries no lock of its own — the VList's per-entity
// mutex serializes concurrent mutators, and MVCC visibility serializes
// concurrent readers against them.
type VertexAccessor struct {
	store *Store
	tx    *txn.Transaction
	Addr  VertexAddress

	cached VertexData
	filled bool
}

func newVertexAccessor(store *Store, tx *txn.Transaction, addr VertexAddress) *VertexAccessor {
	return &VertexAccessor{store: store, tx: tx, Addr: addr}
}

// Fill resolves and caches the version of the vertex currently visible
// to the accessor's transaction. It returns false (and filters the
// accessor out of iterator pipelines via iter.Fill) if the vertex is
// remote — cross-worker vertex resolution has no RPC surface in this
// engine — or if no version is visible.
func (a *VertexAccessor) Fill() bool {
	if a.Addr.IsRemote() {
		return false
	}
	vl := a.Addr.Local()
	if vl == nil {
		return false
	}
	data, ok := vl.Read(a.tx, a.store.CommitLog())
	if !ok {
		return false
	}
	a.cached, a.filled = data, true
	return true
}

func (a *VertexAccessor) ensureFilled() bool {
	if a.filled {
		return true
	}
	return a.Fill()
}

// HasLabel reports whether the visible version carries label.
func (a *VertexAccessor) HasLabel(label LabelID) bool {
	if !a.ensureFilled() {
		return false
	}
	_, ok := a.cached.Labels[label]
	return ok
}

// Labels returns every label on the visible version.
func (a *VertexAccessor) Labels() []LabelID {
	if !a.ensureFilled() {
		return nil
	}
	out := make([]LabelID, 0, len(a.cached.Labels))
	for l := range a.cached.Labels {
		out = append(out, l)
	}
	return out
}

// AddLabel adds label to the vertex, allocating a new version under
// copy-on-write. It returns whether the label was newly added (false
// if the vertex already carried it).
func (a *VertexAccessor) AddLabel(label LabelID) (bool, error) {
	added := false
	newData, err := a.vlist().Update(a.tx, a.store.CommitLog(), func(d VertexData) VertexData {
		nd := cloneVertexData(d)
		if _, exists := nd.Labels[label]; !exists {
			nd.Labels[label] = struct{}{}
			added = true
		}
		return nd
	})
	if err != nil {
		return false, err
	}
	a.cached, a.filled = newData, true
	return added, nil
}

// RemoveLabel removes label from the vertex. It returns whether the
// label was present.
func (a *VertexAccessor) RemoveLabel(label LabelID) (bool, error) {
	removed := false
	newData, err := a.vlist().Update(a.tx, a.store.CommitLog(), func(d VertexData) VertexData {
		nd := cloneVertexData(d)
		if _, exists := nd.Labels[label]; exists {
			delete(nd.Labels, label)
			removed = true
		}
		return nd
	})
	if err != nil {
		return false, err
	}
	a.cached, a.filled = newData, true
	return removed, nil
}

// Property returns the value stored under key on the visible version.
func (a *VertexAccessor) Property(key PropertyID) (PropertyValue, bool) {
	if !a.ensureFilled() {
		return PropertyValue{}, false
	}
	v, ok := a.cached.Properties[key]
	return v, ok
}

// SetProperty sets key to val, allocating a new version.
func (a *VertexAccessor) SetProperty(key PropertyID, val PropertyValue) error {
	newData, err := a.vlist().Update(a.tx, a.store.CommitLog(), func(d VertexData) VertexData {
		nd := cloneVertexData(d)
		nd.Properties[key] = val
		return nd
	})
	if err != nil {
		return err
	}
	a.cached, a.filled = newData, true
	return nil
}

// RemoveProperty deletes key from the vertex's properties.
func (a *VertexAccessor) RemoveProperty(key PropertyID) error {
	newData, err := a.vlist().Update(a.tx, a.store.CommitLog(), func(d VertexData) VertexData {
		nd := cloneVertexData(d)
		delete(nd.Properties, key)
		return nd
	})
	if err != nil {
		return err
	}
	a.cached, a.filled = newData, true
	return nil
}

// OutDegree returns the number of outgoing edges on the visible version.
func (a *VertexAccessor) OutDegree() int {
	if !a.ensureFilled() {
		return 0
	}
	return len(a.cached.Out)
}

// InDegree returns the number of incoming edges on the visible version.
func (a *VertexAccessor) InDegree() int {
	if !a.ensureFilled() {
		return 0
	}
	return len(a.cached.In)
}

// Degree returns InDegree + OutDegree.
func (a *VertexAccessor) Degree() int { return a.InDegree() + a.OutDegree() }

// Isolated reports whether the vertex has no incident edges.
func (a *VertexAccessor) Isolated() bool { return a.Degree() == 0 }

// InContains reports whether edge is present in this vertex's incoming
// adjacency.
func (a *VertexAccessor) InContains(edge *EdgeAccessor) bool {
	if !a.ensureFilled() {
		return false
	}
	for _, e := range a.cached.In {
		if e.Equal(edge.Addr) {
			return true
		}
	}
	return false
}

// Out returns an iterator over the vertex's outgoing edge accessors,
// unfilled — callers compose with iter.Fill to drop edges that are no
// longer visible.
func (a *VertexAccessor) Out() iter.Iterator[*EdgeAccessor] {
	if !a.ensureFilled() {
		return iter.FromSlice[*EdgeAccessor](nil)
	}
	addrs := a.cached.Out
	accessors := make([]*EdgeAccessor, len(addrs))
	for i, addr := range addrs {
		accessors[i] = newEdgeAccessor(a.store, a.tx, addr)
	}
	return iter.FromSlice(accessors)
}

// In returns an iterator over the vertex's incoming edge accessors,
// unfilled.
func (a *VertexAccessor) In() iter.Iterator[*EdgeAccessor] {
	if !a.ensureFilled() {
		return iter.FromSlice[*EdgeAccessor](nil)
	}
	addrs := a.cached.In
	accessors := make([]*EdgeAccessor, len(addrs))
	for i, addr := range addrs {
		accessors[i] = newEdgeAccessor(a.store, a.tx, addr)
	}
	return iter.FromSlice(accessors)
}

// Remove expires the vertex's visible version and cascades: every edge
// in its current Out and In adjacency is itself expired, and removed
// from the opposite endpoint's adjacency (fetched via that edge's
// stored Address). All of this happens under the accessor's own
// transaction, so a concurrent reader either sees the whole graph
// before the removal or the whole graph after it, never a half-cut
// edge.
func (a *VertexAccessor) Remove() error {
	if !a.ensureFilled() {
		return ErrNoVisibleVersion
	}
	out := append([]EdgeAddress(nil), a.cached.Out...)
	in := append([]EdgeAddress(nil), a.cached.In...)

	if err := a.vlist().Remove(a.tx, a.store.CommitLog()); err != nil {
		return err
	}

	for _, ea := range out {
		a.store.expireEdgeAndDetach(a.tx, ea,
			func(d EdgeData) VertexAddress { return d.To },
			func(d VertexData, target EdgeAddress) VertexData {
				nd := cloneVertexData(d)
				nd.In = removeEdgeAddr(nd.In, target)
				return nd
			})
	}
	for _, ea := range in {
		a.store.expireEdgeAndDetach(a.tx, ea,
			func(d EdgeData) VertexAddress { return d.From },
			func(d VertexData, target EdgeAddress) VertexData {
				nd := cloneVertexData(d)
				nd.Out = removeEdgeAddr(nd.Out, target)
				return nd
			})
	}

	a.filled = false
	return nil
}

func (a *VertexAccessor) vlist() *VertexList { return a.Addr.Local() }

func removeEdgeAddr(list []EdgeAddress, target EdgeAddress) []EdgeAddress {
	out := make([]EdgeAddress, 0, len(list))
	for _, e := range list {
		if !e.Equal(target) {
			out = append(out, e)
		}
	}
	return out
}
