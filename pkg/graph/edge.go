package graph

import "github.com/memgraph-go/memgraph/pkg/txn"

// EdgeAccessor is the edge counterpart of VertexAccessor: a
// transaction-scoped handle onto an edge's entity list.
type EdgeAccessor struct {
	store *Store
	tx    *txn.Transaction
	Addr  EdgeAddress

	cached EdgeData
	filled bool
}

func newEdgeAccessor(store *Store, tx *txn.Transaction, addr EdgeAddress) *EdgeAccessor {
	return &EdgeAccessor{store: store, tx: tx, Addr: addr}
}

// Fill resolves and caches the version of the edge currently visible
// to the accessor's transaction.
func (a *EdgeAccessor) Fill() bool {
	if a.Addr.IsRemote() {
		return false
	}
	el := a.Addr.Local()
	if el == nil {
		return false
	}
	data, ok := el.Read(a.tx, a.store.CommitLog())
	if !ok {
		return false
	}
	a.cached, a.filled = data, true
	return true
}

func (a *EdgeAccessor) ensureFilled() bool {
	if a.filled {
		return true
	}
	return a.Fill()
}

// Type returns the edge's relationship type.
func (a *EdgeAccessor) Type() EdgeTypeID {
	if !a.ensureFilled() {
		return 0
	}
	return a.cached.Type
}

// From returns an accessor for the edge's source vertex under the same
// transaction.
func (a *EdgeAccessor) From() *VertexAccessor {
	if !a.ensureFilled() {
		return newVertexAccessor(a.store, a.tx, VertexAddress{})
	}
	return newVertexAccessor(a.store, a.tx, a.cached.From)
}

// To returns an accessor for the edge's destination vertex under the
// same transaction.
func (a *EdgeAccessor) To() *VertexAccessor {
	if !a.ensureFilled() {
		return newVertexAccessor(a.store, a.tx, VertexAddress{})
	}
	return newVertexAccessor(a.store, a.tx, a.cached.To)
}

// Property returns the value stored under key on the visible version.
func (a *EdgeAccessor) Property(key PropertyID) (PropertyValue, bool) {
	if !a.ensureFilled() {
		return PropertyValue{}, false
	}
	v, ok := a.cached.Properties[key]
	return v, ok
}

// SetProperty sets key to val, allocating a new version.
func (a *EdgeAccessor) SetProperty(key PropertyID, val PropertyValue) error {
	newData, err := a.elist().Update(a.tx, a.store.CommitLog(), func(d EdgeData) EdgeData {
		nd := cloneEdgeData(d)
		nd.Properties[key] = val
		return nd
	})
	if err != nil {
		return err
	}
	a.cached, a.filled = newData, true
	return nil
}

// RemoveProperty deletes key from the edge's properties.
func (a *EdgeAccessor) RemoveProperty(key PropertyID) error {
	newData, err := a.elist().Update(a.tx, a.store.CommitLog(), func(d EdgeData) EdgeData {
		nd := cloneEdgeData(d)
		delete(nd.Properties, key)
		return nd
	})
	if err != nil {
		return err
	}
	a.cached, a.filled = newData, true
	return nil
}

// Remove expires the edge's visible version and detaches it from both
// endpoints' adjacency lists.
func (a *EdgeAccessor) Remove() error {
	if !a.ensureFilled() {
		return ErrNoVisibleVersion
	}
	from, to := a.cached.From, a.cached.To
	addr := a.Addr

	if err := a.elist().Remove(a.tx, a.store.CommitLog()); err != nil {
		return err
	}
	if !from.IsRemote() {
		_, _ = from.Local().Update(a.tx, a.store.CommitLog(), func(d VertexData) VertexData {
			nd := cloneVertexData(d)
			nd.Out = removeEdgeAddr(nd.Out, addr)
			return nd
		})
	}
	if !to.IsRemote() {
		_, _ = to.Local().Update(a.tx, a.store.CommitLog(), func(d VertexData) VertexData {
			nd := cloneVertexData(d)
			nd.In = removeEdgeAddr(nd.In, addr)
			return nd
		})
	}
	a.filled = false
	return nil
}

func (a *EdgeAccessor) elist() *EdgeList { return a.Addr.Local() }
