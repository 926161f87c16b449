// Package graph is the versioned-record storage core: vertices and
// edges as MVCC entity lists, accessed through transaction-scoped
// accessors, indexed and interned by a Store.
package graph

import (
	"errors"
	"sync"

	"github.com/memgraph-go/memgraph/pkg/address"
	"github.com/memgraph-go/memgraph/pkg/commitlog"
	"github.com/memgraph-go/memgraph/pkg/iter"
	"github.com/memgraph-go/memgraph/pkg/pool"
	"github.com/memgraph-go/memgraph/pkg/txn"
)

// vertexSnapshotPool and edgeSnapshotPool hold the scratch slices
// Vertices/Edges copy the entity list into while holding the store's
// read lock. The buffer never escapes the call that borrows it, so
// it's a clean pooling target: full-graph scans are the one place
// this storage engine allocates on every call by construction.
var vertexSnapshotPool = pool.New(func() []*VertexList { return make([]*VertexList, 0, 64) })
var edgeSnapshotPool = pool.New(func() []*EdgeList { return make([]*EdgeList, 0, 64) })

// ErrRemoteUnavailable marks an Address that resolves to a worker this
// process cannot reach — this engine has no vertex/edge fetch RPC.
// CreateEdge returns it when either endpoint is remote. Accessors do
// not return it: Fill reports false for a remote address, and the
// vertex-removal cascade skips remote edges and remote endpoints.
var ErrRemoteUnavailable = errors.New("graph: remote vertex or edge unavailable")

// Store owns the label/edge-type/property-key dictionaries and the
// set of entity lists created on this worker. It is the glue between
// the transaction engine, the commit log, and the accessors callers
// actually manipulate.
type Store struct {
	engine txn.Source

	Labels     *Dictionary
	EdgeTypes  *Dictionary
	Properties *Dictionary

	mu       sync.RWMutex
	vertices []*VertexList
	edges    []*EdgeList
}

// NewStore builds an empty store backed by engine, which provides
// transaction ids and the commit log accessors consult for
// visibility.
func NewStore(engine txn.Source) *Store {
	return &Store{
		engine:     engine,
		Labels:     NewDictionary(),
		EdgeTypes:  NewDictionary(),
		Properties: NewDictionary(),
	}
}

// CommitLog exposes the engine's commit log, the one piece of engine
// state every accessor needs for visibility checks.
func (s *Store) CommitLog() *commitlog.Log { return s.engine.CommitLog() }

// CreateVertex allocates a new vertex visible only to tx until it
// commits.
func (s *Store) CreateVertex(tx *txn.Transaction) *VertexAccessor {
	vl := NewVList(tx, VertexData{
		Labels:     make(map[LabelID]struct{}),
		Properties: make(map[PropertyID]PropertyValue),
	})
	s.mu.Lock()
	s.vertices = append(s.vertices, vl)
	s.mu.Unlock()
	return newVertexAccessor(s, tx, address.Local(vl))
}

// CreateEdge allocates a new edge from `from` to `to` and links it into
// both endpoints' adjacency, all under tx. Returns ErrNoVisibleVersion
// if either endpoint is not visible to tx.
//
// If linking the second endpoint fails after the first succeeded, the
// half-linked edge is left in place rather than manually unwound: it
// was written under tx, so it is only ever visible to tx itself, and
// becomes invisible to every transaction the moment tx aborts — the
// same no-physical-rollback rule that governs every other mutation
// here.
func (s *Store) CreateEdge(tx *txn.Transaction, typ EdgeTypeID, from, to VertexAddress) (*EdgeAccessor, error) {
	if from.IsRemote() || to.IsRemote() {
		return nil, ErrRemoteUnavailable
	}
	if _, ok := from.Local().Read(tx, s.CommitLog()); !ok {
		return nil, ErrNoVisibleVersion
	}
	if _, ok := to.Local().Read(tx, s.CommitLog()); !ok {
		return nil, ErrNoVisibleVersion
	}

	el := NewVList(tx, EdgeData{
		Type:       typ,
		From:       from,
		To:         to,
		Properties: make(map[PropertyID]PropertyValue),
	})
	addr := address.Local(el)

	if _, err := from.Local().Update(tx, s.CommitLog(), func(d VertexData) VertexData {
		nd := cloneVertexData(d)
		nd.Out = append(nd.Out, addr)
		return nd
	}); err != nil {
		return nil, err
	}
	if _, err := to.Local().Update(tx, s.CommitLog(), func(d VertexData) VertexData {
		nd := cloneVertexData(d)
		nd.In = append(nd.In, addr)
		return nd
	}); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.edges = append(s.edges, el)
	s.mu.Unlock()

	return newEdgeAccessor(s, tx, addr), nil
}

// Vertex returns an accessor for addr under tx, unfilled.
func (s *Store) Vertex(tx *txn.Transaction, addr VertexAddress) *VertexAccessor {
	return newVertexAccessor(s, tx, addr)
}

// Edge returns an accessor for addr under tx, unfilled.
func (s *Store) Edge(tx *txn.Transaction, addr EdgeAddress) *EdgeAccessor {
	return newEdgeAccessor(s, tx, addr)
}

// Vertices returns an iterator over every vertex ever created on this
// worker, as unfilled accessors under tx. Compose with iter.Fill to
// drop vertices not visible to tx.
func (s *Store) Vertices(tx *txn.Transaction) iter.Iterator[*VertexAccessor] {
	buf := vertexSnapshotPool.Get()
	s.mu.RLock()
	buf = append(buf, s.vertices...)
	s.mu.RUnlock()

	out := make([]*VertexAccessor, len(buf))
	for i, vl := range buf {
		out[i] = newVertexAccessor(s, tx, address.Local(vl))
	}
	vertexSnapshotPool.Put(buf[:0])
	return iter.FromSlice(out)
}

// Edges returns an iterator over every edge ever created on this
// worker, as unfilled accessors under tx.
func (s *Store) Edges(tx *txn.Transaction) iter.Iterator[*EdgeAccessor] {
	buf := edgeSnapshotPool.Get()
	s.mu.RLock()
	buf = append(buf, s.edges...)
	s.mu.RUnlock()

	out := make([]*EdgeAccessor, len(buf))
	for i, el := range buf {
		out[i] = newEdgeAccessor(s, tx, address.Local(el))
	}
	edgeSnapshotPool.Put(buf[:0])
	return iter.FromSlice(out)
}

// expireEdgeAndDetach expires ea's visible version under tx, then
// removes ea from the adjacency of the vertex that endpoint(ea's data)
// names, via detach. Used by vertex removal cascades; a no-op if ea or
// its opposite endpoint is no longer visible, or lives on another
// worker this engine cannot reach.
func (s *Store) expireEdgeAndDetach(
	tx *txn.Transaction,
	ea EdgeAddress,
	endpoint func(EdgeData) VertexAddress,
	detach func(VertexData, EdgeAddress) VertexData,
) {
	if ea.IsRemote() {
		return
	}
	el := ea.Local()
	data, ok := el.Read(tx, s.CommitLog())
	if !ok {
		return
	}
	if err := el.Remove(tx, s.CommitLog()); err != nil {
		return
	}
	opp := endpoint(data)
	if opp.IsRemote() {
		return
	}
	vl := opp.Local()
	if vl == nil {
		return
	}
	_, _ = vl.Update(tx, s.CommitLog(), func(d VertexData) VertexData {
		return detach(d, ea)
	})
}
