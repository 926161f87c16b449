package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/memgraph-go/memgraph/pkg/txn"
)

func newTestStore(t *testing.T) (*Store, *txn.Engine) {
	t.Helper()
	e := txn.NewEngine(nil)
	return NewStore(e), e
}

func TestCreateVertexVisibleToFreshReader(t *testing.T) {
	s, e := newTestStore(t)
	w, err := e.Begin()
	require.NoError(t, err)

	va := s.CreateVertex(w)
	require.NoError(t, e.Commit(w))

	r, err := e.Begin()
	require.NoError(t, err)
	reader := s.Vertex(r, va.Addr)
	require.True(t, reader.Fill())
	assert.True(t, reader.Isolated())
}

func TestAddLabelAndHasLabel(t *testing.T) {
	s, e := newTestStore(t)
	w, err := e.Begin()
	require.NoError(t, err)

	label := LabelID(s.Labels.Intern("Person"))
	va := s.CreateVertex(w)

	added, err := va.AddLabel(label)
	require.NoError(t, err)
	assert.True(t, added)
	assert.True(t, va.HasLabel(label))

	addedAgain, err := va.AddLabel(label)
	require.NoError(t, err)
	assert.False(t, addedAgain)
}

// TestConcurrentLabelAddOneWins implements scenario 1: two transactions
// both add the same label to the same vertex; exactly one commits and
// the other aborts with a serialization conflict, and a fresh reader
// sees the label regardless.
func TestConcurrentLabelAddOneWins(t *testing.T) {
	s, e := newTestStore(t)

	setup, err := e.Begin()
	require.NoError(t, err)
	label := LabelID(s.Labels.Intern("Person"))
	va := s.CreateVertex(setup)
	require.NoError(t, e.Commit(setup))

	t1, err := e.Begin()
	require.NoError(t, err)
	t2, err := e.Begin()
	require.NoError(t, err)

	v1 := s.Vertex(t1, va.Addr)
	v2 := s.Vertex(t2, va.Addr)

	_, err1 := v1.AddLabel(label)
	require.NoError(t, err1)
	require.NoError(t, e.Commit(t1))

	_, err2 := v2.AddLabel(label)

	assert.ErrorIs(t, err2, ErrSerializationConflict)
	require.NoError(t, e.Abort(t2))

	fresh, err := e.Begin()
	require.NoError(t, err)
	freshV := s.Vertex(fresh, va.Addr)
	require.True(t, freshV.Fill())
	assert.True(t, freshV.HasLabel(label))
}

// TestVertexRemoveCascadesEdges implements scenario 2: removing a
// vertex expires it and its incident edges, and detaches them from the
// opposite endpoint's adjacency.
func TestVertexRemoveCascadesEdges(t *testing.T) {
	s, e := newTestStore(t)

	setup, err := e.Begin()
	require.NoError(t, err)
	edgeType := EdgeTypeID(s.EdgeTypes.Intern("KNOWS"))
	u := s.CreateVertex(setup)
	v := s.CreateVertex(setup)
	edge, err := s.CreateEdge(setup, edgeType, u.Addr, v.Addr)
	require.NoError(t, err)
	require.NoError(t, e.Commit(setup))

	remover, err := e.Begin()
	require.NoError(t, err)
	uInTx := s.Vertex(remover, u.Addr)
	require.True(t, uInTx.Fill())
	require.NoError(t, uInTx.Remove())
	require.NoError(t, e.Commit(remover))

	fresh, err := e.Begin()
	require.NoError(t, err)

	freshU := s.Vertex(fresh, u.Addr)
	assert.False(t, freshU.Fill(), "removed vertex must be invisible")

	freshEdge := s.Edge(fresh, edge.Addr)
	assert.False(t, freshEdge.Fill(), "cascaded edge must be invisible")

	freshV := s.Vertex(fresh, v.Addr)
	require.True(t, freshV.Fill(), "the opposite endpoint survives")
	assert.Equal(t, 0, freshV.InDegree(), "the edge must be detached from the opposite endpoint's adjacency")
	assert.True(t, freshV.Isolated())
}

func TestInDegreeOutDegreeAndIsolated(t *testing.T) {
	s, e := newTestStore(t)
	w, err := e.Begin()
	require.NoError(t, err)

	edgeType := EdgeTypeID(s.EdgeTypes.Intern("LIKES"))
	u := s.CreateVertex(w)
	v := s.CreateVertex(w)
	_, err = s.CreateEdge(w, edgeType, u.Addr, v.Addr)
	require.NoError(t, err)
	require.NoError(t, e.Commit(w))

	r, err := e.Begin()
	require.NoError(t, err)
	ru := s.Vertex(r, u.Addr)
	rv := s.Vertex(r, v.Addr)
	require.True(t, ru.Fill())
	require.True(t, rv.Fill())

	assert.Equal(t, 1, ru.OutDegree())
	assert.Equal(t, 0, ru.InDegree())
	assert.False(t, ru.Isolated())

	assert.Equal(t, 0, rv.OutDegree())
	assert.Equal(t, 1, rv.InDegree())
}

func TestInContains(t *testing.T) {
	s, e := newTestStore(t)
	w, err := e.Begin()
	require.NoError(t, err)

	edgeType := EdgeTypeID(s.EdgeTypes.Intern("FOLLOWS"))
	u := s.CreateVertex(w)
	v := s.CreateVertex(w)
	edge, err := s.CreateEdge(w, edgeType, u.Addr, v.Addr)
	require.NoError(t, err)
	require.NoError(t, e.Commit(w))

	r, err := e.Begin()
	require.NoError(t, err)
	rv := s.Vertex(r, v.Addr)
	require.True(t, rv.Fill())
	assert.True(t, rv.InContains(s.Edge(r, edge.Addr)))
}

func TestVertexPropertyRoundTrip(t *testing.T) {
	s, e := newTestStore(t)
	w, err := e.Begin()
	require.NoError(t, err)

	key := PropertyID(s.Properties.Intern("age"))
	va := s.CreateVertex(w)
	require.NoError(t, va.SetProperty(key, Int(30)))

	got, ok := va.Property(key)
	require.True(t, ok)
	n, ok := got.AsInt()
	require.True(t, ok)
	assert.Equal(t, int64(30), n)

	require.NoError(t, va.RemoveProperty(key))
	_, ok = va.Property(key)
	assert.False(t, ok)
}
