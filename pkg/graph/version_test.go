package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/memgraph-go/memgraph/pkg/txn"
)

func newTestEngine(t *testing.T) *txn.Engine {
	t.Helper()
	return txn.NewEngine(nil)
}

func TestReadInvisibleBeforeCreatorCommits(t *testing.T) {
	e := newTestEngine(t)
	writer, err := e.Begin()
	require.NoError(t, err)
	reader, err := e.Begin()
	require.NoError(t, err)

	vl := NewVList(writer, 42)

	_, ok := vl.Read(reader, e.CommitLog())
	assert.False(t, ok, "reader began before writer committed, must not see the write")

	require.NoError(t, e.Commit(writer))

	_, ok = vl.Read(reader, e.CommitLog())
	assert.False(t, ok, "reader's snapshot predates writer, commit afterwards changes nothing for it")

	late, err := e.Begin()
	require.NoError(t, err)
	val, ok := vl.Read(late, e.CommitLog())
	require.True(t, ok)
	assert.Equal(t, 42, val)
}

func TestSameTransactionSeesOwnWrite(t *testing.T) {
	e := newTestEngine(t)
	w, err := e.Begin()
	require.NoError(t, err)
	vl := NewVList(w, "a")

	val, ok := vl.Read(w, e.CommitLog())
	require.True(t, ok)
	assert.Equal(t, "a", val)
}

func TestUpdateInPlaceWithinSameTransaction(t *testing.T) {
	e := newTestEngine(t)
	w, err := e.Begin()
	require.NoError(t, err)
	vl := NewVList(w, 1)

	_, err = vl.Update(w, e.CommitLog(), func(n int) int { return n + 1 })
	require.NoError(t, err)
	_, err = vl.Update(w, e.CommitLog(), func(n int) int { return n + 1 })
	require.NoError(t, err)

	val, ok := vl.Read(w, e.CommitLog())
	require.True(t, ok)
	assert.Equal(t, 3, val)
}

func TestUpdateByLaterTransactionAllocatesNewVersion(t *testing.T) {
	e := newTestEngine(t)
	w1, err := e.Begin()
	require.NoError(t, err)
	vl := NewVList(w1, 1)
	require.NoError(t, e.Commit(w1))

	w2, err := e.Begin()
	require.NoError(t, err)
	newVal, err := vl.Update(w2, e.CommitLog(), func(n int) int { return n + 10 })
	require.NoError(t, err)
	assert.Equal(t, 11, newVal)

	// w2 hasn't committed: a fresh reader still sees the old version.
	r, err := e.Begin()
	require.NoError(t, err)
	val, ok := vl.Read(r, e.CommitLog())
	require.True(t, ok)
	assert.Equal(t, 1, val)

	require.NoError(t, e.Commit(w2))

	r2, err := e.Begin()
	require.NoError(t, err)
	val, ok = vl.Read(r2, e.CommitLog())
	require.True(t, ok)
	assert.Equal(t, 11, val)
}

func TestConcurrentUpdateConflict(t *testing.T) {
	e := newTestEngine(t)
	w0, err := e.Begin()
	require.NoError(t, err)
	vl := NewVList(w0, 0)
	require.NoError(t, e.Commit(w0))

	t1, err := e.Begin()
	require.NoError(t, err)
	t2, err := e.Begin()
	require.NoError(t, err)

	_, err = vl.Update(t1, e.CommitLog(), func(n int) int { return n + 1 })
	require.NoError(t, err)
	require.NoError(t, e.Commit(t1))

	_, err = vl.Update(t2, e.CommitLog(), func(n int) int { return n + 100 })
	assert.ErrorIs(t, err, ErrSerializationConflict)
}

func TestRemoveThenReadInvisible(t *testing.T) {
	e := newTestEngine(t)
	w, err := e.Begin()
	require.NoError(t, err)
	vl := NewVList(w, "x")
	require.NoError(t, e.Commit(w))

	remover, err := e.Begin()
	require.NoError(t, err)
	require.NoError(t, vl.Remove(remover, e.CommitLog()))

	// still visible to remover itself until expiration kicks in... but
	// per the visibility rule, remover set tx_expiring = remover.ID,
	// which makes expiringVisible false for remover (not unset, not
	// aborted, not > remover.ID, not in remover's own snapshot).
	_, ok := vl.Read(remover, e.CommitLog())
	assert.False(t, ok)

	require.NoError(t, e.Commit(remover))

	fresh, err := e.Begin()
	require.NoError(t, err)
	_, ok = vl.Read(fresh, e.CommitLog())
	assert.False(t, ok)
}

func TestRemoveOnAbortedExpirerStillVisible(t *testing.T) {
	e := newTestEngine(t)
	w, err := e.Begin()
	require.NoError(t, err)
	vl := NewVList(w, "x")
	require.NoError(t, e.Commit(w))

	remover, err := e.Begin()
	require.NoError(t, err)
	require.NoError(t, vl.Remove(remover, e.CommitLog()))
	require.NoError(t, e.Abort(remover))

	fresh, err := e.Begin()
	require.NoError(t, err)
	val, ok := vl.Read(fresh, e.CommitLog())
	require.True(t, ok)
	assert.Equal(t, "x", val)
}

func TestGCUnlinksOldExpiredVersions(t *testing.T) {
	e := newTestEngine(t)
	w0, err := e.Begin()
	require.NoError(t, err)
	vl := NewVList(w0, 1)
	require.NoError(t, e.Commit(w0))

	w1, err := e.Begin()
	require.NoError(t, err)
	_, err = vl.Update(w1, e.CommitLog(), func(n int) int { return n + 1 })
	require.NoError(t, err)
	require.NoError(t, e.Commit(w1))

	vl.GC(e.GlobalLast()+1, e.CommitLog())

	head := vl.head.Load()
	assert.Nil(t, head.next, "the only remaining version's expired predecessor should have been unlinked")
}
