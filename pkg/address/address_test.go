package address

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type dummy struct{ n int }

func TestLocalRoundTrip(t *testing.T) {
	d := &dummy{n: 7}
	a := Local(d)
	assert.True(t, a.IsLocal())
	assert.False(t, a.IsRemote())
	assert.Same(t, d, a.Local())
}

func TestRemoteRoundTrip(t *testing.T) {
	a := Remote[dummy](1, 1023)
	assert.True(t, a.IsRemote())
	assert.EqualValues(t, 1, a.GlobalID())
	assert.EqualValues(t, 1023, a.WorkerID())
}

func TestRemotePacking(t *testing.T) {
	// worker-id width W=10: a remote address with the maximum worker id
	// and a small global id round-trips exactly.
	a := Remote[dummy](1, 1023)
	require.True(t, a.IsRemote())
	assert.Equal(t, uint64(1), a.GlobalID())
	assert.Equal(t, 1023, a.WorkerID())
}

func TestRemoteRejectsOutOfRangeWorker(t *testing.T) {
	assert.Panics(t, func() { Remote[dummy](0, maxWorkerID+1) })
}

func TestRemoteRejectsOutOfRangeGlobalID(t *testing.T) {
	assert.Panics(t, func() { Remote[dummy](maxGlobalID+1, 0) })
}

func TestEqualDistinguishesLocalAndRemote(t *testing.T) {
	d := &dummy{}
	local := Local(d)
	remote := Remote[dummy](0, 0)
	assert.False(t, local.Equal(remote))
	assert.True(t, local.Equal(Local(d)))
	assert.True(t, remote.Equal(Remote[dummy](0, 0)))
	assert.False(t, remote.Equal(Remote[dummy](1, 0)))
}

func TestLocalNilAllowed(t *testing.T) {
	var a Address[dummy]
	assert.True(t, a.IsLocal())
	assert.Nil(t, a.Local())
}
