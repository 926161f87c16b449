package wal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestLog(t *testing.T) *Log {
	t.Helper()
	l, err := Open(Options{InMemory: true})
	require.NoError(t, err)
	t.Cleanup(func() { _ = l.Close() })
	return l
}

func TestAppendAndReplayInOrder(t *testing.T) {
	l := openTestLog(t)
	require.NoError(t, l.TxBegin(1))
	require.NoError(t, l.TxBegin(2))
	require.NoError(t, l.TxCommit(1))
	require.NoError(t, l.TxAbort(2))

	var got []Record
	require.NoError(t, l.Replay(func(r Record) error {
		got = append(got, r)
		return nil
	}))

	require.Len(t, got, 4)
	assert.Equal(t, KindBegin, got[0].Kind)
	assert.Equal(t, uint64(1), got[0].TxID)
	assert.Equal(t, KindBegin, got[1].Kind)
	assert.Equal(t, uint64(2), got[1].TxID)
	assert.Equal(t, KindCommit, got[2].Kind)
	assert.Equal(t, KindAbort, got[3].Kind)
}

func TestReplayDetectsCorruption(t *testing.T) {
	raw := encodeRecord(KindCommit, 42)
	raw[len(raw)-1] ^= 0xFF
	_, err := decodeRecord(1, raw)
	assert.ErrorIs(t, err, ErrCorrupted)
}

func TestClosedLogRejectsAppends(t *testing.T) {
	l := openTestLog(t)
	require.NoError(t, l.Close())
	assert.ErrorIs(t, l.TxBegin(1), ErrClosed)
}

func TestSequenceIsMonotone(t *testing.T) {
	l := openTestLog(t)
	require.NoError(t, l.TxBegin(1))
	first := l.sequence.Load()
	require.NoError(t, l.TxBegin(2))
	assert.Greater(t, l.sequence.Load(), first)
}
