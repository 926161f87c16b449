package wal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecoverRebuildsCommitLogAndNextID(t *testing.T) {
	l := openTestLog(t)
	require.NoError(t, l.TxBegin(1))
	require.NoError(t, l.TxCommit(1))
	require.NoError(t, l.TxBegin(2))
	require.NoError(t, l.TxAbort(2))
	require.NoError(t, l.TxBegin(3))

	log, nextID, err := Recover(l)
	require.NoError(t, err)

	assert.True(t, log.IsCommitted(1))
	assert.True(t, log.IsAborted(2))
	// tx 3 began but never finalized: recovery treats it as aborted
	// rather than leaving it active forever.
	assert.True(t, log.IsAborted(3))
	assert.Equal(t, uint64(4), nextID)
}

func TestRecoverOnEmptyLog(t *testing.T) {
	l := openTestLog(t)
	log, nextID, err := Recover(l)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), nextID)
	assert.True(t, log.IsActive(1))
}
