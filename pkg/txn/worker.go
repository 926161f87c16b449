package txn

import (
	"context"
	"fmt"

	"github.com/memgraph-go/memgraph/internal/rpctransport"
	"github.com/memgraph-go/memgraph/pkg/commitlog"
)

// RemoteEngine is the worker-side view of the transaction id space: it
// never allocates an id itself, proxying every operation to the
// master over RPC. Its own commit log is a local cache — workers
// still need a fast, lock-free way to check a remote id's status
// without round-tripping for every record visibility check, so
// observed outcomes are mirrored into it as they're learned.
type RemoteEngine struct {
	client *rpctransport.EngineClient
	cache  *commitlog.Log
}

// NewRemoteEngine wraps an established RPC connection to the master.
func NewRemoteEngine(client *rpctransport.EngineClient) *RemoteEngine {
	return &RemoteEngine{client: client, cache: commitlog.New()}
}

// Begin asks the master for a new transaction id and snapshot.
func (r *RemoteEngine) Begin() (*Transaction, error) {
	reply, err := r.client.Begin(context.Background())
	if err != nil {
		return nil, fmt.Errorf("txn: remote begin: %w", err)
	}
	snapshot := make(map[ID]struct{}, len(reply.Snapshot))
	for _, id := range reply.Snapshot {
		snapshot[id] = struct{}{}
	}
	return newTransaction(reply.ID, snapshot), nil
}

// Commit asks the master to commit tx and mirrors the outcome locally.
func (r *RemoteEngine) Commit(tx *Transaction) error {
	if err := r.client.Commit(context.Background(), tx.ID); err != nil {
		return fmt.Errorf("txn: remote commit: %w", err)
	}
	r.cache.SetCommitted(tx.ID)
	tx.setStatus(Committed)
	return nil
}

// Abort asks the master to abort tx and mirrors the outcome locally.
func (r *RemoteEngine) Abort(tx *Transaction) error {
	if err := r.client.Abort(context.Background(), tx.ID); err != nil {
		return fmt.Errorf("txn: remote abort: %w", err)
	}
	r.cache.SetAborted(tx.ID)
	tx.setStatus(Aborted)
	return nil
}

// GlobalLast asks the master for the highest id ever issued.
func (r *RemoteEngine) GlobalLast() ID {
	reply, err := r.client.GlobalLast(context.Background())
	if err != nil {
		return 0
	}
	return reply.ID
}

// CommitLog returns the worker's local cache of observed outcomes. It
// is authoritative only for ids this worker has itself committed or
// aborted; every other id reads back Active.
func (r *RemoteEngine) CommitLog() *commitlog.Log { return r.cache }

// RefreshStatus round-trips a SnapshotOf call for id to the master and
// returns its error, if any; the master answers only for transactions
// it still tracks as begun and not yet finalized. The reply is
// discarded: the local cache is not updated.
func (r *RemoteEngine) RefreshStatus(id ID) error {
	reply, err := r.client.SnapshotOf(context.Background(), id)
	if err != nil {
		return fmt.Errorf("txn: remote status: %w", err)
	}
	_ = reply
	return nil
}

var _ Source = (*Engine)(nil)
var _ Source = (*RemoteEngine)(nil)
