package txn

import (
	"errors"
	"sync"

	"github.com/memgraph-go/memgraph/pkg/commitlog"
)

// ErrTransactionNotActive is returned by Commit/Abort when the
// transaction has already been finalized by a previous call. The
// commit log itself cannot detect a double-finalize (see
// commitlog.Log); the engine catches the common case of the same
// *Transaction value being finalized twice.
var ErrTransactionNotActive = errors.New("txn: transaction is not active")

// WAL is the durability collaborator the engine appends Begin/Commit/
// Abort records to while still holding its internal lock, so recovery
// always sees a prefix-consistent log. A nil WAL disables durability.
type WAL interface {
	TxBegin(id ID) error
	TxCommit(id ID) error
	TxAbort(id ID) error
}

// Source is the interface both the single-node Engine and a worker's
// RemoteEngine (which proxies every call to the master over RPC)
// satisfy, so that callers (accessors, the Bolt gateway) don't care
// which role the process plays. Snapshot() and GlobalLast() are
// engine-wide introspection and are not part of this interface:
// RemoteEngine offers GlobalLast (one RPC to the master) but no
// engine-wide Snapshot (a worker learns its own transaction's snapshot
// once, at Begin time).
type Source interface {
	Begin() (*Transaction, error)
	Commit(tx *Transaction) error
	Abort(tx *Transaction) error
	CommitLog() *commitlog.Log
}

// Metrics is the optional operational-counter sink Begin/Commit/Abort
// report to. A nil Engine.metrics disables reporting entirely; callers
// that do want it pass something satisfying this interface, typically
// a *statsd.Client, without this package importing statsd itself.
type Metrics interface {
	Incr(name string)
}

// Engine is the single-node, authoritative transaction id issuer. A
// single coarse mutex protects (active set, id counter, WAL append
// ordering); the commit log itself is lock-free and is read outside
// this lock by snapshots and by record visibility checks elsewhere in
// the storage engine. The critical section here is tiny — increment,
// set-insert, optional WAL append — so one mutex is the right call
// until a benchmark says otherwise.
type Engine struct {
	mu      sync.Mutex
	nextID  ID
	active  map[ID]struct{}
	log     *commitlog.Log
	wal     WAL
	metrics Metrics
}

// SetMetrics installs the counter sink used for Begin/Commit/Abort
// reporting. Passing nil disables it.
func (e *Engine) SetMetrics(m Metrics) { e.metrics = m }

func (e *Engine) incr(name string) {
	if e.metrics != nil {
		e.metrics.Incr(name)
	}
}

// NewEngine constructs a single-node transaction engine. wal may be
// nil to disable durability.
func NewEngine(wal WAL) *Engine {
	return &Engine{
		nextID: 1,
		active: make(map[ID]struct{}),
		log:    commitlog.New(),
		wal:    wal,
	}
}

// NewRecoveredEngine constructs an engine seeded from a prior WAL
// replay: log already carries every committed/aborted id up to the
// last synced record, and nextID is the first id this process is
// allowed to hand out. Callers get this pair from a WAL's own recovery
// helper rather than building it by hand.
func NewRecoveredEngine(wal WAL, log *commitlog.Log, nextID ID) *Engine {
	return &Engine{
		nextID: nextID,
		active: make(map[ID]struct{}),
		log:    log,
		wal:    wal,
	}
}

// Begin allocates the next id, captures a snapshot of the currently
// active set, marks the new id active in the commit log (implicitly,
// by leaving its bits zero), and — if a WAL is configured — appends a
// Begin record atomically with id allocation.
func (e *Engine) Begin() (*Transaction, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	id := e.nextID
	e.nextID++

	snapshot := make(map[ID]struct{}, len(e.active))
	for activeID := range e.active {
		snapshot[activeID] = struct{}{}
	}
	e.active[id] = struct{}{}

	if e.wal != nil {
		if err := e.wal.TxBegin(id); err != nil {
			delete(e.active, id)
			return nil, err
		}
	}

	e.incr("txn.begin")
	return newTransaction(id, snapshot), nil
}

// Commit writes a WAL commit record (if enabled), flips the commit
// log bit, and removes the id from the active set — all under the
// engine mutex, so a concurrent Begin's snapshot never observes the id
// as active and uncommitted-forever.
func (e *Engine) Commit(tx *Transaction) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if tx.Status() != Active {
		return ErrTransactionNotActive
	}
	if _, ok := e.active[tx.ID]; !ok {
		return ErrTransactionNotActive
	}

	if e.wal != nil {
		if err := e.wal.TxCommit(tx.ID); err != nil {
			return err
		}
	}

	e.log.SetCommitted(tx.ID)
	delete(e.active, tx.ID)
	tx.setStatus(Committed)
	e.incr("txn.commit")
	return nil
}

// Abort is the symmetric operation to Commit.
func (e *Engine) Abort(tx *Transaction) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if tx.Status() != Active {
		return ErrTransactionNotActive
	}
	if _, ok := e.active[tx.ID]; !ok {
		return ErrTransactionNotActive
	}

	if e.wal != nil {
		if err := e.wal.TxAbort(tx.ID); err != nil {
			return err
		}
	}

	e.log.SetAborted(tx.ID)
	delete(e.active, tx.ID)
	tx.setStatus(Aborted)
	e.incr("txn.abort")
	return nil
}

// Snapshot returns a copy of the currently active transaction id set.
func (e *Engine) Snapshot() map[ID]struct{} {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make(map[ID]struct{}, len(e.active))
	for id := range e.active {
		out[id] = struct{}{}
	}
	return out
}

// GlobalLast returns the highest id ever issued, or 0 if none have been.
func (e *Engine) GlobalLast() ID {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.nextID - 1
}

// CommitLog exposes the lock-free commit log for record visibility
// checks. Reading it never requires the engine's mutex.
func (e *Engine) CommitLog() *commitlog.Log { return e.log }
