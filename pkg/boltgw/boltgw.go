// Package boltgw is the thin adapter layer a Bolt protocol server would
// sit behind: it turns wire-level BEGIN/RUN/COMMIT/ROLLBACK requests
// into calls against the transaction engine and the graph store. It
// performs no network I/O and speaks no PackStream; a real Bolt
// server handles the handshake, session multiplexing, and message
// framing and calls into this package once a session has a live
// transaction handle.
package boltgw

import (
	"errors"
	"fmt"

	"github.com/memgraph-go/memgraph/pkg/graph"
	"github.com/memgraph-go/memgraph/pkg/txn"
)

// ErrUnknownTx is returned when a caller presents a TxHandle that does
// not correspond to a transaction this Gateway began.
var ErrUnknownTx = errors.New("boltgw: unknown transaction handle")

// TxHandle is the driver-visible identifier for an open transaction,
// stable across the RUN/PULL exchanges a real Bolt session would make
// for one BEGIN...COMMIT block.
type TxHandle uint64

// Statement is a compiled query plan: whatever sits upstream of this
// package (a Cypher planner, in a full server) hands the gateway a
// closure over the store and the active transaction rather than a
// query string, since no parser lives in this repository.
type Statement func(store *graph.Store, tx *txn.Transaction) (any, error)

// Gateway holds the collaborators a Bolt server needs to execute
// statements against one storage engine instance.
type Gateway struct {
	engine txn.Source
	store  *graph.Store

	nextHandle TxHandle
	open       map[TxHandle]*txn.Transaction
}

// New constructs a Gateway over engine and store.
func New(engine txn.Source, store *graph.Store) *Gateway {
	return &Gateway{engine: engine, store: store, open: make(map[TxHandle]*txn.Transaction)}
}

// BeginTx starts a transaction and returns a handle a session can
// thread through subsequent Run/CommitTx/RollbackTx calls.
func (g *Gateway) BeginTx() (TxHandle, error) {
	tx, err := g.engine.Begin()
	if err != nil {
		return 0, fmt.Errorf("boltgw: begin: %w", err)
	}
	g.nextHandle++
	h := g.nextHandle
	g.open[h] = tx
	return h, nil
}

// Run executes stmt against the transaction behind h, advancing the
// transaction's command id first. The statement sees every write made
// by a prior statement in the same transaction because a transaction
// always sees its own writes; visibility does not depend on the
// command id.
func (g *Gateway) Run(h TxHandle, stmt Statement) (any, error) {
	tx, ok := g.open[h]
	if !ok {
		return nil, ErrUnknownTx
	}
	tx.Advance()
	result, err := stmt(g.store, tx)
	if err != nil {
		return nil, fmt.Errorf("boltgw: run: %w", err)
	}
	return result, nil
}

// CommitTx commits the transaction behind h and retires the handle.
func (g *Gateway) CommitTx(h TxHandle) error {
	tx, ok := g.open[h]
	if !ok {
		return ErrUnknownTx
	}
	delete(g.open, h)
	if err := g.engine.Commit(tx); err != nil {
		return fmt.Errorf("boltgw: commit: %w", err)
	}
	return nil
}

// RollbackTx aborts the transaction behind h and retires the handle.
func (g *Gateway) RollbackTx(h TxHandle) error {
	tx, ok := g.open[h]
	if !ok {
		return ErrUnknownTx
	}
	delete(g.open, h)
	if err := g.engine.Abort(tx); err != nil {
		return fmt.Errorf("boltgw: rollback: %w", err)
	}
	return nil
}
