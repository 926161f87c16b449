package txn

import (
	"context"
	"fmt"
	"net"
	"sync"

	"google.golang.org/grpc"

	"github.com/memgraph-go/memgraph/internal/rpctransport"
)

// MasterEngine is a single-node Engine that additionally exposes an
// RPC server so distributed worker peers can participate in the same
// transaction id space. Workers never issue ids locally — every
// Begin/Commit/Abort/Snapshot/GlobalLast/Advance call they make is
// served here.
type MasterEngine struct {
	*Engine

	mu      sync.Mutex
	byID    map[ID]*Transaction // transactions currently reachable by remote id
	grpcSrv *grpc.Server
}

// NewMasterEngine wraps engine with an RPC front-end. Call Serve to
// start accepting worker connections.
func NewMasterEngine(engine *Engine) *MasterEngine {
	m := &MasterEngine{Engine: engine, byID: make(map[ID]*Transaction)}
	m.grpcSrv = rpctransport.NewServer(m)
	return m
}

// Serve blocks accepting worker RPC connections on lis. Call it from
// its own goroutine; stop it with GracefulStop.
func (m *MasterEngine) Serve(lis net.Listener) error {
	return m.grpcSrv.Serve(lis)
}

// GracefulStop stops the RPC server, letting in-flight calls finish.
func (m *MasterEngine) GracefulStop() { m.grpcSrv.GracefulStop() }

func (m *MasterEngine) track(tx *Transaction) {
	m.mu.Lock()
	m.byID[tx.ID] = tx
	m.mu.Unlock()
}

func (m *MasterEngine) untrack(id ID) {
	m.mu.Lock()
	delete(m.byID, id)
	m.mu.Unlock()
}

func (m *MasterEngine) lookup(id ID) (*Transaction, error) {
	m.mu.Lock()
	tx, ok := m.byID[id]
	m.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("txn: no such transaction %d", id)
	}
	return tx, nil
}

// Begin implements rpctransport.EngineServer.
func (m *MasterEngine) Begin(ctx context.Context, _ *rpctransport.BeginRequest) (*rpctransport.BeginReply, error) {
	tx, err := m.Engine.Begin()
	if err != nil {
		return nil, err
	}
	m.track(tx)
	snap := make([]uint64, 0, len(tx.snapshot))
	for id := range tx.snapshot {
		snap = append(snap, id)
	}
	return &rpctransport.BeginReply{ID: tx.ID, Snapshot: snap}, nil
}

// Commit implements rpctransport.EngineServer.
func (m *MasterEngine) Commit(ctx context.Context, req *rpctransport.CommitRequest) (*rpctransport.Empty, error) {
	tx, err := m.lookup(req.ID)
	if err != nil {
		return nil, err
	}
	if err := m.Engine.Commit(tx); err != nil {
		return nil, err
	}
	m.untrack(req.ID)
	return &rpctransport.Empty{}, nil
}

// Abort implements rpctransport.EngineServer.
func (m *MasterEngine) Abort(ctx context.Context, req *rpctransport.AbortRequest) (*rpctransport.Empty, error) {
	tx, err := m.lookup(req.ID)
	if err != nil {
		return nil, err
	}
	if err := m.Engine.Abort(tx); err != nil {
		return nil, err
	}
	m.untrack(req.ID)
	return &rpctransport.Empty{}, nil
}

// SnapshotOf implements rpctransport.EngineServer: it returns the
// snapshot belonging to the named (already-begun) transaction, as
// opposed to Snapshot() which is the engine-wide active set.
func (m *MasterEngine) SnapshotOf(ctx context.Context, req *rpctransport.SnapshotOfRequest) (*rpctransport.SnapshotOfReply, error) {
	tx, err := m.lookup(req.ID)
	if err != nil {
		return nil, err
	}
	snap := make([]uint64, 0, len(tx.snapshot))
	for id := range tx.snapshot {
		snap = append(snap, id)
	}
	return &rpctransport.SnapshotOfReply{Snapshot: snap}, nil
}

// GlobalLast implements rpctransport.EngineServer.
func (m *MasterEngine) GlobalLast(ctx context.Context, _ *rpctransport.Empty) (*rpctransport.GlobalLastReply, error) {
	return &rpctransport.GlobalLastReply{ID: m.Engine.GlobalLast()}, nil
}

// Advance implements rpctransport.EngineServer.
func (m *MasterEngine) Advance(ctx context.Context, req *rpctransport.AdvanceRequest) (*rpctransport.AdvanceReply, error) {
	tx, err := m.lookup(req.ID)
	if err != nil {
		return nil, err
	}
	return &rpctransport.AdvanceReply{CommandID: tx.Advance()}, nil
}
