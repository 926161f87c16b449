package wal

import "github.com/memgraph-go/memgraph/pkg/commitlog"

// Recover replays every record in l and rebuilds a commit log exactly
// as the engine would have seen it up to the last synced record. The
// returned nextID is the lowest id no such replay could have issued
// (one more than the highest id seen), suitable for seeding a fresh
// Engine's id counter.
//
// A transaction whose Begin record was replayed but whose Commit or
// Abort record was not is, by definition, one the process crashed in
// the middle of: it can never be completed, so it is marked aborted
// rather than left Active, which would otherwise let it linger as
// "still running" forever and block GC of every version it raced.
func Recover(l *Log) (log *commitlog.Log, nextID uint64, err error) {
	log = commitlog.New()
	began := make(map[uint64]struct{})
	var highest uint64

	if err := l.Replay(func(rec Record) error {
		if rec.TxID > highest {
			highest = rec.TxID
		}
		switch rec.Kind {
		case KindBegin:
			began[rec.TxID] = struct{}{}
		case KindCommit:
			log.SetCommitted(rec.TxID)
			delete(began, rec.TxID)
		case KindAbort:
			log.SetAborted(rec.TxID)
			delete(began, rec.TxID)
		}
		return nil
	}); err != nil {
		return nil, 0, err
	}

	for id := range began {
		log.SetAborted(id)
	}

	return log, highest + 1, nil
}
