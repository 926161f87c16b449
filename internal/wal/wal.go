// Package wal provides write-ahead logging for the storage engine's
// transaction boundary records (begin/commit/abort).
//
// Every record is appended to a BadgerDB-backed log before the
// transaction engine's in-memory state is allowed to advance, so that
// a process restart can replay the log and rebuild the commit log
// exactly as it stood at the last synced record. Records are keyed by
// a monotonically increasing sequence number, which doubles as
// BadgerDB's natural iteration order, so replay never needs a
// secondary index.
package wal

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/dgraph-io/badger/v4"
	"golang.org/x/crypto/blake2b"

	"github.com/memgraph-go/memgraph/pkg/txn"
)

// ErrClosed is returned by any operation attempted after Close.
var ErrClosed = errors.New("wal: closed")

// ErrCorrupted is returned by Replay when a record's stored checksum
// does not match its content.
var ErrCorrupted = errors.New("wal: corrupted record")

// Kind identifies the transaction boundary a Record marks.
type Kind uint8

const (
	KindBegin Kind = iota + 1
	KindCommit
	KindAbort
)

func (k Kind) String() string {
	switch k {
	case KindBegin:
		return "begin"
	case KindCommit:
		return "commit"
	case KindAbort:
		return "abort"
	default:
		return "unknown"
	}
}

// Record is one logged transaction boundary, as seen by Replay.
type Record struct {
	Sequence uint64
	Kind     Kind
	TxID     txn.ID
}

const recordLen = 1 + 8 // kind byte + txid

// Log is a BadgerDB-backed append-only log of transaction boundary
// records. It satisfies txn.WAL.
type Log struct {
	mu       sync.Mutex
	db       *badger.DB
	sequence atomic.Uint64
	closed   atomic.Bool
}

// Options configures a Log.
type Options struct {
	// Dir is the directory BadgerDB stores its files in. Required.
	Dir string

	// InMemory runs BadgerDB without touching disk. Useful for tests;
	// Dir is ignored when set.
	InMemory bool

	// SyncWrites forces BadgerDB to fsync after every append. Slower,
	// safer: a process crash never loses an acknowledged record.
	SyncWrites bool
}

// Open opens (or creates) a write-ahead log at opts.Dir.
func Open(opts Options) (*Log, error) {
	bopts := badger.DefaultOptions(opts.Dir).
		WithInMemory(opts.InMemory).
		WithSyncWrites(opts.SyncWrites).
		WithLogger(nil)

	db, err := badger.Open(bopts)
	if err != nil {
		return nil, fmt.Errorf("wal: open: %w", err)
	}

	l := &Log{db: db}
	last, err := l.lastSequence()
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("wal: recover sequence: %w", err)
	}
	l.sequence.Store(last)
	return l, nil
}

func (l *Log) lastSequence() (uint64, error) {
	var last uint64
	err := l.db.View(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Reverse = true
		opts.PrefetchValues = false
		it := tx.NewIterator(opts)
		defer it.Close()
		it.Rewind()
		if it.Valid() {
			last = binary.BigEndian.Uint64(it.Item().Key())
		}
		return nil
	})
	return last, err
}

func sequenceKey(seq uint64) []byte {
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, seq)
	return key
}

func encodeRecord(kind Kind, id txn.ID) []byte {
	buf := make([]byte, recordLen+blake2b.Size256)
	buf[0] = byte(kind)
	binary.BigEndian.PutUint64(buf[1:9], id)
	sum := blake2b.Sum256(buf[:recordLen])
	copy(buf[recordLen:], sum[:])
	return buf
}

func decodeRecord(seq uint64, raw []byte) (Record, error) {
	if len(raw) != recordLen+blake2b.Size256 {
		return Record{}, ErrCorrupted
	}
	want := blake2b.Sum256(raw[:recordLen])
	if !bytes.Equal(want[:], raw[recordLen:]) {
		return Record{}, ErrCorrupted
	}
	return Record{
		Sequence: seq,
		Kind:     Kind(raw[0]),
		TxID:     binary.BigEndian.Uint64(raw[1:9]),
	}, nil
}

func (l *Log) append(kind Kind, id txn.ID) error {
	if l.closed.Load() {
		return ErrClosed
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	seq := l.sequence.Add(1)
	return l.db.Update(func(tx *badger.Txn) error {
		return tx.Set(sequenceKey(seq), encodeRecord(kind, id))
	})
}

// TxBegin logs that id started.
func (l *Log) TxBegin(id txn.ID) error { return l.append(KindBegin, id) }

// TxCommit logs that id committed.
func (l *Log) TxCommit(id txn.ID) error { return l.append(KindCommit, id) }

// TxAbort logs that id aborted.
func (l *Log) TxAbort(id txn.ID) error { return l.append(KindAbort, id) }

// Replay calls fn once per record in sequence order. It is meant to be
// run once, before the transaction engine starts issuing new ids, to
// rebuild the commit log's bits and the engine's next-id counter.
func (l *Log) Replay(fn func(Record) error) error {
	return l.db.View(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		it := tx.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()
			seq := binary.BigEndian.Uint64(item.Key())
			var rec Record
			var decodeErr error
			if err := item.Value(func(val []byte) error {
				rec, decodeErr = decodeRecord(seq, val)
				return nil
			}); err != nil {
				return err
			}
			if decodeErr != nil {
				return decodeErr
			}
			if err := fn(rec); err != nil {
				return err
			}
		}
		return nil
	})
}

// Close flushes and closes the underlying BadgerDB handle.
func (l *Log) Close() error {
	if !l.closed.CompareAndSwap(false, true) {
		return nil
	}
	return l.db.Close()
}

var _ txn.WAL = (*Log)(nil)
