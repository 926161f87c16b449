package graph

import (
	"errors"
	"sync"
	"sync/atomic"

	"github.com/memgraph-go/memgraph/pkg/commitlog"
	"github.com/memgraph-go/memgraph/pkg/txn"
)

// ErrNoVisibleVersion is returned by Read/Update/Remove when no
// version of the entity is visible to the calling transaction.
var ErrNoVisibleVersion = errors.New("graph: no visible version")

// ErrSerializationConflict is returned by Update/Remove when another
// transaction has already expired the version the caller was about to
// modify. The caller must abort.
var ErrSerializationConflict = errors.New("graph: serialization conflict")

// version is one entry in an entity's version chain. txExpiring of 0
// means unset, matching the engine's convention that transaction id 0
// is never issued.
type version[T any] struct {
	txCreating txn.ID
	txExpiring txn.ID
	payload    T
	next       *version[T]
}

// VList is the stable identity of a graph entity (vertex or edge): an
// atomically-updated pointer to the head of its version chain. Reads
// walk the chain lock-free; updates serialize through a per-entity
// mutex so the conflict check and the CAS-equivalent head swap happen
// as one step. A global mutex across every entity would turn every
// write into a single point of contention for no benefit, and a bare
// CAS-retry loop live-locks under write contention the same way a
// naive optimistic map does, so this narrows the critical section
// instead of eliminating the lock.
type VList[T any] struct {
	mu   sync.Mutex
	head atomic.Pointer[version[T]]
}

// NewVList creates an entity whose first version was created by tx.
func NewVList[T any](tx *txn.Transaction, payload T) *VList[T] {
	vl := &VList[T]{}
	vl.head.Store(&version[T]{txCreating: tx.ID, payload: payload})
	return vl
}

// creatingVisible reports whether v's creator is visible to r: either
// r is the creator itself (same-transaction read of its own write), or
// the creator is committed, at or before r, and not in r's snapshot.
func creatingVisible(v txn.ID, r *txn.Transaction, log *commitlog.Log) bool {
	if v == r.ID {
		return true
	}
	return log.IsCommitted(v) && v <= r.ID && !r.InSnapshot(v)
}

// expiringVisible reports whether an expired version should still be
// considered not-expired from r's point of view: unset, the expirer
// aborted, the expirer started after r, or the expirer was active (in
// r's snapshot) when r began.
func expiringVisible(exp txn.ID, r *txn.Transaction, log *commitlog.Log) bool {
	if exp == 0 {
		return true
	}
	if log.IsAborted(exp) {
		return true
	}
	if exp > r.ID {
		return true
	}
	return r.InSnapshot(exp)
}

func visible[T any](v *version[T], r *txn.Transaction, log *commitlog.Log) bool {
	return creatingVisible(v.txCreating, r, log) && expiringVisible(v.txExpiring, r, log)
}

// visibleVersion walks the chain from head returning the first version
// visible to r, or nil.
func visibleVersion[T any](head *version[T], r *txn.Transaction, log *commitlog.Log) *version[T] {
	for v := head; v != nil; v = v.next {
		if visible(v, r, log) {
			return v
		}
	}
	return nil
}

// Read returns the payload of the version visible to r, or false if
// the entity is invisible to r (not yet created, or already removed).
func (vl *VList[T]) Read(r *txn.Transaction, log *commitlog.Log) (T, bool) {
	v := visibleVersion(vl.head.Load(), r, log)
	if v == nil {
		var zero T
		return zero, false
	}
	return v.payload, true
}

// conflictsWithUpdate reports whether an in-progress expiration by a
// transaction other than r must fail r's update. By the time Update
// reaches this check, cur was already chosen as r's visible version,
// which means expiringVisible held for it: its expirer (if any,
// neither r itself nor aborted) either started after r or was active
// in r's snapshot, and is now still active or committed — every such
// case is a concurrent write r's optimistic read didn't account for.
func conflictsWithUpdate(expirer txn.ID, r *txn.Transaction, log *commitlog.Log) bool {
	if expirer == 0 || expirer == r.ID {
		return false
	}
	return !log.IsAborted(expirer)
}

// Update applies mutate to the version of the entity visible to r and
// installs the result as a new version, following copy-on-write: if r
// already owns the visible version (created it earlier in the same
// transaction) the payload is mutated in place, otherwise a new
// version is linked in front of the old one and the old one is marked
// expiring at r.
//
// Returns ErrNoVisibleVersion if nothing is visible to r, and
// ErrSerializationConflict if another transaction has already started
// expiring the visible version.
func (vl *VList[T]) Update(r *txn.Transaction, log *commitlog.Log, mutate func(T) T) (T, error) {
	vl.mu.Lock()
	defer vl.mu.Unlock()

	var zero T
	head := vl.head.Load()
	cur := visibleVersion(head, r, log)
	if cur == nil {
		return zero, ErrNoVisibleVersion
	}
	if cur.txCreating == r.ID {
		cur.payload = mutate(cur.payload)
		return cur.payload, nil
	}
	if conflictsWithUpdate(cur.txExpiring, r, log) {
		return zero, ErrSerializationConflict
	}
	newHead := &version[T]{txCreating: r.ID, payload: mutate(cur.payload), next: head}
	cur.txExpiring = r.ID
	vl.head.Store(newHead)
	return newHead.payload, nil
}

// Remove marks the version visible to r as expiring at r, without
// allocating a replacement. It fails the same way Update does.
func (vl *VList[T]) Remove(r *txn.Transaction, log *commitlog.Log) error {
	vl.mu.Lock()
	defer vl.mu.Unlock()

	cur := visibleVersion(vl.head.Load(), r, log)
	if cur == nil {
		return ErrNoVisibleVersion
	}
	if conflictsWithUpdate(cur.txExpiring, r, log) {
		return ErrSerializationConflict
	}
	cur.txExpiring = r.ID
	return nil
}

// GC unlinks every version in the chain whose expiration is committed
// strictly before oldestActive — the lowest transaction id that is
// still active or present in any live snapshot, supplied by the
// caller. Versions at or after that boundary might still be visible
// to some live reader and are left alone. GC never touches the head
// pointer itself, so concurrent readers racing this call never
// observe a torn chain.
func (vl *VList[T]) GC(oldestActive txn.ID, log *commitlog.Log) {
	vl.mu.Lock()
	defer vl.mu.Unlock()

	head := vl.head.Load()
	if head == nil {
		return
	}
	prev := head
	for cur := head.next; cur != nil; {
		next := cur.next
		if cur.txExpiring != 0 && log.IsCommitted(cur.txExpiring) && cur.txExpiring < oldestActive {
			prev.next = next
		} else {
			prev = cur
		}
		cur = next
	}
}
