// Package reactor is the local mailbox substrate distributed messages
// ride on: a reactor is a process-local hub of named connectors, each
// a FIFO queue with per-message-type subscriber callbacks, drained by
// a single dispatch loop.
//
// It deliberately mirrors a single-threaded actor mailbox rather than
// a fan-out pub/sub bus: one goroutine calling RunEventLoop owns every
// callback invocation, so callbacks never need their own locking to
// stay consistent with each other.
package reactor

import (
	"errors"
	"fmt"
	"reflect"
	"sync"
)

// ErrNameInUse is returned by Open(name) when a connector with that
// name already exists.
var ErrNameInUse = errors.New("reactor: connector name in use")

// Message is any value sent through a connector. Its dynamic type is
// the type-tag subscriptions match against.
type Message any

// Callback is invoked once per delivered message, with a handle that
// lets it cancel its own subscription.
type Callback func(msg Message, sub Subscription)

// Metrics is the optional operational-counter sink RunEventLoop
// reports dispatched messages to. A *statsd.Client satisfies this
// without reactor importing statsd.
type Metrics interface {
	Incr(name string)
}

// Reactor owns a named set of connectors and the single dispatch loop
// that drains them.
type Reactor struct {
	name string

	mu   sync.Mutex
	cond *sync.Cond

	connectors map[string]*connector
	order      []string // registration order, for deterministic first-fit scans
	autoSeq    int
	subSeq     uint64

	metrics Metrics
}

// New creates a reactor identified by name. The name is surfaced via
// every Channel's ReactorName().
func New(name string) *Reactor {
	r := &Reactor{name: name, connectors: make(map[string]*connector)}
	r.cond = sync.NewCond(&r.mu)
	return r
}

// SetMetrics installs the counter sink used for dispatch reporting.
// Passing nil disables it.
func (r *Reactor) SetMetrics(m Metrics) { r.metrics = m }

// Name returns the reactor's own name.
func (r *Reactor) Name() string { return r.name }

// Open creates a named connector. It fails with ErrNameInUse if the
// name already exists.
func (r *Reactor) Open(name string) (*EventStream, *Channel, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.connectors[name]; exists {
		return nil, nil, fmt.Errorf("%w: %q", ErrNameInUse, name)
	}
	c := newConnector(name)
	r.connectors[name] = c
	r.order = append(r.order, name)
	r.cond.Broadcast()

	return &EventStream{reactor: r, connectorName: name}, &Channel{reactor: r, connectorName: name}, nil
}

// OpenAuto creates a connector with an auto-generated name "stream-<n>".
func (r *Reactor) OpenAuto() (*EventStream, *Channel) {
	r.mu.Lock()
	name := fmt.Sprintf("stream-%d", r.autoSeq)
	r.autoSeq++
	for {
		if _, exists := r.connectors[name]; !exists {
			break
		}
		name = fmt.Sprintf("stream-%d", r.autoSeq)
		r.autoSeq++
	}
	c := newConnector(name)
	r.connectors[name] = c
	r.order = append(r.order, name)
	r.cond.Broadcast()
	r.mu.Unlock()

	return &EventStream{reactor: r, connectorName: name}, &Channel{reactor: r, connectorName: name}
}

// FindChannel returns a send-handle for an existing connector, or nil
// if no connector with that name exists.
func (r *Reactor) FindChannel(name string) *Channel {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.connectors[name]; !exists {
		return nil
	}
	return &Channel{reactor: r, connectorName: name}
}

// CloseConnector removes a connector by name. It is a no-op if the
// name does not exist.
func (r *Reactor) CloseConnector(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.removeLocked(name)
	r.cond.Broadcast()
}

// CloseAllConnectors removes every connector, which causes a running
// RunEventLoop to exit once it notices.
func (r *Reactor) CloseAllConnectors() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.connectors = make(map[string]*connector)
	r.order = nil
	r.cond.Broadcast()
}

func (r *Reactor) removeLocked(name string) {
	if _, exists := r.connectors[name]; !exists {
		return
	}
	delete(r.connectors, name)
	for i, n := range r.order {
		if n == name {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
}

type msgAndCallbacks struct {
	msg       Message
	connector string
	cbs       []cbAndSub
}

type cbAndSub struct {
	cb  Callback
	sub Subscription
}

// RunEventLoop dispatches messages until no connectors remain. Within
// one connector, messages are delivered in FIFO order to the
// callbacks present at the moment the message was popped; across
// connectors the scan order is registration order, which is
// deterministic per pass but not meaningful — callers must not depend
// on it.
func (r *Reactor) RunEventLoop() {
	for {
		r.mu.Lock()
		var next *msgAndCallbacks
		for {
			if len(r.connectors) == 0 {
				r.mu.Unlock()
				return
			}
			next = r.lockedPop()
			if next != nil {
				break
			}
			r.cond.Wait()
		}
		r.mu.Unlock()

		if r.metrics != nil {
			r.metrics.Incr("reactor.dispatch")
		}
		for _, cs := range next.cbs {
			cs.cb(next.msg, cs.sub)
		}
	}
}

// lockedPop scans connectors in registration order for the first one
// with a pending message, pops it, and snapshots the callbacks
// registered for its type at that moment. Must be called with r.mu
// held; it does not release the lock.
func (r *Reactor) lockedPop() *msgAndCallbacks {
	for _, name := range r.order {
		c := r.connectors[name]
		msg, ok := c.popLocked()
		if !ok {
			continue
		}
		typ := reflect.TypeOf(msg)
		var cbs []cbAndSub
		if subs, ok := c.callbacks[typ]; ok {
			for id, cb := range subs {
				cbs = append(cbs, cbAndSub{
					cb:  cb,
					sub: Subscription{reactor: r, connectorName: name, typ: typ, id: id},
				})
			}
		}
		return &msgAndCallbacks{msg: msg, connector: name, cbs: cbs}
	}
	return nil
}

func (r *Reactor) unsubscribe(connectorName string, typ reflect.Type, id uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.connectors[connectorName]
	if !ok {
		return
	}
	c.removeCallbackLocked(typ, id)
}

func (r *Reactor) nextSubID() uint64 {
	r.subSeq++
	return r.subSeq
}
