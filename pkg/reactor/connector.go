package reactor

import "reflect"

// connector is a named mailbox: one FIFO queue plus a subscription
// table indexed by message type. It is only ever touched while the
// owning Reactor's mutex is held.
type connector struct {
	name      string
	queue     []Message
	callbacks map[reflect.Type]map[uint64]Callback
}

func newConnector(name string) *connector {
	return &connector{
		name:      name,
		callbacks: make(map[reflect.Type]map[uint64]Callback),
	}
}

func (c *connector) pushLocked(msg Message) {
	c.queue = append(c.queue, msg)
}

func (c *connector) popLocked() (Message, bool) {
	if len(c.queue) == 0 {
		return nil, false
	}
	msg := c.queue[0]
	c.queue = c.queue[1:]
	return msg, true
}

func (c *connector) addCallbackLocked(typ reflect.Type, id uint64, cb Callback) {
	subs, ok := c.callbacks[typ]
	if !ok {
		subs = make(map[uint64]Callback)
		c.callbacks[typ] = subs
	}
	subs[id] = cb
}

func (c *connector) removeCallbackLocked(typ reflect.Type, id uint64) {
	subs, ok := c.callbacks[typ]
	if !ok {
		return
	}
	delete(subs, id)
	if len(subs) == 0 {
		delete(c.callbacks, typ)
	}
}

// Channel is the write side of a connector.
type Channel struct {
	reactor       *Reactor
	connectorName string
}

// ReactorName returns the name of the reactor that owns this channel.
func (ch *Channel) ReactorName() string { return ch.reactor.name }

// Name returns the connector's name.
func (ch *Channel) Name() string { return ch.connectorName }

// Send appends msg to the connector's queue and wakes the dispatch
// loop. Sending to a connector that has since been closed is a silent
// no-op — the channel handle doesn't keep the connector alive.
func (ch *Channel) Send(msg Message) {
	r := ch.reactor
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.connectors[ch.connectorName]
	if !ok {
		return
	}
	c.pushLocked(msg)
	r.cond.Broadcast()
}

// EventStream is the read side of a connector: it vends typed
// subscriptions.
type EventStream struct {
	reactor       *Reactor
	connectorName string
}

// Close removes the underlying connector from the reactor.
func (es *EventStream) Close() {
	es.reactor.CloseConnector(es.connectorName)
}

// On registers cb for messages whose dynamic type is T on this
// connector. The subscription takes effect no later than the next pop
// from this connector after On returns.
func On[T any](es *EventStream, cb func(msg T, sub Subscription)) Subscription {
	r := es.reactor
	typ := reflect.TypeOf((*T)(nil)).Elem()

	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.connectors[es.connectorName]
	if !ok {
		// Connector already gone: return an inert subscription so the
		// caller doesn't have to special-case this.
		return Subscription{reactor: r, connectorName: es.connectorName, typ: typ}
	}

	id := r.nextSubID()
	c.addCallbackLocked(typ, id, func(msg Message, sub Subscription) {
		cb(msg.(T), sub)
	})
	return Subscription{reactor: r, connectorName: es.connectorName, typ: typ, id: id}
}

// Subscription identifies one callback registered on one connector
// for one message type. It carries no direct reference to the
// connector itself — only its name and the reactor — so a connector
// can be torn down without leaving a dangling self-reference behind;
// Unsubscribe on an already-closed connector is a no-op.
type Subscription struct {
	reactor       *Reactor
	connectorName string
	typ           reflect.Type
	id            uint64
}

// ConnectorName returns the name of the connector this subscription
// belongs to.
func (s Subscription) ConnectorName() string { return s.connectorName }

// Unsubscribe removes exactly this callback. Safe to call from inside
// the callback itself: the dispatch loop has already released the
// reactor mutex by the time callbacks run, so re-acquiring it here
// cannot deadlock.
func (s Subscription) Unsubscribe() {
	if s.reactor == nil {
		return
	}
	s.reactor.unsubscribe(s.connectorName, s.typ, s.id)
}
