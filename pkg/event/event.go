// Package event dispatches entity lifecycle events to in-process listeners.
//
// Services fire an EntityEvent after every committed write. Listeners register
// by exact name ("kproductProduct.created"), by entity ("kproductProduct") or for everything
// ("*"):
//
//	d := event.NewDispatcher(workerpool.NewNamed("events", 4))
//	d.Listen("*", hub.Notify)
//	d.Dispatch(ctx, event.EntityEvent{Entity: "kproductProduct", Action: event.Created, ID: 1})
package event

import (
	"context"
	"sync"
	"time"

	"github.com/shashiranjanraj/kproduct/pkg/logger"
	"github.com/shashiranjanraj/kproduct/pkg/reqid"
	"github.com/shashiranjanraj/kproduct/pkg/workerpool"
)

// Action is the kind of write that produced an event.
type Action string

const (
	Created Action = "created"
	Updated Action = "updated"
	Deleted Action = "deleted"
)

// Wildcard listens to every event.
const Wildcard = "*"

// EntityEvent describes one committed write.
type EntityEvent struct {
	Entity    string    `json:"entityName"`
	Action    Action    `json:"action"`
	ID        int64     `json:"id"`
	At        time.Time `json:"at"`
	RequestID string    `json:"requestId,omitempty"`
}

// Name is "<entity>.<action>", e.g. "kproductProduct.created".
func (e EntityEvent) Name() string {
	return e.Entity + "." + string(e.Action)
}

// Handler receives an event. ctx is detached from the request when the event
// was dispatched asynchronously.
type Handler func(ctx context.Context, e EntityEvent)

// Dispatcher fans events out to listeners. A nil *Dispatcher drops every
// event.
type Dispatcher struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
	pool     *workerpool.Pool
}

// NewDispatcher returns a Dispatcher that runs Dispatch on pool. A nil pool
// makes Dispatch synchronous.
func NewDispatcher(pool *workerpool.Pool) *Dispatcher {
	return &Dispatcher{handlers: map[string][]Handler{}, pool: pool}
}

// Listen registers handler for name (full event name, entity name or "*").
func (d *Dispatcher) Listen(name string, handler Handler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers[name] = append(d.handlers[name], handler)
}

// Flush removes all listeners.
func (d *Dispatcher) Flush() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers = map[string][]Handler{}
}

func (d *Dispatcher) listeners(e EntityEvent) []Handler {
	d.mu.RLock()
	defer d.mu.RUnlock()

	var hs []Handler
	hs = append(hs, d.handlers[e.Name()]...)
	hs = append(hs, d.handlers[e.Entity]...)
	hs = append(hs, d.handlers[Wildcard]...)
	return hs
}

func stamp(ctx context.Context, e EntityEvent) EntityEvent {
	if e.At.IsZero() {
		e.At = time.Now().UTC()
	}
	if e.RequestID == "" {
		e.RequestID = reqid.FromCtx(ctx)
	}
	return e
}

// Fire calls every matching listener synchronously, in registration order.
func (d *Dispatcher) Fire(ctx context.Context, e EntityEvent) {
	if d == nil {
		return
	}
	e = stamp(ctx, e)
	for _, h := range d.listeners(e) {
		h(ctx, e)
	}
}

// Dispatch hands the event to the pool and returns immediately. Events are
// dropped (and logged) when the pool is full or closed.
func (d *Dispatcher) Dispatch(ctx context.Context, e EntityEvent) {
	if d == nil {
		return
	}
	if d.pool == nil {
		d.Fire(ctx, e)
		return
	}
	e = stamp(ctx, e)
	hs := d.listeners(e)
	if len(hs) == 0 {
		return
	}

	detached := context.WithoutCancel(ctx)
	err := d.pool.Submit(func() {
		for _, h := range hs {
			h(detached, e)
		}
	})
	if err != nil {
		logger.WithCtx(ctx).Warn("event: dropped", "event", e.Name(), "id", e.ID, "error", err)
	}
}
