// Package sse streams entity alerts to browsers as Server-Sent Events, for
// clients that cannot hold a websocket open.
//
//	broker := sse.NewBroker()
//	dispatcher.Listen(event.Wildcard, broker.Notify)
//	r.Handle(http.MethodGet, "/sse/alerts", "alerts.sse", broker)
package sse

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/shashiranjanraj/kproduct/pkg/event"
	"github.com/shashiranjanraj/kproduct/pkg/logger"
	"github.com/shashiranjanraj/kproduct/pkg/ws"
)

// Stream represents an active SSE connection to one client.
type Stream struct {
	w       http.ResponseWriter
	flusher http.Flusher
}

// New sets the event-stream headers on w. It returns nil if w cannot flush.
func New(w http.ResponseWriter) *Stream {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "SSE not supported", http.StatusInternalServerError)
		return nil
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no") // disable nginx buffering
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	return &Stream{w: w, flusher: flusher}
}

// Send writes a named event with a JSON-encoded data payload.
func (s *Stream) Send(name string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("sse: marshal: %w", err)
	}
	if _, err := fmt.Fprintf(s.w, "event: %s\ndata: %s\n\n", name, payload); err != nil {
		return err
	}
	s.flusher.Flush()
	return nil
}

// Comment writes an SSE comment line, used as a keepalive.
func (s *Stream) Comment(msg string) error {
	if _, err := fmt.Fprintf(s.w, ": %s\n\n", msg); err != nil {
		return err
	}
	s.flusher.Flush()
	return nil
}

// ─── Broker ──────────────────────────────────────────────────────────────────

const subscriberBuffer = 16

// Broker fans alerts out to every connected stream. Slow subscribers miss
// alerts rather than block writers.
type Broker struct {
	mu        sync.RWMutex
	subs      map[chan ws.Alert]struct{}
	keepAlive time.Duration
}

func NewBroker() *Broker {
	return &Broker{subs: map[chan ws.Alert]struct{}{}, keepAlive: 25 * time.Second}
}

func (b *Broker) subscribe() chan ws.Alert {
	ch := make(chan ws.Alert, subscriberBuffer)
	b.mu.Lock()
	b.subs[ch] = struct{}{}
	b.mu.Unlock()
	return ch
}

func (b *Broker) unsubscribe(ch chan ws.Alert) {
	b.mu.Lock()
	delete(b.subs, ch)
	b.mu.Unlock()
}

// Subscribers reports the number of open streams.
func (b *Broker) Subscribers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

// Publish offers alert to every subscriber without blocking.
func (b *Broker) Publish(alert ws.Alert) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for ch := range b.subs {
		select {
		case ch <- alert:
		default:
		}
	}
}

// Notify is an event.Handler.
func (b *Broker) Notify(_ context.Context, e event.EntityEvent) {
	b.Publish(ws.AlertFor(e))
}

// ServeHTTP holds the request open and writes each alert as an "alert"
// event until the client goes away.
func (b *Broker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	stream := New(w)
	if stream == nil {
		return
	}

	ch := b.subscribe()
	defer b.unsubscribe(ch)

	ticker := time.NewTicker(b.keepAlive)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case alert := <-ch:
			if err := stream.Send("alert", alert); err != nil {
				logger.WithCtx(r.Context()).Debug("sse: client write failed", "error", err)
				return
			}
		case <-ticker.C:
			if err := stream.Comment("keepalive"); err != nil {
				return
			}
		}
	}
}
