package server

import (
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"golang.org/x/net/websocket"
)

const (
	subscriberBuffer = 16
	sseHeartbeat     = 30 * time.Second
)

// transport is how a subscriber receives events.
type transport string

const (
	transportSSE       transport = "sse"
	transportWebsocket transport = "websocket"
)

type message struct {
	kind EventType
	data []byte
}

// subscriber is one connection following a session.
type subscriber struct {
	sessionID string
	transport transport
	ch        chan message
}

// Broadcaster fans session events out to SSE and websocket subscribers.
// Events are encoded once per publish.
type Broadcaster struct {
	mu   sync.RWMutex
	subs map[*subscriber]struct{}
	log  *slog.Logger
}

// NewBroadcaster creates an empty broadcaster.
func NewBroadcaster(log *slog.Logger) *Broadcaster {
	if log == nil {
		log = slog.Default()
	}
	return &Broadcaster{
		subs: make(map[*subscriber]struct{}),
		log:  log,
	}
}

func (b *Broadcaster) subscribe(sessionID string, t transport) *subscriber {
	s := &subscriber{
		sessionID: sessionID,
		transport: t,
		ch:        make(chan message, subscriberBuffer),
	}
	b.mu.Lock()
	b.subs[s] = struct{}{}
	b.mu.Unlock()
	return s
}

// unsubscribe removes s and closes its channel. Repeated calls are no-ops.
func (b *Broadcaster) unsubscribe(s *subscriber) {
	b.mu.Lock()
	if _, ok := b.subs[s]; ok {
		delete(b.subs, s)
		close(s.ch)
	}
	b.mu.Unlock()
}

func (b *Broadcaster) encode(e Event) (message, bool) {
	data, err := encodeEvent(e)
	if err != nil {
		b.log.Error("encode event", "type", e.Kind(), "error", err)
		return message{}, false
	}
	return message{kind: e.Kind(), data: data}, true
}

// Publish sends e to every subscriber of a session. Subscribers whose
// buffer is full miss the event.
func (b *Broadcaster) Publish(sessionID string, e Event) {
	msg, ok := b.encode(e)
	if !ok {
		return
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	for s := range b.subs {
		if s.sessionID != sessionID {
			continue
		}
		select {
		case s.ch <- msg:
		default:
			b.log.Debug("event dropped for slow subscriber", "session", sessionID, "transport", s.transport)
		}
	}
}

// send delivers e to a single subscriber, reporting false if it is gone or
// its buffer is full.
func (b *Broadcaster) send(s *subscriber, e Event) bool {
	msg, ok := b.encode(e)
	if !ok {
		return false
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	if _, ok := b.subs[s]; !ok {
		return false
	}
	select {
	case s.ch <- msg:
		return true
	default:
		return false
	}
}

// Subscribers counts the SSE and websocket subscribers of a session.
func (b *Broadcaster) Subscribers(sessionID string) (sse, ws int) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for s := range b.subs {
		if s.sessionID != sessionID {
			continue
		}
		if s.transport == transportWebsocket {
			ws++
		} else {
			sse++
		}
	}
	return sse, ws
}

// ServeSSE streams a session's events until the request is cancelled.
// initial is sent first; onDisconnect runs after the subscriber is removed.
func (b *Broadcaster) ServeSSE(w http.ResponseWriter, r *http.Request, sessionID string, initial Event, onDisconnect func()) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming non supporté", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	s := b.subscribe(sessionID, transportSSE)
	defer func() {
		b.unsubscribe(s)
		if onDisconnect != nil {
			onDisconnect()
		}
	}()
	if initial != nil {
		b.send(s, initial)
	}

	ticker := time.NewTicker(sseHeartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case msg, ok := <-s.ch:
			if !ok {
				return
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", msg.kind, msg.data)
			flusher.Flush()
		case <-ticker.C:
			fmt.Fprintf(w, ": heartbeat\n\n")
			flusher.Flush()
		}
	}
}

// pumpWebsocket writes a websocket subscriber's events as text frames until
// it is unsubscribed or the connection fails.
func (b *Broadcaster) pumpWebsocket(conn *websocket.Conn, s *subscriber) {
	for msg := range s.ch {
		if err := websocket.Message.Send(conn, string(msg.data)); err != nil {
			b.log.Debug("websocket write failed", "session", s.sessionID, "error", err)
			return
		}
	}
}
