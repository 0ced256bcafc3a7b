// Package sse implements a Server-Sent Events broker that tells visualization
// clients when the lexicon snapshot changes.
package sse

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"
)

// Event types sent to clients.
const (
	EventSnapshotUpdated = "snapshot.updated"
	EventNetworkUpdated  = "network.updated"
)

const (
	clientBuffer     = 64
	defaultThrottle  = 2 * time.Second
	defaultKeepAlive = 15 * time.Second
)

// Event represents an SSE event to broadcast.
type Event struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// SnapshotUpdate is the data of a snapshot.updated event.
type SnapshotUpdate struct {
	Generation int64  `json:"generation"`
	Checksum   string `json:"checksum"`
}

// Broker manages SSE client connections and broadcasts events.
//
// A single event loop goroutine owns the client set, the event id counter and
// the network throttle timestamp. Public methods talk to it over channels.
type Broker struct {
	networkMin time.Duration
	keepAlive  time.Duration

	subscribeCh   chan chan []byte
	unsubscribeCh chan chan []byte
	publishCh     chan Event
	snapshotCh    chan SnapshotUpdate
	countReqCh    chan chan int

	stopCh  chan struct{}
	stopped chan struct{}
	closed  atomic.Bool
}

// NewBroker creates a broker that sends network.updated at most once per
// networkThrottle. A non-positive value uses two seconds.
func NewBroker(networkThrottle time.Duration) *Broker {
	if networkThrottle <= 0 {
		networkThrottle = defaultThrottle
	}

	b := &Broker{
		networkMin:    networkThrottle,
		keepAlive:     defaultKeepAlive,
		subscribeCh:   make(chan chan []byte),
		unsubscribeCh: make(chan chan []byte),
		publishCh:     make(chan Event, 256),
		snapshotCh:    make(chan SnapshotUpdate, 256),
		countReqCh:    make(chan chan int),
		stopCh:        make(chan struct{}),
		stopped:       make(chan struct{}),
	}

	go b.run()
	return b
}

func (b *Broker) run() {
	defer close(b.stopped)

	clients := make(map[chan []byte]struct{})
	var lastNetwork time.Time
	var nextID uint64
	// Most recent snapshot.updated frame, replayed to new subscribers.
	var lastSnapshot []byte

	broadcast := func(event Event) []byte {
		payload, err := json.Marshal(event.Data)
		if err != nil {
			return nil
		}
		nextID++
		raw := []byte(fmt.Sprintf("id: %d\nevent: %s\ndata: %s\n\n", nextID, event.Type, payload))

		for ch := range clients {
			select {
			case ch <- raw:
			default:
				// Slow client; drop rather than stall the loop.
			}
		}
		return raw
	}

	for {
		select {
		case <-b.stopCh:
			for ch := range clients {
				close(ch)
			}
			return

		case ch := <-b.subscribeCh:
			clients[ch] = struct{}{}
			if lastSnapshot != nil {
				ch <- lastSnapshot
			}

		case ch := <-b.unsubscribeCh:
			if _, ok := clients[ch]; ok {
				delete(clients, ch)
				close(ch)
			}

		case event := <-b.publishCh:
			broadcast(event)

		case upd := <-b.snapshotCh:
			if raw := broadcast(Event{Type: EventSnapshotUpdated, Data: upd}); raw != nil {
				lastSnapshot = raw
			}

			now := time.Now()
			if now.Sub(lastNetwork) >= b.networkMin {
				lastNetwork = now
				broadcast(Event{Type: EventNetworkUpdated, Data: map[string]int64{"generation": upd.Generation}})
			}

		case resp := <-b.countReqCh:
			resp <- len(clients)
		}
	}
}

// Close stops the event loop and closes all client channels.
func (b *Broker) Close() {
	if b.closed.CompareAndSwap(false, true) {
		close(b.stopCh)
	}
	<-b.stopped
}

// Subscribe adds a new client and returns its channel. If a snapshot has
// already been announced, its snapshot.updated frame is queued first so late
// clients learn the current generation.
func (b *Broker) Subscribe() chan []byte {
	ch := make(chan []byte, clientBuffer)
	if b.closed.Load() {
		close(ch)
		return ch
	}

	select {
	case b.subscribeCh <- ch:
	case <-b.stopped:
		close(ch)
	}

	return ch
}

// Unsubscribe removes a client and closes its channel.
func (b *Broker) Unsubscribe(ch chan []byte) {
	if b.closed.Load() {
		return
	}
	select {
	case b.unsubscribeCh <- ch:
	case <-b.stopped:
	}
}

// ClientCount returns the number of connected clients.
func (b *Broker) ClientCount() int {
	if b.closed.Load() {
		return 0
	}

	resp := make(chan int, 1)
	select {
	case b.countReqCh <- resp:
	case <-b.stopped:
		return 0
	}

	select {
	case n := <-resp:
		return n
	case <-b.stopped:
		return 0
	}
}

// Publish sends an event to all connected clients.
func (b *Broker) Publish(event Event) {
	if b.closed.Load() {
		return
	}
	select {
	case b.publishCh <- event:
	case <-b.stopped:
	}
}

// PublishSnapshotEvent announces a newly recorded snapshot, followed by a
// throttled network.updated.
func (b *Broker) PublishSnapshotEvent(generation int64, checksum string) {
	if b.closed.Load() {
		return
	}
	select {
	case b.snapshotCh <- SnapshotUpdate{Generation: generation, Checksum: checksum}:
	case <-b.stopped:
	}
}

// ServeHTTP is the SSE endpoint handler (GET /api/events). A comment line is
// written periodically so idle proxies keep the connection open.
func (b *Broker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	ping := time.NewTicker(b.keepAlive)
	defer ping.Stop()

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ping.C:
			_, _ = w.Write([]byte(": ping\n\n"))
			flusher.Flush()
		case msg, ok := <-ch:
			if !ok {
				return
			}
			_, _ = w.Write(msg)
			flusher.Flush()
		}
	}
}
