package engine

import (
	"sync"

	"auction-engine/utils"
)

const (
	// feedQueueSize bounds the per-auction ordered event queue.
	feedQueueSize = 256
	// observerQueueSize bounds one observer's unsent backlog before it is
	// considered too slow and dropped.
	observerQueueSize = 32
)

// ObserverConn is the send side of one live observer connection. Send must
// be safe for use by a single goroutine at a time; the hub guarantees that.
type ObserverConn interface {
	Send(event Event) error
	Close() error
}

// Hub tracks the set of live observer connections per auction and fans out
// events to them. All publishes for one auction flow through that auction's
// single feed goroutine, so every observer of an auction sees events in the
// same order they were published. A slow or failed observer is dropped, never
// waited on.
type Hub struct {
	mu    sync.Mutex
	feeds map[int64]*auctionFeed
	conns map[ObserverConn]*observer
	done  bool
}

// auctionFeed is the single-writer delivery funnel for one auction.
type auctionFeed struct {
	auctionID int64
	events    chan Event

	mu        sync.Mutex
	observers map[*observer]struct{}
}

// observer pairs a connection with its buffered outbound queue. The send
// channel is never closed; shutdown signals through done so a feed holding a
// stale observer snapshot can never panic on a late enqueue.
type observer struct {
	conn      ObserverConn
	auctionID int64
	send      chan Event
	done      chan struct{}
	stop      sync.Once
}

// NewHub creates an empty broadcast hub
func NewHub() *Hub {
	return &Hub{
		feeds: make(map[int64]*auctionFeed),
		conns: make(map[ObserverConn]*observer),
	}
}

// Register attaches a connection to an auction's event feed. The feed and
// its delivery goroutine are created on first registration.
func (h *Hub) Register(auctionID int64, conn ObserverConn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.done {
		return
	}
	if _, ok := h.conns[conn]; ok {
		return
	}

	feed, ok := h.feeds[auctionID]
	if !ok {
		feed = &auctionFeed{
			auctionID: auctionID,
			events:    make(chan Event, feedQueueSize),
			observers: make(map[*observer]struct{}),
		}
		h.feeds[auctionID] = feed
		go feed.run(h)
	}

	obs := &observer{
		conn:      conn,
		auctionID: auctionID,
		send:      make(chan Event, observerQueueSize),
		done:      make(chan struct{}),
	}
	h.conns[conn] = obs

	feed.mu.Lock()
	feed.observers[obs] = struct{}{}
	feed.mu.Unlock()

	go obs.writeLoop(h)
}

// Unregister detaches a connection; no further events are delivered to it.
// Unregistering an unknown connection is a no-op.
func (h *Hub) Unregister(conn ObserverConn) {
	h.mu.Lock()
	obs, ok := h.conns[conn]
	if ok {
		delete(h.conns, conn)
		if feed := h.feeds[obs.auctionID]; feed != nil {
			feed.mu.Lock()
			delete(feed.observers, obs)
			empty := len(feed.observers) == 0
			feed.mu.Unlock()
			if empty {
				delete(h.feeds, obs.auctionID)
				close(feed.events)
			}
		}
	}
	h.mu.Unlock()

	if ok {
		obs.shutdown()
	}
}

// Publish enqueues an event on an auction's feed. With no registered
// observers the event is dropped. Publish never blocks: a feed whose queue
// is full loses the event and logs the overflow.
func (h *Hub) Publish(auctionID int64, event Event) {
	h.mu.Lock()
	defer h.mu.Unlock()

	feed, ok := h.feeds[auctionID]
	if !ok || h.done {
		return
	}

	select {
	case feed.events <- event:
	default:
		utils.Warn("hub: event queue full, dropping event", map[string]any{
			"auction_id": auctionID,
			"type":       event.Type,
		})
	}
}

// ObserverCount returns the number of live observers for an auction
func (h *Hub) ObserverCount(auctionID int64) int {
	h.mu.Lock()
	feed, ok := h.feeds[auctionID]
	h.mu.Unlock()
	if !ok {
		return 0
	}

	feed.mu.Lock()
	defer feed.mu.Unlock()
	return len(feed.observers)
}

// Close drops every observer and stops all feeds
func (h *Hub) Close() {
	h.mu.Lock()
	h.done = true
	observers := make([]*observer, 0, len(h.conns))
	for _, obs := range h.conns {
		observers = append(observers, obs)
	}
	h.conns = make(map[ObserverConn]*observer)
	for id, feed := range h.feeds {
		delete(h.feeds, id)
		close(feed.events)
	}
	h.mu.Unlock()

	for _, obs := range observers {
		obs.shutdown()
	}
}

// run delivers each feed event to every observer in registration set order.
// Runs until the feed's channel is closed by the hub.
func (f *auctionFeed) run(h *Hub) {
	for event := range f.events {
		f.mu.Lock()
		observers := make([]*observer, 0, len(f.observers))
		for obs := range f.observers {
			observers = append(observers, obs)
		}
		f.mu.Unlock()

		for _, obs := range observers {
			select {
			case obs.send <- event:
			default:
				// observer cannot keep up; drop it rather than block the feed
				utils.Warn("hub: observer too slow, dropping", map[string]any{
					"auction_id": f.auctionID,
				})
				h.Unregister(obs.conn)
			}
		}
	}
}

// writeLoop drains the observer's queue onto its connection. A send error
// unregisters the connection.
func (o *observer) writeLoop(h *Hub) {
	for {
		select {
		case event := <-o.send:
			if err := o.conn.Send(event); err != nil {
				utils.Debug("hub: observer send failed, dropping", map[string]any{
					"auction_id": o.auctionID,
					"error":      err.Error(),
				})
				h.Unregister(o.conn)
				return
			}
		case <-o.done:
			return
		}
	}
}

// shutdown stops the write loop and closes the connection exactly once
func (o *observer) shutdown() {
	o.stop.Do(func() {
		close(o.done)
		_ = o.conn.Close()
	})
}
