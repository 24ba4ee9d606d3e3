// Package hub provides a thread-safe websocket broadcast hub
// using the idiomatic Go channel-based fan-out pattern.
package hub

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/teslashibe/go-eyes/internal/log"
	"github.com/teslashibe/go-eyes/pkg/protocol"
)

// bufferSize is the per-client and broadcast queue depth.
const bufferSize = 256

type direct struct {
	client *Client
	data   []byte
}

// Hub maintains the set of active clients and broadcasts messages to them
type Hub struct {
	// Name for logging
	name string

	// Registered clients, owned by Run
	clients map[*Client]bool

	// Encoded messages to broadcast
	broadcast chan []byte

	// Messages for a single client
	direct chan direct

	// Register requests from clients
	register chan *Client

	// Unregister requests from clients
	unregister chan *Client

	// Closed when Run returns
	done     chan struct{}
	doneOnce sync.Once

	count   atomic.Int64
	running atomic.Bool
}

// New creates a new Hub
func New(name string) *Hub {
	return &Hub{
		name:       name,
		clients:    make(map[*Client]bool),
		broadcast:  make(chan []byte, bufferSize),
		direct:     make(chan direct, bufferSize),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

// Run dispatches messages until ctx is canceled, then disconnects every
// client. It should be called in a goroutine.
func (h *Hub) Run(ctx context.Context) {
	h.running.Store(true)
	logger := log.With("hub", h.name)
	defer func() {
		for client := range h.clients {
			h.drop(client)
		}
		h.running.Store(false)
		h.doneOnce.Do(func() { close(h.done) })
		logger.Debug("hub stopped")
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case client := <-h.register:
			h.clients[client] = true
			h.count.Store(int64(len(h.clients)))
			logger.Info("client connected", "clients", len(h.clients))

		case client := <-h.unregister:
			if h.clients[client] {
				h.drop(client)
				logger.Info("client disconnected", "clients", len(h.clients))
			}

		case d := <-h.direct:
			if h.clients[d.client] {
				h.deliver(d.client, d.data)
			}

		case data := <-h.broadcast:
			for client := range h.clients {
				h.deliver(client, data)
			}
		}
	}
}

// deliver queues data for client, dropping the client when its buffer is
// full.
func (h *Hub) deliver(client *Client, data []byte) {
	select {
	case client.send <- data:
	default:
		h.drop(client)
		log.Warn("dropped slow client", "hub", h.name)
	}
}

func (h *Hub) drop(client *Client) {
	delete(h.clients, client)
	close(client.send)
	h.count.Store(int64(len(h.clients)))
}

// Broadcast encodes msg and sends it to all connected clients. The message
// is dropped when the broadcast queue is full.
func (h *Hub) Broadcast(msg *protocol.Message) error {
	data, err := msg.Bytes()
	if err != nil {
		return err
	}
	select {
	case h.broadcast <- data:
	default:
		log.Warn("broadcast queue full, dropping message", "hub", h.name, "type", string(msg.Type))
	}
	return nil
}

// Send encodes msg and sends it to one client.
func (h *Hub) Send(client *Client, msg *protocol.Message) error {
	data, err := msg.Bytes()
	if err != nil {
		return err
	}
	select {
	case h.direct <- direct{client: client, data: data}:
	case <-h.done:
	}
	return nil
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	return int(h.count.Load())
}

// IsRunning returns whether the hub is running
func (h *Hub) IsRunning() bool {
	return h.running.Load()
}
