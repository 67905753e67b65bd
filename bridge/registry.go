package bridge

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"github.com/iamsorenl/Autogen-Chat-Demo/internal/runtimecfg"
	"github.com/iamsorenl/Autogen-Chat-Demo/logger"
)

// Conn is one live client connection. Send must be safe to call from the
// connection's writer goroutine while the transport reads on another.
type Conn interface {
	ID() string
	Send(ctx context.Context, payload []byte) error
}

// Registry tracks the live client connections and fans envelopes out to them.
// Each connection gets its own buffered writer goroutine, so one slow or
// failing client never delays delivery to the others.
type Registry struct {
	mu          sync.RWMutex
	peers       map[string]*peer
	buffer      int
	sendTimeout time.Duration
}

type peer struct {
	conn  Conn
	queue chan []byte
	done  chan struct{}
}

// NewRegistry creates an empty registry. buffer bounds how many envelopes may
// wait for a single slow connection before new ones are dropped for it.
func NewRegistry(buffer int) *Registry {
	if buffer <= 0 {
		buffer = runtimecfg.BridgeDefaultOutboundBuffer
	}
	return &Registry{
		peers:       make(map[string]*peer),
		buffer:      buffer,
		sendTimeout: runtimecfg.WebChannelPingTimeout,
	}
}

// Register adds conn and starts its writer. Registering an ID that is already
// present is a no-op and returns false.
func (r *Registry) Register(conn Conn) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := conn.ID()
	if _, exists := r.peers[id]; exists {
		return false
	}
	p := &peer{
		conn:  conn,
		queue: make(chan []byte, r.buffer),
		done:  make(chan struct{}),
	}
	r.peers[id] = p
	go r.writeLoop(p)

	logger.Info("client connected", "conn", id, "clients", len(r.peers))
	return true
}

// Unregister removes the connection with the given ID and stops its writer.
// Unknown IDs are ignored.
func (r *Registry) Unregister(id string) {
	r.mu.Lock()
	p, ok := r.peers[id]
	if ok {
		delete(r.peers, id)
	}
	n := len(r.peers)
	r.mu.Unlock()

	if !ok {
		return
	}
	close(p.done)
	logger.Info("client disconnected", "conn", id, "clients", n)
}

// Broadcast queues env for every registered connection and returns how many
// accepted it. Delivery itself is asynchronous; failures are logged per
// connection and never surface to the caller.
func (r *Registry) Broadcast(ctx context.Context, env Envelope) int {
	payload, err := json.Marshal(env)
	if err != nil {
		logger.Error("encode envelope failed", "err", err)
		return 0
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	queued := 0
	for id, p := range r.peers {
		if ctx.Err() != nil {
			break
		}
		select {
		case p.queue <- payload:
			queued++
		default:
			logger.Warn("client outbound buffer full, dropping message", "conn", id, "buffer", r.buffer)
		}
	}
	return queued
}

// Len returns the number of registered connections.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.peers)
}

// IDs returns the registered connection IDs in sorted order.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	ids := make([]string, 0, len(r.peers))
	for id := range r.peers {
		ids = append(ids, id)
	}
	r.mu.RUnlock()

	sort.Strings(ids)
	return ids
}

// Close unregisters every connection.
func (r *Registry) Close() {
	for _, id := range r.IDs() {
		r.Unregister(id)
	}
}

func (r *Registry) writeLoop(p *peer) {
	for {
		select {
		case <-p.done:
			return
		case payload := <-p.queue:
			ctx, cancel := context.WithTimeout(context.Background(), r.sendTimeout)
			err := p.conn.Send(ctx, payload)
			cancel()
			if err != nil {
				logger.Warn("send to client failed", "conn", p.conn.ID(), "err", err)
			}
		}
	}
}
