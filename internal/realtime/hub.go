// Package realtime keeps the process-local registry of live client connections
// and pushes notification envelopes to them.
package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

const (
	TypeAuth         = "AUTH"
	TypeAuthOK       = "AUTH_OK"
	TypeAuthError    = "AUTH_ERROR"
	TypeNotification = "NOTIFICATION"
)

// Conn is the duplex transport under one client.
type Conn interface {
	WriteText(data []byte) error
	Ping() error
	Close() error
}

// Envelope is the outbound message frame.
type Envelope struct {
	Type  string `json:"type"`
	Data  any    `json:"data,omitempty"`
	Error string `json:"error,omitempty"`
}

// Inbound is the frame a client sends to bind itself to a user.
type Inbound struct {
	Type   string `json:"type"`
	UserID string `json:"userId"`
	Token  string `json:"token"`
}

type Client struct {
	id      uint64
	conn    Conn
	writeMu sync.Mutex
	alive   atomic.Bool

	// guarded by Hub.mu
	userID uuid.UUID
	authed bool
}

func (c *Client) write(data []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.conn.WriteText(data)
}

func (c *Client) ping() error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.conn.Ping()
}

type pending struct {
	userID  *uuid.UUID // nil for broadcast
	exclude *uuid.UUID
	data    []byte
}

type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]struct{}
	users   map[uuid.UUID]map[*Client]struct{}
	ready   bool
	queue   []pending

	nextID       atomic.Uint64
	pingInterval time.Duration
}

func NewHub(pingInterval time.Duration) *Hub {
	if pingInterval <= 0 {
		pingInterval = 30 * time.Second
	}
	return &Hub{
		clients:      make(map[*Client]struct{}),
		users:        make(map[uuid.UUID]map[*Client]struct{}),
		pingInterval: pingInterval,
	}
}

// Register tracks a new unauthenticated connection.
func (h *Hub) Register(conn Conn) *Client {
	c := &Client{id: h.nextID.Add(1), conn: conn}
	c.alive.Store(true)

	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
	return c
}

// Authenticate binds c to userID. A client re-authenticating as someone else
// moves to the new user.
func (h *Hub) Authenticate(c *Client, userID uuid.UUID) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[c]; !ok {
		return errors.New("client is not registered")
	}
	if c.authed {
		if c.userID == userID {
			return nil
		}
		h.detachLocked(c)
	}
	c.userID = userID
	c.authed = true

	set, ok := h.users[userID]
	if !ok {
		set = make(map[*Client]struct{})
		h.users[userID] = set
	}
	set[c] = struct{}{}
	slog.Debug("realtime client authenticated", "client", c.id, "user_id", userID.String())
	return nil
}

// Unregister drops c and closes its connection. Calling it twice is harmless.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	_, ok := h.clients[c]
	if ok {
		delete(h.clients, c)
		h.detachLocked(c)
	}
	h.mu.Unlock()

	if ok {
		_ = c.conn.Close()
	}
}

// detachLocked removes c from its user's set and the user entry with it once
// empty. h.mu must be held.
func (h *Hub) detachLocked(c *Client) {
	if !c.authed {
		return
	}
	if set, ok := h.users[c.userID]; ok {
		delete(set, c)
		if len(set) == 0 {
			delete(h.users, c.userID)
		}
	}
	c.authed = false
}

// MarkAlive records a liveness acknowledgment for c.
func (h *Hub) MarkAlive(c *Client) {
	c.alive.Store(true)
}

// SendToUser pushes payload to every open connection of userID. Before Run
// has started the message is queued instead.
func (h *Hub) SendToUser(userID uuid.UUID, payload any) error {
	data, err := json.Marshal(Envelope{Type: TypeNotification, Data: payload})
	if err != nil {
		return fmt.Errorf("encode envelope: %w", err)
	}

	h.mu.Lock()
	if !h.ready {
		id := userID
		h.queue = append(h.queue, pending{userID: &id, data: data})
		h.mu.Unlock()
		return nil
	}
	targets := make([]*Client, 0, len(h.users[userID]))
	for c := range h.users[userID] {
		targets = append(targets, c)
	}
	h.mu.Unlock()

	return h.deliver(targets, data)
}

// Broadcast pushes payload to every open connection except those of exclude.
func (h *Hub) Broadcast(payload any, exclude *uuid.UUID) error {
	data, err := json.Marshal(Envelope{Type: TypeNotification, Data: payload})
	if err != nil {
		return fmt.Errorf("encode envelope: %w", err)
	}

	h.mu.Lock()
	if !h.ready {
		h.queue = append(h.queue, pending{exclude: exclude, data: data})
		h.mu.Unlock()
		return nil
	}
	targets := h.broadcastTargetsLocked(exclude)
	h.mu.Unlock()

	return h.deliver(targets, data)
}

func (h *Hub) broadcastTargetsLocked(exclude *uuid.UUID) []*Client {
	targets := make([]*Client, 0, len(h.clients))
	for c := range h.clients {
		if exclude != nil && c.authed && c.userID == *exclude {
			continue
		}
		targets = append(targets, c)
	}
	return targets
}

// Reply writes an envelope to a single client.
func (h *Hub) Reply(c *Client, env Envelope) error {
	data, err := json.Marshal(env)
	if err != nil {
		return err
	}
	return c.write(data)
}

func (h *Hub) deliver(targets []*Client, data []byte) error {
	var errs []error
	for _, c := range targets {
		if err := c.write(data); err != nil {
			errs = append(errs, fmt.Errorf("client %d: %w", c.id, err))
			h.Unregister(c)
		}
	}
	return errors.Join(errs...)
}

func (h *Hub) GetConnectedUsers() []uuid.UUID {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]uuid.UUID, 0, len(h.users))
	for id := range h.users {
		out = append(out, id)
	}
	return out
}

// ConnectionCount returns the number of open connections, authenticated or not.
func (h *Hub) ConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Probe closes every client that has not acknowledged the previous probe and
// pings the rest, marking them unacknowledged.
func (h *Hub) Probe() int {
	h.mu.RLock()
	all := make([]*Client, 0, len(h.clients))
	for c := range h.clients {
		all = append(all, c)
	}
	h.mu.RUnlock()

	closed := 0
	for _, c := range all {
		if !c.alive.Swap(false) {
			h.Unregister(c)
			closed++
			continue
		}
		if err := c.ping(); err != nil {
			h.Unregister(c)
			closed++
		}
	}
	if closed > 0 {
		slog.Info("realtime probe closed dead connections", "closed", closed)
	}
	return closed
}

// Run marks the hub ready, replays queued messages in order and probes
// connections until ctx is done. All connections are closed on return.
func (h *Hub) Run(ctx context.Context) {
	h.drainQueue()

	ticker := time.NewTicker(h.pingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return
		case <-ticker.C:
			h.Probe()
		}
	}
}

// drainQueue replays queued messages until the queue stays empty, then marks
// the hub ready so later sends go out directly and in order.
func (h *Hub) drainQueue() {
	for {
		h.mu.Lock()
		if len(h.queue) == 0 {
			h.ready = true
			h.mu.Unlock()
			return
		}
		queued := h.queue
		h.queue = nil
		h.mu.Unlock()

		for _, p := range queued {
			h.mu.RLock()
			var targets []*Client
			if p.userID != nil {
				for c := range h.users[*p.userID] {
					targets = append(targets, c)
				}
			} else {
				targets = h.broadcastTargetsLocked(p.exclude)
			}
			h.mu.RUnlock()

			if err := h.deliver(targets, p.data); err != nil {
				slog.Warn("queued realtime message not delivered", "error", err)
			}
		}
	}
}

// Ready reports whether Run has started.
func (h *Hub) Ready() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.ready
}

func (h *Hub) closeAll() {
	h.mu.RLock()
	all := make([]*Client, 0, len(h.clients))
	for c := range h.clients {
		all = append(all, c)
	}
	h.mu.RUnlock()
	for _, c := range all {
		h.Unregister(c)
	}
}
