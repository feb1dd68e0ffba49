// Package fanout maintains live subscriber connections and distributes
// matched news events to them in real time.
package fanout

import (
	"sync"

	"github.com/AmolDerickSoans/polyfloat-news/internal/logging"
	"github.com/AmolDerickSoans/polyfloat-news/internal/metrics"
)

// Conn is the transport handle for one subscriber. The websocket layer
// provides the concrete implementation.
type Conn interface {
	WriteJSON(v interface{}) error
	Close() error
}

// Registry tracks live subscriber connections: at most one per user_id.
// All mutation is serialized under one mutex so register, unregister and
// enumeration never interleave.
type Registry struct {
	mu     sync.Mutex
	conns  map[string]Conn
	logger *logging.Logger
}

// NewRegistry creates an empty connection registry.
func NewRegistry(logger *logging.Logger) *Registry {
	return &Registry{
		conns:  make(map[string]Conn),
		logger: logger.With(logging.Stage("fanout")),
	}
}

// Register adds a connection for the user. It returns false if the user
// already has a live connection; the existing connection is left intact.
func (r *Registry) Register(userID string, conn Conn) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.conns[userID]; ok {
		r.logger.Warn("user already connected", logging.UserID(userID))
		return false
	}

	r.conns[userID] = conn
	metrics.ActiveConnections.Set(float64(len(r.conns)))
	r.logger.Info("user connected",
		logging.UserID(userID), logging.Count(len(r.conns)))
	return true
}

// Unregister removes the user's connection if present.
func (r *Registry) Unregister(userID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.removeLocked(userID)
}

func (r *Registry) removeLocked(userID string) {
	if _, ok := r.conns[userID]; !ok {
		return
	}
	delete(r.conns, userID)
	metrics.ActiveConnections.Set(float64(len(r.conns)))
	r.logger.Info("user disconnected",
		logging.UserID(userID), logging.Count(len(r.conns)))
}

// Send delivers a message to one user. On transport failure the
// connection is torn down and false is returned; other connections are
// unaffected.
func (r *Registry) Send(userID string, message interface{}) bool {
	r.mu.Lock()
	conn, ok := r.conns[userID]
	r.mu.Unlock()
	if !ok {
		return false
	}

	if err := conn.WriteJSON(message); err != nil {
		r.logger.Warn("send failed, dropping connection",
			logging.UserID(userID), logging.Error(err))
		metrics.DeliveriesTotal.WithLabelValues("error").Inc()
		_ = conn.Close()
		r.Unregister(userID)
		return false
	}

	metrics.DeliveriesTotal.WithLabelValues("ok").Inc()
	return true
}

// Broadcast sends the message concurrently to each target user.
// Failures are isolated per target. A nil userIDs sends to everyone.
func (r *Registry) Broadcast(message interface{}, userIDs []string) {
	if userIDs == nil {
		userIDs = r.ConnectedIDs()
	}

	var wg sync.WaitGroup
	for _, id := range userIDs {
		wg.Add(1)
		go func(userID string) {
			defer wg.Done()
			r.Send(userID, message)
		}(id)
	}
	wg.Wait()
}

// ConnectedIDs returns a snapshot of currently connected user ids.
func (r *Registry) ConnectedIDs() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	ids := make([]string, 0, len(r.conns))
	for id := range r.conns {
		ids = append(ids, id)
	}
	return ids
}

// Count returns the number of live connections.
func (r *Registry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.conns)
}
