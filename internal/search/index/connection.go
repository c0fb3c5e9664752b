package index

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// DefaultReconnectInterval is how long a failed check is trusted before Ensure
// checks again.
const DefaultReconnectInterval = 30 * time.Second

// Status is a snapshot of a Connection.
type Status struct {
	Backend   string    `json:"backend"`
	Connected bool      `json:"connected"`
	LastCheck time.Time `json:"lastCheck"`
	LastError string    `json:"lastError,omitempty"`
}

// Connection owns the "is the backend available" state for one Client.
//
// The state starts unknown. The first Ensure checks the backend; later calls reuse
// the result. After a failed check, or after MarkUnavailable, Ensure checks again
// once the reconnect interval has passed. Safe for concurrent use.
type Connection struct {
	client            Client
	logger            *slog.Logger
	reconnectInterval time.Duration
	checkTimeout      time.Duration
	now               func() time.Time

	mu        sync.Mutex
	checked   bool
	connected bool
	lastCheck time.Time
	lastErr   error
}

// NewConnection creates a Connection for client. checkTimeout bounds each
// check when the caller's context has no earlier deadline.
func NewConnection(
	client Client,
	logger *slog.Logger,
	reconnectInterval time.Duration,
	checkTimeout time.Duration,
) *Connection {
	if reconnectInterval <= 0 {
		reconnectInterval = DefaultReconnectInterval
	}
	return &Connection{
		client:            client,
		logger:            logger,
		reconnectInterval: reconnectInterval,
		checkTimeout:      checkTimeout,
		now:               time.Now,
	}
}

// Client returns the underlying client.
func (c *Connection) Client() Client {
	return c.client
}

// Connect checks the backend now and records the outcome. It never fails;
// the return value is the new availability.
func (c *Connection) Connect(ctx context.Context) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.checkLocked(ctx)
}

// Ensure reports whether the backend is available, probing it when the state is
// unknown or a previous failure is older than the reconnect interval.
func (c *Connection) Ensure(ctx context.Context) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.connected {
		return true
	}
	if c.checked && c.now().Sub(c.lastCheck) < c.reconnectInterval {
		return false
	}
	return c.checkLocked(ctx)
}

// MarkUnavailable records a transient failure seen outside a check so the next
// Ensure waits for the reconnect interval before trying again.
func (c *Connection) MarkUnavailable(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.connected {
		c.logger.Warn("search backend marked unavailable",
			slog.String("backend", c.client.Backend()),
			slog.Any("error", err),
		)
	}
	c.checked = true
	c.connected = false
	c.lastCheck = c.now()
	c.lastErr = err
}

// Status returns a snapshot of the connection state.
func (c *Connection) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()

	status := Status{
		Backend:   c.client.Backend(),
		Connected: c.connected,
		LastCheck: c.lastCheck,
	}
	if c.lastErr != nil {
		status.LastError = c.lastErr.Error()
	}
	return status
}

func (c *Connection) checkLocked(ctx context.Context) bool {
	if c.checkTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.checkTimeout)
		defer cancel()
	}

	err := c.client.Ping(ctx)
	wasConnected := c.connected

	c.checked = true
	c.connected = err == nil
	c.lastCheck = c.now()
	c.lastErr = err

	switch {
	case err != nil:
		c.logger.Warn("search backend unavailable",
			slog.String("backend", c.client.Backend()),
			slog.Any("error", err),
		)
	case !wasConnected:
		c.logger.Info("search backend connected", slog.String("backend", c.client.Backend()))
	}
	return c.connected
}
