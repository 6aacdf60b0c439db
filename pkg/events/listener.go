package events

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jackc/pgx/v5"
)

// NotifyListener holds a dedicated PostgreSQL connection LISTENing on a
// fixed channel set and dispatches every notification to the broadcast
// function (the hub's fanout). The channel set is static — broadcast
// channels here are process-wide, not per-client — which keeps the receive
// loop the sole user of the pgx connection with no command plumbing.
type NotifyListener struct {
	connString string
	channels   []string
	broadcast  func(channel string, payload []byte)

	conn    *pgx.Conn
	connMu  sync.Mutex
	running atomic.Bool

	// cancelLoop and loopDone coordinate graceful shutdown of the receive
	// loop.
	cancelLoop context.CancelFunc
	loopDone   chan struct{}
}

// NewNotifyListener creates a listener for the given channels. broadcast is
// invoked from the receive loop; it must not block.
func NewNotifyListener(connString string, channels []string, broadcast func(channel string, payload []byte)) *NotifyListener {
	return &NotifyListener{
		connString: connString,
		channels:   channels,
		broadcast:  broadcast,
	}
}

// Start establishes the dedicated connection, issues LISTEN for every
// channel, and begins receiving notifications.
func (l *NotifyListener) Start(ctx context.Context) error {
	conn, err := pgx.Connect(ctx, l.connString)
	if err != nil {
		return fmt.Errorf("failed to connect for LISTEN: %w", err)
	}

	for _, ch := range l.channels {
		sanitized := pgx.Identifier{ch}.Sanitize()
		if _, err := conn.Exec(ctx, "LISTEN "+sanitized); err != nil {
			_ = conn.Close(ctx)
			return fmt.Errorf("LISTEN %s failed: %w", sanitized, err)
		}
	}

	l.connMu.Lock()
	l.conn = conn
	l.connMu.Unlock()
	l.running.Store(true)

	loopCtx, cancel := context.WithCancel(ctx)
	l.cancelLoop = cancel
	l.loopDone = make(chan struct{})
	go func() {
		defer close(l.loopDone)
		l.receiveLoop(loopCtx)
	}()

	slog.Info("NotifyListener started", "channels", l.channels)
	return nil
}

// Healthy reports whether the listener currently holds a live connection.
// Used by the readiness probe.
func (l *NotifyListener) Healthy() bool {
	if !l.running.Load() {
		return false
	}
	l.connMu.Lock()
	defer l.connMu.Unlock()
	return l.conn != nil
}

// receiveLoop continuously receives notifications and dispatches them. It is
// the sole goroutine that touches the pgx connection.
func (l *NotifyListener) receiveLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		l.connMu.Lock()
		conn := l.conn
		l.connMu.Unlock()

		if conn == nil {
			l.reconnect(ctx)
			continue
		}

		notification, err := conn.WaitForNotification(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return // Shutting down
			}
			slog.Error("NOTIFY receive error", "error", err)
			l.dropConn(ctx)
			l.reconnect(ctx)
			continue
		}

		l.broadcast(notification.Channel, []byte(notification.Payload))
	}
}

// dropConn closes and clears the current connection after a receive error.
func (l *NotifyListener) dropConn(ctx context.Context) {
	l.connMu.Lock()
	defer l.connMu.Unlock()
	if l.conn != nil {
		_ = l.conn.Close(ctx)
		l.conn = nil
	}
}

// reconnect re-establishes the connection with capped exponential backoff
// and re-issues LISTEN for every channel.
func (l *NotifyListener) reconnect(ctx context.Context) {
	backoff := time.Second
	for {
		select {
		case <-ctx.Done():
			return
		case <-time.After(backoff):
		}

		conn, err := pgx.Connect(ctx, l.connString)
		if err != nil {
			slog.Error("LISTEN reconnect failed", "error", err, "backoff", backoff)
			backoff = min(backoff*2, 30*time.Second)
			continue
		}

		ok := true
		for _, ch := range l.channels {
			sanitized := pgx.Identifier{ch}.Sanitize()
			if _, err := conn.Exec(ctx, "LISTEN "+sanitized); err != nil {
				slog.Error("Re-LISTEN failed", "channel", ch, "error", err)
				ok = false
				break
			}
		}
		if !ok {
			_ = conn.Close(ctx)
			backoff = min(backoff*2, 30*time.Second)
			continue
		}

		l.connMu.Lock()
		l.conn = conn
		l.connMu.Unlock()

		slog.Info("NotifyListener reconnected")
		return
	}
}

// Stop signals the receive loop to exit, waits for it to finish, then
// closes the connection.
func (l *NotifyListener) Stop(ctx context.Context) {
	l.running.Store(false)

	// The loop must exit before the connection closes, otherwise
	// WaitForNotification races conn.Close.
	if l.cancelLoop != nil {
		l.cancelLoop()
	}
	if l.loopDone != nil {
		<-l.loopDone
	}

	l.connMu.Lock()
	defer l.connMu.Unlock()
	if l.conn != nil {
		_ = l.conn.Close(ctx)
		l.conn = nil
	}
}
