package live

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

// Event is one server-pushed change notification. The feed does not
// carry entity bodies; it only names what went stale.
type Event struct {
	// Kind is "post" or "column".
	Kind string `json:"kind"`

	// ID is the entity id that changed.
	ID string `json:"id"`
}

// Invalidator receives staleness notifications. The store implements it;
// evicted entries are refetched by the next action that needs them.
type Invalidator interface {
	InvalidatePost(id string)
	InvalidateColumn(cid string)
}

// Feed subscribes to the backend's update stream over a websocket and
// forwards invalidations to the store.
type Feed struct {
	url     string
	dialer  *websocket.Dialer
	header  http.Header
	inv     Invalidator
	logger  *slog.Logger
	timeout time.Duration
}

// FeedOption configures a Feed.
type FeedOption func(*Feed)

// WithDialer sets the websocket dialer.
func WithDialer(d *websocket.Dialer) FeedOption {
	return func(f *Feed) {
		f.dialer = d
	}
}

// WithHeader sets extra handshake headers, e.g. the bearer credential.
func WithHeader(h http.Header) FeedOption {
	return func(f *Feed) {
		f.header = h
	}
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) FeedOption {
	return func(f *Feed) {
		f.logger = l
	}
}

// WithHandshakeTimeout bounds the dial. Default: 10 seconds.
func WithHandshakeTimeout(d time.Duration) FeedOption {
	return func(f *Feed) {
		f.timeout = d
	}
}

// New creates a feed for the given ws:// or wss:// URL.
func New(url string, inv Invalidator, opts ...FeedOption) *Feed {
	f := &Feed{
		url:     url,
		dialer:  websocket.DefaultDialer,
		inv:     inv,
		logger:  slog.Default(),
		timeout: 10 * time.Second,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Run dials the stream and applies events until the context is cancelled
// or the connection drops. Returns nil on cancellation, the read or dial
// error otherwise. Reconnecting is the caller's policy.
func (f *Feed) Run(ctx context.Context) error {
	dialer := *f.dialer
	dialer.HandshakeTimeout = f.timeout

	conn, _, err := dialer.DialContext(ctx, f.url, f.header)
	if err != nil {
		return fmt.Errorf("dial update feed: %w", err)
	}
	defer conn.Close()

	// Unblock the read loop when the context ends.
	stop := context.AfterFunc(ctx, func() {
		conn.Close()
	})
	defer stop()

	f.logger.Debug("update feed connected", "url", f.url)

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("read update feed: %w", err)
		}

		var ev Event
		if err := json.Unmarshal(msg, &ev); err != nil {
			f.logger.Warn("malformed update event", "error", err)
			continue
		}
		f.apply(ev)
	}
}

func (f *Feed) apply(ev Event) {
	switch ev.Kind {
	case "post":
		f.logger.Debug("invalidating post", "id", ev.ID)
		f.inv.InvalidatePost(ev.ID)
	case "column":
		f.logger.Debug("invalidating column", "id", ev.ID)
		f.inv.InvalidateColumn(ev.ID)
	default:
		f.logger.Warn("unknown update event kind", "kind", ev.Kind)
	}
}
