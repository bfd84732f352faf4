package live

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

type recordingInvalidator struct {
	mu      sync.Mutex
	posts   []string
	columns []string
}

func (r *recordingInvalidator) InvalidatePost(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.posts = append(r.posts, id)
}

func (r *recordingInvalidator) InvalidateColumn(cid string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.columns = append(r.columns, cid)
}

func (r *recordingInvalidator) snapshot() ([]string, []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string{}, r.posts...), append([]string{}, r.columns...)
}

// wsServer upgrades incoming connections and sends the given raw
// messages, then keeps the connection open until the test ends.
func wsServer(t *testing.T, messages []string) string {
	t.Helper()

	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		for _, msg := range messages {
			if err := conn.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
				return
			}
		}
		// Hold the connection open; the client closes on ctx cancel.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	t.Cleanup(srv.Close)

	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not reached in time")
}

func TestFeedAppliesEvents(t *testing.T) {
	url := wsServer(t, []string{
		`{"kind":"post","id":"p1"}`,
		`{"kind":"column","id":"c2"}`,
		`{"kind":"post","id":"p3"}`,
	})

	inv := &recordingInvalidator{}
	feed := New(url, inv)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- feed.Run(ctx) }()

	waitFor(t, func() bool {
		posts, columns := inv.snapshot()
		return len(posts) == 2 && len(columns) == 1
	})

	posts, columns := inv.snapshot()
	if posts[0] != "p1" || posts[1] != "p3" {
		t.Errorf("unexpected post invalidations %v", posts)
	}
	if columns[0] != "c2" {
		t.Errorf("unexpected column invalidations %v", columns)
	}

	cancel()
	if err := <-done; err != nil {
		t.Errorf("expected nil on cancellation, got %v", err)
	}
}

func TestFeedSkipsMalformedAndUnknownEvents(t *testing.T) {
	url := wsServer(t, []string{
		`not json`,
		`{"kind":"mystery","id":"x"}`,
		`{"kind":"post","id":"p9"}`,
	})

	inv := &recordingInvalidator{}
	feed := New(url, inv)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- feed.Run(ctx) }()

	waitFor(t, func() bool {
		posts, _ := inv.snapshot()
		return len(posts) == 1
	})

	posts, columns := inv.snapshot()
	if len(posts) != 1 || posts[0] != "p9" || len(columns) != 0 {
		t.Errorf("unexpected invalidations posts=%v columns=%v", posts, columns)
	}

	cancel()
	<-done
}

func TestFeedDialFailure(t *testing.T) {
	inv := &recordingInvalidator{}
	feed := New("ws://127.0.0.1:1/ws", inv, WithHandshakeTimeout(200*time.Millisecond))

	if err := feed.Run(context.Background()); err == nil {
		t.Error("expected dial error")
	}
}
