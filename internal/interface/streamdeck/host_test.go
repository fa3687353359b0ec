package streamdeck

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
)

// fakeHost plays the Stream Deck application side of the socket.
type fakeHost struct {
	t        *testing.T
	srv      *httptest.Server
	upgrader websocket.Upgrader

	mu     sync.Mutex
	conn   *websocket.Conn
	frames chan map[string]any
	ready  chan struct{}
}

func newFakeHost(t *testing.T) *fakeHost {
	t.Helper()
	h := &fakeHost{
		t:      t,
		frames: make(chan map[string]any, 64),
		ready:  make(chan struct{}),
	}
	h.srv = httptest.NewServer(http.HandlerFunc(h.handle))
	t.Cleanup(h.srv.Close)
	return h
}

func (h *fakeHost) handle(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	h.mu.Lock()
	h.conn = conn
	h.mu.Unlock()
	close(h.ready)

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var frame map[string]any
		if err := json.Unmarshal(data, &frame); err == nil {
			h.frames <- frame
		}
	}
}

func (h *fakeHost) hostPort() (string, int) {
	u, err := url.Parse(h.srv.URL)
	require.NoError(h.t, err)
	port, err := strconv.Atoi(u.Port())
	require.NoError(h.t, err)
	return u.Hostname(), port
}

func (h *fakeHost) params(registerEvent string) (Params, Options) {
	host, port := h.hostPort()
	return Params{Port: port, UUID: "uuid-1", RegisterEvent: registerEvent}, Options{Host: host}
}

func (h *fakeHost) waitConnected() {
	h.t.Helper()
	select {
	case <-h.ready:
	case <-time.After(2 * time.Second):
		h.t.Fatal("client never connected")
	}
}

func (h *fakeHost) send(v any) {
	h.t.Helper()
	h.mu.Lock()
	defer h.mu.Unlock()
	require.NoError(h.t, h.conn.WriteJSON(v))
}

func (h *fakeHost) sendRaw(data string) {
	h.t.Helper()
	h.mu.Lock()
	defer h.mu.Unlock()
	require.NoError(h.t, h.conn.WriteMessage(websocket.TextMessage, []byte(data)))
}

func (h *fakeHost) closeConn() {
	h.mu.Lock()
	defer h.mu.Unlock()
	_ = h.conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye"))
	_ = h.conn.Close()
}

func (h *fakeHost) next() map[string]any {
	h.t.Helper()
	select {
	case f := <-h.frames:
		return f
	case <-time.After(2 * time.Second):
		h.t.Fatal("no frame received")
		return nil
	}
}

// expectNone asserts that no frame arrives within a short window.
func (h *fakeHost) expectNone() {
	h.t.Helper()
	select {
	case f := <-h.frames:
		h.t.Fatalf("unexpected frame %v", f)
	case <-time.After(100 * time.Millisecond):
	}
}
