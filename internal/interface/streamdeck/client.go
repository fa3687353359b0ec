// Package streamdeck implements the host WebSocket protocol for both the plugin
// process and the property inspector.
package streamdeck

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	defaultHost      = "127.0.0.1"
	handshakeTimeout = 10 * time.Second
)

// Params son los valores que el host entrega al cargar el plugin o el inspector.
type Params struct {
	Port          int
	UUID          string
	RegisterEvent string
	Info          HostInfo
	ActionInfo    ActionInfo
}

// Options tunes a Client. Every field is optional.
type Options struct {
	// Host overrides 127.0.0.1, mainly for tests.
	Host string
	// OnOpen runs after the registration frame and the initial settings requests.
	OnOpen func(ctx context.Context)
	// OnClose runs once when the socket closes or fails to open.
	OnClose func(err error)
	Dialer  *websocket.Dialer
}

// Client es una conexión al host con su tabla de eventos.
type Client struct {
	role       Role
	params     Params
	opts       Options
	dispatcher *Dispatcher
	dialer     *websocket.Dialer

	mu      sync.Mutex
	conn    *websocket.Conn
	open    bool
	closing bool

	closeOnce sync.Once
}

// NewClient builds a client for role. handlers may only contain events of that role.
func NewClient(role Role, params Params, handlers Handlers, opts Options) (*Client, error) {
	if params.Port <= 0 {
		return nil, fmt.Errorf("streamdeck: invalid port %d", params.Port)
	}
	if params.UUID == "" {
		return nil, errors.New("streamdeck: empty uuid")
	}
	if params.RegisterEvent == "" {
		return nil, errors.New("streamdeck: empty register event")
	}

	dispatcher, err := NewDispatcher(role, handlers)
	if err != nil {
		return nil, err
	}

	dialer := opts.Dialer
	if dialer == nil {
		dialer = &websocket.Dialer{
			HandshakeTimeout: handshakeTimeout,
		}
	}

	return &Client{
		role:       role,
		params:     params,
		opts:       opts,
		dispatcher: dispatcher,
		dialer:     dialer,
	}, nil
}

func (c *Client) Role() Role {
	return c.role
}

func (c *Client) UUID() string {
	return c.params.UUID
}

func (c *Client) Params() Params {
	return c.params
}

func (c *Client) url() string {
	host := c.opts.Host
	if host == "" {
		host = defaultHost
	}
	u := url.URL{Scheme: "ws", Host: net.JoinHostPort(host, strconv.Itoa(c.params.Port))}
	return u.String()
}

// Run connects, registers and dispatches inbound frames until the socket
// closes or ctx is cancelled. There is no reconnect.
func (c *Client) Run(ctx context.Context) error {
	conn, _, err := c.dialer.DialContext(ctx, c.url(), nil)
	if err != nil {
		err = fmt.Errorf("streamdeck: dial %s: %w", c.url(), err)
		slog.Error("streamdeck: connection failed", "role", c.role.String(), "error", err)
		c.notifyClose(err)
		return err
	}

	c.mu.Lock()
	c.conn = conn
	c.open = true
	c.mu.Unlock()

	slog.Info("streamdeck: connected", "role", c.role.String(), "port", c.params.Port)

	c.send(registration{Event: c.params.RegisterEvent, UUID: c.params.UUID})
	c.GetSettings(c.params.UUID)
	c.GetGlobalSettings()

	if c.opts.OnOpen != nil {
		c.opts.OnOpen(ctx)
	}

	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			c.Close()
		case <-stop:
		}
	}()

	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			closing := c.markClosed()
			if ctx.Err() != nil {
				c.notifyClose(ctx.Err())
				return ctx.Err()
			}
			if closing {
				c.notifyClose(nil)
				return nil
			}
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				slog.Info("streamdeck: connection closed by host", "role", c.role.String())
				c.notifyClose(nil)
				return nil
			}
			slog.Error("streamdeck: read error", "role", c.role.String(), "error", err)
			c.notifyClose(err)
			return fmt.Errorf("streamdeck: read: %w", err)
		}

		if msgType != websocket.TextMessage {
			continue
		}

		c.dispatcher.Dispatch(ctx, data)
	}
}

// IsOpen reports whether outbound helpers will currently write.
func (c *Client) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.open
}

// Close cierra el socket; los envíos posteriores se ignoran.
func (c *Client) Close() error {
	c.mu.Lock()
	conn := c.conn
	wasOpen := c.open
	c.open = false
	c.closing = true
	c.mu.Unlock()

	if conn == nil || !wasOpen {
		return nil
	}

	deadline := time.Now().Add(time.Second)
	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)
	return conn.Close()
}

func (c *Client) markClosed() (closing bool) {
	c.mu.Lock()
	c.open = false
	conn := c.conn
	closing = c.closing
	c.mu.Unlock()
	if conn != nil {
		_ = conn.Close()
	}
	return closing
}

func (c *Client) notifyClose(err error) {
	c.closeOnce.Do(func() {
		if c.opts.OnClose != nil {
			c.opts.OnClose(err)
		}
	})
}

// send writes v only when the socket is open. Failures are logged and dropped.
func (c *Client) send(v any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.open || c.conn == nil {
		return
	}

	data, err := json.Marshal(v)
	if err != nil {
		slog.Warn("streamdeck: encode outbound frame", "error", err)
		return
	}
	if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		slog.Warn("streamdeck: write failed", "role", c.role.String(), "error", err)
	}
}
