// Package runtime is the command/event bridge to the native vivid runtime
// process. Commands are request/response over HTTP on a Unix socket; events
// arrive over a websocket on the same socket. The bridge is transport only;
// Client adds the typed command surface.
package runtime

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"github.com/vividtools/vivid-ide/errors"
)

// baseURL is the dummy host used for Unix socket HTTP requests.
// The actual connection goes through the Unix socket, not this URL.
const baseURL = "http://unix"

// Bridge invokes named commands on the runtime and subscribes to its events.
type Bridge struct {
	httpClient *http.Client
	socketPath string
	timeout    time.Duration
	logger     *logrus.Entry
}

// Option configures a Bridge.
type Option func(*Bridge)

// WithCommandTimeout bounds each command invocation.
func WithCommandTimeout(d time.Duration) Option {
	return func(b *Bridge) { b.timeout = d }
}

// WithLogger sets the bridge logger.
func WithLogger(logger *logrus.Entry) Option {
	return func(b *Bridge) { b.logger = logger }
}

// NewBridge creates a Bridge talking to the runtime control socket.
func NewBridge(socketPath string, opts ...Option) *Bridge {
	b := &Bridge{
		socketPath: socketPath,
		timeout:    10 * time.Second,
		logger:     logrus.NewEntry(logrus.New()),
	}
	for _, opt := range opts {
		opt(b)
	}

	transport := &http.Transport{
		DialContext: func(ctx context.Context, _, _ string) (net.Conn, error) {
			var d net.Dialer
			return d.DialContext(ctx, "unix", socketPath)
		},
		DisableKeepAlives: false,
		MaxIdleConns:      10,
		IdleConnTimeout:   90 * time.Second,
	}
	b.httpClient = &http.Client{
		Transport: transport,
		Timeout:   b.timeout,
	}
	return b
}

// SocketPath returns the socket the bridge talks to.
func (b *Bridge) SocketPath() string {
	return b.socketPath
}

// envelope is the wire format of every command response.
type envelope struct {
	OK    bool            `json:"ok"`
	Value json.RawMessage `json:"value,omitempty"`
	Error string          `json:"error,omitempty"`
}

// Invoke calls a named command with the given params, decoding the response
// value into result when result is non-nil. Params may be nil for commands
// without arguments.
func (b *Bridge) Invoke(ctx context.Context, command string, params, result interface{}) error {
	var body bytes.Buffer
	if params != nil {
		if err := json.NewEncoder(&body).Encode(params); err != nil {
			return errors.Wrap(err, errors.ErrCodeInvalidInput, "failed to encode command params").
				WithDetail("command", command)
		}
	}

	url := fmt.Sprintf("%s/api/command/%s", baseURL, command)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &body)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeInternal, "failed to create request").
			WithDetail("command", command)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := b.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil || isTimeout(err) {
			return errors.CommandTimeout(command, err)
		}
		return errors.RuntimeUnreachable(b.socketPath, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return errors.CommandFailed(command, fmt.Sprintf("runtime returned status %d", resp.StatusCode))
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return errors.Wrap(err, errors.ErrCodeCommandFailed, "failed to decode response").
			WithDetail("command", command)
	}

	if !env.OK {
		return errors.CommandFailed(command, env.Error)
	}

	if result != nil && len(env.Value) > 0 {
		if err := json.Unmarshal(env.Value, result); err != nil {
			return errors.Wrap(err, errors.ErrCodeCommandFailed, "failed to decode command value").
				WithDetail("command", command)
		}
	}
	return nil
}

// Subscribe opens the event stream. Events are delivered in order on the
// returned channel, which closes when the context is cancelled or the
// connection drops. Missed events are tolerated by the store's
// reconciliation poll.
func (b *Bridge) Subscribe(ctx context.Context) (<-chan Event, error) {
	dialer := websocket.Dialer{
		NetDialContext: func(dialCtx context.Context, _, _ string) (net.Conn, error) {
			var d net.Dialer
			return d.DialContext(dialCtx, "unix", b.socketPath)
		},
		HandshakeTimeout: 5 * time.Second,
	}

	conn, resp, err := dialer.DialContext(ctx, "ws://unix/api/events", nil)
	if err != nil {
		return nil, errors.RuntimeUnreachable(b.socketPath, err)
	}
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}

	ch := make(chan Event, 64)

	// Close the connection when the context ends so the read loop unblocks.
	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	go func() {
		defer close(ch)
		defer conn.Close()

		for {
			var ev Event
			if err := conn.ReadJSON(&ev); err != nil {
				if ctx.Err() == nil {
					b.logger.WithError(err).Warn("Event stream closed")
				}
				return
			}

			select {
			case ch <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()

	return ch, nil
}

// IsRunning reports whether the runtime responds on its health endpoint.
func (b *Bridge) IsRunning() bool {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/health", nil)
	if err != nil {
		return false
	}

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// Close releases idle connections.
func (b *Bridge) Close() error {
	b.httpClient.CloseIdleConnections()
	return nil
}

func isTimeout(err error) bool {
	nerr, ok := err.(net.Error)
	return ok && nerr.Timeout()
}
