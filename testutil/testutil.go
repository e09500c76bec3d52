// Package testutil provides shared test helpers, most importantly a fake
// vivid runtime serving the command/event protocol on a Unix socket.
package testutil

import (
	"encoding/json"
	"io"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/gorilla/websocket"
)

// CommandHandler produces the value (or error string) for one fake command.
type CommandHandler func(params json.RawMessage) (interface{}, string)

// FakeRuntime is an in-process stand-in for the native vivid runtime. It
// serves the same HTTP command endpoints and websocket event stream that the
// real runtime exposes on its control socket.
type FakeRuntime struct {
	t          *testing.T
	socketPath string
	server     *http.Server
	listener   net.Listener
	upgrader   websocket.Upgrader

	mu       sync.Mutex
	handlers map[string]CommandHandler
	calls    map[string]int
	lastBody map[string]json.RawMessage
	conns    map[*websocket.Conn]struct{}
}

// NewFakeRuntime starts a fake runtime on a fresh socket. It is shut down
// automatically via t.Cleanup.
func NewFakeRuntime(t *testing.T) *FakeRuntime {
	t.Helper()

	dir, err := os.MkdirTemp("", "vivid-test")
	if err != nil {
		t.Fatalf("failed to create socket dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(dir) })

	f := &FakeRuntime{
		t:          t,
		socketPath: filepath.Join(dir, "runtime.sock"),
		handlers:   make(map[string]CommandHandler),
		calls:      make(map[string]int),
		lastBody:   make(map[string]json.RawMessage),
		conns:      make(map[*websocket.Conn]struct{}),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/api/command/", f.handleCommand)
	mux.HandleFunc("/api/events", f.handleEvents)

	listener, err := net.Listen("unix", f.socketPath)
	if err != nil {
		t.Fatalf("failed to listen on socket: %v", err)
	}
	f.listener = listener
	f.server = &http.Server{Handler: mux}

	go f.server.Serve(listener)
	t.Cleanup(f.Close)

	return f
}

// SocketPath returns the control socket path.
func (f *FakeRuntime) SocketPath() string {
	return f.socketPath
}

// Handle registers the handler for a named command.
func (f *FakeRuntime) Handle(command string, handler CommandHandler) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.handlers[command] = handler
}

// HandleValue registers a handler that always returns the given value.
func (f *FakeRuntime) HandleValue(command string, value interface{}) {
	f.Handle(command, func(json.RawMessage) (interface{}, string) {
		return value, ""
	})
}

// HandleError registers a handler that always fails with the given message.
func (f *FakeRuntime) HandleError(command, message string) {
	f.Handle(command, func(json.RawMessage) (interface{}, string) {
		return nil, message
	})
}

// Calls returns how many times a command has been invoked.
func (f *FakeRuntime) Calls(command string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[command]
}

// LastParams decodes the most recent params of a command into target.
func (f *FakeRuntime) LastParams(command string, target interface{}) {
	f.t.Helper()
	f.mu.Lock()
	body := f.lastBody[command]
	f.mu.Unlock()
	if body == nil {
		f.t.Fatalf("command %s was never invoked with params", command)
	}
	if err := json.Unmarshal(body, target); err != nil {
		f.t.Fatalf("failed to decode params for %s: %v", command, err)
	}
}

// Emit broadcasts a named event to all event subscribers.
func (f *FakeRuntime) Emit(name string, payload interface{}) {
	f.t.Helper()

	data, err := json.Marshal(payload)
	if err != nil {
		f.t.Fatalf("failed to marshal event payload: %v", err)
	}
	msg := struct {
		Event   string          `json:"event"`
		Payload json.RawMessage `json:"payload,omitempty"`
	}{Event: name, Payload: data}

	f.mu.Lock()
	defer f.mu.Unlock()
	for conn := range f.conns {
		if err := conn.WriteJSON(msg); err != nil {
			delete(f.conns, conn)
			conn.Close()
		}
	}
}

// Close shuts down the fake runtime.
func (f *FakeRuntime) Close() {
	f.mu.Lock()
	for conn := range f.conns {
		conn.Close()
	}
	f.conns = make(map[*websocket.Conn]struct{})
	f.mu.Unlock()
	f.server.Close()
}

func (f *FakeRuntime) handleCommand(w http.ResponseWriter, r *http.Request) {
	command := strings.TrimPrefix(r.URL.Path, "/api/command/")
	body, _ := io.ReadAll(r.Body)

	f.mu.Lock()
	f.calls[command]++
	if len(body) > 0 {
		f.lastBody[command] = json.RawMessage(body)
	}
	handler := f.handlers[command]
	f.mu.Unlock()

	type envelope struct {
		OK    bool        `json:"ok"`
		Value interface{} `json:"value,omitempty"`
		Error string      `json:"error,omitempty"`
	}

	w.Header().Set("Content-Type", "application/json")
	if handler == nil {
		json.NewEncoder(w).Encode(envelope{OK: false, Error: "unknown command: " + command})
		return
	}

	value, errMsg := handler(body)
	if errMsg != "" {
		json.NewEncoder(w).Encode(envelope{OK: false, Error: errMsg})
		return
	}
	json.NewEncoder(w).Encode(envelope{OK: true, Value: value})
}

func (f *FakeRuntime) handleEvents(w http.ResponseWriter, r *http.Request) {
	conn, err := f.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}

	f.mu.Lock()
	f.conns[conn] = struct{}{}
	f.mu.Unlock()

	// Drain (and discard) client frames so close handshakes are processed.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				f.mu.Lock()
				delete(f.conns, conn)
				f.mu.Unlock()
				conn.Close()
				return
			}
		}
	}()
}

// WriteProjectFile creates a file inside a temp project dir, returning its path.
func WriteProjectFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("failed to create dir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}
	return path
}
