// Package store is the single source of truth for the IDE. Panels read
// snapshots and subscribe to changes; all writes funnel through Set, which
// shallow-merges a Partial and notifies listeners of changed keys. The store
// reconciles with the native runtime through its event stream, backed by a
// timed poll for anything the events miss.
package store

import (
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/vividtools/vivid-ide/logging"
	"github.com/vividtools/vivid-ide/pkg/runtime"
)

// Listener receives the post-merge state snapshot.
type Listener func(AppState)

// subscription wraps a listener with a liveness flag so an unsubscribe
// takes effect even during the notification pass that observes it.
type subscription struct {
	fn    Listener
	alive bool
}

// Store owns the AppState and the listener registry. All methods are safe
// for concurrent use; listeners are invoked synchronously from the calling
// goroutine, outside the store lock, in registration order.
type Store struct {
	mu     sync.Mutex
	state  AppState
	global []*subscription
	keyed  map[string][]*subscription

	client *runtime.Client
	logger *logrus.Entry

	readyPollInterval int // milliseconds
	readyTimeout      int
	reconcileInterval int

	selMu  sync.Mutex
	selTag string // name the in-flight param fetch is for

	relay func(runtime.Event)
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithLogger sets the store logger.
func WithLogger(logger *logrus.Entry) StoreOption {
	return func(s *Store) { s.logger = logger }
}

// WithReadyPoll overrides the readiness poll interval and timeout, both in
// milliseconds.
func WithReadyPoll(intervalMS, timeoutMS int) StoreOption {
	return func(s *Store) {
		s.readyPollInterval = intervalMS
		s.readyTimeout = timeoutMS
	}
}

// WithReconcileInterval overrides the reconciliation poll interval in
// milliseconds. Zero disables the poll.
func WithReconcileInterval(intervalMS int) StoreOption {
	return func(s *Store) { s.reconcileInterval = intervalMS }
}

// WithEventRelay registers a callback that receives every runtime event
// after the store has applied its own handling. The TUI uses this to route
// output lines and menu actions to panels.
func WithEventRelay(fn func(runtime.Event)) StoreOption {
	return func(s *Store) { s.relay = fn }
}

// New creates a Store bound to a runtime client. Persisted layout flags are
// restored immediately; a read failure falls back to defaults.
func New(client *runtime.Client, opts ...StoreOption) *Store {
	s := &Store{
		keyed:             make(map[string][]*subscription),
		client:            client,
		logger:            logging.NewLogger("store"),
		readyPollInterval: 100,
		readyTimeout:      3000,
		reconcileInterval: 2000,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.state.Layout = loadLayout(s.logger)
	return s
}

// Get returns the current state snapshot.
func (s *Store) Get() AppState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Set shallow-merges the partial into the state and notifies all global
// listeners plus the listeners of each changed key. When no key changes,
// no listener runs.
func (s *Store) Set(p Partial) {
	s.mu.Lock()
	changed := merge(&s.state, p)
	if len(changed) == 0 {
		s.mu.Unlock()
		return
	}
	snapshot := s.state

	// Snapshot the listener sets under the lock, then invoke outside it so
	// listeners can call back into the store.
	pending := make([]*subscription, 0, len(s.global))
	pending = append(pending, s.global...)
	for _, key := range changed {
		pending = append(pending, s.keyed[key]...)
	}
	s.mu.Unlock()

	for _, sub := range pending {
		s.mu.Lock()
		alive := sub.alive
		s.mu.Unlock()
		if alive {
			sub.fn(snapshot)
		}
	}
}

// Subscribe registers a listener for every state change. The returned
// closure unsubscribes; calling it during a notification is safe.
func (s *Store) Subscribe(fn Listener) func() {
	sub := &subscription{fn: fn, alive: true}
	s.mu.Lock()
	s.global = append(s.global, sub)
	s.mu.Unlock()
	return s.unsubscriber(sub, "")
}

// SubscribeOnKey registers a listener invoked only when the named key
// changes.
func (s *Store) SubscribeOnKey(key string, fn Listener) func() {
	sub := &subscription{fn: fn, alive: true}
	s.mu.Lock()
	s.keyed[key] = append(s.keyed[key], sub)
	s.mu.Unlock()
	return s.unsubscriber(sub, key)
}

func (s *Store) unsubscriber(target *subscription, key string) func() {
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if !target.alive {
			return
		}
		target.alive = false
		if key == "" {
			s.global = removeSub(s.global, target)
		} else {
			s.keyed[key] = removeSub(s.keyed[key], target)
		}
	}
}

func removeSub(subs []*subscription, target *subscription) []*subscription {
	for i, sub := range subs {
		if sub == target {
			return append(subs[:i], subs[i+1:]...)
		}
	}
	return subs
}

// UpdateLayout merges the collapse flags into the layout and persists them
// synchronously. A persistence failure is logged; the in-memory state still
// changes.
func (s *Store) UpdateLayout(apply func(*LayoutState)) {
	s.mu.Lock()
	layout := s.state.Layout
	s.mu.Unlock()

	apply(&layout)
	s.Set(Partial{Layout: &layout})

	if err := persistLayout(layout); err != nil {
		s.logger.WithError(err).Warn("Failed to persist layout state")
	}
}
