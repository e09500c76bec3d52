package store_test

import (
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vividtools/vivid-ide/pkg/runtime"
	"github.com/vividtools/vivid-ide/store"
)

func quietLogger() *logrus.Entry {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logrus.NewEntry(logger)
}

func newStore(t *testing.T) *store.Store {
	t.Helper()
	t.Setenv("VIVID_HOME", t.TempDir())
	return store.New(nil, store.WithLogger(quietLogger()))
}

func TestSetShallowMerge(t *testing.T) {
	s := newStore(t)

	s.Set(store.Partial{ProjectPath: store.Ptr("/work/sketch")})
	s.Set(store.Partial{ProjectLoaded: store.Ptr(true)})
	s.Set(store.Partial{SelectedOperator: store.Ptr("noise1")})

	got := s.Get()
	assert.Equal(t, "/work/sketch", got.ProjectPath)
	assert.True(t, got.ProjectLoaded)
	assert.Equal(t, "noise1", got.SelectedOperator)

	// A later partial leaves untouched fields alone.
	s.Set(store.Partial{ChainPath: store.Ptr("/work/sketch/chain.cpp")})
	got = s.Get()
	assert.Equal(t, "/work/sketch", got.ProjectPath)
	assert.Equal(t, "/work/sketch/chain.cpp", got.ChainPath)
	assert.Equal(t, "noise1", got.SelectedOperator)
}

func TestKeyedListenerFiresOnlyOnChange(t *testing.T) {
	s := newStore(t)

	var calls int
	s.SubscribeOnKey(store.KeySelectedOperator, func(store.AppState) {
		calls++
	})

	s.Set(store.Partial{SelectedOperator: store.Ptr("noise1")})
	assert.Equal(t, 1, calls)

	// Unrelated key.
	s.Set(store.Partial{ProjectLoaded: store.Ptr(true)})
	assert.Equal(t, 1, calls)

	// Same value is not a change.
	s.Set(store.Partial{SelectedOperator: store.Ptr("noise1")})
	assert.Equal(t, 1, calls)

	s.Set(store.Partial{SelectedOperator: store.Ptr("blur1")})
	assert.Equal(t, 2, calls)
}

func TestSliceKeysChangeWheneverSupplied(t *testing.T) {
	s := newStore(t)

	var calls int
	s.SubscribeOnKey(store.KeyOperators, func(store.AppState) {
		calls++
	})

	ops := []runtime.OperatorInfo{{Name: "noise1", TypeName: "Noise"}}
	s.Set(store.Partial{Operators: &ops})
	s.Set(store.Partial{Operators: &ops})
	assert.Equal(t, 2, calls)
}

func TestGlobalListenersRunInRegistrationOrder(t *testing.T) {
	s := newStore(t)

	var order []string
	s.Subscribe(func(store.AppState) { order = append(order, "first") })
	s.Subscribe(func(store.AppState) { order = append(order, "second") })
	s.SubscribeOnKey(store.KeyProjectLoaded, func(store.AppState) {
		order = append(order, "keyed")
	})

	s.Set(store.Partial{ProjectLoaded: store.Ptr(true)})
	assert.Equal(t, []string{"first", "second", "keyed"}, order)
}

func TestUnsubscribeDuringOwnInvocation(t *testing.T) {
	s := newStore(t)

	var calls int
	var unsub func()
	unsub = s.Subscribe(func(store.AppState) {
		calls++
		unsub()
	})

	require.NotPanics(t, func() {
		s.Set(store.Partial{ProjectLoaded: store.Ptr(true)})
	})
	assert.Equal(t, 1, calls)

	s.Set(store.Partial{ProjectLoaded: store.Ptr(false)})
	assert.Equal(t, 1, calls)
}

func TestUnsubscribeOtherListenerDuringNotification(t *testing.T) {
	s := newStore(t)

	var secondCalls int
	var unsubSecond func()
	s.Subscribe(func(store.AppState) {
		unsubSecond()
	})
	unsubSecond = s.Subscribe(func(store.AppState) {
		secondCalls++
	})

	s.Set(store.Partial{ProjectLoaded: store.Ptr(true)})
	s.Set(store.Partial{ProjectLoaded: store.Ptr(false)})
	assert.Equal(t, 0, secondCalls)
}

func TestSnapshotReflectsMergeAtNotification(t *testing.T) {
	s := newStore(t)

	var seen store.AppState
	s.Subscribe(func(snap store.AppState) { seen = snap })

	s.Set(store.Partial{
		ProjectPath:   store.Ptr("/p"),
		ProjectLoaded: store.Ptr(true),
	})
	assert.Equal(t, "/p", seen.ProjectPath)
	assert.True(t, seen.ProjectLoaded)
}

func TestUpdateLayoutPersistsAcrossStores(t *testing.T) {
	home := t.TempDir()
	t.Setenv("VIVID_HOME", home)

	s := store.New(nil, store.WithLogger(quietLogger()))
	s.UpdateLayout(func(l *store.LayoutState) {
		l.LeftCollapsed = true
		l.BottomCollapsed = true
	})
	assert.True(t, s.Get().Layout.LeftCollapsed)

	restored := store.New(nil, store.WithLogger(quietLogger()))
	layout := restored.Get().Layout
	assert.True(t, layout.LeftCollapsed)
	assert.False(t, layout.RightCollapsed)
	assert.True(t, layout.BottomCollapsed)
}
