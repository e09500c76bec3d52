package store_test

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vividtools/vivid-ide/pkg/runtime"
	"github.com/vividtools/vivid-ide/store"
	"github.com/vividtools/vivid-ide/testutil"
)

func newSyncedStore(t *testing.T, opts ...store.StoreOption) (*store.Store, *testutil.FakeRuntime) {
	t.Helper()
	t.Setenv("VIVID_HOME", t.TempDir())

	fake := testutil.NewFakeRuntime(t)
	bridge := runtime.NewBridge(fake.SocketPath(), runtime.WithCommandTimeout(2*time.Second))
	t.Cleanup(func() { bridge.Close() })

	opts = append([]store.StoreOption{store.WithLogger(quietLogger())}, opts...)
	return store.New(runtime.NewClient(bridge), opts...), fake
}

func stubRefreshCommands(fake *testutil.FakeRuntime) {
	fake.HandleValue("get_project_info", runtime.ProjectInfo{Loaded: true, ProjectPath: "/p", ChainPath: "/p/chain.cpp"})
	fake.HandleValue("get_compile_status", runtime.CompileStatusInfo{Success: true})
	fake.HandleValue("get_operators", []runtime.OperatorInfo{{Name: "noise1", TypeName: "Noise"}})
	fake.HandleValue("get_selected_operator", "")
	fake.HandleValue("get_performance_stats", runtime.PerformanceStats{FPS: 60})
}

func TestReadinessPollTriggersSingleRefresh(t *testing.T) {
	s, fake := newSyncedStore(t, store.WithReconcileInterval(0))
	stubRefreshCommands(fake)

	// Ready only after 1200ms; the 100ms poll must catch it within the 3s
	// window and refresh exactly once.
	start := time.Now()
	fake.Handle("is_vivid_ready", func(json.RawMessage) (interface{}, string) {
		return time.Since(start) >= 1200*time.Millisecond, ""
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s.Initialize(ctx)

	got := s.Get()
	assert.True(t, got.RuntimeReady)
	assert.True(t, got.ProjectLoaded)
	assert.Equal(t, "/p/chain.cpp", got.ChainPath)
	assert.Len(t, got.Operators, 1)
	assert.Equal(t, float32(60), got.PerformanceStats.FPS)

	assert.Equal(t, 1, fake.Calls("get_project_info"))
	assert.GreaterOrEqual(t, fake.Calls("is_vivid_ready"), 8)
}

func TestReadinessTimeoutLeavesNotReady(t *testing.T) {
	s, fake := newSyncedStore(t,
		store.WithReadyPoll(20, 100),
		store.WithReconcileInterval(0))
	stubRefreshCommands(fake)
	fake.HandleValue("is_vivid_ready", false)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s.Initialize(ctx)

	assert.False(t, s.Get().RuntimeReady)
	assert.Equal(t, 0, fake.Calls("get_project_info"))
}

func TestSelectOperatorFetchesOnceAndIgnoresRepeat(t *testing.T) {
	s, fake := newSyncedStore(t)
	fake.HandleValue("select_operator", nil)
	fake.HandleValue("get_operator_params", []runtime.ParamInfo{
		{Name: "scale", ParamType: runtime.ParamFloat, Value: [4]float32{1, 0, 0, 0}},
	})

	ctx := context.Background()
	s.SelectOperator(ctx, "noise1")
	s.SelectOperator(ctx, "noise1")

	assert.Equal(t, "noise1", s.Get().SelectedOperator)
	require.Len(t, s.Get().SelectedOperatorParams, 1)
	assert.Equal(t, "scale", s.Get().SelectedOperatorParams[0].Name)

	assert.Equal(t, 1, fake.Calls("get_operator_params"))
	assert.Equal(t, 1, fake.Calls("select_operator"))
}

func TestSelectOperatorFetchFailureClearsParams(t *testing.T) {
	s, fake := newSyncedStore(t)
	fake.HandleValue("select_operator", nil)
	fake.HandleValue("get_operator_params", []runtime.ParamInfo{{Name: "scale"}})

	ctx := context.Background()
	s.SelectOperator(ctx, "noise1")
	require.Len(t, s.Get().SelectedOperatorParams, 1)

	fake.HandleError("get_operator_params", "operator vanished")
	s.SelectOperator(ctx, "blur1")

	assert.Equal(t, "blur1", s.Get().SelectedOperator)
	assert.Empty(t, s.Get().SelectedOperatorParams)
}

func TestStaleParamFetchIsDiscarded(t *testing.T) {
	s, fake := newSyncedStore(t)
	fake.HandleValue("select_operator", nil)

	slowStarted := make(chan struct{})
	release := make(chan struct{})
	fake.Handle("get_operator_params", func(raw json.RawMessage) (interface{}, string) {
		var p struct {
			OpName string `json:"op_name"`
		}
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, err.Error()
		}
		if p.OpName == "slow" {
			close(slowStarted)
			<-release
			return []runtime.ParamInfo{{Name: "slowparam"}}, ""
		}
		return []runtime.ParamInfo{{Name: "fastparam"}}, ""
	})

	ctx := context.Background()
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		s.SelectOperator(ctx, "slow")
	}()

	<-slowStarted
	s.SelectOperator(ctx, "fast")
	close(release)
	wg.Wait()

	// The slow fetch resolved after the selection moved on; its result must
	// not overwrite the newer selection's parameters.
	got := s.Get()
	assert.Equal(t, "fast", got.SelectedOperator)
	require.Len(t, got.SelectedOperatorParams, 1)
	assert.Equal(t, "fastparam", got.SelectedOperatorParams[0].Name)
}

func TestClearSelection(t *testing.T) {
	s, fake := newSyncedStore(t)
	fake.HandleValue("select_operator", nil)
	fake.HandleValue("get_operator_params", []runtime.ParamInfo{{Name: "scale"}})

	ctx := context.Background()
	s.SelectOperator(ctx, "noise1")
	require.Len(t, s.Get().SelectedOperatorParams, 1)

	s.SelectOperator(ctx, "")
	assert.Equal(t, "", s.Get().SelectedOperator)
	assert.Empty(t, s.Get().SelectedOperatorParams)
	// Clearing needs no fetch.
	assert.Equal(t, 1, fake.Calls("get_operator_params"))
}

func TestCompileEventUpdatesStatusAndResyncs(t *testing.T) {
	s, fake := newSyncedStore(t, store.WithReconcileInterval(0))
	stubRefreshCommands(fake)
	fake.HandleValue("is_vivid_ready", true)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s.Initialize(ctx)

	statusSeen := make(chan runtime.CompileStatusInfo, 1)
	s.SubscribeOnKey(store.KeyCompileStatus, func(snap store.AppState) {
		select {
		case statusSeen <- snap.CompileStatus:
		default:
		}
	})

	fake.Emit(runtime.EventCompileStatus, runtime.CompileStatusInfo{
		Success:     false,
		Message:     "error: expected ';'",
		ErrorLine:   42,
		ErrorColumn: 5,
	})

	select {
	case status := <-statusSeen:
		assert.False(t, status.Success)
		assert.Equal(t, "error: expected ';'", status.Message)
		assert.Equal(t, 42, status.ErrorLine)
		assert.Equal(t, 5, status.ErrorColumn)
	case <-time.After(2 * time.Second):
		t.Fatal("compile status event never reached the store")
	}
}

func TestReconcilePollAdoptsRuntimeSelection(t *testing.T) {
	s, fake := newSyncedStore(t, store.WithReconcileInterval(50))
	stubRefreshCommands(fake)
	fake.HandleValue("is_vivid_ready", true)
	fake.HandleValue("select_operator", nil)
	fake.HandleValue("get_operator_params", []runtime.ParamInfo{{Name: "scale"}})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s.Initialize(ctx)

	// Selection changes runtime-side without an event; the poll must adopt it.
	fake.HandleValue("get_selected_operator", "blur1")

	require.Eventually(t, func() bool {
		return s.Get().SelectedOperator == "blur1"
	}, 2*time.Second, 20*time.Millisecond)
	assert.Len(t, s.Get().SelectedOperatorParams, 1)
}
