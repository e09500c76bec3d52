package runtime_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/vividtools/vivid-ide/errors"
	"github.com/vividtools/vivid-ide/pkg/runtime"
	"github.com/vividtools/vivid-ide/testutil"
)

func newClient(t *testing.T) (*runtime.Client, *testutil.FakeRuntime) {
	t.Helper()
	fake := testutil.NewFakeRuntime(t)
	bridge := runtime.NewBridge(fake.SocketPath(), runtime.WithCommandTimeout(2*time.Second))
	t.Cleanup(func() { bridge.Close() })
	return runtime.NewClient(bridge), fake
}

func TestInvokeDecodesValue(t *testing.T) {
	client, fake := newClient(t)
	fake.HandleValue("get_project_info", runtime.ProjectInfo{
		Loaded:      true,
		ProjectPath: "/work/sketch",
		ChainPath:   "/work/sketch/chain.cpp",
	})

	info, err := client.ProjectInfo(context.Background())
	require.NoError(t, err)
	require.True(t, info.Loaded)
	require.Equal(t, "/work/sketch/chain.cpp", info.ChainPath)
}

func TestInvokeCommandError(t *testing.T) {
	client, fake := newClient(t)
	fake.HandleError("reload_project", "vivid not initialized")

	err := client.ReloadProject(context.Background())
	require.Error(t, err)
	require.True(t, errors.Is(err, errors.ErrCodeCommandFailed))
	require.Contains(t, err.Error(), "vivid not initialized")
}

func TestInvokeUnreachableSocket(t *testing.T) {
	bridge := runtime.NewBridge("/nonexistent/runtime.sock")
	client := runtime.NewClient(bridge)

	_, err := client.IsReady(context.Background())
	require.Error(t, err)
	require.True(t, errors.Is(err, errors.ErrCodeRuntimeUnreachable))
}

func TestSetParamSendsFourComponents(t *testing.T) {
	client, fake := newClient(t)
	fake.HandleValue("set_param", true)

	ok, err := client.SetParam(context.Background(), "blur1", "radius", [4]float32{2.5, 0, 0, 0})
	require.NoError(t, err)
	require.True(t, ok)

	var params struct {
		OpName    string     `json:"op_name"`
		ParamName string     `json:"param_name"`
		Value     [4]float32 `json:"value"`
	}
	fake.LastParams("set_param", &params)
	require.Equal(t, "blur1", params.OpName)
	require.Equal(t, "radius", params.ParamName)
	require.Equal(t, float32(2.5), params.Value[0])
}

func TestOperatorParamsRoundTrip(t *testing.T) {
	client, fake := newClient(t)
	fake.Handle("get_operator_params", func(raw json.RawMessage) (interface{}, string) {
		var params struct {
			OpName string `json:"op_name"`
		}
		if err := json.Unmarshal(raw, &params); err != nil || params.OpName != "noise1" {
			return nil, "no such operator"
		}
		return []runtime.ParamInfo{
			{
				Name:      "scale",
				ParamType: runtime.ParamFloat,
				MinVal:    0,
				MaxVal:    10,
				Value:     [4]float32{1, 0, 0, 0},
			},
			{
				Name:       "mode",
				ParamType:  runtime.ParamEnum,
				EnumLabels: []string{"Perlin", "Simplex"},
			},
		}, ""
	})

	params, err := client.OperatorParams(context.Background(), "noise1")
	require.NoError(t, err)
	require.Len(t, params, 2)
	require.Equal(t, runtime.ParamFloat, params[0].ParamType)
	require.Equal(t, []string{"Perlin", "Simplex"}, params[1].EnumLabels)

	_, err = client.OperatorParams(context.Background(), "gone")
	require.Error(t, err)
}

func TestSubscribeDeliversEventsInOrder(t *testing.T) {
	client, fake := newClient(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events, err := client.Bridge().Subscribe(ctx)
	require.NoError(t, err)

	fake.Emit(runtime.EventInitialized, runtime.InitializedPayload{Success: true, ProjectLoaded: true})
	fake.Emit(runtime.EventCompileStatus, runtime.CompileStatusInfo{Success: false, Message: "error: expected ';'"})

	ev := <-events
	require.Equal(t, runtime.EventInitialized, ev.Name)
	init, err := ev.DecodeInitialized()
	require.NoError(t, err)
	require.True(t, init.ProjectLoaded)

	ev = <-events
	require.Equal(t, runtime.EventCompileStatus, ev.Name)
	status, err := ev.DecodeCompileStatus()
	require.NoError(t, err)
	require.False(t, status.Success)

	// Cancelling closes the channel.
	cancel()
	for range events {
	}
}

func TestParamTypeComponents(t *testing.T) {
	require.Equal(t, 1, runtime.ParamFloat.Components())
	require.Equal(t, 2, runtime.ParamVec2.Components())
	require.Equal(t, 3, runtime.ParamVec3.Components())
	require.Equal(t, 4, runtime.ParamColor.Components())
}

func TestIsRunning(t *testing.T) {
	client, _ := newClient(t)
	require.True(t, client.Bridge().IsRunning())

	dead := runtime.NewBridge("/nonexistent/runtime.sock")
	require.False(t, dead.IsRunning())
}
