package inspector

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vividtools/vivid-ide/pkg/runtime"
)

type sentValue struct {
	op    string
	param string
	value [4]float32
}

type recorder struct {
	mu   sync.Mutex
	sent []sentValue
}

func (r *recorder) send(op, param string, value [4]float32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, sentValue{op, param, value})
}

func (r *recorder) all() []sentValue {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]sentValue(nil), r.sent...)
}

func TestDebouncerCoalescesRapidInput(t *testing.T) {
	rec := &recorder{}
	deb := newDebouncer(50*time.Millisecond, rec.send)

	// Ten slider events inside the debounce window.
	for i := 1; i <= 10; i++ {
		deb.Set("blur1", "radius", [4]float32{float32(i), 0, 0, 0})
		time.Sleep(3 * time.Millisecond)
	}

	require.Eventually(t, func() bool {
		return len(rec.all()) > 0
	}, time.Second, 5*time.Millisecond)

	sent := rec.all()
	require.Len(t, sent, 1)
	assert.Equal(t, "blur1", sent[0].op)
	assert.Equal(t, "radius", sent[0].param)
	assert.Equal(t, float32(10), sent[0].value[0])
}

func TestDebouncerSendsAgainAfterQuietPeriod(t *testing.T) {
	rec := &recorder{}
	deb := newDebouncer(20*time.Millisecond, rec.send)

	deb.Set("op", "p", [4]float32{1, 0, 0, 0})
	require.Eventually(t, func() bool { return len(rec.all()) == 1 }, time.Second, 5*time.Millisecond)

	deb.Set("op", "p", [4]float32{2, 0, 0, 0})
	require.Eventually(t, func() bool { return len(rec.all()) == 2 }, time.Second, 5*time.Millisecond)

	sent := rec.all()
	assert.Equal(t, float32(1), sent[0].value[0])
	assert.Equal(t, float32(2), sent[1].value[0])
}

func TestDebouncerFlushSendsPendingImmediately(t *testing.T) {
	rec := &recorder{}
	deb := newDebouncer(time.Hour, rec.send)

	deb.Set("op", "p", [4]float32{3, 0, 0, 0})
	deb.Flush()

	sent := rec.all()
	require.Len(t, sent, 1)
	assert.Equal(t, float32(3), sent[0].value[0])

	// Nothing pending, flush is a no-op.
	deb.Flush()
	assert.Len(t, rec.all(), 1)
}

func TestBuildControlPerType(t *testing.T) {
	cases := []struct {
		paramType runtime.ParamType
		want      interface{}
	}{
		{runtime.ParamFloat, &floatControl{}},
		{runtime.ParamInt, &intControl{}},
		{runtime.ParamBool, &boolControl{}},
		{runtime.ParamVec2, &vecControl{}},
		{runtime.ParamVec3, &vecControl{}},
		{runtime.ParamVec4, &vecControl{}},
		{runtime.ParamColor, &colorControl{}},
		{runtime.ParamEnum, &enumControl{}},
	}

	for _, tc := range cases {
		ctl := buildControl(runtime.ParamInfo{Name: "p", ParamType: tc.paramType})
		assert.IsType(t, tc.want, ctl, "type %s", tc.paramType)
	}
}

func TestFloatControlAdjustClampsToBounds(t *testing.T) {
	ctl := newFloatControl(runtime.ParamInfo{
		Name:      "radius",
		ParamType: runtime.ParamFloat,
		MinVal:    0,
		MaxVal:    1,
		Value:     [4]float32{0.5, 0, 0, 0},
	})

	ctl.adjust(1000)
	assert.Equal(t, float32(1), ctl.value()[0])

	ctl.adjust(-10000)
	assert.Equal(t, float32(0), ctl.value()[0])
}

func TestVecControlComponentCycling(t *testing.T) {
	ctl := newVecControl(runtime.ParamInfo{
		Name:      "offset",
		ParamType: runtime.ParamVec3,
		MinVal:    -1,
		MaxVal:    1,
		Value:     [4]float32{0, 0, 0, 0},
	})

	ctl.adjust(10)
	assert.NotZero(t, ctl.value()[0])
	assert.Zero(t, ctl.value()[1])

	require.True(t, ctl.nextComponent())
	ctl.adjust(10)
	assert.NotZero(t, ctl.value()[1])

	require.True(t, ctl.nextComponent())
	// z is the last component of a Vec3; the cycle wraps.
	require.False(t, ctl.nextComponent())
}

func TestBoolControlToggles(t *testing.T) {
	ctl := newBoolControl(runtime.ParamInfo{Name: "enabled", ParamType: runtime.ParamBool})
	assert.Equal(t, float32(0), ctl.value()[0])

	ctl.adjust(1)
	assert.Equal(t, float32(1), ctl.value()[0])

	ctl.adjust(1)
	assert.Equal(t, float32(0), ctl.value()[0])
}

func TestEnumControlWrapsAround(t *testing.T) {
	ctl := newEnumControl(runtime.ParamInfo{
		Name:       "mode",
		ParamType:  runtime.ParamEnum,
		EnumLabels: []string{"Perlin", "Simplex", "Value"},
	})

	ctl.adjust(1)
	assert.Equal(t, float32(1), ctl.value()[0])

	ctl.adjust(2)
	assert.Equal(t, float32(0), ctl.value()[0])

	ctl.adjust(-1)
	assert.Equal(t, float32(2), ctl.value()[0])
}
