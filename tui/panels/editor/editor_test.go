package editor_test

import (
	"io"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vividtools/vivid-ide/pkg/runtime"
	"github.com/vividtools/vivid-ide/store"
	"github.com/vividtools/vivid-ide/testutil"
	"github.com/vividtools/vivid-ide/tui/panels/editor"
)

func newEditor(t *testing.T, autoReload bool) (*editor.Model, *store.Store, *testutil.FakeRuntime) {
	t.Helper()
	t.Setenv("VIVID_HOME", t.TempDir())

	fake := testutil.NewFakeRuntime(t)
	bridge := runtime.NewBridge(fake.SocketPath(), runtime.WithCommandTimeout(2*time.Second))
	t.Cleanup(func() { bridge.Close() })

	logger := logrus.New()
	logger.SetOutput(io.Discard)
	st := store.New(runtime.NewClient(bridge), store.WithLogger(logrus.NewEntry(logger)))

	m := editor.New(st, func(tea.Msg) {}, autoReload)
	m.SetSize(80, 24)
	m.Focus()
	return m, st, fake
}

// run executes a command synchronously and feeds its result back, the way
// the bubbletea loop would.
func run(t *testing.T, m *editor.Model, cmd tea.Cmd) {
	t.Helper()
	if cmd == nil {
		return
	}
	if msg := cmd(); msg != nil {
		m.Update(msg)
	}
}

func TestLoadsCurrentFileFromStore(t *testing.T) {
	m, st, fake := newEditor(t, false)
	fake.HandleValue("read_file", "void chain() {}\n")

	st.Set(store.Partial{CurrentFile: store.Ptr("/p/chain.cpp")})
	run(t, m, m.Update(editor.StateChangedMsg{}))

	assert.Equal(t, "/p/chain.cpp", m.Path())
	assert.False(t, m.Modified())
	assert.Contains(t, m.View(), "chain.cpp")
}

func TestModifiedFlagTracksEdits(t *testing.T) {
	m, st, fake := newEditor(t, false)
	fake.HandleValue("read_file", "abc")

	st.Set(store.Partial{CurrentFile: store.Ptr("/p/chain.cpp")})
	run(t, m, m.Update(editor.StateChangedMsg{}))
	require.False(t, m.Modified())

	run(t, m, m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'x'}}))
	assert.True(t, m.Modified())
	assert.True(t, st.Get().FileModified)
}

func TestSaveWritesThroughRuntimeAndReloads(t *testing.T) {
	m, st, fake := newEditor(t, true)
	fake.HandleValue("read_file", "abc")
	fake.HandleValue("write_file", nil)
	fake.HandleValue("reload_project", nil)

	st.Set(store.Partial{CurrentFile: store.Ptr("/p/chain.cpp")})
	run(t, m, m.Update(editor.StateChangedMsg{}))

	run(t, m, m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'x'}}))
	require.True(t, m.Modified())

	run(t, m, m.Update(tea.KeyMsg{Type: tea.KeyCtrlS}))

	assert.Equal(t, 1, fake.Calls("write_file"))
	assert.Equal(t, 1, fake.Calls("reload_project"))
	assert.False(t, m.Modified())
	assert.False(t, st.Get().FileModified)

	var params struct {
		Path    string `json:"path"`
		Content string `json:"content"`
	}
	fake.LastParams("write_file", &params)
	assert.Equal(t, "/p/chain.cpp", params.Path)
	assert.Contains(t, params.Content, "x")
}

func TestSaveWithoutAutoReloadSkipsReload(t *testing.T) {
	m, st, fake := newEditor(t, false)
	fake.HandleValue("read_file", "abc")
	fake.HandleValue("write_file", nil)
	fake.HandleValue("reload_project", nil)

	st.Set(store.Partial{CurrentFile: store.Ptr("/p/chain.cpp")})
	run(t, m, m.Update(editor.StateChangedMsg{}))
	run(t, m, m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'x'}}))
	run(t, m, m.Update(tea.KeyMsg{Type: tea.KeyCtrlS}))

	assert.Equal(t, 1, fake.Calls("write_file"))
	assert.Equal(t, 0, fake.Calls("reload_project"))
}

func TestFallsBackToChainPath(t *testing.T) {
	m, st, fake := newEditor(t, false)
	fake.HandleValue("read_file", "chain source")

	st.Set(store.Partial{ChainPath: store.Ptr("/p/chain.cpp")})
	run(t, m, m.Update(editor.StateChangedMsg{}))

	assert.Equal(t, "/p/chain.cpp", m.Path())
}
