package tui

import (
	"encoding/json"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vividtools/vivid-ide/config"
	"github.com/vividtools/vivid-ide/pkg/runtime"
	"github.com/vividtools/vivid-ide/state"
	"github.com/vividtools/vivid-ide/store"
	"github.com/vividtools/vivid-ide/tui/dock"
	"github.com/vividtools/vivid-ide/tui/panels/console"
)

func newTestApp(t *testing.T, cfg *config.Config) (*App, *store.Store) {
	t.Helper()
	t.Setenv("VIVID_HOME", t.TempDir())
	if cfg == nil {
		cfg = &config.Config{}
	}
	st := store.New(nil)
	app := NewApp(st, cfg, NewSender())
	t.Cleanup(app.shutdown)
	return app, st
}

func resize(a *App, w, h int) {
	a.Update(tea.WindowSizeMsg{Width: w, Height: h})
}

func TestWindowSizeLaysOutVisiblePanels(t *testing.T) {
	a, _ := newTestApp(t, nil)
	resize(a, 120, 40)

	visible := a.dock.VisiblePanels()
	require.NotEmpty(t, visible)
	for _, id := range visible {
		r, ok := a.rects[id]
		require.True(t, ok, "no rect for %s", id)
		assert.Greater(t, r.w, 0, "%s width", id)
		assert.Greater(t, r.h, 0, "%s height", id)
		assert.True(t, r.x >= 0 && r.x+r.w <= 120, "%s x range", id)
		assert.True(t, r.y >= 0 && r.y+r.h < 40, "%s y range", id)
	}

	// Content rects never overlap.
	for _, p := range visible {
		for _, q := range visible {
			if p == q {
				continue
			}
			rp, rq := a.rects[p], a.rects[q]
			overlap := rp.x < rq.x+rq.w && rq.x < rp.x+rp.w &&
				rp.y < rq.y+rq.h && rq.y < rp.y+rp.h
			assert.False(t, overlap, "%s overlaps %s", p, q)
		}
	}
}

func TestSplitRectPartitionsWholeRegion(t *testing.T) {
	r := rect{x: 10, y: 5, w: 100, h: 30}

	first, second := splitRect(r, &dock.Split{Orientation: dock.Row, Ratio: 0.7})
	assert.Equal(t, 70, first.w)
	assert.Equal(t, 30, second.w)
	assert.Equal(t, 80, second.x)
	assert.Equal(t, r.h, first.h)

	// Extreme ratios still leave both sides at least one cell.
	narrow := rect{w: 10, h: 10}
	first, second = splitRect(narrow, &dock.Split{Orientation: dock.Row, Ratio: 0.999})
	assert.GreaterOrEqual(t, second.w, 1)
	assert.Equal(t, 10, first.w+second.w)
}

func TestFocusCyclesThroughVisiblePanels(t *testing.T) {
	a, _ := newTestApp(t, nil)
	resize(a, 120, 40)

	start := a.focus
	seen := map[string]bool{string(start): true}
	for i := 0; i < len(a.dock.VisiblePanels())-1; i++ {
		a.cycleFocus(1)
		assert.False(t, seen[string(a.focus)], "focus revisited %s early", a.focus)
		seen[string(a.focus)] = true
	}
	a.cycleFocus(1)
	assert.Equal(t, start, a.focus, "cycle should wrap around")
}

func TestToggleHidesPanelAndMovesFocus(t *testing.T) {
	a, _ := newTestApp(t, nil)
	resize(a, 120, 40)

	a.togglePanel(a.focus)
	for _, id := range a.dock.VisiblePanels() {
		if id == a.focus {
			return
		}
	}
	t.Fatalf("focus %s is not on a visible panel", a.focus)
}

func TestCompileBannerLifecycle(t *testing.T) {
	a, st := newTestApp(t, nil)
	resize(a, 120, 40)

	failed := runtime.CompileStatusInfo{
		Message: "error: expected ';'", ErrorLine: 42, ErrorColumn: 5,
	}
	st.Set(store.Partial{CompileStatus: &failed})
	a.syncBanner()
	require.NotNil(t, a.banner)

	// esc dismisses, and the same status stays dismissed.
	a.handleKey(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Nil(t, a.banner)
	a.syncBanner()
	assert.Nil(t, a.banner)

	// A different error resurfaces the banner.
	st.Set(store.Partial{CompileStatus: &runtime.CompileStatusInfo{
		Message: "error: use of undeclared identifier 'nois'", ErrorLine: 7,
	}})
	a.syncBanner()
	require.NotNil(t, a.banner)

	// Success clears it outright.
	st.Set(store.Partial{CompileStatus: &runtime.CompileStatusInfo{Success: true}})
	a.syncBanner()
	assert.Nil(t, a.banner)
}

func TestMCPBannerDismissalPersists(t *testing.T) {
	a, _ := newTestApp(t, nil)
	resize(a, 120, 40)
	require.True(t, a.showMCPBanner)

	a.handleKey(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("m"), Alt: true})
	assert.False(t, a.showMCPBanner)

	dismissed, err := state.GetBool(state.KeyMCPBannerDismissed)
	require.NoError(t, err)
	assert.True(t, dismissed)
}

func TestRelayEventsTranslatesRuntimeTraffic(t *testing.T) {
	sender := NewSender()
	relay := RelayEvents(sender)

	relay(runtime.Event{
		Name:    runtime.EventOutput,
		Payload: json.RawMessage(`{"stream":"stderr","text":"boom"}`),
	})
	relay(runtime.Event{
		Name:    runtime.EventMenuAction,
		Payload: json.RawMessage(`"toggle_console"`),
	})
	// Events the store already folds into state are not relayed as messages.
	relay(runtime.Event{Name: runtime.EventCompileStatus, Payload: json.RawMessage(`{}`)})

	require.Len(t, sender.queue, 2)
	assert.Equal(t, console.LineMsg{Stream: "stderr", Text: "boom"}, sender.queue[0])
	assert.Equal(t, MenuActionMsg{Action: "toggle_console"}, sender.queue[1])
}

func TestMenuActionTogglesConsole(t *testing.T) {
	a, _ := newTestApp(t, nil)
	resize(a, 120, 40)

	before := a.dock.Visibility("console")
	a.handleMenuAction("toggle_console")
	assert.NotEqual(t, before, a.dock.Visibility("console"))

	assert.Nil(t, a.handleMenuAction("no_such_action"))
}

// The native menu emits fixed action IDs; the routable ones must all reach
// their operation instead of falling through to the unknown-action branch.
func TestMenuShowActionsRevealPanels(t *testing.T) {
	a, _ := newTestApp(t, nil)
	resize(a, 120, 40)

	// An absent panel is recreated and focused.
	a.dock.Hide(dock.PanelConsole)
	require.Equal(t, dock.Absent, a.dock.Visibility(dock.PanelConsole))
	a.handleMenuAction("show_console")
	assert.Equal(t, dock.Visible, a.dock.Visibility(dock.PanelConsole))
	assert.Equal(t, dock.PanelConsole, a.focus)

	// A backgrounded tab is activated, and show never hides: repeating the
	// action keeps the panel visible.
	a.handleMenuAction("show_terminal")
	assert.Equal(t, dock.Visible, a.dock.Visibility(dock.PanelTerminal))
	a.handleMenuAction("show_terminal")
	assert.Equal(t, dock.Visible, a.dock.Visibility(dock.PanelTerminal))

	assert.NotNil(t, a.handleMenuAction("reload"))
}

func TestKeybindingOverridesFromConfig(t *testing.T) {
	cfg := &config.Config{
		Keybindings: map[string]config.KeybindingSectionConfig{
			"app": {"quit": {"ctrl+x"}},
		},
	}
	a, _ := newTestApp(t, cfg)
	assert.Equal(t, []string{"ctrl+x"}, a.keys.Quit.Keys())
	// Untouched bindings keep their defaults.
	assert.Equal(t, []string{"f5"}, a.keys.Reload.Keys())
}

func TestStatusBarShowsProjectAndRuntimeHealth(t *testing.T) {
	a, st := newTestApp(t, nil)
	resize(a, 100, 30)

	st.Set(store.Partial{
		ProjectPath:  store.Ptr("/work/sketches/plasma"),
		RuntimeReady: store.Ptr(true),
	})

	bar := a.statusBar()
	assert.Contains(t, bar, "plasma")
	assert.Contains(t, bar, "runtime")
}
