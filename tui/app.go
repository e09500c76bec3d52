// Package tui hosts the application root: a bubbletea model that composes
// the dock layout and the panels, routes input to the focused panel, and
// carries the status bar and notification banners.
package tui

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"
	"github.com/vividtools/vivid-ide/config"
	"github.com/vividtools/vivid-ide/logging"
	"github.com/vividtools/vivid-ide/pkg/runtime"
	"github.com/vividtools/vivid-ide/state"
	"github.com/vividtools/vivid-ide/store"
	"github.com/vividtools/vivid-ide/tui/dock"
	"github.com/vividtools/vivid-ide/tui/keymap"
	"github.com/vividtools/vivid-ide/tui/panels/console"
	"github.com/vividtools/vivid-ide/tui/panels/editor"
	"github.com/vividtools/vivid-ide/tui/panels/inspector"
	"github.com/vividtools/vivid-ide/tui/panels/performance"
	"github.com/vividtools/vivid-ide/tui/panels/preview"
	"github.com/vividtools/vivid-ide/tui/panels/terminal"
)

const perfRefreshInterval = 2 * time.Second

// stateChangedMsg is sent whenever any store key changes, so the view
// re-renders from the latest snapshot.
type stateChangedMsg struct{}

// MenuActionMsg carries an action triggered from the runtime's native menu.
type MenuActionMsg struct {
	Action string
}

type perfTickMsg struct{}

// Sender queues messages until a tea.Program is attached and forwards them
// afterwards. Panels subscribe to the store during construction, before the
// program exists, so they need a send function that is valid from the start.
type Sender struct {
	mu      sync.Mutex
	program *tea.Program
	queue   []tea.Msg
}

// NewSender creates a detached sender.
func NewSender() *Sender {
	return &Sender{}
}

// Send delivers msg to the program, or queues it if none is attached yet.
func (s *Sender) Send(msg tea.Msg) {
	s.mu.Lock()
	p := s.program
	if p == nil {
		s.queue = append(s.queue, msg)
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()
	p.Send(msg)
}

// Attach binds the sender to a running program and flushes queued messages.
func (s *Sender) Attach(p *tea.Program) {
	s.mu.Lock()
	s.program = p
	queued := s.queue
	s.queue = nil
	s.mu.Unlock()
	for _, msg := range queued {
		p.Send(msg)
	}
}

// RelayEvents returns a runtime event hook that turns the events the store
// does not fold into state into program messages: captured output lines for
// the console and native menu actions for the app. Pass it to the store via
// store.WithEventRelay.
func RelayEvents(sender *Sender) func(runtime.Event) {
	return func(ev runtime.Event) {
		switch ev.Name {
		case runtime.EventOutput:
			p, err := ev.DecodeOutput()
			if err != nil {
				return
			}
			sender.Send(console.LineMsg{Stream: p.Stream, Text: p.Text})
		case runtime.EventMenuAction:
			action, err := ev.DecodeMenuAction()
			if err != nil {
				return
			}
			sender.Send(MenuActionMsg{Action: action})
		}
	}
}

// KeyMap defines the application-level keybindings. Panel-local bindings
// live with their panels; everything here is resolved before input reaches
// the focused panel.
type KeyMap struct {
	Quit        key.Binding
	Help        key.Binding
	FocusNext   key.Binding
	FocusPrev   key.Binding
	NextTab     key.Binding
	Reload      key.Binding
	ResetLayout key.Binding

	ToggleEditor      key.Binding
	ToggleTerminal    key.Binding
	ToggleInspector   key.Binding
	ToggleConsole     key.Binding
	TogglePreview     key.Binding
	TogglePerformance key.Binding

	DismissBanner key.Binding
	DismissMCP    key.Binding
}

// DefaultKeyMap is the default set of application keybindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Quit:        key.NewBinding(key.WithKeys("ctrl+q"), key.WithHelp("ctrl+q", "quit")),
		Help:        key.NewBinding(key.WithKeys("f1"), key.WithHelp("f1", "help")),
		FocusNext:   key.NewBinding(key.WithKeys("tab", "f6"), key.WithHelp("tab", "next panel")),
		FocusPrev:   key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "previous panel")),
		NextTab:     key.NewBinding(key.WithKeys("f7"), key.WithHelp("f7", "next tab in group")),
		Reload:      key.NewBinding(key.WithKeys("f5"), key.WithHelp("f5", "reload project")),
		ResetLayout: key.NewBinding(key.WithKeys("alt+0"), key.WithHelp("alt+0", "reset layout")),

		ToggleEditor:      key.NewBinding(key.WithKeys("alt+1"), key.WithHelp("alt+1", "toggle code")),
		ToggleTerminal:    key.NewBinding(key.WithKeys("alt+2"), key.WithHelp("alt+2", "toggle terminal")),
		ToggleInspector:   key.NewBinding(key.WithKeys("alt+3"), key.WithHelp("alt+3", "toggle parameters")),
		ToggleConsole:     key.NewBinding(key.WithKeys("alt+4"), key.WithHelp("alt+4", "toggle console")),
		TogglePreview:     key.NewBinding(key.WithKeys("alt+5"), key.WithHelp("alt+5", "toggle preview")),
		TogglePerformance: key.NewBinding(key.WithKeys("alt+6"), key.WithHelp("alt+6", "toggle performance")),

		DismissBanner: key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "dismiss")),
		DismissMCP:    key.NewBinding(key.WithKeys("alt+m"), key.WithHelp("alt+m", "hide banner")),
	}
}

// Sections groups the bindings for the help overlay.
func (k KeyMap) Sections() []keymap.Section {
	return []keymap.Section{
		{Name: "Panels", Bindings: []key.Binding{
			k.FocusNext, k.FocusPrev, k.NextTab,
			k.ToggleEditor, k.ToggleTerminal, k.ToggleInspector,
			k.ToggleConsole, k.TogglePreview, k.TogglePerformance,
			k.ResetLayout,
		}},
		{Name: "Project", Bindings: []key.Binding{k.Reload}},
		{Name: "System", Bindings: []key.Binding{k.Help, k.DismissBanner, k.Quit}},
	}
}

// panel is the shape every dock panel shares.
type panel interface {
	Init() tea.Cmd
	Update(tea.Msg) tea.Cmd
	View() string
	SetSize(width, height int)
	Dispose()
}

// App is the root model.
type App struct {
	store  *store.Store
	cfg    *config.Config
	dock   *dock.Manager
	sender *Sender
	keys   KeyMap
	logger *logrus.Entry

	panels  map[dock.PanelID]panel
	editor  *editor.Model
	preview *preview.Model

	focus dock.PanelID
	rects map[dock.PanelID]rect

	width  int
	height int

	showHelp bool

	// banner is the compile error currently shown, nil when hidden.
	// dismissed remembers the last status the user dismissed so it does
	// not reappear until the status changes.
	banner    *runtime.CompileStatusInfo
	dismissed runtime.CompileStatusInfo

	showMCPBanner bool

	unsub func()
}

// NewApp builds the root model. The sender must be attached to the program
// before any runtime traffic arrives.
func NewApp(st *store.Store, cfg *config.Config, sender *Sender) *App {
	keys := DefaultKeyMap()
	keymap.ApplyOverrides(&keys, cfg.Keybindings["app"])

	a := &App{
		store:  st,
		cfg:    cfg,
		dock:   dock.NewManager(),
		sender: sender,
		keys:   keys,
		logger: logging.NewLogger("app"),
		rects:  map[dock.PanelID]rect{},
	}

	if restored, err := a.dock.LoadLayout(); err != nil {
		a.logger.WithError(err).Warn("Failed to restore dock layout, using default")
	} else if restored {
		a.logger.Debug("Restored dock layout")
	}

	autoReload := true
	if cfg.Editor.AutoReloadOnSave != nil {
		autoReload = *cfg.Editor.AutoReloadOnSave
	}

	a.editor = editor.New(st, sender.Send, autoReload)
	a.preview = preview.New(st, sender.Send)
	a.panels = map[dock.PanelID]panel{
		dock.PanelEditor:      a.editor,
		dock.PanelTerminal:    terminal.New(sender.Send, cfg.Terminal.Shell, st.Get().ProjectPath, cfg.Terminal.Scrollback),
		dock.PanelInspector:   inspector.New(st, sender.Send),
		dock.PanelConsole:     console.New(st, sender.Send),
		dock.PanelPreview:     a.preview,
		dock.PanelPerformance: performance.New(st, sender.Send),
	}

	a.unsub = st.Subscribe(func(store.AppState) {
		sender.Send(stateChangedMsg{})
	})

	dismissed, err := state.GetBool(state.KeyMCPBannerDismissed)
	a.showMCPBanner = err == nil && !dismissed

	a.focus = dock.PanelEditor
	if a.dock.Visibility(a.focus) != dock.Visible {
		if vis := a.dock.VisiblePanels(); len(vis) > 0 {
			a.focus = vis[0]
		}
	}
	return a
}

// Init starts the panels and the performance refresh loop.
func (a *App) Init() tea.Cmd {
	cmds := []tea.Cmd{a.perfTick()}
	for _, p := range a.panels {
		if cmd := p.Init(); cmd != nil {
			cmds = append(cmds, cmd)
		}
	}
	if a.focus == dock.PanelEditor {
		if cmd := a.editor.Focus(); cmd != nil {
			cmds = append(cmds, cmd)
		}
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		if err := state.Set(state.KeyWindowSize, map[string]interface{}{
			"width":  msg.Width,
			"height": msg.Height,
		}); err != nil {
			a.logger.WithError(err).Debug("Failed to persist window size")
		}
		a.relayout()
		return a, nil

	case tea.KeyMsg:
		return a.handleKey(msg)

	case tea.MouseMsg:
		return a.handleMouse(msg)

	case stateChangedMsg:
		a.syncBanner()
		return a, nil

	case MenuActionMsg:
		return a, a.handleMenuAction(msg.Action)

	case perfTickMsg:
		return a, tea.Batch(a.refreshPerf(), a.perfTick())
	}

	// Panel-local messages: each panel picks out its own types.
	var cmds []tea.Cmd
	for _, p := range a.panels {
		if cmd := p.Update(msg); cmd != nil {
			cmds = append(cmds, cmd)
		}
	}
	return a, tea.Batch(cmds...)
}

// handleKey resolves application bindings before forwarding to the focused
// panel. Tab is carved out for the editor and the terminal, which both need
// the literal key; f6 still cycles focus there.
func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, a.keys.Quit):
		a.shutdown()
		return a, tea.Quit

	case key.Matches(msg, a.keys.Help):
		a.showHelp = !a.showHelp
		return a, nil
	}

	if a.showHelp {
		if msg.Type == tea.KeyEsc {
			a.showHelp = false
		}
		return a, nil
	}

	if a.banner != nil && key.Matches(msg, a.keys.DismissBanner) && a.focus != dock.PanelTerminal {
		a.dismissed = *a.banner
		a.banner = nil
		a.relayout()
		return a, nil
	}
	if a.showMCPBanner && key.Matches(msg, a.keys.DismissMCP) {
		a.showMCPBanner = false
		if err := state.Set(state.KeyMCPBannerDismissed, true); err != nil {
			a.logger.WithError(err).Warn("Failed to persist banner dismissal")
		}
		a.relayout()
		return a, nil
	}

	for id, binding := range map[dock.PanelID]key.Binding{
		dock.PanelEditor:      a.keys.ToggleEditor,
		dock.PanelTerminal:    a.keys.ToggleTerminal,
		dock.PanelInspector:   a.keys.ToggleInspector,
		dock.PanelConsole:     a.keys.ToggleConsole,
		dock.PanelPreview:     a.keys.TogglePreview,
		dock.PanelPerformance: a.keys.TogglePerformance,
	} {
		if key.Matches(msg, binding) {
			return a, a.togglePanel(id)
		}
	}

	if key.Matches(msg, a.keys.Reload) {
		return a, a.reloadProject()
	}
	if key.Matches(msg, a.keys.ResetLayout) {
		return a, a.resetLayout()
	}

	rawTab := msg.String() == "tab" &&
		(a.focus == dock.PanelEditor || a.focus == dock.PanelTerminal)
	if key.Matches(msg, a.keys.FocusNext) && !rawTab {
		return a, a.cycleFocus(1)
	}
	if key.Matches(msg, a.keys.FocusPrev) && a.focus != dock.PanelTerminal {
		return a, a.cycleFocus(-1)
	}
	if key.Matches(msg, a.keys.NextTab) {
		a.dock.ActivateNext(a.focus)
		a.saveLayout()
		a.relayout()
		return a, a.setFocus(a.activeInGroupOf(a.focus))
	}

	if p, ok := a.panels[a.focus]; ok {
		return a, p.Update(msg)
	}
	return a, nil
}

// handleMouse routes the event to the panel under the pointer. A press also
// moves focus there.
func (a *App) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	for id, r := range a.rects {
		if !r.contains(msg.X, msg.Y) {
			continue
		}
		var cmds []tea.Cmd
		if msg.Action == tea.MouseActionPress && id != a.focus {
			if cmd := a.setFocus(id); cmd != nil {
				cmds = append(cmds, cmd)
			}
		}
		if cmd := a.panels[id].Update(msg); cmd != nil {
			cmds = append(cmds, cmd)
		}
		return a, tea.Batch(cmds...)
	}
	return a, nil
}

// handleMenuAction maps an action from the runtime's native menu onto the
// same operations the keyboard reaches. The action IDs are fixed by the
// runtime's menu definition.
func (a *App) handleMenuAction(action string) tea.Cmd {
	switch action {
	case "reload":
		return a.reloadProject()
	case "save":
		return a.editor.Save()
	case "reset_layout":
		return a.resetLayout()
	case "export_app":
		return a.exportBundle()
	case "show_editor":
		return a.showPanel(dock.PanelEditor)
	case "show_terminal":
		return a.showPanel(dock.PanelTerminal)
	case "show_console":
		return a.showPanel(dock.PanelConsole)
	case "show_inspector":
		return a.showPanel(dock.PanelInspector)
	case "show_performance":
		return a.showPanel(dock.PanelPerformance)
	case "toggle_terminal":
		return a.togglePanel(dock.PanelTerminal)
	case "toggle_console":
		return a.togglePanel(dock.PanelConsole)
	case "toggle_visualizer":
		client := a.store.Client()
		logger := a.logger
		return func() tea.Msg {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := client.ToggleVisualizer(ctx); err != nil {
				logger.WithError(err).Warn("Failed to toggle visualizer")
			}
			return nil
		}
	default:
		// new_project, open_project and open_file need a file dialog the
		// terminal does not have; they land here along with anything unknown.
		a.logger.WithField("action", action).Debug("Ignoring unhandled menu action")
		return nil
	}
}

// showPanel makes the panel visible, activating its tab or recreating it in
// its default slot, and moves focus there.
func (a *App) showPanel(id dock.PanelID) tea.Cmd {
	a.dock.Show(id)
	a.saveLayout()
	a.relayout()
	return a.setFocus(id)
}

func (a *App) resetLayout() tea.Cmd {
	a.dock.Reset()
	a.saveLayout()
	a.relayout()
	return a.ensureFocus()
}

// exportBundle runs a bundle export in the background and reports the
// outcome on the console.
func (a *App) exportBundle() tea.Cmd {
	project := a.store.Get().ProjectPath
	if project == "" {
		return nil
	}
	client := a.store.Client()
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()
		result, err := client.BundleProject(ctx, runtime.BundleOptions{ProjectPath: project})
		if err != nil {
			return console.LineMsg{Stream: "stderr", Text: "bundle failed: " + err.Error()}
		}
		if !result.Success {
			return console.LineMsg{Stream: "stderr", Text: "bundle failed: " + result.Output}
		}
		return console.LineMsg{Stream: "stdout", Text: "bundle written to " + result.BundlePath}
	}
}

func (a *App) togglePanel(id dock.PanelID) tea.Cmd {
	a.dock.Toggle(id)
	a.saveLayout()
	a.relayout()
	if a.dock.Visibility(id) == dock.Visible {
		return a.setFocus(id)
	}
	return a.ensureFocus()
}

func (a *App) cycleFocus(dir int) tea.Cmd {
	vis := a.dock.VisiblePanels()
	if len(vis) == 0 {
		return nil
	}
	idx := 0
	for i, id := range vis {
		if id == a.focus {
			idx = i
			break
		}
	}
	idx = (idx + dir + len(vis)) % len(vis)
	return a.setFocus(vis[idx])
}

func (a *App) setFocus(id dock.PanelID) tea.Cmd {
	if id == "" || id == a.focus {
		return nil
	}
	if a.focus == dock.PanelEditor {
		a.editor.Blur()
	}
	a.focus = id
	if id == dock.PanelEditor {
		return a.editor.Focus()
	}
	return nil
}

// ensureFocus moves focus to a visible panel if the current one was hidden.
func (a *App) ensureFocus() tea.Cmd {
	if a.dock.Visibility(a.focus) == dock.Visible {
		return nil
	}
	if vis := a.dock.VisiblePanels(); len(vis) > 0 {
		return a.setFocus(vis[0])
	}
	return nil
}

// activeInGroupOf returns the active panel of the tab group containing id.
func (a *App) activeInGroupOf(id dock.PanelID) dock.PanelID {
	active := id
	walk := func(g *dock.TabGroup) {
		for _, p := range g.Panels {
			if p == id {
				active = g.ActivePanel()
			}
		}
	}
	dock.WalkGroups(a.dock.Root(), walk)
	return active
}

func (a *App) reloadProject() tea.Cmd {
	client := a.store.Client()
	logger := a.logger
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := client.ReloadProject(ctx); err != nil {
			logger.WithError(err).Error("Project reload failed")
		}
		return nil
	}
}

func (a *App) refreshPerf() tea.Cmd {
	if !a.store.Get().RuntimeReady {
		return nil
	}
	st := a.store
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		st.RefreshPerformanceStats(ctx)
		return nil
	}
}

func (a *App) perfTick() tea.Cmd {
	return tea.Tick(perfRefreshInterval, func(time.Time) tea.Msg {
		return perfTickMsg{}
	})
}

// syncBanner derives the compile error banner from the latest status. A
// dismissed status stays hidden until the status changes.
func (a *App) syncBanner() {
	cs := a.store.Get().CompileStatus
	had := a.banner != nil
	switch {
	case cs.Success || cs.Message == "":
		a.banner = nil
	case cs == a.dismissed:
		// stays hidden
	default:
		a.banner = &cs
	}
	if had != (a.banner != nil) {
		a.relayout()
	}
}

func (a *App) saveLayout() {
	if err := a.dock.SaveLayout(); err != nil {
		a.logger.WithError(err).Warn("Failed to persist dock layout")
	}
}

func (a *App) shutdown() {
	a.saveLayout()
	if a.unsub != nil {
		a.unsub()
		a.unsub = nil
	}
	for _, p := range a.panels {
		p.Dispose()
	}
}

func projectTitle(path string) string {
	if path == "" {
		return "no project"
	}
	return filepath.Base(path)
}
