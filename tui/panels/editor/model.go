// Package editor implements the code editor panel. File content travels
// through the runtime's file bridge so the IDE edits exactly what the
// runtime compiles, and a save can trigger a live chain reload.
package editor

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"
	"github.com/vividtools/vivid-ide/logging"
	"github.com/vividtools/vivid-ide/store"
	"github.com/vividtools/vivid-ide/tui/theme"
)

// FileLoadedMsg carries a freshly read file.
type FileLoadedMsg struct {
	Path    string
	Content string
}

// FileSavedMsg reports a completed save, plus the reload outcome when the
// save triggered one.
type FileSavedMsg struct {
	Path      string
	ReloadErr error
}

// FileErrorMsg reports a failed read or write.
type FileErrorMsg struct {
	Path string
	Err  error
}

// StateChangedMsg asks the editor to re-check the store's current file.
type StateChangedMsg struct{}

// KeyMap defines the keybindings for the editor panel.
type KeyMap struct {
	Save   key.Binding
	Reload key.Binding
}

// DefaultKeyMap is the default set of keybindings.
var DefaultKeyMap = KeyMap{
	Save: key.NewBinding(
		key.WithKeys("ctrl+s"),
		key.WithHelp("ctrl+s", "save"),
	),
	Reload: key.NewBinding(
		key.WithKeys("ctrl+r"),
		key.WithHelp("ctrl+r", "revert to saved"),
	),
}

// Model is the code editor panel.
type Model struct {
	store  *store.Store
	send   func(tea.Msg)
	keys   KeyMap
	logger *logrus.Entry

	text textarea.Model

	path         string
	savedContent string
	loading      bool

	autoReload bool
	unsubs     []func()
}

// New constructs the editor. autoReload controls whether a save also
// triggers a chain reload.
func New(st *store.Store, send func(tea.Msg), autoReload bool) *Model {
	text := textarea.New()
	text.Placeholder = "no file loaded"
	text.ShowLineNumbers = true
	text.Prompt = ""
	text.CharLimit = 0

	m := &Model{
		store:      st,
		send:       send,
		keys:       DefaultKeyMap,
		logger:     logging.NewLogger("editor"),
		text:       text,
		autoReload: autoReload,
	}

	m.unsubs = append(m.unsubs,
		st.SubscribeOnKey(store.KeyCurrentFile, func(store.AppState) {
			send(StateChangedMsg{})
		}),
	)
	return m
}

// Init triggers the initial file load when the store already has one.
func (m *Model) Init() tea.Cmd {
	return m.loadCurrentFile()
}

// SetSize sets the panel's content area.
func (m *Model) SetSize(width, height int) {
	m.text.SetWidth(width)
	m.text.SetHeight(height)
}

// Dispose unsubscribes from the store.
func (m *Model) Dispose() {
	for _, unsub := range m.unsubs {
		unsub()
	}
	m.unsubs = nil
}

// Focus gives keyboard focus to the text area.
func (m *Model) Focus() tea.Cmd {
	return m.text.Focus()
}

// Blur removes keyboard focus.
func (m *Model) Blur() {
	m.text.Blur()
}

// Modified reports whether the buffer differs from the saved content.
func (m *Model) Modified() bool {
	return m.path != "" && m.text.Value() != m.savedContent
}

// Save writes the buffer through the runtime, same as ctrl+s.
func (m *Model) Save() tea.Cmd {
	return m.save()
}

// Path returns the file being edited.
func (m *Model) Path() string {
	return m.path
}

// Update handles messages.
func (m *Model) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case StateChangedMsg:
		return m.loadCurrentFile()

	case FileLoadedMsg:
		m.path = msg.Path
		m.savedContent = msg.Content
		m.loading = false
		m.text.SetValue(msg.Content)
		m.syncModifiedFlag()
		return nil

	case FileSavedMsg:
		if msg.Path == m.path {
			m.savedContent = m.text.Value()
			m.syncModifiedFlag()
		}
		if msg.ReloadErr != nil {
			m.logger.WithError(msg.ReloadErr).Warn("Reload after save failed")
		}
		return nil

	case FileErrorMsg:
		m.loading = false
		m.logger.WithError(msg.Err).WithField("path", msg.Path).Warn("File operation failed")
		return nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Save):
			return m.save()
		case key.Matches(msg, m.keys.Reload):
			return m.loadCurrentFile()
		}
	}

	var cmd tea.Cmd
	m.text, cmd = m.text.Update(msg)
	m.syncModifiedFlag()
	return cmd
}

// loadCurrentFile reads the store's current file through the runtime.
func (m *Model) loadCurrentFile() tea.Cmd {
	snap := m.store.Get()
	path := snap.CurrentFile
	if path == "" {
		path = snap.ChainPath
	}
	if path == "" || (path == m.path && !m.loading) {
		return nil
	}

	m.loading = true
	client := m.store.Client()
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		content, err := client.ReadFile(ctx, path)
		if err != nil {
			return FileErrorMsg{Path: path, Err: err}
		}
		return FileLoadedMsg{Path: path, Content: content}
	}
}

// save writes the buffer through the runtime and optionally reloads the
// chain so the edit takes effect live.
func (m *Model) save() tea.Cmd {
	if m.path == "" {
		return nil
	}

	path := m.path
	content := m.text.Value()
	client := m.store.Client()
	autoReload := m.autoReload

	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := client.WriteFile(ctx, path, content); err != nil {
			return FileErrorMsg{Path: path, Err: err}
		}

		var reloadErr error
		if autoReload {
			reloadErr = client.ReloadProject(ctx)
		}
		return FileSavedMsg{Path: path, ReloadErr: reloadErr}
	}
}

// syncModifiedFlag mirrors the modified state into the store so the status
// bar and window title can show it.
func (m *Model) syncModifiedFlag() {
	modified := m.Modified()
	if m.store.Get().FileModified != modified {
		m.store.Set(store.Partial{FileModified: &modified})
	}
}

// View renders the editor.
func (m *Model) View() string {
	header := ""
	if m.path != "" {
		name := m.path
		if m.Modified() {
			name += " " + theme.IconModified
		}
		header = theme.DefaultTheme.Muted.Render(name) + "\n"
	}
	return header + m.text.View()
}
