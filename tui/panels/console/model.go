// Package console implements the console panel: captured runtime stdout and
// stderr, compile transitions, and optionally a followed log file.
package console

import (
	"fmt"
	"io"
	stdlog "log"
	"strings"
	"sync"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/hpcloud/tail"
	"github.com/vividtools/vivid-ide/pkg/runtime"
	"github.com/vividtools/vivid-ide/store"
	"github.com/vividtools/vivid-ide/tui/theme"
	"github.com/vividtools/vivid-ide/tui/utils/scrollbar"
)

const maxLines = 5000

// LineMsg appends one line to the console.
type LineMsg struct {
	Stream string // "stdout", "stderr", "compile" or "log"
	Text   string
}

// KeyMap defines the keybindings for the console panel.
type KeyMap struct {
	Follow key.Binding
	Clear  key.Binding
	Top    key.Binding
	Bottom key.Binding
}

// DefaultKeyMap is the default set of keybindings.
var DefaultKeyMap = KeyMap{
	Follow: key.NewBinding(
		key.WithKeys("f"),
		key.WithHelp("f", "toggle follow"),
	),
	Clear: key.NewBinding(
		key.WithKeys("ctrl+l"),
		key.WithHelp("ctrl+l", "clear"),
	),
	Top: key.NewBinding(
		key.WithKeys("g"),
		key.WithHelp("g", "top"),
	),
	Bottom: key.NewBinding(
		key.WithKeys("G"),
		key.WithHelp("G", "bottom"),
	),
}

// Model is the console panel.
type Model struct {
	viewport viewport.Model
	keys     KeyMap
	send     func(tea.Msg)

	mu    sync.Mutex
	lines []string

	follow bool
	ready  bool
	width  int
	height int

	lastCompile *runtime.CompileStatusInfo
	tailer      *tail.Tail
	unsubs      []func()
}

// New constructs the console and subscribes it to compile transitions.
func New(st *store.Store, send func(tea.Msg)) *Model {
	m := &Model{
		viewport: viewport.New(0, 0),
		keys:     DefaultKeyMap,
		send:     send,
		follow:   true,
	}

	if st != nil {
		m.unsubs = append(m.unsubs,
			st.SubscribeOnKey(store.KeyCompileStatus, func(snap store.AppState) {
				status := snap.CompileStatus
				m.mu.Lock()
				changed := m.lastCompile == nil || *m.lastCompile != status
				m.lastCompile = &status
				m.mu.Unlock()
				if changed {
					send(LineMsg{Stream: "compile", Text: FormatCompileLine(status)})
				}
			}),
		)
	}
	return m
}

// FollowFile tails a log file into the console, e.g. the runtime's own log.
func (m *Model) FollowFile(path string) error {
	m.StopFollowing()

	t, err := tail.TailFile(path, tail.Config{
		Follow:   true,
		ReOpen:   true,
		Location: &tail.SeekInfo{Offset: 0, Whence: io.SeekEnd},
		Logger:   stdlog.New(io.Discard, "", 0),
	})
	if err != nil {
		return err
	}
	m.tailer = t

	go func() {
		for line := range t.Lines {
			m.send(LineMsg{Stream: "log", Text: line.Text})
		}
	}()
	return nil
}

// StopFollowing stops any file tail.
func (m *Model) StopFollowing() {
	if m.tailer != nil {
		m.tailer.Stop()
		m.tailer = nil
	}
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// SetSize sets the panel's content area.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = height
	m.ready = true
	m.refreshContent()
}

// Dispose unsubscribes and stops tailing.
func (m *Model) Dispose() {
	for _, unsub := range m.unsubs {
		unsub()
	}
	m.unsubs = nil
	m.StopFollowing()
}

// Update handles messages.
func (m *Model) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case LineMsg:
		m.Append(msg.Stream, msg.Text)
		return nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Follow):
			m.follow = !m.follow
			if m.follow {
				m.viewport.GotoBottom()
			}
			return nil
		case key.Matches(msg, m.keys.Clear):
			m.Clear()
			return nil
		case key.Matches(msg, m.keys.Top):
			m.follow = false
			m.viewport.GotoTop()
			return nil
		case key.Matches(msg, m.keys.Bottom):
			m.viewport.GotoBottom()
			return nil
		}
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return cmd
}

// Append adds one formatted line, trimming the buffer at its cap.
func (m *Model) Append(stream, text string) {
	m.mu.Lock()
	m.lines = append(m.lines, formatLine(stream, text))
	if len(m.lines) > maxLines {
		m.lines = m.lines[len(m.lines)-maxLines:]
	}
	m.mu.Unlock()

	m.refreshContent()
	if m.follow {
		m.viewport.GotoBottom()
	}
}

// Clear empties the console.
func (m *Model) Clear() {
	m.mu.Lock()
	m.lines = nil
	m.mu.Unlock()
	m.viewport.SetContent("")
}

// Lines returns a copy of the raw rendered lines.
func (m *Model) Lines() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.lines...)
}

// IsFollowing reports whether the console sticks to the bottom.
func (m *Model) IsFollowing() bool {
	return m.follow
}

func (m *Model) refreshContent() {
	if !m.ready {
		return
	}

	wrapWidth := m.viewport.Width - 1
	if wrapWidth < 1 {
		wrapWidth = 1
	}
	wrapStyle := lipgloss.NewStyle().Width(wrapWidth)

	m.mu.Lock()
	wrapped := make([]string, len(m.lines))
	for i, line := range m.lines {
		wrapped[i] = wrapStyle.Render(line)
	}
	m.mu.Unlock()

	m.viewport.SetContent(strings.Join(wrapped, "\n"))
}

// View renders the console with a scrollbar overlay.
func (m *Model) View() string {
	if !m.ready {
		return ""
	}
	return scrollbar.Overlay(&m.viewport)
}

func formatLine(stream, text string) string {
	switch stream {
	case "stderr":
		return theme.DefaultTheme.Error.Render("!") + " " + text
	case "compile":
		return text
	case "log":
		return theme.DefaultTheme.Muted.Render(text)
	default:
		return text
	}
}

// FormatCompileLine renders one compile transition for the console.
func FormatCompileLine(status runtime.CompileStatusInfo) string {
	if status.Success {
		return theme.DefaultTheme.Success.Render(theme.IconSuccess+" compile ok") +
			theme.DefaultTheme.Muted.Render(" chain rebuilt")
	}
	msg, location := FormatCompileError(status)
	line := theme.DefaultTheme.Error.Render(theme.IconError+" compile failed: ") + msg
	if location != "" {
		line += theme.DefaultTheme.Muted.Render(" (" + location + ")")
	}
	return line
}

// FormatCompileError extracts the display message and location text from a
// failed compile status. Compiler output prefixes messages with "error: ",
// which is noise in a banner that already says the compile failed.
func FormatCompileError(status runtime.CompileStatusInfo) (message, location string) {
	message = strings.TrimPrefix(status.Message, "error: ")
	if status.ErrorLine > 0 {
		location = fmt.Sprintf("Line %d:%d", status.ErrorLine, status.ErrorColumn)
	}
	return message, location
}
