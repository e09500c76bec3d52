// Package terminal implements the embedded terminal panel: a shell on a
// pty, scrollback, and keystroke forwarding while the panel has focus.
package terminal

import (
	"strconv"
	"strings"
	"sync"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"
	"github.com/vividtools/vivid-ide/logging"
	"github.com/vividtools/vivid-ide/tui/theme"
)

// OutputMsg carries a chunk of shell output.
type OutputMsg struct {
	SessionID int
	Data      []byte
}

// ExitMsg reports that the shell exited.
type ExitMsg struct {
	SessionID int
	Code      int
}

// Model is the terminal panel.
type Model struct {
	send   func(tea.Msg)
	logger *logrus.Entry

	viewport viewport.Model
	session  *Session

	mu         sync.Mutex
	buffer     []byte
	scrollback int

	shell string
	dir   string

	width  int
	height int
	ready  bool
	follow bool
	exited bool
	code   int
}

// New constructs the terminal panel. The shell is not spawned until Init.
func New(send func(tea.Msg), shell, dir string, scrollback int) *Model {
	if scrollback <= 0 {
		scrollback = 2000
	}
	return &Model{
		send:       send,
		logger:     logging.NewLogger("terminal"),
		viewport:   viewport.New(0, 0),
		shell:      shell,
		dir:        dir,
		scrollback: scrollback,
		follow:     true,
	}
}

// Init spawns the shell.
func (m *Model) Init() tea.Cmd {
	return m.spawn()
}

func (m *Model) spawn() tea.Cmd {
	if m.session != nil {
		return nil
	}

	session, err := SpawnShell(m.shell, m.dir,
		func(id int, data []byte) { m.send(OutputMsg{SessionID: id, Data: data}) },
		func(id int, code int) { m.send(ExitMsg{SessionID: id, Code: code}) },
	)
	if err != nil {
		m.logger.WithError(err).Error("Failed to spawn shell")
		return nil
	}
	m.session = session
	m.exited = false
	if m.ready {
		m.session.Resize(m.width, m.height)
	}
	return nil
}

// SetSize sets the panel's content area and resizes the pty to match.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = height
	m.ready = true
	if m.session != nil {
		if err := m.session.Resize(width, height); err != nil {
			m.logger.WithError(err).Debug("Pty resize failed")
		}
	}
	m.refreshContent()
}

// Dispose terminates the shell.
func (m *Model) Dispose() {
	if m.session != nil {
		m.session.Close()
		m.session = nil
	}
}

// Update handles messages. Printable keys and control sequences are
// forwarded to the shell verbatim.
func (m *Model) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case OutputMsg:
		if m.session == nil || msg.SessionID != m.session.ID() {
			return nil
		}
		m.appendOutput(msg.Data)
		return nil

	case ExitMsg:
		if m.session == nil || msg.SessionID != m.session.ID() {
			return nil
		}
		m.exited = true
		m.code = msg.Code
		m.session = nil
		return nil

	case tea.KeyMsg:
		if m.exited {
			if msg.Type == tea.KeyEnter {
				return m.spawn()
			}
			return nil
		}
		return m.forwardKey(msg)

	case tea.MouseMsg:
		// Wheel scrolling pages through scrollback; output stops pinning
		// the view until the user returns to the bottom.
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		m.follow = m.viewport.AtBottom()
		return cmd
	}
	return nil
}

func (m *Model) forwardKey(msg tea.KeyMsg) tea.Cmd {
	if m.session == nil {
		return nil
	}

	data := keyBytes(msg)
	if len(data) == 0 {
		return nil
	}
	if err := m.session.Write(data); err != nil {
		m.logger.WithError(err).Debug("Pty write failed")
	}
	return nil
}

// keyBytes translates a bubbletea key event into the bytes a terminal
// would send.
func keyBytes(msg tea.KeyMsg) []byte {
	switch msg.Type {
	case tea.KeyRunes:
		return []byte(string(msg.Runes))
	case tea.KeySpace:
		return []byte(" ")
	case tea.KeyEnter:
		return []byte("\r")
	case tea.KeyBackspace:
		return []byte{0x7f}
	case tea.KeyTab:
		return []byte("\t")
	case tea.KeyEsc:
		return []byte{0x1b}
	case tea.KeyUp:
		return []byte("\x1b[A")
	case tea.KeyDown:
		return []byte("\x1b[B")
	case tea.KeyRight:
		return []byte("\x1b[C")
	case tea.KeyLeft:
		return []byte("\x1b[D")
	case tea.KeyHome:
		return []byte("\x1b[H")
	case tea.KeyEnd:
		return []byte("\x1b[F")
	case tea.KeyCtrlC:
		return []byte{0x03}
	case tea.KeyCtrlD:
		return []byte{0x04}
	case tea.KeyCtrlZ:
		return []byte{0x1a}
	case tea.KeyCtrlL:
		return []byte{0x0c}
	case tea.KeyCtrlU:
		return []byte{0x15}
	case tea.KeyCtrlW:
		return []byte{0x17}
	case tea.KeyCtrlR:
		return []byte{0x12}
	case tea.KeyCtrlA:
		return []byte{0x01}
	case tea.KeyCtrlE:
		return []byte{0x05}
	case tea.KeyCtrlK:
		return []byte{0x0b}
	default:
		return nil
	}
}

// appendOutput adds shell output to the scrollback buffer.
func (m *Model) appendOutput(data []byte) {
	m.mu.Lock()
	m.buffer = append(m.buffer, data...)

	// Trim by lines once the buffer exceeds the scrollback budget.
	lines := strings.Split(string(m.buffer), "\n")
	if len(lines) > m.scrollback {
		lines = lines[len(lines)-m.scrollback:]
		m.buffer = []byte(strings.Join(lines, "\n"))
	}
	m.mu.Unlock()

	m.refreshContent()
	if m.follow {
		m.viewport.GotoBottom()
	}
}

func (m *Model) refreshContent() {
	if !m.ready {
		return
	}
	m.mu.Lock()
	content := string(m.buffer)
	m.mu.Unlock()
	m.viewport.SetContent(content)
}

// View renders the terminal.
func (m *Model) View() string {
	if !m.ready {
		return ""
	}
	view := m.viewport.View()
	if m.exited {
		status := theme.DefaultTheme.Muted.Render(
			"shell exited, press enter to restart")
		if m.code != 0 {
			status = theme.DefaultTheme.Error.Render("shell exited with code ") +
				theme.DefaultTheme.Error.Render(strconv.Itoa(m.code)) +
				theme.DefaultTheme.Muted.Render(", press enter to restart")
		}
		view += "\n" + status
	}
	return view
}
