// Package preview implements the preview panel. The render surface itself
// lives in the runtime's own window; this panel mirrors its status and
// forwards pointer input that lands inside its bounds, so interactive
// sketches receive mouse coordinates in surface space.
package preview

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"
	"github.com/vividtools/vivid-ide/logging"
	"github.com/vividtools/vivid-ide/store"
	"github.com/vividtools/vivid-ide/tui/theme"
)

// StateChangedMsg asks the preview to re-read the store.
type StateChangedMsg struct{}

// KeyMap defines the keybindings for the preview panel.
type KeyMap struct {
	Visualizer key.Binding
}

// DefaultKeyMap is the default set of keybindings.
var DefaultKeyMap = KeyMap{
	Visualizer: key.NewBinding(
		key.WithKeys("v"),
		key.WithHelp("v", "toggle visualizer"),
	),
}

// Model is the preview panel.
type Model struct {
	store  *store.Store
	send   func(tea.Msg)
	keys   KeyMap
	logger *logrus.Entry

	// Bounds of the panel content in screen cells, for hit-testing mouse
	// events that bubbletea reports in screen coordinates.
	x, y          int
	width, height int

	unsubs []func()
}

// New constructs the preview panel.
func New(st *store.Store, send func(tea.Msg)) *Model {
	m := &Model{
		store:  st,
		send:   send,
		keys:   DefaultKeyMap,
		logger: logging.NewLogger("preview"),
	}

	notify := func(store.AppState) { send(StateChangedMsg{}) }
	m.unsubs = append(m.unsubs,
		st.SubscribeOnKey(store.KeyCompileStatus, notify),
		st.SubscribeOnKey(store.KeyPerformanceStats, notify),
		st.SubscribeOnKey(store.KeyProjectLoaded, notify),
	)
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// SetSize sets the panel's content area.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// SetOrigin records where the panel sits on screen, for mouse hit-testing.
func (m *Model) SetOrigin(x, y int) {
	m.x = x
	m.y = y
}

// Dispose unsubscribes from the store.
func (m *Model) Dispose() {
	for _, unsub := range m.unsubs {
		unsub()
	}
	m.unsubs = nil
}

// Update handles messages.
func (m *Model) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case StateChangedMsg:
		return nil

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Visualizer) {
			client := m.store.Client()
			logger := m.logger
			return func() tea.Msg {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := client.ToggleVisualizer(ctx); err != nil {
					logger.WithError(err).Warn("Failed to toggle visualizer")
				}
				return nil
			}
		}

	case tea.MouseMsg:
		return m.forwardMouse(msg)
	}
	return nil
}

// forwardMouse translates a mouse event inside the panel into surface
// coordinates and sends it to the runtime. Events outside the bounds are
// ignored.
func (m *Model) forwardMouse(msg tea.MouseMsg) tea.Cmd {
	if m.width <= 0 || m.height <= 0 {
		return nil
	}
	px := msg.X - m.x
	py := msg.Y - m.y
	if px < 0 || py < 0 || px >= m.width || py >= m.height {
		return nil
	}

	// Normalize to [0,1] within the surface.
	fx := float32(px) / float32(m.width-1)
	fy := float32(py) / float32(m.height-1)

	client := m.store.Client()
	logger := m.logger

	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()

		var err error
		switch msg.Action {
		case tea.MouseActionMotion:
			err = client.MouseMove(ctx, fx, fy)
		case tea.MouseActionPress, tea.MouseActionRelease:
			switch msg.Button {
			case tea.MouseButtonWheelUp:
				err = client.Scroll(ctx, 0, 1)
			case tea.MouseButtonWheelDown:
				err = client.Scroll(ctx, 0, -1)
			case tea.MouseButtonLeft, tea.MouseButtonRight, tea.MouseButtonMiddle:
				if moveErr := client.MouseMove(ctx, fx, fy); moveErr != nil {
					err = moveErr
					break
				}
				err = client.MouseButton(ctx, buttonCode(msg.Button), msg.Action == tea.MouseActionPress)
			}
		}
		if err != nil {
			logger.WithError(err).Debug("Input forwarding failed")
		}
		return nil
	}
}

func buttonCode(b tea.MouseButton) int {
	switch b {
	case tea.MouseButtonRight:
		return 1
	case tea.MouseButtonMiddle:
		return 2
	default:
		return 0
	}
}

// View renders the status card that stands in for the render surface.
func (m *Model) View() string {
	snap := m.store.Get()

	var b strings.Builder
	if !snap.ProjectLoaded {
		b.WriteString(theme.DefaultTheme.Muted.Render("no project loaded"))
		return b.String()
	}

	if snap.CompileStatus.Success {
		b.WriteString(theme.DefaultTheme.Success.Render(theme.IconRunning + " rendering"))
	} else if snap.CompileStatus.Message != "" {
		b.WriteString(theme.DefaultTheme.Error.Render(theme.IconError + " compile error"))
	} else {
		b.WriteString(theme.DefaultTheme.Muted.Render(theme.IconPending + " waiting"))
	}
	b.WriteString("\n")

	stats := snap.PerformanceStats
	if stats.FPS > 0 {
		b.WriteString(theme.DefaultTheme.Muted.Render(
			fmt.Sprintf("%.0f fps · %.1f ms", stats.FPS, stats.FrameTimeMS)))
		b.WriteString("\n")
	}
	b.WriteString(theme.DefaultTheme.Muted.Render("mouse input forwarded to sketch"))
	return b.String()
}
