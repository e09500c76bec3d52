// Package performance implements the performance panel: sparklines over the
// runtime's rolling FPS, frame-time and memory histories plus texture
// memory and operator count readouts.
package performance

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/vividtools/vivid-ide/store"
	"github.com/vividtools/vivid-ide/tui/theme"
)

// StateChangedMsg asks the panel to re-read the store.
type StateChangedMsg struct{}

// Model is the performance panel.
type Model struct {
	store *store.Store
	send  func(tea.Msg)

	width  int
	height int
	unsubs []func()
}

// New constructs the performance panel.
func New(st *store.Store, send func(tea.Msg)) *Model {
	m := &Model{store: st, send: send}
	m.unsubs = append(m.unsubs,
		st.SubscribeOnKey(store.KeyPerformanceStats, func(store.AppState) {
			send(StateChangedMsg{})
		}),
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

// Dispose unsubscribes from the store.
func (m *Model) Dispose() {
	for _, unsub := range m.unsubs {
		unsub()
	}
	m.unsubs = nil
}

// Update handles messages.
func (m *Model) Update(msg tea.Msg) tea.Cmd {
	return nil
}

// View renders the sparklines and readouts.
func (m *Model) View() string {
	stats := m.store.Get().PerformanceStats
	width := m.width - 18
	if width < 10 {
		width = 10
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("%-11s %s %s\n",
		theme.DefaultTheme.Normal.Render("fps"),
		sparkline(stats.FPSHistory, width),
		theme.DefaultTheme.Bold.Render(fmt.Sprintf("%5.1f", stats.FPS))))

	b.WriteString(fmt.Sprintf("%-11s %s %s\n",
		theme.DefaultTheme.Normal.Render("frame ms"),
		sparkline(stats.FrameTimeHistory, width),
		theme.DefaultTheme.Bold.Render(fmt.Sprintf("%5.2f", stats.FrameTimeMS))))

	mem := make([]float32, len(stats.MemoryHistory))
	for i, v := range stats.MemoryHistory {
		mem[i] = float32(v)
	}
	current := float32(0)
	if len(mem) > 0 {
		current = mem[len(mem)-1]
	}
	b.WriteString(fmt.Sprintf("%-11s %s %s\n",
		theme.DefaultTheme.Normal.Render("memory MB"),
		sparkline(mem, width),
		theme.DefaultTheme.Bold.Render(fmt.Sprintf("%5.0f", current))))

	b.WriteString("\n")
	b.WriteString(theme.DefaultTheme.Muted.Render(fmt.Sprintf(
		"texture memory %s   operators %d",
		formatBytes(stats.TextureMemoryBytes), stats.OperatorCount)))

	return strings.TrimRight(b.String(), "\n")
}

// sparkBlocks are the eight vertical block glyphs used for sparklines.
var sparkBlocks = []rune("▁▂▃▄▅▆▇█")

// sparkline renders the last width samples scaled to the series' own range.
func sparkline(series []float32, width int) string {
	if width <= 0 {
		return ""
	}
	if len(series) > width {
		series = series[len(series)-width:]
	}
	if len(series) == 0 {
		return theme.DefaultTheme.Muted.Render(strings.Repeat("▁", width))
	}

	min, max := series[0], series[0]
	for _, v := range series {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}

	var b strings.Builder
	span := max - min
	for _, v := range series {
		idx := 0
		if span > 0 {
			idx = int(float32(len(sparkBlocks)-1) * (v - min) / span)
		}
		if idx < 0 {
			idx = 0
		}
		if idx >= len(sparkBlocks) {
			idx = len(sparkBlocks) - 1
		}
		b.WriteRune(sparkBlocks[idx])
	}
	// Pad short series so the readout column stays aligned.
	if len(series) < width {
		b.WriteString(strings.Repeat(" ", width-len(series)))
	}
	return theme.DefaultTheme.Accent.Render(b.String())
}

func formatBytes(n uint64) string {
	switch {
	case n >= 1<<30:
		return fmt.Sprintf("%.1f GiB", float64(n)/(1<<30))
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MiB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KiB", float64(n)/(1<<10))
	default:
		return fmt.Sprintf("%d B", n)
	}
}
