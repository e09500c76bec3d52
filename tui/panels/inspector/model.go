// Package inspector implements the parameter inspector panel: the operator
// chain with a fuzzy filter on top, and per-type controls for the selected
// operator's parameters below. Slider input is debounced before it reaches
// the runtime so drag gestures do not flood the command channel.
package inspector

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/sirupsen/logrus"
	"github.com/vividtools/vivid-ide/logging"
	"github.com/vividtools/vivid-ide/pkg/runtime"
	"github.com/vividtools/vivid-ide/store"
	"github.com/vividtools/vivid-ide/tui/theme"
)

// DebounceDelay is the trailing delay applied to slider input before a
// set_param goes out.
const DebounceDelay = 50 * time.Millisecond

// StateChangedMsg asks the inspector to re-read the store.
type StateChangedMsg struct{}

// Model is the parameter inspector panel.
type Model struct {
	store  *store.Store
	send   func(tea.Msg)
	keys   KeyMap
	logger *logrus.Entry

	width  int
	height int

	filter    textinput.Model
	filtering bool
	listIdx   int

	focusParams bool
	paramIdx    int

	op       string
	params   []runtime.ParamInfo
	controls []control

	deb    *debouncer
	unsubs []func()
}

// New constructs the inspector and subscribes it to the store keys it
// renders from.
func New(st *store.Store, send func(tea.Msg)) *Model {
	filter := textinput.New()
	filter.Placeholder = "filter operators"
	filter.Prompt = theme.IconFilter + " "
	filter.CharLimit = 64

	m := &Model{
		store:  st,
		send:   send,
		keys:   DefaultKeyMap,
		logger: logging.NewLogger("inspector"),
		filter: filter,
	}

	m.deb = newDebouncer(DebounceDelay, func(op, param string, value [4]float32) {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if _, err := st.Client().SetParam(ctx, op, param, value); err != nil {
			m.logger.WithError(err).WithFields(logrus.Fields{
				"operator": op,
				"param":    param,
			}).Warn("Failed to set parameter")
		}
	})

	notify := func(store.AppState) { send(StateChangedMsg{}) }
	m.unsubs = append(m.unsubs,
		st.SubscribeOnKey(store.KeyOperators, notify),
		st.SubscribeOnKey(store.KeySelectedOperator, notify),
		st.SubscribeOnKey(store.KeySelectedOperatorParams, notify),
	)

	m.syncFromStore()
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
	m.filter.Width = width - 4
}

// Dispose unsubscribes from the store and flushes any pending parameter
// write so the last drag value is not lost.
func (m *Model) Dispose() {
	for _, unsub := range m.unsubs {
		unsub()
	}
	m.unsubs = nil
	m.deb.Flush()
}

// Update handles messages.
func (m *Model) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case StateChangedMsg:
		m.syncFromStore()
		return nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	if m.filtering {
		var cmd tea.Cmd
		m.filter, cmd = m.filter.Update(msg)
		return cmd
	}
	return nil
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	if m.filtering {
		switch {
		case msg.Type == tea.KeyEnter, msg.Type == tea.KeyEsc:
			if msg.Type == tea.KeyEsc {
				m.filter.SetValue("")
			}
			m.filtering = false
			m.filter.Blur()
			m.clampListIdx()
			return nil
		default:
			var cmd tea.Cmd
			m.filter, cmd = m.filter.Update(msg)
			m.clampListIdx()
			return cmd
		}
	}

	switch {
	case key.Matches(msg, m.keys.Filter):
		m.filtering = true
		m.focusParams = false
		return m.filter.Focus()

	case key.Matches(msg, m.keys.Up):
		if m.focusParams {
			if m.paramIdx > 0 {
				m.paramIdx--
			} else {
				m.focusParams = false
			}
		} else if m.listIdx > 0 {
			m.listIdx--
		}

	case key.Matches(msg, m.keys.Down):
		if m.focusParams {
			if m.paramIdx < len(m.controls)-1 {
				m.paramIdx++
			}
		} else if m.listIdx < len(m.filteredOperators())-1 {
			m.listIdx++
		} else if len(m.controls) > 0 {
			m.focusParams = true
			m.paramIdx = 0
		}

	case key.Matches(msg, m.keys.Accept):
		if !m.focusParams {
			return m.selectHighlighted()
		}

	case key.Matches(msg, m.keys.Component):
		if m.focusParams && m.paramIdx < len(m.controls) {
			m.controls[m.paramIdx].nextComponent()
		}

	case key.Matches(msg, m.keys.BigStep):
		if m.focusParams && m.paramIdx < len(m.controls) {
			steps := 10
			if strings.Contains(msg.String(), "left") || msg.String() == "H" {
				steps = -10
			}
			m.adjustFocused(steps)
		}

	case key.Matches(msg, m.keys.Increase):
		if m.focusParams && m.paramIdx < len(m.controls) {
			m.adjustFocused(1)
		}

	case key.Matches(msg, m.keys.Decrease):
		if m.focusParams && m.paramIdx < len(m.controls) {
			m.adjustFocused(-1)
		}
	}
	return nil
}

// adjustFocused nudges the focused control and schedules the debounced
// runtime write.
func (m *Model) adjustFocused(steps int) {
	ctl := m.controls[m.paramIdx]
	ctl.adjust(steps)
	m.deb.Set(m.op, m.params[m.paramIdx].Name, ctl.value())
}

// selectHighlighted selects the operator under the cursor. The store call
// does network IO, so it runs as a command.
func (m *Model) selectHighlighted() tea.Cmd {
	ops := m.filteredOperators()
	if m.listIdx >= len(ops) {
		return nil
	}
	name := ops[m.listIdx].Name
	st := m.store
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		st.SelectOperator(ctx, name)
		return nil
	}
}

// syncFromStore pulls the operator list and selection. Controls are rebuilt
// only when the selection or parameter shape changed, so local edits in
// progress are not clobbered by an echo of our own write.
func (m *Model) syncFromStore() {
	snap := m.store.Get()
	m.clampListIdx()

	if snap.SelectedOperator == m.op && sameParamShape(m.params, snap.SelectedOperatorParams) {
		return
	}

	m.op = snap.SelectedOperator
	m.params = snap.SelectedOperatorParams
	m.controls = make([]control, len(m.params))
	for i, p := range m.params {
		m.controls[i] = buildControl(p)
	}
	if m.paramIdx >= len(m.controls) {
		m.paramIdx = 0
	}
	if len(m.controls) == 0 {
		m.focusParams = false
	}
}

func sameParamShape(a, b []runtime.ParamInfo) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Name != b[i].Name || a[i].ParamType != b[i].ParamType {
			return false
		}
	}
	return true
}

func (m *Model) filteredOperators() []runtime.OperatorInfo {
	ops := m.store.Get().Operators
	query := m.filter.Value()
	if query == "" {
		return ops
	}

	var out []runtime.OperatorInfo
	for _, op := range ops {
		if fuzzy.MatchFold(query, op.Name) || fuzzy.MatchFold(query, op.TypeName) {
			out = append(out, op)
		}
	}
	return out
}

func (m *Model) clampListIdx() {
	n := len(m.filteredOperators())
	if m.listIdx >= n {
		m.listIdx = n - 1
	}
	if m.listIdx < 0 {
		m.listIdx = 0
	}
}

// View renders the operator list above the selected operator's controls.
func (m *Model) View() string {
	var b strings.Builder

	if m.filtering || m.filter.Value() != "" {
		b.WriteString(m.filter.View())
		b.WriteString("\n")
	}

	ops := m.filteredOperators()
	if len(ops) == 0 {
		b.WriteString(theme.DefaultTheme.Muted.Render("no operators"))
		b.WriteString("\n")
	}
	for i, op := range ops {
		marker := "  "
		line := fmt.Sprintf("%s %s", op.Name, theme.DefaultTheme.Muted.Render(op.TypeName))
		if op.Bypassed {
			line += " " + theme.IconBypassed
		}
		if op.Name == m.op {
			marker = theme.IconSelect + " "
		}
		if i == m.listIdx && !m.focusParams {
			line = theme.DefaultTheme.Selected.Render(line)
		}
		b.WriteString(marker + line + "\n")
	}

	if m.op != "" {
		b.WriteString("\n")
		b.WriteString(theme.DefaultTheme.Title.Render(m.op))
		b.WriteString("\n")
		for i, p := range m.params {
			focused := m.focusParams && i == m.paramIdx
			name := p.Name
			if focused {
				name = theme.DefaultTheme.Highlight.Render(name)
			} else {
				name = theme.DefaultTheme.Normal.Render(name)
			}
			b.WriteString(fmt.Sprintf("%-14s %s\n", name, m.controls[i].view(m.width-16, focused)))
		}
	}

	return strings.TrimRight(b.String(), "\n")
}
