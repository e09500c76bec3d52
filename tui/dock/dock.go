// Package dock manages the panel layout: a tree of binary splits with tab
// groups at the leaves. It knows nothing about rendering; the app walks the
// tree to place panel views, and the manager answers visibility questions
// and mutates the tree for show/hide/toggle.
package dock

// PanelID identifies one of the closed set of dockable panels.
type PanelID string

const (
	PanelEditor      PanelID = "editor"
	PanelTerminal    PanelID = "terminal"
	PanelInspector   PanelID = "inspector"
	PanelConsole     PanelID = "console"
	PanelPreview     PanelID = "preview"
	PanelPerformance PanelID = "performance"
)

// AllPanels lists every known panel, in default tab order.
var AllPanels = []PanelID{
	PanelEditor,
	PanelTerminal,
	PanelInspector,
	PanelConsole,
	PanelPreview,
	PanelPerformance,
}

// Valid reports whether the ID names a known panel.
func (id PanelID) Valid() bool {
	for _, p := range AllPanels {
		if p == id {
			return true
		}
	}
	return false
}

// Title returns the human-readable panel title.
func (id PanelID) Title() string {
	switch id {
	case PanelEditor:
		return "Code"
	case PanelTerminal:
		return "Terminal"
	case PanelInspector:
		return "Parameters"
	case PanelConsole:
		return "Console"
	case PanelPreview:
		return "Preview"
	case PanelPerformance:
		return "Performance"
	default:
		return string(id)
	}
}

// Visibility is the answer to "where is this panel right now".
type Visibility int

const (
	// Absent means the panel was removed from the layout tree entirely.
	Absent Visibility = iota
	// InactiveTab means the panel exists but sits behind another tab.
	InactiveTab
	// Visible means the panel is the active tab of its group.
	Visible
)

// Orientation of a split node.
type Orientation string

const (
	Row    Orientation = "row"    // children side by side
	Column Orientation = "column" // children stacked
)

// Node is either a split or a tab group, never both.
type Node struct {
	Split *Split    `json:"split,omitempty"`
	Tabs  *TabGroup `json:"tabs,omitempty"`
}

// Split divides the space between two children.
type Split struct {
	Orientation Orientation `json:"orientation"`
	Ratio       float64     `json:"ratio"` // share given to First, (0, 1)
	First       *Node       `json:"first"`
	Second      *Node       `json:"second"`
}

// TabGroup holds one or more panels sharing a region; one tab is active.
type TabGroup struct {
	Panels []PanelID `json:"panels"`
	Active int       `json:"active"`
}

// ActivePanel returns the group's active panel.
func (g *TabGroup) ActivePanel() PanelID {
	if g.Active < 0 || g.Active >= len(g.Panels) {
		return ""
	}
	return g.Panels[g.Active]
}

// Manager owns the layout tree.
type Manager struct {
	root *Node
}

// NewManager creates a manager with the default layout.
func NewManager() *Manager {
	return &Manager{root: defaultLayout()}
}

// defaultLayout mirrors the desktop arrangement: editor and preview up top
// side by side, inspector on the right, console and terminal tabbed along
// the bottom with performance behind them.
func defaultLayout() *Node {
	return &Node{Split: &Split{
		Orientation: Column,
		Ratio:       0.7,
		First: &Node{Split: &Split{
			Orientation: Row,
			Ratio:       0.45,
			First:       &Node{Tabs: &TabGroup{Panels: []PanelID{PanelEditor}}},
			Second: &Node{Split: &Split{
				Orientation: Row,
				Ratio:       0.6,
				First:       &Node{Tabs: &TabGroup{Panels: []PanelID{PanelPreview}}},
				Second:      &Node{Tabs: &TabGroup{Panels: []PanelID{PanelInspector}}},
			}},
		}},
		Second: &Node{Tabs: &TabGroup{
			Panels: []PanelID{PanelConsole, PanelTerminal, PanelPerformance},
		}},
	}}
}

// Reset discards the current layout and restores the default arrangement.
func (m *Manager) Reset() {
	m.root = defaultLayout()
}

// Root returns the layout tree for rendering. Treat it as read-only.
func (m *Manager) Root() *Node {
	return m.root
}

// Visibility walks the tree and classifies the panel as visible, behind a
// tab, or absent.
func (m *Manager) Visibility(id PanelID) Visibility {
	vis := Absent
	WalkGroups(m.root, func(g *TabGroup) {
		for i, p := range g.Panels {
			if p != id {
				continue
			}
			if i == g.Active {
				vis = Visible
			} else if vis == Absent {
				vis = InactiveTab
			}
		}
	})
	return vis
}

// VisiblePanels returns the active panel of every tab group, in tree order.
func (m *Manager) VisiblePanels() []PanelID {
	var out []PanelID
	WalkGroups(m.root, func(g *TabGroup) {
		if p := g.ActivePanel(); p != "" {
			out = append(out, p)
		}
	})
	return out
}

// Show makes the panel visible. The three cases matter: already visible is
// a no-op, present behind a tab means activating that tab, and absent means
// re-inserting the panel into its default region.
func (m *Manager) Show(id PanelID) {
	switch m.Visibility(id) {
	case Visible:
		return
	case InactiveTab:
		WalkGroups(m.root, func(g *TabGroup) {
			for i, p := range g.Panels {
				if p == id {
					g.Active = i
				}
			}
		})
	case Absent:
		m.insert(id)
	}
}

// Hide removes the panel from the layout tree. An emptied tab group
// collapses its parent split so the sibling takes the space.
func (m *Manager) Hide(id PanelID) {
	m.root = removePanel(m.root, id)
	if m.root == nil {
		// Never leave the tree empty; an empty group still renders a frame.
		m.root = &Node{Tabs: &TabGroup{}}
	}
}

// Toggle hides a visible panel and shows a hidden or backgrounded one.
func (m *Manager) Toggle(id PanelID) {
	if m.Visibility(id) == Visible {
		m.Hide(id)
	} else {
		m.Show(id)
	}
}

// ActivateNext cycles the active tab of the group containing the panel.
func (m *Manager) ActivateNext(id PanelID) {
	WalkGroups(m.root, func(g *TabGroup) {
		for _, p := range g.Panels {
			if p == id && len(g.Panels) > 1 {
				g.Active = (g.Active + 1) % len(g.Panels)
				return
			}
		}
	})
}

// WalkGroups visits every tab group in tree order.
func WalkGroups(n *Node, visit func(*TabGroup)) {
	if n == nil {
		return
	}
	if n.Tabs != nil {
		visit(n.Tabs)
	}
	if n.Split != nil {
		WalkGroups(n.Split.First, visit)
		WalkGroups(n.Split.Second, visit)
	}
}

// removePanel drops the panel from the subtree, collapsing emptied nodes.
// Returns nil when the whole subtree becomes empty.
func removePanel(n *Node, id PanelID) *Node {
	if n == nil {
		return nil
	}

	if n.Tabs != nil {
		g := n.Tabs
		for i := 0; i < len(g.Panels); i++ {
			if g.Panels[i] == id {
				g.Panels = append(g.Panels[:i], g.Panels[i+1:]...)
				if g.Active >= len(g.Panels) {
					g.Active = len(g.Panels) - 1
				}
				if g.Active < 0 {
					g.Active = 0
				}
				i--
			}
		}
		if len(g.Panels) == 0 {
			return nil
		}
		return n
	}

	s := n.Split
	s.First = removePanel(s.First, id)
	s.Second = removePanel(s.Second, id)
	if s.First == nil {
		return s.Second
	}
	if s.Second == nil {
		return s.First
	}
	return n
}

// insertTargets maps each panel to the panels whose tab group it joins when
// re-created after being closed. When none of them is present the panel gets
// a fresh split at the root.
var insertTargets = map[PanelID][]PanelID{
	PanelEditor:      {PanelPreview, PanelInspector},
	PanelTerminal:    {PanelConsole, PanelPerformance},
	PanelConsole:     {PanelTerminal, PanelPerformance},
	PanelPerformance: {PanelConsole, PanelTerminal},
	PanelInspector:   {PanelPreview, PanelEditor},
	PanelPreview:     {PanelInspector, PanelEditor},
}

// bottomRegion panels split off the bottom of the root; the rest split right.
var bottomRegion = map[PanelID]bool{
	PanelTerminal:    true,
	PanelConsole:     true,
	PanelPerformance: true,
}

func (m *Manager) insert(id PanelID) {
	// Prefer joining the tab group of a related panel.
	for _, target := range insertTargets[id] {
		if m.appendToGroupOf(target, id) {
			return
		}
	}

	// No related group exists; split the root.
	orientation := Row
	ratio := 0.7
	if bottomRegion[id] {
		orientation = Column
		ratio = 0.75
	}
	m.root = &Node{Split: &Split{
		Orientation: orientation,
		Ratio:       ratio,
		First:       m.root,
		Second:      &Node{Tabs: &TabGroup{Panels: []PanelID{id}}},
	}}
}

func (m *Manager) appendToGroupOf(target, id PanelID) bool {
	done := false
	WalkGroups(m.root, func(g *TabGroup) {
		if done {
			return
		}
		for _, p := range g.Panels {
			if p == target {
				g.Panels = append(g.Panels, id)
				g.Active = len(g.Panels) - 1
				done = true
				return
			}
		}
	})
	return done
}
