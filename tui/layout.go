package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/vividtools/vivid-ide/tui/dock"
	"github.com/vividtools/vivid-ide/tui/panels/console"
	"github.com/vividtools/vivid-ide/tui/theme"
)

// rect is a region in screen cells.
type rect struct {
	x, y, w, h int
}

func (r rect) contains(x, y int) bool {
	return x >= r.x && x < r.x+r.w && y >= r.y && y < r.y+r.h
}

// Panel chrome: one border cell on each side plus the tab bar row.
const (
	chromeWidth  = 2
	chromeHeight = 3
)

// relayout recomputes every panel's content rect from the current window
// size, banners and dock tree, and pushes the sizes into the panels.
func (a *App) relayout() {
	a.rects = map[dock.PanelID]rect{}
	if a.width <= 0 || a.height <= 0 {
		return
	}

	top := a.bannerLines()
	content := rect{x: 0, y: top, w: a.width, h: a.height - top - 1}
	if content.h <= 0 {
		return
	}

	a.layoutNode(a.dock.Root(), content)
}

// bannerLines counts the rows occupied by banners above the dock area.
func (a *App) bannerLines() int {
	n := 0
	if a.banner != nil {
		n++
	}
	if a.showMCPBanner {
		n++
	}
	return n
}

func (a *App) layoutNode(n *dock.Node, r rect) {
	if n == nil {
		return
	}

	if n.Split != nil {
		first, second := splitRect(r, n.Split)
		a.layoutNode(n.Split.First, first)
		a.layoutNode(n.Split.Second, second)
		return
	}

	if n.Tabs == nil {
		return
	}
	active := n.Tabs.ActivePanel()
	p, ok := a.panels[active]
	if !ok {
		return
	}

	inner := rect{
		x: r.x + 1,
		y: r.y + 2, // border row plus tab bar row
		w: r.w - chromeWidth,
		h: r.h - chromeHeight,
	}
	if inner.w < 1 {
		inner.w = 1
	}
	if inner.h < 1 {
		inner.h = 1
	}
	a.rects[active] = inner
	p.SetSize(inner.w, inner.h)
	if active == dock.PanelPreview {
		a.preview.SetOrigin(inner.x, inner.y)
	}
}

// splitRect divides r between the two children of a split, whole cells only.
func splitRect(r rect, s *dock.Split) (rect, rect) {
	if s.Orientation == dock.Row {
		w1 := int(float64(r.w) * s.Ratio)
		if w1 < 1 {
			w1 = 1
		}
		if w1 > r.w-1 {
			w1 = r.w - 1
		}
		return rect{r.x, r.y, w1, r.h}, rect{r.x + w1, r.y, r.w - w1, r.h}
	}
	h1 := int(float64(r.h) * s.Ratio)
	if h1 < 1 {
		h1 = 1
	}
	if h1 > r.h-1 {
		h1 = r.h - 1
	}
	return rect{r.x, r.y, r.w, h1}, rect{r.x, r.y + h1, r.w, r.h - h1}
}

// View renders the banners, the dock tree and the status bar.
func (a *App) View() string {
	if a.width <= 0 || a.height <= 0 {
		return ""
	}

	var rows []string
	if a.banner != nil {
		rows = append(rows, a.renderCompileBanner())
	}
	if a.showMCPBanner {
		rows = append(rows, a.renderMCPBanner())
	}

	content := rect{w: a.width, h: a.height - a.bannerLines() - 1}
	if a.showHelp {
		rows = append(rows, a.renderHelp(content.w, content.h))
	} else {
		rows = append(rows, a.renderNode(a.dock.Root(), content.w, content.h))
	}
	rows = append(rows, a.statusBar())

	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (a *App) renderNode(n *dock.Node, w, h int) string {
	if n == nil || w < 1 || h < 1 {
		return ""
	}

	if n.Split != nil {
		first, second := splitRect(rect{w: w, h: h}, n.Split)
		if n.Split.Orientation == dock.Row {
			return lipgloss.JoinHorizontal(lipgloss.Top,
				a.renderNode(n.Split.First, first.w, first.h),
				a.renderNode(n.Split.Second, second.w, second.h))
		}
		return lipgloss.JoinVertical(lipgloss.Left,
			a.renderNode(n.Split.First, first.w, first.h),
			a.renderNode(n.Split.Second, second.w, second.h))
	}

	if n.Tabs == nil {
		return ""
	}
	return a.renderGroup(n.Tabs, w, h)
}

func (a *App) renderGroup(g *dock.TabGroup, w, h int) string {
	active := g.ActivePanel()
	cw := w - chromeWidth
	ch := h - chromeHeight
	if cw < 1 {
		cw = 1
	}
	if ch < 1 {
		ch = 1
	}

	var body string
	if p, ok := a.panels[active]; ok {
		body = p.View()
	}
	body = lipgloss.NewStyle().
		Width(cw).Height(ch).
		MaxWidth(cw).MaxHeight(ch).
		Render(body)

	focused := false
	for _, id := range g.Panels {
		if id == a.focus {
			focused = true
		}
	}

	box := theme.DefaultTheme.PanelBorder
	if focused {
		box = theme.DefaultTheme.PanelBorderActive
	}
	return box.Render(a.renderTabBar(g, cw) + "\n" + body)
}

func (a *App) renderTabBar(g *dock.TabGroup, width int) string {
	var tabs []string
	for i, id := range g.Panels {
		label := id.Title()
		if id == dock.PanelEditor && a.editor.Modified() {
			label += " " + theme.IconModified
		}
		if i == g.Active {
			tabs = append(tabs, theme.DefaultTheme.TabActive.Render(label))
		} else {
			tabs = append(tabs, theme.DefaultTheme.TabInactive.Render(label))
		}
	}
	bar := lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
	return lipgloss.NewStyle().Width(width).MaxWidth(width).MaxHeight(1).Render(bar)
}

// renderCompileBanner shows the current compile error across the top.
func (a *App) renderCompileBanner() string {
	message, location := console.FormatCompileError(*a.banner)
	text := theme.IconError + " " + message
	if location != "" {
		text += "  " + location
	}
	text += "  (esc to dismiss)"
	return lipgloss.NewStyle().Width(a.width).MaxHeight(1).
		Render(theme.DefaultTheme.Error.Render(text))
}

func (a *App) renderMCPBanner() string {
	text := theme.IconInfo + " MCP bridge is available for editor agents  (alt+m to hide)"
	return lipgloss.NewStyle().Width(a.width).MaxHeight(1).
		Render(theme.DefaultTheme.Muted.Render(text))
}

// statusBar renders the bottom line: project, chain file, selection on the
// left; runtime health and frame rate on the right.
func (a *App) statusBar() string {
	snap := a.store.Get()

	var left []string
	left = append(left, theme.DefaultTheme.Bold.Render(projectTitle(snap.ProjectPath)))
	if snap.ChainPath != "" {
		chain := theme.IconChain + " " + projectTitle(snap.ChainPath)
		if snap.FileModified {
			chain += " " + theme.IconModified
		}
		left = append(left, chain)
	}
	if snap.SelectedOperator != "" {
		left = append(left, theme.IconOperator+" "+snap.SelectedOperator)
	}

	var right []string
	if snap.PerformanceStats.FPS > 0 {
		right = append(right, fmt.Sprintf("%.0f fps", snap.PerformanceStats.FPS))
	}
	if snap.RuntimeReady {
		right = append(right, theme.DefaultTheme.Success.Render("● runtime"))
	} else {
		right = append(right, theme.DefaultTheme.Error.Render("● runtime"))
	}

	l := strings.Join(left, theme.DefaultTheme.Muted.Render("  │  "))
	r := strings.Join(right, "  ")

	gap := a.width - lipgloss.Width(l) - lipgloss.Width(r) - 2
	if gap < 1 {
		gap = 1
	}
	line := " " + l + strings.Repeat(" ", gap) + r + " "
	return lipgloss.NewStyle().Width(a.width).MaxWidth(a.width).MaxHeight(1).Render(line)
}

// renderHelp draws the keybinding overlay centered in the dock area.
func (a *App) renderHelp(w, h int) string {
	var blocks []string
	for _, section := range a.keys.Sections() {
		var b strings.Builder
		b.WriteString(theme.DefaultTheme.PanelTitle.Render(section.Name))
		b.WriteString("\n")
		for _, binding := range section.Bindings {
			help := binding.Help()
			b.WriteString(fmt.Sprintf("  %s  %s\n",
				theme.DefaultTheme.Accent.Render(fmt.Sprintf("%-10s", help.Key)),
				theme.DefaultTheme.Normal.Render(help.Desc)))
		}
		blocks = append(blocks, strings.TrimRight(b.String(), "\n"))
	}

	box := theme.DefaultTheme.Box.Render(strings.Join(blocks, "\n\n"))
	return lipgloss.Place(w, h, lipgloss.Center, lipgloss.Center, box)
}
