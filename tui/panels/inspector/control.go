package inspector

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/vividtools/vivid-ide/pkg/runtime"
	"github.com/vividtools/vivid-ide/tui/theme"
)

// control is one interactive parameter widget. Each ParamType variant has
// its own constructor; dispatch happens once, in buildControl.
type control interface {
	// adjust nudges the focused component by steps of the control's
	// increment (negative steps decrease).
	adjust(steps int)
	// nextComponent moves focus to the next vector component, reporting
	// whether there was one.
	nextComponent() bool
	// value returns the current 4-component value to send to the runtime.
	value() [4]float32
	// view renders the control at the given width.
	view(width int, focused bool) string
}

// buildControl constructs the widget for a parameter declaration.
func buildControl(p runtime.ParamInfo) control {
	switch p.ParamType {
	case runtime.ParamFloat:
		return newFloatControl(p)
	case runtime.ParamInt:
		return newIntControl(p)
	case runtime.ParamBool:
		return newBoolControl(p)
	case runtime.ParamVec2, runtime.ParamVec3, runtime.ParamVec4:
		return newVecControl(p)
	case runtime.ParamColor:
		return newColorControl(p)
	case runtime.ParamEnum:
		return newEnumControl(p)
	default:
		return newFloatControl(p)
	}
}

// sliderTrack renders a horizontal slider for a bounded scalar.
func sliderTrack(val, min, max float32, width int) string {
	if width < 3 {
		width = 3
	}
	span := max - min
	pos := 0
	if span > 0 {
		pos = int(float32(width-1) * (val - min) / span)
	}
	if pos < 0 {
		pos = 0
	}
	if pos > width-1 {
		pos = width - 1
	}

	var b strings.Builder
	for i := 0; i < width; i++ {
		if i == pos {
			b.WriteString(theme.DefaultTheme.Highlight.Render("●"))
		} else if i < pos {
			b.WriteString(theme.DefaultTheme.Accent.Render("─"))
		} else {
			b.WriteString(theme.DefaultTheme.Muted.Render("─"))
		}
	}
	return b.String()
}

func clampf(v, min, max float32) float32 {
	if min < max {
		if v < min {
			return min
		}
		if v > max {
			return max
		}
	}
	return v
}

// --- Float ---

type floatControl struct {
	name     string
	val      float32
	min, max float32
	step     float32
}

func newFloatControl(p runtime.ParamInfo) *floatControl {
	step := (p.MaxVal - p.MinVal) / 100
	if step <= 0 {
		step = 0.01
	}
	return &floatControl{name: p.Name, val: p.Value[0], min: p.MinVal, max: p.MaxVal, step: step}
}

func (c *floatControl) adjust(steps int) {
	c.val = clampf(c.val+float32(steps)*c.step, c.min, c.max)
}

func (c *floatControl) nextComponent() bool { return false }

func (c *floatControl) value() [4]float32 { return [4]float32{c.val, 0, 0, 0} }

func (c *floatControl) view(width int, focused bool) string {
	label := fmt.Sprintf("%0.3f", c.val)
	track := width - len(label) - 1
	if track < 3 {
		track = 3
	}
	return sliderTrack(c.val, c.min, c.max, track) + " " + renderValue(label, focused)
}

// --- Int ---

type intControl struct {
	name     string
	val      int
	min, max int
}

func newIntControl(p runtime.ParamInfo) *intControl {
	return &intControl{
		name: p.Name,
		val:  int(p.Value[0]),
		min:  int(p.MinVal),
		max:  int(p.MaxVal),
	}
}

func (c *intControl) adjust(steps int) {
	c.val += steps
	if c.min < c.max {
		if c.val < c.min {
			c.val = c.min
		}
		if c.val > c.max {
			c.val = c.max
		}
	}
}

func (c *intControl) nextComponent() bool { return false }

func (c *intControl) value() [4]float32 { return [4]float32{float32(c.val), 0, 0, 0} }

func (c *intControl) view(width int, focused bool) string {
	label := fmt.Sprintf("%d", c.val)
	track := width - len(label) - 1
	if track < 3 {
		track = 3
	}
	return sliderTrack(float32(c.val), float32(c.min), float32(c.max), track) +
		" " + renderValue(label, focused)
}

// --- Bool ---

type boolControl struct {
	name string
	on   bool
}

func newBoolControl(p runtime.ParamInfo) *boolControl {
	return &boolControl{name: p.Name, on: p.Value[0] != 0}
}

func (c *boolControl) adjust(int) { c.on = !c.on }

func (c *boolControl) nextComponent() bool { return false }

func (c *boolControl) value() [4]float32 {
	if c.on {
		return [4]float32{1, 0, 0, 0}
	}
	return [4]float32{0, 0, 0, 0}
}

func (c *boolControl) view(_ int, focused bool) string {
	box := "[ ]"
	if c.on {
		box = "[" + theme.IconSuccess + "]"
	}
	return renderValue(box, focused)
}

// --- Vec2/3/4 ---

type vecControl struct {
	name     string
	vals     [4]float32
	n        int
	min, max float32
	step     float32
	focusIdx int
}

func newVecControl(p runtime.ParamInfo) *vecControl {
	step := (p.MaxVal - p.MinVal) / 100
	if step <= 0 {
		step = 0.01
	}
	return &vecControl{
		name: p.Name,
		vals: p.Value,
		n:    p.ParamType.Components(),
		min:  p.MinVal,
		max:  p.MaxVal,
		step: step,
	}
}

func (c *vecControl) adjust(steps int) {
	c.vals[c.focusIdx] = clampf(c.vals[c.focusIdx]+float32(steps)*c.step, c.min, c.max)
}

func (c *vecControl) nextComponent() bool {
	if c.focusIdx < c.n-1 {
		c.focusIdx++
		return true
	}
	c.focusIdx = 0
	return false
}

func (c *vecControl) value() [4]float32 { return c.vals }

func (c *vecControl) view(_ int, focused bool) string {
	labels := []string{"x", "y", "z", "w"}
	parts := make([]string, 0, c.n)
	for i := 0; i < c.n; i++ {
		cell := fmt.Sprintf("%s:%0.2f", labels[i], c.vals[i])
		if focused && i == c.focusIdx {
			cell = theme.DefaultTheme.Selected.Render(cell)
		}
		parts = append(parts, cell)
	}
	return strings.Join(parts, " ")
}

// --- Color ---

type colorControl struct {
	name     string
	vals     [4]float32 // rgba, 0..1
	focusIdx int
}

func newColorControl(p runtime.ParamInfo) *colorControl {
	return &colorControl{name: p.Name, vals: p.Value}
}

func (c *colorControl) adjust(steps int) {
	c.vals[c.focusIdx] = clampf(c.vals[c.focusIdx]+float32(steps)*0.01, 0, 1)
}

func (c *colorControl) nextComponent() bool {
	if c.focusIdx < 3 {
		c.focusIdx++
		return true
	}
	c.focusIdx = 0
	return false
}

func (c *colorControl) value() [4]float32 { return c.vals }

func (c *colorControl) view(_ int, focused bool) string {
	hex := fmt.Sprintf("#%02X%02X%02X",
		int(clampf(c.vals[0], 0, 1)*255),
		int(clampf(c.vals[1], 0, 1)*255),
		int(clampf(c.vals[2], 0, 1)*255))
	swatch := lipgloss.NewStyle().Background(lipgloss.Color(hex)).Render("  ")

	labels := []string{"r", "g", "b", "a"}
	parts := make([]string, 0, 4)
	for i := 0; i < 4; i++ {
		cell := fmt.Sprintf("%s:%0.2f", labels[i], c.vals[i])
		if focused && i == c.focusIdx {
			cell = theme.DefaultTheme.Selected.Render(cell)
		}
		parts = append(parts, cell)
	}
	return swatch + " " + strings.Join(parts, " ")
}

// --- Enum ---

type enumControl struct {
	name   string
	labels []string
	idx    int
}

func newEnumControl(p runtime.ParamInfo) *enumControl {
	idx := int(p.Value[0])
	if idx < 0 || idx >= len(p.EnumLabels) {
		idx = 0
	}
	return &enumControl{name: p.Name, labels: p.EnumLabels, idx: idx}
}

func (c *enumControl) adjust(steps int) {
	if len(c.labels) == 0 {
		return
	}
	c.idx = (c.idx + steps) % len(c.labels)
	if c.idx < 0 {
		c.idx += len(c.labels)
	}
}

func (c *enumControl) nextComponent() bool { return false }

func (c *enumControl) value() [4]float32 { return [4]float32{float32(c.idx), 0, 0, 0} }

func (c *enumControl) view(_ int, focused bool) string {
	label := "(none)"
	if c.idx < len(c.labels) {
		label = c.labels[c.idx]
	}
	return renderValue("‹ "+label+" ›", focused)
}

func renderValue(s string, focused bool) string {
	if focused {
		return theme.DefaultTheme.Highlight.Render(s)
	}
	return theme.DefaultTheme.Normal.Render(s)
}
