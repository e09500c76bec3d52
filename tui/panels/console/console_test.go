package console

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vividtools/vivid-ide/pkg/runtime"
)

func TestFormatCompileErrorStripsPrefixAndFormatsLocation(t *testing.T) {
	msg, location := FormatCompileError(runtime.CompileStatusInfo{
		Success:     false,
		Message:     "error: expected ';'",
		ErrorLine:   42,
		ErrorColumn: 5,
	})
	assert.Equal(t, "expected ';'", msg)
	assert.Equal(t, "Line 42:5", location)
}

func TestFormatCompileErrorWithoutLocation(t *testing.T) {
	msg, location := FormatCompileError(runtime.CompileStatusInfo{
		Success: false,
		Message: "linker failure",
	})
	assert.Equal(t, "linker failure", msg)
	assert.Empty(t, location)
}

func TestAppendTrimsAtCap(t *testing.T) {
	m := New(nil, func(tea.Msg) {})
	m.SetSize(80, 10)

	for i := 0; i < maxLines+50; i++ {
		m.Append("stdout", "line")
	}
	assert.Len(t, m.Lines(), maxLines)
}

func TestAppendAndClear(t *testing.T) {
	m := New(nil, func(tea.Msg) {})
	m.SetSize(80, 10)

	m.Append("stdout", "hello")
	m.Append("stderr", "boom")
	require.Len(t, m.Lines(), 2)
	assert.Contains(t, m.Lines()[0], "hello")
	assert.Contains(t, m.Lines()[1], "boom")

	m.Clear()
	assert.Empty(t, m.Lines())
}
