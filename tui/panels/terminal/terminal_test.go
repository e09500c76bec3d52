package terminal

import (
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyBytesTranslation(t *testing.T) {
	cases := []struct {
		msg  tea.KeyMsg
		want string
	}{
		{tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("ls")}, "ls"},
		{tea.KeyMsg{Type: tea.KeyEnter}, "\r"},
		{tea.KeyMsg{Type: tea.KeySpace}, " "},
		{tea.KeyMsg{Type: tea.KeyBackspace}, "\x7f"},
		{tea.KeyMsg{Type: tea.KeyUp}, "\x1b[A"},
		{tea.KeyMsg{Type: tea.KeyCtrlC}, "\x03"},
		{tea.KeyMsg{Type: tea.KeyCtrlD}, "\x04"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, string(keyBytes(tc.msg)), tc.msg.String())
	}
}

func TestSessionRunsShellAndReportsExit(t *testing.T) {
	var mu sync.Mutex
	var output []byte
	exited := make(chan int, 1)

	s, err := SpawnShell("/bin/sh", t.TempDir(),
		func(_ int, data []byte) {
			mu.Lock()
			output = append(output, data...)
			mu.Unlock()
		},
		func(_ int, code int) { exited <- code },
	)
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Resize(80, 24))
	require.NoError(t, s.Write([]byte("echo hello-from-pty\n")))
	require.NoError(t, s.Write([]byte("exit 0\n")))

	select {
	case code := <-exited:
		assert.Equal(t, 0, code)
	case <-time.After(10 * time.Second):
		t.Fatal("shell never exited")
	}

	mu.Lock()
	got := string(output)
	mu.Unlock()
	assert.True(t, strings.Contains(got, "hello-from-pty"), "output: %q", got)
}

func TestWriteAfterCloseFails(t *testing.T) {
	s, err := SpawnShell("/bin/sh", t.TempDir(),
		func(int, []byte) {}, func(int, int) {})
	require.NoError(t, err)

	s.Close()
	assert.Error(t, s.Write([]byte("x")))
	assert.Error(t, s.Resize(80, 24))
}

func TestScrollbackHoldsPositionWhileScrolledUp(t *testing.T) {
	m := New(func(tea.Msg) {}, "", "", 200)
	m.SetSize(40, 5)

	for i := 0; i < 50; i++ {
		m.appendOutput([]byte("line\n"))
	}
	require.True(t, m.viewport.AtBottom())

	wheelUp := tea.MouseMsg{Action: tea.MouseActionPress, Button: tea.MouseButtonWheelUp}
	m.Update(wheelUp)
	require.False(t, m.viewport.AtBottom())
	offset := m.viewport.YOffset

	// New output must not yank the view back down.
	m.appendOutput([]byte("more output\n"))
	assert.Equal(t, offset, m.viewport.YOffset)
	assert.False(t, m.follow)

	// Wheeling back to the bottom resumes pinning.
	wheelDown := tea.MouseMsg{Action: tea.MouseActionPress, Button: tea.MouseButtonWheelDown}
	for i := 0; i < 100 && !m.viewport.AtBottom(); i++ {
		m.Update(wheelDown)
	}
	require.True(t, m.viewport.AtBottom())
	assert.True(t, m.follow)

	m.appendOutput([]byte("tail\n"))
	assert.True(t, m.viewport.AtBottom())
}

func TestModelBufferTrimsScrollback(t *testing.T) {
	m := New(func(tea.Msg) {}, "", "", 10)
	m.SetSize(80, 24)

	for i := 0; i < 50; i++ {
		m.appendOutput([]byte("line\n"))
	}

	lines := strings.Split(string(m.buffer), "\n")
	assert.LessOrEqual(t, len(lines), 10)
}
