package terminal

import (
	"os"
	"os/exec"
	"sync"

	"github.com/creack/pty"
	"github.com/vividtools/vivid-ide/errors"
)

// Session is one shell running on a pty. Output is pumped to the callback
// from a reader goroutine; the callback must not block.
type Session struct {
	id   int
	cmd  *exec.Cmd
	ptmx *os.File

	mu     sync.Mutex
	closed bool

	onOutput func(id int, data []byte)
	onExit   func(id int, code int)
}

var (
	sessionMu     sync.Mutex
	nextSessionID = 1
)

// SpawnShell starts the given shell (or $SHELL when empty) on a new pty in
// dir.
func SpawnShell(shell, dir string, onOutput func(id int, data []byte), onExit func(id int, code int)) (*Session, error) {
	if shell == "" {
		shell = os.Getenv("SHELL")
	}
	if shell == "" {
		shell = "/bin/sh"
	}

	cmd := exec.Command(shell)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(), "TERM=xterm-256color")

	ptmx, err := pty.Start(cmd)
	if err != nil {
		return nil, errors.PtyFailed("spawn", err)
	}

	sessionMu.Lock()
	id := nextSessionID
	nextSessionID++
	sessionMu.Unlock()

	s := &Session{
		id:       id,
		cmd:      cmd,
		ptmx:     ptmx,
		onOutput: onOutput,
		onExit:   onExit,
	}
	go s.pump()
	return s, nil
}

// ID returns the session identifier.
func (s *Session) ID() int {
	return s.id
}

// pump reads pty output until the shell exits, then reports the exit code.
func (s *Session) pump() {
	buf := make([]byte, 4096)
	for {
		n, err := s.ptmx.Read(buf)
		if n > 0 {
			data := make([]byte, n)
			copy(data, buf[:n])
			s.onOutput(s.id, data)
		}
		if err != nil {
			break
		}
	}

	code := 0
	if err := s.cmd.Wait(); err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			code = exitErr.ExitCode()
		} else {
			code = -1
		}
	}
	s.onExit(s.id, code)
}

// Write sends keyboard input to the shell.
func (s *Session) Write(data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return errors.PtySessionGone(s.id)
	}
	if _, err := s.ptmx.Write(data); err != nil {
		return errors.PtyFailed("write", err)
	}
	return nil
}

// Resize propagates the panel size to the pty.
func (s *Session) Resize(cols, rows int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return errors.PtySessionGone(s.id)
	}
	err := pty.Setsize(s.ptmx, &pty.Winsize{
		Cols: uint16(cols),
		Rows: uint16(rows),
	})
	if err != nil {
		return errors.PtyFailed("resize", err)
	}
	return nil
}

// Close terminates the shell and releases the pty.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()

	if s.cmd.Process != nil {
		s.cmd.Process.Kill()
	}
	s.ptmx.Close()
}
