package errors

import (
	"fmt"
)

// RuntimeNotReady creates an error for commands issued before the runtime is up
func RuntimeNotReady() *VividError {
	return New(ErrCodeRuntimeNotReady, "vivid runtime is not ready")
}

// RuntimeUnreachable creates an error for a failed connection to the runtime socket
func RuntimeUnreachable(socketPath string, err error) *VividError {
	return Wrap(err, ErrCodeRuntimeUnreachable,
		fmt.Sprintf("cannot reach vivid runtime at %s", socketPath)).
		WithDetail("socket", socketPath)
}

// CommandFailed creates an error for a runtime command that returned an error string
func CommandFailed(command, message string) *VividError {
	return New(ErrCodeCommandFailed, fmt.Sprintf("command '%s' failed: %s", command, message)).
		WithDetail("command", command)
}

// CommandTimeout creates an error for a runtime command that exceeded its deadline
func CommandTimeout(command string, err error) *VividError {
	return Wrap(err, ErrCodeCommandTimeout, fmt.Sprintf("command '%s' timed out", command)).
		WithDetail("command", command)
}

// CompileFailed creates an error describing a chain compilation failure
func CompileFailed(message string, line, column int) *VividError {
	return New(ErrCodeCompileFailed, message).
		WithDetail("line", line).
		WithDetail("column", column)
}

// ProjectCreateFailed creates an error for a failed 'vivid new' invocation
func ProjectCreateFailed(path string, err error) *VividError {
	return Wrap(err, ErrCodeProjectCreateFailed,
		fmt.Sprintf("failed to create project at %s", path)).
		WithDetail("path", path)
}

// BundleFailed creates an error for a failed bundle run
func BundleFailed(projectPath, output string) *VividError {
	return New(ErrCodeBundleFailed, fmt.Sprintf("bundle failed for %s", projectPath)).
		WithDetail("project", projectPath).
		WithDetail("output", output)
}

// ConfigNotFound creates a configuration not found error
func ConfigNotFound(path string) *VividError {
	return New(ErrCodeConfigNotFound, fmt.Sprintf("configuration file not found: %s", path)).
		WithDetail("path", path)
}

// ConfigInvalid creates an invalid configuration error
func ConfigInvalid(reason string) *VividError {
	return New(ErrCodeConfigInvalid, fmt.Sprintf("invalid configuration: %s", reason))
}

// PtyFailed creates an error for a failed PTY operation
func PtyFailed(op string, err error) *VividError {
	return Wrap(err, ErrCodePtyFailed, fmt.Sprintf("pty %s failed", op)).
		WithDetail("op", op)
}

// PtySessionGone creates an error for writes to a closed or unknown PTY session
func PtySessionGone(id int) *VividError {
	return New(ErrCodePtySessionGone, fmt.Sprintf("pty session %d not found", id)).
		WithDetail("session", id)
}

// PersistenceFailed creates an error for local state read/write failures
func PersistenceFailed(op, path string, err error) *VividError {
	return Wrap(err, ErrCodePersistenceFailed,
		fmt.Sprintf("failed to %s state file %s", op, path)).
		WithDetail("path", path)
}

// WatcherFailed creates an error for a failed save watcher operation
func WatcherFailed(message string, err error) *VividError {
	return Wrap(err, ErrCodeWatcherFailed, message)
}

// InvalidInput creates a generic invalid input error
func InvalidInput(reason string) *VividError {
	return New(ErrCodeInvalidInput, reason)
}
