package cli

import (
	"fmt"
	"os"

	"github.com/vividtools/vivid-ide/errors"
)

// ErrorHandler turns coded errors into actionable messages on stderr.
type ErrorHandler struct {
	Verbose bool
}

// NewErrorHandler creates a new error handler.
func NewErrorHandler(verbose bool) *ErrorHandler {
	return &ErrorHandler{Verbose: verbose}
}

// Handle prints a user-facing message for err and returns it unchanged so
// callers can still propagate the exit status.
func (h *ErrorHandler) Handle(err error) error {
	switch errors.GetCode(err) {
	case errors.ErrCodeConfigNotFound:
		fmt.Fprintf(os.Stderr, "❌ No vivid.yml found. Run 'vivid new <name>' to scaffold a project.\n")
		return err

	case errors.ErrCodeRuntimeUnreachable:
		if vErr, ok := err.(*errors.VividError); ok {
			fmt.Fprintf(os.Stderr, "❌ Cannot reach the vivid runtime at %v\n", vErr.Details["socket"])
		} else {
			fmt.Fprintf(os.Stderr, "❌ Cannot reach the vivid runtime\n")
		}
		fmt.Fprintf(os.Stderr, "Start the runtime first, or point runtime.socket in vivid.yml at it.\n")
		return err

	case errors.ErrCodeRuntimeNotReady:
		fmt.Fprintf(os.Stderr, "❌ The vivid runtime is still starting up. Try again in a moment.\n")
		return err

	case errors.ErrCodeCommandTimeout:
		fmt.Fprintf(os.Stderr, "❌ The runtime did not answer in time. It may be busy compiling.\n")
		return err

	case errors.ErrCodeCompileFailed:
		if vErr, ok := err.(*errors.VividError); ok {
			fmt.Fprintf(os.Stderr, "❌ Compile failed: %s\n", vErr.Message)
			if line, ok := vErr.Details["line"]; ok {
				fmt.Fprintf(os.Stderr, "   at line %v, column %v\n", line, vErr.Details["column"])
			}
		} else {
			fmt.Fprintf(os.Stderr, "❌ Compile failed: %v\n", err)
		}
		return err

	case errors.ErrCodeBundleFailed:
		fmt.Fprintf(os.Stderr, "❌ Bundle export failed: %v\n", err)
		fmt.Fprintf(os.Stderr, "Make sure the project compiles before exporting.\n")
		return err

	case errors.ErrCodeConfigInvalid, errors.ErrCodeConfigValidation:
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		fmt.Fprintf(os.Stderr, "Run 'vivid config validate' for the full report.\n")
		return err

	default:
		fmt.Fprintf(os.Stderr, "❌ Error: %v\n", err)
		if h.Verbose {
			if vErr, ok := err.(*errors.VividError); ok {
				fmt.Fprintf(os.Stderr, "\nError details:\n%s\n", vErr.ToJSON())
			}
		}
		return err
	}
}
