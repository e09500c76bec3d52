package errors

import (
	"fmt"
	"testing"
)

func TestVividError(t *testing.T) {
	// Test basic error creation
	err := New(ErrCodeRuntimeNotReady, "runtime not ready")
	if err.Code != ErrCodeRuntimeNotReady {
		t.Errorf("expected code %s, got %s", ErrCodeRuntimeNotReady, err.Code)
	}

	// Test error wrapping
	cause := fmt.Errorf("underlying error")
	wrapped := Wrap(cause, ErrCodeCommandFailed, "command failed")

	if wrapped.Unwrap() != cause {
		t.Error("Unwrap should return the cause")
	}

	// Test Is function
	if !Is(wrapped, ErrCodeCommandFailed) {
		t.Error("Is should return true for matching code")
	}

	if Is(wrapped, ErrCodeRuntimeNotReady) {
		t.Error("Is should return false for non-matching code")
	}

	// Test WithDetail
	detailed := err.WithDetail("command", "get_operators").WithDetail("attempt", 2)
	if detailed.Details["command"] != "get_operators" {
		t.Error("WithDetail should add details")
	}
}

func TestErrorConstructors(t *testing.T) {
	// Test CommandFailed
	err := CommandFailed("set_param", "no such operator")
	if err.Code != ErrCodeCommandFailed {
		t.Errorf("expected code %s, got %s", ErrCodeCommandFailed, err.Code)
	}
	if err.Details["command"] != "set_param" {
		t.Error("CommandFailed should include command detail")
	}

	// Test CompileFailed
	err = CompileFailed("expected ';'", 42, 5)
	if err.Code != ErrCodeCompileFailed {
		t.Errorf("expected code %s, got %s", ErrCodeCompileFailed, err.Code)
	}
	if err.Details["line"] != 42 {
		t.Error("CompileFailed should include line detail")
	}

	// Test PtySessionGone
	err = PtySessionGone(3)
	if err.Code != ErrCodePtySessionGone {
		t.Errorf("expected code %s, got %s", ErrCodePtySessionGone, err.Code)
	}
	if err.Details["session"] != 3 {
		t.Error("PtySessionGone should include session detail")
	}
}

func TestGetCode(t *testing.T) {
	if GetCode(nil) != "" {
		t.Error("GetCode of nil should be empty")
	}

	err := RuntimeUnreachable("/tmp/vivid.sock", fmt.Errorf("connection refused"))
	if GetCode(err) != ErrCodeRuntimeUnreachable {
		t.Errorf("expected %s, got %s", ErrCodeRuntimeUnreachable, GetCode(err))
	}

	// GetCode should unwrap plain-wrapped errors
	outer := fmt.Errorf("outer: %w", err)
	if GetCode(outer) != ErrCodeRuntimeUnreachable {
		t.Error("GetCode should follow Unwrap")
	}
}
