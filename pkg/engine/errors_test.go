package engine

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestErrorFormatting(t *testing.T) {
	err := NewFatalError(ErrCodeRootNotFound, "root directory is not accessible",
		errors.New("permission denied")).WithPath("/mnt/odrive")

	msg := err.Error()
	for _, want := range []string{"fatal", "root directory is not accessible", "/mnt/odrive", "permission denied"} {
		if !strings.Contains(msg, want) {
			t.Errorf("error message %q missing %q", msg, want)
		}
	}
}

func TestErrorUnwrap(t *testing.T) {
	inner := errors.New("boom")
	err := NewReportableError(ErrCodeTimeout, "entry did not materialize", inner)

	if !errors.Is(err, inner) {
		t.Error("expected errors.Is to reach the wrapped error")
	}
}

func TestErrorIsMatchesClassAndCode(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", NewFatalError(ErrCodeBadPattern, "invalid exclusion pattern", nil))

	if !errors.Is(err, &Error{Class: ErrorClassFatal, Code: ErrCodeBadPattern}) {
		t.Error("expected class+code match through wrapping")
	}
	if errors.Is(err, &Error{Class: ErrorClassFatal, Code: ErrCodeRootNotFound}) {
		t.Error("unexpected match for a different code")
	}
}

func TestIsFatal(t *testing.T) {
	if !IsFatal(NewFatalError(ErrCodeRootNotFound, "missing", nil)) {
		t.Error("fatal error not detected")
	}
	if IsFatal(NewReportableError(ErrCodeTimeout, "slow", nil)) {
		t.Error("reportable error misclassified as fatal")
	}
	if IsFatal(errors.New("plain")) {
		t.Error("plain error misclassified as fatal")
	}
}
