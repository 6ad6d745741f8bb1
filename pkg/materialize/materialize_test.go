package materialize

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func TestFuncTrigger(t *testing.T) {
	var got string
	f := Func(func(_ context.Context, path string) error {
		got = path
		return nil
	})

	if err := f.Trigger(context.Background(), "/tmp/x.cloudf"); err != nil {
		t.Fatalf("Trigger returned error: %v", err)
	}
	if got != "/tmp/x.cloudf" {
		t.Errorf("func received path %q, want %q", got, "/tmp/x.cloudf")
	}
}

func TestFuncTriggerPropagatesError(t *testing.T) {
	sentinel := errors.New("opener failed")
	f := Func(func(context.Context, string) error { return sentinel })

	if err := f.Trigger(context.Background(), "x"); !errors.Is(err, sentinel) {
		t.Errorf("Trigger error = %v, want %v", err, sentinel)
	}
}

func TestNoopTrigger(t *testing.T) {
	if err := (Noop{}).Trigger(context.Background(), "/does/not/matter"); err != nil {
		t.Errorf("Noop.Trigger returned error: %v", err)
	}
}

func TestCommandSkipsMissingPath(t *testing.T) {
	// A bogus opener would fail to start, so the only way this succeeds is
	// the existence pre-check short-circuiting.
	cmd := NewCommand("this-opener-does-not-exist-anywhere")

	missing := filepath.Join(t.TempDir(), "gone.cloudf")
	if err := cmd.Trigger(context.Background(), missing); err != nil {
		t.Errorf("Trigger on missing path returned error: %v", err)
	}
}

func TestCommandBadOpener(t *testing.T) {
	cmd := NewCommand("this-opener-does-not-exist-anywhere")

	path := filepath.Join(t.TempDir(), "Music.cloudf")
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatal(err)
	}

	if err := cmd.Trigger(context.Background(), path); err == nil {
		t.Error("Trigger with unresolvable opener returned nil error")
	}
}

func TestCommandRunsOpener(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("relies on a unix true binary")
	}

	cmd := NewCommand("true")

	path := filepath.Join(t.TempDir(), "Docs.cloudf")
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatal(err)
	}

	if err := cmd.Trigger(context.Background(), path); err != nil {
		t.Errorf("Trigger returned error: %v", err)
	}
}

func TestDefaultOpenerNonEmpty(t *testing.T) {
	opener, _ := DefaultOpener()
	if opener == "" {
		t.Error("DefaultOpener returned empty command")
	}
}

func TestNewCommandDefaultsOpener(t *testing.T) {
	cmd := NewCommand("")
	want, _ := DefaultOpener()
	if cmd.opener != want {
		t.Errorf("opener = %q, want platform default %q", cmd.opener, want)
	}
}
