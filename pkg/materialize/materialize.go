// Package materialize provides implementations of the engine's Materializer
// capability: the platform-specific call that asks the OS to begin replacing
// a placeholder with its real content.
//
// The call is not portable, so it is modeled as a pluggable capability
// rather than a concrete OS call. Every implementation honors the same
// contract: asynchronous (fire-and-forget), idempotent, and a no-op when the
// path no longer exists.
package materialize

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"os/exec"
	"runtime"

	"github.com/rs/zerolog/log"
)

// Func adapts a plain function to the Materializer capability. Test doubles
// are usually a Func.
type Func func(ctx context.Context, path string) error

// Trigger invokes the function.
func (f Func) Trigger(ctx context.Context, path string) error {
	return f(ctx, path)
}

// Noop is a Materializer that does nothing. Useful for dry runs where the
// sync client is expected to materialize placeholders on its own.
type Noop struct{}

// Trigger does nothing.
func (Noop) Trigger(context.Context, string) error {
	return nil
}

// Command triggers materialization by spawning an opener process on the
// placeholder path, the portable equivalent of double-clicking the entry so
// the sync client notices and starts fetching content. The process is
// started and immediately detached; its exit status is irrelevant because
// the only success signal is the placeholder disappearing from disk.
type Command struct {
	opener string
	args   []string
}

// NewCommand creates a Command materializer. An empty opener selects the
// platform default from DefaultOpener.
func NewCommand(opener string, args ...string) *Command {
	if opener == "" {
		opener, args = DefaultOpener()
	}
	return &Command{
		opener: opener,
		args:   args,
	}
}

// DefaultOpener returns the platform's conventional "open this entry"
// command and its leading arguments.
func DefaultOpener() (string, []string) {
	switch runtime.GOOS {
	case "windows":
		// start is a cmd builtin; the empty string is its title argument.
		return "cmd", []string{"/c", "start", ""}
	case "darwin":
		return "open", nil
	default:
		return "xdg-open", nil
	}
}

// Trigger spawns the opener on path and returns without waiting for it.
// A path that no longer exists is a no-op.
func (c *Command) Trigger(ctx context.Context, path string) error {
	if _, err := os.Lstat(path); errors.Is(err, fs.ErrNotExist) {
		return nil
	}

	args := make([]string, 0, len(c.args)+1)
	args = append(args, c.args...)
	args = append(args, path)

	cmd := exec.Command(c.opener, args...)
	cmd.Stdout = io.Discard
	cmd.Stderr = io.Discard
	if err := cmd.Start(); err != nil {
		return err
	}

	// Reap the child so it never lingers as a zombie.
	go func() {
		if err := cmd.Wait(); err != nil {
			log.Debug().Err(err).Str("path", path).Str("opener", c.opener).
				Msg("opener exited with error")
		}
	}()

	return nil
}
