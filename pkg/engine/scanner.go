package engine

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
)

// Scanner walks a root directory and produces the full, freshly computed set
// of placeholder entries currently present. It holds no cache: every Scan
// re-walks the entire subtree, because materializing a placeholder can
// create new nested placeholders that only a fresh traversal discovers.
type Scanner struct {
	root   string
	suffix string
}

// NewScanner creates a scanner for the given root directory. The root must
// exist and be a directory; otherwise a fatal ROOT_NOT_FOUND error is
// returned. An empty suffix selects DefaultSuffix.
func NewScanner(root, suffix string) (*Scanner, error) {
	if suffix == "" {
		suffix = DefaultSuffix
	}

	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, NewFatalError(ErrCodeRootNotFound, "cannot resolve root directory", err).WithPath(root)
	}

	info, err := os.Stat(abs)
	if err != nil {
		return nil, NewFatalError(ErrCodeRootNotFound, "root directory is not accessible", err).WithPath(abs)
	}
	if !info.IsDir() {
		return nil, NewFatalError(ErrCodeRootNotFound, "root is not a directory", nil).WithPath(abs)
	}

	return &Scanner{
		root:   abs,
		suffix: suffix,
	}, nil
}

// Root returns the absolute root directory of the scanner.
func (s *Scanner) Root() string {
	return s.root
}

// Scan walks the entire subtree and returns every entry whose name matches
// the placeholder suffix, stamped with the given cycle number. Entries that
// vanish mid-walk (a race with concurrent materialization) are silently
// absent from the result, and subtrees the walk cannot read are skipped
// with a log line rather than failing the scan: a cycle reports what it can
// reach. Only context cancellation aborts a scan. The walk is read-only.
func (s *Scanner) Scan(ctx context.Context, cycle int) ([]Entry, error) {
	var entries []Entry

	err := filepath.WalkDir(s.root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			// A directory or entry disappeared between listing and visiting.
			if errors.Is(walkErr, fs.ErrNotExist) {
				return nil
			}
			log.Debug().Err(walkErr).Str("path", path).Int("cycle", cycle).
				Msg("skipping unreadable path")
			return nil
		}

		if err := ctx.Err(); err != nil {
			return err
		}

		if !strings.HasSuffix(d.Name(), s.suffix) {
			return nil
		}

		entries = append(entries, Entry{Path: path, Cycle: cycle})

		// Placeholder directories stand in for content that is not there
		// yet; nothing underneath them is worth walking.
		if d.IsDir() {
			return filepath.SkipDir
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return entries, nil
}
