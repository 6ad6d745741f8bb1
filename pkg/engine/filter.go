package engine

import "regexp"

// Filter decides whether a placeholder entry is permanently excluded from
// materialization. The pattern is a regular expression matched against the
// entry's absolute path, not its basename, so patterns can encode directory
// context. A Filter is immutable for the lifetime of a run.
type Filter struct {
	re *regexp.Regexp
}

// NewFilter compiles the exclusion pattern. An empty pattern excludes
// nothing. A malformed pattern is a fatal startup error.
func NewFilter(pattern string) (*Filter, error) {
	if pattern == "" {
		return &Filter{}, nil
	}

	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, NewFatalError(ErrCodeBadPattern, "invalid exclusion pattern", err)
	}

	return &Filter{re: re}, nil
}

// Excluded reports whether the absolute path matches the exclusion pattern.
func (f *Filter) Excluded(absPath string) bool {
	if f == nil || f.re == nil {
		return false
	}
	return f.re.MatchString(absPath)
}
