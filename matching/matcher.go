package matching

import (
	"path/filepath"
	"strings"
)

// Matcher decides which files a directory-wide ingestion run should touch.
type Matcher struct {
	inclusions  []string
	exclusions  []string
	maxFileSize int
}

// Option configures a Matcher.
type Option func(*Matcher)

// WithInclusions keeps only paths containing one of the given patterns.
func WithInclusions(patterns ...string) Option {
	return func(m *Matcher) { m.inclusions = append(m.inclusions, patterns...) }
}

// WithExclusions skips paths matching any of the given patterns.
func WithExclusions(patterns ...string) Option {
	return func(m *Matcher) { m.exclusions = append(m.exclusions, patterns...) }
}

// WithMaxFileSize skips files larger than the given size in bytes.
func WithMaxFileSize(size int) Option {
	return func(m *Matcher) { m.maxFileSize = size }
}

// New creates a matcher with the given options.
func New(opts ...Option) *Matcher {
	m := &Matcher{}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// IsExcluded checks whether a path should be skipped based on size and the
// inclusion/exclusion patterns.
func (m *Matcher) IsExcluded(location string, size int) bool {
	if m.maxFileSize > 0 && size > m.maxFileSize {
		return true
	}
	path := filepath.ToSlash(location)

	if len(m.inclusions) > 0 && !m.isIncluded(path) {
		return true
	}
	for _, pattern := range m.exclusions {
		pattern = strings.TrimSpace(pattern)
		if pattern == "" || strings.HasPrefix(pattern, "#") {
			continue
		}
		if m.matches(path, pattern) {
			return true
		}
	}
	return false
}

func (m *Matcher) matches(path, pattern string) bool {
	// Direct substring match covers the common directory case.
	if strings.Contains(path, pattern) {
		return true
	}
	cleanPattern := strings.TrimPrefix(pattern, "/")
	if matched, _ := filepath.Match(cleanPattern, path); matched {
		return true
	}
	if matched, _ := filepath.Match("*/"+cleanPattern, path); matched {
		return true
	}
	// Glob metacharacters never cross path separators, so patterns like
	// *.tmp are also tried against the file name alone regardless of depth.
	baseName := filepath.Base(path)
	if matched, _ := filepath.Match(cleanPattern, baseName); matched {
		return true
	}
	return pattern == baseName || strings.HasSuffix(pattern, "/"+baseName)
}

func (m *Matcher) isIncluded(path string) bool {
	for _, pattern := range m.inclusions {
		pattern = strings.TrimSpace(pattern)
		if pattern == "" || strings.HasPrefix(pattern, "#") {
			continue
		}
		if strings.Contains(path, pattern) {
			return true
		}
	}
	return false
}
