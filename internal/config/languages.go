package config

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gobwas/glob"
)

// compiledPattern holds both the pattern string and compiled glob
type compiledPattern struct {
	pattern string
	glob    glob.Glob
}

// LanguageMatcher resolves editor language ids from file paths.
type LanguageMatcher struct {
	ids      []string
	patterns map[string][]compiledPattern
}

// NewLanguageMatcher compiles the language globs of cfg.
func NewLanguageMatcher(cfg *Config) (*LanguageMatcher, error) {
	m := &LanguageMatcher{patterns: make(map[string][]compiledPattern, len(cfg.Languages))}

	for id, patterns := range cfg.Languages {
		m.ids = append(m.ids, id)
		for _, pattern := range patterns {
			g, err := glob.Compile(pattern, '/')
			if err != nil {
				return nil, fmt.Errorf("%w: %q: %v", ErrInvalidGlob, pattern, err)
			}
			m.patterns[id] = append(m.patterns[id], compiledPattern{pattern: pattern, glob: g})
		}
	}
	// Map order is random; check ids in a stable order so overlapping globs
	// always resolve the same way.
	sort.Strings(m.ids)

	return m, nil
}

// LanguageFor returns the language id whose globs match path.
func (m *LanguageMatcher) LanguageFor(path string) (string, bool) {
	path = filepath.ToSlash(path)
	for _, id := range m.ids {
		if matchesAnyPattern(path, m.patterns[id]) {
			return id, true
		}
	}
	return "", false
}

// LanguageFor resolves a language id for path using the configured globs.
func (c *Config) LanguageFor(path string) (string, bool) {
	m, err := NewLanguageMatcher(c)
	if err != nil {
		return "", false
	}
	return m.LanguageFor(path)
}

// matchesAnyPattern checks if a path matches any of the given patterns.
func matchesAnyPattern(path string, patterns []compiledPattern) bool {
	for _, cp := range patterns {
		if cp.glob.Match(path) {
			return true
		}
	}

	// Special handling: if path is in root (no slash), also try matching against
	// patterns with **/ prefix removed, so "**/*.ts" matches "App.ts".
	if !strings.Contains(path, "/") {
		for _, cp := range patterns {
			if !strings.HasPrefix(cp.pattern, "**/") {
				continue
			}
			simplified, err := glob.Compile(strings.TrimPrefix(cp.pattern, "**/"), '/')
			if err == nil && simplified.Match(path) {
				return true
			}
		}
	}

	return false
}
