package site

import (
	"path"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// ValidatePatterns reports the first malformed deny pattern.
func ValidatePatterns(patterns []string) error {
	for _, p := range patterns {
		if !doublestar.ValidatePattern(p) {
			return &PatternError{Pattern: p}
		}
	}
	return nil
}

// PatternError is returned for a deny pattern doublestar cannot parse.
type PatternError struct {
	Pattern string
}

func (e *PatternError) Error() string { return "invalid deny pattern: " + e.Pattern }

// Denied reports whether the URL path urlPath matches any deny pattern.
// Patterns are matched against the site-relative path and against its base
// name, so "*.yml" hides YAML files at any depth.
func Denied(urlPath string, patterns []string) bool {
	if len(patterns) == 0 {
		return false
	}
	rel := strings.TrimPrefix(path.Clean("/"+urlPath), "/")
	if rel == "" {
		return false
	}
	base := path.Base(rel)
	for _, p := range patterns {
		if ok, _ := doublestar.Match(p, rel); ok {
			return true
		}
		if ok, _ := doublestar.Match(p, base); ok {
			return true
		}
	}
	return false
}
