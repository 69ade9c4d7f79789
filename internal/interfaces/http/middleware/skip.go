package middleware

import (
	"slices"
	"strings"
)

// skipPath reports whether path equals one of exact or starts with one of prefixes
func skipPath(path string, exact, prefixes []string) bool {
	if slices.Contains(exact, path) {
		return true
	}
	return slices.ContainsFunc(prefixes, func(p string) bool { return strings.HasPrefix(path, p) })
}
