package filesync

import (
	"fmt"
	"path/filepath"
	"runtime"
	"strings"
)

// Exclusion globs follow shell (fnmatch) rules rather than filepath.Match:
// "[!...]" negates a class, a backslash is an ordinary character, and on
// Windows names compare case-insensitively. translate rewrites a pattern into
// the filepath.Match dialect so both agree.

// Excluded reports whether a bare file name matches any of the glob patterns.
func Excluded(name string, patterns []string) bool {
	name = normcase(name)
	for _, p := range patterns {
		if ok, _ := filepath.Match(translate(p), name); ok {
			return true
		}
	}
	return false
}

// ValidatePatterns returns filepath.ErrBadPattern (wrapped) for the first malformed
// glob, which in practice is an unterminated "[" class.
func ValidatePatterns(patterns []string) error {
	for _, p := range patterns {
		if _, err := filepath.Match(translate(p), ""); err != nil {
			return fmt.Errorf("exclusion pattern %q: %w", p, err)
		}
	}
	return nil
}

func normcase(s string) string {
	if runtime.GOOS == "windows" {
		return strings.ToLower(s)
	}
	return s
}

// translate converts an fnmatch pattern to filepath.Match syntax.
func translate(pattern string) string {
	pattern = normcase(pattern)
	escapes := runtime.GOOS != "windows"

	var b strings.Builder
	inClass := false
	for i := 0; i < len(pattern); i++ {
		c := pattern[i]
		switch {
		case c == '\\':
			if escapes {
				b.WriteString(`\\`)
			} else {
				b.WriteByte(c)
			}
		case c == '[' && !inClass:
			inClass = true
			b.WriteByte('[')
			if i+1 < len(pattern) && pattern[i+1] == '!' {
				b.WriteByte('^')
				i++
			}
			// A leading ']', '-' or '^' is a member of the class, not syntax
			if escapes && i+1 < len(pattern) && strings.IndexByte("]-^", pattern[i+1]) >= 0 {
				b.WriteByte('\\')
				b.WriteByte(pattern[i+1])
				i++
			}
		case c == '-' && inClass && escapes && i+1 < len(pattern) && pattern[i+1] == ']':
			// Trailing '-' before the closer is literal too
			b.WriteString(`\-`)
		case c == ']' && inClass:
			inClass = false
			b.WriteByte(c)
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}
