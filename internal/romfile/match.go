package romfile

import (
	"path/filepath"
	"strings"
)

// Matcher recognizes ROM files by extension.
type Matcher struct {
	exts map[string]struct{}
}

// NewMatcher builds a Matcher for the given extensions. Leading dots and case
// are ignored.
func NewMatcher(extensions []string) Matcher {
	m := Matcher{exts: make(map[string]struct{}, len(extensions))}
	for _, ext := range extensions {
		ext = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
		if ext != "" {
			m.exts[ext] = struct{}{}
		}
	}
	return m
}

// Match reports whether name carries a recognized ROM extension. Hidden files
// and temporary download artifacts never match.
func (m Matcher) Match(name string) bool {
	base := filepath.Base(name)
	if base == "" || strings.HasPrefix(base, ".") {
		return false
	}
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(base), "."))
	if ext == "" {
		return false
	}
	_, ok := m.exts[ext]
	return ok
}

// IsColor reports whether the extension marks a Game Boy Color cartridge.
func IsColor(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".gbc", ".cgb":
		return true
	default:
		return false
	}
}
