package util

import (
	"strings"
)

const maxBaseNameLen = 100

// SanitizeFileName makes name safe for use inside a storage key. Characters
// outside [A-Za-z0-9-_] become '_', runs of '_' collapse, and the base name is
// cut to 100 characters. The extension after the last dot is kept.
// Applying it twice yields the same result.
func SanitizeFileName(name string) string {
	base, ext := splitExt(strings.TrimSpace(name))
	base = sanitizeSegment(base)
	if len(base) > maxBaseNameLen {
		base = base[:maxBaseNameLen]
	}
	if base == "" {
		base = "file"
	}
	ext = sanitizeSegment(ext)
	if ext == "" {
		return base
	}
	return base + "." + ext
}

// splitExt splits at the last dot. A name without a dot has no extension.
func splitExt(name string) (string, string) {
	idx := strings.LastIndex(name, ".")
	if idx < 0 {
		return name, ""
	}
	return name[:idx], name[idx+1:]
}

func sanitizeSegment(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	lastUnderscore := false
	for _, r := range s {
		ok := (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' || r == '_'
		if !ok {
			r = '_'
		}
		if r == '_' {
			if lastUnderscore {
				continue
			}
			lastUnderscore = true
		} else {
			lastUnderscore = false
		}
		b.WriteRune(r)
	}
	return b.String()
}
