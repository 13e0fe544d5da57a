package whatsapp

import (
	"fmt"
	"strings"
)

// MaxMessageLength is WhatsApp's hard cap on a text message body.
const MaxMessageLength = 4096

// SplitMessage splits text into ordered parts, each at most max bytes,
// preferring to break at the last double newline in the window, then the
// last newline, then the last space, and hard-cutting only when no boundary
// exists. Parts are trimmed and empties dropped. When more than one part
// results, each part is prefixed with a "(Part i/N)" pager line unless that
// would push it past max, in which case the pager is omitted for that part
// only.
//
// Pure function of (text, max): calling it twice yields the same parts.
func SplitMessage(text string, max int) []string {
	if max <= 0 {
		max = MaxMessageLength
	}
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil
	}
	if len(trimmed) <= max {
		return []string{trimmed}
	}

	parts := splitAtBoundaries(trimmed, max)
	if len(parts) <= 1 {
		return parts
	}
	paged := make([]string, 0, len(parts))
	for i, part := range parts {
		pager := fmt.Sprintf("(Part %d/%d)\n", i+1, len(parts))
		if len(pager)+len(part) <= max {
			part = pager + part
		}
		paged = append(paged, part)
	}
	return paged
}

func splitAtBoundaries(text string, max int) []string {
	var parts []string
	rest := text
	for len(rest) > max {
		cut := lastBoundary(rest[:max])
		if cut <= 0 {
			cut = max
		}
		if part := strings.TrimSpace(rest[:cut]); part != "" {
			parts = append(parts, part)
		}
		rest = strings.TrimSpace(rest[cut:])
	}
	if rest != "" {
		parts = append(parts, rest)
	}
	return parts
}

// lastBoundary finds the preferred break position inside a window:
// paragraph break, then line break, then word break.
func lastBoundary(window string) int {
	if idx := strings.LastIndex(window, "\n\n"); idx > 0 {
		return idx
	}
	if idx := strings.LastIndex(window, "\n"); idx > 0 {
		return idx
	}
	if idx := strings.LastIndex(window, " "); idx > 0 {
		return idx
	}
	return -1
}
