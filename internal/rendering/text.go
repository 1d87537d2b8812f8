package rendering

import "strings"

const bulletMark = "•"

// SplitBullets splits a description into bullet lines. Blank lines are
// dropped and a leading "•" typed by the author is removed.
func SplitBullets(text string) []string {
	lines := strings.Split(text, "\n")
	bullets := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		line = strings.TrimSpace(strings.TrimPrefix(line, bulletMark))
		if line == "" {
			continue
		}
		bullets = append(bullets, line)
	}
	return bullets
}

// SplitList splits comma-separated free text such as technologies or skill items.
func SplitList(csv string) []string {
	parts := strings.Split(csv, ",")
	items := make([]string, 0, len(parts))
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			items = append(items, part)
		}
	}
	return items
}

// IsSafeImage reports whether an image reference may be embedded in the sheet.
// Only inline data images and http(s) URLs are accepted.
func IsSafeImage(ref string) bool {
	ref = strings.TrimSpace(ref)
	lower := strings.ToLower(ref)
	switch {
	case strings.HasPrefix(lower, "data:image/"):
		return true
	case strings.HasPrefix(lower, "https://"), strings.HasPrefix(lower, "http://"):
		return true
	default:
		return false
	}
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

func joinNonBlank(sep string, parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, sep)
}

func webLink(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	lower := strings.ToLower(value)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return value
	}
	return "https://" + value
}
