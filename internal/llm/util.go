package llm

import "strings"

// CleanJSONBlock removes a markdown code fence around a response, including
// an optional language tag such as ```json. Unfenced text is only trimmed.
func CleanJSONBlock(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}

	body := strings.TrimPrefix(text, "```")
	if idx := strings.Index(body, "\n"); idx >= 0 {
		tag := strings.TrimSpace(body[:idx])
		if tag == "" || isLanguageTag(tag) {
			body = body[idx+1:]
		}
	} else {
		body = strings.TrimPrefix(body, "json")
	}
	if idx := strings.LastIndex(body, "```"); idx >= 0 {
		body = body[:idx]
	}
	return strings.TrimSpace(body)
}

// ExtractJSONObject returns the outermost {...} span of text, for answers that
// put prose around the object.
func ExtractJSONObject(text string) (string, bool) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return "", false
	}
	return text[start : end+1], true
}

func isLanguageTag(s string) bool {
	if len(s) >= 20 {
		return false
	}
	for _, r := range s {
		if !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' || r == '-' || r == '+') {
			return false
		}
	}
	return true
}
