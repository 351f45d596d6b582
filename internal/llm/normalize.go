package llm

import "strings"

// NormalizeReply strips surrounding whitespace and a Markdown code fence
// (```json ... ``` or ``` ... ```) from a model reply.
func NormalizeReply(text string) string {
	s := strings.TrimSpace(text)

	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```")
		// fence language tag, e.g. ```json
		if i := strings.IndexAny(s, "\r\n"); i >= 0 && isFenceTag(s[:i]) {
			s = s[i:]
		} else if strings.HasPrefix(strings.ToLower(s), "json") {
			s = s[len("json"):]
		}
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

func isFenceTag(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return true
	}
	for _, r := range s {
		if !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z') {
			return false
		}
	}
	return true
}
