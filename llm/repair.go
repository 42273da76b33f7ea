package llm

import (
	"encoding/json"
	"strings"
)

// parseObject parses model output as a JSON object as-is, with no
// repair applied.
func parseObject(raw string) (map[string]any, bool) {
	var out map[string]any
	if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), &out); err != nil {
		return nil, false
	}
	return out, true
}

// repairJSONObject recovers a JSON object from malformed model output:
// it strips markdown fences, then scans for the first balanced
// top-level object, and re-parses each candidate once.
func repairJSONObject(raw string) (map[string]any, bool) {
	for _, candidate := range []string{stripFences(raw), balancedObject(raw)} {
		candidate = strings.TrimSpace(candidate)
		if candidate == "" {
			continue
		}
		var out map[string]any
		if err := json.Unmarshal([]byte(candidate), &out); err == nil {
			return out, true
		}
	}
	return nil, false
}

func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return ""
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	if idx := strings.LastIndex(s, "```"); idx >= 0 {
		s = s[:idx]
	}
	return s
}

// balancedObject returns the first top-level {...} span in s, honoring
// string literals and escapes, or "" when no balanced object exists.
func balancedObject(s string) string {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return ""
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if escaped {
			escaped = false
			continue
		}
		switch c {
		case '\\':
			if inString {
				escaped = true
			}
		case '"':
			inString = !inString
		case '{':
			if !inString {
				depth++
			}
		case '}':
			if !inString {
				depth--
				if depth == 0 {
					return s[start : i+1]
				}
			}
		}
	}
	return ""
}
