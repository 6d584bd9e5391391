package service

import (
	"regexp"
	"strings"
)

// trailingCommaRe matches a comma followed by a closing brace or bracket.
var trailingCommaRe = regexp.MustCompile(`,(\s*[}\]])`)

// stripTrailingCommas removes trailing commas before closing delimiters so
// near-JSON model output survives a strict unmarshal.
func stripTrailingCommas(s string) string {
	return trailingCommaRe.ReplaceAllString(s, "$1")
}

// extractObject returns the first balanced {...} object in content, or ""
// when no complete object is present. Used as the single bounded repair
// pass after a strict parse fails; never loops back to the model.
func extractObject(content string) string {
	start := strings.Index(content, "{")
	if start == -1 {
		return ""
	}

	depth := 0
	for i := start; i < len(content); i++ {
		switch content[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return content[start : i+1]
			}
		}
	}
	return ""
}

// extractArray returns the substring bounded by the first '[' and the last
// ']' in content, or "" when either delimiter is missing.
func extractArray(content string) string {
	start := strings.Index(content, "[")
	end := strings.LastIndex(content, "]")
	if start == -1 || end == -1 || end < start {
		return ""
	}
	return content[start : end+1]
}
