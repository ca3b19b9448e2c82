// internal/correction/extract.go
package correction

import (
	"regexp"
	"strings"
)

// Fenced code block with an optional language tag. (?s) lets the body span
// lines; the lazy body stops at the first closing fence.
var fencedBlockRe = regexp.MustCompile("(?s)```[a-zA-Z0-9_-]*[ \t]*\r?\n(.*?)```")

// ExtractTemplate locates the best-delimited template-shaped block in a
// repair response, tolerating surrounding prose and markdown fencing.
//
// Preference order: first non-empty fenced code block, then the outermost
// {...} span, then the whole response when it carries template markup.
// Prose with nothing template-shaped yields ok=false; the loop records that
// as a failed attempt rather than guessing.
func ExtractTemplate(response string) (template string, ok bool) {
	for _, m := range fencedBlockRe.FindAllStringSubmatch(response, -1) {
		if candidate := strings.TrimSpace(m[1]); candidate != "" {
			return candidate, true
		}
	}

	trimmed := strings.TrimSpace(response)
	if trimmed == "" {
		return "", false
	}

	start := strings.Index(trimmed, "{")
	end := strings.LastIndex(trimmed, "}")
	if start >= 0 && end > start {
		if candidate := strings.TrimSpace(trimmed[start : end+1]); candidate != "" {
			return candidate, true
		}
	}

	if strings.Contains(trimmed, "{{") {
		return trimmed, true
	}
	return "", false
}
