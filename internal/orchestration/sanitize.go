package orchestration

import "strings"

// Sanitize drops every byte outside printable ASCII and newline, then swaps
// triple-backtick fences for ~~~ so nested fences in model output cannot
// close the document's own code blocks. Sanitize is idempotent.
func Sanitize(content string) string {
	var b strings.Builder
	b.Grow(len(content))

	for i := 0; i < len(content); i++ {
		c := content[i]
		if c == '\n' || (c >= 0x20 && c <= 0x7E) {
			b.WriteByte(c)
		}
	}

	return strings.ReplaceAll(b.String(), "```", "~~~")
}
