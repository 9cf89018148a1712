package compile

import "strings"

// escapeText prepares user text for embedding inside a drawtext expression.
// Order matters: backslashes must be doubled before the characters that are
// themselves escaped with a backslash, otherwise the escapes get re-escaped.
func escapeText(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `'`, `\'`)
	s = strings.ReplaceAll(s, `:`, `\:`)
	s = strings.ReplaceAll(s, `[`, `\[`)
	s = strings.ReplaceAll(s, `]`, `\]`)
	s = strings.ReplaceAll(s, `,`, `\,`)
	s = strings.ReplaceAll(s, `;`, `\;`)
	return s
}
