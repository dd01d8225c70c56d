package grammar

import "strings"

// maleeni treats `{`, `}`, `^` and `-` as ordinary characters outside brackets and rejects them as
// escape sequences, so they stay as they are.
var maleeniRep = strings.NewReplacer(
	`\`, `\\`,
	`.`, `\.`,
	`*`, `\*`,
	`+`, `\+`,
	`?`, `\?`,
	`|`, `\|`,
	`(`, `\(`,
	`)`, `\)`,
	`[`, `\[`,
	`]`, `\]`,
)

// lexmachine rejects a bare `^` or `]` as an unexpected operator.
var lexmachineRep = strings.NewReplacer(
	`\`, `\\`,
	`.`, `\.`,
	`*`, `\*`,
	`+`, `\+`,
	`?`, `\?`,
	`|`, `\|`,
	`(`, `\(`,
	`)`, `\)`,
	`[`, `\[`,
	`]`, `\]`,
	`^`, `\^`,
)

// EscapePattern turns a literal token text into a maleeni pattern matching exactly that text.
// For example, EscapePattern(`a[0]`) returns `a\[0\]`.
func EscapePattern(s string) string {
	return maleeniRep.Replace(s)
}

// EscapeLexmachinePattern is EscapePattern for lexmachine.
func EscapeLexmachinePattern(s string) string {
	return lexmachineRep.Replace(s)
}
