// Package source turns program text into the line sequence every later
// stage works on.
package source

import "strings"

// Line is one trimmed, non-empty source line.
type Line struct {
	Number int    // 1-based line number in the original text
	Text   string // trimmed
}

// Split breaks text into trimmed lines, dropping blank ones. Both \n and
// \r\n line endings are accepted.
func Split(text string) []Line {
	raw := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	lines := make([]Line, 0, len(raw))
	for i, r := range raw {
		trimmed := strings.TrimSpace(r)
		if trimmed == "" {
			continue
		}
		lines = append(lines, Line{Number: i + 1, Text: trimmed})
	}
	return lines
}

// SplitInputs turns the input panel text into one value per line. A single
// trailing newline does not add an empty value.
func SplitInputs(text string) []string {
	if text == "" {
		return nil
	}
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.TrimSuffix(text, "\n")
	return strings.Split(text, "\n")
}

// StripComment removes a trailing // comment that is not inside a string or
// char literal, and the whitespace before it.
func StripComment(text string) string {
	var quote byte
	for i := 0; i < len(text); i++ {
		c := text[i]
		if quote != 0 {
			switch c {
			case '\\':
				i++
			case quote:
				quote = 0
			}
			continue
		}
		switch c {
		case '"', '\'':
			quote = c
		case '/':
			if i+1 < len(text) && text[i+1] == '/' {
				return strings.TrimSpace(text[:i])
			}
		}
	}
	return text
}
