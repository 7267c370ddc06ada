package rendering

import "strings"

// EscapeLaTeX escapes special LaTeX characters in text
// Special characters: \ { } $ & % # ^ _ ~
// Carriage returns become newlines and other control characters except tab
// are dropped.
func EscapeLaTeX(text string) string {
	if text == "" {
		return ""
	}
	text = strings.ReplaceAll(text, "\r\n", "\n")

	var result strings.Builder
	result.Grow(len(text) * 2)

	for _, r := range text {
		switch r {
		case '\\':
			result.WriteString(`\textbackslash{}`)
		case '{':
			result.WriteString(`\{`)
		case '}':
			result.WriteString(`\}`)
		case '$':
			result.WriteString(`\$`)
		case '&':
			result.WriteString(`\&`)
		case '%':
			result.WriteString(`\%`)
		case '#':
			result.WriteString(`\#`)
		case '^':
			result.WriteString(`\textasciicircum{}`)
		case '_':
			result.WriteString(`\_`)
		case '~':
			result.WriteString(`\textasciitilde{}`)
		case '\r':
			result.WriteByte('\n')
		case '\n', '\t':
			result.WriteRune(r)
		default:
			if isControl(r) {
				continue
			}
			result.WriteRune(r)
		}
	}

	return result.String()
}

// escapeSequences are the only places reserved characters may appear in
// escaped output.
var escapeSequences = []string{
	`\textbackslash{}`,
	`\textasciicircum{}`,
	`\textasciitilde{}`,
	`\{`, `\}`, `\$`, `\&`, `\%`, `\#`, `\_`,
}

// CheckEscaped verifies that text, the output of EscapeLaTeX, carries no
// reserved character outside a known escape sequence.
func CheckEscaped(field, text string) error {
	for i := 0; i < len(text); {
		c := text[i]
		if c == '\\' {
			n := matchEscape(text[i:])
			if n == 0 {
				return &EscapeInvariantError{Field: field, Position: i, Char: '\\'}
			}
			i += n
			continue
		}
		switch c {
		case '{', '}', '$', '&', '%', '#', '^', '_', '~':
			return &EscapeInvariantError{Field: field, Position: i, Char: rune(c)}
		}
		if c < 0x20 && c != '\n' && c != '\t' || c == 0x7f {
			return &EscapeInvariantError{Field: field, Position: i, Char: rune(c)}
		}
		i++
	}
	return nil
}

func matchEscape(s string) int {
	for _, seq := range escapeSequences {
		if strings.HasPrefix(s, seq) {
			return len(seq)
		}
	}
	return 0
}

func isControl(r rune) bool {
	return r < 0x20 || r == 0x7f
}
