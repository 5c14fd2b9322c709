package parser

import (
	"strings"
)

// Line is one lexed source line: an optional label, and either an
// instruction (mnemonic + raw operand strings) or a directive, with
// comments already stripped.
type Line struct {
	Pos       Position
	Raw       string // original text, sans trailing newline, for diagnostics
	Label     string
	Mnemonic  string // lower-cased instruction mnemonic, empty if directive-only or label-only
	Directive string // lower-cased directive name without the leading '.', empty if not a directive
	OperandText string // raw, unsplit operand text following Mnemonic - may itself start with a base mnemonic word if Mnemonic is a condition prefix
	DirArgs   string // raw directive argument text, unsplit (directives parse it themselves)
}

// IsEmpty reports whether the line has no label, instruction or directive
// (a comment-only or blank line).
func (l Line) IsEmpty() bool {
	return l.Label == "" && l.Mnemonic == "" && l.Directive == ""
}

// Lex splits source into Lines, stripping comments and labels but not yet
// resolving mnemonics, aliases or operand types - that is ResolveMnemonic
// and the operand parser's job, driven line-by-line by the assembler so
// that pass 1 and pass 2 can share exactly the same lexical view.
func Lex(source, filename string) ([]Line, error) {
	rawLines := strings.Split(source, "\n")
	lines := make([]Line, 0, len(rawLines))
	for i, raw := range rawLines {
		pos := Position{Filename: filename, Line: i + 1, Column: 1}
		text := stripComment(raw)
		text = strings.TrimSpace(text)
		if text == "" {
			lines = append(lines, Line{Pos: pos, Raw: raw})
			continue
		}

		line := Line{Pos: pos, Raw: strings.TrimRight(raw, "\r")}

		if idx := labelEnd(text); idx >= 0 {
			label := text[:idx]
			if err := validateLabelName(label, pos, raw); err != nil {
				return nil, err
			}
			line.Label = label
			text = strings.TrimSpace(text[idx+1:])
		}

		if text == "" {
			lines = append(lines, line)
			continue
		}

		if text[0] == '.' {
			word, rest := splitFirstWord(text[1:])
			line.Directive = strings.ToLower(word)
			line.DirArgs = rest
			lines = append(lines, line)
			continue
		}

		word, rest := splitFirstWord(text)
		line.Mnemonic = strings.ToLower(word)
		line.OperandText = rest
		lines = append(lines, line)
	}
	return lines, nil
}

// stripComment removes a ';' comment, respecting double-quoted string
// literals so a ';' inside a .string directive's argument is not mistaken
// for one.
func stripComment(s string) string {
	inString := false
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '"':
			inString = !inString
		case ';':
			if !inString {
				return s[:i]
			}
		}
	}
	return s
}

// labelEnd returns the index of the ':' that ends a leading label, or -1
// if text does not start with a label. A label is a run of identifier
// characters immediately followed by ':'. A lone leading ':' returns 0 so
// validateLabelName rejects the empty name; for any other text (e.g. a
// ':' preceded by whitespace) it returns -1 and the line is lexed as an
// instruction, so the stray ':' surfaces later as an unknown-mnemonic or
// operand error.
func labelEnd(text string) int {
	i := 0
	for i < len(text) && isIdentChar(text[i]) {
		i++
	}
	if i == 0 {
		if len(text) > 0 && text[0] == ':' {
			return 0 // empty label name - validateLabelName rejects it
		}
		return -1
	}
	if i < len(text) && text[i] == ':' {
		return i
	}
	return -1
}

func isIdentChar(b byte) bool {
	return b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
}

func validateLabelName(label string, pos Position, raw string) error {
	if label == "" {
		return NewErrorWithLine(pos, ErrSyntax, "empty label name", raw)
	}
	if label[0] >= '0' && label[0] <= '9' {
		return NewErrorWithLine(pos, ErrSyntax, "label names cannot start with a digit: "+label, raw)
	}
	return nil
}

// splitFirstWord splits s on its first run of whitespace, returning the
// leading word and the (trimmed) remainder.
func splitFirstWord(s string) (word, rest string) {
	s = strings.TrimSpace(s)
	i := 0
	for i < len(s) && !isSpace(s[i]) {
		i++
	}
	word = s[:i]
	rest = strings.TrimSpace(s[i:])
	return
}

func isSpace(b byte) bool { return b == ' ' || b == '\t' }

// splitOperands splits an operand list on top-level commas; brackets and
// quotes are tracked so a comma inside [r1+off] or a string literal never
// splits an operand in two (BURST syntax has neither today, but staying
// consistent with how the teacher's lexer tokenizes argument lists pays
// off the day it does).
func splitOperands(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	depth := 0
	inString := false
	start := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '"':
			inString = !inString
		case '[':
			if !inString {
				depth++
			}
		case ']':
			if !inString && depth > 0 {
				depth--
			}
		case ',':
			if !inString && depth == 0 {
				out = append(out, strings.TrimSpace(s[start:i]))
				start = i + 1
			}
		}
	}
	out = append(out, strings.TrimSpace(s[start:]))
	return out
}
