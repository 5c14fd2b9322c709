package parser

import (
	"fmt"
	"strings"
)

// Position identifies a location in an assembly source file.
type Position struct {
	Filename string
	Line     int
	Column   int
}

func (p Position) String() string {
	if p.Filename == "" {
		return fmt.Sprintf("%d:%d", p.Line, p.Column)
	}
	return fmt.Sprintf("%s:%d:%d", p.Filename, p.Line, p.Column)
}

// ErrorKind categorises an assembler failure; each value here corresponds
// to one of the Assembler-* kinds in the error handling design.
type ErrorKind int

const (
	ErrSyntax ErrorKind = iota
	ErrUnknownMnemonic
	ErrBadOperand
	ErrOutOfRange
	ErrUndefinedLabel
	ErrDuplicateLabel
	ErrBadDirective
)

var errKindNames = map[ErrorKind]string{
	ErrSyntax:          "syntax error",
	ErrUnknownMnemonic: "unknown mnemonic",
	ErrBadOperand:      "bad operand",
	ErrOutOfRange:      "value out of range",
	ErrUndefinedLabel:  "undefined label",
	ErrDuplicateLabel:  "duplicate label",
	ErrBadDirective:    "bad directive",
}

func (k ErrorKind) String() string {
	if s, ok := errKindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

// Error is a single assembler diagnostic with source position and the raw
// offending line attached, in the style of a compiler error.
type Error struct {
	Pos     Position
	Kind    ErrorKind
	Message string
	Line    string // raw source line, for display
}

func (e *Error) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s: %s: %s", e.Pos, e.Kind, e.Message)
	if e.Line != "" {
		fmt.Fprintf(&sb, "\n    %s", e.Line)
	}
	return sb.String()
}

// NewError creates an assembler error.
func NewError(pos Position, kind ErrorKind, message string) *Error {
	return &Error{Pos: pos, Kind: kind, Message: message}
}

// NewErrorWithLine attaches the raw source line to the error for display.
func NewErrorWithLine(pos Position, kind ErrorKind, message, line string) *Error {
	return &Error{Pos: pos, Kind: kind, Message: message, Line: line}
}

// List holds several errors and reports them together. The assembler
// itself does not use it: AssembleLines and AssembleFile stop at, and
// return, the first error they meet.
type List struct {
	Errors []*Error
}

func (l *List) Add(err *Error) {
	l.Errors = append(l.Errors, err)
}

func (l *List) HasErrors() bool {
	return len(l.Errors) > 0
}

func (l *List) Error() string {
	parts := make([]string, len(l.Errors))
	for i, e := range l.Errors {
		parts[i] = e.Error()
	}
	return strings.Join(parts, "\n")
}
