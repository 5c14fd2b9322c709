package parser

import (
	"strconv"
	"strings"
)

// parsedReg, parsedMem and parsedValue are the three operand shapes the
// grammar in spec.md §4.6 produces once a raw operand string has been
// classified by its expected OperandKind.

type parsedMem struct {
	Reg    int
	Offset int32
}

// resolver looks up a label's address; ok is false for an undefined
// label (pass 2 reports Assembler-Undefined-Label in that case).
type resolver func(name string) (uint32, bool)

func parseRegister(s string, pos Position, raw string) (int, error) {
	if len(s) < 2 || (s[0] != 'r' && s[0] != 'R') {
		return 0, NewErrorWithLine(pos, ErrBadOperand, "expected a register, got "+quoteOperand(s), raw)
	}
	n, err := strconv.Atoi(s[1:])
	if err != nil || n < 0 || n > 15 {
		return 0, NewErrorWithLine(pos, ErrBadOperand, "invalid register: "+quoteOperand(s), raw)
	}
	return n, nil
}

func quoteOperand(s string) string {
	if s == "" {
		return "<empty>"
	}
	return "'" + s + "'"
}

// parseNumberOrLabel parses a decimal or 0x-hex literal, or (if neither)
// resolves name as a label. res may be nil (AssembleLine called without a
// symbol lookup), in which case any non-numeric token is treated as a
// label with value 0 instead of an undefined-label error.
func parseNumberOrLabel(s string, res resolver, pos Position, raw string) (int64, error) {
	if s == "" {
		return 0, NewErrorWithLine(pos, ErrBadOperand, "empty operand", raw)
	}
	if n, ok := parseIntLiteral(s); ok {
		return n, nil
	}
	if res == nil {
		return 0, nil
	}
	addr, ok := res(s)
	if !ok {
		return 0, NewErrorWithLine(pos, ErrUndefinedLabel, "undefined label: "+s, raw)
	}
	return int64(addr), nil
}

// parseIntLiteral recognises decimal (with optional leading '-') and
// 0x/0X-prefixed hexadecimal literals.
func parseIntLiteral(s string) (int64, bool) {
	neg := false
	t := s
	if strings.HasPrefix(t, "-") {
		neg = true
		t = t[1:]
	}
	var n int64
	var err error
	if strings.HasPrefix(t, "0x") || strings.HasPrefix(t, "0X") {
		u, e := strconv.ParseUint(t[2:], 16, 64)
		n, err = int64(u), e
	} else {
		isDigits := t != ""
		for i := 0; i < len(t); i++ {
			if t[i] < '0' || t[i] > '9' {
				isDigits = false
				break
			}
		}
		if !isDigits {
			return 0, false
		}
		u, e := strconv.ParseUint(t, 10, 64)
		n, err = int64(u), e
	}
	if err != nil {
		return 0, false
	}
	if neg {
		n = -n
	}
	return n, true
}

// parseImmediate requires a leading '#' (a bare number in an immediate
// slot is the "must be immediate" error called out in spec.md §4.6).
func parseImmediate(s string, res resolver, pos Position, raw string) (int64, error) {
	if !strings.HasPrefix(s, "#") {
		return 0, NewErrorWithLine(pos, ErrBadOperand, "operand must be immediate (prefix with '#'): "+quoteOperand(s), raw)
	}
	return parseNumberOrLabel(s[1:], res, pos, raw)
}

// parseAddress accepts a bare decimal/hex literal or a label name; a
// leading '#' here is a syntax error since addresses are never immediates.
func parseAddress(s string, res resolver, pos Position, raw string) (int64, error) {
	if strings.HasPrefix(s, "#") {
		return 0, NewErrorWithLine(pos, ErrBadOperand, "address operand must not be prefixed with '#': "+quoteOperand(s), raw)
	}
	return parseNumberOrLabel(s, res, pos, raw)
}

// parseMemory parses "[rN]" or "[rN+off]"/"[rN-off]".
func parseMemory(s string, pos Position, raw string) (parsedMem, error) {
	if len(s) < 3 || s[0] != '[' || s[len(s)-1] != ']' {
		return parsedMem{}, NewErrorWithLine(pos, ErrBadOperand, "expected [rN] or [rN+off]: "+quoteOperand(s), raw)
	}
	inner := s[1 : len(s)-1]

	splitIdx := -1
	sign := int32(1)
	for i := 1; i < len(inner); i++ { // start at 1: a leading '-' would belong to the register, which isn't valid anyway
		if inner[i] == '+' || inner[i] == '-' {
			splitIdx = i
			if inner[i] == '-' {
				sign = -1
			}
			break
		}
	}

	regPart := inner
	var offset int32
	if splitIdx >= 0 {
		regPart = inner[:splitIdx]
		offTok := inner[splitIdx+1:]
		n, ok := parseIntLiteral(offTok)
		if !ok {
			return parsedMem{}, NewErrorWithLine(pos, ErrBadOperand, "invalid offset: "+quoteOperand(offTok), raw)
		}
		if sign < 0 {
			n = -n
		}
		if n < -128 || n > 255 {
			return parsedMem{}, NewErrorWithLine(pos, ErrOutOfRange, "memory offset out of range (imm8): "+offTok, raw)
		}
		offset = int32(n)
	}

	reg, err := parseRegister(regPart, pos, raw)
	if err != nil {
		return parsedMem{}, err
	}
	return parsedMem{Reg: reg, Offset: offset}, nil
}
