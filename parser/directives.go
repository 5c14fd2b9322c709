package parser

import "strings"

// directiveSize computes a directive's size in bytes for pass 1, without
// requiring any label to be resolved yet (sizes never depend on operand
// values, only on how many values/bytes were written).
func directiveSize(directive, args string, pos Position, raw string) (uint32, error) {
	switch directive {
	case "byte", "db":
		vals := splitOperands(args)
		return uint32(len(vals)), nil
	case "word", "dw":
		vals := splitOperands(args)
		return uint32(len(vals)) * 4, nil
	case "string", "ascii":
		lit, err := parseStringLiteral(args, pos, raw)
		if err != nil {
			return 0, err
		}
		unescaped, err := UnescapeString(lit)
		if err != nil {
			return 0, NewErrorWithLine(pos, ErrBadDirective, err.Error(), raw)
		}
		return uint32(len(unescaped)), nil
	case "space", "skip":
		n, ok := parseIntLiteral(strings.TrimSpace(args))
		if !ok || n < 0 {
			return 0, NewErrorWithLine(pos, ErrBadDirective, "expected a non-negative count: "+quoteOperand(args), raw)
		}
		return uint32(n), nil
	default:
		return 0, NewErrorWithLine(pos, ErrBadDirective, "unknown directive: ."+directive, raw)
	}
}

// emitDirective produces the bytes for pass 2. res resolves label operands
// inside .byte/.word lists (e.g. ".word some_label").
func emitDirective(directive, args string, res resolver, pos Position, raw string) ([]byte, error) {
	switch directive {
	case "byte", "db":
		vals := splitOperands(args)
		out := make([]byte, 0, len(vals))
		for _, v := range vals {
			n, err := parseNumberOrLabel(v, res, pos, raw)
			if err != nil {
				return nil, err
			}
			if n < -128 || n > 255 {
				return nil, NewErrorWithLine(pos, ErrOutOfRange, "value out of range for .byte: "+v, raw)
			}
			out = append(out, byte(n))
		}
		return out, nil

	case "word", "dw":
		vals := splitOperands(args)
		out := make([]byte, 0, len(vals)*4)
		for _, v := range vals {
			n, err := parseNumberOrLabel(v, res, pos, raw)
			if err != nil {
				return nil, err
			}
			u := uint32(n)
			out = append(out, byte(u), byte(u>>8), byte(u>>16), byte(u>>24))
		}
		return out, nil

	case "string", "ascii":
		lit, err := parseStringLiteral(args, pos, raw)
		if err != nil {
			return nil, err
		}
		unescaped, err := UnescapeString(lit)
		if err != nil {
			return nil, NewErrorWithLine(pos, ErrBadDirective, err.Error(), raw)
		}
		return []byte(unescaped), nil

	case "space", "skip":
		n, _ := parseIntLiteral(strings.TrimSpace(args))
		return make([]byte, n), nil

	default:
		return nil, NewErrorWithLine(pos, ErrBadDirective, "unknown directive: ."+directive, raw)
	}
}

func parseStringLiteral(args string, pos Position, raw string) (string, error) {
	s := strings.TrimSpace(args)
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return "", NewErrorWithLine(pos, ErrBadDirective, "expected a double-quoted string literal", raw)
	}
	return s[1 : len(s)-1], nil
}
