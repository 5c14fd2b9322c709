package debugger

import (
	"fmt"
	"strconv"

	"github.com/phroun/burst-sub000/vm"
)

// exprParser is a small Pratt-style recursive-descent parser over the
// four arithmetic operators, memory dereference and identifiers/numbers;
// precedence is the usual */  over +-.
type exprParser struct {
	toks []token
	pos  int
	vm   *vm.VM
	syms *SymbolTable
}

// Evaluate parses and evaluates a breakpoint condition or watch
// expression: register names, decimal/hex literals, user symbols,
// name+offset, and [expr] memory dereference.
func Evaluate(src string, machine *vm.VM, symbols *SymbolTable) (uint32, error) {
	lex := newExprLexer(src)
	var toks []token
	for {
		t, err := lex.next()
		if err != nil {
			return 0, err
		}
		toks = append(toks, t)
		if t.kind == tokEOF {
			break
		}
	}
	p := &exprParser{toks: toks, vm: machine, syms: symbols}
	val, err := p.parseExpr()
	if err != nil {
		return 0, err
	}
	if p.cur().kind != tokEOF {
		return 0, fmt.Errorf("unexpected trailing input in expression %q", src)
	}
	return val, nil
}

func (p *exprParser) cur() token { return p.toks[p.pos] }

func (p *exprParser) advance() token {
	t := p.toks[p.pos]
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return t
}

func (p *exprParser) parseExpr() (uint32, error) {
	left, err := p.parseTerm()
	if err != nil {
		return 0, err
	}
	for p.cur().kind == tokPlus || p.cur().kind == tokMinus {
		op := p.advance().kind
		right, err := p.parseTerm()
		if err != nil {
			return 0, err
		}
		if op == tokPlus {
			left += right
		} else {
			left -= right
		}
	}
	return left, nil
}

func (p *exprParser) parseTerm() (uint32, error) {
	left, err := p.parseFactor()
	if err != nil {
		return 0, err
	}
	for p.cur().kind == tokStar || p.cur().kind == tokSlash {
		op := p.advance().kind
		right, err := p.parseFactor()
		if err != nil {
			return 0, err
		}
		if op == tokStar {
			left *= right
		} else {
			if right == 0 {
				return 0, fmt.Errorf("division by zero in expression")
			}
			left /= right
		}
	}
	return left, nil
}

func (p *exprParser) parseFactor() (uint32, error) {
	t := p.cur()
	switch t.kind {
	case tokNumber:
		p.advance()
		return t.num, nil
	case tokMinus:
		p.advance()
		v, err := p.parseFactor()
		if err != nil {
			return 0, err
		}
		return uint32(-int32(v)), nil
	case tokLParen:
		p.advance()
		v, err := p.parseExpr()
		if err != nil {
			return 0, err
		}
		if p.cur().kind != tokRParen {
			return 0, fmt.Errorf("expected ')' in expression")
		}
		p.advance()
		return v, nil
	case tokLBracket:
		p.advance()
		addr, err := p.parseExpr()
		if err != nil {
			return 0, err
		}
		if p.cur().kind != tokRBracket {
			return 0, fmt.Errorf("expected ']' in expression")
		}
		p.advance()
		if p.vm == nil {
			return 0, fmt.Errorf("memory dereference requires a running VM")
		}
		val, err := p.vm.Mem.ReadWord(addr, addr)
		if err != nil {
			return 0, err
		}
		return val, nil
	case tokIdent:
		p.advance()
		return p.resolveIdent(t.text)
	}
	return 0, fmt.Errorf("unexpected token in expression")
}

func (p *exprParser) resolveIdent(name string) (uint32, error) {
	if p.vm != nil {
		if name == "pc" {
			return p.vm.Regs.PC, nil
		}
		if name == "sp" {
			return p.vm.Regs.SP, nil
		}
		if len(name) >= 2 && name[0] == 'r' {
			if n, err := strconv.Atoi(name[1:]); err == nil && n >= 0 && n < vm.NumRegisters {
				return p.vm.Regs.Get(n), nil
			}
		}
	}
	if p.syms != nil {
		if addr, ok := p.syms.Lookup(name); ok {
			return addr, nil
		}
	}
	return 0, fmt.Errorf("undefined symbol %q", name)
}
