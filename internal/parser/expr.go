package parser

import "github.com/chittur/parallel-programming-language/internal/lang"

// expression compiles Expression = PrimaryExpr { ( "&" | "|" ) PrimaryExpr }.
func (p *Parser) expression() lang.DataType {
	typ := p.primaryExpr()
	for p.at(lang.Amp) || p.at(lang.Pipe) {
		op := p.cur.sym
		p.advance()
		rhs := p.primaryExpr()
		p.checkBinary(typ, rhs, lang.TypeBoolean)
		if op == lang.Amp {
			p.asm.Emit(lang.OpAnd)
		} else {
			p.asm.Emit(lang.OpOr)
		}
		typ = lang.TypeBoolean
	}
	return typ
}

// primaryExpr compiles PrimaryExpr = Simple [ relop Simple ].
func (p *Parser) primaryExpr() lang.DataType {
	typ := p.simple()
	switch p.cur.sym {
	case lang.EqualEqual, lang.NotEqual, lang.Less, lang.LessEqual, lang.Greater, lang.GreaterEqual:
		op := p.cur.sym
		p.advance()
		rhs := p.simple()
		p.checkSameType(typ, rhs)
		p.asm.Emit(relOpcode(op))
		return lang.TypeBoolean
	}
	return typ
}

func relOpcode(sym lang.Symbol) lang.Opcode {
	switch sym {
	case lang.EqualEqual:
		return lang.OpEqual
	case lang.NotEqual:
		return lang.OpNotEqual
	case lang.Less:
		return lang.OpLess
	case lang.LessEqual:
		return lang.OpLessOrEqual
	case lang.Greater:
		return lang.OpGreater
	default:
		return lang.OpGreaterOrEqual
	}
}

// simple compiles Simple = [ "-" ] Term { ( "+" | "-" ) Term }. A leading
// minus on a bare literal or named constant folds at compile time into a
// negative Constant; applied to anything else, it emits Minus right after
// that first Term compiles (spec.md §9).
func (p *Parser) simple() lang.DataType {
	negate := p.at(lang.Minus)
	if negate {
		p.advance()
	}
	typ, folded, slot, val := p.termFoldable()
	if negate {
		p.checkInteger(typ)
		if folded {
			p.asm.ResolveArgument(slot, int32(-val))
		} else {
			p.asm.Emit(lang.OpMinus)
		}
	}
	for p.at(lang.Plus) || p.at(lang.Minus) {
		op := p.cur.sym
		p.advance()
		rhs := p.term()
		p.checkBinary(typ, rhs, lang.TypeInteger)
		if op == lang.Plus {
			p.asm.Emit(lang.OpAdd)
		} else {
			p.asm.Emit(lang.OpSubtract)
		}
	}
	return typ
}

func (p *Parser) term() lang.DataType {
	typ, _, _, _ := p.termFoldable()
	return typ
}

// termFoldable compiles Term = Factor { ( "*" | "/" | "%" | "^" ) Factor },
// additionally reporting whether it reduced to a single foldable Factor
// (no multiplicative operator encountered), for simple's unary-minus fold.
func (p *Parser) termFoldable() (typ lang.DataType, folded bool, slot int, val int) {
	typ, folded, slot, val = p.factorFoldable()
	for p.at(lang.Star) || p.at(lang.Slash) || p.at(lang.Percent) || p.at(lang.Caret) {
		folded = false
		op := p.cur.sym
		p.advance()
		rhs := p.factor()
		p.checkBinary(typ, rhs, lang.TypeInteger)
		switch op {
		case lang.Star:
			p.asm.Emit(lang.OpMultiply)
		case lang.Slash:
			p.asm.Emit(lang.OpDivide)
		case lang.Percent:
			p.asm.Emit(lang.OpModulo)
		default:
			p.asm.Emit(lang.OpPower)
		}
	}
	return typ, folded, slot, val
}

func (p *Parser) factor() lang.DataType {
	typ, _, _, _ := p.factorFoldable()
	return typ
}

// factorFoldable compiles Factor = numeral | "true" | "false" |
// ObjectAccess | name "(" ... ")" | "(" Expression ")" | "!" Factor. Only
// a bare numeral or a bare named integer constant is reported foldable;
// everything else returns folded=false.
func (p *Parser) factorFoldable() (typ lang.DataType, folded bool, slot int, val int) {
	switch p.cur.sym {
	case lang.Numeral:
		v := p.cur.arg
		slot := p.asm.CurrentAddress() + 1
		p.asm.Emit(lang.OpConstant, int32(v))
		p.advance()
		return lang.TypeInteger, true, slot, v

	case lang.KwTrue:
		p.asm.Emit(lang.OpConstant, 1)
		p.advance()
		return lang.TypeBoolean, false, -1, 0

	case lang.KwFalse:
		p.asm.Emit(lang.OpConstant, 0)
		p.advance()
		return lang.TypeBoolean, false, -1, 0

	case lang.LParen:
		p.advance()
		typ := p.expression()
		p.expect(lang.RParen)
		return typ, false, -1, 0

	case lang.Bang:
		p.advance()
		operand := p.factor()
		p.checkType(operand, lang.TypeBoolean)
		p.asm.Emit(lang.OpNot)
		return lang.TypeBoolean, false, -1, 0

	case lang.Name:
		if p.peek(1).sym == lang.LParen {
			obj, found := p.tab.Find(p.cur.arg)
			if found && obj.Kind == lang.Procedure {
				retType, isFunc := p.compileCall(false)
				if !isFunc {
					p.error(lang.ErrWrongKind, "procedure has no return value")
					return lang.TypeUniversal, false, -1, 0
				}
				return retType, false, -1, 0
			}
		}
		nameIdx := p.cur.arg
		if obj, found := p.tab.Find(nameIdx); found && obj.Kind == lang.Constant {
			slot := p.asm.CurrentAddress() + 1
			val := obj.Value
			typ := obj.Type
			p.asm.Emit(lang.OpConstant, int32(val))
			p.advance()
			return typ, true, slot, val
		}
		return p.objectAccess(true), false, -1, 0

	default:
		p.error(lang.ErrUnexpectedSymbol, "expected an expression")
		p.asm.Emit(lang.OpConstant, 0)
		return lang.TypeUniversal, false, -1, 0
	}
}

// objectAccess compiles ObjectAccess = name [ "[" Expression "]" ],
// assuming the current token is the leading Name. If wantValue is true,
// the object's value is left on the stack (Value-dereferenced where
// needed); otherwise its address is left, for an assignment target or a
// reference argument.
func (p *Parser) objectAccess(wantValue bool) lang.DataType {
	nameIdx := p.cur.arg
	name := p.nameText(nameIdx)
	p.advance()

	obj, found := p.tab.Find(nameIdx)
	if !found {
		p.error(lang.ErrUnknownName, name)
	} else if obj.Kind == lang.Procedure {
		p.error(lang.ErrWrongKind, name+" is a procedure, not a variable")
		found = false
	}

	switch {
	case !found:
		p.asm.Emit(lang.OpConstant, 0)
		return lang.TypeUniversal

	case obj.Kind == lang.Constant:
		if !wantValue {
			p.error(lang.ErrWrongKind, name+" is a constant, not assignable")
		}
		p.asm.Emit(lang.OpConstant, int32(obj.Value))
		return obj.Type

	case obj.Kind == lang.Array:
		p.asm.Emit(lang.OpVariable, p.hops(obj.Level), int32(obj.Displacement))
		if !p.expect(lang.LBracket) {
			return obj.Type
		}
		idxType := p.expression()
		p.checkIndex(idxType)
		p.expect(lang.RBracket)
		p.asm.Emit(lang.OpIndex, int32(obj.Value))
		if wantValue {
			p.asm.Emit(lang.OpValue)
		}
		return obj.Type

	case obj.Kind == lang.ReferenceParameter:
		p.asm.Emit(lang.OpReferenceParameter, p.hops(obj.Level), int32(obj.Displacement))
		if wantValue {
			p.asm.Emit(lang.OpValue)
		}
		return obj.Type

	default: // Variable, ValueParameter, ReturnParameter
		p.asm.Emit(lang.OpVariable, p.hops(obj.Level), int32(obj.Displacement))
		if wantValue {
			p.asm.Emit(lang.OpValue)
		}
		return obj.Type
	}
}

func (p *Parser) checkType(got, want lang.DataType) {
	if !lang.Compatible(got, want) {
		p.error(lang.ErrTypeMismatch, "")
	}
}

func (p *Parser) checkSameType(a, b lang.DataType) {
	if !lang.Compatible(a, b) {
		p.error(lang.ErrTypeMismatch, "")
	}
}

func (p *Parser) checkBinary(a, b lang.DataType, want lang.DataType) {
	p.checkType(a, want)
	p.checkType(b, want)
}

func (p *Parser) checkInteger(t lang.DataType) {
	p.checkType(t, lang.TypeInteger)
}

func (p *Parser) checkIndex(t lang.DataType) {
	if t != lang.TypeInteger && t != lang.TypeUniversal {
		p.error(lang.ErrNonIntegerIndex, "")
	}
}
