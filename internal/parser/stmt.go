package parser

import "github.com/chittur/parallel-programming-language/internal/lang"

// statement dispatches on the current symbol to compile one Statement.
func (p *Parser) statement() {
	switch p.cur.sym {
	case lang.Name:
		p.assignOrCallStatement()
	case lang.KwIf:
		p.ifStatement()
	case lang.KwWhile:
		p.whileStatement()
	case lang.KwParallel:
		p.parallelStatement()
	case lang.KwSend:
		p.sendStatement()
	case lang.KwReceive:
		p.receiveStatement()
	case lang.KwOpen:
		p.openStatement()
	case lang.KwRandomize:
		p.randomizeStatement()
	case lang.KwRead:
		p.readStatement()
	case lang.KwWrite:
		p.writeStatement()
	case lang.LBrace:
		p.nestedBlock()
	default:
		p.error(lang.ErrUnexpectedSymbol, "expected a statement")
		p.advance()
	}
}

// assignOrCallStatement resolves the one ambiguity remaining at statement
// level: a leading Name begins either an AssignStatement (name is an
// ObjectAccess target, followed eventually by "=") or a CallStatement
// (name is a procedure, followed by "("). A single token of lookahead
// settles it: only a call can have "(" right after the name.
func (p *Parser) assignOrCallStatement() {
	if p.peek(1).sym == lang.LParen {
		p.callStatement()
		return
	}
	p.assignStatement()
}

// assignStatement compiles ObjectAccess {"," ObjectAccess} "=" Expression
// {"," Expression} ";", with N targets and N expressions evaluated
// against pre-assignment state before anything is written, so `a,b = b,a`
// swaps atomically (spec.md §4.5, §9).
func (p *Parser) assignStatement() {
	var targets []lang.DataType
	for {
		targets = append(targets, p.objectAccess(false))
		if !p.at(lang.Comma) {
			break
		}
		p.advance()
	}
	if !p.expect(lang.Equals) {
		p.synchronize(lang.Semicolon, lang.RBrace)
		p.expect(lang.Semicolon)
		return
	}
	n := 0
	for {
		rhs := p.expression()
		if n < len(targets) {
			p.checkSameType(targets[n], rhs)
		}
		n++
		if !p.at(lang.Comma) {
			break
		}
		p.advance()
	}
	if n != len(targets) {
		p.error(lang.ErrWrongArity, "assignment target/value count mismatch")
	}
	p.asm.Emit(lang.OpAssign, int32(len(targets)))
	p.expect(lang.Semicolon)
}

// ifStatement compiles "if" "(" Expression ")" Block [ "else" Block ].
func (p *Parser) ifStatement() {
	p.advance()
	p.expect(lang.LParen)
	cond := p.expression()
	p.checkType(cond, lang.TypeBoolean)
	p.expect(lang.RParen)

	elseSlot := p.emitWithLabel(lang.OpDo)
	p.blockAsStatement()

	if p.at(lang.KwElse) {
		endSlot := p.emitWithLabel(lang.OpGoto)
		p.asm.ResolveAddress(elseSlot)
		p.advance()
		p.blockAsStatement()
		p.asm.ResolveAddress(endSlot)
	} else {
		p.asm.ResolveAddress(elseSlot)
	}
}

// whileStatement compiles "while" "(" Expression ")" Block.
func (p *Parser) whileStatement() {
	p.advance()
	top := p.asm.CurrentAddress()
	p.expect(lang.LParen)
	cond := p.expression()
	p.checkType(cond, lang.TypeBoolean)
	p.expect(lang.RParen)

	exitSlot := p.emitWithLabel(lang.OpDo)
	p.blockAsStatement()
	p.asm.Emit(lang.OpGoto, int32(top))
	p.asm.ResolveAddress(exitSlot)
}

// blockAsStatement compiles a Block used as an if/while body: it must be
// "{" ... "}", never a bare single statement (spec.md's grammar always
// nests these in braces, matching the teacher's own block-only bodies).
func (p *Parser) blockAsStatement() {
	if !p.at(lang.LBrace) {
		p.error(lang.ErrMissingSymbol, lang.LBrace.String())
		return
	}
	p.nestedBlock()
}

// sendStatement compiles "send" "(" Expression "," ObjectAccess ")" ";".
// The VM's Send pops the channel handle first, then the value, so the
// value is pushed before the channel (spec.md §6.2's Send entry).
func (p *Parser) sendStatement() {
	p.advance()
	p.expect(lang.LParen)
	valType := p.expression()
	p.expect(lang.Comma)
	p.channelOperand(true)
	p.expect(lang.RParen)
	p.expect(lang.Semicolon)
	p.checkType(valType, lang.TypeInteger)
	p.asm.Emit(lang.OpSend)
}

// receiveStatement compiles "receive" "(" ObjectAccess "," ObjectAccess
// ")" ";". The VM's Receive pops the destination address first, then the
// channel handle below it, so the channel value is pushed before the
// destination address (spec.md §6.2's Receive entry).
func (p *Parser) receiveStatement() {
	p.advance()
	p.expect(lang.LParen)
	p.channelOperand(true)
	p.expect(lang.Comma)
	if !p.at(lang.Name) {
		p.error(lang.ErrUnexpectedSymbol, "expected a variable")
		p.asm.Emit(lang.OpConstant, 0)
	} else {
		p.objectAccess(false)
	}
	p.expect(lang.RParen)
	p.expect(lang.Semicolon)
	p.asm.Emit(lang.OpReceive)
}

// channelOperand compiles the channel-valued ObjectAccess operand shared
// by send/receive, pushing its value (the channel handle) when wantValue
// is true.
func (p *Parser) channelOperand(wantValue bool) {
	if !p.at(lang.Name) {
		p.error(lang.ErrUnexpectedSymbol, "expected a channel variable")
		p.asm.Emit(lang.OpConstant, 0)
		return
	}
	typ := p.objectAccess(wantValue)
	p.checkType(typ, lang.TypeChannel)
}

// openStatement compiles "open" "(" ObjectAccess ")" ";": allocate a new
// channel and store its handle at the given channel slot's address.
func (p *Parser) openStatement() {
	p.advance()
	p.expect(lang.LParen)
	if !p.at(lang.Name) {
		p.error(lang.ErrUnexpectedSymbol, "expected a channel variable")
		p.asm.Emit(lang.OpConstant, 0)
	} else {
		typ := p.objectAccess(false)
		p.checkType(typ, lang.TypeChannel)
	}
	p.expect(lang.RParen)
	p.expect(lang.Semicolon)
	p.asm.Emit(lang.OpOpen)
}

// randomizeStatement compiles "randomize" "(" ObjectAccess ")" ";":
// store a pseudo-random non-negative integer at the given slot's address.
func (p *Parser) randomizeStatement() {
	p.advance()
	p.expect(lang.LParen)
	if !p.at(lang.Name) {
		p.error(lang.ErrUnexpectedSymbol, "expected a variable")
		p.asm.Emit(lang.OpConstant, 0)
	} else {
		typ := p.objectAccess(false)
		p.checkType(typ, lang.TypeInteger)
	}
	p.expect(lang.RParen)
	p.expect(lang.Semicolon)
	p.asm.Emit(lang.OpRandomize)
}

// readStatement compiles "read" "(" ObjectAccess {"," ObjectAccess} ")"
// ";", emitting a ReadBoolean or ReadInteger per target's type.
func (p *Parser) readStatement() {
	p.advance()
	p.expect(lang.LParen)
	for {
		if !p.at(lang.Name) {
			p.error(lang.ErrUnexpectedSymbol, "expected a variable")
			p.asm.Emit(lang.OpConstant, 0)
		} else {
			typ := p.objectAccess(false)
			switch typ {
			case lang.TypeBoolean:
				p.asm.Emit(lang.OpReadBoolean)
			case lang.TypeInteger, lang.TypeUniversal:
				p.asm.Emit(lang.OpReadInteger)
			default:
				p.error(lang.ErrTypeMismatch, "read target must be integer or boolean")
				p.asm.Emit(lang.OpReadInteger)
			}
		}
		if !p.at(lang.Comma) {
			break
		}
		p.advance()
	}
	p.expect(lang.RParen)
	p.expect(lang.Semicolon)
}

// writeStatement compiles "write" "(" Expression {"," Expression} ")"
// ";", emitting a WriteBoolean or WriteInteger per value's type.
func (p *Parser) writeStatement() {
	p.advance()
	p.expect(lang.LParen)
	for {
		typ := p.expression()
		switch typ {
		case lang.TypeBoolean:
			p.asm.Emit(lang.OpWriteBoolean)
		case lang.TypeInteger, lang.TypeUniversal:
			p.asm.Emit(lang.OpWriteInteger)
		default:
			p.error(lang.ErrTypeMismatch, "write value must be integer or boolean")
			p.asm.Emit(lang.OpWriteInteger)
		}
		if !p.at(lang.Comma) {
			break
		}
		p.advance()
	}
	p.expect(lang.RParen)
	p.expect(lang.Semicolon)
}
