package parser

import (
	"github.com/chittur/parallel-programming-language/internal/assembler"
	"github.com/chittur/parallel-programming-language/internal/lang"
	"github.com/chittur/parallel-programming-language/internal/report"
	"github.com/chittur/parallel-programming-language/internal/scanner"
	"github.com/chittur/parallel-programming-language/internal/symtab"
)

// headerSize is the number of fixed cells (static link, dynamic link,
// return address) at the base of every activation record, ahead of its
// first declared object slot (spec.md §3, §9). It is a calling-convention
// constant shared between this package and internal/vm, documented in
// full in internal/vm/doc.go.
const headerSize = 3

// Result is the outcome of a single compilation.
type Result struct {
	Code    []int32
	Success bool
	Report  *report.Report
}

// Compile scans, parses, type-checks and assembles src in one pass.
func Compile(src scanner.CharSource) *Result {
	p := &Parser{
		sc:       scanner.New(src),
		rep:      report.New(),
		tab:      symtab.New(),
		asm:      assembler.New(),
		success:  true,
		procSigs: make(map[*symtab.Object]*procSignature),
	}
	p.advance()
	p.program()
	if p.asm.Full() {
		p.rep.Add(p.cur.line, lang.ErrAssemblyTableFull, "")
	}
	return &Result{
		Code:    p.asm.Code(),
		Success: p.success && !p.rep.HasErrors(),
		Report:  p.rep,
	}
}

// token is one buffered (Symbol, Argument, Line) triple, used both as the
// parser's current token and for the narrow, explicit lookahead needed to
// tell a void ProcedureDefinition apart from a CallStatement (both start
// with "name (").
type token struct {
	sym  lang.Symbol
	arg  int
	line int
}

// Parser holds all state for a single compilation: scanner position,
// diagnostics, the symbol table, and the code emitter. It is a one-pass,
// predominantly one-token-lookahead recursive-descent compiler: it reads
// tokens and emits code in the same walk, with no intermediate AST.
type Parser struct {
	sc    *scanner.Scanner
	cur   token
	queue []token

	rep     *report.Report
	tab     *symtab.Table
	asm     *assembler.Assembler
	success bool

	// procSigs records each declared procedure's parameter/return shape,
	// keyed by its symtab.Object, so call sites (which only see the name)
	// can check arity, modes and types (spec.md §4.5, §4.3).
	procSigs map[*symtab.Object]*procSignature
}

func (p *Parser) at(sym lang.Symbol) bool { return p.cur.sym == sym }

// advance consumes the current token and loads the next, from the
// lookahead queue if anything was buffered there, else directly from the
// scanner.
func (p *Parser) advance() {
	if len(p.queue) > 0 {
		p.cur = p.queue[0]
		p.queue = p.queue[1:]
		return
	}
	p.sc.Advance()
	p.cur = token{p.sc.CurrentSymbol, p.sc.Argument, p.sc.LineNumber}
}

// peek returns the token n positions beyond the current one (n=1 is the
// very next token), buffering as many scanner advances as needed. Used to
// tell a void ProcedureDefinition from a CallStatement at the top of a
// block, a function definition from a variable definition, a call from an
// assignment at statement level, and a call from an object access inside
// an expression.
func (p *Parser) peek(n int) token {
	for len(p.queue) < n {
		p.sc.Advance()
		p.queue = append(p.queue, token{p.sc.CurrentSymbol, p.sc.Argument, p.sc.LineNumber})
	}
	return p.queue[n-1]
}

// error records a diagnostic at the current line and marks the
// compilation as failed, without interrupting the parse (spec.md §4.2:
// keep compiling after an error to surface as many as possible in one
// pass).
func (p *Parser) error(category lang.ErrorCategory, detail string) {
	p.rep.Add(p.cur.line, category, detail)
	p.success = false
	if p.asm.Full() {
		p.rep.Add(p.cur.line, lang.ErrAssemblyTableFull, "")
	}
}

// expect consumes sym if current, else reports a missing-symbol error and
// leaves the cursor in place for the caller's recovery to handle.
func (p *Parser) expect(sym lang.Symbol) bool {
	if p.at(sym) {
		p.advance()
		return true
	}
	p.error(lang.ErrMissingSymbol, sym.String())
	return false
}

// synchronize skips tokens until one of the given symbols (or EndOfText)
// is current, so a single malformed construct does not cascade into every
// construct that follows it (spec.md §4.2).
func (p *Parser) synchronize(stopAt ...lang.Symbol) {
	for !p.at(lang.EndOfText) {
		for _, s := range stopAt {
			if p.at(s) {
				return
			}
		}
		p.advance()
	}
}

func (p *Parser) nameText(idx int) string { return p.sc.NameText(idx) }

// emitWithLabel emits a 1-operand opcode with a placeholder operand and
// returns that operand's address, for a later ResolveAddress/
// ResolveArgument once its real target is known.
func (p *Parser) emitWithLabel(op lang.Opcode) int {
	p.asm.Emit(op, 0)
	return p.asm.CurrentAddress() - 1
}

// hops returns the number of static links to walk from the frame
// currently being compiled to reach the frame at level objLevel (spec.md
// §3, §9): the shared operand convention for Variable, ReferenceParameter
// and ProcedureInvocation.
func (p *Parser) hops(objLevel int) int32 {
	return int32(p.tab.Level() - objLevel)
}

// program compiles the single top-level Block as the outermost frame.
func (p *Parser) program() {
	l := p.emitWithLabel(lang.OpProgram)
	p.tab.NewBlock(true)
	p.blockBody()
	n := p.tab.EndBlock()
	p.asm.ResolveArgument(l, int32(n))
	p.asm.Emit(lang.OpEndProgram)
}

// nestedBlock compiles a plain "{" ... "}" sharing the enclosing frame
// (an if/while body, or a bare block used as a Statement), emitting
// Block/EndBlock around it.
func (p *Parser) nestedBlock() {
	p.tab.NewBlock(false)
	l := p.emitWithLabel(lang.OpBlock)
	p.blockBody()
	n := p.tab.EndBlock()
	p.asm.ResolveArgument(l, int32(n))
	p.asm.Emit(lang.OpEndBlock)
}

// blockBody compiles "{" DefinitionPart StatementPart "}". The caller has
// already pushed the symtab scope and reserved the size operand it will
// resolve once EndBlock returns the object count.
func (p *Parser) blockBody() {
	if !p.expect(lang.LBrace) {
		p.synchronize(lang.RBrace)
		if p.at(lang.RBrace) {
			p.advance()
		}
		return
	}
	p.definitionPart()
	p.statementPart()
	p.expect(lang.RBrace)
}

func (p *Parser) definitionPart() {
	for {
		switch p.cur.sym {
		case lang.KwConstant:
			p.constantDefinition()
		case lang.KwInteger, lang.KwBoolean, lang.KwChannel:
			p.typedDefinition()
		case lang.Name:
			if !p.nameStartsProcedureDefinition() {
				return
			}
			p.procedureDefinition(lang.TypeUndefined)
		default:
			return
		}
	}
}

// nameStartsProcedureDefinition resolves the one ambiguity a single token
// of lookahead cannot: "name (" begins both a void ProcedureDefinition and
// a CallStatement. A parameter list always opens with a type keyword or
// "reference"; an argument list never does. An empty "()" is genuinely
// ambiguous until the token after it is seen: "{" means a definition,
// anything else means a call.
func (p *Parser) nameStartsProcedureDefinition() bool {
	if p.peek(1).sym != lang.LParen {
		return false
	}
	switch p.peek(2).sym {
	case lang.KwInteger, lang.KwBoolean, lang.KwChannel, lang.KwReference:
		return true
	case lang.RParen:
		return p.peek(3).sym == lang.LBrace
	default:
		return false
	}
}

func (p *Parser) startsStatement() bool {
	switch p.cur.sym {
	case lang.Name, lang.KwIf, lang.KwWhile, lang.KwParallel, lang.KwSend,
		lang.KwReceive, lang.KwOpen, lang.KwRandomize, lang.KwRead,
		lang.KwWrite, lang.LBrace:
		return true
	}
	return false
}

func (p *Parser) statementPart() {
	for p.startsStatement() {
		p.statement()
	}
}

// constantDefinition compiles "constant" Name "=" Literal {"," ...} ";".
func (p *Parser) constantDefinition() {
	p.advance() // "constant"
	for {
		if !p.at(lang.Name) {
			p.error(lang.ErrUnexpectedSymbol, "expected a name")
			p.synchronize(lang.Semicolon, lang.RBrace)
			break
		}
		nameIdx := p.cur.arg
		name := p.nameText(nameIdx)
		p.advance()
		if !p.expect(lang.Equals) {
			p.synchronize(lang.Semicolon, lang.Comma)
		}
		typ, val := p.constLiteral()
		if _, ok := p.tab.DefineConstant(nameIdx, typ, val); !ok {
			p.error(lang.ErrRedeclaration, name)
		}
		if !p.at(lang.Comma) {
			break
		}
		p.advance()
	}
	p.expect(lang.Semicolon)
}

// constLiteral parses a compile-time literal: [ "-" ] numeral | true | false.
func (p *Parser) constLiteral() (lang.DataType, int) {
	switch p.cur.sym {
	case lang.KwTrue:
		p.advance()
		return lang.TypeBoolean, 1
	case lang.KwFalse:
		p.advance()
		return lang.TypeBoolean, 0
	case lang.Minus:
		p.advance()
		if !p.at(lang.Numeral) {
			p.error(lang.ErrNotConstant, "expected a numeral after '-'")
			return lang.TypeUniversal, 0
		}
		v := p.cur.arg
		p.advance()
		return lang.TypeInteger, -v
	case lang.Numeral:
		v := p.cur.arg
		p.advance()
		return lang.TypeInteger, v
	default:
		p.error(lang.ErrNotConstant, "expected a constant literal")
		return lang.TypeUniversal, 0
	}
}

// typedDefinition handles the two forms that start with a type keyword: a
// VariableDefinition, or a function ProcedureDefinition (when the type
// keyword is followed by "name (").
func (p *Parser) typedDefinition() {
	typ := typeNameOf(p.cur.sym)
	p.advance()

	if typ != lang.TypeChannel && p.at(lang.Name) && p.peek(1).sym == lang.LParen {
		nameIdx := p.cur.arg
		p.advance() // name
		p.finishProcedureDefinition(typ, nameIdx)
		return
	}
	p.variableDefinitionFresh(typ)
}

func typeNameOf(sym lang.Symbol) lang.DataType {
	switch sym {
	case lang.KwInteger:
		return lang.TypeInteger
	case lang.KwBoolean:
		return lang.TypeBoolean
	case lang.KwChannel:
		return lang.TypeChannel
	default:
		return lang.TypeUndefined
	}
}

func (p *Parser) variableDefinitionFresh(typ lang.DataType) {
	for {
		if !p.at(lang.Name) {
			p.error(lang.ErrUnexpectedSymbol, "expected a variable name")
			p.synchronize(lang.Semicolon, lang.RBrace)
			break
		}
		nameIdx := p.cur.arg
		p.advance()
		p.defineVarItem(typ, nameIdx)
		if !p.at(lang.Comma) {
			break
		}
		p.advance()
	}
	p.expect(lang.Semicolon)
}

func (p *Parser) defineVarItem(typ lang.DataType, nameIdx int) {
	name := p.nameText(nameIdx)
	if p.at(lang.LBracket) {
		p.advance()
		bound, ok := p.constBound()
		p.expect(lang.RBracket)
		if !ok {
			return
		}
		if _, ok := p.tab.DefineArray(nameIdx, typ, bound); !ok {
			p.error(lang.ErrRedeclaration, name)
		}
		return
	}
	if _, ok := p.tab.Define(nameIdx, lang.Variable, typ); !ok {
		p.error(lang.ErrRedeclaration, name)
	}
}

// constBound parses an array upper bound: a literal numeral, or a
// previously declared integer constant's name.
func (p *Parser) constBound() (int, bool) {
	switch {
	case p.at(lang.Numeral):
		v := p.cur.arg
		p.advance()
		if v <= 0 {
			p.error(lang.ErrNotConstant, "array bound must be positive")
			return 0, false
		}
		return v, true
	case p.at(lang.Name):
		nameIdx := p.cur.arg
		name := p.nameText(nameIdx)
		obj, found := p.tab.Find(nameIdx)
		p.advance()
		if !found {
			p.error(lang.ErrUnknownName, name)
			return 0, false
		}
		if obj.Kind != lang.Constant || obj.Type != lang.TypeInteger {
			p.error(lang.ErrNotConstant, name)
			return 0, false
		}
		if obj.Value <= 0 {
			p.error(lang.ErrNotConstant, "array bound must be positive")
			return 0, false
		}
		return obj.Value, true
	default:
		p.error(lang.ErrUnexpectedSymbol, "expected an array bound")
		return 0, false
	}
}
