package parser

import (
	"github.com/chittur/parallel-programming-language/internal/lang"
)

// paramSpec is one declared parameter's mode and type.
type paramSpec struct {
	Type lang.DataType
	Mode lang.ObjectKind // ValueParameter or ReferenceParameter
}

// procSignature records a declared procedure's shape, since a call site
// only ever sees its name and must still check arity, modes and types
// (spec.md §4.3, §4.5).
type procSignature struct {
	Params     []paramSpec
	HasReturn  bool
	ReturnType lang.DataType
	// ParamSlots is the total activation-record slots the call must push
	// before ProcedureInvocation, including the return slot if present.
	ParamSlots int
}

// procedureDefinition compiles a void ProcedureDefinition whose name has
// not yet been consumed (the DefinitionPart dispatcher only peeked ahead
// to recognize it).
func (p *Parser) procedureDefinition(returnType lang.DataType) {
	if !p.at(lang.Name) {
		p.error(lang.ErrUnexpectedSymbol, "expected a procedure name")
		return
	}
	nameIdx := p.cur.arg
	p.advance()
	p.finishProcedureDefinition(returnType, nameIdx)
}

// finishProcedureDefinition compiles "(" [ ParamList ] ")" Block, given
// that [ TypeName ] name has already been consumed. Every procedure body
// sits inline in the flat code stream, so it is fenced by an
// unconditional Goto that the enclosing block's normal control flow takes
// to skip straight past the definition (spec.md §9: nothing may ever fall
// through into a procedure body except via ProcedureInvocation).
func (p *Parser) finishProcedureDefinition(returnType lang.DataType, nameIdx int) {
	name := p.nameText(nameIdx)

	gotoSlot := p.emitWithLabel(lang.OpGoto)
	entrySlot := p.asm.ReserveLabel()
	paramSlot := p.asm.ReserveLabel()

	obj, ok := p.tab.DefineProcedure(nameIdx, entrySlot)
	if !ok {
		p.error(lang.ErrRedeclaration, name)
	}
	sig := &procSignature{ReturnType: returnType, HasReturn: returnType != lang.TypeUndefined}
	p.procSigs[obj] = sig

	p.tab.NewBlock(true)
	if sig.HasReturn {
		// The return parameter is bound to the procedure's own name, at
		// displacement 0, shadowing the enclosing Procedure binding for
		// the rest of this body only (classic assign-to-your-own-name
		// function-result convention).
		p.tab.Define(nameIdx, lang.ReturnParameter, returnType)
	}

	p.expect(lang.LParen)
	sig.Params = p.paramList()
	p.expect(lang.RParen)

	paramSlots := p.tab.CurrentNext()
	sig.ParamSlots = paramSlots
	paramBytes := paramSlots
	if sig.HasReturn {
		paramBytes--
	}
	encoded := int32(paramBytes)
	if sig.HasReturn {
		encoded = -(encoded + 1)
	}
	p.asm.ResolveArgument(paramSlot, encoded)

	entryAddr := p.asm.CurrentAddress()
	procBlockSlot := p.emitWithLabel(lang.OpProcedureBlock)
	p.asm.ResolveArgument(entrySlot, int32(entryAddr))

	p.expect(lang.LBrace)
	p.definitionPart()
	p.statementPart()
	p.expect(lang.RBrace)

	totalSlots := p.tab.EndBlock()
	p.asm.ResolveArgument(procBlockSlot, int32(totalSlots-paramSlots))
	p.asm.Emit(lang.OpEndProcedureBlock, encoded)

	p.asm.ResolveAddress(gotoSlot)
}

func (p *Parser) paramList() []paramSpec {
	var params []paramSpec
	if p.at(lang.RParen) {
		return params
	}
	for {
		ref := false
		if p.at(lang.KwReference) {
			ref = true
			p.advance()
		}
		switch p.cur.sym {
		case lang.KwInteger, lang.KwBoolean, lang.KwChannel:
			typ := typeNameOf(p.cur.sym)
			p.advance()
			if !p.at(lang.Name) {
				p.error(lang.ErrUnexpectedSymbol, "expected a parameter name")
			} else {
				nameIdx := p.cur.arg
				name := p.nameText(nameIdx)
				p.advance()
				kind := lang.ValueParameter
				if ref {
					kind = lang.ReferenceParameter
				}
				if _, ok := p.tab.Define(nameIdx, kind, typ); !ok {
					p.error(lang.ErrRedeclaration, name)
				}
				params = append(params, paramSpec{Type: typ, Mode: kind})
			}
		default:
			p.error(lang.ErrUnexpectedSymbol, "expected a parameter type")
			p.synchronize(lang.Comma, lang.RParen)
		}
		if !p.at(lang.Comma) {
			break
		}
		p.advance()
	}
	return params
}

// compileCall compiles "name" "(" [ ArgList ] ")", the shared core of a
// CallStatement, a "parallel" invocation and a function-call Factor. It
// emits the return-value placeholder (if any), each argument, and finally
// ProcedureInvocation (with a trailing Parallel marker when asParallel is
// true, spec.md §9's "ProcedureInvocation followed by Parallel" pairing).
func (p *Parser) compileCall(asParallel bool) (retType lang.DataType, isFunc bool) {
	nameIdx := p.cur.arg
	name := p.nameText(nameIdx)
	p.advance()

	obj, found := p.tab.Find(nameIdx)
	if found && obj.Kind != lang.Procedure {
		p.error(lang.ErrWrongKind, name+" is not a procedure")
		found = false
	} else if !found {
		p.error(lang.ErrUnknownName, name)
	}
	sig := p.procSigs[obj]

	p.expect(lang.LParen)

	if sig != nil && sig.HasReturn {
		p.asm.Emit(lang.OpConstant, 0)
	}

	argCount := 0
	if !p.at(lang.RParen) {
		for {
			p.compileArg(sig, argCount, name)
			argCount++
			if !p.at(lang.Comma) {
				break
			}
			p.advance()
		}
	}
	p.expect(lang.RParen)

	if sig != nil && argCount != len(sig.Params) {
		p.error(lang.ErrWrongArity, name)
	}

	level := int32(0)
	entrySlot := int32(0)
	if found {
		level = p.hops(obj.Level)
		entrySlot = int32(obj.Value)
	}
	p.asm.Emit(lang.OpProcedureInvocation, level, entrySlot)
	if asParallel {
		p.asm.Emit(lang.OpParallel)
	}

	if sig != nil {
		return sig.ReturnType, sig.HasReturn
	}
	return lang.TypeUniversal, false
}

func (p *Parser) compileArg(sig *procSignature, index int, procName string) {
	wantRef := false
	if p.at(lang.KwReference) {
		wantRef = true
		p.advance()
	}

	var argType lang.DataType
	if wantRef {
		if !p.at(lang.Name) {
			p.error(lang.ErrUnexpectedSymbol, "expected a variable after 'reference'")
			p.asm.Emit(lang.OpConstant, 0)
			argType = lang.TypeUniversal
		} else {
			argType = p.objectAccess(false)
		}
	} else {
		argType = p.expression()
	}

	if sig == nil || index >= len(sig.Params) {
		return
	}
	want := sig.Params[index]
	if wantRef != (want.Mode == lang.ReferenceParameter) {
		p.error(lang.ErrReferenceModeMismatch, procName)
	}
	if !lang.Compatible(argType, want.Type) {
		p.error(lang.ErrTypeMismatch, procName)
	}
}

// callStatement compiles a plain "name(...);" statement. A procedure with
// a return parameter must be called as an expression (a Factor), not as a
// bare statement, since a statement-level call leaves nothing on the
// stack to receive the result into.
func (p *Parser) callStatement() {
	_, isFunc := p.compileCall(false)
	if isFunc {
		p.error(lang.ErrWrongKind, "function result unused; call it as an expression")
	}
	p.expect(lang.Semicolon)
}

// parallelStatement compiles "parallel" name "(" ... ")" ";", spawning the
// call as an independent node (spec.md §5). Spawning a function whose
// result nothing can receive is rejected for the same reason as
// callStatement.
func (p *Parser) parallelStatement() {
	p.advance() // "parallel"
	if !p.at(lang.Name) {
		p.error(lang.ErrUnexpectedSymbol, "expected a procedure call")
		p.synchronize(lang.Semicolon, lang.RBrace)
		p.expect(lang.Semicolon)
		return
	}
	_, isFunc := p.compileCall(true)
	if isFunc {
		p.error(lang.ErrWrongKind, "a parallel call cannot have a return value")
	}
	p.expect(lang.Semicolon)
}
