package lang

// Opcode is an intermediate-code instruction (spec.md §6.2).
type Opcode int32

const (
	OpProgram Opcode = iota
	OpEndProgram
	OpProcedureBlock
	OpEndProcedureBlock
	OpProcedureInvocation
	OpBlock
	OpEndBlock
	OpVariable
	OpReferenceParameter
	OpIndex
	OpConstant
	OpValue
	OpDo
	OpGoto
	OpAssign
	OpReadBoolean
	OpReadInteger
	OpWriteBoolean
	OpWriteInteger
	OpMinus
	OpAdd
	OpSubtract
	OpLess
	OpLessOrEqual
	OpEqual
	OpNotEqual
	OpGreater
	OpGreaterOrEqual
	OpAnd
	OpOr
	OpNot
	OpMultiply
	OpDivide
	OpModulo
	OpPower
	OpOpen
	OpRandomize
	OpSend
	OpReceive
	OpParallel

	opcodeCount
)

var opcodeNames = [...]string{
	"Program",
	"EndProgram",
	"ProcedureBlock",
	"EndProcedureBlock",
	"ProcedureInvocation",
	"Block",
	"EndBlock",
	"Variable",
	"ReferenceParameter",
	"Index",
	"Constant",
	"Value",
	"Do",
	"Goto",
	"Assign",
	"ReadBoolean",
	"ReadInteger",
	"WriteBoolean",
	"WriteInteger",
	"Minus",
	"Add",
	"Subtract",
	"Less",
	"LessOrEqual",
	"Equal",
	"NotEqual",
	"Greater",
	"GreaterOrEqual",
	"And",
	"Or",
	"Not",
	"Multiply",
	"Divide",
	"Modulo",
	"Power",
	"Open",
	"Randomize",
	"Send",
	"Receive",
	"Parallel",
}

// opcodeArity gives the number of integer operands each opcode carries
// (spec.md §6.2). Every emission must match this table exactly: it is both
// the compiler's contract and the interpreter's decode step.
var opcodeArity = [...]int{
	1, // Program
	0, // EndProgram
	1, // ProcedureBlock
	1, // EndProcedureBlock
	2, // ProcedureInvocation
	1, // Block
	0, // EndBlock
	2, // Variable
	2, // ReferenceParameter
	1, // Index
	1, // Constant
	0, // Value
	1, // Do
	1, // Goto
	1, // Assign
	0, // ReadBoolean
	0, // ReadInteger
	0, // WriteBoolean
	0, // WriteInteger
	0, // Minus
	0, // Add
	0, // Subtract
	0, // Less
	0, // LessOrEqual
	0, // Equal
	0, // NotEqual
	0, // Greater
	0, // GreaterOrEqual
	0, // And
	0, // Or
	0, // Not
	0, // Multiply
	0, // Divide
	0, // Modulo
	0, // Power
	0, // Open
	0, // Randomize
	0, // Send
	0, // Receive
	0, // Parallel
}

func (op Opcode) String() string {
	if op >= 0 && int(op) < len(opcodeNames) {
		return opcodeNames[op]
	}
	return "Opcode(?)"
}

// Arity returns the number of operand cells that follow op in the
// intermediate code stream.
func (op Opcode) Arity() int {
	if op >= 0 && int(op) < len(opcodeArity) {
		return opcodeArity[op]
	}
	return 0
}

// Valid reports whether op is a recognized opcode.
func (op Opcode) Valid() bool {
	return op >= 0 && int(op) < int(opcodeCount)
}
