package vm

import (
	"testing"

	"github.com/chittur/parallel-programming-language/internal/lang"
)

// stubWriter records every WriteInt/WriteBool call it receives, in order.
type stubWriter struct {
	ints  []int32
	bools []bool
}

func (w *stubWriter) WriteInt(v int32) error  { w.ints = append(w.ints, v); return nil }
func (w *stubWriter) WriteBool(v bool) error  { w.bools = append(w.bools, v); return nil }

func TestEmptyProgramHalts(t *testing.T) {
	code := []int32{int32(lang.OpProgram), 0, int32(lang.OpEndProgram)}
	m, err := New(code)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := m.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
}

func TestArithmeticAndWrite(t *testing.T) {
	// Program 0; Constant 2; Constant 3; Add; WriteInteger; EndProgram
	code := []int32{
		int32(lang.OpProgram), 0,
		int32(lang.OpConstant), 2,
		int32(lang.OpConstant), 3,
		int32(lang.OpAdd),
		int32(lang.OpWriteInteger),
		int32(lang.OpEndProgram),
	}
	out := &stubWriter{}
	m, err := New(code, WithOutput(out))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := m.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(out.ints) != 1 || out.ints[0] != 5 {
		t.Fatalf("got %v, want [5]", out.ints)
	}
}

func TestArrayIndexOutOfBoundsIsFatal(t *testing.T) {
	// Program 5; Variable 0 0 (base of a 5-slot array at disp 0); Constant 7
	// (out-of-range index); Index 5; EndProgram
	code := []int32{
		int32(lang.OpProgram), 5,
		int32(lang.OpVariable), 0, 0,
		int32(lang.OpConstant), 7,
		int32(lang.OpIndex), 5,
		int32(lang.OpEndProgram),
	}
	m, err := New(code)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := m.Run(); err == nil {
		t.Fatal("expected an out-of-bounds index to be a fatal runtime error")
	}
}

func TestDivisionByZeroIsFatal(t *testing.T) {
	code := []int32{
		int32(lang.OpProgram), 0,
		int32(lang.OpConstant), 9,
		int32(lang.OpConstant), 0,
		int32(lang.OpDivide),
		int32(lang.OpEndProgram),
	}
	m, err := New(code)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := m.Run(); err == nil {
		t.Fatal("expected division by zero to be a fatal runtime error")
	}
}

func TestNegativeExponentIsFatal(t *testing.T) {
	code := []int32{
		int32(lang.OpProgram), 0,
		int32(lang.OpConstant), 2,
		int32(lang.OpConstant), -1,
		int32(lang.OpPower),
		int32(lang.OpEndProgram),
	}
	m, err := New(code)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := m.Run(); err == nil {
		t.Fatal("expected a negative exponent to be a fatal runtime error")
	}
}

// TestFunctionCallReturnValueLandsInCallersReservedSlot hand-assembles the
// equivalent of:
//
//	{
//	    integer identity(integer n) { identity = n; }
//	    integer r;
//	    r = identity(5);
//	}
//
// and checks two things the calling convention depends on: the return
// value lands exactly where the caller's placeholder was reserved (so a
// call-as-expression nets exactly one stack cell), and the callee's own
// parameter lands at displacement 1, not displacement 0, since 0 is
// reserved for the return parameter.
func TestFunctionCallReturnValueLandsInCallersReservedSlot(t *testing.T) {
	const (
		idxVarR     = 2 // Variable 0 0  (address of r)
		idxRetSlot  = 5 // Constant 0    (return placeholder)
		idxArg      = 7 // Constant 5
		idxInvoke   = 9 // ProcedureInvocation 0 15
		idxAssign   = 12
		idxEndProg  = 14
		idxEntryRec = 15 // [entryAddr, encoded]
		idxProcBody = 17
	)
	code := make([]int32, 30)
	code[0], code[1] = int32(lang.OpProgram), 1
	code[idxVarR], code[idxVarR+1], code[idxVarR+2] = int32(lang.OpVariable), 0, 0
	code[idxRetSlot], code[idxRetSlot+1] = int32(lang.OpConstant), 0
	code[idxArg], code[idxArg+1] = int32(lang.OpConstant), 5
	code[idxInvoke], code[idxInvoke+1], code[idxInvoke+2] = int32(lang.OpProcedureInvocation), 0, idxEntryRec
	code[idxAssign], code[idxAssign+1] = int32(lang.OpAssign), 1
	code[idxEndProg] = int32(lang.OpEndProgram)
	code[idxEntryRec] = idxProcBody       // resolved entry address
	code[idxEntryRec+1] = -2              // encoded: hasReturn, 1 actual param
	code[idxProcBody], code[idxProcBody+1] = int32(lang.OpProcedureBlock), 0
	// identity = n;
	code[19], code[20], code[21] = int32(lang.OpVariable), 0, 0 // address of return slot (disp 0)
	code[22], code[23], code[24] = int32(lang.OpVariable), 0, 1 // address of n (disp 1)
	code[25] = int32(lang.OpValue)
	code[26], code[27] = int32(lang.OpAssign), 1
	code[28], code[29] = int32(lang.OpEndProcedureBlock), -2

	m, err := New(code)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := m.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	// r lives at displacement 0 of the program's own frame: S[B+headerSize].
	got := m.s[m.b+headerSize]
	if got != 5 {
		t.Fatalf("r = %d, want 5", got)
	}
	// The call must not have leaked a stack cell: the machine halts with T
	// exactly at the top of the program's own declared slots.
	wantTop := m.b + headerSize // one slot (r) declared, top is its address
	if m.t != wantTop {
		t.Fatalf("T = %d, want %d (a leaked or under-popped stack cell)", m.t, wantTop)
	}
}

func TestBooleanShortCircuitIsNotRequired(t *testing.T) {
	// Constant true; Constant false; And; WriteBoolean; EndProgram
	code := []int32{
		int32(lang.OpProgram), 0,
		int32(lang.OpConstant), 1,
		int32(lang.OpConstant), 0,
		int32(lang.OpAnd),
		int32(lang.OpWriteBoolean),
		int32(lang.OpEndProgram),
	}
	out := &stubWriter{}
	m, err := New(code, WithOutput(out))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := m.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(out.bools) != 1 || out.bools[0] != false {
		t.Fatalf("got %v, want [false]", out.bools)
	}
}
