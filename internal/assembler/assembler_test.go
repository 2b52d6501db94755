package assembler

import (
	"testing"

	"github.com/chittur/parallel-programming-language/internal/lang"
)

func TestEmitAndBackpatch(t *testing.T) {
	a := New()
	a.Emit(lang.OpConstant, 1)
	doSlot := a.ReserveLabel()
	a.Emit(lang.OpDo, int32(doSlot)) // the cell at doSlot, not this operand, is filled in below by ResolveAddress

	// simulate compiling a then-branch
	a.Emit(lang.OpConstant, 42)
	a.ResolveAddress(doSlot)
	a.Emit(lang.OpEndProgram)

	code := a.Code()
	if code[doSlot] != int32(len(code)-1) {
		t.Fatalf("resolved Do target = %d, want %d", code[doSlot], len(code)-1)
	}
}

func TestCurrentAddressTracksEmission(t *testing.T) {
	a := New()
	if a.CurrentAddress() != 0 {
		t.Fatalf("initial address = %d, want 0", a.CurrentAddress())
	}
	a.Emit(lang.OpConstant, 7)
	if a.CurrentAddress() != 2 {
		t.Fatalf("address after Constant = %d, want 2", a.CurrentAddress())
	}
}

func TestAssemblyTableFull(t *testing.T) {
	a := New()
	for i := 0; i < MaxCode+10; i++ {
		a.Emit(lang.OpEndBlock)
	}
	if !a.Full() {
		t.Fatal("expected Full() once MaxCode is exceeded")
	}
	if len(a.Code()) != MaxCode {
		t.Fatalf("code length = %d, want %d", len(a.Code()), MaxCode)
	}
}
