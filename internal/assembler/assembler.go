// Package assembler implements the append-only intermediate-code emitter
// with label back-patching (spec.md §4.4).
package assembler

import "github.com/chittur/parallel-programming-language/internal/lang"

// MaxCode bounds the emitted intermediate code (spec.md §4.4). Code beyond
// this point cannot be emitted; callers should check Full() after every
// Emit/ReserveLabel and stop compiling the current block once it trips.
const MaxCode = 10000

const growChunk = 1024

// Assembler is an append-only store of intermediate-code cells.
type Assembler struct {
	code []int32
	full bool
}

// New returns an empty Assembler.
func New() *Assembler {
	return &Assembler{}
}

// Full reports whether the assembler has hit MaxCode. Once true, Emit and
// ReserveLabel stop growing the code and the caller must report
// lang.ErrAssemblyTableFull (an internal error, spec.md §4.4, §7).
func (a *Assembler) Full() bool {
	return a.full
}

// CurrentAddress returns the next free index, i.e. the address the next
// emitted cell will occupy.
func (a *Assembler) CurrentAddress() int {
	return len(a.code)
}

// Code returns the emitted intermediate code so far. The caller must treat
// it as read-only.
func (a *Assembler) Code() []int32 {
	return a.code
}

func (a *Assembler) append(v int32) {
	if a.full {
		return
	}
	if len(a.code) >= MaxCode {
		a.full = true
		return
	}
	if cap(a.code) == len(a.code) {
		grow := growChunk
		if cap(a.code)+grow > MaxCode {
			grow = MaxCode - cap(a.code)
		}
		newCode := make([]int32, len(a.code), cap(a.code)+grow)
		copy(newCode, a.code)
		a.code = newCode
	}
	a.code = append(a.code, v)
}

// Emit appends op followed by its operands. The caller is responsible for
// passing exactly op.Arity() operands; this invariant is checked by the
// parser's own opcode tables and exercised by tests, not re-validated here
// (the assembler is a leaf component with no knowledge of the grammar).
func (a *Assembler) Emit(op lang.Opcode, operands ...int32) {
	a.append(int32(op))
	for _, v := range operands {
		a.append(v)
	}
}

// ReserveLabel appends a placeholder zero cell and returns its address, to
// be filled in later by ResolveAddress or ResolveArgument once the target
// is known (spec.md §4.4).
func (a *Assembler) ReserveLabel() int {
	slot := len(a.code)
	a.append(0)
	return slot
}

// ResolveAddress writes the assembler's current address into the
// previously reserved slot.
func (a *Assembler) ResolveAddress(slot int) {
	a.ResolveArgument(slot, int32(a.CurrentAddress()))
}

// ResolveArgument writes an arbitrary value into a previously reserved
// slot.
func (a *Assembler) ResolveArgument(slot int, value int32) {
	if slot < 0 || slot >= len(a.code) {
		return
	}
	a.code[slot] = value
}
