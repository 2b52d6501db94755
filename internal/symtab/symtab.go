// Package symtab implements the block-structured symbol table: a stack of
// lexical scopes, object records, and address allocation (spec.md §4.3).
//
// Two different notions of "nesting" are tracked deliberately: the scope
// stack (one entry per '{', used for name visibility and shadowing) and the
// frame level (incremented only when entering the program body or a
// procedure body, used for the static-link hop counts the code generator
// emits). A plain nested block — the body of an if or while, for instance —
// pushes a new scope but does not start a new activation record, so its
// declarations continue allocating displacements in the enclosing
// procedure's frame rather than restarting at 0.
package symtab

import "github.com/chittur/parallel-programming-language/internal/lang"

// Object is one declared name's record (spec.md §3).
type Object struct {
	Kind lang.ObjectKind
	Type lang.DataType

	// Displacement is the slot offset within its activation record, for
	// Variable, Array, ValueParameter, ReferenceParameter and
	// ReturnParameter. Unused (0) for Constant and Procedure.
	Displacement int

	// Value is: the compile-time value, for Constant; the upper bound, for
	// Array; the patch-target slot holding the procedure's entry address,
	// for Procedure. Unused (0) otherwise.
	Value int

	// Level is the frame level (not lexical block depth) at which the
	// object was declared: the number of enclosing procedure/program
	// bodies, not counting plain nested blocks. It is what the code
	// generator subtracts from the current frame level to get a
	// static-link hop count.
	Level     int
	NameIndex int
}

// Unknown is the sentinel "universal" object returned by Find on lookup
// failure, so the caller (almost always the type checker) can keep
// evaluating without cascading further errors (spec.md §4.3, §9).
var Unknown = &Object{Kind: lang.Undefined, Type: lang.TypeUniversal, Level: -1}

type scope struct {
	objects    map[int]*Object
	start      int
	next       int
	freshFrame bool
}

// Table is a stack of scopes plus the current frame level.
type Table struct {
	scopes     []*scope
	frameLevel int
}

// New returns an empty Table with no open scopes.
func New() *Table {
	return &Table{frameLevel: -1}
}

// NewBlock pushes a new, empty scope. freshFrame is true when entering the
// program body or a procedure body (a new activation record at runtime);
// it is false for a plain nested block (if/while body, or a bare `{ }`),
// which shares its enclosing frame and continues that frame's displacement
// counter rather than restarting at 0.
func (t *Table) NewBlock(freshFrame bool) {
	start := 0
	if !freshFrame && len(t.scopes) > 0 {
		start = t.scopes[len(t.scopes)-1].next
	}
	if freshFrame {
		t.frameLevel++
	}
	t.scopes = append(t.scopes, &scope{
		objects:    make(map[int]*Object),
		start:      start,
		next:       start,
		freshFrame: freshFrame,
	})
}

// EndBlock pops the innermost scope and returns the number of object slots
// *this* block allocated (the Block/ProcedureBlock operand, spec.md §4.5) —
// not the cumulative frame total, since plain nested blocks share their
// enclosing frame's counter.
func (t *Table) EndBlock() int {
	n := len(t.scopes)
	s := t.scopes[n-1]
	t.scopes = t.scopes[:n-1]
	if s.freshFrame {
		t.frameLevel--
	}
	return s.next - s.start
}

// Level returns the current frame level: -1 if no block is open, 0 inside
// the program body, 1 inside a directly-nested procedure body, and so on.
// Plain nested blocks do not change it.
func (t *Table) Level() int {
	return t.frameLevel
}

func (t *Table) topScope() *scope {
	return t.scopes[len(t.scopes)-1]
}

// CurrentNext returns the innermost scope's next-free displacement
// counter, i.e. how many slots it has allocated so far. Used by procedure
// definitions to split a frame's total slot count into its parameter
// prefix and its local suffix once the parameter list has been declared
// but the body's own locals have not yet been parsed.
func (t *Table) CurrentNext() int {
	return t.topScope().next
}

// Define adds a new scalar object (Variable or a parameter kind) to the
// innermost scope. ok is false, and the existing object is returned, if
// nameIndex is already declared in that scope (redeclaration, spec.md
// §4.3).
func (t *Table) Define(nameIndex int, kind lang.ObjectKind, typ lang.DataType) (obj *Object, ok bool) {
	s := t.topScope()
	if existing, dup := s.objects[nameIndex]; dup {
		return existing, false
	}
	obj = &Object{
		Kind:      kind,
		Type:      typ,
		Level:     t.frameLevel,
		NameIndex: nameIndex,
	}
	switch kind {
	case lang.Variable, lang.ValueParameter, lang.ReferenceParameter, lang.ReturnParameter:
		obj.Displacement = s.next
		s.next++
	}
	s.objects[nameIndex] = obj
	return obj, true
}

// DefineConstant adds a compile-time constant to the innermost scope.
func (t *Table) DefineConstant(nameIndex int, typ lang.DataType, value int) (*Object, bool) {
	obj, ok := t.Define(nameIndex, lang.Constant, typ)
	if ok {
		obj.Value = value
	}
	return obj, ok
}

// DefineArray adds an array of the given element type and 1-based inclusive
// upper bound, allocating upperBound contiguous slots.
func (t *Table) DefineArray(nameIndex int, elemType lang.DataType, upperBound int) (*Object, bool) {
	s := t.topScope()
	if existing, dup := s.objects[nameIndex]; dup {
		return existing, false
	}
	obj := &Object{
		Kind:         lang.Array,
		Type:         elemType,
		Level:        t.frameLevel,
		NameIndex:    nameIndex,
		Displacement: s.next,
		Value:        upperBound,
	}
	s.next += upperBound
	s.objects[nameIndex] = obj
	return obj, true
}

// DefineProcedure adds a procedure name bound to the assembler patch slot
// entrySlot that will later hold its entry-address/param-size record.
// Procedures consume no activation-record slot in the scope that declares
// them.
func (t *Table) DefineProcedure(nameIndex int, entrySlot int) (*Object, bool) {
	s := t.topScope()
	if existing, dup := s.objects[nameIndex]; dup {
		return existing, false
	}
	obj := &Object{
		Kind:      lang.Procedure,
		Type:      lang.TypeUndefined,
		Level:     t.frameLevel,
		NameIndex: nameIndex,
		Value:     entrySlot,
	}
	s.objects[nameIndex] = obj
	return obj, true
}

// Find searches the scope stack innermost-out for nameIndex. If not found,
// it returns the Unknown sentinel and false.
func (t *Table) Find(nameIndex int) (*Object, bool) {
	for i := len(t.scopes) - 1; i >= 0; i-- {
		if obj, ok := t.scopes[i].objects[nameIndex]; ok {
			return obj, true
		}
	}
	return Unknown, false
}
