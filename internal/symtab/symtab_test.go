package symtab

import (
	"testing"

	"github.com/chittur/parallel-programming-language/internal/lang"
)

func TestDefineAndFindAcrossScopes(t *testing.T) {
	tab := New()
	tab.NewBlock(true) // level 0
	xObj, ok := tab.Define(0 /* x */, lang.Variable, lang.TypeInteger)
	if !ok {
		t.Fatal("unexpected redeclaration")
	}
	if xObj.Displacement != 0 {
		t.Fatalf("x displacement = %d, want 0", xObj.Displacement)
	}

	tab.NewBlock(true) // level 1
	if _, ok := tab.Find(0); !ok {
		t.Fatal("x should be visible from the inner scope")
	}
	yObj, _ := tab.Define(1 /* y */, lang.Variable, lang.TypeInteger)
	if yObj.Displacement != 0 {
		t.Fatalf("y displacement = %d, want 0 (fresh scope)", yObj.Displacement)
	}
	n := tab.EndBlock()
	if n != 1 {
		t.Fatalf("EndBlock = %d, want 1", n)
	}

	if _, ok := tab.Find(1); ok {
		t.Fatal("y should not be visible once its scope is popped")
	}
	if _, ok := tab.Find(42); ok {
		t.Fatal("unknown name should not resolve")
	}
	if obj, _ := tab.Find(42); obj != Unknown {
		t.Fatal("failed lookup must return the Unknown sentinel")
	}
}

func TestRedeclarationRejected(t *testing.T) {
	tab := New()
	tab.NewBlock(true)
	tab.Define(0, lang.Variable, lang.TypeInteger)
	_, ok := tab.Define(0, lang.Variable, lang.TypeInteger)
	if ok {
		t.Fatal("redeclaration in the same scope must fail")
	}
}

func TestArrayAllocatesUpperBoundSlots(t *testing.T) {
	tab := New()
	tab.NewBlock(true)
	tab.Define(0, lang.Variable, lang.TypeInteger) // displacement 0
	arr, ok := tab.DefineArray(1, lang.TypeInteger, 5)
	if !ok {
		t.Fatal("unexpected redeclaration")
	}
	if arr.Displacement != 1 {
		t.Fatalf("array displacement = %d, want 1", arr.Displacement)
	}
	if arr.Value != 5 {
		t.Fatalf("array upper bound = %d, want 5", arr.Value)
	}
	next, _ := tab.Define(2, lang.Variable, lang.TypeInteger)
	if next.Displacement != 6 {
		t.Fatalf("next displacement = %d, want 6", next.Displacement)
	}
}

func TestEndBlockReturnsAllocatedCount(t *testing.T) {
	tab := New()
	tab.NewBlock(true)
	tab.Define(0, lang.Variable, lang.TypeInteger)
	tab.DefineArray(1, lang.TypeInteger, 3)
	if n := tab.EndBlock(); n != 4 {
		t.Fatalf("EndBlock = %d, want 4", n)
	}
}
