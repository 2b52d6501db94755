package report

import (
	"strings"
	"testing"

	"github.com/chittur/parallel-programming-language/internal/lang"
)

func TestDeduplicatesOnlyWithinDedupedCategoriesOnSameLine(t *testing.T) {
	r := New()
	r.Add(3, lang.ErrUnknownCharacter, "")
	r.Add(3, lang.ErrUnknownCharacter, "")
	r.Add(3, lang.ErrRedeclaration, "x")
	r.Add(4, lang.ErrUnknownCharacter, "")

	entries := r.Entries()
	if len(entries) != 3 {
		t.Fatalf("got %d entries, want 3 (one dedupe, two distinct): %+v", len(entries), entries)
	}
}

func TestSemanticAndInternalCategoriesAreNeverDeduped(t *testing.T) {
	r := New()
	for i := 0; i < 3; i++ {
		r.Add(10, lang.ErrRedeclaration, "y")
	}
	if len(r.Entries()) != 3 {
		t.Fatalf("got %d entries, want 3: %+v", len(r.Entries()), r.Entries())
	}
}

func TestHasErrors(t *testing.T) {
	r := New()
	if r.HasErrors() {
		t.Fatal("a fresh report must report no errors")
	}
	r.Add(1, lang.ErrRedeclaration, "")
	if !r.HasErrors() {
		t.Fatal("expected HasErrors to be true after Add")
	}
}

func TestSortedByLineIsStableWithinALine(t *testing.T) {
	r := New()
	r.Add(5, lang.ErrRedeclaration, "second-added")
	r.Add(2, lang.ErrRedeclaration, "only-at-line-2")
	r.Add(5, lang.ErrUnknownCharacter, "third-added")

	sorted := r.SortedByLine()
	if len(sorted) != 3 {
		t.Fatalf("got %d entries, want 3", len(sorted))
	}
	if sorted[0].Line != 2 {
		t.Fatalf("first entry line = %d, want 2", sorted[0].Line)
	}
	if sorted[1].Detail != "second-added" || sorted[2].Detail != "third-added" {
		t.Fatalf("entries at line 5 out of recording order: %+v", sorted[1:])
	}
}

func TestFormatWritesOneLinePerEntry(t *testing.T) {
	r := New()
	r.Add(7, lang.ErrRedeclaration, "x")
	var buf strings.Builder
	if err := r.Format(&buf); err != nil {
		t.Fatalf("Format: %v", err)
	}
	got := buf.String()
	if !strings.Contains(got, "line 7") || !strings.Contains(got, "x") {
		t.Fatalf("Format output missing expected content: %q", got)
	}
}
