// Package report collects per-line compile-time diagnostics and formats
// them on demand. It has no recovery logic of its own — recovery is the
// parser's job (spec.md §4.2) — it is purely an accumulator.
package report

import (
	"fmt"
	"io"
	"sort"

	"github.com/chittur/parallel-programming-language/internal/lang"
)

// Entry is one recorded diagnostic.
type Entry struct {
	Line     int
	Category lang.ErrorCategory
	Detail   string // optional extra context, e.g. the offending name
}

// Report accumulates Entry values for a single compilation.
type Report struct {
	entries []Entry
	seen    map[int]map[lang.ErrorCategory]bool
}

// New returns an empty Report.
func New() *Report {
	return &Report{seen: make(map[int]map[lang.ErrorCategory]bool)}
}

// Add records a diagnostic. For lexical/syntactic categories, the same
// category on the same line is recorded at most once; semantic and
// internal categories are always recorded (spec.md §4.2).
func (r *Report) Add(line int, category lang.ErrorCategory, detail string) {
	if category.Dedupe() {
		byLine := r.seen[line]
		if byLine == nil {
			byLine = make(map[lang.ErrorCategory]bool)
			r.seen[line] = byLine
		}
		if byLine[category] {
			return
		}
		byLine[category] = true
	}
	r.entries = append(r.entries, Entry{Line: line, Category: category, Detail: detail})
}

// HasErrors reports whether any diagnostic has been recorded.
func (r *Report) HasErrors() bool {
	return len(r.entries) > 0
}

// Entries returns the recorded diagnostics in recording order.
func (r *Report) Entries() []Entry {
	out := make([]Entry, len(r.entries))
	copy(out, r.entries)
	return out
}

// SortedByLine returns the recorded diagnostics sorted by line, stable on
// recording order within a line. Useful for formatting a conformance run
// for a human reader.
func (r *Report) SortedByLine() []Entry {
	out := r.Entries()
	sort.SliceStable(out, func(i, j int) bool { return out[i].Line < out[j].Line })
	return out
}

// Format writes a default, one-line-per-entry textual rendering of the
// report to w. Textual error formatting proper belongs to an external
// collaborator (spec.md §1); this is only the minimal default the CLI falls
// back on, in the same spirit as the teacher's ErrAsm.Error() default
// formatter.
func (r *Report) Format(w io.Writer) error {
	for _, e := range r.SortedByLine() {
		var err error
		if e.Detail != "" {
			_, err = fmt.Fprintf(w, "line %d: %s: %s\n", e.Line, e.Category, e.Detail)
		} else {
			_, err = fmt.Fprintf(w, "line %d: %s\n", e.Line, e.Category)
		}
		if err != nil {
			return err
		}
	}
	return nil
}
