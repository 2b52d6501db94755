package scanner

import (
	"testing"

	"github.com/chittur/parallel-programming-language/internal/lang"
)

func tokens(t *testing.T, src string) []lang.Token {
	t.Helper()
	s := New(NewStringSource(src))
	var out []lang.Token
	for {
		more := s.Advance()
		out = append(out, lang.Token{Symbol: s.CurrentSymbol, Argument: s.Argument, Line: s.LineNumber})
		if !more {
			break
		}
	}
	return out
}

func TestKeywordsAndPunctuation(t *testing.T) {
	toks := tokens(t, "if else while == != <= >= -> { } ;")
	want := []lang.Symbol{
		lang.KwIf, lang.KwElse, lang.KwWhile,
		lang.EqualEqual, lang.NotEqual, lang.LessEqual, lang.GreaterEqual, lang.Arrow,
		lang.LBrace, lang.RBrace, lang.Semicolon, lang.EndOfText,
	}
	if len(toks) != len(want) {
		t.Fatalf("got %d tokens, want %d: %+v", len(toks), len(want), toks)
	}
	for i, w := range want {
		if toks[i].Symbol != w {
			t.Errorf("token %d: got %s, want %s", i, toks[i].Symbol, w)
		}
	}
}

func TestNameTableIsMonotonicPerInstance(t *testing.T) {
	s := New(NewStringSource("foo bar foo"))
	s.Advance()
	first := s.Argument
	s.Advance()
	second := s.Argument
	s.Advance()
	third := s.Argument

	if first == second {
		t.Fatalf("distinct names got the same index: %d", first)
	}
	if first != third {
		t.Fatalf("repeated name got a new index: first=%d third=%d", first, third)
	}
	if s.NameText(first) != "foo" || s.NameText(second) != "bar" {
		t.Fatalf("NameText mismatch: foo=%q bar=%q", s.NameText(first), s.NameText(second))
	}
}

func TestNumeralAndOverflow(t *testing.T) {
	s := New(NewStringSource("42 99999999999999999999"))
	s.Advance()
	if s.CurrentSymbol != lang.Numeral || s.Argument != 42 {
		t.Fatalf("got %s %d, want Numeral 42", s.CurrentSymbol, s.Argument)
	}
	s.Advance()
	if s.CurrentSymbol != lang.IntegerOutOfBounds {
		t.Fatalf("got %s, want IntegerOutOfBounds", s.CurrentSymbol)
	}
}

func TestCommentAndLineTracking(t *testing.T) {
	s := New(NewStringSource("a $ comment\nb"))
	s.Advance()
	if s.LineNumber != 1 {
		t.Fatalf("line = %d, want 1", s.LineNumber)
	}
	s.Advance()
	if s.LineNumber != 2 {
		t.Fatalf("line = %d, want 2", s.LineNumber)
	}
}

func TestUnknownCharacterSkipsToDelimiter(t *testing.T) {
	s := New(NewStringSource("#### foo"))
	s.Advance()
	if s.CurrentSymbol != lang.Unknown {
		t.Fatalf("got %s, want Unknown", s.CurrentSymbol)
	}
	s.Advance()
	if s.CurrentSymbol != lang.Name {
		t.Fatalf("got %s, want Name", s.CurrentSymbol)
	}
}
