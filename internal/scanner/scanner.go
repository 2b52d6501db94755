// Package scanner implements the source language's lexer: one-symbol
// lookahead over a CharSource, producing (Symbol, Argument) token pairs
// (spec.md §4.1).
package scanner

import (
	"math"

	"github.com/chittur/parallel-programming-language/internal/lang"
)

// Scanner produces a stream of tokens from a CharSource. The zero value is
// not usable; construct with New.
type Scanner struct {
	src CharSource

	CurrentSymbol lang.Symbol
	Argument      int
	LineNumber    int
	LineIsCorrect bool

	// names is the per-instance, monotonic word table (spec.md §9's design
	// note: this counter must not be a package global, or two concurrent
	// compilations would corrupt each other's Name indices).
	names    map[string]int
	nameList []string
}

// New returns a Scanner reading from src. Call Advance to load the first
// token before consulting CurrentSymbol.
func New(src CharSource) *Scanner {
	return &Scanner{
		src:           src,
		LineNumber:    1,
		LineIsCorrect: true,
		names:         make(map[string]int),
	}
}

// NameText returns the spelling that was assigned word-table index idx, or
// "" if idx is out of range. Used by diagnostics to print a Name token's
// spelling.
func (s *Scanner) NameText(idx int) string {
	if idx < 0 || idx >= len(s.nameList) {
		return ""
	}
	return s.nameList[idx]
}

func isDelimiter(b byte) bool {
	switch b {
	case ' ', '\t', '\r', '\n', '$':
		return true
	}
	return false
}

func isLetter(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

func isIdentTail(b byte) bool {
	return isLetter(b) || isDigit(b) || b == '_'
}

// Advance scans and loads the next token into CurrentSymbol/Argument. It
// returns false only when the token it just produced is EndOfText.
func (s *Scanner) Advance() bool {
	s.skipDelimiters()

	b, ok := s.src.Peek()
	if !ok {
		s.CurrentSymbol = lang.EndOfText
		s.Argument = 0
		return false
	}

	switch {
	case isLetter(b):
		s.scanIdent()
	case isDigit(b):
		s.scanNumeral()
	default:
		s.scanPunctuation()
	}
	return true
}

// skipDelimiters consumes whitespace and $-to-end-of-line comments,
// tracking line numbers and resetting LineIsCorrect on each new line
// (spec.md §4.1 step 1).
func (s *Scanner) skipDelimiters() {
	for {
		b, ok := s.src.Peek()
		if !ok {
			return
		}
		switch b {
		case ' ', '\t', '\r':
			s.src.Read()
		case '\n':
			s.src.Read()
			s.LineNumber++
			s.LineIsCorrect = true
		case '$':
			for {
				b, ok := s.src.Peek()
				if !ok || b == '\n' {
					break
				}
				s.src.Read()
			}
		default:
			return
		}
	}
}

func (s *Scanner) scanIdent() {
	buf := make([]byte, 0, 16)
	for {
		b, ok := s.src.Peek()
		if !ok || !isIdentTail(b) {
			break
		}
		s.src.Read()
		buf = append(buf, b)
	}
	spelling := string(buf)

	if kw, ok := lang.Keywords[spelling]; ok {
		s.CurrentSymbol = kw
		s.Argument = 0
		return
	}

	if idx, ok := s.names[spelling]; ok {
		s.CurrentSymbol = lang.Name
		s.Argument = idx
		return
	}

	idx := len(s.nameList)
	s.names[spelling] = idx
	s.nameList = append(s.nameList, spelling)
	s.CurrentSymbol = lang.Name
	s.Argument = idx
}

func (s *Scanner) scanNumeral() {
	var value int64
	overflow := false
	for {
		b, ok := s.src.Peek()
		if !ok || !isDigit(b) {
			break
		}
		s.src.Read()
		value = value*10 + int64(b-'0')
		if value > math.MaxInt32 {
			overflow = true
		}
	}
	if overflow {
		s.CurrentSymbol = lang.IntegerOutOfBounds
		s.Argument = 0
		return
	}
	s.CurrentSymbol = lang.Numeral
	s.Argument = int(value)
}

// twoCharOps lists the digraphs that need one byte of extra lookahead.
var twoCharOps = map[byte]map[byte]lang.Symbol{
	'=': {'=': lang.EqualEqual},
	'!': {'=': lang.NotEqual},
	'<': {'=': lang.LessEqual},
	'>': {'=': lang.GreaterEqual},
	'-': {'>': lang.Arrow},
}

var singleCharOps = map[byte]lang.Symbol{
	';': lang.Semicolon,
	',': lang.Comma,
	'@': lang.At,
	'(': lang.LParen,
	')': lang.RParen,
	'{': lang.LBrace,
	'}': lang.RBrace,
	'[': lang.LBracket,
	']': lang.RBracket,
	'=': lang.Equals,
	'<': lang.Less,
	'>': lang.Greater,
	'+': lang.Plus,
	'-': lang.Minus,
	'*': lang.Star,
	'/': lang.Slash,
	'%': lang.Percent,
	'^': lang.Caret,
	'&': lang.Amp,
	'|': lang.Pipe,
	'!': lang.Bang,
}

func (s *Scanner) scanPunctuation() {
	b, _ := s.src.Read()

	if seconds, ok := twoCharOps[b]; ok {
		if next, ok2 := s.src.Peek(); ok2 {
			if sym, ok3 := seconds[next]; ok3 {
				s.src.Read()
				s.CurrentSymbol = sym
				s.Argument = 0
				return
			}
		}
	}

	if sym, ok := singleCharOps[b]; ok {
		s.CurrentSymbol = sym
		s.Argument = 0
		return
	}

	// Unrecognised lead character: skip ahead to the next delimiter and
	// report Unknown (spec.md §4.1 step 5, §4.2).
	for {
		nb, ok := s.src.Peek()
		if !ok || isDelimiter(nb) {
			break
		}
		s.src.Read()
	}
	s.CurrentSymbol = lang.Unknown
	s.Argument = 0
}
