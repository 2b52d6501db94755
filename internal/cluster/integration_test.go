package cluster

import (
	"bytes"
	"testing"

	"github.com/chittur/parallel-programming-language/internal/icode"
	"github.com/chittur/parallel-programming-language/internal/parser"
	"github.com/chittur/parallel-programming-language/internal/scanner"
)

// intStubReader feeds a fixed sequence of integers to ReadInteger, the shape
// of input the §8 end-to-end scenarios drive through stdin.
type intStubReader struct {
	vals []int32
	i    int
}

func (r *intStubReader) ReadInt() (int32, error) {
	v := r.vals[r.i]
	r.i++
	return v, nil
}

func (r *intStubReader) ReadBool() (bool, error) {
	panic("not used by these fixtures")
}

// runSource compiles src, round-trips it through the intermediate-code file
// format, and runs it through cluster.Run, exercising the full
// compile-to-execute pipeline the CLI drives (spec.md §8's end-to-end
// scenarios are all of this shape: source, stdin, stdout).
func runSource(t *testing.T, src string, stdin []int32) []int32 {
	t.Helper()
	res := parser.Compile(scanner.NewStringSource(src))
	if !res.Success {
		t.Fatalf("compile failed: %+v", res.Report.Entries())
	}

	var buf bytes.Buffer
	if err := icode.Write(&buf, res.Code); err != nil {
		t.Fatalf("icode.Write: %v", err)
	}
	roundTripped, err := icode.Read(&buf)
	if err != nil {
		t.Fatalf("icode.Read: %v", err)
	}

	out := newCollectWriter()
	err = Run(roundTripped, Options{
		Input:  &intStubReader{vals: stdin},
		Output: out,
		Seed:   1,
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	return out.ints
}

func TestFactorialByValueEndToEnd(t *testing.T) {
	const src = `{
		integer factorial(integer n) {
			if (n <= 1) {
				factorial = 1;
			} else {
				factorial = n * factorial(n - 1);
			}
		}
		integer n, result;
		read(n);
		result = factorial(n);
		write(result);
	}`
	got := runSource(t, src, []int32{5})
	if len(got) != 1 || got[0] != 120 {
		t.Fatalf("got %v, want [120]", got)
	}
}

func TestFactorialByReferenceEndToEnd(t *testing.T) {
	const src = `{
		factorial(integer n, reference integer result) {
			if (n <= 1) {
				result = 1;
			} else {
				integer sub;
				factorial(n - 1, reference sub);
				result = n * sub;
			}
		}
		integer n, result;
		read(n);
		factorial(n, reference result);
		write(result);
	}`
	got := runSource(t, src, []int32{5})
	if len(got) != 1 || got[0] != 120 {
		t.Fatalf("got %v, want [120]", got)
	}
}

func TestGCDEndToEnd(t *testing.T) {
	const src = `{
		integer gcd(integer a, integer b) {
			while (b != 0) {
				integer r;
				r = a % b;
				a = b;
				b = r;
			}
			gcd = a;
		}
		integer a, b, result;
		read(a, b);
		result = gcd(a, b);
		write(result);
	}`
	if got := runSource(t, src, []int32{48, 18}); len(got) != 1 || got[0] != 6 {
		t.Fatalf("GCD(48,18): got %v, want [6]", got)
	}
	if got := runSource(t, src, []int32{18, 48}); len(got) != 1 || got[0] != 6 {
		t.Fatalf("GCD(18,48): got %v, want [6]", got)
	}
}

func TestNestedBlockLocalsDoNotLeakOutOfScope(t *testing.T) {
	const src = `{
		integer x;
		x = 1;
		if (x == 1) {
			integer y;
			y = 41;
			x = x + y;
		}
		write(x);
	}`
	got := runSource(t, src, nil)
	if len(got) != 1 || got[0] != 42 {
		t.Fatalf("got %v, want [42]", got)
	}
}
