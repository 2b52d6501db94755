package vm

import (
	"bufio"
	"fmt"
	"io"

	"github.com/pkg/errors"

	"github.com/chittur/parallel-programming-language/internal/ioutil"
)

// IntReader supplies the operand of a ReadInteger opcode. Unlike the
// teacher's port-driven rune streams, every I/O opcode in this machine
// reads or writes exactly one typed value, so the interfaces are shaped
// around that directly instead of around raw bytes.
type IntReader interface {
	ReadInt() (int32, error)
}

// BoolReader supplies the operand of a ReadBoolean opcode.
type BoolReader interface {
	ReadBool() (bool, error)
}

// IntWriter receives the operand of a WriteInteger opcode.
type IntWriter interface {
	WriteInt(int32) error
}

// BoolWriter receives the operand of a WriteBoolean opcode.
type BoolWriter interface {
	WriteBool(bool) error
}

// Reader combines both read directions. A Machine is given one Reader, since
// a single source text typically interleaves integer and boolean reads.
type Reader interface {
	IntReader
	BoolReader
}

// Writer combines both write directions.
type Writer interface {
	IntWriter
	BoolWriter
}

// textReader scans whitespace-separated tokens off an underlying
// bufio.Scanner, parsing each as either an integer or "true"/"false"
// depending on which opcode asks for it.
type textReader struct {
	sc *bufio.Scanner
}

// NewTextReader returns a Reader that scans whitespace-separated integer
// and boolean tokens from r (spec.md §6.2's ReadInteger/ReadBoolean).
func NewTextReader(r io.Reader) Reader {
	sc := bufio.NewScanner(r)
	sc.Split(bufio.ScanWords)
	return &textReader{sc: sc}
}

func (t *textReader) next() (string, error) {
	if !t.sc.Scan() {
		if err := t.sc.Err(); err != nil {
			return "", errors.Wrap(err, "input read failed")
		}
		return "", io.EOF
	}
	return t.sc.Text(), nil
}

func (t *textReader) ReadInt() (int32, error) {
	tok, err := t.next()
	if err != nil {
		return 0, err
	}
	var v int32
	if _, err := fmt.Sscanf(tok, "%d", &v); err != nil {
		return 0, errors.Wrapf(err, "malformed integer input %q", tok)
	}
	return v, nil
}

func (t *textReader) ReadBool() (bool, error) {
	tok, err := t.next()
	if err != nil {
		return false, err
	}
	switch tok {
	case "true", "1":
		return true, nil
	case "false", "0":
		return false, nil
	default:
		return false, errors.Errorf("malformed boolean input %q", tok)
	}
}

// textWriter prints one value per line through an ErrWriter, so a run of
// Write opcodes never needs an error check after each one.
type textWriter struct {
	ew *ioutil.ErrWriter
}

// NewTextWriter returns a Writer that prints one value per line to w.
func NewTextWriter(w io.Writer) Writer {
	return &textWriter{ew: ioutil.NewErrWriter(w)}
}

func (t *textWriter) WriteInt(v int32) error {
	t.ew.WriteString(fmt.Sprintf("%d\n", v))
	return t.ew.Err
}

func (t *textWriter) WriteBool(v bool) error {
	t.ew.WriteString(fmt.Sprintf("%t\n", v))
	return t.ew.Err
}
