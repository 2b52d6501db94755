// Package icode reads and writes the line-oriented intermediate-code file
// format: one integer per text line, in emission order (spec.md §6.2).
// Opcodes are small non-negative integers; operands may be negative (e.g. a
// folded negative constant), so the reader accepts a leading '-'.
package icode

import (
	"bufio"
	"io"
	"strconv"

	"github.com/pkg/errors"

	"github.com/chittur/parallel-programming-language/internal/ioutil"
)

// Write emits code as one decimal integer per line to w, in the same
// load/save pairing style as the teacher's Image.Load/Image.Save (adapted
// here from a binary cell stream to the text format spec.md §6.2 requires).
func Write(w io.Writer, code []int32) error {
	bw := bufio.NewWriter(w)
	ew := ioutil.NewErrWriter(bw)
	for _, v := range code {
		ew.WriteString(strconv.FormatInt(int64(v), 10))
		ew.WriteString("\n")
	}
	if ew.Err != nil {
		return errors.Wrap(ew.Err, "icode: write failed")
	}
	return errors.Wrap(bw.Flush(), "icode: flush failed")
}

// Read parses a line-oriented intermediate-code file from r.
func Read(r io.Reader) ([]int32, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	var code []int32
	line := 0
	for sc.Scan() {
		line++
		text := sc.Text()
		if text == "" {
			continue
		}
		v, err := strconv.ParseInt(text, 10, 32)
		if err != nil {
			return nil, errors.Wrapf(err, "icode: malformed cell at line %d", line)
		}
		code = append(code, int32(v))
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(err, "icode: read failed")
	}
	return code, nil
}
