// Package ioutil provides small I/O helpers shared by the intermediate-code
// writer and the VM's output opcodes.
package ioutil

import (
	"io"

	"github.com/pkg/errors"
)

// ErrWriter wraps an io.Writer and remembers the first error it sees. Once
// Err is non-nil, further Write calls are no-ops that keep returning the
// same error, so a long sequence of small writes (one per intermediate-code
// line, one per printed value) doesn't need an error check after each call.
type ErrWriter struct {
	w   io.Writer
	Err error
}

// NewErrWriter returns a new ErrWriter wrapping w.
func NewErrWriter(w io.Writer) *ErrWriter {
	return &ErrWriter{w: w}
}

func (w *ErrWriter) Write(p []byte) (int, error) {
	if w.Err != nil {
		return 0, w.Err
	}
	n, err := w.w.Write(p)
	if err != nil {
		w.Err = errors.Wrap(err, "write failed")
	}
	return n, w.Err
}

// WriteString writes s, same sticky-error semantics as Write.
func (w *ErrWriter) WriteString(s string) {
	if w.Err != nil {
		return
	}
	io.WriteString(w, s)
}
