package icode

import (
	"bytes"
	"testing"
)

func TestWriteReadRoundTrip(t *testing.T) {
	code := []int32{0, 3, -1, 42, 7}
	var buf bytes.Buffer
	if err := Write(&buf, code); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := Read(&buf)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(got) != len(code) {
		t.Fatalf("got %v, want %v", got, code)
	}
	for i := range code {
		if got[i] != code[i] {
			t.Fatalf("cell %d: got %d, want %d", i, got[i], code[i])
		}
	}
}

func TestReadRejectsMalformedLine(t *testing.T) {
	_, err := Read(bytes.NewBufferString("1\nnot-a-number\n3\n"))
	if err == nil {
		t.Fatal("expected an error for a malformed cell")
	}
}

func TestWriteIsDeterministic(t *testing.T) {
	code := []int32{1, 2, 3}
	var a, b bytes.Buffer
	Write(&a, code)
	Write(&b, code)
	if a.String() != b.String() {
		t.Fatal("repeated writes of the same code must be byte-identical")
	}
}
