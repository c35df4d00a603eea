package features

import (
	"bytes"
	"errors"
	"testing"
)

func TestBinaryWriterReader_RoundTrip(t *testing.T) {
	var buf bytes.Buffer
	w := &binaryWriter{w: &buf}
	w.writeU32(42)
	w.writeU8(7)
	w.writeString("hello, world")
	w.writeBytes([]byte{1, 2, 3})
	if w.err != nil {
		t.Fatalf("write: %v", w.err)
	}

	r := &binaryReader{r: &buf}
	if v := r.readU32(); v != 42 {
		t.Errorf("readU32: got %d, want 42", v)
	}
	if v := r.readU8(); v != 7 {
		t.Errorf("readU8: got %d, want 7", v)
	}
	if s := r.readString(); s != "hello, world" {
		t.Errorf("readString: got %q, want %q", s, "hello, world")
	}
	if b := r.readBytes(3); !bytes.Equal(b, []byte{1, 2, 3}) {
		t.Errorf("readBytes: got %v, want [1 2 3]", b)
	}
	if r.err != nil {
		t.Fatalf("read: %v", r.err)
	}
}

func TestBinaryReader_ShortReadSurfacesError(t *testing.T) {
	buf := bytes.NewReader([]byte{1, 2})
	r := &binaryReader{r: buf}
	r.readU32()
	if r.err == nil {
		t.Errorf("expected an error reading a u32 from 2 bytes")
	}
}

func TestBinaryWriter_ErrorShortCircuitsFurtherWrites(t *testing.T) {
	w := &binaryWriter{w: failingWriter{}}
	w.writeU32(1)
	firstErr := w.err
	if firstErr == nil {
		t.Fatalf("expected an error from a failing writer")
	}
	w.writeU32(2)
	if w.err != firstErr {
		t.Errorf("writer should preserve the first error, not overwrite it")
	}
}

var errWriteFailed = errors.New("write failed")

type failingWriter struct{}

func (failingWriter) Write(p []byte) (int, error) {
	return 0, errWriteFailed
}
