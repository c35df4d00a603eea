package features

import "bytes"

// roundTripBuffer lets a save/load test pair write through one buffer and
// read back a stable snapshot, so a second save can be compared against the
// first byte for byte without the reader consuming the writer's buffer.
type roundTripBuffer struct {
	buf bytes.Buffer
	w   *binaryWriter
}

func newRoundTripBuffer() *roundTripBuffer {
	b := &roundTripBuffer{}
	b.w = &binaryWriter{w: &b.buf}
	return b
}

func (b *roundTripBuffer) writer() *binaryWriter { return b.w }

// reader snapshots the bytes written so far and returns a reader over that
// snapshot, independent of further writes to the underlying buffer.
func (b *roundTripBuffer) reader() *binaryReader {
	snapshot := append([]byte(nil), b.buf.Bytes()...)
	return &binaryReader{r: bytes.NewReader(snapshot)}
}
