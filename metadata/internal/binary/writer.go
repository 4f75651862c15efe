package binary

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// Writer provides buffered writing utilities for metadata image encoding.
type Writer struct {
	buf *bytes.Buffer
}

// NewWriter creates a new Writer.
func NewWriter() *Writer {
	return &Writer{buf: &bytes.Buffer{}}
}

// Bytes returns the written bytes.
func (w *Writer) Bytes() []byte {
	return w.buf.Bytes()
}

// Len returns the number of bytes written.
func (w *Writer) Len() int {
	return w.buf.Len()
}

// Byte writes a single byte.
func (w *Writer) Byte(b byte) {
	w.buf.WriteByte(b)
}

// WriteBytes writes a byte slice.
func (w *Writer) WriteBytes(data []byte) {
	w.buf.Write(data)
}

// WriteCompressed writes an ECMA-335 compressed unsigned integer.
// Values above 0x1FFFFFFF are not representable and panic; callers
// validate ranges before encoding.
func (w *Writer) WriteCompressed(v uint32) {
	switch {
	case v <= 0x7F:
		w.buf.WriteByte(byte(v))
	case v <= 0x3FFF:
		w.buf.WriteByte(0x80 | byte(v>>8))
		w.buf.WriteByte(byte(v))
	case v <= 0x1FFFFFFF:
		w.buf.WriteByte(0xC0 | byte(v>>24))
		w.buf.WriteByte(byte(v >> 16))
		w.buf.WriteByte(byte(v >> 8))
		w.buf.WriteByte(byte(v))
	default:
		panic(fmt.Sprintf("binary: value %#x exceeds compressed integer range", v))
	}
}

// WriteU16LE writes a little-endian uint16 (fixed 2 bytes).
func (w *Writer) WriteU16LE(v uint16) {
	var buf [2]byte
	binary.LittleEndian.PutUint16(buf[:], v)
	w.buf.Write(buf[:])
}

// WriteU32LE writes a little-endian uint32 (fixed 4 bytes).
func (w *Writer) WriteU32LE(v uint32) {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], v)
	w.buf.Write(buf[:])
}

// WriteName writes a UTF-8 encoded name (compressed-length-prefixed).
func (w *Writer) WriteName(s string) {
	w.WriteCompressed(uint32(len(s)))
	w.buf.WriteString(s)
}

// WriteBlob writes a compressed-length-prefixed byte blob.
func (w *Writer) WriteBlob(data []byte) {
	w.WriteCompressed(uint32(len(data)))
	w.buf.Write(data)
}
