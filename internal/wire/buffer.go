// Package wire implements the arena's binary frame codec: big-endian
// fixed-width primitives and u16-length-prefixed strings over a flat byte
// slice. It is the only serialization format packets use.
package wire

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

// ErrMalformedFrame is returned when a read would run past the end of the
// buffer or a length prefix disagrees with the remaining bytes.
var ErrMalformedFrame = errors.New("wire: malformed frame")

// Buffer is a growable write buffer / cursor-tracked read buffer over a byte
// slice. Zero value is not usable for reading; use NewReader for that.
type Buffer struct {
	buf []byte
	off int
}

// NewWriter returns a Buffer ready to have values put into it. size is a
// capacity hint, not a hard limit.
func NewWriter(size int) *Buffer {
	return &Buffer{buf: make([]byte, 0, size)}
}

// NewReader wraps an existing byte slice for sequential reads.
func NewReader(data []byte) *Buffer {
	return &Buffer{buf: data}
}

// Bytes returns the whole underlying slice: the written bytes after Put*
// calls, or, for a reader, the full wrapped data including bytes already
// read.
func (b *Buffer) Bytes() []byte {
	return b.buf
}

// Len returns the number of unread bytes remaining.
func (b *Buffer) Len() int {
	return len(b.buf) - b.off
}

// Offset reports the current read cursor.
func (b *Buffer) Offset() int {
	return b.off
}

// Remaining reports how many unread bytes are left (the same as Len); zero
// means every byte has been consumed. Handlers that expect an exact-length
// frame call this after parsing to reject trailing garbage.
func (b *Buffer) Remaining() int {
	return b.Len()
}

func (b *Buffer) need(n int) error {
	if b.Len() < n {
		return fmt.Errorf("%w: need %d bytes, have %d", ErrMalformedFrame, n, b.Len())
	}
	return nil
}

// PutU8 appends an unsigned byte.
func (b *Buffer) PutU8(v uint8) { b.buf = append(b.buf, v) }

// GetU8 reads an unsigned byte.
func (b *Buffer) GetU8() (uint8, error) {
	if err := b.need(1); err != nil {
		return 0, err
	}
	v := b.buf[b.off]
	b.off++
	return v, nil
}

// PutI16 appends a big-endian signed 16-bit integer.
func (b *Buffer) PutI16(v int16) {
	var tmp [2]byte
	binary.BigEndian.PutUint16(tmp[:], uint16(v))
	b.buf = append(b.buf, tmp[:]...)
}

// GetI16 reads a big-endian signed 16-bit integer.
func (b *Buffer) GetI16() (int16, error) {
	if err := b.need(2); err != nil {
		return 0, err
	}
	v := int16(binary.BigEndian.Uint16(b.buf[b.off:]))
	b.off += 2
	return v, nil
}

// PutU16 appends a big-endian unsigned 16-bit integer.
func (b *Buffer) PutU16(v uint16) {
	var tmp [2]byte
	binary.BigEndian.PutUint16(tmp[:], v)
	b.buf = append(b.buf, tmp[:]...)
}

// GetU16 reads a big-endian unsigned 16-bit integer.
func (b *Buffer) GetU16() (uint16, error) {
	if err := b.need(2); err != nil {
		return 0, err
	}
	v := binary.BigEndian.Uint16(b.buf[b.off:])
	b.off += 2
	return v, nil
}

// PutI32 appends a big-endian signed 32-bit integer.
func (b *Buffer) PutI32(v int32) {
	var tmp [4]byte
	binary.BigEndian.PutUint32(tmp[:], uint32(v))
	b.buf = append(b.buf, tmp[:]...)
}

// GetI32 reads a big-endian signed 32-bit integer.
func (b *Buffer) GetI32() (int32, error) {
	if err := b.need(4); err != nil {
		return 0, err
	}
	v := int32(binary.BigEndian.Uint32(b.buf[b.off:]))
	b.off += 4
	return v, nil
}

// PutU32 appends a big-endian unsigned 32-bit integer.
func (b *Buffer) PutU32(v uint32) {
	var tmp [4]byte
	binary.BigEndian.PutUint32(tmp[:], v)
	b.buf = append(b.buf, tmp[:]...)
}

// GetU32 reads a big-endian unsigned 32-bit integer.
func (b *Buffer) GetU32() (uint32, error) {
	if err := b.need(4); err != nil {
		return 0, err
	}
	v := binary.BigEndian.Uint32(b.buf[b.off:])
	b.off += 4
	return v, nil
}

// PutF32 appends a big-endian IEEE-754 single.
func (b *Buffer) PutF32(v float32) {
	b.PutU32(math.Float32bits(v))
}

// GetF32 reads a big-endian IEEE-754 single.
func (b *Buffer) GetF32() (float32, error) {
	v, err := b.GetU32()
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(v), nil
}

// PutF64 appends a big-endian IEEE-754 double.
func (b *Buffer) PutF64(v float64) {
	var tmp [8]byte
	binary.BigEndian.PutUint64(tmp[:], math.Float64bits(v))
	b.buf = append(b.buf, tmp[:]...)
}

// GetF64 reads a big-endian IEEE-754 double.
func (b *Buffer) GetF64() (float64, error) {
	if err := b.need(8); err != nil {
		return 0, err
	}
	v := math.Float64frombits(binary.BigEndian.Uint64(b.buf[b.off:]))
	b.off += 8
	return v, nil
}

// PutString appends a u16 byte-length prefix followed by the UTF-8 bytes of
// s. Callers are responsible for truncating s to fit in a uint16 beforehand.
func (b *Buffer) PutString(s string) {
	b.PutU16(uint16(len(s)))
	b.buf = append(b.buf, s...)
}

// GetString reads a u16-length-prefixed string. Returns ErrMalformedFrame if
// the declared length exceeds the remaining buffer.
func (b *Buffer) GetString() (string, error) {
	n, err := b.GetU16()
	if err != nil {
		return "", err
	}
	if err := b.need(int(n)); err != nil {
		return "", err
	}
	s := string(b.buf[b.off : b.off+int(n)])
	b.off += int(n)
	return s, nil
}

// Truncate returns s cut to at most width bytes, appending an ellipsis
// character when ellipsis is true and s was actually cut.
func Truncate(s string, width int, ellipsis bool) string {
	if len(s) <= width {
		return s
	}
	if !ellipsis {
		return s[:width]
	}
	const mark = "…"
	if width <= len(mark) {
		return mark[:width]
	}
	return s[:width-len(mark)] + mark
}
