// Package binary provides little endian cursors over fixed size Solana account
// and instruction layouts.
package binary

import (
	"crypto/ed25519"
	"encoding/binary"
	"errors"
)

// ErrShortBuffer is returned when a layout reads past the end of its buffer.
var ErrShortBuffer = errors.New("binary: short buffer")

// Writer serializes fields into a preallocated buffer.
type Writer struct {
	buf    []byte
	offset int
}

// NewWriter returns a Writer over a zeroed buffer of the provided size.
func NewWriter(size int) *Writer {
	return &Writer{buf: make([]byte, size)}
}

func (w *Writer) Bytes(b []byte) {
	copy(w.buf[w.offset:], b)
	w.offset += len(b)
}

func (w *Writer) Key32(key ed25519.PublicKey) {
	copy(w.buf[w.offset:], key)
	w.offset += ed25519.PublicKeySize
}

// OptionalKey32 writes a COption<Pubkey> with an optionSize byte tag.
func (w *Writer) OptionalKey32(key ed25519.PublicKey, optionSize int) {
	if len(key) > 0 {
		w.buf[w.offset] = 1
		copy(w.buf[w.offset+optionSize:], key)
	}
	w.offset += optionSize + ed25519.PublicKeySize
}

func (w *Writer) Uint8(v uint8) {
	w.buf[w.offset] = v
	w.offset++
}

func (w *Writer) Uint64(v uint64) {
	binary.LittleEndian.PutUint64(w.buf[w.offset:], v)
	w.offset += 8
}

// OptionalUint64 writes a COption<u64> with an optionSize byte tag.
func (w *Writer) OptionalUint64(v *uint64, optionSize int) {
	if v != nil {
		w.buf[w.offset] = 1
		binary.LittleEndian.PutUint64(w.buf[w.offset+optionSize:], *v)
	}
	w.offset += optionSize + 8
}

// Finish returns the serialized buffer.
func (w *Writer) Finish() []byte {
	return w.buf
}

// Reader deserializes fields from a buffer. The first out of bounds read is
// latched in Err and all later reads are no-ops.
type Reader struct {
	buf    []byte
	offset int
	err    error
}

// NewReader returns a Reader positioned at the start of b.
func NewReader(b []byte) *Reader {
	return &Reader{buf: b}
}

func (r *Reader) take(n int) []byte {
	if r.err != nil {
		return nil
	}
	if r.offset+n > len(r.buf) {
		r.err = ErrShortBuffer
		return nil
	}

	b := r.buf[r.offset : r.offset+n]
	r.offset += n
	return b
}

func (r *Reader) Bytes(n int) []byte {
	b := r.take(n)
	if b == nil {
		return nil
	}

	res := make([]byte, n)
	copy(res, b)
	return res
}

func (r *Reader) Key32() ed25519.PublicKey {
	return r.Bytes(ed25519.PublicKeySize)
}

func (r *Reader) OptionalKey32(optionSize int) ed25519.PublicKey {
	tag := r.take(optionSize)
	key := r.Key32()
	if tag == nil || tag[0] != 1 {
		return nil
	}
	return key
}

func (r *Reader) Uint8() uint8 {
	b := r.take(1)
	if b == nil {
		return 0
	}
	return b[0]
}

func (r *Reader) Uint64() uint64 {
	b := r.take(8)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint64(b)
}

func (r *Reader) OptionalUint64(optionSize int) *uint64 {
	tag := r.take(optionSize)
	v := r.Uint64()
	if tag == nil || tag[0] != 1 {
		return nil
	}
	return &v
}

// Err returns the first error encountered while reading.
func (r *Reader) Err() error {
	return r.err
}

// Remaining returns the number of unread bytes.
func (r *Reader) Remaining() int {
	return len(r.buf) - r.offset
}
