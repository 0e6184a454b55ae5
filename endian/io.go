package endian

import (
	"io"
	"unicode/utf8"

	"github.com/chemfiles/tng/errs"
)

// Reader wraps an io.Reader with fixed-width primitive and length-prefixed
// string decoding, always converting from the container's canonical
// little-endian wire format.
type Reader struct {
	r      io.Reader
	engine EndianEngine
	scratch [8]byte
}

// NewReader returns a Reader that decodes little-endian primitives from r.
func NewReader(r io.Reader) *Reader {
	return &Reader{r: r, engine: GetLittleEndianEngine()}
}

// fill reads exactly n bytes. A clean end of stream (zero bytes read
// before EOF) is reported as io.EOF unwrapped, so callers reading at a
// block boundary can tell "no more blocks" apart from a truncated one; a
// partial read hitting EOF mid-field is a genuine truncation and is
// reported as errs.ErrShortRead.
func (rd *Reader) fill(n int) ([]byte, error) {
	buf := rd.scratch[:n]
	if _, err := io.ReadFull(rd.r, buf); err != nil {
		if err == io.EOF {
			return nil, io.EOF
		}

		if err == io.ErrUnexpectedEOF {
			return nil, errs.ErrShortRead
		}

		return nil, err
	}

	return buf, nil
}

// U32 reads an unsigned 32-bit integer.
func (rd *Reader) U32() (uint32, error) {
	b, err := rd.fill(4)
	if err != nil {
		return 0, err
	}

	return rd.engine.Uint32(b), nil
}

// U64 reads an unsigned 64-bit integer.
func (rd *Reader) U64() (uint64, error) {
	b, err := rd.fill(8)
	if err != nil {
		return 0, err
	}

	return rd.engine.Uint64(b), nil
}

// I64 reads a signed 64-bit integer (two's complement bit pattern).
func (rd *Reader) I64() (int64, error) {
	u, err := rd.U64()
	if err != nil {
		return 0, err
	}

	return int64(u), nil
}

// F32 reads an IEEE-754 single-precision float.
func (rd *Reader) F32() (float32, error) {
	u, err := rd.U32()
	if err != nil {
		return 0, err
	}

	return decodeFloat32(u), nil
}

// F64 reads an IEEE-754 double-precision float.
func (rd *Reader) F64() (float64, error) {
	u, err := rd.U64()
	if err != nil {
		return 0, err
	}

	return decodeFloat64(u), nil
}

// Bytes reads exactly n raw bytes.
func (rd *Reader) Bytes(n int) ([]byte, error) {
	buf := make([]byte, n)
	if _, err := io.ReadFull(rd.r, buf); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return nil, errs.ErrShortRead
		}

		return nil, err
	}

	return buf, nil
}

// Rest reads every remaining byte from the underlying reader.
func (rd *Reader) Rest() ([]byte, error) {
	return io.ReadAll(rd.r)
}

// String reads a u64-length-prefixed UTF-8 string. An empty string is
// length 0 with no following bytes.
func (rd *Reader) String() (string, error) {
	n, err := rd.U64()
	if err != nil {
		return "", err
	}

	if n == 0 {
		return "", nil
	}

	b, err := rd.Bytes(int(n))
	if err != nil {
		return "", err
	}

	if !utf8.Valid(b) {
		return "", errs.ErrUtf8
	}

	return string(b), nil
}

// Writer wraps an io.Writer (or an append-style byte sink) with fixed-width
// primitive and length-prefixed string encoding, always emitting the
// container's canonical little-endian wire format.
type Writer struct {
	buf    []byte
	engine EndianEngine
}

// NewWriter returns a Writer that accumulates encoded bytes in an internal
// buffer; call Bytes to retrieve them.
func NewWriter() *Writer {
	return &Writer{engine: GetLittleEndianEngine()}
}

// Bytes returns the bytes written so far.
func (w *Writer) Bytes() []byte { return w.buf }

// Reset clears the writer's internal buffer for reuse.
func (w *Writer) Reset() { w.buf = w.buf[:0] }

// PutU32 appends an unsigned 32-bit integer.
func (w *Writer) PutU32(v uint32) { w.buf = w.engine.AppendUint32(w.buf, v) }

// PutU64 appends an unsigned 64-bit integer.
func (w *Writer) PutU64(v uint64) { w.buf = w.engine.AppendUint64(w.buf, v) }

// PutI64 appends a signed 64-bit integer.
func (w *Writer) PutI64(v int64) { w.PutU64(uint64(v)) }

// PutF32 appends an IEEE-754 single-precision float.
func (w *Writer) PutF32(v float32) { w.PutU32(encodeFloat32(v)) }

// PutF64 appends an IEEE-754 double-precision float.
func (w *Writer) PutF64(v float64) { w.PutU64(encodeFloat64(v)) }

// PutBytes appends raw bytes verbatim.
func (w *Writer) PutBytes(b []byte) { w.buf = append(w.buf, b...) }

// PutString appends a u64-length-prefixed UTF-8 string.
func (w *Writer) PutString(s string) {
	w.PutU64(uint64(len(s)))
	w.buf = append(w.buf, s...)
}
