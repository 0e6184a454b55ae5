// Package block implements the §4.B block framer: a uniform header
// followed by an opaque, MD5-checked payload. The framer never interprets
// payload bytes — decoding the payload into a typed record is the job of
// the schema package.
package block

import (
	"crypto/md5" //nolint:gosec // MD5 is the container's integrity hash, not used for security.
	"io"

	"github.com/chemfiles/tng/endian"
	"github.com/chemfiles/tng/errs"
	"github.com/chemfiles/tng/format"
)

// fixedHeaderBytes is the header size excluding the variable-length name:
// header_size + block_contents_size + block_id + hash + name_len + version.
const fixedHeaderBytes = 8 + 8 + 8 + 16 + 8 + 8

// Header is the fixed-layout preamble of every block on the wire (§6).
type Header struct {
	HeaderSize  uint64
	PayloadSize uint64
	ID          format.BlockID
	Hash        [16]byte
	Name        string
	Version     uint64
}

// wireSize returns the header_size this header should declare on the wire.
func (h Header) wireSize() uint64 {
	return uint64(fixedHeaderBytes + len(h.Name))
}

// HeaderSize returns the on-wire header size for a block with the given
// name, letting a caller that already knows a block's header fields
// compute field offsets within it without re-reading the header back.
func HeaderSize(name string) uint64 {
	return uint64(fixedHeaderBytes + len(name))
}

// HasHash reports whether Hash is non-zero, i.e. verification applies.
func (h Header) HasHash() bool {
	for _, b := range h.Hash {
		if b != 0 {
			return true
		}
	}

	return false
}

// ReadHeader reads one block header from r, positioning the stream at the
// start of the payload. It cross-checks the redundant header_size field
// against the size implied by the other fields.
func ReadHeader(r io.Reader) (Header, error) {
	er := endian.NewReader(r)

	h := Header{}

	headerSize, err := er.U64()
	if err != nil {
		return h, err
	}

	payloadSize, err := er.U64()
	if err != nil {
		return h, err
	}

	id, err := er.U64()
	if err != nil {
		return h, err
	}

	hashBytes, err := er.Bytes(16)
	if err != nil {
		return h, err
	}

	name, err := er.String()
	if err != nil {
		return h, err
	}

	version, err := er.U64()
	if err != nil {
		return h, err
	}

	h.HeaderSize = headerSize
	h.PayloadSize = payloadSize
	h.ID = format.BlockID(id)
	copy(h.Hash[:], hashBytes)
	h.Name = name
	h.Version = version

	if h.HeaderSize != h.wireSize() {
		return h, errs.ErrBadHeader
	}

	return h, nil
}

// ReadNext consumes one block's header from r and returns the header plus
// a reader bounded to exactly PayloadSize bytes. The returned reader must
// be fully consumed (or discarded via io.Copy(io.Discard, payload)) before
// the next ReadNext call, or the stream position will be wrong.
func ReadNext(r io.Reader) (Header, io.Reader, error) {
	h, err := ReadHeader(r)
	if err != nil {
		return h, nil, err
	}

	return h, io.LimitReader(r, int64(h.PayloadSize)), nil
}

// ReadPayload reads and returns the full payload for a header obtained from
// ReadNext, failing with ErrTruncatedPayload if fewer bytes remain than
// PayloadSize declares.
func ReadPayload(h Header, payload io.Reader) ([]byte, error) {
	buf := make([]byte, h.PayloadSize)
	n, err := io.ReadFull(payload, buf)
	if err != nil {
		if err == io.ErrUnexpectedEOF || err == io.EOF {
			return buf[:n], errs.ErrTruncatedPayload
		}

		return buf[:n], err
	}

	return buf, nil
}

// Verify recomputes the MD5 of payload and compares it against h.Hash. An
// all-zero hash is treated as "no hash" and always verifies.
func Verify(h Header, payload []byte) error {
	if !h.HasHash() {
		return nil
	}

	sum := md5.Sum(payload) //nolint:gosec

	if sum != h.Hash {
		return errs.ErrHashMismatch
	}

	return nil
}

// Bytes serializes the header (with HeaderSize recomputed from Name's
// length) to its on-wire form.
func (h Header) Bytes() []byte {
	h.HeaderSize = h.wireSize()

	w := endian.NewWriter()
	w.PutU64(h.HeaderSize)
	w.PutU64(h.PayloadSize)
	w.PutU64(uint64(h.ID))
	w.PutBytes(h.Hash[:])
	w.PutString(h.Name)
	w.PutU64(h.Version)

	return w.Bytes()
}

// ComputeHash returns the MD5 of payload, for a writer that opts into
// hashing.
func ComputeHash(payload []byte) [16]byte {
	return md5.Sum(payload) //nolint:gosec
}
