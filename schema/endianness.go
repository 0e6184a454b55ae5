// Package schema implements §4.D: decoding/encoding each known block id
// into a typed record. Every decoder here consumes exactly the bytes the
// block framer (package block) handed it as payload and returns a typed
// Go value; every encoder is the exact mirror, used by the writer.
package schema

import (
	"github.com/chemfiles/tng/endian"
	"github.com/chemfiles/tng/errs"
)

// Endianness is the mandatory first block in the file (§4.D), establishing
// the file's word order for 32- and 64-bit integer fields. Every other
// block in this container is always written little-endian on the wire
// regardless of the host (§4.A); this block exists so a reader opening a
// file written by a foreign-order implementation of the format can detect
// that fact from the probe patterns it carries.
type Endianness struct {
	Pattern32 uint32
	Pattern64 uint64
}

// DecodeEndianness parses the fixed 12-byte endianness/string-length
// block payload.
func DecodeEndianness(payload []byte) (Endianness, error) {
	if len(payload) != 12 {
		return Endianness{}, errs.ErrSchemaMismatch
	}

	le := endian.GetLittleEndianEngine()

	return Endianness{
		Pattern32: le.Uint32(payload[0:4]),
		Pattern64: le.Uint64(payload[4:12]),
	}, nil
}

// EncodeEndianness serializes an Endianness block using the canonical
// little-endian reference patterns.
func EncodeEndianness() []byte {
	w := endian.NewWriter()
	w.PutU32(0x01020304)
	w.PutU64(0x0102030405060708)

	return w.Bytes()
}

// IsCanonical reports whether the probe patterns match the reference
// little-endian values this container always writes.
func (e Endianness) IsCanonical() bool {
	return e.Pattern32 == 0x01020304 && e.Pattern64 == 0x0102030405060708
}
