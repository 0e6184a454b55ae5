// Package endian provides byte-order utilities for the trajectory
// container's binary encoding and decoding.
//
// It extends the standard encoding/binary package by combining ByteOrder
// and AppendByteOrder into a single EndianEngine interface, and by probing
// the host's native byte order at open time for both 32-bit and 64-bit
// words, distinguishing a full swap from a byte-pair swap within halves and
// from a quad swap. The on-wire representation of the container is always
// little-endian: Reader and Writer decode and encode little-endian
// whatever the host's order, so no separate conversion step exists, and
// the probe results are only reported, not acted on.
package endian

import (
	"encoding/binary"
)

// EndianEngine combines ByteOrder and AppendByteOrder from the standard
// library into one interface, satisfied by binary.LittleEndian and
// binary.BigEndian.
type EndianEngine interface {
	binary.ByteOrder
	binary.AppendByteOrder
}

// Endianness32 classifies how a 32-bit word's bytes are ordered relative to
// a canonical little-endian reference.
type Endianness32 uint8

const (
	BigEndian32     Endianness32 = iota // bytes fully reversed
	LittleEndian32                      // matches canonical order
	BytePairSwap32                      // the two 16-bit halves are swapped
)

// Endianness64 classifies how a 64-bit word's bytes are ordered relative to
// a canonical little-endian reference.
type Endianness64 uint8

const (
	BigEndian64    Endianness64 = iota // bytes fully reversed
	LittleEndian64                     // matches canonical order
	QuadSwap64                         // the four 16-bit quarters are reversed as a group
	BytePairSwap64                     // the two 32-bit halves are swapped
	ByteSwap64                         // each of the two 32-bit halves is itself byte-swapped
)

// probePattern32 is written as four distinct bytes so each possible
// reordering produces a distinguishable readback.
var probePattern32 = [4]byte{0x01, 0x02, 0x03, 0x04}

// probePattern64 extends the same idea to eight bytes.
var probePattern64 = [8]byte{0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08}

// ProbeEndianness32 writes a known four-byte pattern with the standard
// library's native-order encoder and inspects the readback to classify the
// host's 32-bit word order.
func ProbeEndianness32() Endianness32 {
	native := binary.NativeEndian.Uint32(probePattern32[:])
	switch native {
	case binary.LittleEndian.Uint32(probePattern32[:]):
		return LittleEndian32
	case binary.BigEndian.Uint32(probePattern32[:]):
		return BigEndian32
	default:
		// Swap the two 16-bit halves of the canonical little-endian bytes
		// and see whether that reproduces what the host produced natively.
		swapped := [4]byte{probePattern32[2], probePattern32[3], probePattern32[0], probePattern32[1]}
		if native == binary.LittleEndian.Uint32(swapped[:]) {
			return BytePairSwap32
		}

		return BigEndian32
	}
}

// ProbeEndianness64 performs the 64-bit analogue of ProbeEndianness32,
// additionally distinguishing a quad-swap (groups of two bytes reversed as
// a unit) from a byte-swap (each 32-bit half individually reversed).
func ProbeEndianness64() Endianness64 {
	native := binary.NativeEndian.Uint64(probePattern64[:])

	switch native {
	case binary.LittleEndian.Uint64(probePattern64[:]):
		return LittleEndian64
	case binary.BigEndian.Uint64(probePattern64[:]):
		return BigEndian64
	}

	quadSwapped := [8]byte{
		probePattern64[6], probePattern64[7], probePattern64[4], probePattern64[5],
		probePattern64[2], probePattern64[3], probePattern64[0], probePattern64[1],
	}
	if native == binary.LittleEndian.Uint64(quadSwapped[:]) {
		return QuadSwap64
	}

	pairSwapped := [8]byte{
		probePattern64[4], probePattern64[5], probePattern64[6], probePattern64[7],
		probePattern64[0], probePattern64[1], probePattern64[2], probePattern64[3],
	}
	if native == binary.LittleEndian.Uint64(pairSwapped[:]) {
		return BytePairSwap64
	}

	return ByteSwap64
}

// IsNativeLittleEndian reports whether the host's 64-bit word order matches
// canonical little-endian exactly (no conversion needed on read/write).
func IsNativeLittleEndian() bool {
	return ProbeEndianness64() == LittleEndian64
}

// CompareNativeEndian reports whether engine matches the host's native byte
// order.
func CompareNativeEndian(engine EndianEngine) bool {
	if engine == GetLittleEndianEngine() {
		return IsNativeLittleEndian()
	}

	return !IsNativeLittleEndian()
}

// GetLittleEndianEngine returns the canonical on-wire engine used by every
// block in the container.
func GetLittleEndianEngine() EndianEngine {
	return binary.LittleEndian
}

// GetBigEndianEngine returns the big-endian engine. No block in the
// container is encoded with it.
func GetBigEndianEngine() EndianEngine {
	return binary.BigEndian
}
