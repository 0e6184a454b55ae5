package codec

import "encoding/binary"

// zigzag and varint encoding bridge the integer-domain stages (quantize,
// triplet delta) to the byte-domain stages (RLE, Huffman), the same idiom
// used for timestamp delta-of-delta coding: a signed residual is mapped to
// an unsigned value via zigzag, then varint-packed to 1-9 bytes.

func zigzagEncode(v int64) uint64 {
	return uint64((v << 1) ^ (v >> 63))
}

func zigzagDecode(u uint64) int64 {
	return int64(u>>1) ^ -int64(u&1)
}

// EncodeVarints zigzag+varint encodes a slice of signed integers into a
// single byte stream.
func EncodeVarints(values []int64) []byte {
	out := make([]byte, 0, len(values)*2)
	var tmp [binary.MaxVarintLen64]byte

	for _, v := range values {
		n := binary.PutUvarint(tmp[:], zigzagEncode(v))
		out = append(out, tmp[:n]...)
	}

	return out
}

// DecodeVarints decodes exactly count zigzag+varint values from data.
func DecodeVarints(data []byte, count int) ([]int64, error) {
	out := make([]int64, count)
	pos := 0

	for i := 0; i < count; i++ {
		u, n := binary.Uvarint(data[pos:])
		if n <= 0 {
			return nil, errCodecMalformed("truncated varint stream")
		}

		out[i] = zigzagDecode(u)
		pos += n
	}

	return out, nil
}
