package codec

import (
	"encoding/binary"
	"math"
)

// encodeRawFloats implements codec 0: values already byte-order-normalized
// by the endian package, so the "pipeline" is just a flat little-endian
// float64 array.
func encodeRawFloats(values []float64) []byte {
	out := make([]byte, len(values)*8)
	for i, v := range values {
		binary.LittleEndian.PutUint64(out[i*8:], math.Float64bits(v))
	}

	return out
}

func decodeRawFloats(data []byte, count int) ([]float64, error) {
	if len(data) < count*8 {
		return nil, errCodecMalformed("raw: payload shorter than declared value count")
	}

	out := make([]float64, count)
	for i := range out {
		out[i] = math.Float64frombits(binary.LittleEndian.Uint64(data[i*8:]))
	}

	return out, nil
}
