package codec

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/chemfiles/tng/format"
)

func TestQuantizeDequantizeRoundTrip(t *testing.T) {
	values := []float64{1.2345, -9.8765, 0, 100.001}
	q, err := Quantize(values, 1000)
	require.NoError(t, err)

	back, err := Dequantize(q, 1000)
	require.NoError(t, err)

	for i, v := range values {
		require.InDelta(t, v, back[i], 0.001)
	}
}

func TestQuantizeBadMultiplier(t *testing.T) {
	_, err := Quantize([]float64{1}, 0)
	require.Error(t, err)
}

func TestVarintsRoundTrip(t *testing.T) {
	values := []int64{0, 1, -1, 1000000, -1000000, 9223372036854775807, -9223372036854775808}
	enc := EncodeVarints(values)

	dec, err := DecodeVarints(enc, len(values))
	require.NoError(t, err)
	require.Equal(t, values, dec)
}

func TestDecodeVarintsTruncated(t *testing.T) {
	enc := EncodeVarints([]int64{1, 2, 3})
	_, err := DecodeVarints(enc[:1], 3)
	require.Error(t, err)
}

func TestTripletDeltaRoundTrip(t *testing.T) {
	const nFrames, frameWidth = 4, 6 // e.g. two xyz particles
	data := make([]int64, nFrames*frameWidth)
	for i := range data {
		data[i] = int64(i * i % 37)
	}

	residuals, err := TripletDeltaEncode(data, nFrames, frameWidth)
	require.NoError(t, err)

	back, err := TripletDeltaDecode(residuals, nFrames, frameWidth)
	require.NoError(t, err)
	require.Equal(t, data, back)
}

func TestTripletDeltaBoxShape(t *testing.T) {
	const nFrames, frameWidth = 3, 9 // flattened 3x3 box matrices
	data := []int64{
		1, 0, 0, 0, 1, 0, 0, 0, 1,
		2, 0, 0, 0, 2, 0, 0, 0, 2,
		2, 0, 0, 0, 3, 0, 0, 0, 2,
	}

	residuals, err := TripletDeltaEncode(data, nFrames, frameWidth)
	require.NoError(t, err)

	back, err := TripletDeltaDecode(residuals, nFrames, frameWidth)
	require.NoError(t, err)
	require.Equal(t, data, back)
}

func TestTripletDeltaShapeMismatch(t *testing.T) {
	_, err := TripletDeltaEncode([]int64{1, 2, 3}, 2, 2)
	require.Error(t, err)
}

func TestRLERoundTrip(t *testing.T) {
	data := []byte{0, 0, 0, 0, 0, 1, 2, 3, 9, 9, 9, 9, 9, 9, 9, 5}
	enc := RLEEncode(data, 4)

	dec, err := RLEDecode(enc, len(data)+8)
	require.NoError(t, err)
	require.Equal(t, data, dec)
}

func TestRLEEmpty(t *testing.T) {
	enc := RLEEncode(nil, 4)
	dec, err := RLEDecode(enc, 0)
	require.NoError(t, err)
	require.Empty(t, dec)
}

func TestRLEOverrun(t *testing.T) {
	data := make([]byte, 100)
	enc := RLEEncode(data, 4)

	_, err := RLEDecode(enc, 10)
	require.Error(t, err)
}

func TestHuffmanRoundTripGeneral(t *testing.T) {
	data := []byte("the quick brown fox jumps over the lazy dog, repeatedly, repeatedly, repeatedly")
	enc := HuffmanEncode(data)

	dec, err := HuffmanDecode(enc)
	require.NoError(t, err)
	require.Equal(t, data, dec)
}

func TestHuffmanEmpty(t *testing.T) {
	enc := HuffmanEncode(nil)
	dec, err := HuffmanDecode(enc)
	require.NoError(t, err)
	require.Empty(t, dec)
}

func TestHuffmanSingleSymbol(t *testing.T) {
	data := []byte{7, 7, 7, 7, 7, 7, 7}
	enc := HuffmanEncode(data)

	dec, err := HuffmanDecode(enc)
	require.NoError(t, err)
	require.Equal(t, data, dec)
}

func TestHuffmanTwoSymbols(t *testing.T) {
	data := []byte{1, 0, 1, 1, 0, 1, 0, 0, 1}
	enc := HuffmanEncode(data)

	dec, err := HuffmanDecode(enc)
	require.NoError(t, err)
	require.Equal(t, data, dec)
}

func TestDictEncodeDecodeRoundTrip(t *testing.T) {
	values := []int64{5, 5, 5, -3, -3, 100, 100, 100, 100, 0}
	enc := DictEncode(values)

	dec, err := DictDecode(enc)
	require.NoError(t, err)
	require.Equal(t, values, dec)
}

func TestDictEncodeLargeAlphabet(t *testing.T) {
	values := make([]int64, 500)
	for i := range values {
		values[i] = int64(i)
	}

	enc := DictEncode(values)
	dec, err := DictDecode(enc)
	require.NoError(t, err)
	require.Equal(t, values, dec)
}

func TestPipelineRawRoundTrip(t *testing.T) {
	values := []float64{1.5, -2.25, 3.125, 0}
	enc, err := EncodeNumeric(format.CodecRaw, values, 2, 2, 1)
	require.NoError(t, err)

	dec, err := DecodeNumeric(format.CodecRaw, enc, 2, 2, len(values), 1)
	require.NoError(t, err)
	require.Equal(t, values, dec)
}

func TestPipelinePositionsRoundTrip(t *testing.T) {
	const nFrames, frameWidth = 5, 9 // 3 particles
	values := make([]float64, nFrames*frameWidth)
	for i := range values {
		values[i] = float64(i) * 0.01
	}

	const multiplier = 1000.0

	enc, err := EncodeNumeric(format.CodecTNGPositions, values, nFrames, frameWidth, multiplier)
	require.NoError(t, err)

	dec, err := DecodeNumeric(format.CodecTNGPositions, enc, nFrames, frameWidth, len(values), multiplier)
	require.NoError(t, err)

	for i, v := range values {
		require.InDelta(t, v, dec[i], 1.0/multiplier)
	}
}

func TestPipelineVelocitiesRoundTrip(t *testing.T) {
	const nFrames, frameWidth = 4, 6
	values := make([]float64, nFrames*frameWidth)
	for i := range values {
		values[i] = float64(i%7) - 3
	}

	const multiplier = 100.0

	enc, err := EncodeNumeric(format.CodecTNGVelocities, values, nFrames, frameWidth, multiplier)
	require.NoError(t, err)

	dec, err := DecodeNumeric(format.CodecTNGVelocities, enc, nFrames, frameWidth, len(values), multiplier)
	require.NoError(t, err)

	for i, v := range values {
		require.InDelta(t, v, dec[i], 1.0/multiplier)
	}
}

func TestPipelineUnknownCodec(t *testing.T) {
	_, err := EncodeNumeric(format.CodecID(999), []float64{1}, 1, 1, 1)
	require.Error(t, err)
}
