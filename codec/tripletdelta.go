package codec

// TripletDeltaEncode applies the reversible triplet-delta transform (§4.C)
// to a frame-ordered sequence of quantized values, laid out row-major as
// [frame][frameWidth]. The first frame's row is emitted verbatim; every
// later frame's row is emitted as the per-channel difference from the
// previous frame's same channel, exploiting the fact that under small time
// steps consecutive values of one channel are tightly clustered near zero.
//
// For particle-dependent kinds, frameWidth is nParticles*3 (one xyz triple
// per particle) and each channel tracks one particle's one component,
// matching §4.C's description exactly; the same transform is reused
// unchanged for box-shape rows (frameWidth 9, a single flattened 3x3
// matrix with no particle dimension).
//
// data must have length nFrames*frameWidth; both must be positive.
func TripletDeltaEncode(data []int64, nFrames, frameWidth int) ([]int64, error) {
	if len(data) != nFrames*frameWidth {
		return nil, errCodecMalformed("triplet delta: data length does not match frame shape")
	}

	out := make([]int64, len(data))
	copy(out[:frameWidth], data[:frameWidth])

	for f := 1; f < nFrames; f++ {
		cur := data[f*frameWidth : f*frameWidth+frameWidth]
		prev := data[(f-1)*frameWidth : (f-1)*frameWidth+frameWidth]
		dst := out[f*frameWidth : f*frameWidth+frameWidth]

		for i := range cur {
			dst[i] = cur[i] - prev[i]
		}
	}

	return out, nil
}

// TripletDeltaDecode is the exact inverse of TripletDeltaEncode: a running
// cumulative sum per channel reconstructs the absolute rows.
func TripletDeltaDecode(residuals []int64, nFrames, frameWidth int) ([]int64, error) {
	if len(residuals) != nFrames*frameWidth {
		return nil, errCodecMalformed("triplet delta: residual length does not match frame shape")
	}

	out := make([]int64, len(residuals))
	copy(out[:frameWidth], residuals[:frameWidth])

	for f := 1; f < nFrames; f++ {
		res := residuals[f*frameWidth : f*frameWidth+frameWidth]
		prev := out[(f-1)*frameWidth : (f-1)*frameWidth+frameWidth]
		dst := out[f*frameWidth : f*frameWidth+frameWidth]

		for i := range res {
			dst[i] = prev[i] + res[i]
		}
	}

	return out, nil
}
