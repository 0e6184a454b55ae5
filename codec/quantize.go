package codec

import (
	"math"

	"github.com/chemfiles/tng/errs"
)

// Quantize maps each floating-point value to an integer via
// q = round(v * multiplier), the reversible first stage of every
// compressed numeric pipeline (§4.C). multiplier must be positive; codec 0
// (raw) never calls this stage.
func Quantize(values []float64, multiplier float64) ([]int64, error) {
	if multiplier <= 0 {
		return nil, errs.ErrBadMultiplier
	}

	out := make([]int64, len(values))
	for i, v := range values {
		out[i] = int64(math.Round(v * multiplier))
	}

	return out, nil
}

// Dequantize is the inverse of Quantize: v = q / multiplier. The round-trip
// error introduced by the forward transform is bounded by 0.5/multiplier
// per component.
func Dequantize(values []int64, multiplier float64) ([]float64, error) {
	if multiplier <= 0 {
		return nil, errs.ErrBadMultiplier
	}

	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = float64(v) / multiplier
	}

	return out, nil
}
