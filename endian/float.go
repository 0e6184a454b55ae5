package endian

import "math"

func encodeFloat32(v float32) uint32 { return math.Float32bits(v) }
func decodeFloat32(u uint32) float32 { return math.Float32frombits(u) }
func encodeFloat64(v float64) uint64 { return math.Float64bits(v) }
func decodeFloat64(u uint64) float64 { return math.Float64frombits(u) }
