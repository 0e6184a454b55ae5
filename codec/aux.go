package codec

import (
	"fmt"

	"github.com/klauspost/compress/s2"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"

	"github.com/chemfiles/tng/errs"
	"github.com/chemfiles/tng/format"
)

// AuxiliaryCodec compresses and decompresses a non-trajectory block's
// payload as an opaque byte stream (§ SPEC_FULL.md DOMAIN STACK). Unlike
// the numeric pipelines in this package, this never quantizes or
// interprets the payload's structure — it wraps it the same way the
// container's own block hashing wraps a payload, just with a bulk codec
// layered underneath.
type AuxiliaryCodec interface {
	Compress(data []byte) ([]byte, error)
	Decompress(data []byte) ([]byte, error)
}

type noopAux struct{}

func (noopAux) Compress(data []byte) ([]byte, error)   { return data, nil }
func (noopAux) Decompress(data []byte) ([]byte, error) { return data, nil }

type zstdAux struct{}

func (zstdAux) Compress(data []byte) ([]byte, error) {
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, err
	}
	defer enc.Close()

	return enc.EncodeAll(data, nil), nil
}

func (zstdAux) Decompress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, err
	}
	defer dec.Close()

	return dec.DecodeAll(data, nil)
}

type s2Aux struct{}

func (s2Aux) Compress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	return s2.Encode(nil, data), nil
}

func (s2Aux) Decompress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	return s2.Decode(nil, data)
}

type lz4Aux struct{}

func (lz4Aux) Compress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	dst := make([]byte, lz4.CompressBlockBound(len(data)))
	var c lz4.Compressor

	n, err := c.CompressBlock(data, dst)
	if err != nil {
		return nil, err
	}

	if n == 0 {
		// Incompressible block: lz4 signals this by writing nothing.
		// Fall back to storing the raw bytes behind a leading flag byte of
		// 0 (1 marks an lz4-compressed block).
		return append([]byte{0}, data...), nil
	}

	return append([]byte{1}, dst[:n]...), nil
}

func (lz4Aux) Decompress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	stored, data := data[0], data[1:]
	if stored == 0 {
		return data, nil
	}

	dst := make([]byte, len(data)*4+64)
	for {
		n, err := lz4.UncompressBlock(data, dst)
		if err == nil {
			return dst[:n], nil
		}

		if len(dst) > 1<<28 {
			return nil, err
		}

		dst = make([]byte, len(dst)*2)
	}
}

// GetAuxiliaryCodec returns the bulk codec implementation for id.
func GetAuxiliaryCodec(id format.CodecID) (AuxiliaryCodec, error) {
	switch id {
	case format.CodecAuxiliaryNone:
		return noopAux{}, nil
	case format.CodecAuxiliaryZstd:
		return zstdAux{}, nil
	case format.CodecAuxiliaryS2:
		return s2Aux{}, nil
	case format.CodecAuxiliaryLZ4:
		return lz4Aux{}, nil
	default:
		return nil, fmt.Errorf("%w: %d", errs.ErrUnknownCodec, id)
	}
}
