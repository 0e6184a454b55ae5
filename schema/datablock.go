package schema

import (
	"bytes"

	"github.com/chemfiles/tng/block"
	"github.com/chemfiles/tng/codec"
	"github.com/chemfiles/tng/endian"
	"github.com/chemfiles/tng/errs"
	"github.com/chemfiles/tng/format"
)

// DataBlockHeader is the shared header every trajectory data block
// (positions, velocities, forces, box shape — §4.D) carries ahead of its
// compressed payload: which values it holds, over which frames, at what
// stride, and which numeric pipeline compressed them.
type DataBlockHeader struct {
	BlockID             format.BlockID
	Name                string
	DataType            format.DataType
	FirstFrameWithData  int64
	NFrames             int64
	NValuesPerFrame     int64
	StrideLength        int64
	CodecID             format.CodecID
	CompressionMultiplier float64
}

// DataBlock is a fully decoded trajectory data block: its header plus the
// recovered float64 values, row-major as [frame][value_in_frame].
type DataBlock struct {
	Header DataBlockHeader
	Values []float64
}

// decodeDataBlockHeader parses the fixed-shape header fields that precede
// every typed data block's compressed payload.
func decodeDataBlockHeader(r *endian.Reader) (DataBlockHeader, error) {
	var h DataBlockHeader
	var err error

	blockID, err := r.U64()
	if err != nil {
		return h, err
	}
	h.BlockID = format.BlockID(blockID)

	if h.Name, err = r.String(); err != nil {
		return h, err
	}

	dt, err := r.Bytes(1)
	if err != nil {
		return h, err
	}
	h.DataType = format.DataType(dt[0])

	if h.FirstFrameWithData, err = r.I64(); err != nil {
		return h, err
	}
	if h.NFrames, err = r.I64(); err != nil {
		return h, err
	}
	if h.NValuesPerFrame, err = r.I64(); err != nil {
		return h, err
	}
	if h.StrideLength, err = r.I64(); err != nil {
		return h, err
	}

	codecID, err := r.U64()
	if err != nil {
		return h, err
	}
	h.CodecID = format.CodecID(codecID)

	if h.CompressionMultiplier, err = r.F64(); err != nil {
		return h, err
	}

	return h, nil
}

func encodeDataBlockHeader(w *endian.Writer, h DataBlockHeader) {
	w.PutU64(uint64(h.BlockID))
	w.PutString(h.Name)
	w.PutBytes([]byte{byte(h.DataType)})
	w.PutI64(h.FirstFrameWithData)
	w.PutI64(h.NFrames)
	w.PutI64(h.NValuesPerFrame)
	w.PutI64(h.StrideLength)
	w.PutU64(uint64(h.CodecID))
	w.PutF64(h.CompressionMultiplier)
}

// DecodeDataBlock parses a full trajectory data block payload: the fixed
// header followed by the codec-compressed value stream.
func DecodeDataBlock(payload []byte) (DataBlock, error) {
	r := endian.NewReader(bytes.NewReader(payload))

	h, err := decodeDataBlockHeader(r)
	if err != nil {
		return DataBlock{}, err
	}

	if h.NFrames <= 0 || h.NValuesPerFrame <= 0 {
		return DataBlock{}, errs.ErrSchemaMismatch
	}

	rest, err := r.Rest()
	if err != nil {
		return DataBlock{}, err
	}

	valueCount := int(h.NFrames) * int(h.NValuesPerFrame)

	values, err := codec.DecodeNumeric(h.CodecID, rest, int(h.NFrames), int(h.NValuesPerFrame), valueCount, h.CompressionMultiplier)
	if err != nil {
		return DataBlock{}, err
	}

	return DataBlock{Header: h, Values: values}, nil
}

// EncodeDataBlock compresses db.Values using db.Header.CodecID and
// serializes the header and compressed stream into a block payload.
func EncodeDataBlock(db DataBlock) ([]byte, error) {
	w := endian.NewWriter()
	encodeDataBlockHeader(w, db.Header)

	payload, err := codec.EncodeNumeric(
		db.Header.CodecID,
		db.Values,
		int(db.Header.NFrames),
		int(db.Header.NValuesPerFrame),
		db.Header.CompressionMultiplier,
	)
	if err != nil {
		return nil, err
	}

	w.PutBytes(payload)

	return w.Bytes(), nil
}

// BlockHeader returns the block.Header to frame this data block's payload.
func (db DataBlock) BlockHeader() block.Header {
	return block.New(db.Header.BlockID, db.Header.Name, 1)
}
