package schema

import (
	"bytes"

	"github.com/chemfiles/tng/block"
	"github.com/chemfiles/tng/endian"
	"github.com/chemfiles/tng/format"
)

// DefaultAuxiliaryCodec is the auxiliary codec id written by a Writer that
// does not opt into bulk-compressing its non-trajectory blocks.
const DefaultAuxiliaryCodec = format.CodecAuxiliaryNone

// GeneralInfo is block id 1 (§4.D): program/forcefield/user/computer
// identification, creation time, and the two parameters that govern the
// frame-set index (§4.E) — the nominal frame-set size and the long-stride
// skip factor.
type GeneralInfo struct {
	ProgramName        string
	ForcefieldName     string
	UserName           string
	ComputerName       string
	CreationTime       uint64 // unix seconds
	PGPSignature       string
	VariableAtomCount  bool
	FrameSetNFrames    uint64
	LongStrideLength   uint64

	// AuxiliaryCodecID selects the bulk byte-stream codec (§ DOMAIN STACK)
	// that wraps every non-trajectory block's payload (molecules,
	// trajectory ids/names, table of contents) before MD5 hashing.
	// CodecAuxiliaryNone leaves payloads unwrapped.
	AuxiliaryCodecID format.CodecID

	FirstFrameSetOffset int64
	LastFrameSetOffset  int64
}

// DecodeGeneralInfo parses a general-info block payload.
func DecodeGeneralInfo(payload []byte) (GeneralInfo, error) {
	r := endian.NewReader(bytes.NewReader(payload))
	var g GeneralInfo
	var err error

	if g.ProgramName, err = r.String(); err != nil {
		return g, err
	}
	if g.ForcefieldName, err = r.String(); err != nil {
		return g, err
	}
	if g.UserName, err = r.String(); err != nil {
		return g, err
	}
	if g.ComputerName, err = r.String(); err != nil {
		return g, err
	}
	if g.CreationTime, err = r.U64(); err != nil {
		return g, err
	}
	if g.PGPSignature, err = r.String(); err != nil {
		return g, err
	}

	flag, err := r.Bytes(1)
	if err != nil {
		return g, err
	}
	g.VariableAtomCount = flag[0] != 0

	if g.FrameSetNFrames, err = r.U64(); err != nil {
		return g, err
	}
	if g.LongStrideLength, err = r.U64(); err != nil {
		return g, err
	}

	auxCodec, err := r.U64()
	if err != nil {
		return g, err
	}
	g.AuxiliaryCodecID = format.CodecID(auxCodec)

	if g.FirstFrameSetOffset, err = r.I64(); err != nil {
		return g, err
	}
	if g.LastFrameSetOffset, err = r.I64(); err != nil {
		return g, err
	}

	return g, nil
}

// EncodeGeneralInfo serializes a GeneralInfo to its block payload.
func EncodeGeneralInfo(g GeneralInfo) []byte {
	w := endian.NewWriter()
	w.PutString(g.ProgramName)
	w.PutString(g.ForcefieldName)
	w.PutString(g.UserName)
	w.PutString(g.ComputerName)
	w.PutU64(g.CreationTime)
	w.PutString(g.PGPSignature)

	if g.VariableAtomCount {
		w.PutBytes([]byte{1})
	} else {
		w.PutBytes([]byte{0})
	}

	w.PutU64(g.FrameSetNFrames)
	w.PutU64(g.LongStrideLength)
	w.PutU64(uint64(g.AuxiliaryCodecID))
	w.PutI64(g.FirstFrameSetOffset)
	w.PutI64(g.LastFrameSetOffset)

	return w.Bytes()
}

// Header returns the block.Header to frame this general-info payload.
func (g GeneralInfo) Header() block.Header {
	return block.New(format.BlockIDGeneralInfo, "GENERAL INFO", 1)
}
