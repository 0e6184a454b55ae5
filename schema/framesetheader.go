package schema

import (
	"bytes"

	"github.com/chemfiles/tng/block"
	"github.com/chemfiles/tng/endian"
	"github.com/chemfiles/tng/format"
)

// NoOffset marks an absent prev/next/long-stride link in a FrameSetHeader
// (§4.E); frame sets at either end of the chain, or below the long-stride
// sampling density, carry this sentinel instead of a byte offset.
const NoOffset int64 = -1

// FrameSetHeader is the frame-set index block (id 4, §4.D, §4.E). Every
// frame set in the file opens with one of these, followed by its
// typed trajectory data blocks (positions/velocities/forces/box shape).
// PrevOffset/NextOffset link immediate neighbors; LongPrevOffset/
// LongNextOffset skip roughly LongStrideLength frame sets at a time so a
// random-access seek does not have to walk the chain frame-set by
// frame-set (Design Notes 9, "flat arenas instead of back-pointers" —
// the frame-set chain itself stays a genuine on-disk linked list, since
// that list is the index; package frameset walks it on demand, loading one
// header per hop, rather than holding every header in memory).
type FrameSetHeader struct {
	FirstFrame int64
	NFrames    int64

	// MoleculeCounts is present only when the system's molecule counts
	// vary across frame sets (GeneralInfo.VariableAtomCount); nil
	// otherwise, meaning "use the molecule counts from the molecules
	// block unchanged".
	MoleculeCounts []int64

	// NParticles is present only alongside a non-nil MoleculeCounts,
	// recording the resulting particle count for this frame set.
	NParticles int64

	PrevOffset     int64
	NextOffset     int64
	LongPrevOffset int64
	LongNextOffset int64
}

// DecodeFrameSetHeader parses a frame-set block payload.
func DecodeFrameSetHeader(payload []byte) (FrameSetHeader, error) {
	r := endian.NewReader(bytes.NewReader(payload))
	var fs FrameSetHeader
	var err error

	if fs.FirstFrame, err = r.I64(); err != nil {
		return fs, err
	}
	if fs.NFrames, err = r.I64(); err != nil {
		return fs, err
	}

	hasVariable, err := r.Bytes(1)
	if err != nil {
		return fs, err
	}

	if hasVariable[0] != 0 {
		n, err := r.U64()
		if err != nil {
			return fs, err
		}

		counts := make([]int64, n)
		for i := range counts {
			if counts[i], err = r.I64(); err != nil {
				return fs, err
			}
		}
		fs.MoleculeCounts = counts

		if fs.NParticles, err = r.I64(); err != nil {
			return fs, err
		}
	}

	if fs.PrevOffset, err = r.I64(); err != nil {
		return fs, err
	}
	if fs.NextOffset, err = r.I64(); err != nil {
		return fs, err
	}
	if fs.LongPrevOffset, err = r.I64(); err != nil {
		return fs, err
	}
	if fs.LongNextOffset, err = r.I64(); err != nil {
		return fs, err
	}

	return fs, nil
}

// EncodeFrameSetHeader serializes a FrameSetHeader.
func EncodeFrameSetHeader(fs FrameSetHeader) []byte {
	w := endian.NewWriter()
	w.PutI64(fs.FirstFrame)
	w.PutI64(fs.NFrames)

	if fs.MoleculeCounts != nil {
		w.PutBytes([]byte{1})
		w.PutU64(uint64(len(fs.MoleculeCounts)))
		for _, c := range fs.MoleculeCounts {
			w.PutI64(c)
		}
		w.PutI64(fs.NParticles)
	} else {
		w.PutBytes([]byte{0})
	}

	w.PutI64(fs.PrevOffset)
	w.PutI64(fs.NextOffset)
	w.PutI64(fs.LongPrevOffset)
	w.PutI64(fs.LongNextOffset)

	return w.Bytes()
}

// Header returns the block.Header to frame this payload.
func (fs FrameSetHeader) Header() block.Header {
	return block.New(format.BlockIDFrameSet, "TNG_FRAME_SET", 1)
}

// LastFrame returns the index of the last frame this frame set covers.
func (fs FrameSetHeader) LastFrame() int64 {
	return fs.FirstFrame + fs.NFrames - 1
}
