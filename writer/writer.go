// Package writer implements §4.G: an append-only writer. Every call
// appends one new frame set (header plus its trajectory data blocks) at
// the current end of the file, then patches the link fields of the
// previous frame set and of the general-info block in place so the chain
// and its long-stride skip pointers stay consistent without rewriting
// anything that already has other blocks appended after it.
package writer

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/chemfiles/tng/block"
	"github.com/chemfiles/tng/codec"
	"github.com/chemfiles/tng/errs"
	"github.com/chemfiles/tng/format"
	"github.com/chemfiles/tng/internal/options"
	"github.com/chemfiles/tng/schema"
	"github.com/chemfiles/tng/topology"
)

// syncer is implemented by *os.File; Writer calls Sync after a successful
// append when the underlying stream supports it (Non-goals: no
// transactional writes — this is a best-effort durability hint, not a
// guarantee).
type syncer interface {
	Sync() error
}

// blockLoc remembers where a previously written block's payload ends, so
// one of its trailing fixed-width fields can be patched in place later
// without re-reading the header back off disk.
type blockLoc struct {
	offset      int64
	headerSize  uint64
	payloadSize uint64
}

func (l blockLoc) payloadEnd() int64 {
	return l.offset + int64(l.headerSize) + int64(l.payloadSize)
}

func locOf(offset int64, name string, payload []byte) blockLoc {
	return blockLoc{offset: offset, headerSize: block.HeaderSize(name), payloadSize: uint64(len(payload))}
}

// Writer appends frame sets to a container opened for writing. It is not
// safe for concurrent use.
type Writer struct {
	w io.WriteSeeker

	generalLoc blockLoc
	general    schema.GeneralInfo

	frameSetNFrames  int64
	longStrideLength int64

	lastLoc       blockLoc
	haveLast      bool
	lastFrameSetN int64 // frame sets written so far, for long-stride spacing
	nextFrame     int64

	// longCandidateLoc remembers the frame set that sits at the most
	// recent long-stride boundary, so the next one to cross that boundary
	// can be linked back to it.
	longCandidateLoc  blockLoc
	haveLongCandidate bool

	noSync bool
}

// Option configures a Writer at construction time.
type Option = options.Option[*Writer]

// WithoutSync disables the best-effort fsync the Writer otherwise performs
// after every AppendFrameSet call. Useful for bulk imports where the
// caller fsyncs once at the end instead of after every frame set.
func WithoutSync() Option {
	return options.NoError(func(w *Writer) { w.noSync = true })
}

// Config supplies the fixed, file-lifetime parameters a new container is
// created with.
type Config struct {
	ProgramName      string
	ForcefieldName   string
	UserName         string
	ComputerName     string
	CreationTime     uint64
	FrameSetNFrames  int64
	LongStrideLength int64

	// AuxiliaryCodec selects the bulk codec (format.CodecAuxiliary*) that
	// wraps the molecules, trajectory ids/names, and table-of-contents
	// block payloads before hashing. The zero value defaults to
	// format.CodecAuxiliaryNone (no wrapping), since 0 is never itself a
	// valid auxiliary codec id.
	AuxiliaryCodec format.CodecID
}

// Create writes the leading non-trajectory blocks (endianness, general
// info, molecules, trajectory id/name table, table of contents) and
// returns a Writer ready to append frame sets.
func Create(w io.WriteSeeker, cfg Config, arena *topology.Arena, trajIDs schema.TrajectoryIDsNames, opts ...Option) (*Writer, error) {
	if err := writeHashedBlock(w, schema.Endianness{}.Header(), schema.EncodeEndianness()); err != nil {
		return nil, fmt.Errorf("writer: endianness block: %w", err)
	}

	auxCodecID := cfg.AuxiliaryCodec
	if auxCodecID == 0 {
		auxCodecID = format.CodecAuxiliaryNone
	}

	aux, err := codec.GetAuxiliaryCodec(auxCodecID)
	if err != nil {
		return nil, fmt.Errorf("writer: auxiliary codec: %w", err)
	}

	general := schema.GeneralInfo{
		ProgramName:         cfg.ProgramName,
		ForcefieldName:      cfg.ForcefieldName,
		UserName:            cfg.UserName,
		ComputerName:        cfg.ComputerName,
		CreationTime:        cfg.CreationTime,
		FrameSetNFrames:     uint64(cfg.FrameSetNFrames),
		LongStrideLength:    uint64(cfg.LongStrideLength),
		AuxiliaryCodecID:    auxCodecID,
		FirstFrameSetOffset: schema.NoOffset,
		LastFrameSetOffset:  schema.NoOffset,
	}

	generalOffset, err := currentOffset(w)
	if err != nil {
		return nil, err
	}

	generalPayload := schema.EncodeGeneralInfo(general)

	// General info is written without a hash: its last two fields are
	// patched in place every time a frame set is appended, and a stale
	// hash would fail verification on the very next read.
	if err := block.Write(w, general.Header(), generalPayload, false); err != nil {
		return nil, fmt.Errorf("writer: general info block: %w", err)
	}

	if arena == nil {
		arena = &topology.Arena{}
	}

	mol := schema.Molecules{Arena: arena}
	if err := writeAuxiliaryBlock(w, aux, mol.Header(), schema.EncodeMolecules(mol)); err != nil {
		return nil, fmt.Errorf("writer: molecules block: %w", err)
	}

	if err := writeAuxiliaryBlock(w, aux, trajIDs.Header(), schema.EncodeTrajectoryIDsNames(trajIDs)); err != nil {
		return nil, fmt.Errorf("writer: trajectory ids block: %w", err)
	}

	toc := schema.TableOfContents{}
	if err := writeAuxiliaryBlock(w, aux, toc.Header(), schema.EncodeTableOfContents(toc)); err != nil {
		return nil, fmt.Errorf("writer: table of contents block: %w", err)
	}

	wr := &Writer{
		w:                w,
		generalLoc:       locOf(generalOffset, general.Header().Name, generalPayload),
		general:          general,
		frameSetNFrames:  cfg.FrameSetNFrames,
		longStrideLength: cfg.LongStrideLength,
	}

	if err := options.Apply(wr, opts...); err != nil {
		return nil, fmt.Errorf("writer: apply options: %w", err)
	}

	return wr, nil
}

func writeHashedBlock(w io.WriteSeeker, h block.Header, payload []byte) error {
	return block.Write(w, h, payload, true)
}

// writeAuxiliaryBlock bulk-compresses a non-trajectory block's payload with
// aux before hashing and writing it, per the general-info block's declared
// AuxiliaryCodecID.
func writeAuxiliaryBlock(w io.WriteSeeker, aux codec.AuxiliaryCodec, h block.Header, payload []byte) error {
	wrapped, err := aux.Compress(payload)
	if err != nil {
		return err
	}

	return writeHashedBlock(w, h, wrapped)
}

func currentOffset(w io.WriteSeeker) (int64, error) {
	return w.Seek(0, io.SeekEnd)
}

// FrameSetData is one trajectory data block's worth of values to append
// alongside a new frame set, in the shape schema.DataBlock expects.
type FrameSetData struct {
	Kind                  format.DataKind
	NValuesPerFrame       int64
	StrideLength          int64
	CodecID               format.CodecID
	CompressionMultiplier float64
	Values                []float64 // row-major [frame][value]
}

// AppendFrameSet writes a new frame set covering nFrames frames starting
// immediately after the last one written, containing the given data
// blocks, then patches the previous frame set's (and, every
// LongStrideLength frame sets, an earlier frame set's) forward links and
// the general-info block's last-frame-set-offset.
//
// mappings is optional: pass one or more schema.ParticleMapping values
// when this frame set's data blocks cover a contiguous sub-range of the
// system's real particles rather than every particle (§4.D, §4.F), e.g.
// trajectories written by a subset of parallel ranks. Omit it entirely
// for the common whole-system case.
func (wr *Writer) AppendFrameSet(nFrames int64, data []FrameSetData, mappings ...schema.ParticleMapping) error {
	if nFrames <= 0 {
		return fmt.Errorf("writer: append frame set: %w", errs.ErrInvariantBroken)
	}

	offset, err := currentOffset(wr.w)
	if err != nil {
		return err
	}

	fs := schema.FrameSetHeader{
		FirstFrame:     wr.nextFrame,
		NFrames:        nFrames,
		PrevOffset:     schema.NoOffset,
		NextOffset:     schema.NoOffset,
		LongPrevOffset: schema.NoOffset,
		LongNextOffset: schema.NoOffset,
	}

	if wr.haveLast {
		fs.PrevOffset = wr.lastLoc.offset
	}

	if wr.longStrideLength > 0 && wr.lastFrameSetN > 0 && wr.lastFrameSetN%wr.longStrideLength == 0 && wr.haveLongCandidate {
		fs.LongPrevOffset = wr.longCandidateLoc.offset
	}

	fsPayload := schema.EncodeFrameSetHeader(fs)

	// Like general info, frame set headers are written without a hash:
	// NextOffset and LongNextOffset are patched in place once a later
	// frame set links back to this one, which would invalidate any hash
	// taken at write time.
	if err := block.Write(wr.w, fs.Header(), fsPayload, false); err != nil {
		return fmt.Errorf("writer: frame set header: %w", err)
	}

	newLoc := locOf(offset, fs.Header().Name, fsPayload)

	for _, m := range mappings {
		if err := writeHashedBlock(wr.w, m.Header(), schema.EncodeParticleMapping(m)); err != nil {
			return fmt.Errorf("writer: particle mapping block: %w", err)
		}
	}

	for _, d := range data {
		frameCount := nFrames / maxInt64(d.StrideLength, 1)

		db := schema.DataBlock{
			Header: schema.DataBlockHeader{
				BlockID:               d.Kind.BlockID(),
				Name:                  d.Kind.BlockID().String(),
				DataType:              format.DataTypeFloat64,
				FirstFrameWithData:    fs.FirstFrame,
				NFrames:               frameCount,
				NValuesPerFrame:       d.NValuesPerFrame,
				StrideLength:          d.StrideLength,
				CodecID:               d.CodecID,
				CompressionMultiplier: d.CompressionMultiplier,
			},
			Values: d.Values,
		}

		payload, err := schema.EncodeDataBlock(db)
		if err != nil {
			return fmt.Errorf("writer: encode %s data block: %w", d.Kind, err)
		}

		if err := writeHashedBlock(wr.w, db.BlockHeader(), payload); err != nil {
			return fmt.Errorf("writer: write %s data block: %w", d.Kind, err)
		}
	}

	// FrameSetHeader's trailing fields, in the order EncodeFrameSetHeader
	// writes them, are PrevOffset, NextOffset, LongPrevOffset,
	// LongNextOffset — so counting back from the end of the payload,
	// LongNextOffset is field 0 and NextOffset is field 2.
	const (
		fieldLongNextOffset = 0
		fieldNextOffset     = 2
	)

	if wr.haveLast {
		if err := patchTrailingInt64(wr.w, wr.lastLoc, fieldNextOffset, offset); err != nil {
			return fmt.Errorf("writer: patch previous frame set next offset: %w", err)
		}
	}

	if fs.LongPrevOffset != schema.NoOffset {
		if err := patchTrailingInt64(wr.w, wr.longCandidateLoc, fieldLongNextOffset, offset); err != nil {
			return fmt.Errorf("writer: patch long-stride next offset: %w", err)
		}
	}

	// GeneralInfo's trailing fields are FirstFrameSetOffset then
	// LastFrameSetOffset, so LastFrameSetOffset is field 0 and
	// FirstFrameSetOffset is field 1.
	const (
		fieldLastFrameSetOffset  = 0
		fieldFirstFrameSetOffset = 1
	)

	if wr.general.FirstFrameSetOffset == schema.NoOffset {
		if err := patchTrailingInt64(wr.w, wr.generalLoc, fieldFirstFrameSetOffset, offset); err != nil {
			return fmt.Errorf("writer: patch general info first offset: %w", err)
		}
		wr.general.FirstFrameSetOffset = offset
	}

	if err := patchTrailingInt64(wr.w, wr.generalLoc, fieldLastFrameSetOffset, offset); err != nil {
		return fmt.Errorf("writer: patch general info last offset: %w", err)
	}
	wr.general.LastFrameSetOffset = offset

	if wr.longStrideLength > 0 && wr.lastFrameSetN%wr.longStrideLength == 0 {
		wr.longCandidateLoc = newLoc
		wr.haveLongCandidate = true
	}
	wr.lastFrameSetN++

	wr.lastLoc = newLoc
	wr.haveLast = true
	wr.nextFrame += nFrames

	if !wr.noSync {
		if s, ok := wr.w.(syncer); ok {
			if err := s.Sync(); err != nil {
				return fmt.Errorf("writer: sync: %w", err)
			}
		}
	}

	return nil
}

func maxInt64(a, b int64) int64 {
	if a > b {
		return a
	}

	return b
}

// patchTrailingInt64 overwrites one of a block's trailing fixed-width
// int64 fields in place, counting fromEnd fields back from the end of the
// block's payload (0 = last field, 1 = second-to-last, ...).
func patchTrailingInt64(w io.WriteSeeker, loc blockLoc, fromEnd int, value int64) error {
	fieldOffset := loc.payloadEnd() - int64(8*(fromEnd+1))

	if _, err := w.Seek(fieldOffset, io.SeekStart); err != nil {
		return err
	}

	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(value))

	n, err := w.Write(buf[:])
	if err != nil {
		return err
	}
	if n != 8 {
		return errs.ErrWriteShort
	}

	return nil
}
