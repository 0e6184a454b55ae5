// Package reader implements §4.F: a high-level, range-query reader over a
// container already validated by the block framer. It owns the
// non-trajectory block cache (general info, topology, trajectory id/name
// table, table of contents), the frame-set index, and the logic that
// walks the frame-set chain to assemble a requested frame range into one
// row-major buffer.
package reader

import (
	"fmt"
	"io"
	"sort"

	"github.com/chemfiles/tng/block"
	"github.com/chemfiles/tng/codec"
	"github.com/chemfiles/tng/errs"
	"github.com/chemfiles/tng/format"
	"github.com/chemfiles/tng/frameset"
	"github.com/chemfiles/tng/schema"
	"github.com/chemfiles/tng/topology"
)

// Trajectory is an opened, read-only handle on a container. It is not
// safe for concurrent use by multiple goroutines (Non-goals, §5): every
// method reads and seeks the same underlying io.ReadSeeker.
type Trajectory struct {
	r io.ReadSeeker

	endianness schema.Endianness
	general    schema.GeneralInfo
	arena      *topology.Arena
	trajIDs    schema.TrajectoryIDsNames
	toc        schema.TableOfContents

	index      *frameset.Index
	numFrames  int64
}

// readBlockAt seeks to offset, reads one block's header and (hash
// verified) payload, and returns the offset of the block immediately
// following it.
func readBlockAt(r io.ReadSeeker, offset int64) (block.Header, []byte, int64, error) {
	if _, err := r.Seek(offset, io.SeekStart); err != nil {
		return block.Header{}, nil, 0, err
	}

	h, payloadR, err := block.ReadNext(r)
	if err != nil {
		return block.Header{}, nil, 0, err
	}

	payload, err := block.ReadPayload(h, payloadR)
	if err != nil {
		return block.Header{}, nil, 0, err
	}

	if err := block.Verify(h, payload); err != nil {
		return block.Header{}, nil, 0, err
	}

	next := offset + int64(h.HeaderSize) + int64(h.PayloadSize)

	return h, payload, next, nil
}

// maxNonTrajectoryBlocks bounds the leading, non-trajectory block table
// (§3 invariant 6): endianness, general info, molecules, trajectory
// ids/names and table of contents all live there, well under the bound,
// but a corrupt or adversarial file that repeats or overruns it is
// rejected rather than silently read.
const maxNonTrajectoryBlocks = 32

// Open reads every non-trajectory block at the front of the file, builds
// the frame-set index, and walks the frame-set chain once to learn the
// total frame count.
func Open(r io.ReadSeeker) (*Trajectory, error) {
	t := &Trajectory{r: r}

	offset := int64(0)
	firstFrameSetOffset := schema.NoOffset

	// aux decompresses the molecules, trajectory ids/names, and table of
	// contents payloads; it is resolved once the general-info block (which
	// always precedes them, per writer.Create's write order) has been
	// read. Until then it defaults to a no-op, so one of those blocks
	// placed before the general-info block is read unwrapped; the
	// general-info payload itself never passes through aux.
	var aux codec.AuxiliaryCodec = noopAuxiliaryCodec{}

	seenTableIDs := make(map[format.BlockID]bool)
	tableCount := 0

	for {
		h, payload, next, err := readBlockAt(r, offset)
		if err != nil {
			if err == io.EOF {
				break
			}

			return nil, fmt.Errorf("reader: scanning leading blocks: %w", err)
		}

		if h.ID != format.BlockIDFrameSet {
			if seenTableIDs[h.ID] {
				return nil, fmt.Errorf("reader: leading blocks: %w", errs.ErrDuplicateID)
			}
			seenTableIDs[h.ID] = true

			tableCount++
			if tableCount > maxNonTrajectoryBlocks {
				return nil, fmt.Errorf("reader: leading blocks: %w", errs.ErrTableFull)
			}
		}

		switch h.ID {
		case format.BlockIDEndianness:
			e, err := schema.DecodeEndianness(payload)
			if err != nil {
				return nil, err
			}
			t.endianness = e

		case format.BlockIDGeneralInfo:
			g, err := schema.DecodeGeneralInfo(payload)
			if err != nil {
				return nil, err
			}
			t.general = g

			auxCodecID := g.AuxiliaryCodecID
			if auxCodecID == 0 {
				auxCodecID = format.CodecAuxiliaryNone
			}

			aux, err = codec.GetAuxiliaryCodec(auxCodecID)
			if err != nil {
				return nil, fmt.Errorf("reader: auxiliary codec: %w", err)
			}

		case format.BlockIDMolecules:
			unwrapped, err := aux.Decompress(payload)
			if err != nil {
				return nil, fmt.Errorf("reader: decompress molecules block: %w", err)
			}

			m, err := schema.DecodeMolecules(unwrapped)
			if err != nil {
				return nil, err
			}
			t.arena = m.Arena

		case format.BlockIDTrajectoryIDsNames:
			unwrapped, err := aux.Decompress(payload)
			if err != nil {
				return nil, fmt.Errorf("reader: decompress trajectory ids block: %w", err)
			}

			ti, err := schema.DecodeTrajectoryIDsNames(unwrapped)
			if err != nil {
				return nil, err
			}
			t.trajIDs = ti

		case format.BlockIDTableOfContents:
			unwrapped, err := aux.Decompress(payload)
			if err != nil {
				return nil, fmt.Errorf("reader: decompress table of contents block: %w", err)
			}

			toc, err := schema.DecodeTableOfContents(unwrapped)
			if err != nil {
				return nil, err
			}
			t.toc = toc

		case format.BlockIDFrameSet:
			firstFrameSetOffset = offset
		}

		if h.ID == format.BlockIDFrameSet {
			break
		}

		offset = next
	}

	if firstFrameSetOffset == schema.NoOffset && t.general.FirstFrameSetOffset != 0 {
		firstFrameSetOffset = t.general.FirstFrameSetOffset
	}

	if t.arena == nil {
		t.arena = &topology.Arena{}
	}

	t.index = frameset.NewIndex(
		t.loadFrameSetHeader,
		firstFrameSetOffset,
		t.general.LastFrameSetOffset,
		int64(t.general.FrameSetNFrames),
		int64(t.general.LongStrideLength),
	)

	if firstFrameSetOffset != schema.NoOffset {
		if err := t.index.Walk(func(_ int64, fs schema.FrameSetHeader) error {
			t.numFrames = fs.LastFrame() + 1

			return nil
		}); err != nil {
			return nil, err
		}
	}

	return t, nil
}

func (t *Trajectory) loadFrameSetHeader(offset int64) (schema.FrameSetHeader, error) {
	h, payload, _, err := readBlockAt(t.r, offset)
	if err != nil {
		return schema.FrameSetHeader{}, err
	}

	if h.ID != format.BlockIDFrameSet {
		return schema.FrameSetHeader{}, errs.ErrBadLink
	}

	return schema.DecodeFrameSetHeader(payload)
}

// NumFrames returns the total number of frames recorded across every
// frame set in the file.
func (t *Trajectory) NumFrames() int64 { return t.numFrames }

// NumParticles returns the system's total particle count.
func (t *Trajectory) NumParticles() int64 { return t.arena.NumParticles() }

// NumMoleculeTypes returns the number of distinct molecule templates.
func (t *Trajectory) NumMoleculeTypes() int { return t.arena.NumMoleculeTypes() }

// NumMolecules returns the total number of molecule instances.
func (t *Trajectory) NumMolecules() int64 { return t.arena.NumMolecules() }

// FindMolecule returns the index of the first molecule template with the
// given name, or -1 if none matches.
func (t *Trajectory) FindMolecule(name string) int { return t.arena.FindMolecule(name) }

// Molecules exposes the decoded topology arena directly for callers that
// need more than the summary accessors above.
func (t *Trajectory) Molecules() *topology.Arena { return t.arena }

// scanFrameSetBlocks walks the blocks following a frame-set header looking
// for the trajectory data block matching kind, and collects every
// particle-mapping block (§4.D block id 6) encountered along the way. It
// stops at fsEndOffset (the next frame set's offset, or EOF).
func (t *Trajectory) scanFrameSetBlocks(fsOffset int64, fs schema.FrameSetHeader, kind format.DataKind) (schema.DataBlock, bool, []schema.ParticleMapping, error) {
	offset := fsOffset
	_, _, next, err := readBlockAt(t.r, offset)
	if err != nil {
		return schema.DataBlock{}, false, nil, err
	}
	offset = next

	fsEndOffset := fs.NextOffset

	var mappings []schema.ParticleMapping
	var found schema.DataBlock
	haveFound := false

	for fsEndOffset == schema.NoOffset || offset < fsEndOffset {
		h, payload, next, err := readBlockAt(t.r, offset)
		if err != nil {
			if err == io.EOF {
				break
			}

			return schema.DataBlock{}, false, nil, err
		}

		if h.ID == format.BlockIDFrameSet {
			// Reached the next frame set; stop collecting for this one.
			break
		}

		switch {
		case h.ID == format.BlockIDParticleMapping:
			pm, err := schema.DecodeParticleMapping(payload)
			if err != nil {
				return schema.DataBlock{}, false, nil, err
			}
			mappings = append(mappings, pm)

		case h.ID == kind.BlockID() && !haveFound:
			decoded, err := schema.DecodeDataBlock(payload)
			if err != nil {
				return schema.DataBlock{}, false, nil, err
			}
			found = decoded
			haveFound = true
		}

		offset = next
	}

	if len(mappings) > 1 {
		sort.Slice(mappings, func(i, j int) bool {
			return mappings[i].FirstRealParticle < mappings[j].FirstRealParticle
		})
	}

	return found, haveFound, mappings, nil
}

// RangeResult is the outcome of a successful ReadRange: the row-major
// buffer (frame-major, then value-within-frame), the frame stride at
// which it was sampled, and the first frame actually represented (may be
// later than the requested start if the data block's own stride skips
// past it).
type RangeResult struct {
	Values          []float64
	FirstFrame      int64
	NFrames         int64
	StrideLength    int64
	NValuesPerFrame int64
}

// ReadRange returns every sample of kind covering frames [start, end]
// (inclusive), clamped to the file's actual frame count. It returns
// errs.ErrNotPresent if kind's data block never occurs in the scanned
// frame sets, or errs.ErrRangeMisaligned if kind is present there but no
// stored row's frame falls within [start, end] (e.g. the range sits
// strictly between two strided samples) — the latter still reports the
// data block's native StrideLength in the returned RangeResult, so a
// caller can tell why the range missed. It returns errs.ErrFrameOutOfRange
// if start is beyond the last frame.
func (t *Trajectory) ReadRange(kind format.DataKind, start, end int64) (RangeResult, error) {
	if start < 0 || end < start {
		return RangeResult{}, errs.ErrFrameOutOfRange
	}

	if t.numFrames == 0 || start > t.numFrames-1 {
		return RangeResult{}, errs.ErrFrameOutOfRange
	}

	if end > t.numFrames-1 {
		end = t.numFrames - 1
	}

	offset, fs, err := t.index.Locate(start)
	if err != nil {
		return RangeResult{}, err
	}

	var result RangeResult
	found := false
	sawKind := false
	var lastStride int64

	for {
		db, ok, mappings, err := t.scanFrameSetBlocks(offset, fs, kind)
		if err != nil {
			return RangeResult{}, err
		}

		if ok {
			sawKind = true

			stride := db.Header.StrideLength
			if stride <= 0 {
				stride = 1
			}
			lastStride = stride

			applyMapping := kind != format.KindBoxShape && len(mappings) > 0

			for i := int64(0); i < db.Header.NFrames; i++ {
				frame := db.Header.FirstFrameWithData + i*stride
				if frame < start || frame > end {
					continue
				}

				row := db.Values[i*db.Header.NValuesPerFrame : (i+1)*db.Header.NValuesPerFrame]

				if applyMapping {
					reordered, err := schema.ReorderRow(mappings, row, t.NumParticles())
					if err != nil {
						return RangeResult{}, err
					}
					row = reordered
				}

				if !found {
					result.FirstFrame = frame
					result.StrideLength = stride
					result.NValuesPerFrame = int64(len(row))
					found = true
				}

				result.Values = append(result.Values, row...)
				result.NFrames++
			}
		}

		if fs.LastFrame() >= end || fs.NextOffset == schema.NoOffset {
			break
		}

		offset = fs.NextOffset
		fs, err = t.loadFrameSetHeader(offset)
		if err != nil {
			return RangeResult{}, err
		}
	}

	if !found {
		if sawKind {
			return RangeResult{StrideLength: lastStride}, fmt.Errorf("reader: read range: %w", errs.ErrRangeMisaligned)
		}

		return RangeResult{}, errs.ErrNotPresent
	}

	return result, nil
}

// ReadAll returns every sample of kind across the whole file.
func (t *Trajectory) ReadAll(kind format.DataKind) (RangeResult, error) {
	return t.ReadRange(kind, 0, t.numFrames-1)
}

// noopAuxiliaryCodec is the placeholder codec.AuxiliaryCodec used before
// the general-info block (which names the real one) has been read.
type noopAuxiliaryCodec struct{}

func (noopAuxiliaryCodec) Compress(data []byte) ([]byte, error)   { return data, nil }
func (noopAuxiliaryCodec) Decompress(data []byte) ([]byte, error) { return data, nil }
