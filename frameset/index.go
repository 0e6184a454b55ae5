// Package frameset implements §4.E: locating the frame set that covers a
// requested frame number by walking the on-disk doubly-linked chain of
// frame-set headers, using the long-stride skip pointers to avoid a
// frame-set-by-frame-set scan across a large file.
package frameset

import (
	"github.com/chemfiles/tng/errs"
	"github.com/chemfiles/tng/schema"
)

// HeaderLoader reads and decodes the FrameSetHeader stored at offset. The
// reader package supplies an implementation backed by the block framer;
// tests supply one backed by an in-memory map.
type HeaderLoader func(offset int64) (schema.FrameSetHeader, error)

// Index walks the frame-set chain on demand via a HeaderLoader rather than
// holding every frame-set header in memory, so a locate costs O(chain
// hops), not O(file size).
type Index struct {
	loader HeaderLoader

	firstOffset int64
	lastOffset  int64

	frameSetNFrames  int64
	longStrideLength int64

	// cachedOffset/cachedHeader remember the most recently located frame
	// set, so a sequence of nearby locates (the common read pattern: a
	// caller scanning forward through a range) starts from there instead
	// of re-walking from the first frame set every time.
	cachedOffset int64
	cachedHeader schema.FrameSetHeader
	haveCache    bool
}

// NewIndex constructs an Index over the chain beginning at firstOffset.
// frameSetNFrames and longStrideLength come from the file's GeneralInfo
// block and govern when Locate prefers a long-stride hop over a
// single-step one.
func NewIndex(loader HeaderLoader, firstOffset, lastOffset, frameSetNFrames, longStrideLength int64) *Index {
	return &Index{
		loader:           loader,
		firstOffset:      firstOffset,
		lastOffset:       lastOffset,
		frameSetNFrames:  frameSetNFrames,
		longStrideLength: longStrideLength,
	}
}

// Locate returns the file offset and header of the frame set covering
// targetFrame (§4.E): start at the nearest cached offset if it is not
// already past the target, else the first frame set; at each hop, follow
// the long-stride pointer when the target lies further ahead than
// long_stride_length * frame_set_n_frames frames, otherwise follow the
// immediate next pointer; a sentinel NoOffset link ends the chain.
func (idx *Index) Locate(targetFrame int64) (int64, schema.FrameSetHeader, error) {
	if idx.firstOffset == schema.NoOffset {
		return 0, schema.FrameSetHeader{}, errs.ErrFrameOutOfRange
	}

	offset := idx.firstOffset
	if idx.haveCache && targetFrame >= idx.cachedHeader.FirstFrame {
		offset = idx.cachedOffset
	}

	fs, err := idx.loader(offset)
	if err != nil {
		return 0, schema.FrameSetHeader{}, err
	}

	longStride := idx.longStrideLength * idx.frameSetNFrames

	for {
		if targetFrame < fs.FirstFrame {
			// The cached starting point overshot; a correctly linked chain
			// is monotonic in FirstFrame, so there is no recovering this
			// from here without walking backward from the start.
			if offset == idx.firstOffset {
				return 0, schema.FrameSetHeader{}, errs.ErrFrameOutOfRange
			}

			offset = idx.firstOffset
			fs, err = idx.loader(offset)
			if err != nil {
				return 0, schema.FrameSetHeader{}, err
			}

			continue
		}

		if targetFrame <= fs.LastFrame() {
			idx.cachedOffset = offset
			idx.cachedHeader = fs
			idx.haveCache = true

			return offset, fs, nil
		}

		next := fs.NextOffset
		if longStride > 0 && targetFrame-fs.LastFrame() > longStride && fs.LongNextOffset != schema.NoOffset {
			next = fs.LongNextOffset
		}

		if next == schema.NoOffset {
			return 0, schema.FrameSetHeader{}, errs.ErrFrameOutOfRange
		}

		offset = next

		fs, err = idx.loader(offset)
		if err != nil {
			return 0, schema.FrameSetHeader{}, err
		}
	}
}

// FirstOffset returns the offset of the first frame set in the chain.
func (idx *Index) FirstOffset() int64 { return idx.firstOffset }

// LastOffset returns the offset of the last frame set in the chain.
func (idx *Index) LastOffset() int64 { return idx.lastOffset }

// SetLastOffset updates the last-offset bookkeeping after a writer appends
// a new frame set.
func (idx *Index) SetLastOffset(offset int64) { idx.lastOffset = offset }

// InvalidateCache drops the remembered nearest-offset hint; callers should
// do this after any structural change to the chain they did not make
// through this Index (e.g. a writer appending a frame set).
func (idx *Index) InvalidateCache() { idx.haveCache = false }

// Walk visits every frame set from the first to the last by following
// NextOffset, invoking fn(offset, header) for each. It stops early and
// returns fn's error if fn returns one.
func (idx *Index) Walk(fn func(offset int64, fs schema.FrameSetHeader) error) error {
	if idx.firstOffset == schema.NoOffset {
		return nil
	}

	offset := idx.firstOffset

	for offset != schema.NoOffset {
		fs, err := idx.loader(offset)
		if err != nil {
			return err
		}

		if err := fn(offset, fs); err != nil {
			return err
		}

		offset = fs.NextOffset
	}

	return nil
}
