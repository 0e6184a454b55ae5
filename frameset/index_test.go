package frameset

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/chemfiles/tng/schema"
)

var errNotFound = errors.New("frameset test: offset not in chain")

// buildChain constructs n frame sets of nFramesEach frames each, linked
// both by immediate next/prev pointers and, every longEvery frame sets, by
// long-stride pointers, mimicking what the writer package produces.
func buildChain(n int, nFramesEach int64, longEvery int64) map[int64]schema.FrameSetHeader {
	chain := make(map[int64]schema.FrameSetHeader, n)

	longCandidate := schema.NoOffset

	for i := 0; i < n; i++ {
		offset := int64((i + 1) * 1000)

		fs := schema.FrameSetHeader{
			FirstFrame:     int64(i) * nFramesEach,
			NFrames:        nFramesEach,
			PrevOffset:     schema.NoOffset,
			NextOffset:     schema.NoOffset,
			LongPrevOffset: schema.NoOffset,
			LongNextOffset: schema.NoOffset,
		}

		if i > 0 {
			prevOffset := int64(i * 1000)
			fs.PrevOffset = prevOffset

			prev := chain[prevOffset]
			prev.NextOffset = offset
			chain[prevOffset] = prev
		}

		if longEvery > 0 && int64(i)%longEvery == 0 {
			if i > 0 && longCandidate != schema.NoOffset {
				fs.LongPrevOffset = longCandidate

				lc := chain[longCandidate]
				lc.LongNextOffset = offset
				chain[longCandidate] = lc
			}

			longCandidate = offset
		}

		chain[offset] = fs
	}

	return chain
}

func loaderFor(chain map[int64]schema.FrameSetHeader) HeaderLoader {
	return func(offset int64) (schema.FrameSetHeader, error) {
		fs, ok := chain[offset]
		if !ok {
			return schema.FrameSetHeader{}, errNotFound
		}

		return fs, nil
	}
}

func TestLocateWalksShortLinks(t *testing.T) {
	chain := buildChain(5, 10, 0)
	idx := NewIndex(loaderFor(chain), 1000, 5000, 10, 0)

	offset, fs, err := idx.Locate(25)
	require.NoError(t, err)
	require.Equal(t, int64(3000), offset)
	require.Equal(t, int64(20), fs.FirstFrame)
}

func TestLocateOutOfRange(t *testing.T) {
	chain := buildChain(3, 10, 0)
	idx := NewIndex(loaderFor(chain), 1000, 3000, 10, 0)

	_, _, err := idx.Locate(1000)
	require.Error(t, err)
}

func TestLocateUsesLongStride(t *testing.T) {
	// 10 frame sets of 10 frames each, long stride every 3 frame sets.
	chain := buildChain(10, 10, 3)
	idx := NewIndex(loaderFor(chain), 1000, 10000, 10, 3)

	offset, fs, err := idx.Locate(95)
	require.NoError(t, err)
	require.LessOrEqual(t, fs.FirstFrame, int64(95))
	require.GreaterOrEqual(t, fs.LastFrame(), int64(95))
	require.Equal(t, int64(10000), offset)
}

func TestWalkVisitsEveryFrameSet(t *testing.T) {
	chain := buildChain(4, 10, 0)
	idx := NewIndex(loaderFor(chain), 1000, 4000, 10, 0)

	var seen []int64
	require.NoError(t, idx.Walk(func(offset int64, fs schema.FrameSetHeader) error {
		seen = append(seen, offset)
		return nil
	}))

	require.Equal(t, []int64{1000, 2000, 3000, 4000}, seen)
}

func TestLocateCachesNearestOffset(t *testing.T) {
	chain := buildChain(5, 10, 0)
	idx := NewIndex(loaderFor(chain), 1000, 5000, 10, 0)

	_, _, err := idx.Locate(22)
	require.NoError(t, err)

	offset, fs, err := idx.Locate(31)
	require.NoError(t, err)
	require.Equal(t, int64(4000), offset)
	require.Equal(t, int64(30), fs.FirstFrame)
}
