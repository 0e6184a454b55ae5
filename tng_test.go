package tng_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/chemfiles/tng"
	"github.com/chemfiles/tng/errs"
	"github.com/chemfiles/tng/format"
	"github.com/chemfiles/tng/schema"
	"github.com/chemfiles/tng/topology"
	"github.com/chemfiles/tng/writer"
)

func buildArgonArena(t *testing.T) *topology.Arena {
	t.Helper()

	b := topology.NewBuilder()
	molIdx := b.AddMolecule(topology.Molecule{ID: 1, QuaternaryStruct: 1, Name: "argon"})
	chainIdx := b.AddChain(molIdx, topology.Chain{ID: 1, Name: "A"})
	resIdx := b.AddResidue(chainIdx, topology.Residue{ID: 1, Name: "ARG"})
	b.AddAtom(resIdx, topology.Atom{ID: 1, AtomType: "Ar", Name: "AR"})
	b.SetMoleculeCounts([]int64{2})

	arena, err := b.Build()
	require.NoError(t, err)

	return arena
}

func TestWriteThenReadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "argon.tng")

	f, err := os.Create(path)
	require.NoError(t, err)

	arena := buildArgonArena(t)
	trajIDs := schema.TrajectoryIDsNames{Entries: []schema.TrajectoryIDName{
		{ID: uint64(format.BlockIDTrajectoryPositions), Name: "POSITIONS"},
	}}

	w, err := tng.Create(f, tng.Config{
		ProgramName:      "test-harness",
		ForcefieldName:   "none",
		UserName:         "tester",
		ComputerName:     "localhost",
		CreationTime:     1700000000,
		FrameSetNFrames:  5,
		LongStrideLength: 2,
	}, arena, trajIDs)
	require.NoError(t, err)

	const nParticles = 2
	const frameWidth = nParticles * 3

	makeValues := func(base, nFrames int) []float64 {
		values := make([]float64, nFrames*frameWidth)
		for i := range values {
			values[i] = float64(base+i) * 0.01
		}
		return values
	}

	require.NoError(t, w.AppendFrameSet(5, []writer.FrameSetData{
		{
			Kind:                  format.KindPositions,
			NValuesPerFrame:       frameWidth,
			StrideLength:          1,
			CodecID:               format.CodecTNGPositions,
			CompressionMultiplier: 1000,
			Values:                makeValues(0, 5),
		},
	}))

	require.NoError(t, w.AppendFrameSet(5, []writer.FrameSetData{
		{
			Kind:                  format.KindPositions,
			NValuesPerFrame:       frameWidth,
			StrideLength:          1,
			CodecID:               format.CodecTNGPositions,
			CompressionMultiplier: 1000,
			Values:                makeValues(100, 5),
		},
	}))

	require.NoError(t, f.Close())

	rf, err := os.Open(path)
	require.NoError(t, err)
	defer rf.Close()

	traj, err := tng.Open(rf)
	require.NoError(t, err)

	require.EqualValues(t, 10, traj.NumFrames())
	require.EqualValues(t, 2, traj.NumParticles())
	require.Equal(t, 0, traj.FindMolecule("argon"))

	result, err := traj.ReadAll(format.KindPositions)
	require.NoError(t, err)
	require.EqualValues(t, 0, result.FirstFrame)
	require.EqualValues(t, 10, result.NFrames)
	require.EqualValues(t, frameWidth, result.NValuesPerFrame)

	want := append(makeValues(0, 5), makeValues(100, 5)...)
	require.Len(t, result.Values, len(want))
	for i, v := range want {
		require.InDelta(t, v, result.Values[i], 1e-3)
	}
}

func TestReadRangePartialWindow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "argon2.tng")

	f, err := os.Create(path)
	require.NoError(t, err)

	arena := buildArgonArena(t)

	w, err := tng.Create(f, tng.Config{
		ProgramName:      "test-harness",
		FrameSetNFrames:  4,
		LongStrideLength: 0,
	}, arena, schema.TrajectoryIDsNames{})
	require.NoError(t, err)

	const frameWidth = 6

	for fs := 0; fs < 3; fs++ {
		values := make([]float64, 4*frameWidth)
		for i := range values {
			values[i] = float64(fs*100 + i)
		}

		require.NoError(t, w.AppendFrameSet(4, []writer.FrameSetData{
			{
				Kind:                  format.KindVelocities,
				NValuesPerFrame:       frameWidth,
				StrideLength:          1,
				CodecID:               format.CodecTNGVelocities,
				CompressionMultiplier: 100,
				Values:                values,
			},
		}))
	}

	require.NoError(t, f.Close())

	rf, err := os.Open(path)
	require.NoError(t, err)
	defer rf.Close()

	traj, err := tng.Open(rf)
	require.NoError(t, err)
	require.EqualValues(t, 12, traj.NumFrames())

	result, err := traj.ReadRange(format.KindVelocities, 5, 8)
	require.NoError(t, err)
	require.EqualValues(t, 4, result.NFrames)

	_, err = traj.ReadRange(format.KindForces, 0, 3)
	require.Error(t, err)
}

func TestWriteThenReadWithAuxiliaryCompression(t *testing.T) {
	path := filepath.Join(t.TempDir(), "argon3.tng")

	f, err := os.Create(path)
	require.NoError(t, err)

	arena := buildArgonArena(t)
	trajIDs := schema.TrajectoryIDsNames{Entries: []schema.TrajectoryIDName{
		{ID: uint64(format.BlockIDTrajectoryPositions), Name: "POSITIONS"},
	}}

	w, err := tng.Create(f, tng.Config{
		ProgramName:      "test-harness",
		FrameSetNFrames:  3,
		LongStrideLength: 0,
		AuxiliaryCodec:   format.CodecAuxiliaryZstd,
	}, arena, trajIDs, tng.WithoutSync())
	require.NoError(t, err)

	const frameWidth = 6
	values := make([]float64, 3*frameWidth)
	for i := range values {
		values[i] = float64(i) * 0.5
	}

	require.NoError(t, w.AppendFrameSet(3, []writer.FrameSetData{
		{
			Kind:                  format.KindPositions,
			NValuesPerFrame:       frameWidth,
			StrideLength:          1,
			CodecID:               format.CodecTNGPositions,
			CompressionMultiplier: 1000,
			Values:                values,
		},
	}))

	require.NoError(t, f.Close())

	rf, err := os.Open(path)
	require.NoError(t, err)
	defer rf.Close()

	traj, err := tng.Open(rf)
	require.NoError(t, err)
	require.EqualValues(t, 3, traj.NumFrames())
	require.EqualValues(t, 2, traj.NumParticles())
	require.Equal(t, 0, traj.FindMolecule("argon"))
}

func TestReadRangeMisalignedReportsStride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "argon4.tng")

	f, err := os.Create(path)
	require.NoError(t, err)

	arena := buildArgonArena(t)

	w, err := tng.Create(f, tng.Config{
		ProgramName:      "test-harness",
		FrameSetNFrames:  10,
		LongStrideLength: 0,
	}, arena, schema.TrajectoryIDsNames{})
	require.NoError(t, err)

	const frameWidth = 6

	// Two stored rows, at frames 0 and 5 (stride_length 5) within a
	// 10-frame frame set.
	values := make([]float64, 2*frameWidth)
	for i := range values {
		values[i] = float64(i)
	}

	require.NoError(t, w.AppendFrameSet(10, []writer.FrameSetData{
		{
			Kind:                  format.KindPositions,
			NValuesPerFrame:       frameWidth,
			StrideLength:          5,
			CodecID:               format.CodecTNGPositions,
			CompressionMultiplier: 1000,
			Values:                values,
		},
	}))

	require.NoError(t, f.Close())

	rf, err := os.Open(path)
	require.NoError(t, err)
	defer rf.Close()

	traj, err := tng.Open(rf)
	require.NoError(t, err)

	// Frame 1 sits strictly between the stored frames 0 and 5, so no row
	// overlaps [1, 1]; the failure should still report the native stride.
	result, err := traj.ReadRange(format.KindPositions, 1, 1)
	require.Error(t, err)
	require.ErrorIs(t, err, errs.ErrRangeMisaligned)
	require.EqualValues(t, 5, result.StrideLength)

	// Forces were never written at all: a distinct, kind-absent failure.
	_, err = traj.ReadRange(format.KindForces, 0, 3)
	require.Error(t, err)
	require.ErrorIs(t, err, errs.ErrNotPresent)
}

func TestWriteThenReadWithParticleMapping(t *testing.T) {
	path := filepath.Join(t.TempDir(), "argon5.tng")

	f, err := os.Create(path)
	require.NoError(t, err)

	arena := buildArgonArena(t)

	w, err := tng.Create(f, tng.Config{
		ProgramName:      "test-harness",
		FrameSetNFrames:  1,
		LongStrideLength: 0,
	}, arena, schema.TrajectoryIDsNames{})
	require.NoError(t, err)

	const frameWidth = 6 // 2 particles * 3 values

	// Local particle 0 carries (1,2,3), local particle 1 carries (4,5,6).
	values := []float64{1, 2, 3, 4, 5, 6}

	// The mapping swaps them: local 0 is real particle 1, local 1 is real
	// particle 0.
	mapping := schema.ParticleMapping{
		FirstRealParticle:   0,
		NParticles:          2,
		RealParticleNumbers: []int64{1, 0},
	}

	require.NoError(t, w.AppendFrameSet(1, []writer.FrameSetData{
		{
			Kind:                  format.KindPositions,
			NValuesPerFrame:       frameWidth,
			StrideLength:          1,
			CodecID:               format.CodecTNGPositions,
			CompressionMultiplier: 1000,
			Values:                values,
		},
	}, mapping))

	require.NoError(t, f.Close())

	rf, err := os.Open(path)
	require.NoError(t, err)
	defer rf.Close()

	traj, err := tng.Open(rf)
	require.NoError(t, err)

	result, err := traj.ReadAll(format.KindPositions)
	require.NoError(t, err)
	require.EqualValues(t, frameWidth, result.NValuesPerFrame)
	require.InDeltaSlice(t, []float64{4, 5, 6, 1, 2, 3}, result.Values, 1e-3)
}
