package schema

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/chemfiles/tng/format"
	"github.com/chemfiles/tng/topology"
)

func TestEndiannessRoundTrip(t *testing.T) {
	payload := EncodeEndianness()

	e, err := DecodeEndianness(payload)
	require.NoError(t, err)
	require.True(t, e.IsCanonical())
}

func TestEndiannessBadLength(t *testing.T) {
	_, err := DecodeEndianness([]byte{1, 2, 3})
	require.Error(t, err)
}

func TestGeneralInfoRoundTrip(t *testing.T) {
	g := GeneralInfo{
		ProgramName:         "gromacs",
		ForcefieldName:      "amber99sb",
		UserName:            "alice",
		ComputerName:        "cluster01",
		CreationTime:        1700000000,
		PGPSignature:        "",
		VariableAtomCount:   true,
		FrameSetNFrames:     100,
		LongStrideLength:    10,
		FirstFrameSetOffset: 512,
		LastFrameSetOffset:  4096,
	}

	payload := EncodeGeneralInfo(g)

	got, err := DecodeGeneralInfo(payload)
	require.NoError(t, err)
	require.Equal(t, g, got)
}

func TestMoleculesRoundTrip(t *testing.T) {
	b := topology.NewBuilder()
	molIdx := b.AddMolecule(topology.Molecule{ID: 1, QuaternaryStruct: 1, Name: "water"})
	chainIdx := b.AddChain(molIdx, topology.Chain{ID: 1, Name: "W"})
	resIdx := b.AddResidue(chainIdx, topology.Residue{ID: 1, Name: "SOL"})
	b.AddAtom(resIdx, topology.Atom{ID: 1, AtomType: "OW", Name: "O"})
	b.AddAtom(resIdx, topology.Atom{ID: 2, AtomType: "HW", Name: "H1"})
	b.AddBonds(molIdx, []topology.Bond{{FromAtomID: 1, ToAtomID: 2}})
	b.SetMoleculeCounts([]int64{10})

	arena, err := b.Build()
	require.NoError(t, err)

	payload := EncodeMolecules(Molecules{Arena: arena})

	got, err := DecodeMolecules(payload)
	require.NoError(t, err)

	require.EqualValues(t, 10, got.Arena.NumMolecules())
	require.EqualValues(t, 20, got.Arena.NumParticles())
	require.Equal(t, "water", got.Arena.Molecules[0].Name)
	require.Len(t, got.Arena.Molecules[0].Bonds, 1)
}

func TestTrajectoryIDsNamesRoundTrip(t *testing.T) {
	in := TrajectoryIDsNames{Entries: []TrajectoryIDName{
		{ID: uint64(format.BlockIDTrajectoryPositions), Name: "POSITIONS"},
	}}

	payload := EncodeTrajectoryIDsNames(in)
	got, err := DecodeTrajectoryIDsNames(payload)
	require.NoError(t, err)
	require.Equal(t, in, got)
}

func TestFrameSetHeaderRoundTripNoVariableCounts(t *testing.T) {
	fs := FrameSetHeader{
		FirstFrame:     0,
		NFrames:        10,
		PrevOffset:     NoOffset,
		NextOffset:     4096,
		LongPrevOffset: NoOffset,
		LongNextOffset: NoOffset,
	}

	payload := EncodeFrameSetHeader(fs)
	got, err := DecodeFrameSetHeader(payload)
	require.NoError(t, err)
	require.Equal(t, fs, got)
	require.EqualValues(t, 9, got.LastFrame())
}

func TestFrameSetHeaderRoundTripWithVariableCounts(t *testing.T) {
	fs := FrameSetHeader{
		FirstFrame:     100,
		NFrames:        5,
		MoleculeCounts: []int64{10, 20},
		NParticles:     90,
		PrevOffset:     1024,
		NextOffset:     NoOffset,
		LongPrevOffset: 512,
		LongNextOffset: NoOffset,
	}

	payload := EncodeFrameSetHeader(fs)
	got, err := DecodeFrameSetHeader(payload)
	require.NoError(t, err)
	require.Equal(t, fs, got)
}

func TestParticleMappingRoundTripContiguous(t *testing.T) {
	pm := ParticleMapping{FirstRealParticle: 100, NParticles: 5}

	payload := EncodeParticleMapping(pm)
	got, err := DecodeParticleMapping(payload)
	require.NoError(t, err)
	require.Equal(t, pm, got)
	require.EqualValues(t, 102, got.RealParticle(2))
}

func TestParticleMappingRoundTripExplicit(t *testing.T) {
	pm := ParticleMapping{
		FirstRealParticle:   0,
		NParticles:          3,
		RealParticleNumbers: []int64{5, 9, 12},
	}

	payload := EncodeParticleMapping(pm)
	got, err := DecodeParticleMapping(payload)
	require.NoError(t, err)
	require.Equal(t, pm, got)
	require.EqualValues(t, 9, got.RealParticle(1))
}

func TestReorderRowConcatenatesPartitions(t *testing.T) {
	mappings := []ParticleMapping{
		{FirstRealParticle: 2, NParticles: 1},
		{FirstRealParticle: 0, NParticles: 2},
	}

	// ReorderRow takes local particles in the order of the mappings it is
	// given, so the mappings are sorted by FirstRealParticle first, the
	// same way the reader does before calling ReorderRow.
	sortedMappings := []ParticleMapping{mappings[1], mappings[0]}

	// 3 local particles, 2 values each: particle 0 -> real 0, particle 1
	// -> real 1, particle 2 -> real 2.
	row := []float64{10, 11, 20, 21, 30, 31}

	out, err := ReorderRow(sortedMappings, row, 3)
	require.NoError(t, err)
	require.Equal(t, []float64{10, 11, 20, 21, 30, 31}, out)
}

func TestReorderRowExplicitNumbersAndGaps(t *testing.T) {
	mappings := []ParticleMapping{
		{FirstRealParticle: 0, NParticles: 2, RealParticleNumbers: []int64{3, 1}},
	}

	row := []float64{100, 200}

	out, err := ReorderRow(mappings, row, 4)
	require.NoError(t, err)
	require.Equal(t, []float64{0, 200, 0, 100}, out)
}

func TestReorderRowRejectsMismatchedWidth(t *testing.T) {
	mappings := []ParticleMapping{{FirstRealParticle: 0, NParticles: 2}}
	row := []float64{1, 2, 3} // not a multiple of 2 local particles

	_, err := ReorderRow(mappings, row, 2)
	require.Error(t, err)
}

func TestTableOfContentsRoundTrip(t *testing.T) {
	toc := TableOfContents{Entries: []TOCEntry{
		{Name: "GENERAL INFO", Offset: 0},
		{Name: "MOLECULES", Offset: 256},
	}}

	payload := EncodeTableOfContents(toc)
	got, err := DecodeTableOfContents(payload)
	require.NoError(t, err)
	require.Equal(t, toc, got)

	offset, ok := got.Find("MOLECULES")
	require.True(t, ok)
	require.EqualValues(t, 256, offset)

	_, ok = got.Find("missing")
	require.False(t, ok)
}

func TestDataBlockRoundTripRaw(t *testing.T) {
	const nFrames, nValuesPerFrame = 3, 6
	values := make([]float64, nFrames*nValuesPerFrame)
	for i := range values {
		values[i] = float64(i) * 1.5
	}

	db := DataBlock{
		Header: DataBlockHeader{
			BlockID:               format.BlockIDTrajectoryPositions,
			Name:                  "POSITIONS",
			DataType:              format.DataTypeFloat64,
			FirstFrameWithData:    0,
			NFrames:               nFrames,
			NValuesPerFrame:       nValuesPerFrame,
			StrideLength:          1,
			CodecID:               format.CodecRaw,
			CompressionMultiplier: 1,
		},
		Values: values,
	}

	payload, err := EncodeDataBlock(db)
	require.NoError(t, err)

	got, err := DecodeDataBlock(payload)
	require.NoError(t, err)
	require.Equal(t, values, got.Values)
	require.Equal(t, db.Header, got.Header)
}

func TestDataBlockRoundTripCompressedPositions(t *testing.T) {
	const nFrames, nValuesPerFrame = 4, 9 // 3 particles
	values := make([]float64, nFrames*nValuesPerFrame)
	for i := range values {
		values[i] = float64(i%5) * 0.1
	}

	db := DataBlock{
		Header: DataBlockHeader{
			BlockID:               format.BlockIDTrajectoryPositions,
			Name:                  "POSITIONS",
			DataType:              format.DataTypeFloat64,
			FirstFrameWithData:    0,
			NFrames:               nFrames,
			NValuesPerFrame:       nValuesPerFrame,
			StrideLength:          1,
			CodecID:               format.CodecTNGPositions,
			CompressionMultiplier: 1000,
		},
		Values: values,
	}

	payload, err := EncodeDataBlock(db)
	require.NoError(t, err)

	got, err := DecodeDataBlock(payload)
	require.NoError(t, err)

	for i, v := range values {
		require.InDelta(t, v, got.Values[i], 1e-3)
	}
}
