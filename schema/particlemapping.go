package schema

import (
	"bytes"

	"github.com/chemfiles/tng/block"
	"github.com/chemfiles/tng/endian"
	"github.com/chemfiles/tng/errs"
	"github.com/chemfiles/tng/format"
)

// ParticleMapping is block id 6 (§4.D): it appears within a frame set
// when that frame set's trajectory data covers a contiguous sub-range of
// the system's real particles rather than all of them (e.g. trajectories
// written by a subset of parallel ranks), mapping a local particle index
// within this frame set's data blocks back to the real, system-wide
// particle number.
type ParticleMapping struct {
	FirstRealParticle int64
	NParticles        int64

	// RealParticleNumbers is present only when the mapped particles are
	// not already contiguous starting at FirstRealParticle; nil means
	// "particle i of this mapping is real particle FirstRealParticle+i".
	RealParticleNumbers []int64
}

// DecodeParticleMapping parses a particle-mapping block payload.
func DecodeParticleMapping(payload []byte) (ParticleMapping, error) {
	r := endian.NewReader(bytes.NewReader(payload))
	var pm ParticleMapping
	var err error

	if pm.FirstRealParticle, err = r.I64(); err != nil {
		return pm, err
	}
	if pm.NParticles, err = r.I64(); err != nil {
		return pm, err
	}

	explicit, err := r.Bytes(1)
	if err != nil {
		return pm, err
	}

	if explicit[0] != 0 {
		nums := make([]int64, pm.NParticles)
		for i := range nums {
			if nums[i], err = r.I64(); err != nil {
				return pm, err
			}
		}
		pm.RealParticleNumbers = nums
	}

	return pm, nil
}

// EncodeParticleMapping serializes a ParticleMapping block.
func EncodeParticleMapping(pm ParticleMapping) []byte {
	w := endian.NewWriter()
	w.PutI64(pm.FirstRealParticle)
	w.PutI64(pm.NParticles)

	if pm.RealParticleNumbers != nil {
		w.PutBytes([]byte{1})
		for _, n := range pm.RealParticleNumbers {
			w.PutI64(n)
		}
	} else {
		w.PutBytes([]byte{0})
	}

	return w.Bytes()
}

// Header returns the block.Header to frame this payload.
func (pm ParticleMapping) Header() block.Header {
	return block.New(format.BlockIDParticleMapping, "PARTICLE MAPPING", 1)
}

// RealParticle returns the real, system-wide particle number for local
// index i within this mapping's data blocks.
func (pm ParticleMapping) RealParticle(i int64) int64 {
	if pm.RealParticleNumbers != nil {
		return pm.RealParticleNumbers[i]
	}

	return pm.FirstRealParticle + i
}

// ReorderRow maps one row of local-particle-ordered values, as stored in a
// frame set's trajectory data blocks, into real-particle order (§4.F:
// "Particle order in the output is the real particle order... the reader
// concatenates in increasing first_real_particle"). mappings must already
// be sorted by FirstRealParticle; row's length must be an exact multiple
// of the mappings' combined particle count, the quotient being the
// per-particle value width (3 for positions/velocities/forces). The
// returned row is sized nRealParticles*valuesPerParticle wide, with any
// real particle absent from mappings left zeroed.
func ReorderRow(mappings []ParticleMapping, row []float64, nRealParticles int64) ([]float64, error) {
	localCount := int64(0)
	for _, m := range mappings {
		localCount += m.NParticles
	}

	if localCount == 0 || len(row)%int(localCount) != 0 {
		return nil, errs.ErrSchemaMismatch
	}

	valuesPerParticle := int64(len(row)) / localCount
	out := make([]float64, nRealParticles*valuesPerParticle)

	localIdx := int64(0)
	for _, m := range mappings {
		for i := int64(0); i < m.NParticles; i++ {
			real := m.RealParticle(i)
			if real < 0 || real >= nRealParticles {
				return nil, errs.ErrSchemaMismatch
			}

			copy(out[real*valuesPerParticle:(real+1)*valuesPerParticle], row[localIdx*valuesPerParticle:(localIdx+1)*valuesPerParticle])
			localIdx++
		}
	}

	return out, nil
}
