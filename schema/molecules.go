package schema

import (
	"bytes"

	"github.com/chemfiles/tng/block"
	"github.com/chemfiles/tng/endian"
	"github.com/chemfiles/tng/format"
	"github.com/chemfiles/tng/topology"
)

// Molecules is block id 2 (§4.D): the full topology tree (molecule ->
// chain -> residue -> atom, plus bonds) together with the molecule-count
// list that expands it into real particles.
type Molecules struct {
	Arena *topology.Arena
}

// DecodeMolecules parses a molecules block payload into a topology.Arena.
// Wire shape (all little-endian, strings length-prefixed per §4.A):
//
//	u64 n_molecules
//	repeated molecule {
//	    i64 id
//	    i64 quaternary_structure
//	    string name
//	    u64 n_chains
//	    repeated chain {
//	        i64 id
//	        string name
//	        u64 n_residues
//	        repeated residue {
//	            i64 id
//	            string name
//	            u64 n_atoms
//	            repeated atom { i64 id; string atom_type; string name }
//	        }
//	    }
//	    u64 n_bonds
//	    repeated bond { i64 from_atom_id; i64 to_atom_id }
//	}
//	u64 n_molecule_counts   (0 means "not present"; implies count 1 each)
//	repeated i64 molecule_count
func DecodeMolecules(payload []byte) (Molecules, error) {
	r := endian.NewReader(bytes.NewReader(payload))

	nMolecules, err := r.U64()
	if err != nil {
		return Molecules{}, err
	}

	b := topology.NewBuilder()

	for mi := uint64(0); mi < nMolecules; mi++ {
		molID, err := r.I64()
		if err != nil {
			return Molecules{}, err
		}
		quat, err := r.I64()
		if err != nil {
			return Molecules{}, err
		}
		molName, err := r.String()
		if err != nil {
			return Molecules{}, err
		}

		moleculeIdx := b.AddMolecule(topology.Molecule{
			ID:               molID,
			QuaternaryStruct: quat,
			Name:             molName,
		})

		nChains, err := r.U64()
		if err != nil {
			return Molecules{}, err
		}

		for ci := uint64(0); ci < nChains; ci++ {
			chainID, err := r.I64()
			if err != nil {
				return Molecules{}, err
			}
			chainName, err := r.String()
			if err != nil {
				return Molecules{}, err
			}

			chainIdx := b.AddChain(moleculeIdx, topology.Chain{ID: chainID, Name: chainName})

			nResidues, err := r.U64()
			if err != nil {
				return Molecules{}, err
			}

			for ri := uint64(0); ri < nResidues; ri++ {
				resID, err := r.I64()
				if err != nil {
					return Molecules{}, err
				}
				resName, err := r.String()
				if err != nil {
					return Molecules{}, err
				}

				residueIdx := b.AddResidue(chainIdx, topology.Residue{ID: resID, Name: resName})

				nAtoms, err := r.U64()
				if err != nil {
					return Molecules{}, err
				}

				for ai := uint64(0); ai < nAtoms; ai++ {
					atomID, err := r.I64()
					if err != nil {
						return Molecules{}, err
					}
					atomType, err := r.String()
					if err != nil {
						return Molecules{}, err
					}
					atomName, err := r.String()
					if err != nil {
						return Molecules{}, err
					}

					b.AddAtom(residueIdx, topology.Atom{ID: atomID, AtomType: atomType, Name: atomName})
				}
			}
		}

		nBonds, err := r.U64()
		if err != nil {
			return Molecules{}, err
		}

		bonds := make([]topology.Bond, 0, nBonds)
		for bi := uint64(0); bi < nBonds; bi++ {
			from, err := r.I64()
			if err != nil {
				return Molecules{}, err
			}
			to, err := r.I64()
			if err != nil {
				return Molecules{}, err
			}

			bonds = append(bonds, topology.Bond{FromAtomID: from, ToAtomID: to})
		}

		b.AddBonds(moleculeIdx, bonds)
	}

	arena, err := b.Build()
	if err != nil {
		return Molecules{}, err
	}

	nCounts, err := r.U64()
	if err != nil {
		return Molecules{}, err
	}

	if nCounts > 0 {
		counts := make([]int64, nCounts)
		for i := range counts {
			c, err := r.I64()
			if err != nil {
				return Molecules{}, err
			}
			counts[i] = c
		}
		arena.MoleculeCounts = counts
	}

	return Molecules{Arena: arena}, nil
}

// EncodeMolecules serializes a Molecules block from its topology.Arena.
func EncodeMolecules(m Molecules) []byte {
	w := endian.NewWriter()
	a := m.Arena

	w.PutU64(uint64(len(a.Molecules)))

	for _, mol := range a.Molecules {
		w.PutI64(mol.ID)
		w.PutI64(mol.QuaternaryStruct)
		w.PutString(mol.Name)

		w.PutU64(uint64(len(mol.ChainsIdx)))
		for _, ci := range mol.ChainsIdx {
			c := a.Chains[ci]
			w.PutI64(c.ID)
			w.PutString(c.Name)

			w.PutU64(uint64(len(c.ResiduesIdx)))
			for _, ri := range c.ResiduesIdx {
				res := a.Residues[ri]
				w.PutI64(res.ID)
				w.PutString(res.Name)

				w.PutU64(uint64(len(res.AtomsIdx)))
				for _, ai := range res.AtomsIdx {
					atom := a.Atoms[ai]
					w.PutI64(atom.ID)
					w.PutString(atom.AtomType)
					w.PutString(atom.Name)
				}
			}
		}

		w.PutU64(uint64(len(mol.Bonds)))
		for _, bd := range mol.Bonds {
			w.PutI64(bd.FromAtomID)
			w.PutI64(bd.ToAtomID)
		}
	}

	w.PutU64(uint64(len(a.MoleculeCounts)))
	for _, c := range a.MoleculeCounts {
		w.PutI64(c)
	}

	return w.Bytes()
}

// Header returns the block.Header to frame this molecules payload.
func (m Molecules) Header() block.Header {
	return block.New(format.BlockIDMolecules, "MOLECULES", 1)
}
