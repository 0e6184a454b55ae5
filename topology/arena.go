// Package topology models the molecule -> chain -> residue -> atom tree
// plus its bond list (§3, §4.D) as a flat, index-addressed arena rather
// than the cyclic parent-back-pointer graph the reference implementation
// uses (Design Notes 9). Each node refers to its parent and children by
// index into the arena's slices; traversal methods resolve those indices
// lazily, so the data stays trivially copyable and free of reference
// cycles.
package topology

import (
	"github.com/chemfiles/tng/errs"
	"github.com/chemfiles/tng/internal/hash"
)

// Atom is a single real or template atom; AtomType and Name are typically
// forcefield-dependent labels (e.g. "opls_135", "CA").
type Atom struct {
	ID        int64
	AtomType  string
	Name      string
	residueIdx int
}

// Residue groups a contiguous run of Atom indices under one residue id.
type Residue struct {
	ID       int64
	Name     string
	AtomsIdx []int
	chainIdx int
}

// Chain groups a contiguous run of Residue indices under one chain id.
type Chain struct {
	ID         int64
	Name       string
	ResiduesIdx []int
	moleculeIdx int
}

// Bond references two atom ids (local to the owning molecule, not arena
// indices) that are bonded.
type Bond struct {
	FromAtomID int64
	ToAtomID   int64
}

// Molecule is the root of one topology tree; quaternary structure follows
// the reference semantics (1=monomeric, 2=dimeric, 3=trimeric, ...).
type Molecule struct {
	ID               int64
	QuaternaryStruct int64
	Name             string
	ChainsIdx        []int
	ResiduesIdx      []int
	AtomsIdx         []int
	Bonds            []Bond
}

// Arena owns every Molecule/Chain/Residue/Atom in a topology, plus the
// molecule-count list that expands the distinct molecule templates into
// n_particles real atoms.
type Arena struct {
	Molecules []Molecule
	Chains    []Chain
	Residues  []Residue
	Atoms     []Atom

	// MoleculeCounts[i] is the number of copies of Molecules[i] present in
	// the real system; it expands the template tree into real particles.
	MoleculeCounts []int64

	// byNameHash indexes Molecules by the xxHash64 of their name for O(1)
	// FindMolecule lookups; built lazily on first use.
	byNameHash map[uint64][]int
	// byNameHashLen is len(Molecules) when byNameHash was last built.
	byNameHashLen int
}

// NumParticles returns n_particles: the molecule-count-weighted sum of
// each molecule template's atom count.
func (a *Arena) NumParticles() int64 {
	var total int64
	for i, m := range a.Molecules {
		count := int64(1)
		if i < len(a.MoleculeCounts) {
			count = a.MoleculeCounts[i]
		}
		total += count * int64(len(m.AtomsIdx))
	}

	return total
}

// NumMolecules returns the total number of molecule instances (sum of
// MoleculeCounts), as opposed to NumMoleculeTypes which counts distinct
// templates.
func (a *Arena) NumMolecules() int64 {
	var total int64
	for i := range a.Molecules {
		if i < len(a.MoleculeCounts) {
			total += a.MoleculeCounts[i]
		} else {
			total++
		}
	}

	return total
}

// NumMoleculeTypes returns the number of distinct molecule templates.
func (a *Arena) NumMoleculeTypes() int {
	return len(a.Molecules)
}

// FindMolecule returns the index of the first molecule template with the
// given name, or -1 if none matches. Lookup is O(1) after the first call,
// via an xxHash64-keyed index built lazily and rebuilt if the molecule
// count changes underneath it.
func (a *Arena) FindMolecule(name string) int {
	if a.byNameHash == nil || a.byNameHashLen != len(a.Molecules) {
		a.buildNameIndex()
	}

	for _, i := range a.byNameHash[hash.ID(name)] {
		if a.Molecules[i].Name == name {
			return i
		}
	}

	return -1
}

func (a *Arena) buildNameIndex() {
	a.byNameHash = make(map[uint64][]int, len(a.Molecules))
	a.byNameHashLen = len(a.Molecules)
	for i, m := range a.Molecules {
		key := hash.ID(m.Name)
		a.byNameHash[key] = append(a.byNameHash[key], i)
	}
}

// Chain resolves a Residue's owning Chain.
func (a *Arena) Chain(r Residue) Chain { return a.Chains[r.chainIdx] }

// Molecule resolves a Chain's owning Molecule.
func (a *Arena) Molecule(c Chain) Molecule { return a.Molecules[c.moleculeIdx] }

// Residue resolves an Atom's owning Residue.
func (a *Arena) Residue(atom Atom) Residue { return a.Residues[atom.residueIdx] }

// ValidateUniqueness checks that chain ids are unique within their
// molecule, residue ids unique within their chain, and atom ids unique
// within their residue (§3 identifier invariant).
func (a *Arena) ValidateUniqueness() error {
	for _, m := range a.Molecules {
		seen := make(map[int64]struct{}, len(m.ChainsIdx))
		for _, ci := range m.ChainsIdx {
			id := a.Chains[ci].ID
			if _, dup := seen[id]; dup {
				return errs.ErrIdentifierReuse
			}
			seen[id] = struct{}{}
		}
	}

	for _, c := range a.Chains {
		seen := make(map[int64]struct{}, len(c.ResiduesIdx))
		for _, ri := range c.ResiduesIdx {
			id := a.Residues[ri].ID
			if _, dup := seen[id]; dup {
				return errs.ErrIdentifierReuse
			}
			seen[id] = struct{}{}
		}
	}

	for _, r := range a.Residues {
		seen := make(map[int64]struct{}, len(r.AtomsIdx))
		for _, ai := range r.AtomsIdx {
			id := a.Atoms[ai].ID
			if _, dup := seen[id]; dup {
				return errs.ErrIdentifierReuse
			}
			seen[id] = struct{}{}
		}
	}

	return nil
}

// Builder assembles an Arena incrementally; AddMolecule/AddChain/etc.
// return the new element's arena index so the caller can wire parent
// references (ChainsIdx, ResiduesIdx, AtomsIdx) without exposing pointers.
type Builder struct {
	arena Arena
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder { return &Builder{} }

// AddAtom appends an atom under residueIdx and returns its arena index.
func (b *Builder) AddAtom(residueIdx int, a Atom) int {
	a.residueIdx = residueIdx
	idx := len(b.arena.Atoms)
	b.arena.Atoms = append(b.arena.Atoms, a)
	b.arena.Residues[residueIdx].AtomsIdx = append(b.arena.Residues[residueIdx].AtomsIdx, idx)

	return idx
}

// AddResidue appends a residue under chainIdx and returns its arena index.
func (b *Builder) AddResidue(chainIdx int, r Residue) int {
	r.chainIdx = chainIdx
	idx := len(b.arena.Residues)
	b.arena.Residues = append(b.arena.Residues, r)
	b.arena.Chains[chainIdx].ResiduesIdx = append(b.arena.Chains[chainIdx].ResiduesIdx, idx)

	return idx
}

// AddChain appends a chain under moleculeIdx and returns its arena index.
func (b *Builder) AddChain(moleculeIdx int, c Chain) int {
	c.moleculeIdx = moleculeIdx
	idx := len(b.arena.Chains)
	b.arena.Chains = append(b.arena.Chains, c)
	b.arena.Molecules[moleculeIdx].ChainsIdx = append(b.arena.Molecules[moleculeIdx].ChainsIdx, idx)

	return idx
}

// AddMolecule appends a new molecule template and returns its arena index.
func (b *Builder) AddMolecule(m Molecule) int {
	idx := len(b.arena.Molecules)
	b.arena.Molecules = append(b.arena.Molecules, m)

	return idx
}

// SetMoleculeCounts records the molecule-count list.
func (b *Builder) SetMoleculeCounts(counts []int64) { b.arena.MoleculeCounts = counts }

// AddBonds appends bonds to the molecule at moleculeIdx.
func (b *Builder) AddBonds(moleculeIdx int, bonds []Bond) {
	b.arena.Molecules[moleculeIdx].Bonds = append(b.arena.Molecules[moleculeIdx].Bonds, bonds...)
}

// Build finalizes and validates the arena.
func (b *Builder) Build() (*Arena, error) {
	// Back-fill each molecule's flattened ResiduesIdx/AtomsIdx from its
	// chains, so NumParticles and traversal helpers don't need to walk the
	// chain/residue levels on every call.
	for mi := range b.arena.Molecules {
		m := &b.arena.Molecules[mi]
		m.ResiduesIdx = m.ResiduesIdx[:0]
		m.AtomsIdx = m.AtomsIdx[:0]

		for _, ci := range m.ChainsIdx {
			c := b.arena.Chains[ci]
			for _, ri := range c.ResiduesIdx {
				m.ResiduesIdx = append(m.ResiduesIdx, ri)
				m.AtomsIdx = append(m.AtomsIdx, b.arena.Residues[ri].AtomsIdx...)
			}
		}
	}

	if err := b.arena.ValidateUniqueness(); err != nil {
		return nil, err
	}

	return &b.arena, nil
}
