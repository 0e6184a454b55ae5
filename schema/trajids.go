package schema

import (
	"bytes"

	"github.com/chemfiles/tng/block"
	"github.com/chemfiles/tng/endian"
	"github.com/chemfiles/tng/format"
	"github.com/chemfiles/tng/internal/hash"
)

// TrajectoryIDsNames is block id 3 (§4.D): a table mapping a trajectory
// block's 64-bit id (the value stored in DataBlockHeader.BlockID) to the
// human-readable block name written alongside it, so tools can present a
// table of contents without re-reading every frame set.
type TrajectoryIDsNames struct {
	Entries []TrajectoryIDName
}

// TrajectoryIDName is one id/name pair within a TrajectoryIDsNames block.
type TrajectoryIDName struct {
	ID   uint64
	Name string
}

// DecodeTrajectoryIDsNames parses a trajectory-ids-and-names block payload.
func DecodeTrajectoryIDsNames(payload []byte) (TrajectoryIDsNames, error) {
	r := endian.NewReader(bytes.NewReader(payload))

	n, err := r.U64()
	if err != nil {
		return TrajectoryIDsNames{}, err
	}

	entries := make([]TrajectoryIDName, n)
	for i := range entries {
		id, err := r.U64()
		if err != nil {
			return TrajectoryIDsNames{}, err
		}
		name, err := r.String()
		if err != nil {
			return TrajectoryIDsNames{}, err
		}
		entries[i] = TrajectoryIDName{ID: id, Name: name}
	}

	return TrajectoryIDsNames{Entries: entries}, nil
}

// EncodeTrajectoryIDsNames serializes a TrajectoryIDsNames block.
func EncodeTrajectoryIDsNames(t TrajectoryIDsNames) []byte {
	w := endian.NewWriter()
	w.PutU64(uint64(len(t.Entries)))

	for _, e := range t.Entries {
		w.PutU64(e.ID)
		w.PutString(e.Name)
	}

	return w.Bytes()
}

// Header returns the block.Header to frame this payload.
func (t TrajectoryIDsNames) Header() block.Header {
	return block.New(format.BlockIDTrajectoryIDsNames, "TRAJECTORY IDS AND NAMES", 1)
}

// Find returns the block id registered under name, comparing names by the
// same hash Arena.FindMolecule uses before comparing them exactly. It scans
// the entries linearly; no index is kept.
func (t TrajectoryIDsNames) Find(name string) (uint64, bool) {
	want := hash.ID(name)

	for _, e := range t.Entries {
		if hash.ID(e.Name) == want && e.Name == name {
			return e.ID, true
		}
	}

	return 0, false
}
