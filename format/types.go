// Package format defines the small closed enumerations shared across the
// container: the block id space, the per-block data type tag, and the
// codec/compression identifiers that select a numeric pipeline.
package format

// DataType is the data-type tag byte carried by every typed data block
// (§3, §6).
type DataType uint8

const (
	DataTypeChar   DataType = 0
	DataTypeInt32  DataType = 1
	DataTypeFloat32 DataType = 2
	DataTypeFloat64 DataType = 3
)

func (t DataType) String() string {
	switch t {
	case DataTypeChar:
		return "char"
	case DataTypeInt32:
		return "i32"
	case DataTypeFloat32:
		return "f32"
	case DataTypeFloat64:
		return "f64"
	default:
		return "unknown"
	}
}

// Size returns the on-wire width in bytes of one scalar of this type, or 0
// for DataTypeChar whose values are variable-length byte runs.
func (t DataType) Size() int {
	switch t {
	case DataTypeInt32, DataTypeFloat32:
		return 4
	case DataTypeFloat64:
		return 8
	default:
		return 0
	}
}

// BlockID identifies a block's schema (§6). Ids below the trajectory
// threshold are non-trajectory blocks, held in the bounded block table;
// ids at or above BlockIDTrajectoryBoxShape are trajectory data blocks,
// chained through frame sets.
type BlockID uint64

const (
	BlockIDEndianness           BlockID = 0
	BlockIDGeneralInfo          BlockID = 1
	BlockIDMolecules            BlockID = 2
	BlockIDTrajectoryIDsNames   BlockID = 3
	BlockIDFrameSet             BlockID = 4
	BlockIDTableOfContents      BlockID = 5
	BlockIDParticleMapping      BlockID = 6

	BlockIDTrajectoryThreshold BlockID = 10000

	BlockIDTrajectoryBoxShape  BlockID = 10000
	BlockIDTrajectoryPositions BlockID = 10001
	BlockIDTrajectoryVelocities BlockID = 10002
	BlockIDTrajectoryForces    BlockID = 10003
)

// IsTrajectory reports whether id names a trajectory (frame-set-chained)
// block rather than a non-trajectory block held in the bounded table.
func (id BlockID) IsTrajectory() bool {
	return id >= BlockIDTrajectoryThreshold
}

func (id BlockID) String() string {
	switch id {
	case BlockIDEndianness:
		return "endianness_and_string_length"
	case BlockIDGeneralInfo:
		return "general_info"
	case BlockIDMolecules:
		return "molecules"
	case BlockIDTrajectoryIDsNames:
		return "trajectory_ids_and_names"
	case BlockIDFrameSet:
		return "frame_set"
	case BlockIDTableOfContents:
		return "block_table_of_contents"
	case BlockIDParticleMapping:
		return "particle_mapping"
	case BlockIDTrajectoryBoxShape:
		return "box_shape"
	case BlockIDTrajectoryPositions:
		return "positions"
	case BlockIDTrajectoryVelocities:
		return "velocities"
	case BlockIDTrajectoryForces:
		return "forces"
	default:
		return "unknown"
	}
}

// CodecID selects a fixed numeric compression pipeline for a trajectory
// data block (§4.C, §6).
type CodecID uint64

const (
	CodecRaw             CodecID = 0 // raw, host-native byte order already normalized
	CodecXTCCompatible   CodecID = 1 // XTC-compatible pipeline
	CodecTNGPositions    CodecID = 2 // quantize -> triplet_delta -> rle -> huffman
	CodecTNGVelocities   CodecID = 3 // quantize -> huffman
	CodecTNGForces       CodecID = 4 // quantize -> huffman

	// CodecAuxiliaryZstd, CodecAuxiliaryS2 and CodecAuxiliaryLZ4 wrap a
	// non-trajectory block's payload (molecules, TOC) in a bulk codec
	// before MD5 hashing; see SPEC_FULL.md's DOMAIN STACK section. They
	// never apply to trajectory data blocks, whose codec ids are the five
	// above.
	CodecAuxiliaryNone CodecID = 100
	CodecAuxiliaryZstd CodecID = 101
	CodecAuxiliaryS2   CodecID = 102
	CodecAuxiliaryLZ4  CodecID = 103
)

// CompressionType names the bulk byte-stream codec used by the auxiliary
// wrapping above; it mirrors CodecID's 100-series values one-to-one.
type CompressionType uint8

const (
	CompressionNone CompressionType = 0
	CompressionZstd CompressionType = 1
	CompressionS2   CompressionType = 2
	CompressionLZ4  CompressionType = 3
)

func (c CompressionType) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionZstd:
		return "zstd"
	case CompressionS2:
		return "s2"
	case CompressionLZ4:
		return "lz4"
	default:
		return "unknown"
	}
}

// DataKind names the four queryable time series a caller may request from
// the high-level reader (§4.F).
type DataKind uint8

const (
	KindPositions DataKind = iota
	KindVelocities
	KindForces
	KindBoxShape
)

func (k DataKind) String() string {
	switch k {
	case KindPositions:
		return "positions"
	case KindVelocities:
		return "velocities"
	case KindForces:
		return "forces"
	case KindBoxShape:
		return "box_shape"
	default:
		return "unknown"
	}
}

// BlockID returns the trajectory block id carrying this data kind.
func (k DataKind) BlockID() BlockID {
	switch k {
	case KindPositions:
		return BlockIDTrajectoryPositions
	case KindVelocities:
		return BlockIDTrajectoryVelocities
	case KindForces:
		return BlockIDTrajectoryForces
	case KindBoxShape:
		return BlockIDTrajectoryBoxShape
	default:
		return 0
	}
}
