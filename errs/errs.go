// Package errs defines the sentinel errors shared by every layer of the
// trajectory container (byte I/O, block framer, codecs, schemas, frame-set
// index, reader and writer).
//
// Call sites wrap a sentinel with additional context using fmt.Errorf's %w
// verb; callers identify a specific failure with errors.Is, and sort any
// error into one of the coarse Kind categories with Classify. This package
// does not itself reduce a Kind to a Success/Failure/Critical status.
package errs

import "errors"

// Byte I/O (§4.A)
var (
	ErrShortRead = errors.New("tng: short read before requested width")
	ErrUtf8      = errors.New("tng: invalid utf-8 in string field")
)

// Block framer (§4.B)
var (
	ErrBadHeader        = errors.New("tng: block header size mismatch")
	ErrTruncatedPayload = errors.New("tng: truncated block payload")
	ErrHashMismatch     = errors.New("tng: md5 hash verification failed")
)

// Codec kernels (§4.C)
var (
	ErrRleOverrun          = errors.New("tng: rle expansion exceeds declared output length")
	ErrCodecMalformed      = errors.New("tng: codec payload malformed")
	ErrBadMultiplier       = errors.New("tng: compression multiplier must be positive")
	ErrPipelineMismatch    = errors.New("tng: adjacent codec stages have mismatched element types")
	ErrUnknownCodec        = errors.New("tng: unknown codec id")
	ErrHuffmanTableCorrupt = errors.New("tng: huffman table corrupt")
)

// Typed-block schemas (§4.D)
var (
	ErrSchemaMismatch  = errors.New("tng: schema field count mismatch")
	ErrDuplicateID     = errors.New("tng: duplicate id in non-trajectory block table")
	ErrTableFull       = errors.New("tng: non-trajectory block table is full")
	ErrIdentifierReuse = errors.New("tng: identifier is not unique within its parent")
)

// Frame-set index (§4.E)
var (
	ErrFrameOutOfRange = errors.New("tng: frame index is out of range")
	ErrBadLink         = errors.New("tng: frame-set link does not resolve to a frame-set block")
)

// High-level reader (§4.F)
var (
	ErrNotPresent      = errors.New("tng: requested data kind is not present in the file")
	ErrRangeMisaligned = errors.New("tng: requested range does not align to any stored frame")
)

// Writer (§4.G)
var (
	ErrWriteShort      = errors.New("tng: partial write")
	ErrInvariantBroken = errors.New("tng: writer-side schema invariant violated")
)

// Kind classifies an error into the coarse categories named by §7 of the
// specification, independent of the exact sentinel.
type Kind int

const (
	KindNone Kind = iota
	KindIo
	KindFormatSyntactic
	KindIntegrityHashMismatch
	KindNotPresent
	KindOutOfRange
	KindCodecMalformed
	KindInvariantBroken
)

func (k Kind) String() string {
	switch k {
	case KindIo:
		return "Io"
	case KindFormatSyntactic:
		return "FormatSyntactic"
	case KindIntegrityHashMismatch:
		return "IntegrityHashMismatch"
	case KindNotPresent:
		return "NotPresent"
	case KindOutOfRange:
		return "OutOfRange"
	case KindCodecMalformed:
		return "CodecMalformed"
	case KindInvariantBroken:
		return "InvariantBroken"
	default:
		return "None"
	}
}

// Classify maps err to its Kind by walking the errors.Is chain. It returns
// KindNone for a nil error and KindIo as the fallback for an error this
// package did not originate (e.g. a raw os.PathError from the stream).
func Classify(err error) Kind {
	switch {
	case err == nil:
		return KindNone
	case isAny(err, ErrShortRead, ErrUtf8, ErrWriteShort):
		return KindIo
	case isAny(err, ErrBadHeader, ErrTruncatedPayload, ErrSchemaMismatch, ErrBadLink):
		return KindFormatSyntactic
	case isAny(err, ErrHashMismatch):
		return KindIntegrityHashMismatch
	case isAny(err, ErrNotPresent):
		return KindNotPresent
	case isAny(err, ErrFrameOutOfRange, ErrRangeMisaligned):
		return KindOutOfRange
	case isAny(err, ErrRleOverrun, ErrCodecMalformed, ErrBadMultiplier, ErrPipelineMismatch, ErrUnknownCodec, ErrHuffmanTableCorrupt):
		return KindCodecMalformed
	case isAny(err, ErrInvariantBroken, ErrDuplicateID, ErrTableFull, ErrIdentifierReuse):
		return KindInvariantBroken
	default:
		return KindIo
	}
}

func isAny(err error, targets ...error) bool {
	for _, t := range targets {
		if errors.Is(err, t) {
			return true
		}
	}

	return false
}
