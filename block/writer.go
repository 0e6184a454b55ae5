package block

import (
	"io"

	"github.com/chemfiles/tng/errs"
	"github.com/chemfiles/tng/format"
	"github.com/chemfiles/tng/internal/pool"
)

// Write emits a block's header followed by its payload to w as a single
// buffered write, so a failure never leaves a partial header on the stream.
// If withHash is true, Hash is recomputed from payload before writing;
// otherwise h.Hash is written as-is (typically left all-zero).
func Write(w io.Writer, h Header, payload []byte, withHash bool) error {
	if withHash {
		h.Hash = ComputeHash(payload)
	}

	h.PayloadSize = uint64(len(payload))

	buf := pool.Get()
	defer pool.Put(buf)

	buf.Write(h.Bytes())
	buf.Write(payload)

	n, err := w.Write(buf.Bytes())
	if err != nil {
		return err
	}

	if n != buf.Len() {
		return errs.ErrWriteShort
	}

	return nil
}

// New builds a Header for a block about to be written. Hash and PayloadSize
// are filled in by Write.
func New(id format.BlockID, name string, version uint64) Header {
	return Header{ID: id, Name: name, Version: version}
}
