package codec

import (
	"fmt"

	"github.com/chemfiles/tng/errs"
)

func errCodecMalformed(msg string) error {
	return fmt.Errorf("%s: %w", msg, errs.ErrCodecMalformed)
}

func errRLEOverrun() error {
	return fmt.Errorf("rle expansion exceeds declared output length: %w", errs.ErrRleOverrun)
}

func errHuffmanTableCorrupt() error {
	return fmt.Errorf("huffman table corrupt: %w", errs.ErrHuffmanTableCorrupt)
}
