package codec

import "encoding/binary"

// RLEEncode run-length encodes a byte stream, the common pre/post stage on
// top of delta residuals where long zero runs dominate (§4.C). Runs of at
// least minRLE bytes are collapsed to a (length, run flag, symbol)
// triple; shorter repetitions, and all non-repeated bytes, are emitted as
// literal runs prefixed by their own (length, literal flag) pair so the
// decoder can tell the two cases apart without reserving a sentinel byte
// value from the data alphabet. This mirrors the shape of the reference
// library's conv_to_rle/conv_from_rle pair, re-expressed as a self-framing
// byte stream instead of parallel C arrays.
//
// Wire shape per chunk: varint(length) then either
//   - length == 0: end of stream
//   - a single flag byte (1 = run, 0 = literal) then:
//   - run:     one symbol byte, repeated length times on decode
//   - literal: length raw bytes, copied verbatim on decode
func RLEEncode(data []byte, minRLE int) []byte {
	if minRLE < 2 {
		minRLE = 2
	}

	out := make([]byte, 0, len(data))
	var tmp [binary.MaxVarintLen64]byte

	i := 0
	litStart := 0

	flushLiteral := func(end int) {
		if end <= litStart {
			return
		}
		n := binary.PutUvarint(tmp[:], uint64(end-litStart))
		out = append(out, tmp[:n]...)
		out = append(out, 0)
		out = append(out, data[litStart:end]...)
	}

	for i < len(data) {
		j := i + 1
		for j < len(data) && data[j] == data[i] {
			j++
		}

		runLen := j - i
		if runLen >= minRLE {
			flushLiteral(i)
			n := binary.PutUvarint(tmp[:], uint64(runLen))
			out = append(out, tmp[:n]...)
			out = append(out, 1, data[i])
			litStart = j
		}

		i = j
	}

	flushLiteral(len(data))

	// terminator: length 0
	n := binary.PutUvarint(tmp[:], 0)
	out = append(out, tmp[:n]...)

	return out
}

// RLEDecode is the exact inverse of RLEEncode. It fails with
// ErrRleOverrun if expansion would exceed outLen.
func RLEDecode(data []byte, outLen int) ([]byte, error) {
	out := make([]byte, 0, outLen)
	pos := 0

	for {
		length, n := binary.Uvarint(data[pos:])
		if n <= 0 {
			return nil, errCodecMalformed("rle: truncated length prefix")
		}
		pos += n

		if length == 0 {
			break
		}

		if pos >= len(data) {
			return nil, errCodecMalformed("rle: truncated flag byte")
		}
		flag := data[pos]
		pos++

		if flag == 1 {
			if pos >= len(data) {
				return nil, errCodecMalformed("rle: truncated run symbol")
			}
			sym := data[pos]
			pos++

			if len(out)+int(length) > outLen {
				return nil, errRLEOverrun()
			}

			for k := uint64(0); k < length; k++ {
				out = append(out, sym)
			}
		} else {
			if pos+int(length) > len(data) {
				return nil, errCodecMalformed("rle: truncated literal run")
			}

			if len(out)+int(length) > outLen {
				return nil, errRLEOverrun()
			}

			out = append(out, data[pos:pos+int(length)]...)
			pos += int(length)
		}
	}

	return out, nil
}
