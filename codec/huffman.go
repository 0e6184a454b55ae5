package codec

import (
	"encoding/binary"
	"sort"

	"github.com/chemfiles/tng/codec/huffbits"
)

// huffman sub-codec tags (§4.C: "a small tag byte at the start of the
// payload" selects between the static canonical coder and the dictionary
// coder below).
const (
	huffmanTagStatic     byte = 0
	huffmanTagSingleSym  byte = 1 // degenerate alphabet of one symbol
	huffmanTagDictionary byte = 2
)

const maxHuffmanCodeLen = 24

// HuffmanEncode picks between the two sub-modes of §4.C's residual coder
// and returns the full self-describing payload (tag byte + mode-specific
// framing + body). For a one-symbol alphabet it always emits the
// degenerate huffmanTagSingleSym form; otherwise it builds both the static
// canonical table and the dictionary / integer-alphabet encoding and keeps
// whichever is smaller, so a small, dense residual alphabet (the dictionary
// coder's strength) never loses to an unnecessarily built Huffman tree. The
// dictionary encoding is also used whenever the static table would need a
// code longer than maxHuffmanCodeLen, which the decoder does not accept.
func HuffmanEncode(data []byte) []byte {
	if len(data) == 0 {
		return binary.AppendUvarint([]byte{huffmanTagStatic}, 0)
	}

	freq := make(map[byte]int)
	for _, b := range data {
		freq[b]++
	}

	if len(freq) == 1 {
		var sym byte
		for s := range freq {
			sym = s
		}

		out := []byte{huffmanTagSingleSym}
		out = binary.AppendUvarint(out, uint64(len(data)))
		out = append(out, sym)

		return out
	}

	static := encodeStaticHuffman(data, freq)
	dict := dictEncodeBytes(data)

	if static == nil || len(dict) < len(static) {
		return dict
	}

	return static
}

// encodeStaticHuffman builds the canonical Huffman code over freq,
// serializes the (symbol, code_length) table ahead of the bit stream, and
// returns the full payload (tag byte + table + bits). The canonical table
// lets the decoder rebuild codes from lengths alone, without the encoder
// needing to transmit actual code values. A varint immediately after the
// tag byte records the exact number of decoded output bytes, so
// HuffmanDecode never needs that count passed in separately from the rest
// of the pipeline. It returns nil if any code would be longer than
// maxHuffmanCodeLen.
func encodeStaticHuffman(data []byte, freq map[byte]int) []byte {
	lengths := buildHuffmanLengths(freq)
	codes, maxLen := assignCanonicalCodes(lengths)
	if maxLen > maxHuffmanCodeLen {
		return nil
	}

	out := []byte{huffmanTagStatic}
	out = binary.AppendUvarint(out, uint64(len(data)))
	out = binary.AppendUvarint(out, uint64(len(lengths)))

	symbols := sortedSymbols(lengths)
	for _, sym := range symbols {
		out = append(out, sym, byte(lengths[sym]))
	}

	bw := huffbits.NewWriter()
	for _, b := range data {
		c := codes[b]
		bw.WriteBits(c.code, uint(c.length))
	}

	out = append(out, bw.Flush()...)

	return out
}

// dictEncodeBytes adapts DictEncode's integer-alphabet coder to a byte
// stream, by widening each byte to its own int64 symbol.
func dictEncodeBytes(data []byte) []byte {
	vals := make([]int64, len(data))
	for i, b := range data {
		vals[i] = int64(b)
	}

	return DictEncode(vals)
}

// HuffmanDecode reconstructs the original byte stream from a payload
// produced by HuffmanEncode.
func HuffmanDecode(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, errCodecMalformed("huffman: empty payload")
	}

	// The dictionary sub-mode owns its own framing (DictEncode's tag,
	// dict-size and count fields), which doesn't line up with the
	// decoded-byte-count varint every other tag carries right after the tag
	// byte, so it is decoded before that generic parsing happens.
	if data[0] == huffmanTagDictionary {
		vals, err := DictDecode(data)
		if err != nil {
			return nil, err
		}

		out := make([]byte, len(vals))
		for i, v := range vals {
			if v < 0 || v > 255 {
				return nil, errHuffmanTableCorrupt()
			}
			out[i] = byte(v)
		}

		return out, nil
	}

	tag := data[0]
	data = data[1:]

	count, nb := binary.Uvarint(data)
	if nb <= 0 {
		return nil, errHuffmanTableCorrupt()
	}
	data = data[nb:]

	switch tag {
	case huffmanTagSingleSym:
		if len(data) < 1 {
			return nil, errHuffmanTableCorrupt()
		}
		sym := data[0]

		out := make([]byte, count)
		for i := range out {
			out[i] = sym
		}

		return out, nil
	case huffmanTagStatic:
		if count == 0 {
			return []byte{}, nil
		}

		nSymbols, nb := binary.Uvarint(data)
		if nb <= 0 {
			return nil, errHuffmanTableCorrupt()
		}
		data = data[nb:]

		lengths := make(map[byte]int, nSymbols)
		for i := uint64(0); i < nSymbols; i++ {
			if len(data) < 2 {
				return nil, errHuffmanTableCorrupt()
			}
			lengths[data[0]] = int(data[1])
			data = data[2:]
		}

		dec, err := newCanonicalDecoder(lengths)
		if err != nil {
			return nil, err
		}

		br := huffbits.NewReader(data)
		out := make([]byte, 0, count)
		for uint64(len(out)) < count {
			sym, ok := dec.decodeOne(br)
			if !ok {
				return nil, errCodecMalformed("huffman: bit stream exhausted before count reached")
			}
			out = append(out, sym)
		}

		return out, nil
	default:
		return nil, errHuffmanTableCorrupt()
	}
}

type huffCode struct {
	code   uint32
	length int
}

// buildHuffmanLengths runs the classic Huffman length assignment, repeatedly
// merging the two lightest nodes of a weight-sorted list. Lengths are not
// limited here: strongly skewed frequencies over a large input can produce
// codes longer than maxHuffmanCodeLen, and encodeStaticHuffman declines
// such a table.
func buildHuffmanLengths(freq map[byte]int) map[byte]int {
	type node struct {
		weight      int
		sym         byte
		isLeaf      bool
		left, right *node
	}

	nodes := make([]*node, 0, len(freq))
	for sym, w := range freq {
		nodes = append(nodes, &node{weight: w, sym: sym, isLeaf: true})
	}

	sort.Slice(nodes, func(i, j int) bool { return nodes[i].weight < nodes[j].weight })

	for len(nodes) > 1 {
		a, b := nodes[0], nodes[1]
		nodes = nodes[2:]
		merged := &node{weight: a.weight + b.weight, left: a, right: b}

		idx := sort.Search(len(nodes), func(i int) bool { return nodes[i].weight >= merged.weight })
		nodes = append(nodes, nil)
		copy(nodes[idx+1:], nodes[idx:])
		nodes[idx] = merged
	}

	lengths := make(map[byte]int, len(freq))
	var walk func(n *node, depth int)
	walk = func(n *node, depth int) {
		if n.isLeaf {
			if depth == 0 {
				depth = 1
			}
			lengths[n.sym] = depth

			return
		}
		walk(n.left, depth+1)
		walk(n.right, depth+1)
	}
	walk(nodes[0], 0)

	return lengths
}

func sortedSymbols(lengths map[byte]int) []byte {
	syms := make([]byte, 0, len(lengths))
	for s := range lengths {
		syms = append(syms, s)
	}

	sort.Slice(syms, func(i, j int) bool {
		if lengths[syms[i]] != lengths[syms[j]] {
			return lengths[syms[i]] < lengths[syms[j]]
		}

		return syms[i] < syms[j]
	})

	return syms
}

// assignCanonicalCodes walks symbols in (length, symbol) order, assigning
// strictly increasing codes within each length and left-shifting when the
// length grows, per the standard canonical-Huffman construction.
func assignCanonicalCodes(lengths map[byte]int) (map[byte]huffCode, int) {
	syms := sortedSymbols(lengths)

	codes := make(map[byte]huffCode, len(syms))
	code := uint32(0)
	prevLen := 0
	maxLen := 0

	for _, sym := range syms {
		length := lengths[sym]
		if length > prevLen {
			code <<= uint(length - prevLen)
			prevLen = length
		}

		codes[sym] = huffCode{code: code, length: length}
		code++

		if length > maxLen {
			maxLen = length
		}
	}

	return codes, maxLen
}

// canonicalDecoder supports bounded-lookup decoding: for each code length,
// the first canonical code value and the slice of symbols assigned at that
// length (in code order) are enough to map an accumulated code to a symbol
// in O(1) per bit read.
type canonicalDecoder struct {
	firstCode [maxHuffmanCodeLen + 1]uint32
	count     [maxHuffmanCodeLen + 1]int
	symbols   [][]byte // symbols[length] in ascending code order
}

// newCanonicalDecoder rebuilds the decode table by running the exact same
// assignCanonicalCodes construction the encoder used, so the two can never
// drift out of sync with each other.
func newCanonicalDecoder(lengths map[byte]int) (*canonicalDecoder, error) {
	for _, l := range lengths {
		if l <= 0 || l > maxHuffmanCodeLen {
			return nil, errHuffmanTableCorrupt()
		}
	}

	d := &canonicalDecoder{symbols: make([][]byte, maxHuffmanCodeLen+1)}

	codes, _ := assignCanonicalCodes(lengths)

	syms := sortedSymbols(lengths)
	haveFirst := make([]bool, maxHuffmanCodeLen+1)
	for _, s := range syms {
		l := lengths[s]
		d.count[l]++
		d.symbols[l] = append(d.symbols[l], s)

		if !haveFirst[l] {
			d.firstCode[l] = codes[s].code
			haveFirst[l] = true
		}
	}

	return d, nil
}

func (d *canonicalDecoder) decodeOne(br *huffbits.Reader) (byte, bool) {
	code := uint32(0)

	for length := 1; length <= maxHuffmanCodeLen; length++ {
		bit, ok := br.ReadBit()
		if !ok {
			return 0, false
		}

		code = (code << 1) | uint32(bit)

		if d.count[length] == 0 {
			continue
		}

		offset := code - d.firstCode[length]
		if offset < uint32(d.count[length]) {
			return d.symbols[length][offset], true
		}
	}

	return 0, false
}
