package codec

import "encoding/binary"

// DictEncode implements the dictionary / integer-alphabet sub-codec
// (§4.C): when the residual alphabet is small and dense (few distinct
// values, tightly packed), a direct table mapping symbol index to its
// original int64 value can compress better than building a Huffman tree,
// since every symbol costs one fixed-width index (1, 2 or 4 bytes) instead
// of a variable-length code plus a code table.
//
// Payload shape: tag byte, varint(dict size), dict size zigzag-varint
// values (the distinct alphabet, in first-seen order), varint(count),
// then count fixed-width indices (1, 2 or 4 bytes depending on dict size).
func DictEncode(values []int64) []byte {
	index := make(map[int64]int)
	dict := make([]int64, 0, 16)

	symbols := make([]int, len(values))
	for i, v := range values {
		idx, ok := index[v]
		if !ok {
			idx = len(dict)
			index[v] = idx
			dict = append(dict, v)
		}
		symbols[i] = idx
	}

	width := indexWidth(len(dict))

	out := []byte{huffmanTagDictionary}
	out = binary.AppendUvarint(out, uint64(len(dict)))
	for _, v := range dict {
		out = binary.AppendUvarint(out, zigzagEncode(v))
	}
	out = binary.AppendUvarint(out, uint64(len(symbols)))

	for _, idx := range symbols {
		out = appendIndex(out, idx, width)
	}

	return out
}

// DictDecode is the exact inverse of DictEncode.
func DictDecode(data []byte) ([]int64, error) {
	if len(data) == 0 || data[0] != huffmanTagDictionary {
		return nil, errCodecMalformed("dict: bad tag byte")
	}
	data = data[1:]

	dictSize, n := binary.Uvarint(data)
	if n <= 0 {
		return nil, errCodecMalformed("dict: truncated dict size")
	}
	data = data[n:]

	dict := make([]int64, dictSize)
	for i := range dict {
		u, n := binary.Uvarint(data)
		if n <= 0 {
			return nil, errCodecMalformed("dict: truncated dict entry")
		}
		dict[i] = zigzagDecode(u)
		data = data[n:]
	}

	count, n := binary.Uvarint(data)
	if n <= 0 {
		return nil, errCodecMalformed("dict: truncated count")
	}
	data = data[n:]

	width := indexWidth(int(dictSize))
	out := make([]int64, count)

	for i := range out {
		idx, rest, err := readIndex(data, width)
		if err != nil {
			return nil, err
		}
		data = rest

		if idx < 0 || idx >= len(dict) {
			return nil, errCodecMalformed("dict: index out of range")
		}
		out[i] = dict[idx]
	}

	return out, nil
}

func indexWidth(dictLen int) int {
	switch {
	case dictLen <= 1<<8:
		return 1
	case dictLen <= 1<<16:
		return 2
	default:
		return 4
	}
}

func appendIndex(out []byte, idx, width int) []byte {
	switch width {
	case 1:
		return append(out, byte(idx))
	case 2:
		return binary.LittleEndian.AppendUint16(out, uint16(idx))
	default:
		return binary.LittleEndian.AppendUint32(out, uint32(idx))
	}
}

func readIndex(data []byte, width int) (int, []byte, error) {
	if len(data) < width {
		return 0, nil, errCodecMalformed("dict: truncated index")
	}

	switch width {
	case 1:
		return int(data[0]), data[1:], nil
	case 2:
		return int(binary.LittleEndian.Uint16(data)), data[2:], nil
	default:
		return int(binary.LittleEndian.Uint32(data)), data[4:], nil
	}
}
