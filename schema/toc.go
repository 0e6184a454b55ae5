package schema

import (
	"bytes"

	"github.com/chemfiles/tng/block"
	"github.com/chemfiles/tng/endian"
	"github.com/chemfiles/tng/format"
)

// TableOfContents is block id 5 (§4.D): a flat index of every block name
// present in the file and the byte offset of its header, letting a reader
// jump straight to a non-trajectory block (or the first occurrence of a
// trajectory block kind) without a linear scan from the start of the file.
type TableOfContents struct {
	Entries []TOCEntry
}

// TOCEntry is one (name, offset) pair within a TableOfContents block.
type TOCEntry struct {
	Name   string
	Offset int64
}

// DecodeTableOfContents parses a table-of-contents block payload.
func DecodeTableOfContents(payload []byte) (TableOfContents, error) {
	r := endian.NewReader(bytes.NewReader(payload))

	n, err := r.U64()
	if err != nil {
		return TableOfContents{}, err
	}

	entries := make([]TOCEntry, n)
	for i := range entries {
		name, err := r.String()
		if err != nil {
			return TableOfContents{}, err
		}
		offset, err := r.I64()
		if err != nil {
			return TableOfContents{}, err
		}
		entries[i] = TOCEntry{Name: name, Offset: offset}
	}

	return TableOfContents{Entries: entries}, nil
}

// EncodeTableOfContents serializes a TableOfContents block.
func EncodeTableOfContents(t TableOfContents) []byte {
	w := endian.NewWriter()
	w.PutU64(uint64(len(t.Entries)))

	for _, e := range t.Entries {
		w.PutString(e.Name)
		w.PutI64(e.Offset)
	}

	return w.Bytes()
}

// Header returns the block.Header to frame this payload.
func (t TableOfContents) Header() block.Header {
	return block.New(format.BlockIDTableOfContents, "BLOCK TABLE OF CONTENTS", 1)
}

// Find returns the offset of the first entry with the given name, and
// whether one was found.
func (t TableOfContents) Find(name string) (int64, bool) {
	for _, e := range t.Entries {
		if e.Name == name {
			return e.Offset, true
		}
	}

	return 0, false
}
