package block

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/chemfiles/tng/format"
)

func TestWriteReadRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	h := New(format.BlockIDGeneralInfo, "GENERAL INFO", 1)
	payload := []byte("some payload bytes")

	require.NoError(t, Write(&buf, h, payload, true))

	gotHeader, payloadR, err := ReadNext(&buf)
	require.NoError(t, err)
	require.Equal(t, format.BlockIDGeneralInfo, gotHeader.ID)
	require.Equal(t, "GENERAL INFO", gotHeader.Name)
	require.True(t, gotHeader.HasHash())

	gotPayload, err := ReadPayload(gotHeader, payloadR)
	require.NoError(t, err)
	require.Equal(t, payload, gotPayload)

	require.NoError(t, Verify(gotHeader, gotPayload))
}

func TestWriteWithoutHash(t *testing.T) {
	var buf bytes.Buffer
	h := New(format.BlockIDEndianness, "ENDIANNESS", 1)
	payload := []byte{1, 2, 3, 4}

	require.NoError(t, Write(&buf, h, payload, false))

	gotHeader, payloadR, err := ReadNext(&buf)
	require.NoError(t, err)
	require.False(t, gotHeader.HasHash())

	gotPayload, err := ReadPayload(gotHeader, payloadR)
	require.NoError(t, err)
	require.NoError(t, Verify(gotHeader, gotPayload))
}

func TestVerifyHashMismatch(t *testing.T) {
	var buf bytes.Buffer
	h := New(format.BlockIDMolecules, "MOLECULES", 1)
	payload := []byte("abc")

	require.NoError(t, Write(&buf, h, payload, true))

	gotHeader, payloadR, err := ReadNext(&buf)
	require.NoError(t, err)

	gotPayload, err := ReadPayload(gotHeader, payloadR)
	require.NoError(t, err)

	gotPayload[0] ^= 0xFF

	require.Error(t, Verify(gotHeader, gotPayload))
}

func TestReadPayloadTruncated(t *testing.T) {
	var buf bytes.Buffer
	h := New(format.BlockIDTableOfContents, "TOC", 1)
	payload := []byte("0123456789")

	require.NoError(t, Write(&buf, h, payload, true))

	full := buf.Bytes()
	truncated := bytes.NewReader(full[:len(full)-3])

	gotHeader, payloadR, err := ReadNext(truncated)
	require.NoError(t, err)

	_, err = ReadPayload(gotHeader, payloadR)
	require.Error(t, err)
}

func TestHeaderSizeHelperMatchesWireSize(t *testing.T) {
	h := New(format.BlockIDGeneralInfo, "GENERAL INFO", 1)
	require.EqualValues(t, HeaderSize(h.Name), h.wireSize())
}
