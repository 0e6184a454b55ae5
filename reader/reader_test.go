package reader_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/chemfiles/tng/block"
	"github.com/chemfiles/tng/errs"
	"github.com/chemfiles/tng/reader"
	"github.com/chemfiles/tng/schema"
)

func TestOpenRejectsDuplicateNonTrajectoryBlock(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dup.tng")

	f, err := os.Create(path)
	require.NoError(t, err)

	require.NoError(t, block.Write(f, schema.Endianness{}.Header(), schema.EncodeEndianness(), true))

	general := schema.GeneralInfo{FirstFrameSetOffset: schema.NoOffset, LastFrameSetOffset: schema.NoOffset}
	payload := schema.EncodeGeneralInfo(general)
	require.NoError(t, block.Write(f, general.Header(), payload, false))

	// A second general-info block: the leading block table permits at most
	// one entry per id.
	require.NoError(t, block.Write(f, general.Header(), payload, false))

	require.NoError(t, f.Close())

	rf, err := os.Open(path)
	require.NoError(t, err)
	defer rf.Close()

	_, err = reader.Open(rf)
	require.Error(t, err)
	require.ErrorIs(t, err, errs.ErrDuplicateID)
}
