package anvil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oriumgames/anvil/block"
)

func TestNewRegionRejectsEmptyData(t *testing.T) {
	_, err := NewRegion(nil)
	require.ErrorIs(t, err, ErrEmptyRegion)
}

func TestOpenRegionRejectsUnsupportedSource(t *testing.T) {
	_, err := OpenRegion(42)
	require.ErrorIs(t, err, ErrInvalidFile)
}

func TestChunkNotFoundOnEmptyLocationEntry(t *testing.T) {
	data := make([]byte, HeaderSectorsForTest()*4096)
	region, err := NewRegion(data)
	require.NoError(t, err)

	_, err = region.GetChunk(0, 0)
	require.ErrorIs(t, err, ErrChunkNotFound)
}

func TestGZipChunkDataRejected(t *testing.T) {
	data := make([]byte, HeaderSectorsForTest()*4096+4096)
	// Location entry for (0,0): sector offset 2, 1 sector.
	data[2] = 2
	data[3] = 1
	// Chunk frame at sector 2: length=2 (covers compression byte + 1 byte
	// of payload), compression type 1 (gzip).
	off := HeaderSectorsForTest() * 4096
	data[off+3] = 2
	data[off+4] = 1

	region, err := NewRegion(data)
	require.NoError(t, err)

	_, err = region.GetChunk(0, 0)
	require.ErrorIs(t, err, ErrGZipChunkData)
}

func TestRegionBuilderRoundTripThroughGetChunk(t *testing.T) {
	rb := NewRegionBuilder()
	cb := NewChunkBuilder(3, 5)
	require.NoError(t, cb.SetBlock(block.New("minecraft", "stone", nil), 1, 2, 3))
	require.NoError(t, cb.SetBlock(block.New("minecraft", "dirt", nil), 10, 20, 10))
	rb.AddChunk(cb)

	data, err := rb.Save()
	require.NoError(t, err)

	region, err := NewRegion(data)
	require.NoError(t, err)

	chunk, err := region.GetChunk(3, 5)
	require.NoError(t, err)
	assert.Equal(t, int32(3), chunk.X())
	assert.Equal(t, int32(5), chunk.Z())

	dv, ok := chunk.DataVersion()
	require.True(t, ok)
	assert.Equal(t, DefaultDataVersion, dv)

	result, err := chunk.GetBlock(1, 2, 3, true, nil)
	require.NoError(t, err)
	assert.False(t, result.Legacy)
	assert.True(t, result.Block.Equal(block.New("minecraft", "stone", nil)))

	result, err = chunk.GetBlock(10, 20, 10, true, nil)
	require.NoError(t, err)
	assert.True(t, result.Block.Equal(block.New("minecraft", "dirt", nil)))

	// An untouched position in a generated section should read back as air.
	result, err = chunk.GetBlock(0, 2, 0, true, nil)
	require.NoError(t, err)
	assert.True(t, result.Block.Equal(block.Air()))
}

func TestRegionBuilderEmptyChunkRoundTripsWithNoSections(t *testing.T) {
	rb := NewRegionBuilder()
	cb := NewChunkBuilder(0, 0)
	rb.AddChunk(cb)

	data, err := rb.Save()
	require.NoError(t, err)

	region, err := NewRegion(data)
	require.NoError(t, err)

	chunk, err := region.GetChunk(0, 0)
	require.NoError(t, err)
	assert.True(t, chunk.HighestY() < chunk.LowestY())
}

// HeaderSectorsForTest exposes the header sector count for test fixtures
// without reaching into the internal/rawio package.
func HeaderSectorsForTest() int { return 2 }
