package anvil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oriumgames/anvil/block"
	"github.com/oriumgames/anvil/pack"
)

func TestSectionBuilderSetGetBlock(t *testing.T) {
	sb := NewSectionBuilder(4)
	stone := block.New("minecraft", "stone", nil)
	require.NoError(t, sb.SetBlock(stone, 1, 2, 3))

	got, err := sb.GetBlock(1, 2, 3)
	require.NoError(t, err)
	assert.True(t, got.Equal(stone))

	// Untouched positions default to air.
	got, err = sb.GetBlock(0, 0, 0)
	require.NoError(t, err)
	assert.True(t, got.Equal(block.Air()))
}

func TestSectionBuilderOutOfBounds(t *testing.T) {
	sb := NewSectionBuilder(0)
	_, err := sb.GetBlock(16, 0, 0)
	var oob *OutOfBoundsError
	require.ErrorAs(t, err, &oob)
	assert.Equal(t, "x", oob.Axis)

	err = sb.SetBlock(block.Air(), 0, -1, 0)
	require.ErrorAs(t, err, &oob)
	assert.Equal(t, "y", oob.Axis)
}

func TestSectionBuilderPaletteDeduplicatesAndKeepsAirFirst(t *testing.T) {
	sb := NewSectionBuilder(0)
	stone := block.New("minecraft", "stone", nil)
	require.NoError(t, sb.SetBlock(stone, 0, 0, 0))
	require.NoError(t, sb.SetBlock(stone, 1, 0, 0))
	require.NoError(t, sb.SetBlock(block.New("minecraft", "dirt", nil), 2, 0, 0))

	palette := sb.Palette()
	require.Len(t, palette, 3)
	assert.True(t, palette[0].Equal(block.Air()))
}

func TestSectionBuilderIsAirOnly(t *testing.T) {
	sb := NewSectionBuilder(0)
	assert.True(t, sb.IsAirOnly())
	require.NoError(t, sb.SetBlock(block.Air(), 0, 0, 0))
	assert.True(t, sb.IsAirOnly())
	require.NoError(t, sb.SetBlock(block.New("minecraft", "stone", nil), 0, 0, 0))
	assert.False(t, sb.IsAirOnly())
}

func TestSectionBuilderPackUnpackRoundTrip(t *testing.T) {
	sb := NewSectionBuilder(0)
	dirt := block.New("minecraft", "dirt", nil)
	require.NoError(t, sb.SetBlock(dirt, 5, 6, 7))

	palette, words := sb.Pack()
	bits := pack.BitsForPaletteLen(len(palette))
	idx := 6*256 + 7*16 + 5
	got, err := pack.IndexAt(words, bits, pack.Padded, idx)
	require.NoError(t, err)
	require.Less(t, got, len(palette))
	assert.True(t, palette[got].Equal(dirt))
}

func TestRawSectionBuilderUsesSuppliedPalette(t *testing.T) {
	palette := []block.Block{block.Air(), block.New("minecraft", "stone", nil)}
	indices := make([]int, 4096)
	indices[0] = 1
	rsb := NewRawSectionBuilder(2, palette, indices)
	assert.Equal(t, int8(2), rsb.Y())
	assert.Equal(t, palette, rsb.Palette())

	words := rsb.Pack()
	got, err := pack.IndexAt(words, pack.BitsForPaletteLen(len(palette)), pack.Padded, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, got)
}

func TestChunkBuilderSetBlockSpansSections(t *testing.T) {
	cb := NewChunkBuilder(0, 0)
	stone := block.New("minecraft", "stone", nil)
	require.NoError(t, cb.SetBlock(stone, 1, 0, 1))
	require.NoError(t, cb.SetBlock(stone, 1, 255, 1))

	got, err := cb.GetBlock(1, 0, 1)
	require.NoError(t, err)
	assert.True(t, got.Equal(stone))

	got, err = cb.GetBlock(1, 255, 1)
	require.NoError(t, err)
	assert.True(t, got.Equal(stone))

	got, err = cb.GetBlock(1, 128, 1)
	require.NoError(t, err)
	assert.True(t, got.Equal(block.Air()))
}

func TestChunkBuilderSetBlockRejectsYOutOfRange(t *testing.T) {
	cb := NewChunkBuilder(0, 0)
	err := cb.SetBlock(block.Air(), 0, 256, 0)
	var oob *OutOfBoundsError
	require.ErrorAs(t, err, &oob)
	assert.Equal(t, "y", oob.Axis)

	err = cb.SetBlock(block.Air(), 0, -1, 0)
	require.ErrorAs(t, err, &oob)
	assert.Equal(t, "y", oob.Axis)
}

func TestChunkBuilderAddSectionRejectsDuplicate(t *testing.T) {
	cb := NewChunkBuilder(0, 0)
	require.NoError(t, cb.AddSection(NewSectionBuilder(0), false))
	err := cb.AddSection(NewSectionBuilder(0), false)
	require.ErrorIs(t, err, ErrSectionExists)

	require.NoError(t, cb.AddSection(NewSectionBuilder(0), true))
}

func TestChunkBuilderSaveElidesAirOnlySections(t *testing.T) {
	cb := NewChunkBuilder(7, -3)
	require.NoError(t, cb.AddSection(NewSectionBuilder(0), false)) // all-air, elided
	stone := block.New("minecraft", "stone", nil)
	require.NoError(t, cb.SetBlock(stone, 0, 20, 0)) // section 1, non-air

	tag := cb.Save()
	level := tag["Level"].(map[string]any)
	sections := level["Sections"].([]map[string]any)
	require.Len(t, sections, 1)
	assert.Equal(t, int8(1), sections[0]["Y"])
}

func TestChunkBuilderSaveDefaultDataVersion(t *testing.T) {
	cb := NewChunkBuilder(0, 0)
	tag := cb.Save()
	assert.Equal(t, DefaultDataVersion, tag["DataVersion"])
}

func TestRegionBuilderChunkLookup(t *testing.T) {
	rb := NewRegionBuilder()
	cb := NewChunkBuilder(33, 65) // wraps to (1, 1) within the region grid
	rb.AddChunk(cb)
	assert.Same(t, cb, rb.Chunk(33, 65))
	assert.Nil(t, rb.Chunk(0, 0))
}
