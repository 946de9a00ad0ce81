package nbttag

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccessorsOnPlainCompound(t *testing.T) {
	c := Compound{
		"Name":  "minecraft:stone",
		"Y":     int8(3),
		"count": int32(42),
		"big":   int64(123456789),
		"Nested": map[string]any{
			"inner": "value",
		},
		"List":  []any{map[string]any{"k": "v"}},
		"Bytes": []byte{1, 2, 3},
		"Ints":  []int32{1, 2, 3},
		"Longs": []int64{-1, 2},
	}

	name, ok := c.String("Name")
	require.True(t, ok)
	assert.Equal(t, "minecraft:stone", name)

	y, ok := c.Int8("Y")
	require.True(t, ok)
	assert.Equal(t, int8(3), y)

	n, ok := c.Int32("count")
	require.True(t, ok)
	assert.Equal(t, int32(42), n)

	big, ok := c.Int64("big")
	require.True(t, ok)
	assert.Equal(t, int64(123456789), big)

	nested, ok := c.Compound("Nested")
	require.True(t, ok)
	inner, ok := nested.String("inner")
	require.True(t, ok)
	assert.Equal(t, "value", inner)

	list, ok := c.List("List")
	require.True(t, ok)
	assert.Len(t, list, 1)

	b, ok := c.ByteArray("Bytes")
	require.True(t, ok)
	assert.Equal(t, []byte{1, 2, 3}, b)

	ia, ok := c.IntArray("Ints")
	require.True(t, ok)
	assert.Equal(t, []int32{1, 2, 3}, ia)

	la, ok := c.LongArray("Longs")
	require.True(t, ok)
	assert.Equal(t, uint64(0xFFFFFFFFFFFFFFFF), la[0])
	assert.Equal(t, uint64(2), la[1])
}

func TestMissingFieldsReturnFalse(t *testing.T) {
	c := Compound{}
	_, ok := c.String("missing")
	assert.False(t, ok)
	_, ok = c.Compound("missing")
	assert.False(t, ok)
	_, ok = c.List("missing")
	assert.False(t, ok)
}

func TestLongArrayFromRoundTrip(t *testing.T) {
	words := []uint64{0, 1, 0xFFFFFFFFFFFFFFFF}
	signed := LongArrayFrom(words)
	c := Compound{"data": signed}
	back, ok := c.LongArray("data")
	require.True(t, ok)
	assert.Equal(t, words, back)
}

func TestPutChains(t *testing.T) {
	c := New().Put("a", int32(1)).Put("b", "two")
	a, ok := c.Int32("a")
	require.True(t, ok)
	assert.Equal(t, int32(1), a)
	b, ok := c.String("b")
	require.True(t, ok)
	assert.Equal(t, "two", b)
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	original := Compound{
		"DataVersion": int32(3700),
		"Level": map[string]any{
			"xPos": int32(0),
			"zPos": int32(0),
		},
	}

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, original))

	decoded, err := Decode(&buf)
	require.NoError(t, err)

	dv, ok := decoded.Int32("DataVersion")
	require.True(t, ok)
	assert.Equal(t, int32(3700), dv)

	level, ok := decoded.Compound("Level")
	require.True(t, ok)
	xPos, ok := level.Int32("xPos")
	require.True(t, ok)
	assert.Equal(t, int32(0), xPos)
}
