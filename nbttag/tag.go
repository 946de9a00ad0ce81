// Package nbttag adapts gophertunnel's generic NBT decoder into the
// narrow, read-only-traversal-plus-construct-by-appending shape the
// Anvil codec needs: named-field lookups into a decoded tag tree, and an
// append-only compound for building one to encode. Java Edition region
// files always use the big-endian, uncompressed NBT variant, so this
// package never exposes the decoder's other encodings.
package nbttag

import (
	"io"

	"github.com/sandertv/gophertunnel/minecraft/nbt"
)

// Compound is a decoded (or under-construction) NBT TAG_Compound, keyed
// by tag name.
type Compound map[string]any

// New returns an empty Compound for construction by appending.
func New() Compound { return Compound{} }

// Decode parses a big-endian NBT byte stream into a Compound.
func Decode(r io.Reader) (Compound, error) {
	var m map[string]any
	if err := nbt.NewDecoderWithEncoding(r, nbt.BigEndian).Decode(&m); err != nil {
		return nil, err
	}
	return Compound(m), nil
}

// Encode emits c as big-endian NBT bytes.
func Encode(w io.Writer, c Compound) error {
	return nbt.NewEncoderWithEncoding(w, nbt.BigEndian).Encode(map[string]any(c))
}

// Compound returns the named field as a nested Compound.
func (c Compound) Compound(name string) (Compound, bool) {
	v, ok := c[name]
	if !ok {
		return nil, false
	}
	switch m := v.(type) {
	case Compound:
		return m, true
	case map[string]any:
		return Compound(m), true
	default:
		return nil, false
	}
}

// List returns the named field as a TAG_List's decoded elements. A list
// of compounds built in memory as []map[string]any is returned as an
// []any holding the same maps.
func (c Compound) List(name string) ([]any, bool) {
	v, ok := c[name]
	if !ok {
		return nil, false
	}
	switch l := v.(type) {
	case []any:
		return l, true
	case []map[string]any:
		out := make([]any, len(l))
		for i, m := range l {
			out[i] = m
		}
		return out, true
	default:
		return nil, false
	}
}

// String returns the named field as a string.
func (c Compound) String(name string) (string, bool) {
	v, ok := c[name]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// Int8 returns the named field as a signed byte.
func (c Compound) Int8(name string) (int8, bool) {
	v, ok := c[name]
	if !ok {
		return 0, false
	}
	n, ok := v.(int8)
	return n, ok
}

// Int32 returns the named field as a signed 32-bit integer.
func (c Compound) Int32(name string) (int32, bool) {
	v, ok := c[name]
	if !ok {
		return 0, false
	}
	n, ok := v.(int32)
	return n, ok
}

// Int64 returns the named field as a signed 64-bit integer.
func (c Compound) Int64(name string) (int64, bool) {
	v, ok := c[name]
	if !ok {
		return 0, false
	}
	n, ok := v.(int64)
	return n, ok
}

// ByteArray returns the named field as a byte slice.
func (c Compound) ByteArray(name string) ([]byte, bool) {
	v, ok := c[name]
	if !ok {
		return nil, false
	}
	b, ok := v.([]byte)
	return b, ok
}

// IntArray returns the named field as a TAG_Int_Array's contents.
func (c Compound) IntArray(name string) ([]int32, bool) {
	v, ok := c[name]
	if !ok {
		return nil, false
	}
	a, ok := v.([]int32)
	return a, ok
}

// LongArray returns the named field's TAG_Long_Array contents
// reinterpreted as unsigned 64-bit words. The bit-packing codec always
// treats packed block-state words as unsigned; reinterpreting here means
// no caller needs to juggle Java's signed-long representation.
func (c Compound) LongArray(name string) ([]uint64, bool) {
	v, ok := c[name]
	if !ok {
		return nil, false
	}
	a, ok := v.([]int64)
	if !ok {
		return nil, false
	}
	out := make([]uint64, len(a))
	for i, x := range a {
		out[i] = uint64(x)
	}
	return out, true
}

// Put sets name to v and returns c, for chained construction.
func (c Compound) Put(name string, v any) Compound {
	c[name] = v
	return c
}

// LongArrayFrom converts unsigned 64-bit words to the signed
// TAG_Long_Array representation the encoder expects.
func LongArrayFrom(words []uint64) []int64 {
	out := make([]int64, len(words))
	for i, w := range words {
		out[i] = int64(w)
	}
	return out
}
