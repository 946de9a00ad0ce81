// Package block implements the namespaced block model Anvil chunk
// palettes use: a "namespace:id" style identifier plus an
// optional set of string-valued properties, along with the pre-1.13
// numeric id/data-value representation it superseded.
package block

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

const defaultNamespace = "minecraft"

// Block is a namespaced block state: an identifier and its properties.
type Block struct {
	Namespace  string
	ID         string
	Properties map[string]any
}

// New returns a Block with the given namespace, id and properties. An
// empty namespace defaults to "minecraft".
func New(namespace, id string, properties map[string]any) Block {
	if namespace == "" {
		namespace = defaultNamespace
	}
	return Block{Namespace: namespace, ID: id, Properties: properties}
}

// FromName parses a "namespace:id" string into a Block. A name with no
// namespace prefix defaults to "minecraft".
func FromName(name string) Block {
	if i := strings.IndexByte(name, ':'); i >= 0 {
		return Block{Namespace: name[:i], ID: name[i+1:]}
	}
	return Block{Namespace: defaultNamespace, ID: name}
}

// Air returns the minecraft:air block, the palette sentinel for "no
// block set".
func Air() Block { return FromName("minecraft:air") }

// Name returns the canonical "namespace:id" form.
func (b Block) Name() string { return b.Namespace + ":" + b.ID }

// FromPalette builds a Block from a decoded palette-entry tag compound
// ({Name, Properties?}).
func FromPalette(tag map[string]any) Block {
	name, _ := tag["Name"].(string)
	b := FromName(name)
	if props, ok := tag["Properties"].(map[string]any); ok && len(props) > 0 {
		b.Properties = props
	}
	return b
}

// Save renders the block into a palette-entry tag compound. Boolean and
// integer property values are serialized as their string form, matching
// how Minecraft stores block-state properties; any other value passes
// through unmodified so callers can hand the emitter an already-typed tag.
func (b Block) Save() map[string]any {
	out := map[string]any{"Name": b.Name()}
	if len(b.Properties) == 0 {
		return out
	}
	props := make(map[string]any, len(b.Properties))
	for k, v := range b.Properties {
		props[k] = serializeProperty(v)
	}
	out["Properties"] = props
	return out
}

func serializeProperty(v any) any {
	switch val := v.(type) {
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case int:
		return strconv.Itoa(val)
	case int32:
		return strconv.FormatInt(int64(val), 10)
	case int64:
		return strconv.FormatInt(val, 10)
	default:
		return v
	}
}

// Key returns a canonical string uniquely identifying the block's
// namespace, id and properties, suitable for use as a map key when
// deduplicating a section's blocks into a palette.
func (b Block) Key() string {
	if len(b.Properties) == 0 {
		return b.Namespace + ":" + b.ID
	}
	keys := make([]string, 0, len(b.Properties))
	for k := range b.Properties {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var sb strings.Builder
	sb.WriteString(b.Namespace)
	sb.WriteByte(':')
	sb.WriteString(b.ID)
	for _, k := range keys {
		fmt.Fprintf(&sb, ";%s=%v", k, b.Properties[k])
	}
	return sb.String()
}

// Equal reports whether b and other have the same namespace, id and
// properties.
func (b Block) Equal(other Block) bool { return b.Key() == other.Key() }

// OldBlock is a pre-flattening (pre-1.13) block: a 12-bit numeric id and
// a 4-bit data value, as stored in a section's Blocks/Add/Data byte
// arrays.
type OldBlock struct {
	ID   uint16
	Data uint8
}

// NewOldBlock returns an OldBlock, masking id to 12 bits and data to 4
// bits.
func NewOldBlock(id uint16, data uint8) OldBlock {
	return OldBlock{ID: id & 0xFFF, Data: data & 0xF}
}

// Equal reports whether o and other have the same id and data value.
func (o OldBlock) Equal(other OldBlock) bool { return o.ID == other.ID && o.Data == other.Data }

// Convert maps o to a modern Block using table, falling back to
// minecraft:air when table is nil or does not recognize the id/data pair.
func (o OldBlock) Convert(table LegacyTable) Block {
	if table == nil {
		return Air()
	}
	if b, ok := table(o.ID, o.Data); ok {
		return b
	}
	return Air()
}
