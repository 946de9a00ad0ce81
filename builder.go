package anvil

import (
	"bytes"
	"fmt"

	"github.com/klauspost/compress/zlib"

	"github.com/oriumgames/anvil/block"
	"github.com/oriumgames/anvil/internal/rawio"
	"github.com/oriumgames/anvil/nbttag"
	"github.com/oriumgames/anvil/pack"
)

// DefaultDataVersion is the data version a new ChunkBuilder targets: an
// early-1.15 value old enough that the game accepts and silently
// upgrades the chunk layout this package writes.
const DefaultDataVersion int32 = 1976

func inSection(x, y, z int) bool {
	return x >= 0 && x <= 15 && y >= 0 && y <= 15 && z >= 0 && z <= 15
}

// SectionBuilder accumulates up to 4096 blocks for one 16x16x16 section,
// building its own palette and packed block-state words on Save.
type SectionBuilder struct {
	y      int8
	blocks [4096]*block.Block
}

// NewSectionBuilder returns an empty SectionBuilder at section-Y y.
func NewSectionBuilder(y int8) *SectionBuilder {
	return &SectionBuilder{y: y}
}

// Y returns the section's section-Y index.
func (s *SectionBuilder) Y() int8 { return s.y }

// SetBlock sets the block at section-relative coordinates (x, y, z),
// each in [0, 15].
func (s *SectionBuilder) SetBlock(b block.Block, x, y, z int) error {
	if !inSection(x, y, z) {
		return outOfSectionError(x, y, z)
	}
	bb := b
	s.blocks[y*256+z*16+x] = &bb
	return nil
}

// GetBlock returns the block at section-relative coordinates (x, y, z),
// defaulting to air for any position never set.
func (s *SectionBuilder) GetBlock(x, y, z int) (block.Block, error) {
	if !inSection(x, y, z) {
		return block.Block{}, outOfSectionError(x, y, z)
	}
	bp := s.blocks[y*256+z*16+x]
	if bp == nil {
		return block.Air(), nil
	}
	return *bp, nil
}

func outOfSectionError(x, y, z int) error {
	switch {
	case x < 0 || x > 15:
		return &OutOfBoundsError{Axis: "x", Value: x, Low: 0, High: 15}
	case y < 0 || y > 15:
		return &OutOfBoundsError{Axis: "y", Value: y, Low: 0, High: 15}
	default:
		return &OutOfBoundsError{Axis: "z", Value: z, Low: 0, High: 15}
	}
}

// Palette returns the distinct blocks used in the section, with air
// guaranteed to be present (and first) as the sentinel for every unset
// position.
func (s *SectionBuilder) Palette() []block.Block {
	seen := map[string]int{block.Air().Key(): 0}
	palette := []block.Block{block.Air()}
	for _, bp := range s.blocks {
		if bp == nil {
			continue
		}
		k := bp.Key()
		if _, ok := seen[k]; !ok {
			seen[k] = len(palette)
			palette = append(palette, *bp)
		}
	}
	return palette
}

// IsAirOnly reports whether every block in the section is air, the
// condition under which RegionBuilder/ChunkBuilder elide it entirely on
// save.
func (s *SectionBuilder) IsAirOnly() bool {
	for _, bp := range s.blocks {
		if bp != nil && !bp.Equal(block.Air()) {
			return false
		}
	}
	return true
}

// Pack returns the section's palette together with its block-state
// words, packed under Discipline B (padded) at bits = max(4,
// ceil_log2(len(palette))).
func (s *SectionBuilder) Pack() (palette []block.Block, words []uint64) {
	palette = s.Palette()
	index := make(map[string]int, len(palette))
	for i, b := range palette {
		index[b.Key()] = i
	}
	indices := make([]int, 4096)
	airIdx := index[block.Air().Key()]
	for i, bp := range s.blocks {
		if bp == nil {
			indices[i] = airIdx
			continue
		}
		indices[i] = index[bp.Key()]
	}
	bits := pack.BitsForPaletteLen(len(palette))
	words = pack.Pack(indices, bits, pack.Padded)
	return palette, words
}

// Save renders the section into its tag compound: {Y, Palette,
// BlockStates}.
func (s *SectionBuilder) Save() nbttag.Compound {
	palette, words := s.Pack()
	return saveSection(s.y, palette, words)
}

func saveSection(y int8, palette []block.Block, words []uint64) nbttag.Compound {
	palTag := make([]map[string]any, len(palette))
	for i, b := range palette {
		palTag[i] = b.Save()
	}
	return nbttag.Compound{
		"Y":           y,
		"Palette":     palTag,
		"BlockStates": nbttag.LongArrayFrom(words),
	}
}

// RawSectionBuilder builds a section from an externally supplied palette
// and an already-indexed block stream, for callers whose upstream source
// already computed both (skipping the deduplication SectionBuilder
// performs).
type RawSectionBuilder struct {
	y       int8
	palette []block.Block
	indices []int
}

// NewRawSectionBuilder returns a RawSectionBuilder at section-Y y using
// the given palette and per-block palette indices (normally 4096 of
// them, in Y,Z,X order).
func NewRawSectionBuilder(y int8, palette []block.Block, indices []int) *RawSectionBuilder {
	return &RawSectionBuilder{y: y, palette: palette, indices: indices}
}

// Y returns the section's section-Y index.
func (s *RawSectionBuilder) Y() int8 { return s.y }

// Palette returns the externally supplied palette, unmodified.
func (s *RawSectionBuilder) Palette() []block.Block { return s.palette }

// Pack packs the externally supplied indices under Discipline B.
func (s *RawSectionBuilder) Pack() []uint64 {
	bits := pack.BitsForPaletteLen(len(s.palette))
	return pack.Pack(s.indices, bits, pack.Padded)
}

// Save renders the section into its tag compound.
func (s *RawSectionBuilder) Save() nbttag.Compound {
	return saveSection(s.y, s.palette, s.Pack())
}

// sectionSaver unifies SectionBuilder and RawSectionBuilder for
// ChunkBuilder's storage.
type sectionSaver interface {
	Y() int8
	Palette() []block.Block
	Save() nbttag.Compound
}

// ChunkBuilder accumulates up to 16 sections (section-Y 0..15) for one
// chunk, producing a Level-wrapped tag tree on Save targeting
// DefaultDataVersion.
type ChunkBuilder struct {
	x, z        int32
	dataVersion int32
	sections    [16]sectionSaver
}

// NewChunkBuilder returns an empty ChunkBuilder for chunk (x, z).
func NewChunkBuilder(x, z int32) *ChunkBuilder {
	return &ChunkBuilder{x: x, z: z, dataVersion: DefaultDataVersion}
}

// SetDataVersion overrides the data version the chunk is saved with.
func (c *ChunkBuilder) SetDataVersion(v int32) { c.dataVersion = v }

// X returns the chunk's x coordinate.
func (c *ChunkBuilder) X() int32 { return c.x }

// Z returns the chunk's z coordinate.
func (c *ChunkBuilder) Z() int32 { return c.z }

// AddSection installs s at its own section-Y, failing with
// ErrSectionExists unless replace is true.
func (c *ChunkBuilder) AddSection(s sectionSaver, replace bool) error {
	y := s.Y()
	if y < 0 || int(y) > 15 {
		return &OutOfBoundsError{Axis: "section Y", Value: int(y), Low: 0, High: 15}
	}
	if c.sections[y] != nil && !replace {
		return ErrSectionExists
	}
	c.sections[y] = s
	return nil
}

// SetBlock sets the block at chunk-relative coordinates (x, y, z), where
// x and z are in [0, 15] and y must be in [0, 255]; a missing section is
// created on demand.
func (c *ChunkBuilder) SetBlock(b block.Block, x, y, z int) error {
	if x < 0 || x > 15 {
		return &OutOfBoundsError{Axis: "x", Value: x, Low: 0, High: 15}
	}
	if z < 0 || z > 15 {
		return &OutOfBoundsError{Axis: "z", Value: z, Low: 0, High: 15}
	}
	if y < 0 || y > 255 {
		return &OutOfBoundsError{Axis: "y", Value: y, Low: 0, High: 255}
	}
	sy := y / 16
	sb, ok := c.sections[sy].(*SectionBuilder)
	if !ok || sb == nil {
		sb = NewSectionBuilder(int8(sy))
		c.sections[sy] = sb
	}
	return sb.SetBlock(b, x, y%16, z)
}

// GetBlock returns the block at chunk-relative coordinates (x, y, z), or
// air if the owning section was never created.
func (c *ChunkBuilder) GetBlock(x, y, z int) (block.Block, error) {
	if x < 0 || x > 15 {
		return block.Block{}, &OutOfBoundsError{Axis: "x", Value: x, Low: 0, High: 15}
	}
	if z < 0 || z > 15 {
		return block.Block{}, &OutOfBoundsError{Axis: "z", Value: z, Low: 0, High: 15}
	}
	if y < 0 || y > 255 {
		return block.Block{}, &OutOfBoundsError{Axis: "y", Value: y, Low: 0, High: 255}
	}
	sy := y / 16
	sb, ok := c.sections[sy].(*SectionBuilder)
	if !ok || sb == nil {
		return block.Air(), nil
	}
	return sb.GetBlock(x, y%16, z)
}

// Save renders the chunk into its Level-wrapped tag tree. Sections whose
// palette holds nothing but air are elided, matching how the game itself
// never persists a section with nothing but air in it.
func (c *ChunkBuilder) Save() nbttag.Compound {
	sections := []map[string]any{}
	for _, s := range c.sections {
		if s == nil {
			continue
		}
		if p := s.Palette(); len(p) == 1 && p[0].Equal(block.Air()) {
			continue
		}
		sections = append(sections, map[string]any(s.Save()))
	}

	level := nbttag.Compound{
		"xPos":          c.x,
		"zPos":          c.z,
		"LastUpdate":    int64(0),
		"InhabitedTime": int64(0),
		"isLightOn":     int8(1),
		"Status":        "full",
		"Sections":      sections,
		"Entities":      []map[string]any{},
		"TileEntities":  []map[string]any{},
		"LiquidTicks":   []map[string]any{},
	}

	return nbttag.Compound{
		"DataVersion": c.dataVersion,
		"Level":       map[string]any(level),
	}
}

// RegionBuilder accumulates up to 1024 chunk builders across a 32x32
// chunk grid and serializes them into a complete .mca file on Save.
type RegionBuilder struct {
	chunks           [1024]*ChunkBuilder
	compressionLevel int
}

// NewRegionBuilder returns an empty RegionBuilder using zlib's default
// compression level.
func NewRegionBuilder() *RegionBuilder {
	return &RegionBuilder{compressionLevel: zlib.DefaultCompression}
}

// SetCompressionLevel overrides the zlib compression level used on Save,
// one of the compress/flate level constants.
func (r *RegionBuilder) SetCompressionLevel(level int) { r.compressionLevel = level }

// AddChunk installs c at its own (x, z) position modulo 32.
func (r *RegionBuilder) AddChunk(c *ChunkBuilder) {
	r.chunks[slotIndex(c.x, c.z)] = c
}

// Chunk returns the chunk builder at (x, z), or nil if none was added.
func (r *RegionBuilder) Chunk(x, z int32) *ChunkBuilder {
	return r.chunks[slotIndex(x, z)]
}

// Save serializes every added chunk into a complete region file's bytes:
// an 8KiB header followed by each chunk's zlib-compressed, sector-padded
// NBT payload.
func (r *RegionBuilder) Save() ([]byte, error) {
	w := rawio.NewWriter()
	sector := uint32(rawio.HeaderSectors)

	for slot, cb := range r.chunks {
		if cb == nil {
			continue
		}
		tag := cb.Save()

		var nbtBuf bytes.Buffer
		if err := nbttag.Encode(&nbtBuf, tag); err != nil {
			return nil, fmt.Errorf("anvil: encode chunk (%d, %d): %w", cb.x, cb.z, err)
		}

		var zbuf bytes.Buffer
		zw, err := zlib.NewWriterLevel(&zbuf, r.compressionLevel)
		if err != nil {
			return nil, fmt.Errorf("anvil: create zlib writer for chunk (%d, %d): %w", cb.x, cb.z, err)
		}
		if _, err := zw.Write(nbtBuf.Bytes()); err != nil {
			return nil, fmt.Errorf("anvil: compress chunk (%d, %d): %w", cb.x, cb.z, err)
		}
		if err := zw.Close(); err != nil {
			return nil, fmt.Errorf("anvil: compress chunk (%d, %d): %w", cb.x, cb.z, err)
		}

		frame := rawio.EncodeChunkPayload(2, zbuf.Bytes())
		sectors := w.AppendSector(frame)
		if int(sector)+int(sectors) > 0xFFFFFF {
			return nil, fmt.Errorf("anvil: region file too large to address chunk (%d, %d)", cb.x, cb.z)
		}

		w.PutLocation(slot, sector, sectors)
		sector += uint32(sectors)
	}

	return w.Bytes(), nil
}
