package anvil

import (
	"github.com/oriumgames/anvil/block"
	"github.com/oriumgames/anvil/nbttag"
	"github.com/oriumgames/anvil/pack"
)

// Data-version thresholds at which the chunk schema changed shape.
const (
	versionFlattening       = 1451 // 17w47a: numeric ids -> namespaced block states
	versionPaddedPacking    = 2529 // 20w17a: block-state words stop straddling
	versionHeightExtension  = 2694 // 21w06a: world height extended downward
	versionHeightRevert     = 2709 // 21w15a: height extension partially reverted
	versionBlockStatesRename = 2836 // 21w39a: Palette/BlockStates -> block_states.{palette,data}
	versionLevelElision     = 2844 // 21w43a: the Level wrapper compound is dropped
)

// Chunk is a read-only view over one chunk's decoded tag tree. It
// dispatches every field access on the chunk's DataVersion, so the same
// API works whether the chunk predates the 1.13 flattening or postdates
// the 1.18 Level-elision rename.
type Chunk struct {
	root          nbttag.Compound
	dataVersion   int32
	hasVersion    bool
	x, z          int32
	lowestY       int32
	highestY      int32
	blockEntities []nbttag.Compound
}

// BlockResult is the result of a block lookup: exactly one of Block or
// Old is meaningful, selected by Legacy.
type BlockResult struct {
	Block  block.Block
	Old    block.OldBlock
	Legacy bool
}

// NewChunk parses raw, a decoded chunk tag tree as read directly from a
// region file, dispatching the Level-wrapper and section-key schema on
// its DataVersion.
func NewChunk(raw nbttag.Compound) (*Chunk, error) {
	c := &Chunk{root: raw}

	if v, ok := raw.Int32("DataVersion"); ok {
		c.dataVersion = v
		c.hasVersion = true
	}

	root := raw
	if !c.isAtLeast(versionLevelElision) {
		if level, ok := raw.Compound("Level"); ok {
			root = level
		}
	}
	c.root = root

	if x, ok := root.Int32("xPos"); ok {
		c.x = x
	}
	if z, ok := root.Int32("zPos"); ok {
		c.z = z
	}

	if err := c.initSectionRange(); err != nil {
		return nil, err
	}
	c.initBlockEntities()

	return c, nil
}

// DataVersion returns the chunk's DataVersion tag, and whether the tag
// was present at all.
func (c *Chunk) DataVersion() (int32, bool) { return c.dataVersion, c.hasVersion }

// X returns the chunk's xPos tag.
func (c *Chunk) X() int32 { return c.x }

// Z returns the chunk's zPos tag.
func (c *Chunk) Z() int32 { return c.z }

// LowestY returns the lowest generated section-Y index.
func (c *Chunk) LowestY() int32 { return c.lowestY }

// HighestY returns the highest generated section-Y index. A chunk with
// no sections at all reports HighestY() < LowestY().
func (c *Chunk) HighestY() int32 { return c.highestY }

func (c *Chunk) isAtLeast(threshold int32) bool {
	return c.hasVersion && c.dataVersion >= threshold
}

func (c *Chunk) sectionsKey() string {
	if c.isAtLeast(versionLevelElision) {
		return "sections"
	}
	return "Sections"
}

func (c *Chunk) paletteKey() string {
	if c.isAtLeast(versionBlockStatesRename) {
		return "palette"
	}
	return "Palette"
}

func (c *Chunk) blockEntitiesKey() string {
	if c.isAtLeast(versionLevelElision) {
		return "block_entities"
	}
	return "TileEntities"
}

func asCompound(v any) (nbttag.Compound, bool) {
	switch m := v.(type) {
	case nbttag.Compound:
		return m, true
	case map[string]any:
		return nbttag.Compound(m), true
	default:
		return nil, false
	}
}

func sectionY(sec nbttag.Compound) (int32, bool) {
	y, ok := sec.Int8("Y")
	return int32(y), ok
}

func (c *Chunk) initSectionRange() error {
	sections, hasSections := c.root.List(c.sectionsKey())

	if yPos, ok := c.root.Int32("yPos"); ok {
		c.lowestY = yPos
		if hasSections && len(sections) > 0 {
			last, ok := asCompound(sections[len(sections)-1])
			if ok {
				if y, ok := sectionY(last); ok {
					c.highestY = y
					return nil
				}
			}
		}
		c.highestY = c.lowestY - 1
		return nil
	}

	if !hasSections || len(sections) == 0 {
		c.lowestY = 0
		c.highestY = -1
		return nil
	}

	first, ok := asCompound(sections[0])
	if !ok {
		return &CorruptedDataError{Reason: "section entry is not a compound"}
	}
	last, ok := asCompound(sections[len(sections)-1])
	if !ok {
		return &CorruptedDataError{Reason: "section entry is not a compound"}
	}
	fy, ok := sectionY(first)
	if !ok {
		return &CorruptedDataError{Reason: "section missing Y tag"}
	}
	ly, ok := sectionY(last)
	if !ok {
		return &CorruptedDataError{Reason: "section missing Y tag"}
	}
	c.lowestY, c.highestY = fy, ly
	return nil
}

func (c *Chunk) initBlockEntities() {
	list, ok := c.root.List(c.blockEntitiesKey())
	if !ok {
		return
	}
	out := make([]nbttag.Compound, 0, len(list))
	for _, e := range list {
		if m, ok := asCompound(e); ok {
			out = append(out, m)
		}
	}
	c.blockEntities = out
}

// GetSection returns the section tag compound at section-Y y. It returns
// (nil, nil) if y is within [LowestY, HighestY] but that particular
// section is a hole in an otherwise contiguous range (an all-air section
// the writer elided).
func (c *Chunk) GetSection(y int32) (nbttag.Compound, error) {
	if y < c.lowestY || y > c.highestY {
		return nil, &OutOfBoundsError{Axis: "section Y", Value: int(y), Low: int(c.lowestY), High: int(c.highestY)}
	}
	sections, ok := c.root.List(c.sectionsKey())
	if !ok {
		return nil, nil
	}
	for _, s := range sections {
		sec, ok := asCompound(s)
		if !ok {
			continue
		}
		if sy, ok := sectionY(sec); ok && sy == y {
			return sec, nil
		}
	}
	return nil, nil
}

// GetPalette returns the block palette of the given section tag, which
// must come from GetSection (or be nil, which yields a nil palette).
func (c *Chunk) GetPalette(section nbttag.Compound) ([]block.Block, error) {
	if section == nil {
		return nil, nil
	}
	parent := section
	if c.isAtLeast(versionBlockStatesRename) {
		bs, ok := section.Compound("block_states")
		if !ok {
			return nil, nil
		}
		parent = bs
	}
	list, ok := parent.List(c.paletteKey())
	if !ok {
		return nil, nil
	}
	out := make([]block.Block, 0, len(list))
	for _, e := range list {
		m, ok := e.(map[string]any)
		if !ok {
			return nil, &CorruptedDataError{Reason: "palette entry is not a compound"}
		}
		out = append(out, block.FromPalette(m))
	}
	return out, nil
}

func floorDiv(a, b int) int {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}

func mod16(y int) int {
	m := y % 16
	if m < 0 {
		m += 16
	}
	return m
}

func nibble(arr []byte, index int) uint8 {
	v := arr[index/2]
	if index%2 != 0 {
		return v >> 4
	}
	return v & 0x0F
}

// GetBlock returns the block at chunk-relative coordinates (x, y, z),
// where x and z are in [0, 15] and y is in [LowestY*16, HighestY*16+15].
// forceNew converts a pre-flattening result to its modern equivalent via
// legacy, rather than returning the raw OldBlock. legacy may be nil,
// meaning every pre-flattening id converts to minecraft:air.
func (c *Chunk) GetBlock(x, y, z int, forceNew bool, legacy block.LegacyTable) (BlockResult, error) {
	if x < 0 || x > 15 {
		return BlockResult{}, &OutOfBoundsError{Axis: "x", Value: x, Low: 0, High: 15}
	}
	if z < 0 || z > 15 {
		return BlockResult{}, &OutOfBoundsError{Axis: "z", Value: z, Low: 0, High: 15}
	}
	lowBlock := int(c.lowestY) * 16
	highBlock := int(c.highestY)*16 + 15
	if y < lowBlock || y > highBlock {
		return BlockResult{}, &OutOfBoundsError{Axis: "y", Value: y, Low: lowBlock, High: highBlock}
	}

	sy := int32(floorDiv(y, 16))
	section, err := c.GetSection(sy)
	if err != nil {
		return BlockResult{}, err
	}
	localY := mod16(y)

	return c.getBlockInSection(section, x, localY, z, forceNew, legacy)
}

func (c *Chunk) getBlockInSection(section nbttag.Compound, x, y, z int, forceNew bool, legacy block.LegacyTable) (BlockResult, error) {
	if !c.isAtLeast(versionFlattening) {
		if section == nil {
			if forceNew {
				return BlockResult{Block: block.Air()}, nil
			}
			return BlockResult{Old: block.NewOldBlock(0, 0), Legacy: true}, nil
		}
		blocks, hasBlocks := section.ByteArray("Blocks")
		if !hasBlocks {
			if forceNew {
				return BlockResult{Block: block.Air()}, nil
			}
			return BlockResult{Old: block.NewOldBlock(0, 0), Legacy: true}, nil
		}
		index := y*256 + z*16 + x
		id := uint16(blocks[index])
		if add, ok := section.ByteArray("Add"); ok {
			id += uint16(nibble(add, index)) << 8
		}
		var dataNibble uint8
		if data, ok := section.ByteArray("Data"); ok {
			dataNibble = nibble(data, index)
		}
		old := block.NewOldBlock(id, dataNibble)
		if forceNew {
			return BlockResult{Block: old.Convert(legacy)}, nil
		}
		return BlockResult{Old: old, Legacy: true}, nil
	}

	if section == nil {
		return BlockResult{Block: block.Air()}, nil
	}

	parent := section
	if c.isAtLeast(versionBlockStatesRename) {
		bs, ok := section.Compound("block_states")
		if !ok {
			return BlockResult{Block: block.Air()}, nil
		}
		parent = bs
	}

	paletteList, ok := parent.List(c.paletteKey())
	if !ok {
		return BlockResult{Block: block.Air()}, nil
	}

	var words []uint64
	if c.isAtLeast(versionBlockStatesRename) {
		words, ok = parent.LongArray("data")
	} else {
		words, ok = section.LongArray("BlockStates")
	}
	if !ok {
		return BlockResult{Block: block.Air()}, nil
	}

	bits := pack.BitsForPaletteLen(len(paletteList))
	index := y*256 + z*16 + x
	disc := pack.DisciplineForDataVersion(c.dataVersion, c.hasVersion)
	paletteIdx, err := pack.IndexAt(words, bits, disc, index)
	if err != nil {
		return BlockResult{}, &CorruptedDataError{Reason: "block-state index out of range", Err: err}
	}
	if paletteIdx < 0 || paletteIdx >= len(paletteList) {
		return BlockResult{}, &CorruptedDataError{Reason: "palette index out of range"}
	}
	m, ok := paletteList[paletteIdx].(map[string]any)
	if !ok {
		return BlockResult{}, &CorruptedDataError{Reason: "palette entry is not a compound"}
	}
	return BlockResult{Block: block.FromPalette(m)}, nil
}

// StreamBlocks returns all 4096 blocks of the given section tag (as
// returned by GetSection, or nil for an elided section) in Y, Z, X
// order, decoding the packed block-state words with a single sliding
// window rather than recomputing a bit offset per block.
func (c *Chunk) StreamBlocks(section nbttag.Compound, forceNew bool, legacy block.LegacyTable) ([]BlockResult, error) {
	out := make([]BlockResult, 4096)

	if !c.isAtLeast(versionFlattening) {
		if section == nil {
			fillAirOrEmptyOld(out, forceNew)
			return out, nil
		}
		blocks, hasBlocks := section.ByteArray("Blocks")
		if !hasBlocks {
			fillAirOrEmptyOld(out, forceNew)
			return out, nil
		}
		add, hasAdd := section.ByteArray("Add")
		data, hasData := section.ByteArray("Data")
		for i := 0; i < 4096; i++ {
			id := uint16(blocks[i])
			if hasAdd {
				id += uint16(nibble(add, i)) << 8
			}
			var d uint8
			if hasData {
				d = nibble(data, i)
			}
			old := block.NewOldBlock(id, d)
			if forceNew {
				out[i] = BlockResult{Block: old.Convert(legacy)}
			} else {
				out[i] = BlockResult{Old: old, Legacy: true}
			}
		}
		return out, nil
	}

	if section == nil {
		fillAir(out)
		return out, nil
	}

	parent := section
	if c.isAtLeast(versionBlockStatesRename) {
		bs, ok := section.Compound("block_states")
		if !ok {
			fillAir(out)
			return out, nil
		}
		parent = bs
	}

	paletteList, ok := parent.List(c.paletteKey())
	if !ok {
		fillAir(out)
		return out, nil
	}

	var words []uint64
	if c.isAtLeast(versionBlockStatesRename) {
		words, ok = parent.LongArray("data")
	} else {
		words, ok = section.LongArray("BlockStates")
	}
	if !ok {
		fillAir(out)
		return out, nil
	}

	blocks := make([]block.Block, len(paletteList))
	for i, e := range paletteList {
		m, ok := e.(map[string]any)
		if !ok {
			return nil, &CorruptedDataError{Reason: "palette entry is not a compound"}
		}
		blocks[i] = block.FromPalette(m)
	}

	bits := pack.BitsForPaletteLen(len(paletteList))
	disc := pack.DisciplineForDataVersion(c.dataVersion, c.hasVersion)
	stream := pack.NewStream(words, bits, disc)

	for i := 0; i < 4096; i++ {
		idx, err := stream.Next()
		if err != nil {
			return nil, &CorruptedDataError{Reason: "block-state stream exhausted", Err: err}
		}
		if idx < 0 || idx >= len(blocks) {
			return nil, &CorruptedDataError{Reason: "palette index out of range"}
		}
		out[i] = BlockResult{Block: blocks[idx]}
	}
	return out, nil
}

func fillAir(out []BlockResult) {
	air := BlockResult{Block: block.Air()}
	for i := range out {
		out[i] = air
	}
}

func fillAirOrEmptyOld(out []BlockResult, forceNew bool) {
	if forceNew {
		fillAir(out)
		return
	}
	old := BlockResult{Old: block.NewOldBlock(0, 0), Legacy: true}
	for i := range out {
		out[i] = old
	}
}

// StreamChunk walks every section from LowestY to HighestY inclusive,
// built strictly on top of StreamBlocks so it cannot diverge from
// GetBlock's decode path.
func (c *Chunk) StreamChunk(forceNew bool, legacy block.LegacyTable) ([]BlockResult, error) {
	var out []BlockResult
	for y := c.lowestY; y <= c.highestY; y++ {
		section, err := c.GetSection(y)
		if err != nil {
			return nil, err
		}
		blocks, err := c.StreamBlocks(section, forceNew, legacy)
		if err != nil {
			return nil, err
		}
		out = append(out, blocks...)
	}
	return out, nil
}

// BlockEntities returns every block entity tag in the chunk.
func (c *Chunk) BlockEntities() []nbttag.Compound { return c.blockEntities }

// GetBlockEntity returns the block entity at absolute coordinates (x, y,
// z), if any.
func (c *Chunk) GetBlockEntity(x, y, z int32) (nbttag.Compound, bool) {
	for _, be := range c.blockEntities {
		bx, _ := be.Int32("x")
		by, _ := be.Int32("y")
		bz, _ := be.Int32("z")
		if bx == x && by == y && bz == z {
			return be, true
		}
	}
	return nil, false
}

// GetTileEntity is an alias for GetBlockEntity, kept for callers using
// the pre-rename name.
func (c *Chunk) GetTileEntity(x, y, z int32) (nbttag.Compound, bool) {
	return c.GetBlockEntity(x, y, z)
}
