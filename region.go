package anvil

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/zlib"

	"github.com/oriumgames/anvil/internal/rawio"
	"github.com/oriumgames/anvil/nbttag"
)

// Region is a read-only view over a single .mca file's bytes: the
// 32x32-chunk location table plus every chunk payload it addresses. It
// owns its byte buffer exclusively and never mutates it; concurrent reads
// of disjoint chunks from the same Region are safe.
type Region struct {
	r *rawio.Reader
}

// NewRegion wraps data, a complete region file's bytes, for reading.
func NewRegion(data []byte) (*Region, error) {
	if len(data) == 0 {
		return nil, ErrEmptyRegion
	}
	return &Region{r: rawio.NewReader(data)}, nil
}

// OpenRegion reads a region's bytes from a file path or an io.Reader,
// accepting either the way a region file may be named on disk or
// supplied as an already-open stream.
func OpenRegion(source any) (*Region, error) {
	switch v := source.(type) {
	case string:
		data, err := os.ReadFile(v)
		if err != nil {
			return nil, fmt.Errorf("anvil: open region %q: %w", v, err)
		}
		return NewRegion(data)
	case io.Reader:
		data, err := io.ReadAll(v)
		if err != nil {
			return nil, fmt.Errorf("anvil: read region: %w", err)
		}
		return NewRegion(data)
	default:
		return nil, ErrInvalidFile
	}
}

func floorMod32(v int32) int32 {
	m := v % 32
	if m < 0 {
		m += 32
	}
	return m
}

func slotIndex(cx, cz int32) int {
	return int(floorMod32(cx) + 32*floorMod32(cz))
}

// ChunkLocation returns the sector offset and sector count recorded for
// chunk (cx, cz). Both are zero if the chunk has not been generated.
func (r *Region) ChunkLocation(cx, cz int32) (sectorOffset uint32, sectorCount uint8, err error) {
	return r.r.Location(slotIndex(cx, cz))
}

// ChunkTimestamp returns the last-modified Unix timestamp recorded for
// chunk (cx, cz).
func (r *Region) ChunkTimestamp(cx, cz int32) (uint32, error) {
	return r.r.Timestamp(slotIndex(cx, cz))
}

// ChunkData returns the decoded tag tree for chunk (cx, cz), or (nil,
// nil) if the chunk has not been generated.
func (r *Region) ChunkData(cx, cz int32) (nbttag.Compound, error) {
	offset, sectors, err := r.ChunkLocation(cx, cz)
	if err != nil {
		return nil, &CorruptedDataError{Reason: "location table entry out of range", Err: err}
	}
	if offset == 0 && sectors == 0 {
		return nil, nil
	}

	compression, payload, err := r.r.ChunkFrame(offset)
	if err != nil {
		return nil, &CorruptedDataError{Reason: "chunk frame out of range", Err: err}
	}

	if compression == 1 {
		return nil, ErrGZipChunkData
	}

	var raw []byte
	switch compression {
	case 2:
		zr, err := zlib.NewReader(bytes.NewReader(payload))
		if err != nil {
			return nil, &CorruptedDataError{Reason: "invalid zlib stream", Data: payload, Err: err}
		}
		defer zr.Close()
		raw, err = io.ReadAll(zr)
		if err != nil {
			return nil, &CorruptedDataError{Reason: "truncated zlib stream", Data: payload, Err: err}
		}
	case 3:
		raw = payload
	default:
		return nil, &CorruptedDataError{Reason: fmt.Sprintf("unknown compression type %d", compression)}
	}

	tag, err := nbttag.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, &CorruptedDataError{Reason: "malformed NBT data", Data: raw, Err: err}
	}
	return tag, nil
}

// GetChunk parses and returns the chunk at (cx, cz). It returns
// ErrChunkNotFound if the chunk has not been generated.
func (r *Region) GetChunk(cx, cz int32) (*Chunk, error) {
	tag, err := r.ChunkData(cx, cz)
	if err != nil {
		return nil, err
	}
	if tag == nil {
		return nil, fmt.Errorf("anvil: chunk (%d, %d): %w", cx, cz, ErrChunkNotFound)
	}
	return NewChunk(tag)
}
