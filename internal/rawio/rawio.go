// Package rawio provides the fixed-width big-endian binary helpers used to
// read and write a region file's header: the 1024-entry location table, the
// 1024-entry timestamp table, and each chunk's length-prefixed payload
// framing. Unlike the varint-framed wire format the rest of the pack
// favors, the region header is a fixed byte layout, so these helpers work
// directly against encoding/binary rather than a varint buffer.
package rawio

import (
	"encoding/binary"
	"fmt"
	"io"
)

// SectorSize is the size in bytes of one region-file sector.
const SectorSize = 4096

// HeaderSectors is the number of sectors occupied by the location table and
// the timestamp table together.
const HeaderSectors = 2

// Writer accumulates a region file's bytes with typed, fixed-width methods.
type Writer struct {
	buf []byte
}

// NewWriter returns a Writer with its header sectors pre-zeroed.
func NewWriter() *Writer {
	return &Writer{buf: make([]byte, HeaderSectors*SectorSize)}
}

// PutLocation writes the sector offset and sector count for chunk slot i
// (0..1023) into the location table.
func (w *Writer) PutLocation(slot int, sectorOffset uint32, sectorCount uint8) {
	off := slot * 4
	w.buf[off] = byte(sectorOffset >> 16)
	w.buf[off+1] = byte(sectorOffset >> 8)
	w.buf[off+2] = byte(sectorOffset)
	w.buf[off+3] = sectorCount
}

// PutTimestamp writes the modification timestamp for chunk slot i into the
// timestamp table, which occupies the second header sector.
func (w *Writer) PutTimestamp(slot int, unixSeconds uint32) {
	off := SectorSize + slot*4
	binary.BigEndian.PutUint32(w.buf[off:off+4], unixSeconds)
}

// AppendSector appends payload to the buffer, zero-padding it up to a whole
// number of sectors, and returns the sector count consumed.
func (w *Writer) AppendSector(payload []byte) uint8 {
	sectors := (len(payload) + SectorSize - 1) / SectorSize
	padded := make([]byte, sectors*SectorSize)
	copy(padded, payload)
	w.buf = append(w.buf, padded...)
	return uint8(sectors)
}

// Bytes returns the accumulated region-file bytes.
func (w *Writer) Bytes() []byte { return w.buf }

// EncodeChunkPayload frames a compressed chunk payload as
// <length:u32 BE><compression:u8><bytes>, where length covers the
// compression byte and the data that follows it.
func EncodeChunkPayload(compression uint8, compressed []byte) []byte {
	out := make([]byte, 5+len(compressed))
	binary.BigEndian.PutUint32(out[0:4], uint32(len(compressed)+1))
	out[4] = compression
	copy(out[5:], compressed)
	return out
}

// Reader wraps a region file's raw bytes with fixed-width accessors over
// the header and per-chunk framing.
type Reader struct {
	data []byte
}

// NewReader wraps data for header and payload access. data must be at
// least one full header (2 sectors) in length; callers should check that
// with Len before constructing a Reader over arbitrary input.
func NewReader(data []byte) *Reader { return &Reader{data: data} }

// Len returns the total number of bytes available.
func (r *Reader) Len() int { return len(r.data) }

// Location reads the sector offset and sector count for chunk slot i.
func (r *Reader) Location(slot int) (sectorOffset uint32, sectorCount uint8, err error) {
	off := slot * 4
	if off+4 > len(r.data) {
		return 0, 0, fmt.Errorf("rawio: location table entry %d past end of file", slot)
	}
	b := r.data[off : off+4]
	return uint32(b[0])<<16 | uint32(b[1])<<8 | uint32(b[2]), b[3], nil
}

// Timestamp reads the modification timestamp for chunk slot i.
func (r *Reader) Timestamp(slot int) (uint32, error) {
	off := SectorSize + slot*4
	if off+4 > len(r.data) {
		return 0, fmt.Errorf("rawio: timestamp table entry %d past end of file", slot)
	}
	return binary.BigEndian.Uint32(r.data[off : off+4]), nil
}

// ChunkFrame reads the length-prefixed payload located at the given sector
// offset and returns the compression tag byte plus the (still compressed)
// data bytes that follow it.
func (r *Reader) ChunkFrame(sectorOffset uint32) (compression uint8, payload []byte, err error) {
	start := int(sectorOffset) * SectorSize
	if start+5 > len(r.data) {
		return 0, nil, fmt.Errorf("rawio: chunk frame at sector %d past end of file", sectorOffset)
	}
	length := binary.BigEndian.Uint32(r.data[start : start+4])
	if length == 0 {
		return 0, nil, fmt.Errorf("rawio: chunk frame at sector %d has zero length", sectorOffset)
	}
	compression = r.data[start+4]
	end := start + 5 + int(length) - 1
	if end > len(r.data) {
		return 0, nil, fmt.Errorf("rawio: chunk frame at sector %d overruns file (length %d)", sectorOffset, length)
	}
	return compression, r.data[start+5 : end], nil
}

// ReadAll drains r into a byte slice, used for loading a region from an
// io.Reader rather than an in-memory byte slice.
func ReadAll(r io.Reader) ([]byte, error) {
	return io.ReadAll(r)
}
