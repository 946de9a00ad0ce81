package anvil

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by the region reader and the chunk builder.
// Callers should check these with errors.Is, since some call sites (such
// as GetChunk's ErrChunkNotFound) wrap them with additional context via
// fmt.Errorf's %w verb.
var (
	ErrEmptyRegion   = errors.New("anvil: region file is empty")
	ErrChunkNotFound = errors.New("anvil: chunk not generated")
	ErrGZipChunkData = errors.New("anvil: gzip chunk compression not supported")
	ErrInvalidFile   = errors.New("anvil: not a path or readable byte source")
	ErrSectionExists = errors.New("anvil: section already exists at this Y")
)

// OutOfBoundsError reports a coordinate or index outside the range an
// operation documents for it.
type OutOfBoundsError struct {
	Axis             string
	Value, Low, High int
}

func (e *OutOfBoundsError) Error() string {
	return fmt.Sprintf("anvil: %s (%d) must be in range of %d to %d", e.Axis, e.Value, e.Low, e.High)
}

// CorruptedDataError reports a chunk payload that decompressed but could
// not be parsed as a consistent tag tree, or a self-inconsistent
// sector/length field in the region header. It carries the raw bytes at
// fault so a caller can dump them for diagnosis.
type CorruptedDataError struct {
	Reason string
	Data   []byte
	Err    error
}

func (e *CorruptedDataError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("anvil: corrupted chunk data: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("anvil: corrupted chunk data: %s", e.Reason)
}

func (e *CorruptedDataError) Unwrap() error { return e.Err }
