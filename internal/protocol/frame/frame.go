// Package frame builds and scans sector-aligned binary frames:
// start marker, payload, end marker, padded to a whole number of sectors.
package frame

import (
	"bytes"
	"errors"
	"fmt"
)

const (
	DefaultSectorSize  = 512
	DefaultStartMarker = 0x01
	DefaultEndMarker   = 0x03
	DefaultPadByte     = 0x00
	MaxSectorSize      = 65536

	// DefaultLookAheadSectors bounds the end-marker search in Scan.
	DefaultLookAheadSectors = 10
)

var (
	ErrSectorSize      = errors.New("frame: sector size out of range")
	ErrMarkerRange     = errors.New("frame: marker out of range")
	ErrMarkerCollision = errors.New("frame: start and end markers are equal")
	ErrMarkerInPayload = errors.New("frame: payload contains a marker byte")
	ErrPadRange        = errors.New("frame: pad byte out of range")
)

// Layout describes one sector framing scheme. Marker and pad values are
// ints so out-of-range configuration is caught by Validate.
type Layout struct {
	SectorSize  int
	StartMarker int
	EndMarker   int
	PadByte     int
}

func DefaultLayout() Layout {
	return Layout{
		SectorSize:  DefaultSectorSize,
		StartMarker: DefaultStartMarker,
		EndMarker:   DefaultEndMarker,
		PadByte:     DefaultPadByte,
	}
}

func (l Layout) Validate() error {
	if l.SectorSize <= 0 || l.SectorSize > MaxSectorSize {
		return fmt.Errorf("%w: %d (must be 1-%d)", ErrSectorSize, l.SectorSize, MaxSectorSize)
	}
	if l.StartMarker < 0 || l.StartMarker > 255 {
		return fmt.Errorf("%w: start=%d", ErrMarkerRange, l.StartMarker)
	}
	if l.EndMarker < 0 || l.EndMarker > 255 {
		return fmt.Errorf("%w: end=%d", ErrMarkerRange, l.EndMarker)
	}
	if l.StartMarker == l.EndMarker {
		return fmt.Errorf("%w: 0x%02X", ErrMarkerCollision, l.StartMarker)
	}
	if l.PadByte < 0 || l.PadByte > 255 {
		return fmt.Errorf("%w: %d", ErrPadRange, l.PadByte)
	}
	return nil
}

// Sectors is the ceiling of size/sector.
func Sectors(size, sector int) int {
	if sector <= 0 {
		return 0
	}
	return (size + sector - 1) / sector
}

// PaddingFor is the number of bytes needed to bring size to a sector
// boundary.
func PaddingFor(size, sector int) int {
	if sector <= 0 {
		return 0
	}
	if rem := size % sector; rem != 0 {
		return sector - rem
	}
	return 0
}

// Build frames one payload and pads it to whole sectors.
func Build(payload []byte, l Layout) ([]byte, error) {
	if err := l.Validate(); err != nil {
		return nil, err
	}
	start, end := byte(l.StartMarker), byte(l.EndMarker)
	if i := bytes.IndexByte(payload, start); i >= 0 {
		return nil, fmt.Errorf("%w: start 0x%02X at offset %d", ErrMarkerInPayload, start, i)
	}
	if i := bytes.IndexByte(payload, end); i >= 0 {
		return nil, fmt.Errorf("%w: end 0x%02X at offset %d", ErrMarkerInPayload, end, i)
	}

	size := len(payload) + 2
	total := Sectors(size, l.SectorSize) * l.SectorSize
	out := make([]byte, total)
	out[0] = start
	copy(out[1:], payload)
	out[size-1] = end
	if pad := byte(l.PadByte); pad != 0 {
		for i := size; i < total; i++ {
			out[i] = pad
		}
	}
	return out, nil
}

// Align pads buf to the next sector boundary and returns the pad count.
func Align(buf *bytes.Buffer, l Layout) int {
	n := PaddingFor(buf.Len(), l.SectorSize)
	if n > 0 {
		buf.Write(bytes.Repeat([]byte{byte(l.PadByte)}, n))
	}
	return n
}

// Scan recovers the payloads between start and end markers. The end marker
// must appear within lookAhead sectors of the start; after a match the scan
// resumes at the next sector boundary.
func Scan(data []byte, l Layout, lookAhead int) [][]byte {
	if lookAhead <= 0 {
		lookAhead = DefaultLookAheadSectors
	}
	sector := l.SectorSize
	if sector <= 0 {
		sector = DefaultSectorSize
	}
	start, end := byte(l.StartMarker), byte(l.EndMarker)
	window := sector * lookAhead

	out := make([][]byte, 0)
	for i := 0; i < len(data); i++ {
		if data[i] != start {
			continue
		}
		limit := i + window
		if limit > len(data) {
			limit = len(data)
		}
		rel := bytes.IndexByte(data[i+1:limit], end)
		if rel < 0 {
			continue
		}
		endPos := i + 1 + rel
		if endPos > i+1 {
			out = append(out, data[i+1:endPos])
		}
		i = (endPos/sector+1)*sector - 1
	}
	return out
}
