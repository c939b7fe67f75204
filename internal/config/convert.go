package config

import (
	"fmt"
	"strings"

	"github.com/andres-sumihe/swift-generator/internal/format"
	"github.com/andres-sumihe/swift-generator/internal/protocol/frame"
	"github.com/andres-sumihe/swift-generator/internal/validator"
)

// FormatConfig overlays the section for f onto format.DefaultConfig(f).
func (c Config) FormatConfig(f format.Format) (format.Config, error) {
	s, err := c.sectionFor(f)
	if err != nil {
		return format.Config{}, err
	}
	out := format.DefaultConfig(f)
	out.Network = c.Network

	if v := strings.ToUpper(strings.TrimSpace(s.LineEnding)); v != "" {
		le := format.LineEnding(v)
		if le != format.LF && le != format.CRLF {
			return format.Config{}, fmt.Errorf("%w: [%s] line_ending %q", ErrInvalid, section(f), s.LineEnding)
		}
		out.LineEnding = le
	}
	if v := strings.TrimSpace(s.Encoding); v != "" {
		out.Encoding = v
	}
	if s.Delimiter != "" {
		out.Delimiter = s.Delimiter
	}
	if s.SectorSize != 0 {
		out.SectorSize = s.SectorSize
	}
	if s.StartMarker != nil {
		out.StartMarker = *s.StartMarker
	}
	if s.EndMarker != nil {
		out.EndMarker = *s.EndMarker
	}
	if s.PadByte != nil {
		out.PadByte = *s.PadByte
	}
	if s.ValidateCharset != nil {
		out.ValidateCharset = *s.ValidateCharset
	}
	out.HexDump = s.HexDump
	out.BatchHeader = s.BatchHeader
	out.BatchTrailer = s.BatchTrailer
	out.BatchComments = s.BatchComments
	out.StrictFields = s.StrictFields
	return out, nil
}

// ValidatorOptions builds validator options. The frame markers follow the
// [dospcc] section so extraction matches what the encoder writes.
func (c Config) ValidatorOptions() (validator.Options, error) {
	pcc, err := c.FormatConfig(format.DOSPCC)
	if err != nil {
		return validator.Options{}, err
	}
	v := c.Validator
	layout := frame.Layout{
		SectorSize:  v.SectorSize,
		StartMarker: pcc.StartMarker,
		EndMarker:   pcc.EndMarker,
		PadByte:     pcc.PadByte,
	}
	return validator.Options{
		InputDir:         v.InputDir,
		OutputDir:        v.OutputDir,
		Delimiter:        v.Delimiter,
		Layout:           layout,
		LookAheadSectors: v.LookAheadSectors,
		SplitThreshold:   v.SplitThreshold,
		Extensions:       append([]string(nil), v.Extensions...),
	}, nil
}
