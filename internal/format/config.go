package format

import (
	"fmt"
	"strings"

	"github.com/andres-sumihe/swift-generator/internal/protocol/frame"
	"github.com/andres-sumihe/swift-generator/internal/protocol/network"
)

type LineEnding string

const (
	LF   LineEnding = "LF"
	CRLF LineEnding = "CRLF"
)

// Sequence is the byte sequence for the line ending.
func (l LineEnding) Sequence() string {
	if l == CRLF {
		return "\r\n"
	}
	return "\n"
}

// Config is the per-encoder setting set. Encoders copy it on construction.
type Config struct {
	Format     Format
	LineEnding LineEnding
	Encoding   string

	// RJE
	Delimiter string

	// DOS-PCC
	SectorSize  int
	StartMarker int
	EndMarker   int
	PadByte     int
	HexDump     bool

	// FIN
	BatchHeader   bool
	BatchTrailer  bool
	BatchComments bool

	ValidateCharset bool
	StrictFields    bool

	Network network.Config
}

// DefaultConfig returns the stock settings for f.
func DefaultConfig(f Format) Config {
	cfg := Config{
		Format:          f,
		LineEnding:      LF,
		Encoding:        "US-ASCII",
		ValidateCharset: true,
		Network:         network.DefaultConfig(),
	}
	switch f {
	case RJE:
		cfg.LineEnding = CRLF
		cfg.Delimiter = "$"
	case DOSPCC:
		cfg.LineEnding = CRLF
		cfg.SectorSize = frame.DefaultSectorSize
		cfg.StartMarker = frame.DefaultStartMarker
		cfg.EndMarker = frame.DefaultEndMarker
		cfg.PadByte = frame.DefaultPadByte
	}
	return cfg
}

// Layout is the DOS-PCC framing view of the config.
func (c Config) Layout() frame.Layout {
	return frame.Layout{
		SectorSize:  c.SectorSize,
		StartMarker: c.StartMarker,
		EndMarker:   c.EndMarker,
		PadByte:     c.PadByte,
	}
}

// check validates the settings every encoder needs at construction.
// DOS-PCC layout ranges are checked per message by Validate.
func (c Config) check() error {
	if _, ok := specs[c.Format]; !ok {
		return newError(c.Format, "config", string(c.Format), ErrUnknownFormat)
	}
	switch c.LineEnding {
	case LF, CRLF:
	default:
		return newError(c.Format, "config", fmt.Sprintf("line_ending=%q", c.LineEnding), ErrConfig)
	}
	if _, err := lookupCharset(c.Encoding); err != nil {
		return newError(c.Format, "config", fmt.Sprintf("encoding=%q", c.Encoding), fmt.Errorf("%w: %v", ErrConfig, err))
	}
	if c.Format == RJE {
		if c.Delimiter == "" || strings.ContainsAny(c.Delimiter, "{}\r\n") {
			return newError(c.Format, "config", fmt.Sprintf("delimiter=%q", c.Delimiter), ErrConfig)
		}
	}
	return nil
}
