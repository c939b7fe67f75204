// Package config loads the TOML settings shared by the encode and validate
// binaries.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/andres-sumihe/swift-generator/internal/format"
	"github.com/andres-sumihe/swift-generator/internal/protocol/network"
	"github.com/andres-sumihe/swift-generator/internal/validator"
	"github.com/pelletier/go-toml/v2"
)

var ErrInvalid = errors.New("config: invalid")

// FormatSection is one of [fin], [rje] or [dospcc]. Unset fields keep the
// format defaults.
type FormatSection struct {
	LineEnding      string `toml:"line_ending"`
	Encoding        string `toml:"encoding"`
	Delimiter       string `toml:"delimiter"`
	SectorSize      int    `toml:"sector_size"`
	StartMarker     *int   `toml:"start_marker"`
	EndMarker       *int   `toml:"end_marker"`
	PadByte         *int   `toml:"pad_byte"`
	HexDump         bool   `toml:"hex_dump"`
	BatchHeader     bool   `toml:"batch_header"`
	BatchTrailer    bool   `toml:"batch_trailer"`
	BatchComments   bool   `toml:"batch_comments"`
	ValidateCharset *bool  `toml:"validate_charset"`
	StrictFields    bool   `toml:"strict_fields"`
}

type ValidatorSection struct {
	InputDir         string   `toml:"input_dir"`
	OutputDir        string   `toml:"output_dir"`
	Delimiter        string   `toml:"delimiter"`
	SectorSize       int      `toml:"sector_size"`
	LookAheadSectors int      `toml:"look_ahead_sectors"`
	SplitThreshold   int      `toml:"split_threshold"`
	Extensions       []string `toml:"extensions"`
	XLSX             string   `toml:"xlsx"`
}

type Config struct {
	FIN       FormatSection    `toml:"fin"`
	RJE       FormatSection    `toml:"rje"`
	DOSPCC    FormatSection    `toml:"dospcc"`
	Network   network.Config   `toml:"network"`
	Validator ValidatorSection `toml:"validator"`
}

// Default is the configuration used when no file is given.
func Default() Config {
	cfg := Config{Network: network.DefaultConfig()}
	cfg.applyDefaults()
	return cfg
}

// Load reads path, fills defaults and validates.
func Load(path string) (Config, error) {
	var cfg Config
	if err := loadToml(path, &cfg); err != nil {
		return Config{}, err
	}
	cfg.applyDefaults()
	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func loadToml(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config load failed (%s): %w", path, err)
	}
	if err := toml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("config parse failed (%s): %w", path, err)
	}
	return nil
}

func (c *Config) applyDefaults() {
	if strings.TrimSpace(c.Network.BIC) == "" {
		c.Network.BIC = network.DefaultBIC
	}
	if strings.TrimSpace(c.Network.Suffix) == "" {
		c.Network.Suffix = network.DefaultSuffix
	}
	d := validator.DefaultOptions()
	v := &c.Validator
	// Extraction must split on what the encoders write.
	if v.Delimiter == "" {
		v.Delimiter = c.RJE.Delimiter
	}
	if v.Delimiter == "" {
		v.Delimiter = d.Delimiter
	}
	if v.SectorSize == 0 {
		v.SectorSize = c.DOSPCC.SectorSize
	}
	if v.SectorSize == 0 {
		v.SectorSize = d.Layout.SectorSize
	}
	if v.LookAheadSectors == 0 {
		v.LookAheadSectors = d.LookAheadSectors
	}
	if v.SplitThreshold == 0 {
		v.SplitThreshold = d.SplitThreshold
	}
	if len(v.Extensions) == 0 {
		v.Extensions = d.Extensions
	}
}

// Validate checks every format section by building its encoder config and
// the validator settings.
func Validate(cfg Config) error {
	for _, f := range []format.Format{format.FIN, format.RJE, format.DOSPCC} {
		fc, err := cfg.FormatConfig(f)
		if err != nil {
			return err
		}
		if _, err := format.New(fc); err != nil {
			return fmt.Errorf("%w: [%s]: %w", ErrInvalid, section(f), err)
		}
		if f == format.DOSPCC {
			if err := fc.Layout().Validate(); err != nil {
				return fmt.Errorf("%w: [dospcc]: %w", ErrInvalid, err)
			}
		}
	}
	v := cfg.Validator
	if v.SectorSize < 0 || v.LookAheadSectors < 0 || v.SplitThreshold < 0 {
		return fmt.Errorf("%w: [validator]: sizes must be positive", ErrInvalid)
	}
	if strings.ContainsAny(v.Delimiter, "{}\r\n") {
		return fmt.Errorf("%w: [validator]: delimiter %q", ErrInvalid, v.Delimiter)
	}
	return nil
}

func section(f format.Format) string {
	if f == format.DOSPCC {
		return "dospcc"
	}
	return strings.ToLower(string(f))
}

func (c Config) sectionFor(f format.Format) (FormatSection, error) {
	switch f {
	case format.FIN:
		return c.FIN, nil
	case format.RJE:
		return c.RJE, nil
	case format.DOSPCC:
		return c.DOSPCC, nil
	}
	return FormatSection{}, fmt.Errorf("%w: %q", format.ErrUnknownFormat, f)
}
