package server

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
)

type serverSection struct {
	Name         string   `toml:"name"`
	Addr         string   `toml:"addr"`
	CorsOrigins  []string `toml:"cors_origins"`
	MaxBodyBytes int64    `toml:"max_body_bytes"`
}

type fileConfig struct {
	Server serverSection `toml:"server"`
}

// LoadConfig overlays the [server] keys present in path onto DefaultConfig.
// Other tables in the file are ignored.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return Config{}, fmt.Errorf("load server config: %w", err)
	}

	if meta.IsDefined("server", "name") {
		if name := strings.TrimSpace(raw.Server.Name); name != "" {
			cfg.Name = name
		}
	}

	if meta.IsDefined("server", "addr") {
		addr := strings.TrimSpace(raw.Server.Addr)
		if addr == "" {
			return Config{}, fmt.Errorf("parse addr: must not be empty")
		}
		cfg.Addr = addr
	}

	if meta.IsDefined("server", "cors_origins") {
		cfg.CorsOrigins = normalizeConfigOrigins(raw.Server.CorsOrigins)
	}

	if meta.IsDefined("server", "max_body_bytes") {
		if raw.Server.MaxBodyBytes <= 0 {
			return Config{}, fmt.Errorf("parse max_body_bytes: must be positive, got %d", raw.Server.MaxBodyBytes)
		}
		cfg.MaxBodyBytes = raw.Server.MaxBodyBytes
	}

	return cfg, nil
}

func normalizeConfigOrigins(in []string) []string {
	out := make([]string, 0, len(in))
	for _, origin := range in {
		v := strings.TrimSpace(origin)
		if v == "" {
			continue
		}
		out = append(out, v)
	}
	return out
}
