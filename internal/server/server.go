// Package server exposes encoding and extraction over HTTP.
package server

import (
	"fmt"
	"strings"
	"time"

	"github.com/andres-sumihe/swift-generator/internal/config"
	"github.com/andres-sumihe/swift-generator/internal/observability"
	"github.com/andres-sumihe/swift-generator/internal/protocol/frame"
	"github.com/andres-sumihe/swift-generator/internal/protocol/network"
	"github.com/andres-sumihe/swift-generator/internal/validator"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

const Version = "0.1.0"

type Config struct {
	Name         string
	Addr         string
	CorsOrigins  []string
	MaxBodyBytes int64
}

func DefaultConfig() Config {
	return Config{
		Name:         "swiftd",
		Addr:         ":9300",
		CorsOrigins:  []string{"http://localhost:3000"},
		MaxBodyBytes: 32 << 20,
	}
}

// Service serves one gin router. The network wrapper is shared by all
// requests so session numbers keep increasing across batches.
type Service struct {
	cfg       Config
	settings  config.Config
	wrapper   *network.Wrapper
	extractor validator.Extractor
	router    *gin.Engine
	appeared  time.Time
}

func New(cfg Config, settings config.Config) (*Service, error) {
	if strings.TrimSpace(cfg.Name) == "" {
		return nil, fmt.Errorf("server config missing name")
	}
	if strings.TrimSpace(cfg.Addr) == "" {
		return nil, fmt.Errorf("server config missing addr")
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = DefaultConfig().MaxBodyBytes
	}
	opts, err := settings.ValidatorOptions()
	if err != nil {
		return nil, err
	}

	observability.RegisterMetrics()
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(observability.RequestID())
	r.Use(observability.RequestLogger(log.Logger))
	r.Use(observability.RequestMetricsMiddleware(cfg.Name))
	r.Use(cors.New(cors.Config{
		AllowOrigins:  normalizeOrigins(cfg.CorsOrigins),
		AllowMethods:  []string{"GET", "POST"},
		AllowHeaders:  []string{"Origin", "Content-Type", observability.RequestIDHeader},
		ExposeHeaders: exposedHeaders,
		MaxAge:        12 * time.Hour,
	}))
	_ = r.SetTrustedProxies([]string{"127.0.0.1", "::1"})

	s := &Service{
		cfg:      cfg,
		settings: settings,
		wrapper:  network.NewWrapper(settings.Network),
		extractor: validator.Extractor{
			Delimiter:        opts.Delimiter,
			Layout:           layoutOrDefault(opts.Layout),
			LookAheadSectors: opts.LookAheadSectors,
		},
		router:   r,
		appeared: time.Now(),
	}
	s.RegisterRoutes()
	return s, nil
}

func (s *Service) Router() *gin.Engine {
	return s.router
}

func (s *Service) Serve() error {
	log.Info().Str("service", s.cfg.Name).Str("addr", s.cfg.Addr).Msg("swiftd listening")
	return s.router.Run(s.cfg.Addr)
}

func layoutOrDefault(l frame.Layout) frame.Layout {
	if l.SectorSize <= 0 {
		return frame.DefaultLayout()
	}
	return l
}

func normalizeOrigins(origins []string) []string {
	if len(origins) == 0 {
		return []string{"http://localhost:3000"}
	}
	return origins
}
