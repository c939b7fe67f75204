package server

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/andres-sumihe/swift-generator/internal/format"
	"github.com/andres-sumihe/swift-generator/internal/observability"
	"github.com/andres-sumihe/swift-generator/internal/output"
	"github.com/andres-sumihe/swift-generator/internal/swift"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

const (
	HeaderMessages  = "X-Swift-Messages"
	HeaderBytes     = "X-Swift-Bytes"
	HeaderSectors   = "X-Swift-Sectors"
	HeaderWrapped   = "X-Swift-Wrapped"
	HeaderFallbacks = "X-Swift-Fallbacks"
	HeaderMode      = "X-Swift-Source-Mode"
)

var exposedHeaders = []string{
	HeaderMessages, HeaderBytes, HeaderSectors, HeaderWrapped, HeaderFallbacks, HeaderMode,
	"Content-Disposition", observability.RequestIDHeader,
}

type extractedMessage struct {
	Index     int    `json:"index"`
	Type      string `json:"type"`
	Direction string `json:"direction"`
	Text      string `json:"text"`
}

func (s *Service) RegisterRoutes() {
	r := s.router
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"uptime":  time.Since(s.appeared).String(),
			"service": s.cfg.Name,
			"version": Version,
		})
	})

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := r.Group("/v1")
	v1.GET("/formats", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"formats": format.Specs()})
	})
	v1.POST("/encode/:format", s.handleEncode)
	v1.POST("/extract", s.handleExtract)
}

func (s *Service) readBody(c *gin.Context) ([]byte, bool) {
	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, s.cfg.MaxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": err.Error()})
			return nil, false
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return nil, false
	}
	return body, true
}

func (s *Service) parseBatch(c *gin.Context) ([]*swift.Message, string, bool) {
	body, ok := s.readBody(c)
	if !ok {
		return nil, "", false
	}
	mode, msgs, err := s.extractor.Messages(body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return nil, "", false
	}
	if len(msgs) > format.MaxBatchMessages {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{
			"error": fmt.Sprintf("batch of %d messages exceeds limit %d", len(msgs), format.MaxBatchMessages),
		})
		return nil, "", false
	}
	return msgs, string(mode), true
}

func (s *Service) handleEncode(c *gin.Context) {
	f, err := format.ParseFormat(c.Param("format"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	msgs, mode, ok := s.parseBatch(c)
	if !ok {
		return
	}

	fc, err := s.settings.FormatConfig(f)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if v := c.Query("hex_dump"); v != "" && f == format.DOSPCC {
		fc.HexDump, _ = strconv.ParseBool(v)
	}
	enc, err := format.NewWithWrapper(fc, s.wrapper)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	start := time.Now()
	payload, stats, err := format.EncodeBatch(enc, msgs)
	if err != nil {
		observability.RecordEncode(string(f), len(msgs), 0, 0, time.Since(start), false)
		log.Warn().
			Str("request_id", observability.RequestIDFrom(c)).
			Str("format", string(f)).
			Err(err).
			Msg("encode rejected")
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error(), "format": f})
		return
	}
	observability.RecordEncode(string(f), stats.Messages, stats.Wrapped, stats.Fallbacks, stats.Elapsed, true)

	c.Header(HeaderMessages, strconv.Itoa(stats.Messages))
	c.Header(HeaderBytes, strconv.Itoa(stats.Bytes))
	c.Header(HeaderSectors, strconv.Itoa(stats.Sectors))
	c.Header(HeaderWrapped, strconv.Itoa(stats.Wrapped))
	c.Header(HeaderFallbacks, strconv.Itoa(stats.Fallbacks))
	c.Header(HeaderMode, mode)
	ext := ""
	if payload.Kind == format.KindHexDump {
		ext = "txt"
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", output.NameFor(msgs, f, ext)))
	c.Data(http.StatusOK, payload.ContentType(), payload.Data)
}

func (s *Service) handleExtract(c *gin.Context) {
	msgs, mode, ok := s.parseBatch(c)
	if !ok {
		return
	}
	out := make([]extractedMessage, 0, len(msgs))
	for i, m := range msgs {
		code, _ := m.TypeCode()
		out = append(out, extractedMessage{
			Index:     i + 1,
			Type:      code,
			Direction: m.Direction(),
			Text:      m.Serialize(),
		})
	}
	c.JSON(http.StatusOK, gin.H{"mode": mode, "count": len(out), "messages": out})
}
