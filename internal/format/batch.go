package format

import (
	"bytes"
	"fmt"
	"time"

	"github.com/andres-sumihe/swift-generator/internal/swift"
	"github.com/rs/zerolog/log"
)

// Stats summarizes one batch call. It is owned by the caller.
type Stats struct {
	Format    Format        `json:"format"`
	Kind      string        `json:"kind"`
	Messages  int           `json:"messages"`
	Bytes     int           `json:"bytes"`
	Sectors   int           `json:"sectors,omitempty"`
	Padding   int           `json:"padding,omitempty"`
	Wrapped   int           `json:"wrapped"`
	Fallbacks int           `json:"fallbacks"`
	Elapsed   time.Duration `json:"elapsed"`
}

func (s Stats) MessagesPerSecond() float64 {
	if s.Elapsed <= 0 {
		return 0
	}
	return float64(s.Messages) / s.Elapsed.Seconds()
}

func (s Stats) String() string {
	return fmt.Sprintf("BatchStats{format=%s, messages=%d, bytes=%d, sectors=%d, wrapped=%d, fallbacks=%d, elapsed=%s, rate=%.1f msg/s}",
		s.Format, s.Messages, s.Bytes, s.Sectors, s.Wrapped, s.Fallbacks, s.Elapsed, s.MessagesPerSecond())
}

// EncodeBatch runs the full lifecycle over msgs in order. Any message error
// aborts the batch and no partial payload is returned.
func EncodeBatch(enc Encoder, msgs []*swift.Message) (Payload, Stats, error) {
	f := enc.Format()
	if len(msgs) == 0 {
		return Payload{}, Stats{}, newError(f, "batch", "", ErrEmptyBatch)
	}

	ctx := enc.BeginBatch(len(msgs))
	var buf bytes.Buffer
	for i, msg := range msgs {
		unit, err := enc.EncodeOne(msg)
		if err != nil {
			log.Error().Str("format", string(f)).Int("message", i+1).Err(err).Msg("format.EncodeBatch aborted")
			return Payload{}, Stats{}, fmt.Errorf("message %d of %d: %w", i+1, len(msgs), err)
		}
		if err := enc.AppendToBatch(&buf, unit, i, ctx); err != nil {
			return Payload{}, Stats{}, fmt.Errorf("message %d of %d: %w", i+1, len(msgs), err)
		}
	}

	payload, err := enc.FinalizeBatch(&buf, ctx)
	if err != nil {
		return Payload{}, Stats{}, err
	}

	stats := Stats{
		Format:    f,
		Kind:      payload.Kind.String(),
		Messages:  ctx.Index,
		Bytes:     ctx.Size,
		Sectors:   ctx.Sectors,
		Padding:   ctx.Padding,
		Wrapped:   ctx.wrapped,
		Fallbacks: ctx.fallbacks,
		Elapsed:   ctx.Elapsed(),
	}
	log.Info().
		Str("format", string(f)).
		Int("messages", stats.Messages).
		Int("bytes", stats.Bytes).
		Int("fallbacks", stats.Fallbacks).
		Dur("elapsed", stats.Elapsed).
		Msg("batch encoded")
	return payload, stats, nil
}
