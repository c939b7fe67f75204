package format

import (
	"bytes"
	"fmt"
	"time"

	"github.com/andres-sumihe/swift-generator/internal/protocol/block"
	"github.com/andres-sumihe/swift-generator/internal/protocol/network"
	"github.com/andres-sumihe/swift-generator/internal/protocol/schema"
	"github.com/andres-sumihe/swift-generator/internal/swift"
	"github.com/rs/zerolog/log"
)

// Encoder is the four-phase lifecycle shared by every format.
type Encoder interface {
	Format() Format
	Config() Config
	Validate(msg *swift.Message) error
	EncodeOne(msg *swift.Message) (Unit, error)
	BeginBatch(count int) *BatchContext
	AppendToBatch(buf *bytes.Buffer, unit Unit, index int, ctx *BatchContext) error
	FinalizeBatch(buf *bytes.Buffer, ctx *BatchContext) (Payload, error)
}

// Unit is one encoded message. Text formats fill Text; DOS-PCC fills Bytes
// with the padded frame.
type Unit struct {
	TypeCode string
	Text     string
	Bytes    []byte
	Wrapped  bool
	Warning  *network.FallbackWarning
}

func (u Unit) Len() int {
	if u.Bytes != nil {
		return len(u.Bytes)
	}
	return len(u.Text)
}

// BatchContext is the mutable state of one batch call. It is not reentrant.
type BatchContext struct {
	Total   int
	Index   int
	Size    int
	Sectors int
	Padding int
	Started time.Time

	wrapped   int
	fallbacks int
}

func newBatchContext(count int) *BatchContext {
	return &BatchContext{Total: count, Started: time.Now()}
}

func (c *BatchContext) note(u Unit) {
	if u.Wrapped {
		c.wrapped++
	}
	if u.Warning != nil {
		c.fallbacks++
	}
}

func (c *BatchContext) Elapsed() time.Duration {
	return time.Since(c.Started)
}

type PayloadKind int

const (
	KindText PayloadKind = iota
	KindBinary
	KindHexDump
)

func (k PayloadKind) String() string {
	switch k {
	case KindBinary:
		return "binary"
	case KindHexDump:
		return "hexdump"
	default:
		return "text"
	}
}

// Payload is a finalized batch. Kind records which representation Data
// holds so a hex dump is never written out as binary.
type Payload struct {
	Format Format
	Kind   PayloadKind
	Data   []byte
}

// Binary returns the raw bytes of a text or binary payload.
func (p Payload) Binary() ([]byte, error) {
	if p.Kind == KindHexDump {
		return nil, newError(p.Format, "binary", "", ErrNotBinary)
	}
	return p.Data, nil
}

func (p Payload) Text() string {
	return string(p.Data)
}

func (p Payload) ContentType() string {
	if p.Kind == KindBinary {
		return "application/octet-stream"
	}
	return "text/plain; charset=us-ascii"
}

// encoderBase carries what every format shares: its config copy, charset
// and network wrapper.
type encoderBase struct {
	cfg     Config
	charset charset
	wrapper *network.Wrapper
}

func newBase(cfg Config, wrapper *network.Wrapper) (encoderBase, error) {
	if err := cfg.check(); err != nil {
		return encoderBase{}, err
	}
	cs, _ := lookupCharset(cfg.Encoding)
	if wrapper == nil {
		wrapper = network.NewWrapper(cfg.Network)
	}
	return encoderBase{cfg: cfg, charset: cs, wrapper: wrapper}, nil
}

func (b *encoderBase) Format() Format { return b.cfg.Format }

func (b *encoderBase) Config() Config { return b.cfg }

func (b *encoderBase) BeginBatch(count int) *BatchContext {
	log.Debug().Str("format", string(b.cfg.Format)).Int("messages", count).Msg("format.BeginBatch")
	return newBatchContext(count)
}

// validate runs the checks common to all formats and returns the type code.
func (b *encoderBase) validate(msg *swift.Message) (string, error) {
	f := b.cfg.Format
	if msg == nil {
		return "", newError(f, "validate", "", ErrNilMessage)
	}
	code, err := msg.TypeCode()
	if err != nil {
		return "", newError(f, "validate", "", err)
	}
	if err := msg.Formattable(); err != nil {
		return "", newError(f, "validate", "MT"+code, err)
	}
	if b.cfg.StrictFields {
		if err := schema.Validate(code, block.Fields(msg.Body())); err != nil {
			return "", newError(f, "validate", "MT"+code, fmt.Errorf("%w: %w", ErrSchema, err))
		}
	}
	return code, nil
}

// render serializes the message, wrapping network-marked ones.
func (b *encoderBase) render(msg *swift.Message, code string) Unit {
	text := msg.Serialize()
	unit := Unit{TypeCode: code, Text: text}
	if !msg.HasNetworkMarker() {
		return unit
	}
	res := b.wrapper.Wrap(text)
	unit.Text = res.Text
	unit.Wrapped = res.Wrapped
	unit.Warning = res.Warning
	if res.Warning != nil {
		log.Warn().
			Str("format", string(b.cfg.Format)).
			Str("message_type", code).
			Err(res.Warning).
			Msg("network wrapping fell back to outgoing form")
	}
	return unit
}
