package format

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/andres-sumihe/swift-generator/internal/protocol/network"
	"github.com/andres-sumihe/swift-generator/internal/swift"
	"github.com/rs/zerolog/log"
)

type rjeEncoder struct {
	encoderBase
}

func newRJE(cfg Config, wrapper *network.Wrapper) (Encoder, error) {
	base, err := newBase(cfg, wrapper)
	if err != nil {
		return nil, err
	}
	return &rjeEncoder{encoderBase: base}, nil
}

func (e *rjeEncoder) Validate(msg *swift.Message) error {
	_, err := e.validate(msg)
	return err
}

// EncodeOne transliterates to ASCII instead of rejecting, unlike FIN.
func (e *rjeEncoder) EncodeOne(msg *swift.Message) (Unit, error) {
	code, err := e.validate(msg)
	if err != nil {
		return Unit{}, err
	}
	unit := e.render(msg, code)
	src := unit.Text
	if e.cfg.ValidateCharset {
		src = Transliterate(src)
	}
	text, _, err := e.postProcess(src)
	if err != nil {
		return Unit{}, err
	}
	if i := strings.Index(text, e.cfg.Delimiter); i >= 0 {
		return Unit{}, newError(RJE, "encode", fmt.Sprintf("%q at offset %d", e.cfg.Delimiter, i), ErrDelimiterInMessage)
	}
	unit.Text = text
	return unit, nil
}

// AppendToBatch writes the delimiter between messages only.
func (e *rjeEncoder) AppendToBatch(buf *bytes.Buffer, unit Unit, index int, ctx *BatchContext) error {
	if index > 0 {
		buf.WriteString(e.cfg.Delimiter)
	}
	buf.WriteString(unit.Text)
	ctx.Index = index + 1
	ctx.Size = buf.Len()
	ctx.note(unit)
	return nil
}

func (e *rjeEncoder) FinalizeBatch(buf *bytes.Buffer, ctx *BatchContext) (Payload, error) {
	log.Debug().Int("messages", ctx.Total).Int("bytes", buf.Len()).Msg("format.RJE finalized")
	ctx.Size = buf.Len()
	return Payload{Format: RJE, Kind: KindText, Data: append([]byte(nil), buf.Bytes()...)}, nil
}
