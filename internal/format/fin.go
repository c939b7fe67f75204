package format

import (
	"bytes"
	"fmt"
	"time"

	"github.com/andres-sumihe/swift-generator/internal/protocol/network"
	"github.com/andres-sumihe/swift-generator/internal/swift"
	"github.com/rs/zerolog/log"
)

type finEncoder struct {
	encoderBase
}

func newFIN(cfg Config, wrapper *network.Wrapper) (Encoder, error) {
	base, err := newBase(cfg, wrapper)
	if err != nil {
		return nil, err
	}
	return &finEncoder{encoderBase: base}, nil
}

func (e *finEncoder) Validate(msg *swift.Message) error {
	_, err := e.validate(msg)
	return err
}

func (e *finEncoder) EncodeOne(msg *swift.Message) (Unit, error) {
	code, err := e.validate(msg)
	if err != nil {
		return Unit{}, err
	}
	unit := e.render(msg, code)
	text, _, err := e.postProcess(unit.Text)
	if err != nil {
		return Unit{}, err
	}
	if e.cfg.ValidateCharset {
		if err := checkFinCharset(text); err != nil {
			return Unit{}, newError(FIN, "encode", err.Error(), ErrCharset)
		}
	}
	unit.Text = text
	return unit, nil
}

func (e *finEncoder) AppendToBatch(buf *bytes.Buffer, unit Unit, index int, ctx *BatchContext) error {
	nl := e.cfg.LineEnding.Sequence()
	if index > 0 {
		buf.WriteString(nl)
		buf.WriteString(nl)
	}
	if e.cfg.BatchComments {
		fmt.Fprintf(buf, "// Message %d of %d%s", index+1, ctx.Total, nl)
	}
	buf.WriteString(unit.Text)
	ctx.Index = index + 1
	ctx.Size = buf.Len()
	ctx.note(unit)
	return nil
}

func (e *finEncoder) FinalizeBatch(buf *bytes.Buffer, ctx *BatchContext) (Payload, error) {
	nl := e.cfg.LineEnding.Sequence()
	var out bytes.Buffer
	if e.cfg.BatchHeader {
		out.WriteString("// SWIFT FIN Format Batch" + nl)
		out.WriteString("// Generated: " + ctx.Started.Format(time.RFC3339) + nl)
		fmt.Fprintf(&out, "// Messages: %d%s", ctx.Total, nl)
		out.WriteString(nl)
	}
	out.Write(buf.Bytes())
	if e.cfg.BatchTrailer {
		out.WriteString(nl + nl)
		fmt.Fprintf(&out, "// End of batch - %d messages processed", ctx.Total)
	}
	ctx.Size = out.Len()
	log.Debug().Int("messages", ctx.Total).Int("bytes", ctx.Size).Msg("format.FIN finalized")
	return Payload{Format: FIN, Kind: KindText, Data: out.Bytes()}, nil
}

// checkFinCharset enforces the FIN character allow-list.
func checkFinCharset(text string) error {
	for i, r := range text {
		if !finAllowed(r) {
			return fmt.Errorf("%q (0x%X) at offset %d", r, r, i)
		}
	}
	return nil
}

func finAllowed(r rune) bool {
	switch {
	case r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	}
	switch r {
	case ' ', '.', ',', '/', '-', '?', ':', '(', ')', '+', '\'', '{', '}', '\r', '\n':
		return true
	}
	return false
}
