package format

import (
	"bytes"
	"errors"

	"github.com/andres-sumihe/swift-generator/internal/protocol/frame"
	"github.com/andres-sumihe/swift-generator/internal/protocol/network"
	"github.com/andres-sumihe/swift-generator/internal/swift"
	"github.com/rs/zerolog/log"
)

type pccEncoder struct {
	encoderBase
	layout frame.Layout
}

func newPCC(cfg Config, wrapper *network.Wrapper) (Encoder, error) {
	base, err := newBase(cfg, wrapper)
	if err != nil {
		return nil, err
	}
	return &pccEncoder{encoderBase: base, layout: cfg.Layout()}, nil
}

func (e *pccEncoder) Validate(msg *swift.Message) error {
	_, err := e.validatePCC(msg)
	return err
}

func (e *pccEncoder) validatePCC(msg *swift.Message) (string, error) {
	code, err := e.validate(msg)
	if err != nil {
		return "", err
	}
	if err := e.layout.Validate(); err != nil {
		return "", newError(DOSPCC, "validate", err.Error(), ErrConfig)
	}
	return code, nil
}

// EncodeOne frames the encoded text as start marker, bytes, end marker,
// padded to whole sectors.
func (e *pccEncoder) EncodeOne(msg *swift.Message) (Unit, error) {
	code, err := e.validatePCC(msg)
	if err != nil {
		return Unit{}, err
	}
	unit := e.render(msg, code)
	text, raw, err := e.postProcess(unit.Text)
	if err != nil {
		return Unit{}, err
	}
	framed, err := frame.Build(raw, e.layout)
	if err != nil {
		if errors.Is(err, frame.ErrMarkerInPayload) {
			return Unit{}, newError(DOSPCC, "encode", err.Error(), ErrMarkerInMessage)
		}
		return Unit{}, newError(DOSPCC, "encode", err.Error(), ErrConfig)
	}
	unit.Text = text
	unit.Bytes = framed
	return unit, nil
}

// AppendToBatch starts every frame on a sector boundary.
func (e *pccEncoder) AppendToBatch(buf *bytes.Buffer, unit Unit, index int, ctx *BatchContext) error {
	if index > 0 {
		ctx.Padding += frame.Align(buf, e.layout)
	}
	buf.Write(unit.Bytes)
	ctx.Index = index + 1
	ctx.Size = buf.Len()
	ctx.Sectors = frame.Sectors(ctx.Size, e.layout.SectorSize)
	ctx.note(unit)
	log.Debug().
		Int("message", index+1).
		Int("bytes", ctx.Size).
		Int("sectors", ctx.Sectors).
		Msg("format.DOS-PCC appended")
	return nil
}

func (e *pccEncoder) FinalizeBatch(buf *bytes.Buffer, ctx *BatchContext) (Payload, error) {
	added := frame.Align(buf, e.layout)
	ctx.Padding += added
	ctx.Size = buf.Len()
	ctx.Sectors = ctx.Size / e.layout.SectorSize
	log.Debug().
		Int("bytes", ctx.Size).
		Int("sectors", ctx.Sectors).
		Int("padding_added", added).
		Msg("format.DOS-PCC finalized")

	data := append([]byte(nil), buf.Bytes()...)
	if e.cfg.HexDump {
		return Payload{Format: DOSPCC, Kind: KindHexDump, Data: []byte(HexDump(data, e.layout.SectorSize))}, nil
	}
	return Payload{Format: DOSPCC, Kind: KindBinary, Data: data}, nil
}
