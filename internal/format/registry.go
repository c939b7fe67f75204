package format

import (
	"github.com/andres-sumihe/swift-generator/internal/protocol/network"
)

type constructor func(Config, *network.Wrapper) (Encoder, error)

var constructors = map[Format]constructor{
	FIN:    newFIN,
	RJE:    newRJE,
	DOSPCC: newPCC,
}

// New builds the encoder for cfg.Format with its own network wrapper.
func New(cfg Config) (Encoder, error) {
	return NewWithWrapper(cfg, nil)
}

// NewWithWrapper builds an encoder sharing w. A nil w creates one from
// cfg.Network.
func NewWithWrapper(cfg Config, w *network.Wrapper) (Encoder, error) {
	build, ok := constructors[cfg.Format]
	if !ok {
		return nil, newError(cfg.Format, "new", string(cfg.Format), ErrUnknownFormat)
	}
	return build(cfg, w)
}

// NewDefault builds an encoder with DefaultConfig(f).
func NewDefault(f Format) (Encoder, error) {
	return New(DefaultConfig(f))
}
