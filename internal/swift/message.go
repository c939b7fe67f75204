// Package swift holds the in-memory message model: labeled text blocks in
// canonical order.
package swift

import (
	"errors"
	"fmt"
	"strings"

	"github.com/andres-sumihe/swift-generator/internal/protocol/block"
)

// Block identifiers in serialization order.
const (
	BlockBasicHeader = "1"
	BlockAppHeader   = "2"
	BlockUserHeader  = "3"
	BlockText        = "4"
	BlockTrailer     = "5"
	BlockSystem      = "S"
)

// NetworkMarker is the body line that requests network formatting.
const NetworkMarker = ":119:NETFMT"

var order = []string{BlockBasicHeader, BlockAppHeader, BlockUserHeader, BlockText, BlockTrailer, BlockSystem}

var (
	ErrUnknownBlock   = errors.New("swift: unknown block id")
	ErrNoTypeCode     = errors.New("swift: no message type code in block 2")
	ErrEmptyBody      = errors.New("swift: empty text block")
	ErrNoBlocks       = errors.New("swift: no blocks")
	ErrDuplicateBlock = errors.New("swift: duplicate block id")
)

// Prefixes that identify a network-delivered message: an F21 session
// header followed by the {177:}{451:} network-info block.
const (
	sessionPrefix     = "F21"
	networkInfoPrefix = "{177:"
)

// Message is immutable once built. A parsed network-delivered message keeps
// its session header and network-info block apart from the regular blocks.
type Message struct {
	blocks      map[string]string
	session     string
	networkInfo string
}

// NewMessage copies blocks into a new Message. Unknown ids are rejected.
func NewMessage(blocks map[string]string) (*Message, error) {
	m := &Message{blocks: make(map[string]string, len(blocks))}
	for id, content := range blocks {
		if !knownBlock(id) {
			return nil, fmt.Errorf("%w: %q", ErrUnknownBlock, id)
		}
		m.blocks[id] = content
	}
	if len(m.blocks) == 0 {
		return nil, ErrNoBlocks
	}
	return m, nil
}

// Parse builds a Message from its serialized form. A network-delivered
// text ({1:F21...}{4:{177:...}{451:...}} ahead of the message proper) keeps
// that envelope so Serialize reproduces the input.
func Parse(text string) (*Message, error) {
	blocks, err := block.Split(strings.TrimSpace(text))
	if err != nil {
		return nil, fmt.Errorf("swift: parse: %w", err)
	}
	var session, info string
	if len(blocks) > 2 &&
		blocks[0].ID == BlockBasicHeader && strings.HasPrefix(blocks[0].Content, sessionPrefix) &&
		blocks[1].ID == BlockText && strings.HasPrefix(blocks[1].Content, networkInfoPrefix) {
		session, info = blocks[0].Content, blocks[1].Content
		blocks = blocks[2:]
	}
	raw := make(map[string]string, len(blocks))
	for _, b := range blocks {
		if !knownBlock(b.ID) {
			return nil, fmt.Errorf("%w: %q", ErrUnknownBlock, b.ID)
		}
		if _, seen := raw[b.ID]; seen {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateBlock, b.ID)
		}
		raw[b.ID] = b.Content
	}
	m, err := NewMessage(raw)
	if err != nil {
		return nil, err
	}
	m.session, m.networkInfo = session, info
	return m, nil
}

func knownBlock(id string) bool {
	for _, k := range order {
		if k == id {
			return true
		}
	}
	return false
}

// Block returns the content of block id.
func (m *Message) Block(id string) (string, bool) {
	if m == nil {
		return "", false
	}
	v, ok := m.blocks[id]
	return v, ok
}

// Body is the text block content.
func (m *Message) Body() string {
	v, _ := m.Block(BlockText)
	return v
}

// Serialize writes every present block as {id:content} in canonical order.
func (m *Message) Serialize() string {
	if m == nil {
		return ""
	}
	var b strings.Builder
	if m.session != "" {
		b.WriteString("{1:" + m.session + "}{4:" + m.networkInfo + "}")
	}
	for _, id := range order {
		content, ok := m.blocks[id]
		if !ok {
			continue
		}
		b.WriteByte('{')
		b.WriteString(id)
		b.WriteByte(':')
		b.WriteString(content)
		b.WriteByte('}')
	}
	return b.String()
}

// TypeCode returns the 3-digit message type from block 2 (I103..., O950...).
func (m *Message) TypeCode() (string, error) {
	app, ok := m.Block(BlockAppHeader)
	if !ok || len(app) < 4 {
		return "", ErrNoTypeCode
	}
	if app[0] != 'I' && app[0] != 'O' {
		return "", ErrNoTypeCode
	}
	code := app[1:4]
	for i := 0; i < len(code); i++ {
		if code[i] < '0' || code[i] > '9' {
			return "", ErrNoTypeCode
		}
	}
	return code, nil
}

// Formattable reports whether the text block carries content.
func (m *Message) Formattable() error {
	body := strings.TrimSpace(m.Body())
	if body == "" || body == "-" {
		return ErrEmptyBody
	}
	return nil
}

// HasNetworkMarker reports whether the body contains the NETFMT line.
func (m *Message) HasNetworkMarker() bool {
	for _, line := range strings.Split(m.Body(), "\n") {
		if strings.TrimRight(line, "\r") == NetworkMarker {
			return true
		}
	}
	return false
}

// NetworkEnvelope returns the session header and network-info contents of
// a parsed network-delivered message.
func (m *Message) NetworkEnvelope() (session, info string, ok bool) {
	if m == nil || m.session == "" {
		return "", "", false
	}
	return m.session, m.networkInfo, true
}

// Direction is "incoming" for network-marked or network-delivered messages,
// "outgoing" otherwise.
func (m *Message) Direction() string {
	if _, _, delivered := m.NetworkEnvelope(); delivered || m.HasNetworkMarker() {
		return "incoming"
	}
	return "outgoing"
}
