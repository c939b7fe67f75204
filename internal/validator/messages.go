package validator

import (
	"errors"
	"fmt"

	"github.com/andres-sumihe/swift-generator/internal/swift"
)

var ErrNoMessages = errors.New("validator: no messages found")

// Messages extracts and parses every message in data. Any unparseable
// message fails the whole call.
func (x Extractor) Messages(data []byte) (Mode, []*swift.Message, error) {
	mode, texts := x.Extract(data)
	if len(texts) == 0 {
		return mode, nil, ErrNoMessages
	}
	msgs := make([]*swift.Message, 0, len(texts))
	for i, text := range texts {
		m, err := swift.Parse(text)
		if err != nil {
			return mode, nil, fmt.Errorf("message %d of %d: %w", i+1, len(texts), err)
		}
		msgs = append(msgs, m)
	}
	return mode, msgs, nil
}
