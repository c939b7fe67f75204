package format

import (
	"fmt"
	"strings"
)

// NormalizeLineEndings rewrites CRLF and lone CR to LF, then to the target
// style.
func NormalizeLineEndings(text string, style LineEnding) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	if style == CRLF {
		text = strings.ReplaceAll(text, "\n", "\r\n")
	}
	return text
}

// postProcess runs on every rendered message before batching. It rejects
// NUL, normalizes line endings and encodes to the configured charset.
func (b *encoderBase) postProcess(text string) (string, []byte, error) {
	f := b.cfg.Format
	if strings.TrimSpace(text) == "" {
		return "", nil, newError(f, "encode", "", ErrEmptyBody)
	}
	if i := strings.IndexByte(text, 0); i >= 0 {
		return "", nil, newError(f, "encode", fmt.Sprintf("offset %d", i), ErrNulByte)
	}
	text = NormalizeLineEndings(text, b.cfg.LineEnding)
	raw, err := b.charset.Encode(text)
	if err != nil {
		return "", nil, newError(f, "encode", fmt.Sprintf("%s: %v", b.charset.name, err), ErrEncoding)
	}
	return text, raw, nil
}
