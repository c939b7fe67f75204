package validator

import (
	"bytes"
	"strings"

	"github.com/andres-sumihe/swift-generator/internal/protocol/frame"
)

// Mode is the extraction strategy picked for one file.
type Mode string

const (
	ModeRJE       Mode = "RJE"
	ModePCC       Mode = "DOS-PCC"
	ModeUniversal Mode = "universal"
)

const messageStart = "{1:"

// Extractor recovers individual messages from a batch in any of the
// supported formats.
type Extractor struct {
	Delimiter        string
	Layout           frame.Layout
	LookAheadSectors int
}

func DefaultExtractor() Extractor {
	return Extractor{
		Delimiter:        "$",
		Layout:           frame.DefaultLayout(),
		LookAheadSectors: frame.DefaultLookAheadSectors,
	}
}

// Detect picks RJE when the delimiter occurs, DOS-PCC when both markers
// occur, and the universal scan otherwise.
func (x Extractor) Detect(data []byte) Mode {
	if x.Delimiter != "" && bytes.Contains(data, []byte(x.Delimiter)) {
		return ModeRJE
	}
	if bytes.IndexByte(data, byte(x.Layout.StartMarker)) >= 0 &&
		bytes.IndexByte(data, byte(x.Layout.EndMarker)) >= 0 {
		return ModePCC
	}
	return ModeUniversal
}

// Extract returns the detected mode and the trimmed messages in file order.
func (x Extractor) Extract(data []byte) (Mode, []string) {
	mode := x.Detect(data)
	switch mode {
	case ModeRJE:
		return mode, x.splitDelimited(string(data))
	case ModePCC:
		return mode, x.scanFrames(data)
	default:
		return mode, ExtractUniversal(string(data))
	}
}

func (x Extractor) splitDelimited(text string) []string {
	out := make([]string, 0)
	for _, part := range strings.Split(text, x.Delimiter) {
		if msg := trim(part); strings.HasPrefix(msg, messageStart) {
			out = append(out, msg)
		}
	}
	return out
}

func (x Extractor) scanFrames(data []byte) []string {
	out := make([]string, 0)
	for _, payload := range frame.Scan(data, x.Layout, x.LookAheadSectors) {
		if msg := trim(string(payload)); strings.HasPrefix(msg, messageStart) {
			out = append(out, msg)
		}
	}
	return out
}

// ExtractUniversal finds each message from "{1:" through the first "-}"
// and on to just before the next "{1:" or the end of text. Nested "{1:"
// inside a network-wrapped header stays with its message.
func ExtractUniversal(text string) []string {
	out := make([]string, 0)
	pos := 0
	for pos < len(text) {
		i := strings.Index(text[pos:], messageStart)
		if i < 0 {
			break
		}
		start := pos + i
		j := strings.Index(text[start+len(messageStart):], "-}")
		if j < 0 {
			break
		}
		end := start + len(messageStart) + j + 2
		stop := len(text)
		if k := strings.Index(text[end:], messageStart); k >= 0 {
			stop = end + k
		}
		if msg := trim(text[start:stop]); msg != "" {
			out = append(out, msg)
		}
		pos = stop
	}
	return out
}

// trim drops leading and trailing bytes at or below space, which covers
// line endings and sector padding.
func trim(s string) string {
	return strings.TrimFunc(s, func(r rune) bool { return r <= ' ' })
}
