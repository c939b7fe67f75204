package format

import (
	"fmt"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/encoding/unicode"
)

// charset encodes message text to bytes. ASCII is handled directly since
// x/text has no strict 7-bit encoder.
type charset struct {
	name  string
	ascii bool
	enc   encoding.Encoding
}

func lookupCharset(name string) (charset, error) {
	key := strings.ToUpper(strings.TrimSpace(name))
	switch key {
	case "", "ASCII", "US-ASCII":
		return charset{name: "US-ASCII", ascii: true}, nil
	case "UTF-8", "UTF8":
		return charset{name: "UTF-8", enc: unicode.UTF8}, nil
	case "ISO-8859-1", "ISO8859-1", "LATIN1":
		return charset{name: "ISO-8859-1", enc: charmap.ISO8859_1}, nil
	case "WINDOWS-1252", "CP1252":
		return charset{name: "windows-1252", enc: charmap.Windows1252}, nil
	}
	enc, err := ianaindex.IANA.Encoding(name)
	if err != nil {
		return charset{}, err
	}
	if enc == nil {
		return charset{}, fmt.Errorf("encoding %q is not supported", name)
	}
	canonical, err := ianaindex.IANA.Name(enc)
	if err != nil {
		canonical = name
	}
	return charset{name: canonical, enc: enc}, nil
}

// Encode converts text to bytes, failing on the first unrepresentable rune.
func (c charset) Encode(text string) ([]byte, error) {
	if c.ascii {
		for i, r := range text {
			if r > 0x7F {
				return nil, fmt.Errorf("rune %q at offset %d", r, i)
			}
		}
		return []byte(text), nil
	}
	out, err := c.enc.NewEncoder().String(text)
	if err != nil {
		return nil, err
	}
	return []byte(out), nil
}
