package format

import (
	"fmt"
	"strings"
)

// HexDump renders data as 16-byte rows with an ASCII gutter. A comment
// precedes the row holding each sector boundary.
func HexDump(data []byte, sectorSize int) string {
	var b strings.Builder
	for i := 0; i < len(data); i += 16 {
		if sectorSize > 0 {
			// Every sector starting inside this row gets its comment.
			end := min(i+16, len(data))
			for s := (i + sectorSize - 1) / sectorSize; s*sectorSize < end; s++ {
				fmt.Fprintf(&b, "\n// Sector %d (offset 0x%04X)\n", s, s*sectorSize)
			}
		}
		fmt.Fprintf(&b, "%04X: ", i)
		for j := 0; j < 16; j++ {
			if i+j < len(data) {
				fmt.Fprintf(&b, "%02X ", data[i+j])
			} else {
				b.WriteString("   ")
			}
		}
		b.WriteString(" |")
		for j := 0; j < 16; j++ {
			if i+j >= len(data) {
				b.WriteByte(' ')
				continue
			}
			c := data[i+j]
			if c >= 32 && c <= 126 {
				b.WriteByte(c)
			} else {
				b.WriteByte('.')
			}
		}
		b.WriteString("|\n")
	}
	return b.String()
}
