package validator

import (
	"bytes"
	"crypto/md5"
	"encoding/hex"
	"strings"
)

// PCCContentValidated stands in for the output checksum of a split
// DOS-PCC input, whose sector layout is not reconstructed.
const PCCContentValidated = "DOS-PCC-CONTENT-VALIDATED"

// Checksum is the lowercase hex MD5 of data.
func Checksum(data []byte) string {
	sum := md5.Sum(data)
	return hex.EncodeToString(sum[:])
}

// Reconstruct rejoins extracted messages the way the input batch joined
// them: the delimiter for RJE, a blank line for everything else.
func Reconstruct(mode Mode, msgs []string, delimiter, lineEnding string) []byte {
	sep := lineEnding + lineEnding
	if mode == ModeRJE {
		sep = delimiter
	}
	return []byte(strings.Join(msgs, sep))
}

// dominantLineEnding is CRLF when CRLF pairs outnumber bare LFs.
func dominantLineEnding(data []byte) string {
	crlf := bytes.Count(data, []byte("\r\n"))
	lf := bytes.Count(data, []byte("\n")) - crlf
	if crlf > lf {
		return "\r\n"
	}
	return "\n"
}

func normalizeLineEndings(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}

func duplicates(msgs []string) int {
	seen := make(map[string]struct{}, len(msgs))
	for _, m := range msgs {
		seen[m] = struct{}{}
	}
	return len(msgs) - len(seen)
}

func normalizedSet(msgs []string) map[string]struct{} {
	set := make(map[string]struct{}, len(msgs))
	for _, m := range msgs {
		set[normalizeLineEndings(m)] = struct{}{}
	}
	return set
}

// difference returns the members of a missing from b.
func difference(a, b map[string]struct{}) []string {
	out := make([]string, 0)
	for m := range a {
		if _, ok := b[m]; !ok {
			out = append(out, m)
		}
	}
	return out
}

func preview(msg string) string {
	r := []rune(msg)
	if len(r) > 100 {
		r = r[:100]
	}
	return string(r) + "..."
}
