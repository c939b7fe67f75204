// Package block implements balanced-bracket extraction of labeled message
// blocks ({1:...}{2:...}) and the :tag: fields of a text body.
package block

import (
	"errors"
	"strings"
)

var (
	ErrNotFound  = errors.New("block: not found")
	ErrMalformed = errors.New("block: unbalanced braces")
)

// Block is one top-level {id:content} segment.
type Block struct {
	ID      string
	Content string
	Raw     string
	Offset  int
}

// Extract returns the raw text of the first {id: block, braces included.
// Depth starts at 1 for the opening brace and the block ends where it
// returns to zero.
func Extract(text, id string) (string, error) {
	start, end, err := locate(text, id, 0)
	if err != nil {
		return "", err
	}
	return text[start:end], nil
}

// Content returns the text between "{id:" and the matching "}".
func Content(text, id string) (string, error) {
	raw, err := Extract(text, id)
	if err != nil {
		return "", err
	}
	return raw[len(id)+2 : len(raw)-1], nil
}

func locate(text, id string, from int) (int, int, error) {
	open := "{" + id + ":"
	idx := strings.Index(text[from:], open)
	if idx < 0 {
		return 0, 0, ErrNotFound
	}
	start := from + idx
	end, ok := closing(text, start+len(open))
	if !ok {
		return 0, 0, ErrMalformed
	}
	return start, end, nil
}

// closing scans from pos with depth 1 and returns the index just past the
// brace that closes the block.
func closing(text string, pos int) (int, bool) {
	depth := 1
	for i := pos; i < len(text); i++ {
		switch text[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i + 1, true
			}
		}
	}
	return 0, false
}

// Split walks every top-level block in order. Text between blocks is
// skipped; an unterminated block is ErrMalformed.
func Split(text string) ([]Block, error) {
	out := make([]Block, 0, 6)
	i := 0
	for i < len(text) {
		if text[i] != '{' {
			i++
			continue
		}
		colon := strings.IndexByte(text[i:], ':')
		if colon <= 1 {
			return nil, ErrMalformed
		}
		id := text[i+1 : i+colon]
		if strings.ContainsAny(id, "{}") {
			return nil, ErrMalformed
		}
		end, ok := closing(text, i+colon+1)
		if !ok {
			return nil, ErrMalformed
		}
		out = append(out, Block{
			ID:      id,
			Content: text[i+colon+1 : end-1],
			Raw:     text[i:end],
			Offset:  i,
		})
		i = end
	}
	return out, nil
}
