package block

import "strings"

// Field is one :tag:value entry of a text body. Continuation lines are
// joined to Value with "\n".
type Field struct {
	Tag   string
	Value string
}

// Fields decodes the :tag: lines of a body block. Lines before the first
// tag and the closing "-" line are ignored.
func Fields(body string) []Field {
	body = strings.ReplaceAll(body, "\r\n", "\n")
	fields := make([]Field, 0)
	for _, line := range strings.Split(body, "\n") {
		if line == "-" || line == "" {
			continue
		}
		if strings.HasPrefix(line, ":") {
			if end := strings.IndexByte(line[1:], ':'); end > 0 {
				fields = append(fields, Field{Tag: line[1 : end+1], Value: line[end+2:]})
				continue
			}
		}
		if n := len(fields); n > 0 {
			fields[n-1].Value += "\n" + line
		}
	}
	return fields
}

func GetField(fields []Field, tag string) (Field, bool) {
	for _, f := range fields {
		if f.Tag == tag {
			return f, true
		}
	}
	return Field{}, false
}
