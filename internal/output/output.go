// Package output names, partitions and atomically writes encoded batches.
package output

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/andres-sumihe/swift-generator/internal/format"
	"github.com/andres-sumihe/swift-generator/internal/swift"
	"github.com/rs/zerolog/log"
)

// DefaultPartSize is the message count per split file.
const DefaultPartSize = 1000

const (
	filePerm = 0o644
	dirPerm  = 0o755
)

var ErrPartSize = errors.New("output: part size must be positive")

// Name builds MT<type>_<count>_messages_<direction>_<fmt>.<ext>. An empty
// ext uses the format's own extension; a leading dot is stripped.
func Name(typeCode string, count int, direction string, f format.Format, ext string) string {
	ext = strings.TrimPrefix(strings.TrimSpace(ext), ".")
	if ext == "" {
		ext = f.Extension()
	}
	if ext == "" {
		ext = "txt"
	}
	return fmt.Sprintf("MT%s_%d_messages_%s_%s.%s",
		typeCode, count, strings.ToLower(direction), strings.ToLower(string(f)), ext)
}

// SplitName inserts -<part> before the extension: a.rje -> a-2.rje.
// part is 1-based.
func SplitName(name string, part int) string {
	dir, file := filepath.Split(name)
	base, ext := file, ""
	if i := strings.LastIndex(file, "."); i > 0 {
		base, ext = file[:i], file[i:]
	}
	return dir + fmt.Sprintf("%s-%d%s", base, part, ext)
}

// Parts is ceil(count/size), or 0 for an empty input.
func Parts(count, size int) int {
	if count <= 0 || size <= 0 {
		return 0
	}
	return (count + size - 1) / size
}

// Split partitions items into consecutive chunks of at most size. Every
// chunk but the last holds exactly size items.
func Split[T any](items []T, size int) ([][]T, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrPartSize, size)
	}
	out := make([][]T, 0, Parts(len(items), size))
	for start := 0; start < len(items); start += size {
		end := start + size
		if end > len(items) {
			end = len(items)
		}
		out = append(out, items[start:end])
	}
	return out, nil
}

// WriteFile replaces dest atomically: a same-directory temp file is
// written, synced and renamed over dest, then the directory is synced.
func WriteFile(dest string, data []byte) error {
	dir := filepath.Dir(dest)
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return fmt.Errorf("output: mkdir %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("output: create temp: %w", err)
	}
	tmpPath := tmp.Name()
	_ = os.Chmod(tmpPath, filePerm)

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("output: write %s: %w", dest, err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("output: sync %s: %w", dest, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("output: close %s: %w", dest, err)
	}
	if err := os.Rename(tmpPath, dest); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("output: rename %s: %w", dest, err)
	}
	_ = syncDir(dir)
	log.Debug().Str("path", dest).Int("bytes", len(data)).Msg("output written")
	return nil
}

// WritePayload writes a finalized batch. Hex dumps are written as text;
// every other kind goes through Binary.
func WritePayload(dest string, p format.Payload) error {
	if p.Kind == format.KindHexDump {
		return WriteFile(dest, []byte(p.Text()))
	}
	data, err := p.Binary()
	if err != nil {
		return err
	}
	return WriteFile(dest, data)
}

func syncDir(dir string) error {
	d, err := os.Open(dir)
	if err != nil {
		return err
	}
	defer d.Close()
	return d.Sync()
}

// NameFor derives Name from the first message of a batch.
func NameFor(msgs []*swift.Message, f format.Format, ext string) string {
	code, direction := "000", "outgoing"
	if len(msgs) > 0 {
		if c, err := msgs[0].TypeCode(); err == nil {
			code = c
		}
		direction = msgs[0].Direction()
	}
	return Name(code, len(msgs), direction, f, ext)
}
