package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/andres-sumihe/swift-generator/internal/testutil/testlog"
)

const rjeBatch = "{1:F01BANKBEBBAXXX0000000000}{2:I103BANKDEFFXXXXN}{4:\r\n:20:REF1\r\n-}$" +
	"{1:F01BANKBEBBAXXX0000000000}{2:I103BANKDEFFXXXXN}{4:\r\n:20:REF2\r\n-}$" +
	"{1:F01BANKBEBBAXXX0000000000}{2:I103BANKDEFFXXXXN}{4:\r\n:20:REF3\r\n-}"

func writeInput(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "MT103_3.rje")
	if err := os.WriteFile(path, []byte(rjeBatch), 0o644); err != nil {
		t.Fatalf("write input: %v", err)
	}
	return path
}

func TestEncodeWritesNamedFile(t *testing.T) {
	testlog.Start(t)
	in := writeInput(t)
	out := t.TempDir()

	var stdout, stderr bytes.Buffer
	if code := run([]string{"encode", "-f", "fin", "-o", out, in}, &stdout, &stderr); code != 0 {
		t.Fatalf("encode exit %d: %s", code, stderr.String())
	}
	data, err := os.ReadFile(filepath.Join(out, "MT103_3_messages_outgoing_fin.fin"))
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if got := strings.Count(string(data), "{1:"); got != 3 {
		t.Fatalf("expected 3 messages, got %d", got)
	}
	if !strings.Contains(stdout.String(), "messages=3") {
		t.Fatalf("missing stats: %q", stdout.String())
	}
}

func TestEncodePCCHexDump(t *testing.T) {
	testlog.Start(t)
	in := writeInput(t)
	out := t.TempDir()

	var stdout, stderr bytes.Buffer
	if code := run([]string{"encode", "-f", "pcc", "-hex", "-o", out, in}, &stdout, &stderr); code != 0 {
		t.Fatalf("encode exit %d: %s", code, stderr.String())
	}
	data, err := os.ReadFile(filepath.Join(out, "MT103_3_messages_outgoing_dos-pcc.txt"))
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if !strings.Contains(string(data), "// Sector 0 (offset 0x0000)") {
		t.Fatalf("expected hex dump, got %q", data[:min(80, len(data))])
	}
}

func TestExtractPrintsMessages(t *testing.T) {
	testlog.Start(t)
	in := writeInput(t)

	var stdout, stderr bytes.Buffer
	if code := run([]string{"extract", in}, &stdout, &stderr); code != 0 {
		t.Fatalf("extract exit %d: %s", code, stderr.String())
	}
	out := stdout.String()
	if !strings.HasPrefix(out, "# mode=RJE messages=3") {
		t.Fatalf("unexpected header: %q", out)
	}
	for _, ref := range []string{"REF1", "REF2", "REF3"} {
		if !strings.Contains(out, ref) {
			t.Fatalf("missing %s in %q", ref, out)
		}
	}
}

func TestSplitKeepsSourceFormat(t *testing.T) {
	testlog.Start(t)
	in := writeInput(t)
	out := t.TempDir()

	var stdout, stderr bytes.Buffer
	if code := run([]string{"split", "-size", "2", "-o", out, in}, &stdout, &stderr); code != 0 {
		t.Fatalf("split exit %d: %s", code, stderr.String())
	}
	first, err := os.ReadFile(filepath.Join(out, "MT103_3-1.rje"))
	if err != nil {
		t.Fatalf("part 1: %v", err)
	}
	second, err := os.ReadFile(filepath.Join(out, "MT103_3-2.rje"))
	if err != nil {
		t.Fatalf("part 2: %v", err)
	}
	if strings.Count(string(first), "$") != 1 || strings.Count(string(second), "$") != 0 {
		t.Fatalf("unexpected delimiters: %q / %q", first, second)
	}
	if !strings.Contains(string(second), "REF3") {
		t.Fatalf("last part should hold REF3: %q", second)
	}
}

func TestSplitRejectsBadSize(t *testing.T) {
	testlog.Start(t)
	in := writeInput(t)
	var stdout, stderr bytes.Buffer
	if code := run([]string{"split", "-size", "0", "-o", t.TempDir(), in}, &stdout, &stderr); code != 1 {
		t.Fatalf("expected exit 1, got %d", code)
	}
	if !strings.Contains(stderr.String(), "part size must be positive") {
		t.Fatalf("unexpected stderr: %q", stderr.String())
	}
}

func TestFormatsAndUsage(t *testing.T) {
	testlog.Start(t)
	var stdout, stderr bytes.Buffer
	if code := run([]string{"formats"}, &stdout, &stderr); code != 0 {
		t.Fatalf("formats exit %d", code)
	}
	for _, want := range []string{"FIN", "RJE", "DOS-PCC", "pcc"} {
		if !strings.Contains(stdout.String(), want) {
			t.Fatalf("formats missing %s: %q", want, stdout.String())
		}
	}

	stderr.Reset()
	if code := run([]string{"bogus"}, &stdout, &stderr); code != 1 {
		t.Fatalf("expected exit 1 for unknown command")
	}
	if !strings.Contains(stderr.String(), `unknown command "bogus"`) {
		t.Fatalf("unexpected stderr: %q", stderr.String())
	}
	if code := run(nil, &stdout, &stderr); code != 1 {
		t.Fatalf("expected exit 1 with no args")
	}
	if code := run([]string{"encode"}, &stdout, &stderr); code != 1 {
		t.Fatalf("expected exit 1 for encode without files")
	}
}
