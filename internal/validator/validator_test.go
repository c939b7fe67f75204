package validator

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/andres-sumihe/swift-generator/internal/format"
	"github.com/andres-sumihe/swift-generator/internal/output"
	"github.com/andres-sumihe/swift-generator/internal/swift"
	"github.com/andres-sumihe/swift-generator/internal/testutil/testlog"
)

func genMessages(t *testing.T, n int) []*swift.Message {
	t.Helper()
	msgs := make([]*swift.Message, 0, n)
	for i := 0; i < n; i++ {
		m, err := swift.NewMessage(map[string]string{
			"1": "F01BANKBEBBAXXX0000000000",
			"2": "I103BANKDEFFXXXXN",
			"4": fmt.Sprintf("\n:20:TXN%08d\n:23B:CRED\n:32A:240101EUR%d,00\n:59:/67890\nBENEFICIARY\n:71A:SHA\n-", i, i+1),
		})
		if err != nil {
			t.Fatalf("new message %d: %v", i, err)
		}
		msgs = append(msgs, m)
	}
	return msgs
}

func encode(t *testing.T, f format.Format, msgs []*swift.Message) []byte {
	t.Helper()
	enc, err := format.NewDefault(f)
	if err != nil {
		t.Fatalf("new encoder: %v", err)
	}
	payload, _, err := format.EncodeBatch(enc, msgs)
	if err != nil {
		t.Fatalf("encode %s: %v", f, err)
	}
	return payload.Data
}

func writeFile(t *testing.T, path string, data []byte) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// writeSplit encodes msgs in chunks of size under out as name-1.ext, ...
func writeSplit(t *testing.T, f format.Format, msgs []*swift.Message, size int, out, name string) {
	t.Helper()
	chunks, err := output.Split(msgs, size)
	if err != nil {
		t.Fatalf("split: %v", err)
	}
	for i, chunk := range chunks {
		writeFile(t, filepath.Join(out, output.SplitName(name, i+1)), encode(t, f, chunk))
	}
}

type dirs struct{ in, out string }

func newDirs(t *testing.T) dirs {
	t.Helper()
	root := t.TempDir()
	d := dirs{in: filepath.Join(root, "in"), out: filepath.Join(root, "out")}
	for _, p := range []string{d.in, d.out} {
		if err := os.MkdirAll(p, 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
	}
	return d
}

func run(t *testing.T, d dirs) *Report {
	t.Helper()
	v, err := New(Options{InputDir: d.in, OutputDir: d.out})
	if err != nil {
		t.Fatalf("new validator: %v", err)
	}
	return v.Run(context.Background())
}

func onlyFile(t *testing.T, rep *Report) *FileResult {
	t.Helper()
	if len(rep.Files) != 1 {
		t.Fatalf("expected 1 file result, got %d (global=%v)", len(rep.Files), rep.GlobalErrors)
	}
	return rep.Files[0]
}

func hasPrefix(lines []string, prefix string) bool {
	for _, l := range lines {
		if strings.HasPrefix(l, prefix) {
			return true
		}
	}
	return false
}

func TestExtractModes(t *testing.T) {
	testlog.Start(t)
	x := DefaultExtractor()

	mode, msgs := x.Extract([]byte("{1:A}{4:\r\n:20:1\r\n-}${1:B}{4:\r\n:20:2\r\n-}$ {1:C}{4:\r\n:20:3\r\n-}\r\n"))
	if mode != ModeRJE || len(msgs) != 3 || msgs[2] != "{1:C}{4:\r\n:20:3\r\n-}" {
		t.Fatalf("rje: mode=%s msgs=%q", mode, msgs)
	}

	mode, msgs = x.Extract([]byte("{1:F01X}{2:I103X}{4:\n:20:ONLY\n-}\n"))
	if mode != ModeUniversal || len(msgs) != 1 || msgs[0] != "{1:F01X}{2:I103X}{4:\n:20:ONLY\n-}" {
		t.Fatalf("universal single: mode=%s msgs=%q", mode, msgs)
	}

	pcc := encode(t, format.DOSPCC, genMessages(t, 3))
	mode, msgs = x.Extract(pcc)
	if mode != ModePCC || len(msgs) != 3 || !strings.HasSuffix(msgs[1], "-}") {
		t.Fatalf("pcc: mode=%s count=%d", mode, len(msgs))
	}
}

func TestExtractUniversalKeepsWrappedHeader(t *testing.T) {
	testlog.Start(t)
	wrapped := "{1:F21CENAIDJ0AXXX0000000001}{4:{177:2401011107}{451:0}}{1:F01X}{2:I950X}{4:\n:20:S\n-}{5:{TNG:}}{S:{SAC:}{COP:P}}"
	plain := "{1:F01Y}{2:I103Y}{4:\n:20:P\n-}"
	msgs := ExtractUniversal(wrapped + "\n\n" + plain)
	if len(msgs) != 2 || msgs[0] != wrapped || msgs[1] != plain {
		t.Fatalf("unexpected messages: %q", msgs)
	}
	if got := ExtractUniversal("no messages here"); len(got) != 0 {
		t.Fatalf("expected none, got %q", got)
	}
}

func TestRoundTripSingleFile(t *testing.T) {
	testlog.Start(t)
	for _, f := range []format.Format{format.FIN, format.RJE, format.DOSPCC} {
		t.Run(string(f), func(t *testing.T) {
			d := newDirs(t)
			name := "MT103_3_messages_outgoing." + f.Extension()
			data := encode(t, f, genMessages(t, 3))
			writeFile(t, filepath.Join(d.in, name), data)
			writeFile(t, filepath.Join(d.out, name), data)

			rep := run(t, d)
			res := onlyFile(t, rep)
			if !res.Valid || !rep.Valid() {
				t.Fatalf("expected valid, errors=%v", res.Errors)
			}
			if res.InputMessages != 3 || res.OutputMessages != 3 {
				t.Fatalf("unexpected counts: %d/%d", res.InputMessages, res.OutputMessages)
			}
			if res.InputChecksum != res.OutputChecksum || res.InputChecksum != Checksum(data) {
				t.Fatalf("checksum mismatch: %s vs %s", res.InputChecksum, res.OutputChecksum)
			}
			if !rep.Sealed() || rep.Summary.Valid != 1 || rep.Summary.InputMessages != 3 {
				t.Fatalf("unexpected summary: %+v", rep.Summary)
			}
		})
	}
}

func TestLineEndingDifferencesStillMatchMessages(t *testing.T) {
	testlog.Start(t)
	d := newDirs(t)
	data := encode(t, format.FIN, genMessages(t, 2))
	writeFile(t, filepath.Join(d.in, "mt103.fin"), data)
	writeFile(t, filepath.Join(d.out, "mt103.fin"), bytes.ReplaceAll(data, []byte("\n"), []byte("\r\n")))

	res := onlyFile(t, run(t, d))
	if hasPrefix(res.Errors, "Missing") || hasPrefix(res.Errors, "Found") {
		t.Fatalf("line endings should not affect message sets: %v", res.Errors)
	}
	if !hasPrefix(res.Errors, "Checksum mismatch - Input: ") {
		t.Fatalf("expected raw checksum mismatch, got %v", res.Errors)
	}
}

func TestSplitRJEReconstructsChecksum(t *testing.T) {
	testlog.Start(t)
	d := newDirs(t)
	msgs := genMessages(t, 2500)
	writeFile(t, filepath.Join(d.in, "batch", "MT103_big.rje"), encode(t, format.RJE, msgs))
	writeSplit(t, format.RJE, msgs, 1000, filepath.Join(d.out, "batch"), "MT103_big.rje")

	res := onlyFile(t, run(t, d))
	if !res.Valid {
		t.Fatalf("expected valid split, errors=%v", res.Errors)
	}
	if len(res.OutputFiles) != 3 || !strings.HasSuffix(res.OutputFiles[2], filepath.Join("batch", "MT103_big-3.rje")) {
		t.Fatalf("unexpected outputs: %v", res.OutputFiles)
	}
	if res.OutputChecksum != res.InputChecksum {
		t.Fatalf("combined checksum should match: %s vs %s", res.OutputChecksum, res.InputChecksum)
	}
	if !hasPrefix(res.Info, "Split into 3 files: MT103_big-1.rje, MT103_big-2.rje, MT103_big-3.rje") {
		t.Fatalf("missing split info: %v", res.Info)
	}
}

func TestSplitFINUsesBlankLineRejoin(t *testing.T) {
	testlog.Start(t)
	d := newDirs(t)
	msgs := genMessages(t, 1200)
	writeFile(t, filepath.Join(d.in, "MT103_big.fin"), encode(t, format.FIN, msgs))
	writeSplit(t, format.FIN, msgs, 1000, d.out, "MT103_big.fin")

	res := onlyFile(t, run(t, d))
	if !res.Valid || res.Mode != ModeUniversal {
		t.Fatalf("expected valid universal split, mode=%s errors=%v", res.Mode, res.Errors)
	}
}

func TestSplitPCCSkipsReconstruction(t *testing.T) {
	testlog.Start(t)
	d := newDirs(t)
	msgs := genMessages(t, 1001)
	writeFile(t, filepath.Join(d.in, "MT103_big.pcc"), encode(t, format.DOSPCC, msgs))
	writeSplit(t, format.DOSPCC, msgs, 1000, d.out, "MT103_big.pcc")

	res := onlyFile(t, run(t, d))
	if !res.Valid {
		t.Fatalf("expected valid, errors=%v", res.Errors)
	}
	if res.OutputChecksum != PCCContentValidated {
		t.Fatalf("unexpected output checksum %q", res.OutputChecksum)
	}
	if !hasPrefix(res.Info, "✓ Message content validation passed - 1001 messages validated") {
		t.Fatalf("missing content info: %v", res.Info)
	}
}

func TestSplitPartitionViolations(t *testing.T) {
	testlog.Start(t)
	d := newDirs(t)
	msgs := genMessages(t, 2500)
	writeFile(t, filepath.Join(d.in, "MT103_big.rje"), encode(t, format.RJE, msgs))
	writeSplit(t, format.RJE, msgs, 900, d.out, "MT103_big.rje")

	res := onlyFile(t, run(t, d))
	if res.Valid {
		t.Fatalf("900-message parts must fail the partition law")
	}
	for _, want := range []string{
		"Part 1 has 900 messages, expected 1000",
		"Part 2 has 900 messages, expected 1000",
		"Part 3 has 700 messages, expected 500",
	} {
		if !hasPrefix(res.Errors, want) {
			t.Fatalf("missing %q in %v", want, res.Errors)
		}
	}
}

func TestSplitMissingPart(t *testing.T) {
	testlog.Start(t)
	d := newDirs(t)
	msgs := genMessages(t, 2100)
	writeFile(t, filepath.Join(d.in, "MT103_big.rje"), encode(t, format.RJE, msgs))
	writeSplit(t, format.RJE, msgs, 1000, d.out, "MT103_big.rje")
	if err := os.Remove(filepath.Join(d.out, "MT103_big-2.rje")); err != nil {
		t.Fatalf("remove: %v", err)
	}

	res := onlyFile(t, run(t, d))
	for _, want := range []string{
		"Expected output file does not exist: ",
		"Message count mismatch - Input: 2100, Output: 1100 (across 2 files)",
		"Missing 1000 messages in output files",
	} {
		if !hasPrefix(res.Errors, want) {
			t.Fatalf("missing %q in %v", want, res.Errors)
		}
	}
	if hasPrefix(res.Errors, "Incorrect number of split files") || hasPrefix(res.Errors, "Part ") {
		t.Fatalf("found parts form a valid partition of their own messages: %v", res.Errors)
	}
}

func TestSplitChecksumMismatchAddsAnalysis(t *testing.T) {
	testlog.Start(t)
	d := newDirs(t)
	msgs := genMessages(t, 1500)
	input := append(encode(t, format.RJE, msgs), '\r', '\n')
	writeFile(t, filepath.Join(d.in, "MT103_big.rje"), input)
	writeSplit(t, format.RJE, msgs, 1000, d.out, "MT103_big.rje")

	res := onlyFile(t, run(t, d))
	if !hasPrefix(res.Errors, "Combined checksum mismatch - Input: ") {
		t.Fatalf("expected combined mismatch, got %v", res.Errors)
	}
	for _, want := range []string{
		"=== SPLIT FILE CHECKSUM ANALYSIS ===",
		fmt.Sprintf("Input file size: %d bytes", len(input)),
		"Part 1: ",
		"Part 2: ",
		"Total messages extracted: 1500",
		"Reconstructed size: ",
		"✓ Size difference matches expected delimiter count",
	} {
		if !hasPrefix(res.Info, want) {
			t.Fatalf("analysis missing %q in %v", want, res.Info)
		}
	}
}

func TestMissingOutputAndDuplicates(t *testing.T) {
	testlog.Start(t)
	d := newDirs(t)
	msgs := genMessages(t, 3)
	writeFile(t, filepath.Join(d.in, "mt103_missing.fin"), encode(t, format.FIN, msgs))

	dup := append(msgs[:3:3], msgs[0])
	writeFile(t, filepath.Join(d.in, "mt103_dup.rje"), encode(t, format.RJE, msgs))
	writeFile(t, filepath.Join(d.out, "mt103_dup.rje"), encode(t, format.RJE, dup))

	rep := run(t, d)
	if rep.Valid() || rep.Summary.Invalid != 2 {
		t.Fatalf("expected 2 invalid files, summary=%+v", rep.Summary)
	}
	byName := map[string]*FileResult{}
	for _, f := range rep.Files {
		byName[filepath.Base(f.InputFile)] = f
	}

	missing := byName["mt103_missing.fin"]
	if !hasPrefix(missing.Errors, "Expected output file does not exist: ") ||
		!hasPrefix(missing.Errors, "No output files found for input: mt103_missing.fin") {
		t.Fatalf("unexpected missing-output errors: %v", missing.Errors)
	}

	dupRes := byName["mt103_dup.rje"]
	if dupRes.OutputDuplicates != 1 || rep.Summary.OutputDuplicates != 1 {
		t.Fatalf("expected one output duplicate, got %d", dupRes.OutputDuplicates)
	}
	if !hasPrefix(dupRes.Errors, "Output files contain 1 duplicate messages (should be 0)") ||
		!hasPrefix(dupRes.Errors, "Message count mismatch - Input: 3, Output: 4 (across 1 files)") {
		t.Fatalf("unexpected duplicate errors: %v", dupRes.Errors)
	}
}

func TestInputDuplicatesWarn(t *testing.T) {
	testlog.Start(t)
	d := newDirs(t)
	msgs := genMessages(t, 2)
	data := encode(t, format.RJE, append(msgs, msgs[1]))
	writeFile(t, filepath.Join(d.in, "mt103.rje"), data)
	writeFile(t, filepath.Join(d.out, "mt103.rje"), data)

	res := onlyFile(t, run(t, d))
	if res.InputDuplicates != 1 || !hasPrefix(res.Warnings, "Unexpected: Input file contains 1 duplicate messages") {
		t.Fatalf("expected input duplicate warning, got %v", res.Warnings)
	}
}

func TestExtraMessagePreview(t *testing.T) {
	testlog.Start(t)
	d := newDirs(t)
	msgs := genMessages(t, 3)
	writeFile(t, filepath.Join(d.in, "mt103.rje"), encode(t, format.RJE, msgs[:2]))
	writeFile(t, filepath.Join(d.out, "mt103.rje"), encode(t, format.RJE, msgs))

	res := onlyFile(t, run(t, d))
	if !hasPrefix(res.Errors, "Found 1 unexpected messages in output files") ||
		!hasPrefix(res.Errors, "DEBUG - Extra message preview: {1:F01BANKBEBBAXXX") {
		t.Fatalf("unexpected errors: %v", res.Errors)
	}
}

func TestMissingDirectoriesAreGlobalErrors(t *testing.T) {
	testlog.Start(t)
	root := t.TempDir()
	v, err := New(Options{InputDir: filepath.Join(root, "nope"), OutputDir: root})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	rep := v.Run(context.Background())
	if rep.Valid() || len(rep.GlobalErrors) != 1 || !strings.HasPrefix(rep.GlobalErrors[0], "Input directory does not exist: ") {
		t.Fatalf("unexpected report: %+v", rep.GlobalErrors)
	}
	if _, err := New(Options{OutputDir: root}); !errors.Is(err, ErrInputDir) {
		t.Fatalf("expected ErrInputDir, got %v", err)
	}
}

func TestRunHonorsCancellation(t *testing.T) {
	testlog.Start(t)
	d := newDirs(t)
	writeFile(t, filepath.Join(d.in, "mt103.fin"), encode(t, format.FIN, genMessages(t, 1)))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	v, _ := New(Options{InputDir: d.in, OutputDir: d.out})
	rep := v.Run(ctx)
	if len(rep.Files) != 0 || !hasPrefix(rep.GlobalErrors, "Validation cancelled: ") {
		t.Fatalf("expected cancellation, got files=%d errors=%v", len(rep.Files), rep.GlobalErrors)
	}
}

func TestDiscoverFiltersNames(t *testing.T) {
	testlog.Start(t)
	root := t.TempDir()
	for _, name := range []string{"MT103_a.txt", "sub/mt940.RJE", "sub/deep/x_mt202.pcc", "readme.txt", "mt103.csv", "fmt.fin"} {
		writeFile(t, filepath.Join(root, name), []byte("x"))
	}
	files, err := Discover(root, nil)
	if err != nil {
		t.Fatalf("discover: %v", err)
	}
	var rel []string
	for _, f := range files {
		r, _ := filepath.Rel(root, f)
		rel = append(rel, filepath.ToSlash(r))
	}
	want := []string{"MT103_a.txt", "fmt.fin", "sub/deep/x_mt202.pcc", "sub/mt940.RJE"}
	if strings.Join(rel, ",") != strings.Join(want, ",") {
		t.Fatalf("unexpected discovery: %v", rel)
	}
}

func TestReportSealAndPrint(t *testing.T) {
	testlog.Start(t)
	rep := NewReport("in", "out")
	ok := newFileResult("in/mt103.fin", "mt103.fin")
	ok.Valid = true
	ok.InputMessages, ok.OutputMessages = 2, 2
	ok.InputChecksum, ok.OutputChecksum = "aa", "aa"
	ok.infof("✓ Checksum match - Files are binary identical")
	bad := newFileResult("in/mt940.rje", "mt940.rje")
	bad.errorf("Missing %d messages in output files", 1)
	bad.InputChecksum = "bb"

	if err := rep.AddFileResult(ok); err != nil {
		t.Fatalf("add: %v", err)
	}
	_ = rep.AddFileResult(bad)
	rep.GenerateSummary()
	if err := rep.AddFileResult(ok); !errors.Is(err, ErrReportSealed) {
		t.Fatalf("expected ErrReportSealed, got %v", err)
	}
	if err := rep.AddError("late"); !errors.Is(err, ErrReportSealed) {
		t.Fatalf("expected ErrReportSealed for AddError, got %v", err)
	}
	if rep.Summary.Files != 2 || rep.Summary.Valid != 1 || rep.Summary.Invalid != 1 || rep.Valid() {
		t.Fatalf("unexpected summary: %+v", rep.Summary)
	}

	var buf bytes.Buffer
	if err := rep.Print(&buf); err != nil {
		t.Fatalf("print: %v", err)
	}
	text := buf.String()
	for _, want := range []string{
		"SWIFT FILE VALIDATION REPORT",
		"Overall Status: ✗ FAILED",
		"  Total Files Validated: 2",
		"  ✓ mt103.fin",
		"  ✗ mt940.rje",
		"    ERROR: Missing 1 messages in output files",
		"    INFO: ✓ Checksum match - Files are binary identical",
		"    Messages: Input=2, Output=2, InputDups=0, OutputDups=0",
		"    Checksums: Input=bb, Output=N/A",
		strings.Repeat("=", 80),
	} {
		if !strings.Contains(text, want) {
			t.Fatalf("report missing %q:\n%s", want, text)
		}
	}
}

func TestChecksumAndReconstruct(t *testing.T) {
	testlog.Start(t)
	if got := Checksum([]byte("abc")); got != "900150983cd24fb0d6963f7d28e17f72" {
		t.Fatalf("unexpected md5: %s", got)
	}
	msgs := []string{"M1", "M2", "M3"}
	if got := string(Reconstruct(ModeRJE, msgs, "$", "\r\n")); got != "M1$M2$M3" {
		t.Fatalf("rje reconstruct: %q", got)
	}
	if got := string(Reconstruct(ModeUniversal, msgs, "$", "\r\n")); got != "M1\r\n\r\nM2\r\n\r\nM3" {
		t.Fatalf("universal reconstruct: %q", got)
	}
	if dominantLineEnding([]byte("a\r\nb\r\nc\n")) != "\r\n" || dominantLineEnding([]byte("a\nb\r\n")) != "\n" {
		t.Fatalf("unexpected line ending detection")
	}
}

func TestExtractorMessagesParsesEveryMessage(t *testing.T) {
	testlog.Start(t)
	x := DefaultExtractor()

	mode, msgs, err := x.Messages(encode(t, format.RJE, genMessages(t, 3)))
	if err != nil {
		t.Fatalf("messages: %v", err)
	}
	if mode != ModeRJE || len(msgs) != 3 {
		t.Fatalf("got mode=%s n=%d", mode, len(msgs))
	}
	if code, _ := msgs[2].TypeCode(); code != "103" {
		t.Fatalf("type code: %q", code)
	}

	if _, _, err := x.Messages([]byte("   \r\n")); !errors.Is(err, ErrNoMessages) {
		t.Fatalf("expected ErrNoMessages, got %v", err)
	}
}

func TestExtractorMessagesKeepsNetworkDeliveredBody(t *testing.T) {
	testlog.Start(t)
	m, err := swift.NewMessage(map[string]string{
		"1": "F01BANKBEBBAXXX0000000000",
		"2": "O9401200240101BANKDEFFXXXX00000000002401011200N",
		"4": "\n:20:TXN00000001\n:119:NETFMT\n-",
	})
	if err != nil {
		t.Fatalf("new message: %v", err)
	}
	first := encode(t, format.FIN, []*swift.Message{m, genMessages(t, 1)[0]})

	_, msgs, err := DefaultExtractor().Messages(first)
	if err != nil {
		t.Fatalf("messages: %v", err)
	}
	if len(msgs) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(msgs))
	}
	if !strings.Contains(msgs[0].Body(), ":20:TXN00000001") {
		t.Fatalf("body lost after parse: %q", msgs[0].Serialize())
	}
	if v, _ := msgs[0].Block("1"); v != "F01BANKBEBBAXXX0000000000" {
		t.Fatalf("basic header lost after parse: %q", v)
	}
	if msgs[0].Direction() != "incoming" {
		t.Fatalf("expected incoming, got %s", msgs[0].Direction())
	}

	// Re-encoding the parsed batch must reproduce it byte for byte.
	if second := encode(t, format.FIN, msgs); !bytes.Equal(first, second) {
		t.Fatalf("re-encode changed the batch:\nfirst  %q\nsecond %q", first, second)
	}
}
