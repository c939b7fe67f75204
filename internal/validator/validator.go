// Package validator checks that a set of output batches reproduces the
// messages of its input batches, including inputs split into numbered
// parts.
package validator

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/andres-sumihe/swift-generator/internal/output"
	"github.com/andres-sumihe/swift-generator/internal/protocol/frame"
	"github.com/rs/zerolog/log"
)

var (
	ErrInputDir  = errors.New("validator: input directory required")
	ErrOutputDir = errors.New("validator: output directory required")
)

// Options configures one validation run. Zero values take the defaults.
type Options struct {
	InputDir         string
	OutputDir        string
	Delimiter        string
	Layout           frame.Layout
	LookAheadSectors int
	SplitThreshold   int
	Extensions       []string
}

func DefaultOptions() Options {
	x := DefaultExtractor()
	return Options{
		Delimiter:        x.Delimiter,
		Layout:           x.Layout,
		LookAheadSectors: x.LookAheadSectors,
		SplitThreshold:   output.DefaultPartSize,
		Extensions:       append([]string(nil), DefaultExtensions...),
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.Delimiter == "" {
		o.Delimiter = d.Delimiter
	}
	if o.Layout == (frame.Layout{}) {
		o.Layout = d.Layout
	}
	if o.LookAheadSectors <= 0 {
		o.LookAheadSectors = d.LookAheadSectors
	}
	if o.SplitThreshold <= 0 {
		o.SplitThreshold = d.SplitThreshold
	}
	if len(o.Extensions) == 0 {
		o.Extensions = d.Extensions
	}
	return o
}

// Validator compares input batches with their output counterparts. It
// holds no state between runs.
type Validator struct {
	opts      Options
	extractor Extractor
}

func New(opts Options) (*Validator, error) {
	if strings.TrimSpace(opts.InputDir) == "" {
		return nil, ErrInputDir
	}
	if strings.TrimSpace(opts.OutputDir) == "" {
		return nil, ErrOutputDir
	}
	opts = opts.withDefaults()
	if err := opts.Layout.Validate(); err != nil {
		return nil, fmt.Errorf("validator: %w", err)
	}
	return &Validator{
		opts: opts,
		extractor: Extractor{
			Delimiter:        opts.Delimiter,
			Layout:           opts.Layout,
			LookAheadSectors: opts.LookAheadSectors,
		},
	}, nil
}

func (v *Validator) Options() Options { return v.opts }

// Run validates every discovered input file. Failures are recorded in the
// returned report, which is always sealed.
func (v *Validator) Run(ctx context.Context) *Report {
	rep := NewReport(v.opts.InputDir, v.opts.OutputDir)
	defer rep.GenerateSummary()

	log.Info().
		Str("run_id", rep.RunID).
		Str("input", v.opts.InputDir).
		Str("output", v.opts.OutputDir).
		Msg("validation started")

	if !isDir(v.opts.InputDir) {
		_ = rep.AddError("Input directory does not exist: " + v.opts.InputDir)
		return rep
	}
	if !isDir(v.opts.OutputDir) {
		_ = rep.AddError("Output directory does not exist: " + v.opts.OutputDir)
		return rep
	}

	files, err := Discover(v.opts.InputDir, v.opts.Extensions)
	if err != nil {
		_ = rep.AddError(fmt.Sprintf("Validation failed with exception: %v", err))
		return rep
	}
	log.Info().Int("files", len(files)).Msg("input files discovered")

	for _, path := range files {
		if err := ctx.Err(); err != nil {
			_ = rep.AddError(fmt.Sprintf("Validation cancelled: %v", err))
			break
		}
		_ = rep.AddFileResult(v.ValidateFile(path))
	}
	return rep
}

type part struct {
	path string
	data []byte
	msgs []string
}

// ValidateFile checks one input file. A panic or I/O failure becomes an
// error on the result.
func (v *Validator) ValidateFile(path string) (res *FileResult) {
	rel, err := filepath.Rel(v.opts.InputDir, path)
	if err != nil {
		rel = filepath.Base(path)
	}
	res = newFileResult(path, rel)
	defer func() {
		if p := recover(); p != nil {
			res.errorf("Validation exception: %v", p)
			res.Valid = false
			log.Error().Str("file", path).Interface("panic", p).Msg("validator.ValidateFile recovered")
		}
	}()

	data, err := os.ReadFile(path)
	if err != nil {
		res.errorf("Validation exception: %v", err)
		return res
	}
	mode, inputMsgs := v.extractor.Extract(data)
	res.Mode = mode
	res.InputMessages = len(inputMsgs)
	res.InputChecksum = Checksum(data)
	if d := duplicates(inputMsgs); d > 0 {
		res.InputDuplicates = d
		res.warnf("Unexpected: Input file contains %d duplicate messages", d)
	}

	found := make([]string, 0)
	for _, expected := range v.expectedOutputs(rel, len(inputMsgs)) {
		if isFile(expected) {
			found = append(found, expected)
		} else {
			res.errorf("Expected output file does not exist: %s", expected)
		}
	}
	if len(found) == 0 {
		res.errorf("No output files found for input: %s", filepath.Base(path))
		return res
	}

	parts, err := v.readParts(found)
	if err != nil {
		res.errorf("Split file validation failed: %v", err)
		return res
	}
	res.OutputFiles = found
	v.compareMessages(inputMsgs, parts, res)
	v.compareChecksums(data, mode, parts, res)

	res.Valid = len(res.Errors) == 0
	event := log.Info()
	if !res.Valid {
		event = log.Warn()
	}
	event.
		Str("file", rel).
		Str("mode", string(mode)).
		Int("input_messages", res.InputMessages).
		Int("output_messages", res.OutputMessages).
		Int("outputs", len(found)).
		Bool("valid", res.Valid).
		Msg("file validated")
	return res
}

// expectedOutputs mirrors rel under the output dir, numbered -1..-n when
// count exceeds the split threshold.
func (v *Validator) expectedOutputs(rel string, count int) []string {
	if count <= v.opts.SplitThreshold {
		return []string{filepath.Join(v.opts.OutputDir, rel)}
	}
	n := output.Parts(count, v.opts.SplitThreshold)
	out := make([]string, 0, n)
	for i := 1; i <= n; i++ {
		out = append(out, filepath.Join(v.opts.OutputDir, output.SplitName(rel, i)))
	}
	return out
}

func (v *Validator) readParts(paths []string) ([]part, error) {
	parts := make([]part, 0, len(paths))
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, err
		}
		_, msgs := v.extractor.Extract(data)
		parts = append(parts, part{path: p, data: data, msgs: msgs})
	}
	return parts, nil
}

func (v *Validator) compareMessages(inputMsgs []string, parts []part, res *FileResult) {
	all := make([]string, 0, len(inputMsgs))
	for _, p := range parts {
		all = append(all, p.msgs...)
	}
	res.OutputMessages = len(all)
	res.OutputDuplicates = duplicates(all)

	if len(inputMsgs) != len(all) {
		res.errorf("Message count mismatch - Input: %d, Output: %d (across %d files)",
			len(inputMsgs), len(all), len(parts))
	}
	if res.OutputDuplicates > 0 {
		res.errorf("Output files contain %d duplicate messages (should be 0)", res.OutputDuplicates)
	}

	in, out := normalizedSet(inputMsgs), normalizedSet(all)
	if missing := difference(in, out); len(missing) > 0 {
		res.errorf("Missing %d messages in output files", len(missing))
		if len(missing) == 1 {
			res.errorf("DEBUG - Missing message preview: %s", preview(missing[0]))
		}
	}
	if extra := difference(out, in); len(extra) > 0 {
		res.errorf("Found %d unexpected messages in output files", len(extra))
		if len(extra) == 1 {
			res.errorf("DEBUG - Extra message preview: %s", preview(extra[0]))
		}
	}

	if len(inputMsgs) > v.opts.SplitThreshold {
		v.checkPartition(parts, len(all), res)
	}
	if len(parts) > 1 {
		names := make([]string, 0, len(parts))
		for _, p := range parts {
			names = append(names, filepath.Base(p.path))
		}
		res.infof("Split into %d files: %s", len(parts), strings.Join(names, ", "))
	}
}

// checkPartition enforces full parts of SplitThreshold messages followed
// by one remainder part.
func (v *Validator) checkPartition(parts []part, total int, res *FileResult) {
	size := v.opts.SplitThreshold
	want := output.Parts(total, size)
	if len(parts) != want {
		res.errorf("Incorrect number of split files - Expected: %d, Found: %d", want, len(parts))
		return
	}
	for i, p := range parts {
		expected := size
		if i == len(parts)-1 {
			expected = total - i*size
		}
		if len(p.msgs) != expected {
			res.errorf("Part %d has %d messages, expected %d", i+1, len(p.msgs), expected)
		}
	}
}

func (v *Validator) compareChecksums(input []byte, mode Mode, parts []part, res *FileResult) {
	if len(parts) == 1 {
		out := Checksum(parts[0].data)
		res.OutputChecksum = out
		if out != res.InputChecksum {
			res.errorf("Checksum mismatch - Input: %s, Output: %s", res.InputChecksum, out)
			res.infof("Files have different binary content (may be formatting/line ending differences)")
		} else {
			res.infof("✓ Checksum match - Files are binary identical")
		}
		return
	}

	msgs := make([]string, 0)
	for _, p := range parts {
		msgs = append(msgs, p.msgs...)
	}
	if mode == ModePCC {
		res.infof("DOS-PCC format detected - skipping binary reconstruction")
		res.infof("✓ Message content validation passed - %d messages validated", len(msgs))
		res.OutputChecksum = PCCContentValidated
		return
	}

	rebuilt := Reconstruct(mode, msgs, v.opts.Delimiter, dominantLineEnding(input))
	combined := Checksum(rebuilt)
	res.OutputChecksum = combined
	if combined == res.InputChecksum {
		res.infof("✓ Combined checksum match - Split files reconstruct original perfectly")
		return
	}
	res.errorf("Combined checksum mismatch - Input: %s, Combined Output: %s", res.InputChecksum, combined)
	res.infof("Split files when reconstructed have different binary content than original")
	analyzeSplit(input, parts, rebuilt, res)
}

// analyzeSplit appends per-part sizes and checksums to help locate a
// reconstruction mismatch.
func analyzeSplit(input []byte, parts []part, rebuilt []byte, res *FileResult) {
	res.infof("=== SPLIT FILE CHECKSUM ANALYSIS ===")
	res.infof("Input file size: %d bytes", len(input))

	total, messages := 0, 0
	for i, p := range parts {
		total += len(p.data)
		messages += len(p.msgs)
		res.infof("Part %d: %d bytes, %d messages, checksum: %s", i+1, len(p.data), len(p.msgs), Checksum(p.data))
	}
	delta := total - len(input)
	res.infof("Total output size: %d bytes", total)
	res.infof("Raw size difference: %d bytes", delta)
	res.infof("Total messages extracted: %d", messages)
	res.infof("Reconstructed size: %d bytes", len(rebuilt))
	res.infof("Reconstructed checksum: %s", Checksum(rebuilt))
	if delta < 0 {
		delta = -delta
	}
	if delta <= messages-1 {
		res.infof("✓ Size difference matches expected delimiter count - this is normal for split files")
	}
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
