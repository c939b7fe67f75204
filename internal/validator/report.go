package validator

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

var ErrReportSealed = errors.New("validator: report sealed")

// FileResult is the outcome for one input file.
type FileResult struct {
	InputFile   string   `json:"input_file"`
	RelPath     string   `json:"rel_path"`
	OutputFiles []string `json:"output_files"`
	Mode        Mode     `json:"mode"`
	Valid       bool     `json:"valid"`

	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
	Info     []string `json:"info"`

	InputChecksum    string `json:"input_checksum"`
	OutputChecksum   string `json:"output_checksum"`
	InputMessages    int    `json:"input_messages"`
	OutputMessages   int    `json:"output_messages"`
	InputDuplicates  int    `json:"input_duplicates"`
	OutputDuplicates int    `json:"output_duplicates"`
}

func newFileResult(path, rel string) *FileResult {
	return &FileResult{InputFile: path, RelPath: rel}
}

func (r *FileResult) errorf(format string, args ...any) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

func (r *FileResult) warnf(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

func (r *FileResult) infof(format string, args ...any) {
	r.Info = append(r.Info, fmt.Sprintf(format, args...))
}

// Summary holds the totals computed when the report is sealed.
type Summary struct {
	Files            int `json:"files"`
	Valid            int `json:"valid"`
	Invalid          int `json:"invalid"`
	InputMessages    int `json:"input_messages"`
	OutputMessages   int `json:"output_messages"`
	InputDuplicates  int `json:"input_duplicates"`
	OutputDuplicates int `json:"output_duplicates"`
}

// Report accumulates results for one run. GenerateSummary seals it.
type Report struct {
	RunID     string    `json:"run_id"`
	InputDir  string    `json:"input_dir"`
	OutputDir string    `json:"output_dir"`
	Started   time.Time `json:"started"`
	Finished  time.Time `json:"finished"`

	Files        []*FileResult `json:"files"`
	GlobalErrors []string      `json:"global_errors"`
	Summary      Summary       `json:"summary"`

	mu     sync.Mutex
	sealed bool
}

func NewReport(inputDir, outputDir string) *Report {
	return &Report{
		RunID:     uuid.NewString(),
		InputDir:  inputDir,
		OutputDir: outputDir,
		Started:   time.Now(),
	}
}

func (r *Report) AddFileResult(res *FileResult) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.sealed {
		return ErrReportSealed
	}
	r.Files = append(r.Files, res)
	return nil
}

func (r *Report) AddError(msg string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.sealed {
		return ErrReportSealed
	}
	r.GlobalErrors = append(r.GlobalErrors, msg)
	return nil
}

// GenerateSummary computes the totals and seals the report. Calling it
// again is a no-op.
func (r *Report) GenerateSummary() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.sealed {
		return
	}
	s := Summary{Files: len(r.Files)}
	for _, f := range r.Files {
		if f.Valid {
			s.Valid++
		}
		s.InputMessages += f.InputMessages
		s.OutputMessages += f.OutputMessages
		s.InputDuplicates += f.InputDuplicates
		s.OutputDuplicates += f.OutputDuplicates
	}
	s.Invalid = s.Files - s.Valid
	r.Summary = s
	r.Finished = time.Now()
	r.sealed = true
}

func (r *Report) Sealed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sealed
}

// Valid reports no global errors and no invalid files.
func (r *Report) Valid() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.GlobalErrors) > 0 {
		return false
	}
	for _, f := range r.Files {
		if !f.Valid {
			return false
		}
	}
	return true
}

// Print renders the human-readable report.
func (r *Report) Print(w io.Writer) error {
	rule := strings.Repeat("=", 80)
	status := "✓ PASSED"
	if !r.Valid() {
		status = "✗ FAILED"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "\n%s\nSWIFT FILE VALIDATION REPORT\n%s\n", rule, rule)
	fmt.Fprintf(&b, "Run ID: %s\n", r.RunID)
	fmt.Fprintf(&b, "Overall Status: %s\n\n", status)

	s := r.Summary
	b.WriteString("SUMMARY:\n")
	fmt.Fprintf(&b, "  Total Files Validated: %d\n", s.Files)
	fmt.Fprintf(&b, "  Valid Files: %d\n", s.Valid)
	fmt.Fprintf(&b, "  Invalid Files: %d\n", s.Invalid)
	fmt.Fprintf(&b, "  Total Input Messages: %d\n", s.InputMessages)
	fmt.Fprintf(&b, "  Total Output Messages: %d\n", s.OutputMessages)
	fmt.Fprintf(&b, "  Input Duplicates Found: %d\n", s.InputDuplicates)
	fmt.Fprintf(&b, "  Output Duplicates Found: %d\n\n", s.OutputDuplicates)

	if len(r.GlobalErrors) > 0 {
		b.WriteString("GLOBAL ERRORS:\n")
		for _, e := range r.GlobalErrors {
			fmt.Fprintf(&b, "  ✗ %s\n", e)
		}
		b.WriteString("\n")
	}

	if len(r.Files) > 0 {
		b.WriteString("FILE VALIDATION RESULTS:\n")
		for _, f := range r.Files {
			mark := "✓"
			if !f.Valid {
				mark = "✗"
			}
			fmt.Fprintf(&b, "  %s %s\n", mark, filepath.Base(f.InputFile))
			if !f.Valid {
				for _, e := range f.Errors {
					fmt.Fprintf(&b, "    ERROR: %s\n", e)
				}
			}
			for _, wn := range f.Warnings {
				fmt.Fprintf(&b, "    WARNING: %s\n", wn)
			}
			for _, in := range f.Info {
				fmt.Fprintf(&b, "    INFO: %s\n", in)
			}
			if f.InputMessages > 0 {
				fmt.Fprintf(&b, "    Messages: Input=%d, Output=%d, InputDups=%d, OutputDups=%d\n",
					f.InputMessages, f.OutputMessages, f.InputDuplicates, f.OutputDuplicates)
			}
			if f.InputChecksum != "" {
				out := f.OutputChecksum
				if out == "" {
					out = "N/A"
				}
				fmt.Fprintf(&b, "    Checksums: Input=%s, Output=%s\n", f.InputChecksum, out)
			}
		}
	}
	b.WriteString(rule + "\n")

	_, err := io.WriteString(w, b.String())
	return err
}
