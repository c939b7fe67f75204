// Package format encodes messages into the FIN, RJE and DOS-PCC
// transmission formats and frames them into batches.
package format

import (
	"fmt"
	"sort"
	"strings"
)

type Format string

const (
	FIN    Format = "FIN"
	RJE    Format = "RJE"
	DOSPCC Format = "DOS-PCC"
)

// MaxBatchMessages is the ceiling enforced by callers that accept batches
// from users.
const MaxBatchMessages = 10000

// Spec describes a registered format.
type Spec struct {
	Format      Format `json:"format"`
	Extension   string `json:"extension"`
	Binary      bool   `json:"binary"`
	Description string `json:"description"`
}

var specs = map[Format]Spec{
	FIN:    {Format: FIN, Extension: "fin", Description: "SWIFT FIN text, blank line between messages"},
	RJE:    {Format: RJE, Extension: "rje", Description: "Remote Job Entry, delimiter between messages"},
	DOSPCC: {Format: DOSPCC, Extension: "pcc", Binary: true, Description: "DOS-PCC sector-aligned binary frames"},
}

var aliases = map[string]Format{
	"FIN":              FIN,
	"FINANCIAL":        FIN,
	"STANDARD":         FIN,
	"SWIFT":            FIN,
	"RJE":              RJE,
	"BATCH":            RJE,
	"REMOTE_JOB_ENTRY": RJE,
	"DOS-PCC":          DOSPCC,
	"DOS_PCC":          DOSPCC,
	"DOSPCC":           DOSPCC,
	"DOS":              DOSPCC,
	"PCC":              DOSPCC,
	"PC":               DOSPCC,
}

// ParseFormat resolves a format name or alias, case-insensitively.
func ParseFormat(raw string) (Format, error) {
	key := strings.ToUpper(strings.TrimSpace(raw))
	key = strings.ReplaceAll(key, " ", "_")
	if f, ok := aliases[key]; ok {
		return f, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, raw)
}

func (f Format) Extension() string {
	return specs[f].Extension
}

func (f Format) Binary() bool {
	return specs[f].Binary
}

func (f Format) String() string {
	return string(f)
}

// Specs lists the registered formats ordered by name.
func Specs() []Spec {
	list := make([]Spec, 0, len(specs))
	for _, s := range specs {
		list = append(list, s)
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].Format < list[j].Format
	})
	return list
}
