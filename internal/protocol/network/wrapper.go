// Package network rewrites an outgoing message serialization into its
// network-delivered (incoming) form.
package network

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/andres-sumihe/swift-generator/internal/protocol/block"
	"github.com/rs/zerolog/log"
)

const (
	DefaultBIC    = "CENAIDJ0AXXX"
	DefaultSuffix = "1107"

	trailerBlock = "{5:{TNG:}}"
	systemBlock  = "{S:{SAC:}{COP:P}}"
	sessionMod   = 10_000_000_000
)

var terminatorRun = regexp.MustCompile(`\r+\r?\n-\}`)

// Config carries the synthesized header values.
type Config struct {
	BIC    string `toml:"bic" json:"bic"`
	Suffix string `toml:"suffix" json:"suffix"`
}

func DefaultConfig() Config {
	return Config{BIC: DefaultBIC, Suffix: DefaultSuffix}
}

// FallbackWarning reports why a message was left unwrapped.
type FallbackWarning struct {
	Block string
	Err   error
}

func (w *FallbackWarning) Error() string {
	return fmt.Sprintf("network: block %s: %v; emitted unwrapped", w.Block, w.Err)
}

func (w *FallbackWarning) Unwrap() error { return w.Err }

// Result is the outcome of Wrap. Warning is set only when Wrapped is false.
type Result struct {
	Text    string
	Wrapped bool
	Warning *FallbackWarning
}

// Wrapper is safe for concurrent use. Session numbers are strictly
// increasing per Wrapper.
type Wrapper struct {
	cfg Config
	now func() time.Time

	mu          sync.Mutex
	lastSession int64
}

func NewWrapper(cfg Config) *Wrapper {
	if strings.TrimSpace(cfg.BIC) == "" {
		cfg.BIC = DefaultBIC
	}
	if strings.TrimSpace(cfg.Suffix) == "" {
		cfg.Suffix = DefaultSuffix
	}
	return &Wrapper{cfg: cfg, now: time.Now}
}

// WithClock replaces the time source; used by tests.
func (w *Wrapper) WithClock(now func() time.Time) *Wrapper {
	w.now = now
	return w
}

// StripMarker removes the NETFMT line and collapses stray carriage returns
// before the body terminator.
func StripMarker(text string) string {
	text = strings.ReplaceAll(text, "\r\n:119:NETFMT", "")
	text = strings.ReplaceAll(text, "\n:119:NETFMT", "")
	crlf := strings.Contains(text, "\r\n")
	return terminatorRun.ReplaceAllStringFunc(text, func(string) string {
		if crlf {
			return "\r\n-}"
		}
		return "\n-}"
	})
}

// Wrap converts a serialized message into its incoming network form. Any
// extraction failure yields the marker-stripped text and a warning.
func (w *Wrapper) Wrap(text string) Result {
	stripped := StripMarker(text)

	parts := make(map[string]string, 4)
	for _, id := range []string{"1", "2", "3", "4"} {
		raw, err := block.Extract(stripped, id)
		if err != nil {
			if id == "3" && errors.Is(err, block.ErrNotFound) {
				continue
			}
			warn := &FallbackWarning{Block: id, Err: err}
			log.Warn().Err(warn).Msg("network.Wrap fallback")
			return Result{Text: stripped, Warning: warn}
		}
		parts[id] = raw
	}

	now := w.now()
	var b strings.Builder
	b.Grow(len(stripped) + 96)
	fmt.Fprintf(&b, "{1:F21%s%010d}", w.cfg.BIC, w.nextSession(now))
	fmt.Fprintf(&b, "{4:{177:%s%s}{451:0}}", now.Format("060102"), w.cfg.Suffix)
	b.WriteString(parts["1"])
	b.WriteString(toInput(parts["2"]))
	b.WriteString(parts["3"])
	b.WriteString(parts["4"])
	b.WriteString(trailerBlock)
	b.WriteString(systemBlock)

	log.Debug().Int("bytes", b.Len()).Msg("network.Wrap ok")
	return Result{Text: b.String(), Wrapped: true}
}

func (w *Wrapper) nextSession(now time.Time) int64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	n := now.UnixMilli() % sessionMod
	if n <= w.lastSession {
		n = w.lastSession + 1
	}
	if n >= sessionMod {
		n = 0
	}
	w.lastSession = n
	return n
}

func toInput(app string) string {
	if strings.HasPrefix(app, "{2:O") {
		return "{2:I" + app[len("{2:O"):]
	}
	return app
}
