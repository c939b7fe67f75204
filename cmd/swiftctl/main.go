package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/andres-sumihe/swift-generator/internal/config"
	"github.com/andres-sumihe/swift-generator/internal/format"
	"github.com/andres-sumihe/swift-generator/internal/logging"
	"github.com/andres-sumihe/swift-generator/internal/observability"
	"github.com/andres-sumihe/swift-generator/internal/output"
	"github.com/andres-sumihe/swift-generator/internal/protocol/network"
	"github.com/andres-sumihe/swift-generator/internal/swift"
	"github.com/andres-sumihe/swift-generator/internal/validator"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

const usage = `swiftctl <command> [flags]

Commands:
  encode   re-encode message files into FIN, RJE or DOS-PCC
  extract  print the messages found in a file
  split    partition a batch into <name>-N parts of the same format
  formats  list supported formats
`

var errUsage = errors.New("usage")

func main() {
	_ = godotenv.Load()
	logging.ConfigureRuntime()
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		fmt.Fprint(stderr, usage)
		return 1
	}
	var err error
	switch args[0] {
	case "encode":
		err = runEncode(args[1:], stdout, stderr)
	case "extract":
		err = runExtract(args[1:], stdout, stderr)
	case "split":
		err = runSplit(args[1:], stdout, stderr)
	case "formats":
		err = runFormats(stdout)
	case "-h", "--help", "help":
		fmt.Fprint(stdout, usage)
		return 0
	default:
		err = fmt.Errorf("%w: unknown command %q", errUsage, args[0])
	}
	if err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintf(stderr, "swiftctl: %v\n", err)
		}
		if errors.Is(err, errUsage) {
			fmt.Fprint(stderr, usage)
		}
		return 1
	}
	return 0
}

func loadSettings(path string) (config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}

func extractor(cfg config.Config) (validator.Extractor, error) {
	opts, err := cfg.ValidatorOptions()
	if err != nil {
		return validator.Extractor{}, err
	}
	return validator.Extractor{
		Delimiter:        opts.Delimiter,
		Layout:           opts.Layout,
		LookAheadSectors: opts.LookAheadSectors,
	}, nil
}

func readMessages(x validator.Extractor, path string) (validator.Mode, []*swift.Message, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", nil, err
	}
	mode, msgs, err := x.Messages(data)
	if err != nil {
		return mode, nil, fmt.Errorf("%s: %w", path, err)
	}
	if len(msgs) > format.MaxBatchMessages {
		return mode, nil, fmt.Errorf("%s: %d messages exceeds batch limit %d", path, len(msgs), format.MaxBatchMessages)
	}
	return mode, msgs, nil
}

func runEncode(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("encode", flag.ContinueOnError)
	fs.SetOutput(stderr)
	name := fs.String("f", "FIN", "target format or alias")
	outDir := fs.String("o", ".", "output directory")
	ext := fs.String("ext", "", "file extension override")
	hex := fs.Bool("hex", false, "DOS-PCC: write a hex dump instead of binary")
	cfgPath := fs.String("config", "", "path to swift config (TOML)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		return fmt.Errorf("%w: encode needs at least one input file", errUsage)
	}

	f, err := format.ParseFormat(*name)
	if err != nil {
		return err
	}
	cfg, err := loadSettings(*cfgPath)
	if err != nil {
		return err
	}
	x, err := extractor(cfg)
	if err != nil {
		return err
	}
	fc, err := cfg.FormatConfig(f)
	if err != nil {
		return err
	}
	fc.HexDump = fc.HexDump || *hex
	wrapper := network.NewWrapper(cfg.Network)
	enc, err := format.NewWithWrapper(fc, wrapper)
	if err != nil {
		return err
	}

	for _, path := range fs.Args() {
		_, msgs, err := readMessages(x, path)
		if err != nil {
			return err
		}
		payload, stats, err := format.EncodeBatch(enc, msgs)
		observability.RecordEncode(string(f), stats.Messages, stats.Wrapped, stats.Fallbacks, stats.Elapsed, err == nil)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		e := *ext
		if e == "" && payload.Kind == format.KindHexDump {
			e = "txt"
		}
		dest := filepath.Join(*outDir, output.NameFor(msgs, f, e))
		if err := output.WritePayload(dest, payload); err != nil {
			return err
		}
		fmt.Fprintf(stdout, "%s -> %s (%s)\n", path, dest, stats)
	}
	return nil
}

func runExtract(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("extract", flag.ContinueOnError)
	fs.SetOutput(stderr)
	cfgPath := fs.String("config", "", "path to swift config (TOML)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("%w: extract needs exactly one file", errUsage)
	}
	cfg, err := loadSettings(*cfgPath)
	if err != nil {
		return err
	}
	x, err := extractor(cfg)
	if err != nil {
		return err
	}
	mode, msgs, err := readMessages(x, fs.Arg(0))
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "# mode=%s messages=%d\n", mode, len(msgs))
	for i, m := range msgs {
		code, _ := m.TypeCode()
		fmt.Fprintf(stdout, "# %d MT%s %s\n%s\n", i+1, code, m.Direction(), m.Serialize())
	}
	return nil
}

// sourceFormat maps an extraction mode back to the format that wrote it.
func sourceFormat(mode validator.Mode) format.Format {
	switch mode {
	case validator.ModeRJE:
		return format.RJE
	case validator.ModePCC:
		return format.DOSPCC
	default:
		return format.FIN
	}
}

func runSplit(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("split", flag.ContinueOnError)
	fs.SetOutput(stderr)
	size := fs.Int("size", output.DefaultPartSize, "messages per part")
	outDir := fs.String("o", ".", "output directory")
	name := fs.String("f", "", "format of the parts (default: same as input)")
	cfgPath := fs.String("config", "", "path to swift config (TOML)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("%w: split needs exactly one file", errUsage)
	}
	cfg, err := loadSettings(*cfgPath)
	if err != nil {
		return err
	}
	x, err := extractor(cfg)
	if err != nil {
		return err
	}
	path := fs.Arg(0)
	mode, msgs, err := readMessages(x, path)
	if err != nil {
		return err
	}

	f := sourceFormat(mode)
	if strings.TrimSpace(*name) != "" {
		if f, err = format.ParseFormat(*name); err != nil {
			return err
		}
	}
	fc, err := cfg.FormatConfig(f)
	if err != nil {
		return err
	}
	enc, err := format.NewWithWrapper(fc, network.NewWrapper(cfg.Network))
	if err != nil {
		return err
	}

	parts, err := output.Split(msgs, *size)
	if err != nil {
		return err
	}
	base := filepath.Base(path)
	for i, chunk := range parts {
		payload, _, err := format.EncodeBatch(enc, chunk)
		if err != nil {
			return fmt.Errorf("part %d: %w", i+1, err)
		}
		dest := filepath.Join(*outDir, output.SplitName(base, i+1))
		if err := output.WritePayload(dest, payload); err != nil {
			return err
		}
		fmt.Fprintf(stdout, "%s: %d messages\n", dest, len(chunk))
	}
	log.Info().Str("input", path).Int("parts", len(parts)).Str("format", string(f)).Msg("split complete")
	return nil
}

func runFormats(stdout io.Writer) error {
	tw := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "FORMAT\tEXT\tBINARY\tDESCRIPTION")
	for _, s := range format.Specs() {
		fmt.Fprintf(tw, "%s\t%s\t%t\t%s\n", s.Format, s.Extension, s.Binary, s.Description)
	}
	return tw.Flush()
}
