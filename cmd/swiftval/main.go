package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/andres-sumihe/swift-generator/internal/config"
	"github.com/andres-sumihe/swift-generator/internal/logging"
	"github.com/andres-sumihe/swift-generator/internal/observability"
	"github.com/andres-sumihe/swift-generator/internal/output"
	"github.com/andres-sumihe/swift-generator/internal/report"
	"github.com/andres-sumihe/swift-generator/internal/validator"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const usage = `SWIFT File Validator

Compares input batches with the output of a deduplication run. Output
files must mirror the input layout; inputs above the split threshold are
expected as <name>-1.<ext> ... <name>-N.<ext>.

Usage: swiftval -i <input dir> -o <output dir> [-v] [-xlsx report.xlsx] [-config swift.toml]
`

func main() {
	_ = godotenv.Load()
	logging.ConfigureRuntime()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	os.Exit(run(ctx, os.Args[1:], os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("swiftval", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() { fmt.Fprint(stderr, usage) }
	input := fs.String("i", "", "input directory")
	outputDir := fs.String("o", "", "output directory")
	verbose := fs.Bool("v", false, "verbose logging")
	help := fs.Bool("h", false, "show help")
	xlsx := fs.String("xlsx", "", "write the report as an XLSX workbook to this path")
	cfgPath := fs.String("config", "", "path to swift config (TOML)")
	if err := fs.Parse(args); err != nil {
		return 1
	}
	if *help {
		fmt.Fprint(stdout, usage)
		return 0
	}
	if *verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	cfg := config.Default()
	if *cfgPath != "" {
		loaded, err := config.Load(*cfgPath)
		if err != nil {
			fmt.Fprintf(stderr, "swiftval: %v\n", err)
			return 1
		}
		cfg = loaded
	}
	opts, err := cfg.ValidatorOptions()
	if err != nil {
		fmt.Fprintf(stderr, "swiftval: %v\n", err)
		return 1
	}
	if *input != "" {
		opts.InputDir = *input
	}
	if *outputDir != "" {
		opts.OutputDir = *outputDir
	}
	if *xlsx == "" {
		*xlsx = cfg.Validator.XLSX
	}

	v, err := validator.New(opts)
	if err != nil {
		fmt.Fprintf(stderr, "swiftval: %v\n", err)
		fmt.Fprint(stderr, usage)
		return 1
	}
	rep := v.Run(ctx)
	for _, f := range rep.Files {
		observability.RecordValidatedFile(string(f.Mode), f.Valid)
	}
	if err := rep.Print(stdout); err != nil {
		fmt.Fprintf(stderr, "swiftval: print report: %v\n", err)
		return 1
	}

	if *xlsx != "" {
		data, err := report.XLSX(rep)
		if err != nil {
			fmt.Fprintf(stderr, "swiftval: %v\n", err)
			return 1
		}
		if err := output.WriteFile(*xlsx, data); err != nil {
			fmt.Fprintf(stderr, "swiftval: %v\n", err)
			return 1
		}
		log.Info().Str("path", *xlsx).Msg("xlsx report written")
	}

	if !rep.Valid() {
		return 1
	}
	return 0
}
