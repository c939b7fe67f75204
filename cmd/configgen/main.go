package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/andres-sumihe/swift-generator/internal/config"
	"github.com/andres-sumihe/swift-generator/internal/server"
)

func defaultPath(kind string) string {
	switch kind {
	case "swift":
		return "swift.toml"
	case "server":
		return "cmd/swiftd/config.toml"
	default:
		log.Fatalf("unknown kind: %s", kind)
		return ""
	}
}

// validateFile checks the encode and validate sections and, when present,
// the [server] section.
func validateFile(path string) error {
	if _, err := config.Load(path); err != nil {
		return err
	}
	if _, err := server.LoadConfig(path); err != nil {
		return fmt.Errorf("[server]: %w", err)
	}
	return nil
}

func main() {
	kind := flag.String("kind", "swift", "config kind: swift|server")
	output := flag.String("output", "", "output path for config template")
	validate := flag.Bool("validate", false, "validate an existing config file")
	input := flag.String("input", "", "config path for validation (defaults to per-kind path)")
	force := flag.Bool("force", false, "overwrite existing config file")
	flag.Parse()

	if *validate {
		path := *input
		if path == "" {
			path = defaultPath(*kind)
		}
		if err := validateFile(path); err != nil {
			log.Fatal(err)
		}
		log.Printf("Validated %s config at %s", *kind, path)
		return
	}

	target := *output
	if target == "" {
		target = defaultPath(*kind)
	}
	if err := config.WriteTemplate(target, *kind, *force); err != nil {
		log.Fatal(err)
	}
	log.Printf("Wrote %s config template to %s", *kind, target)
}
