package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/andres-sumihe/swift-generator/internal/config"
	"github.com/andres-sumihe/swift-generator/internal/logging"
	"github.com/andres-sumihe/swift-generator/internal/observability"
	"github.com/andres-sumihe/swift-generator/internal/server"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

func main() {
	path := flag.String("config", "", "path to swift config (TOML); defaults are used when empty")
	flag.Parse()

	envErr := godotenv.Load()
	logging.ConfigureRuntime()
	observability.InitLogger("swiftd")
	if envErr != nil {
		log.Debug().Msg("no .env file loaded")
	}
	gin.SetMode(gin.ReleaseMode)

	settings := config.Default()
	svcCfg := server.DefaultConfig()
	if *path != "" {
		var err error
		if settings, err = config.Load(*path); err != nil {
			fatalf("%v", err)
		}
		if svcCfg, err = server.LoadConfig(*path); err != nil {
			fatalf("%v", err)
		}
	}

	svc, err := server.New(svcCfg, settings)
	if err != nil {
		fatalf("%v", err)
	}
	if err := svc.Serve(); err != nil {
		fatalf("%v", err)
	}
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "swiftd: "+format+"\n", args...)
	os.Exit(1)
}
