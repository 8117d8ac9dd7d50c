package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/soocke/gazemap-go/app"
	"github.com/soocke/gazemap-go/config"
	"github.com/soocke/gazemap-go/debug"
)

func main() {
	cfgPath := flag.String("config", "config.json", "path to the JSON config file")
	envFile := flag.String("env", ".env", "dotenv file with GAZEMAP_* overrides")
	debugFlag := flag.Bool("debug", false, "log goroutine and memory stats")
	flag.Parse()

	if err := config.LoadDotEnv(*envFile); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if *debugFlag {
		cfg.Debug = true
		cfg.LogLevel = "debug"
	}

	logger := NewLogger(ParseLevel(cfg.LogLevel), cfg.LogFile)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if cfg.Debug {
		debug.StartGoroutineLogger(ctx, 10*time.Second, logger)
		debug.StartMemLogger(ctx, 10*time.Second, logger)
	}

	application := app.NewApp("Gazemap", 1100, 820, cfg, *cfgPath, logger)
	application.Start()
}
