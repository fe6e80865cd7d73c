package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/arorarohan/strava-data-analysis/internal/app"
	"github.com/arorarohan/strava-data-analysis/internal/config"
	"github.com/arorarohan/strava-data-analysis/internal/logging"

	log "github.com/sirupsen/logrus"
)

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: %s [flags] <weeks>\n", os.Args[0])
	fmt.Fprintln(os.Stderr, "  <weeks>  number of trailing weeks to report on (positive integer)")
	flag.PrintDefaults()
}

func main() {
	configPath := flag.String("config", "./config.toml", "path for the TOML config file")
	flag.Usage = usage
	flag.Parse()

	weeks, err := parseWeeksArg()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n\n", err)
		usage()
		os.Exit(1)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	logging.Setup(logging.LoggerSetupParams{
		LogFileName:   cfg.LogsPath,
		LogToStdout:   cfg.LogToStdout,
		LogLevel:      cfg.LogLevel,
		SentryEnabled: cfg.SentryEnabled,
		SentryDSN:     os.Getenv("SENTRY_DSN"),
	})

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := app.Run(ctx, app.RunParams{
		Config: cfg,
		Weeks:  weeks,
		Out:    os.Stdout,
	}); err != nil {
		log.Errorf("run failed: %s", err)
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func parseWeeksArg() (int, error) {
	if flag.NArg() != 1 {
		return 0, fmt.Errorf("exactly one argument expected, got %d", flag.NArg())
	}
	weeks, err := strconv.Atoi(flag.Arg(0))
	if err != nil {
		return 0, fmt.Errorf("weeks must be an integer, got %q", flag.Arg(0))
	}
	if weeks <= 0 {
		return 0, fmt.Errorf("weeks must be positive, got %d", weeks)
	}
	return weeks, nil
}
