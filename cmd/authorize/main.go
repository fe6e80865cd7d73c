package main

//// One-shot setup tool: runs the full Strava authorization-code flow
//// and writes the obtained tokens to the credentials file. The main CLI
//// falls back to the same flow automatically when no usable token exists,
//// this tool just forces a fresh consent.

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/arorarohan/strava-data-analysis/internal/auth"
	"github.com/arorarohan/strava-data-analysis/internal/config"
	"github.com/arorarohan/strava-data-analysis/internal/logging"
)

func main() {
	configPath := flag.String("config", "./config.toml", "path for the TOML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	logging.Setup(logging.LoggerSetupParams{
		LogToStdout: true,
		LogLevel:    cfg.LogLevel,
	})

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	authorizer := auth.NewAuthorizer(auth.NewAuthorizerParams{
		Store:        auth.NewFileStore(cfg.CredentialsPath),
		AuthBaseURL:  cfg.AuthBaseURL,
		RedirectPort: cfg.RedirectPort,
		Timeout:      time.Duration(cfg.AuthTimeoutSeconds) * time.Second,
	})

	fmt.Println("Starting Strava authorization flow ...")
	creds, err := authorizer.Authorize(ctx)
	if err != nil {
		if errors.Is(err, auth.ErrAuthorizationTimeout) {
			fmt.Fprintln(os.Stderr, "Timeout waiting for authorization. Please try again.")
		} else {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}

	fmt.Println("Authorization successful!")
	fmt.Printf("Tokens saved to: %s\n", cfg.CredentialsPath)
	if creds.ExpiresAt > 0 {
		fmt.Printf("Access token expires at: %s\n", time.Unix(creds.ExpiresAt, 0).Format(time.RFC1123))
	}
}
