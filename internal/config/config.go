package config

import (
	"fmt"

	"github.com/arorarohan/strava-data-analysis/pkg"

	"github.com/BurntSushi/toml"
)

const (
	defaultCredentialsPath = "./credentials.toml"
	defaultRedirectPort    = 8000
	defaultAuthTimeout     = 120 // seconds
	defaultAPIBaseURL      = "https://www.strava.com/api/v3"
	defaultAuthBaseURL     = "https://www.strava.com"
	defaultPerPage         = 200
	defaultChartPath       = "./weekly-moving-time.png"
)

type Config struct {
	// credentials file, holds the client keys and the tokens obtained via the oauth flow
	CredentialsPath string `toml:"credentials_path"`
	// oauth redirect listener
	RedirectPort       int `toml:"redirect_port"`
	AuthTimeoutSeconds int `toml:"auth_timeout_seconds"`
	// strava endpoints, overridable for testing
	APIBaseURL  string `toml:"api_base_url"`
	AuthBaseURL string `toml:"auth_base_url"`
	PerPage     int    `toml:"per_page"`
	ChartPath   string `toml:"chart_path"`
	// logging
	LogLevel      string `toml:"log_level"`
	LogsPath      string `toml:"logs_path"`
	LogToStdout   bool   `toml:"log_to_stdout"`
	SentryEnabled bool   `toml:"sentry_enabled"`
}

// Load reads the TOML config at path, falling back to defaults
// for every missing value. A missing config file is not an error,
// all settings have usable defaults.
func Load(path string) (*Config, error) {
	var cfg Config

	exists, err := pkg.PathExists(path, false)
	if err != nil {
		return nil, fmt.Errorf("stat config file %s: %w", path, err)
	}
	if exists {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return nil, fmt.Errorf("decode config file %s: %w", path, err)
		}
	}

	cfg.setDefaults()

	return &cfg, nil
}

func (cfg *Config) setDefaults() {
	if cfg.CredentialsPath == "" {
		cfg.CredentialsPath = defaultCredentialsPath
	}
	if cfg.RedirectPort == 0 {
		cfg.RedirectPort = defaultRedirectPort
	}
	if cfg.AuthTimeoutSeconds == 0 {
		cfg.AuthTimeoutSeconds = defaultAuthTimeout
	}
	if cfg.APIBaseURL == "" {
		cfg.APIBaseURL = defaultAPIBaseURL
	}
	if cfg.AuthBaseURL == "" {
		cfg.AuthBaseURL = defaultAuthBaseURL
	}
	if cfg.PerPage == 0 {
		cfg.PerPage = defaultPerPage
	}
	if cfg.ChartPath == "" {
		cfg.ChartPath = defaultChartPath
	}
}
