package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/alnah/go-md2cv/internal/config"
)

// envConfig holds configuration from environment variables.
// Provides CI/CD-friendly overrides without requiring YAML files.
type envConfig struct {
	ConfigPath  string        // MD2CV_CONFIG: config file name or path
	Engine      string        // MD2CV_ENGINE: browser, metrics
	Timeout     time.Duration // MD2CV_TIMEOUT: measurement and export timeout
	Paper       string        // MD2CV_PAPER: A4, letter, legal
	FrontMatter string        // MD2CV_FRONT_MATTER: error, last, empty
	OutputDir   string        // MD2CV_OUTPUT_DIR: default output directory
	Addr        string        // MD2CV_ADDR: preview server address
	AssetPath   string        // MD2CV_ASSET_PATH: custom asset directory
}

// knownEnvVars lists valid MD2CV_* environment variables.
// Used to detect typos and warn users about unknown variables.
var knownEnvVars = map[string]bool{
	"MD2CV_CONFIG":       true,
	"MD2CV_ENGINE":       true,
	"MD2CV_TIMEOUT":      true,
	"MD2CV_PAPER":        true,
	"MD2CV_FRONT_MATTER": true,
	"MD2CV_OUTPUT_DIR":   true,
	"MD2CV_ADDR":         true,
	"MD2CV_ASSET_PATH":   true,
}

// loadEnvConfig reads configuration from environment variables.
func loadEnvConfig() *envConfig {
	cfg := &envConfig{
		ConfigPath:  os.Getenv("MD2CV_CONFIG"),
		Engine:      os.Getenv("MD2CV_ENGINE"),
		Paper:       os.Getenv("MD2CV_PAPER"),
		FrontMatter: os.Getenv("MD2CV_FRONT_MATTER"),
		OutputDir:   os.Getenv("MD2CV_OUTPUT_DIR"),
		Addr:        os.Getenv("MD2CV_ADDR"),
		AssetPath:   os.Getenv("MD2CV_ASSET_PATH"),
	}

	if timeout := os.Getenv("MD2CV_TIMEOUT"); timeout != "" {
		if d, err := time.ParseDuration(timeout); err == nil && d > 0 {
			cfg.Timeout = d
		}
	}

	return cfg
}

// warnUnknownEnvVars logs warnings for unrecognized MD2CV_* variables.
func warnUnknownEnvVars(w io.Writer) {
	for _, env := range os.Environ() {
		if strings.HasPrefix(env, "MD2CV_") {
			name := strings.SplitN(env, "=", 2)[0]
			if !knownEnvVars[name] {
				fmt.Fprintf(w, "warning: unknown environment variable %s (typo?)\n", name)
			}
		}
	}
}

// applyEnvConfig applies environment variable values to config.
// Only sets values if the env var is set AND the config value is empty.
// This ensures: CLI flags > env vars > config file > defaults
// (CLI flags are applied later via mergeFlags)
func applyEnvConfig(env *envConfig, cfg *config.Config) {
	if env.Engine != "" && cfg.Render.Engine == "" {
		cfg.Render.Engine = env.Engine
	}
	if env.Timeout > 0 && cfg.Render.Timeout == "" {
		cfg.Render.Timeout = env.Timeout.String()
	}
	if env.Paper != "" && cfg.Style.Paper == "" {
		cfg.Style.Paper = env.Paper
	}
	if env.FrontMatter != "" && cfg.Render.FrontMatter == "" {
		cfg.Render.FrontMatter = env.FrontMatter
	}
	if env.OutputDir != "" && cfg.Output.DefaultDir == "" {
		cfg.Output.DefaultDir = env.OutputDir
	}
	if env.Addr != "" && cfg.Serve.Addr == "" {
		cfg.Serve.Addr = env.Addr
	}
	if env.AssetPath != "" && cfg.Assets.BasePath == "" {
		cfg.Assets.BasePath = env.AssetPath
	}
}
