package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds the server-bootstrap scalars mockllm reads from the
// environment before it ever touches --config-dir. Everything that can
// change on a reload (ports aside) lives in configstore.ServerOptions
// instead — this type only covers what the process needs before the
// first snapshot exists.
type Config struct {
	Port           int
	ConfigDir      string
	ReloadDebounce time.Duration
	WatchConfig    bool
	Telemetry      TelemetryConfig
}

type TelemetryConfig struct {
	Enabled      bool
	OTLPEndpoint string
	ServiceName  string
}

// Load reads configuration from environment variables with sensible defaults.
func Load() *Config {
	return &Config{
		Port:           envInt("MOCKLLM_PORT", 8080),
		ConfigDir:      envStr("MOCKLLM_CONFIG_DIR", "./config"),
		ReloadDebounce: time.Duration(envInt("MOCKLLM_RELOAD_DEBOUNCE_MS", 500)) * time.Millisecond,
		WatchConfig:    envBool("MOCKLLM_WATCH_CONFIG", false),
		Telemetry: TelemetryConfig{
			Enabled:      envBool("OTEL_ENABLED", false),
			OTLPEndpoint: envStr("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
			ServiceName:  envStr("OTEL_SERVICE_NAME", "mockllm"),
		},
	}
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}
