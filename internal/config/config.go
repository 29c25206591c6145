// Package config resolves server settings from a .env file, the
// environment and command-line flags, in increasing order of precedence.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	TransportV4     = "v4"
	TransportLegacy = "legacy"
)

type Config struct {
	Port            int
	ClientOrigin    string
	Transport       string
	LogLevel        slog.Level
	StatsInterval   time.Duration
	ShutdownTimeout time.Duration
}

// Load reads envFile (a missing file is not an error) without overriding
// variables already set, then applies args on top.
func Load(envFile string, args []string) (Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", envFile, err)
		}
	}

	port, err := getEnvInt("PORT", 3000)
	if err != nil {
		return Config{}, err
	}
	statsInterval, err := getEnvDuration("STATS_INTERVAL", 15*time.Second)
	if err != nil {
		return Config{}, err
	}
	shutdownTimeout, err := getEnvDuration("SHUTDOWN_TIMEOUT", 10*time.Second)
	if err != nil {
		return Config{}, err
	}

	var cfg Config
	var level string
	fsFlags := flag.NewFlagSet("bingo-signal", flag.ContinueOnError)
	fsFlags.SetOutput(io.Discard)
	fsFlags.IntVar(&cfg.Port, "port", port, "Server port")
	fsFlags.StringVar(&cfg.ClientOrigin, "origin", getEnv("CLIENT_ORIGIN", "http://localhost:5173"), "Allowed CORS origin")
	fsFlags.StringVar(&cfg.Transport, "transport", getEnv("SOCKETIO_TRANSPORT", TransportV4), "Socket.IO server: v4 or legacy")
	fsFlags.StringVar(&level, "log-level", getEnv("LOG_LEVEL", "info"), "Log level: debug, info, warn, error")
	fsFlags.DurationVar(&cfg.StatsInterval, "stats-interval", statsInterval, "Room statistics sampling interval")
	fsFlags.DurationVar(&cfg.ShutdownTimeout, "shutdown-timeout", shutdownTimeout, "Graceful shutdown timeout")

	if err := fsFlags.Parse(args); err != nil {
		return Config{}, fmt.Errorf("parse flags: %w", err)
	}

	if err := cfg.LogLevel.UnmarshalText([]byte(level)); err != nil {
		return Config{}, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	switch c.Transport {
	case TransportV4, TransportLegacy:
	default:
		return fmt.Errorf("invalid transport %q: want %s or %s", c.Transport, TransportV4, TransportLegacy)
	}
	if c.StatsInterval <= 0 {
		return fmt.Errorf("stats interval must be positive, got %s", c.StatsInterval)
	}
	if c.ShutdownTimeout <= 0 {
		return fmt.Errorf("shutdown timeout must be positive, got %s", c.ShutdownTimeout)
	}
	return nil
}

func (c Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

func getEnv(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := getEnv(key, "")
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := getEnv(key, "")
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}
