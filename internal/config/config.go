// Package config collects command-line flags and environment variables
// into a single validated Config.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/hammamikhairi/betterrest/internal/domain"
	"github.com/hammamikhairi/betterrest/internal/locale"
	"github.com/hammamikhairi/betterrest/internal/logger"
)

// Env var names.
const (
	EnvModel    = "BETTERREST_MODEL"
	EnvOnnxLib  = "BETTERREST_ONNX_LIB"
	EnvLocale   = "BETTERREST_LOCALE"
	EnvLogLevel = "BETTERREST_LOG_LEVEL"
)

// Predictor backends.
const (
	BackendAuto   = "auto"
	BackendLinear = "linear"
	BackendONNX   = "onnx"
)

// Config is the resolved runtime configuration.
type Config struct {
	LogLevel logger.Level
	LogFile  string // "stderr" logs to the console

	Locale  string
	Backend string
	Model   string // YAML artifact or .onnx file; empty means bundled
	OnnxLib string

	// Print computes a single bedtime from the flags below and exits.
	Print  bool
	WakeUp time.Time
	Sleep  float64
	Coffee int
}

// Load parses args (without the program name). Environment values are
// read through lookup and are overridden by explicit flags.
func Load(args []string, lookup func(string) string, stderr io.Writer) (*Config, error) {
	fs := flag.NewFlagSet("betterrest", flag.ContinueOnError)
	if stderr != nil {
		fs.SetOutput(stderr)
	}

	verbose := fs.Bool("verbose", false, "enable verbose/debug logging")
	quiet := fs.Bool("quiet", false, "disable all logging")
	logFile := fs.String("log-file", ".betterrest-logs/betterrest.log", "file to write logs to (use \"stderr\" to log to console)")
	loc := fs.String("locale", locale.FromEnv(lookup, EnvLocale, "LC_ALL", "LC_TIME", "LANG"), "display language, e.g. en-US, en-GB, de")
	backend := fs.String("backend", BackendAuto, "sleep model backend: auto, linear or onnx")
	model := fs.String("model", lookup(EnvModel), "sleep model file (.yaml for linear, .onnx for onnx); bundled model if empty")
	onnxLib := fs.String("onnx-lib", lookup(EnvOnnxLib), "path to the ONNX Runtime shared library")
	printOnce := fs.Bool("print", false, "print the bedtime for -wake/-sleep/-coffee and exit")
	wake := fs.String("wake", "07:00", "wake-up time (HH:MM, 24-hour) for -print")
	sleep := fs.Float64("sleep", domain.DefaultSleepAmount, "desired hours of sleep for -print")
	coffee := fs.Int("coffee", domain.DefaultCoffee, "daily cups of coffee for -print")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	level, err := logger.ParseLevel(lookup(EnvLogLevel))
	if err != nil {
		return nil, err
	}
	if *verbose {
		level = logger.LevelVerbose
	}
	if *quiet {
		level = logger.LevelOff
	}

	cfg := &Config{
		LogLevel: level,
		LogFile:  *logFile,
		Locale:   *loc,
		Backend:  strings.ToLower(*backend),
		Model:    *model,
		OnnxLib:  *onnxLib,
		Print:    *printOnce,
		Sleep:    *sleep,
		Coffee:   *coffee,
	}

	cfg.WakeUp, err = ParseWake(*wake, time.Now(), time.Local)
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ResolvedBackend returns the backend to use, deciding "auto" from the
// model file extension.
func (c *Config) ResolvedBackend() string {
	if c.Backend != BackendAuto {
		return c.Backend
	}
	if strings.EqualFold(filepath.Ext(c.Model), ".onnx") {
		return BackendONNX
	}
	return BackendLinear
}

// Validate checks option combinations.
func (c *Config) Validate() error {
	switch c.Backend {
	case BackendAuto, BackendLinear, BackendONNX:
	default:
		return fmt.Errorf("unknown backend %q", c.Backend)
	}
	if c.ResolvedBackend() == BackendONNX && c.Model == "" {
		return errors.New("onnx backend needs -model or " + EnvModel)
	}
	if c.Print {
		if c.Sleep < domain.MinSleepHours || c.Sleep > domain.MaxSleepHours {
			return fmt.Errorf("-sleep must be between %g and %g", domain.MinSleepHours, domain.MaxSleepHours)
		}
		if c.Coffee < domain.MinCoffee || c.Coffee > domain.MaxCoffee {
			return fmt.Errorf("-coffee must be between %d and %d", domain.MinCoffee, domain.MaxCoffee)
		}
	}
	return nil
}

// ParseWake parses "HH:MM" and anchors it on now's calendar day in loc.
func ParseWake(s string, now time.Time, loc *time.Location) (time.Time, error) {
	clock, err := time.Parse("15:04", strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid wake time %q: want HH:MM", s)
	}
	now = now.In(loc)
	return time.Date(now.Year(), now.Month(), now.Day(), clock.Hour(), clock.Minute(), 0, 0, loc), nil
}
