package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
	"github.com/urfave/cli/v3"
)

var errUnsupportedFormat = errors.New("unsupported config format")

// runConfig describes one demo run. Values come from defaults, then an
// optional YAML/JSON file, then explicitly set flags.
type runConfig struct {
	Workers    int           `koanf:"workers"`
	Jobs       int           `koanf:"jobs"`
	Submitters int           `koanf:"submitters"`
	MinWork    time.Duration `koanf:"min_work"`
	MaxWork    time.Duration `koanf:"max_work"`
	PanicEvery int           `koanf:"panic_every"`
	Rate       float64       `koanf:"rate"`
	Burst      int           `koanf:"burst"`
	Affinity   bool          `koanf:"affinity"`
	LogLevel   string        `koanf:"log_level"`
	LogFile    string        `koanf:"log_file"`
	Plain      bool          `koanf:"plain"`
}

func defaultRunConfig() runConfig {
	return runConfig{
		Workers:    min(runtime.NumCPU(), 8),
		Jobs:       200,
		Submitters: 1,
		MinWork:    5 * time.Millisecond,
		MaxWork:    20 * time.Millisecond,
		Burst:      1,
		LogLevel:   "warn",
	}
}

// loadConfigFile overlays the file at path onto cfg. The format follows the
// file extension.
func loadConfigFile(cfg *runConfig, path string) error {
	var parser koanf.Parser
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		return fmt.Errorf("%w: %s", errUnsupportedFormat, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}

	k := koanf.New(".")
	if err := k.Load(rawbytes.Provider(data), parser); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return fmt.Errorf("decode config %s: %w", path, err)
	}
	return nil
}

// applyFlags overrides cfg with every flag the user set explicitly.
func applyFlags(cfg *runConfig, cmd *cli.Command) {
	if cmd.IsSet("workers") {
		cfg.Workers = cmd.Int("workers")
	}
	if cmd.IsSet("jobs") {
		cfg.Jobs = cmd.Int("jobs")
	}
	if cmd.IsSet("submitters") {
		cfg.Submitters = cmd.Int("submitters")
	}
	if cmd.IsSet("min-work") {
		cfg.MinWork = cmd.Duration("min-work")
	}
	if cmd.IsSet("max-work") {
		cfg.MaxWork = cmd.Duration("max-work")
	}
	if cmd.IsSet("panic-every") {
		cfg.PanicEvery = cmd.Int("panic-every")
	}
	if cmd.IsSet("rate") {
		cfg.Rate = cmd.Float("rate")
	}
	if cmd.IsSet("burst") {
		cfg.Burst = cmd.Int("burst")
	}
	if cmd.IsSet("affinity") {
		cfg.Affinity = cmd.Bool("affinity")
	}
	if cmd.IsSet("log-level") {
		cfg.LogLevel = cmd.String("log-level")
	}
	if cmd.IsSet("log-file") {
		cfg.LogFile = cmd.String("log-file")
	}
	if cmd.IsSet("plain") {
		cfg.Plain = cmd.Bool("plain")
	}
}

// validate checks the settings the pool itself does not. The worker count
// is left to pool.New so its error reaches the user unchanged.
func (c runConfig) validate() error {
	switch {
	case c.Jobs < 0:
		return fmt.Errorf("jobs must not be negative, got %d", c.Jobs)
	case c.Submitters < 1:
		return fmt.Errorf("submitters must be at least 1, got %d", c.Submitters)
	case c.MinWork < 0 || c.MaxWork < c.MinWork:
		return fmt.Errorf("work range [%v, %v] is invalid", c.MinWork, c.MaxWork)
	case c.PanicEvery < 0:
		return fmt.Errorf("panic-every must not be negative, got %d", c.PanicEvery)
	case c.Rate < 0:
		return fmt.Errorf("rate must not be negative, got %v", c.Rate)
	case c.Rate > 0 && c.Burst < 1:
		return fmt.Errorf("burst must be at least 1 when rate is set, got %d", c.Burst)
	}
	return nil
}
