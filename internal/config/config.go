// Package config loads pipeline configuration (spec §6: W, T_learn, T_std,
// k_CL, ignore_values, det_strategy) from an optional TOML file, with
// environment variable overrides. There are no CLI flag overrides.
//
// Grounded on cmd/tqserver/main.go's flag > env > default precedence; the
// TOML file layer itself is grounded on the pack's use of
// github.com/BurntSushi/toml.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

const (
	EnvWorkers      = "PRINS_WORKERS"
	EnvLearnTimeout = "PRINS_T_LEARN"
	EnvStdTimeout   = "PRINS_T_STD"
	EnvKCL          = "PRINS_K_CL"
	EnvIgnoreValues = "PRINS_IGNORE_VALUES"
	EnvStrategy     = "PRINS_DET_STRATEGY"
)

// Config is the file-serializable form of pipeline.Options (spec §6).
// Durations are given in seconds to keep the TOML file plain.
type Config struct {
	Workers       int    `toml:"workers"`
	TLearnSeconds int    `toml:"t_learn_seconds"`
	TStdSeconds   int    `toml:"t_std_seconds"`
	KCL           int    `toml:"k_cl"`
	IgnoreValues  bool   `toml:"ignore_values"`
	DetStrategy   string `toml:"det_strategy"`
}

// Default returns the spec's documented defaults (§6): W=4, T_std=1800s,
// k_CL=2, standard determinization, values considered.
func Default() Config {
	return Config{
		Workers:     4,
		TStdSeconds: 1800,
		KCL:         2,
		DetStrategy: "standard",
	}
}

// Load reads path as TOML, falling back to Default() field-by-field for
// anything the file omits (toml.Decode leaves Go zero values for absent
// keys, so Default() is applied first and the file is decoded over it).
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: reading %q: %w", path, err)
	}
	return cfg, nil
}

// ApplyEnv overrides cfg's fields with any of the PRINS_* environment
// variables that are set, per cmd/tqserver's env-as-fallback convention.
func (c Config) ApplyEnv() (Config, error) {
	if v := os.Getenv(EnvWorkers); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("config: %s: %w", EnvWorkers, err)
		}
		c.Workers = n
	}
	if v := os.Getenv(EnvLearnTimeout); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("config: %s: %w", EnvLearnTimeout, err)
		}
		c.TLearnSeconds = n
	}
	if v := os.Getenv(EnvStdTimeout); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("config: %s: %w", EnvStdTimeout, err)
		}
		c.TStdSeconds = n
	}
	if v := os.Getenv(EnvKCL); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("config: %s: %w", EnvKCL, err)
		}
		c.KCL = n
	}
	if v := os.Getenv(EnvIgnoreValues); v != "" {
		c.IgnoreValues = strings.EqualFold(v, "true") || v == "1"
	}
	if v := os.Getenv(EnvStrategy); v != "" {
		c.DetStrategy = v
	}
	return c, nil
}

// LearnTimeout returns TLearnSeconds as a time.Duration (0 means no limit).
func (c Config) LearnTimeout() time.Duration {
	return time.Duration(c.TLearnSeconds) * time.Second
}

// StdTimeout returns TStdSeconds as a time.Duration (0 means no limit).
func (c Config) StdTimeout() time.Duration {
	return time.Duration(c.TStdSeconds) * time.Second
}

// ParseStrategy splits a det_strategy string ("standard", "heuristic", or
// "hybrid-<k>") into a strategy name and, for hybrid, its k value.
func ParseStrategy(s string) (name string, k int, err error) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch {
	case s == "" || s == "standard":
		return "standard", 0, nil
	case s == "heuristic":
		return "heuristic", 0, nil
	case strings.HasPrefix(s, "hybrid-"):
		kStr := strings.TrimPrefix(s, "hybrid-")
		if kStr == "inf" || kStr == "infinity" {
			return "hybrid", -1, nil
		}
		n, err := strconv.Atoi(kStr)
		if err != nil {
			return "", 0, fmt.Errorf("config: invalid hybrid-k value %q: %w", kStr, err)
		}
		return "hybrid", n, nil
	default:
		return "", 0, fmt.Errorf("config: unrecognized det_strategy %q", s)
	}
}
