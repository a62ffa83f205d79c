// Package config loads the settings of a tracing run from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/sarchlab/pagetrace/mem"
	"github.com/sarchlab/pagetrace/mem/cache"
	"github.com/sarchlab/pagetrace/mem/cache/hierarchy"
)

// The environment variables that are recognized.
const (
	EnvOutputPath  = "PINATRACE_OUTPUT_FILENAME"
	EnvL1Size      = "PAGETRACE_L1_SIZE"
	EnvL1LineSize  = "PAGETRACE_L1_LINE_SIZE"
	EnvL3Size      = "PAGETRACE_L3_SIZE"
	EnvL3LineSize  = "PAGETRACE_L3_LINE_SIZE"
	EnvL3Ways      = "PAGETRACE_L3_WAYS"
	EnvL3Policy    = "PAGETRACE_L3_POLICY"
	EnvPerThread   = "PAGETRACE_PER_THREAD"
	EnvSampleRate  = "PAGETRACE_SAMPLE_RATE"
	EnvSampleDB    = "PAGETRACE_SAMPLE_DB"
	EnvMonitorPort = "PAGETRACE_MONITOR_PORT"
)

// DefaultEnvFile is read by Load when no file is given. It may be absent.
const DefaultEnvFile = ".env"

// ErrMissingOutputPath is returned when no report destination is configured.
var ErrMissingOutputPath = errors.New(
	"config: " + EnvOutputPath + " is not set")

// Config is everything a tracing run needs to know.
type Config struct {
	Cache       hierarchy.Config
	OutputPath  string
	PerThread   bool
	SampleRate  float64
	SampleDB    string
	MonitorPort int
}

// Default returns a config with the default cache geometry and no output
// path.
func Default() Config {
	return Config{
		Cache: hierarchy.DefaultConfig(),
	}
}

// Load reads the env files into the environment, without overriding
// variables that are already set, and then builds the config from the
// environment. Without arguments, DefaultEnvFile is read if it exists.
func Load(envFiles ...string) (Config, error) {
	if len(envFiles) == 0 {
		err := godotenv.Load(DefaultEnvFile)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("config: %s: %w", DefaultEnvFile, err)
		}
	} else if err := godotenv.Load(envFiles...); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}

	return FromEnv()
}

// FromEnv builds the config from the environment variables.
func FromEnv() (Config, error) {
	c := Default()
	c.OutputPath = os.Getenv(EnvOutputPath)

	var err error

	parsers := []func() error{
		func() error { return lookupSize(EnvL1Size, &c.Cache.L1Size) },
		func() error { return lookupInt(EnvL1LineSize, &c.Cache.L1LineSize) },
		func() error { return lookupSize(EnvL3Size, &c.Cache.L3Size) },
		func() error { return lookupInt(EnvL3LineSize, &c.Cache.L3LineSize) },
		func() error { return lookupInt(EnvL3Ways, &c.Cache.L3Ways) },
		func() error { return lookupBool(EnvPerThread, &c.PerThread) },
		func() error { return lookupFloat(EnvSampleRate, &c.SampleRate) },
		func() error { return lookupInt(EnvMonitorPort, &c.MonitorPort) },
	}

	for _, parse := range parsers {
		if err = parse(); err != nil {
			return Config{}, err
		}
	}

	c.SampleDB = os.Getenv(EnvSampleDB)

	if policy := os.Getenv(EnvL3Policy); policy != "" {
		c.Cache.L3Policy = cache.ReplacePolicy(policy)
	}

	return c, nil
}

// Validate checks that the config can be used for a run.
func (c Config) Validate() error {
	if c.OutputPath == "" {
		return ErrMissingOutputPath
	}

	if c.SampleRate < 0 || c.SampleRate > 1 {
		return fmt.Errorf("config: sample rate %v out of [0, 1]", c.SampleRate)
	}

	if err := c.Cache.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	return nil
}

func lookupSize(key string, dst *uint64) error {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return nil
	}

	size, err := mem.ParseByteSize(value)
	if err != nil {
		return fmt.Errorf("config: %s: %w", key, err)
	}

	*dst = size

	return nil
}

func lookupInt(key string, dst *int) error {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return nil
	}

	n, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("config: %s: %w", key, err)
	}

	*dst = n

	return nil
}

func lookupBool(key string, dst *bool) error {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return nil
	}

	b, err := strconv.ParseBool(value)
	if err != nil {
		return fmt.Errorf("config: %s: %w", key, err)
	}

	*dst = b

	return nil
}

func lookupFloat(key string, dst *float64) error {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return nil
	}

	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fmt.Errorf("config: %s: %w", key, err)
	}

	*dst = f

	return nil
}
