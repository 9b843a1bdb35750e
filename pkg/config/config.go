// Package config handles NativeRT configuration via YAML files and
// environment variables.
//
// Configuration Precedence (highest to lowest):
//  1. Command-line flags (--threads, --memory-limit, ...)
//  2. Environment variables (NATIVERT_*)
//  3. Config file (nativert.yaml)
//  4. Built-in defaults
//
// Example Usage:
//
//	cfg, err := config.LoadFromFile(config.FindConfigFile())
//	if err != nil {
//		log.Fatalf("invalid config: %v", err)
//	}
//	fmt.Printf("executors: %d, memory limit: %s\n",
//		cfg.Executor.NumExecutors, cfg.Memory.Limit)
//
// Environment Variables (all use the NATIVERT_ prefix):
//
// Executor:
//   - NATIVERT_NUM_EXECUTORS=1
//   - NATIVERT_THREADS_PER_EXECUTOR=0   (0 = hardware concurrency)
//
// Memory:
//   - NATIVERT_MEMORY_LIMIT="1GB"       ("0" or "unlimited" disables the ceiling)
//   - NATIVERT_POOL_CAPACITY=100
//
// SIMD:
//   - NATIVERT_NO_SIMD=false            (true forces the scalar path)
//
// Logging:
//   - NATIVERT_LOG_LEVEL="INFO"
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds all NativeRT configuration.
type Config struct {
	Executor ExecutorConfig `yaml:"executor"`
	Memory   MemoryConfig   `yaml:"memory"`
	SIMD     SIMDConfig     `yaml:"simd"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// ExecutorConfig sizes the task-execution layer.
type ExecutorConfig struct {
	// NumExecutors is how many independent worker pools the scheduler
	// round-robins across.
	NumExecutors int `yaml:"num_executors"`

	// ThreadsPerExecutor is the worker count per pool; 0 or below
	// resolves to hardware concurrency divided across the pools.
	ThreadsPerExecutor int `yaml:"threads_per_executor"`
}

// MemoryConfig sizes the tracked allocator.
type MemoryConfig struct {
	// Limit is the allocation ceiling as a human-readable size
	// ("1GB", "512MB"). "0" or "unlimited" disables the ceiling.
	Limit string `yaml:"limit"`

	// PoolCapacity is the configured capacity of each size-class pool;
	// free lists may hold up to twice this.
	PoolCapacity int `yaml:"pool_capacity"`
}

// SIMDConfig controls the dispatch layer.
type SIMDConfig struct {
	// Disable forces the scalar code path regardless of detected CPU
	// capabilities. Output is unchanged; only throughput differs.
	Disable bool `yaml:"disable"`
}

// LoggingConfig controls runtime logging.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// DefaultConfig returns the built-in defaults: one executor sized to the
// hardware, a 1GB memory ceiling, SIMD enabled.
func DefaultConfig() *Config {
	return &Config{
		Executor: ExecutorConfig{
			NumExecutors:       1,
			ThreadsPerExecutor: 0,
		},
		Memory: MemoryConfig{
			Limit:        "1GB",
			PoolCapacity: 100,
		},
		SIMD:    SIMDConfig{Disable: false},
		Logging: LoggingConfig{Level: "INFO"},
	}
}

// LoadFromEnv returns the defaults with NATIVERT_* environment variables
// applied on top.
func LoadFromEnv() *Config {
	cfg := DefaultConfig()
	applyEnvVars(cfg)
	return cfg
}

// LoadFromFile reads a YAML config file, then applies environment
// variables on top (env wins over file). An empty path skips the file
// and behaves like LoadFromEnv.
func LoadFromFile(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	applyEnvVars(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// FindConfigFile looks for nativert.yaml in the conventional locations
// and returns the first that exists, or "" when none does.
func FindConfigFile() string {
	candidates := []string{
		"nativert.yaml",
		"nativert.yml",
		"config/nativert.yaml",
	}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, home+"/.nativert/nativert.yaml")
	}
	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

func applyEnvVars(cfg *Config) {
	cfg.Executor.NumExecutors = GetEnvInt("NATIVERT_NUM_EXECUTORS", cfg.Executor.NumExecutors)
	cfg.Executor.ThreadsPerExecutor = GetEnvInt("NATIVERT_THREADS_PER_EXECUTOR", cfg.Executor.ThreadsPerExecutor)
	cfg.Memory.Limit = GetEnv("NATIVERT_MEMORY_LIMIT", cfg.Memory.Limit)
	cfg.Memory.PoolCapacity = GetEnvInt("NATIVERT_POOL_CAPACITY", cfg.Memory.PoolCapacity)
	cfg.SIMD.Disable = GetEnvBool("NATIVERT_NO_SIMD", cfg.SIMD.Disable)
	cfg.Logging.Level = GetEnv("NATIVERT_LOG_LEVEL", cfg.Logging.Level)
}

// Validate checks the configuration for values the runtime cannot start
// with.
func (c *Config) Validate() error {
	if c.Executor.NumExecutors < 1 {
		return fmt.Errorf("num_executors must be at least 1, got %d", c.Executor.NumExecutors)
	}
	if _, err := ParseMemorySize(c.Memory.Limit); err != nil {
		return fmt.Errorf("invalid memory limit %q: %w", c.Memory.Limit, err)
	}
	if c.Memory.PoolCapacity < 0 {
		return fmt.Errorf("pool_capacity must not be negative, got %d", c.Memory.PoolCapacity)
	}
	switch strings.ToUpper(c.Logging.Level) {
	case "", "DEBUG", "INFO", "WARN", "ERROR":
	default:
		return fmt.Errorf("unknown log level %q", c.Logging.Level)
	}
	return nil
}

// MemoryLimitBytes returns the parsed allocation ceiling in bytes, zero
// meaning unlimited. Validate guarantees this cannot fail on a loaded
// config.
func (c *Config) MemoryLimitBytes() int64 {
	n, _ := ParseMemorySize(c.Memory.Limit)
	return n
}

// String returns a representation suitable for logging.
func (c *Config) String() string {
	return fmt.Sprintf(
		"Config{Executors: %d x %d threads, MemoryLimit: %s, SIMD: %v, LogLevel: %s}",
		c.Executor.NumExecutors, c.Executor.ThreadsPerExecutor,
		c.Memory.Limit, !c.SIMD.Disable, c.Logging.Level,
	)
}

// ParseMemorySize parses a human-readable memory size string.
// Supports: "1024", "1KB", "1MB", "1GB", "1TB", "0", "unlimited".
func ParseMemorySize(s string) (int64, error) {
	s = strings.TrimSpace(strings.ToUpper(s))
	if s == "" || s == "0" || s == "UNLIMITED" {
		return 0, nil
	}

	s = strings.TrimSuffix(s, "B")

	var multiplier int64 = 1
	switch {
	case strings.HasSuffix(s, "K"):
		multiplier = 1024
		s = strings.TrimSuffix(s, "K")
	case strings.HasSuffix(s, "M"):
		multiplier = 1024 * 1024
		s = strings.TrimSuffix(s, "M")
	case strings.HasSuffix(s, "G"):
		multiplier = 1024 * 1024 * 1024
		s = strings.TrimSuffix(s, "G")
	case strings.HasSuffix(s, "T"):
		multiplier = 1024 * 1024 * 1024 * 1024
		s = strings.TrimSuffix(s, "T")
	}

	val, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("not a size: %w", err)
	}
	if val < 0 {
		return 0, fmt.Errorf("size must not be negative")
	}
	return val * multiplier, nil
}

// GetEnv returns the value of key, or defaultVal when the variable is
// unset. A variable set to the empty string is returned as is; callers
// that also read NATIVERT_* variables share these helpers so the two
// layers agree on that.
func GetEnv(key, defaultVal string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return defaultVal
}

// GetEnvInt is GetEnv for integers; unparsable values fall back to
// defaultVal.
func GetEnvInt(key string, defaultVal int) int {
	if v, ok := os.LookupEnv(key); ok {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return defaultVal
}

// GetEnvBool is GetEnv for booleans; unparsable values fall back to
// defaultVal.
func GetEnvBool(key string, defaultVal bool) bool {
	if v, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return defaultVal
}
