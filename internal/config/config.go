// Copyright 2025 SirSeer, LLC
//
// Licensed under the Business Source License 1.1 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://mariadb.com/bsl11
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package config provides configuration management for sirseer-profile with
// support for multiple configuration sources and a well-defined precedence
// order.
//
// Configuration sources (in precedence order, highest to lowest):
//  1. Command-line flags
//  2. Environment variables (including a .env file)
//  3. Configuration file
//  4. Built-in defaults
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// LoadConfig loads configuration from multiple sources and applies them in
// the correct precedence order. If configPath is provided, it loads from
// that specific file. Otherwise, it searches standard locations:
//   - .sirseer-profile.yaml (current directory)
//   - .sirseer-profile.yml (current directory)
//   - ~/.sirseer/profile.yaml
//   - ~/.sirseer/profile.yml
//
// Environment variables are applied after loading the config file, allowing
// runtime overrides.
//
// Returns an error if the specified config file cannot be loaded, but will
// succeed with defaults if no config file is found in standard locations.
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	if configPath != "" {
		if err := loadConfigFile(configPath, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	} else {
		home := homeDir()
		defaultPaths := []string{
			".sirseer-profile.yaml",
			".sirseer-profile.yml",
			filepath.Join(home, ".sirseer", "profile.yaml"),
			filepath.Join(home, ".sirseer", "profile.yml"),
		}

		for _, path := range defaultPaths {
			if _, err := os.Stat(path); err == nil {
				if err := loadConfigFile(path, cfg); err != nil {
					return nil, fmt.Errorf("failed to load config from %s: %w", path, err)
				}
				break
			}
		}
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadDotEnv loads variables from the given .env files into the process
// environment. Missing files are skipped and variables that are already set
// keep their value. With no paths, ".env" in the current directory is used.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, path := range paths {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			return fmt.Errorf("failed to load %s: %w", path, err)
		}
	}
	return nil
}

// loadConfigFile reads and parses a YAML config file
func loadConfigFile(path string, cfg *Config) error {
	data, err := os.ReadFile(expandPath(path))
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(cfg *Config) error {
	if endpoint := os.Getenv("GITHUB_GRAPHQL_ENDPOINT"); endpoint != "" {
		cfg.GitHub.GraphQLEndpoint = endpoint
	}

	if addr := os.Getenv("SIRSEER_PROFILE_ADDR"); addr != "" {
		cfg.Server.Addr = addr
	}
	if origins := os.Getenv("SIRSEER_PROFILE_ALLOWED_ORIGINS"); origins != "" {
		cfg.Server.AllowedOrigins = splitList(origins)
	}

	durations := []struct {
		env string
		dst *time.Duration
	}{
		{"SIRSEER_PROFILE_TIMEOUT", &cfg.GitHub.Timeout},
		{"SIRSEER_PROFILE_SEARCH_DELAY", &cfg.Search.Delay},
		{"SIRSEER_PROFILE_SETTLE_DELAY", &cfg.Search.SettleDelay},
		{"SIRSEER_PROFILE_CACHE_TTL", &cfg.Cache.TTL},
	}
	for _, d := range durations {
		v := os.Getenv(d.env)
		if v == "" {
			continue
		}
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", d.env, err)
		}
		*d.dst = parsed
	}

	if pageSize := os.Getenv("SIRSEER_PROFILE_PAGE_SIZE"); pageSize != "" {
		if size, err := parsePositiveInt(pageSize); err == nil {
			cfg.Search.PageSize = size
		}
	}
	if cacheSize := os.Getenv("SIRSEER_PROFILE_CACHE_SIZE"); cacheSize != "" {
		if size, err := parsePositiveInt(cacheSize); err == nil {
			cfg.Cache.Size = size
		}
	}

	if level := os.Getenv("SIRSEER_PROFILE_LOG_LEVEL"); level != "" {
		cfg.Log.Level = level
	}
	if format := os.Getenv("SIRSEER_PROFILE_LOG_FORMAT"); format != "" {
		cfg.Log.Format = format
	}
	return nil
}

// Token returns the GitHub token from the configured environment variable.
func (c *Config) Token() string {
	return strings.TrimSpace(os.Getenv(c.GitHub.TokenEnv))
}

func homeDir() string {
	home := os.Getenv("HOME")
	if home == "" {
		home = os.Getenv("USERPROFILE") // Windows
	}
	return home
}

// expandPath expands ~ and environment variables in paths
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		path = filepath.Join(homeDir(), path[2:])
	}
	return os.ExpandEnv(path)
}

// parsePositiveInt parses a string to a positive integer
func parsePositiveInt(s string) (int, error) {
	var i int
	_, err := fmt.Sscanf(s, "%d", &i)
	if err != nil {
		return 0, fmt.Errorf("failed to parse integer from '%s': %w", s, err)
	}
	if i <= 0 {
		return 0, fmt.Errorf("value must be positive, got: %d", i)
	}
	return i, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Validate checks if the configuration contains valid values. This should
// be called after loading configuration to catch invalid settings early.
func (c *Config) Validate() error {
	if c.GitHub.GraphQLEndpoint == "" {
		return fmt.Errorf("GitHub GraphQL endpoint cannot be empty")
	}
	if c.GitHub.TokenEnv == "" {
		return fmt.Errorf("token environment variable name cannot be empty")
	}
	if c.Search.PageSize <= 0 {
		return fmt.Errorf("page size must be positive, got: %d", c.Search.PageSize)
	}
	if c.Search.PageSize > 100 {
		return fmt.Errorf("page size %d exceeds GitHub API limit of 100", c.Search.PageSize)
	}
	if c.Search.Delay <= 0 {
		return fmt.Errorf("search delay must be positive, got: %s", c.Search.Delay)
	}
	if c.Search.SettleDelay <= 0 {
		return fmt.Errorf("settle delay must be positive, got: %s", c.Search.SettleDelay)
	}
	if c.Cache.Size < 0 {
		return fmt.Errorf("cache size cannot be negative, got: %d", c.Cache.Size)
	}
	if c.Server.Addr == "" {
		return fmt.Errorf("server address cannot be empty")
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return fmt.Errorf("invalid log level %q: use debug, info, warn or error", c.Log.Level)
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("invalid log format %q: use text or json", c.Log.Format)
	}
	return nil
}
