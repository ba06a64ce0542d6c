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

// Package config types define the configuration structures used throughout
// sirseer-profile. These types represent settings that can be loaded from
// YAML configuration files, environment variables, or command-line flags.
package config

import "time"

// Config represents the complete configuration for sirseer-profile.
type Config struct {
	GitHub GitHubConfig `yaml:"github"`
	Server ServerConfig `yaml:"server"`
	Search SearchConfig `yaml:"search"`
	Cache  CacheConfig  `yaml:"cache"`
	Log    LogConfig    `yaml:"log"`
}

// GitHubConfig contains GitHub-specific settings. A custom endpoint points
// the client at a GitHub Enterprise installation.
type GitHubConfig struct {
	GraphQLEndpoint string        `yaml:"graphql_endpoint"`
	TokenEnv        string        `yaml:"token_env"`
	Timeout         time.Duration `yaml:"timeout"`
}

// ServerConfig controls the HTTP server started by the serve command.
type ServerConfig struct {
	Addr           string   `yaml:"addr"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// SearchConfig tunes the interactive screen: how long typing must pause
// before a search commits, how many repositories make a page and how long
// a bar must stay active before its breakdown is fetched.
type SearchConfig struct {
	Delay       time.Duration `yaml:"delay"`
	PageSize    int           `yaml:"page_size"`
	SettleDelay time.Duration `yaml:"settle_delay"`
}

// CacheConfig sizes the shared response cache. A zero TTL keeps the default.
type CacheConfig struct {
	Size int           `yaml:"size"`
	TTL  time.Duration `yaml:"ttl"`
}

// LogConfig selects the log level and encoding.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// DefaultConfig returns a Config with defaults suitable for public GitHub.com.
func DefaultConfig() *Config {
	return &Config{
		GitHub: GitHubConfig{
			GraphQLEndpoint: "https://api.github.com/graphql",
			TokenEnv:        "GITHUB_TOKEN",
			Timeout:         30 * time.Second,
		},
		Server: ServerConfig{
			Addr:           ":8080",
			AllowedOrigins: []string{"*"},
		},
		Search: SearchConfig{
			Delay:       500 * time.Millisecond,
			PageSize:    10,
			SettleDelay: 100 * time.Millisecond,
		},
		Cache: CacheConfig{
			Size: 512,
			TTL:  5 * time.Minute,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}
