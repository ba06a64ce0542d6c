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

package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sirseerhq/sirseer-profile/internal/config"
	profileerrors "github.com/sirseerhq/sirseer-profile/internal/errors"
	"github.com/sirseerhq/sirseer-profile/internal/github"
	"github.com/sirseerhq/sirseer-profile/internal/observability"
	"github.com/sirseerhq/sirseer-profile/pkg/version"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(mapErrorToExitCode(err))
	}
}

// globalOptions are the flags shared by every subcommand.
type globalOptions struct {
	configPath string
	token      string
}

func newRootCommand() *cobra.Command {
	opts := &globalOptions{}
	rootCmd := &cobra.Command{
		Use:   "sirseer-profile",
		Short: "Browse GitHub user profiles, repositories and contributions",
		Long: `SirSeer Profile looks up a GitHub user and shows their public repositories
and contribution history. Run "serve" for the interactive search screen, or
use "repos" and "contributions" to print the same data from the terminal.`,
		Version:       version.String(),
		SilenceUsage:  true, // Don't show usage on error
		SilenceErrors: true, // We'll handle error printing ourselves
	}

	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "Config file path (default: .sirseer-profile.yaml or ~/.sirseer/profile.yaml)")
	rootCmd.PersistentFlags().StringVar(&opts.token, "token", "", "GitHub personal access token (overrides the token environment variable)")

	rootCmd.AddCommand(
		newServeCommand(opts),
		newReposCommand(opts),
		newContributionsCommand(opts),
	)
	return rootCmd
}

// environment is the loaded configuration shared by the subcommands.
type environment struct {
	cfg    *config.Config
	logger *slog.Logger
	token  string
}

// loadEnvironment reads .env, the config file and environment overrides,
// then builds the logger. The token is resolved but not required.
func loadEnvironment(opts *globalOptions, logOutput io.Writer) (*environment, error) {
	if err := config.LoadDotEnv(); err != nil {
		return nil, err
	}
	cfg, err := config.LoadConfig(opts.configPath)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	level, err := observability.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, err
	}
	logger, err := observability.NewLogger(logOutput, observability.LogConfig{
		Level:   level,
		Format:  cfg.Log.Format,
		Version: version.String(),
	})
	if err != nil {
		return nil, err
	}

	return &environment{
		cfg:    cfg,
		logger: logger,
		token:  resolveToken(opts.token, cfg),
	}, nil
}

// resolveToken returns the GitHub token from flag or the configured
// environment variable.
func resolveToken(flagToken string, cfg *config.Config) string {
	if t := strings.TrimSpace(flagToken); t != "" {
		return t
	}
	return cfg.Token()
}

// newClient builds the GitHub client. retries > 0 wraps it with backoff.
func (e *environment) newClient(retries int) (github.Client, error) {
	if e.token == "" {
		return nil, fmt.Errorf("GitHub token not found. Set %s or use --token flag", e.cfg.GitHub.TokenEnv)
	}
	httpClient := github.NewHTTPClient(e.token, e.cfg.GitHub.Timeout)
	var client github.Client = github.NewGraphQLClientWithHTTP(e.cfg.GitHub.GraphQLEndpoint, httpClient)
	if retries > 0 {
		retryConfig := github.DefaultRetryConfig()
		retryConfig.MaxRetries = retries
		client = github.NewRetryClient(client, retryConfig, e.logger)
	}
	return client, nil
}

// mapErrorToExitCode maps internal errors to appropriate exit codes
func mapErrorToExitCode(err error) int {
	if err == nil {
		return 0
	}

	if errors.Is(err, profileerrors.ErrInvalidToken) ||
		errors.Is(err, profileerrors.ErrUserNotFound) ||
		errors.Is(err, profileerrors.ErrRateLimit) {
		return 2 // Authentication, lookup and quota errors
	}

	if errors.Is(err, profileerrors.ErrNetworkFailure) {
		return 3 // Network errors
	}

	return 1 // General error
}
