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
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/sirseerhq/sirseer-profile/internal/github"
	"github.com/sirseerhq/sirseer-profile/internal/observability"
	"github.com/sirseerhq/sirseer-profile/internal/web"
)

func newServeCommand(opts *globalOptions) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the interactive profile search screen",
		Long: `Serve the profile search screen, its JSON API and Prometheus metrics.

Open the server address in a browser and type a GitHub username. The search
is mirrored to the "user" query parameter, so result pages can be shared.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := loadEnvironment(opts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			if addr != "" {
				env.cfg.Server.Addr = addr
			}

			// The screen never retries; failures are shown to the user.
			base, err := env.newClient(0)
			if err != nil {
				return err
			}
			metrics := observability.NewMetrics()
			client := github.NewCachingClient(base, github.CacheOptions{
				Size:     env.cfg.Cache.Size,
				TTL:      env.cfg.Cache.TTL,
				Recorder: metrics,
			})

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			gin.SetMode(gin.ReleaseMode)
			srv := web.New(ctx, web.Options{
				Client:         client,
				Metrics:        metrics,
				Logger:         env.logger,
				AllowedOrigins: env.cfg.Server.AllowedOrigins,
				SearchDelay:    env.cfg.Search.Delay,
				SettleDelay:    env.cfg.Search.SettleDelay,
				PageSize:       env.cfg.Search.PageSize,
			})
			return srv.ListenAndServe(ctx, env.cfg.Server.Addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (overrides server.addr)")
	return cmd
}
