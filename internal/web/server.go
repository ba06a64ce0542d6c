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

// Package web serves the profile screen over HTTP. The page at / is a thin
// shell: every keystroke, page change and bar interaction is sent over a
// websocket to a per-connection screen that runs on its own event loop and
// answers with rendered HTML. Stateless JSON endpoints expose the same
// queries under /api.
package web

import (
	"context"
	_ "embed"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/sirseerhq/sirseer-profile/internal/clock"
	"github.com/sirseerhq/sirseer-profile/internal/github"
	"github.com/sirseerhq/sirseer-profile/internal/observability"
)

//go:embed static/index.html
var indexHTML []byte

const shutdownTimeout = 10 * time.Second

// Options configures a Server.
type Options struct {
	Client  github.Client
	Metrics *observability.Metrics
	Logger  *slog.Logger
	Clock   clock.Scheduler

	// AllowedOrigins lists origins allowed to call /api and open /ws.
	// "*" allows any origin.
	AllowedOrigins []string

	SearchDelay time.Duration
	SettleDelay time.Duration
	PageSize    int
}

// Server routes HTTP requests to the API handlers and live screen sessions.
type Server struct {
	ctx      context.Context
	opts     Options
	logger   *slog.Logger
	router   *gin.Engine
	upgrader websocket.Upgrader
	allowAll bool
}

// New builds a Server. ctx bounds the lifetime of every live session.
func New(ctx context.Context, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Metrics == nil {
		opts.Metrics = observability.NewMetrics()
	}
	if opts.PageSize <= 0 {
		opts.PageSize = github.PageSize
	}

	s := &Server{
		ctx:      ctx,
		opts:     opts,
		logger:   opts.Logger,
		allowAll: len(opts.AllowedOrigins) == 0 || slices.Contains(opts.AllowedOrigins, "*"),
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 4096,
		CheckOrigin:     s.checkOrigin,
	}
	s.router = s.routes()
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(s.instrument())

	r.GET("/", s.index)
	r.GET("/ws", s.serveScreen)
	r.GET("/healthz", s.health)
	r.GET("/metrics", gin.WrapH(s.opts.Metrics.Handler()))
	r.GET("/users/:login/contributions.html", s.exportContributions)

	api := r.Group("/api")
	api.Use(cors.New(s.corsConfig()))
	{
		api.GET("/users/:login/repositories", s.listRepositories)
		api.GET("/users/:login/contributions", s.listContributions)
		api.GET("/users/:login/contributions/breakdown", s.weekBreakdown)
	}
	return r
}

func (s *Server) corsConfig() cors.Config {
	cfg := cors.Config{
		AllowMethods: []string{http.MethodGet, http.MethodOptions},
		AllowHeaders: []string{"Origin", "Accept", "Content-Type"},
		MaxAge:       12 * time.Hour,
	}
	if s.allowAll {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = s.opts.AllowedOrigins
	}
	return cfg
}

// checkOrigin accepts same-host pages and configured origins.
func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" || s.allowAll || slices.Contains(s.opts.AllowedOrigins, origin) {
		return true
	}
	u, err := url.Parse(origin)
	return err == nil && strings.EqualFold(u.Host, r.Host)
}

// instrument logs and counts every request by its route template.
func (s *Server) instrument() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		d := time.Since(start)
		route := c.FullPath()
		status := c.Writer.Status()
		s.opts.Metrics.HTTPRequest(route, c.Request.Method, status, d)

		level := slog.LevelDebug
		if status >= http.StatusInternalServerError {
			level = slog.LevelWarn
		}
		s.logger.Log(c.Request.Context(), level, "http request",
			"method", c.Request.Method,
			"route", route,
			"status", status,
			"duration", d)
	}
}

func (s *Server) index(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", indexHTML)
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// ListenAndServe serves on addr until ctx is canceled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	s.logger.Info("listening", "addr", addr)

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		s.logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}
