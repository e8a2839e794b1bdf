package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/etnz/allocation/market"
	"github.com/etnz/allocation/renderer"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/subcommands"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type serveCmd struct {
	addr    string
	refresh int
}

func (*serveCmd) Name() string     { return "serve" }
func (*serveCmd) Synopsis() string { return "serve the dashboard over HTTP" }
func (*serveCmd) Usage() string {
	return `alloc serve [-addr <host:port>] [-refresh <seconds>]

  Serves the dashboard as a web page that reloads itself, and the report as
  JSON on /api/report.

  Routes:
    GET /             the dashboard
    GET /api/report   the report, as JSON
    GET /health       liveness
`
}

func (c *serveCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.addr, "addr", "localhost:8080", "address to listen on")
	f.IntVar(&c.refresh, "refresh", 300, "page reload period in seconds, 0 disables it")
}

func (c *serveCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	provider, err := openProvider()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	srv := &http.Server{
		Addr:         c.addr,
		Handler:      newRouter(provider, c.refresh, log.Logger),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdown); err != nil {
			log.Error().Err(err).Msg("shutdown")
		}
	}()

	log.Info().Str("addr", c.addr).Msg("serving the dashboard")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

// newRouter routes the dashboard, valued with prices from provider.
func newRouter(provider market.Provider, refresh int, logger zerolog.Logger) http.Handler {
	logger = logger.With().Str("component", "server").Logger()
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(loggingMiddleware(logger))
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"status":"ok"}`)
	})

	r.Get("/api/report", func(w http.ResponseWriter, req *http.Request) {
		report, err := Evaluate(req.Context(), provider)
		if err != nil {
			logger.Error().Err(err).Msg("evaluate")
			http.Error(w, err.Error(), http.StatusBadGateway)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(report); err != nil {
			logger.Error().Err(err).Msg("encode report")
		}
	})

	r.Get("/", func(w http.ResponseWriter, req *http.Request) {
		report, err := Evaluate(req.Context(), provider)
		if err != nil {
			logger.Error().Err(err).Msg("evaluate")
			http.Error(w, err.Error(), http.StatusBadGateway)
			return
		}
		body, err := renderer.HTML(renderer.Markdown(renderer.NewDashboard(report)))
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, renderer.Page("Allocation", body, refresh))
	})
	return r
}

// loggingMiddleware logs HTTP requests
func loggingMiddleware(logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			logger.Debug().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.Status()).
				Int("bytes", ww.BytesWritten()).
				Dur("duration_ms", time.Since(start)).
				Str("request_id", middleware.GetReqID(r.Context())).
				Msg("HTTP request")
		})
	}
}
