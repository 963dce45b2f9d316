package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	httptransport "github.com/example/study-planner/internal/http"
	"github.com/example/study-planner/internal/metrics"
)

const defaultShutdownTimeout = 10 * time.Second

func newServeCommand(current func() *runtime) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the read-only JSON API and /metrics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt := current()
			if addr != "" {
				rt.cfg.HTTP.Addr = addr
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			server, err := newServer(rt)
			if err != nil {
				return err
			}
			return serve(ctx, rt, server)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address, overrides http.addr")
	return cmd
}

func newServer(rt *runtime) (*http.Server, error) {
	if err := rt.registry.Register(collectors.NewGoCollector()); err != nil {
		return nil, fmt.Errorf("register go collector: %w", err)
	}
	if err := rt.registry.Register(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{})); err != nil {
		return nil, fmt.Errorf("register process collector: %w", err)
	}
	instrument, err := metrics.NewHTTP(rt.registry)
	if err != nil {
		return nil, fmt.Errorf("register http metrics: %w", err)
	}

	router := httptransport.NewRouter(httptransport.RouterConfig{
		Planner:    httptransport.NewPlannerHandler(rt.service, rt.logger),
		Metrics:    promhttp.HandlerFor(rt.registry, promhttp.HandlerOpts{}),
		Instrument: instrument,
		Middleware: []func(http.Handler) http.Handler{
			httptransport.RequestLogger(rt.logger),
			httptransport.Recoverer(rt.logger),
			httptransport.CORS(rt.cfg.HTTP.CORSOrigins),
		},
	})

	return &http.Server{
		Addr:              rt.cfg.HTTP.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}, nil
}

// serve runs server until ctx is done, then drains it within the configured
// shutdown timeout.
func serve(ctx context.Context, rt *runtime, server *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		rt.logger.Info("planner API listening", "addr", server.Addr)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	timeout := rt.cfg.HTTP.ShutdownTimeout
	if timeout <= 0 {
		timeout = defaultShutdownTimeout
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("shutdown: %w", err)
	}
	rt.logger.Info("planner API stopped")
	return nil
}
