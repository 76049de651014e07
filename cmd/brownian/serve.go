package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aretw0/brownian"
	httpAdapter "github.com/aretw0/brownian/pkg/adapters/http"
	"github.com/aretw0/brownian/pkg/adapters/redis"
	"github.com/aretw0/brownian/pkg/observability"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve [model]",
	Short: "Serve the process over HTTP",
	Long: `Exposes the process schema, initial state and update over a JSON API, streams
updates as server-sent events on /events and publishes Prometheus metrics on /metrics.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		port, _ := cmd.Flags().GetString("port")
		lockAddr, _ := cmd.Flags().GetString("lock-redis")
		lockTTL, _ := cmd.Flags().GetDuration("lock-ttl")
		exporter, _ := cmd.Flags().GetString("trace")

		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		metrics, err := observability.NewMetrics(reg)
		if err != nil {
			return err
		}

		proc, logger, err := openProcess(cmd, args, metrics.Hooks())
		if err != nil {
			return err
		}
		defer proc.Close()

		shutdownTracing, err := observability.InitTracing(cmd.Context(), observability.TracingConfig{
			Exporter:    exporter,
			ServiceName: "brownian-" + proc.Name(),
		}, logger)
		if err != nil {
			return err
		}
		defer observability.ShutdownTracing(context.WithoutCancel(cmd.Context()), shutdownTracing, logger)

		opts := []httpAdapter.Option{
			httpAdapter.WithLogger(logger),
			httpAdapter.WithVersion(brownian.Version),
		}
		if lockAddr != "" {
			store := redis.New(lockAddr, "", 0)
			defer store.Close()
			opts = append(opts, httpAdapter.WithLocker(redis.NewLocker(store.Client(), "brownian:"), lockTTL))
		}

		r := chi.NewRouter()
		r.Use(middleware.RequestID)
		r.Use(middleware.Recoverer)
		r.Handle("/metrics", metrics.Handler())
		handler := httpAdapter.NewServer(observability.Traced(proc, nil), opts...).Routes(r)

		srv := &http.Server{
			Addr:              ":" + port,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		serverErrors := make(chan error, 1)
		go func() {
			logger.Info("serving process", "process", proc.Name(), "address", srv.Addr, "species", proc.Species())
			serverErrors <- srv.ListenAndServe()
		}()

		select {
		case err := <-serverErrors:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return err
		case <-ctx.Done():
			logger.Info("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Error("graceful shutdown did not complete", "error", err)
				return srv.Close()
			}
			logger.Info("server stopped gracefully")
			return nil
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("port", "p", "8080", "Port to listen on")
	serveCmd.Flags().String("lock-redis", "", "Redis address; when set, updates hold a distributed lock on the process name")
	serveCmd.Flags().Duration("lock-ttl", time.Minute, "Expiry of the update lock")
	serveCmd.Flags().String("trace", "none", "Span exporter for process calls: none or stdout")
}
