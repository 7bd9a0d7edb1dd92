package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"fmiweather/internal/config"
	"fmiweather/internal/logging"
	"fmiweather/internal/weather"
	"fmiweather/pkg/fmi"
	"fmiweather/pkg/fmi/query"
)

// Build metadata - injected at build time
var (
	BuildDate    = "unknown"
	BuildCommit  = "unknown"
	BuildVersion = "dev"
)

var (
	once     = flag.Bool("once", false, "Print one lookup as JSON and exit instead of serving")
	place    = flag.String("place", "", "Place name for -once")
	lat      = flag.Float64("lat", 0, "Latitude for -once")
	lon      = flag.Float64("lon", 0, "Longitude for -once")
	forecast = flag.Bool("forecast", false, "Look up the forecast instead of current weather with -once")
	multi    = flag.Bool("multi", false, "Merge nearby stations with -once")
)

func main() {
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(os.Stderr, *cfg, BuildVersion)
	slog.SetDefault(logger)

	metrics := fmi.NewMetrics(prometheus.DefaultRegisterer)
	client := newClient(*cfg, logger, metrics)
	mgr := weather.NewManager(client, logger)

	if *once {
		if err := runOnce(context.Background(), os.Stdout, mgr, onceLocation()); err != nil {
			logger.Error("Lookup failed", "error", err)
			os.Exit(1)
		}
		return
	}

	if err := serve(cfg, logger, mgr); err != nil {
		logger.Error("Server failed", "error", err)
		os.Exit(1)
	}
}

func newClient(cfg config.Config, logger *slog.Logger, metrics *fmi.Metrics) *fmi.Client {
	return fmi.NewClient(
		fmi.WithBaseURL(cfg.FMIBaseURL),
		fmi.WithHTTPClient(&http.Client{Timeout: cfg.FMITimeout}),
		fmi.WithBuilder(query.NewBuilder(query.WithForecastSteps(cfg.ForecastTimestep, cfg.ForecastPoints))),
		fmi.WithBreaker(fmi.BreakerSettings{
			MaxFailures: cfg.BreakerMaxFailures,
			OpenTimeout: cfg.BreakerOpenTimeout,
		}),
		fmi.WithMetrics(metrics),
		fmi.WithLogger(logger),
	)
}

func onceLocation() weather.Location {
	if *place != "" {
		return weather.Location{Place: *place}
	}
	return weather.Location{Lat: lat, Lon: lon, Multi: *multi}
}

// runOnce performs a single lookup and writes it to w as indented JSON
func runOnce(ctx context.Context, w io.Writer, mgr weather.Manager, loc weather.Location) error {
	var (
		result any
		err    error
	)
	if *forecast {
		result, err = mgr.Forecast(ctx, loc)
	} else {
		result, err = mgr.Current(ctx, loc)
	}
	if err != nil {
		return err
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

func newMux(mgr weather.Manager, logger *slog.Logger) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", handleHealth(mgr))
	mux.Handle("GET /metrics", promhttp.Handler())
	weather.RegisterHandlers(mux, mgr, logger)
	return mux
}

func serve(cfg *config.Config, logger *slog.Logger, mgr weather.Manager) error {
	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           newMux(mgr, logger),
		ReadHeaderTimeout: 5 * time.Second,
	}

	// Handle graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		logger.Info("Shutting down")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("Shutdown failed", "error", err)
		}
	}()

	logger.Info("Server starting", "addr", cfg.HTTPAddr, "version", BuildVersion, "commit", BuildCommit, "date", BuildDate)
	if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func handleHealth(mgr weather.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		stats := mgr.Stats()
		fmt.Fprintf(w, `{
    "status": "ok",
    "lookups": %d,
    "success_rate": %.2f,
    "build": {
        "version": "%s",
        "commit": "%s",
        "date": "%s"
    }
}`, stats.TotalLookups, stats.SuccessRate, BuildVersion, BuildCommit, BuildDate)
	}
}
