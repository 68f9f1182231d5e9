// Command designstub serves the design service routes from memory for
// offline dry runs.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"golang.org/x/time/rate"

	"Roofline/internal/calc/roof"
	"Roofline/internal/designstub"
)

var CLI struct {
	Addr    string  `default:":8080" help:"Listen address"`
	RPS     float64 `name:"rps" default:"20" help:"Requests per second allowed per client IP; 0 disables limiting"`
	Burst   int     `default:"10" help:"Burst size per client IP"`
	Epsilon float64 `default:"1e-6" help:"Vertex coincidence tolerance in inches"`
	Verbose bool    `short:"v" help:"Enable verbose logging"`
}

func main() {
	kong.Parse(&CLI, kong.Name("designstub"))

	level := slog.LevelInfo
	if CLI.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	eps := CLI.Epsilon
	if eps <= 0 {
		eps = roof.DefaultEpsilon
	}
	opts := []designstub.Option{
		designstub.WithLogger(logger),
		designstub.WithEpsilon(eps),
		designstub.WithCallHistory(0),
	}
	if CLI.RPS > 0 {
		opts = append(opts, designstub.WithRateLimit(rate.Limit(CLI.RPS), CLI.Burst))
	}
	stub := designstub.New(opts...)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	server := &http.Server{
		Addr:              CLI.Addr,
		Handler:           stub.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server error", "error", err)
			cancel()
		}
	}()
	slog.Info("Design stub listening", "addr", CLI.Addr)

	<-ctx.Done()
	slog.Info("Shutdown signal received, closing active connections")

	shutdownCtx, stop := context.WithTimeout(context.Background(), 5*time.Second)
	defer stop()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("Shutdown failed", "error", err)
		os.Exit(1)
	}
	<-done
	slog.Info("Server stopped", "requests", stub.Requests())
}
