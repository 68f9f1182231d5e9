package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"golang.org/x/time/rate"

	"Roofline/internal/auth"
	"Roofline/internal/calc/report"
	"Roofline/internal/config"
	"Roofline/internal/designapi"
	apperrors "Roofline/internal/errors"
	"Roofline/internal/metrics"
	"Roofline/internal/pipeline"
)

type CLI struct {
	Config  string `short:"c" help:"Configuration file path; built-in defaults when empty"`
	Verbose bool   `short:"v" help:"Enable verbose logging"`

	Plan    PlanCmd    `cmd:"" help:"Lay out the building and validate it without submitting"`
	Submit  SubmitCmd  `cmd:"" help:"Submit the building to the design service"`
	Profile ProfileCmd `cmd:"" help:"Design a single common truss from its chord profile"`
	Import  ImportCmd  `cmd:"" help:"Plan or submit every building listed in an .xlsx sheet"`
}

// AfterApply sets up logging once flags are parsed.
func (c *CLI) AfterApply() error {
	level := slog.LevelInfo
	if c.Verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	return nil
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("roofline"),
		kong.Description("Lays out gable and cross-gable roofs and submits them for truss design."),
	)
	if err := ctx.Run(&cli); err != nil {
		slog.Error("Command failed",
			"error", err,
			"category", apperrors.GetCategory(err),
			"sent", apperrors.Sent(err))
		os.Exit(1)
	}
}

// signalContext is cancelled on SIGINT or SIGTERM. Runs carry their own
// deadline.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func newClient(cfg *config.Config, rec metrics.Recorder) (*designapi.Client, error) {
	if err := auth.CheckExpiry(cfg.Service.Token, time.Now()); err != nil {
		return nil, err
	}
	c := designapi.NewClient(cfg.Service.BaseURL, cfg.Service.Token)
	if cfg.Service.ViewerURL != "" {
		c.ViewerURL = cfg.Service.ViewerURL
	}
	c.Limiter = rate.NewLimiter(rate.Limit(cfg.Service.RequestsPerSecond), cfg.Service.Burst)
	c.Metrics = rec
	return c, nil
}

func newRunner(cfg *config.Config, svc pipeline.Service, rec metrics.Recorder) *pipeline.Runner {
	return &pipeline.Runner{
		Service:     svc,
		Concurrency: cfg.Service.Concurrency,
		Deadline:    cfg.Service.Deadline,
		Metrics:     rec,
		Logger:      slog.Default(),
	}
}

// serveMetrics exposes rec on addr until the returned stop func is called.
func serveMetrics(addr string, rec *metrics.PrometheusRecorder) func() {
	if addr == "" {
		return func() {}
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", rec.Handler())
	server := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Metrics server error", "error", err)
		}
	}()
	slog.Info("Serving metrics", "addr", addr)
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			slog.Warn("Metrics server shutdown", "error", err)
		}
	}
}

func writeReport(path string, in report.Input) error {
	if path == "" {
		return nil
	}
	f, err := os.Create(path)
	if err != nil {
		return apperrors.Wrap(err, apperrors.CategoryConfig, "create report").WithContext("path", path)
	}
	if err := report.Write(f, in); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return apperrors.Wrap(err, apperrors.CategoryInternal, "close report").WithContext("path", path)
	}
	slog.Info("Report written", "path", path)
	return nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("print: %w", err)
	}
	return nil
}
