// Command a11ycheck runs multi-viewport accessibility audits.
//
// Usage:
//
//	a11ycheck -url https://example.com              # audit once, JSON to stdout
//	a11ycheck -url https://example.com -format markdown
//	a11ycheck -config a11ycheck.yaml -serve :8080   # HTTP API
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	_ "modernc.org/sqlite"

	"github.com/webyes/a11ycheck"
	"github.com/webyes/a11ycheck/report"
)

func main() {
	configPath := flag.String("config", "", "path to a11ycheck.yaml config file")
	auditURL := flag.String("url", "", "audit a single URL and exit")
	format := flag.String("format", "json", "output format for -url: json, markdown")
	serveAddr := flag.String("serve", "", "serve the HTTP API on this address")
	logLevel := flag.String("log-level", "info", "log level: debug, info, warn, error")
	flag.Parse()

	var level slog.Level
	switch *logLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, logger, *configPath, *auditURL, *format, *serveAddr); err != nil {
		logger.Error("a11ycheck: fatal", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, logger *slog.Logger, configPath, auditURL, format, serveAddr string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if auditURL != "" {
		return runAudit(ctx, logger, cfg, auditURL, format)
	}

	if serveAddr != "" {
		return runServe(ctx, logger, cfg, serveAddr)
	}

	fmt.Fprintln(os.Stderr, "usage: a11ycheck -url <url> [-format json|markdown] | -serve <addr> [-config <file>]")
	os.Exit(1)
	return nil
}

func runAudit(ctx context.Context, logger *slog.Logger, cfg *a11ycheck.Config, url, format string) error {
	c := a11ycheck.New(cfg, logger, a11ycheck.SinksFromConfig(cfg.Sinks, logger)...)
	if err := c.Start(ctx); err != nil {
		return fmt.Errorf("start: %w", err)
	}
	defer c.Stop()

	result, err := c.Audit(ctx, url)
	if err != nil {
		return fmt.Errorf("audit: %w", err)
	}

	switch format {
	case "markdown":
		os.Stdout.WriteString(report.Markdown(result))
	default:
		data, err := report.MarshalResult(result)
		if err != nil {
			return fmt.Errorf("marshal: %w", err)
		}
		os.Stdout.Write(data)
		os.Stdout.Write([]byte("\n"))
	}
	return nil
}

func runServe(ctx context.Context, logger *slog.Logger, cfg *a11ycheck.Config, addr string) error {
	c := a11ycheck.New(cfg, logger, a11ycheck.SinksFromConfig(cfg.Sinks, logger)...)
	if err := c.Start(ctx); err != nil {
		return fmt.Errorf("start: %w", err)
	}
	defer c.Stop()

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	c.RegisterHTTP(r)

	srv := &http.Server{Addr: addr, Handler: r}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	logger.Info("a11ycheck: serving HTTP API", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("serve: %w", err)
	}
	return nil
}

func loadConfig(path string) (*a11ycheck.Config, error) {
	if path == "" {
		cfg := &a11ycheck.Config{}
		cfg.ApplyDefaults()
		return cfg, nil
	}
	return a11ycheck.LoadConfigFile(path)
}
