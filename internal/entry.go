// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/electrovir/itunes-library-migration-assistant/internal/api"
	"github.com/electrovir/itunes-library-migration-assistant/internal/library"
	"github.com/electrovir/itunes-library-migration-assistant/internal/mcpserver"
	"github.com/electrovir/itunes-library-migration-assistant/internal/migration"
	"github.com/electrovir/itunes-library-migration-assistant/internal/report"
	"github.com/electrovir/itunes-library-migration-assistant/internal/storage"
	"github.com/electrovir/itunes-library-migration-assistant/internal/watch"
)

// Run starts the application with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app := &application{
		stdout: os.Stdout,
		stderr: os.Stderr,
		files:  migration.OSFiles{},
	}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return fmt.Errorf("config is required")
	}

	cfg := app.config

	// Logs go to stderr; stdout carries the migrated library or the MCP protocol.
	logger := NewLogger(cfg.Log, app.stderr)
	slog.SetDefault(logger)

	svc := api.NewService(logger, api.WithFiles(app.files))

	if app.mcp {
		logger.Info("MCP server starting on stdio")
		return mcpserver.New(svc, logger).ServeStdio()
	}

	logger.Info("Configuration loaded",
		slog.String("library", cfg.Migration.Library),
		slog.String("output", string(cfg.Migration.Output)),
		slog.Int("rules", len(cfg.Rules)),
		slog.Bool("watch", cfg.Migration.Watch),
		slog.String("log_level", cfg.Log.Level.String()))

	if !cfg.Migration.Watch {
		return migrateOnce(ctx, svc, cfg, app.stdout)
	}

	if err := migrateOnce(ctx, svc, cfg, app.stdout); err != nil {
		logger.Warn("initial migration failed", slog.String("error", err.Error()))
	}

	// Saves that leave the bytes unchanged do not trigger a new migration.
	last := sourceChecksum(cfg.Migration.Library)

	g, gCtx := errgroup.WithContext(ctx)
	gCtx, cancel := context.WithCancel(gCtx)
	defer cancel()

	g.Go(func() error {
		return watch.Watch(gCtx, cfg.Migration.Library, watch.DefaultDebounce, logger, func(ctx context.Context) {
			sum := sourceChecksum(cfg.Migration.Library)
			if sum != "" && sum == last {
				logger.Debug("Library unchanged, skipping", slog.String("checksum", sum))
				return
			}
			last = sum
			logger.Info("Library changed, migrating again", slog.String("library", cfg.Migration.Library))
			if err := migrateOnce(ctx, svc, cfg, app.stdout); err != nil {
				logger.Warn("migration failed", slog.String("error", err.Error()))
			}
		})
	})

	// Handle shutdown signals.
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
		}
		cancel()
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Watcher stopped")
	return nil
}

// NewLogger builds the slog logger described by cfg.
func NewLogger(cfg LogConfig, w io.Writer) *slog.Logger {
	hopts := &slog.HandlerOptions{Level: cfg.Level}
	if cfg.Format == LogFormatJSON {
		return slog.New(slog.NewJSONHandler(w, hopts))
	}
	return slog.New(slog.NewTextHandler(w, hopts))
}

func migrateOnce(ctx context.Context, svc *api.Service, cfg *Config, stdout io.Writer) error {
	in := cfg.Input()
	res, err := svc.Migrate(ctx, in)
	if err != nil {
		return err
	}

	switch res.Kind {
	case library.JSONObject:
		data, err := library.ToJSON(res.Library)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(stdout, string(data))
		return err
	case library.PlistString:
		_, err := io.WriteString(stdout, res.Plist)
		return err
	}

	return report.Write(stdout, report.Summary{
		Library:     in.LibraryFilePath,
		Destination: res.FilePath,
		Tracks:      len(res.Library.Tracks),
		Rules:       in.ReplacePaths,
		Checksum:    res.Checksum,
		Diagnostics: res.Diagnostics,
	})
}

func sourceChecksum(path string) string {
	store, name, err := storage.ForFile(path)
	if err != nil {
		return ""
	}
	data, err := store.Read(name)
	if err != nil {
		return ""
	}
	return storage.Checksum(data)
}
