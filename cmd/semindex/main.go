// Package main provides the semindex binary entry point.
// Semindex translates knowledge-graph batches into search-index documents.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/c360studio/semindex/config"
	"github.com/c360studio/semindex/storage"
)

const (
	Version   = "0.1.0"
	BuildTime = "dev"
	appName   = "semindex"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(2)
		}
	}()

	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// globalFlags are shared by all subcommands.
type globalFlags struct {
	configPath  string
	logLevel    string
	metricsAddr string
}

func rootCmd() *cobra.Command {
	var flags globalFlags

	cmd := &cobra.Command{
		Use:   appName,
		Short: "Knowledge-graph to search-index translator",
		Long: `Semindex translates knowledge-graph records (brain atlases, research
products and dataset versions) into search-index documents.

It resolves version lineages, builds parcellation and specimen hierarchies,
and summarises studied specimens. Documents are written to stdout and, when
NATS is configured, published to JetStream and kept in a KV bucket.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVarP(&flags.configPath, "config", "c", "", "Config file path (YAML)")
	cmd.PersistentFlags().StringVar(&flags.logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	cmd.PersistentFlags().StringVar(&flags.metricsAddr, "metrics-addr", "", "Listen address for Prometheus metrics")

	cmd.AddCommand(
		translateCmd(&flags),
		watchCmd(&flags),
		documentsCmd(&flags),
		&cobra.Command{
			Use:   "version",
			Short: "Print version information",
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Fprintf(cmd.OutOrStdout(), "%s version %s (build: %s)\n", appName, Version, BuildTime)
			},
		},
	)

	return cmd
}

func translateCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "translate [patterns...]",
		Short: "Translate batch files once",
		Long: `Translate resolves the batch file patterns (or source.patterns from the
configuration), translates every record and writes one JSON document per
line to stdout.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, ctx, stop, err := setup(cmd, flags, args)
			if err != nil {
				return err
			}
			defer stop()
			return app.TranslateAll(ctx)
		},
	}
}

func watchCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "watch [patterns...]",
		Short: "Translate batch files and re-translate them on change",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, ctx, stop, err := setup(cmd, flags, args)
			if err != nil {
				return err
			}
			defer stop()
			return app.Watch(ctx)
		},
	}
}

func documentsCmd(flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "documents",
		Short: "Inspect documents kept in the KV bucket",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list [type]",
		Short: "List stored document ids",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, ctx, stop, err := setup(cmd, flags, nil)
			if err != nil {
				return err
			}
			defer stop()
			if app.store == nil {
				return errors.New("no document store: set nats.url")
			}

			docType := ""
			if len(args) == 1 {
				docType = args[0]
			}
			ids, err := app.store.List(ctx, docType)
			if err != nil {
				return err
			}
			for _, id := range ids {
				fmt.Fprintln(cmd.OutOrStdout(), id)
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "get <type.id>",
		Short: "Print a stored document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := storage.ParseDocumentID(args[0])
			if err != nil {
				return err
			}
			app, ctx, stop, err := setup(cmd, flags, nil)
			if err != nil {
				return err
			}
			defer stop()
			if app.store == nil {
				return errors.New("no document store: set nats.url")
			}

			rec, err := app.store.Get(ctx, id)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(rec)
		},
	})

	return cmd
}

// setup configures logging, loads configuration and starts the app. The
// returned stop function shuts the app down and releases the signal handler.
func setup(cmd *cobra.Command, flags *globalFlags, patterns []string) (*App, context.Context, func(), error) {
	logger := newLogger(flags.logLevel)
	slog.SetDefault(logger)

	cfg, err := loadConfig(flags.configPath, logger)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load config: %w", err)
	}
	if len(patterns) > 0 {
		cfg.Source.Patterns = patterns
	}
	if flags.metricsAddr != "" {
		cfg.Metrics.Addr = flags.metricsAddr
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, nil, fmt.Errorf("invalid configuration: %w", err)
	}

	ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)

	app := NewApp(cfg, logger, cmd.OutOrStdout())
	if err := app.Start(ctx); err != nil {
		cancel()
		return nil, nil, nil, err
	}

	stop := func() {
		app.Shutdown(5 * time.Second)
		cancel()
	}
	return app, ctx, stop, nil
}

func newLogger(level string) *slog.Logger {
	lvl := slog.LevelInfo
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}

func loadConfig(configPath string, logger *slog.Logger) (*config.Config, error) {
	loader := config.NewLoader(logger)
	if configPath != "" {
		return loader.LoadFile(configPath)
	}
	return loader.Load()
}
