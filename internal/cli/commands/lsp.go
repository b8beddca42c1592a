package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/flow-design/flow-helper/internal/catalog"
	"github.com/flow-design/flow-helper/internal/cli/config"
	"github.com/flow-design/flow-helper/internal/lsp"
	"github.com/flow-design/flow-helper/internal/tooling"
	"github.com/flow-design/flow-helper/internal/watch"
)

// NewLSPCommand creates the LSP command
func NewLSPCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "lsp",
		Short: "Start the Language Server Protocol server",
		Long: `Start the flow-helper Language Server Protocol (LSP) server.

The server provides:
  • Tag completion with snippets for required attributes and sub-components
  • Attribute and event completion inside component tags
  • Attribute value completion
  • Hover documentation for tags and attributes

It communicates via JSON-RPC over stdin/stdout and logs to stderr.
Editors usually start it automatically. Changes to the config file and to
a custom catalog file are picked up while it runs.`,
		Args: cobra.NoArgs,
		RunE: runLSP,
	}
}

func runLSP(cmd *cobra.Command, args []string) error {
	cfg, loader, err := loadConfig()
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel())
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	cat, err := openCatalog(cfg)
	if err != nil {
		return err
	}

	api, err := tooling.NewAPIWithConfig(&tooling.Config{Catalog: cat})
	if err != nil {
		return err
	}

	server := lsp.NewServer(lsp.Config{
		API:      api,
		Logger:   logger,
		Defaults: cfg.ToOptions(),
		Version:  Version,
	})

	loader.SetLogger(logger.Named("config"))
	if loader.Watch(func(c *config.Config) { server.SetDefaults(c.ToOptions()) }) {
		logger.Info("watching config file", zap.String("file", loader.ConfigFile()))
	}

	if cfg.Catalog != "" {
		catalogWatcher, err := watch.NewCatalogWatcher(cfg.Catalog, func(c *catalog.Catalog) {
			api.SetCatalog(c)
		}, logger.Named("catalog"))
		if err != nil {
			return err
		}
		if err := catalogWatcher.Start(); err != nil {
			return err
		}
		defer catalogWatcher.Stop()
	}

	// Set up context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle signals for graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case sig := <-sigCh:
			logger.Info("received signal", zap.Stringer("signal", sig))
			cancel()
		case <-ctx.Done():
		}
	}()

	// Run server
	return server.Run(ctx)
}

// newLogger builds a development logger on stderr; stdout carries the
// protocol
func newLogger(level zapcore.Level) (*zap.Logger, error) {
	zc := zap.NewDevelopmentConfig()
	zc.Level = zap.NewAtomicLevelAt(level)
	zc.OutputPaths = []string{"stderr"}
	zc.ErrorOutputPaths = []string{"stderr"}
	zc.DisableStacktrace = level > zapcore.DebugLevel

	logger, err := zc.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return logger.Named("flow-helper"), nil
}
