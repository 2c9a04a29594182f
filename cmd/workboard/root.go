package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"workboard/internal/app"
	"workboard/internal/config"
	"workboard/internal/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const appName = "workboard"

var (
	cfgFile  string
	logDebug bool
	logJSON  bool

	rootCmd = &cobra.Command{
		Use:           appName,
		Short:         "workboard matches workers to job postings over a partitioned store",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (yaml, json or toml)")
	rootCmd.PersistentFlags().BoolVarP(&logDebug, "debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolVarP(&logJSON, "json", "j", false, "json format for logging")
}

// withContainer loads configuration, builds the container and runs fn with a
// context that ends on SIGINT or SIGTERM.
func withContainer(cmd *cobra.Command, fn func(ctx context.Context, c *app.Container) error) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	if logDebug {
		cfg.Log.Debug = true
	}
	if logJSON {
		cfg.Log.JSON = true
	}

	log, err := logger.New(cfg.Log.JSON, cfg.Log.Debug)
	if err != nil {
		return fmt.Errorf("creating a logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c, err := app.NewContainer(ctx, cfg, log)
	if err != nil {
		log.Error("starting workboard", zap.Error(err))
		return err
	}
	defer func() {
		if err := c.Close(); err != nil {
			log.Warn("closing container", zap.Error(err))
		}
	}()

	log.Debug("running command", zap.String("command", cmd.Name()), zap.String("driver", cfg.Store.Driver))
	return fn(ctx, c)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
