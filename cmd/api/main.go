package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/iamdashante1/mb/internal/config"
)

var Version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:     "memorial",
		Short:   "Memorial site API: RSVPs, tributes and gallery",
		Version: Version,
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(notifyTestCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// setup loads .env and the environment and builds the logger.
func setup() (*config.Config, *zap.Logger, error) {
	envErr := config.LoadDotEnv()
	cfg := config.Load()

	logger, err := newLogger(cfg.Debug)
	if err != nil {
		return nil, nil, err
	}

	if envErr != nil {
		if errors.Is(envErr, fs.ErrNotExist) {
			logger.Info("no .env file, using process environment")
		} else {
			logger.Warn("error loading .env file", zap.Error(envErr))
		}
	}

	return cfg, logger, nil
}

func newLogger(debug bool) (*zap.Logger, error) {
	var cfg zap.Config

	if debug {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
	}

	return cfg.Build()
}
