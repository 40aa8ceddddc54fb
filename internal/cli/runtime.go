package cli

import (
	"os"

	"github.com/rileyhilliard/livemon/internal/config"
	"github.com/rileyhilliard/livemon/internal/errors"
	"github.com/rileyhilliard/livemon/internal/logger"
)

// loadConfig loads .env from the working directory, then the config file
// found from --config. The path is empty when only defaults apply.
func loadConfig() (*config.Config, string, error) {
	if cwd, err := os.Getwd(); err == nil {
		if err := config.LoadEnvFile(cwd); err != nil {
			return nil, "", err
		}
	}
	return config.LoadOrDefault(cfgFile)
}

// setupLogger builds the zap logger from config and installs it as the
// package default. The caller should Sync it before exiting.
func setupLogger(cfg *config.Config) (*logger.ZapLogger, error) {
	lc := logger.Config{
		Level:      cfg.Log.Level,
		File:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
		Compress:   cfg.Log.Compress,
		Console:    true,
	}
	if verbose {
		lc.Level = "debug"
	}

	log, err := logger.New(lc)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Couldn't set up logging",
			"Check log.level and log.file in your config")
	}
	logger.SetDefault(log)
	return log, nil
}
