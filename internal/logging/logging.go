// Package logging builds the zap loggers used by the server and the CLI.
package logging

import (
	"go.uber.org/zap"

	"artdesk/internal/config"
)

// New builds a logger from the [log] config section. Format "json" selects
// the production encoder; anything else logs to the console.
func New(cfg config.Log) (*zap.Logger, error) {
	var zapConfig zap.Config
	if cfg.Format == "json" {
		zapConfig = zap.NewProductionConfig()
	} else {
		zapConfig = zap.NewDevelopmentConfig()
		zapConfig.Encoding = "console"
	}

	level, err := zap.ParseAtomicLevel(cfg.Level)
	if err != nil {
		level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	zapConfig.Level = level

	if cfg.OutputPath != "" {
		zapConfig.OutputPaths = []string{cfg.OutputPath}
	} else {
		// stdout carries command output and the browser UI.
		zapConfig.OutputPaths = []string{"stderr"}
	}
	zapConfig.ErrorOutputPaths = []string{"stderr"}

	return zapConfig.Build()
}
