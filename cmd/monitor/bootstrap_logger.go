package main

import (
	"go.uber.org/zap"

	config "github.com/NordCoder/uptimed/internal/config/monitor"
	"github.com/NordCoder/uptimed/internal/obs"
)

func initLogger(cfg *config.Config) (*zap.Logger, error) {
	return obs.NewLogger(cfg.AsLoggerConfig())
}
