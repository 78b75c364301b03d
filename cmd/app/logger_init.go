package main

import (
	"github.com/ASHISH-KUMAR-PANDEY/tambola-backend-sub001/internal/config"
	"github.com/ASHISH-KUMAR-PANDEY/tambola-backend-sub001/internal/logger"
)

// initLogger initializes the logger using centralized app configuration
func initLogger(cfg *config.Config) {
	// Source info only in dev
	addSource := cfg.Environment == "dev" || cfg.Environment == "development"

	loggerConfig := logger.NewConfig(
		cfg.LogLevel,
		cfg.LogFormat,
		cfg.ServiceName,
		cfg.Version,
		cfg.Environment,
		addSource,
	)

	logger.InitLogger(loggerConfig)
}
