package repos

import (
	"strings"

	"go.uber.org/zap"
)

// LoggerProvider yields a zap logger for command execution.
type LoggerProvider func() *zap.Logger

// ServerConfigurationProvider returns the Gitea server connection settings.
type ServerConfigurationProvider func() ServerConfiguration

// ConfigurationProvider returns the repository creation defaults.
type ConfigurationProvider func() CreateConfiguration

func resolveLogger(provider LoggerProvider) *zap.Logger {
	if provider == nil {
		return zap.NewNop()
	}
	logger := provider()
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}

func selectStringValue(flagValue string, flagChanged bool, configurationValue string) string {
	if flagChanged {
		return strings.TrimSpace(flagValue)
	}
	return configurationValue
}
