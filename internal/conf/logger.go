// Package conf provides configuration management for the cold chain advisor.
package conf

import "github.com/coldchain-go/coldchain/internal/logger"

// GetLogger returns the config package logger scoped to the config module.
// It is fetched from the global logger each time because configuration is
// read before the central logger exists.
func GetLogger() logger.Logger {
	return logger.Global().Module("config")
}
