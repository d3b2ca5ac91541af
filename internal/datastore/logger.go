// Package datastore provides the append-only prediction record store.
package datastore

import (
	"sync"

	"github.com/coldchain-go/coldchain/internal/logger"
)

var (
	datastoreLogger logger.Logger
	loggerOnce      sync.Once
)

// GetLogger returns the datastore module logger. SQL statements from GORM
// go through it too, at TRACE level.
func GetLogger() logger.Logger {
	loggerOnce.Do(func() {
		datastoreLogger = logger.Global().Module("datastore")
	})
	return datastoreLogger
}
