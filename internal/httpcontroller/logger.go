package httpcontroller

import (
	"sync"

	"github.com/coldchain-go/coldchain/internal/logger"
)

var (
	serviceLogger logger.Logger
	initOnce      sync.Once
)

// GetLogger returns the httpcontroller module logger.
func GetLogger() logger.Logger {
	initOnce.Do(func() {
		serviceLogger = logger.Global().Module("httpcontroller")
	})
	return serviceLogger
}
