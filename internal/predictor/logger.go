package predictor

import (
	"sync"

	"github.com/coldchain-go/coldchain/internal/logger"
)

var (
	serviceLogger logger.Logger
	initOnce      sync.Once
)

// GetLogger returns the predictor package logger scoped to the predictor module.
func GetLogger() logger.Logger {
	initOnce.Do(func() {
		serviceLogger = logger.Global().Module("predictor")
	})
	return serviceLogger
}
