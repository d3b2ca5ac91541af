package advisor

import (
	"sync"

	"github.com/coldchain-go/coldchain/internal/logger"
)

var (
	serviceLogger logger.Logger
	initOnce      sync.Once
)

// GetLogger returns the advisor module logger.
func GetLogger() logger.Logger {
	initOnce.Do(func() {
		serviceLogger = logger.Global().Module("advisor")
	})
	return serviceLogger
}
