// mqtt.go: Package mqtt publishes stored prediction records to an MQTT broker.
package mqtt

import (
	"context"
	"sync"
	"time"

	"github.com/coldchain-go/coldchain/internal/conf"
	"github.com/coldchain-go/coldchain/internal/logger"
)

// Client defines the interface for MQTT client operations.
type Client interface {
	// Connect attempts to connect to the MQTT broker.
	Connect(ctx context.Context) error

	// Publish sends a payload to the configured topic.
	Publish(ctx context.Context, payload []byte) error

	// IsConnected returns true if the client is currently connected to the MQTT broker.
	IsConnected() bool

	// Disconnect closes the connection to the MQTT broker.
	Disconnect()
}

// Config holds the configuration for the MQTT client.
type Config struct {
	Broker   string
	ClientID string
	Username string
	Password string
	Topic    string // topic for prediction records
	Retain   bool   // true to retain messages at the broker
	QoS      byte

	ConnectTimeout    time.Duration
	PublishTimeout    time.Duration
	DisconnectTimeout time.Duration
	ReconnectDelay    time.Duration // first retry delay after a failed connect
	MaxReconnectDelay time.Duration
}

// DefaultConfig returns a Config with reasonable default values
func DefaultConfig() Config {
	return Config{
		ConnectTimeout:    30 * time.Second,
		PublishTimeout:    10 * time.Second,
		DisconnectTimeout: 250 * time.Millisecond,
		ReconnectDelay:    time.Second,
		MaxReconnectDelay: 5 * time.Minute,
	}
}

// ConfigFromSettings derives the client configuration from the mqtt section.
func ConfigFromSettings(settings *conf.Settings) Config {
	cfg := DefaultConfig()
	cfg.Broker = settings.MQTT.Broker
	cfg.ClientID = settings.Main.Name
	cfg.Username = settings.MQTT.Username
	cfg.Password = settings.MQTT.Password
	cfg.Topic = settings.MQTT.Topic
	cfg.Retain = settings.MQTT.Retain
	cfg.QoS = settings.MQTT.QoS
	return cfg
}

var (
	mqttLogger logger.Logger
	loggerOnce sync.Once
)

// GetLogger returns the mqtt module logger.
func GetLogger() logger.Logger {
	loggerOnce.Do(func() {
		mqttLogger = logger.Global().Module("mqtt")
	})
	return mqttLogger
}
