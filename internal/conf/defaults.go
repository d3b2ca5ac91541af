// defaults.go: default values for the configuration keys
package conf

import (
	"time"

	"github.com/spf13/viper"
)

// setDefaultConfig sets default values for every configuration parameter
func setDefaultConfig() {
	viper.SetDefault("debug", false)

	// Main configuration
	viper.SetDefault("main.name", "coldchain")
	viper.SetDefault("main.timezone", "Local")

	// Logging configuration
	viper.SetDefault("logging.default_level", "info")
	viper.SetDefault("logging.timezone", "Local")
	viper.SetDefault("logging.console.enabled", true)
	viper.SetDefault("logging.console.level", "info")
	viper.SetDefault("logging.file_output.enabled", false)
	viper.SetDefault("logging.file_output.path", "logs/coldchain.log")
	viper.SetDefault("logging.file_output.level", "info")

	// Model configuration
	viper.SetDefault("model.type", ModelTypeLinear)
	viper.SetDefault("model.path", "model/ideal_temp.yaml")
	viper.SetDefault("model.threads", 0)

	// Web server configuration
	viper.SetDefault("webserver.enabled", true)
	viper.SetDefault("webserver.host", "")
	viper.SetDefault("webserver.port", "8501")
	viper.SetDefault("webserver.ratelimit", 5.0)
	viper.SetDefault("webserver.burst", 10)
	viper.SetDefault("webserver.debug", false)

	// Record store configuration
	viper.SetDefault("output.sqlite.enabled", true)
	viper.SetDefault("output.sqlite.path", "predictions.db")

	viper.SetDefault("output.mysql.enabled", false)
	viper.SetDefault("output.mysql.username", "coldchain")
	viper.SetDefault("output.mysql.password", "secret")
	viper.SetDefault("output.mysql.database", "coldchain")
	viper.SetDefault("output.mysql.host", "localhost")
	viper.SetDefault("output.mysql.port", "3306")

	viper.SetDefault("output.postgres.enabled", false)
	viper.SetDefault("output.postgres.username", "coldchain")
	viper.SetDefault("output.postgres.password", "secret")
	viper.SetDefault("output.postgres.database", "coldchain")
	viper.SetDefault("output.postgres.host", "localhost")
	viper.SetDefault("output.postgres.port", "5432")
	viper.SetDefault("output.postgres.sslmode", "disable")

	// Alert email configuration
	viper.SetDefault("notification.enabled", false)
	viper.SetDefault("notification.timeout", 10*time.Second)
	viper.SetDefault("notification.smtp.host", "smtp.gmail.com")
	viper.SetDefault("notification.smtp.port", 587)
	viper.SetDefault("notification.smtp.username", "")
	viper.SetDefault("notification.smtp.password", "")
	viper.SetDefault("notification.smtp.from", "")
	viper.SetDefault("notification.smtp.fromname", "Cold Chain Advisor")
	viper.SetDefault("notification.smtp.encryption", EncryptionAuto)

	// MQTT configuration
	viper.SetDefault("mqtt.enabled", false)
	viper.SetDefault("mqtt.broker", "tcp://localhost:1883")
	viper.SetDefault("mqtt.topic", "coldchain/predictions")
	viper.SetDefault("mqtt.username", "")
	viper.SetDefault("mqtt.password", "")
	viper.SetDefault("mqtt.retain", false)
	viper.SetDefault("mqtt.qos", 1)

	// Metrics configuration
	viper.SetDefault("metrics.enabled", true)
}
