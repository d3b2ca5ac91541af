// env.go - environment variable configuration and validation
package conf

import (
	"fmt"
	"net/mail"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

// envBinding holds metadata for environment variable bindings (internal use)
type envBinding struct {
	ConfigKey string             // Viper config key
	EnvVar    string             // Environment variable name
	Validate  func(string) error // Optional validation function
}

// getEnvBindings returns all environment variable bindings with validation
func getEnvBindings() []envBinding {
	return []envBinding{
		// Model
		{"model.type", EnvPrefix + "_MODEL_TYPE", validateEnvModelType},
		{"model.path", EnvPrefix + "_MODEL_PATH", validateEnvPath},

		// Web server
		{"webserver.port", EnvPrefix + "_PORT", validateEnvPort},

		// Record store
		{"output.sqlite.path", EnvPrefix + "_SQLITE_PATH", nil},
		{"output.mysql.password", EnvPrefix + "_MYSQL_PASSWORD", nil},
		{"output.postgres.password", EnvPrefix + "_POSTGRES_PASSWORD", nil},

		// Alert email
		{"notification.enabled", EnvPrefix + "_NOTIFICATION_ENABLED", validateEnvBool},
		{"notification.smtp.host", EnvPrefix + "_SMTP_HOST", nil},
		{"notification.smtp.port", EnvPrefix + "_SMTP_PORT", validateEnvPort},
		{"notification.smtp.username", EnvPrefix + "_SMTP_USERNAME", nil},
		{"notification.smtp.password", EnvPrefix + "_SMTP_PASSWORD", nil},
		{"notification.smtp.from", EnvPrefix + "_SMTP_FROM", validateEnvAddress},

		// MQTT
		{"mqtt.password", EnvPrefix + "_MQTT_PASSWORD", nil},
	}
}

// bindEnvVars sets up environment variable bindings with validation (internal)
func bindEnvVars() error {
	var warnings []string

	for _, binding := range getEnvBindings() {
		if err := viper.BindEnv(binding.ConfigKey, binding.EnvVar); err != nil {
			warnings = append(warnings, fmt.Sprintf("Failed to bind %s: %v", binding.EnvVar, err))
			continue
		}

		if binding.Validate == nil {
			continue
		}
		if envValue := os.Getenv(binding.EnvVar); envValue != "" {
			if err := binding.Validate(envValue); err != nil {
				// Don't echo the value, it may be a credential
				warnings = append(warnings, fmt.Sprintf("Invalid %s value: %v", binding.EnvVar, err))
			}
		}
	}

	if len(warnings) > 0 {
		return fmt.Errorf("environment variable issues:\n  - %s", strings.Join(warnings, "\n  - "))
	}

	return nil
}

func validateEnvBool(value string) error {
	if _, err := strconv.ParseBool(value); err != nil {
		return fmt.Errorf("must be a boolean (true/false/1/0), got %q", value)
	}
	return nil
}

func validateEnvPort(value string) error {
	port, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("invalid port: %w", err)
	}
	if port < 1 || port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", port)
	}
	return nil
}

func validateEnvModelType(value string) error {
	if !slices.Contains([]string{ModelTypeLinear, ModelTypeTFLite}, strings.ToLower(value)) {
		return fmt.Errorf("model type must be %q or %q, got %q", ModelTypeLinear, ModelTypeTFLite, value)
	}
	return nil
}

func validateEnvAddress(value string) error {
	if _, err := mail.ParseAddress(value); err != nil {
		return fmt.Errorf("invalid email address: %w", err)
	}
	return nil
}

func validateEnvPath(value string) error {
	cleanedPath := filepath.Clean(value)

	if slices.Contains(strings.Split(cleanedPath, string(os.PathSeparator)), "..") {
		return fmt.Errorf("path traversal detected in cleaned path: %s", cleanedPath)
	}

	if _, err := os.Stat(cleanedPath); os.IsNotExist(err) {
		return fmt.Errorf("warning: file does not exist: %s", cleanedPath)
	}

	return nil
}

// configureEnvironmentVariables sets up environment variable support for Viper
func configureEnvironmentVariables() error {
	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	return bindEnvVars()
}
