// config.go: settings struct for the cold chain advisor and functions to load and save it.
package conf

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/coldchain-go/coldchain/internal/errors"
	"github.com/coldchain-go/coldchain/internal/logger"
)

//go:embed config.yaml
var configFiles embed.FS

// MainSettings contains general application settings.
type MainSettings struct {
	Name     string // instance name, shown in page title and alert footer
	Timezone string // timezone for record timestamps, "Local" or IANA name
}

// ModelSettings selects and locates the temperature model artifact.
type ModelSettings struct {
	Type    string // "linear" or "tflite"
	Path    string // path to model artifact
	Threads int    // interpreter threads for tflite, 0 = runtime default
}

// WebServerSettings contains settings for the web server.
type WebServerSettings struct {
	Enabled   bool    // true to enable web server
	Host      string  // listen address, empty for all interfaces
	Port      string  // port for web server
	RateLimit float64 // requests per second per client for POST /predict, 0 disables
	Burst     int     // rate limiter burst size
	Debug     bool    // true to enable request logging
}

// SQLiteSettings contains settings for SQLite database.
type SQLiteSettings struct {
	Enabled bool   // true to enable sqlite output
	Path    string // path to sqlite database
}

// MySQLSettings contains settings for MySQL database.
type MySQLSettings struct {
	Enabled  bool   // true to enable mysql output
	Username string // username for mysql database
	Password string // password for mysql database
	Database string // database name for mysql database
	Host     string // host for mysql database
	Port     string // port for mysql database
}

// PostgresSettings contains settings for PostgreSQL database.
type PostgresSettings struct {
	Enabled  bool   // true to enable postgres output
	Username string // username for postgres database
	Password string // password for postgres database
	Database string // database name for postgres database
	Host     string // host for postgres database
	Port     string // port for postgres database
	SSLMode  string // sslmode parameter, e.g. "disable", "require"
}

// OutputSettings contains settings for the record store backends.
type OutputSettings struct {
	SQLite   SQLiteSettings
	MySQL    MySQLSettings
	Postgres PostgresSettings
}

// SMTPSettings contains the mail relay identity and credentials.
type SMTPSettings struct {
	Host       string // relay host
	Port       int    // relay port
	Username   string // auth username, empty for unauthenticated relays
	Password   string // auth password
	From       string // sender address
	FromName   string // sender display name
	Encryption string // "auto", "none", "explicittls" or "implicittls"
}

// NotificationSettings contains settings for alert email delivery.
type NotificationSettings struct {
	Enabled bool          // true to send alert emails
	Timeout time.Duration // per-send timeout
	SMTP    SMTPSettings
}

// MQTTSettings contains settings for MQTT integration.
type MQTTSettings struct {
	Enabled  bool   // true to enable MQTT
	Broker   string // MQTT (tcp://host:port)
	Topic    string // MQTT topic
	Username string // MQTT username
	Password string // MQTT password
	Retain   bool   // retain published records on the broker
	QoS      byte   // 0, 1 or 2
}

// MetricsSettings contains settings for the Prometheus endpoint.
type MetricsSettings struct {
	Enabled bool // true to expose /metrics
}

// Settings contains all configuration options for the advisor.
type Settings struct {
	Debug bool // true to enable debug mode

	Main         MainSettings
	Logging      logger.LoggingConfig
	Model        ModelSettings
	WebServer    WebServerSettings
	Output       OutputSettings
	Notification NotificationSettings
	MQTT         MQTTSettings
	Metrics      MetricsSettings
}

var (
	settingsInstance *Settings
	settingsMutex    sync.RWMutex
	once             sync.Once
)

// Load reads the configuration from the default search paths and validates it.
func Load() (*Settings, error) {
	return LoadFile("")
}

// LoadFile reads the configuration from configFile, or from the default search
// paths when configFile is empty. A missing default config is created from the
// embedded template.
func LoadFile(configFile string) (*Settings, error) {
	settingsMutex.Lock()
	defer settingsMutex.Unlock()

	settings := &Settings{}

	if err := initViper(configFile); err != nil {
		return nil, fmt.Errorf("error initializing viper: %w", err)
	}

	if err := viper.Unmarshal(settings); err != nil {
		return nil, errors.New(err).
			Component("configuration").
			Category(errors.CategoryConfiguration).
			Context("operation", "unmarshal").
			Build()
	}

	if err := ValidateSettings(settings); err != nil {
		return nil, fmt.Errorf("error validating settings: %w", err)
	}

	settingsInstance = settings
	return settingsInstance, nil
}

// initViper initializes viper with default values and reads the configuration file.
func initViper(configFile string) error {
	setDefaultConfig()

	if err := configureEnvironmentVariables(); err != nil {
		// Env problems are reported but do not block startup
		GetLogger().Warn("environment variable configuration issues", logger.Error(err))
	}

	if configFile != "" {
		viper.SetConfigFile(configFile)
		if err := viper.ReadInConfig(); err != nil {
			return errors.New(err).
				Component("configuration").
				Category(errors.CategoryConfiguration).
				FileContext(configFile, 0).
				Context("operation", "read-config").
				Build()
		}
		return nil
	}

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	configPaths, err := GetDefaultConfigPaths()
	if err != nil {
		return fmt.Errorf("error getting default config paths: %w", err)
	}
	for _, path := range configPaths {
		viper.AddConfigPath(path)
	}

	err = viper.ReadInConfig()
	if err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if errors.As(err, &configFileNotFoundError) {
			return createDefaultConfig(configPaths[0])
		}
		return fmt.Errorf("fatal error reading config file: %w", err)
	}

	return nil
}

// createDefaultConfig writes the embedded default config into dir and reads it back
func createDefaultConfig(dir string) error {
	configPath := filepath.Join(dir, "config.yaml")

	defaultConfig, err := getDefaultConfig()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("error creating directories for config file: %w", err)
	}

	if err := os.WriteFile(configPath, defaultConfig, 0o600); err != nil {
		return fmt.Errorf("error writing default config file: %w", err)
	}

	GetLogger().Info("created default config file", logger.String("path", configPath))
	viper.SetConfigFile(configPath)
	return viper.ReadInConfig()
}

// getDefaultConfig reads the default configuration from the embedded config.yaml file.
func getDefaultConfig() ([]byte, error) {
	data, err := fs.ReadFile(configFiles, "config.yaml")
	if err != nil {
		return nil, errors.New(err).
			Component("configuration").
			Category(errors.CategoryFileIO).
			Context("operation", "read-embedded-config").
			Build()
	}
	return data, nil
}

// GetSettings returns the current settings instance
func GetSettings() *Settings {
	settingsMutex.RLock()
	defer settingsMutex.RUnlock()
	return settingsInstance
}

// Setting returns the current settings instance, loading defaults if necessary
func Setting() *Settings {
	once.Do(func() {
		if GetSettings() == nil {
			if _, err := Load(); err != nil {
				GetLogger().Error("error loading settings", logger.Error(err))
				os.Exit(1)
			}
		}
	})
	return GetSettings()
}

// Location returns the timezone used for record timestamps.
func (s *Settings) Location() (*time.Location, error) {
	switch s.Main.Timezone {
	case "", "Local":
		return time.Local, nil
	default:
		loc, err := time.LoadLocation(s.Main.Timezone)
		if err != nil {
			return nil, errors.New(err).
				Component("configuration").
				Category(errors.CategoryConfiguration).
				Context("timezone", s.Main.Timezone).
				Build()
		}
		return loc, nil
	}
}

// SaveYAMLConfig writes settings to configPath.
// It overwrites the existing file, not preserving comments or structure.
func SaveYAMLConfig(configPath string, settings *Settings) error {
	yamlData, err := yaml.Marshal(settings)
	if err != nil {
		return fmt.Errorf("error marshaling settings to YAML: %w", err)
	}

	// Write to a temporary file first so the replace is atomic
	tempFile, err := os.CreateTemp(filepath.Dir(configPath), "config-*.yaml")
	if err != nil {
		return fmt.Errorf("error creating temporary file: %w", err)
	}
	tempFileName := tempFile.Name()
	defer os.Remove(tempFileName)

	if _, err := tempFile.Write(yamlData); err != nil {
		tempFile.Close()
		return fmt.Errorf("error writing to temporary file: %w", err)
	}
	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("error closing temporary file: %w", err)
	}

	if err := os.Rename(tempFileName, configPath); err != nil {
		// Cross-device rename, fall back to copy and delete
		if err := moveFile(tempFileName, configPath); err != nil {
			return fmt.Errorf("error copying config file: %w", err)
		}
	}

	return nil
}
