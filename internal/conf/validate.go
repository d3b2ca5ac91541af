// conf/validate.go

package conf

import (
	"fmt"
	"net/mail"
	"net/url"
	"strconv"
	"strings"
)

// ValidationError represents a collection of validation errors
type ValidationError struct {
	Errors []string
}

// Error returns a string representation of the validation errors
func (ve ValidationError) Error() string {
	return fmt.Sprintf("Validation errors: %v", ve.Errors)
}

// ValidateSettings validates the entire Settings struct
func ValidateSettings(settings *Settings) error {
	ve := ValidationError{}

	validators := []func(*Settings) error{
		func(s *Settings) error { return validateModelSettings(&s.Model) },
		func(s *Settings) error { return validateWebServerSettings(&s.WebServer) },
		func(s *Settings) error { return validateOutputSettings(&s.Output) },
		func(s *Settings) error { return validateNotificationSettings(&s.Notification) },
		func(s *Settings) error { return validateMQTTSettings(&s.MQTT) },
		func(s *Settings) error { _, err := s.Location(); return err },
	}

	for _, validate := range validators {
		if err := validate(settings); err != nil {
			ve.Errors = append(ve.Errors, err.Error())
		}
	}

	if len(ve.Errors) > 0 {
		return ve
	}
	return nil
}

func validateModelSettings(settings *ModelSettings) error {
	settings.Type = strings.ToLower(strings.TrimSpace(settings.Type))
	switch settings.Type {
	case ModelTypeLinear, ModelTypeTFLite:
	default:
		return fmt.Errorf("model.type must be %q or %q, got %q", ModelTypeLinear, ModelTypeTFLite, settings.Type)
	}

	if settings.Path == "" {
		return fmt.Errorf("model.path is required")
	}
	if settings.Threads < 0 {
		return fmt.Errorf("model.threads must be >= 0, got %d", settings.Threads)
	}
	return nil
}

func validateWebServerSettings(settings *WebServerSettings) error {
	if !settings.Enabled {
		return nil
	}

	port, err := strconv.Atoi(settings.Port)
	if err != nil || port < 1 || port > 65535 {
		return fmt.Errorf("webserver.port must be a number between 1 and 65535, got %q", settings.Port)
	}
	if settings.RateLimit < 0 {
		return fmt.Errorf("webserver.ratelimit must be >= 0")
	}
	if settings.RateLimit > 0 && settings.Burst < 1 {
		return fmt.Errorf("webserver.burst must be >= 1 when rate limiting is enabled")
	}
	return nil
}

func validateOutputSettings(settings *OutputSettings) error {
	enabled := 0
	if settings.SQLite.Enabled {
		enabled++
		if settings.SQLite.Path == "" {
			return fmt.Errorf("output.sqlite.path is required")
		}
	}
	if settings.MySQL.Enabled {
		enabled++
		if settings.MySQL.Host == "" || settings.MySQL.Database == "" {
			return fmt.Errorf("output.mysql requires host and database")
		}
	}
	if settings.Postgres.Enabled {
		enabled++
		if settings.Postgres.Host == "" || settings.Postgres.Database == "" {
			return fmt.Errorf("output.postgres requires host and database")
		}
	}

	switch enabled {
	case 0:
		return fmt.Errorf("no record store enabled, enable one of output.sqlite, output.mysql or output.postgres")
	case 1:
		return nil
	default:
		return fmt.Errorf("only one record store can be enabled at a time")
	}
}

func validateNotificationSettings(settings *NotificationSettings) error {
	if !settings.Enabled {
		return nil
	}

	smtp := &settings.SMTP
	if smtp.Host == "" {
		return fmt.Errorf("notification.smtp.host is required when notifications are enabled")
	}
	if smtp.Port < 1 || smtp.Port > 65535 {
		return fmt.Errorf("notification.smtp.port must be between 1 and 65535, got %d", smtp.Port)
	}
	if _, err := mail.ParseAddress(smtp.From); err != nil {
		return fmt.Errorf("notification.smtp.from is not a valid address: %w", err)
	}

	smtp.Encryption = strings.ToLower(smtp.Encryption)
	switch smtp.Encryption {
	case "", EncryptionAuto, EncryptionNone, EncryptionExplicitTLS, EncryptionImplicitTLS:
	default:
		return fmt.Errorf("notification.smtp.encryption %q is not one of auto, none, explicittls, implicittls", smtp.Encryption)
	}

	if settings.Timeout < 0 {
		return fmt.Errorf("notification.timeout must not be negative")
	}
	return nil
}

func validateMQTTSettings(settings *MQTTSettings) error {
	if !settings.Enabled {
		return nil
	}

	if settings.Broker == "" {
		return fmt.Errorf("mqtt.broker is required when MQTT is enabled")
	}
	u, err := url.Parse(settings.Broker)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("mqtt.broker must be a URL like tcp://host:1883, got %q", settings.Broker)
	}
	if settings.Topic == "" {
		return fmt.Errorf("mqtt.topic is required when MQTT is enabled")
	}
	if settings.QoS > 2 {
		return fmt.Errorf("mqtt.qos must be 0, 1 or 2, got %d", settings.QoS)
	}
	return nil
}
