package datastore

import (
	"fmt"

	"gorm.io/driver/postgres"

	"github.com/coldchain-go/coldchain/internal/conf"
	"github.com/coldchain-go/coldchain/internal/errors"
	"github.com/coldchain-go/coldchain/internal/privacy"
)

// PostgresStore implements DataStore for PostgreSQL
type PostgresStore struct {
	DataStore
	Settings *conf.Settings
}

func postgresDSN(s *conf.PostgresSettings) string {
	sslMode := s.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		s.Host, s.Port, s.Username, s.Password, s.Database, sslMode)
}

func validatePostgresConfig(s *conf.PostgresSettings) error {
	if s.Host == "" || s.Database == "" {
		return errors.Newf("postgres host and database are required").
			Component("datastore").
			Category(errors.CategoryConfiguration).
			Context("host", s.Host).
			Context("database", s.Database).
			Build()
	}
	return nil
}

// Open connects to PostgreSQL and ensures the predictions table exists.
func (store *PostgresStore) Open() error {
	cfg := &store.Settings.Output.Postgres
	if err := validatePostgresConfig(cfg); err != nil {
		return err
	}

	db, err := openGorm(postgres.Open(postgresDSN(cfg)))
	if err != nil {
		return errors.New(privacy.WrapError(err)).
			Component("datastore").
			Category(errors.CategoryDatabase).
			Context("db_type", "PostgreSQL").
			Context("host", cfg.Host).
			Context("port", cfg.Port).
			Context("database", cfg.Database).
			Build()
	}

	store.DB = db
	return performAutoMigration(db, "PostgreSQL", fmt.Sprintf("%s:%s/%s", cfg.Host, cfg.Port, cfg.Database))
}
