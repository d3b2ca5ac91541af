package datastore

import (
	"fmt"

	"gorm.io/driver/mysql"

	"github.com/coldchain-go/coldchain/internal/conf"
	"github.com/coldchain-go/coldchain/internal/errors"
	"github.com/coldchain-go/coldchain/internal/privacy"
)

// MySQLStore implements DataStore for MySQL
type MySQLStore struct {
	DataStore
	Settings *conf.Settings
}

func mysqlDSN(s *conf.MySQLSettings) string {
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		s.Username, s.Password, s.Host, s.Port, s.Database)
}

func validateMySQLConfig(s *conf.MySQLSettings) error {
	if s.Host == "" || s.Database == "" {
		return errors.Newf("mysql host and database are required").
			Component("datastore").
			Category(errors.CategoryConfiguration).
			Context("host", s.Host).
			Context("database", s.Database).
			Build()
	}
	return nil
}

// Open connects to MySQL and ensures the predictions table exists.
func (store *MySQLStore) Open() error {
	cfg := &store.Settings.Output.MySQL
	if err := validateMySQLConfig(cfg); err != nil {
		return err
	}

	db, err := openGorm(mysql.Open(mysqlDSN(cfg)))
	if err != nil {
		return errors.New(privacy.WrapError(err)).
			Component("datastore").
			Category(errors.CategoryDatabase).
			Context("db_type", "MySQL").
			Context("host", cfg.Host).
			Context("port", cfg.Port).
			Context("database", cfg.Database).
			Build()
	}

	store.DB = db
	return performAutoMigration(db, "MySQL", fmt.Sprintf("%s:%s/%s", cfg.Host, cfg.Port, cfg.Database))
}
