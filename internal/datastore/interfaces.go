// interfaces.go: this code defines the interface for the record store operations
package datastore

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/coldchain-go/coldchain/internal/conf"
	"github.com/coldchain-go/coldchain/internal/errors"
	"github.com/coldchain-go/coldchain/internal/logger"
	"github.com/coldchain-go/coldchain/internal/observability/metrics"
)

// slowStatementThreshold raises statements slower than this to WARN.
const slowStatementThreshold = 200 * time.Millisecond

// Interface abstracts the underlying database implementation. The store is
// append-only: there is no update or delete path.
type Interface interface {
	Open() error
	Append(ctx context.Context, p *Prediction) error
	ReadAll(ctx context.Context) ([]Prediction, error)
	Count(ctx context.Context) (int64, error)
	Close() error
}

// DataStore implements the record operations shared by every GORM backend.
type DataStore struct {
	DB      *gorm.DB // GORM database instance
	metrics *metrics.DatastoreMetrics
}

// New creates the store selected by the output settings. Open must be called
// before use. m may be nil.
func New(settings *conf.Settings, m *metrics.DatastoreMetrics) (Interface, error) {
	switch {
	case settings.Output.SQLite.Enabled:
		return &SQLiteStore{DataStore: DataStore{metrics: m}, Settings: settings}, nil
	case settings.Output.MySQL.Enabled:
		return &MySQLStore{DataStore: DataStore{metrics: m}, Settings: settings}, nil
	case settings.Output.Postgres.Enabled:
		return &PostgresStore{DataStore: DataStore{metrics: m}, Settings: settings}, nil
	default:
		return nil, errors.Newf("no record store enabled").
			Component("datastore").
			Category(errors.CategoryConfiguration).
			Context("hint", "enable one of output.sqlite, output.mysql or output.postgres").
			Build()
	}
}

var errNotOpen = errors.Newf("database connection is not initialized").
	Component("datastore").
	Category(errors.CategoryState).
	Build()

// Append inserts one record. On success p.ID holds the assigned identity.
func (ds *DataStore) Append(ctx context.Context, p *Prediction) error {
	if ds.DB == nil {
		return errNotOpen
	}
	if p == nil {
		return errors.Newf("nil prediction record").
			Component("datastore").
			Category(errors.CategoryValidation).
			Build()
	}

	start := time.Now()
	err := ds.DB.WithContext(ctx).Create(p).Error
	ds.metrics.RecordOperation(metrics.OpAppend, err, time.Since(start))
	if err != nil {
		return errors.New(err).
			Component("datastore").
			Category(errors.CategoryDatabase).
			Context("operation", "append").
			Context("product_type", p.ProductType).
			Timing("append", time.Since(start)).
			Build()
	}

	GetLogger().Debug("prediction stored",
		logger.Int64("id", int64(p.ID)),
		logger.String("product_type", p.ProductType),
		logger.Float64("predicted_temp", p.PredictedTemp),
		logger.String("alert_sent", p.AlertSent))
	return nil
}

// ReadAll returns every record in insertion order.
func (ds *DataStore) ReadAll(ctx context.Context) ([]Prediction, error) {
	if ds.DB == nil {
		return nil, errNotOpen
	}

	start := time.Now()
	var rows []Prediction
	err := ds.DB.WithContext(ctx).Order("id ASC").Find(&rows).Error
	ds.metrics.RecordOperation(metrics.OpReadAll, err, time.Since(start))
	if err != nil {
		return nil, errors.New(err).
			Component("datastore").
			Category(errors.CategoryDatabase).
			Context("operation", "read_all").
			Build()
	}
	ds.metrics.SetRecordCount(int64(len(rows)))
	return rows, nil
}

// Count returns the number of stored records.
func (ds *DataStore) Count(ctx context.Context) (int64, error) {
	if ds.DB == nil {
		return 0, errNotOpen
	}

	start := time.Now()
	var n int64
	err := ds.DB.WithContext(ctx).Model(&Prediction{}).Count(&n).Error
	ds.metrics.RecordOperation(metrics.OpCount, err, time.Since(start))
	if err != nil {
		return 0, errors.New(err).
			Component("datastore").
			Category(errors.CategoryDatabase).
			Context("operation", "count").
			Build()
	}
	ds.metrics.SetRecordCount(n)
	return n, nil
}

// Close closes the underlying SQL connection pool.
func (ds *DataStore) Close() error {
	if ds.DB == nil {
		return errNotOpen
	}

	sqlDB, err := ds.DB.DB()
	if err != nil {
		return errors.New(err).
			Component("datastore").
			Category(errors.CategoryDatabase).
			Context("operation", "close").
			Build()
	}
	if err := sqlDB.Close(); err != nil {
		return errors.New(err).
			Component("datastore").
			Category(errors.CategoryDatabase).
			Context("operation", "close").
			Build()
	}
	ds.DB = nil
	return nil
}

// openGorm opens a GORM handle with SQL logged through the datastore module logger.
func openGorm(dialector gorm.Dialector) (*gorm.DB, error) {
	return gorm.Open(dialector, &gorm.Config{
		Logger: logger.NewGormLoggerAdapter(GetLogger(), slowStatementThreshold),
	})
}

// performAutoMigration creates the predictions table if it is missing.
func performAutoMigration(db *gorm.DB, dbType, connectionInfo string) error {
	start := time.Now()
	if err := db.AutoMigrate(&Prediction{}); err != nil {
		return errors.New(err).
			Component("datastore").
			Category(errors.CategoryDatabase).
			Context("db_type", dbType).
			Context("operation", "auto_migrate").
			Build()
	}

	GetLogger().Info("database ready",
		logger.String("db_type", dbType),
		logger.String("connection", connectionInfo),
		logger.Duration("migration_duration", time.Since(start)))
	return nil
}
