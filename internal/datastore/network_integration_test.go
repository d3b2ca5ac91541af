//go:build integration

// Integration tests for the MySQL and PostgreSQL backends. They start the
// databases in containers and are skipped when no Docker provider is
// available.
//
// Run with: go test -tags=integration ./internal/datastore/...
package datastore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcmysql "github.com/testcontainers/testcontainers-go/modules/mysql"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/coldchain-go/coldchain/internal/coldchain"
	"github.com/coldchain-go/coldchain/internal/conf"
)

const (
	testDBName     = "coldchain_test"
	testDBUser     = "coldchain"
	testDBPassword = "coldchain-secret"
)

func startMySQL(t *testing.T) *conf.Settings {
	t.Helper()
	testcontainers.SkipIfProviderIsNotHealthy(t)
	ctx := context.Background()

	container, err := tcmysql.Run(ctx, "mysql:8.0",
		tcmysql.WithDatabase(testDBName),
		tcmysql.WithUsername(testDBUser),
		tcmysql.WithPassword(testDBPassword),
	)
	t.Cleanup(func() { _ = testcontainers.TerminateContainer(container) })
	require.NoError(t, err)

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "3306/tcp")
	require.NoError(t, err)

	return &conf.Settings{Output: conf.OutputSettings{MySQL: conf.MySQLSettings{
		Enabled:  true,
		Username: testDBUser,
		Password: testDBPassword,
		Database: testDBName,
		Host:     host,
		Port:     port.Port(),
	}}}
}

func startPostgres(t *testing.T) *conf.Settings {
	t.Helper()
	testcontainers.SkipIfProviderIsNotHealthy(t)
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase(testDBName),
		tcpostgres.WithUsername(testDBUser),
		tcpostgres.WithPassword(testDBPassword),
		tcpostgres.BasicWaitStrategies(),
	)
	t.Cleanup(func() { _ = testcontainers.TerminateContainer(container) })
	require.NoError(t, err)

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)

	return &conf.Settings{Output: conf.OutputSettings{Postgres: conf.PostgresSettings{
		Enabled:  true,
		Username: testDBUser,
		Password: testDBPassword,
		Database: testDBName,
		Host:     host,
		Port:     port.Port(),
		SSLMode:  "disable",
	}}}
}

// exerciseBackend runs the store lifecycle against a live database: open
// creates the table, appends come back in order, and a second open keeps
// the rows.
func exerciseBackend(t *testing.T, settings *conf.Settings) {
	t.Helper()
	ctx := context.Background()

	store, err := New(settings, nil)
	require.NoError(t, err)
	require.NoError(t, store.Open())

	base := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
	products := []coldchain.Product{coldchain.ProductMilk, coldchain.ProductCheese, coldchain.ProductIceCream}
	temps := []float64{1.5, 11.25, -20.5}
	for i, p := range products {
		require.NoError(t, store.Append(ctx, samplePrediction(t, p, temps[i], base.Add(time.Duration(i)*time.Minute))))
	}
	require.NoError(t, store.Close())

	reopened, err := New(settings, nil)
	require.NoError(t, err)
	require.NoError(t, reopened.Open())
	t.Cleanup(func() { _ = reopened.Close() })

	rows, err := reopened.ReadAll(ctx)
	require.NoError(t, err)
	require.Len(t, rows, len(products))
	for i, row := range rows {
		assert.Equal(t, products[i].String(), row.ProductType)
		assert.InDelta(t, temps[i], row.PredictedTemp, 1e-9)
		assert.Equal(t, base.Add(time.Duration(i)*time.Minute).Format(coldchain.TimestampLayout), row.Timestamp)
	}
	assert.Equal(t, "Yes", rows[0].AlertSent)
	assert.Equal(t, "No", rows[2].AlertSent)

	n, err := reopened.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(len(products)), n)
}

func TestMySQLStoreIntegration(t *testing.T) {
	exerciseBackend(t, startMySQL(t))
}

func TestPostgresStoreIntegration(t *testing.T) {
	exerciseBackend(t, startPostgres(t))
}
