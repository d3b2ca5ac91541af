package app

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coldchain-go/coldchain/internal/advisor"
	"github.com/coldchain-go/coldchain/internal/coldchain"
	"github.com/coldchain-go/coldchain/internal/conf"
)

const modelPath = "../../model/ideal_temp.yaml"

func testSettings(t *testing.T) *conf.Settings {
	t.Helper()
	return &conf.Settings{
		Main:  conf.MainSettings{Name: "test", Timezone: "UTC"},
		Model: conf.ModelSettings{Type: conf.ModelTypeLinear, Path: modelPath},
		Output: conf.OutputSettings{
			SQLite: conf.SQLiteSettings{Enabled: true, Path: filepath.Join(t.TempDir(), "predictions.db")},
		},
	}
}

func TestNewWiresAdvisor(t *testing.T) {
	t.Parallel()

	a, err := New(context.Background(), testSettings(t))
	require.NoError(t, err)
	defer a.Close()

	assert.Nil(t, a.Publisher)
	assert.False(t, a.Notifier.Enabled())
	assert.Equal(t, conf.ModelTypeLinear, a.Advisor.ModelInfo().Type)

	r := coldchain.DefaultReading()
	out, err := a.Advisor.Submit(context.Background(), advisor.Submission{Reading: r})
	require.NoError(t, err)
	assert.Equal(t, uint(1), out.Record.ID)

	n, err := a.Store.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestNewModelFailureIsFatal(t *testing.T) {
	t.Parallel()

	settings := testSettings(t)
	settings.Model.Path = filepath.Join(t.TempDir(), "missing.yaml")
	_, err := New(context.Background(), settings)
	require.Error(t, err)
}

func TestNewBadTimezone(t *testing.T) {
	t.Parallel()

	settings := testSettings(t)
	settings.Main.Timezone = "Mars/Olympus_Mons"
	_, err := New(context.Background(), settings)
	require.Error(t, err)
}

func TestNewBadMQTTBroker(t *testing.T) {
	t.Parallel()

	settings := testSettings(t)
	settings.MQTT = conf.MQTTSettings{Enabled: true, Broker: "not a url", Topic: "t"}
	_, err := New(context.Background(), settings)
	require.Error(t, err)
}

func TestCloseTwice(t *testing.T) {
	t.Parallel()

	a, err := New(context.Background(), testSettings(t))
	require.NoError(t, err)
	a.Close()
	a.Close()
}

func TestOpenStoreWithoutMetrics(t *testing.T) {
	t.Parallel()

	store, err := OpenStore(testSettings(t), nil)
	require.NoError(t, err)
	require.NoError(t, store.Close())
}
