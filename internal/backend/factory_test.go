package backend

import (
	"context"
	"path/filepath"
	"testing"

	"cashflow/internal/config"
	"cashflow/internal/ledger/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromAppConfig(t *testing.T) {
	cfg := &config.Config{
		DataBackend:    "sqlite",
		SQLiteDBPath:   "/tmp/x.db",
		AMQPURL:        "amqp://localhost/",
		AMQPExchange:   "cashflow",
		AMQPQueue:      "expense_recorded",
		AMQPAlertQueue: "threshold_breached",
		DataDir:        "seed",
	}

	bc, err := FromAppConfig(cfg)
	require.NoError(t, err)
	assert.Equal(t, SQLiteBackend, bc.Type)
	assert.Equal(t, "/tmp/x.db", bc.SQLiteDBPath)
	assert.Equal(t, "threshold_breached", bc.AMQPAlertQueue)
	assert.Equal(t, "seed", bc.DataDirectory)

	_, err = FromAppConfig(&config.Config{DataBackend: "sheets"})
	assert.Error(t, err)

	_, err = FromAppConfig(nil)
	assert.Error(t, err)
}

func TestConfig_Validate(t *testing.T) {
	assert.NoError(t, Config{Type: MemoryBackend}.Validate())
	assert.Error(t, Config{Type: SQLiteBackend}.Validate())
	assert.Error(t, Config{Type: "sheets"}.Validate())
	assert.Error(t, Config{Type: MemoryBackend, AMQPURL: "amqp://x/"}.Validate())
}

func TestFactory_MemoryBackend(t *testing.T) {
	res, err := NewFactory(nil).CreateBackend(context.Background(), Config{
		Type:          MemoryBackend,
		DataDirectory: t.TempDir(),
	})
	require.NoError(t, err)
	assert.Nil(t, res.AMQP)
	assert.Nil(t, res.Cleanup)
	assert.IsType(t, &memory.Store{}, res.Backend)
	assert.NoError(t, res.Ping(context.Background()))
}

func TestFactory_SQLiteBackend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cashflow.db")
	res, err := NewFactory(nil).CreateBackend(context.Background(), Config{
		Type:         SQLiteBackend,
		SQLiteDBPath: path,
	})
	require.NoError(t, err)
	require.NotNil(t, res.Cleanup)
	defer res.Cleanup()

	assert.NoError(t, res.Ping(context.Background()))

	u, err := res.Backend.CreateUser(context.Background(), "alice")
	require.NoError(t, err)
	ok, err := res.Backend.UserExists(context.Background(), u.ID)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestGetBackendTypeStrings(t *testing.T) {
	assert.Equal(t, []string{"sqlite", "memory"}, GetBackendTypeStrings())
}
