package database

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"tinbr-service/pkg/config"
)

func TestOpenSQLite(t *testing.T) {
	cfg := &config.Config{
		QuoteBackend: config.QuoteSQLite,
		DB: config.DBConfig{
			SQLitePath:   filepath.Join(t.TempDir(), "quotes.db"),
			MaxIdleConns: 1,
			MaxOpenConns: 1,
		},
	}

	db, err := OpenSQL(cfg, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, db.Exec("SELECT 1").Error)
	assert.NoError(t, CloseSQL(db))
}

func TestOpenSQLRejectsStoreBackend(t *testing.T) {
	_, err := OpenSQL(&config.Config{QuoteBackend: config.QuoteStore}, zap.NewNop())
	assert.Error(t, err)
}
