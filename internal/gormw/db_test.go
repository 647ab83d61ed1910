package gormw

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gormlog "gorm.io/gorm/logger"
)

func TestOpen_MemoryDSNSingleConnection(t *testing.T) {
	// A second pooled connection to an in-memory sqlite DSN would get
	// its own empty database, so the pool must stay at one connection.
	tests := []struct {
		name string
		dsn  string
	}{
		{"default", ""},
		{"explicit memory", ":memory:"},
		{"file memory", "file::memory:"},
		{"mode memory", "file:test?mode=memory"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, err := Open(&Config{
				DSN:          tt.dsn,
				MaxOpenConns: 10,
				LogLevel:     gormlog.Silent,
			})
			require.NoError(t, err)

			sqlDB, err := db.DB.DB()
			require.NoError(t, err)
			assert.Equal(t, 1, sqlDB.Stats().MaxOpenConnections)
		})
	}
}

func TestOpen_FileDSNKeepsConfiguredPool(t *testing.T) {
	db, err := Open(&Config{
		DSN:          t.TempDir() + "/evermore.db",
		MaxOpenConns: 10,
		LogLevel:     gormlog.Silent,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB.DB()
	require.NoError(t, err)
	assert.Equal(t, 10, sqlDB.Stats().MaxOpenConnections)
}
