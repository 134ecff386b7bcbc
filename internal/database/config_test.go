package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDatabaseConfigDSN(t *testing.T) {
	testCases := []struct {
		name     string
		cfg      DatabaseConfig
		expected string
	}{
		{
			name: "postgres from parts",
			cfg: DatabaseConfig{
				Driver: "postgres", Host: "db", Port: "5432", User: "app",
				Password: "pw", Name: "food", SSLMode: "disable",
			},
			expected: "host=db user=app password=pw dbname=food port=5432 sslmode=disable",
		},
		{
			name:     "postgres url wins",
			cfg:      DatabaseConfig{Driver: "postgresql", URL: "postgres://app:pw@db/food", Host: "ignored"},
			expected: "postgres://app:pw@db/food",
		},
		{
			name: "mysql from parts",
			cfg: DatabaseConfig{
				Driver: "mysql", Host: "db", Port: "3306", User: "app", Password: "pw", Name: "food",
			},
			expected: "app:pw@tcp(db:3306)/food?charset=utf8mb4&parseTime=True&loc=UTC",
		},
		{
			name:     "sqlite path",
			cfg:      DatabaseConfig{Driver: "sqlite", Path: "/tmp/food.sqlite"},
			expected: "/tmp/food.sqlite",
		},
		{
			name:     "empty driver defaults to sqlite",
			cfg:      DatabaseConfig{Path: ":memory:"},
			expected: ":memory:",
		},
		{
			name:     "unknown driver",
			cfg:      DatabaseConfig{Driver: "oracle"},
			expected: "",
		},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.cfg.DSN())
		})
	}
}

func TestDatabaseConfigStringRedactsPassword(t *testing.T) {
	cfg := DatabaseConfig{Driver: "postgres", User: "app", Password: "hunter2"}
	assert.NotContains(t, cfg.String(), "hunter2")
	assert.Contains(t, cfg.String(), "[REDACTED]")
}

func TestInitDatabaseUnsupportedDriver(t *testing.T) {
	db, err := InitDatabase(DatabaseConfig{Driver: "oracle"})
	assert.Error(t, err)
	assert.Nil(t, db)
}

func TestInitDatabaseSQLiteAndMigrate(t *testing.T) {
	db, err := InitDatabase(DatabaseConfig{Driver: "sqlite", Path: ":memory:"})
	require.NoError(t, err)

	require.NoError(t, Migrate(db))

	for _, table := range []string{"restaurants", "orders", "order_items", "deliveries", "chats", "messages", "outbox_events", "oauth_clients"} {
		assert.True(t, db.Migrator().HasTable(table), table)
	}
}
