//go:build integration

package database

import (
	"context"
	"testing"
	"time"

	"github.com/franciscosanchezn/gin-food-ordering-api/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func TestPostgresMigrateAndDecimalRoundTrip(t *testing.T) {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "app",
			"POSTGRES_PASSWORD": "app",
			"POSTGRES_DB":       "food",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	db, err := InitDatabase(DatabaseConfig{
		Driver:   "postgres",
		Host:     host,
		Port:     port.Port(),
		User:     "app",
		Password: "app",
		Name:     "food",
		SSLMode:  "disable",
	})
	require.NoError(t, err)
	require.NoError(t, Migrate(db))

	category := models.Category{Name: "Burgers"}
	require.NoError(t, db.Create(&category).Error)
	food := models.Food{Name: "Cheeseburger", Price: decimal.RequireFromString("12.99"), CategoryID: category.ID, Available: true}
	require.NoError(t, db.Create(&food).Error)

	var loaded models.Food
	require.NoError(t, db.First(&loaded, "id = ?", food.ID).Error)
	assert.True(t, decimal.RequireFromString("12.99").Equal(loaded.Price))
}
