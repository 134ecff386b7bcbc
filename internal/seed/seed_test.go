package seed

import (
	"context"
	"io"
	"testing"

	"github.com/franciscosanchezn/gin-food-ordering-api/internal/models"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:                                   logger.Default.LogMode(logger.Silent),
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(models.All()...))
	return db
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

const smallCatalog = `
users:
  - username: boss
    password: pw
    role: SUPER_ADMIN
restaurants:
  - name: Taco Stand
    location: Pier 4
    admin:
      username: tacos
      password: pw
    categories:
      - name: Tacos
        foods:
          - name: Al Pastor
            price: "3.50"
          - name: Fish Taco
            price: "4.25"
            unavailable: true
`

func TestDefaultCatalogParses(t *testing.T) {
	catalog, err := Default()
	require.NoError(t, err)

	require.Len(t, catalog.Restaurants, 2)
	assert.Equal(t, "Burger Palace", catalog.Restaurants[0].Name)
	assert.Equal(t, "resto1", catalog.Restaurants[0].Admin.Username)
	require.NotNil(t, catalog.Settings)
	assert.Equal(t, "USD", catalog.Settings.Currency)
}

func TestParseRejectsInvalidCatalogs(t *testing.T) {
	testCases := []struct {
		name string
		doc  string
	}{
		{name: "bad price", doc: "restaurants:\n  - name: A\n    location: B\n    categories:\n      - name: C\n        foods:\n          - name: D\n            price: free\n"},
		{name: "negative price", doc: "restaurants:\n  - name: A\n    location: B\n    categories:\n      - name: C\n        foods:\n          - name: D\n            price: \"-1\"\n"},
		{name: "unknown role", doc: "users:\n  - username: a\n    password: b\n    role: OWNER\n"},
		{name: "missing location", doc: "restaurants:\n  - name: A\n"},
		{name: "not yaml", doc: "restaurants: [\n"},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			assert.Error(t, err)
		})
	}
}

func TestApply(t *testing.T) {
	db := setupTestDB(t)
	catalog, err := Parse([]byte(smallCatalog))
	require.NoError(t, err)

	require.NoError(t, Apply(context.Background(), db, catalog, quietLogger()))

	var restaurant models.Restaurant
	require.NoError(t, db.First(&restaurant, "name = ?", "Taco Stand").Error)
	assert.True(t, restaurant.Enabled)
	require.NotNil(t, restaurant.AdminID)

	var admin models.User
	require.NoError(t, db.First(&admin, "id = ?", *restaurant.AdminID).Error)
	assert.Equal(t, "tacos", admin.Username)
	assert.Equal(t, models.RoleRestaurantAdmin, admin.Role)
	assert.True(t, admin.CheckPassword("pw"))

	var foods []models.Food
	require.NoError(t, db.Order("name").Find(&foods).Error)
	require.Len(t, foods, 2)
	assert.Equal(t, "3.5", foods[0].Price.String())
	assert.True(t, foods[0].Available)
	assert.False(t, foods[1].Available)
	assert.Equal(t, restaurant.ID, *foods[0].RestaurantID)

	var users int64
	db.Model(&models.User{}).Count(&users)
	assert.Equal(t, int64(2), users)
}

func TestApplyOnlyOnce(t *testing.T) {
	db := setupTestDB(t)
	catalog, err := Parse([]byte(smallCatalog))
	require.NoError(t, err)

	require.NoError(t, Apply(context.Background(), db, catalog, quietLogger()))
	err = Apply(context.Background(), db, catalog, quietLogger())

	assert.ErrorIs(t, err, ErrAlreadySeeded)
	var restaurants int64
	db.Model(&models.Restaurant{}).Count(&restaurants)
	assert.Equal(t, int64(1), restaurants)
}

func TestApplyReusesExistingUser(t *testing.T) {
	db := setupTestDB(t)
	existing := &models.User{Username: "tacos", Role: models.RoleRestaurantAdmin}
	require.NoError(t, existing.SetPassword("kept"))
	require.NoError(t, db.Create(existing).Error)

	catalog, err := Parse([]byte(smallCatalog))
	require.NoError(t, err)
	require.NoError(t, Apply(context.Background(), db, catalog, quietLogger()))

	var restaurant models.Restaurant
	require.NoError(t, db.First(&restaurant).Error)
	assert.Equal(t, existing.ID, *restaurant.AdminID)

	var admin models.User
	require.NoError(t, db.First(&admin, "username = ?", "tacos").Error)
	assert.True(t, admin.CheckPassword("kept"))
}

func TestApplyWritesSettingsOnce(t *testing.T) {
	db := setupTestDB(t)
	catalog, err := Default()
	require.NoError(t, err)

	require.NoError(t, Apply(context.Background(), db, catalog, quietLogger()))

	var settings []models.Settings
	require.NoError(t, db.Find(&settings).Error)
	require.Len(t, settings, 1)
	assert.Equal(t, "Food Court", settings[0].StoreName)
	assert.Equal(t, "10:00-22:00", settings[0].OpeningHours["weekdays"])
}
