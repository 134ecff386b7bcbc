package services

import (
	"io"
	"testing"

	"github.com/franciscosanchezn/gin-food-ordering-api/internal/models"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
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

var superAdmin = Scope{UserID: "u-super", Username: "danger", Role: models.RoleSuperAdmin}

func restaurantAdmin(restaurantID string) Scope {
	return Scope{UserID: "u-" + restaurantID, Username: "resto", Role: models.RoleRestaurantAdmin, RestaurantID: restaurantID}
}

type fixture struct {
	restaurant *models.Restaurant
	category   *models.Category
	burger     *models.Food
	fries      *models.Food
}

func createRestaurant(t *testing.T, db *gorm.DB, name string) *models.Restaurant {
	r := &models.Restaurant{Name: name, Location: "City Center", Enabled: true}
	require.NoError(t, db.Create(r).Error)
	return r
}

func createFood(t *testing.T, db *gorm.DB, restaurant *models.Restaurant, category *models.Category, name, price string) *models.Food {
	f := &models.Food{
		Name:         name,
		Price:        decimal.RequireFromString(price),
		Available:    true,
		CategoryID:   category.ID,
		RestaurantID: &restaurant.ID,
	}
	require.NoError(t, db.Create(f).Error)
	return f
}

// seedMenu creates one restaurant with a burger at 12.99 and fries at 4.99
func seedMenu(t *testing.T, db *gorm.DB) fixture {
	restaurant := createRestaurant(t, db, "Burger Palace")
	category := &models.Category{Name: "Burgers", RestaurantID: &restaurant.ID}
	require.NoError(t, db.Create(category).Error)

	return fixture{
		restaurant: restaurant,
		category:   category,
		burger:     createFood(t, db, restaurant, category, "Cheeseburger", "12.99"),
		fries:      createFood(t, db, restaurant, category, "Fries", "4.99"),
	}
}

func countRows(t *testing.T, db *gorm.DB, model interface{}) int64 {
	var n int64
	require.NoError(t, db.Model(model).Count(&n).Error)
	return n
}
