package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/franciscosanchezn/gin-food-ordering-api/internal/cache"
	"github.com/franciscosanchezn/gin-food-ordering-api/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func boolPtr(b bool) *bool { return &b }

func TestListFoodsFilters(t *testing.T) {
	db := setupTestDB(t)
	f := seedMenu(t, db)
	require.NoError(t, db.Model(f.fries).Update("available", false).Error)
	other := createRestaurant(t, db, "Pizza Express")
	createFood(t, db, other, f.category, "Margherita", "9.50")
	svc := NewCatalogService(db, cache.NewMemory(), 0, quietLogger())
	ctx := context.Background()

	available, err := svc.ListFoods(ctx, FoodFilter{})
	require.NoError(t, err)
	assert.Len(t, available, 2)

	mine, err := svc.ListFoods(ctx, FoodFilter{RestaurantID: f.restaurant.ID})
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "Cheeseburger", mine[0].Name)
	require.NotNil(t, mine[0].Category)
	assert.Equal(t, "Burgers", mine[0].Category.Name)

	hidden, err := svc.ListFoods(ctx, FoodFilter{Available: boolPtr(false)})
	require.NoError(t, err)
	require.Len(t, hidden, 1)
	assert.Equal(t, "Fries", hidden[0].Name)

	none, err := svc.ListFoods(ctx, FoodFilter{CategoryID: "missing"})
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestCreateFoodValidationAndScope(t *testing.T) {
	db := setupTestDB(t)
	f := seedMenu(t, db)
	svc := NewCatalogService(db, cache.NewMemory(), 0, quietLogger())
	ctx := context.Background()
	scope := restaurantAdmin(f.restaurant.ID)

	_, err := svc.CreateFood(ctx, scope, FoodInput{Name: "Shake", CategoryID: f.category.ID})
	assert.True(t, errors.Is(err, ErrValidation), "zero price")

	_, err = svc.CreateFood(ctx, scope, FoodInput{Price: decimal.NewFromInt(3), CategoryID: f.category.ID})
	assert.True(t, errors.Is(err, ErrValidation), "missing name")

	_, err = svc.CreateFood(ctx, restaurantAdmin("other"), FoodInput{Name: "Shake", Price: decimal.NewFromInt(3), CategoryID: f.category.ID})
	assert.True(t, errors.Is(err, ErrNotFound), "foreign category")

	food, err := svc.CreateFood(ctx, scope, FoodInput{Name: " Shake ", Price: decimal.RequireFromString("3.499"), CategoryID: f.category.ID})
	require.NoError(t, err)
	assert.Equal(t, "Shake", food.Name)
	assert.Equal(t, "3.50", food.Price.StringFixed(2))
	assert.True(t, food.Available)
	require.NotNil(t, food.RestaurantID)
	assert.Equal(t, f.restaurant.ID, *food.RestaurantID)
}

func TestUpdateAndDeleteFoodScoped(t *testing.T) {
	db := setupTestDB(t)
	f := seedMenu(t, db)
	svc := NewCatalogService(db, cache.NewMemory(), 0, quietLogger())
	ctx := context.Background()
	in := FoodInput{Name: "Double Cheeseburger", Price: decimal.RequireFromString("15.49"), CategoryID: f.category.ID, Available: boolPtr(false)}

	_, err := svc.UpdateFood(ctx, restaurantAdmin("other"), f.burger.ID, in)
	assert.True(t, errors.Is(err, ErrNotFound))

	updated, err := svc.UpdateFood(ctx, restaurantAdmin(f.restaurant.ID), f.burger.ID, in)
	require.NoError(t, err)
	assert.Equal(t, "Double Cheeseburger", updated.Name)
	assert.Equal(t, "15.49", updated.Price.StringFixed(2))
	assert.False(t, updated.Available)

	assert.True(t, errors.Is(svc.DeleteFood(ctx, restaurantAdmin("other"), f.fries.ID), ErrNotFound))
	require.NoError(t, svc.DeleteFood(ctx, superAdmin, f.fries.ID))

	_, err = svc.GetFood(ctx, f.fries.ID)
	assert.True(t, errors.Is(err, ErrNotFound))

	var raw models.Food
	require.NoError(t, db.Unscoped().First(&raw, "id = ?", f.fries.ID).Error)
	assert.True(t, raw.DeletedAt.Valid, "food is soft-deleted")
}

func TestMenuCacheInvalidatedOnWrite(t *testing.T) {
	db := setupTestDB(t)
	f := seedMenu(t, db)
	svc := NewCatalogService(db, cache.NewMemory(), time.Minute, quietLogger())
	ctx := context.Background()
	filter := FoodFilter{RestaurantID: f.restaurant.ID}

	before, err := svc.ListFoods(ctx, filter)
	require.NoError(t, err)
	require.Len(t, before, 2)

	// Writes that bypass the service are not seen until the entry expires
	require.NoError(t, db.Model(f.fries).Update("available", false).Error)
	cached, err := svc.ListFoods(ctx, filter)
	require.NoError(t, err)
	assert.Len(t, cached, 2)

	_, err = svc.CreateFood(ctx, superAdmin, FoodInput{Name: "Onion Rings", Price: decimal.NewFromInt(4), CategoryID: f.category.ID})
	require.NoError(t, err)

	after, err := svc.ListFoods(ctx, filter)
	require.NoError(t, err)
	assert.Len(t, after, 1, "fries hidden, rings belong to no restaurant")
}

func TestCategoryLifecycle(t *testing.T) {
	db := setupTestDB(t)
	f := seedMenu(t, db)
	svc := NewCatalogService(db, cache.NewMemory(), 0, quietLogger())
	ctx := context.Background()
	scope := restaurantAdmin(f.restaurant.ID)

	_, err := svc.CreateCategory(ctx, scope, CategoryInput{Name: " "})
	assert.True(t, errors.Is(err, ErrValidation))

	drinks, err := svc.CreateCategory(ctx, scope, CategoryInput{Name: "Drinks"})
	require.NoError(t, err)
	require.NotNil(t, drinks.RestaurantID)

	categories, err := svc.ListCategories(ctx, f.restaurant.ID)
	require.NoError(t, err)
	require.Len(t, categories, 2)
	assert.Equal(t, "Burgers", categories[0].Name)
	assert.Equal(t, "Drinks", categories[1].Name)

	renamed, err := svc.UpdateCategory(ctx, scope, drinks.ID, CategoryInput{Name: "Beverages"})
	require.NoError(t, err)
	assert.Equal(t, "Beverages", renamed.Name)

	_, err = svc.UpdateCategory(ctx, restaurantAdmin("other"), drinks.ID, CategoryInput{Name: "Nope"})
	assert.True(t, errors.Is(err, ErrNotFound))

	err = svc.DeleteCategory(ctx, scope, f.category.ID)
	assert.True(t, errors.Is(err, ErrConflict), "category with foods")

	require.NoError(t, svc.DeleteCategory(ctx, scope, drinks.ID))
	categories, err = svc.ListCategories(ctx, "")
	require.NoError(t, err)
	assert.Len(t, categories, 1)
}
