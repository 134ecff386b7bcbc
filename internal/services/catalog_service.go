package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/franciscosanchezn/gin-food-ordering-api/internal/cache"
	"github.com/franciscosanchezn/gin-food-ordering-api/internal/models"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const menuCachePrefix = "menu:"

// FoodFilter narrows public food listings. Nil Available returns only available foods.
type FoodFilter struct {
	RestaurantID string
	CategoryID   string
	Available    *bool
}

func (f FoodFilter) cacheKey() string {
	available := "true"
	if f.Available != nil {
		available = fmt.Sprint(*f.Available)
	}
	return fmt.Sprintf("%s%s:%s:%s", menuCachePrefix, f.RestaurantID, f.CategoryID, available)
}

type FoodInput struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Image       string          `json:"image"`
	Available   *bool           `json:"available"`
	CategoryID  string          `json:"categoryId"`
	PrepTime    *int            `json:"prepTime"`
}

type CategoryInput struct {
	Name string `json:"name"`
}

// CatalogService manages categories and foods and serves cached menus
type CatalogService interface {
	ListFoods(ctx context.Context, filter FoodFilter) ([]models.Food, error)
	GetFood(ctx context.Context, id string) (*models.Food, error)
	CreateFood(ctx context.Context, scope Scope, in FoodInput) (*models.Food, error)
	UpdateFood(ctx context.Context, scope Scope, id string, in FoodInput) (*models.Food, error)
	DeleteFood(ctx context.Context, scope Scope, id string) error

	ListCategories(ctx context.Context, restaurantID string) ([]models.Category, error)
	CreateCategory(ctx context.Context, scope Scope, in CategoryInput) (*models.Category, error)
	UpdateCategory(ctx context.Context, scope Scope, id string, in CategoryInput) (*models.Category, error)
	DeleteCategory(ctx context.Context, scope Scope, id string) error
}

type catalogService struct {
	db    *gorm.DB
	cache cache.Cache
	ttl   time.Duration
	log   *logrus.Logger
}

func NewCatalogService(db *gorm.DB, c cache.Cache, ttl time.Duration, log *logrus.Logger) CatalogService {
	return &catalogService{db: db, cache: c, ttl: ttl, log: log}
}

func (s *catalogService) invalidateMenus(ctx context.Context) {
	if err := s.cache.DeletePrefix(ctx, menuCachePrefix); err != nil {
		s.log.WithError(err).Warn("Menu cache invalidation failed")
	}
}

func (s *catalogService) ListFoods(ctx context.Context, filter FoodFilter) ([]models.Food, error) {
	key := filter.cacheKey()
	if s.ttl > 0 {
		var cached []models.Food
		if found, err := s.cache.Get(ctx, key, &cached); err == nil && found {
			return cached, nil
		}
	}

	q := s.db.WithContext(ctx).Preload("Category")
	if filter.RestaurantID != "" {
		q = q.Where("restaurant_id = ?", filter.RestaurantID)
	}
	if filter.CategoryID != "" {
		q = q.Where("category_id = ?", filter.CategoryID)
	}
	available := true
	if filter.Available != nil {
		available = *filter.Available
	}
	q = q.Where("available = ?", available)

	foods := []models.Food{}
	if err := q.Order("created_at DESC").Find(&foods).Error; err != nil {
		return nil, err
	}

	if s.ttl > 0 {
		if err := s.cache.Set(ctx, key, foods, s.ttl); err != nil {
			s.log.WithError(err).Warn("Menu cache write failed")
		}
	}
	return foods, nil
}

func (s *catalogService) GetFood(ctx context.Context, id string) (*models.Food, error) {
	var food models.Food
	if err := s.db.WithContext(ctx).Preload("Category").First(&food, "id = ?", id).Error; err != nil {
		return nil, notFoundOr(err, models.ErrFoodNotFound, "food not found")
	}
	return &food, nil
}

func validateFood(in FoodInput) error {
	if strings.TrimSpace(in.Name) == "" || strings.TrimSpace(in.CategoryID) == "" {
		return validationError(models.ErrMissingFields, "name, price and categoryId are required")
	}
	if !in.Price.IsPositive() {
		return validationError(models.ErrValidationFailed, "price must be greater than zero")
	}
	if in.PrepTime != nil && *in.PrepTime < 0 {
		return validationError(models.ErrValidationFailed, "prepTime cannot be negative")
	}
	return nil
}

// checkCategory verifies the category is visible to the caller: global or owned by the caller's restaurant
func (s *catalogService) checkCategory(tx *gorm.DB, scope Scope, categoryID string) error {
	q := tx.Model(&models.Category{}).Where("id = ?", categoryID)
	if !scope.Global() {
		q = q.Where("restaurant_id IS NULL OR restaurant_id = ?", scope.RestaurantID)
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return notFoundError(models.ErrCategoryNotFound, "category not found")
	}
	return nil
}

func (s *catalogService) CreateFood(ctx context.Context, scope Scope, in FoodInput) (*models.Food, error) {
	if err := validateFood(in); err != nil {
		return nil, err
	}
	db := s.db.WithContext(ctx)
	if err := s.checkCategory(db, scope, in.CategoryID); err != nil {
		return nil, err
	}

	food := models.Food{
		Name:         strings.TrimSpace(in.Name),
		Description:  in.Description,
		Price:        in.Price.Round(2),
		Image:        in.Image,
		Available:    in.Available == nil || *in.Available,
		CategoryID:   in.CategoryID,
		PrepTime:     in.PrepTime,
		RestaurantID: scope.restaurantPtr(),
	}
	if err := db.Create(&food).Error; err != nil {
		return nil, fmt.Errorf("create food: %w", err)
	}
	s.invalidateMenus(ctx)
	return s.GetFood(ctx, food.ID)
}

func (s *catalogService) scopedFood(db *gorm.DB, scope Scope, id string) (*models.Food, error) {
	var food models.Food
	if err := scope.apply(db, "restaurant_id").First(&food, "id = ?", id).Error; err != nil {
		return nil, notFoundOr(err, models.ErrFoodNotFound, "food not found")
	}
	return &food, nil
}

func (s *catalogService) UpdateFood(ctx context.Context, scope Scope, id string, in FoodInput) (*models.Food, error) {
	if err := validateFood(in); err != nil {
		return nil, err
	}
	db := s.db.WithContext(ctx)
	food, err := s.scopedFood(db, scope, id)
	if err != nil {
		return nil, err
	}
	if err := s.checkCategory(db, scope, in.CategoryID); err != nil {
		return nil, err
	}

	updates := map[string]interface{}{
		"name":        strings.TrimSpace(in.Name),
		"description": in.Description,
		"price":       in.Price.Round(2),
		"image":       in.Image,
		"category_id": in.CategoryID,
		"prep_time":   in.PrepTime,
	}
	if in.Available != nil {
		updates["available"] = *in.Available
	}
	if err := db.Model(food).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("update food: %w", err)
	}
	s.invalidateMenus(ctx)
	return s.GetFood(ctx, id)
}

// DeleteFood soft-deletes so existing order items keep resolving
func (s *catalogService) DeleteFood(ctx context.Context, scope Scope, id string) error {
	db := s.db.WithContext(ctx)
	food, err := s.scopedFood(db, scope, id)
	if err != nil {
		return err
	}
	if err := db.Delete(food).Error; err != nil {
		return fmt.Errorf("delete food: %w", err)
	}
	s.invalidateMenus(ctx)
	return nil
}

func (s *catalogService) ListCategories(ctx context.Context, restaurantID string) ([]models.Category, error) {
	q := s.db.WithContext(ctx)
	if restaurantID != "" {
		q = q.Where("restaurant_id = ?", restaurantID)
	}
	categories := []models.Category{}
	if err := q.Order("name ASC").Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

func (s *catalogService) CreateCategory(ctx context.Context, scope Scope, in CategoryInput) (*models.Category, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, validationError(models.ErrMissingFields, "name is required")
	}
	category := models.Category{Name: name, RestaurantID: scope.restaurantPtr()}
	if err := s.db.WithContext(ctx).Create(&category).Error; err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}
	s.invalidateMenus(ctx)
	return &category, nil
}

func (s *catalogService) scopedCategory(db *gorm.DB, scope Scope, id string) (*models.Category, error) {
	var category models.Category
	if err := scope.apply(db, "restaurant_id").First(&category, "id = ?", id).Error; err != nil {
		return nil, notFoundOr(err, models.ErrCategoryNotFound, "category not found")
	}
	return &category, nil
}

func (s *catalogService) UpdateCategory(ctx context.Context, scope Scope, id string, in CategoryInput) (*models.Category, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, validationError(models.ErrMissingFields, "name is required")
	}
	db := s.db.WithContext(ctx)
	category, err := s.scopedCategory(db, scope, id)
	if err != nil {
		return nil, err
	}
	if err := db.Model(category).Update("name", name).Error; err != nil {
		return nil, fmt.Errorf("update category: %w", err)
	}
	category.Name = name
	s.invalidateMenus(ctx)
	return category, nil
}

// DeleteCategory refuses while live foods still reference the category
func (s *catalogService) DeleteCategory(ctx context.Context, scope Scope, id string) error {
	db := s.db.WithContext(ctx)
	category, err := s.scopedCategory(db, scope, id)
	if err != nil {
		return err
	}
	var inUse int64
	if err := db.Model(&models.Food{}).Where("category_id = ?", id).Count(&inUse).Error; err != nil {
		return err
	}
	if inUse > 0 {
		return conflictError(models.ErrConflict, fmt.Sprintf("category still has %d foods", inUse))
	}
	if err := db.Delete(category).Error; err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	s.invalidateMenus(ctx)
	return nil
}
