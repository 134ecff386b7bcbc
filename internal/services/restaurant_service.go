package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/franciscosanchezn/gin-food-ordering-api/internal/cache"
	"github.com/franciscosanchezn/gin-food-ordering-api/internal/models"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type RestaurantInput struct {
	Name        string  `json:"name"`
	Location    string  `json:"location"`
	Description string  `json:"description"`
	Logo        string  `json:"logo"`
	Banner      string  `json:"banner"`
	Enabled     *bool   `json:"enabled"`
	AdminID     *string `json:"adminId"`
}

type RestaurantService interface {
	// ListRestaurants returns enabled restaurants, or all of them when includeDisabled is set
	ListRestaurants(ctx context.Context, includeDisabled bool) ([]models.Restaurant, error)
	GetRestaurant(ctx context.Context, id string) (*models.Restaurant, error)
	CreateRestaurant(ctx context.Context, in RestaurantInput) (*models.Restaurant, error)
	UpdateRestaurant(ctx context.Context, id string, in RestaurantInput) (*models.Restaurant, error)
	DeleteRestaurant(ctx context.Context, id string) error
}

type restaurantService struct {
	db    *gorm.DB
	cache cache.Cache
	log   *logrus.Logger
}

// NewRestaurantService shares the menu cache with the catalog so restaurant writes drop cached menus
func NewRestaurantService(db *gorm.DB, c cache.Cache, log *logrus.Logger) RestaurantService {
	return &restaurantService{db: db, cache: c, log: log}
}

func (s *restaurantService) invalidateMenus(ctx context.Context) {
	if err := s.cache.DeletePrefix(ctx, menuCachePrefix); err != nil {
		s.log.WithError(err).Warn("Menu cache invalidation failed")
	}
}

type foodCount struct {
	RestaurantID string
	Total        int64
}

func (s *restaurantService) attachFoodCounts(db *gorm.DB, restaurants []models.Restaurant) error {
	if len(restaurants) == 0 {
		return nil
	}
	ids := make([]string, 0, len(restaurants))
	for _, r := range restaurants {
		ids = append(ids, r.ID)
	}
	var counts []foodCount
	err := db.Model(&models.Food{}).
		Select("restaurant_id, COUNT(*) AS total").
		Where("restaurant_id IN ?", ids).
		Group("restaurant_id").
		Scan(&counts).Error
	if err != nil {
		return err
	}
	byID := make(map[string]int64, len(counts))
	for _, c := range counts {
		byID[c.RestaurantID] = c.Total
	}
	for i := range restaurants {
		restaurants[i].FoodCount = byID[restaurants[i].ID]
	}
	return nil
}

func (s *restaurantService) ListRestaurants(ctx context.Context, includeDisabled bool) ([]models.Restaurant, error) {
	db := s.db.WithContext(ctx)
	q := db
	if !includeDisabled {
		q = q.Where("enabled = ?", true)
	}
	restaurants := []models.Restaurant{}
	if err := q.Order("created_at DESC").Find(&restaurants).Error; err != nil {
		return nil, err
	}
	if err := s.attachFoodCounts(db, restaurants); err != nil {
		return nil, err
	}
	return restaurants, nil
}

func (s *restaurantService) GetRestaurant(ctx context.Context, id string) (*models.Restaurant, error) {
	db := s.db.WithContext(ctx)
	var restaurant models.Restaurant
	err := db.Preload("Categories", func(db *gorm.DB) *gorm.DB { return db.Order("name ASC") }).
		First(&restaurant, "id = ?", id).Error
	if err != nil {
		return nil, notFoundOr(err, models.ErrRestaurantNotFound, "restaurant not found")
	}
	list := []models.Restaurant{restaurant}
	if err := s.attachFoodCounts(db, list); err != nil {
		return nil, err
	}
	return &list[0], nil
}

func (s *restaurantService) CreateRestaurant(ctx context.Context, in RestaurantInput) (*models.Restaurant, error) {
	if strings.TrimSpace(in.Name) == "" || strings.TrimSpace(in.Location) == "" {
		return nil, validationError(models.ErrMissingFields, "name and location are required")
	}
	restaurant := models.Restaurant{
		Name:        strings.TrimSpace(in.Name),
		Location:    strings.TrimSpace(in.Location),
		Description: in.Description,
		Logo:        in.Logo,
		Banner:      in.Banner,
		Enabled:     in.Enabled == nil || *in.Enabled,
		AdminID:     in.AdminID,
	}
	if err := s.db.WithContext(ctx).Create(&restaurant).Error; err != nil {
		return nil, fmt.Errorf("create restaurant: %w", err)
	}
	return &restaurant, nil
}

func (s *restaurantService) UpdateRestaurant(ctx context.Context, id string, in RestaurantInput) (*models.Restaurant, error) {
	db := s.db.WithContext(ctx)
	var restaurant models.Restaurant
	if err := db.First(&restaurant, "id = ?", id).Error; err != nil {
		return nil, notFoundOr(err, models.ErrRestaurantNotFound, "restaurant not found")
	}

	updates := map[string]interface{}{}
	if name := strings.TrimSpace(in.Name); name != "" {
		updates["name"] = name
	}
	if location := strings.TrimSpace(in.Location); location != "" {
		updates["location"] = location
	}
	if in.Description != "" {
		updates["description"] = in.Description
	}
	if in.Logo != "" {
		updates["logo"] = in.Logo
	}
	if in.Banner != "" {
		updates["banner"] = in.Banner
	}
	if in.Enabled != nil {
		updates["enabled"] = *in.Enabled
	}
	if in.AdminID != nil {
		updates["admin_id"] = in.AdminID
	}
	if len(updates) > 0 {
		if err := db.Model(&restaurant).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("update restaurant: %w", err)
		}
		s.invalidateMenus(ctx)
	}
	return s.GetRestaurant(ctx, id)
}

// DeleteRestaurant refuses while orders reference the restaurant, since order history must survive
func (s *restaurantService) DeleteRestaurant(ctx context.Context, id string) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var restaurant models.Restaurant
		if err := tx.First(&restaurant, "id = ?", id).Error; err != nil {
			return notFoundOr(err, models.ErrRestaurantNotFound, "restaurant not found")
		}
		var orders int64
		if err := tx.Model(&models.Order{}).Where("restaurant_id = ?", id).Count(&orders).Error; err != nil {
			return err
		}
		if orders > 0 {
			return conflictError(models.ErrConflict, "restaurant has orders; disable it instead")
		}
		if err := tx.Unscoped().Where("restaurant_id = ?", id).Delete(&models.Food{}).Error; err != nil {
			return err
		}
		if err := tx.Where("restaurant_id = ?", id).Delete(&models.Category{}).Error; err != nil {
			return err
		}
		if err := tx.Where("restaurant_id = ?", id).Delete(&models.Employee{}).Error; err != nil {
			return err
		}
		return tx.Delete(&restaurant).Error
	})
	if err != nil {
		return err
	}
	s.invalidateMenus(ctx)
	return nil
}
