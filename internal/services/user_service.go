package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/franciscosanchezn/gin-food-ordering-api/internal/models"
	"gorm.io/gorm"
)

type CreateUserInput struct {
	Username     string      `json:"username"`
	Password     string      `json:"password"`
	Role         models.Role `json:"role"`
	RestaurantID string      `json:"restaurantId"`
}

// UserService manages back-office accounts
type UserService interface {
	// CreateUser stores a user and, for restaurant admins, assigns the restaurant to them
	CreateUser(ctx context.Context, in CreateUserInput) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
}

type userService struct {
	db *gorm.DB
}

func NewUserService(db *gorm.DB) UserService {
	return &userService{db: db}
}

func (s *userService) CreateUser(ctx context.Context, in CreateUserInput) (*models.User, error) {
	username := strings.TrimSpace(in.Username)
	if username == "" || in.Password == "" {
		return nil, validationError(models.ErrMissingFields, "username and password are required")
	}
	if in.Role == "" {
		in.Role = models.RoleRestaurantAdmin
	}
	if !in.Role.Valid() {
		return nil, validationError(models.ErrValidationFailed, fmt.Sprintf("unknown role %q", in.Role))
	}

	user := &models.User{Username: username, Role: in.Role}
	if err := user.SetPassword(in.Password); err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing int64
		if err := tx.Model(&models.User{}).Where("username = ?", username).Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return conflictError(models.ErrConflict, "user already exists")
		}
		if err := tx.Create(user).Error; err != nil {
			return err
		}
		if in.RestaurantID == "" {
			return nil
		}

		var restaurant models.Restaurant
		if err := tx.First(&restaurant, "id = ?", in.RestaurantID).Error; err != nil {
			return notFoundOr(err, models.ErrRestaurantNotFound, "restaurant not found")
		}
		if restaurant.AdminID != nil && *restaurant.AdminID != "" {
			return conflictError(models.ErrConflict, "restaurant already has an admin")
		}
		if err := tx.Model(&restaurant).Update("admin_id", user.ID).Error; err != nil {
			return err
		}
		restaurant.AdminID = &user.ID
		user.Restaurant = &restaurant
		return nil
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (s *userService) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Preload("Restaurant").Where("username = ?", username).First(&user).Error; err != nil {
		return nil, notFoundOr(err, models.ErrNotFound, "user not found")
	}
	return &user, nil
}

func (s *userService) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Preload("Restaurant").First(&user, "id = ?", id).Error; err != nil {
		return nil, notFoundOr(err, models.ErrNotFound, "user not found")
	}
	return &user, nil
}

func (s *userService) ListUsers(ctx context.Context) ([]models.User, error) {
	users := []models.User{}
	if err := s.db.WithContext(ctx).Preload("Restaurant").Order("username ASC").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}
