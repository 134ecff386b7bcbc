package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/franciscosanchezn/gin-food-ordering-api/internal/auth"
	"github.com/franciscosanchezn/gin-food-ordering-api/internal/models"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// BootstrapAccount is a back-office account materialised on its first successful login
type BootstrapAccount struct {
	Password   string
	Role       models.Role
	Restaurant *models.Restaurant
}

// DefaultBootstrapAccounts are the demo accounts available when bootstrapping is enabled
func DefaultBootstrapAccounts() map[string]BootstrapAccount {
	return map[string]BootstrapAccount{
		"danger": {Password: "12345", Role: models.RoleSuperAdmin},
		"resto1": {
			Password: "12345",
			Role:     models.RoleRestaurantAdmin,
			Restaurant: &models.Restaurant{
				Name:        "Burger Palace",
				Location:    "City Center",
				Description: "Juicy burgers, crispy fries, and fast service.",
			},
		},
		"resto2": {
			Password: "12345",
			Role:     models.RoleRestaurantAdmin,
			Restaurant: &models.Restaurant{
				Name:        "Pizza Express",
				Location:    "Downtown",
				Description: "Freshly baked pizzas, pasta, and more.",
			},
		},
	}
}

// LoginResult is returned on successful authentication
type LoginResult struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
	User      *models.User `json:"user"`
}

type AuthService interface {
	// Login verifies credentials and issues a signed token. Every failure returns the same error.
	Login(ctx context.Context, username, password string) (*LoginResult, error)
	// Authenticate verifies a token and returns its claims
	Authenticate(token string) (*auth.Claims, error)
	// CurrentUser loads the user behind a verified token
	CurrentUser(ctx context.Context, userID string) (*models.User, error)
}

type authService struct {
	db        *gorm.DB
	tokens    *auth.TokenManager
	bootstrap map[string]BootstrapAccount
	log       *logrus.Logger
}

// NewAuthService creates an AuthService. A nil bootstrap map disables account bootstrapping.
func NewAuthService(db *gorm.DB, tokens *auth.TokenManager, bootstrap map[string]BootstrapAccount, log *logrus.Logger) AuthService {
	return &authService{db: db, tokens: tokens, bootstrap: bootstrap, log: log}
}

// checkMissingPassword keeps unknown usernames as slow as wrong passwords
var checkMissingPassword = models.CheckMissingPassword

func (s *authService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, validationError(models.ErrMissingFields, "username and password are required")
	}

	user, err := s.findUser(ctx, username)
	if err != nil {
		return nil, err
	}

	if user == nil {
		account, ok := s.bootstrap[username]
		if !ok || password != account.Password {
			checkMissingPassword(password)
			s.log.WithField("username", username).Warn("Login failed")
			return nil, errInvalidCredentials
		}
		if user, err = s.materialise(ctx, username, account); err != nil {
			return nil, err
		}
	}

	if !user.CheckPassword(password) {
		s.log.WithField("username", username).Warn("Login failed")
		return nil, errInvalidCredentials
	}

	token, expiresAt, err := s.tokens.Issue(user)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	s.log.WithFields(logrus.Fields{
		"user_id":  user.ID,
		"username": user.Username,
		"role":     user.Role,
	}).Info("User logged in")

	return &LoginResult{Token: token, ExpiresAt: expiresAt, User: user}, nil
}

func (s *authService) findUser(ctx context.Context, username string) (*models.User, error) {
	var users []models.User
	if err := s.db.WithContext(ctx).Preload("Restaurant").Where("username = ?", username).Limit(1).Find(&users).Error; err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return nil, nil
	}
	return &users[0], nil
}

// materialise creates a bootstrap user and its restaurant in one transaction
func (s *authService) materialise(ctx context.Context, username string, account BootstrapAccount) (*models.User, error) {
	user := &models.User{Username: username, Role: account.Role}
	if err := user.SetPassword(account.Password); err != nil {
		return nil, fmt.Errorf("hash bootstrap password: %w", err)
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			return err
		}
		if account.Restaurant == nil {
			return nil
		}
		restaurant := &models.Restaurant{
			Name:        account.Restaurant.Name,
			Location:    account.Restaurant.Location,
			Description: account.Restaurant.Description,
			Enabled:     true,
			AdminID:     &user.ID,
		}
		if err := tx.Create(restaurant).Error; err != nil {
			return err
		}
		user.Restaurant = restaurant
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("bootstrap account %s: %w", username, err)
	}

	s.log.WithFields(logrus.Fields{"username": username, "role": account.Role}).Info("Bootstrap account created")
	return user, nil
}

func (s *authService) Authenticate(token string) (*auth.Claims, error) {
	claims, err := s.tokens.Verify(token)
	if err != nil {
		s.log.WithError(err).Debug("Token rejected")
		return nil, newError(ErrUnauthorized, models.ErrUnauthorized, "unauthorized")
	}
	return claims, nil
}

func (s *authService) CurrentUser(ctx context.Context, userID string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Preload("Restaurant").First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, newError(ErrUnauthorized, models.ErrUnauthorized, "unauthorized")
		}
		return nil, err
	}
	return &user, nil
}
