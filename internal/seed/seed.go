// Package seed loads the demo catalog: back-office accounts, restaurants, menus and store settings.
package seed

import (
	"context"
	_ "embed"
	"errors"
	"fmt"

	"github.com/franciscosanchezn/gin-food-ordering-api/internal/models"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

//go:embed catalog.yaml
var defaultCatalog []byte

type Catalog struct {
	Settings    *SettingsSeed    `yaml:"settings"`
	Users       []UserSeed       `yaml:"users"`
	Restaurants []RestaurantSeed `yaml:"restaurants"`
}

type SettingsSeed struct {
	StoreName    string                 `yaml:"storeName"`
	Address      string                 `yaml:"address"`
	Phone        string                 `yaml:"phone"`
	Email        string                 `yaml:"email"`
	Currency     string                 `yaml:"currency"`
	Description  string                 `yaml:"description"`
	OpeningHours map[string]interface{} `yaml:"openingHours"`
}

type UserSeed struct {
	Username string      `yaml:"username"`
	Password string      `yaml:"password"`
	Role     models.Role `yaml:"role"`
}

type RestaurantSeed struct {
	Name        string         `yaml:"name"`
	Location    string         `yaml:"location"`
	Description string         `yaml:"description"`
	Admin       *UserSeed      `yaml:"admin"`
	Categories  []CategorySeed `yaml:"categories"`
}

type CategorySeed struct {
	Name  string     `yaml:"name"`
	Foods []FoodSeed `yaml:"foods"`
}

type FoodSeed struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Price       string `yaml:"price"`
	PrepTime    *int   `yaml:"prepTime"`
	Unavailable bool   `yaml:"unavailable"`
}

// ErrAlreadySeeded is returned when the database already holds restaurants
var ErrAlreadySeeded = errors.New("database already seeded")

// Default returns the embedded demo catalog
func Default() (*Catalog, error) {
	return Parse(defaultCatalog)
}

// Parse decodes and validates a catalog document
func Parse(data []byte) (*Catalog, error) {
	var catalog Catalog
	if err := yaml.Unmarshal(data, &catalog); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	if err := catalog.validate(); err != nil {
		return nil, err
	}
	return &catalog, nil
}

func (c *Catalog) validate() error {
	for _, u := range c.Users {
		if u.Username == "" || u.Password == "" || !u.Role.Valid() {
			return fmt.Errorf("user %q: username, password and a valid role are required", u.Username)
		}
	}
	for _, r := range c.Restaurants {
		if r.Name == "" || r.Location == "" {
			return fmt.Errorf("restaurant %q: name and location are required", r.Name)
		}
		if r.Admin != nil && (r.Admin.Username == "" || r.Admin.Password == "") {
			return fmt.Errorf("restaurant %q: admin needs a username and password", r.Name)
		}
		for _, cat := range r.Categories {
			for _, f := range cat.Foods {
				price, err := decimal.NewFromString(f.Price)
				if err != nil || !price.IsPositive() {
					return fmt.Errorf("food %q: invalid price %q", f.Name, f.Price)
				}
			}
		}
	}
	return nil
}

// Apply writes the catalog in one transaction. It returns ErrAlreadySeeded when any restaurant exists.
func Apply(ctx context.Context, db *gorm.DB, catalog *Catalog, log *logrus.Logger) error {
	var restaurants int64
	if err := db.WithContext(ctx).Model(&models.Restaurant{}).Count(&restaurants).Error; err != nil {
		return err
	}
	if restaurants > 0 {
		return ErrAlreadySeeded
	}

	var foods int
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, u := range catalog.Users {
			if _, err := ensureUser(tx, u); err != nil {
				return err
			}
		}
		for _, r := range catalog.Restaurants {
			n, err := applyRestaurant(tx, r)
			if err != nil {
				return fmt.Errorf("restaurant %s: %w", r.Name, err)
			}
			foods += n
		}
		if catalog.Settings != nil {
			return applySettings(tx, catalog.Settings)
		}
		return nil
	})
	if err != nil {
		return err
	}

	log.WithFields(logrus.Fields{
		"users":       len(catalog.Users),
		"restaurants": len(catalog.Restaurants),
		"foods":       foods,
	}).Info("Database seeded")
	return nil
}

// ensureUser returns the existing account for u.Username or creates it
func ensureUser(tx *gorm.DB, u UserSeed) (*models.User, error) {
	var existing []models.User
	if err := tx.Where("username = ?", u.Username).Limit(1).Find(&existing).Error; err != nil {
		return nil, err
	}
	if len(existing) > 0 {
		return &existing[0], nil
	}
	user := &models.User{Username: u.Username, Role: u.Role}
	if err := user.SetPassword(u.Password); err != nil {
		return nil, err
	}
	if err := tx.Create(user).Error; err != nil {
		return nil, fmt.Errorf("create user %s: %w", u.Username, err)
	}
	return user, nil
}

func applyRestaurant(tx *gorm.DB, r RestaurantSeed) (int, error) {
	restaurant := &models.Restaurant{
		Name:        r.Name,
		Location:    r.Location,
		Description: r.Description,
		Enabled:     true,
	}
	if r.Admin != nil {
		admin, err := ensureUser(tx, UserSeed{Username: r.Admin.Username, Password: r.Admin.Password, Role: models.RoleRestaurantAdmin})
		if err != nil {
			return 0, err
		}
		restaurant.AdminID = &admin.ID
	}
	if err := tx.Create(restaurant).Error; err != nil {
		return 0, err
	}

	foods := 0
	for _, cat := range r.Categories {
		category := &models.Category{Name: cat.Name, RestaurantID: &restaurant.ID}
		if err := tx.Create(category).Error; err != nil {
			return 0, err
		}
		for _, f := range cat.Foods {
			food := &models.Food{
				Name:         f.Name,
				Description:  f.Description,
				Price:        decimal.RequireFromString(f.Price),
				Available:    !f.Unavailable,
				PrepTime:     f.PrepTime,
				CategoryID:   category.ID,
				RestaurantID: &restaurant.ID,
			}
			if err := tx.Create(food).Error; err != nil {
				return 0, err
			}
			foods++
		}
	}
	return foods, nil
}

func applySettings(tx *gorm.DB, s *SettingsSeed) error {
	var count int64
	if err := tx.Model(&models.Settings{}).Count(&count).Error; err != nil || count > 0 {
		return err
	}
	return tx.Create(&models.Settings{
		StoreName:    s.StoreName,
		Address:      s.Address,
		Phone:        s.Phone,
		Email:        s.Email,
		Currency:     s.Currency,
		Description:  s.Description,
		OpeningHours: datatypes.JSONMap(s.OpeningHours),
	}).Error
}
