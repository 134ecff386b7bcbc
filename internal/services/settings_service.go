package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/franciscosanchezn/gin-food-ordering-api/internal/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type SettingsInput struct {
	StoreName    string                 `json:"storeName"`
	Address      string                 `json:"address"`
	Phone        string                 `json:"phone"`
	Email        string                 `json:"email"`
	Currency     string                 `json:"currency"`
	Description  string                 `json:"description"`
	OpeningHours map[string]interface{} `json:"openingHours"`
}

type SettingsService interface {
	// GetSettings returns the store settings, or nil when none were saved yet
	GetSettings(ctx context.Context) (*models.Settings, error)
	// SaveSettings upserts the singleton settings row
	SaveSettings(ctx context.Context, in SettingsInput) (*models.Settings, error)
}

type settingsService struct {
	db *gorm.DB
}

func NewSettingsService(db *gorm.DB) SettingsService {
	return &settingsService{db: db}
}

func (s *settingsService) GetSettings(ctx context.Context) (*models.Settings, error) {
	var settings models.Settings
	err := s.db.WithContext(ctx).Order("created_at ASC").First(&settings).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &settings, nil
}

func (s *settingsService) SaveSettings(ctx context.Context, in SettingsInput) (*models.Settings, error) {
	if in.Currency == "" {
		in.Currency = "USD"
	}
	var saved models.Settings
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing []models.Settings
		if err := tx.Order("created_at ASC").Limit(1).Find(&existing).Error; err != nil {
			return err
		}
		if len(existing) > 0 {
			saved = existing[0]
		}
		saved.StoreName = in.StoreName
		saved.Address = in.Address
		saved.Phone = in.Phone
		saved.Email = in.Email
		saved.Currency = in.Currency
		saved.Description = in.Description
		saved.OpeningHours = datatypes.JSONMap(in.OpeningHours)
		return tx.Save(&saved).Error
	})
	if err != nil {
		return nil, fmt.Errorf("save settings: %w", err)
	}
	return &saved, nil
}
