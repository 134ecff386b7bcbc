package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/franciscosanchezn/gin-food-ordering-api/internal/models"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type ClientInput struct {
	Name   string `json:"name"`
	Domain string `json:"domain"`
	Scopes string `json:"scopes"`
}

// RegisteredClient carries the plain secret, which is only available at creation
type RegisteredClient struct {
	Client *models.OAuthClient
	Secret string
}

// ClientService manages OAuth2 integration clients owned by back-office users
type ClientService interface {
	CreateClient(ctx context.Context, ownerID string, in ClientInput) (*RegisteredClient, error)
	GetClientsByUserID(ctx context.Context, userID string) ([]models.OAuthClient, error)
	GetClientByID(ctx context.Context, id string) (*models.OAuthClient, error)
	DeleteClient(ctx context.Context, clientID string, userID string) error
}

type clientService struct {
	db *gorm.DB
}

func NewClientService(db *gorm.DB) ClientService {
	return &clientService{db: db}
}

func (s *clientService) CreateClient(ctx context.Context, ownerID string, in ClientInput) (*RegisteredClient, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, validationError(models.ErrMissingFields, "name is required")
	}

	var owners int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", ownerID).Count(&owners).Error; err != nil {
		return nil, err
	}
	if owners == 0 {
		return nil, notFoundError(models.ErrNotFound, "owner not found")
	}

	secret := uuid.NewString()
	hashedSecret, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash client secret: %w", err)
	}

	client := &models.OAuthClient{
		ID:     uuid.NewString(),
		Secret: string(hashedSecret),
		Name:   strings.TrimSpace(in.Name),
		Domain: in.Domain,
		Scopes: in.Scopes,
		UserID: ownerID,
	}
	if err := s.db.WithContext(ctx).Create(client).Error; err != nil {
		return nil, fmt.Errorf("create client: %w", err)
	}
	return &RegisteredClient{Client: client, Secret: secret}, nil
}

func (s *clientService) GetClientsByUserID(ctx context.Context, userID string) ([]models.OAuthClient, error) {
	clients := []models.OAuthClient{}
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at DESC").Find(&clients).Error; err != nil {
		return nil, err
	}
	return clients, nil
}

func (s *clientService) GetClientByID(ctx context.Context, id string) (*models.OAuthClient, error) {
	var client models.OAuthClient
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&client).Error; err != nil {
		return nil, notFoundOr(err, models.ErrClientNotFound, "client not found")
	}
	return &client, nil
}

// DeleteClient removes a client and the tokens issued to it
func (s *clientService) DeleteClient(ctx context.Context, clientID string, userID string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Where("id = ? AND user_id = ?", clientID, userID).Delete(&models.OAuthClient{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return notFoundError(models.ErrClientNotFound, "client not found")
		}
		if err := tx.Where("client_id = ?", clientID).Delete(&models.OAuthToken{}).Error; err != nil {
			return fmt.Errorf("revoke client tokens: %w", err)
		}
		return nil
	})
}
