package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/franciscosanchezn/gin-food-ordering-api/internal/models"
	"github.com/go-oauth2/oauth2/v4"
	"gorm.io/gorm"
)

// ClientAccessGenerate issues OAuth2 access tokens carrying the same claims as a login
// token for the user that owns the client, so one middleware accepts both
type ClientAccessGenerate struct {
	tokens *TokenManager
	db     *gorm.DB
}

func NewClientAccessGenerate(tokens *TokenManager, db *gorm.DB) *ClientAccessGenerate {
	return &ClientAccessGenerate{tokens: tokens, db: db}
}

// Token is called by the OAuth2 manager to produce the access token
func (g *ClientAccessGenerate) Token(ctx context.Context, data *oauth2.GenerateBasic, isGenRefresh bool) (string, string, error) {
	// For client_credentials GenerateBasic.UserID is empty, the owner comes from the client
	userID := data.UserID
	if userID == "" {
		userID = data.Client.GetUserID()
	}
	if userID == "" {
		return "", "", fmt.Errorf("cannot generate token: client %s has no owner", data.Client.GetID())
	}

	// The role is read from the database on every issue so demoted users cannot mint old privileges
	var user models.User
	if err := g.db.WithContext(ctx).Preload("Restaurant").First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", "", fmt.Errorf("user with ID %s not found", userID)
		}
		return "", "", fmt.Errorf("database error: %w", err)
	}

	claims := ClaimsFor(&user)
	claims.Scope = data.TokenInfo.GetScope()
	claims.Audience = []string{data.Client.GetID()}

	issuedAt := data.TokenInfo.GetAccessCreateAt()
	access, err := g.tokens.Sign(claims, issuedAt, issuedAt.Add(data.TokenInfo.GetAccessExpiresIn()))
	if err != nil {
		return "", "", err
	}

	if isGenRefresh {
		return "", "", errors.New("refresh tokens are not issued to integration clients")
	}
	return access, "", nil
}
